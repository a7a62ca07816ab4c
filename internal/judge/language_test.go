package judge

import (
	"testing"

	"algoforge/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageID(t *testing.T) {
	tests := []struct {
		lang model.Language
		want int
	}{
		{model.LangCPP, 54},
		{model.LangJava, 62},
		{model.LangJavaScript, 63},
	}

	for _, tc := range tests {
		id, ok := LanguageID(tc.lang)
		require.True(t, ok, "expected an id for %s", tc.lang)
		assert.Equal(t, tc.want, id)
	}
}

func TestLanguageIDUnknown(t *testing.T) {
	_, ok := LanguageID(model.Language("python"))
	assert.False(t, ok)
}

// Every language the parser accepts must resolve to a judge id, including
// the cpp alias.
func TestEveryParsedLanguageHasID(t *testing.T) {
	for _, name := range []string{"c++", "cpp", "CPP", "Java", "javascript", "JavaScript"} {
		lang, ok := model.ParseLanguage(name)
		require.True(t, ok, "parse %q", name)
		_, ok = LanguageID(lang)
		assert.True(t, ok, "no judge id for %q", name)
	}
}
