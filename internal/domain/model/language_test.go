package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
	}{
		{"c++", LangCPP},
		{"cpp", LangCPP},
		{"CPP", LangCPP},
		{"C++", LangCPP},
		{"java", LangJava},
		{"Java", LangJava},
		{"javascript", LangJavaScript},
		{"JavaScript", LangJavaScript},
	}

	for _, tc := range tests {
		lang, ok := ParseLanguage(tc.in)
		require.True(t, ok, "parse %q", tc.in)
		assert.Equal(t, tc.want, lang)
	}

	for _, bad := range []string{"", "python", "c", "js"} {
		_, ok := ParseLanguage(bad)
		assert.False(t, ok, "parse %q should fail", bad)
	}
}

func TestSubmissionStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusAccepted.Terminal())
	assert.True(t, StatusWrong.Terminal())
	assert.True(t, StatusError.Terminal())
}

func TestProblemDifficultyValid(t *testing.T) {
	assert.True(t, DifficultyEasy.Valid())
	assert.True(t, DifficultyMedium.Valid())
	assert.True(t, DifficultyHard.Valid())
	assert.False(t, ProblemDifficulty("extreme").Valid())
	assert.False(t, ProblemDifficulty("").Valid())
}
