package model

import "strings"

// Language is the closed set of languages supported across the whole system:
// problem code snippets, the frontend selector and the judge resolver all
// share it. Adding a language means updating the judge id table as well.
type Language string

const (
	LangCPP        Language = "c++"
	LangJava       Language = "java"
	LangJavaScript Language = "javascript"
)

// ParseLanguage maps a user-supplied language name to a supported Language.
// Matching is case-insensitive and the "cpp" spelling is accepted as an
// alias for c++.
func ParseLanguage(name string) (Language, bool) {
	switch strings.ToLower(name) {
	case "cpp", "c++":
		return LangCPP, true
	case "java":
		return LangJava, true
	case "javascript":
		return LangJavaScript, true
	}
	return "", false
}

func SupportedLanguages() []Language {
	return []Language{LangCPP, LangJava, LangJavaScript}
}
