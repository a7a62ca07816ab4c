package judge

import "algoforge/internal/domain/model"

// Judge0 language ids for the supported set. Must stay in step with
// model.SupportedLanguages and the per-language code stored on problems.
var languageIDs = map[model.Language]int{
	model.LangCPP:        54,
	model.LangJava:       62,
	model.LangJavaScript: 63,
}

// LanguageID resolves a supported language to the judge's numeric id.
func LanguageID(lang model.Language) (int, bool) {
	id, ok := languageIDs[lang]
	return id, ok
}
