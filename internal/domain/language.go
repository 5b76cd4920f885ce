package domain

import "strings"

// DefaultLanguage is the primary spoken language, used as the fallback for
// unsupported codes and as the first message segment of every announcement.
const DefaultLanguage = "en"

// SupportedLanguages maps accepted command language codes to the codes the
// synthesis engine expects. Codes outside this table fall back to
// DefaultLanguage before synthesis is attempted.
var SupportedLanguages = map[string]string{
	"en": "en",
	"hi": "hi",
	"bn": "bn",
	"te": "te",
	"ta": "ta",
	"mr": "mr",
	"gu": "gu",
	"kn": "kn",
	"ml": "ml",
	"pa": "pa",
	"ur": "ur",
	"or": "or",
	"as": "as",
	"ne": "ne",
	"si": "si",
}

// ResolveLanguage returns code lowercased if it is supported, otherwise
// DefaultLanguage.
func ResolveLanguage(code string) string {
	code = strings.ToLower(code)
	if _, ok := SupportedLanguages[code]; ok {
		return code
	}
	return DefaultLanguage
}

// EngineCode maps a resolved language code to the synthesis engine's code,
// defaulting to the primary language if unmapped.
func EngineCode(code string) string {
	if engine, ok := SupportedLanguages[strings.ToLower(code)]; ok {
		return engine
	}
	return SupportedLanguages[DefaultLanguage]
}
