package domain

import (
	"sort"
	"strings"
)

// Language is a programming language accepted by the editor.
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageJava       Language = "java"
	LanguageCpp        Language = "cpp"
	LanguageC          Language = "c"
	LanguageGo         Language = "go"
	LanguageCSharp     Language = "csharp"
	LanguageRuby       Language = "ruby"
	LanguageRust       Language = "rust"
)

// judge language identifiers
var languageIDs = map[Language]int{
	LanguageC:          50,
	LanguageCSharp:     51,
	LanguageCpp:        54,
	LanguageGo:         60,
	LanguageJava:       62,
	LanguageJavaScript: 63,
	LanguagePython:     71,
	LanguageRuby:       72,
	LanguageRust:       73,
	LanguageTypeScript: 74,
}

// ParseLanguage normalizes a user supplied language name.
func ParseLanguage(name string) (Language, bool) {
	lang := Language(strings.ToLower(strings.TrimSpace(name)))
	switch lang {
	case "py", "python3":
		lang = LanguagePython
	case "js", "node":
		lang = LanguageJavaScript
	case "ts":
		lang = LanguageTypeScript
	case "c++":
		lang = LanguageCpp
	case "golang":
		lang = LanguageGo
	case "c#", "cs":
		lang = LanguageCSharp
	}
	_, ok := languageIDs[lang]
	return lang, ok
}

// JudgeID returns the judge language identifier, or 0 if unsupported.
func (l Language) JudgeID() int {
	return languageIDs[l]
}

func SupportedLanguages() []Language {
	langs := make([]Language, 0, len(languageIDs))
	for l := range languageIDs {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}
