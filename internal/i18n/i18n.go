// Package i18n translates the labels of the HTML pages.
package i18n

import (
	"strconv"
	"strings"
)

// Language represents a supported language.
type Language string

const (
	English Language = "en"
	Finnish Language = "fi"
)

// DefaultLanguage is the fallback language.
const DefaultLanguage = English

//nolint:gochecknoglobals // static translation tables.
var translations = map[Language]map[string]string{
	English: {
		"program.category":        "Category",
		"program.difficulty":      "Difficulty",
		"program.days":            "Days per week",
		"program.tags":            "Tags",
		"program.workouts":        "Workouts",
		"difficulty.beginner":     "Beginner",
		"difficulty.intermediate": "Intermediate",
		"difficulty.advanced":     "Advanced",
	},
	Finnish: {
		"program.category":        "Kategoria",
		"program.difficulty":      "Vaikeustaso",
		"program.days":            "Päiviä viikossa",
		"program.tags":            "Tunnisteet",
		"program.workouts":        "Treenit",
		"difficulty.beginner":     "Aloittelija",
		"difficulty.intermediate": "Keskitaso",
		"difficulty.advanced":     "Edistynyt",
	},
}

// SupportedLanguages returns a list of all supported languages.
func SupportedLanguages() []Language {
	return []Language{English, Finnish}
}

// IsSupported checks if a language is supported.
func IsSupported(lang Language) bool {
	_, ok := translations[lang]
	return ok
}

// Translate returns the translation for the given key in the specified language.
// If the key is not found, it falls back to the default language.
// If still not found, it returns the key itself.
func Translate(lang Language, key string) string {
	if translation, ok := translations[lang][key]; ok {
		return translation
	}
	if translation, ok := translations[DefaultLanguage][key]; ok {
		return translation
	}
	return key
}

// FromAcceptLanguage picks the supported language the client prefers most, or DefaultLanguage.
// Region subtags are ignored, so "fi-FI" selects Finnish.
func FromAcceptLanguage(header string) Language {
	best, bestQ := DefaultLanguage, 0.0
	for part := range strings.SplitSeq(header, ",") {
		tag, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(tag)), "-")
		lang := Language(base)
		if !IsSupported(lang) {
			continue
		}
		q := 1.0
		if v, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			q = parsed
		}
		if q > bestQ {
			best, bestQ = lang, q
		}
	}
	return best
}
