// Package lexicon maps free-text chat input onto canonical tokens and renders localized
// prompts. Control flow never compares raw localized strings; it switches on Token.
package lexicon

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale is a supported display language.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleRU Locale = "ru"
)

// DefaultLocale is used when a user's language is unknown or unsupported.
const DefaultLocale = LocaleEN

var supported = []Locale{LocaleEN, LocaleRU}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Russian})

// Match picks the closest supported locale for a BCP 47 language code such as "ru-RU".
func Match(lang string) Locale {
	if lang == "" {
		return DefaultLocale
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return DefaultLocale
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return DefaultLocale
	}
	return supported[idx]
}

// Tag returns the language tag for l.
func (l Locale) Tag() language.Tag {
	switch l {
	case LocaleRU:
		return language.Russian
	default:
		return language.English
	}
}

// Printer returns a message printer bound to the catalog for l.
func (l Locale) Printer() *message.Printer {
	return message.NewPrinter(l.Tag())
}

// Sprintf renders a catalog message for l.
func (l Locale) Sprintf(key string, args ...interface{}) string {
	return l.Printer().Sprintf(key, args...)
}

// DateLayout is the display layout for dates in l.
func (l Locale) DateLayout() string {
	if l == LocaleRU {
		return "02.01.2006"
	}
	return "Jan 2, 2006"
}
