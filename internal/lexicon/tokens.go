package lexicon

import (
	"strings"
	"unicode"

	"spendbot/internal/domain"
)

// Token is the canonical meaning of a user reply.
type Token int

const (
	TokenUnknown Token = iota
	TokenYes
	TokenNo
	TokenCorrect
	TokenNeedsCorrection
	TokenDone
	TokenCancel
	TokenFieldTotal
	TokenFieldDate
	TokenFieldMerchant
	TokenFieldCategory
)

var fieldTokens = map[Token]domain.FieldKey{
	TokenFieldTotal:    domain.FieldTotal,
	TokenFieldDate:     domain.FieldDate,
	TokenFieldMerchant: domain.FieldMerchant,
	TokenFieldCategory: domain.FieldCategory,
}

// Field returns the field key a field token stands for.
func (t Token) Field() (domain.FieldKey, bool) {
	key, ok := fieldTokens[t]
	return key, ok
}

// FieldToken returns the token for a field key.
func FieldToken(key domain.FieldKey) Token {
	for t, k := range fieldTokens {
		if k == key {
			return t
		}
	}
	return TokenUnknown
}

// labels are the button captions offered to the user.
var labels = map[Locale]map[Token]string{
	LocaleEN: {
		TokenYes:             "✅ Yes",
		TokenNo:              "❌ No",
		TokenCorrect:         "✅ Correct",
		TokenNeedsCorrection: "✏️ No, needs correction",
		TokenDone:            "✅ Done correcting",
		TokenCancel:          "↩️ Back",
		TokenFieldTotal:      "Total amount",
		TokenFieldDate:       "Date",
		TokenFieldMerchant:   "Merchant",
		TokenFieldCategory:   "Category",
	},
	LocaleRU: {
		TokenYes:             "✅ Да",
		TokenNo:              "❌ Нет",
		TokenCorrect:         "✅ Всё верно",
		TokenNeedsCorrection: "✏️ Нет, нужно исправить",
		TokenDone:            "✅ Готово",
		TokenCancel:          "↩️ Назад",
		TokenFieldTotal:      "Сумма",
		TokenFieldDate:       "Дата",
		TokenFieldMerchant:   "Магазин",
		TokenFieldCategory:   "Категория",
	},
}

// synonyms are typed replies accepted in addition to the captions.
var synonyms = map[Locale]map[string]Token{
	LocaleEN: {
		"yes": TokenYes, "y": TokenYes,
		"no": TokenNo, "n": TokenNo,
		"correct": TokenCorrect, "ok": TokenCorrect, "looks good": TokenCorrect,
		"needs correction": TokenNeedsCorrection, "fix": TokenNeedsCorrection,
		"done": TokenDone,
		"cancel": TokenCancel, "back": TokenCancel,
		"total": TokenFieldTotal, "amount": TokenFieldTotal,
		"store": TokenFieldMerchant, "shop": TokenFieldMerchant,
	},
	LocaleRU: {
		"да": TokenYes,
		"нет": TokenNo,
		"верно": TokenCorrect, "все верно": TokenCorrect,
		"исправить": TokenNeedsCorrection,
		"готово": TokenDone,
		"отмена": TokenCancel, "назад": TokenCancel,
		"итого": TokenFieldTotal,
	},
}

var index = buildIndex()

func buildIndex() map[Locale]map[string]Token {
	idx := make(map[Locale]map[string]Token, len(supported))
	for _, loc := range supported {
		m := make(map[string]Token)
		for tok, label := range labels[loc] {
			m[normalize(label)] = tok
		}
		for word, tok := range synonyms[loc] {
			m[normalize(word)] = tok
		}
		idx[loc] = m
	}
	return idx
}

// normalize lowercases s, drops leading symbols such as emoji and folds "ё" to "е".
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	s = strings.ReplaceAll(s, "ё", "е")
	return strings.TrimSpace(s)
}

// Canonicalize maps a reply onto a token. The session locale is consulted first; the
// other supported locales are treated as synonyms of the same tokens.
func Canonicalize(loc Locale, text string) Token {
	key := normalize(text)
	if key == "" {
		return TokenUnknown
	}
	if tok, ok := index[loc][key]; ok {
		return tok
	}
	for _, other := range supported {
		if other == loc {
			continue
		}
		if tok, ok := index[other][key]; ok {
			return tok
		}
	}
	return TokenUnknown
}

// IsCaption reports whether text is exactly the button caption of tok in any supported
// locale. Typed synonyms do not count, so free-text answers are never mistaken for it.
func IsCaption(text string, tok Token) bool {
	text = strings.TrimSpace(text)
	for _, loc := range supported {
		if l, ok := labels[loc][tok]; ok && l == text {
			return true
		}
	}
	return false
}

// Label returns the caption for tok in loc.
func Label(loc Locale, tok Token) string {
	if l, ok := labels[loc][tok]; ok {
		return l
	}
	return labels[DefaultLocale][tok]
}

// Labels returns captions for toks in order.
func Labels(loc Locale, toks ...Token) []string {
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		out = append(out, Label(loc, t))
	}
	return out
}

// FieldLabel returns the caption for a correctable field.
func FieldLabel(loc Locale, key domain.FieldKey) string {
	return Label(loc, FieldToken(key))
}
