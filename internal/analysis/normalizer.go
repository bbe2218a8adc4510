package analysis

import (
	"strings"
	"unicode"
)

// NormalizedText is the token stream of one post. Tokens feed the classifier
// and topic counting; Preserved keeps $-prefixed tokens verbatim.
type NormalizedText struct {
	Tokens    []string
	Preserved []string
}

// Normalize lowercases text and splits it into alphanumeric tokens, dropping
// URLs, @mentions and punctuation. Cashtags and $-prices go to Preserved
// instead of Tokens.
func Normalize(text string) NormalizedText {
	var out NormalizedText

	for _, field := range strings.Fields(text) {
		field = strings.TrimLeft(field, `([{"'`)
		lower := strings.ToLower(field)

		switch {
		case isURL(lower):
			continue
		case strings.HasPrefix(field, "@"):
			continue
		case isDollarToken(field):
			out.Preserved = append(out.Preserved, strings.TrimRightFunc(field, notAlphanumeric))
			continue
		}

		lower = strings.NewReplacer("'", "", "’", "").Replace(lower)
		out.Tokens = append(out.Tokens, strings.FieldsFunc(lower, notAlphanumeric)...)
	}

	return out
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "www.")
}

func isDollarToken(s string) bool {
	if len(s) < 2 || s[0] != '$' {
		return false
	}
	r := rune(s[1])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func notAlphanumeric(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
