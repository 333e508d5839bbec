// Package textnorm folds user-facing Romanian text into a comparable form.
//
// Answers and catalog values arrive with or without diacritics ("știu", "stiu", "ştiu"),
// so every comparison that must ignore accents goes through Fold first.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dontKnowPhrases are the folded forms of the "don't know" answer.
var dontKnowPhrases = []string{"nu stiu"}

// mojibake seen in exported data where "ș" was decoded as Latin-1.
var mojibake = strings.NewReplacer("È™", "ș", "È›", "ț", "Äƒ", "ă", "Ã¢", "â", "ÃŽ", "Î", "Ã®", "î")

// Fold lower-cases s, strips combining marks, and collapses inner whitespace.
func Fold(s string) string {
	s = mojibake.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// IsDontKnow reports whether s is a "don't know" answer in any spelling.
func IsDontKnow(s string) bool {
	folded := Fold(s)
	for _, phrase := range dontKnowPhrases {
		if folded == phrase {
			return true
		}
	}
	return false
}

// ContainsFold reports whether needle occurs in haystack ignoring case and accents.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// EqualFold reports whether a and b are equal ignoring case and accents.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}
