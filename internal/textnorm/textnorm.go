// Package textnorm provides deterministic text normalization for chatbot
// matching. It strips diacritical marks so that "ó" and "o" compare equal,
// which matters for Polish input typed with or without accents.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, removes combining marks, and recomposes.
// transform.Chain values are stateless here and safe for concurrent use.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize returns s with diacritical marks removed and is otherwise the
// identity: no trimming, no case folding, no failure modes. An empty input
// yields an empty output.
func Normalize(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		// Malformed UTF-8 passes through untouched; matching simply degrades
		// to byte comparison for those runes.
		return s
	}
	return out
}

// Fold is the comparison form used throughout matching: diacritics stripped
// and lower-cased.
func Fold(s string) string {
	return strings.ToLower(Normalize(s))
}
