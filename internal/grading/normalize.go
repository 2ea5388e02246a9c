// Package grading compares a learner's answer with the expected term.
package grading

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes text before comparison: it lower-cases, folds
// diacritics to their base letter and keeps only [a-z0-9]. Dashes,
// apostrophes, spaces and any other punctuation disappear.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	// A transformer carries state, so build a fresh chain per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
