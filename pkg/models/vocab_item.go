package models

import "strings"

// Kind tells single words apart from idioms
type Kind string

const (
	// KindWord is a single vocabulary word
	KindWord Kind = "Word"
	// KindIdiom is a multi-word idiomatic expression
	KindIdiom Kind = "Idiom"
)

// ParseKind maps a loosely written kind ("word", "IDIOM") to a Kind
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "word", "":
		return KindWord, true
	case "idiom":
		return KindIdiom, true
	}
	return "", false
}

// VocabItem is a single term/definition pair from the catalog
type VocabItem struct {
	ID         string `json:"id" yaml:"id" db:"id"`
	Term       string `json:"term" yaml:"term" db:"term"`
	Definition string `json:"definition" yaml:"definition" db:"definition"`
	Kind       Kind   `json:"type" yaml:"type" db:"kind"`
	Category   string `json:"category,omitempty" yaml:"category,omitempty" db:"category"` // Day key, e.g. "Day 3"
}

// IsZero reports whether the item carries no term
func (v VocabItem) IsZero() bool {
	return strings.TrimSpace(v.Term) == ""
}
