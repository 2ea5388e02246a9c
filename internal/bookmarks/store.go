// Package bookmarks keeps the set of starred terms of one learner.
package bookmarks

import (
	"log/slog"

	"github.com/example/vocabquiz/pkg/models"
)

// Persistence loads and saves the starred terms. Save receives the whole
// set in starring order.
type Persistence interface {
	Load() ([]string, error)
	Save(terms []string) error
}

// Store is the in-memory bookmark set, written through to its Persistence
// on every change. It is meant for a single writer.
type Store struct {
	persistence Persistence
	logger      *slog.Logger
	terms       []string
	index       map[string]bool
}

// NewStore loads the starred terms from p. A failed load starts with an
// empty set.
func NewStore(p Persistence, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		persistence: p,
		logger:      logger,
		index:       make(map[string]bool),
	}

	terms, err := p.Load()
	if err != nil {
		logger.Error("failed to load bookmarks, starting empty", "error", err)
		return s
	}
	for _, term := range terms {
		if term == "" || s.index[term] {
			continue
		}
		s.index[term] = true
		s.terms = append(s.terms, term)
	}
	return s
}

// Toggle stars or unstars term and returns the new state. A failed save is
// logged and the in-memory change is kept.
func (s *Store) Toggle(term string) bool {
	if term == "" {
		return false
	}

	starred := !s.index[term]
	if starred {
		s.index[term] = true
		s.terms = append(s.terms, term)
	} else {
		delete(s.index, term)
		for i, t := range s.terms {
			if t == term {
				s.terms = append(s.terms[:i], s.terms[i+1:]...)
				break
			}
		}
	}

	if err := s.persistence.Save(s.Terms()); err != nil {
		s.logger.Error("failed to save bookmarks", "term", term, "error", err)
	}
	return starred
}

// IsStarred reports whether term is starred
func (s *Store) IsStarred(term string) bool {
	return s.index[term]
}

// Terms returns the starred terms in the order they were starred
func (s *Store) Terms() []string {
	out := make([]string, len(s.terms))
	copy(out, s.terms)
	return out
}

// Len returns the number of starred terms
func (s *Store) Len() int {
	return len(s.terms)
}

// StarredItems filters catalog down to the starred items, keeping catalog order.
func (s *Store) StarredItems(catalog []models.VocabItem) []models.VocabItem {
	out := make([]models.VocabItem, 0, len(s.terms))
	for _, item := range catalog {
		if s.index[item.Term] {
			out = append(out, item)
		}
	}
	return out
}
