// Package catalog holds the vocabulary items a quiz is drawn from.
package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/example/vocabquiz/internal/grading"
	"github.com/example/vocabquiz/pkg/models"
)

var (
	// ErrInvalidItem is returned for items without term or definition or with an unknown kind
	ErrInvalidItem = errors.New("invalid vocabulary item")
	// ErrDuplicateID is returned when two items share an id
	ErrDuplicateID = errors.New("duplicate item id")
	// ErrDuplicateTerm is returned when two items normalize to the same term
	ErrDuplicateTerm = errors.New("duplicate term")
)

// idNamespace seeds StableID so the same term always gets the same id.
var idNamespace = uuid.MustParse("6f1f6a4e-2b8c-4c4b-9d7e-3a0d3c1f5b21")

// StableID derives an item id from its term
func StableID(term string) string {
	return uuid.NewSHA1(idNamespace, []byte(grading.Normalize(term))).String()
}

// Catalog is an immutable, validated set of vocabulary items grouped by category.
type Catalog struct {
	items      []models.VocabItem
	categories []string
	byCategory map[string][]models.VocabItem
	keys       map[string]string // lower-cased key -> category
	byTerm     map[string]models.VocabItem
}

// New validates items and builds a catalog. Items without an id get a
// StableID. Categories keep the order in which they first appear.
func New(items []models.VocabItem) (*Catalog, error) {
	c := &Catalog{
		items:      make([]models.VocabItem, 0, len(items)),
		byCategory: make(map[string][]models.VocabItem),
		keys:       make(map[string]string),
		byTerm:     make(map[string]models.VocabItem),
	}
	ids := make(map[string]bool, len(items))

	for i, item := range items {
		item.Term = strings.TrimSpace(item.Term)
		item.Definition = strings.TrimSpace(item.Definition)
		item.Category = strings.TrimSpace(item.Category)

		if item.Term == "" || item.Definition == "" {
			return nil, errors.Wrapf(ErrInvalidItem, "item %d: missing term or definition", i+1)
		}
		kind, ok := models.ParseKind(string(item.Kind))
		if !ok {
			return nil, errors.Wrapf(ErrInvalidItem, "item %d (%q): unknown type %q", i+1, item.Term, item.Kind)
		}
		item.Kind = kind

		if item.ID == "" {
			item.ID = StableID(item.Term)
		}
		if ids[item.ID] {
			return nil, errors.Wrapf(ErrDuplicateID, "%q", item.ID)
		}
		ids[item.ID] = true

		norm := grading.Normalize(item.Term)
		if norm == "" {
			return nil, errors.Wrapf(ErrInvalidItem, "item %d (%q): term has no letters or digits", i+1, item.Term)
		}
		if prev, dup := c.byTerm[norm]; dup {
			return nil, errors.Wrapf(ErrDuplicateTerm, "%q clashes with %q", item.Term, prev.Term)
		}
		c.byTerm[norm] = item

		c.items = append(c.items, item)
		if item.Category != "" {
			if _, seen := c.byCategory[item.Category]; !seen {
				c.categories = append(c.categories, item.Category)
				c.keys[strings.ToLower(item.Category)] = item.Category
			}
			c.byCategory[item.Category] = append(c.byCategory[item.Category], item)
		}
	}
	return c, nil
}

// Items returns every item in catalog order
func (c *Catalog) Items() []models.VocabItem {
	return clone(c.items)
}

// ByCategory returns the items tagged with key, matched case-insensitively.
// An unknown key yields an empty list.
func (c *Catalog) ByCategory(key string) []models.VocabItem {
	name, ok := c.keys[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return []models.VocabItem{}
	}
	return clone(c.byCategory[name])
}

// Categories returns the category keys in catalog order
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Lookup finds an item by term, ignoring case and punctuation
func (c *Catalog) Lookup(term string) (models.VocabItem, bool) {
	item, ok := c.byTerm[grading.Normalize(term)]
	return item, ok
}

// Len returns the number of items
func (c *Catalog) Len() int {
	return len(c.items)
}

func clone(items []models.VocabItem) []models.VocabItem {
	out := make([]models.VocabItem, len(items))
	copy(out, items)
	return out
}
