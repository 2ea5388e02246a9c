package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/vocabquiz/internal/catalog"
	"github.com/example/vocabquiz/pkg/models"
)

// VocabRepository stores the imported vocabulary catalog
type VocabRepository struct {
	db *sqlx.DB
}

// NewVocabRepository creates a new repository instance
func NewVocabRepository(db *sqlx.DB) *VocabRepository {
	return &VocabRepository{db: db}
}

// ReplaceAll swaps the stored vocabulary for items, keeping their order
func (r *VocabRepository) ReplaceAll(ctx context.Context, items []models.VocabItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM vocab_items"); err != nil {
		return errors.Wrap(err, "failed to clear vocabulary")
	}

	insert := tx.Rebind(`
		INSERT INTO vocab_items (id, term, definition, kind, category, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	for i, item := range items {
		if _, err := tx.ExecContext(ctx, insert,
			item.ID,
			item.Term,
			item.Definition,
			string(item.Kind),
			item.Category,
			i,
		); err != nil {
			return errors.Wrapf(err, "failed to insert %q", item.Term)
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit vocabulary")
}

// GetAll returns all items in import order
func (r *VocabRepository) GetAll(ctx context.Context) ([]models.VocabItem, error) {
	items := []models.VocabItem{}
	err := r.db.SelectContext(ctx, &items,
		"SELECT id, term, definition, kind, category FROM vocab_items ORDER BY position")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vocabulary")
	}
	return items, nil
}

// GetByCategory returns the items of one category, matched case-insensitively
func (r *VocabRepository) GetByCategory(ctx context.Context, category string) ([]models.VocabItem, error) {
	items := []models.VocabItem{}
	query := r.db.Rebind(`
		SELECT id, term, definition, kind, category FROM vocab_items
		WHERE LOWER(category) = LOWER(?)
		ORDER BY position
	`)
	if err := r.db.SelectContext(ctx, &items, query, category); err != nil {
		return nil, errors.Wrap(err, "failed to get vocabulary by category")
	}
	return items, nil
}

// Categories returns the distinct categories in import order
func (r *VocabRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.SelectContext(ctx, &categories, `
		SELECT category FROM vocab_items
		WHERE category <> ''
		GROUP BY category
		ORDER BY MIN(position)
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get categories")
	}
	return categories, nil
}

// Count returns the number of stored items
func (r *VocabRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM vocab_items"); err != nil {
		return 0, errors.Wrap(err, "failed to count vocabulary")
	}
	return n, nil
}

// Catalog loads the stored vocabulary as a validated catalog
func (r *VocabRepository) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	items, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.New(items)
}
