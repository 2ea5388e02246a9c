package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/vocabquiz/internal/bookmarks"
)

// BookmarkRepository stores starred terms per owner
type BookmarkRepository struct {
	db *sqlx.DB
}

// NewBookmarkRepository creates a new repository instance
func NewBookmarkRepository(db *sqlx.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// OwnerBookmarks is the persistence channel of one owner's bookmark store
type OwnerBookmarks struct {
	repo  *BookmarkRepository
	owner string
}

var _ bookmarks.Persistence = (*OwnerBookmarks)(nil)

// ForOwner returns the persistence channel for owner
func (r *BookmarkRepository) ForOwner(owner string) bookmarks.Persistence {
	return &OwnerBookmarks{repo: r, owner: owner}
}

// Load implements bookmarks.Persistence
func (o *OwnerBookmarks) Load() ([]string, error) {
	return o.repo.Terms(context.Background(), o.owner)
}

// Save implements bookmarks.Persistence
func (o *OwnerBookmarks) Save(terms []string) error {
	return o.repo.Replace(context.Background(), o.owner, terms)
}

// Terms returns owner's starred terms in starring order
func (r *BookmarkRepository) Terms(ctx context.Context, owner string) ([]string, error) {
	terms := []string{}
	query := r.db.Rebind("SELECT term FROM bookmarks WHERE owner = ? ORDER BY position")
	if err := r.db.SelectContext(ctx, &terms, query, owner); err != nil {
		return nil, errors.Wrap(err, "failed to get bookmarks")
	}
	return terms, nil
}

// Replace overwrites owner's starred terms
func (r *BookmarkRepository) Replace(ctx context.Context, owner string, terms []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM bookmarks WHERE owner = ?"), owner); err != nil {
		return errors.Wrap(err, "failed to clear bookmarks")
	}

	insert := tx.Rebind("INSERT INTO bookmarks (owner, term, position) VALUES (?, ?, ?)")
	for i, term := range terms {
		if _, err := tx.ExecContext(ctx, insert, owner, term, i); err != nil {
			return errors.Wrapf(err, "failed to save bookmark %q", term)
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit bookmarks")
}

// OwnerBookmarkCount is the number of starred terms of one owner
type OwnerBookmarkCount struct {
	Owner   string `db:"owner"`
	Starred int    `db:"starred"`
}

// Owners lists every owner with at least one starred term
func (r *BookmarkRepository) Owners(ctx context.Context) ([]OwnerBookmarkCount, error) {
	owners := []OwnerBookmarkCount{}
	err := r.db.SelectContext(ctx, &owners, `
		SELECT owner, COUNT(*) AS starred
		FROM bookmarks
		GROUP BY owner
		ORDER BY owner
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get bookmark owners")
	}
	return owners, nil
}
