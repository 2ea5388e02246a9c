package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/vocabquiz/pkg/models"
)

// SessionResultRepository handles database operations for finished quiz sessions
type SessionResultRepository struct {
	db *sqlx.DB
}

// NewSessionResultRepository creates a new repository instance
func NewSessionResultRepository(db *sqlx.DB) *SessionResultRepository {
	return &SessionResultRepository{db: db}
}

// Create inserts a new session result and sets its ID
func (r *SessionResultRepository) Create(ctx context.Context, result *models.SessionResult) error {
	if result.FinishedAt.IsZero() {
		result.FinishedAt = time.Now().UTC()
	}

	args := []interface{}{
		result.Owner,
		result.Mode,
		result.TotalItems,
		result.Correct,
		result.Hinted,
		result.Accuracy,
		result.BestStreak,
		result.FinishedAt,
	}
	query := `
		INSERT INTO session_results (
			owner, mode, total_items, correct, hinted, accuracy, best_streak, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	// PostgreSQL has no LastInsertId
	if r.db.DriverName() == DriverPostgres {
		err := r.db.QueryRowxContext(ctx, r.db.Rebind(query+" RETURNING id"), args...).Scan(&result.ID)
		return errors.Wrap(err, "failed to create session result")
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "failed to create session result")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "failed to get last insert ID")
	}
	result.ID = id
	return nil
}

// GetByOwner returns the latest results of owner, newest first
func (r *SessionResultRepository) GetByOwner(ctx context.Context, owner string, limit int) ([]models.SessionResult, error) {
	if limit <= 0 {
		limit = 10
	}
	results := []models.SessionResult{}
	query := r.db.Rebind(`
		SELECT id, owner, mode, total_items, correct, hinted, accuracy, best_streak, finished_at
		FROM session_results
		WHERE owner = ?
		ORDER BY finished_at DESC, id DESC
		LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &results, query, owner, limit); err != nil {
		return nil, errors.Wrap(err, "failed to get session results")
	}
	return results, nil
}

// GetOwnerStats aggregates every finished session of owner
func (r *SessionResultRepository) GetOwnerStats(ctx context.Context, owner string) (*models.OwnerStats, error) {
	stats := models.OwnerStats{}
	query := r.db.Rebind(`
		SELECT
			COUNT(*) AS sessions,
			COALESCE(SUM(total_items), 0) AS items_answered,
			COALESCE(SUM(correct), 0) AS correct_answers,
			COALESCE(AVG(accuracy), 0) AS average_accuracy,
			COALESCE(MAX(best_streak), 0) AS best_streak
		FROM session_results
		WHERE owner = ?
	`)
	if err := r.db.GetContext(ctx, &stats, query, owner); err != nil {
		return nil, errors.Wrap(err, "failed to get owner stats")
	}
	stats.Owner = owner
	return &stats, nil
}
