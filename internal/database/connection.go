package database

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	// DriverSQLite is the embedded default
	DriverSQLite = "sqlite3"
	// DriverPostgres selects a PostgreSQL server
	DriverPostgres = "postgres"
)

// Config describes how to reach the database
type Config struct {
	Driver string
	DSN    string
}

// DefaultConfig stores everything in data/vocabquiz.db
func DefaultConfig() Config {
	return Config{
		Driver: DriverSQLite,
		DSN:    filepath.Join("data", "vocabquiz.db"),
	}
}

// Connect opens the database and creates missing tables
func Connect(cfg Config) (*sqlx.DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}

	switch cfg.Driver {
	case DriverSQLite:
		// Create the data directory for file databases
		if cfg.DSN != ":memory:" && !strings.HasPrefix(cfg.DSN, "file:") {
			if dir := filepath.Dir(cfg.DSN); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return nil, errors.Wrap(err, "failed to create data directory")
				}
			}
		}
	case DriverPostgres:
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Connect(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if cfg.Driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "failed to enable foreign keys")
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == DriverPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	statements := []struct {
		table string
		ddl   string
	}{
		{"vocab_items", `
			CREATE TABLE IF NOT EXISTS vocab_items (
				id TEXT PRIMARY KEY,
				term TEXT NOT NULL UNIQUE,
				definition TEXT NOT NULL,
				kind TEXT NOT NULL,
				category TEXT NOT NULL DEFAULT '',
				position INTEGER NOT NULL
			)`},
		{"bookmarks", `
			CREATE TABLE IF NOT EXISTS bookmarks (
				owner TEXT NOT NULL,
				term TEXT NOT NULL,
				position INTEGER NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (owner, term)
			)`},
		{"session_results", `
			CREATE TABLE IF NOT EXISTS session_results (
				id ` + serial + `,
				owner TEXT NOT NULL,
				mode TEXT NOT NULL,
				total_items INTEGER NOT NULL DEFAULT 0,
				correct INTEGER NOT NULL DEFAULT 0,
				hinted INTEGER NOT NULL DEFAULT 0,
				accuracy REAL NOT NULL DEFAULT 0,
				best_streak INTEGER NOT NULL DEFAULT 0,
				finished_at TIMESTAMP NOT NULL
			)`},
	}

	for _, st := range statements {
		if _, err := db.Exec(st.ddl); err != nil {
			return errors.Wrapf(err, "failed to create %s table", st.table)
		}
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_session_results_owner ON session_results (owner, finished_at)`); err != nil {
		return errors.Wrap(err, "failed to create session_results index")
	}
	return nil
}
