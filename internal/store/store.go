// Package store persists submissions for the development backend in SQLite.
package store

import (
	"database/sql"
	"fmt"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS submissions (
	sequence        INTEGER PRIMARY KEY AUTOINCREMENT,
	id              TEXT NOT NULL UNIQUE,
	homework_id     TEXT NOT NULL,
	child_id        TEXT NOT NULL,
	score           INTEGER NOT NULL,
	percentage      INTEGER NOT NULL,
	total_questions INTEGER NOT NULL,
	answers_data    TEXT NOT NULL DEFAULT '{}',
	submission_type TEXT NOT NULL DEFAULT '',
	submitted_at    TIMESTAMP NOT NULL,
	UNIQUE (homework_id, child_id)
)`

// Store owns the database handle and hands out repositories.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn, applies pragmas and creates
// the schema if needed.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection and SQLite has a single writer.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Submissions returns a SubmissionRepo backed by this store.
func (s *Store) Submissions() SubmissionRepo {
	return &submissionRepo{db: s.db}
}

// applyPragmas configures SQLite for a single-process server.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
