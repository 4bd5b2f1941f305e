// Package store handles SQLite persistence for the word catalog and training records.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

var (
	// ErrNotFound is returned when a word or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrWordExists is returned when adding a word that is already in the catalog.
	ErrWordExists = errors.New("word already exists")
)

// Timestamps are stored fixed-width in UTC so that text comparison orders them.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for catalog and record data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer avoids SQLITE_BUSY between the session sink and the CLI.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS words (
			id TEXT PRIMARY KEY,
			word TEXT UNIQUE NOT NULL,
			category TEXT NOT NULL DEFAULT 'general',
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS synonyms (
			id TEXT PRIMARY KEY,
			word_id TEXT NOT NULL REFERENCES words(id) ON DELETE CASCADE,
			synonym TEXT NOT NULL,
			position INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS similar_words (
			id TEXT PRIMARY KEY,
			word_id TEXT NOT NULL REFERENCES words(id) ON DELETE CASCADE,
			similar_word TEXT NOT NULL,
			position INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS training_records (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			table_words TEXT NOT NULL,
			accuracy REAL NOT NULL,
			correct_count INTEGER NOT NULL,
			total_time INTEGER NOT NULL,
			avg_time REAL NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS training_details (
			id TEXT PRIMARY KEY,
			record_id TEXT NOT NULL REFERENCES training_records(id) ON DELETE CASCADE,
			question_index INTEGER NOT NULL,
			question_words TEXT NOT NULL,
			user_answer INTEGER,
			correct_answer INTEGER NOT NULL,
			time_spent INTEGER NOT NULL,
			is_correct INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_words_active ON words(is_active);`,
		`CREATE INDEX IF NOT EXISTS idx_synonyms_word ON synonyms(word_id);`,
		`CREATE INDEX IF NOT EXISTS idx_similar_words_word ON similar_words(word_id);`,
		`CREATE INDEX IF NOT EXISTS idx_training_records_user ON training_records(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_training_records_created ON training_records(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_training_details_record ON training_details(record_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func encodeWords(words []string) (string, error) {
	if words == nil {
		words = []string{}
	}
	data, err := json.Marshal(words)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeWords(raw string) ([]string, error) {
	var words []string
	if err := json.Unmarshal([]byte(raw), &words); err != nil {
		return nil, fmt.Errorf("failed to decode word list: %w", err)
	}
	return words, nil
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}

func rollback(tx *sql.Tx) {
	if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
		// Best-effort rollback.
		_ = rerr
	}
}
