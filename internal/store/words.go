package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/wordtally/internal/catalog"
	"github.com/verte-zerg/wordtally/internal/model"
)

// SeedCatalog inserts words when the catalog is empty and returns how many were added.
// A non-empty catalog is left as is.
func (s *Store) SeedCatalog(ctx context.Context, words []model.Word) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer rollback(tx)

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&count); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	inserted := 0
	seen := map[string]struct{}{}
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		w.Text = text
		w.Active = true
		if err := insertWord(ctx, tx, w); err != nil {
			return 0, err
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// AddWord inserts a single active word with its relations.
func (s *Store) AddWord(ctx context.Context, w model.Word) (model.Word, error) {
	w.Text = strings.TrimSpace(w.Text)
	if w.Text == "" {
		return model.Word{}, fmt.Errorf("word must not be empty")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Word{}, err
	}
	defer rollback(tx)

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM words WHERE word = ?`, w.Text).Scan(&exists); err != nil {
		return model.Word{}, err
	}
	if exists > 0 {
		return model.Word{}, fmt.Errorf("%w: %q", ErrWordExists, w.Text)
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	if strings.TrimSpace(w.Category) == "" {
		w.Category = catalog.DefaultCategory
	}
	w.Active = true
	if err := insertWord(ctx, tx, w); err != nil {
		return model.Word{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Word{}, err
	}
	return w, nil
}

func insertWord(ctx context.Context, tx *sql.Tx, w model.Word) error {
	id := w.ID
	if id == "" {
		id = uuid.NewString()
	}
	category := strings.TrimSpace(w.Category)
	if category == "" {
		category = catalog.DefaultCategory
	}
	createdAt := w.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO words (id, word, category, is_active, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, w.Text, category, boolToInt(w.Active), formatTime(createdAt),
	); err != nil {
		return fmt.Errorf("failed to insert word %q: %w", w.Text, err)
	}
	for i, syn := range w.Synonyms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO synonyms (id, word_id, synonym, position) VALUES (?, ?, ?, ?)`,
			uuid.NewString(), id, syn, i,
		); err != nil {
			return fmt.Errorf("failed to insert synonym of %q: %w", w.Text, err)
		}
	}
	for i, sim := range w.Similar {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO similar_words (id, word_id, similar_word, position) VALUES (?, ?, ?, ?)`,
			uuid.NewString(), id, sim, i,
		); err != nil {
			return fmt.Errorf("failed to insert similar word of %q: %w", w.Text, err)
		}
	}
	return nil
}

// ListWords returns catalog words in insertion order with their relations.
func (s *Store) ListWords(ctx context.Context, activeOnly bool) ([]model.Word, error) {
	query := `SELECT id, word, category, is_active, created_at FROM words`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY created_at ASC, rowid ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var words []model.Word
	index := map[string]int{}
	for rows.Next() {
		var w model.Word
		var active int
		var createdAt string
		if err := rows.Scan(&w.ID, &w.Text, &w.Category, &active, &createdAt); err != nil {
			return nil, err
		}
		w.Active = active != 0
		if w.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		index[w.ID] = len(words)
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return words, nil
	}

	if err := s.loadRelations(ctx, `SELECT word_id, synonym FROM synonyms ORDER BY word_id, position`, func(id, value string) {
		if i, ok := index[id]; ok {
			words[i].Synonyms = append(words[i].Synonyms, value)
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to load synonyms: %w", err)
	}
	if err := s.loadRelations(ctx, `SELECT word_id, similar_word FROM similar_words ORDER BY word_id, position`, func(id, value string) {
		if i, ok := index[id]; ok {
			words[i].Similar = append(words[i].Similar, value)
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to load similar words: %w", err)
	}
	return words, nil
}

func (s *Store) loadRelations(ctx context.Context, query string, add func(id, value string)) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer closeRows(rows)
	for rows.Next() {
		var id, value string
		if err := rows.Scan(&id, &value); err != nil {
			return err
		}
		add(id, value)
	}
	return rows.Err()
}

// LoadPool builds a catalog pool from the active words.
func (s *Store) LoadPool(ctx context.Context) (*catalog.Pool, error) {
	words, err := s.ListWords(ctx, true)
	if err != nil {
		return nil, err
	}
	return catalog.New(words), nil
}

// SetWordActive enables or disables a word for future sessions.
func (s *Store) SetWordActive(ctx context.Context, word string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE words SET is_active = ? WHERE word = ?`, boolToInt(active), strings.TrimSpace(word))
	if err != nil {
		return err
	}
	return expectAffected(res, "word", word)
}

// DeleteWord removes a word and its relations.
func (s *Store) DeleteWord(ctx context.Context, word string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM words WHERE word = ?`, strings.TrimSpace(word)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: word %q", ErrNotFound, word)
	}
	if err != nil {
		return err
	}
	for _, stmt := range []string{
		`DELETE FROM synonyms WHERE word_id = ?`,
		`DELETE FROM similar_words WHERE word_id = ?`,
		`DELETE FROM words WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func expectAffected(res sql.Result, kind, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %q", ErrNotFound, kind, key)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
