package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/wordtally/internal/model"
)

// SaveRecord stores a submitted session and its per-question details.
func (s *Store) SaveRecord(ctx context.Context, rec model.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	tableWords, err := encodeWords(rec.TableWords)
	if err != nil {
		return fmt.Errorf("failed to encode table words: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO training_records (id, user_id, difficulty, table_words, accuracy, correct_count, total_time, avg_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.UserID,
		string(rec.Difficulty),
		tableWords,
		rec.Accuracy,
		rec.CorrectCount,
		rec.TotalTime,
		rec.AvgTime,
		formatTime(rec.CreatedAt),
	); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	if len(rec.Details) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO training_details (id, record_id, question_index, question_words, user_answer, correct_answer, time_spent, is_correct)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, d := range rec.Details {
			words, err := encodeWords(d.QuestionWords)
			if err != nil {
				return fmt.Errorf("failed to encode question words: %w", err)
			}
			var answer sql.NullInt64
			if d.UserAnswer != nil {
				answer = sql.NullInt64{Int64: int64(*d.UserAnswer), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, uuid.NewString(), rec.ID, d.QuestionIndex, words, answer,
				d.CorrectAnswer, d.TimeSpent, boolToInt(d.IsCorrect)); err != nil {
				return fmt.Errorf("failed to insert detail %d: %w", d.QuestionIndex, err)
			}
		}
	}
	return tx.Commit()
}

func recordClauses(filter model.RecordFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, formatTime(*filter.Since))
	}
	if filter.Until != nil {
		clauses = append(clauses, "created_at < ?")
		args = append(args, formatTime(*filter.Until))
	}
	return strings.Join(clauses, " AND "), args
}

// ListRecords returns record summaries, newest first, and the total matching count
// before paging.
func (s *Store) ListRecords(ctx context.Context, filter model.RecordFilter) ([]model.RecordSummary, int, error) {
	where, args := recordClauses(filter)

	var total int
	if err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM training_records WHERE %s`, where), args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT id, user_id, difficulty, table_words, accuracy, correct_count, total_time, avg_time, created_at
		FROM training_records
		WHERE %s
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`, where)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer closeRows(rows)

	var records []model.RecordSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (model.RecordSummary, error) {
	var sum model.RecordSummary
	var difficulty, tableWords, createdAt string
	if err := row.Scan(&sum.ID, &sum.UserID, &difficulty, &tableWords, &sum.Accuracy, &sum.CorrectCount,
		&sum.TotalTime, &sum.AvgTime, &createdAt); err != nil {
		return model.RecordSummary{}, err
	}
	sum.Difficulty = model.Difficulty(difficulty)
	words, err := decodeWords(tableWords)
	if err != nil {
		return model.RecordSummary{}, err
	}
	sum.TableWords = words
	if sum.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.RecordSummary{}, err
	}
	return sum, nil
}

// GetRecord returns a record with its details ordered by question index.
func (s *Store) GetRecord(ctx context.Context, id string) (model.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, difficulty, table_words, accuracy, correct_count, total_time, avg_time, created_at
		 FROM training_records WHERE id = ?`, id)
	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, fmt.Errorf("%w: record %q", ErrNotFound, id)
	}
	if err != nil {
		return model.Record{}, err
	}
	rec := model.Record{
		ID:           sum.ID,
		UserID:       sum.UserID,
		Difficulty:   sum.Difficulty,
		TableWords:   sum.TableWords,
		Accuracy:     sum.Accuracy,
		CorrectCount: sum.CorrectCount,
		TotalTime:    sum.TotalTime,
		AvgTime:      sum.AvgTime,
		CreatedAt:    sum.CreatedAt,
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT question_index, question_words, user_answer, correct_answer, time_spent, is_correct
		 FROM training_details WHERE record_id = ? ORDER BY question_index ASC`, id)
	if err != nil {
		return model.Record{}, err
	}
	defer closeRows(rows)
	for rows.Next() {
		var d model.Detail
		var words string
		var answer sql.NullInt64
		var correct int
		if err := rows.Scan(&d.QuestionIndex, &words, &answer, &d.CorrectAnswer, &d.TimeSpent, &correct); err != nil {
			return model.Record{}, err
		}
		if d.QuestionWords, err = decodeWords(words); err != nil {
			return model.Record{}, err
		}
		if answer.Valid {
			v := int(answer.Int64)
			d.UserAnswer = &v
		}
		d.IsCorrect = correct != 0
		rec.Details = append(rec.Details, d)
	}
	if err := rows.Err(); err != nil {
		return model.Record{}, err
	}
	return rec, nil
}

// DeleteRecord removes a record and its details.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM training_details WHERE record_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM training_records WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := expectAffected(res, "record", id); err != nil {
		return err
	}
	return tx.Commit()
}

// UserStats aggregates the records of userID. The recent window covers the seven days
// before now.
func (s *Store) UserStats(ctx context.Context, userID string, now time.Time) (model.UserStats, error) {
	stats := model.UserStats{UserID: userID}

	var avgAcc, avgTotal, avgQuestion, bestAcc sql.NullFloat64
	var bestTime sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(accuracy), AVG(total_time), AVG(avg_time), MAX(accuracy), MIN(total_time)
		 FROM training_records WHERE user_id = ?`, userID,
	).Scan(&stats.Overall.Sessions, &avgAcc, &avgTotal, &avgQuestion, &bestAcc, &bestTime); err != nil {
		return model.UserStats{}, fmt.Errorf("failed to query overall stats: %w", err)
	}
	stats.Overall.AvgAccuracy = avgAcc.Float64
	stats.Overall.AvgTotalTime = avgTotal.Float64
	stats.Overall.AvgQuestionTime = avgQuestion.Float64
	stats.Overall.BestAccuracy = bestAcc.Float64
	stats.Overall.BestTime = int(bestTime.Int64)

	var recentAcc, recentTotal sql.NullFloat64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(accuracy), AVG(total_time)
		 FROM training_records WHERE user_id = ? AND created_at >= ?`,
		userID, formatTime(now.Add(-7*24*time.Hour)),
	).Scan(&stats.RecentWeek.Sessions, &recentAcc, &recentTotal); err != nil {
		return model.UserStats{}, fmt.Errorf("failed to query recent stats: %w", err)
	}
	stats.RecentWeek.AvgAccuracy = recentAcc.Float64
	stats.RecentWeek.AvgTotalTime = recentTotal.Float64

	rows, err := s.db.QueryContext(ctx,
		`SELECT difficulty, COUNT(*), AVG(accuracy)
		 FROM training_records WHERE user_id = ?
		 GROUP BY difficulty`, userID)
	if err != nil {
		return model.UserStats{}, fmt.Errorf("failed to query difficulty stats: %w", err)
	}
	defer closeRows(rows)
	byDifficulty := map[model.Difficulty]model.DifficultyStats{}
	for rows.Next() {
		var ds model.DifficultyStats
		var difficulty string
		var acc sql.NullFloat64
		if err := rows.Scan(&difficulty, &ds.Count, &acc); err != nil {
			return model.UserStats{}, err
		}
		ds.Difficulty = model.Difficulty(difficulty)
		ds.AvgAccuracy = acc.Float64
		byDifficulty[ds.Difficulty] = ds
	}
	if err := rows.Err(); err != nil {
		return model.UserStats{}, err
	}
	for _, d := range model.Difficulties {
		if ds, ok := byDifficulty[d]; ok {
			stats.ByDifficulty = append(stats.ByDifficulty, ds)
		}
	}
	return stats, nil
}
