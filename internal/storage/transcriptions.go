package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/callqa/slangcheck/internal/common"
	"github.com/callqa/slangcheck/internal/model"
)

// SaveTranscriptions saves imported call transcriptions. A record whose call
// ID is already present replaces the stored transcript and human grade, so
// re-importing a corrected dataset is safe.
func (s *SQLiteStorage) SaveTranscriptions(ctx context.Context, records []model.Transcription) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTranscriptions(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transcriptions (call_id, transcript, human_grade) VALUES (?, ?, ?)
		ON CONFLICT(call_id) DO UPDATE SET
			transcript = excluded.transcript,
			human_grade = excluded.human_grade
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.CallID, rec.Transcript, rec.HumanGrade); err != nil {
			return fmt.Errorf("failed to save transcription for call %d: %w", rec.CallID, err)
		}
	}

	return tx.Commit()
}

// GetTranscription retrieves a stored transcription by call ID.
func (s *SQLiteStorage) GetTranscription(ctx context.Context, callID int64) (*model.Transcription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var rec model.Transcription
	err := s.db.QueryRowContext(ctx, `
		SELECT call_id, transcript, human_grade, imported_at FROM transcriptions WHERE call_id = ?
	`, callID).Scan(&rec.CallID, &rec.Transcript, &rec.HumanGrade, &rec.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transcription for call %d: %w", callID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcription: %w", err)
	}
	return &rec, nil
}

// ListTranscriptions returns stored transcriptions ordered by call ID.
// limit <= 0 means no limit.
func (s *SQLiteStorage) ListTranscriptions(ctx context.Context, limit, offset int) ([]model.Transcription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT call_id, transcript, human_grade, imported_at FROM transcriptions ORDER BY call_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	return s.queryTranscriptions(ctx, query, args...)
}

// ListUnprocessed returns transcriptions that have no evaluation yet, ordered
// by call ID. The join keeps already-processed rows out without loading their
// IDs into memory. limit <= 0 means no limit.
func (s *SQLiteStorage) ListUnprocessed(ctx context.Context, limit int) ([]model.Transcription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT t.call_id, t.transcript, t.human_grade, t.imported_at
		FROM transcriptions t
		LEFT JOIN evaluations e ON t.call_id = e.call_id
		WHERE e.call_id IS NULL
		ORDER BY t.call_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return s.queryTranscriptions(ctx, query, args...)
}

func (s *SQLiteStorage) queryTranscriptions(ctx context.Context, query string, args ...any) ([]model.Transcription, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.Transcription
	for rows.Next() {
		var rec model.Transcription
		if err := rows.Scan(&rec.CallID, &rec.Transcript, &rec.HumanGrade, &rec.ImportedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcription: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transcriptions: %w", err)
	}
	return records, nil
}

// TotalTranscriptionCount returns the number of stored transcriptions.
func (s *SQLiteStorage) TotalTranscriptionCount(ctx context.Context) (int, error) {
	return s.countRow(ctx, `SELECT COUNT(*) FROM transcriptions`)
}

// UnprocessedCount returns the number of transcriptions without an evaluation.
func (s *SQLiteStorage) UnprocessedCount(ctx context.Context) (int, error) {
	return s.countRow(ctx, `
		SELECT COUNT(*)
		FROM transcriptions t
		LEFT JOIN evaluations e ON t.call_id = e.call_id
		WHERE e.call_id IS NULL`)
}

func (s *SQLiteStorage) countRow(ctx context.Context, query string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}
