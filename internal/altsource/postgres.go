// Package altsource provides access to the secondary transcription database
// used for cross-verification. Each call may have an independently produced
// transcript there; the engine compares flagged phrases against it.
package altsource

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/callqa/slangcheck/internal/service"
)

// DB is the database interface used by [PostgresSource]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresSource is a [service.AlternateSource] backed by the secondary
// transcription PostgreSQL database. It is read-only: the table is owned by
// the audio processing pipeline, not by this tool.
type PostgresSource struct {
	db DB
}

// Compile-time interface check.
var _ service.AlternateSource = (*PostgresSource)(nil)

// NewPostgresSource creates a source that uses the given connection or pool.
func NewPostgresSource(db DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// NewPool opens a connection pool to the alternate transcription database.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("altsource: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("altsource: ping: %w", err)
	}
	return pool, nil
}

// FetchTranscript returns the alternate transcript for a call, or ("", nil)
// when none exists. Errors are returned as-is; the engine's fail-open rule
// decides what a failed lookup means for scoring.
func (s *PostgresSource) FetchTranscript(ctx context.Context, callID int64) (string, error) {
	const query = `SELECT final_transcript FROM audio_file_processing_data WHERE call_id = $1`

	var transcript *string
	err := s.db.QueryRow(ctx, query, callID).Scan(&transcript)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("altsource: fetch transcript for call %d: %w", callID, err)
	}
	if transcript == nil {
		return "", nil
	}
	return *transcript, nil
}
