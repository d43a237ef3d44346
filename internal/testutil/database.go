// Package testutil provides shared test helpers for the slangcheck project.
package testutil

import (
	"context"
	"testing"

	"github.com/callqa/slangcheck/internal/model"
	"github.com/callqa/slangcheck/internal/storage"
)

// SetupTestDB creates a migrated in-memory SQLite store and registers cleanup.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SeedTranscriptions stores raw transcripts keyed by call ID.
func SeedTranscriptions(t *testing.T, store *storage.SQLiteStorage, transcripts map[int64]string) {
	t.Helper()

	records := make([]model.Transcription, 0, len(transcripts))
	for callID, raw := range transcripts {
		records = append(records, model.Transcription{CallID: callID, Transcript: raw})
	}

	if err := store.SaveTranscriptions(context.Background(), records); err != nil {
		t.Fatalf("failed to seed transcriptions: %v", err)
	}
}

// StubAlternateSource is a canned AlternateSource for engine and CLI tests.
type StubAlternateSource struct {
	Transcripts map[int64]string
	Err         error
	Fetches     int
}

// FetchTranscript returns the canned transcript for the call, or the canned
// error, counting every invocation.
func (s *StubAlternateSource) FetchTranscript(_ context.Context, callID int64) (string, error) {
	s.Fetches++
	if s.Err != nil {
		return "", s.Err
	}
	return s.Transcripts[callID], nil
}
