// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/callqa/slangcheck/internal/model"
)

// Storage defines the contract for the local persistence layer: imported
// transcriptions on one side, finished evaluations on the other.
type Storage interface {
	// Transcription operations
	SaveTranscriptions(ctx context.Context, records []model.Transcription) error
	GetTranscription(ctx context.Context, callID int64) (*model.Transcription, error)
	ListTranscriptions(ctx context.Context, limit, offset int) ([]model.Transcription, error)
	ListUnprocessed(ctx context.Context, limit int) ([]model.Transcription, error)
	TotalTranscriptionCount(ctx context.Context) (int, error)
	UnprocessedCount(ctx context.Context) (int, error)

	// Evaluation operations
	SaveEvaluation(ctx context.Context, eval *model.Evaluation) error
	GetEvaluationByCallID(ctx context.Context, callID int64) (*model.Evaluation, error)
	MaxTranscriptionID(ctx context.Context) (int64, error)
	EvaluationStats(ctx context.Context) (*EvaluationStats, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// AlternateSource fetches the independently produced transcription of a call
// for cross-verification. Implementations return ("", nil) when no alternate
// transcript exists; errors are tolerated by the engine's fail-open rule.
type AlternateSource interface {
	FetchTranscript(ctx context.Context, callID int64) (string, error)
}

// EvaluationStats summarizes stored evaluations. HumanGraded counts calls
// that carry a reviewer grade in the imported dataset; AgreeWithHuman counts
// how many of those the engine graded the same way.
type EvaluationStats struct {
	Total          int
	Passed         int
	Failed         int
	HumanGraded    int
	AgreeWithHuman int
}

// CompletionStats shows the results of a batch evaluation run.
type CompletionStats struct {
	Duration            time.Duration
	Processed           int
	PassedCalls         int
	FailedCalls         int
	Skipped             int
	LastTranscriptionID int64
}
