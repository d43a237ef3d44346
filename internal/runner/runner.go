// Package runner drives batch evaluation: it pulls stored transcriptions,
// feeds them through the engine one call at a time, and persists the results.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/callqa/slangcheck/internal/engine"
	"github.com/callqa/slangcheck/internal/model"
	"github.com/callqa/slangcheck/internal/service"
)

// Config holds the batch-run options.
type Config struct {
	// BatchSize is how many records to fetch per storage round-trip.
	BatchSize int
	// Limit caps how many records are processed; 0 means all.
	Limit int
	// StartID seeds the transcription ID sequence; 0 means continue from
	// the highest stored ID.
	StartID int64
	// ProcessAll re-evaluates calls that already have an evaluation.
	ProcessAll bool
	// DryRun evaluates without persisting.
	DryRun bool
}

// DefaultConfig returns the default batch configuration.
func DefaultConfig() Config {
	return Config{BatchSize: 10}
}

// Runner evaluates stored transcriptions in batches. Calls are processed
// synchronously, one at a time, end to end.
type Runner struct {
	store     service.Storage
	evaluator *engine.Evaluator
	// OnResult, when set, is invoked after each evaluated call. Used by the
	// CLI for progress reporting.
	OnResult func(eval *model.Evaluation, trace engine.Trace)
	cfg      Config
}

// New creates a batch runner.
func New(store service.Storage, evaluator *engine.Evaluator, cfg Config) *Runner {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	return &Runner{store: store, evaluator: evaluator, cfg: cfg}
}

// Run processes unprocessed transcriptions (or all of them with ProcessAll)
// until the limit is reached or the store runs dry.
func (r *Runner) Run(ctx context.Context) (*service.CompletionStats, error) {
	start := time.Now()
	stats := &service.CompletionStats{}

	nextID := r.cfg.StartID
	if nextID == 0 {
		maxID, err := r.store.MaxTranscriptionID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to determine next transcription ID: %w", err)
		}
		nextID = maxID + 1
	}

	offset := 0
	for {
		if r.cfg.Limit > 0 && stats.Processed >= r.cfg.Limit {
			break
		}

		batch, err := r.nextBatch(ctx, &offset, stats)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		for _, rec := range batch {
			select {
			case <-ctx.Done():
				stats.Duration = time.Since(start)
				return stats, ctx.Err()
			default:
			}

			if rec.Transcript == "" {
				stats.Skipped++
				continue
			}

			eval, trace := r.evaluator.Evaluate(ctx, rec.CallID, rec.Transcript)
			eval.TranscriptionID = nextID

			logDecisions(rec.CallID, trace)

			if !r.cfg.DryRun {
				if err := r.store.SaveEvaluation(ctx, eval); err != nil {
					stats.Duration = time.Since(start)
					return stats, fmt.Errorf("failed to save evaluation for call %d: %w", rec.CallID, err)
				}
			}

			stats.Processed++
			stats.LastTranscriptionID = nextID
			if eval.Passed {
				stats.PassedCalls++
			} else {
				stats.FailedCalls++
			}
			nextID++

			if r.OnResult != nil {
				r.OnResult(eval, trace)
			}

			if r.cfg.Limit > 0 && stats.Processed >= r.cfg.Limit {
				break
			}
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// nextBatch fetches the next batch of records. In the normal mode the
// unprocessed set shrinks as evaluations are written, so the query only needs
// to page past skipped records, which stay at the front of the set; ProcessAll
// and DryRun walk their working set by offset, since nothing removes rows
// from it.
func (r *Runner) nextBatch(ctx context.Context, offset *int, stats *service.CompletionStats) ([]model.Transcription, error) {
	size := r.cfg.BatchSize
	if r.cfg.Limit > 0 && r.cfg.Limit-stats.Processed < size {
		size = r.cfg.Limit - stats.Processed
	}

	if r.cfg.ProcessAll {
		batch, err := r.store.ListTranscriptions(ctx, size, *offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list transcriptions: %w", err)
		}
		*offset += len(batch)
		return batch, nil
	}

	if r.cfg.DryRun {
		batch, err := r.listUnprocessedPaged(ctx, size, *offset)
		if err != nil {
			return nil, err
		}
		*offset += len(batch)
		return batch, nil
	}

	return r.listUnprocessedPaged(ctx, size, stats.Skipped)
}

// listUnprocessedPaged emulates offset pagination over the unprocessed set by
// over-fetching; dry runs never write, so the set is stable across fetches.
func (r *Runner) listUnprocessedPaged(ctx context.Context, size, offset int) ([]model.Transcription, error) {
	batch, err := r.store.ListUnprocessed(ctx, size+offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed transcriptions: %w", err)
	}
	if offset >= len(batch) {
		return nil, nil
	}
	return batch[offset:], nil
}

func logDecisions(callID int64, trace engine.Trace) {
	for _, event := range trace {
		slog.Debug("Evaluation decision",
			"call_id", callID,
			"kind", string(event.Kind),
			"phrase", event.Phrase,
			"line", event.LineIndex)
	}
}
