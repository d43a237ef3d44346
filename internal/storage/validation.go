package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/callqa/slangcheck/internal/common"
	"github.com/callqa/slangcheck/internal/model"
)

// Validation errors.
var (
	ErrNilContext           = errors.New("context cannot be nil")
	ErrEmptyString          = errors.New("string parameter cannot be empty")
	ErrNilParameter         = errors.New("parameter cannot be nil")
	ErrEmptySlice           = errors.New("slice cannot be empty")
	ErrInvalidTranscription = errors.New("invalid transcription")
	ErrInvalidEvaluation    = errors.New("invalid evaluation")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTranscriptions validates a slice of transcription records.
func validateTranscriptions(records []model.Transcription) error {
	if records == nil {
		return fmt.Errorf("%w: records", ErrNilParameter)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: records", ErrEmptySlice)
	}
	seen := make(map[int64]bool, len(records))
	for i, rec := range records {
		if rec.CallID <= 0 {
			return fmt.Errorf("record at index %d: %w: missing call ID", i, ErrInvalidTranscription)
		}
		if seen[rec.CallID] {
			return fmt.Errorf("record at index %d: %w: call %d appears twice in batch", i, common.ErrDuplicateEntry, rec.CallID)
		}
		seen[rec.CallID] = true
	}
	return nil
}

// validateEvaluation validates an evaluation before persistence.
func validateEvaluation(eval *model.Evaluation) error {
	if eval == nil {
		return fmt.Errorf("%w: evaluation", ErrNilParameter)
	}
	if eval.CallID <= 0 {
		return fmt.Errorf("%w: missing call ID", ErrInvalidEvaluation)
	}
	if eval.TranscriptionID <= 0 {
		return fmt.Errorf("%w: missing transcription ID", ErrInvalidEvaluation)
	}
	if eval.Score != 0 && eval.Score != model.MaxSlangScore {
		return fmt.Errorf("%w: score must be 0 or %d", ErrInvalidEvaluation, model.MaxSlangScore)
	}
	return nil
}
