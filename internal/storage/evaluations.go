package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/callqa/slangcheck/internal/common"
	"github.com/callqa/slangcheck/internal/model"
	"github.com/callqa/slangcheck/internal/service"
)

// SaveEvaluation persists a finished evaluation. Findings and per-occurrence
// references are stored as JSON alongside the flat rubric columns.
func (s *SQLiteStorage) SaveEvaluation(ctx context.Context, eval *model.Evaluation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEvaluation(eval); err != nil {
		return err
	}

	findingsJSON, err := json.Marshal(eval.Findings)
	if err != nil {
		return fmt.Errorf("failed to marshal findings: %w", err)
	}
	referencesJSON, err := json.Marshal(eval.References)
	if err != nil {
		return fmt.Errorf("failed to marshal references: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (
			transcription_id, call_id, grade, score, max_score, criteria, passed,
			explanation, improvement_suggestion, findings, found_references,
			context, original_transcription
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		eval.TranscriptionID, eval.CallID, eval.Grade, eval.Score, eval.MaxScore,
		eval.Criteria, eval.Passed, eval.Explanation, eval.ImprovementSuggestion,
		string(findingsJSON), string(referencesJSON), eval.Context, eval.Transcript,
	)
	if err != nil {
		return fmt.Errorf("failed to save evaluation for call %d: %w", eval.CallID, err)
	}
	return nil
}

// GetEvaluationByCallID retrieves the stored evaluation for a call.
func (s *SQLiteStorage) GetEvaluationByCallID(ctx context.Context, callID int64) (*model.Evaluation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		eval           model.Evaluation
		findingsJSON   string
		referencesJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT transcription_id, call_id, grade, score, max_score, criteria, passed,
		       explanation, improvement_suggestion, findings, found_references,
		       context, original_transcription, created_at
		FROM evaluations WHERE call_id = ?
	`, callID).Scan(
		&eval.TranscriptionID, &eval.CallID, &eval.Grade, &eval.Score, &eval.MaxScore,
		&eval.Criteria, &eval.Passed, &eval.Explanation, &eval.ImprovementSuggestion,
		&findingsJSON, &referencesJSON, &eval.Context, &eval.Transcript, &eval.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("evaluation for call %d: %w", callID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}

	if err := json.Unmarshal([]byte(findingsJSON), &eval.Findings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal findings: %w", err)
	}
	if err := json.Unmarshal([]byte(referencesJSON), &eval.References); err != nil {
		return nil, fmt.Errorf("failed to unmarshal references: %w", err)
	}
	return &eval, nil
}

// MaxTranscriptionID returns the highest transcription ID assigned so far, or
// zero when no evaluations exist.
func (s *SQLiteStorage) MaxTranscriptionID(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var maxID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(transcription_id), 0) FROM evaluations`,
	).Scan(&maxID)
	if err != nil {
		return 0, fmt.Errorf("failed to get max transcription ID: %w", err)
	}
	return maxID, nil
}

// EvaluationStats summarizes stored evaluations.
func (s *SQLiteStorage) EvaluationStats(ctx context.Context) (*service.EvaluationStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var stats service.EvaluationStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN passed THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN passed THEN 0 ELSE 1 END), 0)
		FROM evaluations
	`).Scan(&stats.Total, &stats.Passed, &stats.Failed)
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation stats: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN e.grade = t.human_grade THEN 1 ELSE 0 END), 0)
		FROM evaluations e
		JOIN transcriptions t ON t.call_id = e.call_id
		WHERE t.human_grade != ''
	`).Scan(&stats.HumanGraded, &stats.AgreeWithHuman)
	if err != nil {
		return nil, fmt.Errorf("failed to get human agreement stats: %w", err)
	}
	return &stats, nil
}
