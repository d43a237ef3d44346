package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/callqa/slangcheck/internal/cli"
	"github.com/callqa/slangcheck/internal/common"
	"github.com/callqa/slangcheck/internal/engine"
	"github.com/callqa/slangcheck/internal/model"
	"github.com/callqa/slangcheck/internal/runner"
	"github.com/callqa/slangcheck/internal/service"
)

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score stored transcriptions for slang usage",
		Long: `Score imported call transcriptions against the slang rubric.

By default this processes every transcription that has no evaluation yet,
in call-ID order, and persists one evaluation per call. Use --limit for a
bounded run or --call-id to inspect a single call in detail.

Examples:
  slangcheck evaluate                 # Evaluate all unprocessed calls
  slangcheck evaluate --limit 10      # Evaluate ten calls (test run)
  slangcheck evaluate --call-id 4211  # Evaluate one call, print the trace
  slangcheck evaluate --process-all   # Re-evaluate already-processed calls too`,
		RunE: runEvaluate,
	}

	cmd.Flags().IntP("limit", "l", 0, "Maximum number of calls to process (0 = all)")
	cmd.Flags().IntP("batch-size", "b", 10, "Records fetched per storage round-trip")
	cmd.Flags().Int64("start-id", 0, "Starting transcription ID (0 = continue from last used)")
	cmd.Flags().Int64("call-id", 0, "Evaluate a single call and print the decision trace")
	cmd.Flags().Bool("process-all", false, "Process calls even if already evaluated")
	cmd.Flags().Bool("dry-run", false, "Evaluate without saving results")
	cmd.Flags().Bool("no-question-context", false, "Disable the question-context exemption for casual affirmatives")
	cmd.Flags().Bool("no-cross-verify", false, "Disable cross-verification against the alternate transcription source")

	_ = viper.BindPFlag("evaluation.limit", cmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("evaluation.batch_size", cmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("evaluation.start_id", cmd.Flags().Lookup("start-id"))
	_ = viper.BindPFlag("evaluation.call_id", cmd.Flags().Lookup("call-id"))
	_ = viper.BindPFlag("evaluation.process_all", cmd.Flags().Lookup("process-all"))
	_ = viper.BindPFlag("evaluation.dry_run", cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("evaluation.no_question_context", cmd.Flags().Lookup("no-question-context"))
	_ = viper.BindPFlag("evaluation.no_cross_verify", cmd.Flags().Lookup("no-cross-verify"))

	return cmd
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	db, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(db)

	opts := engine.DefaultOptions()
	opts.QuestionContext = !viper.GetBool("evaluation.no_question_context")
	opts.CrossVerification = !viper.GetBool("evaluation.no_cross_verify")
	if phrases := viper.GetStringSlice("evaluation.verified_phrases"); len(phrases) > 0 {
		opts.VerifiedPhrases = phrases
	}

	var alt service.AlternateSource
	if opts.CrossVerification {
		var cleanup func()
		alt, cleanup, err = openAlternateSource(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		if alt == nil {
			slog.Warn("No alternate transcription source configured; flagged phrases will count without corroboration")
		}
	}

	evaluator, err := engine.New(model.DefaultRuleSet(), alt, opts)
	if err != nil {
		return err
	}

	if callID := viper.GetInt64("evaluation.call_id"); callID > 0 {
		return evaluateSingle(ctx, db, evaluator, callID)
	}

	cfg := runner.Config{
		BatchSize:  viper.GetInt("evaluation.batch_size"),
		Limit:      viper.GetInt("evaluation.limit"),
		StartID:    viper.GetInt64("evaluation.start_id"),
		ProcessAll: viper.GetBool("evaluation.process_all"),
		DryRun:     viper.GetBool("evaluation.dry_run"),
	}

	unprocessed, err := db.UnprocessedCount(ctx)
	if err != nil {
		return err
	}
	total, err := db.TotalTranscriptionCount(ctx)
	if err != nil {
		return err
	}
	if total == 0 {
		return common.NewUserError("nothing to evaluate; run 'slangcheck import' first",
			common.ErrNoTranscriptions)
	}

	target := unprocessed
	if cfg.ProcessAll {
		target = total
	}
	if cfg.Limit > 0 && cfg.Limit < target {
		target = cfg.Limit
	}

	fmt.Println(cli.FormatTitle("Evaluating transcriptions"))
	fmt.Println(cli.FormatSubtle(fmt.Sprintf("%d stored, %d unprocessed, target %d", total, unprocessed, target)))

	bar := cli.NewProgressBar(target, "Evaluating calls...", os.Stderr)
	run := runner.New(db, evaluator, cfg)
	run.OnResult = func(_ *model.Evaluation, _ engine.Trace) {
		_ = bar.Add(1)
	}

	stats, err := run.Run(ctx)
	if stats != nil {
		printCompletion(stats, cfg.DryRun)
	}
	return err
}

func evaluateSingle(ctx context.Context, db service.Storage, evaluator *engine.Evaluator, callID int64) error {
	rec, err := db.GetTranscription(ctx, callID)
	if err != nil {
		return err
	}

	eval, trace := evaluator.Evaluate(ctx, rec.CallID, rec.Transcript)

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Call %d", callID)))
	if eval.Passed {
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("PASSED (%d/%d)", eval.Score, eval.MaxScore)))
	} else {
		fmt.Println(cli.FormatError(fmt.Sprintf("FAILED (%d/%d)", eval.Score, eval.MaxScore)))
	}
	fmt.Println(eval.Explanation)

	if len(trace) > 0 {
		fmt.Println(cli.FormatTitle("Decision trace"))
		fmt.Println(cli.FormatSubtle(trace.String()))
	}
	return nil
}

func printCompletion(stats *service.CompletionStats, dryRun bool) {
	fmt.Println()
	fmt.Println(cli.FormatTitle("Processing complete"))
	fmt.Println(cli.RenderTable(
		[]string{"Metric", "Value"},
		[][]string{
			{"Processed", fmt.Sprintf("%d", stats.Processed)},
			{"Passed", fmt.Sprintf("%d", stats.PassedCalls)},
			{"Failed", fmt.Sprintf("%d", stats.FailedCalls)},
			{"Skipped (empty)", fmt.Sprintf("%d", stats.Skipped)},
			{"Duration", stats.Duration.Round(durationPrecision).String()},
		},
		[]cli.ColumnAlignment{cli.AlignLeft, cli.AlignRight},
	))
	if stats.Processed > 0 && !dryRun {
		fmt.Println(cli.FormatSubtle(fmt.Sprintf("Last transcription ID used: %d", stats.LastTranscriptionID)))
	}
	if dryRun {
		fmt.Println(cli.FormatWarning("Dry run: no evaluations were saved"))
	}
}
