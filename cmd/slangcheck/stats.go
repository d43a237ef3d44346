package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/callqa/slangcheck/internal/cli"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store and evaluation statistics",
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	db, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(db)

	total, err := db.TotalTranscriptionCount(ctx)
	if err != nil {
		return err
	}
	unprocessed, err := db.UnprocessedCount(ctx)
	if err != nil {
		return err
	}
	evalStats, err := db.EvaluationStats(ctx)
	if err != nil {
		return err
	}

	rows := [][]string{
		{"Transcriptions stored", fmt.Sprintf("%d", total)},
		{"Unprocessed", fmt.Sprintf("%d", unprocessed)},
		{"Evaluations", fmt.Sprintf("%d", evalStats.Total)},
		{"Passed", fmt.Sprintf("%d", evalStats.Passed)},
		{"Failed", fmt.Sprintf("%d", evalStats.Failed)},
	}
	if evalStats.Total > 0 {
		rows = append(rows, []string{"Pass rate",
			fmt.Sprintf("%.1f%%", 100*float64(evalStats.Passed)/float64(evalStats.Total))})
	}
	if evalStats.HumanGraded > 0 {
		rows = append(rows, []string{"Agreement with human grades",
			fmt.Sprintf("%.1f%% (%d/%d)",
				100*float64(evalStats.AgreeWithHuman)/float64(evalStats.HumanGraded),
				evalStats.AgreeWithHuman, evalStats.HumanGraded)})
	}

	fmt.Println(cli.FormatTitle("slangcheck store"))
	fmt.Println(cli.RenderTable(
		[]string{"Metric", "Value"},
		rows,
		[]cli.ColumnAlignment{cli.AlignLeft, cli.AlignRight},
	))
	return nil
}
