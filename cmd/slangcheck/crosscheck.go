package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/callqa/slangcheck/internal/cli"
	"github.com/callqa/slangcheck/internal/common"
	"github.com/callqa/slangcheck/internal/engine"
	"github.com/callqa/slangcheck/internal/model"
)

func crosscheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crosscheck",
		Short: "Audit a phrase across both transcription sources",
		Long: `Find stored calls where the agent portion contains a phrase, then check
whether the alternate transcription of the same call corroborates it.
Calls flagged by only one source are likely transcription artifacts.

Examples:
  slangcheck crosscheck                       # Audit "bye-bye" everywhere
  slangcheck crosscheck --phrase "all righty" # Audit a different phrase
  slangcheck crosscheck --limit 200           # Check the first 200 calls`,
		RunE: runCrosscheck,
	}

	cmd.Flags().String("phrase", "bye-bye", "Phrase to audit")
	cmd.Flags().IntP("limit", "l", 0, "Maximum number of calls to check (0 = all)")

	_ = viper.BindPFlag("crosscheck.phrase", cmd.Flags().Lookup("phrase"))
	_ = viper.BindPFlag("crosscheck.limit", cmd.Flags().Lookup("limit"))

	return cmd
}

func runCrosscheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	phrase := viper.GetString("crosscheck.phrase")
	limit := viper.GetInt("crosscheck.limit")

	db, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(db)

	alt, cleanup, err := openAlternateSource(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	if alt == nil {
		return common.NewUserError("crosscheck requires an alternate transcription source; set altsource.dsn",
			common.ErrMissingConfig)
	}

	records, err := db.ListTranscriptions(ctx, limit, 0)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Cross-checking '%s' across %d calls", phrase, len(records))))

	var (
		flagged   int
		confirmed int
		missing   int
		rows      [][]string
	)
	for _, rec := range records {
		occs := engine.FindPhrase(rec.Transcript, phrase)
		if len(occs) == 0 {
			continue
		}
		flagged++

		altTranscript, err := alt.FetchTranscript(ctx, rec.CallID)
		if err != nil {
			return fmt.Errorf("failed to fetch alternate transcript for call %d: %w", rec.CallID, err)
		}

		verdict := verdictFor(altTranscript, phrase)
		switch verdict {
		case "confirmed":
			confirmed++
		case "no alternate":
			missing++
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", rec.CallID),
			fmt.Sprintf("%d", len(occs)),
			firstContext(occs),
			verdict,
		})
	}

	if flagged == 0 {
		fmt.Println(cli.FormatSubtle(fmt.Sprintf("No calls contain '%s' in agent speech", phrase)))
		return nil
	}

	fmt.Println(cli.RenderTable(
		[]string{"Call ID", "Hits", "Context", "Alternate source"},
		rows,
		[]cli.ColumnAlignment{cli.AlignRight, cli.AlignRight, cli.AlignLeft, cli.AlignLeft},
	))
	fmt.Println(cli.FormatSubtle(fmt.Sprintf(
		"%d calls checked, %d flagged, %d confirmed, %d false positives, %d without alternate transcript",
		len(records), flagged, confirmed, flagged-confirmed-missing, missing)))
	return nil
}

func verdictFor(altTranscript, phrase string) string {
	if altTranscript == "" {
		return "no alternate"
	}
	if engine.CorroboratesPhrase(altTranscript, phrase) {
		return "confirmed"
	}
	return "false positive"
}

func firstContext(occs []model.MatchOccurrence) string {
	const maxContext = 48
	ctx := occs[0].Context
	if len(ctx) > maxContext {
		ctx = ctx[:maxContext] + "..."
	}
	return ctx
}
