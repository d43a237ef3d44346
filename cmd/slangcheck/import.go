package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/callqa/slangcheck/internal/cli"
	"github.com/callqa/slangcheck/internal/model"
)

// importRecord mirrors one entry of the exported transcript dataset.
type importRecord struct {
	Transcription string `json:"transcription"`
	HumanGrade    string `json:"human_grade"`
	CallID        int64  `json:"call_id"`
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import call transcriptions from a JSON dataset",
		Long: `Import transcriptions into the local store from a JSON array of
{call_id, transcription, human_grade} records. Re-importing a call ID
replaces its stored transcript and grade.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}

	var records []importRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse dataset: %w", err)
	}
	if len(records) == 0 {
		fmt.Println(cli.FormatWarning("Dataset contains no records"))
		return nil
	}

	transcriptions := make([]model.Transcription, 0, len(records))
	skipped := 0
	for _, rec := range records {
		if rec.CallID <= 0 {
			skipped++
			continue
		}
		transcriptions = append(transcriptions, model.Transcription{
			CallID:     rec.CallID,
			Transcript: rec.Transcription,
			HumanGrade: rec.HumanGrade,
		})
	}
	if len(transcriptions) == 0 {
		return fmt.Errorf("dataset contains no records with a valid call_id")
	}

	db, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(db)

	if err := db.SaveTranscriptions(ctx, transcriptions); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d transcriptions", len(transcriptions))))
	if skipped > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("Skipped %d records without a valid call_id", skipped)))
	}
	return nil
}
