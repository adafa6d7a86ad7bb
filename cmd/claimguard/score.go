package main

import (
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/claimguard/internal/common"
	"github.com/Veraticus/claimguard/internal/dataset"
	"github.com/Veraticus/claimguard/internal/model"
	"github.com/Veraticus/claimguard/internal/prediction"
)

// scoreLine is one JSON line of batch output.
type scoreLine struct {
	*resultView
	PatientID string `json:"patient_uuid,omitempty"`
	Error     string `json:"error,omitempty"`
	Row       int    `json:"row"`
}

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Batch-score the claims dataset",
		Long: `Score every row of the claims CSV with one model and write one JSON
object per row to stdout. Progress is reported on stderr.`,
		RunE: runScore,
	}

	cmd.Flags().String("model-type", string(model.ModelTabular), "model type used for every row")
	cmd.Flags().String("file", "", "CSV file to score (default: data.csv_path)")
	cmd.Flags().Int("limit", 0, "maximum rows to score (0 = all)")
	cmd.Flags().Bool("offline", true, "skip remote inference calls")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")

	return cmd
}

func runScore(cmd *cobra.Command, _ []string) error {
	modelType, _ := cmd.Flags().GetString("model-type")
	file, _ := cmd.Flags().GetString("file")
	limit, _ := cmd.Flags().GetInt("limit")
	offline, _ := cmd.Flags().GetBool("offline")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if file == "" {
		file = cfg.Data.CSVPath
	}

	table, err := dataset.Load(file, limit)
	if err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		slog.Warn("No rows to score", "file", file)
		return nil
	}

	dispatcher, _, err := newDispatcher(cmd.Context(), cfg, offline)
	if err != nil {
		return err
	}

	inputs := table.Inputs(modelType)
	bar := progressbar.NewOptions(len(inputs),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetVisibility(!noProgress),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Scoring claims..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	var failed int
	out := cmd.OutOrStdout()
	for i, in := range inputs {
		if err := cmd.Context().Err(); err != nil {
			return err
		}

		line := scoreLine{Row: i + 1, PatientID: in.PatientID}
		record, err := prediction.NewRecord(in)
		if err == nil {
			var result model.PredictionResult
			result, err = dispatcher.Predict(cmd.Context(), record)
			if err == nil {
				view := newResultView(result)
				line.resultView = &view
			}
		}
		if err != nil {
			failed++
			line.Error = err.Error()
			if msg, ok := common.UserMessage(err); ok {
				line.Error = msg
			}
		}

		if err := writeJSON(out, line, false); err != nil {
			return err
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	slog.Info("Scoring complete", "rows", len(inputs), "failed", failed, "model_type", modelType)
	if failed == len(inputs) {
		return fmt.Errorf("all %d rows failed to score", failed)
	}
	return nil
}
