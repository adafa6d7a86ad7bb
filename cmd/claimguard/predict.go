package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/claimguard/internal/prediction"
)

func predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score a single claim",
		Example: `  claimguard predict --model-type nlp_classifier --notes "Routine cleaning"
  claimguard predict --model-type tabular_classifier --cdt-code D9940 --amount 1450`,
		RunE: runPredict,
	}

	addRecordFlags(cmd)
	cmd.Flags().Bool("offline", false, "skip the remote inference call for aws_nova")

	return cmd
}

func runPredict(cmd *cobra.Command, _ []string) error {
	offline, _ := cmd.Flags().GetBool("offline")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	record, err := prediction.NewRecord(recordInputFromFlags(cmd))
	if err != nil {
		return err
	}

	dispatcher, _, err := newDispatcher(cmd.Context(), cfg, offline)
	if err != nil {
		return err
	}

	result, err := dispatcher.Predict(cmd.Context(), record)
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), newResultView(result), true)
}
