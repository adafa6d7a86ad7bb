package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/claimguard/internal/config"
	"github.com/Veraticus/claimguard/internal/llm"
	"github.com/Veraticus/claimguard/internal/model"
	"github.com/Veraticus/claimguard/internal/prediction"
)

// addRecordFlags registers the transaction fields shared by predict, encode and invoke.
func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().String("model-type", string(model.ModelTabular), "model type (tabular_classifier, nlp_classifier, aws_nova)")
	cmd.Flags().String("patient-uuid", "", "patient identifier")
	cmd.Flags().String("cdt-code", "", "CDT procedure code, e.g. D0120")
	cmd.Flags().String("amount", "", "billed amount")
	cmd.Flags().String("date", "", "service date (YYYY-MM-DD)")
	cmd.Flags().String("notes", "", "provider notes")
}

func recordInputFromFlags(cmd *cobra.Command) prediction.RecordInput {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return prediction.RecordInput{
		ModelType:     get("model-type"),
		PatientID:     get("patient-uuid"),
		ProcedureCode: get("cdt-code"),
		Amount:        get("amount"),
		Date:          get("date"),
		Notes:         get("notes"),
	}
}

// newDispatcher builds the prediction stack. offline skips the remote client.
func newDispatcher(ctx context.Context, cfg config.Config, offline bool, opts ...prediction.Option) (*prediction.Dispatcher, model.Registry, error) {
	reg, err := model.LoadRegistry(cfg.Models.RegistryPath)
	if err != nil {
		return nil, nil, err
	}

	var client llm.Client
	if !offline {
		client, err = llm.NewClient(ctx, llm.ConfigFrom(cfg.LLM))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create inference client: %w", err)
		}
	}

	opts = append([]prediction.Option{prediction.WithLogger(slog.Default())}, opts...)
	return prediction.NewDispatcher(reg, client, prediction.DefaultRand(), opts...), reg, nil
}

// resultView is the CLI rendering of a prediction, carrying both vocabularies.
type resultView struct {
	Result         string   `json:"result"`
	Classification string   `json:"classification"`
	RiskLevel      string   `json:"risk_level"`
	ModelUsed      string   `json:"model_used"`
	Narrative      string   `json:"narrative,omitempty"`
	Factors        []string `json:"factors"`
	Confidence     float64  `json:"confidence"`
}

func newResultView(r model.PredictionResult) resultView {
	return resultView{
		Result:         r.RiskLevel.Label(),
		Classification: string(r.Classification),
		RiskLevel:      string(r.RiskLevel),
		ModelUsed:      r.ModelUsed,
		Narrative:      r.Narrative,
		Factors:        r.Factors,
		Confidence:     r.Confidence,
	}
}

func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
