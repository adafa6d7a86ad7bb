package prediction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/claimguard/internal/common"
	"github.com/Veraticus/claimguard/internal/llm"
	"github.com/Veraticus/claimguard/internal/model"
)

const promptTemplate = `Analyze this medical transaction for potential fraud:
Patient UUID: %s
CDT Code: %s
Amount: $%s
Date: %s
Notes: %s

Please assess the fraud risk and provide a brief analysis.`

// BuildPrompt renders the fraud-analysis prompt for a record.
func BuildPrompt(record model.TransactionRecord) string {
	return fmt.Sprintf(promptTemplate,
		record.PatientID,
		record.ProcedureCode,
		record.AmountString(),
		record.DateString(),
		record.Notes)
}

// Remote asks a generative model for a narrative and attaches a random verdict.
// The verdict is not derived from the narrative.
type Remote struct {
	client  llm.Client
	rand    Rand
	logger  *slog.Logger
	name    string
	factors []string
}

// NewRemote creates the remote strategy. A nil client skips the remote call.
func NewRemote(cfg model.ModelConfig, client llm.Client, r Rand, logger *slog.Logger) *Remote {
	if logger == nil {
		logger = slog.Default()
	}
	return &Remote{
		client:  client,
		rand:    r,
		logger:  logger,
		name:    cfg.Name,
		factors: cfg.Factors,
	}
}

// Predict implements service.Predictor.
func (s *Remote) Predict(ctx context.Context, record model.TransactionRecord) (model.PredictionResult, error) {
	var narrative string
	if s.client != nil {
		completion, err := s.client.Complete(ctx, BuildPrompt(record))
		if err != nil {
			s.logger.Warn("Remote inference failed",
				"fingerprint", record.Fingerprint(),
				"error", err)
			return model.PredictionResult{}, fmt.Errorf("remote prediction: %w", wrapUnavailable(err))
		}
		narrative = completion.String()
	}

	return verdict(s.rand, s.name, s.factors, narrative), nil
}

func wrapUnavailable(err error) error {
	if errors.Is(err, common.ErrRemoteUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrRemoteUnavailable, err)
}

// verdict draws a random High/Low risk and a confidence in [0.70, 0.95].
func verdict(r Rand, name string, factors []string, narrative string) model.PredictionResult {
	confidence := model.RoundConfidence(uniform(r, 0.70, 0.95))
	risk := coinFlip(r)

	classification := model.ClassNotFraud
	if risk == model.RiskHigh {
		classification = model.ClassFraud
	}

	return model.PredictionResult{
		Classification: classification,
		RiskLevel:      risk,
		Confidence:     confidence,
		Factors:        cloneFactors(factors),
		ModelUsed:      name,
		Narrative:      narrative,
	}
}
