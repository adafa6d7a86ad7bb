package prediction

import (
	"context"
	"math"
	"strings"

	"github.com/Veraticus/claimguard/internal/model"
)

// Tabular scores a claim from its amount and procedure code.
type Tabular struct {
	rand            Rand
	name            string
	factors         []string
	complexPrefixes []string
}

// NewTabular creates the tabular heuristic from its model configuration.
func NewTabular(cfg model.ModelConfig, r Rand) *Tabular {
	return &Tabular{
		rand:            r,
		name:            cfg.Name,
		factors:         cfg.Factors,
		complexPrefixes: cfg.ComplexPrefixes,
	}
}

// Predict implements service.Predictor.
func (t *Tabular) Predict(_ context.Context, record model.TransactionRecord) (model.PredictionResult, error) {
	amount := record.AmountFloat()

	var score float64
	switch {
	case amount > 1000:
		score += 0.3
	case amount > 500:
		score += 0.2
	}

	if t.isComplex(record.ProcedureCode) {
		score += 0.2
	}

	score += uniform(t.rand, 0.1, 0.4)
	confidence := math.Min(score, 0.95)

	result := model.PredictionResult{
		Classification: model.ClassNotFraud,
		RiskLevel:      model.RiskLow,
		Confidence:     model.RoundConfidence(confidence),
		Factors:        cloneFactors(t.factors),
		ModelUsed:      t.name,
	}
	if confidence > 0.7 {
		result.Classification = model.ClassFraud
	}
	switch {
	case confidence > 0.8:
		result.RiskLevel = model.RiskHigh
	case confidence > 0.6:
		result.RiskLevel = model.RiskMedium
	}

	return result, nil
}

func (t *Tabular) isComplex(code string) bool {
	for _, prefix := range t.complexPrefixes {
		if prefix != "" && strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}

func cloneFactors(factors []string) []string {
	out := make([]string, len(factors))
	copy(out, factors)
	return out
}
