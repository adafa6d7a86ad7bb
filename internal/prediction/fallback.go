package prediction

import (
	"context"

	"github.com/Veraticus/claimguard/internal/model"
)

var fallbackFactors = []string{"Factor A", "Factor B", "Factor C"}

// Fallback answers for model types without a dedicated strategy.
type Fallback struct {
	rand Rand
}

// NewFallback creates the generic random strategy.
func NewFallback(r Rand) *Fallback {
	return &Fallback{rand: r}
}

// Predict implements service.Predictor.
func (f *Fallback) Predict(_ context.Context, _ model.TransactionRecord) (model.PredictionResult, error) {
	return verdict(f.rand, model.UnknownModelName, fallbackFactors, ""), nil
}
