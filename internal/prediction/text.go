package prediction

import (
	"context"
	"strings"

	"github.com/Veraticus/claimguard/internal/model"
)

var (
	riskKeywords   = []string{"urgent", "emergency", "special", "unusual", "complex"}
	normalKeywords = []string{"routine", "standard", "regular", "normal", "typical"}
)

// normalConfidence is the fixed score reported when notes read as routine.
const normalConfidence = 0.55

// Text scores a claim from keywords in its free-text notes.
type Text struct {
	rand    Rand
	name    string
	factors []string
}

// NewText creates the notes keyword heuristic from its model configuration.
func NewText(cfg model.ModelConfig, r Rand) *Text {
	return &Text{rand: r, name: cfg.Name, factors: cfg.Factors}
}

// Predict implements service.Predictor.
func (t *Text) Predict(_ context.Context, record model.TransactionRecord) (model.PredictionResult, error) {
	notes := strings.ToLower(record.Notes)
	risk := countKeywords(notes, riskKeywords)
	normal := countKeywords(notes, normalKeywords)

	result := model.PredictionResult{
		Factors:   cloneFactors(t.factors),
		ModelUsed: t.name,
	}

	if normal > risk {
		result.Classification = model.ClassNotFraud
		result.RiskLevel = model.RiskMedium
		result.Confidence = normalConfidence
		return result, nil
	}

	confidence := uniform(t.rand, 0.75, 0.90)
	result.Confidence = confidence
	result.Classification = model.ClassNotFraud
	result.RiskLevel = model.RiskMedium
	if confidence > 0.8 {
		result.Classification = model.ClassFraud
		result.RiskLevel = model.RiskHigh
	}
	return result, nil
}

// countKeywords counts how many keywords occur in text; each counts once.
func countKeywords(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
