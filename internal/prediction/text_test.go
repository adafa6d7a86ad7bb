package prediction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claimguard/internal/model"
)

func TestText_Predict(t *testing.T) {
	tests := []struct {
		name           string
		notes          string
		draw           float64
		wantConfidence float64
		wantClass      model.Classification
		wantRisk       model.RiskLevel
	}{
		{
			name:           "routine notes are fixed medium",
			notes:          "Routine cleaning, standard exam",
			draw:           0.99,
			wantConfidence: 0.55,
			wantClass:      model.ClassNotFraud,
			wantRisk:       model.RiskMedium,
		},
		{
			name:           "risk keywords with high draw",
			notes:          "URGENT emergency extraction",
			draw:           0.5,
			wantConfidence: 0.825,
			wantClass:      model.ClassFraud,
			wantRisk:       model.RiskHigh,
		},
		{
			name:           "risk keywords with low draw",
			notes:          "unusual complex case",
			draw:           0.2,
			wantConfidence: 0.78,
			wantClass:      model.ClassNotFraud,
			wantRisk:       model.RiskMedium,
		},
		{
			name:           "tie goes to the random branch",
			notes:          "routine but urgent",
			draw:           0.2,
			wantConfidence: 0.78,
			wantClass:      model.ClassNotFraud,
			wantRisk:       model.RiskMedium,
		},
		{
			name:           "repeated keyword counts once",
			notes:          "routine routine routine, urgent and special",
			draw:           0.2,
			wantConfidence: 0.78,
			wantClass:      model.ClassNotFraud,
			wantRisk:       model.RiskMedium,
		},
		{
			name:           "empty notes",
			notes:          "",
			draw:           0.9,
			wantConfidence: 0.885,
			wantClass:      model.ClassFraud,
			wantRisk:       model.RiskHigh,
		},
	}

	cfg := model.DefaultRegistry()[model.ModelText]
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := NewText(cfg, newSeqRand(tt.draw))

			got, err := strategy.Predict(context.Background(), model.TransactionRecord{
				ModelType: model.ModelText,
				Notes:     tt.notes,
			})
			require.NoError(t, err)

			assert.InDelta(t, tt.wantConfidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantClass, got.Classification)
			assert.Equal(t, tt.wantRisk, got.RiskLevel)
			assert.Equal(t, "NLP Note Classifier", got.ModelUsed)
			assert.Equal(t, []string{"Text sentiment analysis", "Keyword detection", "Pattern matching"}, got.Factors)
		})
	}
}

func TestText_NormalBranchIsDeterministic(t *testing.T) {
	rnd := newSeqRand(0.1, 0.9)
	strategy := NewText(model.DefaultRegistry()[model.ModelText], rnd)

	for i := 0; i < 10; i++ {
		got, err := strategy.Predict(context.Background(), model.TransactionRecord{
			ModelType: model.ModelText,
			Notes:     "typical regular visit",
		})
		require.NoError(t, err)
		assert.Equal(t, 0.55, got.Confidence)
		assert.Equal(t, model.RiskMedium, got.RiskLevel)
	}
	assert.Zero(t, rnd.i, "normal branch must not draw randomness")
}

func TestCountKeywords(t *testing.T) {
	assert.Equal(t, 2, countKeywords("urgent and unusual", riskKeywords))
	assert.Equal(t, 1, countKeywords("nonroutine", normalKeywords))
	assert.Equal(t, 0, countKeywords("", riskKeywords))
}
