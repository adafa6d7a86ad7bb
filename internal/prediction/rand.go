package prediction

import (
	"math/rand"

	"github.com/Veraticus/claimguard/internal/model"
)

// Rand is the source of randomness the strategies draw from.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// DefaultRand returns a goroutine-safe source backed by the runtime generator.
func DefaultRand() Rand {
	return globalRand{}
}

// uniform draws from [lo, hi).
func uniform(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// coinFlip draws a High/Low risk with equal odds; High means Fraud.
func coinFlip(r Rand) model.RiskLevel {
	if r.Float64() > 0.5 {
		return model.RiskHigh
	}
	return model.RiskLow
}
