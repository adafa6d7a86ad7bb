// Package model defines the core domain models used throughout the application.
package model

import "math"

// Classification is the binary fraud verdict of a prediction.
type Classification string

// Classification constants.
const (
	ClassFraud    Classification = "Fraud"
	ClassNotFraud Classification = "Not Fraudulent"
)

// RiskLevel is the three-tier risk assessment of a prediction.
type RiskLevel string

// Risk level constants.
const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// Label renders the risk level in the dashboard vocabulary ("High Risk").
func (r RiskLevel) Label() string {
	return string(r) + " Risk"
}

// PredictionResult is the normalized output of every prediction strategy.
// It is produced once per request and never persisted.
type PredictionResult struct {
	Classification Classification
	RiskLevel      RiskLevel
	ModelUsed      string
	Narrative      string // Free-text analysis from a remote model, if any
	Factors        []string
	Confidence     float64
}

// HasNarrative reports whether a remote model contributed a narrative.
func (p PredictionResult) HasNarrative() bool {
	return p.Narrative != ""
}

// RoundConfidence rounds a confidence score to three decimal places.
func RoundConfidence(v float64) float64 {
	return math.Round(v*1000) / 1000
}
