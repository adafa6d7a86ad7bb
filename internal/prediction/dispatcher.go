// Package prediction routes transaction records to the scoring strategy for
// their model type and normalizes the results.
package prediction

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/claimguard/internal/llm"
	"github.com/Veraticus/claimguard/internal/model"
	"github.com/Veraticus/claimguard/internal/service"
)

// Recorder receives one observation per prediction.
type Recorder interface {
	RecordPrediction(modelType, outcome string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordPrediction(string, string, time.Duration) {}

// Dispatcher selects a strategy by model type. It holds no mutable state.
type Dispatcher struct {
	strategies map[model.ModelType]service.Predictor
	fallback   service.Predictor
	recorder   Recorder
	logger     *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithStrategy registers or replaces the strategy for a model type.
func WithStrategy(m model.ModelType, p service.Predictor) Option {
	return func(d *Dispatcher) {
		d.strategies[m] = p
	}
}

// NewDispatcher wires the built-in strategies from the registry.
// A nil client puts the remote strategy in stub mode.
func NewDispatcher(reg model.Registry, client llm.Client, r Rand, opts ...Option) *Dispatcher {
	if r == nil {
		r = DefaultRand()
	}

	d := &Dispatcher{
		strategies: make(map[model.ModelType]service.Predictor),
		fallback:   NewFallback(r),
		recorder:   nopRecorder{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if _, ok := d.strategies[model.ModelTabular]; !ok {
		d.strategies[model.ModelTabular] = NewTabular(reg[model.ModelTabular], r)
	}
	if _, ok := d.strategies[model.ModelText]; !ok {
		d.strategies[model.ModelText] = NewText(reg[model.ModelText], r)
	}
	if _, ok := d.strategies[model.ModelRemote]; !ok {
		d.strategies[model.ModelRemote] = NewRemote(reg[model.ModelRemote], client, r, d.logger)
	}

	return d
}

// Predict implements service.Predictor.
func (d *Dispatcher) Predict(ctx context.Context, record model.TransactionRecord) (model.PredictionResult, error) {
	strategy, ok := d.strategies[record.ModelType]
	label := string(record.ModelType)
	if !ok {
		strategy = d.fallback
		label = "unknown"
	}

	start := time.Now()
	result, err := strategy.Predict(ctx, record)
	duration := time.Since(start)

	if err != nil {
		d.recorder.RecordPrediction(label, "error", duration)
		return model.PredictionResult{}, err
	}

	d.recorder.RecordPrediction(label, "success", duration)
	d.logger.Debug("Prediction complete",
		"model_type", record.ModelType,
		"classification", result.Classification,
		"risk_level", result.RiskLevel,
		"confidence", result.Confidence,
		"fingerprint", record.Fingerprint())
	return result, nil
}
