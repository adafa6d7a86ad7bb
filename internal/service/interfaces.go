// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/claimguard/internal/model"
)

// Predictor scores a single transaction record.
// Implementations must not mutate the record.
type Predictor interface {
	Predict(ctx context.Context, record model.TransactionRecord) (model.PredictionResult, error)
}

// PredictorFunc adapts a plain function to the Predictor interface.
type PredictorFunc func(ctx context.Context, record model.TransactionRecord) (model.PredictionResult, error)

// Predict calls f(ctx, record).
func (f PredictorFunc) Predict(ctx context.Context, record model.TransactionRecord) (model.PredictionResult, error) {
	return f(ctx, record)
}

// SessionStore maps opaque browser tokens to authenticated usernames.
// Implementations must be safe for concurrent use by independent tokens.
type SessionStore interface {
	Create(ctx context.Context, username string) (token string, err error)
	Lookup(ctx context.Context, token string) (username string, ok bool, err error)
	Destroy(ctx context.Context, token string) error
	Close() error
}

// Authenticator verifies a username and password pair.
// It returns common.ErrUnauthenticated when the credentials do not match.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) error
}

// Notifier is a best-effort sink for operational events.
// Notify never fails the caller; delivery problems are handled internally.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Retrainer starts a model retraining job.
type Retrainer interface {
	TriggerRetraining(ctx context.Context) (RetrainingJob, error)
}

// RetrainingJob describes a started retraining job.
type RetrainingJob struct {
	Status string
	JobID  string
}

// RetryOptions configures retry behavior for best-effort delivery.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
