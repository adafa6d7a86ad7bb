package web

import (
	"context"

	"github.com/Veraticus/claimguard/internal/service"
)

// StubRetrainer acknowledges retraining requests without starting any work.
type StubRetrainer struct{}

// TriggerRetraining implements service.Retrainer.
func (StubRetrainer) TriggerRetraining(context.Context) (service.RetrainingJob, error) {
	return service.RetrainingJob{Status: "Retraining job started", JobID: "12345"}, nil
}
