package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/Veraticus/claimguard/internal/common"
)

// guardedClient bounds every call with a timeout and an optional request rate,
// and reports all provider failures as remote-unavailable errors.
type guardedClient struct {
	inner   Client
	limiter *rate.Limiter
	timeout time.Duration
}

func newGuardedClient(inner Client, timeout time.Duration, requestsPerMinute int) *guardedClient {
	g := &guardedClient{inner: inner, timeout: timeout}
	if requestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute)
	}
	return g
}

// Complete waits for a rate token and then calls the provider within the timeout.
func (g *guardedClient) Complete(ctx context.Context, prompt string) (Completion, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return Completion{}, fmt.Errorf("%w: rate limit wait: %w", common.ErrRemoteUnavailable, err)
		}
	}

	completion, err := g.inner.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, common.ErrRemoteUnavailable) {
			return Completion{}, err
		}
		return Completion{}, fmt.Errorf("%w: %w", common.ErrRemoteUnavailable, err)
	}
	return completion, nil
}
