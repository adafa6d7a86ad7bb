package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/claimguard/internal/config"
	"github.com/Veraticus/claimguard/internal/service"
)

// Nop discards every message.
type Nop struct{}

// Notify implements service.Notifier.
func (Nop) Notify(context.Context, string) {}

// Flush implements Sink.
func (Nop) Flush(context.Context) error { return nil }

// Close implements Sink.
func (Nop) Close() error { return nil }

// New builds the configured sink. An empty webhook URL disables notifications.
func New(cfg config.NotifyConfig, logger *slog.Logger, recorder Recorder) Sink {
	if cfg.WebhookURL == "" {
		return Nop{}
	}

	retry := service.RetryOptions{
		MaxAttempts:  cfg.MaxAttempts,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
	}
	return NewAsync(NewSlack(cfg.WebhookURL, cfg.Timeout), cfg.QueueSize, logger,
		WithRecorder(recorder),
		WithRetry(retry))
}
