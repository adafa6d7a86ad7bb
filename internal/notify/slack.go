// Package notify delivers operational events to a chat webhook without
// blocking or failing the caller.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"
)

// Sender delivers a single message synchronously.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, text string) error

// Send calls f(ctx, text).
func (f SenderFunc) Send(ctx context.Context, text string) error {
	return f(ctx, text)
}

// Slack posts plain-text messages to an incoming webhook.
type Slack struct {
	httpClient *http.Client
	url        string
}

// NewSlack creates a webhook sender. Each post is bounded by timeout.
func NewSlack(webhookURL string, timeout time.Duration) *Slack {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Slack{
		url:        webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send posts text as a webhook message.
func (s *Slack) Send(ctx context.Context, text string) error {
	msg := &slack.WebhookMessage{Text: text}
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.url, s.httpClient, msg); err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	return nil
}
