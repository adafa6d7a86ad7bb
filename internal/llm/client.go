package llm

import (
	"context"
	"encoding/json"
	"time"
)

// Client defines the interface for remote text-generation providers.
type Client interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
}

// Completion is a parsed model reply. Structured is set when the reply text
// was valid JSON; Text always holds the trimmed reply.
type Completion struct {
	Structured any
	Text       string
}

// IsStructured reports whether the reply parsed as JSON.
func (c Completion) IsStructured() bool {
	return c.Structured != nil
}

// String renders the completion for display. Structured replies are re-encoded as JSON.
func (c Completion) String() string {
	if c.Structured == nil {
		return c.Text
	}
	data, err := json.Marshal(c.Structured)
	if err != nil {
		return c.Text
	}
	return string(data)
}

// InferenceConfig holds the fixed decoding parameters sent with every request.
type InferenceConfig struct {
	MaxTokens   int     `json:"max_new_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	TopK        int     `json:"top_k"`
}

// DefaultInferenceConfig returns the decoding parameters used for fraud analysis.
func DefaultInferenceConfig() InferenceConfig {
	return InferenceConfig{
		MaxTokens:   256,
		Temperature: 0.2,
		TopP:        0.9,
		TopK:        50,
	}
}

// Config holds configuration for the inference client.
type Config struct {
	Provider  string
	Model     string
	Region    string
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	RateLimit int // requests per minute, 0 = unlimited
}
