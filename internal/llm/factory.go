package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/claimguard/internal/config"
)

// NewClient creates an inference client for the configured provider.
// An empty provider selects Bedrock.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	var (
		inner Client
		err   error
	)

	switch strings.ToLower(cfg.Provider) {
	case "", "bedrock":
		inner, err = newBedrockClient(ctx, cfg)
	case "openai":
		inner, err = newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return newGuardedClient(inner, cfg.Timeout, cfg.RateLimit), nil
}

// ConfigFrom converts the application LLM settings.
func ConfigFrom(c config.LLMConfig) Config {
	return Config{
		Provider:  c.Provider,
		Model:     c.Model,
		Region:    c.Region,
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Timeout:   c.Timeout,
		RateLimit: c.RateLimit,
	}
}
