// Package llm provides the remote inference client used by the remote prediction
// strategy. It supports AWS Bedrock and OpenAI-compatible providers behind a single
// Client interface, with a bounded per-call timeout and optional rate limiting.
package llm
