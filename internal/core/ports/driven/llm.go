package driven

import (
	"context"
	"errors"
)

// ErrRequestRejected is wrapped by LLM adapters when the provider refuses a
// request in a way that retrying cannot fix, such as a revoked key or an
// unknown model.
var ErrRequestRejected = errors.New("request rejected by provider")

// LLMService is the reasoning service used to document entities and
// summarise changes. Each Generate call is a single, independent
// request/response; implementations must not cache replies.
//
// Implementations include:
//   - Anthropic (Claude)
//   - OpenAI (GPT-4o family)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// JSON asks the provider to constrain the reply to a JSON object when it
	// supports doing so. Callers still validate the reply themselves.
	JSON bool
}
