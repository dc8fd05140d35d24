// Package llm provides single-shot text generation via multiple providers.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidConfig indicates invalid generator configuration.
var ErrInvalidConfig = errors.New("invalid llm configuration")

// Generator produces a completion for a fully assembled prompt.
// Single-shot: no conversation memory, no streaming.
type Generator interface {
	// Generate returns the model's response text for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Close releases resources held by the generator.
	Close() error
}

// Config holds configuration for creating a generator.
type Config struct {
	// Provider is the provider type: "gemini" or "openai".
	Provider string
	// Model is the generative model name.
	Model string
	// APIKey authenticates against the provider's API.
	APIKey string
}

// NewGenerator creates a generator based on the configuration.
func NewGenerator(cfg Config) (Generator, error) {
	switch cfg.Provider {
	case "gemini", "":
		return NewGeminiGenerator(cfg.APIKey, cfg.Model)
	case "openai":
		return NewOpenAIGenerator(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
