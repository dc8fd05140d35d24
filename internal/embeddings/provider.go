// Package embeddings provides embedding generation via multiple providers.
package embeddings

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/ragd/internal/vectorstore"
)

// ErrInvalidConfig indicates invalid provider configuration.
var ErrInvalidConfig = errors.New("invalid embeddings configuration")

// Provider is the interface for embedding providers.
type Provider interface {
	vectorstore.Embedder
	// Dimension returns the embedding dimension for the current model.
	Dimension() int
	// Close releases resources held by the provider.
	Close() error
}

// ProviderConfig holds configuration for creating an embedding provider.
type ProviderConfig struct {
	// Provider is the provider type: "openai" or "gemini".
	Provider string
	// Model is the embedding model name.
	Model string
	// APIKey authenticates against the provider's API.
	APIKey string
}

// NewProvider creates an embedding provider based on the configuration.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model)
	case "gemini":
		return NewGeminiProvider(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
