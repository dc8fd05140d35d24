package embeddings

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider generates embeddings via the OpenAI embeddings API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	dim    int
}

// NewOpenAIProvider creates an OpenAI embedding provider.
// Model defaults to text-embedding-3-small.
func NewOpenAIProvider(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai api key is required", ErrInvalidConfig)
	}
	if model == "" {
		model = "text-embedding-3-small"
	}

	dim := 1536
	if model == "text-embedding-3-large" {
		dim = 3072
	}

	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
		dim:    dim,
	}, nil
}

// EmbedDocuments generates embeddings for multiple texts in a single request.
func (p *OpenAIProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	// Responses may arrive out of order; place by index.
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		out[d.Index] = vec
	}
	return out, nil
}

// EmbedQuery generates an embedding for a single query.
func (p *OpenAIProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("openai embeddings: empty response")
	}
	return vecs[0], nil
}

// Dimension returns the embedding dimension for the configured model.
func (p *OpenAIProvider) Dimension() int { return p.dim }

// Close is a no-op; the client is a stateless HTTP wrapper.
func (p *OpenAIProvider) Close() error { return nil }

var _ Provider = (*OpenAIProvider)(nil)
