package embeddings

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider generates embeddings via the Gemini embedding API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini embedding provider.
// Model defaults to text-embedding-004.
func NewGeminiProvider(apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", ErrInvalidConfig)
	}
	if model == "" {
		model = "text-embedding-004"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// EmbedDocuments generates embeddings for multiple texts in a single batch.
func (p *GeminiProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := p.client.EmbeddingModel(p.model)
	em.TaskType = genai.TaskTypeRetrievalDocument

	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini embeddings: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini embeddings: got %d vectors for %d inputs", len(res.Embeddings), len(texts))
	}

	out := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}

// EmbedQuery generates an embedding for a single query.
func (p *GeminiProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	em := p.client.EmbeddingModel(p.model)
	em.TaskType = genai.TaskTypeRetrievalQuery

	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embeddings: %w", err)
	}
	return res.Embedding.Values, nil
}

// Dimension returns the embedding dimension for the configured model.
func (p *GeminiProvider) Dimension() int {
	// text-embedding-004 and embedding-001 both produce 768-dim vectors.
	return 768
}

// Close releases the underlying gRPC connection.
func (p *GeminiProvider) Close() error { return p.client.Close() }

var _ Provider = (*GeminiProvider)(nil)
