package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator produces completions via the OpenAI chat completions API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates an OpenAI generator.
// Model defaults to gpt-4o-mini.
func NewOpenAIGenerator(apiKey, model string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai api key is required", ErrInvalidConfig)
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIGenerator{client: openai.NewClient(apiKey), model: model}, nil
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai generate: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op; the client is a stateless HTTP wrapper.
func (g *OpenAIGenerator) Close() error { return nil }

var _ Generator = (*OpenAIGenerator)(nil)
