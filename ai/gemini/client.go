package gemini

import (
	"context"
	"errors"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// generator is the subset of *googleai.GoogleAI the services use.
type generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// embeddingClient is the embedding half of *googleai.GoogleAI.
type embeddingClient interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// generate sends one human turn and returns the first candidate's text.
func generate(ctx context.Context, client generator, timeout time.Duration, model string, parts ...llms.ContentPart) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	content := []llms.MessageContent{
		{Role: llms.ChatMessageTypeHuman, Parts: parts},
	}
	response, err := client.GenerateContent(ctx, content, llms.WithModel(model), llms.WithTemperature(0.2))
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return response.Choices[0].Content, nil
}
