package narrative

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNotConfigured é devolvido quando não há chave de API configurada.
var ErrNotConfigured = errors.New("serviço de análise automática não configurado")

// OpenAIGenerator usa qualquer API compatível com o chat completions da OpenAI.
type OpenAIGenerator struct {
	client *openai.Client
}

// NewGenerator devolve o gerador configurado, ou um gerador que sempre falha
// com ErrNotConfigured quando apiKey está vazia.
func NewGenerator(apiKey, baseURL string) TextGenerator {
	if apiKey == "" {
		return unavailableGenerator{}
	}
	return NewOpenAIGenerator(apiKey, baseURL)
}

func NewOpenAIGenerator(apiKey, baseURL string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg)}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		User: req.SessionID,
	})
	if err != nil {
		return "", fmt.Errorf("erro na chamada ao modelo %s: %w", req.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

type unavailableGenerator struct{}

func (unavailableGenerator) Generate(context.Context, GenerationRequest) (string, error) {
	return "", ErrNotConfigured
}
