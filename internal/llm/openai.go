package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIConfig configures an OpenAI-compatible chat completions backend.
// BaseURL may point at OpenRouter, Ollama or any compatible server.
type OpenAIConfig struct {
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
}

type openAIProvider struct {
	client *goopenai.Client
}

// NewOpenAIProvider creates a chat completions provider.
func NewOpenAIProvider(cfg OpenAIConfig) (Provider, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	clientCfg := goopenai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &openAIProvider{client: goopenai.NewClientWithConfig(clientCfg)}, nil
}

func (p *openAIProvider) Name() string         { return "openai" }
func (p *openAIProvider) DefaultModel() string { return DefaultOpenAIModel }

func (p *openAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		be := &BackendError{Provider: p.Name(), Err: err}
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			be.StatusCode = apiErr.HTTPStatusCode
		}
		var reqErr *goopenai.RequestError
		if errors.As(err, &reqErr) {
			be.StatusCode = reqErr.HTTPStatusCode
		}
		return "", be
	}
	if len(resp.Choices) == 0 {
		return "", &BackendError{Provider: p.Name(), Err: errors.New("no completion choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}
