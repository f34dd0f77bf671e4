package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultAnthropicModel = "claude-3-5-haiku-20241022"

	// The messages API rejects requests without max_tokens.
	anthropicFallbackMaxTokens = 1024
)

// AnthropicConfig configures the Claude messages backend.
type AnthropicConfig struct {
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
}

type anthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider creates a Claude messages provider.
func NewAnthropicProvider(cfg AnthropicConfig) (Provider, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "ANTHROPIC_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithRequestTimeout(cfg.Timeout),
		// Retries belong to the generation loop, not the SDK.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &anthropicProvider{client: anthropic.NewClient(opts...)}, nil
}

func (p *anthropicProvider) Name() string         { return "anthropic" }
func (p *anthropicProvider) DefaultModel() string { return DefaultAnthropicModel }

func (p *anthropicProvider) Complete(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicFallbackMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(maxTokens),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt))},
		Temperature: anthropic.Float(float64(req.Temperature)),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		be := &BackendError{Provider: p.Name(), Err: err}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			be.StatusCode = apiErr.StatusCode
		}
		return "", be
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &BackendError{Provider: p.Name(), Err: errors.New("no text content returned")}
	}
	return sb.String(), nil
}
