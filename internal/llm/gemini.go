package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig configures the Gemini API backend.
type GeminiConfig struct {
	APIKeyEnv string
}

type geminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a Gemini provider. The client is built once and
// reused for every call.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (Provider, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "GEMINI_API_KEY"
	}
	key := strings.TrimSpace(os.Getenv(cfg.APIKeyEnv))
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &geminiProvider{client: client}, nil
}

func (p *geminiProvider) Name() string         { return "gemini" }
func (p *geminiProvider) DefaultModel() string { return DefaultGeminiModel }

func (p *geminiProvider) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr(req.Temperature),
		MaxOutputTokens:   int32(req.MaxTokens),
	})
	if err != nil {
		return "", &BackendError{Provider: p.Name(), Err: err}
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &BackendError{Provider: p.Name(), Err: errors.New("no candidates returned")}
	}
	return text, nil
}
