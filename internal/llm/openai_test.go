package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holamundo/internal/domain"
)

func TestOpenAIProvider_Complete(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float32 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"¡Hola!"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	t.Setenv("HOLAMUNDO_TEST_KEY", "sk-test")
	p, err := NewOpenAIProvider(OpenAIConfig{APIKeyEnv: "HOLAMUNDO_TEST_KEY", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), Request{System: Persona, Prompt: "hola", Model: "m", MaxTokens: 100, Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "¡Hola!", out)
	assert.Equal(t, "m", got.Model)
	assert.Equal(t, 100, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, Persona, got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestOpenAIProvider_StatusSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit","type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	t.Setenv("HOLAMUNDO_TEST_KEY", "sk-test")
	p, err := NewOpenAIProvider(OpenAIConfig{APIKeyEnv: "HOLAMUNDO_TEST_KEY", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), Request{Prompt: "x", Model: "m"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackend)
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusTooManyRequests, be.StatusCode)
}
