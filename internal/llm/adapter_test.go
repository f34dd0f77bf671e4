package llm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holamundo/internal/domain"
)

type fakeProvider struct {
	mu    sync.Mutex
	reqs  []Request
	reply string
	err   error
}

func (p *fakeProvider) Name() string         { return "fake" }
func (p *fakeProvider) DefaultModel() string { return "fake-default" }
func (p *fakeProvider) Complete(ctx context.Context, req Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reqs = append(p.reqs, req)
	return p.reply, p.err
}

func TestAdapter_TestModeNeverBuildsProvider(t *testing.T) {
	built := false
	a := NewAdapter(func(ctx context.Context) (Provider, error) {
		built = true
		return nil, errors.New("should not be called")
	}, Options{}, nil)

	out, err := a.Call(context.Background(), "vocabulary please", "", true)
	require.NoError(t, err)
	assert.Contains(t, out, `"vocabulary"`)
	assert.False(t, built)
}

func TestAdapter_SendsPersonaAndSettings(t *testing.T) {
	p := &fakeProvider{reply: "hola"}
	builds := 0
	a := NewAdapter(func(ctx context.Context) (Provider, error) {
		builds++
		return p, nil
	}, Options{MaxTokens: 0, Temperature: 0.2}, nil)

	out, err := a.Call(context.Background(), "prompt one", "", false)
	require.NoError(t, err)
	assert.Equal(t, "hola", out)
	_, err = a.Call(context.Background(), "prompt two", "custom-model", false)
	require.NoError(t, err)

	assert.Equal(t, 1, builds)
	require.Len(t, p.reqs, 2)
	assert.Equal(t, Persona, p.reqs[0].System)
	assert.Equal(t, "prompt one", p.reqs[0].Prompt)
	assert.Equal(t, "fake-default", p.reqs[0].Model)
	assert.Equal(t, DefaultMaxTokens, p.reqs[0].MaxTokens)
	assert.InDelta(t, 0.2, p.reqs[0].Temperature, 1e-6)
	assert.Equal(t, "custom-model", p.reqs[1].Model)
}

func TestAdapter_ConfiguredModelBeatsProviderDefault(t *testing.T) {
	p := &fakeProvider{reply: "ok"}
	a := NewAdapter(func(ctx context.Context) (Provider, error) { return p, nil }, Options{Model: "configured"}, nil)
	_, err := a.Call(context.Background(), "x", "", false)
	require.NoError(t, err)
	assert.Equal(t, "configured", p.reqs[0].Model)
}

func TestAdapter_ErrorsAreBackendErrors(t *testing.T) {
	cause := errors.New("rate limited")
	a := NewAdapter(func(ctx context.Context) (Provider, error) {
		return &fakeProvider{err: cause}, nil
	}, Options{}, nil)

	_, err := a.Call(context.Background(), "x", "", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackend)
	assert.ErrorIs(t, err, cause)
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "fake", be.Provider)
	assert.Equal(t, 1, len(a.provider.(*fakeProvider).reqs), "no retries")
}

func TestAdapter_EmptyResponseIsBackendError(t *testing.T) {
	a := NewAdapter(func(ctx context.Context) (Provider, error) {
		return &fakeProvider{reply: ""}, nil
	}, Options{}, nil)
	_, err := a.Call(context.Background(), "x", "", false)
	assert.ErrorIs(t, err, domain.ErrBackend)
}

func TestAdapter_ProviderInitFailure(t *testing.T) {
	a := NewAdapter(func(ctx context.Context) (Provider, error) {
		return nil, errors.New("missing API key")
	}, Options{}, nil)
	_, err := a.Call(context.Background(), "x", "", false)
	assert.ErrorIs(t, err, domain.ErrBackend)

	none := NewAdapter(nil, Options{}, nil)
	_, err = none.Call(context.Background(), "x", "", false)
	assert.ErrorIs(t, err, domain.ErrBackend)
}

func TestBackendError_Message(t *testing.T) {
	err := &BackendError{Provider: "openai", StatusCode: 429, Err: errors.New("slow down")}
	assert.Equal(t, "openai backend (status 429): slow down", err.Error())
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	t.Setenv("HOLAMUNDO_TEST_MISSING_KEY", "")
	_, err := NewOpenAIProvider(OpenAIConfig{APIKeyEnv: "HOLAMUNDO_TEST_MISSING_KEY"})
	assert.Error(t, err)

	t.Setenv("HOLAMUNDO_TEST_KEY", "sk-test")
	p, err := NewOpenAIProvider(OpenAIConfig{APIKeyEnv: "HOLAMUNDO_TEST_KEY", BaseURL: "http://localhost:11434/v1"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
	assert.Equal(t, DefaultOpenAIModel, p.DefaultModel())
}
