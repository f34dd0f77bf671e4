package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"holamundo/internal/domain"
)

const (
	// Persona is the fixed system prompt sent with every request.
	Persona = "You are a patient and precise Spanish teacher. Help students understand Spanish language, grammar, vocabulary, and culture clearly and thoroughly."

	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.2
)

// Request is one call to a generative text service.
type Request struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Provider is a concrete generative text service.
type Provider interface {
	Name() string
	DefaultModel() string
	Complete(ctx context.Context, req Request) (string, error)
}

// ProviderFactory builds the provider on first real (non test mode) call.
type ProviderFactory func(ctx context.Context) (Provider, error)

// BackendError is a failure reported by, or on the way to, the provider.
type BackendError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s backend (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s backend: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool { return target == domain.ErrBackend }

// Options tunes the adapter.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// Adapter sends prompts to the configured provider with Persona as the system prompt,
// or answers from Mock in test mode. It never retries.
type Adapter struct {
	factory ProviderFactory
	mock    *Mock
	opts    Options
	logger  *zap.Logger

	once     sync.Once
	provider Provider
	initErr  error
}

func NewAdapter(factory ProviderFactory, opts Options, logger *zap.Logger) *Adapter {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature < 0 {
		opts.Temperature = DefaultTemperature
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{factory: factory, mock: NewMock(), opts: opts, logger: logger}
}

// Call sends prompt to the backend. An empty model selects the configured
// model, then the provider default.
func (a *Adapter) Call(ctx context.Context, prompt, model string, testMode bool) (string, error) {
	if testMode {
		out := a.mock.Respond(prompt)
		a.logger.Debug("test mode response", zap.String("kind", a.mock.Classify(prompt).String()))
		return out, nil
	}
	p, err := a.getProvider(ctx)
	if err != nil {
		return "", err
	}
	if model == "" {
		model = a.opts.Model
	}
	if model == "" {
		model = p.DefaultModel()
	}
	start := time.Now()
	out, err := p.Complete(ctx, Request{
		System:      Persona,
		Prompt:      prompt,
		Model:       model,
		MaxTokens:   a.opts.MaxTokens,
		Temperature: a.opts.Temperature,
	})
	if err != nil {
		var be *BackendError
		if !errors.As(err, &be) {
			err = &BackendError{Provider: p.Name(), Err: err}
		}
		a.logger.Warn("backend call failed",
			zap.String("provider", p.Name()),
			zap.String("model", model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", err
	}
	if out == "" {
		return "", &BackendError{Provider: p.Name(), Err: errors.New("empty response")}
	}
	a.logger.Debug("backend call done",
		zap.String("provider", p.Name()),
		zap.String("model", model),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("response_chars", len(out)),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

func (a *Adapter) getProvider(ctx context.Context) (Provider, error) {
	a.once.Do(func() {
		if a.factory == nil {
			a.initErr = errors.New("no backend provider configured")
			return
		}
		a.provider, a.initErr = a.factory(ctx)
	})
	if a.initErr != nil {
		return nil, &BackendError{Provider: "init", Err: a.initErr}
	}
	return a.provider, nil
}

var _ domain.Generator = (*Adapter)(nil)
