package embedding

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"holamundo/internal/domain"
)

// Loader constructs the underlying embedding model.
type Loader func(ctx context.Context) (domain.Embedder, error)

// Shared is a process-wide embedding model handle. The model is loaded on
// first use and reused by every caller afterwards; concurrent first calls
// load it exactly once.
//
// name identifies the configured model before it is loaded, so callers that
// key on Name (such as the cache) see the same value before and after the load.
type Shared struct {
	name   string
	load   Loader
	logger *zap.Logger

	once   sync.Once
	loaded atomic.Pointer[loadedModel]
	err    error
}

type loadedModel struct {
	model domain.Embedder
}

func NewShared(name string, load Loader, logger *zap.Logger) *Shared {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shared{name: name, load: load, logger: logger}
}

// Get returns the loaded model, loading it if needed. A failed load is sticky.
func (s *Shared) Get(ctx context.Context) (domain.Embedder, error) {
	s.once.Do(func() {
		model, err := s.load(ctx)
		if err != nil {
			s.err = err
			s.logger.Error("embedding model load failed", zap.String("model", s.name), zap.Error(err))
			return
		}
		s.loaded.Store(&loadedModel{model: model})
		s.logger.Info("embedding model loaded",
			zap.String("model", model.Name()),
			zap.Int("dimension", model.Dimension()))
	})
	if s.err != nil {
		return nil, s.err
	}
	return s.loaded.Load().model, nil
}

// Name is the configured model identifier; it never changes.
func (s *Shared) Name() string { return s.name }

// Dimension is 0 until the model is loaded.
func (s *Shared) Dimension() int {
	if l := s.loaded.Load(); l != nil {
		return l.model.Dimension()
	}
	return 0
}

func (s *Shared) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	model, err := s.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load embedding model: %w", err)
	}
	return model.Embed(ctx, texts)
}

// Normalize scales v to unit Euclidean length in place. Zero vectors are left as is.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}

var _ domain.Embedder = (*Shared)(nil)
