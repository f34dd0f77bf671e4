package embedding

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"holamundo/internal/domain"
)

// NewCached wraps next with an LRU cache keyed by model and text.
// A non-positive size or ttl disables caching.
func NewCached(next domain.Embedder, size int, ttl time.Duration, logger *zap.Logger) domain.Embedder {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedEmbedder{
		next:   next,
		cache:  expirable.NewLRU[string, []float32](size, nil, ttl),
		logger: logger,
	}
}

type cachedEmbedder struct {
	next   domain.Embedder
	cache  *expirable.LRU[string, []float32]
	logger *zap.Logger
}

func (c *cachedEmbedder) Name() string   { return c.next.Name() }
func (c *cachedEmbedder) Dimension() int { return c.next.Dimension() }

func (c *cachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if cached, ok := c.cache.Get(c.key(text)); ok {
			out[i] = clone(cached)
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	c.logger.Debug("embedding cache lookup",
		zap.Int("hits", len(texts)-len(missTexts)),
		zap.Int("misses", len(missTexts)))
	if len(missTexts) == 0 {
		return out, nil
	}
	vecs, err := c.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, v := range vecs {
		out[missIdx[j]] = v
		c.cache.Add(c.key(missTexts[j]), clone(v))
	}
	return out, nil
}

func (c *cachedEmbedder) key(text string) string {
	h := sha1.Sum([]byte(c.next.Name() + "\x00" + text))
	return hex.EncodeToString(h[:])
}

func clone(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
