package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"holamundo/internal/domain"
)

// Storage is an exact in-memory index using brute-force inner product.
// Vectors are expected to be L2-normalized, making scores cosine similarities.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
}

func NewStorage() *Storage { return &Storage{} }

// Build creates an index holding vectors, ids assigned in slice order.
func Build(vectors [][]float32) (*Storage, error) {
	s := NewStorage()
	if len(vectors) == 0 {
		return s, nil
	}
	if err := s.Init(context.Background(), len(vectors[0])); err != nil {
		return nil, err
	}
	if err := s.Add(context.Background(), vectors); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	return nil
}

func (s *Storage) Add(_ context.Context, vectors [][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return errors.New("index not initialized")
	}
	for i, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("vector %d: dimension %d, want %d", i, len(v), s.dimension)
		}
	}
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns min(k, Len()) hits ordered by descending score; equal
// scores keep insertion order.
func (s *Storage) Search(_ context.Context, query []float32, k int) ([]domain.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k <= 0 || len(s.vectors) == 0 {
		return nil, nil
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension %d, want %d", len(query), s.dimension)
	}
	hits := make([]domain.SearchHit, len(s.vectors))
	for i, v := range s.vectors {
		hits[i] = domain.SearchHit{ChunkID: i, Score: dot(v, query)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func (s *Storage) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	return nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

var _ domain.Index = (*Storage)(nil)
