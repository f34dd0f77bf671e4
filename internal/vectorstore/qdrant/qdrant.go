package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"holamundo/internal/domain"
)

// Storage is a minimal REST client to Qdrant using one collection per
// document. Points use dot-product distance and integer ids equal to
// their insertion order.
type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	count      int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init recreates the collection for vectors of the given dimension.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	if err := s.Close(ctx); err != nil {
		return err
	}
	s.dimension = dimension
	s.count = 0
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Dot",
		},
	}
	return s.do(ctx, http.MethodPut, s.collectionURL(), body, nil)
}

func (s *Storage) Add(ctx context.Context, vectors [][]float32) error {
	if s.dimension == 0 {
		return errors.New("index not initialized")
	}
	points := make([]map[string]any, len(vectors))
	for i, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("vector %d: dimension %d, want %d", i, len(v), s.dimension)
		}
		id := s.count + i
		points[i] = map[string]any{
			"id":      id,
			"vector":  v,
			"payload": map[string]any{"chunk_id": id},
		}
	}
	body := map[string]any{"points": points}
	if err := s.do(ctx, http.MethodPut, s.collectionURL()+"/points?wait=true", body, nil); err != nil {
		return err
	}
	s.count += len(vectors)
	return nil
}

func (s *Storage) Search(ctx context.Context, query []float32, k int) ([]domain.SearchHit, error) {
	if k <= 0 || s.count == 0 {
		return nil, nil
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension %d, want %d", len(query), s.dimension)
	}
	// Qdrant orders equal scores arbitrarily, so the whole collection is
	// requested and the lowest-id tie rule is applied before truncating to k.
	req := map[string]any{
		"vector":       query,
		"limit":        s.count,
		"with_payload": false,
	}
	var resp struct {
		Result []struct {
			ID    int     `json:"id"`
			Score float32 `json:"score"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/search", req, &resp); err != nil {
		return nil, err
	}
	hits := make([]domain.SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, domain.SearchHit{ChunkID: r.ID, Score: r.Score})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (s *Storage) Len() int { return s.count }

// Close drops the collection. A missing collection is not an error.
func (s *Storage) Close(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.collectionURL(), nil)
	if err != nil {
		return err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant DELETE %s: %w", s.collection, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("qdrant DELETE %s failed: %s", s.collection, resp.Status)
	}
	s.count = 0
	return nil
}

func (s *Storage) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.url, s.collection)
}

func (s *Storage) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}

func (s *Storage) do(ctx context.Context, method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

var _ domain.Index = (*Storage)(nil)
