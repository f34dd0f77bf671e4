package retriever

import (
	"context"
	"errors"
	"fmt"

	"holamundo/internal/domain"
)

// Retriever embeds chunks into an index and maps query hits back to chunks.
// The same embedder must be used for indexing and querying.
type Retriever struct {
	embedder domain.Embedder
}

func New(embedder domain.Embedder) *Retriever {
	return &Retriever{embedder: embedder}
}

// Index embeds chunks and adds them to idx in id order, so vector i belongs
// to the chunk with id i.
func (r *Retriever) Index(ctx context.Context, chunks []domain.Chunk, idx domain.Index) error {
	if len(chunks) == 0 {
		return errors.New("no chunks to index")
	}
	for i, ch := range chunks {
		if ch.ID != i {
			return fmt.Errorf("chunk at position %d has id %d", i, ch.ID)
		}
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	if err := idx.Init(ctx, len(vectors[0])); err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	if err := idx.Add(ctx, vectors); err != nil {
		return fmt.Errorf("add vectors: %w", err)
	}
	return nil
}

// Retrieve returns at most k chunks most similar to query, best first.
func (r *Retriever) Retrieve(ctx context.Context, chunks []domain.Chunk, idx domain.Index, query string, k int) ([]domain.Chunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vecs))
	}
	hits, err := idx.Search(ctx, vecs[0], k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	byID := make(map[int]domain.Chunk, len(chunks))
	for _, ch := range chunks {
		byID[ch.ID] = ch
	}
	out := make([]domain.Chunk, 0, len(hits))
	for _, h := range hits {
		ch, ok := byID[h.ChunkID]
		if !ok {
			return nil, fmt.Errorf("index hit %d has no chunk", h.ChunkID)
		}
		out = append(out, ch)
	}
	return out, nil
}
