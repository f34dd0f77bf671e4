package chunker

import (
	"strings"

	"holamundo/internal/domain"
)

const (
	DefaultWindowSize = 1200
	DefaultOverlap    = 200
)

// WordChunker splits text into fixed-size word windows with overlap.
type WordChunker struct {
	windowSize int
	overlap    int
}

func NewWordChunker(windowSize, overlap int) *WordChunker {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if overlap < 0 {
		overlap = 0
	}
	return &WordChunker{windowSize: windowSize, overlap: overlap}
}

// Step is the number of words the window start advances by; never below 1.
func (c *WordChunker) Step() int {
	return max(1, c.windowSize-c.overlap)
}

// Chunk splits text on whitespace. Windows advance by Step until one would
// reach the final word; that last window is anchored to end on it, so every
// window except a lone short one holds windowSize words.
func (c *WordChunker) Chunk(text string) []domain.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	step := c.Step()
	var chunks []domain.Chunk
	for start := 0; ; start += step {
		if start+c.windowSize >= len(words) {
			start = max(0, len(words)-c.windowSize)
			chunks = append(chunks, domain.Chunk{ID: len(chunks), Text: strings.Join(words[start:], " ")})
			return chunks
		}
		chunks = append(chunks, domain.Chunk{
			ID:   len(chunks),
			Text: strings.Join(words[start:start+c.windowSize], " "),
		})
	}
}
