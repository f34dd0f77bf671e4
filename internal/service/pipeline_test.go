package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holamundo/internal/chunker"
	"holamundo/internal/domain"
	"holamundo/internal/embedding/hashing"
	"holamundo/internal/retriever"
	"holamundo/internal/source"
	"holamundo/internal/summarizer"
	"holamundo/internal/vectorstore/memory"
)

type trackedIndex struct {
	*memory.Storage
	closed bool
}

func (t *trackedIndex) Close(ctx context.Context) error {
	t.closed = true
	return t.Storage.Close(ctx)
}

func newTestPipeline(t *testing.T, gen domain.Generator, src domain.TextSource) (*Pipeline, *[]*trackedIndex) {
	t.Helper()
	var indexes []*trackedIndex
	p := NewPipeline(PipelineDeps{
		Source:    src,
		Chunker:   chunker.NewWordChunker(50, 10),
		Retriever: retriever.New(hashing.NewEmbedder(64)),
		NewIndex: func(string) domain.Index {
			idx := &trackedIndex{Storage: memory.NewStorage()}
			indexes = append(indexes, idx)
			return idx
		},
		Orchestrator: NewOrchestrator(defaultTemplates(t), gen, "", 0, nil),
		Summarizer:   summarizer.NewFrequencySummarizer(),
	})
	return p, &indexes
}

func TestTopK(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 3}, {1, 3}, {5, 3}, {6, 3}, {7, 4}, {10, 6}, {13, 7}, {14, 8}, {100, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TopK(tt.n, 0.6, 3, 8), "n=%d", tt.n)
	}
}

func TestGenerate_TestModeEndToEnd(t *testing.T) {
	p, indexes := newTestPipeline(t, testAdapter(), source.NewFetcher(source.Config{}, nil))
	text := strings.Repeat("Me gusta correr en el parque por la mañana. ", 40)

	run, err := p.Generate(context.Background(), Request{Input: text, Level: "B1", TestMode: true})
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "B1", run.Level)
	assert.NotEmpty(t, run.Summary)
	assert.Len(t, run.Chunks, 9)
	assert.Len(t, run.Context, TopK(len(run.Chunks), 0.6, 3, 8))
	for _, name := range []string{"vocabulary", "questions", "dialogue", "studyplan"} {
		assert.NotEmpty(t, run.Results[name], name)
	}
	require.Len(t, *indexes, 1)
	assert.True(t, (*indexes)[0].closed)
}

func TestGenerate_ShortTextRetrievesEverything(t *testing.T) {
	p, _ := newTestPipeline(t, testAdapter(), source.NewFetcher(source.Config{}, nil))
	run, err := p.Generate(context.Background(), Request{Input: "Hola, me llamo Ana.", Level: "A1", TestMode: true})
	require.NoError(t, err)
	require.Len(t, run.Chunks, 1)
	assert.Equal(t, run.Chunks, run.Context)
}

func TestGenerate_EmptyInput(t *testing.T) {
	p, indexes := newTestPipeline(t, testAdapter(), source.NewFetcher(source.Config{}, nil))
	_, err := p.Generate(context.Background(), Request{Input: "   ", Level: "B1", TestMode: true})
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
	assert.Empty(t, *indexes)
}

type failingSource struct{ err error }

func (f failingSource) Fetch(context.Context, string) (string, error) { return "", f.err }

func TestGenerate_SourceFailure(t *testing.T) {
	p, _ := newTestPipeline(t, testAdapter(), failingSource{err: errors.New("dns")})
	_, err := p.Generate(context.Background(), Request{Input: "https://example.invalid", Level: "B1"})
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestGenerate_BackendFailureClosesIndex(t *testing.T) {
	gen := &recordingGenerator{fail: "Task"}
	p, indexes := newTestPipeline(t, gen, source.NewFetcher(source.Config{}, nil))
	run, err := p.Generate(context.Background(), Request{Input: "Me gusta correr.", Level: "B1"})
	assert.Nil(t, run)
	assert.ErrorIs(t, err, domain.ErrBackend)
	require.Len(t, *indexes, 1)
	assert.True(t, (*indexes)[0].closed)
}
