package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"holamundo/internal/domain"
	"holamundo/internal/retriever"
)

// DefaultQuery steers retrieval toward passages useful for study material.
const DefaultQuery = "key vocabulary, main ideas and important facts of the article"

const (
	DefaultTopKFraction = 0.6
	DefaultMinK         = 3
	DefaultMaxK         = 8
	DefaultSummaryLen   = 3
)

// IndexFactory returns a fresh, uninitialised index for one run.
type IndexFactory func(runID string) domain.Index

// Request is one generation run.
type Request struct {
	Input    string
	Level    string
	TestMode bool
}

// Run is everything a generation run produced.
type Run struct {
	ID      string                  `json:"id"`
	Level   string                  `json:"level"`
	Summary string                  `json:"summary,omitempty"`
	Chunks  []domain.Chunk          `json:"chunks"`
	Context []domain.Chunk          `json:"context"`
	Results domain.GenerationResult `json:"results"`
}

// Retrieval tunes how many chunks feed the prompts.
type Retrieval struct {
	Query    string
	Fraction float64
	MinK     int
	MaxK     int
}

// Pipeline runs source → chunk → embed/index → retrieve → generate.
type Pipeline struct {
	source       domain.TextSource
	chunker      domain.Chunker
	retriever    *retriever.Retriever
	newIndex     IndexFactory
	orchestrator *Orchestrator
	summarizer   domain.Summarizer
	summaryLen   int
	retrieval    Retrieval
	logger       *zap.Logger
}

type PipelineDeps struct {
	Source       domain.TextSource
	Chunker      domain.Chunker
	Retriever    *retriever.Retriever
	NewIndex     IndexFactory
	Orchestrator *Orchestrator
	// Summarizer is optional.
	Summarizer domain.Summarizer
	SummaryLen int
	Retrieval  Retrieval
	Logger     *zap.Logger
}

func NewPipeline(d PipelineDeps) *Pipeline {
	r := d.Retrieval
	if r.Query == "" {
		r.Query = DefaultQuery
	}
	if r.Fraction <= 0 {
		r.Fraction = DefaultTopKFraction
	}
	if r.MinK <= 0 {
		r.MinK = DefaultMinK
	}
	if r.MaxK < r.MinK {
		r.MaxK = max(DefaultMaxK, r.MinK)
	}
	if d.SummaryLen <= 0 {
		d.SummaryLen = DefaultSummaryLen
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Pipeline{
		source:       d.Source,
		chunker:      d.Chunker,
		retriever:    d.Retriever,
		newIndex:     d.NewIndex,
		orchestrator: d.Orchestrator,
		summarizer:   d.Summarizer,
		summaryLen:   d.SummaryLen,
		retrieval:    r,
		logger:       d.Logger,
	}
}

// TopK is the number of chunks retrieved for n chunks: fraction of n,
// clamped to [minK, maxK].
func TopK(n int, fraction float64, minK, maxK int) int {
	k := int(math.Floor(float64(n) * fraction))
	return min(max(k, minK), maxK)
}

// Generate executes one run. Empty input fails before any work is done.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*Run, error) {
	if strings.TrimSpace(req.Input) == "" {
		return nil, domain.ErrEmptyInput
	}
	run := &Run{ID: uuid.NewString(), Level: req.Level}
	log := p.logger.With(zap.String("run", run.ID), zap.String("level", req.Level), zap.Bool("test_mode", req.TestMode))
	total := time.Now()

	start := time.Now()
	text, err := p.source.Fetch(ctx, req.Input)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyInput) || errors.Is(err, domain.ErrSourceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	log.Info("text loaded", zap.Int("chars", len(text)), zap.Duration("elapsed", time.Since(start)))

	start = time.Now()
	run.Chunks = p.chunker.Chunk(text)
	if len(run.Chunks) == 0 {
		return nil, domain.ErrEmptyInput
	}
	log.Info("text chunked", zap.Int("chunks", len(run.Chunks)), zap.Duration("elapsed", time.Since(start)))

	idx := p.newIndex(run.ID)
	defer func() {
		// The run's context may already be cancelled; cleanup still has to reach the index.
		if err := idx.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn("close index", zap.Error(err))
		}
	}()

	start = time.Now()
	if err := p.retriever.Index(ctx, run.Chunks, idx); err != nil {
		return nil, err
	}
	log.Info("chunks indexed", zap.Int("vectors", idx.Len()), zap.Duration("elapsed", time.Since(start)))

	start = time.Now()
	k := TopK(len(run.Chunks), p.retrieval.Fraction, p.retrieval.MinK, p.retrieval.MaxK)
	run.Context, err = p.retriever.Retrieve(ctx, run.Chunks, idx, p.retrieval.Query, k)
	if err != nil {
		return nil, err
	}
	log.Info("context retrieved", zap.Int("k", k), zap.Int("chunks", len(run.Context)), zap.Duration("elapsed", time.Since(start)))

	start = time.Now()
	run.Results, err = p.orchestrator.RunAll(ctx, run.Context, req.Level, req.TestMode)
	if err != nil {
		return nil, err
	}
	log.Info("materials generated", zap.Int("templates", len(run.Results)), zap.Duration("elapsed", time.Since(start)))

	if p.summarizer != nil {
		focus := make([]string, len(run.Context))
		for i, c := range run.Context {
			focus[i] = c.Text
		}
		run.Summary, err = p.summarizer.Summarize(text, focus, p.summaryLen)
		if err != nil {
			log.Warn("summarize", zap.Error(err))
		}
	}
	log.Info("run complete", zap.Duration("elapsed", time.Since(total)))
	return run, nil
}

// Orchestrator exposes the feedback calls to callers holding a pipeline.
func (p *Pipeline) Orchestrator() *Orchestrator { return p.orchestrator }
