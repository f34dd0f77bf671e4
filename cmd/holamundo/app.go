package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"holamundo/internal/chunker"
	"holamundo/internal/config"
	"holamundo/internal/domain"
	"holamundo/internal/embedding"
	"holamundo/internal/embedding/hashing"
	"holamundo/internal/embedding/openai"
	"holamundo/internal/llm"
	"holamundo/internal/prompt"
	"holamundo/internal/retriever"
	"holamundo/internal/service"
	"holamundo/internal/source"
	"holamundo/internal/summarizer"
	"holamundo/internal/vectorstore/memory"
	"holamundo/internal/vectorstore/qdrant"
)

// app is the assembled component graph shared by every command.
type app struct {
	cfg          *config.AppConfig
	logger       *zap.Logger
	pipeline     *service.Pipeline
	orchestrator *service.Orchestrator
}

func newApp(cfg *config.AppConfig, logger *zap.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	emb := embedding.NewCached(
		embedding.NewShared(embedderID(cfg), embedderLoader(cfg), logger),
		cfg.Embedder.CacheSize, cfg.Embedder.CacheTTL(), logger)

	var templates *prompt.Collection
	if cfg.Generation.TemplatesDir != "" {
		templates = prompt.FromDir(cfg.Generation.TemplatesDir)
	} else {
		templates = prompt.Default()
	}
	tmpls, err := templates.Load()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	gen := llm.NewAdapter(providerFactory(cfg), llm.Options{
		Model:       cfg.Generation.Model,
		MaxTokens:   cfg.Generation.MaxTokens,
		Temperature: cfg.Generation.Temperature,
	}, logger.Named("llm"))
	orch := service.NewOrchestrator(tmpls, gen, cfg.Generation.Model, cfg.Generation.Parallelism, logger.Named("orchestrator"))

	pipeline := service.NewPipeline(service.PipelineDeps{
		Source:       source.NewFetcher(source.Config{Timeout: cfg.Source.Timeout(), UserAgent: cfg.Source.UserAgent}, logger.Named("source")),
		Chunker:      chunker.NewWordChunker(cfg.Chunker.WindowSize, cfg.Chunker.Overlap),
		Retriever:    retriever.New(emb),
		NewIndex:     indexFactory(cfg),
		Orchestrator: orch,
		Summarizer:   summarizer.NewFrequencySummarizer(),
		SummaryLen:   cfg.Study.SummaryLines,
		Retrieval: service.Retrieval{
			Query:    cfg.Retrieval.Query,
			Fraction: cfg.Retrieval.Fraction,
			MinK:     cfg.Retrieval.MinK,
			MaxK:     cfg.Retrieval.MaxK,
		},
		Logger: logger.Named("pipeline"),
	})
	return &app{cfg: cfg, logger: logger, pipeline: pipeline, orchestrator: orch}, nil
}

// embedderID names the configured model for cache keys before it is loaded.
func embedderID(cfg *config.AppConfig) string {
	if cfg.Embedder.Type == "openai" {
		return "openai:" + cfg.Embedder.OpenAI.Model
	}
	return fmt.Sprintf("hashing:%d", cfg.Embedder.Dimension)
}

func embedderLoader(cfg *config.AppConfig) embedding.Loader {
	return func(ctx context.Context) (domain.Embedder, error) {
		switch cfg.Embedder.Type {
		case "openai":
			oc := cfg.Embedder.OpenAI
			return openai.NewEmbedder(openai.Config{
				BaseURL:   oc.BaseURL,
				APIKeyEnv: oc.APIKeyEnv,
				Model:     oc.Model,
				Timeout:   oc.Timeout(),
				BatchSize: oc.BatchSize,
			})
		default:
			return hashing.NewEmbedder(cfg.Embedder.Dimension), nil
		}
	}
}

func providerFactory(cfg *config.AppConfig) llm.ProviderFactory {
	g := cfg.Generation
	return func(ctx context.Context) (llm.Provider, error) {
		switch g.Provider {
		case "gemini":
			return llm.NewGeminiProvider(ctx, llm.GeminiConfig{APIKeyEnv: g.Gemini.APIKeyEnv})
		case "anthropic":
			return llm.NewAnthropicProvider(llm.AnthropicConfig{
				BaseURL:   g.Anthropic.BaseURL,
				APIKeyEnv: g.Anthropic.APIKeyEnv,
				Timeout:   g.Anthropic.Timeout(),
			})
		default:
			return llm.NewOpenAIProvider(llm.OpenAIConfig{
				BaseURL:   g.OpenAI.BaseURL,
				APIKeyEnv: g.OpenAI.APIKeyEnv,
				Timeout:   g.OpenAI.Timeout(),
			})
		}
	}
}

func indexFactory(cfg *config.AppConfig) service.IndexFactory {
	return func(runID string) domain.Index {
		if cfg.Index.Type == "qdrant" {
			q := cfg.Index.Qdrant
			return qdrant.NewStorage(qdrant.Config{
				URL:        q.URL,
				APIKey:     q.APIKey,
				Collection: q.CollectionPrefix + "-" + runID,
				Timeout:    q.Timeout(),
			})
		}
		return memory.NewStorage()
	}
}
