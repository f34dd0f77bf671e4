package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ChunkerConfig configures how documents are split into word windows.
type ChunkerConfig struct {
	WindowSize int `yaml:"window_size"`
	Overlap    int `yaml:"overlap"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type         string                `yaml:"type"`
	Dimension    int                   `yaml:"dimension"`
	CacheSize    int                   `yaml:"cache_size"`
	CacheTTLSecs int                   `yaml:"cache_ttl_secs"`
	OpenAI       *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL              string `yaml:"url"`
	APIKey           string `yaml:"api_key"`
	CollectionPrefix string `yaml:"collection_prefix"`
	TimeoutSecs      int    `yaml:"timeout_secs"`
}

// IndexConfig selects and configures the similarity index.
type IndexConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

type RetrievalConfig struct {
	Query    string  `yaml:"query"`
	Fraction float64 `yaml:"fraction"`
	MinK     int     `yaml:"min_k"`
	MaxK     int     `yaml:"max_k"`
}

type OpenAIGenerationConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

type GeminiGenerationConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
}

type AnthropicGenerationConfig struct {
	BaseURL     string `yaml:"base_url,omitempty"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GenerationConfig selects the generative backend and how it is called.
type GenerationConfig struct {
	Provider     string                    `yaml:"provider"`
	Model        string                    `yaml:"model"`
	MaxTokens    int                       `yaml:"max_tokens"`
	Temperature  float32                   `yaml:"temperature"`
	TestMode     bool                      `yaml:"test_mode"`
	Parallelism  int                       `yaml:"parallelism"`
	TemplatesDir string                    `yaml:"templates_dir,omitempty"`
	OpenAI       OpenAIGenerationConfig    `yaml:"openai"`
	Gemini       GeminiGenerationConfig    `yaml:"gemini"`
	Anthropic    AnthropicGenerationConfig `yaml:"anthropic"`
}

type SourceConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs"`
	UserAgent   string `yaml:"user_agent,omitempty"`
}

type StudyConfig struct {
	Tiers        []string `yaml:"tiers"`
	SummaryLines int      `yaml:"summary_lines"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Index      IndexConfig      `yaml:"index"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Generation GenerationConfig `yaml:"generation"`
	Source     SourceConfig     `yaml:"source"`
	Study      StudyConfig      `yaml:"study"`
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
}

const (
	EnvModel    = "MODEL_NAME"
	EnvTestMode = "HOLAMUNDO_TEST_MODE"
	EnvLogLevel = "HOLAMUNDO_LOG_LEVEL"
)

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, applyEnv(cfg)
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./holamundo.yaml first, then ~/.config/holamundo/config.yaml.
// If neither exists, it writes defaults to ~/.config/holamundo/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "holamundo.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, applyEnv(cfg)
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports the first setting that cannot work.
func (c *AppConfig) Validate() error {
	switch {
	case c.Chunker.WindowSize <= 0:
		return fmt.Errorf("chunker.window_size must be positive, got %d", c.Chunker.WindowSize)
	case c.Chunker.Overlap < 0:
		return fmt.Errorf("chunker.overlap must not be negative, got %d", c.Chunker.Overlap)
	case c.Retrieval.MinK <= 0 || c.Retrieval.MinK > c.Retrieval.MaxK:
		return fmt.Errorf("retrieval.min_k must be in [1, max_k], got %d and %d", c.Retrieval.MinK, c.Retrieval.MaxK)
	case c.Retrieval.Fraction <= 0 || c.Retrieval.Fraction > 1:
		return fmt.Errorf("retrieval.fraction must be in (0, 1], got %g", c.Retrieval.Fraction)
	}
	switch c.Embedder.Type {
	case "hashing", "openai":
	default:
		return fmt.Errorf("unknown embedder type %q", c.Embedder.Type)
	}
	switch c.Index.Type {
	case "memory":
	case "qdrant":
		if c.Index.Qdrant == nil || c.Index.Qdrant.URL == "" {
			return errors.New("index.qdrant.url is required for the qdrant index")
		}
	default:
		return fmt.Errorf("unknown index type %q", c.Index.Type)
	}
	switch c.Generation.Provider {
	case "openai", "gemini", "anthropic":
	default:
		return fmt.Errorf("unknown generation provider %q", c.Generation.Provider)
	}
	return nil
}

func (c EmbedderConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSecs) * time.Second
}

func (c OpenAIEmbedderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

func (c QdrantConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

func (c OpenAIGenerationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

func (c AnthropicGenerationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

func (c SourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "holamundo", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Chunker:  ChunkerConfig{WindowSize: 1200, Overlap: 200},
		Embedder: EmbedderConfig{Type: "hashing", Dimension: 384, CacheSize: 512, CacheTTLSecs: 3600},
		Index:    IndexConfig{Type: "memory"},
		Retrieval: RetrievalConfig{
			Query:    "key vocabulary, main ideas and important facts of the article",
			Fraction: 0.6,
			MinK:     3,
			MaxK:     8,
		},
		Generation: GenerationConfig{
			Provider:    "openai",
			MaxTokens:   4096,
			Temperature: 0.2,
			Parallelism: 4,
			OpenAI:      OpenAIGenerationConfig{APIKeyEnv: "OPENAI_API_KEY", TimeoutSecs: 120},
			Gemini:      GeminiGenerationConfig{APIKeyEnv: "GEMINI_API_KEY"},
			Anthropic:   AnthropicGenerationConfig{APIKeyEnv: "ANTHROPIC_API_KEY", TimeoutSecs: 120},
		},
		Source: SourceConfig{TimeoutSecs: 20},
		Study:  StudyConfig{Tiers: []string{"beginner", "intermediate", "advanced"}, SummaryLines: 3},
		Log:    LogConfig{Level: "info", Format: "console"},
		Server: ServerConfig{Addr: ":8080"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Chunker.WindowSize == 0 {
		cfg.Chunker.WindowSize = def.Chunker.WindowSize
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = def.Embedder.Dimension
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = def.Index.Type
	}
	if q := cfg.Index.Qdrant; q != nil {
		if q.CollectionPrefix == "" {
			q.CollectionPrefix = "holamundo"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 10
		}
	}
	if cfg.Retrieval.Query == "" {
		cfg.Retrieval.Query = def.Retrieval.Query
	}
	if cfg.Retrieval.Fraction == 0 {
		cfg.Retrieval.Fraction = def.Retrieval.Fraction
	}
	if cfg.Retrieval.MinK == 0 {
		cfg.Retrieval.MinK = def.Retrieval.MinK
	}
	if cfg.Retrieval.MaxK == 0 {
		cfg.Retrieval.MaxK = max(def.Retrieval.MaxK, cfg.Retrieval.MinK)
	}
	g := &cfg.Generation
	if g.Provider == "" {
		g.Provider = def.Generation.Provider
	}
	if g.MaxTokens == 0 {
		g.MaxTokens = def.Generation.MaxTokens
	}
	if g.Temperature == 0 {
		g.Temperature = def.Generation.Temperature
	}
	if g.Parallelism == 0 {
		g.Parallelism = def.Generation.Parallelism
	}
	if g.OpenAI.APIKeyEnv == "" {
		g.OpenAI.APIKeyEnv = def.Generation.OpenAI.APIKeyEnv
	}
	if g.OpenAI.TimeoutSecs == 0 {
		g.OpenAI.TimeoutSecs = def.Generation.OpenAI.TimeoutSecs
	}
	if g.Gemini.APIKeyEnv == "" {
		g.Gemini.APIKeyEnv = def.Generation.Gemini.APIKeyEnv
	}
	if g.Anthropic.APIKeyEnv == "" {
		g.Anthropic.APIKeyEnv = def.Generation.Anthropic.APIKeyEnv
	}
	if g.Anthropic.TimeoutSecs == 0 {
		g.Anthropic.TimeoutSecs = def.Generation.Anthropic.TimeoutSecs
	}
	if cfg.Source.TimeoutSecs == 0 {
		cfg.Source.TimeoutSecs = def.Source.TimeoutSecs
	}
	if len(cfg.Study.Tiers) == 0 {
		cfg.Study.Tiers = def.Study.Tiers
	}
	if cfg.Study.SummaryLines == 0 {
		cfg.Study.SummaryLines = def.Study.SummaryLines
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
}

// applyEnv lets the environment override the file.
func applyEnv(cfg *AppConfig) error {
	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		cfg.Generation.Model = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTestMode)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTestMode, err)
		}
		cfg.Generation.TestMode = b
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
	return nil
}
