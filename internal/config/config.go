package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"articlerag/internal/domain"
)

// OpenAIConfig holds connection settings shared by the OpenAI-compatible
// embedding and chat clients.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// EmbedderConfig selects and configures the text embedder implementation.
// Dimension is fixed for the lifetime of a snapshot.
type EmbedderConfig struct {
	Type      string        `yaml:"type"`
	Dimension int           `yaml:"dimension"`
	OpenAI    *OpenAIConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how article text is split into windows.
type ChunkerConfig struct {
	Unit      string `yaml:"unit"`
	ChunkSize int    `yaml:"chunk_size"`
	Overlap   int    `yaml:"overlap"`
}

// IndexConfig locates the snapshot and tunes the build.
type IndexConfig struct {
	SnapshotDir string `yaml:"snapshot_dir"`
	Workers     int    `yaml:"workers"`
}

// GeneratorConfig selects and configures the answer generator.
type GeneratorConfig struct {
	Type         string        `yaml:"type"`
	MaxSentences int           `yaml:"max_sentences"`
	OpenAI       *OpenAIConfig `yaml:"openai,omitempty"`
}

// QueryConfig holds retrieval defaults.
type QueryConfig struct {
	TopK int `yaml:"top_k"`
}

// ExtractConfig locates the raw article archives.
type ExtractConfig struct {
	DataDir string `yaml:"data_dir"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Index     IndexConfig     `yaml:"index"`
	Generator GeneratorConfig `yaml:"generator"`
	Query     QueryConfig     `yaml:"query"`
	Extract   ExtractConfig   `yaml:"extract"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/articlerag/config.yaml.
// If neither exists, it writes defaults to ~/.config/articlerag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
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
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
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

// Validate rejects settings that would fail later in a build or query.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case "openai", "hashing":
	default:
		return domain.Configf("unknown embedder: %q", c.Embedder.Type)
	}
	if c.Embedder.Dimension <= 0 {
		return domain.Configf("embedder dimension must be positive, got %d", c.Embedder.Dimension)
	}
	switch c.Chunker.Unit {
	case "word", "rune":
	default:
		return domain.Configf("unknown chunk unit: %q", c.Chunker.Unit)
	}
	if c.Chunker.ChunkSize <= 0 {
		return domain.Configf("chunk_size must be positive, got %d", c.Chunker.ChunkSize)
	}
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.ChunkSize {
		return domain.Configf("overlap %d must be in [0, chunk_size %d)", c.Chunker.Overlap, c.Chunker.ChunkSize)
	}
	switch c.Generator.Type {
	case "openai", "extractive":
	default:
		return domain.Configf("unknown generator: %q", c.Generator.Type)
	}
	if c.Query.TopK <= 0 {
		return domain.Configf("top_k must be positive, got %d", c.Query.TopK)
	}
	if c.Index.SnapshotDir == "" {
		return domain.Configf("index.snapshot_dir is required")
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "articlerag", "config.yaml"), nil
}

// Default returns the built-in configuration: OpenAI embeddings and answers,
// 1000-word windows overlapping by 200 words, five passages per question.
func Default() *AppConfig {
	cfg := &AppConfig{
		Embedder:  EmbedderConfig{Type: "openai", Dimension: 1536, OpenAI: &OpenAIConfig{}},
		Chunker:   ChunkerConfig{Unit: "word", ChunkSize: 1000, Overlap: 200},
		Index:     IndexConfig{SnapshotDir: "db", Workers: 4},
		Generator: GeneratorConfig{Type: "openai", MaxSentences: 5, OpenAI: &OpenAIConfig{}},
		Query:     QueryConfig{TopK: 5},
		Extract:   ExtractConfig{DataDir: "data/raw"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "openai"
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 1536
	}
	if cfg.Chunker.Unit == "" {
		cfg.Chunker.Unit = "word"
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 1000
		if cfg.Chunker.Overlap == 0 {
			cfg.Chunker.Overlap = 200
		}
	}
	if cfg.Index.SnapshotDir == "" {
		cfg.Index.SnapshotDir = "db"
	}
	if cfg.Index.Workers <= 0 {
		cfg.Index.Workers = 4
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "openai"
	}
	if cfg.Generator.MaxSentences <= 0 {
		cfg.Generator.MaxSentences = 5
	}
	if cfg.Query.TopK == 0 {
		cfg.Query.TopK = 5
	}
	if cfg.Extract.DataDir == "" {
		cfg.Extract.DataDir = "data/raw"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIConfig{}
		}
		openAIDefaults(cfg.Embedder.OpenAI, "text-embedding-3-small")
	}
	if cfg.Generator.Type == "openai" {
		if cfg.Generator.OpenAI == nil {
			cfg.Generator.OpenAI = &OpenAIConfig{}
		}
		openAIDefaults(cfg.Generator.OpenAI, "gpt-4o-mini")
	}
}

func openAIDefaults(c *OpenAIConfig, model string) {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Model == "" {
		c.Model = model
	}
	if c.TimeoutSecs == 0 {
		c.TimeoutSecs = 30
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
}
