// Package embedding assembles the configured embedding oracle.
package embedding

import (
	"time"

	"articlerag/internal/config"
	"articlerag/internal/domain"
	"articlerag/internal/embedding/hashing"
	"articlerag/internal/embedding/openai"
)

// New builds the embedder selected by cfg.
func New(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "hashing":
		e, err := hashing.NewEmbedder(cfg.Dimension)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "openai", "":
		if cfg.OpenAI == nil {
			return nil, domain.Configf("openai embedder config missing")
		}
		c, err := openai.NewClient(openai.Config{
			BaseURL:    cfg.OpenAI.BaseURL,
			APIKeyEnv:  cfg.OpenAI.APIKeyEnv,
			Model:      cfg.OpenAI.Model,
			Dimension:  cfg.Dimension,
			Timeout:    time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			MaxRetries: cfg.OpenAI.MaxRetries,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, domain.Configf("unknown embedder: %q", cfg.Type)
	}
}
