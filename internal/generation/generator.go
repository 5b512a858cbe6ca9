// Package generation assembles the configured answer oracle.
package generation

import (
	"time"

	"articlerag/internal/config"
	"articlerag/internal/domain"
	"articlerag/internal/generation/extractive"
	"articlerag/internal/generation/openai"
)

// New builds the generator selected by cfg.
func New(cfg config.GeneratorConfig) (domain.Generator, error) {
	switch cfg.Type {
	case "extractive":
		return extractive.New(cfg.MaxSentences), nil
	case "openai", "":
		if cfg.OpenAI == nil {
			return nil, domain.Configf("openai generator config missing")
		}
		c, err := openai.NewClient(openai.Config{
			BaseURL:    cfg.OpenAI.BaseURL,
			APIKeyEnv:  cfg.OpenAI.APIKeyEnv,
			Model:      cfg.OpenAI.Model,
			Timeout:    time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			MaxRetries: cfg.OpenAI.MaxRetries,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, domain.Configf("unknown generator: %q", cfg.Type)
	}
}
