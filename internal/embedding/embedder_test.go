package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"articlerag/internal/config"
	"articlerag/internal/domain"
)

func TestNew(t *testing.T) {
	t.Setenv("ARTICLERAG_TEST_FACTORY_KEY", "sk-test")

	tests := []struct {
		name     string
		cfg      config.EmbedderConfig
		wantName string
		wantErr  error
	}{
		{
			name:     "hashing",
			cfg:      config.EmbedderConfig{Type: "hashing", Dimension: 32},
			wantName: "hashing",
		},
		{
			name: "openai",
			cfg: config.EmbedderConfig{Type: "openai", Dimension: 512, OpenAI: &config.OpenAIConfig{
				APIKeyEnv: "ARTICLERAG_TEST_FACTORY_KEY", Model: "text-embedding-3-large",
			}},
			wantName: "openai:text-embedding-3-large",
		},
		{
			name:    "openai without settings",
			cfg:     config.EmbedderConfig{Type: "openai", Dimension: 512},
			wantErr: domain.ErrConfiguration,
		},
		{
			name:    "unknown",
			cfg:     config.EmbedderConfig{Type: "bert", Dimension: 8},
			wantErr: domain.ErrConfiguration,
		},
		{
			name:    "hashing zero dimension",
			cfg:     config.EmbedderConfig{Type: "hashing"},
			wantErr: domain.ErrConfiguration,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, e.Name())
			assert.Equal(t, tt.cfg.Dimension, e.Dimension())
		})
	}
}
