package config

import (
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseConfig(t *testing.T) *Config {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/ragchat")

	cfg := &Config{}
	require.NoError(t, env.Parse(cfg))
	return cfg
}

func TestConfigDefaults(t *testing.T) {
	cfg := parseConfig(t)

	assert.Equal(t, ":8000", cfg.ServerAddr)
	assert.Equal(t, 1000, cfg.ChunkingCfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkingCfg.Overlap)
	assert.Equal(t, 6, cfg.RetrievalCfg.TopK)
	assert.Equal(t, 0.0, cfg.RetrievalCfg.MinSimilarity)
	assert.Equal(t, 3, cfg.RetrievalCfg.MaxSources)
	assert.Equal(t, 10, cfg.PromptCfg.HistoryLimit)
	assert.Equal(t, "ollama", cfg.EmbeddingCfg.Provider)
	assert.Equal(t, "mxbai-embed-large", cfg.EmbeddingCfg.Model)
	assert.Equal(t, 1024, cfg.EmbeddingCfg.Dimensions)
	assert.Equal(t, "llama3.2", cfg.CompletionCfg.Model)
	assert.Equal(t, 0.7, cfg.CompletionCfg.Temperature)
	assert.Equal(t, uint(3), cfg.EmbeddingCfg.Retry.Attempts)
	assert.False(t, cfg.EnableMocks)

	require.NoError(t, validateConfig(cfg))
}

func TestValidateConfig(t *testing.T) {
	t.Run("Rejects overlap not smaller than chunk size", func(t *testing.T) {
		cfg := parseConfig(t)
		cfg.ChunkingCfg.Overlap = cfg.ChunkingCfg.ChunkSize

		err := validateConfig(cfg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "CHUNKING_OVERLAP")
	})

	t.Run("Rejects non-positive top k", func(t *testing.T) {
		cfg := parseConfig(t)
		cfg.RetrievalCfg.TopK = 0

		err := validateConfig(cfg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "RETRIEVAL_TOP_K")
	})

	t.Run("Rejects unknown embedding provider", func(t *testing.T) {
		cfg := parseConfig(t)
		cfg.EmbeddingCfg.Provider = "azure"

		err := validateConfig(cfg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "EMBEDDING_PROVIDER")
	})

	t.Run("Requires service URL for openai provider", func(t *testing.T) {
		cfg := parseConfig(t)
		cfg.EmbeddingCfg.Provider = "openai"

		err := validateConfig(cfg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "EMBEDDING_OPENAI_SERVICE_URL")
	})

	t.Run("Rejects out-of-range temperature", func(t *testing.T) {
		cfg := parseConfig(t)
		cfg.CompletionCfg.Temperature = 2.5

		err := validateConfig(cfg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "COMPLETION_TEMPERATURE")
	})
}
