package embedding

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"net/url"

	"github.com/avast/retry-go/v4"
	"github.com/futig/ragchat-backend/internal/config"
	"github.com/futig/ragchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ollama/ollama/api"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// OllamaConnector generates embeddings with a local Ollama instance.
// Identical texts hit a TTL cache instead of the model, which matters on
// the ingestion path where re-uploaded documents repeat chunks.
type OllamaConnector struct {
	client *api.Client
	config config.EmbeddingConfig
	cache  *gocache.Cache
	logger *zap.Logger
}

func NewOllamaConnector(cfg config.EmbeddingConfig, logger *zap.Logger) (*OllamaConnector, error) {
	base, err := url.Parse(cfg.OllamaURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama URL: %w", err)
	}

	return &OllamaConnector{
		client: api.NewClient(base, http.DefaultClient),
		config: cfg,
		cache:  gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		logger: logger,
	}, nil
}

// Embed maps text to a fixed-length vector.
func (c *OllamaConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]float32), nil
	}

	req := api.EmbeddingRequest{
		Model:  c.config.Model,
		Prompt: text,
	}

	var resp *api.EmbeddingResponse
	err := retry.Do(
		func() error {
			var reqErr error
			resp, reqErr = c.client.Embeddings(ctx, &req)
			return reqErr
		},
		append(c.config.Retry.ToRetryOptions(), retry.Context(ctx))...,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrEmbedding, err)
	}

	vector, err := c.validate(resp.Embedding)
	if err != nil {
		return nil, err
	}

	ctxzap.Debug(ctx, "text embedded",
		zap.String("model", c.config.Model),
		zap.Int("text_length", len(text)),
		zap.Int("dimensions", len(vector)),
	)

	c.cache.Set(key, vector, gocache.DefaultExpiration)
	return vector, nil
}

// Model returns the configured embedding model name.
func (c *OllamaConnector) Model() string {
	return c.config.Model
}

func (c *OllamaConnector) validate(raw []float64) ([]float32, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty vector returned", entity.ErrEmbedding)
	}
	if c.config.Dimensions > 0 && len(raw) != c.config.Dimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", entity.ErrEmbedding, c.config.Dimensions, len(raw))
	}

	vector := make([]float32, len(raw))
	for i, v := range raw {
		vector[i] = float32(v)
	}
	return vector, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", sum)
}
