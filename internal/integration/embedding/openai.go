package embedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/futig/ragchat-backend/internal/config"
	"github.com/futig/ragchat-backend/internal/entity"
	"github.com/futig/ragchat-backend/internal/integration/common"
	pkgHTTP "github.com/futig/ragchat-backend/pkg/http"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// OpenAIConnector talks to an OpenAI-compatible embeddings endpoint.
// Works with OpenAI itself and with self-hosted gateways that expose
// the same wire format.
type OpenAIConnector struct {
	connector *pkgHTTP.Connector
	config    config.EmbeddingConfig
	cache     *gocache.Cache
	logger    *zap.Logger
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func NewOpenAIConnector(cfg config.EmbeddingConfig, logger *zap.Logger) *OpenAIConnector {
	return &OpenAIConnector{
		connector: common.NewBaseConnector(cfg.OpenAI.HTTPClientConfig, logger),
		config:    cfg,
		cache:     gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		logger:    logger,
	}
}

// Embed maps text to a fixed-length vector.
func (c *OpenAIConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]float32), nil
	}

	req := embeddingsRequest{
		Model: c.config.OpenAI.Model,
		Input: []string{text},
	}

	var resp embeddingsResponse
	err := retry.Do(
		func() error {
			return c.connector.DoRequest(ctx, http.MethodPost, c.config.OpenAI.EmbeddingsEndpoint, req, &resp)
		},
		append(c.config.Retry.ToRetryOptions(), retry.Context(ctx))...,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrEmbedding, err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty vector returned", entity.ErrEmbedding)
	}

	vector := resp.Data[0].Embedding
	if c.config.Dimensions > 0 && len(vector) != c.config.Dimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", entity.ErrEmbedding, c.config.Dimensions, len(vector))
	}

	c.cache.Set(key, vector, gocache.DefaultExpiration)
	return vector, nil
}

// Model returns the configured embedding model name.
func (c *OpenAIConnector) Model() string {
	return c.config.OpenAI.Model
}
