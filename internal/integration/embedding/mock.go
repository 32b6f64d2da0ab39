package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"

	"github.com/futig/ragchat-backend/internal/config"
	"go.uber.org/zap"
)

// MockConnector produces deterministic pseudo-vectors derived from the
// text hash. Lets the rest of the pipeline run without Ollama.
type MockConnector struct {
	config config.EmbeddingConfig
	logger *zap.Logger
}

func NewMockConnector(cfg config.EmbeddingConfig, logger *zap.Logger) *MockConnector {
	return &MockConnector{config: cfg, logger: logger}
}

func (c *MockConnector) Embed(_ context.Context, text string) ([]float32, error) {
	c.logger.Info("[MOCK] embedding text", zap.Int("text_length", len(text)))

	dims := c.config.Dimensions
	if dims <= 0 {
		dims = 1024
	}

	sum := sha256.Sum256([]byte(text))
	vector := make([]float32, dims)
	for i := range vector {
		word := binary.BigEndian.Uint32(sum[(i*4)%28 : (i*4)%28+4])
		vector[i] = float32(word%2000)/1000 - 1
	}
	return vector, nil
}

func (c *MockConnector) Model() string {
	return "mock-" + c.config.Model
}
