package completion

import (
	"context"
	"fmt"

	"github.com/futig/ragchat-backend/internal/config"
	"github.com/futig/ragchat-backend/internal/entity"
	"go.uber.org/zap"
)

// MockConnector echoes the last user message back. Lets the HTTP layer
// be exercised without a running model.
type MockConnector struct {
	config config.CompletionConfig
	logger *zap.Logger
}

func NewMockConnector(cfg config.CompletionConfig, logger *zap.Logger) *MockConnector {
	return &MockConnector{config: cfg, logger: logger}
}

func (c *MockConnector) Complete(_ context.Context, messages []entity.Message, _ entity.CompletionOptions) (string, error) {
	c.logger.Info("[MOCK] generating completion", zap.Int("messages", len(messages)))
	return fmt.Sprintf("Mock reply to: %s", lastUserContent(messages)), nil
}

func (c *MockConnector) Stream(ctx context.Context, messages []entity.Message, opts entity.CompletionOptions, fn func(fragment string) error) error {
	reply, err := c.Complete(ctx, messages, opts)
	if err != nil {
		return err
	}
	return fn(reply)
}

func (c *MockConnector) Healthy(_ context.Context) bool {
	return true
}

func (c *MockConnector) Model() string {
	return "mock-" + c.config.Model
}

func lastUserContent(messages []entity.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == entity.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
