package chat

import (
	"context"

	"github.com/futig/ragchat-backend/internal/entity"
)

type ChatUsecase interface {
	Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error)
	ChatStream(ctx context.Context, req *entity.ChatRequest, fn func(fragment string) error) ([]entity.SourceAttribution, error)
	Health(ctx context.Context) *entity.HealthStatus
}
