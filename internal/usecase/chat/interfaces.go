package chat

import (
	"context"

	"github.com/futig/ragchat-backend/internal/entity"
)

// ContextRetriever turns a user query into an ordered list of context
// records.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, topK int, minSimilarity float64) ([]entity.ContextRecord, error)
}

// CompletionConnector produces model replies for a composed
// conversation.
type CompletionConnector interface {
	Complete(ctx context.Context, messages []entity.Message, opts entity.CompletionOptions) (string, error)
	Stream(ctx context.Context, messages []entity.Message, opts entity.CompletionOptions, fn func(fragment string) error) error
	Healthy(ctx context.Context) bool
	Model() string
}

// EmbeddingConnector exposes the embedding model identity for health
// reporting.
type EmbeddingConnector interface {
	Model() string
}
