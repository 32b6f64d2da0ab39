package document

import (
	"context"
)

// EmbeddingConnector maps text to a fixed-length vector.
type EmbeddingConnector interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
