package retrieve

import (
	"context"
	"fmt"

	"github.com/futig/ragchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Embedder maps text to a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index is a nearest-neighbor store over embeddings. Search returns hits
// ordered by ascending cosine distance; that order is authoritative.
type Index interface {
	Search(ctx context.Context, vector []float32, k int) ([]entity.SearchHit, error)
	Count(ctx context.Context) (int, error)
}

// Retriever turns a user query into an ordered list of context records.
type Retriever struct {
	embedder Embedder
	index    Index
}

func New(embedder Embedder, index Index) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
	}
}

// Retrieve embeds the query, asks the index for the nearest chunks and
// converts distances to similarities, dropping records below
// minSimilarity.
//
// Embedding failures propagate to the caller. Index failures degrade to
// an empty result set so the chat path stays available without context;
// they are logged, never raised. The similarity floor is applied after
// the index has already limited results to the k nearest neighbors, so
// fewer than topK records may surface even when more candidates exist
// beyond k.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, minSimilarity float64) ([]entity.ContextRecord, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	count, err := r.index.Count(ctx)
	if err != nil {
		ctxzap.Warn(ctx, "index unavailable, continuing without context", zap.Error(err))
		return nil, nil
	}

	// Never request more neighbors than the index holds.
	k := topK
	if count < k {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	hits, err := r.index.Search(ctx, vector, k)
	if err != nil {
		ctxzap.Warn(ctx, "index query failed, continuing without context", zap.Error(err))
		return nil, nil
	}

	records := make([]entity.ContextRecord, 0, len(hits))
	for _, hit := range hits {
		similarity := 1 - hit.Distance
		if similarity < minSimilarity {
			continue
		}
		records = append(records, entity.ContextRecord{
			Text:       hit.Text,
			Metadata:   hit.Metadata,
			Similarity: similarity,
		})
	}

	ctxzap.Debug(ctx, "context retrieved",
		zap.Int("requested", topK),
		zap.Int("returned", len(hits)),
		zap.Int("kept", len(records)),
	)

	return records, nil
}
