package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/futig/ragchat-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return f.vector, f.err
}

type fakeIndex struct {
	hits      []entity.SearchHit
	searchErr error
	count     int
	countErr  error
	lastK     int
}

func (f *fakeIndex) Search(ctx context.Context, vector []float32, k int) ([]entity.SearchHit, error) {
	f.lastK = k
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if k > len(f.hits) {
		k = len(f.hits)
	}
	return f.hits[:k], nil
}

func (f *fakeIndex) Count(ctx context.Context) (int, error) {
	return f.count, f.countErr
}

func hit(text string, distance float64) entity.SearchHit {
	return entity.SearchHit{
		Text:     text,
		Metadata: entity.ChunkMetadata{Source: text + ".txt"},
		Distance: distance,
	}
}

func TestRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("Converts distances and applies similarity floor", func(t *testing.T) {
		index := &fakeIndex{
			count: 3,
			hits:  []entity.SearchHit{hit("a", 0.1), hit("b", 0.6), hit("c", 1.3)},
		}
		r := New(&fakeEmbedder{vector: []float32{1, 0}}, index)

		records, err := r.Retrieve(ctx, "query", 3, 0.5)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "a", records[0].Text)
		assert.InDelta(t, 0.9, records[0].Similarity, 1e-9)
	})

	t.Run("Default floor keeps everything including negative similarity", func(t *testing.T) {
		index := &fakeIndex{
			count: 3,
			hits:  []entity.SearchHit{hit("a", 0.1), hit("b", 0.6), hit("c", 1.3)},
		}
		r := New(&fakeEmbedder{vector: []float32{1, 0}}, index)

		records, err := r.Retrieve(ctx, "query", 3, -1)

		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.InDelta(t, 0.9, records[0].Similarity, 1e-9)
		assert.InDelta(t, 0.4, records[1].Similarity, 1e-9)
		assert.InDelta(t, -0.3, records[2].Similarity, 1e-9)
	})

	t.Run("Preserves the index order", func(t *testing.T) {
		index := &fakeIndex{
			count: 3,
			hits:  []entity.SearchHit{hit("first", 0.2), hit("second", 0.3), hit("third", 0.4)},
		}
		r := New(&fakeEmbedder{vector: []float32{1, 0}}, index)

		records, err := r.Retrieve(ctx, "query", 3, 0)

		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "first", records[0].Text)
		assert.Equal(t, "second", records[1].Text)
		assert.Equal(t, "third", records[2].Text)
	})

	t.Run("Clamps k to the index cardinality", func(t *testing.T) {
		index := &fakeIndex{count: 2, hits: []entity.SearchHit{hit("a", 0.1), hit("b", 0.2)}}
		r := New(&fakeEmbedder{vector: []float32{1, 0}}, index)

		records, err := r.Retrieve(ctx, "query", 10, 0)

		require.NoError(t, err)
		assert.Equal(t, 2, index.lastK)
		assert.Len(t, records, 2)
	})

	t.Run("Empty index yields no records and no search call", func(t *testing.T) {
		index := &fakeIndex{count: 0}
		r := New(&fakeEmbedder{vector: []float32{1, 0}}, index)

		records, err := r.Retrieve(ctx, "query", 6, 0)

		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Zero(t, index.lastK)
	})

	t.Run("Embedding failure propagates", func(t *testing.T) {
		embedder := &fakeEmbedder{err: entity.ErrEmbedding}
		r := New(embedder, &fakeIndex{count: 1})

		_, err := r.Retrieve(ctx, "query", 6, 0)

		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrEmbedding)
	})

	t.Run("Index failure degrades to empty context", func(t *testing.T) {
		index := &fakeIndex{count: 5, searchErr: errors.New("connection refused")}
		r := New(&fakeEmbedder{vector: []float32{1, 0}}, index)

		records, err := r.Retrieve(ctx, "query", 6, 0)

		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Count failure degrades to empty context", func(t *testing.T) {
		index := &fakeIndex{countErr: errors.New("connection refused")}
		r := New(&fakeEmbedder{vector: []float32{1, 0}}, index)

		records, err := r.Retrieve(ctx, "query", 6, 0)

		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Deterministic for a fixed index state", func(t *testing.T) {
		index := &fakeIndex{
			count: 3,
			hits:  []entity.SearchHit{hit("a", 0.15), hit("b", 0.35), hit("c", 0.55)},
		}
		r := New(&fakeEmbedder{vector: []float32{1, 0}}, index)

		first, err := r.Retrieve(ctx, "query", 3, 0.5)
		require.NoError(t, err)
		second, err := r.Retrieve(ctx, "query", 3, 0.5)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}
