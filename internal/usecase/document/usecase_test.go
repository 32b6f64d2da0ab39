package document

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"testing"

	"github.com/futig/ragchat-backend/internal/config"
	"github.com/futig/ragchat-backend/internal/entity"
	"github.com/futig/ragchat-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeRepo struct {
	chunks    map[string][]entity.Chunk
	resetDone bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{chunks: make(map[string][]entity.Chunk)}
}

func (f *fakeRepo) Upsert(_ context.Context, chunks []entity.Chunk) error {
	for _, c := range chunks {
		f.chunks[c.Metadata.Source] = append(f.chunks[c.Metadata.Source], c)
	}
	return nil
}

func (f *fakeRepo) Search(_ context.Context, _ []float32, _ int) ([]entity.SearchHit, error) {
	return nil, nil
}

func (f *fakeRepo) Count(_ context.Context) (int, error) {
	total := 0
	for _, chunks := range f.chunks {
		total += len(chunks)
	}
	return total, nil
}

func (f *fakeRepo) ListSources(_ context.Context) ([]entity.SourceInfo, error) {
	sources := make([]entity.SourceInfo, 0, len(f.chunks))
	for source, chunks := range f.chunks {
		sources = append(sources, entity.SourceInfo{Source: source, Chunks: len(chunks)})
	}
	return sources, nil
}

func (f *fakeRepo) DeleteBySource(_ context.Context, source string) (int64, error) {
	chunks, ok := f.chunks[source]
	if !ok {
		return 0, fmt.Errorf("%w: %s", entity.ErrDocumentNotFound, source)
	}
	delete(f.chunks, source)
	return int64(len(chunks)), nil
}

func (f *fakeRepo) Reset(_ context.Context) error {
	f.chunks = make(map[string][]entity.Chunk)
	f.resetDone = true
	return nil
}

func newUsecase(repo *fakeRepo, embedder *fakeEmbedder) *DocumentUsecase {
	v := validator.NewFileValidator(config.FileUploadConfig{
		MaxFileSize:  1 << 20,
		MaxTotalSize: 4 << 20,
		MaxFileCount: 4,
	})
	chunking := config.ChunkingConfig{ChunkSize: 100, Overlap: 20}

	return NewUsecase(repo, embedder, v, chunking, zap.NewNop())
}

func uploadHeaders(t *testing.T, filename, content string) []*multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fw, err := w.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)

	return form.File["files"]
}

func TestUpload(t *testing.T) {
	t.Run("Ingests a text file into embedded chunks", func(t *testing.T) {
		repo := newFakeRepo()
		embedder := &fakeEmbedder{}
		uc := newUsecase(repo, embedder)

		text := "First sentence of the document. Second sentence follows here. " +
			"Third sentence keeps the text going. Fourth sentence ends it."
		resp, err := uc.Upload(context.Background(), uploadHeaders(t, "notes.txt", text))

		require.NoError(t, err)
		require.Len(t, resp.Files, 1)
		assert.Equal(t, "notes.txt", resp.Files[0].Source)
		assert.Positive(t, resp.Files[0].ChunksCreated)

		stored := repo.chunks["notes.txt"]
		require.Len(t, stored, resp.Files[0].ChunksCreated)
		for i, c := range stored {
			assert.Equal(t, i, c.Metadata.ChunkIndex)
			assert.Equal(t, len(stored), c.Metadata.TotalChunks)
			assert.NotEmpty(t, c.Embedding)
		}
		assert.Equal(t, len(stored), embedder.calls)
	})

	t.Run("Sanitizes the source name", func(t *testing.T) {
		repo := newFakeRepo()
		uc := newUsecase(repo, &fakeEmbedder{})

		resp, err := uc.Upload(context.Background(), uploadHeaders(t, "my notes (draft).txt", "hello world"))

		require.NoError(t, err)
		assert.Equal(t, "my_notes_draft.txt", resp.Files[0].Source)
	})

	t.Run("Re-upload replaces previous chunks", func(t *testing.T) {
		repo := newFakeRepo()
		uc := newUsecase(repo, &fakeEmbedder{})

		_, err := uc.Upload(context.Background(), uploadHeaders(t, "notes.txt", "the original content"))
		require.NoError(t, err)

		_, err = uc.Upload(context.Background(), uploadHeaders(t, "notes.txt", "the replacement"))
		require.NoError(t, err)

		require.Len(t, repo.chunks["notes.txt"], 1)
		assert.Equal(t, "the replacement", repo.chunks["notes.txt"][0].Text)
	})

	t.Run("Rejects unsupported extension before touching the index", func(t *testing.T) {
		repo := newFakeRepo()
		uc := newUsecase(repo, &fakeEmbedder{})

		_, err := uc.Upload(context.Background(), uploadHeaders(t, "tool.exe", "binary"))

		assert.ErrorIs(t, err, entity.ErrInvalidExtension)
		assert.Empty(t, repo.chunks)
	})

	t.Run("Propagates embedding failure", func(t *testing.T) {
		repo := newFakeRepo()
		embedder := &fakeEmbedder{err: fmt.Errorf("%w: model offline", entity.ErrEmbedding)}
		uc := newUsecase(repo, embedder)

		_, err := uc.Upload(context.Background(), uploadHeaders(t, "notes.txt", "some text"))

		assert.ErrorIs(t, err, entity.ErrEmbedding)
		assert.Empty(t, repo.chunks)
	})
}

func TestList(t *testing.T) {
	repo := newFakeRepo()
	uc := newUsecase(repo, &fakeEmbedder{})

	_, err := uc.Upload(context.Background(), uploadHeaders(t, "notes.txt", "hello world"))
	require.NoError(t, err)

	resp, err := uc.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "notes.txt", resp.Documents[0].Source)
}

func TestDelete(t *testing.T) {
	t.Run("Removes all chunks of a source", func(t *testing.T) {
		repo := newFakeRepo()
		uc := newUsecase(repo, &fakeEmbedder{})

		_, err := uc.Upload(context.Background(), uploadHeaders(t, "notes.txt", "hello world"))
		require.NoError(t, err)

		resp, err := uc.Delete(context.Background(), "notes.txt")

		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.ChunksDeleted)
		assert.Empty(t, repo.chunks)
	})

	t.Run("Unknown source yields not found", func(t *testing.T) {
		uc := newUsecase(newFakeRepo(), &fakeEmbedder{})

		_, err := uc.Delete(context.Background(), "ghost.txt")

		assert.ErrorIs(t, err, entity.ErrDocumentNotFound)
	})
}

func TestReset(t *testing.T) {
	repo := newFakeRepo()
	uc := newUsecase(repo, &fakeEmbedder{})

	_, err := uc.Upload(context.Background(), uploadHeaders(t, "notes.txt", "hello world"))
	require.NoError(t, err)

	require.NoError(t, uc.Reset(context.Background()))

	assert.True(t, repo.resetDone)
	assert.Empty(t, repo.chunks)
}
