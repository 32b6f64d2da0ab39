package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/futig/ragchat-backend/internal/config"
	"github.com/futig/ragchat-backend/internal/entity"
	"github.com/futig/ragchat-backend/internal/pkg/extract"
	"github.com/futig/ragchat-backend/internal/pkg/validator"
	"github.com/futig/ragchat-backend/internal/rag/chunk"
	"github.com/futig/ragchat-backend/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// DocumentUsecase implements document ingestion and management logic
type DocumentUsecase struct {
	chunkRepo repository.ChunkRepository
	embedder  EmbeddingConnector
	validator *validator.Validator
	chunking  config.ChunkingConfig
	logger    *zap.Logger
}

// NewUsecase creates a new document use case
func NewUsecase(
	chunkRepo repository.ChunkRepository,
	embedder EmbeddingConnector,
	validator *validator.Validator,
	chunking config.ChunkingConfig,
	logger *zap.Logger,
) *DocumentUsecase {
	return &DocumentUsecase{
		chunkRepo: chunkRepo,
		embedder:  embedder,
		validator: validator,
		chunking:  chunking,
		logger:    logger,
	}
}

// Upload validates the uploaded files and ingests each one: extract
// text, split into chunks, embed and persist. Re-uploading a file with
// the same name replaces its previous chunks.
func (uc *DocumentUsecase) Upload(ctx context.Context, files []*multipart.FileHeader) (*entity.UploadResponse, error) {
	if err := uc.validator.ValidateUpload(files); err != nil {
		return nil, err
	}

	results := make([]entity.IngestResult, 0, len(files))
	for _, fileHeader := range files {
		content, err := readFile(fileHeader)
		if err != nil {
			return nil, fmt.Errorf("read file %s: %w", fileHeader.Filename, err)
		}

		result, err := uc.ingest(ctx, fileHeader.Filename, content)
		if err != nil {
			return nil, fmt.Errorf("ingest file %s: %w", fileHeader.Filename, err)
		}

		results = append(results, *result)
	}

	return &entity.UploadResponse{
		Message: fmt.Sprintf("Successfully processed %d file(s)", len(results)),
		Files:   results,
	}, nil
}

func (uc *DocumentUsecase) ingest(ctx context.Context, filename string, content []byte) (*entity.IngestResult, error) {
	source := validator.SanitizeFilename(filename)

	text, err := extract.Text(filename, content)
	if err != nil {
		return nil, err
	}

	segments, err := chunk.Split(text, uc.chunking.ChunkSize, uc.chunking.Overlap)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}

	chunks := chunk.Annotate(segments, entity.ChunkMetadata{
		Source:   source,
		FilePath: filename,
	})

	for i := range chunks {
		vector, err := uc.embedder.Embed(ctx, chunks[i].Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		chunks[i].Embedding = vector
	}

	// Replace previous chunks of the same source, if any.
	if _, err := uc.chunkRepo.DeleteBySource(ctx, source); err != nil && !errors.Is(err, entity.ErrDocumentNotFound) {
		return nil, fmt.Errorf("replace existing chunks: %w", err)
	}

	if err := uc.chunkRepo.Upsert(ctx, chunks); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}

	ctxzap.Info(ctx, "document ingested",
		zap.String("source", source),
		zap.Int("chunks", len(chunks)),
	)

	return &entity.IngestResult{
		Source:        source,
		ChunksCreated: len(chunks),
	}, nil
}

// List returns every indexed source with its chunk count.
func (uc *DocumentUsecase) List(ctx context.Context) (*entity.DocumentListResponse, error) {
	sources, err := uc.chunkRepo.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	return &entity.DocumentListResponse{
		Documents: sources,
		Count:     len(sources),
	}, nil
}

// Delete removes every chunk belonging to the given source.
func (uc *DocumentUsecase) Delete(ctx context.Context, source string) (*entity.DeleteDocumentResponse, error) {
	deleted, err := uc.chunkRepo.DeleteBySource(ctx, source)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "document deleted",
		zap.String("source", source),
		zap.Int64("chunks_deleted", deleted),
	)

	return &entity.DeleteDocumentResponse{
		Message:       fmt.Sprintf("Deleted document %s", source),
		ChunksDeleted: deleted,
	}, nil
}

// Reset drops the whole index.
func (uc *DocumentUsecase) Reset(ctx context.Context) error {
	if err := uc.chunkRepo.Reset(ctx); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}

	ctxzap.Info(ctx, "document index reset")
	return nil
}

func readFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return content, nil
}
