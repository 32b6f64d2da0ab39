package chat

import (
	"context"
	"fmt"

	"github.com/futig/ragchat-backend/internal/config"
	"github.com/futig/ragchat-backend/internal/entity"
	"github.com/futig/ragchat-backend/internal/pkg/validator"
	"github.com/futig/ragchat-backend/internal/rag/compose"
	"github.com/futig/ragchat-backend/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ChatUsecase implements retrieval-augmented chat logic
type ChatUsecase struct {
	retriever  ContextRetriever
	composer   *compose.Composer
	completion CompletionConnector
	embedder   EmbeddingConnector
	chunkRepo  repository.ChunkRepository
	validator  *validator.Validator
	retrieval  config.RetrievalConfig
	options    entity.CompletionOptions
	logger     *zap.Logger
}

// NewUsecase creates a new chat use case
func NewUsecase(
	retriever ContextRetriever,
	composer *compose.Composer,
	completion CompletionConnector,
	embedder EmbeddingConnector,
	chunkRepo repository.ChunkRepository,
	validator *validator.Validator,
	retrieval config.RetrievalConfig,
	options entity.CompletionOptions,
	logger *zap.Logger,
) *ChatUsecase {
	return &ChatUsecase{
		retriever:  retriever,
		composer:   composer,
		completion: completion,
		embedder:   embedder,
		chunkRepo:  chunkRepo,
		validator:  validator,
		retrieval:  retrieval,
		options:    options,
		logger:     logger,
	}
}

// Chat answers a user message, grounding the reply in retrieved context
// unless the request opts out.
func (uc *ChatUsecase) Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	messages, sources, err := uc.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	reply, err := uc.completion.Complete(ctx, messages, uc.options)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "chat completed",
		zap.Int("context_sources", len(sources)),
		zap.Int("response_length", len(reply)),
	)

	return &entity.ChatResponse{
		Response: reply,
		Sources:  sources,
	}, nil
}

// ChatStream answers a user message, delivering the reply incrementally
// through fn. The source attributions for the retrieved context are
// returned once streaming finishes.
func (uc *ChatUsecase) ChatStream(ctx context.Context, req *entity.ChatRequest, fn func(fragment string) error) ([]entity.SourceAttribution, error) {
	messages, sources, err := uc.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := uc.completion.Stream(ctx, messages, uc.options, fn); err != nil {
		return nil, err
	}

	return sources, nil
}

// Health reports service status and index size.
func (uc *ChatUsecase) Health(ctx context.Context) *entity.HealthStatus {
	available := uc.completion.Healthy(ctx)

	count, err := uc.chunkRepo.Count(ctx)
	if err != nil {
		ctxzap.Warn(ctx, "chunk count unavailable", zap.Error(err))
		available = false
	}

	status := "healthy"
	if !available {
		status = "degraded"
	}

	return &entity.HealthStatus{
		Status:          status,
		LLMModel:        uc.completion.Model(),
		EmbeddingModel:  uc.embedder.Model(),
		DocumentsCount:  count,
		OllamaAvailable: available,
	}
}

func (uc *ChatUsecase) prepare(ctx context.Context, req *entity.ChatRequest) ([]entity.Message, []entity.SourceAttribution, error) {
	if err := uc.validator.ValidateChat(req); err != nil {
		return nil, nil, err
	}

	var contexts []entity.ContextRecord
	if req.WithContext() {
		var err error
		contexts, err = uc.retriever.Retrieve(ctx, req.Message, uc.retrieval.TopK, uc.retrieval.MinSimilarity)
		if err != nil {
			return nil, nil, fmt.Errorf("retrieve context: %w", err)
		}
	}

	messages := uc.composer.ComposeMessages(req.Message, contexts, req.History)
	return messages, uc.attribute(contexts), nil
}

// attribute picks the sources behind the retrieved context, best match
// first, one entry per source.
func (uc *ChatUsecase) attribute(contexts []entity.ContextRecord) []entity.SourceAttribution {
	seen := make(map[string]bool)
	sources := make([]entity.SourceAttribution, 0, uc.retrieval.MaxSources)

	for _, record := range contexts {
		if len(sources) >= uc.retrieval.MaxSources {
			break
		}
		if seen[record.Metadata.Source] {
			continue
		}
		seen[record.Metadata.Source] = true
		sources = append(sources, entity.SourceAttribution{
			Source:     record.Metadata.Source,
			Similarity: record.Similarity,
		})
	}

	return sources
}
