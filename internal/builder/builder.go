package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/ragchat-backend/internal/api"
	chatapi "github.com/futig/ragchat-backend/internal/api/chat"
	documentapi "github.com/futig/ragchat-backend/internal/api/document"
	"github.com/futig/ragchat-backend/internal/config"
	"github.com/futig/ragchat-backend/internal/entity"
	"github.com/futig/ragchat-backend/internal/integration/completion"
	"github.com/futig/ragchat-backend/internal/integration/embedding"
	"github.com/futig/ragchat-backend/internal/pkg/validator"
	"github.com/futig/ragchat-backend/internal/rag/compose"
	"github.com/futig/ragchat-backend/internal/rag/retrieve"
	"github.com/futig/ragchat-backend/internal/repository"
	"github.com/futig/ragchat-backend/internal/usecase/chat"
	"github.com/futig/ragchat-backend/internal/usecase/document"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	chunkRepo := repository.NewChunkPostgres(db)
	logger.Info("Repositories initialized")

	// Initialize external service connectors (with mock support)
	embeddingConnector, completionConnector, err := setupConnectors(cfg, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("setup connectors: %w", err)
	}

	// Initialize pipeline components
	retriever := retrieve.New(embeddingConnector, chunkRepo)
	composer := compose.New(cfg.PromptCfg.Instructions, cfg.PromptCfg.HistoryLimit)

	// Initialize validators
	fileValidator := validator.NewFileValidator(cfg.FileUploadCfg)
	logger.Info("Validators initialized")

	// Initialize use cases
	documentUC := document.NewUsecase(
		chunkRepo,
		embeddingConnector,
		fileValidator,
		cfg.ChunkingCfg,
		logger,
	)

	chatUC := chat.NewUsecase(
		retriever,
		composer,
		completionConnector,
		embeddingConnector,
		chunkRepo,
		fileValidator,
		cfg.RetrievalCfg,
		entity.CompletionOptions{Temperature: cfg.CompletionCfg.Temperature},
		logger,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	chatHandler := chatapi.NewHandler(chatUC)
	documentHandler := documentapi.NewHandler(documentUC, cfg.FileUploadCfg)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(chatHandler, documentHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server. Write timeout stays generous because chat
	// replies stream for as long as the model generates.
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}

// embeddingGateway is the union of what the retriever, the document
// usecase and health reporting need from an embedding connector.
type embeddingGateway interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

func setupConnectors(cfg *config.Config, logger *zap.Logger) (embeddingGateway, chat.CompletionConnector, error) {
	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		return embedding.NewMockConnector(cfg.EmbeddingCfg, logger),
			completion.NewMockConnector(cfg.CompletionCfg, logger),
			nil
	}

	logger.Info("Using real connectors for external services",
		zap.String("embedding_provider", cfg.EmbeddingCfg.Provider),
		zap.String("embedding_model", cfg.EmbeddingCfg.Model),
		zap.String("completion_model", cfg.CompletionCfg.Model),
	)

	var embeddingConn embeddingGateway
	switch cfg.EmbeddingCfg.Provider {
	case "openai":
		embeddingConn = embedding.NewOpenAIConnector(cfg.EmbeddingCfg, logger)
	default:
		conn, err := embedding.NewOllamaConnector(cfg.EmbeddingCfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("create embedding connector: %w", err)
		}
		embeddingConn = conn
	}

	completionConn, err := completion.NewOllamaConnector(cfg.CompletionCfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create completion connector: %w", err)
	}

	return embeddingConn, completionConn, nil
}
