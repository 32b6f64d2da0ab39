package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/ragchat-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8000"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Pipeline configuration
	ChunkingCfg  ChunkingConfig  `envPrefix:"CHUNKING_"`
	RetrievalCfg RetrievalConfig `envPrefix:"RETRIEVAL_"`
	PromptCfg    PromptConfig    `envPrefix:"PROMPT_"`

	// External service configurations
	EmbeddingCfg  EmbeddingConfig  `envPrefix:"EMBEDDING_"`
	CompletionCfg CompletionConfig `envPrefix:"COMPLETION_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// ChunkingConfig controls how uploaded documents are split.
type ChunkingConfig struct {
	ChunkSize int `env:"CHUNK_SIZE" envDefault:"1000"`
	Overlap   int `env:"OVERLAP" envDefault:"200"`
}

// RetrievalConfig controls query-time context retrieval.
type RetrievalConfig struct {
	TopK          int     `env:"TOP_K" envDefault:"6"`
	MinSimilarity float64 `env:"MIN_SIMILARITY" envDefault:"0.0"`
	MaxSources    int     `env:"MAX_SOURCES" envDefault:"3"`
}

// PromptConfig controls prompt composition. Instructions are loaded from
// InstructionsFile when set; otherwise the composer's default block is
// used.
type PromptConfig struct {
	InstructionsFile string `env:"INSTRUCTIONS_FILE"`
	HistoryLimit     int    `env:"HISTORY_LIMIT" envDefault:"10"`

	// Loaded from InstructionsFile, not from env
	Instructions string
}

// EmbeddingConfig configures the embedding gateway.
type EmbeddingConfig struct {
	Provider   string               `env:"PROVIDER" envDefault:"ollama"`
	OllamaURL  string               `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	Model      string               `env:"MODEL" envDefault:"mxbai-embed-large"`
	Dimensions int                  `env:"DIMENSIONS" envDefault:"1024"`
	CacheTTL   time.Duration        `env:"CACHE_TTL" envDefault:"1h"`
	OpenAI     OpenAIConfig         `envPrefix:"OPENAI_"`
	Retry      pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// OpenAIConfig configures the OpenAI-compatible embedding connector.
type OpenAIConfig struct {
	HTTPClientConfig
	EmbeddingsEndpoint string `env:"EMBEDDINGS_ENDPOINT" envDefault:"/v1/embeddings"`
	Model              string `env:"MODEL" envDefault:"text-embedding-3-small"`
}

// CompletionConfig configures the completion gateway.
type CompletionConfig struct {
	OllamaURL   string               `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	Model       string               `env:"MODEL" envDefault:"llama3.2"`
	Temperature float64              `env:"TEMPERATURE" envDefault:"0.7"`
	Retry       pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"5242880"`    // 5 MiB
	MaxTotalSize  int64 `env:"MAX_TOTAL_SIZE" envDefault:"26214400"`  // 25 MiB
	MaxFileCount  int   `env:"MAX_FILE_COUNT" envDefault:"16"`        // Max 16 files per upload
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"` // 32 MiB multipart memory
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Load prompt instructions from file when configured
	if err := loadInstructions(cfg); err != nil {
		return nil, fmt.Errorf("load prompt instructions: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.ChunkingCfg.ChunkSize < 1 {
		errors = append(errors, fmt.Sprintf("CHUNKING_CHUNK_SIZE must be positive, got %d", cfg.ChunkingCfg.ChunkSize))
	}

	if cfg.ChunkingCfg.Overlap < 0 || cfg.ChunkingCfg.Overlap >= cfg.ChunkingCfg.ChunkSize {
		errors = append(errors, fmt.Sprintf("CHUNKING_OVERLAP must be between 0 and CHUNKING_CHUNK_SIZE(%d), got %d",
			cfg.ChunkingCfg.ChunkSize, cfg.ChunkingCfg.Overlap))
	}

	if cfg.RetrievalCfg.TopK < 1 {
		errors = append(errors, fmt.Sprintf("RETRIEVAL_TOP_K must be positive, got %d", cfg.RetrievalCfg.TopK))
	}

	if cfg.RetrievalCfg.MinSimilarity < 0 || cfg.RetrievalCfg.MinSimilarity > 1 {
		errors = append(errors, fmt.Sprintf("RETRIEVAL_MIN_SIMILARITY must be between 0 and 1, got %g", cfg.RetrievalCfg.MinSimilarity))
	}

	if cfg.CompletionCfg.Temperature < 0 || cfg.CompletionCfg.Temperature > 2 {
		errors = append(errors, fmt.Sprintf("COMPLETION_TEMPERATURE must be between 0 and 2, got %g", cfg.CompletionCfg.Temperature))
	}

	switch cfg.EmbeddingCfg.Provider {
	case "ollama", "openai":
	default:
		errors = append(errors, fmt.Sprintf("EMBEDDING_PROVIDER must be ollama or openai, got %q", cfg.EmbeddingCfg.Provider))
	}

	if cfg.EmbeddingCfg.Provider == "openai" && cfg.EmbeddingCfg.OpenAI.Url == "" {
		errors = append(errors, "EMBEDDING_OPENAI_SERVICE_URL is required when EMBEDDING_PROVIDER is openai")
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func loadInstructions(cfg *Config) error {
	if cfg.PromptCfg.InstructionsFile == "" {
		return nil
	}

	data, err := os.ReadFile(cfg.PromptCfg.InstructionsFile)
	if err != nil {
		return fmt.Errorf("read instructions file: %w", err)
	}

	instructions := strings.TrimSpace(string(data))
	if instructions == "" {
		return fmt.Errorf("instructions file is empty: %s", cfg.PromptCfg.InstructionsFile)
	}

	cfg.PromptCfg.Instructions = instructions
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
