package completion

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/futig/ragchat-backend/internal/config"
	"github.com/futig/ragchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// OllamaConnector produces chat completions with a local Ollama instance.
type OllamaConnector struct {
	client *api.Client
	config config.CompletionConfig
	logger *zap.Logger
}

func NewOllamaConnector(cfg config.CompletionConfig, logger *zap.Logger) (*OllamaConnector, error) {
	base, err := url.Parse(cfg.OllamaURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama URL: %w", err)
	}

	return &OllamaConnector{
		client: api.NewClient(base, http.DefaultClient),
		config: cfg,
		logger: logger,
	}, nil
}

// Complete runs the full conversation through the model and returns the
// assistant reply as a single string.
func (c *OllamaConnector) Complete(ctx context.Context, messages []entity.Message, opts entity.CompletionOptions) (string, error) {
	var reply strings.Builder

	err := c.chat(ctx, messages, opts, false, func(fragment string) error {
		reply.WriteString(fragment)
		return nil
	})
	if err != nil {
		return "", err
	}

	ctxzap.Debug(ctx, "completion finished",
		zap.String("model", c.config.Model),
		zap.Int("response_length", reply.Len()),
	)

	return reply.String(), nil
}

// Stream runs the conversation and delivers the reply incrementally.
// fn is called once per fragment in arrival order; a non-nil error from
// fn aborts the stream.
func (c *OllamaConnector) Stream(ctx context.Context, messages []entity.Message, opts entity.CompletionOptions, fn func(fragment string) error) error {
	return c.chat(ctx, messages, opts, true, fn)
}

// Healthy reports whether the Ollama server answers.
func (c *OllamaConnector) Healthy(ctx context.Context) bool {
	return c.client.Heartbeat(ctx) == nil
}

// Model returns the configured completion model name.
func (c *OllamaConnector) Model() string {
	return c.config.Model
}

func (c *OllamaConnector) chat(ctx context.Context, messages []entity.Message, opts entity.CompletionOptions, stream bool, fn func(string) error) error {
	req := api.ChatRequest{
		Model:    c.config.Model,
		Messages: toAPIMessages(messages),
		Stream:   &stream,
		Options: map[string]any{
			"temperature": opts.Temperature,
		},
	}

	chat := func() error {
		return c.client.Chat(ctx, &req, func(resp api.ChatResponse) error {
			return fn(resp.Message.Content)
		})
	}

	var err error
	if stream {
		// No retries once fragments may have been delivered.
		err = chat()
	} else {
		err = retry.Do(chat, append(c.config.Retry.ToRetryOptions(), retry.Context(ctx))...)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrCompletion, err)
	}

	return nil
}

func toAPIMessages(messages []entity.Message) []api.Message {
	out := make([]api.Message, len(messages))
	for i, m := range messages {
		out[i] = api.Message{Role: m.Role, Content: m.Content}
	}
	return out
}
