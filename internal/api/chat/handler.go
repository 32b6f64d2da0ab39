package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/ragchat-backend/internal/entity"
	"github.com/futig/ragchat-backend/internal/pkg/logger"
	"github.com/futig/ragchat-backend/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase ChatUsecase
}

func NewHandler(usecase ChatUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Chat handles POST /api/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode chat request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctxzap.Info(ctx, "handling chat request",
		zap.Bool("use_context", req.WithContext()),
		zap.Bool("stream", req.Stream),
		zap.Int("history_length", len(req.History)),
	)

	if req.Stream {
		h.chatStream(ctx, w, &req)
		return
	}

	resp, err := h.usecase.Chat(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

// chatStream delivers the reply as server-sent events: one data frame
// per fragment, then a terminal frame carrying the sources.
func (h *Handler) chatStream(ctx context.Context, w http.ResponseWriter, req *entity.ChatRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		ctxzap.Error(ctx, "streaming unsupported by response writer")
		response.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sources, err := h.usecase.ChatStream(ctx, req, func(fragment string) error {
		if err := writeEvent(w, map[string]any{"content": fragment}); err != nil {
			return err
		}
		flusher.Flush()
		return ctx.Err()
	})
	if err != nil {
		// Headers are already out; surface the failure inside the stream.
		ctxzap.Error(ctx, "chat stream failed", zap.Error(err))
		writeEvent(w, map[string]any{"error": err.Error(), "done": true})
		flusher.Flush()
		return
	}

	writeEvent(w, map[string]any{"done": true, "sources": sources})
	flusher.Flush()
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Health")

	status := h.usecase.Health(ctx)
	response.Success(w, status)
}

func writeEvent(w http.ResponseWriter, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "chat request failed", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidParameter):
		response.Error(w, http.StatusBadRequest, "invalid parameter")
	case errors.Is(err, entity.ErrEmbedding), errors.Is(err, entity.ErrCompletion):
		response.Error(w, http.StatusBadGateway, "language model unavailable")
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
