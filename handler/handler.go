package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"chat-relay/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	contentTypeJSON   = "application/json"
)

type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type chatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler adapts the chat use case to the Lambda and HTTP server transports.
type Handler struct {
	uc           ChatUseCase
	exposeErrors bool
	logger       *slog.Logger
}

type Option func(*Handler)

// WithExposeUpstreamErrors controls whether failure text from the model
// provider is returned to callers verbatim or replaced by a generic message.
func WithExposeUpstreamErrors(expose bool) Option {
	return func(h *Handler) {
		h.exposeErrors = expose
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func NewHandler(uc ChatUseCase, opts ...Option) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	h := &Handler{
		uc:           uc,
		exposeErrors: true,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// relay runs one chat exchange and returns the status and JSON payload.
// Every failure, including an undecodable body, maps to 500.
func (h *Handler) relay(ctx context.Context, body []byte, correlationID string) (int, any) {
	start := time.Now()
	log := h.logger.With("correlation_id", correlationID)

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return h.failure(log, usecase.NewInvalidInputError("malformed_body", err))
	}

	out, err := h.uc.Chat(ctx, usecase.ChatInput{
		Message:        req.Message,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		return h.failure(log.With("conversation_id", req.ConversationID), err)
	}

	log.Info("chat_completed",
		"conversation_id", out.ConversationID,
		"message_chars", len(req.Message),
		"response_chars", len(out.Response),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return http.StatusOK, chatResponse{
		Response:       out.Response,
		ConversationID: out.ConversationID,
	}
}

func (h *Handler) failure(log *slog.Logger, err error) (int, any) {
	msg := err.Error()
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		log = log.With("code", ucErr.Code, "reason", ucErr.Reason)
		msg = ucErr.Detail()
		if !h.exposeErrors {
			msg = ucErr.PublicMessage()
		}
	} else if !h.exposeErrors {
		msg = (&usecase.Error{Code: usecase.ErrorInternal}).PublicMessage()
	}
	log.Error("chat_failed", "err", err)
	return http.StatusInternalServerError, errorResponse{Error: msg}
}

func resolveCorrelationID(headerValue string) string {
	if v := strings.TrimSpace(headerValue); v != "" {
		return v
	}
	return uuid.NewString()
}
