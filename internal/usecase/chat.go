package usecase

import (
	"context"
	"errors"
	"strings"

	"chat-relay/internal/domain"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1024
)

type LLMClient interface {
	Complete(ctx context.Context, c domain.Completion) (string, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// ModelSettings are the fixed sampling parameters applied to every call.
type ModelSettings struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

type ChatService struct {
	llm          LLMClient
	systemPrompt string
	settings     ModelSettings
}

type ChatInput struct {
	Message        string
	ConversationID string
}

type ChatOutput struct {
	Response       string
	ConversationID string
}

func NewChatService(llm LLMClient, systemPrompt string, settings ModelSettings) (*ChatService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, errors.New("usecase: system prompt must not be empty")
	}
	settings.Model = strings.TrimSpace(settings.Model)
	if settings.Model == "" {
		return nil, errors.New("usecase: model must not be empty")
	}
	if settings.Temperature < 0 {
		settings.Temperature = defaultTemperature
	}
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = defaultMaxTokens
	}
	return &ChatService{
		llm:          llm,
		systemPrompt: systemPrompt,
		settings:     settings,
	}, nil
}

// Chat relays one message to the model. Each call is independent: the
// conversation id is echoed back and never used to load prior turns.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	convID := domain.ResolveConversationID(in.ConversationID)

	answer, err := s.llm.Complete(ctx, domain.Completion{
		Model:       s.settings.Model,
		Messages:    buildPromptMessages(s.systemPrompt, in.Message),
		Temperature: s.settings.Temperature,
		MaxTokens:   s.settings.MaxTokens,
	})
	if err != nil {
		return ChatOutput{}, classifyLLMError(err)
	}

	return ChatOutput{
		Response:       answer,
		ConversationID: convID,
	}, nil
}

func classifyLLMError(err error) *Error {
	switch {
	case errors.Is(err, domain.ErrMissingAPIKey):
		return newError(ErrorInternal, "api_key_missing", err)
	case errors.Is(err, context.DeadlineExceeded):
		return newError(ErrorUpstream, "llm_timeout", err)
	}
	if status, ok := upstreamStatusCode(err); ok {
		if status == 429 {
			return newError(ErrorRateLimited, "llm_rate_limited", err)
		}
		return newError(ErrorUpstream, "llm_status_error", err)
	}
	return newError(ErrorUpstream, "llm_error", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
