package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"chat-relay/internal/domain"
	"chat-relay/internal/integrations/apikey"
)

const (
	GroqBaseURL    = "https://api.groq.com/openai/v1"
	OpenAIBaseURL  = "https://api.openai.com/v1"
	defaultTimeout = 60 * time.Second
)

// Client sends chat completions to any OpenAI-compatible endpoint (Groq by
// default). The API key is resolved on every call so a missing credential
// fails the request rather than process startup.
type Client struct {
	provider string
	sdk      sdk.Client
	keys     apikey.Source
}

type config struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*config)

func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *config) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds each upstream call. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

func NewClient(provider string, keys apikey.Source, opts ...Option) (*Client, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return nil, errors.New("openai: provider must not be empty")
	}
	if keys == nil {
		return nil, errors.New("openai: api key source must not be nil")
	}

	cfg := &config{
		baseURL:    DefaultBaseURL(provider),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.baseURL == "" {
		return nil, fmt.Errorf("openai: no base URL for provider %q", provider)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		provider: provider,
		sdk: sdk.NewClient(
			option.WithBaseURL(cfg.baseURL),
			option.WithHTTPClient(cfg.httpClient),
			option.WithMaxRetries(0),
		),
		keys: keys,
	}, nil
}

// DefaultBaseURL returns the API root for a known provider, or "".
func DefaultBaseURL(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "groq":
		return GroqBaseURL
	case "openai":
		return OpenAIBaseURL
	default:
		return ""
	}
}

// Complete issues one chat completion and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, in domain.Completion) (string, error) {
	if strings.TrimSpace(in.Model) == "" {
		return "", fmt.Errorf("%s: model must not be empty", c.provider)
	}

	key, err := c.keys.APIKey(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.provider, err)
	}

	params, err := buildParams(in)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.provider, err)
	}

	resp, err := c.sdk.Chat.Completions.New(ctx, params, option.WithAPIKey(key))
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return "", &domain.UpstreamError{Provider: c.provider, StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", fmt.Errorf("%s: chat completion: %w", c.provider, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices in response", c.provider)
	}
	return resp.Choices[0].Message.Content, nil
}

func buildParams(in domain.Completion) (sdk.ChatCompletionNewParams, error) {
	messages := make([]sdk.ChatCompletionMessageParamUnion, 0, len(in.Messages))
	for _, m := range in.Messages {
		param, err := toMessageParam(m)
		if err != nil {
			return sdk.ChatCompletionNewParams{}, err
		}
		messages = append(messages, param)
	}

	params := sdk.ChatCompletionNewParams{
		Model:       sdk.ChatModel(in.Model),
		Messages:    messages,
		Temperature: sdk.Float(in.Temperature),
	}
	if in.MaxTokens > 0 {
		params.MaxTokens = sdk.Int(int64(in.MaxTokens))
	}
	return params, nil
}

func toMessageParam(m domain.ChatMessage) (sdk.ChatCompletionMessageParamUnion, error) {
	switch strings.ToLower(strings.TrimSpace(m.Role)) {
	case domain.RoleSystem:
		return sdk.SystemMessage(m.Content), nil
	case domain.RoleUser:
		return sdk.UserMessage(m.Content), nil
	case domain.RoleAssistant:
		return sdk.AssistantMessage(m.Content), nil
	default:
		return sdk.ChatCompletionMessageParamUnion{}, fmt.Errorf("unsupported role: %s", m.Role)
	}
}
