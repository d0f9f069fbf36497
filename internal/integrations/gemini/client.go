package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"chat-relay/internal/domain"
	"chat-relay/internal/integrations/apikey"
)

const (
	providerName   = "gemini"
	defaultTimeout = 60 * time.Second
)

type modelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newModelsClient = func(ctx context.Context, cfg *genai.ClientConfig) (modelsClient, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

// Client calls the Gemini API. The SDK client needs the key at construction
// time, so it is built on the first request and reused afterwards.
type Client struct {
	keys    apikey.Source
	baseURL string
	timeout time.Duration

	mu     sync.Mutex
	models modelsClient
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

// WithTimeout bounds each upstream call. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func NewClient(keys apikey.Source, opts ...Option) (*Client, error) {
	if keys == nil {
		return nil, errors.New("gemini: api key source must not be nil")
	}
	c := &Client{keys: keys, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) resolveModels(ctx context.Context) (modelsClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.models != nil {
		return c.models, nil
	}

	key, err := c.keys.APIKey(ctx)
	if err != nil {
		return nil, err
	}
	cfg := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: c.timeout},
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	models, err := newModelsClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	c.models = models
	return models, nil
}

// Complete issues one GenerateContent call and returns the first candidate's text.
func (c *Client) Complete(ctx context.Context, in domain.Completion) (string, error) {
	if strings.TrimSpace(in.Model) == "" {
		return "", errors.New("gemini: model must not be empty")
	}

	models, err := c.resolveModels(ctx)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	contents, cfg := buildRequest(in)
	resp, err := models.GenerateContent(ctx, in.Model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &domain.UpstreamError{Provider: providerName, StatusCode: apiErr.Code, Err: err}
		}
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini: no candidates in response")
	}
	return candidateText(resp), nil
}

func buildRequest(in domain.Completion) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := make([]*genai.Content, 0, len(in.Messages))
	var system []string

	for _, m := range in.Messages {
		switch strings.ToLower(strings.TrimSpace(m.Role)) {
		case domain.RoleSystem:
			system = append(system, m.Content)
		case domain.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(in.Temperature)),
	}
	if len(system) > 0 {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}},
		}
	}
	if in.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(in.MaxTokens)
	}
	return contents, cfg
}

func candidateText(resp *genai.GenerateContentResponse) string {
	first := resp.Candidates[0]
	if first == nil || first.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range first.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
