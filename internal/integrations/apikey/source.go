package apikey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"chat-relay/internal/domain"
)

// Source yields the credential for a model provider.
type Source interface {
	APIKey(ctx context.Context) (string, error)
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// tokenPayload is the expected JSON shape stored in SSM for the API token.
type tokenPayload struct {
	Token string `json:"token"`
}

type staticSource string

// Static returns a Source for a key read from the environment. An empty key
// is accepted here and reported on every request instead.
func Static(key string) Source {
	return staticSource(strings.TrimSpace(key))
}

func (s staticSource) APIKey(context.Context) (string, error) {
	if s == "" {
		return "", domain.ErrMissingAPIKey
	}
	return string(s), nil
}

// ParamStoreSource reads the token from Parameter Store and keeps the first
// successful value for the lifetime of the process.
type ParamStoreSource struct {
	getter Getter
	name   string

	mu     sync.Mutex
	cached string
}

func FromParamStore(getter Getter, name string) (*ParamStoreSource, error) {
	if getter == nil {
		return nil, errors.New("apikey: paramstore getter must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("apikey: token parameter name is empty")
	}
	return &ParamStoreSource{getter: getter, name: name}, nil
}

func (p *ParamStoreSource) APIKey(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != "" {
		return p.cached, nil
	}

	raw, err := p.getter.GetParameter(ctx, p.name)
	if err != nil {
		return "", fmt.Errorf("apikey: fetch token from paramstore: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("apikey: unmarshal paramstore token value as JSON: %w", err)
	}
	if strings.TrimSpace(tp.Token) == "" {
		return "", fmt.Errorf("apikey: paramstore token is empty: %w", domain.ErrMissingAPIKey)
	}
	p.cached = tp.Token
	return p.cached, nil
}
