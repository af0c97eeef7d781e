package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/comigor/jokebot-go/internal/config"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var (
	// ErrMissingAPIKey means no credential is configured for the completion capability.
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not configured")
	// ErrUnknownProvider means llm.provider names no supported backend.
	ErrUnknownProvider = errors.New("llm: unknown provider")
	// ErrNoContents means Generate was called with an empty turn list.
	ErrNoContents = errors.New("llm: request has no contents")
)

// NewClient creates the completion client selected by cfg.Provider.
// The returned close function releases backend resources and is never nil.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, func() error, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, noopClose, ErrMissingAPIKey
	}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderGemini:
		g, err := NewGemini(ctx, cfg)
		if err != nil {
			return nil, noopClose, err
		}
		return g, g.Close, nil
	case ProviderOpenAI:
		return NewOpenAI(cfg), noopClose, nil
	default:
		return nil, noopClose, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

func noopClose() error { return nil }
