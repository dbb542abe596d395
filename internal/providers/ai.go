package providers

import (
	"context"

	"github.com/thomas-vilte/relnotes/internal/ai"
	"github.com/thomas-vilte/relnotes/internal/ai/gemini"
	"github.com/thomas-vilte/relnotes/internal/ai/ollama"
	"github.com/thomas-vilte/relnotes/internal/ai/openai"
	"github.com/thomas-vilte/relnotes/internal/config"
	"github.com/thomas-vilte/relnotes/internal/errors"
)

// NewChatProvider creates a ChatProvider based on the configured provider.
// Every call through it is timed and logged.
func NewChatProvider(ctx context.Context, cfg *config.Config) (ai.ChatProvider, error) {
	p, err := newChatProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return ai.NewTrackingProvider(p, p.GetProviderName(), p.GetModelName()), nil
}

// namedProvider is a ChatProvider that reports which service and model it talks to.
type namedProvider interface {
	ai.ChatProvider
	GetProviderName() string
	GetModelName() string
}

func newChatProvider(ctx context.Context, cfg *config.Config) (namedProvider, error) {
	if cfg.Provider == "" {
		return nil, errors.ErrProviderNotSupported.WithContext("provider", "")
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		p, err := gemini.NewGeminiProvider(ctx, gemini.Options{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderOllama:
		p, err := ollama.NewOllamaProvider(ollama.Options{
			Model: cfg.Model,
			Host:  cfg.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderGroq, config.ProviderOpenAI:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = config.DefaultBaseURL(cfg.Provider)
		}
		p, err := openai.NewClient(openai.Options{
			Provider: string(cfg.Provider),
			APIKey:   cfg.APIKey,
			BaseURL:  baseURL,
			Model:    cfg.Model,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, errors.ErrProviderNotSupported.WithContext("provider", string(cfg.Provider))
	}
}
