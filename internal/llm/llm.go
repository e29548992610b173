// Package llm talks to the external text-generation service. Each backend
// makes exactly one request per call and never retries; callers decide
// whether to try again.
package llm

import (
	"context"
	"fmt"

	"github.com/kalambet/meishi/internal/config"
)

// Request is a single prompt exchange.
type Request struct {
	System      string
	Prompt      string
	JSON        bool // ask the model for a bare JSON object
	Temperature float64
}

// Completer returns the model's text for one request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// New builds the Completer selected by cfg.Provider.
func New(ctx context.Context, cfg config.GenerationConfig) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case config.ProviderOllama:
		return NewOllama(cfg.BaseURL, cfg.Model), nil
	case config.ProviderGemini:
		return NewGemini(ctx, cfg.APIKey, cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
