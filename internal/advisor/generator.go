package advisor

import (
	"context"
	"fmt"
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Name is the provider reported as the advice source.
	Name() string
}

// NewGenerator builds the generator for cfg.Provider.
func NewGenerator(ctx context.Context, cfg Config) (Generator, error) {
	cfg = cfg.WithDefaults()
	switch cfg.Provider {
	case ProviderOllama:
		return NewOllama(cfg), nil
	case ProviderGemini:
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown advisor provider %q", cfg.Provider)
	}
}
