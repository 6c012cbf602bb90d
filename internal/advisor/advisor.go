package advisor

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/degreeplan/internal/cache"
)

// SourceFallback marks advice produced without a generator.
const SourceFallback = "fallback"

var errEmptyResponse = errors.New("generator returned an empty response")

// Advice is the advisor's answer.
type Advice struct {
	Text        string   `json:"advice"`
	Source      string   `json:"source"`
	Suggestions []string `json:"suggestions"`
	Cached      bool     `json:"cached,omitempty"`
}

// Advisor produces Advice. A nil generator always falls back.
type Advisor struct {
	gen    Generator
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithCache caches generated text for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(a *Advisor) {
		a.cache = c
		a.ttl = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Advisor) {
		if l != nil {
			a.logger = l
		}
	}
}

// New returns an Advisor.
func New(gen Generator, opts ...Option) *Advisor {
	a := &Advisor{gen: gen, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Advise returns generated advice, or the fallback summary when generation
// fails or returns nothing. It never fails.
func (a *Advisor) Advise(ctx context.Context, in Input) Advice {
	adv, err := a.Generate(ctx, in)
	if err != nil {
		a.logger.Warn("advice generation failed, using fallback",
			zap.String("major", in.Major),
			zap.Error(err))
		return Advice{
			Text:        FallbackAdvice(in),
			Source:      SourceFallback,
			Suggestions: suggestionsOf(in),
		}
	}
	return adv
}

// Generate asks the generator only, consulting the cache first.
func (a *Advisor) Generate(ctx context.Context, in Input) (Advice, error) {
	if a.gen == nil {
		return Advice{}, errors.New("no generator configured")
	}

	prompt := BuildPrompt(in)
	key := cache.Key(a.gen.Name(), prompt)

	if a.cache != nil {
		if text, ok := a.cache.Get(ctx, key); ok {
			a.logger.Debug("advice cache hit", zap.String("major", in.Major))
			return Advice{Text: text, Source: a.gen.Name(), Suggestions: suggestionsOf(in), Cached: true}, nil
		}
	}

	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return Advice{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Advice{}, errEmptyResponse
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, key, text, a.ttl); err != nil {
			a.logger.Debug("advice cache write failed", zap.Error(err))
		}
	}
	return Advice{Text: text, Source: a.gen.Name(), Suggestions: suggestionsOf(in)}, nil
}

func suggestionsOf(in Input) []string {
	if in.Suggestions == nil {
		return []string{}
	}
	return in.Suggestions
}
