package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/store"
)

type constructor func(ctx context.Context, cfg Config) (Provider, error)

var constructors = map[string]constructor{
	"openai": func(_ context.Context, cfg Config) (Provider, error) {
		return NewOpenAIProvider(cfg.OpenAI)
	},
	"anthropic": func(_ context.Context, cfg Config) (Provider, error) {
		return NewAnthropicProvider(cfg.Anthropic)
	},
	"gemini": func(ctx context.Context, cfg Config) (Provider, error) {
		return NewGeminiProvider(ctx, cfg.Gemini)
	},
	"mock": func(context.Context, Config) (Provider, error) {
		m := NewMockProvider()
		m.Fallback = Echo
		return m, nil
	},
}

// ProviderNames lists the values accepted for Config.Provider.
func ProviderNames() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewProvider builds the configured provider as the chain
// caller -> retry -> logging -> base. eventRepo may be nil.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (Provider, error) {
	cfg = cfg.withModel()

	build, ok := constructors[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider %q (want one of %s)",
			cfg.Provider, strings.Join(ProviderNames(), ", "))
	}
	base, err := build(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	if log != nil {
		log.Debug("llm provider ready", "provider", cfg.Provider, "model", base.ModelID())
	}
	return WithRetry(WithLogging(base, eventRepo, log), cfg.Retry), nil
}
