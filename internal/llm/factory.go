package llm

import (
	"context"
	"fmt"

	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/config"
)

// New builds the Completer selected by LLM_PROVIDER. A missing API key
// yields a Completer that always fails with ErrNotConfigured.
func New(ctx context.Context, cfg *config.Config, logger internal.Logger) (Completer, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			logger.Warn("llm: OPENAI_API_KEY not set, insight generation will fail")
			return unavailable{provider: "openai"}, nil
		}
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.LLMTimeout,
		}, logger), nil
	case "gemini":
		if cfg.GeminiKey == "" {
			logger.Warn("llm: GEMINI_API_KEY not set, insight generation will fail")
			return unavailable{provider: "gemini"}, nil
		}
		return NewGeminiClient(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.LLMTimeout, logger)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.LLMProvider)
	}
}
