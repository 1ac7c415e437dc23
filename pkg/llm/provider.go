package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ProviderConfig selects and configures a Generator.
type ProviderConfig struct {
	Provider  string // "gemini" or "ollama"
	Model     string
	OllamaURL string
	APIKey    string
	Timeout   time.Duration
}

// NewGenerator builds the Generator named by config.Provider.
func NewGenerator(ctx context.Context, config ProviderConfig, logger *zap.Logger) (Generator, error) {
	switch config.Provider {
	case "ollama":
		return NewOllamaGenerator(config.OllamaURL, config.Model, config.Timeout, logger), nil
	case "gemini":
		return NewGeminiGenerator(ctx, config.APIKey, config.Model, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", config.Provider)
	}
}
