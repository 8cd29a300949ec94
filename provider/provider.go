// Package provider abstracts the text-completion and embedding backend. The
// assistant treats it as an opaque service: callers implement their own
// fallback policy, no retries happen at this layer.
package provider

import (
	"context"
	"errors"

	"iitubot/config"
	openai_provider "iitubot/provider/openai"
)

// Provider is the interface every completion backend must satisfy.
type Provider interface {
	// Generate produces a completion for a single prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	// CreateEmbedding embeds the given texts, one vector per text.
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// NewProvider creates a completion client from configuration.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		return openai_provider.NewClient(
			cfg.APIKey,
			cfg.BaseURL,
			cfg.CompletionModel,
			cfg.EmbeddingModel,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.Timeout,
		), nil
	default:
		return nil, errors.New("unsupported llm provider: " + cfg.Provider)
	}
}
