package llm

import (
	"context"
	"fmt"
	"strings"

	"task_tracker/internal/config"
)

// New builds the generator selected by cfg. It returns (nil, nil) when
// enrichment is disabled.
func New(ctx context.Context, cfg config.Enrichment) (Generator, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch strings.ToLower(cfg.Provider) {
	case config.ProviderGemini:
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case config.ProviderOllama:
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel, cfg.OllamaAPIKey, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
}
