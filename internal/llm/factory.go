package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/matthieukhl/reword/internal/config"
	"github.com/matthieukhl/reword/internal/llm/generate"
	"github.com/matthieukhl/reword/internal/types"
)

// NewGenerator creates a generator based on configuration
func NewGenerator(cfg *config.OllamaConfig, logger *zap.Logger) (types.Generator, error) {
	switch cfg.Provider {
	case "ollama":
		return generate.NewOllamaGenerator(cfg.BaseURL, cfg.Model, logger), nil
	case "mock":
		return generate.NewMockGenerator(cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", cfg.Provider)
	}
}
