package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/interfaces"
)

// NewProvider creates the LLM provider selected by configuration.
// An unconfigured provider is still returned so callers can check
// IsConfigured and fall back to the mock extractor.
func NewProvider(ctx context.Context, config *common.Config, logger arbor.ILogger) (interfaces.LLMProvider, error) {
	switch config.LLM.DefaultProvider {
	case common.LLMProviderGemini, "":
		return NewGeminiProvider(ctx, &config.Gemini, logger)
	case common.LLMProviderClaude:
		return NewClaudeProvider(&config.Claude, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.LLM.DefaultProvider)
	}
}
