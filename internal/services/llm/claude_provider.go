package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/interfaces"
)

// ClaudeProvider implements the LLMProvider interface using the
// Anthropic API. Claude has no response-schema parameter, so the
// schema is embedded in the system prompt and the response is expected
// to be bare JSON.
type ClaudeProvider struct {
	config     *common.ClaudeConfig
	logger     arbor.ILogger
	client     anthropic.Client
	configured bool
	retry      *RetryConfig
}

// NewClaudeProvider creates a new Claude provider instance
func NewClaudeProvider(config *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeProvider, error) {
	if config.Model == "" {
		config.Model = "claude-haiku-3-5-20241022"
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 8192
	}

	provider := &ClaudeProvider{
		config:     config,
		logger:     logger,
		configured: config.APIKey != "",
		retry:      NewDefaultRetryConfig(),
	}
	if provider.configured {
		provider.client = anthropic.NewClient(option.WithAPIKey(config.APIKey))
	}

	logger.Debug().
		Str("model", config.Model).
		Bool("configured", provider.configured).
		Msg("Claude provider initialized")

	return provider, nil
}

func (p *ClaudeProvider) Name() string {
	return "claude"
}

func (p *ClaudeProvider) IsConfigured() bool {
	return p.configured
}

func (p *ClaudeProvider) GenerateContent(ctx context.Context, req *interfaces.ContentRequest) (string, error) {
	if !p.IsConfigured() {
		return "", fmt.Errorf("claude provider is not configured")
	}

	systemText := req.SystemPrompt
	if req.OutputSchema != nil {
		schemaJSON, err := json.Marshal(req.OutputSchema)
		if err != nil {
			return "", fmt.Errorf("failed to marshal output schema: %w", err)
		}
		systemText = fmt.Sprintf(
			"%s\n\nRespond with a single JSON object matching this schema, with no markdown fences and no commentary:\n%s",
			systemText, schemaJSON)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.config.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.config.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserContent)),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(req.Temperature))
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemText}}
	}

	startTime := time.Now()
	response, err := withRateLimitRetry(ctx, p.retry, func() (string, error) {
		resp, err := p.client.Messages.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("claude API call failed: %w", err)
		}

		var text strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				text.WriteString(block.Text)
			}
		}
		if text.Len() == 0 {
			return "", fmt.Errorf("no response generated from claude API")
		}
		return text.String(), nil
	})
	if err != nil {
		return "", err
	}

	p.logger.Debug().
		Str("model", p.config.Model).
		Int("response_length", len(response)).
		Dur("duration", time.Since(startTime)).
		Msg("Claude content generation completed")

	return response, nil
}
