package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"google.golang.org/genai"
)

// GeminiProvider implements the LLMProvider interface using the Google
// Gemini API. Extraction runs with a response schema, so the model is
// constrained to return JSON matching the auction data contract.
type GeminiProvider struct {
	config *common.GeminiConfig
	logger arbor.ILogger
	client *genai.Client
	retry  *RetryConfig
}

// NewGeminiProvider creates a new Gemini provider instance
func NewGeminiProvider(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger) (*GeminiProvider, error) {
	if config.Model == "" {
		config.Model = "gemini-3-flash-preview"
	}

	var client *genai.Client
	if config.APIKey != "" {
		var err error
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  config.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
	}

	logger.Debug().
		Str("model", config.Model).
		Bool("configured", client != nil).
		Msg("Gemini provider initialized")

	return &GeminiProvider{
		config: config,
		logger: logger,
		client: client,
		retry:  NewDefaultRetryConfig(),
	}, nil
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) IsConfigured() bool {
	return p.client != nil
}

// GenerateContent sends the extraction request with structured output
// enabled when a schema is present. Rate-limited calls are retried with
// backoff using the API-suggested delay when one is given.
func (p *GeminiProvider) GenerateContent(ctx context.Context, req *interfaces.ContentRequest) (string, error) {
	if !p.IsConfigured() {
		return "", fmt.Errorf("gemini provider is not configured")
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.OutputSchema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = req.OutputSchema
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.UserContent, genai.RoleUser),
	}

	startTime := time.Now()
	response, err := withRateLimitRetry(ctx, p.retry, func() (string, error) {
		resp, err := p.client.Models.GenerateContent(ctx, p.config.Model, contents, config)
		if err != nil {
			return "", fmt.Errorf("content generation failed: %w", err)
		}

		var text strings.Builder
		if resp != nil && len(resp.Candidates) > 0 {
			for _, candidate := range resp.Candidates {
				if candidate.Content == nil {
					continue
				}
				for _, part := range candidate.Content.Parts {
					if part.Text != "" {
						text.WriteString(part.Text)
					}
				}
				if text.Len() > 0 {
					break
				}
			}
		}
		if text.Len() == 0 {
			return "", fmt.Errorf("no response generated from model")
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
		Msg("Gemini content generation completed")

	return response, nil
}
