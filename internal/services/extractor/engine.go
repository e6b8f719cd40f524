package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/models"
)

// ExtractionError wraps a provider or parse failure with the provider
// name, so job error messages say which vendor fell over.
type ExtractionError struct {
	Provider string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction via %s failed: %v", e.Provider, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Engine implements the ExtractionEngine interface: page HTML in,
// validated auction data out. When the configured provider has no
// credentials the mock extractor stands in, so the pipeline stays
// exercisable in development.
type Engine struct {
	provider interfaces.LLMProvider
	mock     *MockExtractor
	config   *common.ExtractionConfig
	logger   arbor.ILogger
}

// NewEngine creates the extraction engine
func NewEngine(provider interfaces.LLMProvider, config *common.ExtractionConfig, logger arbor.ILogger) interfaces.ExtractionEngine {
	return &Engine{
		provider: provider,
		mock:     NewMockExtractor(),
		config:   config,
		logger:   logger,
	}
}

// Extract converts the page to markdown, prompts the provider with the
// response schema, and validates the parsed result. The second return
// value is the provider's raw response, kept on the job for debugging.
func (e *Engine) Extract(ctx context.Context, pageHTML []byte, sourceURL string) (*models.AuctionData, string, error) {
	if e.provider == nil || !e.provider.IsConfigured() {
		e.logger.Warn().Str("url", sourceURL).Msg("LLM provider not configured, using mock extraction")
		data := e.mock.Extract(sourceURL)
		raw, _ := json.Marshal(data)
		if err := ValidateData(data); err != nil {
			return nil, string(raw), err
		}
		return data, string(raw), nil
	}

	markdown := e.toMarkdown(pageHTML, sourceURL)

	req := &interfaces.ContentRequest{
		SystemPrompt: systemPrompt,
		UserContent:  userPrompt(markdown, sourceURL),
		OutputSchema: OutputSchema(),
		Temperature:  0.1,
	}

	start := time.Now()
	raw, err := e.provider.GenerateContent(ctx, req)
	if err != nil {
		return nil, "", &ExtractionError{Provider: e.provider.Name(), Err: err}
	}

	data, err := parseResponse(raw)
	if err != nil {
		return nil, raw, &ExtractionError{Provider: e.provider.Name(), Err: err}
	}

	if err := ValidateData(data); err != nil {
		return nil, raw, err
	}

	e.logger.Info().
		Str("provider", e.provider.Name()).
		Str("lot_number", data.LotNumber).
		Dur("duration", time.Since(start)).
		Msg("Auction sheet extracted")

	return data, raw, nil
}

// toMarkdown converts the page HTML for prompting. Conversion failures
// fall back to the raw HTML; a noisier prompt beats a dead one.
func (e *Engine) toMarkdown(pageHTML []byte, sourceURL string) string {
	domain := ""
	if u, err := url.Parse(sourceURL); err == nil {
		domain = u.Scheme + "://" + u.Host
	}

	converter := md.NewConverter(domain, true, nil)
	markdown, err := converter.ConvertString(string(pageHTML))
	if err != nil {
		e.logger.Warn().Err(err).Msg("HTML to markdown conversion failed, prompting with raw HTML")
		return string(pageHTML)
	}
	return markdown
}

// parseResponse unmarshals the provider response, tolerating markdown
// code fences around the JSON.
func parseResponse(raw string) (*models.AuctionData, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	var data models.AuctionData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("response is not valid auction data JSON: %w", err)
	}
	return &data, nil
}
