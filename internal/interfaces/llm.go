package interfaces

import (
	"context"

	"google.golang.org/genai"
)

// ContentRequest carries one structured-extraction call to a model
// provider. OutputSchema, when set, constrains the response to JSON
// matching the schema on providers that support structured output.
type ContentRequest struct {
	SystemPrompt string
	UserContent  string
	OutputSchema *genai.Schema
	MaxTokens    int
	Temperature  float32
}

// LLMProvider abstracts the model vendors used for auction sheet
// extraction. Implementations must be safe for concurrent use.
type LLMProvider interface {
	// Name returns the provider identifier ("gemini", "claude", "mock")
	Name() string

	// GenerateContent sends the request and returns the raw text of the
	// model's response. Structured-output providers return bare JSON.
	GenerateContent(ctx context.Context, req *ContentRequest) (string, error)

	// IsConfigured reports whether the provider has the credentials it
	// needs to make live calls.
	IsConfigured() bool
}
