package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/interfaces"
)

// stubProvider returns canned responses for engine tests.
type stubProvider struct {
	response   string
	err        error
	configured bool
	lastReq    *interfaces.ContentRequest
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) IsConfigured() bool { return p.configured }

func (p *stubProvider) GenerateContent(ctx context.Context, req *interfaces.ContentRequest) (string, error) {
	p.lastReq = req
	return p.response, p.err
}

func newTestEngine(provider interfaces.LLMProvider) interfaces.ExtractionEngine {
	config := common.NewDefaultConfig()
	return NewEngine(provider, &config.Extraction, arbor.NewLogger())
}

func TestEngineParsesProviderResponse(t *testing.T) {
	provider := &stubProvider{
		configured: true,
		response:   `{"lot_number":"77001","make":"Toyota","model":"Prius","fuel_type":"ハイブリッド"}`,
	}
	engine := newTestEngine(provider)

	data, raw, err := engine.Extract(context.Background(), []byte("<html><table>...</table></html>"), "https://auctions.example.com/aj-77001.html")
	if err != nil {
		t.Fatal(err)
	}
	if data.LotNumber != "77001" || data.FuelType != "ハイブリッド" {
		t.Errorf("Unexpected data: %+v", data)
	}
	if raw != provider.response {
		t.Error("Raw response not preserved")
	}
	// Defaults applied on the way through
	if data.Currency != "JPY" {
		t.Errorf("Expected JPY default, got %s", data.Currency)
	}
	// Schema travels with the request
	if provider.lastReq.OutputSchema == nil {
		t.Error("Expected output schema on request")
	}
	// The user turn names the listing URL alongside the content
	if !strings.Contains(provider.lastReq.UserContent, "https://auctions.example.com/aj-77001.html") {
		t.Error("Expected source URL in user content")
	}
}

func TestEngineToleratesCodeFences(t *testing.T) {
	provider := &stubProvider{
		configured: true,
		response:   "```json\n{\"lot_number\":\"88\",\"make\":\"Honda\",\"model\":\"Fit\"}\n```",
	}
	engine := newTestEngine(provider)

	data, _, err := engine.Extract(context.Background(), []byte("<html></html>"), "https://auctions.example.com/x")
	if err != nil {
		t.Fatal(err)
	}
	if data.Make != "Honda" {
		t.Errorf("Unexpected make: %s", data.Make)
	}
}

func TestEngineRejectsInvalidResponse(t *testing.T) {
	provider := &stubProvider{
		configured: true,
		response:   `{"make":"Toyota","model":"Corolla"}`, // no lot number
	}
	engine := newTestEngine(provider)

	_, raw, err := engine.Extract(context.Background(), []byte("<html></html>"), "https://auctions.example.com/x")
	var violation *SchemaViolation
	if !errors.As(err, &violation) {
		t.Fatalf("Expected SchemaViolation, got %v", err)
	}
	// Raw response survives for debugging even when validation fails
	if raw == "" {
		t.Error("Expected raw response alongside the violation")
	}
}

func TestEngineWrapsProviderFailure(t *testing.T) {
	provider := &stubProvider{
		configured: true,
		err:        errors.New("upstream down"),
	}
	engine := newTestEngine(provider)

	_, _, err := engine.Extract(context.Background(), []byte("<html></html>"), "https://auctions.example.com/x")
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("Expected ExtractionError, got %v", err)
	}
	if extractionErr.Provider != "stub" {
		t.Errorf("Expected provider name on error, got %s", extractionErr.Provider)
	}
}

func TestEngineFallsBackToMock(t *testing.T) {
	engine := newTestEngine(&stubProvider{configured: false})

	data, raw, err := engine.Extract(context.Background(), []byte("<html></html>"), "https://auctions.example.com/aj-55667788x.html")
	if err != nil {
		t.Fatal(err)
	}
	if data.LotNumber != "55667788" {
		t.Errorf("Expected mock lot from URL, got %s", data.LotNumber)
	}
	if raw == "" {
		t.Error("Expected synthetic raw response")
	}
}
