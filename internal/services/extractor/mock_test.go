package extractor

import (
	"testing"
)

func TestMockExtractorLotFromURL(t *testing.T) {
	m := NewMockExtractor()

	data := m.Extract("https://auctions.example.com/cars/aj-1234567890abc.html")
	if data.LotNumber != "12345678" {
		t.Errorf("Expected first 8 chars of lot segment, got %s", data.LotNumber)
	}

	data = m.Extract("https://auctions.example.com/cars/listing.html")
	if data.LotNumber != "TEST001" {
		t.Errorf("Expected fallback lot TEST001, got %s", data.LotNumber)
	}
}

func TestMockExtractorDeterministic(t *testing.T) {
	m := NewMockExtractor()
	url := "https://auctions.example.com/cars/aj-abc123.html"

	first := m.Extract(url)
	second := m.Extract(url)
	if first.Make != second.Make || first.Model != second.Model || first.OverallGrade != second.OverallGrade {
		t.Error("Mock extraction must be deterministic per URL")
	}
}

func TestMockExtractorOutputValidates(t *testing.T) {
	m := NewMockExtractor()
	for _, url := range []string{
		"https://auctions.example.com/cars/aj-1.html",
		"https://auctions.example.com/cars/aj-zzz999.html",
		"https://auctions.example.com/other",
	} {
		data := m.Extract(url)
		if err := ValidateData(data); err != nil {
			t.Errorf("Mock output for %s failed validation: %v", url, err)
		}
	}
}
