package images

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/aucsheet/internal/models"
)

// LocatedImage is a candidate image found on an auction page, before
// download.
type LocatedImage struct {
	// URL is the fully resolved absolute URL
	URL string
	// Position is the candidate's zero-based document order among kept
	// images, with no gaps from filtered-out tags
	Position int
	AltText  string
	Type     models.ImageType
	MimeType string
}

// cosmeticKeywords mark images that are page furniture, not vehicle
// content. Matched case-insensitively against src and alt.
var cosmeticKeywords = []string{"icon", "button", "logo"}

// LocateImages parses the page and returns the candidate images in
// document order, with cosmetic images filtered out and each candidate
// classified and resolved against the page URL.
func LocateImages(pageHTML []byte, pageURL string) ([]LocatedImage, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(pageHTML)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}

	var located []LocatedImage
	seen := make(map[string]bool)

	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}

		alt, _ := sel.Attr("alt")
		if isCosmetic(src, alt) {
			return
		}

		resolved := ResolveImageURL(src, base)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true

		located = append(located, LocatedImage{
			URL:      resolved,
			Position: len(located),
			AltText:  alt,
			Type:     ClassifyImage(src, alt),
			MimeType: MimeFromURL(resolved),
		})
	})

	return located, nil
}

func isCosmetic(src, alt string) bool {
	haystack := strings.ToLower(src + " " + alt)
	for _, keyword := range cosmeticKeywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

// ResolveImageURL turns a src attribute into an absolute URL against
// the page it appeared on. Scheme-relative srcs take the page scheme,
// root-relative srcs take the page origin, and bare paths are joined
// to the origin with a slash.
func ResolveImageURL(src string, base *url.URL) string {
	switch {
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return src
	case strings.HasPrefix(src, "//"):
		return base.Scheme + ":" + src
	case strings.HasPrefix(src, "/"):
		return base.Scheme + "://" + base.Host + src
	default:
		return base.Scheme + "://" + base.Host + "/" + src
	}
}

// ClassifyImage buckets an image by src and alt keywords. Auction
// sheet scans win over defect diagrams, which win over photos; pages
// that give no hints default to vehicle photos.
func ClassifyImage(src, alt string) models.ImageType {
	haystack := strings.ToLower(src + " " + alt)
	switch {
	case strings.Contains(haystack, "auction"), strings.Contains(haystack, "sheet"):
		return models.ImageTypeAuctionSheet
	case strings.Contains(haystack, "defect"), strings.Contains(haystack, "damage"):
		return models.ImageTypeDefectDiagram
	case strings.Contains(haystack, "photo"), strings.Contains(haystack, "image"):
		return models.ImageTypeVehiclePhoto
	default:
		return models.ImageTypeVehiclePhoto
	}
}

// MimeFromURL guesses the MIME type from the URL's extension. The
// auction site serves JPEGs with no extension, so that is the default.
func MimeFromURL(imageURL string) string {
	lower := strings.ToLower(imageURL)
	if idx := strings.IndexAny(lower, "?#"); idx >= 0 {
		lower = lower[:idx]
	}
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
