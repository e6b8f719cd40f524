package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/models"
)

var (
	// ErrAuthenticationFailed is returned when the auction site
	// rejects the credentials outright (HTTP 401).
	ErrAuthenticationFailed = errors.New("auction site rejected credentials")

	// ErrSessionExpired is returned when the site answers 2xx but
	// serves its login page instead of the auction sheet.
	ErrSessionExpired = errors.New("auction site returned login page")
)

// TransportError wraps a non-auth HTTP failure with the status code.
type TransportError struct {
	StatusCode int
	URL        string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("auction site returned status %d for %s", e.StatusCode, e.URL)
}

// loginMarkers are substrings whose presence in a 2xx body means the
// site silently bounced us to its login page.
var loginMarkers = []string{"ログイン", "Login"}

// Fetcher retrieves auction pages using HTTP Basic authentication.
type Fetcher struct {
	client *http.Client
	config *common.FetcherConfig
	logger arbor.ILogger
}

// NewFetcher creates a page fetcher from configuration
func NewFetcher(config *common.FetcherConfig, logger arbor.ILogger) interfaces.PageFetcher {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		config: config,
		logger: logger,
	}
}

// FetchPage GETs the URL with Basic auth and browser-like headers.
// Returns the body on success; auth failures, login bounces and other
// non-2xx statuses map to the error taxonomy above.
func (f *Fetcher) FetchPage(ctx context.Context, url string, creds *models.Credentials, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	if creds != nil && creds.Username != "" {
		req.SetBasicAuth(creds.Username, creds.Password)
	}
	if userAgent == "" {
		userAgent = f.config.UserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.9,en;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrAuthenticationFailed
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{StatusCode: resp.StatusCode, URL: url}
	}

	reader := io.Reader(resp.Body)
	if f.config.MaxBodySize > 0 {
		reader = io.LimitReader(resp.Body, f.config.MaxBodySize)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	// A 2xx that serves the login page means the session or the Basic
	// auth realm bounced us; surface it as an auth problem, not content.
	text := string(body)
	for _, marker := range loginMarkers {
		if strings.Contains(text, marker) {
			f.logger.Warn().Str("url", url).Str("marker", marker).Msg("Fetched page contains login marker")
			return nil, ErrSessionExpired
		}
	}

	f.logger.Debug().
		Str("url", url).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Fetched auction page")

	return body, nil
}
