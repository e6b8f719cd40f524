package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/models"
	"golang.org/x/time/rate"
)

// Downloader fetches image bytes from the auction site. Downloads are
// rate limited so harvesting a gallery does not hammer the host, and
// oversized responses are cut off at the configured cap.
type Downloader struct {
	client  *http.Client
	limiter *rate.Limiter
	config  *common.ImagesConfig
	logger  arbor.ILogger
}

// NewDownloader creates a rate-limited image downloader
func NewDownloader(config *common.ImagesConfig, logger arbor.ILogger) *Downloader {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	interval := config.RateLimit
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	return &Downloader{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		config:  config,
		logger:  logger,
	}
}

// Download fetches one image with the same Basic auth the page fetch
// used. Returns the bytes and the server's Content-Type when it sends
// one.
func (d *Downloader) Download(ctx context.Context, imageURL string, creds *models.Credentials, userAgent string) ([]byte, string, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build image request: %w", err)
	}
	if creds != nil && creds.Username != "" {
		req.SetBasicAuth(creds.Username, creds.Password)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	if req.URL.Scheme != "" && req.URL.Host != "" {
		req.Header.Set("Referer", req.URL.Scheme+"://"+req.URL.Host+"/")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("image download returned status %d for %s", resp.StatusCode, imageURL)
	}

	maxSize := d.config.MaxImageSize
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image body: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", fmt.Errorf("image exceeds size cap of %d bytes: %s", maxSize, imageURL)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("image download returned empty body: %s", imageURL)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
