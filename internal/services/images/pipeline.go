package images

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/models"
)

// Pipeline harvests the images from a fetched auction page: locate,
// download, store bytes, record metadata. It runs after a successful
// extraction so an image failure never costs the sheet.
type Pipeline struct {
	downloader *Downloader
	images     interfaces.ImageStorage
	blobs      interfaces.BlobStore
	config     *common.ImagesConfig
	logger     arbor.ILogger
}

// NewPipeline creates the image pipeline
func NewPipeline(config *common.ImagesConfig, storage interfaces.StorageManager, logger arbor.ILogger) interfaces.ImagePipeline {
	return &Pipeline{
		downloader: NewDownloader(config, logger),
		images:     storage.ImageStorage(),
		blobs:      storage.BlobStore(),
		config:     config,
		logger:     logger,
	}
}

// ProcessPage locates and stores the page's images for the sheet.
// Failures are per-image: a broken gallery link is logged and skipped,
// and the count of stored images is returned. The error is non-nil
// only when the page itself cannot be parsed.
func (p *Pipeline) ProcessPage(ctx context.Context, pageHTML []byte, pageURL string, sheetID, jobID string, creds *models.Credentials) (int, error) {
	located, err := LocateImages(pageHTML, pageURL)
	if err != nil {
		return 0, err
	}
	if len(located) == 0 {
		p.logger.Debug().Str("url", pageURL).Msg("No candidate images on page")
		return 0, nil
	}

	p.logger.Info().
		Str("sheet_id", sheetID).
		Int("candidates", len(located)).
		Msg("Harvesting auction page images")

	stored := 0
	for _, candidate := range located {
		if err := p.processOne(ctx, candidate, sheetID, jobID, creds); err != nil {
			p.logger.Warn().
				Err(err).
				Str("image_url", candidate.URL).
				Str("sheet_id", sheetID).
				Msg("Skipping failed image")
			continue
		}
		stored++
	}

	p.logger.Info().
		Str("sheet_id", sheetID).
		Int("stored", stored).
		Int("failed", len(located)-stored).
		Msg("Image harvest complete")

	return stored, nil
}

func (p *Pipeline) processOne(ctx context.Context, candidate LocatedImage, sheetID, jobID string, creds *models.Credentials) error {
	data, contentType, err := p.downloader.Download(ctx, candidate.URL, creds, "")
	if err != nil {
		return err
	}

	// Prefer the server's Content-Type over the extension guess, but
	// only when it is actually an image type.
	mimeType := candidate.MimeType
	if strings.HasPrefix(contentType, "image/") {
		mimeType = contentType
	}

	ref, err := p.blobs.Store(data, mimeType)
	if err != nil {
		return err
	}

	image := &models.AuctionImage{
		ID:        common.NewImageID(),
		SheetID:   sheetID,
		JobID:     jobID,
		SourceURL: candidate.URL,
		Filename:  filenameFor(candidate),
		BlobRef:   ref,
		ImageType: candidate.Type,
		MimeType:  mimeType,
		SizeBytes: int64(len(data)),
		Position:  candidate.Position,
		AltText:   candidate.AltText,
		CreatedAt: time.Now(),
	}
	return p.images.SaveImage(ctx, image)
}

// filenameFor derives a display filename from the image URL's last
// path segment, falling back to a positional name.
func filenameFor(candidate LocatedImage) string {
	trimmed := candidate.URL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return fmt.Sprintf("image_%d.jpg", candidate.Position)
	}
	return trimmed
}
