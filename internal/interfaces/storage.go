// -----------------------------------------------------------------------
// Last Modified: Friday, 29th August 2026 10:15:04 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/aucsheet/internal/models"
)

// JobStorage - persistence for extraction jobs
type JobStorage interface {
	// CRUD operations
	SaveJob(ctx context.Context, job *models.ExtractionJob) error
	GetJob(ctx context.Context, id string) (*models.ExtractionJob, error)
	DeleteJob(ctx context.Context, id string) error

	// Query operations
	// GetLatestJobByURL returns the most recently created job for the
	// URL, regardless of status, or nil when none exists.
	GetLatestJobByURL(ctx context.Context, url string) (*models.ExtractionJob, error)
	// GetLatestNonFailedJobByURL is the dedup query: the most recent
	// job for the URL whose status is not failed, or nil.
	GetLatestNonFailedJobByURL(ctx context.Context, url string) (*models.ExtractionJob, error)
	ListJobs(ctx context.Context, status models.JobStatus, limit int) ([]*models.ExtractionJob, error)
	ListAllJobs(ctx context.Context, limit int) ([]*models.ExtractionJob, error)

	// Sweep queries
	// GetRetriableJobs returns failed jobs below the retry ceiling whose
	// last update is older than the cooldown, up to limit.
	GetRetriableJobs(ctx context.Context, maxRetries int, olderThan time.Time, limit int) ([]*models.ExtractionJob, error)
	// GetExpiredJobs returns terminal jobs created before the horizon,
	// up to limit.
	GetExpiredJobs(ctx context.Context, before time.Time, limit int) ([]*models.ExtractionJob, error)
	// GetPendingByPriority returns pending jobs highest priority first,
	// ties broken oldest first, up to limit.
	GetPendingByPriority(ctx context.Context, limit int) ([]*models.ExtractionJob, error)

	// Stats operations
	CountByStatus(ctx context.Context) (map[models.JobStatus]int, error)
}

// SheetStorage - persistence for auction sheets
type SheetStorage interface {
	SaveSheet(ctx context.Context, sheet *models.AuctionSheet) error
	GetSheet(ctx context.Context, id string) (*models.AuctionSheet, error)
	GetSheetByLotNumber(ctx context.Context, lotNumber string) (*models.AuctionSheet, error)
	// UpdateSheet applies the narrow post-creation update surface.
	UpdateSheet(ctx context.Context, id string, update *models.SheetUpdate) (*models.AuctionSheet, error)
	DeleteSheet(ctx context.Context, id string) error

	// Search operations
	SearchSheets(ctx context.Context, filter *SheetFilter) ([]*models.AuctionSheet, error)
	ListSheets(ctx context.Context, limit int, offset int) ([]*models.AuctionSheet, error)
	CountSheets(ctx context.Context) (int, error)
}

// SheetFilter narrows a sheet search. Zero values mean "any". Make is
// a case-insensitive substring match; the rest are exact.
type SheetFilter struct {
	Make          string
	Model         string
	AuctionStatus string
	AuctionHouse  string
	MinGrade      string
	Limit         int
}

// ImageStorage - persistence for auction image metadata
type ImageStorage interface {
	SaveImage(ctx context.Context, image *models.AuctionImage) error
	GetImage(ctx context.Context, id string) (*models.AuctionImage, error)
	GetImagesBySheet(ctx context.Context, sheetID string) ([]*models.AuctionImage, error)
	DeleteImage(ctx context.Context, id string) error
	DeleteImagesBySheet(ctx context.Context, sheetID string) error
	CountImages(ctx context.Context) (int, error)
}

// BlobStore - content-addressed storage for image bytes
type BlobStore interface {
	// Store writes the bytes and returns a stable reference.
	Store(data []byte, mimeType string) (string, error)
	// Open returns the bytes for a reference.
	Open(ref string) ([]byte, error)
	Delete(ref string) error
	// Path returns the filesystem path backing a reference, for
	// serving the blob directly.
	Path(ref string) (string, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	JobStorage() JobStorage
	SheetStorage() SheetStorage
	ImageStorage() ImageStorage
	KeyValueStorage() KeyValueStorage
	BlobStore() BlobStore
	Close() error
}
