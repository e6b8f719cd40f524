package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/aucsheet/internal/models"
)

// PageFetcher retrieves auction pages from the source site using
// Basic authentication.
type PageFetcher interface {
	// FetchPage GETs the URL and returns the response body. A 2xx body
	// containing the site's login markers is a session failure, not a
	// success.
	FetchPage(ctx context.Context, url string, creds *models.Credentials, userAgent string) ([]byte, error)
}

// ExtractionEngine turns fetched page content into validated auction
// data.
type ExtractionEngine interface {
	// Extract converts the HTML to markdown, prompts the configured
	// provider, and validates the response. The returned raw string is
	// the provider's unparsed response, kept on the job for debugging.
	Extract(ctx context.Context, pageHTML []byte, sourceURL string) (*models.AuctionData, string, error)
}

// ImagePipeline locates, downloads and stores the images on an auction
// page after a successful extraction.
type ImagePipeline interface {
	// ProcessPage harvests images from the page for the given sheet.
	// Individual image failures are logged and skipped; the error is
	// only non-nil when the page itself cannot be processed.
	ProcessPage(ctx context.Context, pageHTML []byte, pageURL string, sheetID, jobID string, creds *models.Credentials) (int, error)
}

// JobService owns the extraction job lifecycle: submission, dispatch,
// retry and the periodic sweeps.
type JobService interface {
	ScheduleExtraction(ctx context.Context, url string, priority int, requestedBy string) (*ScheduleResult, error)
	GetJob(ctx context.Context, id string) (*models.ExtractionJob, error)
	ListJobs(ctx context.Context, status models.JobStatus, limit int) ([]*JobSummary, error)
	RetryJob(ctx context.Context, id string) (*models.ExtractionJob, error)

	// Sweeps, exposed for the scheduler and for manual triggering.
	RetrySweep(ctx context.Context) (int, error)
	CleanupSweep(ctx context.Context) (int, error)
	DrainQueue(ctx context.Context) (int, error)
}

// ScheduleResult reports the outcome of a submission, including the
// dedup short-circuits.
type ScheduleResult struct {
	Job           *models.ExtractionJob `json:"job"`
	AlreadyExists bool                  `json:"already_exists"`
	InProgress    bool                  `json:"in_progress"`
	SheetID       string                `json:"sheet_id,omitempty"`
}

// JobSummary is a job joined with the headline fields of the sheet it
// produced, for listing endpoints.
type JobSummary struct {
	Job       *models.ExtractionJob `json:"job"`
	LotNumber string                `json:"lot_number,omitempty"`
	Make      string                `json:"make,omitempty"`
	Model     string                `json:"model,omitempty"`
}

// ScheduledJobStatus represents the current status of a scheduled job
type ScheduledJobStatus struct {
	Name        string
	Enabled     bool
	Schedule    string
	Description string
	LastRun     *time.Time
	NextRun     *time.Time
	IsRunning   bool
	LastError   string
}

// SchedulerService manages cron-based scheduling
type SchedulerService interface {
	// Start the scheduler
	Start() error

	// Stop the scheduler
	Stop() error

	// IsRunning returns true if scheduler is active
	IsRunning() bool

	// RegisterJob registers a new job with the scheduler
	RegisterJob(name string, schedule string, description string, handler func() error) error

	// EnableJob enables a disabled job
	EnableJob(name string) error

	// DisableJob disables an enabled job
	DisableJob(name string) error

	// GetJobStatus returns the status of a specific job
	GetJobStatus(name string) (*ScheduledJobStatus, error)

	// GetAllJobStatuses returns all job statuses
	GetAllJobStatuses() map[string]*ScheduledJobStatus
}
