package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/models"
)

// Service owns the extraction job lifecycle: submission with dedup,
// dispatch through fetch/extract/persist, manual retry, and the
// periodic sweeps.
type Service struct {
	jobs     interfaces.JobStorage
	sheets   interfaces.SheetStorage
	kv       interfaces.KeyValueStorage
	fetcher  interfaces.PageFetcher
	engine   interfaces.ExtractionEngine
	pipeline interfaces.ImagePipeline
	config   *common.Config
	logger   arbor.ILogger

	// asyncDispatch is disabled in tests so dispatch is observable
	asyncDispatch bool
}

// NewService creates the job service
func NewService(
	storage interfaces.StorageManager,
	fetcher interfaces.PageFetcher,
	engine interfaces.ExtractionEngine,
	pipeline interfaces.ImagePipeline,
	config *common.Config,
	logger arbor.ILogger,
) *Service {
	return &Service{
		jobs:          storage.JobStorage(),
		sheets:        storage.SheetStorage(),
		kv:            storage.KeyValueStorage(),
		fetcher:       fetcher,
		engine:        engine,
		pipeline:      pipeline,
		config:        config,
		logger:        logger,
		asyncDispatch: true,
	}
}

// ScheduleExtraction submits a URL for extraction. Submission is
// idempotent against the most recent non-failed job for the URL: a
// completed job short-circuits with its sheet, a live job reports
// in-progress, and only a failed history (or none) creates a new job.
func (s *Service) ScheduleExtraction(ctx context.Context, url string, priority int, requestedBy string) (*interfaces.ScheduleResult, error) {
	if url == "" {
		return nil, fmt.Errorf("auction URL is required")
	}

	existing, err := s.jobs.GetLatestNonFailedJobByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == models.JobStatusCompleted {
			s.logger.Debug().Str("url", url).Str("job_id", existing.ID).Msg("Submission matched completed job")
			return &interfaces.ScheduleResult{
				Job:           existing,
				AlreadyExists: true,
				SheetID:       existing.SheetID,
			}, nil
		}
		s.logger.Debug().Str("url", url).Str("job_id", existing.ID).Msg("Submission matched live job")
		return &interfaces.ScheduleResult{
			Job:        existing,
			InProgress: true,
		}, nil
	}

	now := time.Now()
	job := &models.ExtractionJob{
		ID:            common.NewJobID(),
		AuctionURL:    url,
		Status:        models.JobStatusPending,
		Priority:      priority,
		RequestedBy:   requestedBy,
		UserAgent:     s.config.Fetcher.UserAgent,
		CredentialRef: s.config.Extraction.DefaultCredentialRef,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("url", url).
		Int("priority", priority).
		Msg("Extraction job scheduled")

	// Dispatch immediately; the drain sweep catches anything this
	// goroutine leaves behind after a crash.
	s.dispatch(job.ID)

	return &interfaces.ScheduleResult{Job: job}, nil
}

func (s *Service) dispatch(jobID string) {
	if !s.asyncDispatch {
		return
	}
	go func() {
		if err := s.runExtraction(context.Background(), jobID); err != nil {
			s.logger.Warn().Err(err).Str("job_id", jobID).Msg("Dispatch failed")
		}
	}()
}

// GetJob returns a job by ID, or ErrJobNotFound.
func (s *Service) GetJob(ctx context.Context, id string) (*models.ExtractionJob, error) {
	job, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// ListJobs lists jobs, newest first, joined with the headline fields
// of the sheets completed jobs produced. An empty status lists all.
func (s *Service) ListJobs(ctx context.Context, status models.JobStatus, limit int) ([]*interfaces.JobSummary, error) {
	var (
		jobList []*models.ExtractionJob
		err     error
	)
	if status == "" {
		jobList, err = s.jobs.ListAllJobs(ctx, limit)
	} else {
		jobList, err = s.jobs.ListJobs(ctx, status, limit)
	}
	if err != nil {
		return nil, err
	}

	summaries := make([]*interfaces.JobSummary, 0, len(jobList))
	for _, job := range jobList {
		summary := &interfaces.JobSummary{Job: job}
		if job.SheetID != "" {
			sheet, err := s.sheets.GetSheet(ctx, job.SheetID)
			if err != nil {
				return nil, err
			}
			if sheet != nil {
				summary.LotNumber = sheet.LotNumber
				summary.Make = sheet.Make
				summary.Model = sheet.Model
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// RetryJob requeues a failed job immediately, bypassing the cooldown
// but not the job's history: the retry count keeps climbing.
func (s *Service) RetryJob(ctx context.Context, id string) (*models.ExtractionJob, error) {
	job, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	if job.Status != models.JobStatusFailed {
		return nil, fmt.Errorf("%w: cannot retry %s job %s", ErrInvalidJobState, job.Status, id)
	}

	if err := s.requeue(ctx, job); err != nil {
		return nil, err
	}
	s.logger.Info().Str("job_id", id).Int("retry_count", job.RetryCount).Msg("Job manually requeued")

	s.dispatch(job.ID)

	return job, nil
}

// requeue resets a failed job to pending and bumps its retry count.
func (s *Service) requeue(ctx context.Context, job *models.ExtractionJob) error {
	job.Status = models.JobStatusPending
	job.RetryCount++
	job.ErrorMessage = ""
	job.UpdatedAt = time.Now()
	return s.jobs.SaveJob(ctx, job)
}

// runExtraction dispatches one job end to end. The pending check is
// the claim: a job some other goroutine already moved to processing is
// skipped, so immediate dispatch and the drain sweep never collide.
func (s *Service) runExtraction(ctx context.Context, jobID string) error {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return ErrJobNotFound
	}
	if job.Status != models.JobStatusPending {
		return nil
	}

	job.Status = models.JobStatusProcessing
	job.UpdatedAt = time.Now()
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return err
	}

	creds, err := s.resolveCredentials(ctx, job.CredentialRef)
	if err != nil {
		return s.failJob(ctx, job, err)
	}

	pageHTML, err := s.fetcher.FetchPage(ctx, job.AuctionURL, creds, job.UserAgent)
	if err != nil {
		return s.failJob(ctx, job, err)
	}

	// Persist a truncated copy of the page for debugging failed runs
	job.PageContent = truncate(string(pageHTML), s.config.Extraction.PageContentCap)

	data, raw, err := s.engine.Extract(ctx, pageHTML, job.AuctionURL)
	job.AIResponse = truncate(raw, s.config.Extraction.PageContentCap)
	if err != nil {
		return s.failJob(ctx, job, err)
	}

	sheet, err := s.persistSheet(ctx, job, data)
	if err != nil {
		return s.failJob(ctx, job, err)
	}

	now := time.Now()
	job.Status = models.JobStatusCompleted
	job.SheetID = sheet.ID
	job.ErrorMessage = ""
	job.ExtractedAt = &now
	job.UpdatedAt = now
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return err
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("sheet_id", sheet.ID).
		Str("lot_number", sheet.LotNumber).
		Msg("Extraction job completed")

	// Images are harvested after completion; their failures are logged
	// by the pipeline and never touch the job.
	if _, err := s.pipeline.ProcessPage(ctx, pageHTML, job.AuctionURL, sheet.ID, job.ID, creds); err != nil {
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Image harvest failed")
	}

	return nil
}

// persistSheet stores the extracted data. When unique-lot enforcement
// is on and the lot already has a sheet, the existing sheet wins and
// the job completes pointing at it.
func (s *Service) persistSheet(ctx context.Context, job *models.ExtractionJob, data *models.AuctionData) (*models.AuctionSheet, error) {
	if s.config.Extraction.EnforceUniqueLot {
		existing, err := s.sheets.GetSheetByLotNumber(ctx, data.LotNumber)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.logger.Info().
				Str("lot_number", data.LotNumber).
				Str("sheet_id", existing.ID).
				Msg("Lot already extracted, reusing sheet")
			return existing, nil
		}
	}

	now := time.Now()
	sheet := &models.AuctionSheet{
		ID:           common.NewSheetID(),
		AuctionData:  *data,
		SourceURL:    job.AuctionURL,
		DataSource:   models.DataSourceAIExtraction,
		QualityScore: 8,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.sheets.SaveSheet(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// resolveCredentials looks the job's credential reference up in the
// key/value store. Jobs never carry secrets themselves.
func (s *Service) resolveCredentials(ctx context.Context, ref string) (*models.Credentials, error) {
	if ref == "" {
		return nil, nil
	}
	value, err := s.kv.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCredentialsMissing, ref)
		}
		return nil, err
	}

	var creds models.Credentials
	if err := json.Unmarshal([]byte(value), &creds); err != nil {
		return nil, fmt.Errorf("credential reference %s is not valid JSON: %w", ref, err)
	}
	return &creds, nil
}

// failJob records the failure and leaves the job to the retry sweep.
func (s *Service) failJob(ctx context.Context, job *models.ExtractionJob, cause error) error {
	job.Status = models.JobStatusFailed
	job.ErrorMessage = cause.Error()
	job.UpdatedAt = time.Now()

	s.logger.Warn().
		Err(cause).
		Str("job_id", job.ID).
		Str("url", job.AuctionURL).
		Int("retry_count", job.RetryCount).
		Msg("Extraction job failed")

	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return err
	}
	return cause
}

func truncate(text string, limit int) string {
	if limit > 0 && len(text) > limit {
		return text[:limit]
	}
	return text
}
