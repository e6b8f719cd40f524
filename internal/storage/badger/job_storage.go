package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// JobStorage implements the JobStorage interface for Badger
type JobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewJobStorage creates a new JobStorage instance
func NewJobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.JobStorage {
	return &JobStorage{
		db:     db,
		logger: logger,
	}
}

func (s *JobStorage) SaveJob(ctx context.Context, job *models.ExtractionJob) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}

	if err := s.db.Store().Upsert(job.ID, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

func (s *JobStorage) GetJob(ctx context.Context, id string) (*models.ExtractionJob, error) {
	var job models.ExtractionJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (s *JobStorage) DeleteJob(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.ExtractionJob{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// GetLatestJobByURL returns the newest job for the URL, or nil.
func (s *JobStorage) GetLatestJobByURL(ctx context.Context, url string) (*models.ExtractionJob, error) {
	var jobs []models.ExtractionJob
	query := badgerhold.Where("AuctionURL").Eq(url).Index("AuctionURL").
		SortBy("CreatedAt").Reverse().Limit(1)
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to query jobs by URL: %w", err)
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	return &jobs[0], nil
}

// GetLatestNonFailedJobByURL returns the newest job for the URL whose
// status is not failed, or nil. This is the submission dedup query:
// failed jobs never block a resubmission.
func (s *JobStorage) GetLatestNonFailedJobByURL(ctx context.Context, url string) (*models.ExtractionJob, error) {
	var jobs []models.ExtractionJob
	query := badgerhold.Where("AuctionURL").Eq(url).Index("AuctionURL").
		And("Status").Ne(models.JobStatusFailed).
		SortBy("CreatedAt").Reverse().Limit(1)
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to query jobs by URL: %w", err)
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	return &jobs[0], nil
}

func (s *JobStorage) ListJobs(ctx context.Context, status models.JobStatus, limit int) ([]*models.ExtractionJob, error) {
	query := badgerhold.Where("Status").Eq(status).Index("Status").
		SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var jobs []models.ExtractionJob
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return toJobPointers(jobs), nil
}

func (s *JobStorage) ListAllJobs(ctx context.Context, limit int) ([]*models.ExtractionJob, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var jobs []models.ExtractionJob
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return toJobPointers(jobs), nil
}

// GetRetriableJobs returns failed jobs under the retry ceiling that
// were created before the cooldown horizon. The gate is job age, not
// failure age: a job that has been around longer than the cooldown is
// eligible as soon as it fails.
func (s *JobStorage) GetRetriableJobs(ctx context.Context, maxRetries int, olderThan time.Time, limit int) ([]*models.ExtractionJob, error) {
	query := badgerhold.Where("Status").Eq(models.JobStatusFailed).Index("Status").
		And("RetryCount").Lt(maxRetries).
		And("CreatedAt").Lt(olderThan).
		SortBy("CreatedAt")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var jobs []models.ExtractionJob
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to query retriable jobs: %w", err)
	}
	return toJobPointers(jobs), nil
}

// GetExpiredJobs returns completed jobs created before the horizon.
// Only completed jobs ever expire: failed jobs stay forever, pending
// manual intervention.
func (s *JobStorage) GetExpiredJobs(ctx context.Context, before time.Time, limit int) ([]*models.ExtractionJob, error) {
	query := badgerhold.Where("Status").Eq(models.JobStatusCompleted).Index("Status").
		And("CreatedAt").Lt(before).
		SortBy("CreatedAt")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var jobs []models.ExtractionJob
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to query expired jobs: %w", err)
	}
	return toJobPointers(jobs), nil
}

// GetPendingByPriority returns pending jobs highest priority first,
// ties broken oldest first. BadgerHold sorts on one field, so the
// priority/age tiebreak is applied in memory after the status scan.
func (s *JobStorage) GetPendingByPriority(ctx context.Context, limit int) ([]*models.ExtractionJob, error) {
	var jobs []models.ExtractionJob
	query := badgerhold.Where("Status").Eq(models.JobStatusPending).Index("Status")
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to query pending jobs: %w", err)
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Priority != jobs[j].Priority {
			return jobs[i].Priority > jobs[j].Priority
		}
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return toJobPointers(jobs), nil
}

func (s *JobStorage) CountByStatus(ctx context.Context) (map[models.JobStatus]int, error) {
	counts := make(map[models.JobStatus]int)
	for _, status := range []models.JobStatus{
		models.JobStatusPending,
		models.JobStatusProcessing,
		models.JobStatusCompleted,
		models.JobStatusFailed,
	} {
		n, err := s.db.Store().Count(&models.ExtractionJob{}, badgerhold.Where("Status").Eq(status).Index("Status"))
		if err != nil {
			return nil, fmt.Errorf("failed to count jobs: %w", err)
		}
		counts[status] = int(n)
	}
	return counts, nil
}

func toJobPointers(jobs []models.ExtractionJob) []*models.ExtractionJob {
	result := make([]*models.ExtractionJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result
}
