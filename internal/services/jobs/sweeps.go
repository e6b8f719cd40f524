package jobs

import (
	"context"
	"time"
)

// RetrySweep requeues failed jobs that are under the retry ceiling and
// past the cooldown, up to the batch size. Returns the number requeued.
func (s *Service) RetrySweep(ctx context.Context) (int, error) {
	cfg := s.config.Extraction
	horizon := time.Now().Add(-cfg.RetryCooldown)

	candidates, err := s.jobs.GetRetriableJobs(ctx, cfg.MaxRetries, horizon, cfg.RetryBatchSize)
	if err != nil {
		return 0, err
	}

	requeued := 0
	for _, job := range candidates {
		if err := s.requeue(ctx, job); err != nil {
			s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Retry sweep failed to requeue job")
			continue
		}
		s.dispatch(job.ID)
		requeued++
	}

	if requeued > 0 {
		s.logger.Info().Int("requeued", requeued).Msg("Retry sweep requeued failed jobs")
	}
	return requeued, nil
}

// CleanupSweep deletes completed jobs older than the retention
// horizon, up to the batch size. Failed jobs are never purged, and
// sheets and images are never touched: the job record is scaffolding,
// the sheet is the product.
func (s *Service) CleanupSweep(ctx context.Context) (int, error) {
	cfg := s.config.Extraction
	horizon := time.Now().Add(-cfg.CleanupRetention)

	expired, err := s.jobs.GetExpiredJobs(ctx, horizon, cfg.CleanupBatchSize)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, job := range expired {
		if err := s.jobs.DeleteJob(ctx, job.ID); err != nil {
			s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Cleanup sweep failed to delete job")
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Info().Int("deleted", deleted).Msg("Cleanup sweep removed expired jobs")
	}
	return deleted, nil
}

// DrainQueue dispatches pending jobs in priority order, up to the
// batch size. This is the safety net behind immediate dispatch: jobs
// stranded pending by a crash or a burst get picked up here.
func (s *Service) DrainQueue(ctx context.Context) (int, error) {
	pending, err := s.jobs.GetPendingByPriority(ctx, s.config.Extraction.DrainBatchSize)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, job := range pending {
		if err := s.runExtraction(ctx, job.ID); err != nil {
			s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Drain dispatch failed")
		}
		dispatched++
	}

	if dispatched > 0 {
		s.logger.Debug().Int("dispatched", dispatched).Msg("Drain sweep dispatched pending jobs")
	}
	return dispatched, nil
}
