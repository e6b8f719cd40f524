package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/interfaces"
)

// jobEntry represents a registered job with metadata
type jobEntry struct {
	name        string
	schedule    string
	description string
	handler     func() error
	enabled     bool
	cronID      cron.EntryID
	lastRun     *time.Time
	isRunning   bool
	lastError   string
}

// Service implements the SchedulerService interface on robfig/cron.
// The job service's sweeps register here: retry, cleanup and drain.
type Service struct {
	cron    *cron.Cron
	logger  arbor.ILogger
	jobMu   sync.Mutex // Protects jobs map and entry state
	jobs    map[string]*jobEntry
	running bool
}

// NewService creates a new scheduler service
func NewService(logger arbor.ILogger) interfaces.SchedulerService {
	return &Service{
		cron:   cron.New(),
		logger: logger,
		jobs:   make(map[string]*jobEntry),
	}
}

// RegisterJob registers a named job with a cron schedule. Jobs are
// enabled on registration; the schedule starts firing once Start runs.
func (s *Service) RegisterJob(name string, schedule string, description string, handler func() error) error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job already registered: %s", name)
	}

	entry := &jobEntry{
		name:        name,
		schedule:    schedule,
		description: description,
		handler:     handler,
		enabled:     true,
	}

	cronID, err := s.cron.AddFunc(schedule, func() { s.runJob(name) })
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", name, err)
	}
	entry.cronID = cronID
	s.jobs[name] = entry

	s.logger.Info().
		Str("job", name).
		Str("schedule", schedule).
		Msg("Scheduled job registered")

	return nil
}

// runJob executes a registered job, skipping disabled jobs and jobs
// still running from a previous tick.
func (s *Service) runJob(name string) {
	s.jobMu.Lock()
	entry, ok := s.jobs[name]
	if !ok || !entry.enabled || entry.isRunning {
		s.jobMu.Unlock()
		return
	}
	entry.isRunning = true
	s.jobMu.Unlock()

	start := time.Now()
	err := entry.handler()

	s.jobMu.Lock()
	entry.isRunning = false
	entry.lastRun = &start
	if err != nil {
		entry.lastError = err.Error()
	} else {
		entry.lastError = ""
	}
	s.jobMu.Unlock()

	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("job", name).
			Dur("duration", time.Since(start)).
			Msg("Scheduled job failed")
		return
	}
	s.logger.Debug().
		Str("job", name).
		Dur("duration", time.Since(start)).
		Msg("Scheduled job completed")
}

// Start begins firing registered schedules
func (s *Service) Start() error {
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	s.cron.Start()
	s.running = true
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
	return nil
}

// Stop halts the scheduler, waiting for an in-flight job tick
func (s *Service) Stop() error {
	if !s.running {
		return nil
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// IsRunning reports whether the scheduler is active
func (s *Service) IsRunning() bool {
	return s.running
}

// EnableJob enables a disabled job
func (s *Service) EnableJob(name string) error {
	return s.setEnabled(name, true)
}

// DisableJob disables an enabled job
func (s *Service) DisableJob(name string) error {
	return s.setEnabled(name, false)
}

func (s *Service) setEnabled(name string, enabled bool) error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	entry, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("job not found: %s", name)
	}
	entry.enabled = enabled
	s.logger.Info().Str("job", name).Bool("enabled", enabled).Msg("Scheduled job toggled")
	return nil
}

// GetJobStatus returns the status of a specific job
func (s *Service) GetJobStatus(name string) (*interfaces.ScheduledJobStatus, error) {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	entry, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", name)
	}
	return s.statusFor(entry), nil
}

// GetAllJobStatuses returns all job statuses keyed by name
func (s *Service) GetAllJobStatuses() map[string]*interfaces.ScheduledJobStatus {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	statuses := make(map[string]*interfaces.ScheduledJobStatus, len(s.jobs))
	for name, entry := range s.jobs {
		statuses[name] = s.statusFor(entry)
	}
	return statuses
}

func (s *Service) statusFor(entry *jobEntry) *interfaces.ScheduledJobStatus {
	status := &interfaces.ScheduledJobStatus{
		Name:        entry.name,
		Enabled:     entry.enabled,
		Schedule:    entry.schedule,
		Description: entry.description,
		LastRun:     entry.lastRun,
		IsRunning:   entry.isRunning,
		LastError:   entry.lastError,
	}
	if s.running {
		next := s.cron.Entry(entry.cronID).Next
		if !next.IsZero() {
			status.NextRun = &next
		}
	}
	return status
}
