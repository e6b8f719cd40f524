package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/handlers"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/services/extractor"
	"github.com/ternarybob/aucsheet/internal/services/fetcher"
	"github.com/ternarybob/aucsheet/internal/services/images"
	jobsvc "github.com/ternarybob/aucsheet/internal/services/jobs"
	"github.com/ternarybob/aucsheet/internal/services/llm"
	"github.com/ternarybob/aucsheet/internal/services/scheduler"
	"github.com/ternarybob/aucsheet/internal/services/sheets"
	"github.com/ternarybob/aucsheet/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Extraction services
	LLMProvider      interfaces.LLMProvider
	Fetcher          interfaces.PageFetcher
	Engine           interfaces.ExtractionEngine
	ImagePipeline    interfaces.ImagePipeline
	JobService       *jobsvc.Service
	SheetService     *sheets.Service
	SchedulerService interfaces.SchedulerService

	// HTTP handlers
	ExtractionHandler *handlers.ExtractionHandler
	SheetHandler      *handlers.SheetHandler
	ImageHandler      *handlers.ImageHandler
	CredentialHandler *handlers.CredentialHandler
	SchedulerHandler  *handlers.SchedulerHandler
	APIHandler        *handlers.APIHandler
}

// New creates a new application with all services wired up
func New(ctx context.Context, config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	// Storage
	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.StorageManager = storageManager

	// LLM provider (unconfigured providers fall back to mock extraction)
	provider, err := llm.NewProvider(ctx, config, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	a.LLMProvider = provider

	if !provider.IsConfigured() {
		logger.Warn().
			Str("provider", provider.Name()).
			Msg("LLM provider has no API key, extraction will use synthetic data")
	}

	// Extraction pipeline
	a.Fetcher = fetcher.NewFetcher(&config.Fetcher, logger)
	a.Engine = extractor.NewEngine(provider, &config.Extraction, logger)
	a.ImagePipeline = images.NewPipeline(&config.Images, storageManager, logger)

	// Domain services
	a.JobService = jobsvc.NewService(storageManager, a.Fetcher, a.Engine, a.ImagePipeline, config, logger)
	a.SheetService = sheets.NewService(storageManager, logger)
	a.SchedulerService = scheduler.NewService(logger)

	if err := a.registerSweeps(); err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to register scheduled sweeps: %w", err)
	}

	// Handlers
	a.ExtractionHandler = handlers.NewExtractionHandler(a.JobService, logger)
	a.SheetHandler = handlers.NewSheetHandler(a.SheetService, logger)
	a.ImageHandler = handlers.NewImageHandler(storageManager, logger)
	a.CredentialHandler = handlers.NewCredentialHandler(storageManager, logger)
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.SchedulerService, a.JobService, logger)
	a.APIHandler = handlers.NewAPIHandler(storageManager, logger)

	if config.Scheduler.Enabled {
		if err := a.SchedulerService.Start(); err != nil {
			storageManager.Close()
			return nil, fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	logger.Info().Msg("Application initialized")
	return a, nil
}

// registerSweeps wires the maintenance sweeps into the scheduler
func (a *App) registerSweeps() error {
	sweeps := []struct {
		name        string
		schedule    string
		description string
		handler     func() error
	}{
		{
			name:        "retry-sweep",
			schedule:    a.Config.Scheduler.RetrySchedule,
			description: "Requeue failed extraction jobs under the retry ceiling",
			handler: func() error {
				count, err := a.JobService.RetrySweep(context.Background())
				if count > 0 {
					a.Logger.Info().Int("requeued", count).Msg("Retry sweep completed")
				}
				return err
			},
		},
		{
			name:        "cleanup-sweep",
			schedule:    a.Config.Scheduler.CleanupSchedule,
			description: "Delete terminal jobs past the retention window",
			handler: func() error {
				count, err := a.JobService.CleanupSweep(context.Background())
				if count > 0 {
					a.Logger.Info().Int("deleted", count).Msg("Cleanup sweep completed")
				}
				return err
			},
		},
		{
			name:        "drain-sweep",
			schedule:    a.Config.Scheduler.DrainSchedule,
			description: "Process pending jobs in priority order",
			handler: func() error {
				_, err := a.JobService.DrainQueue(context.Background())
				return err
			},
		},
	}

	for _, sweep := range sweeps {
		if err := a.SchedulerService.RegisterJob(sweep.name, sweep.schedule, sweep.description, sweep.handler); err != nil {
			return fmt.Errorf("failed to register %s: %w", sweep.name, err)
		}
	}
	return nil
}

// Close shuts down all application components
func (a *App) Close() error {
	if a.SchedulerService != nil && a.SchedulerService.IsRunning() {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Scheduler stop failed")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
