package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/models"
	"github.com/ternarybob/aucsheet/internal/services/fetcher"
	"github.com/ternarybob/aucsheet/internal/storage/badger"
	"github.com/ternarybob/aucsheet/internal/storage/blobs"
)

// stubFetcher serves canned pages per URL.
type stubFetcher struct {
	pages map[string][]byte
	err   error
	calls int
}

func (f *stubFetcher) FetchPage(ctx context.Context, url string, creds *models.Credentials, userAgent string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return []byte("<html><body>Lot page</body></html>"), nil
}

// stubEngine returns fixed auction data.
type stubEngine struct {
	data *models.AuctionData
	err  error
}

func (e *stubEngine) Extract(ctx context.Context, pageHTML []byte, sourceURL string) (*models.AuctionData, string, error) {
	if e.err != nil {
		return nil, "raw failure", e.err
	}
	raw, _ := json.Marshal(e.data)
	return e.data, string(raw), nil
}

// stubPipeline records invocations.
type stubPipeline struct {
	calls   int
	sheetID string
}

func (p *stubPipeline) ProcessPage(ctx context.Context, pageHTML []byte, pageURL string, sheetID, jobID string, creds *models.Credentials) (int, error) {
	p.calls++
	p.sheetID = sheetID
	return 0, nil
}

type testHarness struct {
	service  *Service
	storage  interfaces.StorageManager
	pipeline *stubPipeline
	fetcher  *stubFetcher
	engine   *stubEngine
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	logger := arbor.NewLogger()

	blobStore, err := blobs.NewFileStore(t.TempDir(), logger)
	if err != nil {
		t.Fatal(err)
	}
	storage, err := badger.NewManager(logger, &common.BadgerConfig{Path: t.TempDir()}, blobStore)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { storage.Close() })

	// Seed the default credential reference
	config := common.NewDefaultConfig()
	creds, _ := json.Marshal(models.Credentials{Username: "user", Password: "pass"})
	if err := storage.KeyValueStorage().Set(context.Background(), config.Extraction.DefaultCredentialRef, string(creds), "test credentials"); err != nil {
		t.Fatal(err)
	}

	h := &testHarness{
		storage:  storage,
		pipeline: &stubPipeline{},
		fetcher:  &stubFetcher{},
		engine: &stubEngine{data: &models.AuctionData{
			LotNumber: "12345",
			Make:      "Toyota",
			Model:     "Corolla",
		}},
	}
	h.service = NewService(storage, h.fetcher, h.engine, h.pipeline, config, logger)
	h.service.asyncDispatch = false // dispatch explicitly in tests
	return h
}

func TestScheduleAndRunExtraction(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	url := "https://auctions.example.com/aj-12345.html"

	result, err := h.service.ScheduleExtraction(ctx, url, 0, "tester")
	if err != nil {
		t.Fatal(err)
	}
	if result.AlreadyExists || result.InProgress {
		t.Fatalf("Fresh submission must create a job: %+v", result)
	}
	if result.Job.CredentialRef == "" {
		t.Error("Job must carry a credential reference")
	}

	if err := h.service.runExtraction(ctx, result.Job.ID); err != nil {
		t.Fatal(err)
	}

	job, err := h.service.GetJob(ctx, result.Job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != models.JobStatusCompleted {
		t.Fatalf("Expected completed, got %s (%s)", job.Status, job.ErrorMessage)
	}
	if job.SheetID == "" || job.ExtractedAt == nil {
		t.Error("Completed job must link its sheet and timestamp")
	}
	if job.PageContent == "" || job.AIResponse == "" {
		t.Error("Debug payloads must be persisted")
	}

	sheet, err := h.storage.SheetStorage().GetSheet(ctx, job.SheetID)
	if err != nil {
		t.Fatal(err)
	}
	if sheet.LotNumber != "12345" || sheet.DataSource != models.DataSourceAIExtraction {
		t.Errorf("Unexpected sheet: %+v", sheet)
	}
	if sheet.QualityScore != 8 {
		t.Errorf("AI extractions score 8, got %d", sheet.QualityScore)
	}
	if sheet.SourceURL != url {
		t.Errorf("Sheet must record its source URL, got %s", sheet.SourceURL)
	}

	if h.pipeline.calls != 1 || h.pipeline.sheetID != sheet.ID {
		t.Error("Image pipeline must run once for the new sheet")
	}
}

func TestScheduleIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	url := "https://auctions.example.com/aj-777.html"

	first, err := h.service.ScheduleExtraction(ctx, url, 0, "")
	if err != nil {
		t.Fatal(err)
	}

	// While pending the second submission reports in-progress
	second, err := h.service.ScheduleExtraction(ctx, url, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if !second.InProgress || second.Job.ID != first.Job.ID {
		t.Fatalf("Expected in-progress on live job, got %+v", second)
	}

	// Once completed it reports the existing sheet
	if err := h.service.runExtraction(ctx, first.Job.ID); err != nil {
		t.Fatal(err)
	}
	third, err := h.service.ScheduleExtraction(ctx, url, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if !third.AlreadyExists || third.SheetID == "" {
		t.Fatalf("Expected already-exists with sheet, got %+v", third)
	}

	// A failed history does not block resubmission
	job := third.Job
	job.Status = models.JobStatusFailed
	if err := h.storage.JobStorage().SaveJob(ctx, job); err != nil {
		t.Fatal(err)
	}
	fourth, err := h.service.ScheduleExtraction(ctx, url, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if fourth.AlreadyExists || fourth.InProgress {
		t.Fatalf("Failed history must allow a new job, got %+v", fourth)
	}
	if fourth.Job.ID == job.ID {
		t.Error("Expected a fresh job after failure")
	}
}

func TestRunExtractionFailsOnLoginWall(t *testing.T) {
	h := newHarness(t)
	h.fetcher.err = fetcher.ErrSessionExpired
	ctx := context.Background()

	result, err := h.service.ScheduleExtraction(ctx, "https://auctions.example.com/aj-1.html", 0, "")
	if err != nil {
		t.Fatal(err)
	}
	runErr := h.service.runExtraction(ctx, result.Job.ID)
	if !errors.Is(runErr, fetcher.ErrSessionExpired) {
		t.Fatalf("Expected session expired, got %v", runErr)
	}

	job, _ := h.service.GetJob(ctx, result.Job.ID)
	if job.Status != models.JobStatusFailed {
		t.Fatalf("Expected failed, got %s", job.Status)
	}
	if job.ErrorMessage == "" {
		t.Error("Failure reason must be recorded")
	}
	if h.pipeline.calls != 0 {
		t.Error("Image pipeline must not run for failed jobs")
	}
}

func TestRunExtractionFailsOnMissingCredentials(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	result, err := h.service.ScheduleExtraction(ctx, "https://auctions.example.com/aj-1.html", 0, "")
	if err != nil {
		t.Fatal(err)
	}
	// Point the job at a reference nobody stored
	result.Job.CredentialRef = "rotated_away"
	if err := h.storage.JobStorage().SaveJob(ctx, result.Job); err != nil {
		t.Fatal(err)
	}

	runErr := h.service.runExtraction(ctx, result.Job.ID)
	if !errors.Is(runErr, ErrCredentialsMissing) {
		t.Fatalf("Expected missing credentials, got %v", runErr)
	}
	if h.fetcher.calls != 0 {
		t.Error("Fetch must not run without credentials")
	}
}

func TestRetryJobStateRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.service.RetryJob(ctx, "job_missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}

	result, err := h.service.ScheduleExtraction(ctx, "https://auctions.example.com/aj-1.html", 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.service.RetryJob(ctx, result.Job.ID); !errors.Is(err, ErrInvalidJobState) {
		t.Errorf("Pending job must not be retriable, got %v", err)
	}

	result.Job.Status = models.JobStatusFailed
	if err := h.storage.JobStorage().SaveJob(ctx, result.Job); err != nil {
		t.Fatal(err)
	}
	retried, err := h.service.RetryJob(ctx, result.Job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if retried.Status != models.JobStatusPending || retried.RetryCount != 1 {
		t.Errorf("Expected pending with retry count 1, got %s/%d", retried.Status, retried.RetryCount)
	}
}

func TestRetrySweepHonorsCeilingAndCooldown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := time.Now()

	save := func(id string, retries int, createdAt, updatedAt time.Time) {
		job := &models.ExtractionJob{
			ID:         id,
			AuctionURL: "https://auctions.example.com/" + id,
			Status:     models.JobStatusFailed,
			RetryCount: retries,
			CreatedAt:  createdAt,
			UpdatedAt:  updatedAt,
		}
		if err := h.storage.JobStorage().SaveJob(ctx, job); err != nil {
			t.Fatal(err)
		}
	}
	save("job-cooled", 1, now.Add(-4*time.Hour), now.Add(-2*time.Hour))
	// Created hours ago, failed minutes ago: the cooldown counts from
	// creation, so a fresh failure on an old job is still eligible.
	save("job-fresh-failure", 1, now.Add(-4*time.Hour), now.Add(-5*time.Minute))
	save("job-young", 1, now.Add(-30*time.Minute), now.Add(-10*time.Minute))
	save("job-spent", 3, now.Add(-4*time.Hour), now.Add(-2*time.Hour))

	requeued, err := h.service.RetrySweep(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if requeued != 2 {
		t.Fatalf("Expected 2 requeued, got %d", requeued)
	}

	for _, id := range []string{"job-cooled", "job-fresh-failure"} {
		job, _ := h.service.GetJob(ctx, id)
		if job.Status != models.JobStatusPending || job.RetryCount != 2 {
			t.Errorf("%s: expected pending with retry count 2, got %s/%d", id, job.Status, job.RetryCount)
		}
	}
	for _, id := range []string{"job-young", "job-spent"} {
		job, _ := h.service.GetJob(ctx, id)
		if job.Status != models.JobStatusFailed {
			t.Errorf("%s must stay failed, got %s", id, job.Status)
		}
	}
}

func TestCleanupSweepKeepsSheets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := time.Now()

	sheet := &models.AuctionSheet{
		ID:          "sheet-keep",
		AuctionData: models.AuctionData{LotNumber: "1", Make: "Toyota", Model: "Corolla"},
		DataSource:  models.DataSourceAIExtraction,
		CreatedAt:   now.Add(-40 * 24 * time.Hour),
	}
	if err := h.storage.SheetStorage().SaveSheet(ctx, sheet); err != nil {
		t.Fatal(err)
	}
	oldJob := &models.ExtractionJob{
		ID:         "job-old",
		AuctionURL: "https://auctions.example.com/a",
		Status:     models.JobStatusCompleted,
		SheetID:    sheet.ID,
		CreatedAt:  now.Add(-40 * 24 * time.Hour),
	}
	freshJob := &models.ExtractionJob{
		ID:         "job-fresh",
		AuctionURL: "https://auctions.example.com/b",
		Status:     models.JobStatusCompleted,
		CreatedAt:  now.Add(-24 * time.Hour),
	}
	oldFailedJob := &models.ExtractionJob{
		ID:           "job-old-failed",
		AuctionURL:   "https://auctions.example.com/c",
		Status:       models.JobStatusFailed,
		RetryCount:   3,
		ErrorMessage: "authentication failed",
		CreatedAt:    now.Add(-40 * 24 * time.Hour),
	}
	for _, j := range []*models.ExtractionJob{oldJob, freshJob, oldFailedJob} {
		if err := h.storage.JobStorage().SaveJob(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := h.service.CleanupSweep(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Fatalf("Expected 1 deleted, got %d", deleted)
	}

	if job, _ := h.storage.JobStorage().GetJob(ctx, "job-old"); job != nil {
		t.Error("Expired job must be deleted")
	}
	if job, _ := h.storage.JobStorage().GetJob(ctx, "job-fresh"); job == nil {
		t.Error("Jobs inside the retention window must survive")
	}
	// Failed jobs wait for manual intervention, no matter how old
	if job, _ := h.storage.JobStorage().GetJob(ctx, "job-old-failed"); job == nil {
		t.Error("Failed jobs must never be auto-deleted")
	}
	kept, err := h.storage.SheetStorage().GetSheet(ctx, sheet.ID)
	if err != nil {
		t.Fatal(err)
	}
	if kept == nil {
		t.Error("Cleanup must never delete sheets")
	}
}

func TestDrainQueuePriorityOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := time.Now()

	save := func(id string, priority int, age time.Duration) {
		job := &models.ExtractionJob{
			ID:            id,
			AuctionURL:    "https://auctions.example.com/" + id,
			Status:        models.JobStatusPending,
			Priority:      priority,
			CredentialRef: h.service.config.Extraction.DefaultCredentialRef,
			CreatedAt:     now.Add(-age),
			UpdatedAt:     now.Add(-age),
		}
		if err := h.storage.JobStorage().SaveJob(ctx, job); err != nil {
			t.Fatal(err)
		}
	}
	save("job-low-old", 1, 3*time.Hour)
	save("job-high", 9, time.Minute)
	save("job-low-new", 1, time.Hour)

	dispatched, err := h.service.DrainQueue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if dispatched != 3 {
		t.Fatalf("Expected 3 dispatched, got %d", dispatched)
	}

	summaries, err := h.service.ListJobs(ctx, models.JobStatusCompleted, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 3 {
		t.Fatalf("Expected 3 completed, got %d", len(summaries))
	}
	// Summaries join the sheet's headline fields
	for _, summary := range summaries {
		if summary.LotNumber == "" || summary.Make == "" {
			t.Errorf("Summary missing sheet fields: %+v", summary)
		}
	}
}
