package badger

import (
	"context"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

func openTestDB(t *testing.T) *BadgerDB {
	t.Helper()

	options := badgerhold.DefaultOptions
	options.Dir = t.TempDir()
	options.ValueDir = options.Dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return &BadgerDB{store: store}
}

func TestJobDedupQuery(t *testing.T) {
	db := openTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()

	url := "https://auctions.example.com/lot/aj-12345678.html"
	base := time.Now().Add(-time.Hour)

	// Oldest: a failed attempt. Newest non-failed: completed.
	failed := &models.ExtractionJob{
		ID:         "job-failed",
		AuctionURL: url,
		Status:     models.JobStatusFailed,
		CreatedAt:  base,
	}
	completed := &models.ExtractionJob{
		ID:         "job-completed",
		AuctionURL: url,
		Status:     models.JobStatusCompleted,
		SheetID:    "sheet-1",
		CreatedAt:  base.Add(10 * time.Minute),
	}
	for _, j := range []*models.ExtractionJob{failed, completed} {
		if err := storage.SaveJob(ctx, j); err != nil {
			t.Fatalf("Failed to save job: %v", err)
		}
	}

	got, err := storage.GetLatestNonFailedJobByURL(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != "job-completed" {
		t.Fatalf("Expected job-completed, got %+v", got)
	}

	// A newer failed job must not shadow the completed one
	newerFailed := &models.ExtractionJob{
		ID:         "job-failed-2",
		AuctionURL: url,
		Status:     models.JobStatusFailed,
		CreatedAt:  base.Add(20 * time.Minute),
	}
	if err := storage.SaveJob(ctx, newerFailed); err != nil {
		t.Fatal(err)
	}
	got, err = storage.GetLatestNonFailedJobByURL(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != "job-completed" {
		t.Fatalf("Expected job-completed after newer failure, got %+v", got)
	}

	// Unknown URL returns nil, not an error
	got, err = storage.GetLatestNonFailedJobByURL(ctx, "https://auctions.example.com/other")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("Expected nil for unknown URL, got %+v", got)
	}
}

func TestRetriableJobsQuery(t *testing.T) {
	db := openTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()

	now := time.Now()
	cooled := &models.ExtractionJob{
		ID:         "job-cooled",
		AuctionURL: "https://auctions.example.com/a",
		Status:     models.JobStatusFailed,
		RetryCount: 1,
		CreatedAt:  now.Add(-3 * time.Hour),
		UpdatedAt:  now.Add(-2 * time.Hour),
	}
	tooYoung := &models.ExtractionJob{
		ID:         "job-young",
		AuctionURL: "https://auctions.example.com/b",
		Status:     models.JobStatusFailed,
		RetryCount: 1,
		CreatedAt:  now.Add(-30 * time.Minute),
		UpdatedAt:  now.Add(-10 * time.Minute),
	}
	exhausted := &models.ExtractionJob{
		ID:         "job-exhausted",
		AuctionURL: "https://auctions.example.com/c",
		Status:     models.JobStatusFailed,
		RetryCount: 3,
		CreatedAt:  now.Add(-3 * time.Hour),
		UpdatedAt:  now.Add(-2 * time.Hour),
	}
	// Old job, fresh failure: the cooldown gates on job age, so a
	// recent failure does not push an aged job out of the window.
	agedRecentFailure := &models.ExtractionJob{
		ID:         "job-aged",
		AuctionURL: "https://auctions.example.com/d",
		Status:     models.JobStatusFailed,
		RetryCount: 1,
		CreatedAt:  now.Add(-4 * time.Hour),
		UpdatedAt:  now.Add(-5 * time.Minute),
	}
	for _, j := range []*models.ExtractionJob{cooled, tooYoung, exhausted, agedRecentFailure} {
		if err := storage.SaveJob(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	got, err := storage.GetRetriableJobs(ctx, 3, now.Add(-time.Hour), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected job-aged and job-cooled, got %d jobs", len(got))
	}
	// Oldest creation first
	if got[0].ID != "job-aged" || got[1].ID != "job-cooled" {
		t.Fatalf("Expected [job-aged job-cooled], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestExpiredJobsQuery(t *testing.T) {
	db := openTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()

	now := time.Now()
	old := &models.ExtractionJob{
		ID:         "job-old",
		AuctionURL: "https://auctions.example.com/a",
		Status:     models.JobStatusCompleted,
		CreatedAt:  now.Add(-31 * 24 * time.Hour),
	}
	oldPending := &models.ExtractionJob{
		ID:         "job-old-pending",
		AuctionURL: "https://auctions.example.com/b",
		Status:     models.JobStatusPending,
		CreatedAt:  now.Add(-31 * 24 * time.Hour),
	}
	oldFailed := &models.ExtractionJob{
		ID:         "job-old-failed",
		AuctionURL: "https://auctions.example.com/c",
		Status:     models.JobStatusFailed,
		RetryCount: 3,
		CreatedAt:  now.Add(-40 * 24 * time.Hour),
	}
	fresh := &models.ExtractionJob{
		ID:         "job-fresh",
		AuctionURL: "https://auctions.example.com/d",
		Status:     models.JobStatusCompleted,
		CreatedAt:  now.Add(-24 * time.Hour),
	}
	for _, j := range []*models.ExtractionJob{old, oldPending, oldFailed, fresh} {
		if err := storage.SaveJob(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	got, err := storage.GetExpiredJobs(ctx, now.Add(-30*24*time.Hour), 50)
	if err != nil {
		t.Fatal(err)
	}
	// Only completed jobs expire: live jobs and failed jobs survive
	// regardless of age.
	if len(got) != 1 || got[0].ID != "job-old" {
		t.Fatalf("Expected only job-old, got %d jobs", len(got))
	}
}

func TestPendingByPriorityOrder(t *testing.T) {
	db := openTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()

	now := time.Now()
	jobs := []*models.ExtractionJob{
		{ID: "low-old", AuctionURL: "u1", Status: models.JobStatusPending, Priority: 1, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "high", AuctionURL: "u2", Status: models.JobStatusPending, Priority: 5, CreatedAt: now.Add(-time.Minute)},
		{ID: "low-new", AuctionURL: "u3", Status: models.JobStatusPending, Priority: 1, CreatedAt: now.Add(-time.Hour)},
		{ID: "done", AuctionURL: "u4", Status: models.JobStatusCompleted, Priority: 9, CreatedAt: now},
	}
	for _, j := range jobs {
		if err := storage.SaveJob(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	got, err := storage.GetPendingByPriority(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"high", "low-old", "low-new"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d jobs, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestCountByStatus(t *testing.T) {
	db := openTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()

	for i, status := range []models.JobStatus{
		models.JobStatusPending,
		models.JobStatusPending,
		models.JobStatusCompleted,
		models.JobStatusFailed,
	} {
		job := &models.ExtractionJob{
			ID:         string(rune('a' + i)),
			AuctionURL: "https://auctions.example.com/x",
			Status:     status,
			CreatedAt:  time.Now(),
		}
		if err := storage.SaveJob(ctx, job); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := storage.CountByStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[models.JobStatusPending] != 2 {
		t.Errorf("Expected 2 pending, got %d", counts[models.JobStatusPending])
	}
	if counts[models.JobStatusCompleted] != 1 || counts[models.JobStatusFailed] != 1 {
		t.Errorf("Unexpected counts: %+v", counts)
	}
	if counts[models.JobStatusProcessing] != 0 {
		t.Errorf("Expected 0 processing, got %d", counts[models.JobStatusProcessing])
	}
}
