package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/models"
	"github.com/ternarybob/aucsheet/internal/services/extractor"
	"github.com/ternarybob/aucsheet/internal/storage/badger"
	"github.com/ternarybob/aucsheet/internal/storage/blobs"
)

func newTestService(t *testing.T) (*Service, interfaces.StorageManager) {
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

	return NewService(storage, logger), storage
}

func TestCreateManualSheet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	data := &models.AuctionData{
		LotNumber: "55555",
		Make:      "Mazda",
		Model:     "CX-5",
	}
	sheet, err := svc.CreateManualSheet(ctx, data)
	if err != nil {
		t.Fatal(err)
	}
	if sheet.DataSource != models.DataSourceManualEntry {
		t.Errorf("Expected manual_entry, got %s", sheet.DataSource)
	}
	if sheet.QualityScore != 5 {
		t.Errorf("Manual entries score 5, got %d", sheet.QualityScore)
	}
	// Defaults applied through the shared validator
	if sheet.Currency != "JPY" {
		t.Errorf("Expected JPY default, got %s", sheet.Currency)
	}
}

func TestCreateManualSheetRejectsDuplicateLot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	data := &models.AuctionData{LotNumber: "55555", Make: "Mazda", Model: "CX-5"}
	if _, err := svc.CreateManualSheet(ctx, data); err != nil {
		t.Fatal(err)
	}

	dup := &models.AuctionData{LotNumber: "55555", Make: "Honda", Model: "Fit"}
	_, err := svc.CreateManualSheet(ctx, dup)
	if !errors.Is(err, ErrDuplicateLotNumber) {
		t.Fatalf("Expected ErrDuplicateLotNumber, got %v", err)
	}
}

func TestCreateManualSheetValidates(t *testing.T) {
	svc, _ := newTestService(t)

	data := &models.AuctionData{Make: "Mazda", Model: "CX-5"} // no lot
	_, err := svc.CreateManualSheet(context.Background(), data)

	var violation *extractor.SchemaViolation
	if !errors.As(err, &violation) {
		t.Fatalf("Expected SchemaViolation, got %v", err)
	}
}

func TestUpdateSheetChecksStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sheet, err := svc.CreateManualSheet(ctx, &models.AuctionData{LotNumber: "1", Make: "Toyota", Model: "Vitz"})
	if err != nil {
		t.Fatal(err)
	}

	bad := "auctioned"
	if _, err := svc.UpdateSheet(ctx, sheet.ID, &models.SheetUpdate{AuctionStatus: &bad}); err == nil {
		t.Error("Expected rejection of invalid status")
	}

	good := "sold"
	updated, err := svc.UpdateSheet(ctx, sheet.ID, &models.SheetUpdate{AuctionStatus: &good})
	if err != nil {
		t.Fatal(err)
	}
	if updated.AuctionStatus != "sold" {
		t.Errorf("Expected sold, got %s", updated.AuctionStatus)
	}

	if _, err := svc.UpdateSheet(ctx, "sheet_missing", &models.SheetUpdate{AuctionStatus: &good}); !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("Expected ErrSheetNotFound, got %v", err)
	}
}

func TestGetSheetImagesOrdered(t *testing.T) {
	svc, storage := newTestService(t)
	ctx := context.Background()

	sheet, err := svc.CreateManualSheet(ctx, &models.AuctionData{LotNumber: "9", Make: "Subaru", Model: "Impreza"})
	if err != nil {
		t.Fatal(err)
	}

	for i, pos := range []int{4, 0, 2} {
		image := &models.AuctionImage{
			ID:       common.NewImageID(),
			SheetID:  sheet.ID,
			Position: pos,
			JobID:    "job-x",
		}
		if err := storage.ImageStorage().SaveImage(ctx, image); err != nil {
			t.Fatalf("Image %d: %v", i, err)
		}
	}

	images, err := svc.GetSheetImages(ctx, sheet.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 3 {
		t.Fatalf("Expected 3 images, got %d", len(images))
	}
	for i := 1; i < len(images); i++ {
		if images[i-1].Position > images[i].Position {
			t.Error("Images must come back in document order")
		}
	}

	if _, err := svc.GetSheetImages(ctx, "sheet_missing"); !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("Expected ErrSheetNotFound, got %v", err)
	}
}
