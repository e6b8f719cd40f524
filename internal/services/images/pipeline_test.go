package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/storage/badger"
	"github.com/ternarybob/aucsheet/internal/storage/blobs"
)

func newTestStorage(t *testing.T) interfaces.StorageManager {
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
	return storage
}

func TestProcessPageSurvivesPartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The third gallery image is broken; everything else serves
		if r.URL.Path == "/img/3.jpg" {
			http.Error(w, "gone", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes-" + r.URL.Path))
	}))
	defer server.Close()

	html := `<html><body>
		<img src="/img/1.jpg" alt="auction sheet">
		<img src="/img/2.jpg" alt="front photo">
		<img src="/img/3.jpg" alt="rear photo">
		<img src="/img/4.jpg" alt="interior photo">
		<img src="/img/5.jpg" alt="defect diagram">
	</body></html>`

	storage := newTestStorage(t)
	config := &common.ImagesConfig{
		MaxImageSize: 1024 * 1024,
		Timeout:      5 * time.Second,
		RateLimit:    time.Millisecond,
	}
	pipeline := NewPipeline(config, storage, arbor.NewLogger())

	stored, err := pipeline.ProcessPage(context.Background(), []byte(html), server.URL+"/lot/1.html", "sheet-1", "job-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if stored != 4 {
		t.Fatalf("Expected 4 stored images, got %d", stored)
	}

	images, err := storage.ImageStorage().GetImagesBySheet(context.Background(), "sheet-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 4 {
		t.Fatalf("Expected 4 image records, got %d", len(images))
	}
	for _, image := range images {
		if strings.HasSuffix(image.SourceURL, "/img/3.jpg") {
			t.Error("Failed download must not leave an image record")
		}
		if image.BlobRef == "" {
			t.Errorf("Image %s has no blob reference", image.ID)
		}
		if image.SizeBytes == 0 {
			t.Errorf("Image %s has no size", image.ID)
		}
		data, err := storage.BlobStore().Open(image.BlobRef)
		if err != nil {
			t.Fatalf("Blob for %s unreadable: %v", image.ID, err)
		}
		if len(data) == 0 {
			t.Errorf("Blob for %s is empty", image.ID)
		}
	}
	// Positions keep the page's document order despite the gap
	if images[0].Position != 0 || images[len(images)-1].Position != 4 {
		t.Errorf("Unexpected position range: %d..%d", images[0].Position, images[len(images)-1].Position)
	}
}

func TestProcessPageEmptyGallery(t *testing.T) {
	storage := newTestStorage(t)
	config := &common.ImagesConfig{RateLimit: time.Millisecond}
	pipeline := NewPipeline(config, storage, arbor.NewLogger())

	stored, err := pipeline.ProcessPage(context.Background(), []byte("<html><body>no images</body></html>"), "https://auctions.example.com/lot/2.html", "sheet-2", "job-2", nil)
	if err != nil {
		t.Fatal(err)
	}
	if stored != 0 {
		t.Fatalf("Expected 0 stored images, got %d", stored)
	}
}
