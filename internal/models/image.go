package models

import "time"

// AuctionImage is one image harvested from an auction page, linked to
// the sheet its job produced. BlobRef points into the blob store; the
// original page URL is kept for re-fetching and debugging.
type AuctionImage struct {
	ID        string    `json:"id" badgerhold:"key"`
	SheetID   string    `json:"sheet_id" badgerholdIndex:"SheetID"`
	JobID     string    `json:"job_id"`
	SourceURL string    `json:"source_url"`
	Filename  string    `json:"filename"`
	BlobRef   string    `json:"blob_ref"`
	ImageType ImageType `json:"image_type"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	// Position is the image's document order on the page, starting at
	// zero. Lets auction sheet scans sort ahead of gallery photos.
	Position  int       `json:"position"`
	AltText   string    `json:"alt_text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
