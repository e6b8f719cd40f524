package models

import (
	"time"
)

// JobStatus represents the state of an extraction job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// ExtractionJob tracks one attempt to extract structured data from one
// auction-sheet URL. The URL is the natural key: the scheduler keeps at
// most one live (pending or processing) job per URL via dedup on submit.
//
// Lifecycle: pending -> processing -> {completed, failed}. A failed job
// can be promoted back to pending by a retry (manual or sweep), which
// increments RetryCount and clears ErrorMessage. Completed jobs older
// than the retention horizon are purged by the cleanup sweep; jobs in
// any other state are never auto-deleted.
type ExtractionJob struct {
	ID         string    `json:"id" badgerhold:"key"`
	AuctionURL string    `json:"auction_url" badgerholdIndex:"AuctionURL"`
	Status     JobStatus `json:"status" badgerholdIndex:"Status"`
	// Priority orders queue draining, higher first. Default 1.
	Priority   int    `json:"priority"`
	RetryCount int    `json:"retry_count"`
	// ErrorMessage is a concise, user-facing description of why the job
	// failed. Only populated when status is 'failed'.
	ErrorMessage string `json:"error_message,omitempty"`
	// SheetID links the extracted auction sheet. Set if and only if
	// status is 'completed'.
	SheetID     string     `json:"sheet_id,omitempty"`
	RequestedBy string     `json:"requested_by,omitempty"`
	UserAgent   string     `json:"user_agent,omitempty"`
	// CredentialRef names the KV entry whose credentials were used for
	// this job. The secret itself is never stored on the job.
	CredentialRef string     `json:"credential_ref,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ExtractedAt   *time.Time `json:"extracted_at,omitempty"`

	// Debug payloads for operator diagnosis only. Nothing in the job
	// lifecycle reads them back.
	PageContent string `json:"page_content,omitempty"`
	AIResponse  string `json:"ai_response,omitempty"`
}

// IsLive reports whether the job still occupies the single-flight slot
// for its URL.
func (j *ExtractionJob) IsLive() bool {
	return j.Status == JobStatusPending || j.Status == JobStatusProcessing
}

// IsTerminal reports whether the job reached a terminal state.
func (j *ExtractionJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
