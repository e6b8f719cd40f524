package common

import (
	"github.com/google/uuid"
)

// NewJobID generates a unique extraction job ID with the "job_" prefix
func NewJobID() string {
	return "job_" + uuid.New().String()
}

// NewSheetID generates a unique auction sheet ID with the "sheet_" prefix
func NewSheetID() string {
	return "sheet_" + uuid.New().String()
}

// NewImageID generates a unique auction image ID with the "img_" prefix
func NewImageID() string {
	return "img_" + uuid.New().String()
}
