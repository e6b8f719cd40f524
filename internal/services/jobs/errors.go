package jobs

import "errors"

var (
	// ErrJobNotFound is returned when an operation names a job that
	// does not exist.
	ErrJobNotFound = errors.New("extraction job not found")

	// ErrInvalidJobState is returned when an operation is not legal
	// for the job's current status, such as retrying a completed job.
	ErrInvalidJobState = errors.New("operation not valid for job state")

	// ErrCredentialsMissing is returned when a job's credential
	// reference resolves to nothing in the key/value store.
	ErrCredentialsMissing = errors.New("credential reference not found")
)
