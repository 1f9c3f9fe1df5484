package smoketest

import "errors"

var (
	// ErrUnhealthy is returned when the health endpoint does not answer 200.
	ErrUnhealthy = errors.New("service is not healthy")
	// ErrEmptyDataset is returned when the dataset has no records to check.
	ErrEmptyDataset = errors.New("dataset has no records")
	// ErrChecksFailed is returned when at least one check failed.
	ErrChecksFailed = errors.New("smoke checks failed")
)
