package repository

import (
	"errors"
	"fmt"

	"github.com/okian/gradecard/internal/domain/record"
)

// Sentinel kinds for dataset errors.
var (
	// ErrLoad is matched by every *LoadError.
	ErrLoad = record.ErrLoad

	ErrIDMismatch     = errors.New("record id does not match its key")
	ErrInvalidID      = errors.New("malformed student id")
	ErrMissingField   = errors.New("missing field")
	ErrRankOutOfRange = errors.New("rank outside cohort")
	ErrHTTPStatus     = errors.New("unexpected http status")
	ErrUnknownFormat  = errors.New("unknown dataset format")
)

// LoadError reports why the dataset could not be loaded. It unwraps to both
// ErrLoad and the underlying cause.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrLoad, e.Err}
}
