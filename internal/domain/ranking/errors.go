package ranking

import (
	"errors"
	"fmt"
)

// Sentinel kinds for ranking errors.
var (
	ErrInvalidCredits = errors.New("credits must be positive")
	ErrDuplicateID    = errors.New("duplicate student id")
	ErrSheet          = errors.New("invalid score sheet")
)

// DuplicateError reports an id listed twice in one sheet.
type DuplicateError struct {
	ID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateID, e.ID)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateID }
