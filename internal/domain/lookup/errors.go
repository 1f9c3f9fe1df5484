package lookup

import (
	"errors"
	"fmt"
)

// Sentinel kinds for lookup errors.
var (
	ErrValidation = errors.New("invalid student id")
	ErrNotFound   = errors.New("student not found")
)

// Reason names the validation rule an input failed.
type Reason string

const (
	ReasonEmpty     Reason = "empty"
	ReasonTooShort  Reason = "too_short"
	ReasonTooLong   Reason = "too_long"
	ReasonBadFormat Reason = "bad_format"
)

// ValidationError reports why an identifier was rejected before lookup.
type ValidationError struct {
	Reason Reason
	Input  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
}

// Unwrap lets errors.Is(err, ErrValidation) match any reason.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// ReasonOf returns the validation reason carried by err, if any.
func ReasonOf(err error) (Reason, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason, true
	}
	return "", false
}
