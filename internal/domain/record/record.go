// Package record contains the student grade record shared across layers.
package record

import (
	"fmt"
	"strings"
)

// StudentType tells whether a student sat both years or transferred in.
type StudentType string

const (
	// Regular students have scores for both years.
	Regular StudentType = "regular"
	// Transfer students joined in year two and have no year-one score.
	Transfer StudentType = "transfer"
)

// ParseStudentType accepts the canonical names and the labels used by the
// legacy dataset (完整 for regular, 转入 for transfer).
func ParseStudentType(s string) (StudentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "regular", "完整":
		return Regular, nil
	case "transfer", "转入":
		return Transfer, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStudentType, s)
	}
}

// Valid reports whether t is one of the known student types.
func (t StudentType) Valid() bool {
	return t == Regular || t == Transfer
}

// Record is one student's ranking row.
type Record struct {
	ID              string
	Rank            int
	WeightedAverage float64
	YearOneScore    *float64 // nil exactly when StudentType is Transfer
	YearTwoScore    float64
	StudentType     StudentType
}

// HasYearOne reports whether the record carries a year-one score.
func (r Record) HasYearOne() bool { return r.YearOneScore != nil }

// Validate checks the record's own invariants. Rank bounds depend on the
// cohort and are checked by the store.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	case r.Rank < 1:
		return fmt.Errorf("%w: %s: rank must be positive, got %d", ErrInvalidRecord, r.ID, r.Rank)
	case !r.StudentType.Valid():
		return fmt.Errorf("%w: %s: unknown student type %q", ErrInvalidRecord, r.ID, r.StudentType)
	case r.StudentType == Regular && r.YearOneScore == nil:
		return fmt.Errorf("%w: %s: regular student without year-one score", ErrInvalidRecord, r.ID)
	case r.StudentType == Transfer && r.YearOneScore != nil:
		return fmt.Errorf("%w: %s: transfer student with year-one score", ErrInvalidRecord, r.ID)
	}
	return nil
}

// Score returns a pointer to v, for building records with a year-one score.
func Score(v float64) *float64 { return &v }
