// Package lookup validates student identifiers and resolves them against a
// read-only record store.
package lookup

import (
	"strings"
	"unicode/utf8"

	"github.com/okian/gradecard/internal/domain/record"
)

// DefaultIDLength is the length of a student identifier.
const DefaultIDLength = 14

// Reader is the read side of a record store.
type Reader interface {
	Get(id string) (record.Record, bool)
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithIDLength sets the exact identifier length accepted by Find.
func WithIDLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.idLength = n
		}
	}
}

// Service resolves identifiers to records. It holds no mutable state, so a
// single Service can be shared by concurrent callers.
type Service struct {
	store    Reader
	idLength int
}

// New creates a lookup Service over store.
func New(store Reader, opts ...Option) *Service {
	s := &Service{
		store:    store,
		idLength: DefaultIDLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IDLength returns the identifier length enforced by Find.
func (s *Service) IDLength() int { return s.idLength }

// Find validates raw and returns the stored record.
//
// Errors are *ValidationError for malformed input (the store is not touched)
// and ErrNotFound for a well-formed id that has no record.
func (s *Service) Find(raw string) (record.Record, error) {
	id, err := s.Validate(raw)
	if err != nil {
		return record.Record{}, err
	}
	rec, ok := s.store.Get(id)
	if !ok {
		return record.Record{}, ErrNotFound
	}
	return rec, nil
}

// Validate trims raw and applies the identifier checks in order: empty,
// too short, non-digit, too long. Length counts characters, not bytes. It
// returns the trimmed id.
func (s *Service) Validate(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(id)
	switch {
	case id == "":
		return "", &ValidationError{Reason: ReasonEmpty, Input: raw}
	case n < s.idLength:
		return "", &ValidationError{Reason: ReasonTooShort, Input: raw}
	case !allDigits(id):
		return "", &ValidationError{Reason: ReasonBadFormat, Input: raw}
	case n > s.idLength:
		return "", &ValidationError{Reason: ReasonTooLong, Input: raw}
	}
	return id, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
