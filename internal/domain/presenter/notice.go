package presenter

import (
	"errors"
	"fmt"

	"github.com/okian/gradecard/internal/domain/background"
	"github.com/okian/gradecard/internal/domain/lookup"
	"github.com/okian/gradecard/internal/domain/record"
)

// Code identifies a notice kind; it is stable across locales.
type Code string

const (
	CodeEmpty                 Code = "empty"
	CodeTooShort              Code = "too_short"
	CodeTooLong               Code = "too_long"
	CodeBadFormat             Code = "bad_format"
	CodeNotFound              Code = "not_found"
	CodeDatasetUnavailable    Code = "dataset_unavailable"
	CodeBackgroundUnavailable Code = "background_unavailable"
	CodeBackgroundBusy        Code = "background_busy"
	CodeBackgroundUnknown     Code = "background_unknown"
	CodeInternal              Code = "internal_error"
)

// Severity of a notice.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notice is a user-visible message for an error outcome. Non-fatal notices
// dismiss themselves after DismissAfterMS; fatal ones stay.
type Notice struct {
	Code           Code     `json:"code"`
	Message        string   `json:"message"`
	Severity       Severity `json:"severity"`
	Fatal          bool     `json:"fatal,omitempty"`
	DismissAfterMS int      `json:"dismiss_after_ms,omitempty"`
}

// Notice maps err to a notice in locale l.
func (p *Presenter) Notice(err error, l Locale) Notice {
	l = p.resolve(l)
	code := CodeOf(err)
	n := Notice{
		Code:           code,
		Message:        noticeCatalog[l][code],
		Severity:       SeverityWarning,
		DismissAfterMS: p.dismissMS,
	}

	switch code {
	case CodeDatasetUnavailable:
		n.Severity = SeverityError
		n.Fatal = true
		n.DismissAfterMS = 0
	case CodeInternal:
		n.Severity = SeverityError
	case CodeBackgroundUnavailable:
		var ae *background.AssetError
		name := ""
		if errors.As(err, &ae) {
			name = ae.Entry.Name
		}
		n.Message = fmt.Sprintf(n.Message, name)
	}
	return n
}

// CodeOf classifies err into a notice code.
func CodeOf(err error) Code {
	if reason, ok := lookup.ReasonOf(err); ok {
		switch reason {
		case lookup.ReasonEmpty:
			return CodeEmpty
		case lookup.ReasonTooShort:
			return CodeTooShort
		case lookup.ReasonTooLong:
			return CodeTooLong
		case lookup.ReasonBadFormat:
			return CodeBadFormat
		}
	}
	switch {
	case errors.Is(err, lookup.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, record.ErrLoad):
		return CodeDatasetUnavailable
	case errors.Is(err, background.ErrAssetUnavailable):
		return CodeBackgroundUnavailable
	case errors.Is(err, background.ErrBusy):
		return CodeBackgroundBusy
	case errors.Is(err, background.ErrUnknownEntry):
		return CodeBackgroundUnknown
	default:
		return CodeInternal
	}
}
