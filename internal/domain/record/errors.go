package record

import "errors"

// Sentinel kinds for record errors.
var (
	ErrInvalidRecord      = errors.New("invalid record")
	ErrUnknownStudentType = errors.New("unknown student type")
)

// ErrLoad marks any failure to load the record dataset. Store
// implementations wrap it so callers outside the adapter layer can match it.
var ErrLoad = errors.New("dataset load failed")
