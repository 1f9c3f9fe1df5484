package preference

import "errors"

// Sentinel kinds for preference storage.
var (
	ErrUnsupportedDriver = errors.New("unsupported preference driver")
	ErrEmptyKey          = errors.New("preference key must not be empty")
)
