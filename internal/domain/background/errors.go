package background

import (
	"errors"
	"fmt"
)

// Sentinel kinds for background errors.
var (
	ErrBusy             = errors.New("background change already in progress")
	ErrAssetUnavailable = errors.New("background asset unavailable")
	ErrUnknownEntry     = errors.New("unknown background entry")
	ErrNoEntries        = errors.New("no background entries configured")
)

// AssetError reports that an entry's image could not be loaded.
type AssetError struct {
	Entry Entry
	Err   error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrAssetUnavailable, e.Entry.File, e.Err)
}

// Unwrap exposes both ErrAssetUnavailable and the underlying cause.
func (e *AssetError) Unwrap() []error { return []error{ErrAssetUnavailable, e.Err} }
