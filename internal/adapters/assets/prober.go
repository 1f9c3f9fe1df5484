// Package assets checks and serves the background images.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // decoder
	_ "image/jpeg" // decoder
	_ "image/png"  // decoder
	"io/fs"
	"os"

	"github.com/okian/gradecard/internal/domain/background"
)

// Sentinel kinds for asset errors.
var (
	ErrInvalidPath = errors.New("invalid asset path")
	ErrEmptyImage  = errors.New("image has no pixels")
)

// Prober verifies that a background file exists and decodes as an image.
type Prober struct {
	fsys fs.FS
}

var _ background.AssetProber = (*Prober)(nil)

// NewProber probes files in fsys.
func NewProber(fsys fs.FS) *Prober {
	return &Prober{fsys: fsys}
}

// NewDirProber probes files under dir.
func NewDirProber(dir string) *Prober {
	return NewProber(os.DirFS(dir))
}

// FS returns the file system the prober reads from.
func (p *Prober) FS() fs.FS { return p.fsys }

// Probe reads only the image header.
func (p *Prober) Probe(ctx context.Context, e background.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !fs.ValidPath(e.File) || e.File == "." {
		return fmt.Errorf("%w: %q", ErrInvalidPath, e.File)
	}
	f, err := p.fsys.Open(e.File)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", e.File, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyImage, e.File)
	}
	return nil
}
