// Package media resolves native image dimensions and materializes resized
// copies on disk. It talks to the filesystem and, depending on the resizer
// chosen, to an external ImageMagick process.
package media

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"

	"github.com/euforicio/sitemd/internal/scale"

	// Raster formats the measurer understands.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Measurer reports the native pixel size of an image file.
type Measurer interface {
	Measure(ctx context.Context, path string) (scale.Size, error)
}

// FileMeasurer reads dimensions straight from image file headers. The path
// from the directive is used literally; a missing or undecodable file is an
// error, never a defaulted size.
type FileMeasurer struct{}

// Measure implements Measurer.
func (FileMeasurer) Measure(_ context.Context, path string) (scale.Size, error) {
	f, err := os.Open(path) //nolint:gosec // directive paths are used literally by contract
	if err != nil {
		return scale.Size{}, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	if isSVG(path) {
		return measureSVG(path, f)
	}

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return scale.Size{}, fmt.Errorf("decode image %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return scale.Size{}, fmt.Errorf("image %s has invalid dimensions %dx%d", path, cfg.Width, cfg.Height)
	}
	return scale.Size{Width: cfg.Width, Height: cfg.Height}, nil
}

func measureSVG(path string, r io.Reader) (scale.Size, error) {
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return scale.Size{}, fmt.Errorf("parse svg %s: %w", path, err)
	}
	size := scale.Size{
		Width:  int(icon.ViewBox.W + 0.5),
		Height: int(icon.ViewBox.H + 0.5),
	}
	if size.Width <= 0 || size.Height <= 0 {
		return scale.Size{}, fmt.Errorf("svg %s has no usable intrinsic size", path)
	}
	return size, nil
}

func isSVG(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".svg")
}
