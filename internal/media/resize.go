package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// Resizer produces a resized copy of an image file at dest. The geometry
// string follows ImageMagick conventions: "50x20" fits within both bounds,
// "50" pins the width, "x20" pins the height.
type Resizer interface {
	Resize(ctx context.Context, src, geometry, dest string) error
}

// MagickResizer shells out to ImageMagick for resizing. It handles every
// format the installed tool does, including vector sources.
type MagickResizer struct {
	// Tool overrides the binary name. When empty, "magick" is used if it is
	// on PATH, falling back to the legacy "convert".
	Tool string
}

// Resize implements Resizer.
func (r MagickResizer) Resize(ctx context.Context, src, geometry, dest string) error {
	tool := r.Tool
	if tool == "" {
		tool = "magick"
		if _, err := exec.LookPath(tool); err != nil {
			tool = "convert"
		}
	}

	cmd := exec.CommandContext(ctx, tool, src, "-resize", geometry, dest) //nolint:gosec // args are paths and a derived geometry
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s -resize %s %s: %w: %s", tool, geometry, src, err, bytes.TrimSpace(output))
	}
	return nil
}

// NativeResizer resizes in process with the imaging library. It covers the
// common raster formats; vector sources need MagickResizer.
type NativeResizer struct {
	// Filter selects the resampling kernel. Zero value means Lanczos.
	Filter imaging.ResampleFilter
}

// Resize implements Resizer.
func (r NativeResizer) Resize(_ context.Context, src, geometry, dest string) error {
	if isSVG(src) {
		return fmt.Errorf("resize %s: vector sources require the external resize tool", src)
	}

	width, height, err := parseGeometry(geometry)
	if err != nil {
		return fmt.Errorf("resize %s: %w", src, err)
	}

	img, err := imaging.Open(src)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}

	filter := r.Filter
	if filter.Kernel == nil {
		filter = imaging.Lanczos
	}

	var out *image.NRGBA
	if width > 0 && height > 0 {
		// Fit within both bounds, matching ImageMagick's default geometry
		// behavior rather than distorting to the exact pair.
		out = imaging.Fit(img, width, height, filter)
	} else {
		out = imaging.Resize(img, width, height, filter)
	}

	if err := imaging.Save(out, dest); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

func parseGeometry(geometry string) (width, height int, err error) {
	rawW, rawH, hasX := strings.Cut(geometry, "x")
	if rawW != "" {
		if width, err = strconv.Atoi(rawW); err != nil {
			return 0, 0, fmt.Errorf("bad geometry %q: %w", geometry, err)
		}
	}
	if hasX && rawH != "" {
		if height, err = strconv.Atoi(rawH); err != nil {
			return 0, 0, fmt.Errorf("bad geometry %q: %w", geometry, err)
		}
	}
	if width <= 0 && height <= 0 {
		return 0, 0, fmt.Errorf("bad geometry %q: no positive dimension", geometry)
	}
	return width, height, nil
}
