// Package scale computes aspect-ratio-preserving display sizes for images.
package scale

import (
	"errors"
	"fmt"
	"math"
)

// Size is a pixel width/height pair.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Kind discriminates how much of a target size a directive spelled out.
type Kind int

// Request kinds, from nothing requested to both axes pinned.
const (
	KindUnknown Kind = iota
	KindWidth
	KindHeight
	KindBoth
)

// ErrUnknownRequest is returned when an unresolved request reaches a stage
// that needs concrete dimensions. The pipeline back-fills unknown requests
// with the source's native size before those stages run, so hitting this is
// a defect, not bad input.
var ErrUnknownRequest = errors.New("dimension request not resolved")

// Request captures the explicitly requested dimensions of an image
// directive. Only the fields implied by Kind are meaningful.
type Request struct {
	Kind   Kind
	Width  int
	Height int
}

// Unknown returns a request with no explicit size.
func Unknown() Request {
	return Request{Kind: KindUnknown}
}

// WidthOnly returns a request pinning the width.
func WidthOnly(w int) Request {
	return Request{Kind: KindWidth, Width: w}
}

// HeightOnly returns a request pinning the height.
func HeightOnly(h int) Request {
	return Request{Kind: KindHeight, Height: h}
}

// Both returns a request pinning both axes.
func Both(w, h int) Request {
	return Request{Kind: KindBoth, Width: w, Height: h}
}

// Tag returns the deterministic filename tag for a request, used to derive
// cached thumbnail names.
func (r Request) Tag() (string, error) {
	switch r.Kind {
	case KindBoth:
		return fmt.Sprintf("%d_%d", r.Width, r.Height), nil
	case KindWidth:
		return fmt.Sprintf("w%d", r.Width), nil
	case KindHeight:
		return fmt.Sprintf("h%d", r.Height), nil
	default:
		return "", ErrUnknownRequest
	}
}

// Geometry returns the ImageMagick geometry string for a request.
func (r Request) Geometry() (string, error) {
	switch r.Kind {
	case KindBoth:
		return fmt.Sprintf("%dx%d", r.Width, r.Height), nil
	case KindWidth:
		return fmt.Sprintf("%d", r.Width), nil
	case KindHeight:
		return fmt.Sprintf("x%d", r.Height), nil
	default:
		return "", ErrUnknownRequest
	}
}

// Compute returns the rendered size for a request against the source image's
// native size, preserving aspect ratio. When both axes are requested, each
// axis is capped by the value the other axis implies, so the result never
// exceeds either requested bound even when the requested pair has an
// inconsistent ratio. Fractions of exactly .5 round up.
func Compute(req Request, src Size) (Size, error) {
	if src.Width <= 0 || src.Height <= 0 {
		return Size{}, fmt.Errorf("source size %s has a non-positive dimension", src)
	}

	srcW := float64(src.Width)
	srcH := float64(src.Height)

	switch req.Kind {
	case KindBoth:
		w := min(req.Width, roundHalfUp(srcW*float64(req.Height)/srcH))
		h := min(req.Height, roundHalfUp(srcH*float64(req.Width)/srcW))
		return Size{Width: w, Height: h}, nil
	case KindWidth:
		return Size{
			Width:  req.Width,
			Height: roundHalfUp(srcH * float64(req.Width) / srcW),
		}, nil
	case KindHeight:
		return Size{
			Width:  roundHalfUp(srcW * float64(req.Height) / srcH),
			Height: req.Height,
		}, nil
	default:
		return Size{}, ErrUnknownRequest
	}
}

// roundHalfUp rounds to the nearest integer with .5 going up, not to even.
// The choice leaks into generated filenames, so it must stay stable.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
