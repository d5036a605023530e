// Package compiler resolves the image directives inside a document body and
// rewrites them as markup, leaving every other span untouched.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/euforicio/sitemd/internal/directive"
	"github.com/euforicio/sitemd/internal/media"
	"github.com/euforicio/sitemd/internal/scale"
)

// ErrInternal marks invariant violations inside the pipeline. Seeing it
// means a stage ran out of order, not that the input was bad.
var ErrInternal = errors.New("internal compiler defect")

const defaultParallelism = 4

// Options configure a Compiler.
type Options struct {
	// Parallelism bounds how many image chunks resolve concurrently within
	// one document. Zero means a small default.
	Parallelism int
}

// Compiler runs the per-document pipeline: parse directives, resolve source
// dimensions, compute rendered sizes, materialize thumbnails, render markup.
type Compiler struct {
	measurer    media.Measurer
	thumbs      *media.Thumbnailer
	logger      *slog.Logger
	parallelism int
}

// New constructs a compiler. If logger is nil, the default slog logger is
// used.
func New(measurer media.Measurer, thumbs *media.Thumbnailer, logger *slog.Logger, opts *Options) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	parallelism := defaultParallelism
	if opts != nil && opts.Parallelism > 0 {
		parallelism = opts.Parallelism
	}
	return &Compiler{
		measurer:    measurer,
		thumbs:      thumbs,
		logger:      logger.With("component", "compiler"),
		parallelism: parallelism,
	}
}

// Compile transforms a document body, replacing every image directive with
// markup. Bodies without directives are returned unchanged. Any failure —
// malformed directive, unreadable source image, resize error — aborts the
// whole document; there is no partial output and no defaulting.
func (c *Compiler) Compile(ctx context.Context, body string) (string, error) {
	if !strings.Contains(body, directive.Delimiter) {
		return body, nil
	}

	chunks, err := directive.Parse(body)
	if err != nil {
		return "", err
	}

	resolved, err := c.resolveAll(ctx, chunks)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, chunk := range resolved {
		fragment, err := renderChunk(chunk)
		if err != nil {
			return "", err
		}
		sb.WriteString(fragment)
	}
	return sb.String(), nil
}

// resolveAll runs the resolution pipeline over every image chunk with
// bounded concurrency. Results are written back by index, so assembly order
// matches input order regardless of completion order. On failure the first
// error is kept and every in-flight resolution is still drained, letting
// external resize calls finish and leave reusable artifacts behind.
func (c *Compiler) resolveAll(ctx context.Context, chunks []directive.Chunk) ([]directive.Chunk, error) {
	type result struct {
		err error
		img directive.Image
		idx int
	}

	var indices []int
	for i, chunk := range chunks {
		if _, ok := chunk.(directive.Image); ok {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		return chunks, nil
	}

	results := make(chan result, len(indices))
	sem := make(chan struct{}, c.parallelism)

	for _, idx := range indices {
		img := chunks[idx].(directive.Image)
		sem <- struct{}{}
		go func(idx int, img directive.Image) {
			defer func() { <-sem }()
			resolved, err := c.resolve(ctx, img)
			results <- result{idx: idx, img: resolved, err: err}
		}(idx, img)
	}

	out := make([]directive.Chunk, len(chunks))
	copy(out, chunks)

	var firstErr error
	for range indices {
		res := <-results
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		out[res.idx] = res.img
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// resolve walks one image chunk through the mandated stage order:
// measure, back-fill, compute, materialize.
func (c *Compiler) resolve(ctx context.Context, img directive.Image) (directive.Image, error) {
	src, err := c.measurer.Measure(ctx, img.URL)
	if err != nil {
		return directive.Image{}, fmt.Errorf("resolve dimensions for %s: %w", img.URL, err)
	}
	img.Source = &src

	if img.Requested.Kind == scale.KindUnknown {
		// No explicit size means native size.
		img.Requested = scale.Both(src.Width, src.Height)
	}

	rendered, err := scale.Compute(img.Requested, src)
	if err != nil {
		return directive.Image{}, fmt.Errorf("compute dimensions for %s: %w", img.URL, err)
	}
	img.Rendered = &rendered

	// The original file serves as is when no scaling happens.
	if rendered != src {
		thumb, err := c.thumbs.Materialize(ctx, img.URL, img.Requested)
		if err != nil {
			return directive.Image{}, err
		}
		img.Thumb = thumb
	}

	c.logger.Debug("image resolved",
		slog.String("url", img.URL),
		slog.String("source", src.String()),
		slog.String("rendered", rendered.String()))
	return img, nil
}
