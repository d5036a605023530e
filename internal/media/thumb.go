package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/euforicio/sitemd/internal/scale"
)

const thumbPrefix = "hakyllthumb_"

// ThumbPath derives the deterministic thumbnail filename for a source path
// and a requested size: the dims tag is inserted in front of the file
// extension. Identical inputs always yield the identical path, which is what
// makes thumbnails shareable across documents and build runs. An unresolved
// request must never reach this point.
func ThumbPath(src string, req scale.Request) (string, error) {
	tag, err := req.Tag()
	if err != nil {
		return "", fmt.Errorf("thumbnail name for %s: %w", src, err)
	}
	ext := filepath.Ext(src)
	return strings.TrimSuffix(src, ext) + thumbPrefix + tag + ext, nil
}

// Thumbnailer materializes cached resized copies next to their sources.
type Thumbnailer struct {
	resizer Resizer
	logger  *slog.Logger
}

// NewThumbnailer wraps a resizer with cache-aware materialization.
// If logger is nil, the default slog logger is used.
func NewThumbnailer(resizer Resizer, logger *slog.Logger) *Thumbnailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Thumbnailer{
		resizer: resizer,
		logger:  logger.With("component", "thumbnailer"),
	}
}

// Materialize ensures a resized copy of src exists at the derived path and
// returns that path. An already existing file is reused without invoking the
// resizer, so reruns over unchanged sources are cheap and concurrent
// first-writers converge on the same file.
func (t *Thumbnailer) Materialize(ctx context.Context, src string, req scale.Request) (string, error) {
	dest, err := ThumbPath(src, req)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(dest); err == nil {
		t.logger.Debug("thumbnail cache hit", slog.String("path", dest))
		return dest, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat thumbnail %s: %w", dest, err)
	}

	geometry, err := req.Geometry()
	if err != nil {
		return "", err
	}
	if err := t.resizer.Resize(ctx, src, geometry, dest); err != nil {
		return "", fmt.Errorf("materialize thumbnail %s: %w", dest, err)
	}

	t.logger.Debug("thumbnail generated",
		slog.String("source", src),
		slog.String("path", dest),
		slog.String("geometry", geometry))
	return dest, nil
}
