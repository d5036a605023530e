// Package site walks a content tree and rewrites each document's image
// directives into markup, mirroring the tree into an output directory.
package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/euforicio/sitemd/internal/compiler"
)

// Options configure a build.
type Options struct {
	Root        string
	OutputDir   string
	Extensions  []string
	CleanOutput bool
}

// Builder transforms every content document under a root directory.
type Builder struct {
	compiler *compiler.Compiler
	logger   *slog.Logger
	opts     Options
}

// New constructs a builder. If logger is nil, the default slog logger is used.
func New(c *compiler.Compiler, logger *slog.Logger, opts Options) (*Builder, error) {
	if strings.TrimSpace(opts.Root) == "" {
		return nil, errors.New("root directory is required")
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return nil, errors.New("output directory is required")
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	opts.Root = root
	output, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output: %w", err)
	}
	opts.OutputDir = output
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".md", ".markdown", ".txt"}
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		compiler: c,
		logger:   logger.With("component", "builder"),
		opts:     opts,
	}, nil
}

// Build transforms every content document under the root. A failing document
// is logged and skipped so the rest of the run still builds; Build returns
// an aggregate error when any document failed.
func (b *Builder) Build(ctx context.Context) error {
	if b.opts.CleanOutput {
		if err := os.RemoveAll(b.opts.OutputDir); err != nil {
			return fmt.Errorf("clean output: %w", err)
		}
	}
	if err := os.MkdirAll(b.opts.OutputDir, 0o755); err != nil { //nolint:gosec // standard directory permissions
		return fmt.Errorf("create output: %w", err)
	}

	start := time.Now()
	var built, failed int

	err := filepath.WalkDir(b.opts.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != b.opts.Root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !b.isContent(path) {
			return nil
		}
		if err := b.BuildDocument(ctx, path); err != nil {
			failed++
			b.logger.Error("document build failed", slog.String("path", path), slog.Any("err", err))
			return nil
		}
		built++
		return nil
	})
	if err != nil {
		return err
	}

	b.logger.Info("build complete",
		slog.Int("documents", built),
		slog.Int("failed", failed),
		slog.String("output", b.opts.OutputDir),
		slog.Duration("duration", time.Since(start)))

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to build", failed, built+failed)
	}
	return nil
}

// BuildDocument transforms a single document and writes the result to the
// mirrored path under the output directory.
func (b *Builder) BuildDocument(ctx context.Context, path string) error {
	rel, err := filepath.Rel(b.opts.Root, path)
	if err != nil {
		return fmt.Errorf("relativize %s: %w", path, err)
	}
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from walking the validated root
	if err != nil {
		return fmt.Errorf("read %s: %w", rel, err)
	}

	out, err := b.compiler.Compile(ctx, string(raw))
	if err != nil {
		return fmt.Errorf("compile %s: %w", rel, err)
	}

	dest := filepath.Join(b.opts.OutputDir, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil { //nolint:gosec // standard directory permissions
		return fmt.Errorf("create output dir for %s: %w", rel, err)
	}
	if err := os.WriteFile(dest, []byte(out), 0o644); err != nil { //nolint:gosec // standard file permissions
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

func (b *Builder) isContent(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range b.opts.Extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
