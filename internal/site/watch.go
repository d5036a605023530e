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

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 200 * time.Millisecond

// Watch rebuilds documents as they change until ctx is cancelled. Events are
// debounced so editors that write in several steps trigger one rebuild.
// New directories are picked up as they appear.
func (b *Builder) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, b.opts.Root); err != nil {
		return err
	}
	b.logger.Info("watching for changes", slog.String("root", b.opts.Root))

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if !strings.HasPrefix(filepath.Base(event.Name), ".") {
					if err := watchTree(watcher, event.Name); err != nil {
						b.logger.Warn("watch new directory failed", slog.String("path", event.Name), slog.Any("err", err))
					}
				}
				continue
			}
			if !b.isContent(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(debounceDelay)
				timerC = timer.C
			} else {
				timer.Reset(debounceDelay)
			}

		case <-timerC:
			for path := range pending {
				if err := b.BuildDocument(ctx, path); err != nil {
					b.logger.Error("rebuild failed", slog.String("path", path), slog.Any("err", err))
					continue
				}
				b.logger.Info("rebuilt", slog.String("path", path))
			}
			clear(pending)
			timer = nil
			timerC = nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.logger.Error("watch error", slog.Any("err", err))
		}
	}
}

func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
