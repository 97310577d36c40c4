// Package watch reruns a function whenever any of a set of files changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

var ErrNoPaths = errors.New("watch: no files to watch")

// Options configures Run.
type Options struct {
	// Debounce is the quiet period after the last change before fn runs.
	Debounce time.Duration
	Logger   *zap.Logger
}

// Run calls fn once, then again after every debounced write to one of paths,
// until ctx is cancelled. Calls to fn never overlap. Errors from fn are
// logged and do not stop the loop.
//
// Parent directories are watched rather than the files themselves so that
// editors which save by renaming over the original keep being observed.
func Run(ctx context.Context, paths []string, opts Options, fn func(context.Context) error) error {
	if len(paths) == 0 {
		return ErrNoPaths
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("watch: %s: %w", p, err)
		}
		files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch: add %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	run := func() {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("watch run failed", zap.Error(err))
		}
	}
	run()

	trigger := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !files[filepath.Clean(event.Name)] {
				continue
			}

			logger.Debug("file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case <-trigger:
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}
