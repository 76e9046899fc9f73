// Package watch re-runs a callback when registered template roots change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/filesystem"
	"github.com/arthur-debert/saltbox/pkg/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is used when no debounce is configured
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches every directory below a set of roots
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	roots     []string
	debounce  time.Duration
	logger    zerolog.Logger
}

// New creates a watcher over roots. Subdirectories are watched too.
func New(roots []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot create file watcher")
	}

	w := &Watcher{
		fsWatcher: fsw,
		roots:     roots,
		debounce:  debounce,
		logger:    logging.GetLogger("watch"),
	}

	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// WatchList returns the directories currently watched
func (w *Watcher) WatchList() []string {
	return w.fsWatcher.WatchList()
}

// addTree watches root and every directory below it; a symlinked root is followed
func (w *Watcher) addTree(root string) error {
	resolved, err := filesystem.ResolveRoot(root)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidRoot, "cannot watch %s", root)
	}
	return filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrInvalidRoot, "cannot watch %s", path)
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot watch %s", path)
		}
		return nil
	})
}

// Run calls onChange after each burst of changes, once the roots have been
// quiet for the debounce interval. Callback errors are logged and watching
// continues. Run returns when ctx ends.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	defer func() {
		_ = w.fsWatcher.Close()
	}()

	w.logger.Info().Strs("roots", w.roots).Dur("debounce", w.debounce).Msg("Watching template roots")

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn().Err(err).Str("dir", event.Name).Msg("Cannot watch new directory")
					}
				}
			}

			w.logger.Trace().Str("path", event.Name).Str("op", event.Op.String()).Msg("Change detected")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.logger.Info().Msg("Template roots changed, refreshing")
			if err := onChange(ctx); err != nil {
				w.logger.Error().Err(err).Msg("Refresh after change failed")
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

// relevant ignores attribute-only changes
func (w *Watcher) relevant(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
