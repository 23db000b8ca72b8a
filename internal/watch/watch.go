// Package watch batches filesystem changes below a set of content roots.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// DefaultDebounce is the quiet period before a batch is delivered.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches directory trees recursively and delivers changed paths in
// debounced batches.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	ignore   func(path string) bool
	logger   *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnore adds a predicate for paths that never trigger a batch. It is
// consulted in addition to the editor and hidden file rules.
func WithIgnore(fn func(path string) bool) Option {
	return func(w *Watcher) { w.ignore = fn }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New watches every existing directory below roots. Missing roots are skipped.
func New(roots []string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{
		fs:       fw,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	for _, root := range roots {
		if fi, statErr := os.Stat(root); statErr != nil || !fi.IsDir() {
			w.logger.Debug("Skipping missing watch root", logfields.Root(root))
			continue
		}
		w.addRecursive(root)
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error { return w.fs.Close() }

// Run blocks until ctx is done or the watcher is closed. fn is called from
// Run's goroutine with the sorted set of paths changed during each burst.
func (w *Watcher) Run(ctx context.Context, fn func(changed []string)) error {
	pending := sets.New[string]()
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.accept(ev) {
				continue
			}
			pending.Add(filepath.Clean(ev.Name))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		case <-fire:
			fire = nil
			batch := sets.Sorted(pending)
			pending = sets.New[string]()
			w.logger.Debug("Change batch", logfields.Count(len(batch)))
			fn(batch)
		}
	}
}

func (w *Watcher) accept(ev fsnotify.Event) bool {
	if shouldIgnoreEvent(ev.Name) || (w.ignore != nil && w.ignore(ev.Name)) {
		return false
	}
	if ev.Op&fsnotify.Chmod == ev.Op {
		return false
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addRecursive(ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	return true
}

func (w *Watcher) addRecursive(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if addErr := w.fs.Add(path); addErr != nil {
				w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(addErr))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent filters hidden, editor swap and lock files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
