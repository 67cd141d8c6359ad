// Package watcher reports files that settle after being created or changed
// under a set of directories.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const DefaultDebounce = 750 * time.Millisecond

type Filter func(path string) bool

type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	filter   Filter
	logger   zerolog.Logger

	mu    sync.Mutex
	roots []string
}

type Option func(*Watcher)

func WithDebounce(debounce time.Duration) Option {
	return func(w *Watcher) {
		if debounce > 0 {
			w.debounce = debounce
		}
	}
}

func WithFilter(filter Filter) Option {
	return func(w *Watcher) {
		w.filter = filter
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

func New(opts ...Option) (*Watcher, error) {
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fs:       notify,
		debounce: DefaultDebounce,
		filter:   func(string) bool { return true },
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add watches root and every non-hidden directory below it.
func (w *Watcher) Add(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", root)
	}

	if err := w.addTree(root); err != nil {
		return err
	}

	w.mu.Lock()
	w.roots = append(w.roots, root)
	w.mu.Unlock()
	return nil
}

func (w *Watcher) Roots() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	roots := make([]string, len(w.roots))
	copy(roots, w.roots)
	return roots
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Run delivers each accepted path to handle once it has been quiet for the
// debounce window. Handlers run one at a time on the Run goroutine. Run
// returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, handle func(path string)) error {
	pending := newDebouncer(ctx, w.debounce)
	defer pending.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return errors.New("fsnotify event channel closed")
			}
			w.handleEvent(event, pending)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("fsnotify error channel closed")
			}
			w.logger.Warn().Err(err).Msg("watch error")
		case fired := <-pending.ready:
			if pending.settle(fired) {
				handle(fired.path)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, pending *debouncer) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn().Str("path", event.Name).Err(err).Msg("watch new directory")
			}
			return
		}
	}

	if !w.filter(event.Name) {
		return
	}

	pending.touch(event.Name)
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}
