package watcher

import (
	"context"
	"time"
)

type firing struct {
	path       string
	generation uint64
}

type pendingPath struct {
	timer      *time.Timer
	generation uint64
}

// debouncer is owned by the Run goroutine. Only the timer callbacks touch
// ready from other goroutines.
type debouncer struct {
	ctx     context.Context
	window  time.Duration
	ready   chan firing
	pending map[string]*pendingPath
}

func newDebouncer(ctx context.Context, window time.Duration) *debouncer {
	return &debouncer{
		ctx:     ctx,
		window:  window,
		ready:   make(chan firing, 64),
		pending: make(map[string]*pendingPath),
	}
}

// touch restarts the quiet window for path. A timer that already fired gets
// replaced, and its queued firing goes stale.
func (d *debouncer) touch(path string) {
	entry, ok := d.pending[path]
	if ok && entry.timer.Stop() {
		entry.timer.Reset(d.window)
		return
	}
	if !ok {
		entry = &pendingPath{}
		d.pending[path] = entry
	}

	entry.generation++
	generation := entry.generation
	entry.timer = time.AfterFunc(d.window, func() {
		select {
		case d.ready <- firing{path: path, generation: generation}:
		case <-d.ctx.Done():
		}
	})
}

// settle reports whether fired is the latest firing for its path and clears it.
func (d *debouncer) settle(fired firing) bool {
	entry, ok := d.pending[fired.path]
	if !ok || entry.generation != fired.generation {
		return false
	}
	delete(d.pending, fired.path)
	return true
}

func (d *debouncer) stop() {
	for _, entry := range d.pending {
		entry.timer.Stop()
	}
}
