package watch

import (
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"
)

// Debouncer collects the paths of a burst of events and hands them to the
// callback, sorted and deduplicated, once no event arrived for interval.
// Callbacks never overlap; events arriving during a callback start the
// next burst.
type Debouncer struct {
	interval time.Duration
	callback func(paths []string)
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	stopped bool

	running sync.Mutex
}

// NewDebouncer creates a debouncer that calls callback once interval has
// passed without a new event.
func NewDebouncer(interval time.Duration, callback func(paths []string)) *Debouncer {
	return &Debouncer{
		interval: interval,
		callback: callback,
		logger:   slog.Default(),
		pending:  make(map[string]struct{}),
	}
}

// Trigger adds path to the current burst and restarts the quiet period.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending[path] = struct{}{}

	if d.timer == nil {
		d.timer = time.AfterFunc(d.interval, d.fire)
		return
	}

	d.timer.Reset(d.interval)
}

// Stop drops the current burst and waits for a running callback to
// return. Later triggers are ignored. Stop must not be called from the
// callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true

	if d.timer != nil {
		d.timer.Stop()
	}

	clear(d.pending)
	d.mu.Unlock()

	d.running.Lock()
	defer d.running.Unlock()
}

func (d *Debouncer) fire() {
	d.running.Lock()
	defer d.running.Unlock()

	d.mu.Lock()
	paths := slices.Sorted(maps.Keys(d.pending))
	clear(d.pending)
	d.mu.Unlock()

	if len(paths) == 0 {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("watch callback panicked", slog.Any("panic", r), slog.Any("paths", paths))
		}
	}()

	d.callback(paths)
}
