// Package watch observes the site's configuration files and reports
// changes after debouncing. Editors typically save through a
// write-temp-then-rename dance, so the watcher subscribes to the parent
// directories and filters events down to the tracked file names.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/soireehq/soiree/internal/bus"
	"github.com/soireehq/soiree/internal/logging"
)

// EventConfigChanged is published on the event bus once per debounced
// batch of configuration file changes.
const EventConfigChanged = "config.changed"

// DefaultDebounce groups rapid successive writes into one reload.
const DefaultDebounce = 300 * time.Millisecond

// Change is the bus payload and handler argument for one batch.
type Change struct {
	Paths     []string
	Timestamp time.Time
}

// Handler reacts to a debounced batch of configuration changes.
type Handler func(change Change) error

// Watcher debounces file change notifications for a fixed set of
// configuration files.
type Watcher struct {
	watcher   *fsnotify.Watcher
	events    *bus.Bus
	logger    logging.Logger
	debounce  time.Duration
	tracked   map[string]struct{} // absolute paths of watched files
	handlers  []Handler
	mutex     sync.Mutex
	timer     *time.Timer
	pending   map[string]struct{}
	closeOnce sync.Once
}

// New builds a watcher for the given configuration files. The files do
// not have to exist yet; their parent directories do.
func New(events *bus.Bus, logger logging.Logger, debounce time.Duration, paths ...string) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no configuration files to watch")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsWatcher,
		events:   events,
		logger:   logger.WithComponent("watch"),
		debounce: debounce,
		tracked:  make(map[string]struct{}, len(paths)),
		pending:  make(map[string]struct{}),
	}

	dirs := make(map[string]struct{})
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			_ = fsWatcher.Close()
			return nil, fmt.Errorf("resolving %s: %w", path, err)
		}
		w.tracked[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsWatcher.Add(dir); err != nil {
			_ = fsWatcher.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	return w, nil
}

// OnChange registers a handler for debounced change batches. Handlers
// run sequentially; a failing handler is logged and does not block the
// others.
func (w *Watcher) OnChange(handler Handler) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Start begins watching until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Close releases the underlying watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mutex.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mutex.Unlock()
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = w.Close()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, err, "file watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	if _, ok := w.tracked[abs]; !ok {
		return
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.pending[abs] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

// flush delivers one deduplicated batch to the handlers and the bus.
func (w *Watcher) flush() {
	w.mutex.Lock()
	if len(w.pending) == 0 {
		w.mutex.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mutex.Unlock()

	change := Change{Paths: paths, Timestamp: time.Now()}
	ctx := context.Background()

	w.logger.Info(ctx, "configuration changed", "paths", paths)

	for _, handler := range handlers {
		if err := handler(change); err != nil {
			w.logger.Warn(ctx, err, "change handler failed")
		}
	}

	if w.events != nil {
		w.events.Publish(ctx, EventConfigChanged, change)
	}
}
