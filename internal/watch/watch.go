// Package watch implements `tern watch`: watch the migrations directory and
// invoke a callback whenever a *.yaml/*.yml file is created or written,
// debouncing rapid editor saves. `tern watch` uses the callback to re-validate
// the migration files.
package watch

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the several write events one editor save
// triggers into a single callback invocation.
const DefaultDebounce = 200 * time.Millisecond

// Watcher invokes the callback passed to Run whenever a migration file in
// the watched directory is created or written, debounced by DefaultDebounce.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
	done   chan struct{}
}

// New watches dir (non-recursively — migrations are a flat directory) and
// returns a Watcher ready for Run.
func New(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{watcher: fsw, dir: dir, debounce: DefaultDebounce, done: make(chan struct{})}, nil
}

// Run blocks, invoking onChange once per debounced burst of migration-file
// events, until Close is called. Errors from the underlying watcher are
// logged and do not stop the loop.
func (w *Watcher) Run(onChange func()) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.scheduleDebounced(onChange)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("watch: fsnotify error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	return ext == ".yaml" || ext == ".yml"
}

func (w *Watcher) scheduleDebounced(onChange func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, onChange)
}

// Close stops the watcher and releases its file-descriptor resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}

// Dir returns the directory being watched.
func (w *Watcher) Dir() string { return w.dir }
