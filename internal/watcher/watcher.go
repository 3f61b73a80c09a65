// Package watcher turns file-system events under the configured source
// directories into regeneration triggers. A trigger carries no payload:
// whatever changed, every mapping performs a full rescan, which keeps the
// generated manifests consistent regardless of which file the event named.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the default quiet period for coalescing rapid events.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches a set of root directories recursively and emits one
// trigger per debounced burst of file events.
type Watcher struct {
	watcher  *fsnotify.Watcher
	triggers chan struct{}
	errors   chan error
	done     chan struct{}
	roots    []string
	ignore   map[string]bool

	mu       sync.Mutex
	debounce time.Duration
	timer    *time.Timer
	closed   bool
}

// New creates a Watcher over the given root directories. Paths listed in
// ignorePaths (the configured destination files) never produce triggers, so
// a regeneration's own write does not re-trigger regeneration. A debounce
// of 0 uses DefaultDebounce.
func New(roots []string, ignorePaths []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ignore := make(map[string]bool, len(ignorePaths))
	for _, p := range ignorePaths {
		ignore[filepath.Clean(p)] = true
	}

	w := &Watcher{
		watcher:  fsWatcher,
		triggers: make(chan struct{}, 1),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
		ignore:   ignore,
		debounce: debounce,
	}

	for _, root := range roots {
		root = filepath.Clean(root)
		w.roots = append(w.roots, root)
		if err := w.addRecursive(root); err != nil {
			fsWatcher.Close()
			return nil, err
		}
	}

	go w.processEvents()

	return w, nil
}

// addRecursive adds the directory and all its subdirectories to the watcher.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				if os.IsPermission(err) {
					return nil
				}
				return err
			}
		}

		return nil
	})
}

// processEvents converts fsnotify events into debounced triggers.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
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
			select {
			case w.errors <- err:
			default:
				// Error channel full, drop the error
			}
		}
	}
}

// handleEvent processes a single fsnotify event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	// New directories must be watched too.
	if event.Has(fsnotify.Create) {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if err := w.addRecursive(path); err != nil {
				select {
				case w.errors <- err:
				default:
				}
			}
		}
	}

	if w.shouldIgnore(path) {
		return
	}

	// Chmod-only events carry no content change.
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.scheduleTrigger()
}

// shouldIgnore reports whether a path is one of our own write artifacts:
// a configured destination file, its flock sidecar, or an atomic-write
// temp file.
func (w *Watcher) shouldIgnore(path string) bool {
	if w.ignore[path] {
		return true
	}
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".tmp-") || strings.HasSuffix(name, ".lock") {
		return true
	}
	return false
}

// scheduleTrigger coalesces event bursts: each event restarts the debounce
// timer, and only a quiet period fires the trigger.
func (w *Watcher) scheduleTrigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.triggers <- struct{}{}:
		case <-w.done:
		default:
			// A trigger is already pending; the pending full rescan
			// covers this change too.
		}
	})
}

// Triggers returns the channel delivering regeneration triggers.
func (w *Watcher) Triggers() <-chan struct{} {
	return w.triggers
}

// Errors returns the channel delivering watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Roots returns the directories being watched.
func (w *Watcher) Roots() []string {
	return w.roots
}

// Close stops the watcher and releases resources.
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
