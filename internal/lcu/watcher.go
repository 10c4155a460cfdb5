package lcu

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

// Watcher reports changes to any of a set of lockfile paths. The client
// rewrites its lockfile on every launch and deletes it on exit, so each event
// means a cached [Session] may be stale. It uses fsnotify on the parent
// directories and falls back to stat polling.
type Watcher struct {
	// paths is the set of cleaned lockfile paths being tracked.
	paths map[string]struct{}
	// events delivers a signal per change, buffered to 1 so bursts coalesce.
	events chan struct{}
	// done is closed by [Watcher.Close] to stop the goroutines.
	done chan struct{}
	// mu guards fsw.
	mu sync.Mutex
	// fsw is the native watcher; nil when polling.
	fsw *fsnotify.Watcher
	// once makes [Watcher.Close] idempotent.
	once sync.Once
	// polling is true when stat polling is in use.
	polling atomic.Bool
	// pollInterval is the stat interval in polling mode.
	pollInterval time.Duration
}

// NewWatcher starts watching lockfiles. Directories that do not exist yet
// cannot be watched natively; if none of them can, the watcher polls.
func NewWatcher(lockfiles []string) (*Watcher, error) {
	return newWatcher(lockfiles, 2*time.Second)
}

func newWatcher(lockfiles []string, pollInterval time.Duration) (*Watcher, error) {
	if len(lockfiles) == 0 {
		return nil, fmt.Errorf("no lockfile paths to watch")
	}
	w := &Watcher{
		paths:        make(map[string]struct{}, len(lockfiles)),
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: pollInterval,
	}
	for _, p := range lockfiles {
		w.paths[filepath.Clean(p)] = struct{}{}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Info("fsnotify unavailable, polling lockfiles", "error", err)
		w.startPolling()
		return w, nil
	}

	watched := 0
	for dir := range w.dirs() {
		if err := fsw.Add(dir); err != nil {
			slog.Debug("cannot watch lockfile directory", "path", dir, "error", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		fsw.Close()
		w.startPolling()
		return w, nil
	}

	w.fsw = fsw
	go w.watch(fsw)
	return w, nil
}

// dirs returns the distinct parent directories of the tracked paths.
func (w *Watcher) dirs() map[string]struct{} {
	out := make(map[string]struct{}, len(w.paths))
	for p := range w.paths {
		out[filepath.Dir(p)] = struct{}{}
	}
	return out
}

// Events returns a channel that receives a signal when a lockfile changes.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Polling reports whether the watcher is using stat polling.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.fsw != nil {
			if closeErr := w.fsw.Close(); closeErr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
			}
			w.fsw = nil
		}
	})
	return err
}

// watch forwards events for tracked paths. On a native watcher error it
// switches to polling.
func (w *Watcher) watch(fsw *fsnotify.Watcher) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if _, tracked := w.paths[filepath.Clean(event.Name)]; !tracked {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.notify()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Info("fsnotify error, switching to lockfile polling", "error", err)
			w.mu.Lock()
			if w.fsw != nil {
				w.fsw.Close()
				w.fsw = nil
			}
			w.mu.Unlock()
			w.startPolling()
			return
		}
	}
}

func (w *Watcher) startPolling() {
	w.polling.Store(true)
	go w.poll()
}

// poll stats every tracked path and signals when any of them appears,
// disappears, or gets a newer modification time.
func (w *Watcher) poll() {
	last := w.snapshot()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			cur := w.snapshot()
			if !sameSnapshot(last, cur) {
				last = cur
				w.notify()
			}
		}
	}
}

// snapshot maps each tracked path to its modification time. Missing files
// map to the zero time.
func (w *Watcher) snapshot() map[string]time.Time {
	out := make(map[string]time.Time, len(w.paths))
	for p := range w.paths {
		var mod time.Time
		if info, err := os.Stat(p); err == nil {
			mod = info.ModTime()
		}
		out[p] = mod
	}
	return out
}

func sameSnapshot(a, b map[string]time.Time) bool {
	for p, t := range a {
		if !b[p].Equal(t) {
			return false
		}
	}
	return len(a) == len(b)
}

// notify sends a signal unless one is already pending.
func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}
