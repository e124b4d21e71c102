// Package watch re-runs a callback whenever a single file is saved.
//
// The parent directory is watched rather than the file itself, so editors
// that save by writing a temporary file and renaming it over the original
// keep triggering events. Bursts of events are collapsed into one call once
// the file has been quiet for the debounce interval.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned by Run when the underlying watcher was closed.
var ErrClosed = errors.New("watcher closed")

// Watcher reports saves of one file.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// New starts watching path. The file does not need to exist yet, but its
// directory does.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(abs)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}

	return &Watcher{
		path:     abs,
		debounce: max(debounce, 0),
		watcher:  fw,
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run calls onChange after each settled save until ctx is cancelled. It
// closes the watcher before returning. onChange runs on the Run goroutine,
// so events arriving meanwhile are coalesced into the next call.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return ErrClosed
			}
			if !w.relevant(event) {
				continue
			}
			timer.Reset(w.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			// The file can be gone for a moment in the middle of a save.
			if _, err := os.Stat(w.path); err != nil {
				continue
			}
			onChange(w.path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return ErrClosed
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// Close stops watching without running.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// relevant reports whether event is a write to the watched file, either in
// place or by being renamed or created over it.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
