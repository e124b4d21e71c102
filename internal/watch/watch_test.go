package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDebounce = 50 * time.Millisecond
	waitTimeout  = 5 * time.Second
	quietPeriod  = 300 * time.Millisecond
)

// startWatcher runs a watcher for a fresh CHANGELOG.md and returns the file
// path plus a channel receiving each callback.
func startWatcher(t *testing.T) (string, <-chan string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "CHANGELOG.md")
	require.NoError(t, os.WriteFile(path, []byte("# Changelog\n"), 0o644))

	w, err := New(path, testDebounce)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	calls := make(chan string, 16)
	go func() {
		done <- w.Run(ctx, func(p string) { calls <- p })
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(waitTimeout):
			t.Error("Run did not return after cancel")
		}
	})
	return w.Path(), calls
}

func waitForCall(t *testing.T, calls <-chan string) string {
	t.Helper()
	select {
	case p := <-calls:
		return p
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for change callback")
		return ""
	}
}

func assertNoCall(t *testing.T, calls <-chan string) {
	t.Helper()
	select {
	case p := <-calls:
		t.Fatalf("unexpected change callback for %s", p)
	case <-time.After(quietPeriod):
	}
}

func TestWatcher_WriteTriggersCallback(t *testing.T) {
	t.Parallel()

	path, calls := startWatcher(t)
	require.NoError(t, os.WriteFile(path, []byte("## Unreleased\n"), 0o644))

	assert.Equal(t, path, waitForCall(t, calls))
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	t.Parallel()

	path, calls := startWatcher(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("## Unreleased\n"), 0o644))
	}

	waitForCall(t, calls)
	assertNoCall(t, calls)
}

func TestWatcher_RenameOverFile(t *testing.T) {
	t.Parallel()

	path, calls := startWatcher(t)
	tmp := filepath.Join(filepath.Dir(path), ".CHANGELOG.md.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("## Unreleased\n"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	assert.Equal(t, path, waitForCall(t, calls))
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	path, calls := startWatcher(t)
	other := filepath.Join(filepath.Dir(path), "README.md")
	require.NoError(t, os.WriteFile(other, []byte("readme\n"), 0o644))

	assertNoCall(t, calls)
}

func TestNew_MissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "missing", "CHANGELOG.md"), testDebounce)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watching directory")
}

func TestWatcher_Relevant(t *testing.T) {
	t.Parallel()

	w := &Watcher{path: filepath.Join(string(filepath.Separator), "repo", "CHANGELOG.md")}
	other := filepath.Join(string(filepath.Separator), "repo", "README.md")

	tests := map[string]struct {
		event fsnotify.Event
		want  bool
	}{
		"write":       {event: fsnotify.Event{Name: w.path, Op: fsnotify.Write}, want: true},
		"create":      {event: fsnotify.Event{Name: w.path, Op: fsnotify.Create}, want: true},
		"remove":      {event: fsnotify.Event{Name: w.path, Op: fsnotify.Remove}},
		"chmod":       {event: fsnotify.Event{Name: w.path, Op: fsnotify.Chmod}},
		"other file":  {event: fsnotify.Event{Name: other, Op: fsnotify.Write}},
		"unclean sep": {event: fsnotify.Event{Name: w.path + string(filepath.Separator), Op: fsnotify.Write}, want: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}
