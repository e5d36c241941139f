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

func TestWatcher_DebouncesRelevantWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{Dir: dir, Names: []string{"app-config.json"}, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	path := filepath.Join(dir, "app-config.json")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case <-w.Changes():
		t.Fatal("burst should be reported once")
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_IsRelevant(t *testing.T) {
	w := &Watcher{names: []string{"entity-config.json"}}
	assert.True(t, w.isRelevant(fsnotify.Event{Name: "/p/entity-config.json", Op: fsnotify.Write}))
	assert.False(t, w.isRelevant(fsnotify.Event{Name: "/p/entity-config.json", Op: fsnotify.Chmod}))
	assert.False(t, w.isRelevant(fsnotify.Event{Name: "/p/other.json", Op: fsnotify.Create}))
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New(Config{Dir: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}
