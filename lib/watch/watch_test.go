package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// moveIn writes a file elsewhere and renames it into dir, so that it
// appears in one event.
func moveIn(t *testing.T, dir, name string) string {
	t.Helper()
	tmp := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(tmp, []byte("data"), 0644))
	path := filepath.Join(dir, name)
	require.NoError(t, os.Rename(tmp, path))
	return path
}

func receive(t *testing.T, w *Watcher) (string, bool) {
	t.Helper()
	select {
	case path, ok := <-w.Files():
		return path, ok
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for a settled file.")
		return "", false
	}
}

func TestWatcher(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w, err := New(dir, []string{"Cyl_*.hsol", "Cyl_*.hsol.zst"},
		20*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))

	moveIn(t, dir, "Other_0000000100.hsol")
	want := moveIn(t, dir, "Cyl_0000000100.hsol")

	path, ok := receive(t, w)
	require.True(t, ok)
	assert.Equal(t, want, path)

	want = moveIn(t, dir, "Cyl_0000000200.hsol.zst")
	path, ok = receive(t, w)
	require.True(t, ok)
	assert.Equal(t, want, path)

	w.Stop()
	w.Stop()
	_, ok = <-w.Files()
	assert.False(t, ok)
	assert.Error(t, w.Start(context.Background()))
}

func TestWatcherContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := New(t.TempDir(), []string{"*.hsol"}, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounce)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	_, ok := receive(t, w)
	assert.False(t, ok)
	w.Stop()
}

func TestWatcherFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, err := New(t.TempDir(), []string{"[a"}, 0, nil)
	assert.Error(t, err)

	w, err := New(filepath.Join(t.TempDir(), "missing"), []string{"*"}, 0, nil)
	require.NoError(t, err)
	assert.Error(t, w.Start(context.Background()))
	w.Stop()
	_, ok := <-w.Files()
	assert.False(t, ok)
}
