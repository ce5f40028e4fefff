package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun_TriggersOnChangeForNewMigrationFile(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond
	defer w.Close()

	changed := make(chan struct{}, 1)
	go w.Run(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "20230101000000-add-foo.yaml"), []byte("up: []\ndown: []\n"), 0o644))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("onChange was not called within timeout")
	}
}

func TestRun_IgnoresNonMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond
	defer w.Close()

	changed := make(chan struct{}, 1)
	go w.Run(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644))

	select {
	case <-changed:
		t.Fatal("onChange fired for a non-migration file")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClose_StopsRunLoop(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		w.Run(func() {})
		close(done)
	}()

	require.NoError(t, w.Close())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}
