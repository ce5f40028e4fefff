package migrationfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionID(t *testing.T) {
	assert.Equal(t, "20230102030405", VersionID("20230102030405-add-users.yaml"))
	assert.Equal(t, "nohyphen", VersionID("nohyphen.yaml"))
}

func TestDiscover_SortsByVersionID(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "20230102000000-second.yaml", "up:\n  - create-table:\n      table: b\n      columns: []\ndown: []\n")
	write(t, dir, "20230101000000-first.yaml", "up:\n  - create-table:\n      table: a\n      columns: []\ndown: []\n")
	write(t, dir, "README.md", "ignored")

	files, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "20230101000000", files[0].VersionID)
	assert.Equal(t, "first", files[0].Slug)
	assert.Equal(t, "20230102000000", files[1].VersionID)
	require.Len(t, files[0].Up, 1)
}

func TestDiscover_RejectsInvalidSequence(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "20230101000000-bad.yaml", "up: \"not-a-list\"\ndown: []\n")

	_, err := Discover(dir)
	require.Error(t, err)
}

func TestNew_WritesSkeletonFile(t *testing.T) {
	dir := t.TempDir()
	path, err := New(dir, "Add Users Table!", time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, filepath.Base(path), "20260729100000-add-users-table")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, skeleton, string(data))
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
