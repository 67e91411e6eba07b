package localfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestMove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.jpg")
	dst := filepath.Join(dir, "sub", "a.jpg")
	writeFile(t, src, "pixels")
	l := New()
	require.NoError(t, l.MkdirAll(filepath.Dir(dst)))

	require.NoError(t, l.Move(src, dst))

	assert.NoFileExists(t, src)
	assert.Equal(t, "pixels", readFile(t, dst))
}

func TestMove_NeverOverwrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.jpg")
	dst := filepath.Join(dir, "b.jpg")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")

	err := New().Move(src, dst)

	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrExist)
	assert.Equal(t, "new", readFile(t, src), "source must be untouched")
	assert.Equal(t, "old", readFile(t, dst), "destination must be untouched")
}

func TestMove_MissingSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := New().Move(filepath.Join(dir, "gone.jpg"), filepath.Join(dir, "b.jpg"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.jpg")
	writeFile(t, file, "x")
	dangling := filepath.Join(dir, "dangling")
	require.NoError(t, os.Symlink(filepath.Join(dir, "nowhere"), dangling))
	l := New()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"file", file, true},
		{"dir", dir, true},
		{"dangling link", dangling, true},
		{"missing", filepath.Join(dir, "missing"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Exists(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.jpg")
	writeFile(t, file, "x")
	l := New()

	require.NoError(t, l.Remove(file))
	assert.NoFileExists(t, file)
	assert.ErrorIs(t, l.Remove(file), fs.ErrNotExist)
}

func TestCopyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.jpg")
	dst := filepath.Join(dir, "copy.jpg")
	writeFile(t, src, "pixels")
	mtime := time.Date(2019, 4, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	require.NoError(t, copyFile(src, dst))

	assert.Equal(t, "pixels", readFile(t, dst))
	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	assert.ErrorIs(t, copyFile(src, dst), fs.ErrExist, "copy must not clobber")
	assert.Error(t, copyFile(dir, filepath.Join(dir, "dircopy")))
	assert.NoFileExists(t, filepath.Join(dir, "dircopy"))
}
