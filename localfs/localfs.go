// Package localfs implements picsort.Filesystem on the local OS.
package localfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"

	"github.com/brettbedarf/picsort"
	"github.com/brettbedarf/picsort/internal/util"
)

// FS moves files with rename(2), falling back to copy and remove when source
// and destination are on different devices. Destinations are never overwritten.
type FS struct {
	logger util.Logger
}

func New() *FS {
	return &FS{logger: util.GetLogger("LocalFS")}
}

// Move relocates src to dst. If dst exists the call fails with an error
// matching fs.ErrExist and src is left untouched.
func (l *FS) Move(src, dst string) error {
	err := renameNoReplace(src, dst)
	if err == nil {
		l.logger.Debug().Str("src", src).Str("dst", dst).Msg("Renamed file")
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	l.logger.Debug().Str("src", src).Str("dst", dst).Msg("Cross-device move; copying")
	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		// keep exactly one copy around
		_ = os.Remove(dst)
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

// Exists reports whether anything occupies path. Dangling symlinks count.
func (l *FS) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (l *FS) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return err
	}
	l.logger.Debug().Str("path", path).Msg("Removed")
	return nil
}

func (l *FS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

// renameChecked is the portable no-replace rename: check then rename.
// Racy against other writers but the engine assumes a single caller.
func renameChecked(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(src, dst)
}

// copyFile copies src to a new file dst, keeping mode and modification time
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("copy %s: not a regular file", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			out.Close()
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	if err = out.Sync(); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

var _ picsort.Filesystem = (*FS)(nil)
