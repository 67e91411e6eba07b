package picsort

import (
	"path/filepath"
	"strings"
)

// EntryKind discriminates folders from files. Valid kinds are FolderKind "folder"
// and FileKind "file"
type EntryKind string

const (
	FolderKind EntryKind = "folder"
	FileKind   EntryKind = "file"
)

// PathEntry is a discovered filesystem path. Its identity is the canonical
// path (absolute, symlinks resolved where possible) so two entries are the
// same iff their Path fields are equal.
type PathEntry struct {
	Path string
	Kind EntryKind
}

// NewFile returns a file entry for an already canonical path
func NewFile(path string) PathEntry {
	return PathEntry{Path: path, Kind: FileKind}
}

// NewFolder returns a folder entry for an already canonical path
func NewFolder(path string) PathEntry {
	return PathEntry{Path: path, Kind: FolderKind}
}

func (e PathEntry) IsFile() bool   { return e.Kind == FileKind }
func (e PathEntry) IsFolder() bool { return e.Kind == FolderKind }

// Name returns the last element of the path
func (e PathEntry) Name() string {
	return filepath.Base(e.Path)
}

// Dir returns the directory containing the entry
func (e PathEntry) Dir() string {
	return filepath.Dir(e.Path)
}

func (e PathEntry) String() string {
	return string(e.Kind) + ":" + e.Path
}

// CanonicalPath resolves p to an absolute, cleaned path with symlinks
// evaluated. When the path cannot be evaluated (e.g. it does not exist yet)
// the cleaned absolute form is returned along with the evaluation error.
func CanonicalPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p), err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs, err
	}
	return resolved, nil
}
