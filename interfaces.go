// Package picsort contains the core domain types and interfaces for the picsort
// image curation engine
package picsort

// Filesystem defines the file operations the engine performs on real files.
// The local implementation lives in the localfs package; tests substitute mocks.
type Filesystem interface {
	// Move relocates the file at src to dst. It must fail without touching
	// either path if dst already exists; nothing is ever overwritten.
	Move(src, dst string) error

	// Exists reports whether anything (file, dir or dangling link) occupies path
	Exists(path string) (bool, error)

	// Remove permanently deletes the file or empty directory at path
	Remove(path string) error

	// MkdirAll creates the directory path and any missing parents
	MkdirAll(path string) error
}

// Cursor is the read side of the navigator that the executor needs for
// stale-reference protection
type Cursor interface {
	Current() (PathEntry, bool)
}

// Destinations answers whether a folder is a registered move target
type Destinations interface {
	Contains(folder string) bool
}
