package util

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// Pointer simply returns a pointer to the supplied value
func Pointer[T any](v T) *T {
	return &v
}

// ExpandPath expands a leading ~ and environment variables, then cleans the result.
// It does not touch the filesystem.
func ExpandPath(p string) (string, error) {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return p, err
	}
	return filepath.Clean(os.ExpandEnv(expanded)), nil
}
