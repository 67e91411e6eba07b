// Package holding manages the directory deleted images are parked in until
// they are purged.
package holding

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/picsort"
	"github.com/brettbedarf/picsort/internal/util"
	"github.com/google/uuid"
)

// Entry is one file in the holding area
type Entry struct {
	ID   string // uuid prefix of the stored name
	Name string // original base name
	Path string // location inside the holding area
}

// Area is a flat directory of held files named "<uuid>_<original name>"
type Area struct {
	root   string
	fs     picsort.Filesystem
	logger util.Logger
}

// New creates the holding directory if needed
func New(root string, fsys picsort.Filesystem) (*Area, error) {
	if root == "" {
		return nil, errors.New("holding area root is empty")
	}
	if err := fsys.MkdirAll(root); err != nil {
		return nil, fmt.Errorf("create holding area %s: %w", root, err)
	}
	a := &Area{
		root:   root,
		fs:     fsys,
		logger: util.GetLogger("Holding"),
	}
	a.logger.Debug().Str("root", root).Msg("Holding area ready")
	return a, nil
}

func (a *Area) Root() string {
	return a.root
}

// Put moves src into the holding area and returns its new path
func (a *Area) Put(src string) (string, error) {
	id := uuid.New().String()
	dst := filepath.Join(a.root, id+"_"+filepath.Base(src))
	if err := a.fs.Move(src, dst); err != nil {
		return "", err
	}
	a.logger.Debug().Str("src", src).Str("held", dst).Msg("Put file in holding area")
	return dst, nil
}

// List returns every held entry. Names that do not carry a uuid prefix are
// not ours and are left out.
func (a *Area) List() ([]Entry, error) {
	dirents, err := os.ReadDir(a.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		e, ok := parseName(d.Name())
		if !ok {
			continue
		}
		e.Path = filepath.Join(a.root, d.Name())
		entries = append(entries, e)
	}
	return entries, nil
}

func parseName(name string) (Entry, bool) {
	id, orig, ok := strings.Cut(name, "_")
	if !ok || orig == "" {
		return Entry{}, false
	}
	if _, err := uuid.Parse(id); err != nil {
		return Entry{}, false
	}
	return Entry{ID: id, Name: orig}, true
}

// Purge permanently removes every held file for which keep returns false
// and returns how many were removed. A nil keep removes everything. Failures
// do not stop the purge; they are collected in a *picsort.PurgeError.
func (a *Area) Purge(keep func(path string) bool) (int, error) {
	entries, err := a.List()
	if err != nil {
		return 0, &picsort.PurgeError{Failed: []string{a.root}, Err: err}
	}

	removed := 0
	var purgeErr *picsort.PurgeError
	for _, e := range entries {
		if keep != nil && keep(e.Path) {
			continue
		}
		if err := a.fs.Remove(e.Path); err != nil {
			a.logger.Warn().Err(err).Str("path", e.Path).Msg("Failed to purge held file")
			if purgeErr == nil {
				purgeErr = &picsort.PurgeError{Err: err}
			}
			purgeErr.Failed = append(purgeErr.Failed, e.Path)
			continue
		}
		removed++
	}
	a.logger.Info().Int("removed", removed).Int("held", len(entries)-removed).Msg("Purged holding area")

	if purgeErr != nil {
		return removed, purgeErr
	}
	return removed, nil
}
