// Package registry keeps the destination folders the user may move images into.
package registry

import (
	"sync"

	"github.com/brettbedarf/picsort"
	"github.com/brettbedarf/picsort/internal/util"
	"github.com/brettbedarf/picsort/loader"
)

// Registry is an insertion ordered set of destination folders keyed by
// canonical path. Paths are resolved when added, never at use time.
type Registry struct {
	mu      sync.RWMutex
	folders []picsort.PathEntry
	index   map[string]int // canonical path -> position in folders
	logger  util.Logger
}

func New() *Registry {
	return &Registry{
		index:  make(map[string]int),
		logger: util.GetLogger("Registry"),
	}
}

// Add resolves path (~, env vars, symlinks) and inserts it. Adding a folder
// that is already registered is a no-op. Fails with a *picsort.PathError if
// path does not resolve to an existing directory.
func (r *Registry) Add(path string) (picsort.PathEntry, error) {
	dir, err := loader.ResolveDir(path)
	if err != nil {
		return picsort.PathEntry{}, err
	}
	entry := picsort.NewFolder(dir)
	if r.insert(entry) {
		r.logger.Debug().Str("folder", dir).Msg("Registered destination")
	}
	return entry, nil
}

// AddEntries inserts already canonical folder entries (e.g. from a scan)
// and returns the ones that were not registered yet. File entries are ignored.
func (r *Registry) AddEntries(entries []picsort.PathEntry) []picsort.PathEntry {
	var added []picsort.PathEntry
	for _, e := range entries {
		if e.IsFolder() && r.insert(e) {
			added = append(added, e)
		}
	}
	return added
}

func (r *Registry) insert(entry picsort.PathEntry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[entry.Path]; ok {
		return false
	}
	r.index[entry.Path] = len(r.folders)
	r.folders = append(r.folders, entry)
	return true
}

// Clear removes every destination
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.folders = nil
	r.index = make(map[string]int)
	r.logger.Debug().Msg("Cleared destinations")
}

// Contains reports whether folder (a canonical path) is registered
func (r *Registry) Contains(folder string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[folder]
	return ok
}

// Get returns the destination at position i
func (r *Registry) Get(i int) (picsort.PathEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.folders) {
		return picsort.PathEntry{}, false
	}
	return r.folders[i], true
}

// List returns a copy of the destinations in insertion order
func (r *Registry) List() []picsort.PathEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]picsort.PathEntry(nil), r.folders...)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.folders)
}

var _ picsort.Destinations = (*Registry)(nil)
