// Package pathset holds the deduplicated collection of discovered folders
// and files.
package pathset

import (
	"github.com/brettbedarf/picsort"
	"github.com/puzpuzpuz/xsync/v4"
)

// Set is a set of [picsort.PathEntry] keyed by canonical path. A path is
// stored at most once regardless of kind. Safe for concurrent use.
type Set struct {
	index *xsync.Map[string, picsort.PathEntry] // canonical path -> entry
}

func New() *Set {
	return &Set{index: xsync.NewMap[string, picsort.PathEntry]()}
}

// Add inserts entry unless its path is already known and reports whether it was new
func (s *Set) Add(entry picsort.PathEntry) bool {
	_, loaded := s.index.LoadOrStore(entry.Path, entry)
	return !loaded
}

// AddAll inserts entries in order and returns the ones that were new, in
// the order given
func (s *Set) AddAll(entries []picsort.PathEntry) []picsort.PathEntry {
	added := make([]picsort.PathEntry, 0, len(entries))
	for _, e := range entries {
		if s.Add(e) {
			added = append(added, e)
		}
	}
	return added
}

// Len returns the total number of entries
func (s *Set) Len() int {
	return s.index.Size()
}
