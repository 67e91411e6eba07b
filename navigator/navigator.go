// Package navigator exposes "the current image" over a working set that
// shrinks as files are moved or deleted.
package navigator

import (
	"fmt"
	"slices"

	"github.com/brettbedarf/picsort"
)

// Navigator owns the working set and the pointer into it.
//
// The pointer is either Positioned(i) with 0 <= i < Len() or End. End is
// stored as pos == Len(); it covers both an empty working set and a pointer
// advanced past the last entry. Appending entries while at End positions the
// pointer on the first new entry.
//
// Not safe for concurrent use.
type Navigator struct {
	files []picsort.PathEntry
	pos   int
}

func New(files []picsort.PathEntry) *Navigator {
	return &Navigator{files: slices.Clone(files)}
}

// Current returns the entry at the pointer; ok is false at End
func (n *Navigator) Current() (entry picsort.PathEntry, ok bool) {
	if n.AtEnd() {
		return picsort.PathEntry{}, false
	}
	return n.files[n.pos], true
}

// AtEnd reports whether there is no current entry
func (n *Navigator) AtEnd() bool {
	return n.pos >= len(n.files)
}

// Position returns the pointer index; equal to Len() at End
func (n *Navigator) Position() int {
	return n.pos
}

// Len returns the size of the working set
func (n *Navigator) Len() int {
	return len(n.files)
}

// Remaining returns the number of entries from the pointer (inclusive) to the end
func (n *Navigator) Remaining() int {
	return len(n.files) - n.pos
}

// Advance moves the pointer to the next entry, reaching End after the last.
// At End it is a no-op.
func (n *Navigator) Advance() {
	if !n.AtEnd() {
		n.pos++
	}
}

// Retreat moves the pointer back one entry; from End it lands on the last
// entry. At index 0, or with an empty working set, it is a no-op.
func (n *Navigator) Retreat() {
	if n.pos > 0 {
		n.pos--
	}
}

// RemoveCurrent drops the entry at the pointer without moving the pointer,
// so the following entry becomes current (or End if it was the last).
// At End it is a no-op and returns false.
func (n *Navigator) RemoveCurrent() (picsort.PathEntry, bool) {
	return n.Remove(n.pos)
}

// Remove drops the entry at index i. An entry before the pointer shifts the
// pointer back so the current entry stays current. Returns false when i is
// out of range.
func (n *Navigator) Remove(i int) (picsort.PathEntry, bool) {
	if i < 0 || i >= len(n.files) {
		return picsort.PathEntry{}, false
	}
	removed := n.files[i]
	n.files = slices.Delete(n.files, i, i+1)
	if i < n.pos {
		n.pos--
	}
	return removed, true
}

// Insert puts entry back at index i (0 <= i <= Len()) shifting later entries
// right. The pointer keeps its index.
func (n *Navigator) Insert(i int, entry picsort.PathEntry) error {
	if i < 0 || i > len(n.files) {
		return fmt.Errorf("insert index %d out of range [0,%d]", i, len(n.files))
	}
	n.files = slices.Insert(n.files, i, entry)
	return nil
}

// Seek sets the pointer to i where 0 <= i <= Len(); i == Len() is End
func (n *Navigator) Seek(i int) error {
	if i < 0 || i > len(n.files) {
		return fmt.Errorf("seek index %d out of range [0,%d]", i, len(n.files))
	}
	n.pos = i
	return nil
}

// Append adds entries to the end of the working set
func (n *Navigator) Append(entries ...picsort.PathEntry) {
	n.files = append(n.files, entries...)
}

// IndexOf returns the index of the entry with path, or -1
func (n *Navigator) IndexOf(path string) int {
	return slices.IndexFunc(n.files, func(e picsort.PathEntry) bool { return e.Path == path })
}

// Entries returns a copy of the working set
func (n *Navigator) Entries() []picsort.PathEntry {
	return slices.Clone(n.files)
}

var _ picsort.Cursor = (*Navigator)(nil)
