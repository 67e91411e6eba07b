// Package capture finds when an image was taken so the working set can be
// ordered chronologically.
package capture

import (
	"os"
	"sort"
	"time"

	"github.com/brettbedarf/picsort"
	"github.com/rwcarlsen/goexif/exif"
)

// Source tells where a capture time came from
type Source string

const (
	SourceExif    Source = "exif"
	SourceModTime Source = "mtime"
)

// Time returns the EXIF capture time of the file at path, falling back to
// the file's modification time when the file carries no usable EXIF data.
func Time(path string) (time.Time, Source, error) {
	if t, err := exifTime(path); err == nil {
		return t, SourceExif, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, "", err
	}
	return info.ModTime(), SourceModTime, nil
}

func exifTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, err
	}
	return x.DateTime()
}

// SortFiles orders files by capture time, oldest first. Ties and files whose
// time cannot be read at all keep name order; unreadable files sort last.
func SortFiles(files []picsort.PathEntry) {
	type keyed struct {
		entry picsort.PathEntry
		at    time.Time
		ok    bool
	}
	keys := make([]keyed, len(files))
	for i, f := range files {
		at, _, err := Time(f.Path)
		keys[i] = keyed{entry: f, at: at, ok: err == nil}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.ok != b.ok {
			return a.ok
		}
		if !a.at.Equal(b.at) {
			return a.at.Before(b.at)
		}
		return a.entry.Path < b.entry.Path
	})
	for i, k := range keys {
		files[i] = k.entry
	}
}
