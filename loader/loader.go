// Package loader discovers candidate image files and folders below a set of
// root directories using a bounded pool of directory readers.
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/brettbedarf/picsort"
	"github.com/brettbedarf/picsort/capture"
	"github.com/brettbedarf/picsort/config"
	"github.com/brettbedarf/picsort/internal/util"
	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/errgroup"
)

// Mode selects which views of the scan are collected
type Mode int

const (
	ScanAll Mode = iota
	ScanFolders
	ScanFiles
)

// Options configure a [Scanner]. Use [OptionsFromConfig] for the usual values.
type Options struct {
	Workers       int                    // Max directories read concurrently; <1 means 1
	Depth         int                    // Directory levels to read below each root; <1 is unlimited
	IncludeHidden bool                   // Scan dot files and descend into dot directories
	IsImage       func(name string) bool // Filter for files; nil accepts every file
	Exclude       []string               // Directories never reported nor descended into
	Order         config.Order           // Order of Result.Files
}

// OptionsFromConfig builds scan options from the session config.
// The holding directory is always excluded.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Workers:       cfg.ScanWorkers,
		Depth:         cfg.ScanDepth,
		IncludeHidden: cfg.IncludeHidden,
		IsImage:       cfg.IsImage,
		Exclude:       []string{cfg.HoldingDir},
		Order:         cfg.Order,
	}
}

// ScanError is an entry that could not be read. Scanning continues past it.
type ScanError struct {
	Path string
	Err  error
}

func (e ScanError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Result of a scan. Folders and Files are deduplicated by canonical path.
type Result struct {
	Roots   []string // canonical root directories
	Folders []picsort.PathEntry
	Files   []picsort.PathEntry
	Skipped []ScanError
}

type Scanner struct {
	opts    Options
	exclude map[string]bool
	logger  util.Logger
}

func New(opts Options) *Scanner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	exclude := make(map[string]bool, len(opts.Exclude))
	for _, p := range opts.Exclude {
		if p == "" {
			continue
		}
		// excluded dirs may not exist yet; fall back to the absolute form
		canon, _ := picsort.CanonicalPath(p)
		exclude[canon] = true
	}
	return &Scanner{opts: opts, exclude: exclude, logger: util.GetLogger("Loader")}
}

// listing is the outcome of reading one directory
type listing struct {
	dir     string
	folders []picsort.PathEntry
	files   []picsort.PathEntry
	skipped []ScanError
}

// Scan reads every root and returns the merged result. Roots are expanded
// (~, env vars) and must resolve to existing directories, otherwise a
// *picsort.PathError is returned before anything is read. Unreadable entries
// below the roots are reported in Result.Skipped. The only other error is
// ctx's when the scan is cancelled.
func (s *Scanner) Scan(ctx context.Context, roots []string, mode Mode) (*Result, error) {
	canonRoots, err := ResolveDirs(roots)
	if err != nil {
		return nil, err
	}

	visited := xsync.NewMap[string, struct{}]()
	res := &Result{Roots: canonRoots}
	seen := make(map[string]bool)

	frontier := canonRoots
	for level := 0; len(frontier) > 0; level++ {
		listings := make([]*listing, len(frontier))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.opts.Workers)
		for i, dir := range frontier {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				if _, dup := visited.LoadOrStore(dir, struct{}{}); dup {
					return nil
				}
				listings[i] = s.readDir(dir)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// merge in frontier order so results do not depend on scheduling
		var next []string
		for _, l := range listings {
			if l == nil {
				continue
			}
			res.Skipped = append(res.Skipped, l.skipped...)
			for _, f := range l.folders {
				if s.descend(level + 1) {
					next = append(next, f.Path)
				}
				if mode != ScanFiles && !seen[f.Path] {
					seen[f.Path] = true
					res.Folders = append(res.Folders, f)
				}
			}
			if mode == ScanFolders {
				continue
			}
			for _, f := range l.files {
				if !seen[f.Path] {
					seen[f.Path] = true
					res.Files = append(res.Files, f)
				}
			}
		}
		frontier = next
	}

	sortEntries(res.Folders)
	if s.opts.Order == config.OrderCaptureTime {
		capture.SortFiles(res.Files)
	} else {
		sortEntries(res.Files)
	}

	s.logger.Info().
		Strs("roots", canonRoots).
		Int("folders", len(res.Folders)).
		Int("files", len(res.Files)).
		Int("skipped", len(res.Skipped)).
		Msg("Scan complete")
	return res, nil
}

// descend reports whether directories found at level should be read
func (s *Scanner) descend(level int) bool {
	return s.opts.Depth < 1 || level < s.opts.Depth
}

func (s *Scanner) readDir(dir string) *listing {
	l := &listing{dir: dir}
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn().Err(err).Str("dir", dir).Msg("Skipping unreadable directory")
		l.skipped = append(l.skipped, ScanError{Path: dir, Err: err})
		// ReadDir may still return the entries read before the failure
	}

	for _, de := range entries {
		name := de.Name()
		if !s.opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		isDir, canon, err := s.classify(path, de)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable entry")
			l.skipped = append(l.skipped, ScanError{Path: path, Err: err})
			continue
		}
		switch {
		case isDir:
			if s.exclude[canon] {
				s.logger.Debug().Str("dir", canon).Msg("Skipping excluded directory")
				continue
			}
			l.folders = append(l.folders, picsort.NewFolder(canon))
		case s.opts.IsImage == nil || s.opts.IsImage(name):
			l.files = append(l.files, picsort.NewFile(canon))
		}
	}
	s.logger.Trace().Str("dir", dir).Int("folders", len(l.folders)).Int("files", len(l.files)).Msg("Read directory")
	return l
}

// classify resolves symlinks so that identity is always the link target
func (s *Scanner) classify(path string, de fs.DirEntry) (isDir bool, canon string, err error) {
	if de.Type()&fs.ModeSymlink == 0 {
		if !de.IsDir() && !de.Type().IsRegular() {
			return false, "", fmt.Errorf("unsupported file type %s", de.Type())
		}
		return de.IsDir(), path, nil
	}
	canon, err = filepath.EvalSymlinks(path)
	if err != nil {
		return false, "", err
	}
	info, err := os.Stat(canon)
	if err != nil {
		return false, "", err
	}
	return info.IsDir(), canon, nil
}

// ResolveDirs expands and canonicalizes each path, failing with a
// *picsort.PathError on the first one that is not an existing directory.
// Duplicates are dropped.
func ResolveDirs(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		dir, err := ResolveDir(p)
		if err != nil {
			return nil, err
		}
		if !seen[dir] {
			seen[dir] = true
			out = append(out, dir)
		}
	}
	return out, nil
}

// ResolveDir expands ~ and env vars in p and returns its canonical path,
// which must be an existing directory
func ResolveDir(p string) (string, error) {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		return "", &picsort.PathError{Path: p, Err: fmt.Errorf("empty path")}
	}
	expanded, err := util.ExpandPath(trimmed)
	if err != nil {
		return "", &picsort.PathError{Path: p, Err: err}
	}
	canon, err := picsort.CanonicalPath(expanded)
	if err != nil {
		return "", &picsort.PathError{Path: p, Err: err}
	}
	info, err := os.Stat(canon)
	if err != nil {
		return "", &picsort.PathError{Path: p, Err: err}
	}
	if !info.IsDir() {
		return "", &picsort.PathError{Path: p, Err: fmt.Errorf("not a directory")}
	}
	return canon, nil
}

func sortEntries(entries []picsort.PathEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
}
