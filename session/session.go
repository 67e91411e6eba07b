// Package session is the surface a front end drives: it wires the loader,
// registry, navigator, executor, history and holding area into one sorting
// session over a set of images.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/brettbedarf/picsort"
	"github.com/brettbedarf/picsort/config"
	"github.com/brettbedarf/picsort/executor"
	"github.com/brettbedarf/picsort/history"
	"github.com/brettbedarf/picsort/holding"
	"github.com/brettbedarf/picsort/internal/util"
	"github.com/brettbedarf/picsort/loader"
	"github.com/brettbedarf/picsort/localfs"
	"github.com/brettbedarf/picsort/metrics"
	"github.com/brettbedarf/picsort/navigator"
	"github.com/brettbedarf/picsort/pathset"
	"github.com/brettbedarf/picsort/registry"
)

// LoadResult lists what a load added: Folders are the destinations it
// registered, Files the images it appended to the working set. Entries that
// were already registered or loaded are not repeated.
type LoadResult struct {
	Folders []picsort.PathEntry
	Files   []picsort.PathEntry
	Skipped []loader.ScanError
}

// Session owns the engine state for one user. It assumes a single caller
// and does no locking; concurrent front ends must serialize their calls.
//
// Every action (MoveCurrent, DeleteCurrent, SkipCurrent) leaves a pending
// pointer transition that the following Advance applies: the entry is
// removed for a move or delete, the pointer steps forward for a skip. Undo,
// Redo and the next action apply a pending transition first.
type Session struct {
	cfg      *config.Config
	fs       picsort.Filesystem
	scanner  *loader.Scanner
	paths    *pathset.Set
	registry *registry.Registry
	nav      *navigator.Navigator
	holding  *holding.Area
	exec     *executor.Executor
	history  *history.Log
	metrics  *metrics.Metrics
	pending  *picsort.Operation
	dir      string
	logger   util.Logger
}

// New creates a session on the local filesystem
func New(cfg *config.Config) (*Session, error) {
	return NewWithFilesystem(cfg, localfs.New())
}

// NewWithFilesystem creates a session whose file operations go through fsys.
// The holding area is created if missing and, when cfg.PurgeOnStart is set,
// emptied of files left over from earlier sessions.
func NewWithFilesystem(cfg *config.Config, fsys picsort.Filesystem) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	area, err := holding.New(cfg.HoldingDir, fsys)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:      cfg,
		fs:       fsys,
		scanner:  loader.New(loader.OptionsFromConfig(cfg)),
		paths:    pathset.New(),
		registry: registry.New(),
		nav:      navigator.New(nil),
		holding:  area,
		metrics:  metrics.New(),
		logger:   util.GetLogger("Session"),
	}
	s.exec = executor.New(fsys, area, s.nav, s.registry)
	s.history = history.New(fsys, s.nav)

	if cfg.PurgeOnStart {
		// history starts empty so every held file is an orphan
		n, err := area.Purge(nil)
		s.metrics.RecordPurge(n)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Could not purge orphaned held files")
		}
	}
	return s, nil
}

// Load scans roots and merges the result into the session: new folders
// become destinations, new files are appended to the working set. History
// is kept. Fails with a *picsort.PathError if any root is not a directory,
// or with ctx's error if cancelled; in both cases nothing is merged.
func (s *Session) Load(ctx context.Context, roots []string) (LoadResult, error) {
	return s.load(ctx, roots, loader.ScanAll)
}

// LoadFolders registers the folders found under root as destinations
// without touching the working set
func (s *Session) LoadFolders(ctx context.Context, root string) (LoadResult, error) {
	return s.load(ctx, []string{root}, loader.ScanFolders)
}

func (s *Session) load(ctx context.Context, roots []string, mode loader.Mode) (LoadResult, error) {
	start := time.Now()
	res, err := s.scanner.Scan(ctx, roots, mode)
	if err != nil {
		return LoadResult{}, err
	}
	s.metrics.RecordScan(len(res.Files), len(res.Skipped), time.Since(start).Seconds())

	// the registry is cleared independently of the path set, so it is fed
	// every scanned folder and dedups on its own
	s.paths.AddAll(res.Folders)
	out := LoadResult{
		Folders: s.registry.AddEntries(res.Folders),
		Files:   s.paths.AddAll(res.Files),
		Skipped: res.Skipped,
	}
	s.nav.Append(out.Files...)
	if mode == loader.ScanAll && len(res.Roots) > 0 {
		s.dir = res.Roots[0]
	}
	s.updateGauges()

	s.logger.Info().
		Int("folders", len(out.Folders)).
		Int("files", len(out.Files)).
		Int("skipped", len(out.Skipped)).
		Int("workingSet", s.nav.Len()).
		Int("known", s.paths.Len()).
		Msg("Loaded")
	return out, nil
}

// AddFolder registers one destination folder. Adding a folder that is
// already registered is a no-op.
func (s *Session) AddFolder(path string) error {
	entry, err := s.registry.Add(path)
	if err != nil {
		return err
	}
	s.paths.Add(entry)
	s.updateGauges()
	return nil
}

func (s *Session) ClearDestinations() {
	s.registry.Clear()
	s.updateGauges()
}

// Destination returns the i-th registered folder, counting from 0
func (s *Session) Destination(i int) (picsort.PathEntry, bool) {
	return s.registry.Get(i)
}

// Destinations returns the registered folders in insertion order
func (s *Session) Destinations() []picsort.PathEntry {
	return s.registry.List()
}

// CurrentImage returns the image under the pointer, ok is false when there
// is none
func (s *Session) CurrentImage() (picsort.PathEntry, bool) {
	return s.nav.Current()
}

// RemainingCount is the number of images from the current one to the end
func (s *Session) RemainingCount() int {
	return s.nav.Remaining()
}

// FileCount is the size of the working set
func (s *Session) FileCount() int {
	return s.nav.Len()
}

// CurrentDirectory is the first root of the most recent Load, or "" before
// any load
func (s *Session) CurrentDirectory() string {
	return s.dir
}

// MoveCurrent moves the current image into destination, which must be a
// registered folder. Fails with a *picsort.ExecError.
func (s *Session) MoveCurrent(destination string) error {
	return s.act(picsort.ActionMove, resolveDestination(destination))
}

// DeleteCurrent moves the current image into the holding area. Fails with a
// *picsort.ExecError.
func (s *Session) DeleteCurrent() error {
	return s.act(picsort.ActionDelete, "")
}

// SkipCurrent records a skip of the current image. Fails with a
// *picsort.ExecError only when there is no current image.
func (s *Session) SkipCurrent() error {
	return s.act(picsort.ActionSkip, "")
}

func (s *Session) act(action picsort.Action, destination string) error {
	s.settle()
	cur, _ := s.nav.Current()
	pos := s.nav.Position()

	op, err := s.exec.Execute(action, cur, destination)
	if err != nil {
		s.metrics.RecordAction(action, kindOf(err))
		return err
	}
	s.metrics.RecordAction(action, nil)
	s.history.Push(op, pos)
	s.pending = &op
	return nil
}

// Advance applies the pending transition of the last action. With nothing
// pending it moves the pointer forward. At the end it is a no-op.
func (s *Session) Advance() {
	if !s.settle() {
		s.nav.Advance()
	}
	s.updateGauges()
}

// settle applies a pending transition and reports whether there was one
func (s *Session) settle() bool {
	if s.pending == nil {
		return false
	}
	if s.pending.Moves() {
		s.nav.RemoveCurrent()
	} else {
		s.nav.Advance()
	}
	s.pending = nil
	return true
}

// Undo reverses the most recent action, restoring the file and the pointer.
// Fails with a *picsort.UndoError.
func (s *Session) Undo() error {
	s.settle()
	_, err := s.history.Undo()
	s.metrics.RecordUndo(kindOf(err))
	s.updateGauges()
	return err
}

// Redo replays the most recently undone action. Fails with a
// *picsort.RedoError.
func (s *Session) Redo() error {
	s.settle()
	_, err := s.history.Redo()
	s.metrics.RecordRedo(kindOf(err))
	s.updateGauges()
	return err
}

func (s *Session) UndoDepth() int { return s.history.UndoDepth() }
func (s *Session) RedoDepth() int { return s.history.RedoDepth() }

// ClearHistory forgets every recorded action. Deleted images held for undo
// become eligible for Purge.
func (s *Session) ClearHistory() {
	s.settle()
	s.history.Clear()
}

// Purge permanently removes held files that no undo or redo can reach and
// returns how many were removed
func (s *Session) Purge() (int, error) {
	n, err := s.holding.Purge(s.history.Referenced)
	s.metrics.RecordPurge(n)
	return n, err
}

// PurgeAll empties the holding area. Undoing a delete whose held file was
// purged fails with picsort.ErrReversalConflict.
func (s *Session) PurgeAll() (int, error) {
	n, err := s.holding.Purge(nil)
	s.metrics.RecordPurge(n)
	return n, err
}

// HoldingDir is the directory deleted images are kept in until purged
func (s *Session) HoldingDir() string {
	return s.holding.Root()
}

// Metrics exposes the session's collectors
func (s *Session) Metrics() *metrics.Metrics {
	return s.metrics
}

// Close applies any pending transition and writes the metrics file if one
// is configured. Held files are kept; history does not outlive the session
// so the next session purges them when configured to.
func (s *Session) Close() error {
	s.settle()
	s.updateGauges()
	if s.cfg.MetricsFile == "" {
		return nil
	}
	if err := s.metrics.WriteTextfile(s.cfg.MetricsFile); err != nil {
		return err
	}
	s.logger.Debug().Str("path", s.cfg.MetricsFile).Msg("Wrote metrics")
	return nil
}

func (s *Session) updateGauges() {
	s.metrics.SetState(s.nav.Len(), s.nav.Remaining(), s.registry.Len())
}

// resolveDestination maps a user supplied folder to the canonical form the
// registry stores. Unresolvable input is passed through and rejected by the
// registry lookup.
func resolveDestination(p string) string {
	if p == "" {
		return ""
	}
	expanded, err := util.ExpandPath(p)
	if err != nil {
		return p
	}
	canon, _ := picsort.CanonicalPath(expanded)
	return canon
}

// kindOf extracts the sentinel kind of an engine error
func kindOf(err error) error {
	if err == nil {
		return nil
	}
	var (
		execErr *picsort.ExecError
		undoErr *picsort.UndoError
		redoErr *picsort.RedoError
	)
	switch {
	case errors.As(err, &execErr):
		return execErr.Kind
	case errors.As(err, &undoErr):
		return undoErr.Kind
	case errors.As(err, &redoErr):
		return redoErr.Kind
	default:
		return picsort.ErrFilesystemIO
	}
}
