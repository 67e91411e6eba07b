// Package history is the undo/redo engine. It records applied operations
// together with the pointer position they were applied at, and reverses or
// replays their filesystem effect while repositioning the navigator.
package history

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/brettbedarf/picsort"
	"github.com/brettbedarf/picsort/internal/util"
	"github.com/brettbedarf/picsort/navigator"
)

type record struct {
	op      picsort.Operation
	pointer int // navigator position before op was applied
}

// Log holds the undoable and redoable stacks. Pushing a fresh operation
// clears the redoable stack. Not safe for concurrent use.
type Log struct {
	fs       picsort.Filesystem
	nav      *navigator.Navigator
	undoable []record
	redoable []record
	logger   util.Logger
}

func New(fsys picsort.Filesystem, nav *navigator.Navigator) *Log {
	return &Log{
		fs:     fsys,
		nav:    nav,
		logger: util.GetLogger("History"),
	}
}

// Push records op, applied with the pointer at pointerBefore
func (l *Log) Push(op picsort.Operation, pointerBefore int) {
	l.undoable = append(l.undoable, record{op: op, pointer: pointerBefore})
	if len(l.redoable) > 0 {
		l.logger.Debug().Int("dropped", len(l.redoable)).Msg("New operation cleared redo history")
	}
	l.redoable = nil
	l.logger.Trace().Str("op", op.String()).Int("pointer", pointerBefore).Msg("Recorded operation")
}

func (l *Log) UndoDepth() int { return len(l.undoable) }
func (l *Log) RedoDepth() int { return len(l.redoable) }

// Clear drops both stacks. Held files become unreferenced.
func (l *Log) Clear() {
	l.undoable = nil
	l.redoable = nil
	l.logger.Debug().Msg("Cleared history")
}

// Referenced reports whether a future undo or redo could need the held file
// at path
func (l *Log) Referenced(path string) bool {
	for _, stack := range [][]record{l.undoable, l.redoable} {
		for _, r := range stack {
			if r.op.Action == picsort.ActionDelete && r.op.To == path {
				return true
			}
		}
	}
	return false
}

// Undo reverses the most recent operation and restores the pointer to where
// it was before that operation. On failure both stacks, the navigator and
// the filesystem are left as they were.
func (l *Log) Undo() (picsort.Operation, error) {
	if len(l.undoable) == 0 {
		return picsort.Operation{}, &picsort.UndoError{Kind: picsort.ErrNothingToUndo}
	}
	rec := l.undoable[len(l.undoable)-1]
	op := rec.op
	fail := func(kind, err error) (picsort.Operation, error) {
		l.logger.Warn().Err(err).Str("op", op.String()).Msg("Undo failed")
		return picsort.Operation{}, &picsort.UndoError{Op: &op, Kind: kind, Err: err}
	}

	if op.Moves() {
		if kind, err := l.checkRelocation(op.To, op.From); err != nil {
			return fail(kind, err)
		}
		created, err := l.makeParents(filepath.Dir(op.From))
		if err != nil {
			return fail(picsort.ErrFilesystemIO, err)
		}
		if err := l.fs.Move(op.To, op.From); err != nil {
			l.removeDirs(created)
			return fail(moveErrKind(err), err)
		}
		// a reload after the move may have picked the file up at its new path
		if j, ok := l.dropEntry(op.To); ok && j < rec.pointer {
			rec.pointer--
		}
		if i := l.nav.IndexOf(op.Entry.Path); i >= 0 {
			rec.pointer = i
		} else {
			rec.pointer = min(rec.pointer, l.nav.Len())
			// index is in range, Insert cannot fail
			_ = l.nav.Insert(rec.pointer, op.Entry)
		}
	} else if i := l.nav.IndexOf(op.Entry.Path); i >= 0 {
		rec.pointer = i
	} else {
		return fail(picsort.ErrReversalConflict, fmt.Errorf("%s is no longer in the working set", op.Entry.Path))
	}
	_ = l.nav.Seek(rec.pointer)

	l.undoable = l.undoable[:len(l.undoable)-1]
	l.redoable = append(l.redoable, rec)
	l.logger.Info().Str("op", op.String()).Int("pointer", rec.pointer).Msg("Undid operation")
	return op, nil
}

// Redo replays the most recently undone operation and moves the pointer
// past it: the entry is removed for a move or delete, the pointer advances
// for a skip.
func (l *Log) Redo() (picsort.Operation, error) {
	if len(l.redoable) == 0 {
		return picsort.Operation{}, &picsort.RedoError{Kind: picsort.ErrNothingToRedo}
	}
	rec := l.redoable[len(l.redoable)-1]
	op := rec.op
	fail := func(kind, err error) (picsort.Operation, error) {
		l.logger.Warn().Err(err).Str("op", op.String()).Msg("Redo failed")
		return picsort.Operation{}, &picsort.RedoError{Op: &op, Kind: kind, Err: err}
	}

	i := l.nav.IndexOf(op.Entry.Path)
	if i < 0 {
		return fail(picsort.ErrReversalConflict, fmt.Errorf("%s is no longer in the working set", op.Entry.Path))
	}

	if op.Moves() {
		if kind, err := l.checkRelocation(op.From, op.To); err != nil {
			return fail(kind, err)
		}
		if err := l.fs.Move(op.From, op.To); err != nil {
			return fail(moveErrKind(err), err)
		}
		if j, ok := l.dropEntry(op.To); ok && j < i {
			i--
		}
		_ = l.nav.Seek(i)
		l.nav.RemoveCurrent()
	} else {
		_ = l.nav.Seek(i)
		l.nav.Advance()
	}
	rec.pointer = i

	l.redoable = l.redoable[:len(l.redoable)-1]
	l.undoable = append(l.undoable, rec)
	l.logger.Info().Str("op", op.String()).Int("pointer", rec.pointer).Msg("Redid operation")
	return op, nil
}

// checkRelocation verifies that src is present and dst is free before a
// reversal moves src to dst
func (l *Log) checkRelocation(src, dst string) (kind, err error) {
	ok, err := l.fs.Exists(src)
	if err != nil {
		return picsort.ErrFilesystemIO, err
	}
	if !ok {
		return picsort.ErrReversalConflict, fmt.Errorf("%s no longer exists", src)
	}
	ok, err = l.fs.Exists(dst)
	if err != nil {
		return picsort.ErrFilesystemIO, err
	}
	if ok {
		return picsort.ErrReversalConflict, fmt.Errorf("%s is occupied", dst)
	}
	return nil, nil
}

// makeParents creates dir and any missing parents. It returns the
// directories it created, deepest first.
func (l *Log) makeParents(dir string) ([]string, error) {
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		ok, err := l.fs.Exists(d)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		missing = append(missing, d)
		if filepath.Dir(d) == d {
			break
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	if err := l.fs.MkdirAll(dir); err != nil {
		return nil, err
	}
	l.logger.Debug().Str("dir", dir).Int("created", len(missing)).Msg("Recreated original folder")
	return missing, nil
}

// removeDirs removes directories made by makeParents, deepest first
func (l *Log) removeDirs(dirs []string) {
	for _, d := range dirs {
		if err := l.fs.Remove(d); err != nil {
			l.logger.Warn().Err(err).Str("dir", d).Msg("Could not remove recreated folder")
			return
		}
	}
}

// dropEntry removes the working set entry at path, if any, and returns the
// index it had
func (l *Log) dropEntry(path string) (int, bool) {
	j := l.nav.IndexOf(path)
	if j < 0 {
		return -1, false
	}
	l.nav.Remove(j)
	l.logger.Debug().Str("path", path).Int("index", j).Msg("Dropped entry for relocated file")
	return j, true
}

func moveErrKind(err error) error {
	if errors.Is(err, fs.ErrExist) || errors.Is(err, fs.ErrNotExist) {
		return picsort.ErrReversalConflict
	}
	return picsort.ErrFilesystemIO
}
