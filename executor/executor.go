// Package executor applies a user action to the current image
package executor

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/brettbedarf/picsort"
	"github.com/brettbedarf/picsort/internal/util"
)

// Holder parks deleted files somewhere they can be restored from
type Holder interface {
	Put(src string) (heldPath string, err error)
}

// Executor turns (current entry, action, destination) into a filesystem
// effect and the Operation describing it. It holds no state of its own and
// never touches the navigator pointer.
type Executor struct {
	fs     picsort.Filesystem
	holder Holder
	cursor picsort.Cursor
	dests  picsort.Destinations
	logger util.Logger
}

func New(fsys picsort.Filesystem, holder Holder, cursor picsort.Cursor, dests picsort.Destinations) *Executor {
	return &Executor{
		fs:     fsys,
		holder: holder,
		cursor: cursor,
		dests:  dests,
		logger: util.GetLogger("Executor"),
	}
}

// Execute applies action to entry, which must be the cursor's current entry.
// destination is the canonical folder for ActionMove and ignored otherwise.
// Every failure is an *picsort.ExecError; on failure nothing has changed.
func (e *Executor) Execute(action picsort.Action, entry picsort.PathEntry, destination string) (picsort.Operation, error) {
	fail := func(kind, err error) (picsort.Operation, error) {
		e.logger.Debug().Err(err).Str("action", action.String()).Str("path", entry.Path).
			Str("kind", kind.Error()).Msg("Action rejected")
		return picsort.Operation{}, &picsort.ExecError{Action: action, Path: entry.Path, Kind: kind, Err: err}
	}

	cur, ok := e.cursor.Current()
	if !ok {
		return fail(picsort.ErrEmptyCollection, nil)
	}
	if cur != entry {
		return fail(picsort.ErrStaleEntry, nil)
	}

	switch action {
	case picsort.ActionSkip:
		return picsort.Operation{Action: picsort.ActionSkip, Entry: entry}, nil

	case picsort.ActionMove:
		if destination == "" || !e.dests.Contains(destination) {
			return fail(picsort.ErrNoDestination, nil)
		}
		target := filepath.Join(destination, entry.Name())
		exists, err := e.fs.Exists(target)
		if err != nil {
			return fail(picsort.ErrFilesystemIO, err)
		}
		if exists {
			return fail(picsort.ErrDestinationCollision, nil)
		}
		if err := e.fs.Move(entry.Path, target); err != nil {
			if errors.Is(err, fs.ErrExist) {
				return fail(picsort.ErrDestinationCollision, err)
			}
			return fail(picsort.ErrFilesystemIO, err)
		}
		e.logger.Info().Str("from", entry.Path).Str("to", target).Msg("Moved image")
		return picsort.Operation{
			Action: picsort.ActionMove,
			Entry:  entry,
			From:   entry.Path,
			To:     target,
			Folder: destination,
		}, nil

	case picsort.ActionDelete:
		held, err := e.holder.Put(entry.Path)
		if err != nil {
			return fail(picsort.ErrFilesystemIO, err)
		}
		e.logger.Info().Str("path", entry.Path).Str("held", held).Msg("Deleted image")
		return picsort.Operation{
			Action: picsort.ActionDelete,
			Entry:  entry,
			From:   entry.Path,
			To:     held,
		}, nil

	default:
		panic("executor: unknown " + action.String())
	}
}
