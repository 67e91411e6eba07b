package picsort

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the engine matches exactly one of these
// with errors.Is.
var (
	ErrInvalidPath          = errors.New("invalid path")
	ErrNoDestination        = errors.New("no destination")
	ErrDestinationCollision = errors.New("destination collision")
	ErrFilesystemIO         = errors.New("filesystem io")
	ErrNothingToUndo        = errors.New("nothing to undo")
	ErrNothingToRedo        = errors.New("nothing to redo")
	ErrReversalConflict     = errors.New("reversal conflict")
	ErrStaleEntry           = errors.New("stale entry")
	ErrEmptyCollection      = errors.New("empty collection")
)

// PathError is returned by calls that resolve user supplied paths
type PathError struct {
	Path string
	Err  error // underlying cause, may be nil
}

func (e *PathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", ErrInvalidPath, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %q", ErrInvalidPath, e.Path)
}

func (e *PathError) Unwrap() []error { return []error{ErrInvalidPath, e.Err} }

// ExecError is returned when an action cannot be applied to the current entry
type ExecError struct {
	Action Action
	Path   string
	Kind   error
	Err    error
}

func (e *ExecError) Error() string {
	return fmtKind(e.Action.String(), e.Path, e.Kind, e.Err)
}

func (e *ExecError) Unwrap() []error { return []error{e.Kind, e.Err} }

// UndoError is returned when the most recent operation cannot be reversed
type UndoError struct {
	Op   *Operation // nil when there was nothing to undo
	Kind error
	Err  error
}

func (e *UndoError) Error() string {
	return fmtKind("undo", opPath(e.Op), e.Kind, e.Err)
}

func (e *UndoError) Unwrap() []error { return []error{e.Kind, e.Err} }

// RedoError is returned when the most recently undone operation cannot be replayed
type RedoError struct {
	Op   *Operation // nil when there was nothing to redo
	Kind error
	Err  error
}

func (e *RedoError) Error() string {
	return fmtKind("redo", opPath(e.Op), e.Kind, e.Err)
}

func (e *RedoError) Unwrap() []error { return []error{e.Kind, e.Err} }

// PurgeError is returned by holding area maintenance. Purging continues past
// individual failures; Failed lists every entry that could not be removed.
type PurgeError struct {
	Failed []string
	Err    error // first failure
}

func (e *PurgeError) Error() string {
	return fmt.Sprintf("purge: %d holding entries not removed: %v", len(e.Failed), e.Err)
}

func (e *PurgeError) Unwrap() []error { return []error{ErrFilesystemIO, e.Err} }

func fmtKind(op, path string, kind, cause error) string {
	msg := op
	if path != "" {
		msg += " " + path
	}
	msg += ": " + kind.Error()
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return msg
}

func opPath(op *Operation) string {
	if op == nil {
		return ""
	}
	return op.Entry.Path
}
