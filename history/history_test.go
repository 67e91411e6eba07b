package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brettbedarf/picsort"
	"github.com/brettbedarf/picsort/executor"
	"github.com/brettbedarf/picsort/holding"
	"github.com/brettbedarf/picsort/internal/mocks"
	"github.com/brettbedarf/picsort/localfs"
	"github.com/brettbedarf/picsort/navigator"
	"github.com/brettbedarf/picsort/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// engine wires the real components over a temp dir so tests can drive
// action, transition and undo/redo the way a session does
type engine struct {
	nav  *navigator.Navigator
	exec *executor.Executor
	log  *Log
	area *holding.Area
	src  string
	dest string
}

func newEngine(t *testing.T, names ...string) *engine {
	t.Helper()
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	e := &engine{src: filepath.Join(base, "src"), dest: filepath.Join(base, "dest")}
	require.NoError(t, os.Mkdir(e.src, 0o755))
	require.NoError(t, os.Mkdir(e.dest, 0o755))

	var files []picsort.PathEntry
	for _, n := range names {
		p := filepath.Join(e.src, n)
		require.NoError(t, os.WriteFile(p, []byte(n), 0o644))
		files = append(files, picsort.NewFile(p))
	}
	fsys := localfs.New()
	reg := registry.New()
	_, err = reg.Add(e.dest)
	require.NoError(t, err)
	e.area, err = holding.New(filepath.Join(base, "holding"), fsys)
	require.NoError(t, err)
	e.nav = navigator.New(files)
	e.exec = executor.New(fsys, e.area, e.nav, reg)
	e.log = New(fsys, e.nav)
	return e
}

// act applies action to the current entry, records it, and applies the
// matching pointer transition
func (e *engine) act(t *testing.T, action picsort.Action) picsort.Operation {
	t.Helper()
	cur, ok := e.nav.Current()
	require.True(t, ok)
	pos := e.nav.Position()
	op, err := e.exec.Execute(action, cur, e.dest)
	require.NoError(t, err)
	e.log.Push(op, pos)
	if op.Moves() {
		e.nav.RemoveCurrent()
	} else {
		e.nav.Advance()
	}
	return op
}

func (e *engine) path(name string) string { return filepath.Join(e.src, name) }

func (e *engine) names() []string {
	var out []string
	for _, f := range e.nav.Entries() {
		out = append(out, f.Name())
	}
	return out
}

func TestUndoRedo_MoveThenSkipScenario(t *testing.T) {
	t.Parallel()

	e := newEngine(t, "a.jpg", "b.jpg")

	e.act(t, picsort.ActionMove)
	e.act(t, picsort.ActionSkip)

	assert.Equal(t, []string{"b.jpg"}, e.names())
	assert.True(t, e.nav.AtEnd())
	assert.FileExists(t, filepath.Join(e.dest, "a.jpg"))

	op, err := e.log.Undo()
	require.NoError(t, err)
	assert.Equal(t, picsort.ActionSkip, op.Action)
	cur, ok := e.nav.Current()
	require.True(t, ok)
	assert.Equal(t, e.path("b.jpg"), cur.Path)
	assert.Equal(t, 0, e.nav.Position())

	op, err = e.log.Undo()
	require.NoError(t, err)
	assert.Equal(t, picsort.ActionMove, op.Action)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, e.names())
	assert.Equal(t, 0, e.nav.Position())
	assert.FileExists(t, e.path("a.jpg"))
	assert.NoFileExists(t, filepath.Join(e.dest, "a.jpg"))

	_, err = e.log.Undo()
	assert.ErrorIs(t, err, picsort.ErrNothingToUndo)
	assert.Equal(t, 2, e.log.RedoDepth())

	// replay both
	_, err = e.log.Redo()
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jpg"}, e.names())
	assert.Equal(t, 0, e.nav.Position())
	assert.FileExists(t, filepath.Join(e.dest, "a.jpg"))

	_, err = e.log.Redo()
	require.NoError(t, err)
	assert.True(t, e.nav.AtEnd())

	_, err = e.log.Redo()
	assert.ErrorIs(t, err, picsort.ErrNothingToRedo)
	assert.Equal(t, 2, e.log.UndoDepth())
}

func TestUndo_RestoresPointerMidList(t *testing.T) {
	t.Parallel()

	e := newEngine(t, "a.jpg", "b.jpg", "c.jpg")
	e.act(t, picsort.ActionSkip)
	e.act(t, picsort.ActionDelete)

	assert.Equal(t, []string{"a.jpg", "c.jpg"}, e.names())
	assert.Equal(t, 1, e.nav.Position())

	_, err := e.log.Undo()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, e.names())
	assert.Equal(t, 1, e.nav.Position())
	content, err := os.ReadFile(e.path("b.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "b.jpg", string(content))
}

func TestUndo_DeleteRepeatedly(t *testing.T) {
	t.Parallel()

	e := newEngine(t, "a.jpg")
	for range 5 {
		e.act(t, picsort.ActionDelete)
		assert.NoFileExists(t, e.path("a.jpg"))
		_, err := e.log.Undo()
		require.NoError(t, err)
		assert.FileExists(t, e.path("a.jpg"))
	}
	held, err := e.area.List()
	require.NoError(t, err)
	assert.Empty(t, held)
}

func TestUndo_DeleteAfterPurge(t *testing.T) {
	t.Parallel()

	e := newEngine(t, "a.jpg", "b.jpg")
	op := e.act(t, picsort.ActionDelete)
	assert.True(t, e.log.Referenced(op.To))

	n, err := e.area.Purge(e.log.Referenced)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "referenced entries survive a purge")

	_, err = e.area.Purge(nil)
	require.NoError(t, err)

	_, err = e.log.Undo()
	var undoErr *picsort.UndoError
	require.ErrorAs(t, err, &undoErr)
	assert.ErrorIs(t, err, picsort.ErrReversalConflict)
	assert.Equal(t, op, *undoErr.Op)
	// nothing changed
	assert.Equal(t, 1, e.log.UndoDepth())
	assert.Equal(t, []string{"b.jpg"}, e.names())
	assert.NoFileExists(t, e.path("a.jpg"))
}

func TestUndo_OriginalPathOccupied(t *testing.T) {
	t.Parallel()

	e := newEngine(t, "a.jpg")
	op := e.act(t, picsort.ActionMove)
	require.NoError(t, os.WriteFile(e.path("a.jpg"), []byte("intruder"), 0o644))

	_, err := e.log.Undo()

	assert.ErrorIs(t, err, picsort.ErrReversalConflict)
	content, err := os.ReadFile(e.path("a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "intruder", string(content), "unrelated file must not be overwritten")
	assert.FileExists(t, op.To)
	assert.Equal(t, 0, e.nav.Len())
}

func TestRedo_TargetOccupied(t *testing.T) {
	t.Parallel()

	e := newEngine(t, "a.jpg")
	e.act(t, picsort.ActionMove)
	_, err := e.log.Undo()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(e.dest, "a.jpg"), []byte("newcomer"), 0o644))

	_, err = e.log.Redo()

	var redoErr *picsort.RedoError
	require.ErrorAs(t, err, &redoErr)
	assert.ErrorIs(t, err, picsort.ErrReversalConflict)
	assert.Equal(t, 1, e.log.RedoDepth())
	assert.FileExists(t, e.path("a.jpg"))
	assert.Equal(t, []string{"a.jpg"}, e.names())
}

func TestPush_ClearsRedo(t *testing.T) {
	t.Parallel()

	e := newEngine(t, "a.jpg", "b.jpg")
	op := e.act(t, picsort.ActionDelete)
	_, err := e.log.Undo()
	require.NoError(t, err)
	require.Equal(t, 1, e.log.RedoDepth())
	assert.True(t, e.log.Referenced(op.To), "redoable deletes keep their held copy referenced")

	e.act(t, picsort.ActionSkip)

	assert.Equal(t, 0, e.log.RedoDepth())
	assert.False(t, e.log.Referenced(op.To))
	_, err = e.log.Redo()
	assert.ErrorIs(t, err, picsort.ErrNothingToRedo)
}

func TestClear(t *testing.T) {
	t.Parallel()

	e := newEngine(t, "a.jpg", "b.jpg")
	e.act(t, picsort.ActionSkip)
	e.act(t, picsort.ActionSkip)
	_, err := e.log.Undo()
	require.NoError(t, err)

	e.log.Clear()

	assert.Equal(t, 0, e.log.UndoDepth())
	assert.Equal(t, 0, e.log.RedoDepth())
	_, err = e.log.Undo()
	assert.ErrorIs(t, err, picsort.ErrNothingToUndo)
}

func TestUndo_FilesystemErrors(t *testing.T) {
	t.Parallel()

	entry := picsort.NewFile("/photos/a.jpg")
	op := picsort.Operation{
		Action: picsort.ActionMove, Entry: entry,
		From: "/photos/a.jpg", To: "/sorted/a.jpg", Folder: "/sorted",
	}

	t.Run("exists check fails", func(t *testing.T) {
		t.Parallel()
		fsys := &mocks.MockFilesystem{}
		fsys.On("Exists", "/sorted/a.jpg").Return(false, errors.New("io error"))
		l := New(fsys, navigator.New(nil))
		l.Push(op, 0)

		_, err := l.Undo()

		assert.ErrorIs(t, err, picsort.ErrFilesystemIO)
		assert.Equal(t, 1, l.UndoDepth())
		fsys.AssertNotCalled(t, "Move", mock.Anything, mock.Anything)
	})
	t.Run("move fails", func(t *testing.T) {
		t.Parallel()
		fsys := &mocks.MockFilesystem{}
		fsys.On("Exists", "/sorted/a.jpg").Return(true, nil)
		fsys.On("Exists", "/photos/a.jpg").Return(false, nil)
		fsys.On("Exists", "/photos").Return(true, nil)
		fsys.On("Move", "/sorted/a.jpg", "/photos/a.jpg").Return(errors.New("input/output error"))
		nav := navigator.New(nil)
		l := New(fsys, nav)
		l.Push(op, 0)

		_, err := l.Undo()

		assert.ErrorIs(t, err, picsort.ErrFilesystemIO)
		assert.Equal(t, 0, nav.Len())
		fsys.AssertExpectations(t)
		fsys.AssertNotCalled(t, "MkdirAll", mock.Anything)
	})
	t.Run("move fails after recreating the folder", func(t *testing.T) {
		t.Parallel()
		fsys := &mocks.MockFilesystem{}
		fsys.On("Exists", "/sorted/a.jpg").Return(true, nil)
		fsys.On("Exists", "/photos/a.jpg").Return(false, nil)
		fsys.On("Exists", "/photos").Return(false, nil)
		fsys.On("Exists", "/").Return(true, nil)
		fsys.On("MkdirAll", "/photos").Return(nil)
		fsys.On("Move", "/sorted/a.jpg", "/photos/a.jpg").Return(errors.New("input/output error"))
		fsys.On("Remove", "/photos").Return(nil)
		l := New(fsys, navigator.New(nil))
		l.Push(op, 0)

		_, err := l.Undo()

		assert.ErrorIs(t, err, picsort.ErrFilesystemIO)
		assert.Equal(t, 1, l.UndoDepth())
		fsys.AssertExpectations(t)
	})
}

func TestUndo_RecreatesMissingFolders(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	nested := filepath.Join(e.src, "2024", "june")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	p := filepath.Join(nested, "a.jpg")
	require.NoError(t, os.WriteFile(p, []byte("a"), 0o644))
	e.nav.Append(picsort.NewFile(p))
	e.act(t, picsort.ActionMove)
	require.NoError(t, os.RemoveAll(filepath.Join(e.src, "2024")))

	_, err := e.log.Undo()

	require.NoError(t, err)
	assert.FileExists(t, p)
	cur, ok := e.nav.Current()
	require.True(t, ok)
	assert.Equal(t, p, cur.Path)
}

func TestUndo_FailedMoveLeavesNoFolders(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	nested := filepath.Join(e.src, "2024", "june")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	p := filepath.Join(nested, "a.jpg")
	require.NoError(t, os.WriteFile(p, []byte("a"), 0o644))
	e.nav.Append(picsort.NewFile(p))
	op := e.act(t, picsort.ActionMove)
	require.NoError(t, os.RemoveAll(filepath.Join(e.src, "2024")))

	// real lookups and folder changes, but the move itself fails
	fsys := &mocks.MockFilesystem{}
	fsys.On("Move", op.To, p).Return(os.ErrNotExist)
	fsys.On("Exists", mock.Anything).Return(func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}, nil)
	fsys.On("MkdirAll", nested).Return(func(path string) error { return os.MkdirAll(path, 0o755) })
	fsys.On("Remove", mock.Anything).Return(func(path string) error { return os.Remove(path) })
	l := New(fsys, e.nav)
	l.Push(op, 0)

	_, err := l.Undo()

	assert.ErrorIs(t, err, picsort.ErrReversalConflict)
	assert.NoDirExists(t, filepath.Join(e.src, "2024"))
	assert.DirExists(t, e.src)
}

func TestUndoRedo_DropsReloadedEntry(t *testing.T) {
	t.Parallel()

	e := newEngine(t, "a.jpg", "b.jpg")
	op := e.act(t, picsort.ActionMove)
	// a reload of the destination picks the moved file up
	e.nav.Append(picsort.NewFile(op.To))
	require.Equal(t, []string{"b.jpg", "a.jpg"}, e.names())

	_, err := e.log.Undo()
	require.NoError(t, err)

	for _, entry := range e.nav.Entries() {
		assert.FileExists(t, entry.Path)
	}
	assert.Equal(t, -1, e.nav.IndexOf(op.To))
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, e.names())
	cur, _ := e.nav.Current()
	assert.Equal(t, e.path("a.jpg"), cur.Path)

	_, err = e.log.Redo()
	require.NoError(t, err)

	assert.Equal(t, []string{"b.jpg"}, e.names())
	cur, _ = e.nav.Current()
	assert.Equal(t, e.path("b.jpg"), cur.Path)
}
