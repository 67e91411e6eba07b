package picsort

import "fmt"

// Action is a user decision about the current image
type Action int

const (
	ActionSkip Action = iota
	ActionMove
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionSkip:
		return "skip"
	case ActionMove:
		return "move"
	case ActionDelete:
		return "delete"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Operation records one applied action with enough information to reverse
// and replay it.
//
//   - Move:   From is the original file path, Folder the destination folder
//     and To the resulting file path inside Folder.
//   - Delete: From is the original file path, To its location in the holding area.
//   - Skip:   only Entry is set; it has no filesystem effect.
type Operation struct {
	Action Action
	Entry  PathEntry // working set entry the action was applied to
	From   string
	To     string
	Folder string
}

// Moves reports whether the operation relocates a file, i.e. whether it
// removes its entry from the working set
func (op Operation) Moves() bool {
	return op.Action == ActionMove || op.Action == ActionDelete
}

func (op Operation) String() string {
	switch op.Action {
	case ActionMove:
		return fmt.Sprintf("move %s -> %s", op.From, op.To)
	case ActionDelete:
		return fmt.Sprintf("delete %s (held at %s)", op.From, op.To)
	default:
		return fmt.Sprintf("skip %s", op.Entry.Path)
	}
}
