package store

import (
	"fmt"

	"github.com/harrisonrobin/tasklist/pkg/task"
)

// Mode selects how undo and redo invert recorded actions.
type Mode string

const (
	// ModeLegacy keeps the classic list manager behavior: undoing an add or a
	// completion removes the task, deletes cannot be undone, and redo
	// re-appends at the end.
	ModeLegacy Mode = "legacy"
	// ModeReversible restores the exact prior state for every action.
	ModeReversible Mode = "reversible"
)

// ParseMode validates a mode name from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLegacy, ModeReversible:
		return Mode(s), nil
	case "":
		return ModeLegacy, nil
	}
	return "", fmt.Errorf("unknown history mode %q (want %q or %q)", s, ModeLegacy, ModeReversible)
}

type action int

const (
	actionAdded action = iota
	actionCompleted
	actionDeleted
)

func (a action) String() string {
	switch a {
	case actionAdded:
		return "add"
	case actionCompleted:
		return "complete"
	case actionDeleted:
		return "delete"
	}
	return "unknown"
}

// entry records one mutation. wasCompleted is the flag before a completion;
// index is where the task sat in the list when it was removed or inserted.
type entry struct {
	action       action
	task         *task.Task
	wasCompleted bool
	index        int
}

// stack is a LIFO of history entries.
type stack []entry

func (s *stack) push(e entry) {
	*s = append(*s, e)
}

func (s *stack) pop() (entry, bool) {
	if len(*s) == 0 {
		return entry{}, false
	}
	e := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return e, true
}

func (s *stack) clear() {
	*s = nil
}

func (s stack) len() int {
	return len(s)
}
