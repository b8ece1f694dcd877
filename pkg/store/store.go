// Package store owns the task list and its undo/redo history.
package store

import (
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/harrisonrobin/tasklist/pkg/task"
)

// ChangeKind describes what happened to a task in the collection.
type ChangeKind int

const (
	Inserted ChangeKind = iota
	Updated
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Change is delivered to listeners after every collection change.
type Change struct {
	Kind ChangeKind
	Task task.Task
}

// Listener observes store changes. Calls are synchronous.
type Listener interface {
	TaskChanged(Change)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Change)

func (f ListenerFunc) TaskChanged(c Change) { f(c) }

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the activity logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMode selects the history mode. The default is ModeLegacy.
func WithMode(m Mode) Option {
	return func(s *Store) {
		s.mode = m
	}
}

// WithListener registers a change listener.
func WithListener(l Listener) Option {
	return func(s *Store) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

// Store is the in-memory task list. It is not safe for concurrent use.
type Store struct {
	tasks     []*task.Task
	undo      stack
	redo      stack
	mode      Mode
	logger    *slog.Logger
	listeners []Listener
}

// New returns an empty store in legacy history mode unless opts say otherwise.
func New(opts ...Option) *Store {
	s := &Store{
		mode:   ModeLegacy,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the history mode in use.
func (s *Store) Mode() Mode {
	return s.mode
}

// Add appends t to the list. A nil task or one already in the list is ignored.
func (s *Store) Add(t *task.Task) {
	if t == nil || s.indexOf(t) >= 0 {
		return
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.tasks = append(s.tasks, t)
	s.record(entry{action: actionAdded, task: t, index: len(s.tasks) - 1})
	s.logger.Info("Task added", "description", t.Description, "id", t.ID)
	s.notify(Inserted, t)
}

// MarkCompleted completes the first task with the given description.
// Nothing happens when there is no match.
func (s *Store) MarkCompleted(description string) {
	i := s.find(description)
	if i < 0 {
		return
	}
	t := s.tasks[i]
	was := t.Completed
	t.MarkCompleted()
	s.record(entry{action: actionCompleted, task: t, wasCompleted: was, index: i})
	s.logger.Info("Task marked as completed", "description", t.Description, "id", t.ID)
	s.notify(Updated, t)
}

// Delete removes the first task with the given description.
// Nothing happens when there is no match.
func (s *Store) Delete(description string) {
	i := s.find(description)
	if i < 0 {
		return
	}
	t := s.tasks[i]
	s.removeAt(i)
	s.record(entry{action: actionDeleted, task: t, index: i})
	s.logger.Info("Task deleted", "description", t.Description, "id", t.ID)
	s.notify(Removed, t)
}

// Undo reverts the most recent recorded action, if any.
func (s *Store) Undo() {
	e, ok := s.undo.pop()
	if !ok {
		return
	}
	if s.mode == ModeReversible {
		s.undoReversible(e)
	} else if !s.undoLegacy(e) {
		return
	}
	s.redo.push(e)
	s.logger.Info("Undo completed", "action", e.action.String(), "description", e.task.Description)
}

// undoLegacy reports whether the entry should move to the redo stack.
func (s *Store) undoLegacy(e entry) bool {
	if e.action == actionDeleted {
		return false
	}
	if i := s.indexOf(e.task); i >= 0 {
		s.removeAt(i)
		s.notify(Removed, e.task)
	}
	return true
}

func (s *Store) undoReversible(e entry) {
	switch e.action {
	case actionAdded:
		if i := s.indexOf(e.task); i >= 0 {
			s.removeAt(i)
			s.notify(Removed, e.task)
		}
	case actionCompleted:
		e.task.Completed = e.wasCompleted
		s.notify(Updated, e.task)
	case actionDeleted:
		if s.insertAt(e.index, e.task) {
			s.notify(Inserted, e.task)
		}
	}
}

// Redo reapplies the most recently undone action, if any.
func (s *Store) Redo() {
	e, ok := s.redo.pop()
	if !ok {
		return
	}
	if s.mode == ModeReversible {
		s.redoReversible(e)
	} else if s.indexOf(e.task) < 0 {
		s.tasks = append(s.tasks, e.task)
		s.notify(Inserted, e.task)
	}
	s.undo.push(e)
	s.logger.Info("Redo completed", "action", e.action.String(), "description", e.task.Description)
}

func (s *Store) redoReversible(e entry) {
	switch e.action {
	case actionAdded:
		if s.insertAt(e.index, e.task) {
			s.notify(Inserted, e.task)
		}
	case actionCompleted:
		e.task.MarkCompleted()
		s.notify(Updated, e.task)
	case actionDeleted:
		if i := s.indexOf(e.task); i >= 0 {
			s.removeAt(i)
			s.notify(Removed, e.task)
		}
	}
}

// CanUndo reports whether there is anything to undo.
func (s *Store) CanUndo() bool {
	return s.undo.len() > 0
}

// CanRedo reports whether there is anything to redo.
func (s *Store) CanRedo() bool {
	return s.redo.len() > 0
}

// All returns copies of every task in list order.
func (s *Store) All() []task.Task {
	return s.filter(func(task.Task) bool { return true })
}

// Completed returns copies of the completed tasks in list order.
func (s *Store) Completed() []task.Task {
	return s.filter(func(t task.Task) bool { return t.Completed })
}

// Pending returns copies of the pending tasks in list order.
func (s *Store) Pending() []task.Task {
	return s.filter(func(t task.Task) bool { return !t.Completed })
}

// Overdue returns pending tasks whose due day is before now.
func (s *Store) Overdue(now time.Time) []task.Task {
	return s.filter(func(t task.Task) bool { return t.Overdue(now) })
}

// Find returns a copy of the first task with the given description.
func (s *Store) Find(description string) (task.Task, bool) {
	i := s.find(description)
	if i < 0 {
		return task.Task{}, false
	}
	return *s.tasks[i], true
}

func (s *Store) filter(keep func(task.Task) bool) []task.Task {
	out := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if keep(*t) {
			out = append(out, *t)
		}
	}
	return out
}

// record pushes a fresh action. Reversible history forks on every new
// action, so the redo branch is discarded.
func (s *Store) record(e entry) {
	s.undo.push(e)
	if s.mode == ModeReversible {
		s.redo.clear()
	}
}

func (s *Store) find(description string) int {
	return slices.IndexFunc(s.tasks, func(t *task.Task) bool {
		return t.Description == description
	})
}

func (s *Store) indexOf(t *task.Task) int {
	return slices.Index(s.tasks, t)
}

func (s *Store) removeAt(i int) {
	s.tasks = slices.Delete(s.tasks, i, i+1)
}

// insertAt places t at i, clamped to the list bounds. It reports false when
// t is already in the list.
func (s *Store) insertAt(i int, t *task.Task) bool {
	if s.indexOf(t) >= 0 {
		return false
	}
	i = max(0, min(i, len(s.tasks)))
	s.tasks = slices.Insert(s.tasks, i, t)
	return true
}

func (s *Store) notify(kind ChangeKind, t *task.Task) {
	c := Change{Kind: kind, Task: *t}
	for _, l := range s.listeners {
		l.TaskChanged(c)
	}
}
