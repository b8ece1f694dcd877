package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the DD-MM-YYYY layout used to render due dates.
const DateLayout = "02-01-2006"

// inputLayout also accepts single-digit days and months, as in 5-3-2030.
const inputLayout = "2-1-2006"

const (
	StatusCompleted = "Completed"
	StatusPending   = "Pending"
)

// ErrInvalidDate is returned by ParseDue when the text is not a DD-MM-YYYY date.
var ErrInvalidDate = errors.New("invalid date format")

// Task is a single to-do item.
type Task struct {
	ID          string
	Description string
	Due         time.Time // zero when the task has no due date
	Completed   bool
}

// Option configures a Task built with New.
type Option func(*Task)

// WithDue sets the due date. Only the calendar day is kept.
func WithDue(due time.Time) Option {
	return func(t *Task) {
		t.Due = dateOnly(due)
	}
}

// WithCompleted sets the initial completion status.
func WithCompleted(completed bool) Option {
	return func(t *Task) {
		t.Completed = completed
	}
}

// WithID overrides the generated identifier.
func WithID(id string) Option {
	return func(t *Task) {
		t.ID = id
	}
}

// New builds a pending task with a fresh identifier.
func New(description string, opts ...Option) *Task {
	t := &Task{
		ID:          uuid.NewString(),
		Description: description,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// MarkCompleted sets the task's status to completed.
func (t *Task) MarkCompleted() {
	t.Completed = true
}

// MarkPending sets the task's status back to pending.
func (t *Task) MarkPending() {
	t.Completed = false
}

// HasDue reports whether a due date was set.
func (t Task) HasDue() bool {
	return !t.Due.IsZero()
}

// Status returns "Completed" or "Pending".
func (t Task) Status() string {
	if t.Completed {
		return StatusCompleted
	}
	return StatusPending
}

// Overdue reports whether a pending task's due day is before the day of now.
func (t Task) Overdue(now time.Time) bool {
	if t.Completed || !t.HasDue() {
		return false
	}
	return t.Due.Before(dateOnly(now))
}

// String renders "<description> - <status>[, Due: DD-MM-YYYY]".
func (t Task) String() string {
	var b strings.Builder
	b.WriteString(t.Description)
	b.WriteString(" - ")
	b.WriteString(t.Status())
	if t.HasDue() {
		b.WriteString(", Due: ")
		b.WriteString(t.Due.Format(DateLayout))
	}
	return b.String()
}

// ParseDue parses a DD-MM-YYYY date. Day and month may have one or two
// digits. Blank input means no due date and returns the zero time.
func ParseDue(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(inputLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
