package google

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/harrisonrobin/tasklist/pkg/task"
	"google.golang.org/api/calendar/v3"
)

const (
	taskIDProperty  = "tasklist_id"
	eventDateLayout = "2006-01-02"
)

var errNoDueDate = errors.New("task has no due date")

var taskIDRegex = regexp.MustCompile(`ID: ([a-fA-F0-9\-]+)`)

// ConvertTaskToCalendarEvent builds the all-day event mirroring t on its due day.
func ConvertTaskToCalendarEvent(t task.Task, now time.Time) (*calendar.Event, error) {
	if !t.HasDue() {
		return nil, fmt.Errorf("%w: %s", errNoDueDate, t.ID)
	}

	prefix := ""
	if t.Completed {
		prefix = "✓"
	} else if t.Overdue(now) {
		prefix = "!"
	}

	summary := t.Description
	if prefix != "" {
		summary = fmt.Sprintf("%s %s", prefix, t.Description)
	}

	var desc strings.Builder
	fmt.Fprintf(&desc, "Status: %s\n", t.Status())
	fmt.Fprintf(&desc, "Due: %s\n", t.Due.Format(task.DateLayout))
	fmt.Fprintf(&desc, "ID: %s\n", t.ID)

	return &calendar.Event{
		Summary:     summary,
		Description: desc.String(),
		Start: &calendar.EventDateTime{
			Date: t.Due.Format(eventDateLayout),
		},
		End: &calendar.EventDateTime{
			Date: t.Due.AddDate(0, 0, 1).Format(eventDateLayout),
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				taskIDProperty: t.ID,
			},
		},
	}, nil
}

// EventNeedsUpdate returns a patch holding the fields of target that differ
// from existing, or nil when they match.
func EventNeedsUpdate(existing, target *calendar.Event) *calendar.Event {
	patch := &calendar.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if eventDate(existing.Start) != eventDate(target.Start) || eventDate(existing.End) != eventDate(target.End) {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch
	}
	return nil
}

func eventDate(dt *calendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	return dt.Date
}

// TaskIDFromEvent returns the task ID an event mirrors, looking at the
// private extended property first and the description second.
func TaskIDFromEvent(ev *calendar.Event) (string, bool) {
	if ev == nil {
		return "", false
	}
	if ev.ExtendedProperties != nil {
		if id, ok := ev.ExtendedProperties.Private[taskIDProperty]; ok && id != "" {
			return id, true
		}
	}
	if m := taskIDRegex.FindStringSubmatch(ev.Description); len(m) > 1 {
		return m[1], true
	}
	return "", false
}
