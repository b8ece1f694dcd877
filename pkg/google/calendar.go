package google

import (
	"context"
	"fmt"
	"time"

	"github.com/harrisonrobin/tasklist/pkg/index"
	"github.com/harrisonrobin/tasklist/pkg/task"
	"google.golang.org/api/calendar/v3"
)

// CalendarClient is a Google Calendar API client.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
	now        func() time.Time
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, calendarID string, idx *index.EventIndex) *CalendarClient {
	if idx == nil {
		idx = index.NewEventIndex()
	}
	return &CalendarClient{srv: srv, calendarID: calendarID, index: idx, now: time.Now}
}

// SyncEvent creates the event mirroring t or patches the existing one.
func (c *CalendarClient) SyncEvent(ctx context.Context, t task.Task) (*calendar.Event, error) {
	event, err := ConvertTaskToCalendarEvent(t, c.now())
	if err != nil {
		return nil, err
	}

	var existingEvent *calendar.Event
	// 1. Try local index first
	if eventID := c.index.Get(t.ID); eventID != "" {
		existingEvent, err = c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
		if err != nil {
			existingEvent = nil
		}
	}

	// 2. Fallback to API search
	if existingEvent == nil {
		existingEvent, err = c.GetEventByTaskID(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("error searching for event: %w", err)
		}
	}

	if existingEvent != nil {
		c.index.Set(t.ID, existingEvent.Id)
		patch := EventNeedsUpdate(existingEvent, event)
		if patch == nil {
			return existingEvent, nil
		}
		return c.PatchEvent(ctx, existingEvent.Id, patch)
	}

	createdEvent, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("error creating event: %w", err)
	}
	c.index.Set(t.ID, createdEvent.Id)
	return createdEvent, nil
}

// RemoveTask deletes the event mirroring taskID, if there is one.
func (c *CalendarClient) RemoveTask(ctx context.Context, taskID string) error {
	eventID := c.index.Remove(taskID)
	if eventID == "" {
		event, err := c.GetEventByTaskID(ctx, taskID)
		if err != nil {
			return fmt.Errorf("error searching for event: %w", err)
		}
		if event == nil {
			return nil
		}
		eventID = event.Id
	}
	return c.DeleteEvent(ctx, eventID)
}

// PatchEvent performs a partial update on an event.
func (c *CalendarClient) PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return c.srv.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
}

// DeleteEvent deletes an event from the calendar.
func (c *CalendarClient) DeleteEvent(ctx context.Context, eventID string) error {
	return c.srv.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
}

// GetEventByTaskID searches for the event carrying taskID in its private
// extended properties.
func (c *CalendarClient) GetEventByTaskID(ctx context.Context, taskID string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", taskIDProperty, taskID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	for _, item := range events.Items {
		if id, ok := TaskIDFromEvent(item); ok && id == taskID {
			return item, nil
		}
	}
	return nil, nil
}
