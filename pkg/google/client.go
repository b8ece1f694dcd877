package google

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/tasklist/pkg/auth"
	"github.com/harrisonrobin/tasklist/pkg/index"
	"google.golang.org/api/calendar/v3"
)

// NewClient authenticates with the token cached in credentialsDir and returns
// a client bound to the calendar whose summary is calendarName.
func NewClient(ctx context.Context, credentialsDir, calendarName string, idx *index.EventIndex) (*CalendarClient, error) {
	srv, err := auth.GetCalendarService(ctx, credentialsDir)
	if err != nil {
		return nil, err
	}
	return newClientForService(ctx, srv, calendarName, idx)
}

func newClientForService(ctx context.Context, srv *calendar.Service, calendarName string, idx *index.EventIndex) (*CalendarClient, error) {
	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendar list: %w", err)
	}

	var calendarID string
	for _, item := range calendarList.Items {
		if item.Summary == calendarName {
			calendarID = item.Id
			break
		}
	}

	if calendarID == "" {
		return nil, fmt.Errorf("calendar '%s' not found", calendarName)
	}

	return NewCalendarClient(srv, calendarID, idx), nil
}
