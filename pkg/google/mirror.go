package google

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/harrisonrobin/tasklist/pkg/store"
)

const defaultMirrorTimeout = 10 * time.Second

// Mirror keeps due-dated tasks reflected as all-day calendar events.
// Calendar failures are logged and never reach the store.
type Mirror struct {
	client  *CalendarClient
	logger  *slog.Logger
	timeout time.Duration
}

func NewMirror(client *CalendarClient, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Mirror{client: client, logger: logger, timeout: defaultMirrorTimeout}
}

// TaskChanged implements store.Listener.
func (m *Mirror) TaskChanged(c store.Change) {
	if !c.Task.HasDue() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	var err error
	switch c.Kind {
	case store.Inserted, store.Updated:
		_, err = m.client.SyncEvent(ctx, c.Task)
	case store.Removed:
		err = m.client.RemoveTask(ctx, c.Task.ID)
	}
	if err != nil {
		m.logger.Warn("Calendar mirror failed",
			"change", c.Kind.String(),
			"description", c.Task.Description,
			"error", err)
		return
	}
	m.logger.Debug("Calendar mirror updated", "change", c.Kind.String(), "description", c.Task.Description)
}
