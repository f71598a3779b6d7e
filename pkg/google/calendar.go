package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
)

// CalendarClient reads events from Google Calendar.
type CalendarClient struct {
	srv *calendar.Service
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service) *CalendarClient {
	return &CalendarClient{srv: srv}
}

// Events fetches single-occurrence events in [from, to) from one calendar,
// ordered by start time.
func (c *CalendarClient) Events(ctx context.Context, calendarID string, from, to time.Time) ([]*calendar.Event, error) {
	events, err := c.srv.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar %s: %w", calendarID, err)
	}
	return events.Items, nil
}

// Declined reports whether the current user has declined the event.
func Declined(ev *calendar.Event) bool {
	for _, a := range ev.Attendees {
		if a.Self && a.ResponseStatus == "declined" {
			return true
		}
	}
	return false
}

// EventStart parses the event's start instant. ok is false for all-day
// events, which have a date but no time component.
func EventStart(ev *calendar.Event) (time.Time, bool) {
	if ev.Start == nil || ev.Start.DateTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, ev.Start.DateTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// EventEnd parses the event's end instant, if it has a timed end.
func EventEnd(ev *calendar.Event) (time.Time, bool) {
	if ev.End == nil || ev.End.DateTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, ev.End.DateTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
