package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/kazhakuttam/bookingbot/internal/schedule"
)

// ErrNotFound indicates the provider has no event for the given identifier.
// Deletes are hard: a cancelled appointment's identifier resolves to this.
var ErrNotFound = errors.New("appointment not found")

// Recorder receives per-operation metrics. Satisfied by
// instrumentation.Metrics; nil disables recording.
type Recorder interface {
	RecordCalendarOperation(ctx context.Context, operation, status string, duration time.Duration)
}

// Client is the appointment store adapter over a single Google calendar.
type Client struct {
	svc        *calendar.Service
	calendarID string
	metrics    Recorder
}

// NewClient creates an adapter backed by the given OAuth2 token source.
// calendarID defaults to "primary".
func NewClient(ctx context.Context, ts oauth2.TokenSource, calendarID string) (*Client, error) {
	if ts == nil {
		return nil, fmt.Errorf("token source cannot be nil")
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc, calendarID: calendarID}, nil
}

// SetMetrics attaches an operation recorder.
func (c *Client) SetMetrics(m Recorder) {
	c.metrics = m
}

// Create books a new appointment: end = start + duration, with an
// auto-generated Google Meet link. One remote write.
func (c *Client) Create(ctx context.Context, draft Draft) (*Appointment, error) {
	end := draft.Start.Add(draft.Duration)
	event := &calendar.Event{
		Summary:     draft.summary(),
		Description: draft.description(),
		Start: &calendar.EventDateTime{
			DateTime: draft.Start.Format(time.RFC3339),
			TimeZone: draft.Timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: draft.Timezone,
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}

	done := c.record(ctx, "events.insert")
	created, err := c.svc.Events.Insert(c.calendarID, event).
		ConferenceDataVersion(1).
		Context(ctx).
		Do()
	done(err)
	if err != nil {
		return nil, wrapAPIError("create event", err)
	}

	appt := toAppointment(created, draft.Timezone)
	return &appt, nil
}

// Find retrieves an appointment by provider identifier.
func (c *Client) Find(ctx context.Context, id string) (*Appointment, error) {
	done := c.record(ctx, "events.get")
	event, err := c.svc.Events.Get(c.calendarID, id).Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, wrapAPIError("get event", err)
	}

	appt := toAppointment(event, "")
	return &appt, nil
}

// Reschedule moves an existing appointment to newStart, preserving its
// current duration and all other event fields. Fetch-then-update pair.
func (c *Client) Reschedule(ctx context.Context, id string, newStart time.Time, timezone string) (*Appointment, error) {
	existing, err := c.svc.Events.Get(c.calendarID, id).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("get event", err)
	}

	duration := toAppointment(existing, timezone).Duration()
	newEnd := newStart.Add(duration)

	existing.Start = &calendar.EventDateTime{
		DateTime: newStart.Format(time.RFC3339),
		TimeZone: timezone,
	}
	existing.End = &calendar.EventDateTime{
		DateTime: newEnd.Format(time.RFC3339),
		TimeZone: timezone,
	}

	done := c.record(ctx, "events.update")
	updated, err := c.svc.Events.Update(c.calendarID, id, existing).Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, wrapAPIError("update event", err)
	}

	appt := toAppointment(updated, timezone)
	return &appt, nil
}

// Cancel hard-deletes an appointment. Deleting an unknown identifier is an
// error, not a no-op: the caller decides how to surface NotFound.
func (c *Client) Cancel(ctx context.Context, id string) error {
	done := c.record(ctx, "events.delete")
	err := c.svc.Events.Delete(c.calendarID, id).Context(ctx).Do()
	done(err)
	if err != nil {
		return wrapAPIError("delete event", err)
	}
	return nil
}

// ListBusy returns the busy intervals of all single-instance events
// overlapping the window, ordered by start time.
func (c *Client) ListBusy(ctx context.Context, window schedule.TimeRange) ([]schedule.TimeRange, error) {
	events, err := c.listEvents(ctx, window)
	if err != nil {
		return nil, err
	}

	var busy []schedule.TimeRange
	for _, event := range events {
		appt := toAppointment(event, "")
		if appt.Start.IsZero() || appt.End.IsZero() {
			continue
		}
		busy = append(busy, schedule.TimeRange{Start: appt.Start, End: appt.End})
	}
	return busy, nil
}

// ListAppointments is ListBusy with full normalized records.
func (c *Client) ListAppointments(ctx context.Context, window schedule.TimeRange, timezone string) ([]Appointment, error) {
	events, err := c.listEvents(ctx, window)
	if err != nil {
		return nil, err
	}

	appointments := make([]Appointment, 0, len(events))
	for _, event := range events {
		appointments = append(appointments, toAppointment(event, timezone))
	}
	return appointments, nil
}

func (c *Client) listEvents(ctx context.Context, window schedule.TimeRange) ([]*calendar.Event, error) {
	done := c.record(ctx, "events.list")
	events, err := c.svc.Events.List(c.calendarID).
		TimeMin(window.Start.Format(time.RFC3339)).
		TimeMax(window.End.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	done(err)
	if err != nil {
		return nil, wrapAPIError("list events", err)
	}
	return events.Items, nil
}

// record times a provider call for metrics. Usage:
//
//	done := c.record(ctx, "events.insert")
//	...
//	done(err)
func (c *Client) record(ctx context.Context, operation string) func(error) {
	if c.metrics == nil {
		return func(error) {}
	}
	start := time.Now()
	return func(err error) {
		status := "success"
		if err != nil {
			status = "error"
		}
		c.metrics.RecordCalendarOperation(ctx, operation, status, time.Since(start))
	}
}

// wrapAPIError maps provider errors onto the domain taxonomy. 404 and 410
// (Google returns Gone for deleted events) both become ErrNotFound.
func wrapAPIError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone {
			return fmt.Errorf("failed to %s: %w", op, ErrNotFound)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
