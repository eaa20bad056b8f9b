// Package availability computes free appointment slots for a day by
// subtracting the provider's busy intervals from the business-hours window.
package availability

import (
	"context"
	"fmt"

	"github.com/kazhakuttam/bookingbot/internal/schedule"
)

// BusyLister is the slice of the store adapter the engine needs.
type BusyLister interface {
	ListBusy(ctx context.Context, window schedule.TimeRange) ([]schedule.TimeRange, error)
}

// Engine enumerates free slots. It is stateless; every call recomputes from
// a fresh busy-interval fetch.
type Engine struct {
	store BusyLister
	hours schedule.BusinessHours
}

// NewEngine creates an engine over the given store adapter.
func NewEngine(store BusyLister, hours schedule.BusinessHours) *Engine {
	if hours == (schedule.BusinessHours{}) {
		hours = schedule.DefaultBusinessHours
	}
	return &Engine{store: store, hours: hours}
}

// Hours returns the configured business-hours window.
func (e *Engine) Hours() schedule.BusinessHours {
	return e.hours
}

// AvailableSlots returns the free slots of the given day in ascending
// order. The day's busy intervals are fetched once for the full
// [midnight, next midnight) window.
func (e *Engine) AvailableSlots(ctx context.Context, date, timezone string, durationMinutes int) ([]schedule.Slot, error) {
	duration, err := schedule.ValidateDuration(durationMinutes)
	if err != nil {
		return nil, err
	}

	day, err := schedule.ParseDate(date, timezone)
	if err != nil {
		return nil, err
	}

	busy, err := e.store.ListBusy(ctx, schedule.DayWindow(day))
	if err != nil {
		return nil, fmt.Errorf("failed to get available slots: %w", err)
	}

	return schedule.SlotsForDay(day, e.hours, duration, busy), nil
}
