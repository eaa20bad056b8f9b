package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/kazhakuttam/bookingbot/internal/calendar"
	"github.com/kazhakuttam/bookingbot/internal/schedule"
)

// Store is the slice of the appointment store adapter the handlers use.
type Store interface {
	Create(ctx context.Context, draft calendar.Draft) (*calendar.Appointment, error)
	Reschedule(ctx context.Context, id string, newStart time.Time, timezone string) (*calendar.Appointment, error)
	Cancel(ctx context.Context, id string) error
	ListAppointments(ctx context.Context, window schedule.TimeRange, timezone string) ([]calendar.Appointment, error)
}

// SlotFinder is the slice of the availability engine the handlers use.
type SlotFinder interface {
	AvailableSlots(ctx context.Context, date, timezone string, durationMinutes int) ([]schedule.Slot, error)
}

// DefaultTimezone is used when a tool call omits the timezone, matching
// the catalog's schema default.
const DefaultTimezone = "Asia/Kolkata"

// SlotView is the wire shape of one available slot.
type SlotView struct {
	Time string `json:"time"`
	Date string `json:"date"`
}

// CancelView confirms a cancellation.
type CancelView struct {
	Success bool `json:"success"`
}

// Handlers binds the tool catalog to the booking services. The now func is
// injectable for tests; it defaults to time.Now.
type Handlers struct {
	store Store
	slots SlotFinder
	now   func() time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(store Store, slots SlotFinder) *Handlers {
	return &Handlers{store: store, slots: slots, now: time.Now}
}

// SetClock overrides the time source.
func (h *Handlers) SetClock(now func() time.Time) {
	h.now = now
}

// byName maps catalog names to their handlers; NewRegistry checks the
// mapping is total in both directions.
func (h *Handlers) byName() map[string]Handler {
	return map[string]Handler{
		ToolBookAppointment:       h.bookAppointment,
		ToolViewAppointments:      h.viewAppointments,
		ToolRescheduleAppointment: h.rescheduleAppointment,
		ToolCancelAppointment:     h.cancelAppointment,
		ToolGetAvailableSlots:     h.getAvailableSlots,
	}
}

func (h *Handlers) bookAppointment(ctx context.Context, args map[string]any) (any, error) {
	duration, err := schedule.ValidateDuration(intArg(args, "duration"))
	if err != nil {
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}

	timezone := stringArg(args, "timezone")
	start, err := schedule.ParseDateTime(stringArg(args, "date"), stringArg(args, "time"), timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}
	if start.Before(h.now()) {
		return nil, fmt.Errorf("failed to book appointment: %w", ErrPastDateTime)
	}

	appt, err := h.store.Create(ctx, calendar.Draft{
		ClientName:  stringArg(args, "client_name"),
		ClientPhone: stringArg(args, "client_phone"),
		Timezone:    timezone,
		Start:       start,
		Duration:    duration,
		Notes:       stringArg(args, "notes"),
		ServiceType: stringArg(args, "service_type"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}
	return appt, nil
}

func (h *Handlers) viewAppointments(ctx context.Context, args map[string]any) (any, error) {
	timezone := stringArgDefault(args, "timezone", DefaultTimezone)

	startDay, err := schedule.ParseDate(stringArg(args, "start_date"), timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to view appointments: %w", err)
	}

	endDay := startDay
	if endDate := stringArg(args, "end_date"); endDate != "" {
		endDay, err = schedule.ParseDate(endDate, timezone)
		if err != nil {
			return nil, fmt.Errorf("failed to view appointments: %w", err)
		}
		if endDay.Before(startDay) {
			return nil, fmt.Errorf("failed to view appointments: %w", ErrInvalidRange)
		}
	}

	window := schedule.TimeRange{Start: startDay, End: schedule.DayWindow(endDay).End}
	appointments, err := h.store.ListAppointments(ctx, window, timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to view appointments: %w", err)
	}
	return appointments, nil
}

func (h *Handlers) rescheduleAppointment(ctx context.Context, args map[string]any) (any, error) {
	timezone := stringArg(args, "timezone")
	newStart, err := schedule.ParseDateTime(stringArg(args, "date"), stringArg(args, "time"), timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	if newStart.Before(h.now()) {
		return nil, fmt.Errorf("failed to reschedule appointment: %w", ErrPastDateTime)
	}

	appt, err := h.store.Reschedule(ctx, stringArg(args, "appointment_id"), newStart, timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	return appt, nil
}

func (h *Handlers) cancelAppointment(ctx context.Context, args map[string]any) (any, error) {
	if err := h.store.Cancel(ctx, stringArg(args, "appointment_id")); err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}
	return CancelView{Success: true}, nil
}

func (h *Handlers) getAvailableSlots(ctx context.Context, args map[string]any) (any, error) {
	timezone := stringArgDefault(args, "timezone", DefaultTimezone)

	day, err := schedule.ParseDate(stringArg(args, "date"), timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to get available slots: %w", err)
	}

	// Reject days already in the past; today is still queryable even if
	// part of it has elapsed.
	now := h.now().In(day.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, day.Location())
	if day.Before(today) {
		return nil, fmt.Errorf("failed to get available slots: %w", ErrPastDateTime)
	}

	slots, err := h.slots.AvailableSlots(ctx, stringArg(args, "date"), timezone, intArg(args, "duration"))
	if err != nil {
		return nil, fmt.Errorf("failed to get available slots: %w", err)
	}

	views := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, SlotView{Time: slot.TimeString(), Date: slot.DateString()})
	}
	return views, nil
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func stringArgDefault(args map[string]any, key, fallback string) string {
	if v := stringArg(args, key); v != "" {
		return v
	}
	return fallback
}

// intArg tolerates both float64 (decoded JSON) and int (direct callers).
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
