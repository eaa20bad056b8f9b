package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date and time layouts used at the system boundary.
// Dates arrive as "2006-01-02", times in 12-hour form with an AM/PM marker.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "3:04 PM"
)

// Duration policy for bookable appointments.
const (
	MinDurationMinutes     = 15
	MaxDurationMinutes     = 120
	DefaultDurationMinutes = 30
)

var (
	// ErrInvalidDate indicates a date that does not parse as a calendar
	// date in the requested timezone.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidTimeFormat indicates a time string that does not match the
	// expected 12-hour "H:MM AM/PM" pattern.
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrInvalidDuration indicates a duration outside the allowed
	// 15–120 minute range.
	ErrInvalidDuration = errors.New("invalid duration")
)

var timePattern = regexp.MustCompile(`^(0?[1-9]|1[0-2]):[0-5][0-9] (AM|PM)$`)

// BusinessHours defines the bookable window of a day in local time.
// Start is inclusive, End exclusive: the last slot must end at or before
// End o'clock.
type BusinessHours struct {
	StartHour int
	EndHour   int
}

// DefaultBusinessHours is the 10:00–17:00 window used when no override is
// configured.
var DefaultBusinessHours = BusinessHours{StartHour: 10, EndHour: 17}

// TimeRange is a half-open [Start, End) interval, typically a busy period
// pulled from the calendar provider.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the half-open interval [start, end) intersects r.
func (r TimeRange) Overlaps(start, end time.Time) bool {
	return start.Before(r.End) && end.After(r.Start)
}

// Slot is a candidate bookable interval. Slots are derived, never persisted.
type Slot struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// TimeString formats the slot start in the 12-hour form clients expect,
// e.g. "02:30 PM".
func (s Slot) TimeString() string {
	return s.Start.Format("03:04 PM")
}

// DateString formats the slot's calendar date, e.g. "2025-03-10".
func (s Slot) DateString() string {
	return s.Start.Format(DateLayout)
}

// LoadLocation resolves an IANA timezone name.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// ParseDate parses a "2006-01-02" date and returns midnight of that day in
// the given timezone.
func ParseDate(date, timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidDate, date)
	}
	return day, nil
}

// ParseDateTime parses a date plus 12-hour time ("2:30 PM") into an instant
// in the given timezone.
func ParseDateTime(date, clock, timezone string) (time.Time, error) {
	if !timePattern.MatchString(clock) {
		return time.Time{}, fmt.Errorf("%w: %q is not a H:MM AM/PM time", ErrInvalidTimeFormat, clock)
	}
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidDate, date)
	}
	return t, nil
}

// To12Hour converts a 24-hour "HH:MM" time to the 12-hour form parsing
// expects: hour 0 becomes 12 AM, hour 12 stays 12 PM, everything else is
// hour mod 12 with AM before noon.
func To12Hour(clock string) (string, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: %q is not a HH:MM time", ErrInvalidTimeFormat, clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: %q has no valid hour", ErrInvalidTimeFormat, clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 || len(parts[1]) != 2 {
		return "", fmt.Errorf("%w: %q has no valid minute", ErrInvalidTimeFormat, clock)
	}

	marker := "AM"
	if hour >= 12 {
		marker = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, marker), nil
}

// To24Hour converts a 12-hour "H:MM AM/PM" time to "HH:MM".
func To24Hour(clock string) (string, error) {
	if !timePattern.MatchString(clock) {
		return "", fmt.Errorf("%w: %q is not a H:MM AM/PM time", ErrInvalidTimeFormat, clock)
	}
	t, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTimeFormat, err)
	}
	return t.Format("15:04"), nil
}

// ValidateDuration checks the duration policy and returns the effective
// duration, applying the 30-minute default when minutes is zero.
func ValidateDuration(minutes int) (time.Duration, error) {
	if minutes == 0 {
		minutes = DefaultDurationMinutes
	}
	if minutes < MinDurationMinutes || minutes > MaxDurationMinutes {
		return 0, fmt.Errorf("%w: %d minutes (allowed %d-%d)",
			ErrInvalidDuration, minutes, MinDurationMinutes, MaxDurationMinutes)
	}
	return time.Duration(minutes) * time.Minute, nil
}

// SlotsForDay walks the business-hours window of day (midnight in its
// target timezone) in duration steps and returns every candidate that
// overlaps no busy interval, in ascending order. A candidate abutting a
// busy interval on either side is still free.
func SlotsForDay(day time.Time, hours BusinessHours, duration time.Duration, busy []TimeRange) []Slot {
	// Derive the window from wall-clock hours so DST transition days keep
	// the configured opening time.
	y, m, d := day.Date()
	windowStart := time.Date(y, m, d, hours.StartHour, 0, 0, 0, day.Location())
	windowEnd := time.Date(y, m, d, hours.EndHour, 0, 0, 0, day.Location())

	var slots []Slot
	for start := windowStart; !start.Add(duration).After(windowEnd); start = start.Add(duration) {
		end := start.Add(duration)
		free := true
		for _, b := range busy {
			if b.Overlaps(start, end) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, Slot{Start: start, End: end, Duration: duration})
		}
	}
	return slots
}

// DayWindow returns the [midnight, next midnight) range for day in its
// location, the window listBusy queries are issued for.
func DayWindow(day time.Time) TimeRange {
	return TimeRange{Start: day, End: day.AddDate(0, 0, 1)}
}
