package calendar

import (
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Event text conventions used when encoding appointments as calendar events.
const (
	summaryPrefix     = "Appointment with "
	phoneLinePrefix   = "Phone: "
	serviceLinePrefix = "Service: "
)

// Appointment is the normalized domain representation of a booked event.
// The ID is the provider-assigned event identifier; once the event is
// deleted the ID is no longer resolvable.
type Appointment struct {
	ID          string    `json:"appointmentId"`
	Summary     string    `json:"summary,omitempty"`
	ClientName  string    `json:"clientName,omitempty"`
	ClientPhone string    `json:"clientPhone,omitempty"`
	Start       time.Time `json:"startTime"`
	End         time.Time `json:"endTime"`
	Timezone    string    `json:"timezone,omitempty"`
	MeetLink    string    `json:"meetLink,omitempty"`
}

// Duration returns end minus start.
func (a Appointment) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// Draft carries the validated input of a booking request.
type Draft struct {
	ClientName  string
	ClientPhone string
	Timezone    string
	Start       time.Time
	Duration    time.Duration
	Notes       string
	ServiceType string
}

// summary builds the event title, e.g. "Appointment with Asha Nair".
func (d Draft) summary() string {
	return summaryPrefix + d.ClientName
}

// description encodes phone, service type and notes as one line each so
// they survive the round trip through the provider.
func (d Draft) description() string {
	lines := []string{phoneLinePrefix + d.ClientPhone}
	if d.ServiceType != "" {
		lines = append(lines, serviceLinePrefix+d.ServiceType)
	}
	if d.Notes != "" {
		lines = append(lines, d.Notes)
	}
	return strings.Join(lines, "\n")
}

// toAppointment converts a Google Calendar event to the normalized form.
func toAppointment(event *calendar.Event, timezone string) Appointment {
	a := Appointment{Timezone: timezone}
	if event == nil {
		return a
	}

	a.ID = event.Id
	a.Summary = event.Summary
	a.ClientName = strings.TrimPrefix(event.Summary, summaryPrefix)
	a.MeetLink = meetLink(event)

	for _, line := range strings.Split(event.Description, "\n") {
		if strings.HasPrefix(line, phoneLinePrefix) {
			a.ClientPhone = strings.TrimSpace(strings.TrimPrefix(line, phoneLinePrefix))
			break
		}
	}

	a.Start = parseEventTime(event.Start)
	a.End = parseEventTime(event.End)
	return a
}

// parseEventTime handles both timed and all-day event boundaries.
func parseEventTime(edt *calendar.EventDateTime) time.Time {
	if edt == nil {
		return time.Time{}
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t
		}
	}
	if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// meetLink extracts the Google Meet link from an event, preferring the
// video entry point over the legacy hangout link.
func meetLink(event *calendar.Event) string {
	if event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				return ep.Uri
			}
		}
	}
	return event.HangoutLink
}
