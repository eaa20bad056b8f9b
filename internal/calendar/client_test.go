package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

func TestWrapAPIError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantNotFound bool
	}{
		{name: "404 becomes not found", err: &googleapi.Error{Code: http.StatusNotFound}, wantNotFound: true},
		{name: "410 becomes not found", err: &googleapi.Error{Code: http.StatusGone}, wantNotFound: true},
		{name: "403 passes through", err: &googleapi.Error{Code: http.StatusForbidden}},
		{name: "plain error passes through", err: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapAPIError("delete event", tt.err)
			if wrapped == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(wrapped.Error(), "failed to delete event") {
				t.Errorf("error %q missing contextual message", wrapped)
			}
			if got := errors.Is(wrapped, ErrNotFound); got != tt.wantNotFound {
				t.Errorf("errors.Is(err, ErrNotFound) = %v, want %v", got, tt.wantNotFound)
			}
		})
	}
}

func TestNewClientRequiresTokenSource(t *testing.T) {
	if _, err := NewClient(t.Context(), nil, "primary"); err == nil {
		t.Fatal("expected an error for a nil token source")
	}
}

// newStubClient backs the adapter with a local stand-in for the Calendar
// API so the fetch-then-update flow runs against real request round trips.
func newStubClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	api := httptest.NewServer(handler)
	t.Cleanup(api.Close)

	svc, err := calendar.NewService(t.Context(),
		option.WithEndpoint(api.URL),
		option.WithHTTPClient(api.Client()),
	)
	if err != nil {
		t.Fatalf("failed to create Calendar service: %v", err)
	}
	return &Client{svc: svc, calendarID: "primary"}
}

func stubEvent() *calendar.Event {
	return &calendar.Event{
		Id:          "evt-1",
		Summary:     "Appointment with Asha Nair",
		Description: "Phone: +919876543210",
		Start:       &calendar.EventDateTime{DateTime: "2025-03-10T10:00:00Z", TimeZone: "UTC"},
		End:         &calendar.EventDateTime{DateTime: "2025-03-10T10:45:00Z", TimeZone: "UTC"},
		HangoutLink: "https://meet.google.com/abc-defg-hij",
	}
}

func TestRescheduleKeepsDuration(t *testing.T) {
	var updated *calendar.Event

	mux := http.NewServeMux()
	mux.HandleFunc("GET /calendars/primary/events/evt-1", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(stubEvent())
	})
	mux.HandleFunc("PUT /calendars/primary/events/evt-1", func(w http.ResponseWriter, r *http.Request) {
		var event calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("failed to decode update body: %v", err)
		}
		updated = &event
		_ = json.NewEncoder(w).Encode(&event)
	})

	client := newStubClient(t, mux)
	newStart := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

	appt, err := client.Reschedule(t.Context(), "evt-1", newStart, "UTC")
	if err != nil {
		t.Fatalf("Reschedule returned error: %v", err)
	}

	if updated == nil {
		t.Fatal("no update request reached the provider")
	}
	sentStart, err := time.Parse(time.RFC3339, updated.Start.DateTime)
	if err != nil {
		t.Fatalf("update start %q is not RFC3339: %v", updated.Start.DateTime, err)
	}
	sentEnd, err := time.Parse(time.RFC3339, updated.End.DateTime)
	if err != nil {
		t.Fatalf("update end %q is not RFC3339: %v", updated.End.DateTime, err)
	}
	if got := sentEnd.Sub(sentStart); got != 45*time.Minute {
		t.Errorf("update window = %v, want the original 45m preserved", got)
	}
	if !sentStart.Equal(newStart) {
		t.Errorf("update start = %v, want %v", sentStart, newStart)
	}

	if !appt.Start.Equal(newStart) {
		t.Errorf("appointment start = %v, want %v", appt.Start, newStart)
	}
	if got := appt.Duration(); got != 45*time.Minute {
		t.Errorf("appointment duration = %v, want 45m", got)
	}
	if appt.ClientName != "Asha Nair" {
		t.Errorf("client name = %q, want it carried through the update", appt.ClientName)
	}
}

func TestFindIsRepeatable(t *testing.T) {
	gets := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /calendars/primary/events/evt-1", func(w http.ResponseWriter, _ *http.Request) {
		gets++
		_ = json.NewEncoder(w).Encode(stubEvent())
	})

	client := newStubClient(t, mux)

	first, err := client.Find(t.Context(), "evt-1")
	if err != nil {
		t.Fatalf("first Find returned error: %v", err)
	}
	second, err := client.Find(t.Context(), "evt-1")
	if err != nil {
		t.Fatalf("second Find returned error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Find diverged:\nfirst  %+v\nsecond %+v", first, second)
	}
	if gets != 2 {
		t.Errorf("provider saw %d get requests, want 2 (no caching)", gets)
	}
	if first.ID != "evt-1" || first.ClientPhone != "+919876543210" {
		t.Errorf("normalized appointment = %+v", first)
	}
	if got := first.Duration(); got != 45*time.Minute {
		t.Errorf("duration = %v, want 45m", got)
	}
}
