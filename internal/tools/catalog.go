package tools

import "github.com/kazhakuttam/bookingbot/internal/schedule"

// Tool names, fixed at process start.
const (
	ToolBookAppointment       = "book_appointment"
	ToolViewAppointments      = "view_appointments"
	ToolRescheduleAppointment = "reschedule_appointment"
	ToolCancelAppointment     = "cancel_appointment"
	ToolGetAvailableSlots     = "get_available_slots"
)

// Shared parameter patterns. The patterns double as contract documentation
// for the calling model and are mechanically enforced before dispatch.
const (
	datePattern     = `^\d{4}-\d{2}-\d{2}$`
	timePattern     = `^(0?[1-9]|1[0-2]):[0-5][0-9] (AM|PM)$`
	timezonePattern = `^[A-Za-z]+/[A-Za-z_]+$|^UTC$`
	idPattern       = `^[A-Za-z0-9-_]+$`
	phonePattern    = `^\+[1-9]\d{1,14}$`
)

var serviceTypes = []string{"consultation", "follow_up", "regular"}

// Catalog returns the immutable tool catalog in declaration order.
func Catalog() []Definition {
	return []Definition{
		{
			Name: ToolBookAppointment,
			Description: "Book a new appointment for a client. Validates client details and rejects " +
				"past dates before booking. Returns appointment details and confirmation.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"client_name": {
						Type:        "string",
						Description: "Full name of the client (2-50 characters)",
						MinLength:   intPtr(2),
						MaxLength:   intPtr(50),
					},
					"client_phone": {
						Type:        "string",
						Description: "Client's phone number in international format (e.g., +91XXXXXXXXXX)",
						Pattern:     phonePattern,
					},
					"timezone": {
						Type:        "string",
						Description: "Client's timezone (e.g., 'Asia/Kolkata', 'UTC')",
						Pattern:     timezonePattern,
					},
					"date": {
						Type:        "string",
						Description: "Appointment date in YYYY-MM-DD format",
						Pattern:     datePattern,
					},
					"time": {
						Type:        "string",
						Description: "Appointment time in 12-hour format (e.g., '10:00 AM')",
						Pattern:     timePattern,
					},
					"duration": {
						Type:        "integer",
						Description: "Duration in minutes (15-120)",
						Minimum:     intPtr(schedule.MinDurationMinutes),
						Maximum:     intPtr(schedule.MaxDurationMinutes),
						Default:     schedule.DefaultDurationMinutes,
					},
					"notes": {
						Type:        "string",
						Description: "Optional notes or special requests for the appointment",
						MaxLength:   intPtr(500),
					},
					"service_type": {
						Type:        "string",
						Description: "Type of service (e.g., 'consultation', 'follow_up')",
						Enum:        serviceTypes,
					},
				},
				Required: []string{"client_name", "client_phone", "timezone", "date", "time"},
			},
		},
		{
			Name: ToolViewAppointments,
			Description: "Retrieve upcoming appointments for a client. Returns a list of scheduled " +
				"appointments with details.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"client_id": {
						Type:        "string",
						Description: "Unique identifier for the client",
						Pattern:     idPattern,
					},
					"start_date": {
						Type:        "string",
						Description: "Start date in YYYY-MM-DD format",
						Pattern:     datePattern,
					},
					"end_date": {
						Type:        "string",
						Description: "End date in YYYY-MM-DD format (optional)",
						Pattern:     datePattern,
					},
					"timezone": {
						Type:        "string",
						Description: "Client's timezone (e.g., 'Asia/Kolkata', 'UTC')",
						Pattern:     timezonePattern,
						Default:     "Asia/Kolkata",
					},
					"status": {
						Type:        "string",
						Description: "Filter appointments by status",
						Enum:        []string{"upcoming", "completed", "cancelled"},
						Default:     "upcoming",
					},
				},
				Required: []string{"client_id", "start_date"},
			},
		},
		{
			Name: ToolRescheduleAppointment,
			Description: "Reschedule an existing appointment to a new date/time. The appointment " +
				"keeps its current duration.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"appointment_id": {
						Type:        "string",
						Description: "Unique identifier of the existing appointment",
						Pattern:     idPattern,
					},
					"date": {
						Type:        "string",
						Description: "New appointment date in YYYY-MM-DD format",
						Pattern:     datePattern,
					},
					"time": {
						Type:        "string",
						Description: "New appointment time in 12-hour format (e.g., '10:00 AM')",
						Pattern:     timePattern,
					},
					"timezone": {
						Type:        "string",
						Description: "Client's timezone (e.g., 'Asia/Kolkata', 'UTC')",
						Pattern:     timezonePattern,
					},
					"reason": {
						Type:        "string",
						Description: "Reason for rescheduling (optional)",
						MaxLength:   intPtr(200),
					},
				},
				Required: []string{"appointment_id", "date", "time", "timezone"},
			},
		},
		{
			Name:        ToolCancelAppointment,
			Description: "Cancel an existing appointment. Returns confirmation and cancellation details.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"appointment_id": {
						Type:        "string",
						Description: "Unique identifier of the appointment to cancel",
						Pattern:     idPattern,
					},
					"reason": {
						Type:        "string",
						Description: "Reason for cancellation (optional)",
						MaxLength:   intPtr(200),
					},
					"notify_client": {
						Type:        "boolean",
						Description: "Whether to send a cancellation notification to the client",
						Default:     true,
					},
				},
				Required: []string{"appointment_id"},
			},
		},
		{
			Name: ToolGetAvailableSlots,
			Description: "Get available appointment slots for a specific date. Returns a list of " +
				"available time slots considering existing appointments and business hours.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"date": {
						Type:        "string",
						Description: "Date to check in YYYY-MM-DD format",
						Pattern:     datePattern,
					},
					"timezone": {
						Type:        "string",
						Description: "Client's timezone (e.g., 'Asia/Kolkata', 'UTC')",
						Pattern:     timezonePattern,
						Default:     "Asia/Kolkata",
					},
					"duration": {
						Type:        "integer",
						Description: "Slot duration in minutes (15-120)",
						Minimum:     intPtr(schedule.MinDurationMinutes),
						Maximum:     intPtr(schedule.MaxDurationMinutes),
						Default:     schedule.DefaultDurationMinutes,
					},
					"service_type": {
						Type:        "string",
						Description: "Type of service to check availability for",
						Enum:        serviceTypes,
						Default:     "regular",
					},
				},
				Required: []string{"date"},
			},
		},
	}
}
