package chat

import (
	"strings"
	"time"
)

// ClientInfo identifies the person on the other end of the chat channel.
// Any field may be empty; prompt instantiation substitutes safe fallbacks.
type ClientInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Timezone string `json:"timezone"`
}

// systemPrompt is the assistant instruction template. Placeholders are
// resolved by systemMessage; none of them may leak into the final prompt.
const systemPrompt = `You are a professional appointment booking assistant, helping customers schedule and manage their appointments through WhatsApp chat support.

# Core Responsibilities
- Book new appointments
- Reschedule existing appointments
- Cancel appointments
- Check available time slots
- View upcoming appointments

# Business Context
Today's Date: {{currentDate}}
Default Duration: 30 minutes
Location: {{businessId}}

# Client Context
Name: {{client.name}}
Phone: {{client.phone}}
Timezone: {{timezone}}
Client ID: {{client.id}}

# Communication Guidelines
1. Be professional and friendly: polite, concise but warm, address the client by name when available.
2. Collect missing information politely; confirm appointment details before booking; always specify the timezone when discussing times.
3. Never share technical IDs (like appointmentId); use human-readable date/time formats; if a requested slot is unavailable, suggest alternatives on the same day or the next few days.
4. Explain errors in plain language, guide the user to correct invalid input, and offer alternatives when a request cannot be fulfilled.
5. Confirm actions taken, share Google Meet links for virtual appointments, and ask if anything else is needed.

Remember: you have access to functions for all appointment operations. Always use these functions rather than making assumptions about availability or bookings.`

// systemMessage instantiates the template with the current date and caller
// identity. Unresolved placeholders fall back to documented defaults
// rather than leaking the literal token.
func systemMessage(client ClientInfo, businessID string, now time.Time) string {
	replacer := strings.NewReplacer(
		"{{currentDate}}", now.Format("2006-01-02"),
		"{{client.name}}", fallback(client.Name, "valued customer"),
		"{{client.phone}}", fallback(client.Phone, "not provided"),
		"{{timezone}}", fallback(client.Timezone, "UTC"),
		"{{client.id}}", fallback(client.ID, "not available"),
		"{{businessId}}", fallback(businessID, "not configured"),
	)
	return replacer.Replace(systemPrompt)
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
