// Package calendar translates appointment lifecycle operations into Google
// Calendar v3 calls and normalizes provider events into the domain's
// Appointment representation.
//
// The adapter holds no local state: every operation is a single remote call,
// or a fetch-then-update pair for reschedule. Concurrent mutation of the
// same appointment relies on the provider's per-event consistency.
package calendar
