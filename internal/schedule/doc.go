// Package schedule implements the timezone-aware time and slot model used
// by the booking system: date/time parsing, 12/24-hour conversion, and
// business-hours slot generation against busy intervals.
//
// All computed instants are kept in the timezone they were requested in;
// interval comparisons use half-open [start, end) semantics throughout.
package schedule
