// Package logging provides slog attribute helpers used across the
// codebase, keeping attribute names consistent and client phone numbers
// out of log output.
package logging
