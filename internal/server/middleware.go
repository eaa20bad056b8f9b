package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/kazhakuttam/bookingbot/internal/calendar"
	"github.com/kazhakuttam/bookingbot/internal/google"
	"github.com/kazhakuttam/bookingbot/internal/schedule"
	"github.com/kazhakuttam/bookingbot/internal/tools"
)

// statusWriter captures the response code for request metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// instrument records per-request metrics and a debug log line. The mux
// pattern is used as the path label to keep cardinality bounded.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		elapsed := time.Since(start)
		path := r.Pattern
		if path == "" {
			path = r.URL.Path
		}
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.RecordHTTPRequest(r.Context(), r.Method, path, sw.status, elapsed)
		}
		s.logger.Debug("request completed",
			slog.String("method", r.Method),
			slog.String("path", path),
			slog.Int("status", sw.status),
			slog.Duration("duration", elapsed),
		)
	})
}

// requireAuth rejects calendar-backed requests until the operator has
// completed the Google OAuth handshake. Token refresh itself happens in
// the token source; this only gates on a credential existing at all.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Tokens == nil || !s.cfg.Tokens.HasToken() {
			respondJSON(w, http.StatusUnauthorized, errorBody{
				Error: "authentication required: visit /auth/google first",
			})
			return
		}
		next(w, r)
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusForError maps the error taxonomy onto HTTP statuses: caller input
// errors are 400, unknown identifiers 404, missing credentials 401, and
// everything else (calendar or completion provider failures) 500.
func statusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, tools.ErrUnknownTool),
		errors.Is(err, tools.ErrMissingParameter),
		errors.Is(err, tools.ErrInvalidArguments),
		errors.Is(err, tools.ErrPastDateTime),
		errors.Is(err, tools.ErrInvalidRange),
		errors.Is(err, schedule.ErrInvalidDate),
		errors.Is(err, schedule.ErrInvalidTimeFormat),
		errors.Is(err, schedule.ErrInvalidDuration):
		return http.StatusBadRequest
	case errors.Is(err, calendar.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, google.ErrAuthRequired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
