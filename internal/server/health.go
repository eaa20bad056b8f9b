package server

import "net/http"

// Health status constants for health check responses.
const (
	healthStatusOK       = "ok"
	healthStatusNotReady = "not ready"
)

type healthResponse struct {
	Status string `json:"status"`
}

// handleHealth serves the liveness check. It reports ok whenever the
// process is serving; readiness is the stricter probe.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Status: healthStatusOK})
}

// handleReady reports whether the server can serve calendar traffic. The
// conversational and catalog routes work without credentials, so a
// missing token degrades readiness only when a token store is wired.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.cfg.Tokens != nil && !s.cfg.Tokens.HasToken() {
		respondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: healthStatusNotReady})
		return
	}
	respondJSON(w, http.StatusOK, healthResponse{Status: healthStatusOK})
}
