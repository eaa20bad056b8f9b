package server

import (
	"net/http"

	"github.com/kazhakuttam/bookingbot/internal/logging"
)

type authCallbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// handleAuthRedirect sends the operator to Google's consent screen.
func (s *Server) handleAuthRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.cfg.Auth.AuthCodeURL(), http.StatusFound)
}

// handleAuthCallback exchanges the authorization code and stores the
// resulting token, unlocking the calendar-backed routes.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "authorization code is missing"})
		return
	}

	if err := s.cfg.Auth.Exchange(r.Context(), code, s.cfg.Tokens); err != nil {
		s.logger.Error("oauth code exchange failed", logging.Err(err))
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "authentication failed"})
		return
	}

	s.logger.Info("google calendar authorized")
	respondJSON(w, http.StatusOK, authCallbackResponse{
		Success: true,
		Message: "Authentication successful! You can now use the calendar API.",
	})
}
