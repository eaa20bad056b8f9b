package server

import (
	"net/http"

	"github.com/kazhakuttam/bookingbot/internal/tools"
)

type functionsResponse struct {
	Success bool               `json:"success"`
	Data    []tools.Definition `json:"data"`
}

type executeRequest struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

type executeResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleListFunctions returns the tool catalog for non-conversational
// callers.
func (s *Server) handleListFunctions(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, functionsResponse{
		Success: true,
		Data:    s.cfg.Registry.Definitions(),
	})
}

// handleExecuteFunction runs one tool directly, with the same validation
// the conversational path applies.
func (s *Server) handleExecuteFunction(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, executeResponse{Error: "invalid request body"})
		return
	}
	if req.Name == "" {
		respondJSON(w, http.StatusBadRequest, executeResponse{Error: "function name is required"})
		return
	}

	result := s.cfg.Registry.Execute(r.Context(), req.Name, req.Parameters)
	if !result.Success {
		respondJSON(w, statusForError(result.Err), executeResponse{Error: result.Error})
		return
	}
	respondJSON(w, http.StatusOK, executeResponse{Success: true, Data: result.Payload})
}
