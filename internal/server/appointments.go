package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kazhakuttam/bookingbot/internal/tools"
)

// dispatch runs one tool through the registry and writes its payload or
// classified error. The direct API and the conversational path share the
// same validation and handlers this way.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, tool string, args map[string]any) {
	result := s.cfg.Registry.Execute(r.Context(), tool, args)
	if !result.Success {
		respondJSON(w, statusForError(result.Err), errorBody{Error: result.Error})
		return
	}
	respondJSON(w, http.StatusOK, result.Payload)
}

// bodyArgs decodes a JSON object body; an empty body yields an empty map.
func bodyArgs(r *http.Request) (map[string]any, error) {
	args := map[string]any{}
	if r.Body == nil {
		return args, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil && err.Error() != "EOF" {
		return nil, err
	}
	return args, nil
}

// mergeQuery fills absent keys from query parameters. Keys listed in
// intKeys are converted so they satisfy integer-typed schemas.
func mergeQuery(args map[string]any, r *http.Request, intKeys ...string) {
	ints := map[string]bool{}
	for _, k := range intKeys {
		ints[k] = true
	}
	for key, values := range r.URL.Query() {
		if _, present := args[key]; present || len(values) == 0 || values[0] == "" {
			continue
		}
		if ints[key] {
			if n, err := strconv.Atoi(values[0]); err == nil {
				args[key] = n
			}
			continue
		}
		args[key] = values[0]
	}
}

func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}
	mergeQuery(args, r, "duration")
	s.dispatch(w, r, tools.ToolGetAvailableSlots, args)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	args, err := bodyArgs(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	mergeQuery(args, r, "duration")
	s.dispatch(w, r, tools.ToolBookAppointment, args)
}

func (s *Server) handleReschedule(w http.ResponseWriter, r *http.Request) {
	args, err := bodyArgs(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	mergeQuery(args, r)
	s.dispatch(w, r, tools.ToolRescheduleAppointment, args)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	args, err := bodyArgs(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	mergeQuery(args, r)
	s.dispatch(w, r, tools.ToolCancelAppointment, args)
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}
	mergeQuery(args, r)
	s.dispatch(w, r, tools.ToolViewAppointments, args)
}
