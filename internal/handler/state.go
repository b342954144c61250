package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tsundberg/fakeloc/internal/domain"
)

// stateRequest is the body for POST /v1/state.
type stateRequest struct {
	On *bool `json:"on"`
}

// PostState handles POST /v1/state.
// Turning mocking on is refused with HTTP 409 while the mock location
// setting is disabled. Turning it off always succeeds, even when a guard
// has already forced the machine off.
func (s *Server) PostState(w http.ResponseWriter, r *http.Request) {
	var req stateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.On == nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("on is required"))
		return
	}

	if err := s.faker.SetState(*req.On); err != nil {
		if errors.Is(err, domain.ErrSettingDisabled) {
			writeJSON(w, http.StatusConflict, settingDisabledBody())
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PostStop handles POST /v1/stop.
// This is the endpoint the notification's stop action points at; it is a
// bare off switch with no body so it can be triggered by a plain POST.
func (s *Server) PostStop(w http.ResponseWriter, r *http.Request) {
	s.faker.Stop()
	w.WriteHeader(http.StatusNoContent)
}
