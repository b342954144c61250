package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tsundberg/fakeloc/internal/domain"
)

// locationRequest is the body for PUT /v1/location and the favorites
// endpoints that take an explicit location. Latitude and longitude are
// pointers so a missing field can be told apart from a legitimate zero.
type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Name      *string  `json:"name"`
}

// decodeLocation reads a locationRequest from the body and converts it
// into a domain.Location. It rejects malformed JSON and missing
// coordinates; range validation is left to the service layer.
func decodeLocation(r *http.Request) (domain.Location, string) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return domain.Location{}, "malformed request body"
	}
	return locationFromRequest(req)
}

// decodeLocationBytes is decodeLocation for handlers that have already
// drained the body (to distinguish an empty body from a malformed one).
func decodeLocationBytes(body []byte) (domain.Location, string) {
	var req locationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return domain.Location{}, "malformed request body"
	}
	return locationFromRequest(req)
}

func locationFromRequest(req locationRequest) (domain.Location, string) {
	if req.Latitude == nil || req.Longitude == nil {
		return domain.Location{}, "latitude and longitude are required"
	}
	return domain.Location{Latitude: *req.Latitude, Longitude: *req.Longitude, Name: req.Name}, ""
}

// PutLocation handles PUT /v1/location.
// It selects a new target location. When the body carries no name the
// service fills in a placeholder and resolves one in the background, so
// the location returned here may still have an empty name.
func (s *Server) PutLocation(w http.ResponseWriter, r *http.Request) {
	loc, msg := decodeLocation(r)
	if msg != "" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(msg))
		return
	}

	if err := s.faker.SetLocation(r.Context(), loc); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteLocation handles DELETE /v1/location.
// Clearing the location also forces mocking off via the state machine guard.
func (s *Server) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	s.faker.ClearLocation()
	w.WriteHeader(http.StatusNoContent)
}
