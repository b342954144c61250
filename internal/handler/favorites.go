package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/tsundberg/fakeloc/internal/domain"
)

// favoritesResponse wraps the favorites list so the top-level JSON value
// is always an object.
type favoritesResponse struct {
	Data []domain.Location `json:"data"`
}

// toggleResponse reports whether the toggled location ended up saved.
type toggleResponse struct {
	Saved bool `json:"saved"`
}

// GetFavorites handles GET /v1/favorites.
func (s *Server) GetFavorites(w http.ResponseWriter, r *http.Request) {
	favs := s.faker.Favorites()
	if favs == nil {
		favs = []domain.Location{}
	}
	writeJSON(w, http.StatusOK, favoritesResponse{Data: favs})
}

// PostFavoritesToggle handles POST /v1/favorites/toggle.
// With an empty body it toggles the currently selected location; with a
// location body it toggles that location. Either way it reports whether
// the location is saved after the call.
func (s *Server) PostFavoritesToggle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("malformed request body"))
		return
	}

	var saved bool
	if len(body) == 0 {
		saved, err = s.faker.ToggleFavorite()
	} else {
		loc, msg := decodeLocationBytes(body)
		if msg != "" {
			writeJSON(w, http.StatusUnprocessableEntity, requestBody(msg))
			return
		}
		saved, err = s.faker.ToggleFavoriteOf(loc)
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeJSON(w, http.StatusNotFound, notFoundBody("no location selected"))
		case errors.Is(err, domain.ErrValidation):
			writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
		default:
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, toggleResponse{Saved: saved})
}

// DeleteFavorites handles DELETE /v1/favorites.
// The location to remove is carried in the body because favorites are
// identified structurally, not by an id.
func (s *Server) DeleteFavorites(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("a location body is required"))
		return
	}
	loc, msg := decodeLocationBytes(body)
	if msg != "" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(msg))
		return
	}

	if err := s.faker.RemoveFavorite(loc); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("favorite not found"))
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
