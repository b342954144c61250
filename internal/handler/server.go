// Package handler implements the HTTP handlers for the fakeloc control
// API. All handlers are methods on Server; they are split into
// feature-specific files (location.go, state.go, favorites.go) but share
// the same struct so they can access its dependencies.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tsundberg/fakeloc/internal/domain"
	"github.com/tsundberg/fakeloc/internal/service"
)

// FakerServicer defines the business operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without assembling the whole pipeline.
type FakerServicer interface {
	Status() service.Status
	SetLocation(ctx context.Context, loc domain.Location) error
	ClearLocation()
	SetState(on bool) error
	Stop()
	Favorites() []domain.Location
	ToggleFavorite() (saved bool, err error)
	ToggleFavoriteOf(loc domain.Location) (saved bool, err error)
	RemoveFavorite(loc domain.Location) error
}

// Server holds the handler dependencies.
type Server struct {
	faker FakerServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(faker FakerServicer) *Server {
	return &Server{faker: faker}
}

// Register mounts all routes on r. Middleware is the caller's concern.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.GetStatus)
		r.Put("/location", s.PutLocation)
		r.Delete("/location", s.DeleteLocation)
		r.Post("/state", s.PostState)
		r.Post("/stop", s.PostStop)
		r.Get("/favorites", s.GetFavorites)
		r.Post("/favorites/toggle", s.PostFavoritesToggle)
		r.Delete("/favorites", s.DeleteFavorites)
	})
}

// writeJSON serializes v with the given status. Encoding a value built
// from our own types cannot fail in a way the client can act on, so an
// encode error is ignored after the header is out.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
