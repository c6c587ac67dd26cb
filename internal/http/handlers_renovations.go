package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"financaszen/internal/core"
)

func (s *Server) renovationRoutes(r chi.Router) {
	r.Get("/{id}/progress", s.handleRenovationProgress)
	mountCRUD[core.Renovation](r, s, s.svc.Repos.Renovations,
		filterBy("status", func(v core.Renovation, want string) bool { return string(v.Status) == want }))
}

func (s *Server) handleRenovationProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Renovations.Progress(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
