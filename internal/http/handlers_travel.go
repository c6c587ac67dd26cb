package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"financaszen/internal/core"
)

func (s *Server) travelRoutes(r chi.Router) {
	res := &resource[core.TravelEvent]{s: s, repo: s.svc.Repos.Travel}
	r.Get("/", res.list)
	r.Post("/", s.handleCreateTravel)
	r.Get("/{id}", res.get)
	r.Put("/{id}", s.handleReplaceTravel)
	r.Delete("/{id}", res.delete)
	r.Get("/{id}/points", s.handleListRoutePoints)
	r.Post("/{id}/points", s.handleAddRoutePoint)
	r.Get("/{id}/plan", s.handleTravelPlan)
}

// handleCreateTravel saves the trip for the session user so the calendar
// worker knows whose calendar to write to.
func (s *Server) handleCreateTravel(w http.ResponseWriter, r *http.Request) {
	var e core.TravelEvent
	if err := decodeJSON(w, r, &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.svc.Travel.Create(r.Context(), UserID(r.Context()), e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleReplaceTravel keeps the owner and the calendar event id already recorded.
func (s *Server) handleReplaceTravel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var e core.TravelEvent
	if err := decodeJSON(w, r, &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	existing, err := s.svc.Travel.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e.OwnerID = existing.OwnerID
	if e.CalendarEventID == "" {
		e.CalendarEventID = existing.CalendarEventID
	}
	updated, err := s.svc.Repos.Travel.Update(r.Context(), id, e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleListRoutePoints(w http.ResponseWriter, r *http.Request) {
	ps, err := s.svc.Travel.Points(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ps == nil {
		ps = []core.TravelRoutePoint{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handleAddRoutePoint(w http.ResponseWriter, r *http.Request) {
	var p core.TravelRoutePoint
	if err := decodeJSON(w, r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.svc.Travel.AddPoint(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleTravelPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.svc.Travel.Plan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
