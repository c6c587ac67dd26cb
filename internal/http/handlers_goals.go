package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"financaszen/internal/core"
	"financaszen/internal/services"
)

func (s *Server) goalRoutes(r chi.Router) {
	r.Get("/progress", s.handleAllGoalProgress)
	r.Get("/{id}/progress", s.handleGoalProgress)
	r.Get("/{id}/contributions", s.handleListContributions)
	r.Post("/{id}/contributions", s.handleContribute)
	mountCRUD[core.FinancialGoal](r, s, s.svc.Repos.Goals,
		filterBy("category", func(g core.FinancialGoal, v string) bool { return g.Category == v }))
}

func (s *Server) handleAllGoalProgress(w http.ResponseWriter, r *http.Request) {
	ps, err := s.svc.Goals.AllProgress(r.Context(), s.today())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ps == nil {
		ps = []services.GoalProgress{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Goals.Progress(r.Context(), chi.URLParam(r, "id"), s.today())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.svc.Repos.Goals.Get(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	cs, err := s.svc.Goals.Contributions(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cs == nil {
		cs = []core.GoalContribution{}
	}
	writeJSON(w, http.StatusOK, cs)
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var c core.GoalContribution
	if err := decodeJSON(w, r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.svc.Goals.Contribute(r.Context(), chi.URLParam(r, "id"), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
