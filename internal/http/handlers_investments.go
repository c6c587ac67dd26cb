package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"financaszen/internal/core"
)

func (s *Server) investmentRoutes(r chi.Router) {
	r.Get("/summary", s.handlePortfolioSummary)
	r.Route("/fixed", func(r chi.Router) {
		mountCRUD[core.FixedIncomeAsset](r, s, s.svc.Repos.FixedIncome,
			filterBy("kind", func(a core.FixedIncomeAsset, v string) bool { return string(a.Kind) == v }))
	})
	r.Route("/variable", func(r chi.Router) {
		mountCRUD[core.VariableIncomeAsset](r, s, s.svc.Repos.VariableIncome,
			filterBy("kind", func(a core.VariableIncomeAsset, v string) bool { return string(a.Kind) == v }))
	})
}

func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Portfolio.Summary(r.Context(), s.today())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
