package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"financaszen/internal/services"
)

func (s *Server) analyticsRoutes(r chi.Router) {
	r.Get("/summary", s.handleMonthSummary)
	r.Get("/trend", s.handleTrend)
	r.Get("/forecast", s.handleForecastVsActual)
	r.Get("/networth", s.handleNetWorth)
	r.Get("/dashboard", s.handleDashboard)
}

func (s *Server) monthParams(w http.ResponseWriter, r *http.Request) (MonthParams, bool) {
	mp, err := ParseMonthParams(r.URL.Query(), s.now().In(s.loc))
	if err != nil {
		s.writeError(w, r, err)
		return mp, false
	}
	return mp, true
}

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	mp, ok := s.monthParams(w, r)
	if !ok {
		return
	}
	sum, err := s.svc.Analytics.MonthSummary(r.Context(), mp.Year, mp.Month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleTrend returns ?months (default 6, capped at 24) ending at the month.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	mp, ok := s.monthParams(w, r)
	if !ok {
		return
	}
	months, err := queryInt(r.URL.Query(), "months", services.DefaultTrendMonths)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	points, err := s.svc.Analytics.Trend(r.Context(), mp.Year, mp.Month, months)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleForecastVsActual(w http.ResponseWriter, r *http.Request) {
	mp, ok := s.monthParams(w, r)
	if !ok {
		return
	}
	cmp, err := s.svc.Analytics.ForecastVsActual(r.Context(), mp.Year, mp.Month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	nw, err := s.svc.Analytics.NetWorth(r.Context(), s.today())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nw)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	mp, ok := s.monthParams(w, r)
	if !ok {
		return
	}
	d, err := s.svc.Analytics.Dashboard(r.Context(), mp.Year, mp.Month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
