package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"financaszen/internal/core"
	"financaszen/internal/services"
)

func (s *Server) vehicleRoutes(r chi.Router) {
	r.Get("/{id}/stats", s.handleVehicleStats)
	mountCRUD[core.Vehicle](r, s, s.svc.Repos.Vehicles)
}

func (s *Server) handleVehicleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Garage.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) maintenanceRoutes(r chi.Router) {
	r.Get("/due", s.handleDueMaintenances)
	mountCRUD[core.ScheduledMaintenance](r, s, s.svc.Repos.Maintenances,
		filterBy("vehicleId", func(m core.ScheduledMaintenance, v string) bool { return m.VehicleID == v }))
}

// handleDueMaintenances lists open maintenances due within ?days (default
// from config), most urgent first.
func (s *Server) handleDueMaintenances(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r.URL.Query(), "days", s.cfg.DueWindowDays)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if days < 0 {
		s.writeError(w, r, badRequest("days cannot be negative"))
		return
	}
	due, err := s.svc.Garage.Due(r.Context(), s.today(), days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if due == nil {
		due = []services.MaintenanceDue{}
	}
	writeJSON(w, http.StatusOK, due)
}
