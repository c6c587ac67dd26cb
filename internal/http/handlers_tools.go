package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"financaszen/internal/core"
	"financaszen/internal/finance"
	"financaszen/internal/tolls"
)

func (s *Server) calculatorRoutes(r chi.Router) {
	r.Post("/installment", s.handleInstallment)
	r.Post("/rate", s.handleImpliedRate)
	r.Post("/schedule", s.handleSchedule)
}

// loanRequest takes the monthly rate as a percentage, e.g. 1.99.
type loanRequest struct {
	Principal   core.Money `json:"principal"`
	MonthlyRate float64    `json:"monthlyRate"`
	Months      int        `json:"months"`
}

type installmentResponse struct {
	Installment core.Money `json:"installment"`
	Total       core.Money `json:"total"`
	Interest    core.Money `json:"interest"`
	Months      int        `json:"months"`
}

type rateRequest struct {
	PurchaseValue core.Money `json:"purchaseValue"`
	TotalToPay    core.Money `json:"totalToPay"`
	Installments  int        `json:"installments"`
}

type rateResponse struct {
	MonthlyPercent float64 `json:"monthlyPercent"`
	AnnualPercent  float64 `json:"annualPercent"`
}

func percent4(fraction float64) float64 {
	f, _ := decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).Round(4).Float64()
	return f
}

func (s *Server) handleInstallment(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := finance.Installment(req.Principal.Float(), req.MonthlyRate/100, req.Months)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	inst := core.FromFloat(p)
	total := inst.MulFloat(float64(req.Months))
	writeJSON(w, http.StatusOK, installmentResponse{
		Installment: inst,
		Total:       total,
		Interest:    total.Sub(req.Principal),
		Months:      req.Months,
	})
}

func (s *Server) handleImpliedRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rate, err := finance.ImpliedRate(req.PurchaseValue.Float(), req.TotalToPay.Float(), req.Installments)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rateResponse{
		MonthlyPercent: percent4(rate.Monthly),
		AnnualPercent:  percent4(rate.Annual),
	})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Months > 600 {
		s.writeError(w, r, finance.ErrInvalidInput)
		return
	}
	rows, err := finance.Schedule(req.Principal.Float(), req.MonthlyRate/100, req.Months)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) tollRoutes(r chi.Router) {
	r.Get("/plazas", s.handlePlazas)
	r.Post("/estimate", s.handleTollEstimate)
}

type tollRequest struct {
	Points     []tolls.Point `json:"points"`
	DistanceKm float64       `json:"distanceKm"`
}

func (s *Server) handlePlazas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tolls.Plazas())
}

// handleTollEstimate matches a route when two or more points are given and
// otherwise charges by distance.
func (s *Server) handleTollEstimate(w http.ResponseWriter, r *http.Request) {
	var req tollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, p := range req.Points {
		if !core.ValidCoordinates(p.Lat, p.Lng) {
			s.writeError(w, r, core.ErrInvalidCoordinates)
			return
		}
	}
	if len(req.Points) >= 2 {
		writeJSON(w, http.StatusOK, s.tolls.EstimateRoute(req.Points))
		return
	}
	if err := tolls.ValidDistance(req.DistanceKm); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tolls.EstimateByDistance(req.DistanceKm))
}
