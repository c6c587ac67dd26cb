package services

import (
	"context"
	"sort"

	"financaszen/internal/core"
)

// DefaultKmWindow is how many km ahead a maintenance counts as due.
const DefaultKmWindow = 1000

type VehicleStats struct {
	VehicleID  string                                `json:"vehicleId"`
	Total      core.Money                            `json:"total"`
	ByKind     map[core.VehicleExpenseKind]core.Money `json:"byKind"`
	Expenses   int                                   `json:"expenses"`
	FuelLiters float64                               `json:"fuelLiters"`
	KmPerLiter float64                               `json:"kmPerLiter"`
	KmDriven   int                                   `json:"kmDriven"`
	CostPerKm  core.Money                            `json:"costPerKm"`
}

// StatsOf sums a vehicle's expenses. Efficiency uses consecutive fuel fills:
// each fill's liters cover the km since the previous fill.
func StatsOf(v core.Vehicle, expenses []core.VehicleExpense) VehicleStats {
	s := VehicleStats{VehicleID: v.ID, ByKind: map[core.VehicleExpenseKind]core.Money{}}
	var fills []core.VehicleExpense
	minOdo, maxOdo := 0, v.Odometer
	for _, e := range expenses {
		if e.VehicleID != v.ID {
			continue
		}
		s.Expenses++
		s.Total = s.Total.Add(e.Amount)
		s.ByKind[e.Kind] = s.ByKind[e.Kind].Add(e.Amount)
		if e.Kind == core.Fuel {
			s.FuelLiters += e.Liters
			if e.Odometer > 0 && e.Liters > 0 {
				fills = append(fills, e)
			}
		}
		if e.Odometer > 0 {
			if minOdo == 0 || e.Odometer < minOdo {
				minOdo = e.Odometer
			}
			if e.Odometer > maxOdo {
				maxOdo = e.Odometer
			}
		}
	}

	sort.SliceStable(fills, func(i, j int) bool { return fills[i].Odometer < fills[j].Odometer })
	var km, liters float64
	for i := 1; i < len(fills); i++ {
		km += float64(fills[i].Odometer - fills[i-1].Odometer)
		liters += fills[i].Liters
	}
	if liters > 0 {
		s.KmPerLiter = roundTo(km/liters, 2)
	}

	if minOdo > 0 && maxOdo > minOdo {
		s.KmDriven = maxOdo - minOdo
		s.CostPerKm = s.Total.DivInt(int64(s.KmDriven))
	}
	return s
}

type MaintenanceDue struct {
	Maintenance core.ScheduledMaintenance `json:"maintenance"`
	VehicleName string                    `json:"vehicleName"`
	DaysLeft    *int                      `json:"daysLeft,omitempty"`
	KmLeft      *int                      `json:"kmLeft,omitempty"`
	Overdue     bool                      `json:"overdue"`
}

// DueMaintenances lists open maintenances due within the day or km window,
// most urgent first.
func DueMaintenances(vehicles []core.Vehicle, ms []core.ScheduledMaintenance, today core.Date, windowDays, kmWindow int) []MaintenanceDue {
	byID := make(map[string]core.Vehicle, len(vehicles))
	for _, v := range vehicles {
		byID[v.ID] = v
	}
	horizon := core.DateOf(today.AddDate(0, 0, windowDays))
	out := []MaintenanceDue{}
	for _, m := range ms {
		if m.Completed {
			continue
		}
		v := byID[m.VehicleID]
		d := MaintenanceDue{Maintenance: m, VehicleName: v.Name}
		due := false
		if !m.DueDate.IsZero() && !m.DueDate.After(horizon) {
			days := today.DaysUntil(m.DueDate)
			d.DaysLeft = &days
			d.Overdue = days < 0
			due = true
		}
		if m.DueOdometer > 0 && m.DueOdometer <= v.Odometer+kmWindow {
			km := m.DueOdometer - v.Odometer
			d.KmLeft = &km
			d.Overdue = d.Overdue || km < 0
			due = true
		}
		if due {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return urgency(out[i]) < urgency(out[j]) })
	return out
}

// urgency orders by days left, treating 100 km as one day.
func urgency(d MaintenanceDue) int {
	u := 1 << 30
	if d.DaysLeft != nil {
		u = *d.DaysLeft
	}
	if d.KmLeft != nil && *d.KmLeft/100 < u {
		u = *d.KmLeft / 100
	}
	return u
}

// Garage derives vehicle statistics and the maintenance agenda.
type Garage struct {
	repos *Repos
}

func NewGarage(repos *Repos) *Garage {
	return &Garage{repos: repos}
}

func (g *Garage) Stats(ctx context.Context, vehicleID string) (VehicleStats, error) {
	v, err := g.repos.Vehicles.Get(ctx, vehicleID)
	if err != nil {
		return VehicleStats{}, err
	}
	es, err := g.repos.VehicleExpenses.Filter(ctx, func(e core.VehicleExpense) bool { return e.VehicleID == vehicleID })
	if err != nil {
		return VehicleStats{}, err
	}
	return StatsOf(v, es), nil
}

func (g *Garage) Due(ctx context.Context, today core.Date, windowDays int) ([]MaintenanceDue, error) {
	vs, err := g.repos.Vehicles.List(ctx)
	if err != nil {
		return nil, err
	}
	ms, err := g.repos.Maintenances.List(ctx)
	if err != nil {
		return nil, err
	}
	return DueMaintenances(vs, ms, today, windowDays, DefaultKmWindow), nil
}
