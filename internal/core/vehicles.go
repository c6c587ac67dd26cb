package core

import "math"

type (
	VehicleExpenseKind string

	Vehicle struct {
		Meta
		Name     string `json:"name"`
		Brand    string `json:"brand,omitempty"`
		Model    string `json:"model,omitempty"`
		Year     int    `json:"year,omitempty"`
		Plate    string `json:"plate,omitempty"`
		Odometer int    `json:"odometer"`
		FuelType string `json:"fuelType,omitempty"`
	}

	// VehicleExpense is a cost of owning a vehicle. Amount is stored positive.
	VehicleExpense struct {
		Meta
		VehicleID   string             `json:"vehicleId"`
		Kind        VehicleExpenseKind `json:"kind"`
		Amount      Money              `json:"amount"`
		Date        Date               `json:"date"`
		Odometer    int                `json:"odometer,omitempty"`
		Liters      float64            `json:"liters,omitempty"`
		Description string             `json:"description,omitempty"`
	}

	// ScheduledMaintenance is due by date, by odometer, or both.
	ScheduledMaintenance struct {
		Meta
		VehicleID     string     `json:"vehicleId"`
		Description   string     `json:"description"`
		DueDate       Date       `json:"dueDate"`
		DueOdometer   int        `json:"dueOdometer,omitempty"`
		EstimatedCost Money      `json:"estimatedCost"`
		Every         Repetition `json:"every,omitempty"`
		AnchorDay     int        `json:"anchorDay,omitempty"`
		LastNotified  Date       `json:"lastNotified"`
		Completed     bool       `json:"completed"`
	}
)

const (
	Fuel        VehicleExpenseKind = "fuel"
	Maintenance VehicleExpenseKind = "maintenance"
	Insurance   VehicleExpenseKind = "insurance"
	Tax         VehicleExpenseKind = "tax"
	Toll        VehicleExpenseKind = "toll"
	Parking     VehicleExpenseKind = "parking"
	OtherCost   VehicleExpenseKind = "other"
)

func (v *Vehicle) Normalize() { v.Name = trim(v.Name) }

func (v Vehicle) Validate() error {
	if err := checkText(v.Name, ErrEmptyName); err != nil {
		return err
	}
	if v.Year != 0 && (v.Year < 1900 || v.Year > 2100) {
		return ErrInvalidYear
	}
	if v.Odometer < 0 {
		return ErrInvalidOdometer
	}
	return nil
}

func (e *VehicleExpense) Normalize() {
	e.Amount = e.Amount.Abs()
	if e.Kind == "" {
		e.Kind = OtherCost
	}
}

func (e VehicleExpense) Validate() error {
	if trim(e.VehicleID) == "" {
		return ErrMissingReference
	}
	if !oneOf(e.Kind, Fuel, Maintenance, Insurance, Tax, Toll, Parking, OtherCost) {
		return ErrInvalidType
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Odometer < 0 {
		return ErrInvalidOdometer
	}
	if math.IsNaN(e.Liters) || e.Liters < 0 {
		return ErrInvalidQuantity
	}
	return e.Date.Validate()
}

// Normalize keeps the day of month a recurring schedule started on, so
// monthly and yearly occurrences return to it after a short month.
func (m *ScheduledMaintenance) Normalize() {
	m.Description = trim(m.Description)
	if m.Every != "" && m.AnchorDay == 0 && !m.DueDate.IsZero() {
		m.AnchorDay = m.DueDate.Day()
	}
}

func (m ScheduledMaintenance) Validate() error {
	if trim(m.VehicleID) == "" {
		return ErrMissingReference
	}
	if err := checkText(m.Description, ErrEmptyDescription); err != nil {
		return err
	}
	if m.DueDate.IsZero() && m.DueOdometer <= 0 {
		return ErrMissingSchedule
	}
	if m.DueOdometer < 0 {
		return ErrInvalidOdometer
	}
	if m.EstimatedCost.IsNegative() {
		return ErrInvalidAmount
	}
	if m.Every != "" {
		if err := m.Every.Validate(); err != nil {
			return err
		}
		if m.DueDate.IsZero() {
			return ErrMissingSchedule
		}
	}
	if m.AnchorDay < 0 || m.AnchorDay > 31 {
		return ErrInvalidDay
	}
	return nil
}
