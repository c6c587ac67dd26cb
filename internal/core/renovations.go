package core

import "math"

type (
	RenovationStatus string
	ExpenseCategory  string

	Renovation struct {
		Meta
		Name        string           `json:"name"`
		Description string           `json:"description,omitempty"`
		Budget      Money            `json:"budget"`
		StartDate   Date             `json:"startDate"`
		EndDate     Date             `json:"endDate"`
		Status      RenovationStatus `json:"status"`
	}

	RenovationStage struct {
		Meta
		RenovationID string           `json:"renovationId"`
		Name         string           `json:"name"`
		Budget       Money            `json:"budget"`
		Status       RenovationStatus `json:"status"`
		Position     int              `json:"position"`
	}

	RenovationExpense struct {
		Meta
		RenovationID string          `json:"renovationId"`
		StageID      string          `json:"stageId,omitempty"`
		SupplierID   string          `json:"supplierId,omitempty"`
		Description  string          `json:"description"`
		Amount       Money           `json:"amount"`
		Date         Date            `json:"date"`
		Category     ExpenseCategory `json:"category"`
	}

	Material struct {
		Meta
		RenovationID string  `json:"renovationId"`
		StageID      string  `json:"stageId,omitempty"`
		SupplierID   string  `json:"supplierId,omitempty"`
		Name         string  `json:"name"`
		Quantity     float64 `json:"quantity"`
		Unit         string  `json:"unit,omitempty"`
		UnitPrice    Money   `json:"unitPrice"`
		Purchased    bool    `json:"purchased"`
	}

	Supplier struct {
		Meta
		Name    string  `json:"name"`
		Service string  `json:"service,omitempty"`
		Phone   string  `json:"phone,omitempty"`
		Email   string  `json:"email,omitempty"`
		Rating  float64 `json:"rating"`
		Notes   string  `json:"notes,omitempty"`
	}
)

const (
	Planning   RenovationStatus = "planning"
	InProgress RenovationStatus = "in_progress"
	Paused     RenovationStatus = "paused"
	Completed  RenovationStatus = "completed"

	Labor          ExpenseCategory = "labor"
	MaterialCost   ExpenseCategory = "material"
	Service        ExpenseCategory = "service"
	OtherRenovCost ExpenseCategory = "other"
)

func validStatus(s RenovationStatus) bool {
	return oneOf(s, Planning, InProgress, Paused, Completed)
}

func (r *Renovation) Normalize() {
	r.Name = trim(r.Name)
	if r.Status == "" {
		r.Status = Planning
	}
}

func (r Renovation) Validate() error {
	if err := checkText(r.Name, ErrEmptyName); err != nil {
		return err
	}
	if r.Budget.Cents <= 0 {
		return ErrInvalidBudget
	}
	if !validStatus(r.Status) {
		return ErrInvalidStatus
	}
	if r.StartDate.IsZero() {
		return nil
	}
	return checkRange(r.StartDate, r.EndDate)
}

func (s *RenovationStage) Normalize() {
	s.Name = trim(s.Name)
	if s.Status == "" {
		s.Status = Planning
	}
}

func (s RenovationStage) Validate() error {
	if trim(s.RenovationID) == "" {
		return ErrMissingReference
	}
	if err := checkText(s.Name, ErrEmptyName); err != nil {
		return err
	}
	if s.Budget.IsNegative() {
		return ErrInvalidBudget
	}
	if !validStatus(s.Status) {
		return ErrInvalidStatus
	}
	return nil
}

func (e *RenovationExpense) Normalize() {
	e.Amount = e.Amount.Abs()
	e.Description = trim(e.Description)
	if e.Category == "" {
		e.Category = OtherRenovCost
	}
}

func (e RenovationExpense) Validate() error {
	if trim(e.RenovationID) == "" {
		return ErrMissingReference
	}
	if err := checkText(e.Description, ErrEmptyDescription); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !oneOf(e.Category, Labor, MaterialCost, Service, OtherRenovCost) {
		return ErrInvalidType
	}
	return e.Date.Validate()
}

func (m *Material) Normalize() { m.Name = trim(m.Name) }

func (m Material) Validate() error {
	if trim(m.RenovationID) == "" {
		return ErrMissingReference
	}
	if err := checkText(m.Name, ErrEmptyName); err != nil {
		return err
	}
	if math.IsNaN(m.Quantity) || math.IsInf(m.Quantity, 0) || m.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if m.UnitPrice.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// Cost is quantity times unit price.
func (m Material) Cost() Money { return m.UnitPrice.MulFloat(m.Quantity) }

func (s *Supplier) Normalize() { s.Name = trim(s.Name) }

func (s Supplier) Validate() error {
	if err := checkText(s.Name, ErrEmptyName); err != nil {
		return err
	}
	if math.IsNaN(s.Rating) || s.Rating < 0 || s.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}
