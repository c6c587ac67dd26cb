package core

import "math"

type (
	TravelEvent struct {
		Meta
		Title           string  `json:"title"`
		Origin          string  `json:"origin,omitempty"`
		Destination     string  `json:"destination"`
		StartDate       Date    `json:"startDate"`
		EndDate         Date    `json:"endDate"`
		Budget          Money   `json:"budget"`
		Notes           string  `json:"notes,omitempty"`
		KmPerLiter      float64 `json:"kmPerLiter,omitempty"`
		FuelPrice       Money   `json:"fuelPrice"`
		SyncCalendar    bool    `json:"syncCalendar"`
		CalendarEventID string  `json:"calendarEventId,omitempty"`
		OwnerID         string  `json:"ownerId,omitempty"`
	}

	// TravelRoutePoint is one stop of a trip, ordered by Position.
	TravelRoutePoint struct {
		Meta
		EventID   string  `json:"eventId"`
		Name      string  `json:"name,omitempty"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Position  int     `json:"position"`
	}
)

func (e *TravelEvent) Normalize() {
	e.Title = trim(e.Title)
	e.Destination = trim(e.Destination)
}

func (e TravelEvent) Validate() error {
	if err := checkText(e.Title, ErrEmptyName); err != nil {
		return err
	}
	if trim(e.Destination) == "" {
		return ErrEmptyDescription
	}
	if e.Budget.IsNegative() || e.FuelPrice.IsNegative() {
		return ErrInvalidAmount
	}
	if math.IsNaN(e.KmPerLiter) || e.KmPerLiter < 0 {
		return ErrInvalidQuantity
	}
	return checkRange(e.StartDate, e.EndDate)
}

// Days counts trip days, inclusive of both ends.
func (e TravelEvent) Days() int {
	if e.StartDate.IsZero() {
		return 0
	}
	if e.EndDate.IsZero() {
		return 1
	}
	return e.StartDate.DaysUntil(e.EndDate) + 1
}

func (p *TravelRoutePoint) Normalize() { p.Name = trim(p.Name) }

func (p TravelRoutePoint) Validate() error {
	if trim(p.EventID) == "" {
		return ErrMissingReference
	}
	if !ValidCoordinates(p.Latitude, p.Longitude) {
		return ErrInvalidCoordinates
	}
	return nil
}

// ValidCoordinates checks latitude and longitude ranges.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
