package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"financaszen/internal/amqp"
	"financaszen/internal/core"
	"financaszen/internal/log"
	"financaszen/internal/tolls"
)

// CalendarPublisher queues calendar event creation. *amqp.Client implements it.
type CalendarPublisher interface {
	PublishCalendarSync(ctx context.Context, msg *amqp.CalendarSyncMessage) error
}

type TravelPlan struct {
	EventID      string                  `json:"eventId"`
	Days         int                     `json:"days"`
	Points       []core.TravelRoutePoint `json:"points"`
	DistanceKm   float64                 `json:"distanceKm"`
	Tolls        tolls.Estimate          `json:"tolls"`
	Fuel         core.Money              `json:"fuel"`
	Total        core.Money              `json:"total"`
	Budget       core.Money              `json:"budget"`
	BudgetPerDay core.Money              `json:"budgetPerDay"`
	WithinBudget bool                    `json:"withinBudget"`
}

func sortPoints(ps []core.TravelRoutePoint) {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Position < ps[j].Position })
}

// PlanOf estimates distance, tolls and fuel for a trip's ordered points.
func PlanOf(e core.TravelEvent, points []core.TravelRoutePoint, est *tolls.Estimator) TravelPlan {
	sortPoints(points)
	route := make([]tolls.Point, 0, len(points))
	for _, p := range points {
		route = append(route, tolls.Point{Lat: p.Latitude, Lng: p.Longitude})
	}
	plan := TravelPlan{
		EventID: e.ID,
		Days:    e.Days(),
		Points:  points,
		Tolls:   est.EstimateRoute(route),
		Budget:  e.Budget,
	}
	plan.DistanceKm = roundTo(plan.Tolls.DistanceKm, 2)
	if e.KmPerLiter > 0 && !e.FuelPrice.IsZero() {
		plan.Fuel = e.FuelPrice.MulFloat(plan.Tolls.DistanceKm / e.KmPerLiter)
	}
	plan.Total = plan.Fuel.Add(plan.Tolls.Total)
	if plan.Days > 0 {
		plan.BudgetPerDay = e.Budget.DivInt(int64(plan.Days))
	}
	plan.WithinBudget = e.Budget.IsZero() || plan.Total.Cents <= e.Budget.Cents
	return plan
}

// TravelEventMessage builds the calendar request for a trip: 09:00 on the
// first day to 18:00 on the last, in the given zone.
func TravelEventMessage(e core.TravelEvent, tz string) *amqp.CalendarSyncMessage {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	end := e.EndDate
	if end.IsZero() {
		end = e.StartDate
	}
	start := time.Date(e.StartDate.Year(), e.StartDate.Month(), e.StartDate.Day(), 9, 0, 0, 0, loc)
	stop := time.Date(end.Year(), end.Month(), end.Day(), 18, 0, 0, 0, loc)
	msg := amqp.NewCalendarSyncMessage(amqp.KindTravel, e.OwnerID, e.ID, e.Title, start, stop)
	msg.Description = fmt.Sprintf("Viagem para %s", e.Destination)
	if e.Notes != "" {
		msg.Description += "\n\n" + e.Notes
	}
	msg.TimeZone = loc.String()
	return msg
}

// Travel manages trips, their route points and calendar sync.
type Travel struct {
	repos     *Repos
	tolls     *tolls.Estimator
	publisher CalendarPublisher
	timeZone  string
	logger    *log.Logger
}

func NewTravel(repos *Repos, est *tolls.Estimator, publisher CalendarPublisher, timeZone string, logger *log.Logger) *Travel {
	if logger == nil {
		logger = log.Discard()
	}
	return &Travel{repos: repos, tolls: est, publisher: publisher, timeZone: timeZone, logger: logger.WithComponent(log.ComponentTravel)}
}

// Create saves the trip for its owner and queues the calendar event when
// requested. A failed publish is logged; the trip stays saved.
func (s *Travel) Create(ctx context.Context, ownerID string, e core.TravelEvent) (core.TravelEvent, error) {
	e.OwnerID = ownerID
	e.CalendarEventID = ""
	created, err := s.repos.Travel.Create(ctx, e)
	if err != nil {
		return created, err
	}
	if created.SyncCalendar {
		s.publish(ctx, created)
	}
	return created, nil
}

func (s *Travel) publish(ctx context.Context, e core.TravelEvent) {
	if s.publisher == nil {
		s.logger.WarnContext(ctx, "AMQP client not available, skipping calendar sync",
			log.FieldEntityID, e.ID)
		return
	}
	if err := s.publisher.PublishCalendarSync(ctx, TravelEventMessage(e, s.timeZone)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish calendar sync message",
			log.FieldEntityID, e.ID,
			log.FieldError, err)
	}
}

// AddPoint appends a route point to an existing trip.
func (s *Travel) AddPoint(ctx context.Context, eventID string, p core.TravelRoutePoint) (core.TravelRoutePoint, error) {
	points, err := s.Points(ctx, eventID)
	if err != nil {
		return p, err
	}
	p.EventID = eventID
	if p.Position == 0 {
		p.Position = len(points) + 1
	}
	return s.repos.RoutePoints.Create(ctx, p)
}

// Points lists a trip's route in order.
func (s *Travel) Points(ctx context.Context, eventID string) ([]core.TravelRoutePoint, error) {
	if _, err := s.repos.Travel.Get(ctx, eventID); err != nil {
		return nil, err
	}
	ps, err := s.repos.RoutePoints.Filter(ctx, func(p core.TravelRoutePoint) bool { return p.EventID == eventID })
	if err != nil {
		return nil, err
	}
	sortPoints(ps)
	return ps, nil
}

func (s *Travel) Plan(ctx context.Context, eventID string) (TravelPlan, error) {
	e, err := s.repos.Travel.Get(ctx, eventID)
	if err != nil {
		return TravelPlan{}, err
	}
	ps, err := s.repos.RoutePoints.Filter(ctx, func(p core.TravelRoutePoint) bool { return p.EventID == eventID })
	if err != nil {
		return TravelPlan{}, err
	}
	return PlanOf(e, ps, s.tolls), nil
}

// SetCalendarEventID records the calendar event created for a trip.
func (s *Travel) SetCalendarEventID(ctx context.Context, id, calendarEventID string) error {
	e, err := s.repos.Travel.Get(ctx, id)
	if err != nil {
		return err
	}
	e.CalendarEventID = calendarEventID
	_, err = s.repos.Travel.Update(ctx, id, e)
	return err
}

// PendingSync lists trips waiting for their calendar event.
func (s *Travel) PendingSync(ctx context.Context) ([]core.TravelEvent, error) {
	return s.repos.Travel.Filter(ctx, func(e core.TravelEvent) bool {
		return e.SyncCalendar && e.CalendarEventID == "" && e.OwnerID != ""
	})
}

// Get returns a trip.
func (s *Travel) Get(ctx context.Context, id string) (core.TravelEvent, error) {
	return s.repos.Travel.Get(ctx, id)
}
