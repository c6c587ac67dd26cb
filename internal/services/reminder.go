package services

import (
	"context"
	"fmt"
	"time"

	"financaszen/internal/amqp"
	"financaszen/internal/core"
	"financaszen/internal/log"
)

// ReminderProcessor turns due maintenances into calendar reminders and
// moves recurring ones to their next occurrence.
type ReminderProcessor struct {
	repos      *Repos
	publisher  CalendarPublisher
	userID     string
	windowDays int
	timeZone   string
	logger     *log.Logger
}

func NewReminderProcessor(repos *Repos, publisher CalendarPublisher, userID string, windowDays int, timeZone string, logger *log.Logger) *ReminderProcessor {
	if logger == nil {
		logger = log.Discard()
	}
	return &ReminderProcessor{
		repos:      repos,
		publisher:  publisher,
		userID:     userID,
		windowDays: windowDays,
		timeZone:   timeZone,
		logger:     logger.WithComponent(log.ComponentReminder),
	}
}

// MaintenanceMessage is the calendar request for a maintenance: one hour at
// 09:00 on the due date.
func MaintenanceMessage(m core.ScheduledMaintenance, vehicleName, userID, tz string) *amqp.CalendarSyncMessage {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	start := time.Date(m.DueDate.Year(), m.DueDate.Month(), m.DueDate.Day(), 9, 0, 0, 0, loc)
	title := m.Description
	if vehicleName != "" {
		title = fmt.Sprintf("%s (%s)", m.Description, vehicleName)
	}
	msg := amqp.NewCalendarSyncMessage(amqp.KindMaintenance, userID, m.ID, title, start, start.Add(time.Hour))
	if !m.EstimatedCost.IsZero() {
		msg.Description = "Custo estimado: " + m.EstimatedCost.Format()
	}
	msg.TimeZone = loc.String()
	return msg
}

// remind reports whether m should be reminded now. One-off maintenances are
// reminded once inside the window; recurring ones follow their checker.
func (p *ReminderProcessor) remind(m core.ScheduledMaintenance, now time.Time, horizon core.Date) (bool, error) {
	if m.DueDate.After(horizon) {
		return false, nil
	}
	if m.Every == "" {
		return m.LastNotified.IsZero(), nil
	}
	checker, err := GetRecurrenceChecker(m.Every)
	if err != nil {
		return false, err
	}
	return checker.IsDue(m.LastNotified.Time, now, m.DueDate), nil
}

// ProcessDue sends the reminders due at now and returns how many were sent.
func (p *ReminderProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	ms, err := p.repos.Maintenances.Filter(ctx, func(m core.ScheduledMaintenance) bool {
		return !m.Completed && !m.DueDate.IsZero()
	})
	if err != nil {
		return 0, fmt.Errorf("list maintenances: %w", err)
	}
	vehicles, err := p.repos.Vehicles.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list vehicles: %w", err)
	}
	names := make(map[string]string, len(vehicles))
	for _, v := range vehicles {
		names[v.ID] = v.Name
	}

	today := core.DateOf(now)
	horizon := core.DateOf(today.AddDate(0, 0, p.windowDays))
	p.logger.InfoContext(ctx, "Processing scheduled maintenances",
		"total_open", len(ms),
		"processing_date", today.String())

	sent := 0
	for _, m := range ms {
		due, err := p.remind(m, now, horizon)
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to check maintenance dueness",
				log.FieldEntityID, m.ID,
				log.FieldError, err)
			continue
		}
		changed := p.advance(&m, today)
		if due {
			if err := p.send(ctx, m, names[m.VehicleID]); err != nil {
				p.logger.ErrorContext(ctx, "Failed to publish maintenance reminder",
					log.FieldEntityID, m.ID,
					log.FieldError, err)
				continue
			}
			m.LastNotified = today
			changed = true
			sent++
		}
		if !changed {
			continue
		}
		if _, err := p.repos.Maintenances.Update(ctx, m.ID, m); err != nil {
			p.logger.ErrorContext(ctx, "Failed to update maintenance",
				log.FieldEntityID, m.ID,
				log.FieldError, err)
		}
	}

	p.logger.InfoContext(ctx, "Maintenance reminder processing complete",
		"sent", sent,
		"total_checked", len(ms))
	return sent, nil
}

// advance moves a recurring maintenance whose date has passed to its first
// occurrence on or after today, keeping the anchor day.
func (p *ReminderProcessor) advance(m *core.ScheduledMaintenance, today core.Date) bool {
	if m.Every == "" || !m.DueDate.Before(today) {
		return false
	}
	checker, err := GetRecurrenceChecker(m.Every)
	if err != nil {
		return false
	}
	anchor := m.AnchorDay
	if anchor == 0 {
		anchor = m.DueDate.Day()
	}
	for m.DueDate.Before(today) {
		m.DueDate = checker.Next(m.DueDate, anchor)
	}
	return true
}

func (p *ReminderProcessor) send(ctx context.Context, m core.ScheduledMaintenance, vehicleName string) error {
	if p.publisher == nil || p.userID == "" {
		p.logger.InfoContext(ctx, "Maintenance due",
			log.FieldEntityID, m.ID,
			"description", m.Description,
			"due_date", m.DueDate.String(),
			"vehicle", vehicleName)
		return nil
	}
	msg := MaintenanceMessage(m, vehicleName, p.userID, p.timeZone)
	return p.publisher.PublishCalendarSync(ctx, msg)
}
