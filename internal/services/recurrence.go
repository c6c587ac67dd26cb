package services

import (
	"fmt"
	"time"

	"financaszen/internal/core"
)

// RecurrenceChecker decides when a recurring maintenance is reminded again
// and where its next occurrence falls. One implementation per frequency.
type RecurrenceChecker interface {
	// IsDue reports whether a reminder should go out now, given the last
	// reminder and the anchor date of the schedule.
	IsDue(lastNotified, now time.Time, anchor core.Date) bool
	// Next returns the occurrence following d. Monthly and yearly schedules
	// land on anchorDay, clamped to the month; zero means d's day.
	Next(d core.Date, anchorDay int) core.Date
}

type DailyChecker struct{}

// IsDue is true once per calendar day.
func (DailyChecker) IsDue(lastNotified, now time.Time, _ core.Date) bool {
	if lastNotified.IsZero() {
		return true
	}
	return lastNotified.Format("2006-01-02") != now.Format("2006-01-02")
}

func (DailyChecker) Next(d core.Date, _ int) core.Date { return core.DateOf(d.AddDate(0, 0, 1)) }

type WeeklyChecker struct{}

// IsDue is true when 7 or more days passed since the last reminder.
func (WeeklyChecker) IsDue(lastNotified, now time.Time, _ core.Date) bool {
	if lastNotified.IsZero() {
		return true
	}
	return now.Sub(lastNotified).Hours()/24 >= 7
}

func (WeeklyChecker) Next(d core.Date, _ int) core.Date { return core.DateOf(d.AddDate(0, 0, 7)) }

type MonthlyChecker struct{}

// IsDue is true in a new month once the anchor day (clamped) is reached.
func (MonthlyChecker) IsDue(lastNotified, now time.Time, anchor core.Date) bool {
	if lastNotified.IsZero() {
		return true
	}
	if lastNotified.Year() == now.Year() && lastNotified.Month() == now.Month() {
		return false
	}
	target := anchor.Day()
	if last := core.DaysIn(now.Year(), int(now.Month())); target > last {
		target = last
	}
	return now.Day() >= target
}

func (MonthlyChecker) Next(d core.Date, anchorDay int) core.Date {
	return core.ClampedDate(d.Year(), int(d.Month())+1, dayOr(anchorDay, d))
}

type YearlyChecker struct{}

// IsDue is true in a new year once the anchor month and day are reached.
func (YearlyChecker) IsDue(lastNotified, now time.Time, anchor core.Date) bool {
	if lastNotified.IsZero() {
		return true
	}
	if lastNotified.Year() == now.Year() {
		return false
	}
	switch {
	case now.Month() < anchor.Month():
		return false
	case now.Month() > anchor.Month():
		return true
	}
	target := anchor.Day()
	if last := core.DaysIn(now.Year(), int(now.Month())); target > last {
		target = last
	}
	return now.Day() >= target
}

func (YearlyChecker) Next(d core.Date, anchorDay int) core.Date {
	return core.ClampedDate(d.Year()+1, int(d.Month()), dayOr(anchorDay, d))
}

func dayOr(anchorDay int, d core.Date) int {
	if anchorDay > 0 {
		return anchorDay
	}
	return d.Day()
}

var recurrenceCheckers = map[core.Repetition]RecurrenceChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetRecurrenceChecker returns the checker for a repetition.
func GetRecurrenceChecker(every core.Repetition) (RecurrenceChecker, error) {
	c, ok := recurrenceCheckers[every]
	if !ok {
		return nil, fmt.Errorf("unknown repetition type: %s", every)
	}
	return c, nil
}

// RegisterRecurrenceChecker adds or replaces the checker of a repetition.
func RegisterRecurrenceChecker(every core.Repetition, c RecurrenceChecker) {
	recurrenceCheckers[every] = c
}
