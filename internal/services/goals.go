package services

import (
	"context"
	"sort"

	"financaszen/internal/core"
)

type GoalProgress struct {
	Goal          core.FinancialGoal `json:"goal"`
	Saved         core.Money         `json:"saved"`
	Remaining     core.Money         `json:"remaining"`
	Percent       float64            `json:"percent"`
	MonthsLeft    int                `json:"monthsLeft"`
	MonthlyNeeded core.Money         `json:"monthlyNeeded"`
	Achieved      bool               `json:"achieved"`
	Contributions int                `json:"contributions"`
}

// MonthsBetween counts whole months from one day to a later one, never negative.
func MonthsBetween(from, to core.Date) int {
	if to.IsZero() || !to.After(from) {
		return 0
	}
	n := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		n--
	}
	if n < 0 {
		return 0
	}
	return n
}

func ProgressOf(g core.FinancialGoal, contributions []core.GoalContribution, today core.Date) GoalProgress {
	p := GoalProgress{Goal: g, Saved: g.InitialAmount}
	for _, c := range contributions {
		if c.GoalID != g.ID {
			continue
		}
		p.Saved = p.Saved.Add(c.Amount)
		p.Contributions++
	}
	p.Percent = core.Percent(p.Saved, g.TargetAmount)
	if p.Percent > 100 {
		p.Percent = 100
	}
	if p.Percent < 0 {
		p.Percent = 0
	}
	if rem := g.TargetAmount.Sub(p.Saved); !rem.IsNegative() {
		p.Remaining = rem
	}
	p.Achieved = p.Remaining.IsZero()
	p.MonthsLeft = MonthsBetween(today, g.Deadline)
	p.MonthlyNeeded = p.Remaining.DivInt(int64(max(1, p.MonthsLeft)))
	return p
}

// Goals tracks savings targets and their contributions.
type Goals struct {
	repos *Repos
}

func NewGoals(repos *Repos) *Goals {
	return &Goals{repos: repos}
}

// Contribute adds a contribution to an existing goal.
func (s *Goals) Contribute(ctx context.Context, goalID string, c core.GoalContribution) (core.GoalContribution, error) {
	if _, err := s.repos.Goals.Get(ctx, goalID); err != nil {
		return c, err
	}
	c.GoalID = goalID
	if c.Date.IsZero() {
		c.Date = core.Today()
	}
	return s.repos.Contributions.Create(ctx, c)
}

// Contributions lists a goal's contributions, oldest first.
func (s *Goals) Contributions(ctx context.Context, goalID string) ([]core.GoalContribution, error) {
	out, err := s.repos.Contributions.Filter(ctx, func(c core.GoalContribution) bool { return c.GoalID == goalID })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Goals) Progress(ctx context.Context, goalID string, today core.Date) (GoalProgress, error) {
	g, err := s.repos.Goals.Get(ctx, goalID)
	if err != nil {
		return GoalProgress{}, err
	}
	cs, err := s.Contributions(ctx, goalID)
	if err != nil {
		return GoalProgress{}, err
	}
	return ProgressOf(g, cs, today), nil
}

func (s *Goals) AllProgress(ctx context.Context, today core.Date) ([]GoalProgress, error) {
	goals, err := s.repos.Goals.List(ctx)
	if err != nil {
		return nil, err
	}
	cs, err := s.repos.Contributions.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, ProgressOf(g, cs, today))
	}
	return out, nil
}
