package services

import (
	"context"
	"sort"
	"time"

	"financaszen/internal/core"
	"financaszen/internal/finance"
)

type FixedPosition struct {
	Asset         core.FixedIncomeAsset `json:"asset"`
	CurrentValue  core.Money            `json:"currentValue"`
	MaturityValue core.Money            `json:"maturityValue"`
	Yield         core.Money            `json:"yield"`
}

type VariablePosition struct {
	Asset       core.VariableIncomeAsset `json:"asset"`
	Cost        core.Money               `json:"cost"`
	Market      core.Money               `json:"market"`
	Gain        core.Money               `json:"gain"`
	GainPercent float64                  `json:"gainPercent"`
}

type AllocationSlice struct {
	Class   string     `json:"class"`
	Kind    string     `json:"kind"`
	Value   core.Money `json:"value"`
	Percent float64    `json:"percent"`
}

type PortfolioSummary struct {
	Fixed       []FixedPosition    `json:"fixed"`
	Variable    []VariablePosition `json:"variable"`
	Invested    core.Money         `json:"invested"`
	Market      core.Money         `json:"market"`
	Gain        core.Money         `json:"gain"`
	GainPercent float64            `json:"gainPercent"`
	Allocation  []AllocationSlice  `json:"allocation"`
}

// ValueFixed projects a fixed-income asset to today and to maturity.
func ValueFixed(a core.FixedIncomeAsset, today core.Date) FixedPosition {
	grow := func(to time.Time) core.Money {
		if !to.After(a.PurchaseDate.Time) {
			return a.Principal
		}
		return core.FromFloat(finance.FutureValue(a.Principal.Float(), a.AnnualRate, a.PurchaseDate.Time, to))
	}
	at := today.Time
	if !a.MaturityDate.IsZero() && a.MaturityDate.Before(today) {
		at = a.MaturityDate.Time
	}
	p := FixedPosition{Asset: a, CurrentValue: grow(at)}
	if a.MaturityDate.IsZero() {
		p.MaturityValue = p.CurrentValue
	} else {
		p.MaturityValue = grow(a.MaturityDate.Time)
	}
	p.Yield = p.CurrentValue.Sub(a.Principal)
	return p
}

func ValueVariable(a core.VariableIncomeAsset) VariablePosition {
	p := VariablePosition{
		Asset:  a,
		Cost:   a.AveragePrice.MulFloat(a.Quantity),
		Market: a.Price().MulFloat(a.Quantity),
	}
	p.Gain = p.Market.Sub(p.Cost)
	p.GainPercent = core.Percent(p.Gain, p.Cost)
	return p
}

// Summarize totals the positions and splits the market value by kind.
func Summarize(fixed []core.FixedIncomeAsset, variable []core.VariableIncomeAsset, today core.Date) PortfolioSummary {
	s := PortfolioSummary{Fixed: []FixedPosition{}, Variable: []VariablePosition{}}
	type key struct{ class, kind string }
	byKind := map[key]core.Money{}

	for _, a := range fixed {
		p := ValueFixed(a, today)
		s.Fixed = append(s.Fixed, p)
		s.Invested = s.Invested.Add(a.Principal)
		s.Market = s.Market.Add(p.CurrentValue)
		byKind[key{"fixed", string(a.Kind)}] = byKind[key{"fixed", string(a.Kind)}].Add(p.CurrentValue)
	}
	for _, a := range variable {
		p := ValueVariable(a)
		s.Variable = append(s.Variable, p)
		s.Invested = s.Invested.Add(p.Cost)
		s.Market = s.Market.Add(p.Market)
		byKind[key{"variable", string(a.Kind)}] = byKind[key{"variable", string(a.Kind)}].Add(p.Market)
	}
	s.Gain = s.Market.Sub(s.Invested)
	s.GainPercent = core.Percent(s.Gain, s.Invested)

	s.Allocation = make([]AllocationSlice, 0, len(byKind))
	for k, v := range byKind {
		s.Allocation = append(s.Allocation, AllocationSlice{Class: k.class, Kind: k.kind, Value: v, Percent: core.Percent(v, s.Market)})
	}
	sort.Slice(s.Allocation, func(i, j int) bool {
		a, b := s.Allocation[i], s.Allocation[j]
		if a.Value.Cents != b.Value.Cents {
			return a.Value.Cents > b.Value.Cents
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		return a.Kind < b.Kind
	})
	return s
}

// Portfolio values the investment collections.
type Portfolio struct {
	repos *Repos
}

func NewPortfolio(repos *Repos) *Portfolio {
	return &Portfolio{repos: repos}
}

func (p *Portfolio) Summary(ctx context.Context, today core.Date) (PortfolioSummary, error) {
	fixed, err := p.repos.FixedIncome.List(ctx)
	if err != nil {
		return PortfolioSummary{}, err
	}
	variable, err := p.repos.VariableIncome.List(ctx)
	if err != nil {
		return PortfolioSummary{}, err
	}
	return Summarize(fixed, variable, today), nil
}
