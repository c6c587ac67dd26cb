package services

import (
	"context"
	"sort"

	"financaszen/internal/core"
)

type StageProgress struct {
	Stage      core.RenovationStage `json:"stage"`
	Spent      core.Money           `json:"spent"`
	Remaining  core.Money           `json:"remaining"`
	Percent    float64              `json:"percent"`
	OverBudget bool                 `json:"overBudget"`
}

type SupplierSpend struct {
	SupplierID string     `json:"supplierId"`
	Name       string     `json:"name"`
	Spent      core.Money `json:"spent"`
}

type RenovationProgress struct {
	Renovation         core.Renovation                      `json:"renovation"`
	Spent              core.Money                           `json:"spent"`
	Remaining          core.Money                           `json:"remaining"`
	Percent            float64                              `json:"percent"`
	OverBudget         bool                                 `json:"overBudget"`
	Stages             []StageProgress                      `json:"stages"`
	Unstaged           core.Money                           `json:"unstaged"`
	ByCategory         map[core.ExpenseCategory]core.Money `json:"byCategory"`
	BySupplier         []SupplierSpend                      `json:"bySupplier"`
	MaterialsEstimate  core.Money                           `json:"materialsEstimate"`
	MaterialsPurchased core.Money                           `json:"materialsPurchased"`
	PurchasedPercent   float64                              `json:"purchasedPercent"`
}

// RenovationInputs are the records belonging to one renovation.
type RenovationInputs struct {
	Stages    []core.RenovationStage
	Expenses  []core.RenovationExpense
	Materials []core.Material
	Suppliers []core.Supplier
}

func ProgressOfRenovation(r core.Renovation, in RenovationInputs) RenovationProgress {
	p := RenovationProgress{
		Renovation: r,
		Stages:     []StageProgress{},
		ByCategory: map[core.ExpenseCategory]core.Money{},
		BySupplier: []SupplierSpend{},
	}
	stageSpent := map[string]core.Money{}
	supplierSpent := map[string]core.Money{}
	for _, e := range in.Expenses {
		if e.RenovationID != r.ID {
			continue
		}
		amt := e.Amount.Abs()
		p.Spent = p.Spent.Add(amt)
		p.ByCategory[e.Category] = p.ByCategory[e.Category].Add(amt)
		if e.StageID != "" {
			stageSpent[e.StageID] = stageSpent[e.StageID].Add(amt)
		} else {
			p.Unstaged = p.Unstaged.Add(amt)
		}
		if e.SupplierID != "" {
			supplierSpent[e.SupplierID] = supplierSpent[e.SupplierID].Add(amt)
		}
	}
	p.Percent = core.Percent(p.Spent, r.Budget)
	p.OverBudget = p.Spent.Cents > r.Budget.Cents
	if !p.OverBudget {
		p.Remaining = r.Budget.Sub(p.Spent)
	}

	stages := make([]core.RenovationStage, 0, len(in.Stages))
	for _, s := range in.Stages {
		if s.RenovationID == r.ID {
			stages = append(stages, s)
		}
	}
	sort.SliceStable(stages, func(i, j int) bool { return stages[i].Position < stages[j].Position })
	for _, s := range stages {
		sp := StageProgress{Stage: s, Spent: stageSpent[s.ID]}
		sp.Percent = core.Percent(sp.Spent, s.Budget)
		sp.OverBudget = !s.Budget.IsZero() && sp.Spent.Cents > s.Budget.Cents
		if !sp.OverBudget {
			sp.Remaining = s.Budget.Sub(sp.Spent)
			if sp.Remaining.IsNegative() {
				sp.Remaining = core.Money{}
			}
		}
		p.Stages = append(p.Stages, sp)
	}

	names := make(map[string]string, len(in.Suppliers))
	for _, s := range in.Suppliers {
		names[s.ID] = s.Name
	}
	for id, spent := range supplierSpent {
		p.BySupplier = append(p.BySupplier, SupplierSpend{SupplierID: id, Name: names[id], Spent: spent})
	}
	sort.Slice(p.BySupplier, func(i, j int) bool {
		if p.BySupplier[i].Spent.Cents != p.BySupplier[j].Spent.Cents {
			return p.BySupplier[i].Spent.Cents > p.BySupplier[j].Spent.Cents
		}
		return p.BySupplier[i].SupplierID < p.BySupplier[j].SupplierID
	})

	for _, m := range in.Materials {
		if m.RenovationID != r.ID {
			continue
		}
		cost := m.Cost()
		p.MaterialsEstimate = p.MaterialsEstimate.Add(cost)
		if m.Purchased {
			p.MaterialsPurchased = p.MaterialsPurchased.Add(cost)
		}
	}
	p.PurchasedPercent = core.Percent(p.MaterialsPurchased, p.MaterialsEstimate)
	return p
}

// Renovations follows renovation budgets.
type Renovations struct {
	repos *Repos
}

func NewRenovations(repos *Repos) *Renovations {
	return &Renovations{repos: repos}
}

func (s *Renovations) Progress(ctx context.Context, renovationID string) (RenovationProgress, error) {
	r, err := s.repos.Renovations.Get(ctx, renovationID)
	if err != nil {
		return RenovationProgress{}, err
	}
	var in RenovationInputs
	if in.Stages, err = s.repos.Stages.Filter(ctx, func(st core.RenovationStage) bool { return st.RenovationID == renovationID }); err != nil {
		return RenovationProgress{}, err
	}
	if in.Expenses, err = s.repos.RenovationExpenses.Filter(ctx, func(e core.RenovationExpense) bool { return e.RenovationID == renovationID }); err != nil {
		return RenovationProgress{}, err
	}
	if in.Materials, err = s.repos.Materials.Filter(ctx, func(m core.Material) bool { return m.RenovationID == renovationID }); err != nil {
		return RenovationProgress{}, err
	}
	if in.Suppliers, err = s.repos.Suppliers.List(ctx); err != nil {
		return RenovationProgress{}, err
	}
	return ProgressOfRenovation(r, in), nil
}
