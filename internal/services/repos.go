package services

import (
	"financaszen/internal/core"
	"financaszen/internal/log"
	"financaszen/internal/storage"
)

// Collection names, also used as cache invalidation keys.
const (
	CollTransactions       = "transactions"
	CollForecasts          = "forecasts"
	CollAccounts           = "bank_accounts"
	CollCards              = "credit_cards"
	CollFixedIncome        = "fixed_income"
	CollVariableIncome     = "variable_income"
	CollGoals              = "financial_goals"
	CollContributions      = "goal_contributions"
	CollVehicles           = "vehicles"
	CollVehicleExpenses    = "vehicle_expenses"
	CollMaintenances       = "scheduled_maintenances"
	CollRenovations        = "renovations"
	CollStages             = "renovation_stages"
	CollRenovationExpenses = "renovation_expenses"
	CollMaterials          = "materials"
	CollSuppliers          = "suppliers"
	CollTravel             = "travel_events"
	CollRoutePoints        = "travel_route_points"
)

// Repos groups one Repo per entity collection.
type Repos struct {
	Transactions       *Repo[core.Transaction, *core.Transaction]
	Forecasts          *Repo[core.ForecastItem, *core.ForecastItem]
	Accounts           *Repo[core.BankAccount, *core.BankAccount]
	Cards              *Repo[core.CreditCard, *core.CreditCard]
	FixedIncome        *Repo[core.FixedIncomeAsset, *core.FixedIncomeAsset]
	VariableIncome     *Repo[core.VariableIncomeAsset, *core.VariableIncomeAsset]
	Goals              *Repo[core.FinancialGoal, *core.FinancialGoal]
	Contributions      *Repo[core.GoalContribution, *core.GoalContribution]
	Vehicles           *Repo[core.Vehicle, *core.Vehicle]
	VehicleExpenses    *Repo[core.VehicleExpense, *core.VehicleExpense]
	Maintenances       *Repo[core.ScheduledMaintenance, *core.ScheduledMaintenance]
	Renovations        *Repo[core.Renovation, *core.Renovation]
	Stages             *Repo[core.RenovationStage, *core.RenovationStage]
	RenovationExpenses *Repo[core.RenovationExpense, *core.RenovationExpense]
	Materials          *Repo[core.Material, *core.Material]
	Suppliers          *Repo[core.Supplier, *core.Supplier]
	Travel             *Repo[core.TravelEvent, *core.TravelEvent]
	RoutePoints        *Repo[core.TravelRoutePoint, *core.TravelRoutePoint]
}

func NewRepos(s storage.Store, logger *log.Logger) *Repos {
	if logger == nil {
		logger = log.Discard()
	}
	l := logger.WithComponent(log.ComponentLedger)
	return &Repos{
		Transactions:       NewRepo[core.Transaction](s, CollTransactions, l),
		Forecasts:          NewRepo[core.ForecastItem](s, CollForecasts, l),
		Accounts:           NewRepo[core.BankAccount](s, CollAccounts, l),
		Cards:              NewRepo[core.CreditCard](s, CollCards, l),
		FixedIncome:        NewRepo[core.FixedIncomeAsset](s, CollFixedIncome, l),
		VariableIncome:     NewRepo[core.VariableIncomeAsset](s, CollVariableIncome, l),
		Goals:              NewRepo[core.FinancialGoal](s, CollGoals, l),
		Contributions:      NewRepo[core.GoalContribution](s, CollContributions, l),
		Vehicles:           NewRepo[core.Vehicle](s, CollVehicles, l),
		VehicleExpenses:    NewRepo[core.VehicleExpense](s, CollVehicleExpenses, l),
		Maintenances:       NewRepo[core.ScheduledMaintenance](s, CollMaintenances, l),
		Renovations:        NewRepo[core.Renovation](s, CollRenovations, l),
		Stages:             NewRepo[core.RenovationStage](s, CollStages, l),
		RenovationExpenses: NewRepo[core.RenovationExpense](s, CollRenovationExpenses, l),
		Materials:          NewRepo[core.Material](s, CollMaterials, l),
		Suppliers:          NewRepo[core.Supplier](s, CollSuppliers, l),
		Travel:             NewRepo[core.TravelEvent](s, CollTravel, l),
		RoutePoints:        NewRepo[core.TravelRoutePoint](s, CollRoutePoints, l),
	}
}

// OnChange registers fn on every collection.
func (r *Repos) OnChange(fn ChangeFunc) {
	r.Transactions.OnChange(fn)
	r.Forecasts.OnChange(fn)
	r.Accounts.OnChange(fn)
	r.Cards.OnChange(fn)
	r.FixedIncome.OnChange(fn)
	r.VariableIncome.OnChange(fn)
	r.Goals.OnChange(fn)
	r.Contributions.OnChange(fn)
	r.Vehicles.OnChange(fn)
	r.VehicleExpenses.OnChange(fn)
	r.Maintenances.OnChange(fn)
	r.Renovations.OnChange(fn)
	r.Stages.OnChange(fn)
	r.RenovationExpenses.OnChange(fn)
	r.Materials.OnChange(fn)
	r.Suppliers.OnChange(fn)
	r.Travel.OnChange(fn)
	r.RoutePoints.OnChange(fn)
}
