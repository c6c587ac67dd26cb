package services

import (
	"financaszen/internal/cache"
	"financaszen/internal/log"
	"financaszen/internal/storage"
	"financaszen/internal/tolls"
)

// Services wires every feature service over one store.
type Services struct {
	Repos       *Repos
	Ledger      *Ledger
	Portfolio   *Portfolio
	Goals       *Goals
	Garage      *Garage
	Renovations *Renovations
	Travel      *Travel
	Analytics   *Analytics
}

type Options struct {
	Tolls     *tolls.Estimator
	Publisher CalendarPublisher
	TimeZone  string
	Summaries *cache.LRUCache[MonthSummary]
	Logger    *log.Logger
}

// New builds the services and hooks analytics invalidation to every write.
func New(store storage.Store, opts Options) *Services {
	repos := NewRepos(store, opts.Logger)
	ledger := NewLedger(repos)
	portfolio := NewPortfolio(repos)
	analytics := NewAnalytics(repos, ledger, portfolio, opts.Summaries, opts.Logger)
	repos.OnChange(analytics.Invalidate)
	return &Services{
		Repos:       repos,
		Ledger:      ledger,
		Portfolio:   portfolio,
		Goals:       NewGoals(repos),
		Garage:      NewGarage(repos),
		Renovations: NewRenovations(repos),
		Travel:      NewTravel(repos, opts.Tolls, opts.Publisher, opts.TimeZone, opts.Logger),
		Analytics:   analytics,
	}
}
