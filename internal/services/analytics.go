package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"financaszen/internal/cache"
	"financaszen/internal/core"
	"financaszen/internal/log"
)

const (
	DefaultTrendMonths = 6
	MaxTrendMonths     = 24
)

type CategoryTotal struct {
	Category string     `json:"category"`
	Amount   core.Money `json:"amount"`
	Percent  float64    `json:"percent"`
}

type MonthSummary struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Income     core.Money      `json:"income"`
	Expense    core.Money      `json:"expense"`
	Net        core.Money      `json:"net"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"byCategory"`
}

type TrendPoint struct {
	Year    int        `json:"year"`
	Month   int        `json:"month"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Net     core.Money `json:"net"`
}

type ForecastLine struct {
	Type       core.TransactionType `json:"type"`
	Category   string               `json:"category"`
	Forecast   core.Money           `json:"forecast"`
	Actual     core.Money           `json:"actual"`
	Difference core.Money           `json:"difference"`
	Percent    float64              `json:"percent"`
}

type ForecastComparison struct {
	Year            int            `json:"year"`
	Month           int            `json:"month"`
	Lines           []ForecastLine `json:"lines"`
	ForecastIncome  core.Money     `json:"forecastIncome"`
	ForecastExpense core.Money     `json:"forecastExpense"`
	ActualIncome    core.Money     `json:"actualIncome"`
	ActualExpense   core.Money     `json:"actualExpense"`
}

type NetWorth struct {
	Accounts    core.Money `json:"accounts"`
	Investments core.Money `json:"investments"`
	CardDebt    core.Money `json:"cardDebt"`
	Total       core.Money `json:"total"`
}

type Dashboard struct {
	Summary  MonthSummary       `json:"summary"`
	Trend    []TrendPoint       `json:"trend"`
	Forecast ForecastComparison `json:"forecast"`
	NetWorth NetWorth           `json:"netWorth"`
}

func roundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func checkMonth(year, month int) error {
	if month < 1 || month > 12 {
		return core.ErrInvalidMonth
	}
	if year < 1900 || year > 2200 {
		return core.ErrInvalidYear
	}
	return nil
}

// SummarizeMonth totals a month. Transfers count toward Count only.
func SummarizeMonth(year, month int, txs []core.Transaction) MonthSummary {
	s := MonthSummary{Year: year, Month: month, ByCategory: []CategoryTotal{}}
	byCat := map[string]core.Money{}
	for _, t := range txs {
		if !t.Date.InMonth(year, month) {
			continue
		}
		s.Count++
		switch t.Type {
		case core.Income:
			s.Income = s.Income.Add(t.Amount.Abs())
		case core.Expense:
			amt := t.Amount.Abs()
			s.Expense = s.Expense.Add(amt)
			byCat[t.Category] = byCat[t.Category].Add(amt)
		}
	}
	s.Net = s.Income.Sub(s.Expense)
	for c, amt := range byCat {
		s.ByCategory = append(s.ByCategory, CategoryTotal{Category: c, Amount: amt, Percent: core.Percent(amt, s.Expense)})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if s.ByCategory[i].Amount.Cents != s.ByCategory[j].Amount.Cents {
			return s.ByCategory[i].Amount.Cents > s.ByCategory[j].Amount.Cents
		}
		return s.ByCategory[i].Category < s.ByCategory[j].Category
	})
	return s
}

// CompareForecast sets planned items against realized transactions per
// type and category. Amounts are magnitudes.
func CompareForecast(year, month int, items []core.ForecastItem, txs []core.Transaction) ForecastComparison {
	type key struct {
		typ core.TransactionType
		cat string
	}
	lines := map[key]*ForecastLine{}
	line := func(k key) *ForecastLine {
		if l, ok := lines[k]; ok {
			return l
		}
		l := &ForecastLine{Type: k.typ, Category: k.cat}
		lines[k] = l
		return l
	}
	c := ForecastComparison{Year: year, Month: month, Lines: []ForecastLine{}}
	for _, f := range items {
		if !f.Date.InMonth(year, month) {
			continue
		}
		amt := f.Amount.Abs()
		l := line(key{f.Type, f.Category})
		l.Forecast = l.Forecast.Add(amt)
		if f.Type == core.Income {
			c.ForecastIncome = c.ForecastIncome.Add(amt)
		} else {
			c.ForecastExpense = c.ForecastExpense.Add(amt)
		}
	}
	for _, t := range txs {
		if !t.Date.InMonth(year, month) || t.Type == core.Transfer {
			continue
		}
		amt := t.Amount.Abs()
		l := line(key{t.Type, t.Category})
		l.Actual = l.Actual.Add(amt)
		if t.Type == core.Income {
			c.ActualIncome = c.ActualIncome.Add(amt)
		} else {
			c.ActualExpense = c.ActualExpense.Add(amt)
		}
	}
	for _, l := range lines {
		l.Difference = l.Actual.Sub(l.Forecast)
		l.Percent = core.Percent(l.Actual, l.Forecast)
		c.Lines = append(c.Lines, *l)
	}
	sort.Slice(c.Lines, func(i, j int) bool {
		if c.Lines[i].Type != c.Lines[j].Type {
			return c.Lines[i].Type < c.Lines[j].Type
		}
		return c.Lines[i].Category < c.Lines[j].Category
	})
	return c
}

// Analytics serves the chart aggregations. Month summaries are cached until
// the next write to transactions.
type Analytics struct {
	repos     *Repos
	ledger    *Ledger
	portfolio *Portfolio
	summaries *cache.LRUCache[MonthSummary]
	logger    *log.Logger
	now       func() time.Time

	// gen counts transaction writes. A summary read before the latest write
	// is not cached.
	mu  sync.Mutex
	gen uint64
}

func NewAnalytics(repos *Repos, ledger *Ledger, portfolio *Portfolio, summaries *cache.LRUCache[MonthSummary], logger *log.Logger) *Analytics {
	if logger == nil {
		logger = log.Discard()
	}
	return &Analytics{
		repos:     repos,
		ledger:    ledger,
		portfolio: portfolio,
		summaries: summaries,
		logger:    logger.WithComponent(log.ComponentAnalytics),
		now:       time.Now,
	}
}

// Invalidate drops cached summaries after a transaction write. Register it
// with Repos.OnChange.
func (a *Analytics) Invalidate(collection string) {
	if a.summaries == nil || collection != CollTransactions {
		return
	}
	a.mu.Lock()
	a.gen++
	n := a.summaries.DeletePrefix("summary:")
	a.mu.Unlock()
	if n > 0 {
		a.logger.Debug("Analytics cache invalidated", log.FieldCollection, collection, "entries", n)
	}
}

func summaryKey(year, month int) string {
	return fmt.Sprintf("summary:%04d-%02d", year, month)
}

func (a *Analytics) MonthSummary(ctx context.Context, year, month int) (MonthSummary, error) {
	if err := checkMonth(year, month); err != nil {
		return MonthSummary{}, err
	}
	key := summaryKey(year, month)
	gen := a.generation()
	if a.summaries != nil {
		if s, ok := a.summaries.Get(key); ok {
			return s, nil
		}
	}
	txs, err := a.repos.Transactions.Filter(ctx, func(t core.Transaction) bool { return t.Date.InMonth(year, month) })
	if err != nil {
		return MonthSummary{}, err
	}
	s := SummarizeMonth(year, month, txs)
	if a.summaries != nil {
		a.mu.Lock()
		if a.gen == gen {
			a.summaries.Set(key, s)
		}
		a.mu.Unlock()
	}
	return s, nil
}

func (a *Analytics) generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen
}

// Trend returns the months ending at (year, month), oldest first.
func (a *Analytics) Trend(ctx context.Context, year, month, months int) ([]TrendPoint, error) {
	if err := checkMonth(year, month); err != nil {
		return nil, err
	}
	if months <= 0 {
		months = DefaultTrendMonths
	}
	if months > MaxTrendMonths {
		months = MaxTrendMonths
	}
	end := core.NewDate(year, month, 1)
	out := make([]TrendPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		d := end.AddMonths(-i)
		s, err := a.MonthSummary(ctx, d.Year(), int(d.Month()))
		if err != nil {
			return nil, err
		}
		out = append(out, TrendPoint{Year: s.Year, Month: s.Month, Income: s.Income, Expense: s.Expense, Net: s.Net})
	}
	return out, nil
}

func (a *Analytics) ForecastVsActual(ctx context.Context, year, month int) (ForecastComparison, error) {
	if err := checkMonth(year, month); err != nil {
		return ForecastComparison{}, err
	}
	items, err := a.repos.Forecasts.Filter(ctx, func(f core.ForecastItem) bool { return f.Date.InMonth(year, month) })
	if err != nil {
		return ForecastComparison{}, err
	}
	txs, err := a.repos.Transactions.Filter(ctx, func(t core.Transaction) bool { return t.Date.InMonth(year, month) })
	if err != nil {
		return ForecastComparison{}, err
	}
	return CompareForecast(year, month, items, txs), nil
}

// NetWorth is account balances plus investments minus open card statements.
func (a *Analytics) NetWorth(ctx context.Context, today core.Date) (NetWorth, error) {
	var nw NetWorth
	balances, err := a.ledger.Balances(ctx)
	if err != nil {
		return nw, err
	}
	for _, b := range balances {
		nw.Accounts = nw.Accounts.Add(b.Balance)
	}
	portfolio, err := a.portfolio.Summary(ctx, today)
	if err != nil {
		return nw, err
	}
	nw.Investments = portfolio.Market
	if nw.CardDebt, err = a.ledger.OpenCardDebt(ctx, today); err != nil {
		return nw, err
	}
	nw.Total = nw.Accounts.Add(nw.Investments).Sub(nw.CardDebt)
	return nw, nil
}

// Dashboard gathers the month views concurrently.
func (a *Analytics) Dashboard(ctx context.Context, year, month int) (Dashboard, error) {
	if err := checkMonth(year, month); err != nil {
		return Dashboard{}, err
	}
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := a.MonthSummary(gctx, year, month)
		d.Summary = s
		return err
	})
	g.Go(func() error {
		t, err := a.Trend(gctx, year, month, DefaultTrendMonths)
		d.Trend = t
		return err
	})
	g.Go(func() error {
		f, err := a.ForecastVsActual(gctx, year, month)
		d.Forecast = f
		return err
	})
	g.Go(func() error {
		nw, err := a.NetWorth(gctx, core.DateOf(a.now()))
		d.NetWorth = nw
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}
	return d, nil
}
