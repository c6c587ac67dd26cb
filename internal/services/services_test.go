package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financaszen/internal/amqp"
	"financaszen/internal/cache"
	"financaszen/internal/core"
	"financaszen/internal/log"
	"financaszen/internal/storage"
	"financaszen/internal/storage/memory"
	"financaszen/internal/tolls"
)

func newRepos(t *testing.T) *Repos {
	t.Helper()
	return NewRepos(memory.New(), nil)
}

func TestRepoLifecycle(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	var changes []string
	repos.OnChange(func(c string) { changes = append(changes, c) })

	a, err := repos.Accounts.Create(ctx, core.BankAccount{Name: "  Nubank "})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "Nubank", a.Name)
	assert.Equal(t, core.Checking, a.Type)
	assert.False(t, a.CreatedAt.IsZero())

	a.Name = "Nubank PJ"
	updated, err := repos.Accounts.Update(ctx, a.ID, a)
	require.NoError(t, err)
	assert.True(t, a.CreatedAt.Equal(updated.CreatedAt))
	assert.Equal(t, a.ID, updated.ID)

	got, err := repos.Accounts.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nubank PJ", got.Name)

	require.NoError(t, repos.Accounts.Delete(ctx, a.ID))
	_, err = repos.Accounts.Get(ctx, a.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, repos.Accounts.Delete(ctx, a.ID), storage.ErrNotFound)

	_, err = repos.Accounts.Update(ctx, "missing", core.BankAccount{Name: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.Equal(t, []string{CollAccounts, CollAccounts, CollAccounts}, changes)
}

func TestRepoRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)

	_, err := repos.Transactions.Create(ctx, core.Transaction{Description: "", Amount: core.Cents(100), Date: core.Today()})
	assert.ErrorIs(t, err, core.ErrEmptyDescription)
	assert.True(t, core.IsValidation(err))

	_, err = repos.Cards.Create(ctx, core.CreditCard{Name: "Visa", Limit: core.Cents(1000), ClosingDay: 32, DueDay: 10})
	assert.ErrorIs(t, err, core.ErrInvalidDay)

	list, err := repos.Transactions.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestExpenseReducesAccountBalance(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	ledger := NewLedger(repos)

	a, err := repos.Accounts.Create(ctx, core.BankAccount{Name: "Conta", InitialBalance: core.Cents(100000)})
	require.NoError(t, err)

	tx, err := repos.Transactions.Create(ctx, core.Transaction{
		Description:   "Mercado",
		Amount:        core.Cents(10000),
		Type:          core.Expense,
		Date:          core.NewDate(2025, 3, 10),
		BankAccountID: a.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-10000), tx.Amount.Cents)
	assert.Equal(t, core.DefaultCategory, tx.Category)

	b, err := ledger.Balance(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(90000), b.Balance.Cents)
	assert.Equal(t, 1, b.Transactions)
}

func TestBalanceOfSumsOnlyItsAccount(t *testing.T) {
	acc := core.BankAccount{Meta: core.Meta{ID: "a"}, InitialBalance: core.Cents(500)}
	amounts := []int64{-120, 300, -1, 0, 7777, -5000}
	var txs []core.Transaction
	want := int64(500)
	for i, c := range amounts {
		id := "a"
		if i%3 == 2 {
			id = "b"
		} else {
			want += c
		}
		txs = append(txs, core.Transaction{BankAccountID: id, Amount: core.Cents(c)})
	}
	got := BalanceOf(acc, txs)
	assert.Equal(t, want, got.Balance.Cents)
	assert.Equal(t, 4, got.Transactions)
}

func TestStatementPeriod(t *testing.T) {
	card := core.CreditCard{ClosingDay: 31, DueDay: 10}
	prev, closing, due := StatementPeriod(card, 2025, 3)
	assert.Equal(t, "2025-02-28", prev.String())
	assert.Equal(t, "2025-03-31", closing.String())
	assert.Equal(t, "2025-04-10", due.String())

	card = core.CreditCard{ClosingDay: 5, DueDay: 15}
	_, _, due = StatementPeriod(card, 2025, 1)
	assert.Equal(t, "2025-01-15", due.String())
	prev, _, _ = StatementPeriod(card, 2025, 1)
	assert.Equal(t, "2024-12-05", prev.String())
}

func TestBuildStatement(t *testing.T) {
	card := core.CreditCard{Meta: core.Meta{ID: "c"}, Name: "Visa", Limit: core.Cents(500000), ClosingDay: 10, DueDay: 20}
	txs := []core.Transaction{
		{CreditCardID: "c", Amount: core.Cents(-1000), Date: core.NewDate(2025, 2, 10)},
		{CreditCardID: "c", Amount: core.Cents(-2000), Date: core.NewDate(2025, 2, 11)},
		{CreditCardID: "c", Amount: core.Cents(-3000), Date: core.NewDate(2025, 3, 10)},
		{CreditCardID: "c", Amount: core.Cents(500), Date: core.NewDate(2025, 3, 1)},
		{CreditCardID: "c", Amount: core.Cents(-9999), Date: core.NewDate(2025, 3, 11)},
		{CreditCardID: "other", Amount: core.Cents(-7), Date: core.NewDate(2025, 3, 1)},
	}
	st := BuildStatement(card, 2025, 3, txs)
	assert.Equal(t, "2025-02-11", st.From.String())
	assert.Equal(t, "2025-03-10", st.To.String())
	assert.Equal(t, "2025-03-20", st.DueDate.String())
	assert.Len(t, st.Transactions, 3)
	assert.Equal(t, int64(4500), st.Total.Cents)
	assert.Equal(t, int64(495500), st.Available.Cents)
	assert.Equal(t, "2025-03-10", st.Transactions[0].Date.String())
}

func TestOpenStatementMonth(t *testing.T) {
	card := core.CreditCard{ClosingDay: 10}
	y, m := OpenStatementMonth(card, core.NewDate(2025, 12, 10))
	assert.Equal(t, [2]int{2025, 12}, [2]int{y, m})
	y, m = OpenStatementMonth(card, core.NewDate(2025, 12, 11))
	assert.Equal(t, [2]int{2026, 1}, [2]int{y, m})
}

func TestTransactionFilter(t *testing.T) {
	tx := core.Transaction{BankAccountID: "a", Type: core.Expense, Category: "food", Date: core.NewDate(2025, 5, 2)}
	assert.True(t, TransactionFilter{}.Match(tx))
	assert.True(t, TransactionFilter{AccountID: "a", Year: 2025, Month: 5}.Match(tx))
	assert.True(t, TransactionFilter{Year: 2025}.Match(tx))
	assert.False(t, TransactionFilter{Year: 2025, Month: 6}.Match(tx))
	assert.False(t, TransactionFilter{Type: core.Income}.Match(tx))
	assert.False(t, TransactionFilter{CardID: "c"}.Match(tx))
	assert.False(t, TransactionFilter{Category: "fun"}.Match(tx))
}

func TestSummarizeMonth(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.Income, Amount: core.Cents(500000), Category: "salario", Date: core.NewDate(2025, 4, 5)},
		{Type: core.Expense, Amount: core.Cents(-30000), Category: "mercado", Date: core.NewDate(2025, 4, 6)},
		{Type: core.Expense, Amount: core.Cents(-10000), Category: "lazer", Date: core.NewDate(2025, 4, 7)},
		{Type: core.Expense, Amount: core.Cents(-10000), Category: "mercado", Date: core.NewDate(2025, 4, 8)},
		{Type: core.Transfer, Amount: core.Cents(-99999), Category: "outros", Date: core.NewDate(2025, 4, 9)},
		{Type: core.Expense, Amount: core.Cents(-77777), Category: "mercado", Date: core.NewDate(2025, 5, 1)},
	}
	s := SummarizeMonth(2025, 4, txs)
	assert.Equal(t, int64(500000), s.Income.Cents)
	assert.Equal(t, int64(50000), s.Expense.Cents)
	assert.Equal(t, int64(450000), s.Net.Cents)
	assert.Equal(t, 5, s.Count)
	require.Len(t, s.ByCategory, 2)
	assert.Equal(t, "mercado", s.ByCategory[0].Category)
	assert.Equal(t, 80.0, s.ByCategory[0].Percent)
	assert.Equal(t, 20.0, s.ByCategory[1].Percent)
}

func TestCompareForecast(t *testing.T) {
	items := []core.ForecastItem{
		{Type: core.Expense, Amount: core.Cents(-20000), Category: "mercado", Date: core.NewDate(2025, 4, 1)},
		{Type: core.Income, Amount: core.Cents(100000), Category: "salario", Date: core.NewDate(2025, 4, 1)},
	}
	txs := []core.Transaction{
		{Type: core.Expense, Amount: core.Cents(-25000), Category: "mercado", Date: core.NewDate(2025, 4, 3)},
		{Type: core.Expense, Amount: core.Cents(-5000), Category: "lazer", Date: core.NewDate(2025, 4, 3)},
	}
	c := CompareForecast(2025, 4, items, txs)
	require.Len(t, c.Lines, 3)
	assert.Equal(t, "lazer", c.Lines[0].Category)
	assert.Equal(t, "mercado", c.Lines[1].Category)
	assert.Equal(t, int64(5000), c.Lines[1].Difference.Cents)
	assert.Equal(t, 125.0, c.Lines[1].Percent)
	assert.Equal(t, core.Income, c.Lines[2].Type)
	assert.Equal(t, int64(30000), c.ActualExpense.Cents)
	assert.Equal(t, int64(20000), c.ForecastExpense.Cents)
}

func newAnalytics(repos *Repos) *Analytics {
	a := NewAnalytics(repos, NewLedger(repos), NewPortfolio(repos), cache.NewLRUCache[MonthSummary](16, time.Minute), nil)
	repos.OnChange(a.Invalidate)
	return a
}

func TestAnalyticsCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	a := newAnalytics(repos)

	_, err := repos.Transactions.Create(ctx, core.Transaction{Description: "x", Amount: core.Cents(-100), Date: core.NewDate(2025, 1, 2)})
	require.NoError(t, err)
	s, err := a.MonthSummary(ctx, 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), s.Expense.Cents)

	_, err = repos.Transactions.Create(ctx, core.Transaction{Description: "y", Amount: core.Cents(-50), Date: core.NewDate(2025, 1, 3)})
	require.NoError(t, err)
	s, err = a.MonthSummary(ctx, 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(150), s.Expense.Cents)

	_, err = a.MonthSummary(ctx, 2025, 13)
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
}

// pausingStore holds the first transactions listing until release is closed.
type pausingStore struct {
	storage.Store
	once    sync.Once
	paused  chan struct{}
	release chan struct{}
}

func (p *pausingStore) List(ctx context.Context, collection string) ([][]byte, error) {
	docs, err := p.Store.List(ctx, collection)
	if collection == CollTransactions {
		p.once.Do(func() {
			close(p.paused)
			<-p.release
		})
	}
	return docs, err
}

func TestAnalyticsDoesNotCacheSummaryReadBeforeWrite(t *testing.T) {
	ctx := context.Background()
	store := &pausingStore{Store: memory.New(), paused: make(chan struct{}), release: make(chan struct{})}
	repos := NewRepos(store, nil)
	a := newAnalytics(repos)

	done := make(chan MonthSummary)
	go func() {
		s, err := a.MonthSummary(ctx, 2025, 4)
		assert.NoError(t, err)
		done <- s
	}()
	<-store.paused
	_, err := repos.Transactions.Create(ctx, core.Transaction{Description: "Mercado", Amount: core.Cents(-8000), Date: core.NewDate(2025, 4, 10)})
	require.NoError(t, err)
	close(store.release)

	stale := <-done
	assert.Zero(t, stale.Count)

	s, err := a.MonthSummary(ctx, 2025, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, int64(8000), s.Expense.Cents)
}

func TestTrend(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	a := newAnalytics(repos)
	_, err := repos.Transactions.Create(ctx, core.Transaction{Description: "s", Amount: core.Cents(1000), Date: core.NewDate(2024, 12, 1)})
	require.NoError(t, err)

	points, err := a.Trend(ctx, 2025, 2, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 2024, points[0].Year)
	assert.Equal(t, 12, points[0].Month)
	assert.Equal(t, int64(1000), points[0].Income.Cents)
	assert.Equal(t, 2, points[2].Month)

	points, err = a.Trend(ctx, 2025, 2, 100)
	require.NoError(t, err)
	assert.Len(t, points, MaxTrendMonths)
}

func TestNetWorthAndDashboard(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	a := newAnalytics(repos)
	a.now = func() time.Time { return time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC) }

	acc, err := repos.Accounts.Create(ctx, core.BankAccount{Name: "Conta", InitialBalance: core.Cents(100000)})
	require.NoError(t, err)
	card, err := repos.Cards.Create(ctx, core.CreditCard{Name: "Visa", Limit: core.Cents(100000), ClosingDay: 10, DueDay: 20})
	require.NoError(t, err)
	_, err = repos.Transactions.Create(ctx, core.Transaction{Description: "compra", Amount: core.Cents(-20000), Type: core.Expense, CreditCardID: card.ID, Date: core.NewDate(2025, 3, 1)})
	require.NoError(t, err)
	_, err = repos.Transactions.Create(ctx, core.Transaction{Description: "pix", Amount: core.Cents(-5000), Type: core.Expense, BankAccountID: acc.ID, Date: core.NewDate(2025, 3, 2)})
	require.NoError(t, err)
	_, err = repos.VariableIncome.Create(ctx, core.VariableIncomeAsset{Ticker: "petr4", Quantity: 10, AveragePrice: core.Cents(3000), CurrentPrice: core.Cents(4000)})
	require.NoError(t, err)

	nw, err := a.NetWorth(ctx, core.NewDate(2025, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, int64(95000), nw.Accounts.Cents)
	assert.Equal(t, int64(40000), nw.Investments.Cents)
	assert.Equal(t, int64(20000), nw.CardDebt.Cents)
	assert.Equal(t, int64(115000), nw.Total.Cents)

	d, err := a.Dashboard(ctx, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), d.Summary.Expense.Cents)
	assert.Len(t, d.Trend, DefaultTrendMonths)
	assert.Equal(t, nw, d.NetWorth)
}

func TestValueFixed(t *testing.T) {
	a := core.FixedIncomeAsset{
		Principal:    core.Cents(100000),
		AnnualRate:   10,
		PurchaseDate: core.NewDate(2024, 1, 1),
		MaturityDate: core.NewDate(2025, 1, 1),
	}
	p := ValueFixed(a, core.NewDate(2023, 6, 1))
	assert.Equal(t, a.Principal, p.CurrentValue)
	assert.Greater(t, p.MaturityValue.Cents, a.Principal.Cents)

	after := ValueFixed(a, core.NewDate(2030, 1, 1))
	assert.Equal(t, after.MaturityValue, after.CurrentValue)
	assert.Equal(t, after.CurrentValue.Sub(a.Principal), after.Yield)
}

func TestSummarizePortfolio(t *testing.T) {
	variable := []core.VariableIncomeAsset{
		{Kind: core.Stock, Quantity: 10, AveragePrice: core.Cents(1000), CurrentPrice: core.Cents(1500)},
		{Kind: core.Crypto, Quantity: 1, AveragePrice: core.Cents(5000)},
	}
	s := Summarize(nil, variable, core.NewDate(2025, 1, 1))
	assert.Equal(t, int64(15000), s.Invested.Cents)
	assert.Equal(t, int64(20000), s.Market.Cents)
	assert.Equal(t, int64(5000), s.Gain.Cents)
	assert.Equal(t, 33.33, s.GainPercent)
	require.Len(t, s.Allocation, 2)
	assert.Equal(t, "stock", s.Allocation[0].Kind)
	assert.Equal(t, 75.0, s.Allocation[0].Percent)
	assert.Equal(t, 50.0, s.Variable[0].GainPercent)
}

func TestGoalProgress(t *testing.T) {
	g := core.FinancialGoal{Meta: core.Meta{ID: "g"}, TargetAmount: core.Cents(120000), InitialAmount: core.Cents(20000), Deadline: core.NewDate(2025, 11, 15)}
	cs := []core.GoalContribution{
		{GoalID: "g", Amount: core.Cents(40000)},
		{GoalID: "g", Amount: core.Cents(-10000)},
		{GoalID: "other", Amount: core.Cents(99999)},
	}
	p := ProgressOf(g, cs, core.NewDate(2025, 1, 15))
	assert.Equal(t, int64(50000), p.Saved.Cents)
	assert.Equal(t, int64(70000), p.Remaining.Cents)
	assert.Equal(t, 41.67, p.Percent)
	assert.Equal(t, 10, p.MonthsLeft)
	assert.Equal(t, int64(7000), p.MonthlyNeeded.Cents)
	assert.False(t, p.Achieved)

	cs = append(cs, core.GoalContribution{GoalID: "g", Amount: core.Cents(100000)})
	p = ProgressOf(g, cs, core.NewDate(2026, 1, 1))
	assert.Equal(t, 100.0, p.Percent)
	assert.True(t, p.Achieved)
	assert.Zero(t, p.MonthsLeft)
	assert.True(t, p.Remaining.IsZero())
}

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 0, MonthsBetween(core.NewDate(2025, 1, 31), core.NewDate(2025, 2, 28)))
	assert.Equal(t, 1, MonthsBetween(core.NewDate(2025, 1, 15), core.NewDate(2025, 2, 15)))
	assert.Equal(t, 0, MonthsBetween(core.NewDate(2025, 3, 1), core.NewDate(2025, 1, 1)))
	assert.Equal(t, 0, MonthsBetween(core.NewDate(2025, 3, 1), core.Date{}))
}

func TestGoalsContribute(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	goals := NewGoals(repos)

	_, err := goals.Contribute(ctx, "missing", core.GoalContribution{Amount: core.Cents(100)})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	g, err := repos.Goals.Create(ctx, core.FinancialGoal{Name: "Reserva", TargetAmount: core.Cents(1000)})
	require.NoError(t, err)
	_, err = goals.Contribute(ctx, g.ID, core.GoalContribution{Amount: core.Cents(250)})
	require.NoError(t, err)
	p, err := goals.Progress(ctx, g.ID, core.Today())
	require.NoError(t, err)
	assert.Equal(t, 25.0, p.Percent)
}

func TestStatsOf(t *testing.T) {
	v := core.Vehicle{Meta: core.Meta{ID: "v"}, Odometer: 10600}
	es := []core.VehicleExpense{
		{VehicleID: "v", Kind: core.Fuel, Amount: core.Cents(20000), Odometer: 10000, Liters: 40},
		{VehicleID: "v", Kind: core.Fuel, Amount: core.Cents(15000), Odometer: 10300, Liters: 25},
		{VehicleID: "v", Kind: core.Fuel, Amount: core.Cents(15000), Odometer: 10600, Liters: 25},
		{VehicleID: "v", Kind: core.Insurance, Amount: core.Cents(30000)},
		{VehicleID: "x", Kind: core.Fuel, Amount: core.Cents(99999), Odometer: 1, Liters: 1},
	}
	s := StatsOf(v, es)
	assert.Equal(t, 4, s.Expenses)
	assert.Equal(t, int64(80000), s.Total.Cents)
	assert.Equal(t, int64(50000), s.ByKind[core.Fuel].Cents)
	assert.Equal(t, 12.0, s.KmPerLiter)
	assert.Equal(t, 600, s.KmDriven)
	assert.Equal(t, int64(133), s.CostPerKm.Cents)
	assert.Equal(t, 90.0, s.FuelLiters)
}

func TestDueMaintenances(t *testing.T) {
	today := core.NewDate(2025, 6, 1)
	vs := []core.Vehicle{{Meta: core.Meta{ID: "v"}, Name: "Onix", Odometer: 50000}}
	ms := []core.ScheduledMaintenance{
		{Meta: core.Meta{ID: "late"}, VehicleID: "v", Description: "Óleo", DueDate: core.NewDate(2025, 5, 20)},
		{Meta: core.Meta{ID: "soon"}, VehicleID: "v", Description: "Pneus", DueDate: core.NewDate(2025, 6, 5)},
		{Meta: core.Meta{ID: "far"}, VehicleID: "v", Description: "Freio", DueDate: core.NewDate(2025, 9, 1)},
		{Meta: core.Meta{ID: "km"}, VehicleID: "v", Description: "Correia", DueOdometer: 50800},
		{Meta: core.Meta{ID: "done"}, VehicleID: "v", Description: "Filtro", DueDate: core.NewDate(2025, 5, 1), Completed: true},
	}
	due := DueMaintenances(vs, ms, today, 7, DefaultKmWindow)
	require.Len(t, due, 3)
	assert.Equal(t, "late", due[0].Maintenance.ID)
	assert.True(t, due[0].Overdue)
	assert.Equal(t, "soon", due[1].Maintenance.ID)
	assert.Equal(t, 4, *due[1].DaysLeft)
	assert.Equal(t, "km", due[2].Maintenance.ID)
	assert.Equal(t, 800, *due[2].KmLeft)
	assert.Equal(t, "Onix", due[2].VehicleName)
}

func TestProgressOfRenovation(t *testing.T) {
	r := core.Renovation{Meta: core.Meta{ID: "r"}, Budget: core.Cents(100000)}
	in := RenovationInputs{
		Stages: []core.RenovationStage{
			{Meta: core.Meta{ID: "s2"}, RenovationID: "r", Name: "Pintura", Budget: core.Cents(20000), Position: 2},
			{Meta: core.Meta{ID: "s1"}, RenovationID: "r", Name: "Piso", Budget: core.Cents(50000), Position: 1},
		},
		Expenses: []core.RenovationExpense{
			{RenovationID: "r", StageID: "s1", SupplierID: "p", Amount: core.Cents(30000), Category: core.Labor},
			{RenovationID: "r", StageID: "s2", Amount: core.Cents(25000), Category: core.MaterialCost},
			{RenovationID: "r", Amount: core.Cents(5000), Category: core.Service},
			{RenovationID: "other", Amount: core.Cents(99999)},
		},
		Materials: []core.Material{
			{RenovationID: "r", Quantity: 10, UnitPrice: core.Cents(1000), Purchased: true},
			{RenovationID: "r", Quantity: 2.5, UnitPrice: core.Cents(4000)},
		},
		Suppliers: []core.Supplier{{Meta: core.Meta{ID: "p"}, Name: "Zé Obras"}},
	}
	p := ProgressOfRenovation(r, in)
	assert.Equal(t, int64(60000), p.Spent.Cents)
	assert.Equal(t, int64(40000), p.Remaining.Cents)
	assert.Equal(t, 60.0, p.Percent)
	assert.False(t, p.OverBudget)
	require.Len(t, p.Stages, 2)
	assert.Equal(t, "s1", p.Stages[0].Stage.ID)
	assert.True(t, p.Stages[1].OverBudget)
	assert.Equal(t, int64(5000), p.Unstaged.Cents)
	require.Len(t, p.BySupplier, 1)
	assert.Equal(t, "Zé Obras", p.BySupplier[0].Name)
	assert.Equal(t, int64(20000), p.MaterialsEstimate.Cents)
	assert.Equal(t, 50.0, p.PurchasedPercent)
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.CalendarSyncMessage
	err  error
}

func (p *recordingPublisher) PublishCalendarSync(_ context.Context, msg *amqp.CalendarSyncMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func TestTravelCreatePublishesWhenSyncRequested(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	est, err := tolls.Default()
	require.NoError(t, err)
	pub := &recordingPublisher{}
	travel := NewTravel(repos, est, pub, "America/Sao_Paulo", nil)
	assert.Equal(t, log.ComponentTravel, travel.logger.Component())

	e, err := travel.Create(ctx, "user-1", core.TravelEvent{Title: "Rio", Destination: "Rio de Janeiro", StartDate: core.NewDate(2025, 7, 1), EndDate: core.NewDate(2025, 7, 3), SyncCalendar: true})
	require.NoError(t, err)
	assert.Equal(t, "user-1", e.OwnerID)
	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, amqp.KindTravel, msg.Kind)
	assert.Equal(t, e.ID, msg.EntityID)
	assert.Equal(t, 9, msg.StartTime.Hour())
	assert.Equal(t, 3, msg.EndTime.Day())

	pending, err := travel.PendingSync(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	require.NoError(t, travel.SetCalendarEventID(ctx, e.ID, "cal-1"))
	pending, err = travel.PendingSync(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	pub.err = errors.New("broker down")
	_, err = travel.Create(ctx, "user-1", core.TravelEvent{Title: "SP", Destination: "Santos", StartDate: core.NewDate(2025, 8, 1), SyncCalendar: true})
	assert.NoError(t, err)
}

func TestTravelPlan(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	est, err := tolls.Default()
	require.NoError(t, err)
	travel := NewTravel(repos, est, nil, "America/Sao_Paulo", nil)

	e, err := travel.Create(ctx, "u", core.TravelEvent{
		Title: "Rio", Destination: "Rio", StartDate: core.NewDate(2025, 7, 1), EndDate: core.NewDate(2025, 7, 4),
		Budget: core.Cents(200000), KmPerLiter: 10, FuelPrice: core.Cents(600),
	})
	require.NoError(t, err)
	_, err = travel.AddPoint(ctx, e.ID, core.TravelRoutePoint{Name: "Rio", Latitude: -22.9068, Longitude: -43.1729, Position: 2})
	require.NoError(t, err)
	_, err = travel.AddPoint(ctx, e.ID, core.TravelRoutePoint{Name: "São Paulo", Latitude: -23.5505, Longitude: -46.6333, Position: 1})
	require.NoError(t, err)

	_, err = travel.AddPoint(ctx, "missing", core.TravelRoutePoint{Latitude: 1, Longitude: 1})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	plan, err := travel.Plan(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, plan.Days)
	assert.Equal(t, "São Paulo", plan.Points[0].Name)
	assert.InDelta(t, 360, plan.DistanceKm, 5)
	assert.True(t, plan.Tolls.Fallback)
	assert.Equal(t, int64(2700), plan.Tolls.Total.Cents)
	assert.InDelta(t, 21600, plan.Fuel.Cents, 300)
	assert.Equal(t, plan.Fuel.Add(plan.Tolls.Total), plan.Total)
	assert.Equal(t, int64(50000), plan.BudgetPerDay.Cents)
	assert.True(t, plan.WithinBudget)
}

func TestReminderProcessor(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	pub := &recordingPublisher{}
	p := NewReminderProcessor(repos, pub, "user-1", 7, "America/Sao_Paulo", nil)

	v, err := repos.Vehicles.Create(ctx, core.Vehicle{Name: "Onix"})
	require.NoError(t, err)
	oneOff, err := repos.Maintenances.Create(ctx, core.ScheduledMaintenance{VehicleID: v.ID, Description: "Revisão", DueDate: core.NewDate(2025, 6, 5), EstimatedCost: core.Cents(45000)})
	require.NoError(t, err)
	monthly, err := repos.Maintenances.Create(ctx, core.ScheduledMaintenance{VehicleID: v.ID, Description: "Lavagem", DueDate: core.NewDate(2025, 5, 28), Every: core.Monthly})
	require.NoError(t, err)
	_, err = repos.Maintenances.Create(ctx, core.ScheduledMaintenance{VehicleID: v.ID, Description: "Longe", DueDate: core.NewDate(2025, 12, 1)})
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	n, err := p.ProcessDue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, pub.msgs, 2)
	assert.Equal(t, amqp.KindMaintenance, pub.msgs[0].Kind)
	assert.Equal(t, "Revisão (Onix)", pub.msgs[0].Title)
	assert.Equal(t, "Custo estimado: R$ 450,00", pub.msgs[0].Description)
	assert.Equal(t, "2025-06-28", pub.msgs[1].StartTime.Format("2006-01-02"), "overdue occurrence is sent with its next date")

	got, err := repos.Maintenances.Get(ctx, monthly.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-28", got.DueDate.String())
	assert.Equal(t, "2025-06-01", got.LastNotified.String())

	n, err = p.ProcessDue(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err = repos.Maintenances.Get(ctx, oneOff.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", got.LastNotified.String())
}

func TestReminderKeepsMonthlyAnchorDay(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	pub := &recordingPublisher{}
	p := NewReminderProcessor(repos, pub, "user-1", 7, "America/Sao_Paulo", nil)

	m, err := repos.Maintenances.Create(ctx, core.ScheduledMaintenance{VehicleID: "v1", Description: "Calibragem", DueDate: core.NewDate(2025, 1, 31), Every: core.Monthly})
	require.NoError(t, err)
	assert.Equal(t, 31, m.AnchorDay)

	steps := []struct {
		now     time.Time
		sent    int
		dueDate string
	}{
		{time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC), 1, "2025-02-28"},
		{time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), 0, "2025-03-31"},
		{time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC), 1, "2025-03-31"},
		{time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC), 0, "2025-04-30"},
	}
	for _, st := range steps {
		n, err := p.ProcessDue(ctx, st.now)
		require.NoError(t, err)
		assert.Equal(t, st.sent, n, st.now.Format("2006-01-02"))
		got, err := repos.Maintenances.Get(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, st.dueDate, got.DueDate.String(), st.now.Format("2006-01-02"))
	}
	require.Len(t, pub.msgs, 2)
	assert.Equal(t, "2025-02-28", pub.msgs[0].StartTime.Format("2006-01-02"))
	assert.Equal(t, "2025-03-31", pub.msgs[1].StartTime.Format("2006-01-02"))
}
