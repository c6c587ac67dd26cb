package services

import (
	"context"
	"sort"

	"financaszen/internal/core"
)

// TransactionFilter selects transactions; zero fields match everything.
type TransactionFilter struct {
	AccountID string
	CardID    string
	Type      core.TransactionType
	Category  string
	Year      int
	Month     int
}

func (f TransactionFilter) Match(t core.Transaction) bool {
	if f.AccountID != "" && t.BankAccountID != f.AccountID {
		return false
	}
	if f.CardID != "" && t.CreditCardID != f.CardID {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Year != 0 && f.Month != 0 && !t.Date.InMonth(f.Year, f.Month) {
		return false
	}
	if f.Year != 0 && f.Month == 0 && t.Date.Year() != f.Year {
		return false
	}
	return true
}

// AccountBalance is an account's current balance.
type AccountBalance struct {
	AccountID    string     `json:"accountId"`
	Name         string     `json:"name"`
	Initial      core.Money `json:"initialBalance"`
	Balance      core.Money `json:"balance"`
	Transactions int        `json:"transactions"`
	Archived     bool       `json:"archived"`
}

// BalanceOf adds every transaction of the account to its initial balance.
func BalanceOf(a core.BankAccount, txs []core.Transaction) AccountBalance {
	b := AccountBalance{AccountID: a.ID, Name: a.Name, Initial: a.InitialBalance, Balance: a.InitialBalance, Archived: a.Archived}
	for _, t := range txs {
		if t.BankAccountID != a.ID {
			continue
		}
		b.Balance = b.Balance.Add(t.Amount)
		b.Transactions++
	}
	return b
}

// CardStatement is the bill of a credit card for one closing month.
type CardStatement struct {
	CardID       string             `json:"cardId"`
	Name         string             `json:"name"`
	Year         int                `json:"year"`
	Month        int                `json:"month"`
	From         core.Date          `json:"from"`
	To           core.Date          `json:"to"`
	DueDate      core.Date          `json:"dueDate"`
	Total        core.Money         `json:"total"`
	Limit        core.Money         `json:"limit"`
	Available    core.Money         `json:"available"`
	Transactions []core.Transaction `json:"transactions"`
}

// StatementPeriod returns the previous closing day, this month's closing day
// and the due date. A statement holds transactions in (prev, closing].
func StatementPeriod(c core.CreditCard, year, month int) (prev, closing, due core.Date) {
	prev = core.ClampedDate(year, month-1, c.ClosingDay)
	closing = core.ClampedDate(year, month, c.ClosingDay)
	if c.DueDay <= c.ClosingDay {
		due = core.ClampedDate(year, month+1, c.DueDay)
	} else {
		due = core.ClampedDate(year, month, c.DueDay)
	}
	return prev, closing, due
}

// OpenStatementMonth is the closing month whose statement contains day.
func OpenStatementMonth(c core.CreditCard, day core.Date) (int, int) {
	closing := core.ClampedDate(day.Year(), int(day.Month()), c.ClosingDay)
	if day.After(closing) {
		next := core.ClampedDate(day.Year(), int(day.Month())+1, 1)
		return next.Year(), int(next.Month())
	}
	return day.Year(), int(day.Month())
}

func BuildStatement(c core.CreditCard, year, month int, txs []core.Transaction) CardStatement {
	prev, closing, due := StatementPeriod(c, year, month)
	st := CardStatement{
		CardID:       c.ID,
		Name:         c.Name,
		Year:         year,
		Month:        month,
		From:         core.DateOf(prev.AddDate(0, 0, 1)),
		To:           closing,
		DueDate:      due,
		Limit:        c.Limit,
		Transactions: []core.Transaction{},
	}
	var sum core.Money
	for _, t := range txs {
		if t.CreditCardID != c.ID || !t.Date.After(prev) || t.Date.After(closing) {
			continue
		}
		sum = sum.Add(t.Amount)
		st.Transactions = append(st.Transactions, t)
	}
	sortByDate(st.Transactions)
	st.Total = sum.Neg()
	st.Available = c.Limit.Sub(st.Total)
	return st
}

func sortByDate(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })
}

// Ledger computes balances and card statements.
type Ledger struct {
	repos *Repos
}

func NewLedger(repos *Repos) *Ledger {
	return &Ledger{repos: repos}
}

// Transactions lists matching transactions, newest first.
func (l *Ledger) Transactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	txs, err := l.repos.Transactions.Filter(ctx, f.Match)
	if err != nil {
		return nil, err
	}
	sortByDate(txs)
	return txs, nil
}

func (l *Ledger) Balance(ctx context.Context, accountID string) (AccountBalance, error) {
	a, err := l.repos.Accounts.Get(ctx, accountID)
	if err != nil {
		return AccountBalance{}, err
	}
	txs, err := l.repos.Transactions.Filter(ctx, func(t core.Transaction) bool { return t.BankAccountID == accountID })
	if err != nil {
		return AccountBalance{}, err
	}
	return BalanceOf(a, txs), nil
}

func (l *Ledger) Balances(ctx context.Context) ([]AccountBalance, error) {
	accounts, err := l.repos.Accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := l.repos.Transactions.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AccountBalance, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, BalanceOf(a, txs))
	}
	return out, nil
}

func (l *Ledger) Statement(ctx context.Context, cardID string, year, month int) (CardStatement, error) {
	if month < 1 || month > 12 {
		return CardStatement{}, core.ErrInvalidMonth
	}
	c, err := l.repos.Cards.Get(ctx, cardID)
	if err != nil {
		return CardStatement{}, err
	}
	txs, err := l.repos.Transactions.Filter(ctx, func(t core.Transaction) bool { return t.CreditCardID == cardID })
	if err != nil {
		return CardStatement{}, err
	}
	return BuildStatement(c, year, month, txs), nil
}

// OpenCardDebt sums the open statement of every card on day.
func (l *Ledger) OpenCardDebt(ctx context.Context, day core.Date) (core.Money, error) {
	cards, err := l.repos.Cards.List(ctx)
	if err != nil {
		return core.Money{}, err
	}
	txs, err := l.repos.Transactions.Filter(ctx, func(t core.Transaction) bool { return t.CreditCardID != "" })
	if err != nil {
		return core.Money{}, err
	}
	var debt core.Money
	for _, c := range cards {
		y, m := OpenStatementMonth(c, day)
		st := BuildStatement(c, y, m, txs)
		if st.Total.IsNegative() {
			continue
		}
		debt = debt.Add(st.Total)
	}
	return debt, nil
}
