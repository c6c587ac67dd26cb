package core

// TransactionType separates money in, money out and moves between accounts.
type TransactionType string

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

type (
	// Transaction is a realized movement, optionally tied to an account or card.
	Transaction struct {
		Meta
		Description   string          `json:"description"`
		Amount        Money           `json:"amount"`
		Type          TransactionType `json:"type"`
		Category      string          `json:"category"`
		Date          Date            `json:"date"`
		BankAccountID string          `json:"bankAccountId,omitempty"`
		CreditCardID  string          `json:"creditCardId,omitempty"`
		Notes         string          `json:"notes,omitempty"`
		Tags          []string        `json:"tags,omitempty"`
	}

	// ForecastItem is a planned income or expense (previsto).
	ForecastItem struct {
		Meta
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Date        Date            `json:"date"`
	}

	AccountType string

	BankAccount struct {
		Meta
		Name           string      `json:"name"`
		Bank           string      `json:"bank,omitempty"`
		Type           AccountType `json:"type"`
		InitialBalance Money       `json:"initialBalance"`
		Color          string      `json:"color,omitempty"`
		Archived       bool        `json:"archived"`
	}

	CreditCard struct {
		Meta
		Name          string `json:"name"`
		Brand         string `json:"brand,omitempty"`
		Limit         Money  `json:"limit"`
		ClosingDay    int    `json:"closingDay"`
		DueDay        int    `json:"dueDay"`
		BankAccountID string `json:"bankAccountId,omitempty"`
		Color         string `json:"color,omitempty"`
	}
)

const (
	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	Investment AccountType = "investment"
	Wallet     AccountType = "wallet"
)

const DefaultCategory = "outros"

// signFor infers a missing type from the sign and makes the sign follow the type.
func signFor(t TransactionType, amount Money) (TransactionType, Money) {
	if t == "" {
		if amount.IsNegative() {
			t = Expense
		} else {
			t = Income
		}
	}
	switch t {
	case Expense:
		amount = amount.Abs().Neg()
	case Income:
		amount = amount.Abs()
	}
	return t, amount
}

// Normalize applies the sign convention: expenses negative, income positive.
func (t *Transaction) Normalize() {
	t.Type, t.Amount = signFor(t.Type, t.Amount)
	t.Description = trim(t.Description)
	if trim(t.Category) == "" {
		t.Category = DefaultCategory
	}
}

func (t Transaction) Validate() error {
	if err := checkText(t.Description, ErrEmptyDescription); err != nil {
		return err
	}
	if t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if !oneOf(t.Type, Income, Expense, Transfer) {
		return ErrInvalidType
	}
	return t.Date.Validate()
}

func (f *ForecastItem) Normalize() {
	f.Type, f.Amount = signFor(f.Type, f.Amount)
	f.Description = trim(f.Description)
	if trim(f.Category) == "" {
		f.Category = DefaultCategory
	}
}

func (f ForecastItem) Validate() error {
	if err := checkText(f.Description, ErrEmptyDescription); err != nil {
		return err
	}
	if f.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if !oneOf(f.Type, Income, Expense) {
		return ErrInvalidType
	}
	return f.Date.Validate()
}

func (a *BankAccount) Normalize() {
	a.Name = trim(a.Name)
	if a.Type == "" {
		a.Type = Checking
	}
}

func (a BankAccount) Validate() error {
	if err := checkText(a.Name, ErrEmptyName); err != nil {
		return err
	}
	if !oneOf(a.Type, Checking, Savings, Investment, Wallet) {
		return ErrInvalidType
	}
	return nil
}

func (c *CreditCard) Normalize() { c.Name = trim(c.Name) }

func (c CreditCard) Validate() error {
	if err := checkText(c.Name, ErrEmptyName); err != nil {
		return err
	}
	if err := c.Limit.Validate(); err != nil {
		return err
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 || c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidDay
	}
	return nil
}
