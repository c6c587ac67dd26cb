package core

type (
	// FinancialGoal is a savings target (meta financeira).
	FinancialGoal struct {
		Meta
		Name          string `json:"name"`
		TargetAmount  Money  `json:"targetAmount"`
		InitialAmount Money  `json:"initialAmount"`
		Deadline      Date   `json:"deadline"`
		Category      string `json:"category,omitempty"`
	}

	// GoalContribution moves money into (or, when negative, out of) a goal.
	GoalContribution struct {
		Meta
		GoalID string `json:"goalId"`
		Amount Money  `json:"amount"`
		Date   Date   `json:"date"`
		Note   string `json:"note,omitempty"`
	}
)

func (g *FinancialGoal) Normalize() { g.Name = trim(g.Name) }

func (g FinancialGoal) Validate() error {
	if err := checkText(g.Name, ErrEmptyName); err != nil {
		return err
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if g.InitialAmount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (c *GoalContribution) Normalize() { c.Note = trim(c.Note) }

func (c GoalContribution) Validate() error {
	if trim(c.GoalID) == "" {
		return ErrMissingReference
	}
	if c.Amount.IsZero() {
		return ErrInvalidAmount
	}
	return c.Date.Validate()
}
