// Package core holds the finance domain types: money, dates and the
// records kept by each feature area.
package core

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Money is a signed amount in centavos.
type Money struct {
	Cents int64
}

var (
	hundred      = decimal.NewFromInt(100)
	maxMoneyReal = decimal.NewFromInt((1<<63 - 1) / 100)
	brl          = message.NewPrinter(language.BrazilianPortuguese)
)

// Cents builds a Money value.
func Cents(c int64) Money { return Money{Cents: c} }

// ParseMoney reads amounts typed the Brazilian or the international way.
//
// "1.234,56", "1234,56", "1234.56", "R$ -10" and "-0,5" are accepted. When
// both separators appear the last one is the decimal mark. Values are rounded
// half away from zero to centavos.
//
//	ParseMoney("12,345") -> 12.35
//	ParseMoney("-100")   -> -100.00
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0 && lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot >= 0 && lastComma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return Money{}, ErrInvalidAmount
		}
		s = strings.Replace(s, ",", ".", 1)
	}
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return FromDecimal(d)
}

// ParseDecimalToCents parses a strictly positive amount. Form inputs use it.
func ParseDecimalToCents(s string) (int64, error) {
	m, err := ParseMoney(s)
	if err != nil {
		return 0, err
	}
	if m.Cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return m.Cents, nil
}

// FromDecimal rounds d to centavos.
func FromDecimal(d decimal.Decimal) (Money, error) {
	if d.Abs().GreaterThan(maxMoneyReal) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: d.Mul(hundred).Round(0).IntPart()}, nil
}

// FromFloat rounds a computed float to centavos. Non-finite input gives zero.
func FromFloat(f float64) Money {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}
	}
	m, err := FromDecimal(decimal.NewFromFloat(f))
	if err != nil {
		return Money{}
	}
	return m
}

// Decimal returns the value in reais.
func (m Money) Decimal() decimal.Decimal { return decimal.New(m.Cents, -2) }

// Float returns reais as float64, for rates and ratios only.
func (m Money) Float() float64 { return float64(m.Cents) / 100.0 }

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) Neg() Money        { return Money{Cents: -m.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }
func (m Money) IsNegative() bool  { return m.Cents < 0 }

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return m.Neg()
	}
	return m
}

// MulFloat multiplies by a quantity or factor, rounding to centavos.
func (m Money) MulFloat(f float64) Money {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}
	}
	r, err := FromDecimal(m.Decimal().Mul(decimal.NewFromFloat(f)))
	if err != nil {
		return Money{}
	}
	return r
}

// DivInt splits the amount in n parts, rounding half away from zero.
func (m Money) DivInt(n int64) Money {
	if n == 0 {
		return Money{}
	}
	return Money{Cents: decimal.NewFromInt(m.Cents).Div(decimal.NewFromInt(n)).Round(0).IntPart()}
}

// Validate requires a strictly positive amount.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// String prints the plain decimal form, e.g. "-100.00".
func (m Money) String() string { return m.Decimal().StringFixed(2) }

// Format prints the amount as Brazilian currency, e.g. "R$ 1.234,56".
func (m Money) Format() string {
	sign := ""
	c := m.Cents
	if c < 0 {
		sign = "-"
		c = -c
	}
	return sign + "R$ " + brl.Sprint(number.Decimal(float64(c)/100.0, number.Scale(2)))
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a string in any ParseMoney form.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return ErrInvalidAmount
		}
		if strings.TrimSpace(raw) == "" {
			*m = Money{}
			return nil
		}
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Sum adds up amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Percent returns part/whole*100 rounded to two decimals; zero when whole is zero.
func Percent(part, whole Money) float64 {
	if whole.Cents == 0 {
		return 0
	}
	p, _ := decimal.NewFromInt(part.Cents).Mul(hundred).Div(decimal.NewFromInt(whole.Cents)).Round(2).Float64()
	return p
}
