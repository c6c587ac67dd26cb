// Package finance implements the loan and investment calculators.
package finance

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned for non-positive or non-finite arguments.
var ErrInvalidInput = errors.New("invalid calculator input")

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Installment returns the fixed payment of a Price-table loan:
// P*r / (1 - (1+r)^-n). A zero rate splits the principal evenly.
func Installment(principal, monthlyRate float64, months int) (float64, error) {
	if !finite(principal, monthlyRate) || principal <= 0 || monthlyRate < 0 || months <= 0 {
		return 0, ErrInvalidInput
	}
	n := float64(months)
	if monthlyRate == 0 {
		return principal / n, nil
	}
	p := principal * monthlyRate / (1 - math.Pow(1+monthlyRate, -n))
	if !finite(p) {
		return 0, ErrInvalidInput
	}
	return p, nil
}

// PresentValue is the inverse of Installment: the principal financed by n payments.
func PresentValue(payment, monthlyRate float64, months int) (float64, error) {
	if !finite(payment, monthlyRate) || payment <= 0 || monthlyRate < 0 || months <= 0 {
		return 0, ErrInvalidInput
	}
	n := float64(months)
	if monthlyRate == 0 {
		return payment * n, nil
	}
	return payment * (1 - math.Pow(1+monthlyRate, -n)) / monthlyRate, nil
}

// Rate is a monthly rate together with its annual equivalent, both as fractions.
type Rate struct {
	Monthly float64 `json:"monthly"`
	Annual  float64 `json:"annual"`
}

// ImpliedRate finds the compound monthly rate i with value*(1+i)^n = total.
func ImpliedRate(value, total float64, installments int) (Rate, error) {
	if !finite(value, total) || value <= 0 || total <= 0 || installments <= 0 {
		return Rate{}, ErrInvalidInput
	}
	i := math.Pow(total/value, 1/float64(installments)) - 1
	if !finite(i) {
		return Rate{}, ErrInvalidInput
	}
	return Rate{Monthly: i, Annual: AnnualFromMonthly(i)}, nil
}

// AnnualFromMonthly compounds a monthly rate over twelve months.
func AnnualFromMonthly(i float64) float64 { return math.Pow(1+i, 12) - 1 }

// MonthlyFromAnnual is the inverse of AnnualFromMonthly.
func MonthlyFromAnnual(a float64) float64 { return math.Pow(1+a, 1.0/12) - 1 }

// ScheduleRow is one period of a Price amortization table. Money columns are in reais.
type ScheduleRow struct {
	Period       int             `json:"period"`
	Payment      decimal.Decimal `json:"payment"`
	Interest     decimal.Decimal `json:"interest"`
	Amortization decimal.Decimal `json:"amortization"`
	Balance      decimal.Decimal `json:"balance"`
}

// Schedule builds the Price table rounded to centavos. The last payment absorbs
// rounding so the final balance is exactly zero.
func Schedule(principal, monthlyRate float64, months int) ([]ScheduleRow, error) {
	payment, err := Installment(principal, monthlyRate, months)
	if err != nil {
		return nil, err
	}
	pay := decimal.NewFromFloat(payment).Round(2)
	rate := decimal.NewFromFloat(monthlyRate)
	balance := decimal.NewFromFloat(principal).Round(2)

	rows := make([]ScheduleRow, 0, months)
	for period := 1; period <= months; period++ {
		interest := balance.Mul(rate).Round(2)
		amort := pay.Sub(interest)
		rowPay := pay
		if period == months || amort.GreaterThan(balance) {
			amort = balance
			rowPay = amort.Add(interest)
		}
		balance = balance.Sub(amort)
		rows = append(rows, ScheduleRow{
			Period:       period,
			Payment:      rowPay,
			Interest:     interest,
			Amortization: amort,
			Balance:      balance,
		})
	}
	return rows, nil
}

// YearFraction measures the span between two instants in 365-day years.
func YearFraction(from, to time.Time) float64 {
	if !to.After(from) {
		return 0
	}
	return to.Sub(from).Hours() / 24 / 365
}

// FutureValue compounds principal at an annual percentage rate between two dates.
func FutureValue(principal, annualRatePercent float64, from, to time.Time) float64 {
	if !finite(principal, annualRatePercent) || principal <= 0 {
		return 0
	}
	return principal * math.Pow(1+annualRatePercent/100, YearFraction(from, to))
}
