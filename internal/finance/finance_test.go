package finance

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallmentKnownValue(t *testing.T) {
	p, err := Installment(10000, 0.01, 12)
	require.NoError(t, err)
	assert.InDelta(t, 888.49, p, 0.01)
}

func TestInstallmentZeroRate(t *testing.T) {
	p, err := Installment(1200, 0, 12)
	require.NoError(t, err)
	assert.Equal(t, 100.0, p)
}

func TestInstallmentInverse(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		months    int
	}{
		{1000, 0.02, 10},
		{250000, 0.0075, 360},
		{3500.5, 0.035, 24},
		{1, 0.5, 1},
	}
	for _, tc := range cases {
		payment, err := Installment(tc.principal, tc.rate, tc.months)
		require.NoError(t, err)
		pv, err := PresentValue(payment, tc.rate, tc.months)
		require.NoError(t, err)
		assert.InEpsilon(t, tc.principal, pv, 1e-6)
	}
}

func TestImpliedRateInverse(t *testing.T) {
	cases := []struct {
		value, total float64
		n            int
	}{
		{1000, 1200, 12},
		{5000, 5000, 10},
		{800, 1500, 36},
	}
	for _, tc := range cases {
		r, err := ImpliedRate(tc.value, tc.total, tc.n)
		require.NoError(t, err)
		assert.InEpsilon(t, tc.total, tc.value*math.Pow(1+r.Monthly, float64(tc.n)), 1e-9)
		assert.InDelta(t, math.Pow(1+r.Monthly, 12)-1, r.Annual, 1e-12)
	}
}

func TestInvalidInputs(t *testing.T) {
	_, err := Installment(0, 0.01, 12)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = Installment(100, math.NaN(), 12)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = Installment(100, 0.01, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ImpliedRate(0, 100, 3)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ImpliedRate(100, 100, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ImpliedRate(math.Inf(1), 100, 2)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestScheduleEndsAtZero(t *testing.T) {
	rows, err := Schedule(10000, 0.01, 12)
	require.NoError(t, err)
	require.Len(t, rows, 12)
	assert.True(t, rows[11].Balance.IsZero(), "final balance %s", rows[11].Balance)

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amortization)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(10000)), "amortized %s", total)
	assert.True(t, rows[0].Interest.Equal(decimal.NewFromInt(100)), "first interest %s", rows[0].Interest)
}

func TestMonthlyAnnualRoundTrip(t *testing.T) {
	assert.InDelta(t, 0.01, MonthlyFromAnnual(AnnualFromMonthly(0.01)), 1e-12)
}

func TestFutureValue(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 365)
	assert.InDelta(t, 1100, FutureValue(1000, 10, from, to), 1e-9)
	assert.Equal(t, 1000.0, FutureValue(1000, 10, to, from))
}
