package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financaszen/internal/core"
)

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		query   string
		want    MonthParams
		wantErr bool
	}{
		{"defaults to now", "", MonthParams{Year: 2025, Month: 6}, false},
		{"explicit", "year=2024&month=2", MonthParams{Year: 2024, Month: 2}, false},
		{"year only", "year=2023", MonthParams{Year: 2023, Month: 6}, false},
		{"spaces", "year=%202024%20", MonthParams{Year: 2024, Month: 6}, false},
		{"bad year", "year=twenty", MonthParams{}, true},
		{"bad month", "month=jan", MonthParams{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			got, err := ParseMonthParams(q, now)
			if tt.wantErr {
				assert.Equal(t, http.StatusBadRequest, statusFor(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTransactionFilter(t *testing.T) {
	q := url.Values{"accountId": {" acc-1 "}, "type": {"expense"}, "year": {"2025"}, "month": {"3"}, "category": {"lazer\x00"}}
	f, err := ParseTransactionFilter(q)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", f.AccountID)
	assert.Equal(t, core.Expense, f.Type)
	assert.Equal(t, "lazer", f.Category)
	assert.Equal(t, 2025, f.Year)
	assert.Equal(t, 3, f.Month)

	f, err = ParseTransactionFilter(url.Values{"year": {"2025"}})
	require.NoError(t, err)
	assert.Zero(t, f.Month)

	_, err = ParseTransactionFilter(url.Values{"month": {"3"}})
	assert.Equal(t, http.StatusBadRequest, statusFor(err))

	_, err = ParseTransactionFilter(url.Values{"year": {"2025"}, "month": {"13"}})
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty", "", http.StatusBadRequest},
		{"syntax", `{"name":`, http.StatusBadRequest},
		{"trailing", `{"name":"a"} {"name":"b"}`, http.StatusBadRequest},
		{"bad money", `{"name":"a","initialBalance":"1,2,3"}`, http.StatusUnprocessableEntity},
		{"too large", `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var acc core.BankAccount
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := decodeJSON(httptest.NewRecorder(), req, &acc)
			require.Error(t, err)
			assert.Equal(t, tt.status, statusFor(err))
		})
	}

	var acc core.BankAccount
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Nubank","initialBalance":"1.234,56"}`))
	require.NoError(t, decodeJSON(httptest.NewRecorder(), req, &acc))
	assert.Equal(t, int64(123456), acc.InitialBalance.Cents)
}

func TestParseTime(t *testing.T) {
	got, err := parseTime("startTime", "2025-03-10T10:00:00-03:00")
	require.NoError(t, err)
	assert.Equal(t, 13, got.UTC().Hour())

	_, err = parseTime("startTime", "2025-03-10 10:00")
	assert.Equal(t, http.StatusBadRequest, statusFor(err))
}
