package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"financaszen/internal/core"
	"financaszen/internal/services"
)

const maxBodyBytes = 1 << 20

// requestError is a malformed request: bad JSON or an unparseable parameter.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// decodeJSON reads one JSON object from the body. Domain validation errors
// raised by field decoders (money, dates) keep their type.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if core.IsValidation(err) {
			return err
		}
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return badRequest("request body too large")
		case errors.Is(err, io.EOF):
			return badRequest("empty request body")
		default:
			return badRequest("invalid JSON: %v", err)
		}
	}
	if dec.More() {
		return badRequest("invalid JSON: trailing data")
	}
	return nil
}

// MonthParams holds year and month from the query string.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams defaults to the current month; non-numeric values are
// request errors and out-of-range months are left to the services.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	params := MonthParams{Year: now.Year(), Month: int(now.Month())}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return params, badRequest("invalid year %q", v)
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return params, badRequest("invalid month %q", v)
		}
		params.Month = m
	}
	return params, nil
}

// queryInt reads an optional integer parameter.
func queryInt(query url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, badRequest("invalid %s %q", key, v)
	}
	return n, nil
}

// ParseTransactionFilter reads accountId, cardId, type, category, year and
// month. A month needs a year.
func ParseTransactionFilter(query url.Values) (services.TransactionFilter, error) {
	f := services.TransactionFilter{
		AccountID: sanitizeInput(query.Get("accountId")),
		CardID:    sanitizeInput(query.Get("cardId")),
		Type:      core.TransactionType(sanitizeInput(query.Get("type"))),
		Category:  sanitizeInput(query.Get("category")),
	}
	var err error
	if f.Year, err = queryInt(query, "year", 0); err != nil {
		return f, err
	}
	if f.Month, err = queryInt(query, "month", 0); err != nil {
		return f, err
	}
	if f.Month != 0 && f.Year == 0 {
		return f, badRequest("month filter needs a year")
	}
	if f.Month < 0 || f.Month > 12 {
		return f, core.ErrInvalidMonth
	}
	return f, nil
}

// parseTime reads an RFC3339 timestamp.
func parseTime(field, v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, badRequest("%s must be an RFC3339 timestamp", field)
	}
	return t, nil
}

// sanitizeInput trims and drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
