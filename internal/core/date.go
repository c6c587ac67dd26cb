package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
	_ "time/tzdata" // America/Sao_Paulo on hosts without zoneinfo
)

const dateLayout = "2006-01-02"

// Date is a calendar day in UTC.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Today returns the current day.
func Today() Date { return DateOf(time.Now()) }

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

// DaysIn returns the number of days of the month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampedDate builds a date moving day back to the month's last day when needed.
func ClampedDate(year, month, day int) Date {
	first := NewDate(year, month, 1)
	y, m := first.Year(), int(first.Month())
	if n := DaysIn(y, m); day > n {
		day = n
	}
	if day < 1 {
		day = 1
	}
	return NewDate(y, m, day)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// IsEmpty reports an unset optional date.
func (d Date) IsEmpty() bool { return d.IsZero() }

// InMonth reports whether d falls in the given year and month.
func (d Date) InMonth(year, month int) bool {
	return !d.IsZero() && d.Year() == year && int(d.Month()) == month
}

// AddMonths moves by n months keeping the day inside the target month.
func (d Date) AddMonths(n int) Date {
	return ClampedDate(d.Year(), int(d.Month())+n, d.Day())
}

// DaysUntil counts whole days from d to other (negative if other is earlier).
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time).Hours() / 24)
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// checkRange validates a required start and an optional end.
func checkRange(start, end Date) error {
	if err := start.Validate(); err != nil {
		return err
	}
	if !end.IsZero() && end.Before(start) {
		return ErrDateOrder
	}
	return nil
}
