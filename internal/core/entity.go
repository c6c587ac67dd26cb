package core

import (
	"strings"
	"time"
)

// Meta carries the identity and timestamps shared by every record.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m Meta) Key() string { return m.ID }

func (m Meta) Created() time.Time { return m.CreatedAt }

// Stamp assigns identity and timestamps.
func (m *Meta) Stamp(id string, created, updated time.Time) {
	m.ID = id
	m.CreatedAt = created
	m.UpdatedAt = updated
}

// Entity is implemented by every stored record.
type Entity interface {
	Key() string
	Validate() error
}

// Repetition is how often a scheduled item comes back.
type Repetition string

const (
	Daily   Repetition = "daily"
	Weekly  Repetition = "weekly"
	Monthly Repetition = "monthly"
	Yearly  Repetition = "yearly"
)

func (r Repetition) Validate() error {
	switch r {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	}
	return ErrInvalidRepetition
}

func trim(s string) string { return strings.TrimSpace(s) }

func oneOf[T ~string](v T, allowed ...T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
