package core

import "errors"

// ValidationError marks a record rejected by its Validate method.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalid(msg string) *ValidationError { return &ValidationError{msg: msg} }

var (
	ErrEmptyName          = invalid("empty name")
	ErrEmptyDescription   = invalid("empty description")
	ErrTextTooLong        = invalid("text too long (max 200 characters)")
	ErrInvalidAmount      = invalid("invalid amount")
	ErrInvalidBudget      = invalid("budget must be positive")
	ErrInvalidDate        = invalid("invalid date")
	ErrDateOrder          = invalid("end date before start date")
	ErrInvalidDay         = invalid("day must be between 1 and 31")
	ErrInvalidMonth       = invalid("month must be between 1 and 12")
	ErrInvalidType        = invalid("invalid type")
	ErrInvalidStatus      = invalid("invalid status")
	ErrInvalidRate        = invalid("invalid rate")
	ErrInvalidQuantity    = invalid("quantity must be positive")
	ErrInvalidCoordinates = invalid("coordinates out of range")
	ErrInvalidDistance    = invalid("distance must be between 0 and 50000 km")
	ErrInvalidRating      = invalid("rating must be between 0 and 5")
	ErrInvalidRepetition  = invalid("invalid repetition type")
	ErrInvalidYear        = invalid("invalid year")
	ErrInvalidOdometer    = invalid("odometer cannot be negative")
	ErrMissingReference   = invalid("missing parent reference")
	ErrMissingSchedule    = invalid("due date or due odometer required")
)

// IsValidation reports whether err came from a Validate method.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

const maxTextLen = 200

func checkText(s string, empty error) error {
	if len(trim(s)) == 0 {
		return empty
	}
	if len(s) > maxTextLen {
		return ErrTextTooLong
	}
	return nil
}
