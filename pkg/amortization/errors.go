package amortization

import "errors"

// ErrNonFinite is returned when extreme inputs overflow the schedule arithmetic.
var ErrNonFinite = errors.New("schedule produced a non-finite amount")

// ValidationError reports a rejected input field. Reason is suitable for
// showing to the person who filled in the form.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
