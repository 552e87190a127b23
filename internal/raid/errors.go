package raid

import "fmt"

// InvalidInputError indicates malformed primary input (negative unit counts,
// negative stockpiles, malformed timestamps). It is the caller's fault and is
// never raised for merely missing auxiliary data, which degrades to defaults
// instead.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func invalidInput(field, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: reason}
}
