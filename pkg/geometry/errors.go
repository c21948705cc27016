package geometry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for non-finite or otherwise malformed numbers.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateTransform is returned when a transform would divide by a
	// zero-sized zoom area or destination rectangle.
	ErrDegenerateTransform = errors.New("degenerate zoom area")
)

// Error wraps a geometry failure with the operation that produced it.
type Error struct {
	Op     string    // constructor or operation name
	Values []float64 // offending input, if any
	Err    error     // ErrInvalidInput or ErrDegenerateTransform
}

func (e *Error) Error() string {
	if len(e.Values) == 0 {
		return fmt.Sprintf("geometry: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("geometry: %s %v: %v", e.Op, e.Values, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *Error) Unwrap() error {
	return e.Err
}

func invalid(op string, values ...float64) error {
	return &Error{Op: op, Values: values, Err: ErrInvalidInput}
}
