// Package errors defines the failure taxonomy shared by the analysis packages.
//
// Every typed error matches one of the sentinels below through errors.Is, so
// callers can branch on the category while still reading the offending
// operation, parameter, or label from the concrete type.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData is returned when a series is too short for the requested statistic or regression.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidParameter is returned when a numeric parameter or input value violates a precondition.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDegenerateInput is returned when the input has zero variance (or an equivalent
	// degeneracy) and the statistic is undefined.
	ErrDegenerateInput = errors.New("degenerate input")
)

// InsufficientDataError reports how many observations an operation needed.
type InsufficientDataError struct {
	Op   string
	Need int
	Have int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: need at least %d observations, got %d", e.Op, e.Need, e.Have)
}

// Is reports whether target is ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// InvalidParameterError names the parameter and the violated precondition.
type InvalidParameterError struct {
	Param  string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}

// Is reports whether target is ErrInvalidParameter.
func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// DegenerateInputError names the operation whose statistic is undefined.
type DegenerateInputError struct {
	Op     string
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("%s: degenerate input: %s", e.Op, e.Reason)
}

// Is reports whether target is ErrDegenerateInput.
func (e *DegenerateInputError) Is(target error) bool {
	return target == ErrDegenerateInput
}

// InsufficientData builds an InsufficientDataError.
func InsufficientData(op string, need, have int) error {
	return &InsufficientDataError{Op: op, Need: need, Have: have}
}

// InvalidParameter builds an InvalidParameterError.
func InvalidParameter(param string, value any, reason string) error {
	return &InvalidParameterError{Param: param, Value: value, Reason: reason}
}

// DegenerateInput builds a DegenerateInputError.
func DegenerateInput(op, reason string) error {
	return &DegenerateInputError{Op: op, Reason: reason}
}
