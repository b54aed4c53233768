// Package models defines the data structures for the auto credit decision engine.
package models

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the decision engine. Business-rule failures are never
// errors; they are reported as an ineligible or HIGH risk result instead.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrDivisionByZero = errors.New("ratio denominator is zero")
)

// Field-level validation errors. Each one unwraps to ErrInvalidInput when
// returned through a ValidationError.
var (
	ErrEmptyDocumentID       = errors.New("document id cannot be empty")
	ErrEmptyName             = errors.New("customer name cannot be empty")
	ErrInvalidBirthDate      = errors.New("date of birth must be in the past")
	ErrNonPositiveIncome     = errors.New("monthly income must be greater than zero")
	ErrNegativeDebts         = errors.New("monthly debts cannot be negative")
	ErrNegativeExperience    = errors.New("work experience cannot be negative")
	ErrInvalidVIN            = errors.New("VIN must be 17 alphanumeric characters excluding I, O and Q")
	ErrUnauthorizedBrand     = errors.New("vehicle brand is not authorized")
	ErrEmptyModel            = errors.New("vehicle model cannot be empty")
	ErrInvalidVehicleYear    = errors.New("vehicle year is out of range")
	ErrNonPositiveValue      = errors.New("vehicle value must be greater than zero")
	ErrNegativeKilometers    = errors.New("vehicle kilometers cannot be negative")
	ErrNonPositiveAmount     = errors.New("amount must be greater than zero")
	ErrNonPositiveTerm       = errors.New("term must be greater than zero months")
	ErrInvalidTerm           = errors.New("term is outside the allowed range")
	ErrNegativeRate          = errors.New("annual rate cannot be negative")
	ErrInvalidCreditScore    = errors.New("credit score must be between 300 and 900")
	ErrMissingCustomer       = errors.New("application has no customer")
	ErrMissingVehicle        = errors.New("application has no vehicle")
	ErrInvalidRiskLevel      = errors.New("unknown risk level")
	ErrInvalidApplicationRef = errors.New("application id cannot be empty")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field string, err error, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Field, e.Err, e.Reason)
}

// Unwrap exposes both the field sentinel and ErrInvalidInput to errors.Is.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidInput}
	}
	return []error{e.Err, ErrInvalidInput}
}

// ZeroDenominator reports a ratio whose denominator is zero. It is an
// invalid-input condition, never an infinite ratio.
func ZeroDenominator(field string) error {
	return NewValidationError(field, ErrDivisionByZero, "cannot be used as a ratio denominator")
}

// IsInvalidInput reports whether err is a validation failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
