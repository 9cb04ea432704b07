package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrNotFound is returned when a property, plan, payment or snapshot does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPartialAnalysis is returned when a snapshot is requested for incomplete inputs.
	ErrPartialAnalysis = errors.New("analysis is partial: required inputs are missing")
	// ErrDuplicateMonthIndex is returned when a plan already has a payment for the month.
	ErrDuplicateMonthIndex = errors.New("a payment for this month_index already exists")
)

// FieldError is a validation message bound to one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field-level input errors.
type ValidationError struct {
	Errors []FieldError `json:"fields"`
}

// NewValidationError builds a ValidationError with a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// Add appends a field error.
func (v *ValidationError) Add(field, message string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Message: message})
}

// OrNil returns v as an error when it carries at least one field, nil otherwise.
func (v *ValidationError) OrNil() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	parts := make([]string, 0, len(v.Errors))
	for _, fe := range v.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

func (v *ValidationError) checkNonNegative(field string, value *float64) {
	if value == nil {
		return
	}
	if math.IsNaN(*value) || math.IsInf(*value, 0) {
		v.Add(field, "must be a finite number")
		return
	}
	if *value < 0 {
		v.Add(field, "must not be negative")
	}
}

func (v *ValidationError) checkFraction(field string, value *float64) {
	if value == nil {
		return
	}
	if math.IsNaN(*value) || *value < 0 || *value > 1 {
		v.Add(field, "must be a fraction between 0 and 1")
	}
}
