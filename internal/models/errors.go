package models

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable marks an entity whose data could not be fetched or converted
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInsufficientData marks a computation that lacks the points it needs
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNoData is returned when a panel would have no usable column
	ErrNoData = errors.New("no data")
	// ErrValidation marks malformed caller input
	ErrValidation = errors.New("validation error")
)

// ValidationError reports malformed caller input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError with a formatted message
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// DataError reports an entity that has no usable data
type DataError struct {
	Entity string
	Reason string
	Err    error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Entity, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Entity, e.Reason)
}

// Is matches ErrDataUnavailable as well as the wrapped cause
func (e *DataError) Is(target error) bool { return target == ErrDataUnavailable }

func (e *DataError) Unwrap() error { return e.Err }
