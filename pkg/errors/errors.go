// Package errors defines the application error taxonomy shared by the
// store, the services and the HTTP layer.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines different categories of errors
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeGone         ErrorType = "GONE"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeInternal     ErrorType = "INTERNAL"
)

// AppError is the custom error type for the application
type AppError struct {
	Type    ErrorType
	Message string
	Err     error

	// Constraint metadata for integrity violations, surfaced in responses.
	Constraint string
	Table      string
	Column     string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidation creates a validation error
func NewValidation(message string) error {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewNotFound creates a not found error
func NewNotFound(message string) error {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewGone marks a resource that existed but was deleted.
func NewGone(message string) error {
	return &AppError{Type: ErrorTypeGone, Message: message}
}

// NewConflict creates an integrity-violation error carrying the offending
// constraint, table and column names.
func NewConflict(message, constraint, table, column string, err error) error {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		Err:        err,
		Constraint: constraint,
		Table:      table,
		Column:     column,
	}
}

// NewUnauthorized creates an authentication failure error
func NewUnauthorized(message string) error {
	return &AppError{Type: ErrorTypeUnauthorized, Message: message}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) error {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// Wrap wraps an error with additional context, preserving the type of an
// existing AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:       appErr.Type,
			Message:    fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:        appErr.Err,
			Constraint: appErr.Constraint,
			Table:      appErr.Table,
			Column:     appErr.Column,
		}
	}
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// TypeOf returns the taxonomy type of err, defaulting to internal for
// errors from outside the application.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool { return TypeOf(err) == ErrorTypeValidation }

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool { return TypeOf(err) == ErrorTypeNotFound }

// IsGone checks if an error marks a deleted resource
func IsGone(err error) bool { return TypeOf(err) == ErrorTypeGone }

// IsConflict checks if an error is an integrity violation
func IsConflict(err error) bool { return TypeOf(err) == ErrorTypeConflict }

// IsUnauthorized checks if an error is an authentication failure
func IsUnauthorized(err error) bool { return TypeOf(err) == ErrorTypeUnauthorized }
