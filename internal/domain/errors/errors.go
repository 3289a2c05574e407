package errors

import (
	"errors"
	"fmt"
)

var (
	// Case store errors
	ErrCaseNotFound         = errors.New("case not found")
	ErrInvalidCaseID        = errors.New("invalid case id")
	ErrMultipleCasesFound   = errors.New("multiple cases found for envelope")
	ErrServiceNotConfigured = errors.New("service is not configured")

	// Payment errors
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrInvalidStateTransition = errors.New("invalid payment status transition")
	ErrPaymentPostFailed      = errors.New("posting payment to payment api failed")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidInput     = errors.New("invalid input")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// RecoverableError marks a failure that the message transport should retry by
// redelivering the envelope. Anything not wrapped in it is treated as terminal
// by the consumer.
type RecoverableError struct {
	Message string
	Err     error
}

func (e *RecoverableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RecoverableError) Unwrap() error {
	return e.Err
}

// NewRecoverableError creates a new recoverable error
func NewRecoverableError(message string, err error) *RecoverableError {
	return &RecoverableError{Message: message, Err: err}
}

// IsRecoverable reports whether err should trigger message redelivery.
func IsRecoverable(err error) bool {
	var re *RecoverableError
	return errors.As(err, &re)
}

// UnknownClassificationError signals an envelope whose classification is not one
// of the four supported values. Fatal - never retried.
type UnknownClassificationError struct {
	Classification string
}

func (e *UnknownClassificationError) Error() string {
	return "cannot determine action for envelope - unknown classification: " + e.Classification
}
