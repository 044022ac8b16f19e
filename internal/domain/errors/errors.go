package errors

import (
	"errors"
	"fmt"
)

var (
	// Mapping errors
	ErrMappingNotFound     = errors.New("transaction mapping not found")
	ErrInconsistentMapping = errors.New("inconsistent transaction mapping state")

	// Transaction info errors
	ErrTransactionInfoNotFound = errors.New("transaction info not found")

	// Remote gateway errors
	ErrRemoteAPI           = errors.New("remote gateway request failed")
	ErrRemoteUnavailable   = errors.New("remote gateway unavailable")
	ErrTransactionNotFound = errors.New("remote transaction not found")
	ErrStaleVersion        = errors.New("remote transaction version conflict")

	// Configuration errors
	ErrShopNotConfigured = errors.New("no space configured for shop")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
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
