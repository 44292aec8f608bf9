// Package shared contains common domain types, errors, and events
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")

	// Invariant errors
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrInvalidState     = errors.New("invalid state")

	// Storage errors
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrTimeout          = errors.New("operation timeout")

	// Messaging errors
	ErrEventBusClosed = errors.New("event bus closed")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "reward", "user", "ledger"
	Op      string // Operation that failed, e.g., "Append", "Save"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// User domain errors
var (
	ErrUserNotFound  = NewDomainError("user", "Get", ErrNotFound, "user aggregate not found")
	ErrUserExists    = NewDomainError("user", "Create", ErrAlreadyExists, "user aggregate already exists")
	ErrInvalidUserID = NewDomainError("user", "Validate", ErrInvalidID, "invalid user ID")
	ErrInvalidLevel  = NewDomainError("user", "Validate", ErrValueOutOfRange, "level must be at least 1")
)

// Reward domain errors
var (
	ErrMixedCurrencies   = NewDomainError("reward", "Arithmetic", ErrCurrencyMismatch, "cannot combine different currencies")
	ErrUnknownCurrency   = NewDomainError("reward", "Validate", ErrInvalidInput, "unknown currency")
	ErrEmptyActivityKind = NewDomainError("reward", "Validate", ErrEmptyValue, "activity kind cannot be empty")
)

// Ledger domain errors
var (
	ErrNonPositiveEntry = NewDomainError("ledger", "Append", ErrInvalidInput, "ledger entry amount must be positive")
	ErrEmptyAccount     = NewDomainError("ledger", "Validate", ErrEmptyValue, "account cannot be empty")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsCurrencyMismatch checks if the error is a currency invariant violation.
func IsCurrencyMismatch(err error) bool {
	return errors.Is(err, ErrCurrencyMismatch)
}

// IsStorage checks if the error came from a store collaborator.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrTimeout)
}
