package base

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ===================================================================
// CUSTOM ERROR TYPES
// ===================================================================

// RepositoryError represents base repository error
type RepositoryError struct {
	Operation string
	Table     string
	Message   string
	Cause     error
}

func (e *RepositoryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to %s %s: %s (caused by: %v)", e.Operation, e.Table, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Table, e.Message)
}

func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// EntityNotFoundError represents entity not found error
type EntityNotFoundError struct {
	Table      string
	Identifier string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s with %s not found", e.Table, e.Identifier)
}

// ValidationError represents validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed for field %s (value: %s): %s", e.Field, e.Value, e.Message)
}

// InvalidTransitionError is returned when an alert status change is not allowed.
type InvalidTransitionError struct {
	Identifier string
	From       string
	To         string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("alert %s cannot move from %s to %s", e.Identifier, e.From, e.To)
}

// TransactionError represents transaction-related error
type TransactionError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed during %s: %s (caused by: %v)", e.Operation, e.Message, e.Cause)
}

func (e *TransactionError) Unwrap() error {
	return e.Cause
}

// ===================================================================
// ERROR CONSTRUCTORS
// ===================================================================

// NewRepositoryError creates a new repository error
func NewRepositoryError(operation, table, message string, cause error) *RepositoryError {
	return &RepositoryError{
		Operation: operation,
		Table:     table,
		Message:   message,
		Cause:     cause,
	}
}

// NewEntityNotFoundError creates a new entity not found error
func NewEntityNotFoundError(table, identifier string) *EntityNotFoundError {
	return &EntityNotFoundError{
		Table:      table,
		Identifier: identifier,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewInvalidTransitionError creates a new invalid transition error
func NewInvalidTransitionError(identifier, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{
		Identifier: identifier,
		From:       from,
		To:         to,
	}
}

// NewTransactionError creates a new transaction error
func NewTransactionError(operation, message string, cause error) *TransactionError {
	return &TransactionError{
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// ===================================================================
// ERROR HANDLING HELPERS
// ===================================================================

// HandleDBError handles database errors with consistent error wrapping
func HandleDBError(operation, table, identifier string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewEntityNotFoundError(table, identifier)
	}

	return NewRepositoryError(operation, table, "database operation failed", err)
}

// WrapDBError wraps database error with operation context
func WrapDBError(operation, table string, err error) error {
	if err == nil {
		return nil
	}

	return NewRepositoryError(operation, table, "database operation failed", err)
}

// IsEntityNotFound checks if error is an entity not found error
func IsEntityNotFound(err error) bool {
	var entityNotFoundError *EntityNotFoundError
	return errors.As(err, &entityNotFoundError)
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

// IsInvalidTransition checks if error is an invalid status transition
func IsInvalidTransition(err error) bool {
	var transitionError *InvalidTransitionError
	return errors.As(err, &transitionError)
}

// IsRepositoryError checks if error is a repository error
func IsRepositoryError(err error) bool {
	var repositoryError *RepositoryError
	return errors.As(err, &repositoryError)
}

// IsTransactionError checks if error is a transaction error
func IsTransactionError(err error) bool {
	var transactionError *TransactionError
	return errors.As(err, &transactionError)
}

// ===================================================================
// ERROR MESSAGE HELPERS
// ===================================================================

// GetErrorMessage extracts user-friendly error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		notFound   *EntityNotFoundError
		validation *ValidationError
		transition *InvalidTransitionError
		repository *RepositoryError
		tx         *TransactionError
	)
	switch {
	case errors.As(err, &notFound):
		return notFound.Error()
	case errors.As(err, &validation):
		return validation.Error()
	case errors.As(err, &transition):
		return transition.Error()
	case errors.As(err, &tx):
		return fmt.Sprintf("Transaction failed: %s", tx.Message)
	case errors.As(err, &repository):
		return fmt.Sprintf("Database operation failed: %s", repository.Message)
	default:
		return "An unexpected error occurred"
	}
}
