package people

import (
	"errors"
	"fmt"
)

var (
	ErrPersonNotFound = errors.New("person not found")
	ErrInvalidSlug    = errors.New("invalid slug")
)

// ValidationError represents errors in request validation
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s' (value: %v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// StoreError represents errors related to storage operations
type StoreError struct {
	Type      string
	Operation string
	Resource  string
	Message   string
	Cause     error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage error [%s] during %s on %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Resource, e.Message, e.Cause)
	}
	return fmt.Sprintf("storage error [%s] during %s on %s: %s",
		e.Type, e.Operation, e.Resource, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Storage error types
const (
	StoreErrorTypeIO                  = "io_failed"
	StoreErrorTypeQueryFailed         = "query_failed"
	StoreErrorTypeConstraintViolation = "constraint_violation"
	StoreErrorTypeDataCorruption      = "data_corruption"
)

// NewStoreIOError creates an error for filesystem failures
func NewStoreIOError(operation, resource string, cause error) *StoreError {
	return &StoreError{
		Type:      StoreErrorTypeIO,
		Operation: operation,
		Resource:  resource,
		Message:   "filesystem operation failed",
		Cause:     cause,
	}
}

// NewStoreQueryError creates an error for storage query failures
func NewStoreQueryError(operation, resource string, cause error) *StoreError {
	return &StoreError{
		Type:      StoreErrorTypeQueryFailed,
		Operation: operation,
		Resource:  resource,
		Message:   "storage query failed",
		Cause:     cause,
	}
}

// NewStoreConstraintError creates an error for constraint violations
func NewStoreConstraintError(operation, resource string, cause error) *StoreError {
	return &StoreError{
		Type:      StoreErrorTypeConstraintViolation,
		Operation: operation,
		Resource:  resource,
		Message:   "person already exists",
		Cause:     cause,
	}
}

// NewStoreCorruptionError is returned when stored data does not match the person contract
func NewStoreCorruptionError(operation, resource string, cause error) *StoreError {
	return &StoreError{
		Type:      StoreErrorTypeDataCorruption,
		Operation: operation,
		Resource:  resource,
		Message:   "data corruption or schema mismatch",
		Cause:     cause,
	}
}

// IsConstraintViolation reports whether err is a duplicate-person store error
func IsConstraintViolation(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Type == StoreErrorTypeConstraintViolation
}
