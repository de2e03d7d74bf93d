package shared

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so that wrapped copies of a sentinel
// compare equal to it.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if !errors.As(target, &de) {
		return false
	}
	return de.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrValidation          = NewDomainError("VALIDATION_ERROR", "Validation failed")
	ErrTenantMismatch      = NewDomainError("TENANT_MISMATCH", "Referenced entity belongs to another tenant")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
)

// DetailedError is implemented by errors that carry structured fields for the caller.
type DetailedError interface {
	error
	Details() map[string]any
}

// ValidationError reports a rejected input before any mutation happened.
type ValidationError struct {
	Field    string
	Reason   string
	Expected string
	Actual   string
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// WithExpected attaches the expected and actual values
func (e *ValidationError) WithExpected(expected, actual string) *ValidationError {
	e.Expected = expected
	e.Actual = actual
	return e
}

func (e *ValidationError) Error() string {
	if e.Expected != "" || e.Actual != "" {
		return fmt.Sprintf("%s: %s (expected %s, got %s)", e.Field, e.Reason, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Details returns the structured error fields
func (e *ValidationError) Details() map[string]any {
	d := map[string]any{"field": e.Field, "reason": e.Reason}
	if e.Expected != "" {
		d["expected"] = e.Expected
	}
	if e.Actual != "" {
		d["actual"] = e.Actual
	}
	return d
}

// TenantMismatchError reports a reference to an entity owned by another tenant.
type TenantMismatchError struct {
	Entity         string
	EntityID       uuid.UUID
	ExpectedTenant uuid.UUID
	ActualTenant   uuid.UUID
}

func (e *TenantMismatchError) Error() string {
	return fmt.Sprintf("%s %s belongs to tenant %s, expected %s",
		e.Entity, e.EntityID, e.ActualTenant, e.ExpectedTenant)
}

func (e *TenantMismatchError) Unwrap() error { return ErrTenantMismatch }

// Details returns the structured error fields
func (e *TenantMismatchError) Details() map[string]any {
	return map[string]any{
		"entity":          e.Entity,
		"entity_id":       e.EntityID.String(),
		"expected_tenant": e.ExpectedTenant.String(),
		"actual_tenant":   e.ActualTenant.String(),
	}
}

// InsufficientStockError reports an outbound movement exceeding the balance
// in one quantity dimension.
type InsufficientStockError struct {
	ItemID    uuid.UUID
	Dimension string
	Requested string
	Available string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient %s for item %s: requested %s, available %s",
		e.Dimension, e.ItemID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Details returns the structured error fields
func (e *InsufficientStockError) Details() map[string]any {
	return map[string]any{
		"item_id":   e.ItemID.String(),
		"dimension": e.Dimension,
		"requested": e.Requested,
		"available": e.Available,
	}
}

// NotFoundError reports a missing entity, scoped to the acting tenant.
type NotFoundError struct {
	Entity string
	ID     string
}

// NewNotFoundError creates a not found error for an entity id
func NewNotFoundError(entity string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Details returns the structured error fields
func (e *NotFoundError) Details() map[string]any {
	return map[string]any{"entity": e.Entity, "id": e.ID}
}

// ErrorCode returns the domain code of err, or an empty string if err does
// not wrap a DomainError.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsNotFound reports whether err means a lookup matched nothing
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
