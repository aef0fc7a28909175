/*
errors.go - Centralized error types for the billing domain

PURPOSE:
  All domain error values in one place for consistency and
  discoverability. The API layer maps these onto HTTP statuses with the
  classification helpers below.

USAGE:
  student, err := store.GetStudent(ctx, tenantID, id)
  if billing.IsNotFound(err) {
      // 404
  }
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrTenantNotFound is returned when a referenced tenant doesn't exist.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrStudentNotFound is returned when a referenced student doesn't exist
	// within the tenant.
	ErrStudentNotFound = errors.New("student not found")

	// ErrActivityNotFound is returned when a referenced activity doesn't
	// exist within the tenant.
	ErrActivityNotFound = errors.New("activity not found")

	// ErrDuplicateExclusion is returned when an exclusion for the same
	// (student, activity) pair already exists.
	ErrDuplicateExclusion = errors.New("exclusion already exists")

	// ErrInvalidMovementType is returned for credit movements whose type is
	// not one of the known values.
	ErrInvalidMovementType = errors.New("invalid credit movement type")

	// ErrInvalidFeeConfig is returned when a fee configuration fails
	// validation (non-positive fee, unknown fields).
	ErrInvalidFeeConfig = errors.New("invalid fee configuration")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError wraps a sentinel with the identifiers that missed.
type NotFoundError struct {
	Kind     string // "tenant", "student", "activity"
	TenantID string
	ID       string
	Sentinel error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found in tenant %q", e.Kind, e.ID, e.TenantID)
}

func (e *NotFoundError) Unwrap() error { return e.Sentinel }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTenantNotFound) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrActivityNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicateExclusion) ||
		errors.Is(err, ErrInvalidMovementType) ||
		errors.Is(err, ErrInvalidFeeConfig)
}
