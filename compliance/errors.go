/*
errors.go - Centralized error types for the compliance engines

PURPOSE:
  All error types in one place for consistency and discoverability.
  The payroll package reuses this taxonomy for its orchestration
  failures so callers handle one family of errors.

ERROR CATEGORIES:
  1. Input errors      - Malformed or out-of-domain values (negative hours)
  2. State errors      - Illegal lifecycle transitions (approving a voided payslip)
  3. Lookup errors     - Referenced employee/period/payslip absent
  4. Invariant errors  - Duplicate payslip, missing compensation

VIOLATIONS ARE NOT ERRORS:
  Labor-law violations (missed breaks, child-labor breaches) are normal,
  expected outputs. They are returned as values and routed to the
  ViolationSink, never raised through this taxonomy.

USAGE:
  Callers branch on sentinels:

    if errors.Is(err, compliance.ErrDuplicate) {
        // payslip already exists for this employee+period
    }

  or extract details:

    var stateErr *compliance.InvalidStateError
    if errors.As(err, &stateErr) {
        log.Printf("illegal transition %s -> %s", stateErr.From, stateErr.To)
    }

SEE ALSO:
  - california.go, flsa.go: Raise InvalidInputError
  - payroll/processor.go: Raises state/duplicate/not-found errors
*/
package compliance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned for malformed or out-of-domain numeric
	// input, such as negative hours worked.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState is returned for illegal lifecycle transitions,
	// such as approving a voided payslip.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrMissingCompensation is returned when an employee has neither a
	// salary nor an hourly rate, so no pay can be computed.
	ErrMissingCompensation = errors.New("missing compensation")

	// ErrDuplicate is returned when a payslip already exists for an
	// employee and pay period.
	ErrDuplicate = errors.New("duplicate record")

	// ErrNotFound is returned when a referenced employee, period, or
	// payslip does not exist.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidInputError describes a rejected input value.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// NewInvalidInput builds an InvalidInputError with a formatted value.
func NewInvalidInput(field string, value any, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: fmt.Sprintf("%v", value), Reason: reason}
}

// InvalidStateError describes an illegal lifecycle transition.
type InvalidStateError struct {
	Entity string // "payslip" or "pay_period"
	ID     string
	From   string
	To     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s: cannot transition from %s to %s", e.Entity, e.ID, e.From, e.To)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// MissingCompensationError identifies the employee with no pay basis.
type MissingCompensationError struct {
	EmployeeID string
}

func (e *MissingCompensationError) Error() string {
	return fmt.Sprintf("employee %s has no salary or hourly_rate", e.EmployeeID)
}

func (e *MissingCompensationError) Unwrap() error {
	return ErrMissingCompensation
}

// DuplicateError describes a uniqueness violation.
type DuplicateError struct {
	Resource string // e.g. "payslip"
	Key      string // e.g. "employee=...,period=..."
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists for %s", e.Resource, e.Key)
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}

// NotFoundError identifies the missing resource.
type NotFoundError struct {
	Resource string // e.g. "employee", "pay_period"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInvalidInput returns true if the error rejects a caller-supplied value.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsInvalidState returns true if the error is an illegal transition.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate returns true if the error is a uniqueness violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsClientError returns true if the error is due to invalid client input
// rather than an internal failure. Used for HTTP status mapping.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrMissingCompensation) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrNotFound)
}
