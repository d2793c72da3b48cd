/*
store.go - Persistence interface for payroll facts and outputs

PURPOSE:
  Defines the interface between the payroll domain and the database.
  The engine itself is pure; everything stateful lives behind Store.

KEY INTERFACES:
  Store:   CRUD for employees, periods, timesheets, payslips, plus an
           append-only violation log
  TxStore: Transactional wrapper for atomic multi-write operations
           (period processing writes one period update plus N payslips)

INVARIANTS ENFORCED HERE:
  - At most one non-voided payslip per (employee, period). CreatePayslip
    returns ErrDuplicate when a second would be created; voiding the
    first makes room for a recalculated one.
  - Violations are append-only. No Update, no Delete: findings are
    facts about a calculation that happened.

IMPLEMENTATIONS:
  - payroll/store/memory.go: In-memory for tests and demos
  - store/sqlite/sqlite.go: Production SQLite

SEE ALSO:
  - processor.go: The only writer of periods and payslips
  - sink.go: StoreSink feeds AppendViolation
*/
package payroll

import "context"

// =============================================================================
// STORE
// =============================================================================

type Store interface {
	// Employees
	CreateEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, id EmployeeID) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)

	// Pay periods
	CreatePeriod(ctx context.Context, p PayPeriod) error
	GetPeriod(ctx context.Context, id PeriodID) (PayPeriod, error)
	UpdatePeriod(ctx context.Context, p PayPeriod) error
	ListPeriods(ctx context.Context, filter PeriodFilter) ([]PayPeriod, error)

	// Timesheets
	CreateTimesheet(ctx context.Context, t Timesheet) error
	GetTimesheet(ctx context.Context, id TimesheetID) (Timesheet, error)
	UpdateTimesheet(ctx context.Context, t Timesheet) error
	ListTimesheets(ctx context.Context, filter TimesheetFilter) ([]Timesheet, error)

	// Payslips. CreatePayslip returns ErrDuplicate when the employee
	// already has a non-voided payslip for the period.
	CreatePayslip(ctx context.Context, p Payslip) error
	GetPayslip(ctx context.Context, id PayslipID) (Payslip, error)
	UpdatePayslip(ctx context.Context, p Payslip) error
	ListPayslips(ctx context.Context, filter PayslipFilter) ([]Payslip, error)

	// Violations (append-only)
	AppendViolation(ctx context.Context, v Violation) error
	ListViolations(ctx context.Context, filter ViolationFilter) ([]Violation, error)
}

// TxStore wraps Store with transaction support. Period processing uses
// this so the period update and its payslips commit or roll back
// together; no partial payslip survives a failure.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error
	// the transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// FILTERS - nil field means "any"
// =============================================================================

type PeriodFilter struct {
	Status *PeriodStatus
}

type TimesheetFilter struct {
	PeriodID   *PeriodID
	EmployeeID *EmployeeID
	Status     *TimesheetStatus
}

type PayslipFilter struct {
	PeriodID   *PeriodID
	EmployeeID *EmployeeID
	Status     *PayslipStatus
}

type ViolationFilter struct {
	PeriodID   *PeriodID
	EmployeeID *EmployeeID
	Regulation *string
}
