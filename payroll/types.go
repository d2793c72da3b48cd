/*
Package payroll turns attendance facts into compliant payslips.

PURPOSE:
  This package owns the payroll domain model and the calculation
  pipeline built on top of the compliance engines: employees,
  timesheets, pay periods, payslips, deduction policies, and the
  violation records produced along the way.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: compensation facts and compliance attributes (read-only inputs)
  - Timesheet: per-day attendance facts, or pre-aggregated hour totals
  - PayPeriod: the unit of processing, with a strict lifecycle
  - Payslip: the calculation output, with its own lifecycle
  - Violation: an immutable compliance finding routed to a sink

LIFECYCLES:
  PayPeriod:  OPEN ──▶ PROCESSING ──▶ APPROVED ──▶ PAID ──▶ CLOSED
                │            │             │
                └────────────┴─────────────┴──▶ CANCELLED (pre-PAID only)

  Payslip:    DRAFT ──▶ CALCULATED ──▶ APPROVED ──▶ PAID
                │            │             │
                └────────────┴─────────────┴──▶ VOIDED (pre-PAID only)

  PAID, CLOSED, CANCELLED, and VOIDED are terminal for their exits:
  once money moved, the record is immutable. Transitions outside these
  arrows fail with InvalidStateError.

DESIGN PRINCIPLES:
  1. Precision: every money and hour field is a decimal.Decimal
  2. Immutability: payslips are recomputed, never patched in place
  3. Violations are data, not errors: they flow to the ViolationSink

SEE ALSO:
  - calculator.go: turns these inputs into a Payslip
  - processor.go: drives the period lifecycle against the store
  - deductions.go: the pluggable deduction schedule
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/compliance"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type PeriodID string
type TimesheetID string
type PayslipID string
type ViolationID string

// =============================================================================
// PAY FREQUENCY
// =============================================================================

// PayFrequency is how often a pay period recurs. It fixes the salary
// proration divisor for salaried employees.
type PayFrequency string

const (
	Weekly      PayFrequency = "WEEKLY"
	BiWeekly    PayFrequency = "BI_WEEKLY"
	SemiMonthly PayFrequency = "SEMI_MONTHLY"
	Monthly     PayFrequency = "MONTHLY"
)

var periodsPerYear = map[PayFrequency]int64{
	Weekly:      52,
	BiWeekly:    26,
	SemiMonthly: 24,
	Monthly:     12,
}

// PeriodsPerYear returns how many periods of this frequency make up a
// year, or an error for an unknown frequency.
func (f PayFrequency) PeriodsPerYear() (decimal.Decimal, error) {
	n, ok := periodsPerYear[f]
	if !ok {
		return decimal.Zero, compliance.NewInvalidInput("pay_frequency", string(f), "unknown pay frequency")
	}
	return decimal.NewFromInt(n), nil
}

// =============================================================================
// EMPLOYEE - Compensation facts and compliance attributes
// =============================================================================

type Employee struct {
	ID         EmployeeID
	Name       string
	Email      string
	Department string
	JobTitle   string

	// Inactive employees keep their records but are passed over by
	// period processing.
	Active bool

	// Compliance attributes. State is the two-letter work-state code;
	// "CA" employees get the California daily rules.
	State         string
	FLSAStatus    compliance.FLSAStatus
	ExemptionType compliance.ExemptionType
	JobDuties     []string
	BirthDate     compliance.WorkDate // zero value when not on file
	HazardousWork bool                // occupation is on the hazardous list
	PublicSector  bool

	// Compensation. At least one of the two must be positive; an
	// employee with neither cannot be calculated.
	HourlyRate   decimal.Decimal
	AnnualSalary decimal.Decimal
}

// Subject to the California Labor Code daily rules.
func (e Employee) IsCalifornia() bool { return e.State == "CA" }

// AgeOn returns the employee's age in whole years on the given date,
// or -1 when no birth date is on file.
func (e Employee) AgeOn(date compliance.WorkDate) int {
	if e.BirthDate.IsZero() {
		return -1
	}
	return compliance.YearsBetween(e.BirthDate, date)
}

// IsMinorOn reports whether the employee is under 18 on the given date.
// Employees without a birth date are assumed adult.
func (e Employee) IsMinorOn(date compliance.WorkDate) bool {
	age := e.AgeOn(date)
	return age >= 0 && age < 18
}

// =============================================================================
// PAY PERIOD
// =============================================================================

type PeriodStatus string

const (
	PeriodOpen       PeriodStatus = "OPEN"
	PeriodProcessing PeriodStatus = "PROCESSING"
	PeriodApproved   PeriodStatus = "APPROVED"
	PeriodPaid       PeriodStatus = "PAID"
	PeriodClosed     PeriodStatus = "CLOSED"
	PeriodCancelled  PeriodStatus = "CANCELLED"
)

var periodTransitions = map[PeriodStatus][]PeriodStatus{
	PeriodOpen:       {PeriodProcessing, PeriodCancelled},
	PeriodProcessing: {PeriodApproved, PeriodCancelled},
	PeriodApproved:   {PeriodPaid, PeriodCancelled},
	PeriodPaid:       {PeriodClosed},
}

// CanTransitionTo reports whether the lifecycle permits moving from
// this status to next.
func (s PeriodStatus) CanTransitionTo(next PeriodStatus) bool {
	for _, allowed := range periodTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PayPeriod struct {
	ID        PeriodID
	Name      string
	StartDate compliance.WorkDate
	EndDate   compliance.WorkDate
	PayDate   compliance.WorkDate
	Frequency PayFrequency
	Status    PeriodStatus

	// Filled in when the period is processed.
	TotalGross        decimal.Decimal
	TotalDeductions   decimal.Decimal
	TotalNet          decimal.Decimal
	ViolationCount    int
	PayslipCount      int
	ComplianceChecked bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transition moves the period to next, enforcing the lifecycle.
func (p *PayPeriod) Transition(next PeriodStatus) error {
	if !p.Status.CanTransitionTo(next) {
		return &compliance.InvalidStateError{
			Entity: "pay period",
			ID:     string(p.ID),
			From:   string(p.Status),
			To:     string(next),
		}
	}
	p.Status = next
	return nil
}

// =============================================================================
// TIMESHEET - Attendance facts for one employee in one period
// =============================================================================

type TimesheetStatus string

const (
	TimesheetDraft     TimesheetStatus = "DRAFT"
	TimesheetSubmitted TimesheetStatus = "SUBMITTED"
	TimesheetApproved  TimesheetStatus = "APPROVED"
)

// Timesheet carries either per-day facts (Days, used for California
// employees) or pre-aggregated hour totals (used elsewhere). Only
// APPROVED timesheets are picked up by period processing.
type Timesheet struct {
	ID         TimesheetID
	EmployeeID EmployeeID
	PeriodID   PeriodID
	Status     TimesheetStatus

	// Per-day facts, ordered by date.
	Days []compliance.WorkDay

	// Pre-aggregated totals for employees outside the daily rules.
	RegularHours    decimal.Decimal
	OvertimeHours   decimal.Decimal
	DoubleTimeHours decimal.Decimal

	// Additional earnings for the period.
	Bonus         decimal.Decimal
	Commission    decimal.Decimal
	OtherEarnings decimal.Decimal
}

// TotalHours sums the per-day hours when present, falling back to the
// pre-aggregated totals.
func (t Timesheet) TotalHours() decimal.Decimal {
	if len(t.Days) > 0 {
		total := decimal.Zero
		for _, day := range t.Days {
			total = total.Add(day.HoursWorked)
		}
		return total
	}
	return t.RegularHours.Add(t.OvertimeHours).Add(t.DoubleTimeHours)
}

// WorkDates returns the dates of the per-day facts, in input order.
func (t Timesheet) WorkDates() []compliance.WorkDate {
	dates := make([]compliance.WorkDate, len(t.Days))
	for i, day := range t.Days {
		dates[i] = day.Date
	}
	return dates
}

// =============================================================================
// PAYSLIP - Calculation output
// =============================================================================

type PayslipStatus string

const (
	PayslipDraft      PayslipStatus = "DRAFT"
	PayslipCalculated PayslipStatus = "CALCULATED"
	PayslipApproved   PayslipStatus = "APPROVED"
	PayslipPaid       PayslipStatus = "PAID"
	PayslipVoided     PayslipStatus = "VOIDED"
)

var payslipTransitions = map[PayslipStatus][]PayslipStatus{
	PayslipDraft:      {PayslipCalculated, PayslipVoided},
	PayslipCalculated: {PayslipApproved, PayslipVoided},
	PayslipApproved:   {PayslipPaid, PayslipVoided},
}

// CanTransitionTo reports whether the lifecycle permits moving from
// this status to next. PAID and VOIDED are terminal.
func (s PayslipStatus) CanTransitionTo(next PayslipStatus) bool {
	for _, allowed := range payslipTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Payslip struct {
	ID         PayslipID
	EmployeeID EmployeeID
	PeriodID   PeriodID
	Status     PayslipStatus

	// Hours
	RegularHours    decimal.Decimal
	OvertimeHours   decimal.Decimal
	DoubleTimeHours decimal.Decimal

	// Earnings
	RegularPay       decimal.Decimal
	OvertimePay      decimal.Decimal
	DoubleTimePay    decimal.Decimal
	MealBreakPenalty decimal.Decimal
	RestBreakPenalty decimal.Decimal
	Bonus            decimal.Decimal
	Commission       decimal.Decimal
	OtherEarnings    decimal.Decimal
	GrossPay         decimal.Decimal

	// Deductions
	Deductions      DeductionBreakdown
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal

	// Compliance flags. A false flag means the period carried at least
	// one violation under that regime; the pay figures are still the
	// as-calculated ones (discrepancies are surfaced, never silently
	// corrected).
	CaliforniaCompliant bool
	FLSACompliant       bool
	ComplianceNotes     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transition moves the payslip to next, enforcing the lifecycle.
func (p *Payslip) Transition(next PayslipStatus) error {
	if !p.Status.CanTransitionTo(next) {
		return &compliance.InvalidStateError{
			Entity: "payslip",
			ID:     string(p.ID),
			From:   string(p.Status),
			To:     string(next),
		}
	}
	p.Status = next
	return nil
}

// DeductionBreakdown itemizes everything withheld from gross pay.
type DeductionBreakdown struct {
	FederalTax      decimal.Decimal
	StateTax        decimal.Decimal
	SocialSecurity  decimal.Decimal
	Medicare        decimal.Decimal
	HealthInsurance decimal.Decimal
	Retirement401k  decimal.Decimal
	Other           decimal.Decimal
}

// Total sums every line of the breakdown.
func (d DeductionBreakdown) Total() decimal.Decimal {
	return d.FederalTax.
		Add(d.StateTax).
		Add(d.SocialSecurity).
		Add(d.Medicare).
		Add(d.HealthInsurance).
		Add(d.Retirement401k).
		Add(d.Other)
}

// CustomDeductions are the caller-supplied benefit withholdings passed
// into a calculation alongside the timesheet.
type CustomDeductions struct {
	HealthInsurance decimal.Decimal
	Retirement401k  decimal.Decimal
	Other           decimal.Decimal
}

// =============================================================================
// VIOLATION - Immutable compliance finding
// =============================================================================

// ViolationType is the broad category a violation falls under.
type ViolationType string

const (
	ViolationLaborLaw ViolationType = "LABOR_LAW"
)

// Violation is the record handed to the ViolationSink for every
// compliance finding. Findings are expected outputs, not errors; they
// never abort a calculation.
type Violation struct {
	ID              ViolationID
	Type            ViolationType
	Regulation      string
	Severity        compliance.Severity
	Description     string
	EntityType      string
	EntityID        string
	EmployeeID      EmployeeID
	PeriodID        PeriodID
	FinancialImpact decimal.Decimal
	OccurredOn      compliance.WorkDate
	CreatedAt       time.Time
}

func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }
