/*
types.go - Shared types for the labor-law compliance engines

PURPOSE:
  Defines the facts the engines consume (WorkDay), the results they
  produce (overtime calculations, break and child-labor violations), and
  the classification vocabulary shared with the payroll orchestrator.

KEY CONCEPTS:
  - All hours and money are shopspring decimals. Binary floating point is
    never used for pay math; cent-level drift across percentage
    multiplications is unacceptable in payroll.
  - Currency rounding is half-up to 2 decimal places. Totals are sums of
    already-rounded components, so component pays always reconcile with
    the total exactly.
  - Violations are values, not errors. A missed meal break is a normal
    engine output with a monetary penalty attached.

USAGE:
  day := compliance.WorkDay{
      Date:        compliance.NewWorkDate(2025, time.March, 3),
      HoursWorked: decimal.NewFromInt(10),
  }
  calc, err := engine.CalculateDailyOvertime(day.HoursWorked, rate, false)

SEE ALSO:
  - california.go: Daily overtime, breaks, seventh-day detection
  - flsa.go: Weekly overtime, exemptions, child labor
  - errors.go: Error taxonomy
*/
package compliance

import "github.com/shopspring/decimal"

// =============================================================================
// CLASSIFICATION VOCABULARY
// =============================================================================

// FLSAStatus is the federal overtime-eligibility classification.
type FLSAStatus string

const (
	FLSAExempt    FLSAStatus = "EXEMPT"
	FLSANonExempt FLSAStatus = "NON_EXEMPT"
)

// ExemptionType identifies which white-collar exemption is claimed.
type ExemptionType string

const (
	ExemptionExecutive         ExemptionType = "EXECUTIVE"
	ExemptionAdministrative    ExemptionType = "ADMINISTRATIVE"
	ExemptionProfessional      ExemptionType = "PROFESSIONAL"
	ExemptionHighlyCompensated ExemptionType = "HIGHLY_COMPENSATED"
)

// Severity grades a detected violation.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
)

// BreakKind distinguishes the two California break entitlements.
type BreakKind string

const (
	BreakMeal BreakKind = "meal"
	BreakRest BreakKind = "rest"
)

// Regulation codes attached to violations routed to the sink.
const (
	RegulationMealBreak  = "CA_LABOR_CODE_512"
	RegulationRestBreak  = "CA_LABOR_CODE_516"
	RegulationChildLabor = "FLSA_CHILD_LABOR"
)

// =============================================================================
// INPUT FACTS
// =============================================================================

// WorkDay is one day of attendance facts for one employee. Immutable,
// supplied by the timesheet provider. Break counts are taken breaks by
// kind; school flags feed the child-labor checks for minors.
type WorkDay struct {
	Date            WorkDate
	HoursWorked     decimal.Decimal
	MealBreaksTaken int
	RestBreaksTaken int
	SchoolDay       bool
	SchoolWeek      bool
}

// =============================================================================
// ENGINE RESULTS
// =============================================================================

// OvertimeCalculation is the California daily split. OvertimeHours are
// paid at 1.5x, DoubleTimeHours at 2x. The hour fields always sum to the
// input hours; pay fields are rounded to cents and TotalPay is their
// exact sum.
type OvertimeCalculation struct {
	RegularHours    decimal.Decimal
	OvertimeHours   decimal.Decimal
	DoubleTimeHours decimal.Decimal
	RegularPay      decimal.Decimal
	OvertimePay     decimal.Decimal
	DoubleTimePay   decimal.Decimal
	TotalPay        decimal.Decimal
}

// FLSAOvertimeCalculation is the federal weekly split. OvertimeHours are
// paid at 1.5x; FLSA has no double-time tier.
type FLSAOvertimeCalculation struct {
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	RegularPay    decimal.Decimal
	OvertimePay   decimal.Decimal
	TotalPay      decimal.Decimal
}

// BreakViolation records one missed meal or rest break. Penalty is one
// hour of pay at the regular rate per violation.
type BreakViolation struct {
	Kind          BreakKind
	Date          WorkDate
	PenaltyHours  decimal.Decimal
	PenaltyAmount decimal.Decimal
	Description   string
}

// ChildLaborViolation records one breach of the federal youth-employment
// rules for a work date.
type ChildLaborViolation struct {
	Severity    Severity
	Description string
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

var (
	two          = decimal.NewFromInt(2)
	rateTimeHalf = decimal.NewFromFloat(1.5)
)

// roundCurrency rounds to 2 decimal places, half up. All pay amounts pass
// through here exactly once, at the point the component is priced.
func roundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
