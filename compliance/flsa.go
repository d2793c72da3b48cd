/*
flsa.go - Fair Labor Standards Act compliance engine

PURPOSE:
  Implements the federal wage/hour rules: weekly-aggregate overtime,
  the federal minimum wage (with state-override comparison), white-collar
  exemption tests, child-labor hour limits, record-keeping completeness,
  compensatory time, and the salary basis test.

KEY DIFFERENCE FROM CALIFORNIA:
  The FLSA has no daily tiers and no seventh-day rule. Overtime exists
  only past 40 hours in a workweek, always at 1.5x. This mismatch is why
  the payroll calculator reconciles the two engines per employee.

DETERMINISM:
  Every method is a pure function of its inputs. One engine value is safe
  for concurrent use.

USAGE:
  engine := compliance.NewFLSA(compliance.DefaultFederalParams())
  calc, err := engine.CalculateWeeklyOvertime(hours, rate)
  exempt, reason := engine.CheckExemptClassification(title, weekly, annual, duties, compliance.ExemptionExecutive)

SEE ALSO:
  - california.go: State counterpart with daily tiers
  - payroll/calculator.go: Reconciliation between the two
*/
package compliance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PARAMETERS
// =============================================================================

// FederalParams holds the adjustable federal constants: the wage floor
// and the two exemption salary thresholds (29 CFR part 541).
type FederalParams struct {
	MinimumWage             decimal.Decimal
	WeeklySalaryThreshold   decimal.Decimal
	HighlyCompensatedAnnual decimal.Decimal
}

// DefaultFederalParams returns the current statutory values.
func DefaultFederalParams() FederalParams {
	return FederalParams{
		MinimumWage:             decimal.NewFromFloat(7.25),
		WeeklySalaryThreshold:   decimal.NewFromInt(684),
		HighlyCompensatedAnnual: decimal.NewFromInt(107432),
	}
}

var (
	weeklyOvertimeStart = decimal.NewFromInt(40)

	// Child-labor limits for 14-15 year olds (29 CFR 570.35). Fixed by
	// regulation, not configurable.
	schoolDayLimit     = decimal.NewFromInt(3)
	nonSchoolDayLimit  = decimal.NewFromInt(8)
	schoolWeekLimit    = decimal.NewFromInt(18)
	nonSchoolWeekLimit = decimal.NewFromInt(40)
)

const (
	minimumWorkAge      = 14
	hazardousWorkAge    = 18
	youthHourRuleMaxAge = 15
)

// exemptionDutyKeywords maps each exemption type to the duty vocabulary
// that must appear in at least one listed duty for the duties test.
var exemptionDutyKeywords = map[ExemptionType][]string{
	ExemptionExecutive:      {"manage", "supervise", "direct", "hire"},
	ExemptionAdministrative: {"administrative", "office", "discretion", "judgment", "operations"},
	ExemptionProfessional:   {"professional", "degree", "advanced", "specialized", "creative"},
}

// FLSA evaluates federal wage/hour rules.
type FLSA struct {
	params FederalParams
}

// NewFLSA creates the federal engine with the given parameters.
func NewFLSA(params FederalParams) *FLSA {
	return &FLSA{params: params}
}

// =============================================================================
// WEEKLY OVERTIME
// =============================================================================

// CalculateWeeklyOvertime splits a workweek's hours at the 40-hour line
// and prices both sides. Hours past 40 are paid at 1.5x.
func (f *FLSA) CalculateWeeklyOvertime(hoursWorked, regularRate decimal.Decimal) (FLSAOvertimeCalculation, error) {
	if hoursWorked.IsNegative() {
		return FLSAOvertimeCalculation{}, NewInvalidInput("hours_worked", hoursWorked, "hours worked cannot be negative")
	}
	if regularRate.IsNegative() {
		return FLSAOvertimeCalculation{}, NewInvalidInput("regular_rate", regularRate, "pay rate cannot be negative")
	}

	regular := decimal.Min(hoursWorked, weeklyOvertimeStart)
	overtime := decimal.Max(hoursWorked.Sub(weeklyOvertimeStart), decimal.Zero)

	calc := FLSAOvertimeCalculation{
		RegularHours:  regular,
		OvertimeHours: overtime,
		RegularPay:    roundCurrency(regular.Mul(regularRate)),
		OvertimePay:   roundCurrency(overtime.Mul(regularRate).Mul(rateTimeHalf)),
	}
	calc.TotalPay = calc.RegularPay.Add(calc.OvertimePay)
	return calc, nil
}

// =============================================================================
// MINIMUM WAGE
// =============================================================================

// ValidateMinimumWage checks an hourly rate against the governing wage
// floor. Pass decimal.Zero for stateMinimumWage when no state minimum
// applies; when the state minimum exceeds the federal one, the state
// value governs and the failure message says so.
func (f *FLSA) ValidateMinimumWage(hourlyRate, stateMinimumWage decimal.Decimal) (bool, string) {
	if stateMinimumWage.GreaterThan(f.params.MinimumWage) {
		if hourlyRate.LessThan(stateMinimumWage) {
			return false, fmt.Sprintf("Hourly rate $%s is below the state minimum wage of $%s, which governs over the federal minimum",
				hourlyRate.StringFixed(2), stateMinimumWage.StringFixed(2))
		}
		return true, ""
	}
	if hourlyRate.LessThan(f.params.MinimumWage) {
		return false, fmt.Sprintf("Hourly rate $%s is below the federal minimum wage of $%s",
			hourlyRate.StringFixed(2), f.params.MinimumWage.StringFixed(2))
	}
	return true, ""
}

// =============================================================================
// EXEMPTION CLASSIFICATION
// =============================================================================

// CheckExemptClassification applies the two-part white-collar exemption
// test: the salary threshold and a duties test for the claimed exemption
// type. HIGHLY_COMPENSATED uses the higher annual threshold with a
// relaxed duties test (any customarily performed exempt duty suffices).
func (f *FLSA) CheckExemptClassification(jobTitle string, weeklySalary, annualSalary decimal.Decimal, jobDuties []string, exemptionType ExemptionType) (bool, string) {
	if exemptionType == ExemptionHighlyCompensated {
		if annualSalary.LessThan(f.params.HighlyCompensatedAnnual) {
			return false, fmt.Sprintf("Annual salary $%s is below the highly compensated salary threshold of $%s",
				annualSalary.StringFixed(2), f.params.HighlyCompensatedAnnual.StringFixed(2))
		}
		if len(jobDuties) == 0 {
			return false, fmt.Sprintf("No duties listed for %q; highly compensated exemption requires at least one exempt duty", jobTitle)
		}
		return true, ""
	}

	keywords, ok := exemptionDutyKeywords[exemptionType]
	if !ok {
		return false, fmt.Sprintf("Unrecognized exemption type %q", string(exemptionType))
	}

	if weeklySalary.LessThan(f.params.WeeklySalaryThreshold) {
		return false, fmt.Sprintf("Weekly salary $%s is below the FLSA exemption salary threshold of $%s",
			weeklySalary.StringFixed(2), f.params.WeeklySalaryThreshold.StringFixed(2))
	}

	for _, duty := range jobDuties {
		lower := strings.ToLower(duty)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true, ""
			}
		}
	}
	return false, fmt.Sprintf("Listed duties for %q do not reflect %s exemption responsibilities", jobTitle, string(exemptionType))
}

// =============================================================================
// CHILD LABOR
// =============================================================================

// CheckChildLaborCompliance applies the federal youth-employment rules to
// one work date. Violations accumulate independently: a 13-year-old on
// hazardous work yields both the minimum-age and the hazardous violation.
func (f *FLSA) CheckChildLaborCompliance(employeeAge int, hoursWorked decimal.Decimal, workDate WorkDate, isSchoolDay, isSchoolWeek, isHazardousWork bool) []ChildLaborViolation {
	var violations []ChildLaborViolation

	if employeeAge < minimumWorkAge {
		violations = append(violations, ChildLaborViolation{
			Severity: SeverityCritical,
			Description: fmt.Sprintf("Employee age %d is below the federal minimum work age of %d (worked %s)",
				employeeAge, minimumWorkAge, workDate),
		})
	}

	if isHazardousWork && employeeAge < hazardousWorkAge {
		violations = append(violations, ChildLaborViolation{
			Severity: SeverityCritical,
			Description: fmt.Sprintf("Employee age %d performed hazardous work on %s; hazardous occupations require age %d",
				employeeAge, workDate, hazardousWorkAge),
		})
	}

	if employeeAge >= minimumWorkAge && employeeAge <= youthHourRuleMaxAge {
		if isSchoolDay && hoursWorked.GreaterThan(schoolDayLimit) {
			violations = append(violations, ChildLaborViolation{
				Severity: SeverityHigh,
				Description: fmt.Sprintf("Worked %s hours on a school day (%s hour limit for ages 14-15)",
					hoursWorked, schoolDayLimit),
			})
		}
		if !isSchoolDay && hoursWorked.GreaterThan(nonSchoolDayLimit) {
			violations = append(violations, ChildLaborViolation{
				Severity: SeverityHigh,
				Description: fmt.Sprintf("Worked %s hours on a non-school day (%s hour limit for ages 14-15)",
					hoursWorked, nonSchoolDayLimit),
			})
		}
		if isSchoolWeek && hoursWorked.GreaterThan(schoolWeekLimit) {
			violations = append(violations, ChildLaborViolation{
				Severity: SeverityHigh,
				Description: fmt.Sprintf("Worked %s hours during a school week (%s hour limit for ages 14-15)",
					hoursWorked, schoolWeekLimit),
			})
		}
		if !isSchoolWeek && hoursWorked.GreaterThan(nonSchoolWeekLimit) {
			violations = append(violations, ChildLaborViolation{
				Severity: SeverityHigh,
				Description: fmt.Sprintf("Worked %s hours during a non-school week (%s hour limit for ages 14-15)",
					hoursWorked, nonSchoolWeekLimit),
			})
		}
	}

	return violations
}

// =============================================================================
// RECORD KEEPING
// =============================================================================

// RecordKeepingFacts reports which of the FLSA-required payroll records
// exist for an employee (29 CFR part 516).
type RecordKeepingFacts struct {
	EmployeeID            string
	HasName               bool
	HasAddress            bool
	HasSSN                bool
	HasBirthDate          bool
	HasOccupation         bool
	HasHourlyRate         bool
	HasHoursWorkedRecords bool
	HasWagesPaidRecords   bool
}

// CheckRecordKeeping returns one descriptive string per missing required
// record. An empty result means the employer's records are complete.
func (f *FLSA) CheckRecordKeeping(facts RecordKeepingFacts) []string {
	var missing []string
	add := func(present bool, field string) {
		if !present {
			missing = append(missing, field)
		}
	}
	add(facts.HasName, "employee full name")
	add(facts.HasAddress, "home address")
	add(facts.HasSSN, "social security number")
	add(facts.HasBirthDate, "date of birth")
	add(facts.HasOccupation, "occupation")
	add(facts.HasHourlyRate, "regular hourly pay rate")
	add(facts.HasHoursWorkedRecords, "hours worked records")
	add(facts.HasWagesPaidRecords, "wages paid records")
	return missing
}

// =============================================================================
// COMPENSATORY TIME
// =============================================================================

// CalculateCompensatoryTime converts overtime hours to comp time at 1.5x.
// Only public-sector employers may substitute comp time for overtime pay;
// private-sector callers get zero hours and an error saying so.
func (f *FLSA) CalculateCompensatoryTime(overtimeHours decimal.Decimal, isPublicSector bool) (decimal.Decimal, error) {
	if overtimeHours.IsNegative() {
		return decimal.Zero, NewInvalidInput("overtime_hours", overtimeHours, "overtime hours cannot be negative")
	}
	if !isPublicSector {
		return decimal.Zero, errors.New("compensatory time in lieu of overtime pay is limited to public sector employers")
	}
	return overtimeHours.Mul(rateTimeHalf), nil
}

// =============================================================================
// SALARY BASIS
// =============================================================================

// ValidateSalaryBasis checks that an exempt employee is actually paid on
// a salary basis: pay type "salary" with a guaranteed weekly amount at or
// above the exemption threshold.
func (f *FLSA) ValidateSalaryBasis(payType string, guaranteedWeeklyAmount decimal.Decimal) (bool, string) {
	if payType != "salary" {
		return false, fmt.Sprintf("Pay type %q does not satisfy the salary basis test", payType)
	}
	if guaranteedWeeklyAmount.LessThan(f.params.WeeklySalaryThreshold) {
		return false, fmt.Sprintf("Guaranteed weekly amount $%s is below the $%s salary threshold",
			guaranteedWeeklyAmount.StringFixed(2), f.params.WeeklySalaryThreshold.StringFixed(2))
	}
	return true, ""
}
