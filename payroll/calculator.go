/*
calculator.go - Per-employee pay calculation with compliance checks

PURPOSE:
  Turns one employee's timesheet for one pay period into a payslip,
  running the applicable compliance engines and forwarding every finding
  to the ViolationSink.

CALCULATION FLOW:
  ┌────────────────────────────────────────────────────────────────┐
  │                                                                │
  │  Resolve         California?      FLSA weekly       Gross pay  │
  │  pay rate   ──▶  daily loop  ──▶  reconciliation ──▶ and       │
  │                  (OT tiers,       (NON_EXEMPT       deductions │
  │                  break checks)    only)                        │
  │                       │                │                       │
  │                       ▼                ▼                       │
  │                  ViolationSink    compliance flags + notes     │
  │                                                                │
  └────────────────────────────────────────────────────────────────┘

TWO OVERTIME REGIMES:
  Hourly California employees get the daily loop: per-day tier splits
  with seventh-consecutive-day detection, plus meal and rest break
  checks. Everyone else (non-CA hourly, all salaried) supplies
  pre-aggregated hour totals. The FLSA weekly calculation then runs for
  NON_EXEMPT employees; when the federal overtime exceeds the state
  result, the payslip is flagged for review. The calculator NEVER
  rewrites pay with the federal figure: the discrepancy is surfaced, a
  human decides.

COMPENSATION RESOLUTION:
  An hourly rate prices hours directly. A salaried employee's base pay
  is the annual salary prorated by the period frequency, with an hourly
  equivalent (annual / 2080) used to price overtime premiums and break
  penalties. An employee with neither fails with
  MissingCompensationError.

DETERMINISM:
  Same inputs, same payslip figures. Sink failures are logged and
  swallowed; a reporting problem never blocks payroll.

SEE ALSO:
  - compliance/california.go, compliance/flsa.go: the rule engines
  - processor.go: runs this calculator across a period
*/
package payroll

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/compliance"
)

var (
	timeAndHalf = decimal.NewFromFloat(1.5)
	doubleTime  = decimal.NewFromInt(2)

	// Standard full-time annualization: 52 weeks of 40 hours.
	annualWorkHours = decimal.NewFromInt(2080)
)

// CalculationInput bundles the facts for one employee/period pair.
type CalculationInput struct {
	Employee  Employee
	Period    PayPeriod
	Timesheet Timesheet
	Custom    CustomDeductions
}

// Calculator orchestrates the compliance engines into payslip figures.
// It is stateless; one value is safe for concurrent use across
// employees.
type Calculator struct {
	california *compliance.CaliforniaLaborCode
	flsa       *compliance.FLSA
	deductions DeductionPolicy
	sink       ViolationSink
}

func NewCalculator(california *compliance.CaliforniaLaborCode, flsa *compliance.FLSA, deductions DeductionPolicy, sink ViolationSink) *Calculator {
	return &Calculator{
		california: california,
		flsa:       flsa,
		deductions: deductions,
		sink:       sink,
	}
}

// Calculate produces the payslip for one employee's timesheet. The
// returned count is the number of violations forwarded to the sink.
// The payslip comes back in CALCULATED state without an ID; the caller
// owns identity and persistence.
func (c *Calculator) Calculate(ctx context.Context, input CalculationInput) (Payslip, int, error) {
	emp := input.Employee
	ts := input.Timesheet

	rate, proratedBase, salaried, err := resolveCompensation(emp, input.Period.Frequency)
	if err != nil {
		return Payslip{}, 0, err
	}

	var (
		regularHours    = decimal.Zero
		overtimeHours   = decimal.Zero
		doubleTimeHours = decimal.Zero
		mealPenalty     = decimal.Zero
		restPenalty     = decimal.Zero
		caCompliant     = true
		flsaCompliant   = true
		notes           []string
		violations      int
	)

	if !salaried && emp.IsCalifornia() && len(ts.Days) > 0 {
		seventhDays := make(map[compliance.WorkDate]bool)
		for _, d := range c.california.IdentifySeventhConsecutiveDay(ts.WorkDates()) {
			seventhDays[d] = true
		}

		for _, day := range ts.Days {
			if day.HoursWorked.IsZero() {
				continue
			}

			otCalc, err := c.california.CalculateDailyOvertime(day.HoursWorked, rate, seventhDays[day.Date])
			if err != nil {
				return Payslip{}, violations, err
			}
			regularHours = regularHours.Add(otCalc.RegularHours)
			overtimeHours = overtimeHours.Add(otCalc.OvertimeHours)
			doubleTimeHours = doubleTimeHours.Add(otCalc.DoubleTimeHours)

			for _, bv := range c.california.CheckMealBreaks(day.Date, day.HoursWorked, day.MealBreaksTaken, rate) {
				caCompliant = false
				mealPenalty = mealPenalty.Add(bv.PenaltyAmount)
				notes = append(notes, bv.Description)
				c.emit(ctx, input, Violation{
					Type:            ViolationLaborLaw,
					Regulation:      compliance.RegulationMealBreak,
					Severity:        compliance.SeverityHigh,
					Description:     bv.Description,
					FinancialImpact: bv.PenaltyAmount,
					OccurredOn:      day.Date,
				})
				violations++
			}

			for _, bv := range c.california.CheckRestBreaks(day.Date, day.HoursWorked, day.RestBreaksTaken, rate) {
				caCompliant = false
				restPenalty = restPenalty.Add(bv.PenaltyAmount)
				notes = append(notes, bv.Description)
				c.emit(ctx, input, Violation{
					Type:            ViolationLaborLaw,
					Regulation:      compliance.RegulationRestBreak,
					Severity:        compliance.SeverityHigh,
					Description:     bv.Description,
					FinancialImpact: bv.PenaltyAmount,
					OccurredOn:      day.Date,
				})
				violations++
			}
		}
	} else {
		regularHours = ts.RegularHours
		overtimeHours = ts.OvertimeHours
		doubleTimeHours = ts.DoubleTimeHours
	}

	// Child labor checks run for minors whenever per-day facts exist,
	// regardless of state coverage.
	for _, day := range ts.Days {
		if !emp.IsMinorOn(day.Date) {
			continue
		}
		age := emp.AgeOn(day.Date)
		for _, cv := range c.flsa.CheckChildLaborCompliance(age, day.HoursWorked, day.Date, day.SchoolDay, day.SchoolWeek, emp.HazardousWork) {
			flsaCompliant = false
			notes = append(notes, cv.Description)
			c.emit(ctx, input, Violation{
				Type:        ViolationLaborLaw,
				Regulation:  compliance.RegulationChildLabor,
				Severity:    cv.Severity,
				Description: cv.Description,
				OccurredOn:  day.Date,
			})
			violations++
		}
	}

	// Weekly reconciliation. When the federal calculation owes more
	// overtime than the state tiers produced, flag and note; the more
	// favorable figure is a payroll decision, not an auto-correction.
	if emp.FLSAStatus == compliance.FLSANonExempt {
		totalHours := regularHours.Add(overtimeHours).Add(doubleTimeHours)
		flsaCalc, err := c.flsa.CalculateWeeklyOvertime(totalHours, rate)
		if err != nil {
			return Payslip{}, violations, err
		}
		if flsaCalc.OvertimeHours.GreaterThan(overtimeHours.Add(doubleTimeHours)) {
			flsaCompliant = false
			notes = append(notes, fmt.Sprintf("FLSA overtime (%s hrs) differs from state calculation", flsaCalc.OvertimeHours))
		}
	}

	regularPay := round2(regularHours.Mul(rate))
	if salaried {
		regularPay = proratedBase
	}
	overtimePay := round2(overtimeHours.Mul(rate).Mul(timeAndHalf))
	doubleTimePay := round2(doubleTimeHours.Mul(rate).Mul(doubleTime))

	bonus := round2(ts.Bonus)
	commission := round2(ts.Commission)
	otherEarnings := round2(ts.OtherEarnings)

	grossPay := regularPay.
		Add(overtimePay).
		Add(doubleTimePay).
		Add(mealPenalty).
		Add(restPenalty).
		Add(bonus).
		Add(commission).
		Add(otherEarnings)

	breakdown := c.deductions.Compute(grossPay, input.Custom)
	totalDeductions := breakdown.Total()

	slip := Payslip{
		EmployeeID:          emp.ID,
		PeriodID:            input.Period.ID,
		Status:              PayslipCalculated,
		RegularHours:        regularHours,
		OvertimeHours:       overtimeHours,
		DoubleTimeHours:     doubleTimeHours,
		RegularPay:          regularPay,
		OvertimePay:         overtimePay,
		DoubleTimePay:       doubleTimePay,
		MealBreakPenalty:    mealPenalty,
		RestBreakPenalty:    restPenalty,
		Bonus:               bonus,
		Commission:          commission,
		OtherEarnings:       otherEarnings,
		GrossPay:            grossPay,
		Deductions:          breakdown,
		TotalDeductions:     totalDeductions,
		NetPay:              grossPay.Sub(totalDeductions),
		CaliforniaCompliant: caCompliant,
		FLSACompliant:       flsaCompliant,
		ComplianceNotes:     strings.Join(notes, "; "),
	}
	return slip, violations, nil
}

// resolveCompensation picks the pricing rate and, for salaried
// employees, the prorated base for the period.
func resolveCompensation(emp Employee, frequency PayFrequency) (rate, proratedBase decimal.Decimal, salaried bool, err error) {
	if emp.HourlyRate.IsPositive() {
		return emp.HourlyRate, decimal.Zero, false, nil
	}
	if emp.AnnualSalary.IsPositive() {
		divisor, err := frequency.PeriodsPerYear()
		if err != nil {
			return decimal.Zero, decimal.Zero, false, err
		}
		base := round2(emp.AnnualSalary.Div(divisor))
		return emp.AnnualSalary.Div(annualWorkHours), base, true, nil
	}
	return decimal.Zero, decimal.Zero, false, &compliance.MissingCompensationError{EmployeeID: string(emp.ID)}
}

// emit completes the violation record and hands it to the sink.
// Sink failures are logged and swallowed.
func (c *Calculator) emit(ctx context.Context, input CalculationInput, v Violation) {
	v.ID = ViolationID(uuid.NewString())
	v.EntityType = "timesheet_entry"
	v.EntityID = string(input.Timesheet.ID)
	v.EmployeeID = input.Employee.ID
	v.PeriodID = input.Period.ID
	v.CreatedAt = time.Now().UTC()
	if err := c.sink.Record(ctx, v); err != nil {
		log.Printf("violation sink failed for %s, continuing: %v", v.EmployeeID, err)
	}
}
