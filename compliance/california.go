/*
california.go - California Labor Code compliance engine

PURPOSE:
  Implements the state wage/hour rules that go beyond the FLSA: daily
  overtime tiers, seventh-consecutive-day premiums, meal and rest break
  entitlements with penalty pay, and the state minimum wage.

KEY RULES:
  Daily overtime (Labor Code 510):
    hours 0-8   regular rate
    hours 8-12  1.5x
    hours >12   2x
  Seventh consecutive day:
    first 8 hours 1.5x (no regular-rate hours at all)
    hours over 8  2x
  Meal breaks (Labor Code 512):
    shift >5h   one 30-minute meal break owed
    shift >10h  a second meal break owed
    each missed break: one hour of pay at the regular rate (226.7)
  Rest breaks (IWC wage orders):
    one 10-minute paid break per 4 hours or major fraction thereof;
    none owed under 3.5 hours. Same one-hour penalty per missed break.

DETERMINISM:
  Every method is a pure function of its inputs. The engine holds only
  immutable parameters, so one engine value is safe for concurrent use.

USAGE:
  engine := compliance.NewCaliforniaLaborCode(compliance.DefaultCaliforniaParams())
  calc, err := engine.CalculateDailyOvertime(hours, rate, false)
  violations := engine.CheckMealBreaks(day, hours, breaksTaken, rate)

SEE ALSO:
  - flsa.go: Federal counterpart (weekly-aggregate only)
  - payroll/calculator.go: Drives this engine per work day
*/
package compliance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PARAMETERS
// =============================================================================

// CaliforniaParams holds the adjustable state constants. Statutory
// tier boundaries are fixed in code; only the wage floor moves year to year.
type CaliforniaParams struct {
	MinimumWage decimal.Decimal
}

// DefaultCaliforniaParams returns the current statutory values.
func DefaultCaliforniaParams() CaliforniaParams {
	return CaliforniaParams{
		MinimumWage: decimal.NewFromFloat(16.00),
	}
}

var (
	dailyOvertimeStart   = decimal.NewFromInt(8)  // daily hours before 1.5x
	dailyDoubleTimeStart = decimal.NewFromInt(12) // daily hours before 2x
	mealBreakThreshold   = decimal.NewFromInt(5)  // shift hours before a meal break is owed
	secondMealThreshold  = decimal.NewFromInt(10) // shift hours before a second meal break is owed
	restBreakMinimum     = decimal.NewFromFloat(3.5)
	restBreakBlock       = decimal.NewFromInt(4)
	breakPenaltyHours    = decimal.NewFromInt(1)
)

// CaliforniaLaborCode evaluates California wage/hour rules.
type CaliforniaLaborCode struct {
	params CaliforniaParams
}

// NewCaliforniaLaborCode creates the state engine with the given parameters.
func NewCaliforniaLaborCode(params CaliforniaParams) *CaliforniaLaborCode {
	return &CaliforniaLaborCode{params: params}
}

// =============================================================================
// DAILY OVERTIME
// =============================================================================

// CalculateDailyOvertime splits one day's hours into regular, 1.5x, and 2x
// tiers and prices each tier. On the seventh consecutive workday the
// regular tier disappears: the first 8 hours are 1.5x and the rest 2x.
func (c *CaliforniaLaborCode) CalculateDailyOvertime(hoursWorked, regularRate decimal.Decimal, isSeventhDay bool) (OvertimeCalculation, error) {
	if hoursWorked.IsNegative() {
		return OvertimeCalculation{}, NewInvalidInput("hours_worked", hoursWorked, "hours worked cannot be negative")
	}
	if regularRate.IsNegative() {
		return OvertimeCalculation{}, NewInvalidInput("regular_rate", regularRate, "pay rate cannot be negative")
	}

	var regular, overtime, doubleTime decimal.Decimal

	if isSeventhDay {
		// Seventh consecutive day: no regular-rate hours at all.
		overtime = decimal.Min(hoursWorked, dailyOvertimeStart)
		doubleTime = decimal.Max(hoursWorked.Sub(dailyOvertimeStart), decimal.Zero)
	} else {
		regular = decimal.Min(hoursWorked, dailyOvertimeStart)
		overtime = decimal.Min(
			decimal.Max(hoursWorked.Sub(dailyOvertimeStart), decimal.Zero),
			dailyDoubleTimeStart.Sub(dailyOvertimeStart),
		)
		doubleTime = decimal.Max(hoursWorked.Sub(dailyDoubleTimeStart), decimal.Zero)
	}

	return priceOvertime(regular, overtime, doubleTime, regularRate), nil
}

// priceOvertime prices each tier, rounding once per component so the
// total is the exact sum of the parts.
func priceOvertime(regular, overtime, doubleTime, rate decimal.Decimal) OvertimeCalculation {
	calc := OvertimeCalculation{
		RegularHours:    regular,
		OvertimeHours:   overtime,
		DoubleTimeHours: doubleTime,
		RegularPay:      roundCurrency(regular.Mul(rate)),
		OvertimePay:     roundCurrency(overtime.Mul(rate).Mul(rateTimeHalf)),
		DoubleTimePay:   roundCurrency(doubleTime.Mul(rate).Mul(two)),
	}
	calc.TotalPay = calc.RegularPay.Add(calc.OvertimePay).Add(calc.DoubleTimePay)
	return calc
}

// =============================================================================
// MEAL BREAKS
// =============================================================================

// CheckMealBreaks reports missed meal breaks for one shift. A shift over
// 5 hours owes one meal break, over 10 hours a second. The two checks are
// independent: a 0-break 11-hour shift yields two violations and two
// penalty hours.
func (c *CaliforniaLaborCode) CheckMealBreaks(workDate WorkDate, hoursWorked decimal.Decimal, mealBreaksTaken int, regularRate decimal.Decimal) []BreakViolation {
	var violations []BreakViolation

	if hoursWorked.GreaterThan(mealBreakThreshold) && mealBreaksTaken < 1 {
		violations = append(violations, newBreakViolation(BreakMeal, workDate, regularRate,
			fmt.Sprintf("First meal break missed on %s (%s hours worked)", workDate, hoursWorked)))
	}
	if hoursWorked.GreaterThan(secondMealThreshold) && mealBreaksTaken < 2 {
		violations = append(violations, newBreakViolation(BreakMeal, workDate, regularRate,
			fmt.Sprintf("Second meal break missed on %s (%s hours worked)", workDate, hoursWorked)))
	}
	return violations
}

// =============================================================================
// REST BREAKS
// =============================================================================

// RequiredRestBreaks returns how many paid 10-minute rest breaks a shift
// of the given length owes: none under 3.5 hours, then one per 4-hour
// block plus one more once a major fraction (over half) of the next block
// is worked. 4h -> 1, 8h -> 2, 10.5h -> 3.
func RequiredRestBreaks(hoursWorked decimal.Decimal) int {
	if hoursWorked.LessThan(restBreakMinimum) {
		return 0
	}
	blocks := hoursWorked.Sub(restBreakBlock.Div(two)).Div(restBreakBlock).Ceil()
	return int(blocks.IntPart())
}

// CheckRestBreaks reports missed rest breaks for one shift, one violation
// and one penalty hour per missing break.
func (c *CaliforniaLaborCode) CheckRestBreaks(workDate WorkDate, hoursWorked decimal.Decimal, restBreaksTaken int, regularRate decimal.Decimal) []BreakViolation {
	required := RequiredRestBreaks(hoursWorked)
	missing := required - restBreaksTaken
	if missing <= 0 {
		return nil
	}

	violations := make([]BreakViolation, 0, missing)
	for i := 0; i < missing; i++ {
		violations = append(violations, newBreakViolation(BreakRest, workDate, regularRate,
			fmt.Sprintf("Rest break %d of %d missed on %s (%s hours worked)",
				restBreaksTaken+i+1, required, workDate, hoursWorked)))
	}
	return violations
}

func newBreakViolation(kind BreakKind, workDate WorkDate, rate decimal.Decimal, description string) BreakViolation {
	return BreakViolation{
		Kind:          kind,
		Date:          workDate,
		PenaltyHours:  breakPenaltyHours,
		PenaltyAmount: roundCurrency(breakPenaltyHours.Mul(rate)),
		Description:   description,
	}
}

// =============================================================================
// MINIMUM WAGE
// =============================================================================

// ValidateMinimumWage checks an hourly rate against the state wage floor.
// Returns false with an explanatory message when the rate is below it.
func (c *CaliforniaLaborCode) ValidateMinimumWage(hourlyRate decimal.Decimal) (bool, string) {
	if hourlyRate.LessThan(c.params.MinimumWage) {
		return false, fmt.Sprintf("Hourly rate $%s is below the California minimum wage of $%s",
			hourlyRate.StringFixed(2), c.params.MinimumWage.StringFixed(2))
	}
	return true, ""
}

// =============================================================================
// SEVENTH CONSECUTIVE DAY
// =============================================================================

// IdentifySeventhConsecutiveDay scans work dates for runs of consecutive
// calendar days and reports every seventh day of each unbroken run (day 7,
// day 14, ...). A gap resets the count. The input need not be sorted;
// duplicates of the same calendar day collapse.
func (c *CaliforniaLaborCode) IdentifySeventhConsecutiveDay(workDates []WorkDate) []WorkDate {
	if len(workDates) == 0 {
		return nil
	}

	sorted := make([]WorkDate, len(workDates))
	copy(sorted, workDates)
	SortWorkDates(sorted)

	var seventhDays []WorkDate
	run := 0
	var prev WorkDate

	for i, d := range sorted {
		switch {
		case i == 0:
			run = 1
		case d.Equal(prev):
			continue
		case d.IsNextDayOf(prev):
			run++
		default:
			run = 1
		}
		if run%7 == 0 {
			seventhDays = append(seventhDays, d)
		}
		prev = d
	}
	return seventhDays
}
