/*
processor.go - Pay period lifecycle and payslip persistence

PURPOSE:
  The Processor is the only writer of periods and payslips. It drives
  the period state machine, runs the Calculator across a period's
  approved timesheets, and cascades period transitions down to the
  payslips they cover.

PROCESSING FLOW:
  ┌──────────────────────────────────────────────────────────────────┐
  │                                                                  │
  │  OPEN period      For each approved        Atomic commit:        │
  │  + approved  ──▶  timesheet: run     ──▶   N payslips + period   │
  │  timesheets       Calculator               update (PROCESSING)   │
  │                        │                                         │
  │                        ▼                                         │
  │                   per-employee failures are recorded and         │
  │                   skipped; one bad record never blocks the run   │
  │                                                                  │
  └──────────────────────────────────────────────────────────────────┘

CASCADES:
  ApprovePeriod   also approves its CALCULATED payslips
  MarkPeriodPaid  also pays its APPROVED payslips
  CancelPeriod    also voids its not-yet-paid payslips

  Individual payslip operations exist alongside for exception handling
  (voiding one bad slip, re-approving after correction).

DUPLICATE GUARD:
  One non-voided payslip per (employee, period). The Processor checks
  before calculating and the Store's uniqueness constraint backstops
  concurrent writers; either path surfaces ErrDuplicate.

SEE ALSO:
  - calculator.go: the pure per-employee calculation
  - store.go: the persistence contract
*/
package payroll

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/compliance"
)

// Processor drives the payroll lifecycle against the store.
type Processor struct {
	store      TxStore
	calculator *Calculator
}

func NewProcessor(store TxStore, calculator *Calculator) *Processor {
	return &Processor{store: store, calculator: calculator}
}

// =============================================================================
// EMPLOYEES AND TIMESHEETS
// =============================================================================

// RegisterEmployee validates and persists a new employee record.
func (p *Processor) RegisterEmployee(ctx context.Context, e Employee) (Employee, error) {
	if e.Name == "" {
		return Employee{}, compliance.NewInvalidInput("name", e.Name, "employee name is required")
	}
	if e.State == "" {
		return Employee{}, compliance.NewInvalidInput("state", e.State, "work state is required")
	}
	if e.HourlyRate.IsNegative() {
		return Employee{}, compliance.NewInvalidInput("hourly_rate", e.HourlyRate, "hourly rate cannot be negative")
	}
	if e.AnnualSalary.IsNegative() {
		return Employee{}, compliance.NewInvalidInput("annual_salary", e.AnnualSalary, "annual salary cannot be negative")
	}
	if e.FLSAStatus == "" {
		e.FLSAStatus = compliance.FLSANonExempt
	}
	if e.ID == "" {
		e.ID = EmployeeID(uuid.NewString())
	}
	e.Active = true
	if err := p.store.CreateEmployee(ctx, e); err != nil {
		return Employee{}, err
	}
	return e, nil
}

// SubmitTimesheet validates and persists a timesheet in DRAFT state
// against an existing employee and period. Resubmitting for the same
// (employee, period) replaces the earlier sheet and resets it to DRAFT.
func (p *Processor) SubmitTimesheet(ctx context.Context, ts Timesheet) (Timesheet, error) {
	if _, err := p.store.GetEmployee(ctx, ts.EmployeeID); err != nil {
		return Timesheet{}, err
	}
	if _, err := p.store.GetPeriod(ctx, ts.PeriodID); err != nil {
		return Timesheet{}, err
	}
	for _, day := range ts.Days {
		if day.HoursWorked.IsNegative() {
			return Timesheet{}, compliance.NewInvalidInput("hours_worked", day.HoursWorked, "hours worked cannot be negative")
		}
	}
	ts.Status = TimesheetDraft

	existing, err := p.store.ListTimesheets(ctx, TimesheetFilter{PeriodID: &ts.PeriodID, EmployeeID: &ts.EmployeeID})
	if err != nil {
		return Timesheet{}, err
	}
	if len(existing) > 0 {
		ts.ID = existing[0].ID
		if err := p.store.UpdateTimesheet(ctx, ts); err != nil {
			return Timesheet{}, err
		}
		return ts, nil
	}

	if ts.ID == "" {
		ts.ID = TimesheetID(uuid.NewString())
	}
	if err := p.store.CreateTimesheet(ctx, ts); err != nil {
		return Timesheet{}, err
	}
	return ts, nil
}

// ApproveTimesheet marks a timesheet APPROVED, making it eligible for
// period processing.
func (p *Processor) ApproveTimesheet(ctx context.Context, id TimesheetID) (Timesheet, error) {
	ts, err := p.store.GetTimesheet(ctx, id)
	if err != nil {
		return Timesheet{}, err
	}
	if ts.Status == TimesheetApproved {
		return ts, nil
	}
	ts.Status = TimesheetApproved
	if err := p.store.UpdateTimesheet(ctx, ts); err != nil {
		return Timesheet{}, err
	}
	return ts, nil
}

// =============================================================================
// PERIOD LIFECYCLE
// =============================================================================

// CreatePeriod opens a new pay period.
func (p *Processor) CreatePeriod(ctx context.Context, name string, start, end, payDate compliance.WorkDate, frequency PayFrequency) (PayPeriod, error) {
	if !start.Before(end) {
		return PayPeriod{}, compliance.NewInvalidInput("start_date", start.String(), "start date must be before end date")
	}
	if _, err := frequency.PeriodsPerYear(); err != nil {
		return PayPeriod{}, err
	}
	now := time.Now().UTC()
	period := PayPeriod{
		ID:        PeriodID(uuid.NewString()),
		Name:      name,
		StartDate: start,
		EndDate:   end,
		PayDate:   payDate,
		Frequency: frequency,
		Status:    PeriodOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.store.CreatePeriod(ctx, period); err != nil {
		return PayPeriod{}, err
	}
	return period, nil
}

// SkippedEmployee records why one employee produced no payslip during a
// period run.
type SkippedEmployee struct {
	EmployeeID EmployeeID
	Reason     string
}

// ProcessResult summarizes one period run.
type ProcessResult struct {
	Period          PayPeriod
	PayslipsCreated int
	ViolationCount  int
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	Skipped         []SkippedEmployee
}

// ProcessPeriod runs the calculator over every approved timesheet in an
// OPEN period and commits the payslips plus the PROCESSING transition
// atomically. Inactive employees and employees with bad data (missing
// compensation, an existing payslip) are recorded in Skipped; the rest
// of the run proceeds.
func (p *Processor) ProcessPeriod(ctx context.Context, periodID PeriodID) (ProcessResult, error) {
	period, err := p.store.GetPeriod(ctx, periodID)
	if err != nil {
		return ProcessResult{}, err
	}
	if err := period.Transition(PeriodProcessing); err != nil {
		return ProcessResult{}, err
	}

	approved := TimesheetApproved
	timesheets, err := p.store.ListTimesheets(ctx, TimesheetFilter{PeriodID: &periodID, Status: &approved})
	if err != nil {
		return ProcessResult{}, err
	}
	sort.Slice(timesheets, func(i, j int) bool { return timesheets[i].EmployeeID < timesheets[j].EmployeeID })

	existing, err := p.nonVoidedPayslips(ctx, periodID)
	if err != nil {
		return ProcessResult{}, err
	}

	result := ProcessResult{
		TotalGross:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
	}
	now := time.Now().UTC()
	var slips []Payslip

	for _, ts := range timesheets {
		if _, ok := existing[ts.EmployeeID]; ok {
			result.Skipped = append(result.Skipped, SkippedEmployee{
				EmployeeID: ts.EmployeeID,
				Reason:     (&compliance.DuplicateError{Resource: "payslip", Key: fmt.Sprintf("%s/%s", ts.EmployeeID, periodID)}).Error(),
			})
			continue
		}

		emp, err := p.store.GetEmployee(ctx, ts.EmployeeID)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedEmployee{EmployeeID: ts.EmployeeID, Reason: err.Error()})
			continue
		}
		if !emp.Active {
			result.Skipped = append(result.Skipped, SkippedEmployee{EmployeeID: ts.EmployeeID, Reason: "employee is inactive"})
			continue
		}

		slip, violations, err := p.calculator.Calculate(ctx, CalculationInput{
			Employee:  emp,
			Period:    period,
			Timesheet: ts,
		})
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedEmployee{EmployeeID: ts.EmployeeID, Reason: err.Error()})
			continue
		}

		slip.ID = PayslipID(uuid.NewString())
		slip.CreatedAt = now
		slip.UpdatedAt = now
		slips = append(slips, slip)

		result.PayslipsCreated++
		result.ViolationCount += violations
		result.TotalGross = result.TotalGross.Add(slip.GrossPay)
		result.TotalDeductions = result.TotalDeductions.Add(slip.TotalDeductions)
		result.TotalNet = result.TotalNet.Add(slip.NetPay)
	}

	period.TotalGross = result.TotalGross
	period.TotalDeductions = result.TotalDeductions
	period.TotalNet = result.TotalNet
	period.ViolationCount = result.ViolationCount
	period.PayslipCount = result.PayslipsCreated
	period.ComplianceChecked = true
	period.UpdatedAt = now

	err = p.store.WithTx(ctx, func(s Store) error {
		for _, slip := range slips {
			if err := s.CreatePayslip(ctx, slip); err != nil {
				return err
			}
		}
		return s.UpdatePeriod(ctx, period)
	})
	if err != nil {
		return ProcessResult{}, err
	}

	result.Period = period
	return result, nil
}

// ApprovePeriod moves a PROCESSING period to APPROVED and approves its
// CALCULATED payslips.
func (p *Processor) ApprovePeriod(ctx context.Context, periodID PeriodID) (PayPeriod, error) {
	return p.transitionPeriod(ctx, periodID, PeriodApproved, PayslipCalculated, PayslipApproved)
}

// MarkPeriodPaid moves an APPROVED period to PAID and pays its
// APPROVED payslips.
func (p *Processor) MarkPeriodPaid(ctx context.Context, periodID PeriodID) (PayPeriod, error) {
	return p.transitionPeriod(ctx, periodID, PeriodPaid, PayslipApproved, PayslipPaid)
}

// ClosePeriod archives a PAID period.
func (p *Processor) ClosePeriod(ctx context.Context, periodID PeriodID) (PayPeriod, error) {
	return p.transitionPeriod(ctx, periodID, PeriodClosed, "", "")
}

// CancelPeriod abandons a period before money moves, voiding any
// payslips that were not yet paid.
func (p *Processor) CancelPeriod(ctx context.Context, periodID PeriodID) (PayPeriod, error) {
	period, err := p.store.GetPeriod(ctx, periodID)
	if err != nil {
		return PayPeriod{}, err
	}
	if err := period.Transition(PeriodCancelled); err != nil {
		return PayPeriod{}, err
	}
	period.UpdatedAt = time.Now().UTC()

	slips, err := p.store.ListPayslips(ctx, PayslipFilter{PeriodID: &periodID})
	if err != nil {
		return PayPeriod{}, err
	}

	err = p.store.WithTx(ctx, func(s Store) error {
		for _, slip := range slips {
			if slip.Status == PayslipPaid || slip.Status == PayslipVoided {
				continue
			}
			if err := slip.Transition(PayslipVoided); err != nil {
				return err
			}
			slip.UpdatedAt = period.UpdatedAt
			if err := s.UpdatePayslip(ctx, slip); err != nil {
				return err
			}
		}
		return s.UpdatePeriod(ctx, period)
	})
	if err != nil {
		return PayPeriod{}, err
	}
	return period, nil
}

// transitionPeriod applies one period transition and, when cascade
// statuses are given, moves matching payslips along with it.
func (p *Processor) transitionPeriod(ctx context.Context, periodID PeriodID, next PeriodStatus, slipFrom, slipTo PayslipStatus) (PayPeriod, error) {
	period, err := p.store.GetPeriod(ctx, periodID)
	if err != nil {
		return PayPeriod{}, err
	}
	if err := period.Transition(next); err != nil {
		return PayPeriod{}, err
	}
	period.UpdatedAt = time.Now().UTC()

	var slips []Payslip
	if slipFrom != "" {
		slips, err = p.store.ListPayslips(ctx, PayslipFilter{PeriodID: &periodID, Status: &slipFrom})
		if err != nil {
			return PayPeriod{}, err
		}
	}

	err = p.store.WithTx(ctx, func(s Store) error {
		for _, slip := range slips {
			if err := slip.Transition(slipTo); err != nil {
				return err
			}
			slip.UpdatedAt = period.UpdatedAt
			if err := s.UpdatePayslip(ctx, slip); err != nil {
				return err
			}
		}
		return s.UpdatePeriod(ctx, period)
	})
	if err != nil {
		return PayPeriod{}, err
	}
	return period, nil
}

// =============================================================================
// INDIVIDUAL PAYSLIPS
// =============================================================================

// CalculatePayslip runs the calculator for a single employee in a
// period, outside the bulk run. The period must still be accepting
// calculations (OPEN or PROCESSING) and the employee must not already
// have a non-voided payslip for it.
func (p *Processor) CalculatePayslip(ctx context.Context, employeeID EmployeeID, periodID PeriodID, custom CustomDeductions) (Payslip, error) {
	period, err := p.store.GetPeriod(ctx, periodID)
	if err != nil {
		return Payslip{}, err
	}
	if period.Status != PeriodOpen && period.Status != PeriodProcessing {
		return Payslip{}, &compliance.InvalidStateError{
			Entity: "pay period",
			ID:     string(periodID),
			From:   string(period.Status),
			To:     string(PeriodProcessing),
		}
	}

	existing, err := p.nonVoidedPayslips(ctx, periodID)
	if err != nil {
		return Payslip{}, err
	}
	if _, ok := existing[employeeID]; ok {
		return Payslip{}, &compliance.DuplicateError{
			Resource: "payslip",
			Key:      fmt.Sprintf("%s/%s", employeeID, periodID),
		}
	}

	emp, err := p.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return Payslip{}, err
	}
	ts, err := p.timesheetFor(ctx, employeeID, periodID)
	if err != nil {
		return Payslip{}, err
	}

	slip, _, err := p.calculator.Calculate(ctx, CalculationInput{
		Employee:  emp,
		Period:    period,
		Timesheet: ts,
		Custom:    custom,
	})
	if err != nil {
		return Payslip{}, err
	}

	now := time.Now().UTC()
	slip.ID = PayslipID(uuid.NewString())
	slip.CreatedAt = now
	slip.UpdatedAt = now
	if err := p.store.CreatePayslip(ctx, slip); err != nil {
		return Payslip{}, err
	}
	return slip, nil
}

// ApprovePayslip moves one payslip from CALCULATED to APPROVED.
// Approving a voided payslip fails with InvalidStateError.
func (p *Processor) ApprovePayslip(ctx context.Context, id PayslipID) (Payslip, error) {
	return p.transitionPayslip(ctx, id, PayslipApproved)
}

// MarkPayslipPaid moves one payslip from APPROVED to PAID.
func (p *Processor) MarkPayslipPaid(ctx context.Context, id PayslipID) (Payslip, error) {
	return p.transitionPayslip(ctx, id, PayslipPaid)
}

// VoidPayslip voids a payslip that has not been paid, making room for
// a recalculation.
func (p *Processor) VoidPayslip(ctx context.Context, id PayslipID) (Payslip, error) {
	return p.transitionPayslip(ctx, id, PayslipVoided)
}

func (p *Processor) transitionPayslip(ctx context.Context, id PayslipID, next PayslipStatus) (Payslip, error) {
	slip, err := p.store.GetPayslip(ctx, id)
	if err != nil {
		return Payslip{}, err
	}
	if err := slip.Transition(next); err != nil {
		return Payslip{}, err
	}
	slip.UpdatedAt = time.Now().UTC()
	if err := p.store.UpdatePayslip(ctx, slip); err != nil {
		return Payslip{}, err
	}
	return slip, nil
}

// =============================================================================
// REPORTING
// =============================================================================

// ComplianceReport aggregates the compliance flags across a period's
// live (non-voided) payslips, together with the violations recorded
// during calculation.
type ComplianceReport struct {
	PeriodID             PeriodID
	TotalEmployees       int
	CaliforniaCompliant  int
	CaliforniaViolations int
	FLSACompliant        int
	FLSAViolations       int
	TotalPenalties       decimal.Decimal
	ViolationCount       int
	Violations           []Violation
}

// BuildComplianceReport computes the report for one period.
func (p *Processor) BuildComplianceReport(ctx context.Context, periodID PeriodID) (ComplianceReport, error) {
	if _, err := p.store.GetPeriod(ctx, periodID); err != nil {
		return ComplianceReport{}, err
	}
	slips, err := p.store.ListPayslips(ctx, PayslipFilter{PeriodID: &periodID})
	if err != nil {
		return ComplianceReport{}, err
	}
	violations, err := p.store.ListViolations(ctx, ViolationFilter{PeriodID: &periodID})
	if err != nil {
		return ComplianceReport{}, err
	}

	report := ComplianceReport{
		PeriodID:       periodID,
		TotalPenalties: decimal.Zero,
		ViolationCount: len(violations),
		Violations:     violations,
	}
	for _, slip := range slips {
		if slip.Status == PayslipVoided {
			continue
		}
		report.TotalEmployees++
		if slip.CaliforniaCompliant {
			report.CaliforniaCompliant++
		} else {
			report.CaliforniaViolations++
		}
		if slip.FLSACompliant {
			report.FLSACompliant++
		} else {
			report.FLSAViolations++
		}
		report.TotalPenalties = report.TotalPenalties.Add(slip.MealBreakPenalty).Add(slip.RestBreakPenalty)
	}
	return report, nil
}

// PeriodSummary aggregates a period's payslips for display. Money
// totals and the per-department breakdown cover live payslips only;
// the by-status counts include voided ones so nothing disappears.
type PeriodSummary struct {
	Period            PayPeriod
	EmployeeCount     int
	PayslipCount      int
	TotalGross        decimal.Decimal
	TotalDeductions   decimal.Decimal
	TotalNet          decimal.Decimal
	PayslipsByStatus  map[PayslipStatus]int
	GrossByDepartment map[string]decimal.Decimal
	ViolationCount    int
}

// Summarize computes the aggregate view of one period.
func (p *Processor) Summarize(ctx context.Context, periodID PeriodID) (PeriodSummary, error) {
	period, err := p.store.GetPeriod(ctx, periodID)
	if err != nil {
		return PeriodSummary{}, err
	}
	slips, err := p.store.ListPayslips(ctx, PayslipFilter{PeriodID: &periodID})
	if err != nil {
		return PeriodSummary{}, err
	}
	violations, err := p.store.ListViolations(ctx, ViolationFilter{PeriodID: &periodID})
	if err != nil {
		return PeriodSummary{}, err
	}
	employees, err := p.store.ListEmployees(ctx)
	if err != nil {
		return PeriodSummary{}, err
	}
	departments := make(map[EmployeeID]string, len(employees))
	for _, emp := range employees {
		departments[emp.ID] = emp.Department
	}

	summary := PeriodSummary{
		Period:            period,
		PayslipCount:      len(slips),
		TotalGross:        decimal.Zero,
		TotalDeductions:   decimal.Zero,
		TotalNet:          decimal.Zero,
		PayslipsByStatus:  make(map[PayslipStatus]int),
		GrossByDepartment: make(map[string]decimal.Decimal),
		ViolationCount:    len(violations),
	}
	for _, slip := range slips {
		summary.PayslipsByStatus[slip.Status]++
		if slip.Status == PayslipVoided {
			continue
		}
		summary.EmployeeCount++
		summary.TotalGross = summary.TotalGross.Add(slip.GrossPay)
		summary.TotalDeductions = summary.TotalDeductions.Add(slip.TotalDeductions)
		summary.TotalNet = summary.TotalNet.Add(slip.NetPay)

		dept := departments[slip.EmployeeID]
		gross, ok := summary.GrossByDepartment[dept]
		if !ok {
			gross = decimal.Zero
		}
		summary.GrossByDepartment[dept] = gross.Add(slip.GrossPay)
	}
	return summary, nil
}

// nonVoidedPayslips returns the employees that already hold a live
// payslip for the period.
func (p *Processor) nonVoidedPayslips(ctx context.Context, periodID PeriodID) (map[EmployeeID]PayslipID, error) {
	slips, err := p.store.ListPayslips(ctx, PayslipFilter{PeriodID: &periodID})
	if err != nil {
		return nil, err
	}
	existing := make(map[EmployeeID]PayslipID)
	for _, slip := range slips {
		if slip.Status != PayslipVoided {
			existing[slip.EmployeeID] = slip.ID
		}
	}
	return existing, nil
}

// timesheetFor finds the employee's timesheet in a period.
func (p *Processor) timesheetFor(ctx context.Context, employeeID EmployeeID, periodID PeriodID) (Timesheet, error) {
	sheets, err := p.store.ListTimesheets(ctx, TimesheetFilter{PeriodID: &periodID, EmployeeID: &employeeID})
	if err != nil {
		return Timesheet{}, err
	}
	if len(sheets) == 0 {
		return Timesheet{}, &compliance.NotFoundError{
			Resource: "timesheet",
			ID:       fmt.Sprintf("%s/%s", employeeID, periodID),
		}
	}
	return sheets[0], nil
}
