/*
sqlite_test.go - Unit tests for the SQLite store

Runs against an in-memory database. The interesting parts are the ones
a map-backed store gets for free: exact decimal and date round-trips
through TEXT columns, the partial unique index behind the live-payslip
guard, and transaction rollback.
*/
package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/compliance"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func date(day int) compliance.WorkDate {
	return compliance.NewWorkDate(2025, time.June, day)
}

func testEmployee(id string) payroll.Employee {
	return payroll.Employee{
		ID:         payroll.EmployeeID(id),
		Name:       "June Okafor",
		Email:      "june@example.com",
		Department: "Kitchen",
		JobTitle:   "Line Cook",
		Active:     true,
		State:      "CA",
		FLSAStatus: compliance.FLSANonExempt,
		JobDuties:  []string{"prepares meals", "maintains station"},
		BirthDate:  compliance.NewWorkDate(2008, time.March, 14),
		HourlyRate: decimal.RequireFromString("22.50"),
	}
}

func testPeriod(id string, status payroll.PeriodStatus) payroll.PayPeriod {
	now := time.Now().UTC().Truncate(time.Second)
	return payroll.PayPeriod{
		ID:        payroll.PeriodID(id),
		Name:      "Test Week",
		StartDate: date(2),
		EndDate:   date(8),
		PayDate:   date(13),
		Frequency: payroll.Weekly,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testSlip(id, employeeID, periodID string, status payroll.PayslipStatus) payroll.Payslip {
	now := time.Now().UTC().Truncate(time.Second)
	return payroll.Payslip{
		ID:              payroll.PayslipID(id),
		EmployeeID:      payroll.EmployeeID(employeeID),
		PeriodID:        payroll.PeriodID(periodID),
		Status:          status,
		RegularHours:    decimal.NewFromInt(40),
		RegularPay:      decimal.RequireFromString("900.00"),
		GrossPay:        decimal.RequireFromString("900.00"),
		TotalDeductions: decimal.RequireFromString("283.95"),
		NetPay:          decimal.RequireFromString("616.05"),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployee_RoundTrip(t *testing.T) {
	// GIVEN: An employee with every attribute populated
	// WHEN: Creating and reading it back
	// THEN: Duties, birth date, and the exact hourly rate survive

	st := newTestStore(t)
	ctx := context.Background()

	emp := testEmployee("emp-1")
	require.NoError(t, st.CreateEmployee(ctx, emp))

	got, err := st.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, emp.Name, got.Name)
	assert.Equal(t, emp.Email, got.Email)
	assert.Equal(t, emp.Department, got.Department)
	assert.True(t, got.Active)
	assert.Equal(t, compliance.FLSANonExempt, got.FLSAStatus)
	assert.Equal(t, emp.JobDuties, got.JobDuties)
	assert.True(t, got.BirthDate.Equal(emp.BirthDate), "birth date = %s", got.BirthDate)
	assert.True(t, got.HourlyRate.Equal(emp.HourlyRate), "rate = %s", got.HourlyRate)
	assert.True(t, got.AnnualSalary.IsZero())
}

func TestGetEmployee_Missing_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetEmployee(context.Background(), "ghost")
	assert.True(t, compliance.IsNotFound(err), "got %v", err)
}

func TestCreateEmployee_SameID_Duplicate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateEmployee(ctx, testEmployee("emp-1")))
	err := st.CreateEmployee(ctx, testEmployee("emp-1"))
	assert.True(t, compliance.IsDuplicate(err), "got %v", err)
}

func TestListEmployees_SortedByID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateEmployee(ctx, testEmployee("emp-b")))
	require.NoError(t, st.CreateEmployee(ctx, testEmployee("emp-a")))

	employees, err := st.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, payroll.EmployeeID("emp-a"), employees[0].ID)
	assert.Equal(t, payroll.EmployeeID("emp-b"), employees[1].ID)
}

// =============================================================================
// PAY PERIODS
// =============================================================================

func TestPeriod_RoundTrip(t *testing.T) {
	// GIVEN: A period with dates, totals, and timestamps
	// WHEN: Creating, updating, and reading it back
	// THEN: Every field survives the TEXT encoding

	st := newTestStore(t)
	ctx := context.Background()

	period := testPeriod("p-1", payroll.PeriodOpen)
	require.NoError(t, st.CreatePeriod(ctx, period))

	period.Status = payroll.PeriodProcessing
	period.TotalGross = decimal.RequireFromString("2046.00")
	period.PayslipCount = 2
	period.ComplianceChecked = true
	require.NoError(t, st.UpdatePeriod(ctx, period))

	got, err := st.GetPeriod(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Test Week", got.Name)
	assert.True(t, got.StartDate.Equal(date(2)))
	assert.True(t, got.EndDate.Equal(date(8)))
	assert.True(t, got.PayDate.Equal(date(13)))
	assert.Equal(t, payroll.Weekly, got.Frequency)
	assert.Equal(t, payroll.PeriodProcessing, got.Status)
	assert.True(t, got.TotalGross.Equal(period.TotalGross), "gross = %s", got.TotalGross)
	assert.Equal(t, 2, got.PayslipCount)
	assert.True(t, got.ComplianceChecked)
	assert.True(t, got.CreatedAt.Equal(period.CreatedAt), "created = %s", got.CreatedAt)
}

func TestListPeriods_FilterByStatus(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreatePeriod(ctx, testPeriod("p-1", payroll.PeriodOpen)))
	require.NoError(t, st.CreatePeriod(ctx, testPeriod("p-2", payroll.PeriodPaid)))

	paid := payroll.PeriodPaid
	periods, err := st.ListPeriods(ctx, payroll.PeriodFilter{Status: &paid})
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, payroll.PeriodID("p-2"), periods[0].ID)
}

func TestUpdatePeriod_Missing_NotFound(t *testing.T) {
	st := newTestStore(t)

	err := st.UpdatePeriod(context.Background(), testPeriod("ghost", payroll.PeriodOpen))
	assert.True(t, compliance.IsNotFound(err), "got %v", err)
}

// =============================================================================
// TIMESHEETS
// =============================================================================

func TestTimesheet_DaysRoundTrip(t *testing.T) {
	// GIVEN: A timesheet with fractional hours and school flags
	// WHEN: Creating and reading it back
	// THEN: The JSON day encoding preserves everything exactly

	st := newTestStore(t)
	ctx := context.Background()

	ts := payroll.Timesheet{
		ID:         "ts-1",
		EmployeeID: "emp-1",
		PeriodID:   "p-1",
		Status:     payroll.TimesheetDraft,
		Days: []compliance.WorkDay{
			{Date: date(2), HoursWorked: decimal.RequireFromString("8.25"), MealBreaksTaken: 1, RestBreaksTaken: 2},
			{Date: date(3), HoursWorked: decimal.NewFromInt(3), SchoolDay: true, SchoolWeek: true},
		},
	}
	require.NoError(t, st.CreateTimesheet(ctx, ts))

	got, err := st.GetTimesheet(ctx, "ts-1")
	require.NoError(t, err)
	require.Len(t, got.Days, 2)
	assert.True(t, got.Days[0].Date.Equal(date(2)))
	assert.True(t, got.Days[0].HoursWorked.Equal(decimal.RequireFromString("8.25")), "hours = %s", got.Days[0].HoursWorked)
	assert.Equal(t, 1, got.Days[0].MealBreaksTaken)
	assert.Equal(t, 2, got.Days[0].RestBreaksTaken)
	assert.True(t, got.Days[1].SchoolDay)
	assert.True(t, got.Days[1].SchoolWeek)
}

func TestTimesheet_AggregateOnlyRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ts := payroll.Timesheet{
		ID:            "ts-agg",
		EmployeeID:    "emp-1",
		PeriodID:      "p-1",
		Status:        payroll.TimesheetApproved,
		RegularHours:  decimal.NewFromInt(40),
		OvertimeHours: decimal.NewFromInt(6),
		Bonus:         decimal.RequireFromString("150.00"),
	}
	require.NoError(t, st.CreateTimesheet(ctx, ts))

	got, err := st.GetTimesheet(ctx, "ts-agg")
	require.NoError(t, err)
	assert.Nil(t, got.Days)
	assert.True(t, got.RegularHours.Equal(decimal.NewFromInt(40)))
	assert.True(t, got.OvertimeHours.Equal(decimal.NewFromInt(6)))
	assert.True(t, got.Bonus.Equal(decimal.RequireFromString("150.00")), "bonus = %s", got.Bonus)
}

func TestCreateTimesheet_SamePairTwice_Duplicate(t *testing.T) {
	// GIVEN: An employee who already has a sheet for the period
	// WHEN: Creating a second sheet under a new ID
	// THEN: The (employee, period) uniqueness rejects it

	st := newTestStore(t)
	ctx := context.Background()

	first := payroll.Timesheet{ID: "ts-1", EmployeeID: "emp-1", PeriodID: "p-1", Status: payroll.TimesheetDraft}
	require.NoError(t, st.CreateTimesheet(ctx, first))

	second := payroll.Timesheet{ID: "ts-2", EmployeeID: "emp-1", PeriodID: "p-1", Status: payroll.TimesheetDraft}
	err := st.CreateTimesheet(ctx, second)
	assert.True(t, compliance.IsDuplicate(err), "got %v", err)

	otherPeriod := payroll.Timesheet{ID: "ts-3", EmployeeID: "emp-1", PeriodID: "p-2", Status: payroll.TimesheetDraft}
	assert.NoError(t, st.CreateTimesheet(ctx, otherPeriod))
}

// =============================================================================
// PAYSLIPS
// =============================================================================

func TestPayslip_VoidMakesRoomForRecalculation(t *testing.T) {
	// GIVEN: A live payslip for (employee, period)
	// WHEN: Creating a second, then voiding the first and retrying
	// THEN: The partial unique index rejects the duplicate but not the
	//       recalculation

	st := newTestStore(t)
	ctx := context.Background()

	first := testSlip("slip-1", "emp-1", "p-1", payroll.PayslipCalculated)
	require.NoError(t, st.CreatePayslip(ctx, first))

	err := st.CreatePayslip(ctx, testSlip("slip-2", "emp-1", "p-1", payroll.PayslipCalculated))
	assert.True(t, compliance.IsDuplicate(err), "got %v", err)

	first.Status = payroll.PayslipVoided
	require.NoError(t, st.UpdatePayslip(ctx, first))

	assert.NoError(t, st.CreatePayslip(ctx, testSlip("slip-2", "emp-1", "p-1", payroll.PayslipCalculated)))
}

func TestPayslip_MoneyRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	slip := testSlip("slip-1", "emp-1", "p-1", payroll.PayslipCalculated)
	slip.MealBreakPenalty = decimal.RequireFromString("66.00")
	slip.Deductions.FederalTax = decimal.RequireFromString("108.00")
	slip.CaliforniaCompliant = false
	slip.ComplianceNotes = "Second meal break missed on 2025-06-04"
	require.NoError(t, st.CreatePayslip(ctx, slip))

	got, err := st.GetPayslip(ctx, "slip-1")
	require.NoError(t, err)
	assert.True(t, got.GrossPay.Equal(slip.GrossPay), "gross = %s", got.GrossPay)
	assert.True(t, got.NetPay.Equal(slip.NetPay), "net = %s", got.NetPay)
	assert.True(t, got.MealBreakPenalty.Equal(slip.MealBreakPenalty), "penalty = %s", got.MealBreakPenalty)
	assert.True(t, got.Deductions.FederalTax.Equal(slip.Deductions.FederalTax), "federal = %s", got.Deductions.FederalTax)
	assert.False(t, got.CaliforniaCompliant)
	assert.Equal(t, slip.ComplianceNotes, got.ComplianceNotes)
}

func TestListPayslips_Filters(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreatePayslip(ctx, testSlip("slip-1", "emp-a", "p-1", payroll.PayslipCalculated)))
	require.NoError(t, st.CreatePayslip(ctx, testSlip("slip-2", "emp-b", "p-1", payroll.PayslipApproved)))
	require.NoError(t, st.CreatePayslip(ctx, testSlip("slip-3", "emp-a", "p-2", payroll.PayslipCalculated)))

	periodID := payroll.PeriodID("p-1")
	slips, err := st.ListPayslips(ctx, payroll.PayslipFilter{PeriodID: &periodID})
	require.NoError(t, err)
	assert.Len(t, slips, 2)

	employeeID := payroll.EmployeeID("emp-a")
	slips, err = st.ListPayslips(ctx, payroll.PayslipFilter{EmployeeID: &employeeID})
	require.NoError(t, err)
	assert.Len(t, slips, 2)

	approved := payroll.PayslipApproved
	slips, err = st.ListPayslips(ctx, payroll.PayslipFilter{PeriodID: &periodID, Status: &approved})
	require.NoError(t, err)
	require.Len(t, slips, 1)
	assert.Equal(t, payroll.PayslipID("slip-2"), slips[0].ID)
}

// =============================================================================
// VIOLATIONS
// =============================================================================

func TestViolations_AppendAndQuery(t *testing.T) {
	// GIVEN: Violations for two employees under two regulations
	// WHEN: Querying by employee and by regulation
	// THEN: Filters compose and the monetary impact round-trips

	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	record := func(id, emp, regulation string, impact string, day int) payroll.Violation {
		return payroll.Violation{
			ID:              payroll.ViolationID(id),
			Type:            payroll.ViolationLaborLaw,
			Regulation:      regulation,
			Severity:        compliance.SeverityHigh,
			Description:     "break missed",
			EntityType:      "timesheet_entry",
			EntityID:        "ts-1",
			EmployeeID:      payroll.EmployeeID(emp),
			PeriodID:        "p-1",
			FinancialImpact: decimal.RequireFromString(impact),
			OccurredOn:      date(day),
			CreatedAt:       now,
		}
	}

	require.NoError(t, st.AppendViolation(ctx, record("v-1", "emp-a", compliance.RegulationMealBreak, "22.00", 4)))
	require.NoError(t, st.AppendViolation(ctx, record("v-2", "emp-a", compliance.RegulationRestBreak, "22.00", 5)))
	require.NoError(t, st.AppendViolation(ctx, record("v-3", "emp-b", compliance.RegulationMealBreak, "19.50", 5)))

	employeeID := payroll.EmployeeID("emp-a")
	found, err := st.ListViolations(ctx, payroll.ViolationFilter{EmployeeID: &employeeID})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	meal := compliance.RegulationMealBreak
	found, err = st.ListViolations(ctx, payroll.ViolationFilter{Regulation: &meal})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = st.ListViolations(ctx, payroll.ViolationFilter{EmployeeID: &employeeID, Regulation: &meal})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, payroll.ViolationID("v-1"), found[0].ID)
	assert.True(t, found[0].FinancialImpact.Equal(decimal.RequireFromString("22.00")), "impact = %s", found[0].FinancialImpact)
	assert.True(t, found[0].OccurredOn.Equal(date(4)), "occurred = %s", found[0].OccurredOn)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTx_CommitsAtomically(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.WithTx(ctx, func(s payroll.Store) error {
		if err := s.CreatePeriod(ctx, testPeriod("p-1", payroll.PeriodProcessing)); err != nil {
			return err
		}
		return s.CreatePayslip(ctx, testSlip("slip-1", "emp-1", "p-1", payroll.PayslipCalculated))
	})
	require.NoError(t, err)

	_, err = st.GetPeriod(ctx, "p-1")
	assert.NoError(t, err)
	_, err = st.GetPayslip(ctx, "slip-1")
	assert.NoError(t, err)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A transaction that writes a period then fails
	// WHEN: WithTx returns the error
	// THEN: The period write is rolled back

	st := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(s payroll.Store) error {
		if err := s.CreatePeriod(ctx, testPeriod("p-1", payroll.PeriodOpen)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.GetPeriod(ctx, "p-1")
	assert.True(t, compliance.IsNotFound(err), "got %v", err)
}

// =============================================================================
// RESET
// =============================================================================

func TestReset_ClearsAllTables(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateEmployee(ctx, testEmployee("emp-1")))
	require.NoError(t, st.CreatePeriod(ctx, testPeriod("p-1", payroll.PeriodOpen)))
	require.NoError(t, st.CreatePayslip(ctx, testSlip("slip-1", "emp-1", "p-1", payroll.PayslipCalculated)))

	require.NoError(t, st.Reset(ctx))

	employees, err := st.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, employees)
	_, err = st.GetPeriod(ctx, "p-1")
	assert.True(t, compliance.IsNotFound(err))
	slips, err := st.ListPayslips(ctx, payroll.PayslipFilter{})
	require.NoError(t, err)
	assert.Empty(t, slips)
}
