/*
handlers_test.go - Unit tests for API handlers

Tests run over the in-memory store and exercise:
- Status codes for every endpoint family
- Error mapping (400 invalid input, 404 not found, 409 conflicts)
- Round-tripping of the JSON DTOs
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/compliance"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	st := store.NewTxMemory()
	calc := payroll.NewCalculator(
		compliance.NewCaliforniaLaborCode(compliance.DefaultCaliforniaParams()),
		compliance.NewFLSA(compliance.DefaultFederalParams()),
		payroll.DefaultFlatRates(),
		payroll.StoreSink{Store: st},
	)
	processor := payroll.NewProcessor(st, calc)
	return NewHandler(st, processor, compliance.NewFLSA(compliance.DefaultFederalParams()))
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(newTestHandler(t))
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), "body: %s", rec.Body.String())
}

func createTestEmployee(t *testing.T, h http.Handler, id, state string, hourlyRate string) EmployeeDTO {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/api/employees", CreateEmployeeRequest{
		ID:         id,
		Name:       "Test Worker",
		State:      state,
		HourlyRate: decimal.RequireFromString(hourlyRate),
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	var dto EmployeeDTO
	decodeBody(t, rec, &dto)
	return dto
}

func createTestPeriod(t *testing.T, h http.Handler) PeriodDTO {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/api/periods", CreatePeriodRequest{
		Name:      "Test Week",
		StartDate: "2025-06-02",
		EndDate:   "2025-06-08",
		PayDate:   "2025-06-13",
		Frequency: "WEEKLY",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	var dto PeriodDTO
	decodeBody(t, rec, &dto)
	return dto
}

// fiveDays is a clean 8-hour week with every break taken.
func fiveDays() []WorkDayDTO {
	days := make([]WorkDayDTO, 5)
	for i := range days {
		days[i] = WorkDayDTO{
			Date:            fmt.Sprintf("2025-06-%02d", 2+i),
			HoursWorked:     decimal.NewFromInt(8),
			MealBreaksTaken: 1,
			RestBreaksTaken: 2,
		}
	}
	return days
}

func submitTestTimesheet(t *testing.T, h http.Handler, employeeID, periodID string, req SubmitTimesheetRequest) TimesheetDTO {
	t.Helper()
	rec := doRequest(t, h, http.MethodPut, "/api/employees/"+employeeID+"/timesheets/"+periodID, req)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	var dto TimesheetDTO
	decodeBody(t, rec, &dto)
	return dto
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

func TestCreateEmployee_Created(t *testing.T) {
	// GIVEN: A valid employee payload without an ID
	// WHEN: POSTing it
	// THEN: 201 with a generated ID and the active flag set

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/employees", CreateEmployeeRequest{
		Name:       "Maria Lopez",
		Email:      "maria@example.com",
		Department: "Kitchen",
		State:      "CA",
		HourlyRate: decimal.RequireFromString("22.00"),
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var dto EmployeeDTO
	decodeBody(t, rec, &dto)
	assert.NotEmpty(t, dto.ID)
	assert.True(t, dto.Active)
	assert.Equal(t, "CA", dto.State)
	assert.Equal(t, "NON_EXEMPT", dto.FLSAStatus)
	assert.True(t, dto.HourlyRate.Equal(decimal.RequireFromString("22")))
}

func TestCreateEmployee_MissingName_BadRequest(t *testing.T) {
	// GIVEN: A payload without a name
	// WHEN: POSTing it
	// THEN: 400 with the validation detail

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/employees", CreateEmployeeRequest{
		State:      "CA",
		HourlyRate: decimal.RequireFromString("20"),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Details, "name is required")
}

func TestCreateEmployee_MalformedJSON_BadRequest(t *testing.T) {
	// GIVEN: A body that is not JSON
	// WHEN: POSTing it
	// THEN: 400

	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/employees", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEmployee_Duplicate_Conflict(t *testing.T) {
	// GIVEN: An employee already registered under emp-1
	// WHEN: Registering emp-1 again
	// THEN: 409

	router := newTestRouter(t)
	createTestEmployee(t, router, "emp-1", "TX", "18.00")

	rec := doRequest(t, router, http.MethodPost, "/api/employees", CreateEmployeeRequest{
		ID:         "emp-1",
		Name:       "Someone Else",
		State:      "TX",
		HourlyRate: decimal.RequireFromString("19.00"),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetEmployee_NotFound(t *testing.T) {
	// GIVEN: An empty store
	// WHEN: GETting an unknown employee
	// THEN: 404

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/employees/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListEmployees_ReturnsAll(t *testing.T) {
	// GIVEN: Two registered employees
	// WHEN: Listing
	// THEN: Both come back

	router := newTestRouter(t)
	createTestEmployee(t, router, "emp-1", "CA", "20.00")
	createTestEmployee(t, router, "emp-2", "TX", "18.00")

	rec := doRequest(t, router, http.MethodGet, "/api/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dtos []EmployeeDTO
	decodeBody(t, rec, &dtos)
	assert.Len(t, dtos, 2)
}

// =============================================================================
// TIMESHEET ENDPOINT
// =============================================================================

func TestSubmitTimesheet_ApprovedOnSubmit(t *testing.T) {
	// GIVEN: An employee and an open period
	// WHEN: PUTting a timesheet with five 8-hour days
	// THEN: 200 and the sheet lands in APPROVED with the hours summed

	router := newTestRouter(t)
	emp := createTestEmployee(t, router, "emp-1", "CA", "20.00")
	period := createTestPeriod(t, router)

	dto := submitTestTimesheet(t, router, emp.ID, period.ID, SubmitTimesheetRequest{Days: fiveDays()})

	assert.Equal(t, "APPROVED", dto.Status)
	assert.Len(t, dto.Days, 5)
	assert.True(t, dto.TotalHours.Equal(decimal.NewFromInt(40)), "got %s", dto.TotalHours)
}

func TestSubmitTimesheet_UnknownEmployee_NotFound(t *testing.T) {
	// GIVEN: A period but no employee
	// WHEN: Submitting a timesheet for an unknown employee
	// THEN: 404

	router := newTestRouter(t)
	period := createTestPeriod(t, router)

	rec := doRequest(t, router, http.MethodPut, "/api/employees/nobody/timesheets/"+period.ID,
		SubmitTimesheetRequest{RegularHours: decimal.NewFromInt(40)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitTimesheet_BadDate_BadRequest(t *testing.T) {
	// GIVEN: A day with a malformed date
	// WHEN: Submitting
	// THEN: 400

	router := newTestRouter(t)
	emp := createTestEmployee(t, router, "emp-1", "CA", "20.00")
	period := createTestPeriod(t, router)

	rec := doRequest(t, router, http.MethodPut, "/api/employees/"+emp.ID+"/timesheets/"+period.ID,
		SubmitTimesheetRequest{Days: []WorkDayDTO{{
			Date:        "June 2nd",
			HoursWorked: decimal.NewFromInt(8),
		}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PERIOD ENDPOINTS
// =============================================================================

func TestCreatePeriod_Created(t *testing.T) {
	// GIVEN: A valid weekly period
	// WHEN: POSTing it
	// THEN: 201 in OPEN

	router := newTestRouter(t)

	period := createTestPeriod(t, router)
	assert.NotEmpty(t, period.ID)
	assert.Equal(t, "OPEN", period.Status)
	assert.Equal(t, "Test Week", period.Name)
	assert.Equal(t, "2025-06-02", period.StartDate)
}

func TestCreatePeriod_EndBeforeStart_BadRequest(t *testing.T) {
	// GIVEN: A period that ends before it starts
	// WHEN: POSTing it
	// THEN: 400

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/periods", CreatePeriodRequest{
		StartDate: "2025-06-08",
		EndDate:   "2025-06-02",
		PayDate:   "2025-06-13",
		Frequency: "WEEKLY",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePeriod_UnknownFrequency_BadRequest(t *testing.T) {
	// GIVEN: A period with a frequency outside the known set
	// WHEN: POSTing it
	// THEN: 400

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/periods", CreatePeriodRequest{
		StartDate: "2025-06-02",
		EndDate:   "2025-06-08",
		PayDate:   "2025-06-13",
		Frequency: "FORTNIGHTLY",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPeriods_FilterByStatus(t *testing.T) {
	// GIVEN: One open period
	// WHEN: Listing with status=OPEN and status=PAID
	// THEN: The filter applies

	router := newTestRouter(t)
	createTestPeriod(t, router)

	rec := doRequest(t, router, http.MethodGet, "/api/periods?status=OPEN", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var open []PeriodDTO
	decodeBody(t, rec, &open)
	assert.Len(t, open, 1)

	rec = doRequest(t, router, http.MethodGet, "/api/periods?status=PAID", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var paid []PeriodDTO
	decodeBody(t, rec, &paid)
	assert.Empty(t, paid)
}

// =============================================================================
// PERIOD LIFECYCLE
// =============================================================================

func TestPeriodLifecycle_ProcessApprovePayClose(t *testing.T) {
	// GIVEN: An employee with an approved timesheet in an open period
	// WHEN: Walking process, approve, pay, close through the API
	// THEN: Each step returns 200 and the statuses advance in order

	router := newTestRouter(t)
	emp := createTestEmployee(t, router, "emp-1", "CA", "20.00")
	period := createTestPeriod(t, router)
	submitTestTimesheet(t, router, emp.ID, period.ID, SubmitTimesheetRequest{Days: fiveDays()})

	rec := doRequest(t, router, http.MethodPost, "/api/periods/"+period.ID+"/process", nil)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	var result ProcessResultDTO
	decodeBody(t, rec, &result)
	assert.Equal(t, "PROCESSING", result.Period.Status)
	assert.Equal(t, 1, result.PayslipsCreated)
	assert.True(t, result.TotalGross.Equal(decimal.NewFromInt(800)), "got %s", result.TotalGross)

	for _, step := range []struct {
		action string
		status string
	}{
		{"approve", "APPROVED"},
		{"pay", "PAID"},
		{"close", "CLOSED"},
	} {
		rec = doRequest(t, router, http.MethodPost, "/api/periods/"+period.ID+"/"+step.action, nil)
		require.Equal(t, http.StatusOK, rec.Code, "step %s body: %s", step.action, rec.Body.String())
		var dto PeriodDTO
		decodeBody(t, rec, &dto)
		assert.Equal(t, step.status, dto.Status, "after %s", step.action)
	}

	// Payslips rode along with the period transitions.
	rec = doRequest(t, router, http.MethodGet, "/api/periods/"+period.ID+"/payslips", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var slips []PayslipDTO
	decodeBody(t, rec, &slips)
	require.Len(t, slips, 1)
	assert.Equal(t, "PAID", slips[0].Status)
}

func TestProcessPeriod_AlreadyProcessed_Conflict(t *testing.T) {
	// GIVEN: A period already processed
	// WHEN: Processing it again
	// THEN: 409

	router := newTestRouter(t)
	emp := createTestEmployee(t, router, "emp-1", "TX", "18.00")
	period := createTestPeriod(t, router)
	submitTestTimesheet(t, router, emp.ID, period.ID,
		SubmitTimesheetRequest{RegularHours: decimal.NewFromInt(40)})

	rec := doRequest(t, router, http.MethodPost, "/api/periods/"+period.ID+"/process", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/periods/"+period.ID+"/process", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancelPeriod_AfterPay_Conflict(t *testing.T) {
	// GIVEN: A paid period
	// WHEN: Cancelling it
	// THEN: 409, money already moved

	router := newTestRouter(t)
	emp := createTestEmployee(t, router, "emp-1", "TX", "18.00")
	period := createTestPeriod(t, router)
	submitTestTimesheet(t, router, emp.ID, period.ID,
		SubmitTimesheetRequest{RegularHours: decimal.NewFromInt(40)})

	for _, action := range []string{"process", "approve", "pay"} {
		rec := doRequest(t, router, http.MethodPost, "/api/periods/"+period.ID+"/"+action, nil)
		require.Equal(t, http.StatusOK, rec.Code, "step %s", action)
	}

	rec := doRequest(t, router, http.MethodPost, "/api/periods/"+period.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetPeriodSummary_AggregatesTotals(t *testing.T) {
	// GIVEN: A processed period with one payslip
	// WHEN: GETting the summary
	// THEN: Counts and totals line up

	router := newTestRouter(t)
	emp := createTestEmployee(t, router, "emp-1", "TX", "18.00")
	period := createTestPeriod(t, router)
	submitTestTimesheet(t, router, emp.ID, period.ID,
		SubmitTimesheetRequest{RegularHours: decimal.NewFromInt(40)})
	rec := doRequest(t, router, http.MethodPost, "/api/periods/"+period.ID+"/process", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/periods/"+period.ID+"/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary PeriodSummaryDTO
	decodeBody(t, rec, &summary)
	assert.Equal(t, 1, summary.EmployeeCount)
	assert.Equal(t, 1, summary.PayslipCount)
	assert.Equal(t, 1, summary.PayslipsByStatus["CALCULATED"])
	assert.True(t, summary.TotalGross.Equal(decimal.NewFromInt(720)), "got %s", summary.TotalGross)
}

// =============================================================================
// PAYSLIP ENDPOINTS
// =============================================================================

func TestCalculatePayslip_Created(t *testing.T) {
	// GIVEN: An employee with an approved timesheet in an open period
	// WHEN: POSTing a single calculation
	// THEN: 201 with the payslip figures

	router := newTestRouter(t)
	emp := createTestEmployee(t, router, "emp-1", "TX", "18.00")
	period := createTestPeriod(t, router)
	submitTestTimesheet(t, router, emp.ID, period.ID,
		SubmitTimesheetRequest{RegularHours: decimal.NewFromInt(40)})

	rec := doRequest(t, router, http.MethodPost, "/api/payslips/calculate", CalculatePayslipRequest{
		EmployeeID: emp.ID,
		PeriodID:   period.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var slip PayslipDTO
	decodeBody(t, rec, &slip)
	assert.Equal(t, "CALCULATED", slip.Status)
	assert.True(t, slip.GrossPay.Equal(decimal.NewFromInt(720)), "got %s", slip.GrossPay)
}

func TestCalculatePayslip_MissingCompensation_BadRequest(t *testing.T) {
	// GIVEN: An employee with neither an hourly rate nor a salary
	// WHEN: Calculating
	// THEN: 400

	router := newTestRouter(t)
	emp := createTestEmployee(t, router, "emp-1", "TX", "0")
	period := createTestPeriod(t, router)
	submitTestTimesheet(t, router, emp.ID, period.ID,
		SubmitTimesheetRequest{RegularHours: decimal.NewFromInt(40)})

	rec := doRequest(t, router, http.MethodPost, "/api/payslips/calculate", CalculatePayslipRequest{
		EmployeeID: emp.ID,
		PeriodID:   period.ID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculatePayslip_NoTimesheet_NotFound(t *testing.T) {
	// GIVEN: An employee without a timesheet for the period
	// WHEN: Calculating
	// THEN: 404

	router := newTestRouter(t)
	emp := createTestEmployee(t, router, "emp-1", "TX", "18.00")
	period := createTestPeriod(t, router)

	rec := doRequest(t, router, http.MethodPost, "/api/payslips/calculate", CalculatePayslipRequest{
		EmployeeID: emp.ID,
		PeriodID:   period.ID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVoidPayslip_MakesRoomForRecalculation(t *testing.T) {
	// GIVEN: A calculated payslip
	// WHEN: Voiding it and calculating again
	// THEN: The void returns 200 and the second calculation succeeds

	router := newTestRouter(t)
	emp := createTestEmployee(t, router, "emp-1", "TX", "18.00")
	period := createTestPeriod(t, router)
	submitTestTimesheet(t, router, emp.ID, period.ID,
		SubmitTimesheetRequest{RegularHours: decimal.NewFromInt(40)})

	rec := doRequest(t, router, http.MethodPost, "/api/payslips/calculate", CalculatePayslipRequest{
		EmployeeID: emp.ID,
		PeriodID:   period.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var first PayslipDTO
	decodeBody(t, rec, &first)

	rec = doRequest(t, router, http.MethodPost, "/api/payslips/"+first.ID+"/void", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var voided PayslipDTO
	decodeBody(t, rec, &voided)
	assert.Equal(t, "VOIDED", voided.Status)

	rec = doRequest(t, router, http.MethodPost, "/api/payslips/calculate", CalculatePayslipRequest{
		EmployeeID: emp.ID,
		PeriodID:   period.ID,
	})
	assert.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
}

func TestApprovePayslip_Voided_Conflict(t *testing.T) {
	// GIVEN: A voided payslip
	// WHEN: Approving it
	// THEN: 409

	router := newTestRouter(t)
	emp := createTestEmployee(t, router, "emp-1", "TX", "18.00")
	period := createTestPeriod(t, router)
	submitTestTimesheet(t, router, emp.ID, period.ID,
		SubmitTimesheetRequest{RegularHours: decimal.NewFromInt(40)})

	rec := doRequest(t, router, http.MethodPost, "/api/payslips/calculate", CalculatePayslipRequest{
		EmployeeID: emp.ID,
		PeriodID:   period.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var slip PayslipDTO
	decodeBody(t, rec, &slip)

	rec = doRequest(t, router, http.MethodPost, "/api/payslips/"+slip.ID+"/void", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/payslips/"+slip.ID+"/approve", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetPayslipPDF_ReturnsDocument(t *testing.T) {
	// GIVEN: A calculated payslip
	// WHEN: GETting the PDF export
	// THEN: 200 with a PDF body

	router := newTestRouter(t)
	emp := createTestEmployee(t, router, "emp-1", "TX", "18.00")
	period := createTestPeriod(t, router)
	submitTestTimesheet(t, router, emp.ID, period.ID,
		SubmitTimesheetRequest{RegularHours: decimal.NewFromInt(40)})

	rec := doRequest(t, router, http.MethodPost, "/api/payslips/calculate", CalculatePayslipRequest{
		EmployeeID: emp.ID,
		PeriodID:   period.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var slip PayslipDTO
	decodeBody(t, rec, &slip)

	rec = doRequest(t, router, http.MethodGet, "/api/payslips/"+slip.ID+"/pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")), "body does not look like a PDF")
}

func TestGetPayslipPDF_NotFound(t *testing.T) {
	// GIVEN: No payslips
	// WHEN: GETting a PDF for an unknown ID
	// THEN: 404

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/payslips/nothing/pdf", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// VIOLATIONS AND COMPLIANCE CHECKS
// =============================================================================

func TestListViolations_FilterByEmployee(t *testing.T) {
	// GIVEN: One employee with missed breaks and one clean employee
	// WHEN: Listing violations filtered by the offender
	// THEN: Only the offender's findings come back

	router := newTestRouter(t)
	offender := createTestEmployee(t, router, "emp-late", "CA", "20.00")
	clean := createTestEmployee(t, router, "emp-clean", "CA", "20.00")
	period := createTestPeriod(t, router)

	// Nine hours with no breaks at all.
	submitTestTimesheet(t, router, offender.ID, period.ID, SubmitTimesheetRequest{
		Days: []WorkDayDTO{{
			Date:        "2025-06-02",
			HoursWorked: decimal.NewFromInt(9),
		}},
	})
	submitTestTimesheet(t, router, clean.ID, period.ID, SubmitTimesheetRequest{
		Days: []WorkDayDTO{{
			Date:            "2025-06-02",
			HoursWorked:     decimal.NewFromInt(8),
			MealBreaksTaken: 1,
			RestBreaksTaken: 2,
		}},
	})

	rec := doRequest(t, router, http.MethodPost, "/api/periods/"+period.ID+"/process", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/violations?employee_id="+offender.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var violations []ViolationDTO
	decodeBody(t, rec, &violations)
	require.NotEmpty(t, violations)
	for _, v := range violations {
		assert.Equal(t, offender.ID, v.EmployeeID)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/violations?employee_id="+clean.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &violations)
	assert.Empty(t, violations)
}

func TestGetComplianceReport_CountsViolations(t *testing.T) {
	// GIVEN: A processed period with one non-compliant payslip
	// WHEN: GETting the compliance report
	// THEN: The counts and the violation list line up

	router := newTestRouter(t)
	emp := createTestEmployee(t, router, "emp-1", "CA", "20.00")
	period := createTestPeriod(t, router)
	submitTestTimesheet(t, router, emp.ID, period.ID, SubmitTimesheetRequest{
		Days: []WorkDayDTO{{
			Date:        "2025-06-02",
			HoursWorked: decimal.NewFromInt(9),
		}},
	})
	rec := doRequest(t, router, http.MethodPost, "/api/periods/"+period.ID+"/process", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/periods/"+period.ID+"/compliance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report ComplianceReportDTO
	decodeBody(t, rec, &report)
	assert.Equal(t, 1, report.TotalEmployees)
	assert.Equal(t, 1, report.CaliforniaViolations)
	assert.Equal(t, report.ViolationCount, len(report.Violations))
	assert.NotEmpty(t, report.Violations)
}

func TestCheckExemption_BelowThreshold(t *testing.T) {
	// GIVEN: An executive claim paying under the weekly threshold
	// WHEN: POSTing the check
	// THEN: Not exempt, with the threshold named

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/compliance/exemption", ExemptionCheckRequest{
		JobTitle:      "Shift Supervisor",
		WeeklySalary:  decimal.RequireFromString("600"),
		AnnualSalary:  decimal.RequireFromString("31200"),
		JobDuties:     []string{"manages the evening shift"},
		ExemptionType: "EXECUTIVE",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ExemptionCheckResponse
	decodeBody(t, rec, &resp)
	assert.False(t, resp.Exempt)
	assert.Contains(t, resp.Reason, "below the FLSA exemption salary threshold")
}

func TestCheckChildLabor_UnderMinimumAge(t *testing.T) {
	// GIVEN: A 13-year-old worker
	// WHEN: POSTing the check
	// THEN: Not compliant with a CRITICAL finding

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/compliance/child-labor", ChildLaborCheckRequest{
		EmployeeAge: 13,
		HoursWorked: decimal.NewFromInt(4),
		WorkDate:    "2025-06-02",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChildLaborCheckResponse
	decodeBody(t, rec, &resp)
	assert.False(t, resp.Compliant)
	require.NotEmpty(t, resp.Violations)
	assert.Equal(t, "CRITICAL", resp.Violations[0].Severity)
}

func TestCheckChildLabor_BadDate_BadRequest(t *testing.T) {
	// GIVEN: A malformed work date
	// WHEN: POSTing the check
	// THEN: 400

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/compliance/child-labor", ChildLaborCheckRequest{
		EmployeeAge: 16,
		HoursWorked: decimal.NewFromInt(4),
		WorkDate:    "last Monday",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckRecordKeeping_NamesMissingFields(t *testing.T) {
	// GIVEN: Records missing the SSN and birth date
	// WHEN: POSTing the check
	// THEN: Not compliant, with both fields listed

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/compliance/record-keeping", RecordKeepingRequest{
		EmployeeID:            "emp-1",
		HasName:               true,
		HasAddress:            true,
		HasOccupation:         true,
		HasHourlyRate:         true,
		HasHoursWorkedRecords: true,
		HasWagesPaidRecords:   true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecordKeepingResponse
	decodeBody(t, rec, &resp)
	assert.False(t, resp.Compliant)
	assert.Contains(t, resp.MissingFields, "social security number")
	assert.Contains(t, resp.MissingFields, "date of birth")
}

func TestCheckRecordKeeping_AllPresent(t *testing.T) {
	// GIVEN: Every required record on file
	// WHEN: POSTing the check
	// THEN: Compliant with an empty missing list

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/compliance/record-keeping", RecordKeepingRequest{
		EmployeeID:            "emp-1",
		HasName:               true,
		HasAddress:            true,
		HasSSN:                true,
		HasBirthDate:          true,
		HasOccupation:         true,
		HasHourlyRate:         true,
		HasHoursWorkedRecords: true,
		HasWagesPaidRecords:   true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecordKeepingResponse
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Compliant)
	assert.Empty(t, resp.MissingFields)
}
