/*
handlers.go - HTTP API handlers for the payroll compliance engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                List all employees
    POST   /api/employees                Create employee
    GET    /api/employees/{id}           Get employee details
    PUT    /api/employees/{id}/timesheets/{periodID}  Submit timesheet

  Periods:
    POST   /api/periods                  Open a pay period
    GET    /api/periods                  List periods
    GET    /api/periods/{id}             Get period details
    POST   /api/periods/{id}/process     Run payroll over approved timesheets
    POST   /api/periods/{id}/approve     Approve period + payslips
    POST   /api/periods/{id}/pay         Mark period + payslips paid
    POST   /api/periods/{id}/close       Archive a paid period
    POST   /api/periods/{id}/cancel      Cancel before payment
    GET    /api/periods/{id}/payslips    List the period's payslips
    GET    /api/periods/{id}/summary     Aggregate totals
    GET    /api/periods/{id}/compliance  Compliance report

  Payslips:
    POST   /api/payslips/calculate       Single-employee calculation
    GET    /api/payslips/{id}            Get payslip
    POST   /api/payslips/{id}/approve    Approve
    POST   /api/payslips/{id}/void       Void (pre-PAID only)
    GET    /api/payslips/{id}/pdf        PDF export

  Compliance:
    GET    /api/violations               List recorded violations
    POST   /api/compliance/exemption     FLSA exemption check
    POST   /api/compliance/child-labor   Child labor check
    POST   /api/compliance/record-keeping Record keeping check

  Scenarios:
    GET    /api/scenarios                List demo scenarios
    POST   /api/scenarios/load           Load a demo scenario

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (processor, engines)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, missing compensation
  - 404: Resource not found
  - 409: Duplicate resource, illegal lifecycle transition
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/payroll-engine/compliance"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is what the handlers need from persistence: the full payroll
// store plus Reset for scenario loading. Both the SQLite store and the
// in-memory store satisfy it.
type Store interface {
	payroll.TxStore
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     Store
	Processor *payroll.Processor
	FLSA      *compliance.FLSA

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler over the store and engines.
func NewHandler(store Store, processor *payroll.Processor, flsa *compliance.FLSA) *Handler {
	return &Handler{
		Store:     store,
		Processor: processor,
		FLSA:      flsa,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTOs(employees))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// CreateEmployee registers a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	emp := payroll.Employee{
		ID:            payroll.EmployeeID(req.ID),
		Name:          req.Name,
		Email:         req.Email,
		Department:    req.Department,
		JobTitle:      req.JobTitle,
		State:         req.State,
		FLSAStatus:    compliance.FLSAStatus(req.FLSAStatus),
		ExemptionType: compliance.ExemptionType(req.ExemptionType),
		JobDuties:     req.JobDuties,
		HazardousWork: req.HazardousWork,
		PublicSector:  req.PublicSector,
		HourlyRate:    req.HourlyRate,
		AnnualSalary:  req.AnnualSalary,
	}
	if req.BirthDate != "" {
		birth, err := compliance.ParseWorkDate(req.BirthDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid birth_date (use YYYY-MM-DD)", err)
			return
		}
		emp.BirthDate = birth
	}

	created, err := h.Processor.RegisterEmployee(r.Context(), emp)
	if err != nil {
		writeDomainError(w, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(created))
}

// =============================================================================
// TIMESHEET HANDLERS
// =============================================================================

// SubmitTimesheet records attendance facts for one employee in one
// period. Resubmitting replaces the earlier sheet. Submission through
// the API is final: the sheet goes straight to APPROVED so period
// processing picks it up.
func (h *Handler) SubmitTimesheet(w http.ResponseWriter, r *http.Request) {
	employeeID := payroll.EmployeeID(chi.URLParam(r, "id"))
	periodID := payroll.PeriodID(chi.URLParam(r, "periodID"))

	var req SubmitTimesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var days []compliance.WorkDay
	for _, d := range req.Days {
		date, err := compliance.ParseWorkDate(d.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid day date %q (use YYYY-MM-DD)", d.Date), err)
			return
		}
		days = append(days, compliance.WorkDay{
			Date:            date,
			HoursWorked:     d.HoursWorked,
			MealBreaksTaken: d.MealBreaksTaken,
			RestBreaksTaken: d.RestBreaksTaken,
			SchoolDay:       d.SchoolDay,
			SchoolWeek:      d.SchoolWeek,
		})
	}

	ts := payroll.Timesheet{
		EmployeeID:      employeeID,
		PeriodID:        periodID,
		Days:            days,
		RegularHours:    req.RegularHours,
		OvertimeHours:   req.OvertimeHours,
		DoubleTimeHours: req.DoubleTimeHours,
		Bonus:           req.Bonus,
		Commission:      req.Commission,
		OtherEarnings:   req.OtherEarnings,
	}

	submitted, err := h.Processor.SubmitTimesheet(r.Context(), ts)
	if err != nil {
		writeDomainError(w, "Failed to submit timesheet", err)
		return
	}
	approved, err := h.Processor.ApproveTimesheet(r.Context(), submitted.ID)
	if err != nil {
		writeDomainError(w, "Failed to approve timesheet", err)
		return
	}
	writeJSON(w, http.StatusOK, toTimesheetDTO(approved))
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// CreatePeriod opens a new pay period.
func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := compliance.ParseWorkDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := compliance.ParseWorkDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}
	payDate, err := compliance.ParseWorkDate(req.PayDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pay_date (use YYYY-MM-DD)", err)
		return
	}

	period, err := h.Processor.CreatePeriod(r.Context(), req.Name, start, end, payDate, payroll.PayFrequency(req.Frequency))
	if err != nil {
		writeDomainError(w, "Failed to create period", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPeriodDTO(period))
}

// ListPeriods returns all pay periods, optionally filtered by status.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	var filter payroll.PeriodFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status := payroll.PeriodStatus(s)
		filter.Status = &status
	}

	periods, err := h.Store.ListPeriods(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list periods", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTOs(periods))
}

// GetPeriod returns a single pay period.
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	id := payroll.PeriodID(chi.URLParam(r, "id"))

	period, err := h.Store.GetPeriod(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get period", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(period))
}

// ProcessPeriod runs payroll over every approved timesheet in the period.
func (h *Handler) ProcessPeriod(w http.ResponseWriter, r *http.Request) {
	id := payroll.PeriodID(chi.URLParam(r, "id"))

	result, err := h.Processor.ProcessPeriod(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to process period", err)
		return
	}
	writeJSON(w, http.StatusOK, toProcessResultDTO(result))
}

// ApprovePeriod approves a processed period and its payslips.
func (h *Handler) ApprovePeriod(w http.ResponseWriter, r *http.Request) {
	h.transitionPeriod(w, r, "Failed to approve period", h.Processor.ApprovePeriod)
}

// PayPeriod marks an approved period and its payslips paid.
func (h *Handler) PayPeriod(w http.ResponseWriter, r *http.Request) {
	h.transitionPeriod(w, r, "Failed to pay period", h.Processor.MarkPeriodPaid)
}

// ClosePeriod archives a paid period.
func (h *Handler) ClosePeriod(w http.ResponseWriter, r *http.Request) {
	h.transitionPeriod(w, r, "Failed to close period", h.Processor.ClosePeriod)
}

// CancelPeriod cancels a period before payment, voiding its payslips.
func (h *Handler) CancelPeriod(w http.ResponseWriter, r *http.Request) {
	h.transitionPeriod(w, r, "Failed to cancel period", h.Processor.CancelPeriod)
}

func (h *Handler) transitionPeriod(w http.ResponseWriter, r *http.Request, message string,
	fn func(context.Context, payroll.PeriodID) (payroll.PayPeriod, error)) {
	id := payroll.PeriodID(chi.URLParam(r, "id"))

	period, err := fn(r.Context(), id)
	if err != nil {
		writeDomainError(w, message, err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(period))
}

// ListPeriodPayslips returns the period's payslips, optionally filtered
// by status.
func (h *Handler) ListPeriodPayslips(w http.ResponseWriter, r *http.Request) {
	id := payroll.PeriodID(chi.URLParam(r, "id"))

	if _, err := h.Store.GetPeriod(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to get period", err)
		return
	}

	filter := payroll.PayslipFilter{PeriodID: &id}
	if s := r.URL.Query().Get("status"); s != "" {
		status := payroll.PayslipStatus(s)
		filter.Status = &status
	}

	slips, err := h.Store.ListPayslips(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payslips", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayslipDTOs(slips))
}

// GetPeriodSummary returns the aggregate view of one period.
func (h *Handler) GetPeriodSummary(w http.ResponseWriter, r *http.Request) {
	id := payroll.PeriodID(chi.URLParam(r, "id"))

	summary, err := h.Processor.Summarize(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to summarize period", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// GetComplianceReport returns the per-period compliance rollup.
func (h *Handler) GetComplianceReport(w http.ResponseWriter, r *http.Request) {
	id := payroll.PeriodID(chi.URLParam(r, "id"))

	report, err := h.Processor.BuildComplianceReport(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to build compliance report", err)
		return
	}
	writeJSON(w, http.StatusOK, toComplianceReportDTO(report))
}

// =============================================================================
// PAYSLIP HANDLERS
// =============================================================================

// CalculatePayslip runs a single-employee calculation outside a bulk run.
func (h *Handler) CalculatePayslip(w http.ResponseWriter, r *http.Request) {
	var req CalculatePayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	slip, err := h.Processor.CalculatePayslip(r.Context(),
		payroll.EmployeeID(req.EmployeeID),
		payroll.PeriodID(req.PeriodID),
		payroll.CustomDeductions{
			HealthInsurance: req.HealthInsurance,
			Retirement401k:  req.Retirement401k,
			Other:           req.OtherDeductions,
		})
	if err != nil {
		writeDomainError(w, "Failed to calculate payslip", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayslipDTO(slip))
}

// GetPayslip returns a single payslip.
func (h *Handler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	id := payroll.PayslipID(chi.URLParam(r, "id"))

	slip, err := h.Store.GetPayslip(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get payslip", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayslipDTO(slip))
}

// ApprovePayslip moves one payslip from CALCULATED to APPROVED.
func (h *Handler) ApprovePayslip(w http.ResponseWriter, r *http.Request) {
	id := payroll.PayslipID(chi.URLParam(r, "id"))

	slip, err := h.Processor.ApprovePayslip(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to approve payslip", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayslipDTO(slip))
}

// VoidPayslip voids an unpaid payslip, making room for recalculation.
func (h *Handler) VoidPayslip(w http.ResponseWriter, r *http.Request) {
	id := payroll.PayslipID(chi.URLParam(r, "id"))

	slip, err := h.Processor.VoidPayslip(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to void payslip", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayslipDTO(slip))
}

// GetPayslipPDF renders one payslip as a PDF document.
func (h *Handler) GetPayslipPDF(w http.ResponseWriter, r *http.Request) {
	id := payroll.PayslipID(chi.URLParam(r, "id"))

	slip, err := h.Store.GetPayslip(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get payslip", err)
		return
	}
	emp, err := h.Store.GetEmployee(r.Context(), slip.EmployeeID)
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}
	period, err := h.Store.GetPeriod(r.Context(), slip.PeriodID)
	if err != nil {
		writeDomainError(w, "Failed to get period", err)
		return
	}

	pdf, err := payroll.RenderPayslipPDF(slip, emp, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render PDF", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "payslip-"+string(id)+".pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// =============================================================================
// COMPLIANCE HANDLERS
// =============================================================================

// ListViolations returns recorded violations, filterable by employee,
// period, and regulation.
func (h *Handler) ListViolations(w http.ResponseWriter, r *http.Request) {
	var filter payroll.ViolationFilter
	if s := r.URL.Query().Get("employee_id"); s != "" {
		employeeID := payroll.EmployeeID(s)
		filter.EmployeeID = &employeeID
	}
	if s := r.URL.Query().Get("period_id"); s != "" {
		periodID := payroll.PeriodID(s)
		filter.PeriodID = &periodID
	}
	if s := r.URL.Query().Get("regulation"); s != "" {
		regulation := s
		filter.Regulation = &regulation
	}

	violations, err := h.Store.ListViolations(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list violations", err)
		return
	}
	writeJSON(w, http.StatusOK, toViolationDTOs(violations))
}

// CheckExemption tests a claimed white-collar exemption against the
// salary thresholds and duty requirements.
func (h *Handler) CheckExemption(w http.ResponseWriter, r *http.Request) {
	var req ExemptionCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	exempt, reason := h.FLSA.CheckExemptClassification(
		req.JobTitle, req.WeeklySalary, req.AnnualSalary, req.JobDuties,
		compliance.ExemptionType(req.ExemptionType))

	writeJSON(w, http.StatusOK, ExemptionCheckResponse{Exempt: exempt, Reason: reason})
}

// CheckChildLabor tests one day worked by a minor against the federal
// child-labor rules.
func (h *Handler) CheckChildLabor(w http.ResponseWriter, r *http.Request) {
	var req ChildLaborCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	workDate, err := compliance.ParseWorkDate(req.WorkDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid work_date (use YYYY-MM-DD)", err)
		return
	}

	found := h.FLSA.CheckChildLaborCompliance(
		req.EmployeeAge, req.HoursWorked, workDate,
		req.SchoolDay, req.SchoolWeek, req.HazardousWork)

	violations := make([]ChildLaborViolationDTO, len(found))
	for i, v := range found {
		violations[i] = ChildLaborViolationDTO{
			Severity:    string(v.Severity),
			Description: v.Description,
		}
	}

	writeJSON(w, http.StatusOK, ChildLaborCheckResponse{
		Compliant:  len(found) == 0,
		Violations: violations,
	})
}

// CheckRecordKeeping reports which federally required payroll records
// are missing for an employee.
func (h *Handler) CheckRecordKeeping(w http.ResponseWriter, r *http.Request) {
	var req RecordKeepingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	missing := h.FLSA.CheckRecordKeeping(compliance.RecordKeepingFacts{
		EmployeeID:            req.EmployeeID,
		HasName:               req.HasName,
		HasAddress:            req.HasAddress,
		HasSSN:                req.HasSSN,
		HasBirthDate:          req.HasBirthDate,
		HasOccupation:         req.HasOccupation,
		HasHourlyRate:         req.HasHourlyRate,
		HasHoursWorkedRecords: req.HasHoursWorkedRecords,
		HasWagesPaidRecords:   req.HasWagesPaidRecords,
	})
	if missing == nil {
		missing = []string{}
	}

	writeJSON(w, http.StatusOK, RecordKeepingResponse{
		Compliant:     len(missing) == 0,
		MissingFields: missing,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the error taxonomy onto HTTP statuses: 400 for
// invalid input or missing compensation, 404 for missing resources,
// 409 for duplicates and illegal transitions, 500 otherwise.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	switch {
	case compliance.IsNotFound(err):
		return http.StatusNotFound
	case compliance.IsDuplicate(err), compliance.IsInvalidState(err):
		return http.StatusConflict
	case compliance.IsInvalidInput(err), errors.Is(err, compliance.ErrMissingCompensation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
