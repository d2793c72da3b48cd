/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employee:
    EmployeeDTO, CreateEmployeeRequest

  Timesheet:
    TimesheetDTO, SubmitTimesheetRequest, WorkDayDTO

  Pay period:
    PeriodDTO, CreatePeriodRequest, ProcessResultDTO, PeriodSummaryDTO

  Payslip:
    PayslipDTO, DeductionBreakdownDTO, CalculatePayslipRequest

  Compliance:
    ComplianceReportDTO, ViolationDTO, ExemptionCheckRequest/Response,
    ChildLaborCheckRequest/Response, RecordKeepingRequest/Response

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

WIRE FORMATS:
  Money and hours are decimal.Decimal and marshal as quoted strings
  ("1234.50") so clients never see float artifacts. Dates are YYYY-MM-DD
  strings; timestamps are RFC 3339.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - payroll/types.go: the domain model these mirror
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email,omitempty"`
	Department    string          `json:"department,omitempty"`
	JobTitle      string          `json:"job_title,omitempty"`
	Active        bool            `json:"active"`
	State         string          `json:"state"`
	FLSAStatus    string          `json:"flsa_status"`
	ExemptionType string          `json:"exemption_type,omitempty"`
	JobDuties     []string        `json:"job_duties,omitempty"`
	BirthDate     string          `json:"birth_date,omitempty"`
	HazardousWork bool            `json:"hazardous_work"`
	PublicSector  bool            `json:"public_sector"`
	HourlyRate    decimal.Decimal `json:"hourly_rate"`
	AnnualSalary  decimal.Decimal `json:"annual_salary"`
}

// CreateEmployeeRequest is the request to create an employee. ID is
// optional; one is generated when omitted.
type CreateEmployeeRequest struct {
	ID            string          `json:"id,omitempty"`
	Name          string          `json:"name"`
	Email         string          `json:"email,omitempty"`
	Department    string          `json:"department,omitempty"`
	JobTitle      string          `json:"job_title,omitempty"`
	State         string          `json:"state"`
	FLSAStatus    string          `json:"flsa_status,omitempty"`
	ExemptionType string          `json:"exemption_type,omitempty"`
	JobDuties     []string        `json:"job_duties,omitempty"`
	BirthDate     string          `json:"birth_date,omitempty"`
	HazardousWork bool            `json:"hazardous_work,omitempty"`
	PublicSector  bool            `json:"public_sector,omitempty"`
	HourlyRate    decimal.Decimal `json:"hourly_rate"`
	AnnualSalary  decimal.Decimal `json:"annual_salary"`
}

// =============================================================================
// TIMESHEETS
// =============================================================================

// WorkDayDTO is one day of attendance facts.
type WorkDayDTO struct {
	Date            string          `json:"date"`
	HoursWorked     decimal.Decimal `json:"hours_worked"`
	MealBreaksTaken int             `json:"meal_breaks_taken"`
	RestBreaksTaken int             `json:"rest_breaks_taken"`
	SchoolDay       bool            `json:"school_day,omitempty"`
	SchoolWeek      bool            `json:"school_week,omitempty"`
}

// SubmitTimesheetRequest carries either per-day facts (Days) or
// pre-aggregated hour totals, plus extra earnings for the period.
type SubmitTimesheetRequest struct {
	Days            []WorkDayDTO    `json:"days,omitempty"`
	RegularHours    decimal.Decimal `json:"regular_hours"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	DoubleTimeHours decimal.Decimal `json:"double_time_hours"`
	Bonus           decimal.Decimal `json:"bonus"`
	Commission      decimal.Decimal `json:"commission"`
	OtherEarnings   decimal.Decimal `json:"other_earnings"`
}

// TimesheetDTO represents a timesheet in API responses.
type TimesheetDTO struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	PeriodID        string          `json:"period_id"`
	Status          string          `json:"status"`
	Days            []WorkDayDTO    `json:"days,omitempty"`
	RegularHours    decimal.Decimal `json:"regular_hours"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	DoubleTimeHours decimal.Decimal `json:"double_time_hours"`
	Bonus           decimal.Decimal `json:"bonus"`
	Commission      decimal.Decimal `json:"commission"`
	OtherEarnings   decimal.Decimal `json:"other_earnings"`
	TotalHours      decimal.Decimal `json:"total_hours"`
}

// =============================================================================
// PAY PERIODS
// =============================================================================

// PeriodDTO represents a pay period in API responses.
type PeriodDTO struct {
	ID                string          `json:"id"`
	Name              string          `json:"name,omitempty"`
	StartDate         string          `json:"start_date"`
	EndDate           string          `json:"end_date"`
	PayDate           string          `json:"pay_date"`
	Frequency         string          `json:"frequency"`
	Status            string          `json:"status"`
	TotalGross        decimal.Decimal `json:"total_gross"`
	TotalDeductions   decimal.Decimal `json:"total_deductions"`
	TotalNet          decimal.Decimal `json:"total_net"`
	ViolationCount    int             `json:"violation_count"`
	PayslipCount      int             `json:"payslip_count"`
	ComplianceChecked bool            `json:"compliance_checked"`
	CreatedAt         string          `json:"created_at,omitempty"`
	UpdatedAt         string          `json:"updated_at,omitempty"`
}

// CreatePeriodRequest is the request to open a pay period.
type CreatePeriodRequest struct {
	Name      string `json:"name,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	PayDate   string `json:"pay_date"`
	Frequency string `json:"frequency"`
}

// SkippedEmployeeDTO names an employee a period run passed over.
type SkippedEmployeeDTO struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

// ProcessResultDTO summarizes one period run.
type ProcessResultDTO struct {
	Period          PeriodDTO            `json:"period"`
	PayslipsCreated int                  `json:"payslips_created"`
	ViolationCount  int                  `json:"violation_count"`
	TotalGross      decimal.Decimal      `json:"total_gross"`
	TotalDeductions decimal.Decimal      `json:"total_deductions"`
	TotalNet        decimal.Decimal      `json:"total_net"`
	Skipped         []SkippedEmployeeDTO `json:"skipped,omitempty"`
}

// PeriodSummaryDTO is the aggregate view of one period. Money totals
// cover live payslips only; the by-status counts include voided ones.
type PeriodSummaryDTO struct {
	Period            PeriodDTO                  `json:"period"`
	EmployeeCount     int                        `json:"employee_count"`
	PayslipCount      int                        `json:"payslip_count"`
	TotalGross        decimal.Decimal            `json:"total_gross"`
	TotalDeductions   decimal.Decimal            `json:"total_deductions"`
	TotalNet          decimal.Decimal            `json:"total_net"`
	PayslipsByStatus  map[string]int             `json:"payslips_by_status"`
	GrossByDepartment map[string]decimal.Decimal `json:"gross_by_department"`
	ViolationCount    int                        `json:"violation_count"`
}

// =============================================================================
// PAYSLIPS
// =============================================================================

// DeductionBreakdownDTO itemizes everything withheld from gross pay.
type DeductionBreakdownDTO struct {
	FederalTax      decimal.Decimal `json:"federal_tax"`
	StateTax        decimal.Decimal `json:"state_tax"`
	SocialSecurity  decimal.Decimal `json:"social_security"`
	Medicare        decimal.Decimal `json:"medicare"`
	HealthInsurance decimal.Decimal `json:"health_insurance"`
	Retirement401k  decimal.Decimal `json:"retirement_401k"`
	Other           decimal.Decimal `json:"other"`
}

// PayslipDTO represents a payslip in API responses.
type PayslipDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	PeriodID   string `json:"period_id"`
	Status     string `json:"status"`

	RegularHours    decimal.Decimal `json:"regular_hours"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	DoubleTimeHours decimal.Decimal `json:"double_time_hours"`

	RegularPay       decimal.Decimal `json:"regular_pay"`
	OvertimePay      decimal.Decimal `json:"overtime_pay"`
	DoubleTimePay    decimal.Decimal `json:"double_time_pay"`
	MealBreakPenalty decimal.Decimal `json:"meal_break_penalty"`
	RestBreakPenalty decimal.Decimal `json:"rest_break_penalty"`
	Bonus            decimal.Decimal `json:"bonus"`
	Commission       decimal.Decimal `json:"commission"`
	OtherEarnings    decimal.Decimal `json:"other_earnings"`
	GrossPay         decimal.Decimal `json:"gross_pay"`

	Deductions      DeductionBreakdownDTO `json:"deductions"`
	TotalDeductions decimal.Decimal       `json:"total_deductions"`
	NetPay          decimal.Decimal       `json:"net_pay"`

	CaliforniaCompliant bool   `json:"california_compliant"`
	FLSACompliant       bool   `json:"flsa_compliant"`
	ComplianceNotes     string `json:"compliance_notes,omitempty"`

	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// CalculatePayslipRequest is the request for a single-employee
// calculation outside a full period run.
type CalculatePayslipRequest struct {
	EmployeeID      string          `json:"employee_id"`
	PeriodID        string          `json:"period_id"`
	HealthInsurance decimal.Decimal `json:"health_insurance"`
	Retirement401k  decimal.Decimal `json:"retirement_401k"`
	OtherDeductions decimal.Decimal `json:"other_deductions"`
}

// =============================================================================
// COMPLIANCE
// =============================================================================

// ViolationDTO represents a recorded compliance finding.
type ViolationDTO struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Regulation      string          `json:"regulation"`
	Severity        string          `json:"severity"`
	Description     string          `json:"description"`
	EntityType      string          `json:"entity_type"`
	EntityID        string          `json:"entity_id,omitempty"`
	EmployeeID      string          `json:"employee_id"`
	PeriodID        string          `json:"period_id"`
	FinancialImpact decimal.Decimal `json:"financial_impact"`
	OccurredOn      string          `json:"occurred_on,omitempty"`
	CreatedAt       string          `json:"created_at,omitempty"`
}

// ComplianceReportDTO is the per-period compliance rollup.
type ComplianceReportDTO struct {
	PeriodID             string          `json:"period_id"`
	TotalEmployees       int             `json:"total_employees"`
	CaliforniaCompliant  int             `json:"california_compliant"`
	CaliforniaViolations int             `json:"california_violations"`
	FLSACompliant        int             `json:"flsa_compliant"`
	FLSAViolations       int             `json:"flsa_violations"`
	TotalPenalties       decimal.Decimal `json:"total_penalties"`
	ViolationCount       int             `json:"violation_count"`
	Violations           []ViolationDTO  `json:"violations"`
}

// ExemptionCheckRequest asks whether a classification holds up.
type ExemptionCheckRequest struct {
	JobTitle      string          `json:"job_title"`
	WeeklySalary  decimal.Decimal `json:"weekly_salary"`
	AnnualSalary  decimal.Decimal `json:"annual_salary"`
	JobDuties     []string        `json:"job_duties"`
	ExemptionType string          `json:"exemption_type"`
}

// ExemptionCheckResponse is the verdict on a claimed exemption.
type ExemptionCheckResponse struct {
	Exempt bool   `json:"exempt"`
	Reason string `json:"reason,omitempty"`
}

// ChildLaborCheckRequest describes one day worked by a minor.
type ChildLaborCheckRequest struct {
	EmployeeAge   int             `json:"employee_age"`
	HoursWorked   decimal.Decimal `json:"hours_worked"`
	WorkDate      string          `json:"work_date"`
	SchoolDay     bool            `json:"school_day"`
	SchoolWeek    bool            `json:"school_week"`
	HazardousWork bool            `json:"hazardous_work"`
}

// ChildLaborViolationDTO is one child-labor finding.
type ChildLaborViolationDTO struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// ChildLaborCheckResponse lists the findings for the day.
type ChildLaborCheckResponse struct {
	Compliant  bool                     `json:"compliant"`
	Violations []ChildLaborViolationDTO `json:"violations"`
}

// RecordKeepingRequest reports which required records are on file.
type RecordKeepingRequest struct {
	EmployeeID            string `json:"employee_id"`
	HasName               bool   `json:"has_name"`
	HasAddress            bool   `json:"has_address"`
	HasSSN                bool   `json:"has_ssn"`
	HasBirthDate          bool   `json:"has_birth_date"`
	HasOccupation         bool   `json:"has_occupation"`
	HasHourlyRate         bool   `json:"has_hourly_rate"`
	HasHoursWorkedRecords bool   `json:"has_hours_worked_records"`
	HasWagesPaidRecords   bool   `json:"has_wages_paid_records"`
}

// RecordKeepingResponse names the records still missing.
type RecordKeepingResponse struct {
	Compliant     bool     `json:"compliant"`
	MissingFields []string `json:"missing_fields"`
}

// =============================================================================
// SCENARIOS AND ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func toEmployeeDTO(e payroll.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:            string(e.ID),
		Name:          e.Name,
		Email:         e.Email,
		Department:    e.Department,
		JobTitle:      e.JobTitle,
		Active:        e.Active,
		State:         e.State,
		FLSAStatus:    string(e.FLSAStatus),
		ExemptionType: string(e.ExemptionType),
		JobDuties:     e.JobDuties,
		HazardousWork: e.HazardousWork,
		PublicSector:  e.PublicSector,
		HourlyRate:    e.HourlyRate,
		AnnualSalary:  e.AnnualSalary,
	}
	if !e.BirthDate.IsZero() {
		dto.BirthDate = e.BirthDate.String()
	}
	return dto
}

func toEmployeeDTOs(employees []payroll.Employee) []EmployeeDTO {
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	return dtos
}

func toPeriodDTO(p payroll.PayPeriod) PeriodDTO {
	return PeriodDTO{
		ID:                string(p.ID),
		Name:              p.Name,
		StartDate:         p.StartDate.String(),
		EndDate:           p.EndDate.String(),
		PayDate:           p.PayDate.String(),
		Frequency:         string(p.Frequency),
		Status:            string(p.Status),
		TotalGross:        p.TotalGross,
		TotalDeductions:   p.TotalDeductions,
		TotalNet:          p.TotalNet,
		ViolationCount:    p.ViolationCount,
		PayslipCount:      p.PayslipCount,
		ComplianceChecked: p.ComplianceChecked,
		CreatedAt:         fmtTime(p.CreatedAt),
		UpdatedAt:         fmtTime(p.UpdatedAt),
	}
}

func toPeriodDTOs(periods []payroll.PayPeriod) []PeriodDTO {
	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(p)
	}
	return dtos
}

func toTimesheetDTO(t payroll.Timesheet) TimesheetDTO {
	days := make([]WorkDayDTO, len(t.Days))
	for i, day := range t.Days {
		days[i] = WorkDayDTO{
			Date:            day.Date.String(),
			HoursWorked:     day.HoursWorked,
			MealBreaksTaken: day.MealBreaksTaken,
			RestBreaksTaken: day.RestBreaksTaken,
			SchoolDay:       day.SchoolDay,
			SchoolWeek:      day.SchoolWeek,
		}
	}
	if len(days) == 0 {
		days = nil
	}
	return TimesheetDTO{
		ID:              string(t.ID),
		EmployeeID:      string(t.EmployeeID),
		PeriodID:        string(t.PeriodID),
		Status:          string(t.Status),
		Days:            days,
		RegularHours:    t.RegularHours,
		OvertimeHours:   t.OvertimeHours,
		DoubleTimeHours: t.DoubleTimeHours,
		Bonus:           t.Bonus,
		Commission:      t.Commission,
		OtherEarnings:   t.OtherEarnings,
		TotalHours:      t.TotalHours(),
	}
}

func toPayslipDTO(p payroll.Payslip) PayslipDTO {
	return PayslipDTO{
		ID:         string(p.ID),
		EmployeeID: string(p.EmployeeID),
		PeriodID:   string(p.PeriodID),
		Status:     string(p.Status),

		RegularHours:    p.RegularHours,
		OvertimeHours:   p.OvertimeHours,
		DoubleTimeHours: p.DoubleTimeHours,

		RegularPay:       p.RegularPay,
		OvertimePay:      p.OvertimePay,
		DoubleTimePay:    p.DoubleTimePay,
		MealBreakPenalty: p.MealBreakPenalty,
		RestBreakPenalty: p.RestBreakPenalty,
		Bonus:            p.Bonus,
		Commission:       p.Commission,
		OtherEarnings:    p.OtherEarnings,
		GrossPay:         p.GrossPay,

		Deductions: DeductionBreakdownDTO{
			FederalTax:      p.Deductions.FederalTax,
			StateTax:        p.Deductions.StateTax,
			SocialSecurity:  p.Deductions.SocialSecurity,
			Medicare:        p.Deductions.Medicare,
			HealthInsurance: p.Deductions.HealthInsurance,
			Retirement401k:  p.Deductions.Retirement401k,
			Other:           p.Deductions.Other,
		},
		TotalDeductions: p.TotalDeductions,
		NetPay:          p.NetPay,

		CaliforniaCompliant: p.CaliforniaCompliant,
		FLSACompliant:       p.FLSACompliant,
		ComplianceNotes:     p.ComplianceNotes,

		CreatedAt: fmtTime(p.CreatedAt),
		UpdatedAt: fmtTime(p.UpdatedAt),
	}
}

func toPayslipDTOs(slips []payroll.Payslip) []PayslipDTO {
	dtos := make([]PayslipDTO, len(slips))
	for i, p := range slips {
		dtos[i] = toPayslipDTO(p)
	}
	return dtos
}

func toViolationDTO(v payroll.Violation) ViolationDTO {
	dto := ViolationDTO{
		ID:              string(v.ID),
		Type:            string(v.Type),
		Regulation:      v.Regulation,
		Severity:        string(v.Severity),
		Description:     v.Description,
		EntityType:      v.EntityType,
		EntityID:        v.EntityID,
		EmployeeID:      string(v.EmployeeID),
		PeriodID:        string(v.PeriodID),
		FinancialImpact: v.FinancialImpact,
		CreatedAt:       fmtTime(v.CreatedAt),
	}
	if !v.OccurredOn.IsZero() {
		dto.OccurredOn = v.OccurredOn.String()
	}
	return dto
}

func toViolationDTOs(violations []payroll.Violation) []ViolationDTO {
	dtos := make([]ViolationDTO, len(violations))
	for i, v := range violations {
		dtos[i] = toViolationDTO(v)
	}
	return dtos
}

func toProcessResultDTO(r payroll.ProcessResult) ProcessResultDTO {
	skipped := make([]SkippedEmployeeDTO, len(r.Skipped))
	for i, s := range r.Skipped {
		skipped[i] = SkippedEmployeeDTO{EmployeeID: string(s.EmployeeID), Reason: s.Reason}
	}
	if len(skipped) == 0 {
		skipped = nil
	}
	return ProcessResultDTO{
		Period:          toPeriodDTO(r.Period),
		PayslipsCreated: r.PayslipsCreated,
		ViolationCount:  r.ViolationCount,
		TotalGross:      r.TotalGross,
		TotalDeductions: r.TotalDeductions,
		TotalNet:        r.TotalNet,
		Skipped:         skipped,
	}
}

func toSummaryDTO(s payroll.PeriodSummary) PeriodSummaryDTO {
	byStatus := make(map[string]int, len(s.PayslipsByStatus))
	for status, n := range s.PayslipsByStatus {
		byStatus[string(status)] = n
	}
	return PeriodSummaryDTO{
		Period:            toPeriodDTO(s.Period),
		EmployeeCount:     s.EmployeeCount,
		PayslipCount:      s.PayslipCount,
		TotalGross:        s.TotalGross,
		TotalDeductions:   s.TotalDeductions,
		TotalNet:          s.TotalNet,
		PayslipsByStatus:  byStatus,
		GrossByDepartment: s.GrossByDepartment,
		ViolationCount:    s.ViolationCount,
	}
}

func toComplianceReportDTO(r payroll.ComplianceReport) ComplianceReportDTO {
	return ComplianceReportDTO{
		PeriodID:             string(r.PeriodID),
		TotalEmployees:       r.TotalEmployees,
		CaliforniaCompliant:  r.CaliforniaCompliant,
		CaliforniaViolations: r.CaliforniaViolations,
		FLSACompliant:        r.FLSACompliant,
		FLSAViolations:       r.FLSAViolations,
		TotalPenalties:       r.TotalPenalties,
		ViolationCount:       r.ViolationCount,
		Violations:           toViolationDTOs(r.Violations),
	}
}
