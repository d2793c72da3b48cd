/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates employees, a pay
	period, and approved timesheets, then runs payroll so payslips and
	violations are immediately visible.

AVAILABLE SCENARIOS:

	california-crunch: Seven consecutive days of long shifts with missed
	                   breaks. Daily overtime, double time, seventh-day
	                   premiums, and break penalties.
	mixed-team:        A salaried manager plus non-California hourly
	                   staff on a weekly period. Proration, federal
	                   overtime, and a clean compliance report.

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Register employees
 3. Open a pay period
 4. Submit and approve timesheets
 5. Process the period (payslips in CALCULATED, violations recorded)

The period is left in PROCESSING so the approve/pay/close lifecycle can
be walked through the API afterwards.

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "california-crunch"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler dependencies, writeJSON/writeError
  - payroll/processor.go: the domain operations the loaders drive
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/compliance"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "california-crunch",
		Name:        "California Crunch Week",
		Description: "Seven consecutive days of long kitchen shifts with missed breaks: daily overtime, double time, seventh-day premiums, and break penalties",
	},
	{
		ID:          "mixed-team",
		Name:        "Mixed Team",
		Description: "A salaried manager plus non-California hourly staff on a weekly period: salary proration, federal overtime, and a clean compliance report",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = "" // Clear current scenario on reset

	var err error
	switch req.ScenarioID {
	case "california-crunch":
		err = h.loadCaliforniaCrunchScenario(ctx)
	case "mixed-team":
		err = h.loadMixedTeamScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	// Track the loaded scenario
	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadCaliforniaCrunchScenario seeds a restaurant kitchen's worst week:
// one cook works all seven days with two shifts past twelve hours and
// breaks dropped midweek, while a colleague works a clean five-day week
// for contrast.
func (h *Handler) loadCaliforniaCrunchScenario(ctx context.Context) error {
	cook, err := h.Processor.RegisterEmployee(ctx, payroll.Employee{
		ID:         "emp-cook",
		Name:       "Maria Lopez",
		Email:      "maria@demo.example",
		Department: "Kitchen",
		JobTitle:   "Line Cook",
		State:      "CA",
		FLSAStatus: compliance.FLSANonExempt,
		HourlyRate: decimal.NewFromFloat(22.00),
	})
	if err != nil {
		return err
	}
	expo, err := h.Processor.RegisterEmployee(ctx, payroll.Employee{
		ID:         "emp-expo",
		Name:       "Devon Park",
		Email:      "devon@demo.example",
		Department: "Kitchen",
		JobTitle:   "Expeditor",
		State:      "CA",
		FLSAStatus: compliance.FLSANonExempt,
		HourlyRate: decimal.NewFromFloat(19.50),
	})
	if err != nil {
		return err
	}

	period, err := h.Processor.CreatePeriod(ctx, "Crunch Week",
		demoDate(2025, time.June, 2), demoDate(2025, time.June, 8),
		demoDate(2025, time.June, 13), payroll.Weekly)
	if err != nil {
		return err
	}

	// Maria: seven straight days. Wednesday runs past twelve hours with
	// the second meal break skipped; Thursday loses both breaks.
	if err := h.submitAndApprove(ctx, payroll.Timesheet{
		EmployeeID: cook.ID,
		PeriodID:   period.ID,
		Days: []compliance.WorkDay{
			demoDay(2025, time.June, 2, 10, 1, 2),
			demoDay(2025, time.June, 3, 10, 1, 2),
			demoDay(2025, time.June, 4, 13, 1, 3),
			demoDay(2025, time.June, 5, 11, 0, 1),
			demoDay(2025, time.June, 6, 12, 2, 3),
			demoDay(2025, time.June, 7, 9, 1, 2),
			demoDay(2025, time.June, 8, 9, 1, 2),
		},
	}); err != nil {
		return err
	}

	// Devon: a standard five-day week with every break taken.
	if err := h.submitAndApprove(ctx, payroll.Timesheet{
		EmployeeID: expo.ID,
		PeriodID:   period.ID,
		Days: []compliance.WorkDay{
			demoDay(2025, time.June, 2, 8, 1, 2),
			demoDay(2025, time.June, 3, 8, 1, 2),
			demoDay(2025, time.June, 4, 8, 1, 2),
			demoDay(2025, time.June, 5, 8, 1, 2),
			demoDay(2025, time.June, 6, 8, 1, 2),
		},
	}); err != nil {
		return err
	}

	_, err = h.Processor.ProcessPeriod(ctx, period.ID)
	return err
}

// loadMixedTeamScenario seeds a weekly period for a team outside the
// daily rules: an exempt salaried manager, a driver with overtime, and
// a part-time clerk with a spot bonus. Nothing here violates anything,
// so the compliance report comes back clean.
func (h *Handler) loadMixedTeamScenario(ctx context.Context) error {
	manager, err := h.Processor.RegisterEmployee(ctx, payroll.Employee{
		ID:            "emp-manager",
		Name:          "Priya Shah",
		Email:         "priya@demo.example",
		Department:    "Operations",
		JobTitle:      "Operations Manager",
		State:         "NY",
		FLSAStatus:    compliance.FLSAExempt,
		ExemptionType: compliance.ExemptionExecutive,
		JobDuties: []string{
			"manages the operations department",
			"supervises a team of five",
			"authority to hire and discharge staff",
		},
		AnnualSalary: decimal.NewFromInt(124800),
	})
	if err != nil {
		return err
	}
	driver, err := h.Processor.RegisterEmployee(ctx, payroll.Employee{
		ID:         "emp-driver",
		Name:       "Marcus Reed",
		Email:      "marcus@demo.example",
		Department: "Logistics",
		JobTitle:   "Delivery Driver",
		State:      "TX",
		FLSAStatus: compliance.FLSANonExempt,
		HourlyRate: decimal.NewFromFloat(18.50),
	})
	if err != nil {
		return err
	}
	clerk, err := h.Processor.RegisterEmployee(ctx, payroll.Employee{
		ID:         "emp-clerk",
		Name:       "Jen Alvarez",
		Email:      "jen@demo.example",
		Department: "Front Office",
		JobTitle:   "Office Clerk",
		State:      "NV",
		FLSAStatus: compliance.FLSANonExempt,
		HourlyRate: decimal.NewFromFloat(16.50),
	})
	if err != nil {
		return err
	}

	period, err := h.Processor.CreatePeriod(ctx, "Second Week of June",
		demoDate(2025, time.June, 9), demoDate(2025, time.June, 15),
		demoDate(2025, time.June, 20), payroll.Weekly)
	if err != nil {
		return err
	}

	// Priya: salaried, hours recorded for the file only.
	if err := h.submitAndApprove(ctx, payroll.Timesheet{
		EmployeeID:   manager.ID,
		PeriodID:     period.ID,
		RegularHours: decimal.NewFromInt(40),
	}); err != nil {
		return err
	}

	// Marcus: six hours past forty.
	if err := h.submitAndApprove(ctx, payroll.Timesheet{
		EmployeeID:    driver.ID,
		PeriodID:      period.ID,
		RegularHours:  decimal.NewFromInt(40),
		OvertimeHours: decimal.NewFromInt(6),
	}); err != nil {
		return err
	}

	// Jen: part-time with a spot bonus.
	if err := h.submitAndApprove(ctx, payroll.Timesheet{
		EmployeeID:   clerk.ID,
		PeriodID:     period.ID,
		RegularHours: decimal.NewFromInt(24),
		Bonus:        decimal.NewFromInt(150),
	}); err != nil {
		return err
	}

	_, err = h.Processor.ProcessPeriod(ctx, period.ID)
	return err
}

// =============================================================================
// SEEDING HELPERS
// =============================================================================

func (h *Handler) submitAndApprove(ctx context.Context, ts payroll.Timesheet) error {
	submitted, err := h.Processor.SubmitTimesheet(ctx, ts)
	if err != nil {
		return err
	}
	_, err = h.Processor.ApproveTimesheet(ctx, submitted.ID)
	return err
}

func demoDate(year int, month time.Month, day int) compliance.WorkDate {
	return compliance.DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func demoDay(year int, month time.Month, day int, hours float64, meals, rests int) compliance.WorkDay {
	return compliance.WorkDay{
		Date:            demoDate(year, month, day),
		HoursWorked:     decimal.NewFromFloat(hours),
		MealBreaksTaken: meals,
		RestBreaksTaken: rests,
	}
}
