/*
Package sqlite provides a SQLite-backed implementation of payroll.TxStore.

PURPOSE:
  Persists employees, pay periods, timesheets, payslips, and the
  violation log using SQLite. In production, the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:    Compensation facts and compliance attributes
  pay_periods:  Period lifecycle plus processing totals
  timesheets:   Per-day attendance facts (JSON) or aggregate hour totals
  payslips:     Calculation output, one live row per employee+period
  violations:   Append-only compliance findings

MONEY AND HOURS:
  Every decimal field is stored as TEXT via decimal.String() and parsed
  back on read. REAL would silently corrupt cents; payroll figures must
  round-trip exactly.

UNIQUENESS:
  - payslips: a partial unique index on (employee_id, period_id) WHERE
    status != 'VOIDED' enforces one live payslip per pair. Voiding the
    row makes room for a recalculation without losing history.
  - timesheets: plain UNIQUE(employee_id, period_id), one per pair.
  Constraint hits surface as compliance.DuplicateError so callers handle
  the same error family as the in-memory store.

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE statements touch the violations table. Findings
  are facts about a calculation that happened.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  processor := payroll.NewProcessor(store, calculator)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - payroll/store.go: Interface definitions
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/compliance"
	"github.com/warp/payroll-engine/payroll"
)

// Store implements payroll.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		department TEXT,
		job_title TEXT,
		active BOOLEAN DEFAULT TRUE,
		state TEXT NOT NULL,
		flsa_status TEXT NOT NULL,
		exemption_type TEXT,
		job_duties_json TEXT,
		birth_date TEXT,
		hazardous_work BOOLEAN DEFAULT FALSE,
		public_sector BOOLEAN DEFAULT FALSE,
		hourly_rate TEXT NOT NULL,
		annual_salary TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Pay periods
	CREATE TABLE IF NOT EXISTS pay_periods (
		id TEXT PRIMARY KEY,
		name TEXT,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		pay_date TEXT NOT NULL,
		frequency TEXT NOT NULL,
		status TEXT NOT NULL,
		total_gross TEXT NOT NULL,
		total_deductions TEXT NOT NULL,
		total_net TEXT NOT NULL,
		violation_count INTEGER DEFAULT 0,
		payslip_count INTEGER DEFAULT 0,
		compliance_checked BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_periods_status
		ON pay_periods(status);

	-- Timesheets: one per employee per period
	CREATE TABLE IF NOT EXISTS timesheets (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		period_id TEXT NOT NULL,
		status TEXT NOT NULL,
		days_json TEXT,
		regular_hours TEXT NOT NULL,
		overtime_hours TEXT NOT NULL,
		double_time_hours TEXT NOT NULL,
		bonus TEXT NOT NULL,
		commission TEXT NOT NULL,
		other_earnings TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(employee_id, period_id)
	);

	CREATE INDEX IF NOT EXISTS idx_timesheets_period
		ON timesheets(period_id);
	CREATE INDEX IF NOT EXISTS idx_timesheets_period_status
		ON timesheets(period_id, status);

	-- Payslips
	CREATE TABLE IF NOT EXISTS payslips (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		period_id TEXT NOT NULL,
		status TEXT NOT NULL,
		regular_hours TEXT NOT NULL,
		overtime_hours TEXT NOT NULL,
		double_time_hours TEXT NOT NULL,
		regular_pay TEXT NOT NULL,
		overtime_pay TEXT NOT NULL,
		double_time_pay TEXT NOT NULL,
		meal_break_penalty TEXT NOT NULL,
		rest_break_penalty TEXT NOT NULL,
		bonus TEXT NOT NULL,
		commission TEXT NOT NULL,
		other_earnings TEXT NOT NULL,
		gross_pay TEXT NOT NULL,
		federal_tax TEXT NOT NULL,
		state_tax TEXT NOT NULL,
		social_security TEXT NOT NULL,
		medicare TEXT NOT NULL,
		health_insurance TEXT NOT NULL,
		retirement_401k TEXT NOT NULL,
		other_deductions TEXT NOT NULL,
		total_deductions TEXT NOT NULL,
		net_pay TEXT NOT NULL,
		california_compliant BOOLEAN DEFAULT TRUE,
		flsa_compliant BOOLEAN DEFAULT TRUE,
		compliance_notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: One live payslip per employee+period. Voided rows stay
	-- for history but no longer block a recalculation.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_payslips_live
		ON payslips(employee_id, period_id)
		WHERE status != 'VOIDED';

	CREATE INDEX IF NOT EXISTS idx_payslips_period
		ON payslips(period_id);
	CREATE INDEX IF NOT EXISTS idx_payslips_employee
		ON payslips(employee_id);
	CREATE INDEX IF NOT EXISTS idx_payslips_period_status
		ON payslips(period_id, status);

	-- Violations (append-only log)
	CREATE TABLE IF NOT EXISTS violations (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		regulation TEXT NOT NULL,
		severity TEXT NOT NULL,
		description TEXT NOT NULL,
		entity_type TEXT,
		entity_id TEXT,
		employee_id TEXT NOT NULL,
		period_id TEXT NOT NULL,
		financial_impact TEXT NOT NULL,
		occurred_on TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_violations_period
		ON violations(period_id);
	CREATE INDEX IF NOT EXISTS idx_violations_employee
		ON violations(employee_id);
	CREATE INDEX IF NOT EXISTS idx_violations_regulation
		ON violations(regulation);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is the executor shared by the database handle and an open
// transaction. Internal helpers take this so WithTx can reuse them.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) CreateEmployee(ctx context.Context, e payroll.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createEmployee(ctx, s.db, e)
}

func (s *Store) createEmployee(ctx context.Context, db dbtx, e payroll.Employee) error {
	dutiesJSON, _ := json.Marshal(e.JobDuties)

	query := `
		INSERT INTO employees
		(id, name, email, department, job_title, active, state, flsa_status,
		 exemption_type, job_duties_json, birth_date, hazardous_work, public_sector,
		 hourly_rate, annual_salary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var birthDate sql.NullString
	if !e.BirthDate.IsZero() {
		birthDate = sql.NullString{String: e.BirthDate.String(), Valid: true}
	}

	_, err := db.ExecContext(ctx, query,
		string(e.ID),
		e.Name,
		e.Email,
		e.Department,
		e.JobTitle,
		e.Active,
		e.State,
		string(e.FLSAStatus),
		string(e.ExemptionType),
		string(dutiesJSON),
		birthDate,
		e.HazardousWork,
		e.PublicSector,
		e.HourlyRate.String(),
		e.AnnualSalary.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &compliance.DuplicateError{Resource: "employee", Key: string(e.ID)}
		}
		return fmt.Errorf("failed to insert employee: %w", err)
	}
	return nil
}

const employeeColumns = `id, name, email, department, job_title, active, state,
	flsa_status, exemption_type, job_duties_json, birth_date, hazardous_work,
	public_sector, hourly_rate, annual_salary`

func (s *Store) GetEmployee(ctx context.Context, id payroll.EmployeeID) (payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getEmployee(ctx, s.db, id)
}

func (s *Store) getEmployee(ctx context.Context, db dbtx, id payroll.EmployeeID) (payroll.Employee, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id = ?", string(id))

	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return payroll.Employee{}, &compliance.NotFoundError{Resource: "employee", ID: string(id)}
	}
	if err != nil {
		return payroll.Employee{}, err
	}
	return e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listEmployees(ctx, s.db)
}

func (s *Store) listEmployees(ctx context.Context, db dbtx) ([]payroll.Employee, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+employeeColumns+" FROM employees ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []payroll.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func scanEmployee(row rowScanner) (payroll.Employee, error) {
	var (
		e          payroll.Employee
		id         string
		email      sql.NullString
		department sql.NullString
		flsaStatus string
		exemption  sql.NullString
		dutiesJSON sql.NullString
		birthDate  sql.NullString
	)

	err := row.Scan(&id, &e.Name, &email, &department, &e.JobTitle, &e.Active,
		&e.State, &flsaStatus, &exemption, &dutiesJSON, &birthDate,
		&e.HazardousWork, &e.PublicSector,
		decScan{&e.HourlyRate}, decScan{&e.AnnualSalary})
	if err != nil {
		return e, err
	}

	e.ID = payroll.EmployeeID(id)
	e.Email = email.String
	e.Department = department.String
	e.FLSAStatus = compliance.FLSAStatus(flsaStatus)
	e.ExemptionType = compliance.ExemptionType(exemption.String)
	if dutiesJSON.Valid && dutiesJSON.String != "" {
		json.Unmarshal([]byte(dutiesJSON.String), &e.JobDuties)
	}
	if birthDate.Valid {
		e.BirthDate, _ = compliance.ParseWorkDate(birthDate.String)
	}
	return e, nil
}

// =============================================================================
// PAY PERIODS
// =============================================================================

func (s *Store) CreatePeriod(ctx context.Context, p payroll.PayPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createPeriod(ctx, s.db, p)
}

func (s *Store) createPeriod(ctx context.Context, db dbtx, p payroll.PayPeriod) error {
	query := `
		INSERT INTO pay_periods
		(id, name, start_date, end_date, pay_date, frequency, status, total_gross,
		 total_deductions, total_net, violation_count, payslip_count,
		 compliance_checked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		string(p.ID),
		p.Name,
		p.StartDate.String(),
		p.EndDate.String(),
		p.PayDate.String(),
		string(p.Frequency),
		string(p.Status),
		p.TotalGross.String(),
		p.TotalDeductions.String(),
		p.TotalNet.String(),
		p.ViolationCount,
		p.PayslipCount,
		p.ComplianceChecked,
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &compliance.DuplicateError{Resource: "pay period", Key: string(p.ID)}
		}
		return fmt.Errorf("failed to insert pay period: %w", err)
	}
	return nil
}

const periodColumns = `id, name, start_date, end_date, pay_date, frequency, status,
	total_gross, total_deductions, total_net, violation_count, payslip_count,
	compliance_checked, created_at, updated_at`

func (s *Store) GetPeriod(ctx context.Context, id payroll.PeriodID) (payroll.PayPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getPeriod(ctx, s.db, id)
}

func (s *Store) getPeriod(ctx context.Context, db dbtx, id payroll.PeriodID) (payroll.PayPeriod, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+periodColumns+" FROM pay_periods WHERE id = ?", string(id))

	p, err := scanPeriod(row)
	if err == sql.ErrNoRows {
		return payroll.PayPeriod{}, &compliance.NotFoundError{Resource: "pay period", ID: string(id)}
	}
	if err != nil {
		return payroll.PayPeriod{}, err
	}
	return p, nil
}

func (s *Store) UpdatePeriod(ctx context.Context, p payroll.PayPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatePeriod(ctx, s.db, p)
}

func (s *Store) updatePeriod(ctx context.Context, db dbtx, p payroll.PayPeriod) error {
	query := `
		UPDATE pay_periods SET
			name = ?, start_date = ?, end_date = ?, pay_date = ?, frequency = ?,
			status = ?, total_gross = ?, total_deductions = ?, total_net = ?,
			violation_count = ?, payslip_count = ?, compliance_checked = ?,
			updated_at = ?
		WHERE id = ?
	`

	res, err := db.ExecContext(ctx, query,
		p.Name,
		p.StartDate.String(),
		p.EndDate.String(),
		p.PayDate.String(),
		string(p.Frequency),
		string(p.Status),
		p.TotalGross.String(),
		p.TotalDeductions.String(),
		p.TotalNet.String(),
		p.ViolationCount,
		p.PayslipCount,
		p.ComplianceChecked,
		p.UpdatedAt.UTC().Format(time.RFC3339),
		string(p.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update pay period: %w", err)
	}
	return requireRow(res, "pay period", string(p.ID))
}

func (s *Store) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.PayPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPeriods(ctx, s.db, filter)
}

func (s *Store) listPeriods(ctx context.Context, db dbtx, filter payroll.PeriodFilter) ([]payroll.PayPeriod, error) {
	query := "SELECT " + periodColumns + " FROM pay_periods"
	var args []any
	if filter.Status != nil {
		query += " WHERE status = ?"
		args = append(args, string(*filter.Status))
	}
	query += " ORDER BY start_date ASC, id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pay periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.PayPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func scanPeriod(row rowScanner) (payroll.PayPeriod, error) {
	var (
		p         payroll.PayPeriod
		id        string
		name      sql.NullString
		startDate string
		endDate   string
		payDate   string
		frequency string
		status    string
		createdAt string
		updatedAt string
	)

	err := row.Scan(&id, &name, &startDate, &endDate, &payDate, &frequency, &status,
		decScan{&p.TotalGross}, decScan{&p.TotalDeductions}, decScan{&p.TotalNet},
		&p.ViolationCount, &p.PayslipCount, &p.ComplianceChecked, &createdAt, &updatedAt)
	if err != nil {
		return p, err
	}

	p.ID = payroll.PeriodID(id)
	p.Name = name.String
	p.StartDate, _ = compliance.ParseWorkDate(startDate)
	p.EndDate, _ = compliance.ParseWorkDate(endDate)
	p.PayDate, _ = compliance.ParseWorkDate(payDate)
	p.Frequency = payroll.PayFrequency(frequency)
	p.Status = payroll.PeriodStatus(status)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

// =============================================================================
// TIMESHEETS
// =============================================================================

func (s *Store) CreateTimesheet(ctx context.Context, t payroll.Timesheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createTimesheet(ctx, s.db, t)
}

func (s *Store) createTimesheet(ctx context.Context, db dbtx, t payroll.Timesheet) error {
	daysJSON, err := encodeDays(t.Days)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO timesheets
		(id, employee_id, period_id, status, days_json, regular_hours, overtime_hours,
		 double_time_hours, bonus, commission, other_earnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.ExecContext(ctx, query,
		string(t.ID),
		string(t.EmployeeID),
		string(t.PeriodID),
		string(t.Status),
		daysJSON,
		t.RegularHours.String(),
		t.OvertimeHours.String(),
		t.DoubleTimeHours.String(),
		t.Bonus.String(),
		t.Commission.String(),
		t.OtherEarnings.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			if isPairConflict(err) {
				return &compliance.DuplicateError{
					Resource: "timesheet",
					Key:      fmt.Sprintf("%s/%s", t.EmployeeID, t.PeriodID),
				}
			}
			return &compliance.DuplicateError{Resource: "timesheet", Key: string(t.ID)}
		}
		return fmt.Errorf("failed to insert timesheet: %w", err)
	}
	return nil
}

const timesheetColumns = `id, employee_id, period_id, status, days_json,
	regular_hours, overtime_hours, double_time_hours, bonus, commission, other_earnings`

func (s *Store) GetTimesheet(ctx context.Context, id payroll.TimesheetID) (payroll.Timesheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getTimesheet(ctx, s.db, id)
}

func (s *Store) getTimesheet(ctx context.Context, db dbtx, id payroll.TimesheetID) (payroll.Timesheet, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+timesheetColumns+" FROM timesheets WHERE id = ?", string(id))

	t, err := scanTimesheet(row)
	if err == sql.ErrNoRows {
		return payroll.Timesheet{}, &compliance.NotFoundError{Resource: "timesheet", ID: string(id)}
	}
	if err != nil {
		return payroll.Timesheet{}, err
	}
	return t, nil
}

func (s *Store) UpdateTimesheet(ctx context.Context, t payroll.Timesheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateTimesheet(ctx, s.db, t)
}

func (s *Store) updateTimesheet(ctx context.Context, db dbtx, t payroll.Timesheet) error {
	daysJSON, err := encodeDays(t.Days)
	if err != nil {
		return err
	}

	query := `
		UPDATE timesheets SET
			status = ?, days_json = ?, regular_hours = ?, overtime_hours = ?,
			double_time_hours = ?, bonus = ?, commission = ?, other_earnings = ?
		WHERE id = ?
	`

	res, err := db.ExecContext(ctx, query,
		string(t.Status),
		daysJSON,
		t.RegularHours.String(),
		t.OvertimeHours.String(),
		t.DoubleTimeHours.String(),
		t.Bonus.String(),
		t.Commission.String(),
		t.OtherEarnings.String(),
		string(t.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update timesheet: %w", err)
	}
	return requireRow(res, "timesheet", string(t.ID))
}

func (s *Store) ListTimesheets(ctx context.Context, filter payroll.TimesheetFilter) ([]payroll.Timesheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listTimesheets(ctx, s.db, filter)
}

func (s *Store) listTimesheets(ctx context.Context, db dbtx, filter payroll.TimesheetFilter) ([]payroll.Timesheet, error) {
	query := "SELECT " + timesheetColumns + " FROM timesheets"
	var conds []string
	var args []any
	if filter.PeriodID != nil {
		conds = append(conds, "period_id = ?")
		args = append(args, string(*filter.PeriodID))
	}
	if filter.EmployeeID != nil {
		conds = append(conds, "employee_id = ?")
		args = append(args, string(*filter.EmployeeID))
	}
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY employee_id ASC, id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query timesheets: %w", err)
	}
	defer rows.Close()

	var sheets []payroll.Timesheet
	for rows.Next() {
		t, err := scanTimesheet(rows)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, t)
	}
	return sheets, rows.Err()
}

func scanTimesheet(row rowScanner) (payroll.Timesheet, error) {
	var (
		t          payroll.Timesheet
		id         string
		employeeID string
		periodID   string
		status     string
		daysJSON   sql.NullString
	)

	err := row.Scan(&id, &employeeID, &periodID, &status, &daysJSON,
		decScan{&t.RegularHours}, decScan{&t.OvertimeHours}, decScan{&t.DoubleTimeHours},
		decScan{&t.Bonus}, decScan{&t.Commission}, decScan{&t.OtherEarnings})
	if err != nil {
		return t, err
	}

	t.ID = payroll.TimesheetID(id)
	t.EmployeeID = payroll.EmployeeID(employeeID)
	t.PeriodID = payroll.PeriodID(periodID)
	t.Status = payroll.TimesheetStatus(status)
	t.Days, err = decodeDays(daysJSON.String)
	return t, err
}

// dayRecord is the JSON shape of one attendance day. Hours are kept as
// strings so they round-trip exactly.
type dayRecord struct {
	Date            string `json:"date"`
	HoursWorked     string `json:"hours_worked"`
	MealBreaksTaken int    `json:"meal_breaks_taken"`
	RestBreaksTaken int    `json:"rest_breaks_taken"`
	SchoolDay       bool   `json:"school_day,omitempty"`
	SchoolWeek      bool   `json:"school_week,omitempty"`
}

func encodeDays(days []compliance.WorkDay) (sql.NullString, error) {
	if len(days) == 0 {
		return sql.NullString{}, nil
	}
	records := make([]dayRecord, len(days))
	for i, d := range days {
		records[i] = dayRecord{
			Date:            d.Date.String(),
			HoursWorked:     d.HoursWorked.String(),
			MealBreaksTaken: d.MealBreaksTaken,
			RestBreaksTaken: d.RestBreaksTaken,
			SchoolDay:       d.SchoolDay,
			SchoolWeek:      d.SchoolWeek,
		}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode timesheet days: %w", err)
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func decodeDays(raw string) ([]compliance.WorkDay, error) {
	if raw == "" {
		return nil, nil
	}
	var records []dayRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("failed to decode timesheet days: %w", err)
	}
	days := make([]compliance.WorkDay, len(records))
	for i, r := range records {
		date, err := compliance.ParseWorkDate(r.Date)
		if err != nil {
			return nil, err
		}
		hours, err := decimal.NewFromString(r.HoursWorked)
		if err != nil {
			return nil, fmt.Errorf("failed to decode hours %q: %w", r.HoursWorked, err)
		}
		days[i] = compliance.WorkDay{
			Date:            date,
			HoursWorked:     hours,
			MealBreaksTaken: r.MealBreaksTaken,
			RestBreaksTaken: r.RestBreaksTaken,
			SchoolDay:       r.SchoolDay,
			SchoolWeek:      r.SchoolWeek,
		}
	}
	return days, nil
}

// =============================================================================
// PAYSLIPS
// =============================================================================

func (s *Store) CreatePayslip(ctx context.Context, p payroll.Payslip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createPayslip(ctx, s.db, p)
}

func (s *Store) createPayslip(ctx context.Context, db dbtx, p payroll.Payslip) error {
	query := `
		INSERT INTO payslips
		(id, employee_id, period_id, status, regular_hours, overtime_hours, double_time_hours,
		 regular_pay, overtime_pay, double_time_pay, meal_break_penalty, rest_break_penalty,
		 bonus, commission, other_earnings, gross_pay, federal_tax, state_tax, social_security,
		 medicare, health_insurance, retirement_401k, other_deductions, total_deductions,
		 net_pay, california_compliant, flsa_compliant, compliance_notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		string(p.ID),
		string(p.EmployeeID),
		string(p.PeriodID),
		string(p.Status),
		p.RegularHours.String(),
		p.OvertimeHours.String(),
		p.DoubleTimeHours.String(),
		p.RegularPay.String(),
		p.OvertimePay.String(),
		p.DoubleTimePay.String(),
		p.MealBreakPenalty.String(),
		p.RestBreakPenalty.String(),
		p.Bonus.String(),
		p.Commission.String(),
		p.OtherEarnings.String(),
		p.GrossPay.String(),
		p.Deductions.FederalTax.String(),
		p.Deductions.StateTax.String(),
		p.Deductions.SocialSecurity.String(),
		p.Deductions.Medicare.String(),
		p.Deductions.HealthInsurance.String(),
		p.Deductions.Retirement401k.String(),
		p.Deductions.Other.String(),
		p.TotalDeductions.String(),
		p.NetPay.String(),
		p.CaliforniaCompliant,
		p.FLSACompliant,
		p.ComplianceNotes,
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			if isPairConflict(err) {
				return &compliance.DuplicateError{
					Resource: "payslip",
					Key:      fmt.Sprintf("%s/%s", p.EmployeeID, p.PeriodID),
				}
			}
			return &compliance.DuplicateError{Resource: "payslip", Key: string(p.ID)}
		}
		return fmt.Errorf("failed to insert payslip: %w", err)
	}
	return nil
}

const payslipColumns = `id, employee_id, period_id, status, regular_hours, overtime_hours,
	double_time_hours, regular_pay, overtime_pay, double_time_pay, meal_break_penalty,
	rest_break_penalty, bonus, commission, other_earnings, gross_pay, federal_tax, state_tax,
	social_security, medicare, health_insurance, retirement_401k, other_deductions,
	total_deductions, net_pay, california_compliant, flsa_compliant, compliance_notes,
	created_at, updated_at`

func (s *Store) GetPayslip(ctx context.Context, id payroll.PayslipID) (payroll.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getPayslip(ctx, s.db, id)
}

func (s *Store) getPayslip(ctx context.Context, db dbtx, id payroll.PayslipID) (payroll.Payslip, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+payslipColumns+" FROM payslips WHERE id = ?", string(id))

	p, err := scanPayslip(row)
	if err == sql.ErrNoRows {
		return payroll.Payslip{}, &compliance.NotFoundError{Resource: "payslip", ID: string(id)}
	}
	if err != nil {
		return payroll.Payslip{}, err
	}
	return p, nil
}

func (s *Store) UpdatePayslip(ctx context.Context, p payroll.Payslip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatePayslip(ctx, s.db, p)
}

// updatePayslip rewrites the full row. Status changes are the common
// case; figures only change when a voided slip is recalculated into a
// new row, never in place.
func (s *Store) updatePayslip(ctx context.Context, db dbtx, p payroll.Payslip) error {
	query := `
		UPDATE payslips SET
			status = ?, regular_hours = ?, overtime_hours = ?, double_time_hours = ?,
			regular_pay = ?, overtime_pay = ?, double_time_pay = ?, meal_break_penalty = ?,
			rest_break_penalty = ?, bonus = ?, commission = ?, other_earnings = ?,
			gross_pay = ?, federal_tax = ?, state_tax = ?, social_security = ?, medicare = ?,
			health_insurance = ?, retirement_401k = ?, other_deductions = ?,
			total_deductions = ?, net_pay = ?, california_compliant = ?, flsa_compliant = ?,
			compliance_notes = ?, updated_at = ?
		WHERE id = ?
	`

	res, err := db.ExecContext(ctx, query,
		string(p.Status),
		p.RegularHours.String(),
		p.OvertimeHours.String(),
		p.DoubleTimeHours.String(),
		p.RegularPay.String(),
		p.OvertimePay.String(),
		p.DoubleTimePay.String(),
		p.MealBreakPenalty.String(),
		p.RestBreakPenalty.String(),
		p.Bonus.String(),
		p.Commission.String(),
		p.OtherEarnings.String(),
		p.GrossPay.String(),
		p.Deductions.FederalTax.String(),
		p.Deductions.StateTax.String(),
		p.Deductions.SocialSecurity.String(),
		p.Deductions.Medicare.String(),
		p.Deductions.HealthInsurance.String(),
		p.Deductions.Retirement401k.String(),
		p.Deductions.Other.String(),
		p.TotalDeductions.String(),
		p.NetPay.String(),
		p.CaliforniaCompliant,
		p.FLSACompliant,
		p.ComplianceNotes,
		p.UpdatedAt.UTC().Format(time.RFC3339),
		string(p.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update payslip: %w", err)
	}
	return requireRow(res, "payslip", string(p.ID))
}

func (s *Store) ListPayslips(ctx context.Context, filter payroll.PayslipFilter) ([]payroll.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPayslips(ctx, s.db, filter)
}

func (s *Store) listPayslips(ctx context.Context, db dbtx, filter payroll.PayslipFilter) ([]payroll.Payslip, error) {
	query := "SELECT " + payslipColumns + " FROM payslips"
	var conds []string
	var args []any
	if filter.PeriodID != nil {
		conds = append(conds, "period_id = ?")
		args = append(args, string(*filter.PeriodID))
	}
	if filter.EmployeeID != nil {
		conds = append(conds, "employee_id = ?")
		args = append(args, string(*filter.EmployeeID))
	}
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY employee_id ASC, id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payslips: %w", err)
	}
	defer rows.Close()

	var slips []payroll.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, err
		}
		slips = append(slips, p)
	}
	return slips, rows.Err()
}

func scanPayslip(row rowScanner) (payroll.Payslip, error) {
	var (
		p          payroll.Payslip
		id         string
		employeeID string
		periodID   string
		status     string
		notes      sql.NullString
		createdAt  string
		updatedAt  string
	)

	err := row.Scan(&id, &employeeID, &periodID, &status,
		decScan{&p.RegularHours}, decScan{&p.OvertimeHours}, decScan{&p.DoubleTimeHours},
		decScan{&p.RegularPay}, decScan{&p.OvertimePay}, decScan{&p.DoubleTimePay},
		decScan{&p.MealBreakPenalty}, decScan{&p.RestBreakPenalty},
		decScan{&p.Bonus}, decScan{&p.Commission}, decScan{&p.OtherEarnings},
		decScan{&p.GrossPay},
		decScan{&p.Deductions.FederalTax}, decScan{&p.Deductions.StateTax},
		decScan{&p.Deductions.SocialSecurity}, decScan{&p.Deductions.Medicare},
		decScan{&p.Deductions.HealthInsurance}, decScan{&p.Deductions.Retirement401k},
		decScan{&p.Deductions.Other},
		decScan{&p.TotalDeductions}, decScan{&p.NetPay},
		&p.CaliforniaCompliant, &p.FLSACompliant, &notes, &createdAt, &updatedAt)
	if err != nil {
		return p, err
	}

	p.ID = payroll.PayslipID(id)
	p.EmployeeID = payroll.EmployeeID(employeeID)
	p.PeriodID = payroll.PeriodID(periodID)
	p.Status = payroll.PayslipStatus(status)
	p.ComplianceNotes = notes.String
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

// =============================================================================
// VIOLATIONS (append-only)
// =============================================================================

func (s *Store) AppendViolation(ctx context.Context, v payroll.Violation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendViolation(ctx, s.db, v)
}

func (s *Store) appendViolation(ctx context.Context, db dbtx, v payroll.Violation) error {
	query := `
		INSERT INTO violations
		(id, type, regulation, severity, description, entity_type, entity_id,
		 employee_id, period_id, financial_impact, occurred_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var occurredOn sql.NullString
	if !v.OccurredOn.IsZero() {
		occurredOn = sql.NullString{String: v.OccurredOn.String(), Valid: true}
	}

	_, err := db.ExecContext(ctx, query,
		string(v.ID),
		string(v.Type),
		v.Regulation,
		string(v.Severity),
		v.Description,
		v.EntityType,
		v.EntityID,
		string(v.EmployeeID),
		string(v.PeriodID),
		v.FinancialImpact.String(),
		occurredOn,
		v.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &compliance.DuplicateError{Resource: "violation", Key: string(v.ID)}
		}
		return fmt.Errorf("failed to append violation: %w", err)
	}
	return nil
}

func (s *Store) ListViolations(ctx context.Context, filter payroll.ViolationFilter) ([]payroll.Violation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listViolations(ctx, s.db, filter)
}

func (s *Store) listViolations(ctx context.Context, db dbtx, filter payroll.ViolationFilter) ([]payroll.Violation, error) {
	query := `SELECT id, type, regulation, severity, description, entity_type, entity_id,
		employee_id, period_id, financial_impact, occurred_on, created_at FROM violations`
	var conds []string
	var args []any
	if filter.PeriodID != nil {
		conds = append(conds, "period_id = ?")
		args = append(args, string(*filter.PeriodID))
	}
	if filter.EmployeeID != nil {
		conds = append(conds, "employee_id = ?")
		args = append(args, string(*filter.EmployeeID))
	}
	if filter.Regulation != nil {
		conds = append(conds, "regulation = ?")
		args = append(args, *filter.Regulation)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query violations: %w", err)
	}
	defer rows.Close()

	var violations []payroll.Violation
	for rows.Next() {
		var (
			v          payroll.Violation
			id         string
			vtype      string
			severity   string
			entityType sql.NullString
			entityID   sql.NullString
			employeeID string
			periodID   string
			occurredOn sql.NullString
			createdAt  string
		)
		err := rows.Scan(&id, &vtype, &v.Regulation, &severity, &v.Description,
			&entityType, &entityID, &employeeID, &periodID,
			decScan{&v.FinancialImpact}, &occurredOn, &createdAt)
		if err != nil {
			return nil, err
		}

		v.ID = payroll.ViolationID(id)
		v.Type = payroll.ViolationType(vtype)
		v.Severity = compliance.Severity(severity)
		v.EntityType = entityType.String
		v.EntityID = entityID.String
		v.EmployeeID = payroll.EmployeeID(employeeID)
		v.PeriodID = payroll.PeriodID(periodID)
		if occurredOn.Valid {
			v.OccurredOn, _ = compliance.ParseWorkDate(occurredOn.String)
		}
		v.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		violations = append(violations, v)
	}
	return violations, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (payroll.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store payroll.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	view := &txView{tx: sqlTx, parent: s}
	if err := fn(view); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txView routes Store calls through an open transaction. The parent's
// lock is already held; helpers take the tx as their executor.
type txView struct {
	tx     *sql.Tx
	parent *Store
}

func (tv *txView) CreateEmployee(ctx context.Context, e payroll.Employee) error {
	return tv.parent.createEmployee(ctx, tv.tx, e)
}

func (tv *txView) GetEmployee(ctx context.Context, id payroll.EmployeeID) (payroll.Employee, error) {
	return tv.parent.getEmployee(ctx, tv.tx, id)
}

func (tv *txView) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	return tv.parent.listEmployees(ctx, tv.tx)
}

func (tv *txView) CreatePeriod(ctx context.Context, p payroll.PayPeriod) error {
	return tv.parent.createPeriod(ctx, tv.tx, p)
}

func (tv *txView) GetPeriod(ctx context.Context, id payroll.PeriodID) (payroll.PayPeriod, error) {
	return tv.parent.getPeriod(ctx, tv.tx, id)
}

func (tv *txView) UpdatePeriod(ctx context.Context, p payroll.PayPeriod) error {
	return tv.parent.updatePeriod(ctx, tv.tx, p)
}

func (tv *txView) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.PayPeriod, error) {
	return tv.parent.listPeriods(ctx, tv.tx, filter)
}

func (tv *txView) CreateTimesheet(ctx context.Context, t payroll.Timesheet) error {
	return tv.parent.createTimesheet(ctx, tv.tx, t)
}

func (tv *txView) GetTimesheet(ctx context.Context, id payroll.TimesheetID) (payroll.Timesheet, error) {
	return tv.parent.getTimesheet(ctx, tv.tx, id)
}

func (tv *txView) UpdateTimesheet(ctx context.Context, t payroll.Timesheet) error {
	return tv.parent.updateTimesheet(ctx, tv.tx, t)
}

func (tv *txView) ListTimesheets(ctx context.Context, filter payroll.TimesheetFilter) ([]payroll.Timesheet, error) {
	return tv.parent.listTimesheets(ctx, tv.tx, filter)
}

func (tv *txView) CreatePayslip(ctx context.Context, p payroll.Payslip) error {
	return tv.parent.createPayslip(ctx, tv.tx, p)
}

func (tv *txView) GetPayslip(ctx context.Context, id payroll.PayslipID) (payroll.Payslip, error) {
	return tv.parent.getPayslip(ctx, tv.tx, id)
}

func (tv *txView) UpdatePayslip(ctx context.Context, p payroll.Payslip) error {
	return tv.parent.updatePayslip(ctx, tv.tx, p)
}

func (tv *txView) ListPayslips(ctx context.Context, filter payroll.PayslipFilter) ([]payroll.Payslip, error) {
	return tv.parent.listPayslips(ctx, tv.tx, filter)
}

func (tv *txView) AppendViolation(ctx context.Context, v payroll.Violation) error {
	return tv.parent.appendViolation(ctx, tv.tx, v)
}

func (tv *txView) ListViolations(ctx context.Context, filter payroll.ViolationFilter) ([]payroll.Violation, error) {
	return tv.parent.listViolations(ctx, tv.tx, filter)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"violations", "payslips", "timesheets", "pay_periods", "employees"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// decScan adapts a decimal field to database/sql scanning. The column
// holds the decimal's String() form.
type decScan struct {
	d *decimal.Decimal
}

func (ds decScan) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*ds.d = decimal.Zero
		return nil
	default:
		return fmt.Errorf("cannot scan %T into decimal", src)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("cannot scan %q into decimal: %w", raw, err)
	}
	*ds.d = d
	return nil
}

// requireRow converts a zero-row UPDATE into NotFoundError.
func requireRow(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &compliance.NotFoundError{Resource: resource, ID: id}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isPairConflict reports whether a uniqueness failure came from the
// (employee_id, period_id) constraint rather than the primary key.
func isPairConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "employee_id")
}
