// Package store provides Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/payroll-engine/compliance"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	employees  map[payroll.EmployeeID]payroll.Employee
	periods    map[payroll.PeriodID]payroll.PayPeriod
	timesheets map[payroll.TimesheetID]payroll.Timesheet
	payslips   map[payroll.PayslipID]payroll.Payslip
	violations []payroll.Violation
}

func NewMemory() *Memory {
	return &Memory{
		employees:  make(map[payroll.EmployeeID]payroll.Employee),
		periods:    make(map[payroll.PeriodID]payroll.PayPeriod),
		timesheets: make(map[payroll.TimesheetID]payroll.Timesheet),
		payslips:   make(map[payroll.PayslipID]payroll.Payslip),
	}
}

// -----------------------------------------------------------------------------
// Employees
// -----------------------------------------------------------------------------

func (m *Memory) CreateEmployee(_ context.Context, e payroll.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createEmployeeLocked(e)
}

func (m *Memory) createEmployeeLocked(e payroll.Employee) error {
	if _, ok := m.employees[e.ID]; ok {
		return &compliance.DuplicateError{Resource: "employee", Key: string(e.ID)}
	}
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id payroll.EmployeeID) (payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getEmployeeLocked(id)
}

func (m *Memory) getEmployeeLocked(id payroll.EmployeeID) (payroll.Employee, error) {
	e, ok := m.employees[id]
	if !ok {
		return payroll.Employee{}, &compliance.NotFoundError{Resource: "employee", ID: string(id)}
	}
	return e, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listEmployeesLocked()
}

func (m *Memory) listEmployeesLocked() ([]payroll.Employee, error) {
	result := make([]payroll.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// -----------------------------------------------------------------------------
// Pay periods
// -----------------------------------------------------------------------------

func (m *Memory) CreatePeriod(_ context.Context, p payroll.PayPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createPeriodLocked(p)
}

func (m *Memory) createPeriodLocked(p payroll.PayPeriod) error {
	if _, ok := m.periods[p.ID]; ok {
		return &compliance.DuplicateError{Resource: "pay period", Key: string(p.ID)}
	}
	m.periods[p.ID] = p
	return nil
}

func (m *Memory) GetPeriod(_ context.Context, id payroll.PeriodID) (payroll.PayPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getPeriodLocked(id)
}

func (m *Memory) getPeriodLocked(id payroll.PeriodID) (payroll.PayPeriod, error) {
	p, ok := m.periods[id]
	if !ok {
		return payroll.PayPeriod{}, &compliance.NotFoundError{Resource: "pay period", ID: string(id)}
	}
	return p, nil
}

func (m *Memory) UpdatePeriod(_ context.Context, p payroll.PayPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updatePeriodLocked(p)
}

func (m *Memory) updatePeriodLocked(p payroll.PayPeriod) error {
	if _, ok := m.periods[p.ID]; !ok {
		return &compliance.NotFoundError{Resource: "pay period", ID: string(p.ID)}
	}
	m.periods[p.ID] = p
	return nil
}

func (m *Memory) ListPeriods(_ context.Context, filter payroll.PeriodFilter) ([]payroll.PayPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listPeriodsLocked(filter)
}

func (m *Memory) listPeriodsLocked(filter payroll.PeriodFilter) ([]payroll.PayPeriod, error) {
	var result []payroll.PayPeriod
	for _, p := range m.periods {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].StartDate.Before(result[j].StartDate)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// -----------------------------------------------------------------------------
// Timesheets
// -----------------------------------------------------------------------------

func (m *Memory) CreateTimesheet(_ context.Context, t payroll.Timesheet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createTimesheetLocked(t)
}

func (m *Memory) createTimesheetLocked(t payroll.Timesheet) error {
	if _, ok := m.timesheets[t.ID]; ok {
		return &compliance.DuplicateError{Resource: "timesheet", Key: string(t.ID)}
	}
	for _, existing := range m.timesheets {
		if existing.EmployeeID == t.EmployeeID && existing.PeriodID == t.PeriodID {
			return &compliance.DuplicateError{
				Resource: "timesheet",
				Key:      fmt.Sprintf("%s/%s", t.EmployeeID, t.PeriodID),
			}
		}
	}
	m.timesheets[t.ID] = t
	return nil
}

func (m *Memory) GetTimesheet(_ context.Context, id payroll.TimesheetID) (payroll.Timesheet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getTimesheetLocked(id)
}

func (m *Memory) getTimesheetLocked(id payroll.TimesheetID) (payroll.Timesheet, error) {
	t, ok := m.timesheets[id]
	if !ok {
		return payroll.Timesheet{}, &compliance.NotFoundError{Resource: "timesheet", ID: string(id)}
	}
	return t, nil
}

func (m *Memory) UpdateTimesheet(_ context.Context, t payroll.Timesheet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateTimesheetLocked(t)
}

func (m *Memory) updateTimesheetLocked(t payroll.Timesheet) error {
	if _, ok := m.timesheets[t.ID]; !ok {
		return &compliance.NotFoundError{Resource: "timesheet", ID: string(t.ID)}
	}
	m.timesheets[t.ID] = t
	return nil
}

func (m *Memory) ListTimesheets(_ context.Context, filter payroll.TimesheetFilter) ([]payroll.Timesheet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listTimesheetsLocked(filter)
}

func (m *Memory) listTimesheetsLocked(filter payroll.TimesheetFilter) ([]payroll.Timesheet, error) {
	var result []payroll.Timesheet
	for _, t := range m.timesheets {
		if filter.PeriodID != nil && t.PeriodID != *filter.PeriodID {
			continue
		}
		if filter.EmployeeID != nil && t.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].EmployeeID != result[j].EmployeeID {
			return result[i].EmployeeID < result[j].EmployeeID
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// -----------------------------------------------------------------------------
// Payslips
// -----------------------------------------------------------------------------

func (m *Memory) CreatePayslip(_ context.Context, p payroll.Payslip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createPayslipLocked(p)
}

func (m *Memory) createPayslipLocked(p payroll.Payslip) error {
	if _, ok := m.payslips[p.ID]; ok {
		return &compliance.DuplicateError{Resource: "payslip", Key: string(p.ID)}
	}
	// One live payslip per employee/period.
	for _, existing := range m.payslips {
		if existing.EmployeeID == p.EmployeeID && existing.PeriodID == p.PeriodID && existing.Status != payroll.PayslipVoided {
			return &compliance.DuplicateError{
				Resource: "payslip",
				Key:      fmt.Sprintf("%s/%s", p.EmployeeID, p.PeriodID),
			}
		}
	}
	m.payslips[p.ID] = p
	return nil
}

func (m *Memory) GetPayslip(_ context.Context, id payroll.PayslipID) (payroll.Payslip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getPayslipLocked(id)
}

func (m *Memory) getPayslipLocked(id payroll.PayslipID) (payroll.Payslip, error) {
	p, ok := m.payslips[id]
	if !ok {
		return payroll.Payslip{}, &compliance.NotFoundError{Resource: "payslip", ID: string(id)}
	}
	return p, nil
}

func (m *Memory) UpdatePayslip(_ context.Context, p payroll.Payslip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updatePayslipLocked(p)
}

func (m *Memory) updatePayslipLocked(p payroll.Payslip) error {
	if _, ok := m.payslips[p.ID]; !ok {
		return &compliance.NotFoundError{Resource: "payslip", ID: string(p.ID)}
	}
	m.payslips[p.ID] = p
	return nil
}

func (m *Memory) ListPayslips(_ context.Context, filter payroll.PayslipFilter) ([]payroll.Payslip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listPayslipsLocked(filter)
}

func (m *Memory) listPayslipsLocked(filter payroll.PayslipFilter) ([]payroll.Payslip, error) {
	var result []payroll.Payslip
	for _, p := range m.payslips {
		if filter.PeriodID != nil && p.PeriodID != *filter.PeriodID {
			continue
		}
		if filter.EmployeeID != nil && p.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].EmployeeID != result[j].EmployeeID {
			return result[i].EmployeeID < result[j].EmployeeID
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// -----------------------------------------------------------------------------
// Violations (append-only)
// -----------------------------------------------------------------------------

func (m *Memory) AppendViolation(_ context.Context, v payroll.Violation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendViolationLocked(v)
}

func (m *Memory) appendViolationLocked(v payroll.Violation) error {
	m.violations = append(m.violations, v)
	return nil
}

func (m *Memory) ListViolations(_ context.Context, filter payroll.ViolationFilter) ([]payroll.Violation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listViolationsLocked(filter)
}

func (m *Memory) listViolationsLocked(filter payroll.ViolationFilter) ([]payroll.Violation, error) {
	var result []payroll.Violation
	for _, v := range m.violations {
		if filter.PeriodID != nil && v.PeriodID != *filter.PeriodID {
			continue
		}
		if filter.EmployeeID != nil && v.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Regulation != nil && v.Regulation != *filter.Regulation {
			continue
		}
		result = append(result, v)
	}
	return result, nil
}

// -----------------------------------------------------------------------------
// Reset
// -----------------------------------------------------------------------------

// Reset clears all data. Used by scenario loading.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = make(map[payroll.EmployeeID]payroll.Employee)
	m.periods = make(map[payroll.PeriodID]payroll.PayPeriod)
	m.timesheets = make(map[payroll.TimesheetID]payroll.Timesheet)
	m.payslips = make(map[payroll.PayslipID]payroll.Payslip)
	m.violations = nil
	return nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
func (tm *TxMemory) WithTx(_ context.Context, fn func(payroll.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()

	if err := fn(&txMemoryView{parent: tm.Memory}); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

func (tm *TxMemory) snapshot() memorySnapshot {
	s := memorySnapshot{
		employees:  make(map[payroll.EmployeeID]payroll.Employee, len(tm.employees)),
		periods:    make(map[payroll.PeriodID]payroll.PayPeriod, len(tm.periods)),
		timesheets: make(map[payroll.TimesheetID]payroll.Timesheet, len(tm.timesheets)),
		payslips:   make(map[payroll.PayslipID]payroll.Payslip, len(tm.payslips)),
		violations: append([]payroll.Violation{}, tm.violations...),
	}
	for k, v := range tm.employees {
		s.employees[k] = v
	}
	for k, v := range tm.periods {
		s.periods[k] = v
	}
	for k, v := range tm.timesheets {
		s.timesheets[k] = v
	}
	for k, v := range tm.payslips {
		s.payslips[k] = v
	}
	return s
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.employees = s.employees
	tm.periods = s.periods
	tm.timesheets = s.timesheets
	tm.payslips = s.payslips
	tm.violations = s.violations
}

type memorySnapshot struct {
	employees  map[payroll.EmployeeID]payroll.Employee
	periods    map[payroll.PeriodID]payroll.PayPeriod
	timesheets map[payroll.TimesheetID]payroll.Timesheet
	payslips   map[payroll.PayslipID]payroll.Payslip
	violations []payroll.Violation
}

// txMemoryView routes Store calls to the already-locked parent.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) CreateEmployee(_ context.Context, e payroll.Employee) error {
	return tv.parent.createEmployeeLocked(e)
}

func (tv *txMemoryView) GetEmployee(_ context.Context, id payroll.EmployeeID) (payroll.Employee, error) {
	return tv.parent.getEmployeeLocked(id)
}

func (tv *txMemoryView) ListEmployees(_ context.Context) ([]payroll.Employee, error) {
	return tv.parent.listEmployeesLocked()
}

func (tv *txMemoryView) CreatePeriod(_ context.Context, p payroll.PayPeriod) error {
	return tv.parent.createPeriodLocked(p)
}

func (tv *txMemoryView) GetPeriod(_ context.Context, id payroll.PeriodID) (payroll.PayPeriod, error) {
	return tv.parent.getPeriodLocked(id)
}

func (tv *txMemoryView) UpdatePeriod(_ context.Context, p payroll.PayPeriod) error {
	return tv.parent.updatePeriodLocked(p)
}

func (tv *txMemoryView) ListPeriods(_ context.Context, filter payroll.PeriodFilter) ([]payroll.PayPeriod, error) {
	return tv.parent.listPeriodsLocked(filter)
}

func (tv *txMemoryView) CreateTimesheet(_ context.Context, t payroll.Timesheet) error {
	return tv.parent.createTimesheetLocked(t)
}

func (tv *txMemoryView) GetTimesheet(_ context.Context, id payroll.TimesheetID) (payroll.Timesheet, error) {
	return tv.parent.getTimesheetLocked(id)
}

func (tv *txMemoryView) UpdateTimesheet(_ context.Context, t payroll.Timesheet) error {
	return tv.parent.updateTimesheetLocked(t)
}

func (tv *txMemoryView) ListTimesheets(_ context.Context, filter payroll.TimesheetFilter) ([]payroll.Timesheet, error) {
	return tv.parent.listTimesheetsLocked(filter)
}

func (tv *txMemoryView) CreatePayslip(_ context.Context, p payroll.Payslip) error {
	return tv.parent.createPayslipLocked(p)
}

func (tv *txMemoryView) GetPayslip(_ context.Context, id payroll.PayslipID) (payroll.Payslip, error) {
	return tv.parent.getPayslipLocked(id)
}

func (tv *txMemoryView) UpdatePayslip(_ context.Context, p payroll.Payslip) error {
	return tv.parent.updatePayslipLocked(p)
}

func (tv *txMemoryView) ListPayslips(_ context.Context, filter payroll.PayslipFilter) ([]payroll.Payslip, error) {
	return tv.parent.listPayslipsLocked(filter)
}

func (tv *txMemoryView) AppendViolation(_ context.Context, v payroll.Violation) error {
	return tv.parent.appendViolationLocked(v)
}

func (tv *txMemoryView) ListViolations(_ context.Context, filter payroll.ViolationFilter) ([]payroll.Violation, error) {
	return tv.parent.listViolationsLocked(filter)
}
