/*
sink.go - Violation recording

PURPOSE:
  Every compliance finding the calculator produces is forwarded to a
  ViolationSink as an immutable record. Sinks are fire-and-forget from
  the calculator's point of view: a sink failure is logged and the
  calculation continues, because a payslip must never be blocked by a
  reporting problem.

SEE ALSO:
  - calculator.go: the producer
  - store.go: StoreSink persists findings through the Store
*/
package payroll

import (
	"context"
	"log"
)

// ViolationSink receives compliance findings as they are detected.
// Implementations must tolerate duplicate delivery: the calculator is
// deterministic, so recalculating produces identical findings.
type ViolationSink interface {
	Record(ctx context.Context, v Violation) error
}

// LogSink writes each finding to the process log. Useful as a default
// when no persistence is wired, and as a companion sink in tests.
type LogSink struct{}

func (LogSink) Record(_ context.Context, v Violation) error {
	log.Printf("violation [%s] %s %s: %s (impact $%s)",
		v.Severity, v.Regulation, v.EmployeeID, v.Description, v.FinancialImpact.StringFixed(2))
	return nil
}

// StoreSink persists findings through the Store's append-only log.
type StoreSink struct {
	Store Store
}

func (s StoreSink) Record(ctx context.Context, v Violation) error {
	return s.Store.AppendViolation(ctx, v)
}
