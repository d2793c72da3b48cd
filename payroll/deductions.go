/*
deductions.go - Pluggable deduction schedule

PURPOSE:
  Computes everything withheld from gross pay. The statutory rates here
  are flat placeholders, not real tax tables, so the schedule is an
  interface: callers who need jurisdiction-accurate withholding swap in
  their own implementation without touching the calculator.

SEE ALSO:
  - calculator.go: applies the schedule after gross pay is known
  - factory/config.go: builds a FlatRateSchedule from configuration
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// DeductionPolicy turns gross pay plus caller-supplied benefit
// withholdings into an itemized breakdown. Implementations must be
// pure: same inputs, same breakdown.
type DeductionPolicy interface {
	Compute(grossPay decimal.Decimal, custom CustomDeductions) DeductionBreakdown
}

// FlatRateSchedule withholds fixed percentages of gross pay. This is a
// placeholder tax model; the rates approximate nothing in particular.
type FlatRateSchedule struct {
	FederalTaxRate     decimal.Decimal
	StateTaxRate       decimal.Decimal
	SocialSecurityRate decimal.Decimal
	MedicareRate       decimal.Decimal
}

// DefaultFlatRates returns the stand-in withholding percentages.
func DefaultFlatRates() FlatRateSchedule {
	return FlatRateSchedule{
		FederalTaxRate:     decimal.NewFromFloat(0.12),
		StateTaxRate:       decimal.NewFromFloat(0.05),
		SocialSecurityRate: decimal.NewFromFloat(0.062),
		MedicareRate:       decimal.NewFromFloat(0.0145),
	}
}

// Compute applies each rate to gross pay, rounds every line to cents,
// and carries the custom withholdings through unchanged.
func (s FlatRateSchedule) Compute(grossPay decimal.Decimal, custom CustomDeductions) DeductionBreakdown {
	return DeductionBreakdown{
		FederalTax:      round2(grossPay.Mul(s.FederalTaxRate)),
		StateTax:        round2(grossPay.Mul(s.StateTaxRate)),
		SocialSecurity:  round2(grossPay.Mul(s.SocialSecurityRate)),
		Medicare:        round2(grossPay.Mul(s.MedicareRate)),
		HealthInsurance: round2(custom.HealthInsurance),
		Retirement401k:  round2(custom.Retirement401k),
		Other:           round2(custom.Other),
	}
}
