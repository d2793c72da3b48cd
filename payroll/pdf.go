/*
pdf.go - Payslip PDF rendering

PURPOSE:
  Renders a payslip as a printable A4 document: employee header,
  itemized earnings and deductions, net pay, and any compliance notes.
  Returns raw PDF bytes; the HTTP layer decides how to serve them.
*/
package payroll

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// RenderPayslipPDF produces the printable form of a payslip.
func RenderPayslipPDF(slip Payslip, emp Employee, period PayPeriod) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", emp.Name, emp.ID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s, payable %s", period.StartDate, period.EndDate, period.PayDate))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", slip.Status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Earnings")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	moneyLine(pdf, fmt.Sprintf("Regular (%s hrs)", slip.RegularHours), slip.RegularPay)
	moneyLine(pdf, fmt.Sprintf("Overtime 1.5x (%s hrs)", slip.OvertimeHours), slip.OvertimePay)
	moneyLine(pdf, fmt.Sprintf("Double time 2x (%s hrs)", slip.DoubleTimeHours), slip.DoubleTimePay)
	if slip.MealBreakPenalty.IsPositive() {
		moneyLine(pdf, "Meal break premium", slip.MealBreakPenalty)
	}
	if slip.RestBreakPenalty.IsPositive() {
		moneyLine(pdf, "Rest break premium", slip.RestBreakPenalty)
	}
	if slip.Bonus.IsPositive() {
		moneyLine(pdf, "Bonus", slip.Bonus)
	}
	if slip.Commission.IsPositive() {
		moneyLine(pdf, "Commission", slip.Commission)
	}
	if slip.OtherEarnings.IsPositive() {
		moneyLine(pdf, "Other earnings", slip.OtherEarnings)
	}
	pdf.SetFont("Helvetica", "B", 11)
	moneyLine(pdf, "Gross pay", slip.GrossPay)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Deductions")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	moneyLine(pdf, "Federal tax", slip.Deductions.FederalTax)
	moneyLine(pdf, "State tax", slip.Deductions.StateTax)
	moneyLine(pdf, "Social security", slip.Deductions.SocialSecurity)
	moneyLine(pdf, "Medicare", slip.Deductions.Medicare)
	if slip.Deductions.HealthInsurance.IsPositive() {
		moneyLine(pdf, "Health insurance", slip.Deductions.HealthInsurance)
	}
	if slip.Deductions.Retirement401k.IsPositive() {
		moneyLine(pdf, "401(k)", slip.Deductions.Retirement401k)
	}
	if slip.Deductions.Other.IsPositive() {
		moneyLine(pdf, "Other deductions", slip.Deductions.Other)
	}
	pdf.SetFont("Helvetica", "B", 11)
	moneyLine(pdf, "Total deductions", slip.TotalDeductions)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	moneyLine(pdf, "Net pay", slip.NetPay)

	if slip.ComplianceNotes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Compliance notes")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, slip.ComplianceNotes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func moneyLine(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.Cell(120, 6, label)
	pdf.Cell(0, 6, "$"+amount.StringFixed(2))
	pdf.Ln(6)
}
