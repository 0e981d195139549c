package report

import (
	"strings"

	"github.com/noah-isme/backend-tax/internal/taxcalc"
)

// Filename is the suggested name of a downloaded report.
const Filename = "tax_report.txt"

// Text renders b as a plain-text document, one field per line.
func Text(b taxcalc.Breakdown) string {
	cmp := Compare(b)
	var sb strings.Builder
	line := func(label string, amount float64) {
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(FormatINR(amount))
		sb.WriteByte('\n')
	}

	sb.WriteString("\nTax Calculation Report\n\n")

	sb.WriteString("Old Regime:\n")
	line("Standard Deduction", b.Old.StandardDeduction)
	line("Home Loan Interest Deduction", b.Old.HomeLoanInterestDeduction)
	line("Net Taxable Income", b.Old.NetTaxableIncome)
	line("Tax Payable", b.Old.TaxPayable)
	line("Cess", b.Old.Cess)
	line("Surcharge", b.Old.Surcharge)
	line("Rebate", b.Old.Rebate)
	line("Final Tax Payable", b.Old.FinalTaxPayable)

	sb.WriteString("\nNew Regime:\n")
	line("Standard Deduction", b.New.StandardDeduction)
	line("Net Taxable Income", b.New.NetTaxableIncome)
	line("Tax Payable", b.New.TaxPayable)
	line("Cess", b.New.Cess)
	line("Surcharge", b.New.Surcharge)
	line("Rebate (including Cess)", b.New.Rebate)
	line("Final Tax Payable", b.New.FinalTaxPayable)

	sb.WriteString("\nRegime Comparison:\n")
	sb.WriteString("Recommended Regime: ")
	sb.WriteString(regimeTitle(cmp.Recommended))
	sb.WriteByte('\n')
	line("Tax Saving", cmp.Saving)
	return sb.String()
}

func regimeTitle(r taxcalc.Regime) string {
	if r == taxcalc.New {
		return "New"
	}
	return "Old"
}
