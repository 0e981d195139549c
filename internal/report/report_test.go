package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tax/internal/taxcalc"
)

func ungroup(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

func TestCompare(t *testing.T) {
	cmp := Compare(taxcalc.Breakdown{
		Old: taxcalc.Output{FinalTaxPayable: 23_400},
		New: taxcalc.Output{FinalTaxPayable: 0},
	})
	require.Equal(t, taxcalc.New, cmp.Recommended)
	require.Equal(t, 23_400.0, cmp.Saving)

	cmp = Compare(taxcalc.Breakdown{
		Old: taxcalc.Output{FinalTaxPayable: 100},
		New: taxcalc.Output{FinalTaxPayable: 350},
	})
	require.Equal(t, taxcalc.Old, cmp.Recommended)
	require.Equal(t, 250.0, cmp.Saving)
}

func TestCompareTieFavoursOld(t *testing.T) {
	cmp := Compare(taxcalc.Build(taxcalc.Input{GrossIncome: 300_000}))
	require.Equal(t, taxcalc.Old, cmp.Recommended)
	require.Zero(t, cmp.Saving)
}

func TestFormatINR(t *testing.T) {
	require.True(t, strings.HasPrefix(FormatINR(23_400), "₹"))
	require.Equal(t, "₹23400.00", ungroup(FormatINR(23_400)))
	require.Equal(t, "₹0.00", FormatINR(0))
	require.Equal(t, "₹1234567.89", ungroup(FormatINR(1_234_567.891)))
	require.Equal(t, "-₹500.00", FormatINR(-500))
}

func TestText(t *testing.T) {
	b := taxcalc.Build(taxcalc.Input{GrossIncome: 600_000, HomeLoanInterest: 250_000})
	doc := ungroup(Text(b))
	lines := strings.Split(strings.TrimSpace(doc), "\n")

	require.Equal(t, "Tax Calculation Report", lines[0])
	require.Contains(t, doc, "Old Regime:\nStandard Deduction: ₹50000.00\nHome Loan Interest Deduction: ₹200000.00\n")
	require.Contains(t, doc, "New Regime:\nStandard Deduction: ₹75000.00\nNet Taxable Income: ₹525000.00\n")
	require.Contains(t, doc, "Rebate (including Cess): ")
	require.Contains(t, doc, "Recommended Regime: Old\nTax Saving: ₹0.00\n")

	labels := make([]string, 0, len(lines))
	for _, l := range lines {
		if idx := strings.Index(l, ":"); idx > 0 {
			labels = append(labels, l[:idx])
		}
	}
	require.Equal(t, []string{
		"Old Regime",
		"Standard Deduction", "Home Loan Interest Deduction", "Net Taxable Income", "Tax Payable",
		"Cess", "Surcharge", "Rebate", "Final Tax Payable",
		"New Regime",
		"Standard Deduction", "Net Taxable Income", "Tax Payable",
		"Cess", "Surcharge", "Rebate (including Cess)", "Final Tax Payable",
		"Regime Comparison",
		"Recommended Regime", "Tax Saving",
	}, labels)
}
