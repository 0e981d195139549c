package report

import (
	"math"

	"github.com/noah-isme/backend-tax/internal/taxcalc"
)

// Comparison is the recommendation derived from a breakdown.
type Comparison struct {
	Recommended taxcalc.Regime `json:"recommendedRegime"`
	Saving      float64        `json:"taxSaving"`
}

// Compare recommends the regime with the lower final tax. Ties favour the old regime.
func Compare(b taxcalc.Breakdown) Comparison {
	recommended := taxcalc.Old
	if b.New.FinalTaxPayable < b.Old.FinalTaxPayable {
		recommended = taxcalc.New
	}
	return Comparison{
		Recommended: recommended,
		Saving:      math.Abs(b.Old.FinalTaxPayable - b.New.FinalTaxPayable),
	}
}
