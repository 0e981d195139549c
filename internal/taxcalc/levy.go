package taxcalc

// CessRate is the health and education cess levied on base tax.
const CessRate = 0.04

// SurchargeTier applies Rate to base tax when income strictly exceeds Above.
type SurchargeTier struct {
	Above float64 `json:"above"`
	Rate  float64 `json:"rate"`
}

// surchargeTiers is ordered highest-first; the first match wins.
var surchargeTiers = []SurchargeTier{
	{Above: 50_000_000, Rate: 0.37},
	{Above: 20_000_000, Rate: 0.25},
	{Above: 10_000_000, Rate: 0.15},
	{Above: 5_000_000, Rate: 0.10},
}

// SurchargeTiers returns the surcharge schedule, highest tier first.
func SurchargeTiers() []SurchargeTier {
	out := make([]SurchargeTier, len(surchargeTiers))
	copy(out, surchargeTiers)
	return out
}

// SlabTax computes base tax on income using the regime's marginal brackets.
func SlabTax(income float64, regime Regime) float64 {
	var tax float64
	for _, b := range regime.Rules().Brackets {
		tax += b.Tax(income)
	}
	return tax
}

// Cess returns the flat cess on tax.
func Cess(tax float64) float64 {
	return tax * CessRate
}

// SurchargeRate returns the single rate applicable to income, or zero.
func SurchargeRate(income float64) float64 {
	for _, tier := range surchargeTiers {
		if income > tier.Above {
			return tier.Rate
		}
	}
	return 0
}

// Surcharge computes the income-tiered surcharge on tax.
func Surcharge(income, tax float64) float64 {
	rate := SurchargeRate(income)
	if rate == 0 {
		return 0
	}
	return tax * rate
}

// Rebate returns the amount forgiven from tax plus cess for low incomes.
func Rebate(income float64, regime Regime, tax, cess float64) float64 {
	rules := regime.Rules()
	if rules.RebateCap <= 0 || income > rules.RebateThreshold {
		return 0
	}
	due := tax + cess
	if due < rules.RebateCap {
		return due
	}
	return rules.RebateCap
}
