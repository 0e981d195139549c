package taxcalc

import (
	"fmt"
	"slices"
	"strings"
)

// Regime identifies one of the two mutually exclusive rule-sets.
type Regime int

const (
	// Old is the regime with exemptions and chapter VI-A deductions.
	Old Regime = iota + 1
	// New is the concessional-slab regime with only the standard deduction.
	New
)

// Regimes lists every supported regime in presentation order.
func Regimes() []Regime {
	return []Regime{Old, New}
}

// String returns the lowercase regime tag.
func (r Regime) String() string {
	switch r {
	case Old:
		return "old"
	case New:
		return "new"
	default:
		return fmt.Sprintf("regime(%d)", int(r))
	}
}

// Valid reports whether r is one of the declared regimes.
func (r Regime) Valid() bool {
	return r == Old || r == New
}

// ParseRegime resolves a tag such as "old" or "NEW".
func ParseRegime(value string) (Regime, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "old":
		return Old, nil
	case "new":
		return New, nil
	default:
		return 0, fmt.Errorf("unknown regime %q", value)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Regime) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("unknown regime %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Regime) UnmarshalText(text []byte) error {
	parsed, err := ParseRegime(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Bracket is a slab taxed at a marginal rate. A zero Width means the slab is unbounded.
type Bracket struct {
	Lower float64 `json:"lower"`
	Width float64 `json:"width,omitempty"`
	Rate  float64 `json:"rate"`
}

// Tax returns the contribution of this slab for the given income.
func (b Bracket) Tax(income float64) float64 {
	if income <= b.Lower {
		return 0
	}
	taxable := income - b.Lower
	if b.Width > 0 && taxable > b.Width {
		taxable = b.Width
	}
	return taxable * b.Rate
}

// DeductionKind names a step that reduces the running taxable income.
type DeductionKind string

const (
	DeductionStandard         DeductionKind = "standard_deduction"
	DeductionHRA              DeductionKind = "hra_exemption"
	Deduction80C              DeductionKind = "section_80c"
	Deduction80CCD1B          DeductionKind = "section_80ccd_1b"
	Deduction80D              DeductionKind = "section_80d"
	DeductionHomeLoanInterest DeductionKind = "home_loan_interest"
	DeductionOther            DeductionKind = "other_deductions"
)

// Deduction is one ordered step of a regime's deduction plan.
type Deduction struct {
	Kind DeductionKind `json:"kind"`
	// Cap limits the declared amount; zero leaves it uncapped.
	Cap float64 `json:"cap,omitempty"`
	// Clamp floors the running total at zero once this step is applied.
	Clamp bool `json:"clamp,omitempty"`
}

// Rules carries everything that differs between regimes.
type Rules struct {
	Regime            Regime      `json:"regime"`
	StandardDeduction float64     `json:"standardDeduction"`
	Brackets          []Bracket   `json:"brackets"`
	Deductions        []Deduction `json:"deductions"`
	RebateThreshold   float64     `json:"rebateThreshold"`
	RebateCap         float64     `json:"rebateCap"`
}

// Deduction caps applied by the engine.
const (
	Cap80C              = 150_000
	Cap80CCD1B          = 50_000
	Cap80D              = 75_000
	CapHomeLoanInterest = 200_000
)

var oldRules = Rules{
	Regime:            Old,
	StandardDeduction: 50_000,
	Brackets: []Bracket{
		{Lower: 1_000_000, Rate: 0.30},
		{Lower: 500_000, Width: 500_000, Rate: 0.20},
		{Lower: 250_000, Width: 250_000, Rate: 0.05},
	},
	Deductions: []Deduction{
		{Kind: DeductionStandard},
		{Kind: DeductionHRA, Clamp: true},
		{Kind: Deduction80C, Cap: Cap80C},
		{Kind: Deduction80CCD1B, Cap: Cap80CCD1B},
		{Kind: Deduction80D, Cap: Cap80D},
		{Kind: DeductionHomeLoanInterest, Cap: CapHomeLoanInterest},
		{Kind: DeductionOther},
	},
	RebateThreshold: 500_000,
	RebateCap:       12_500,
}

var newRules = Rules{
	Regime:            New,
	StandardDeduction: 75_000,
	Brackets: []Bracket{
		{Lower: 2_400_000, Rate: 0.30},
		{Lower: 2_000_000, Width: 400_000, Rate: 0.25},
		{Lower: 1_600_000, Width: 400_000, Rate: 0.20},
		{Lower: 1_200_000, Width: 400_000, Rate: 0.15},
		{Lower: 800_000, Width: 400_000, Rate: 0.10},
		{Lower: 400_000, Width: 400_000, Rate: 0.05},
	},
	Deductions: []Deduction{
		{Kind: DeductionStandard},
	},
	RebateThreshold: 1_200_000,
	RebateCap:       80_000,
}

// Rules returns a copy of the regime's rule table. Unknown regimes yield
// an empty table, which taxes nothing.
func (r Regime) Rules() Rules {
	var src Rules
	switch r {
	case Old:
		src = oldRules
	case New:
		src = newRules
	default:
		return Rules{Regime: r}
	}
	src.Brackets = slices.Clone(src.Brackets)
	src.Deductions = slices.Clone(src.Deductions)
	return src
}

// Allows reports whether the plan includes a deduction of the given kind.
func (r Rules) Allows(kind DeductionKind) bool {
	return slices.ContainsFunc(r.Deductions, func(d Deduction) bool { return d.Kind == kind })
}
