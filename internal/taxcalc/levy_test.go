package taxcalc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlabTaxZeroBelowFirstThreshold(t *testing.T) {
	for _, income := range []float64{0, 1, 100_000, 249_999.99, 250_000} {
		require.Zero(t, SlabTax(income, Old), "old regime income %v", income)
	}
	for _, income := range []float64{0, 250_001, 399_999.5, 400_000} {
		require.Zero(t, SlabTax(income, New), "new regime income %v", income)
	}
}

func TestSlabTaxMarginal(t *testing.T) {
	cases := []struct {
		name   string
		regime Regime
		income float64
		want   float64
	}{
		{"old first slab", Old, 300_000, 2_500},
		{"old second slab", Old, 550_000, 22_500},
		{"old top slab", Old, 1_500_000, 262_500},
		{"new second slab", New, 925_000, 32_500},
		{"new all slabs", New, 3_000_000, 480_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, SlabTax(tc.income, tc.regime), 1e-6)
		})
	}
}

func TestSlabTaxMonotonic(t *testing.T) {
	for _, regime := range Regimes() {
		prev := -1.0
		for income := 0.0; income <= 6_000_000; income += 2_500 {
			tax := SlabTax(income, regime)
			require.GreaterOrEqual(t, tax, prev, "%s regime at %v", regime, income)
			prev = tax
		}
	}
}

func TestSlabTaxUnknownRegime(t *testing.T) {
	require.Zero(t, SlabTax(10_000_000, Regime(0)))
}

func TestCess(t *testing.T) {
	require.Zero(t, Cess(0))
	for _, tax := range []float64{1, 22_500, 32_500, 1_000_000} {
		require.InDelta(t, tax*0.04, Cess(tax), 1e-9)
	}
}

func TestSurchargeTiersExclusive(t *testing.T) {
	cases := []struct {
		income float64
		rate   float64
	}{
		{0, 0},
		{5_000_000, 0},
		{5_000_001, 0.10},
		{10_000_000, 0.10},
		{10_000_001, 0.15},
		{20_000_000, 0.15},
		{20_000_001, 0.25},
		{50_000_000, 0.25},
		{50_000_001, 0.37},
	}
	for _, tc := range cases {
		require.Equal(t, tc.rate, SurchargeRate(tc.income), "income %v", tc.income)
		require.InDelta(t, 1_000*tc.rate, Surcharge(tc.income, 1_000), 1e-9, "income %v", tc.income)
	}
}

func TestRebate(t *testing.T) {
	require.InDelta(t, 11_180, Rebate(465_000, Old, 10_750, 430), 1e-9)
	require.Equal(t, 12_500.0, Rebate(500_000, Old, 12_500, 500))
	require.Zero(t, Rebate(500_001, Old, 12_500, 500))
	require.InDelta(t, 33_800, Rebate(925_000, New, 32_500, 1_300), 1e-9)
	require.Equal(t, 80_000.0, Rebate(1_200_000, New, 80_000, 3_200))
	require.Zero(t, Rebate(1_200_001, New, 80_000, 3_200))
	require.Zero(t, Rebate(250_000, Old, 0, 0))
}

func TestRebateNeverExceedsCapOrDue(t *testing.T) {
	for _, regime := range Regimes() {
		caps := regime.Rules().RebateCap
		for income := 0.0; income <= 1_500_000; income += 10_000 {
			tax := SlabTax(income, regime)
			cess := Cess(tax)
			rebate := Rebate(income, regime, tax, cess)
			require.LessOrEqual(t, rebate, caps)
			require.LessOrEqual(t, rebate, tax+cess)
			require.GreaterOrEqual(t, rebate, 0.0)
		}
	}
}
