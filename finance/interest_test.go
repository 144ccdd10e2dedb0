package finance_test

import (
	"fmt"
	"testing"

	"github.com/kobofin/microfin/finance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// assertNaira compares a decimal against an expected whole-naira value.
// Optional context is a format string plus args, prepended to the failure
// message.
func assertNaira(t *testing.T, want int64, got decimal.Decimal, context ...any) {
	t.Helper()
	msg := fmt.Sprintf("want N%d, got N%s", want, got.String())
	if len(context) > 0 {
		if format, ok := context[0].(string); ok {
			msg = fmt.Sprintf(format, context[1:]...) + ": " + msg
		}
	}
	assert.True(t, got.Equal(decimal.NewFromInt(want)), msg)
}

// =============================================================================
// INTEREST FORMULA
// =============================================================================

func TestCalculateInterest_BaseUnitMultiplier(t *testing.T) {
	// N10,000 of principal carries N1,800 of interest.
	cases := []struct {
		name      string
		principal int64
		interest  int64
	}{
		{"one base unit", 10_000, 1_800},
		{"minimum loan", 5_000, 900},
		{"mid-range", 50_000, 9_000},
		{"maximum loan", 1_000_000, 180_000},
		{"not a multiple of base unit", 12_345, 2_222}, // 12345 * 0.18 = 2222.1
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := finance.CalculateInterest(finance.Naira(tc.principal))
			assertNaira(t, tc.interest, got)
		})
	}
}

func TestCalculateInterest_MatchesDirectPercentage(t *testing.T) {
	// The base-unit formula must behave identically to principal * 0.18
	// rounded to the nearest whole naira.
	rate := decimal.NewFromFloat(0.18)
	for _, principal := range []int64{5_000, 7_777, 30_001, 99_999, 250_000, 1_000_000} {
		p := finance.Naira(principal)
		want := p.Mul(rate).Round(0)
		got := finance.CalculateInterest(p)
		assert.True(t, got.Equal(want), "principal %d: want %s got %s", principal, want, got)
	}
}

func TestCalculateInterest_NonPositivePrincipal_DegradesToZero(t *testing.T) {
	// Calculators are total: out-of-band input yields zero, never an error.
	assertNaira(t, 0, finance.CalculateInterest(finance.Naira(0)))
	assertNaira(t, 0, finance.CalculateInterest(finance.Naira(-100)))
}

func TestCalculateTotalRepayment(t *testing.T) {
	for _, principal := range []int64{5_000, 10_000, 50_000, 123_456, 1_000_000} {
		p := finance.Naira(principal)
		want := p.Add(finance.CalculateInterest(p))
		assert.True(t, finance.CalculateTotalRepayment(p).Equal(want), "principal %d", principal)
	}
}

func TestCalculateEffectiveRate(t *testing.T) {
	// Exactly 18% whenever principal is a multiple of the base unit.
	rate := finance.CalculateEffectiveRate(finance.Naira(10_000))
	assert.True(t, rate.Equal(decimal.NewFromInt(18)), "got %s", rate)

	assertNaira(t, 0, finance.CalculateEffectiveRate(finance.Naira(0)))
	assertNaira(t, 0, finance.CalculateEffectiveRate(finance.Naira(-5_000)))
}

// =============================================================================
// DISPLAY BREAKDOWN
// =============================================================================

func TestDescribeBreakdown(t *testing.T) {
	// GIVEN: A N50,000 application quoted over 10 installments
	// WHEN: The breakdown is assembled
	// THEN: Every figure derives from the shared formulas

	b := finance.DescribeBreakdown(finance.Naira(50_000), 10)

	assertNaira(t, 50_000, b.Principal)
	assertNaira(t, 9_000, b.Interest)
	assertNaira(t, 59_000, b.Total)
	assertNaira(t, 5_900, b.PeriodPayment)
	assert.True(t, b.Rate.Equal(decimal.NewFromInt(18)))
	assert.NotEmpty(t, b.Summary)
}

func TestDescribeBreakdown_DegenerateInputs(t *testing.T) {
	// Zero or negative period counts collapse to a single period; the
	// function stays total either way.
	b := finance.DescribeBreakdown(finance.Naira(10_000), 0)
	assertNaira(t, 11_800, b.PeriodPayment)

	b = finance.DescribeBreakdown(finance.Naira(0), 4)
	assertNaira(t, 0, b.Interest)
	assertNaira(t, 0, b.PeriodPayment)
}
