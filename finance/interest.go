/*
interest.go - Interest and total-repayment formulas

PURPOSE:
  Converts a principal amount into the interest due and the total the
  customer must eventually repay. The product charges a flat rate expressed
  as a base-unit multiplier: every N10,000 of principal carries N1,800 of
  interest, which is an effective 18% for any principal.

TOTALITY:
  These functions never error. A non-positive principal yields zero interest
  and an unchanged total rather than a failure - rejecting bad input is the
  job of ValidateLoanAmount (validate.go), which callers must run first in
  any user-facing flow. The split is deliberate: calculators stay total,
  the validator is the policy gate.

SEE ALSO:
  - schedule.go: Uses CalculateInterest for the daily schedule
  - validate.go: Loan-amount band enforcement
*/
package finance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FLAT-RATE CONSTANTS
// =============================================================================

var (
	// interestBaseUnit / interestPerBase: N10,000 of principal carries
	// N1,800 of interest. Equivalent to principal * 0.18.
	interestBaseUnit = decimal.NewFromInt(10_000)
	interestPerBase  = decimal.NewFromInt(1_800)

	oneHundred = decimal.NewFromInt(100)
)

// =============================================================================
// CALCULATORS
// =============================================================================

// CalculateInterest returns the flat interest on a principal, rounded
// half-up to the nearest whole naira. Non-positive principal yields zero.
func CalculateInterest(principal decimal.Decimal) decimal.Decimal {
	if !principal.IsPositive() {
		return decimal.Zero
	}
	return RoundNaira(principal.Div(interestBaseUnit).Mul(interestPerBase))
}

// CalculateTotalRepayment returns principal + interest.
func CalculateTotalRepayment(principal decimal.Decimal) decimal.Decimal {
	return principal.Add(CalculateInterest(principal))
}

// CalculateEffectiveRate returns the interest as a percentage of principal.
// Returns zero for non-positive principal.
func CalculateEffectiveRate(principal decimal.Decimal) decimal.Decimal {
	if !principal.IsPositive() {
		return decimal.Zero
	}
	return CalculateInterest(principal).Div(principal).Mul(oneHundred)
}

// =============================================================================
// DISPLAY BREAKDOWN
// =============================================================================

// Breakdown is a read-only composite used purely for display. It carries no
// invariants of its own; every field is derived from the principal.
type Breakdown struct {
	Principal     decimal.Decimal
	Interest      decimal.Decimal
	Total         decimal.Decimal
	PeriodPayment decimal.Decimal
	Rate          decimal.Decimal
	Summary       string
}

// DescribeBreakdown assembles the figures the application form shows.
// assumedPeriodCount is caller-supplied; different screens assume different
// installment counts, so no default lives here. A count < 1 is treated as a
// single period so the breakdown stays total.
func DescribeBreakdown(principal decimal.Decimal, assumedPeriodCount int) Breakdown {
	if assumedPeriodCount < 1 {
		assumedPeriodCount = 1
	}
	interest := CalculateInterest(principal)
	total := principal.Add(interest)
	periodPayment := RoundNaira(total.Div(decimal.NewFromInt(int64(assumedPeriodCount))))
	if !principal.IsPositive() {
		periodPayment = decimal.Zero
	}

	return Breakdown{
		Principal:     principal,
		Interest:      interest,
		Total:         total,
		PeriodPayment: periodPayment,
		Rate:          CalculateEffectiveRate(principal),
		Summary: fmt.Sprintf("Principal N%s + interest N%s = N%s total, N%s per installment over %d installments",
			principal.StringFixed(0), interest.StringFixed(0), total.StringFixed(0),
			periodPayment.StringFixed(0), assumedPeriodCount),
	}
}
