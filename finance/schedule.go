/*
schedule.go - Repayment schedule derivation

PURPOSE:
  Derives the two schedule notions the platform keeps in parallel:

  1. The DAILY schedule used for day-to-day collection tracking: a fixed
     daily payment amount selected by principal tier, and the number of days
     needed to cover principal + interest at that amount.

  2. The WEEKLY installment plan quoted at loan-application time: total
     repayment spread evenly over an agent-supplied number of weeks.

  The two are intentionally NOT reconciled with each other. Collection
  screens track daily tiers; the application form quotes weekly figures.
  Merging them would lose information both screens rely on.

TIER TABLE (ascending, inclusive upper bounds):
  principal <= 30,000            -> N1,000/day
  30,001   <= principal <= 100,000 -> N1,500/day
  100,001  <= principal <= 200,000 -> N2,000/day
  200,001  <= principal <= 300,000 -> N3,000/day
  300,001  <= principal <= 400,000 -> N4,000/day
  principal > 400,000            -> N5,000/day

BOUNDARY:
  Non-positive principal is an input-validation failure upstream, not a case
  this file handles specially: it falls into the lowest tier and yields a
  zero or negative day count. DeriveDailySchedule stays total regardless.

SEE ALSO:
  - interest.go: Shared interest formula
  - validate.go: ValidateLoanAmount / ValidateTermWeeks
*/
package finance

import "github.com/shopspring/decimal"

// =============================================================================
// DAILY SCHEDULE - Tiered collection tracking
// =============================================================================

// DailySchedule is what collection screens work from: a fixed per-day amount
// and how many days of collection cover the total repayment. The final day
// may collect a smaller remainder, so DailyPayment * NumberOfDays can exceed
// TotalRepayment by up to one day's payment.
type DailySchedule struct {
	Principal      decimal.Decimal
	InterestAmount decimal.Decimal
	TotalRepayment decimal.Decimal
	DailyPayment   decimal.Decimal
	NumberOfDays   int
}

// dailyTier maps an inclusive principal upper bound to a daily amount.
// Ordered ascending; the first matching bound wins.
type dailyTier struct {
	upTo    decimal.Decimal
	payment decimal.Decimal
}

var dailyTiers = []dailyTier{
	{upTo: decimal.NewFromInt(30_000), payment: decimal.NewFromInt(1_000)},
	{upTo: decimal.NewFromInt(100_000), payment: decimal.NewFromInt(1_500)},
	{upTo: decimal.NewFromInt(200_000), payment: decimal.NewFromInt(2_000)},
	{upTo: decimal.NewFromInt(300_000), payment: decimal.NewFromInt(3_000)},
	{upTo: decimal.NewFromInt(400_000), payment: decimal.NewFromInt(4_000)},
}

// topTierPayment applies to any principal above the last bound.
var topTierPayment = decimal.NewFromInt(5_000)

// DailyPaymentFor returns the tiered daily amount for a principal.
func DailyPaymentFor(principal decimal.Decimal) decimal.Decimal {
	for _, tier := range dailyTiers {
		if principal.LessThanOrEqual(tier.upTo) {
			return tier.payment
		}
	}
	return topTierPayment
}

// DeriveDailySchedule computes the full daily collection schedule from a
// principal. Total; callers reject non-positive principal upstream.
func DeriveDailySchedule(principal decimal.Decimal) DailySchedule {
	interest := CalculateInterest(principal)
	total := principal.Add(interest)
	daily := DailyPaymentFor(principal)

	return DailySchedule{
		Principal:      principal,
		InterestAmount: interest,
		TotalRepayment: total,
		DailyPayment:   daily,
		NumberOfDays:   int(total.Div(daily).Ceil().IntPart()),
	}
}

// =============================================================================
// WEEKLY INSTALLMENT PLAN - Application-time quote
// =============================================================================

// WeeklyInstallmentPlan is the quote shown on the loan application form.
// Independent of the daily tier table.
type WeeklyInstallmentPlan struct {
	Principal      decimal.Decimal
	TotalRepayment decimal.Decimal
	PeriodWeeks    int
	WeeklyPayment  decimal.Decimal
}

// DeriveWeeklyInstallmentPlan spreads total repayment evenly over the
// agent-supplied week count, rounded to whole naira. The 4-52 week band is
// enforced by ValidateTermWeeks at the input layer, not here; a count < 1
// is treated as a single week so the function stays total.
func DeriveWeeklyInstallmentPlan(principal decimal.Decimal, periodWeeks int) WeeklyInstallmentPlan {
	if periodWeeks < 1 {
		periodWeeks = 1
	}
	total := CalculateTotalRepayment(principal)

	return WeeklyInstallmentPlan{
		Principal:      principal,
		TotalRepayment: total,
		PeriodWeeks:    periodWeeks,
		WeeklyPayment:  RoundNaira(total.Div(decimal.NewFromInt(int64(periodWeeks)))),
	}
}
