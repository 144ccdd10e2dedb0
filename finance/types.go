/*
Package finance provides the loan calculation core.

PURPOSE:
  This package contains the pure business logic every money figure in the
  platform depends on: interest computation, repayment schedule derivation,
  and balance reconciliation over a payment history. It has no dependency on
  storage, HTTP, or any other package in this module.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: whole-naira amounts on decimal.Decimal (no kobo sub-units)
  - PaymentEvent: a single recorded collection against a loan
  - BalanceState: derived repayment progress, recomputed per read
  - PeriodStatus: paid/partial/unpaid/overdue classification

DESIGN PRINCIPLES:
  1. Totality: calculators never panic and never return errors - out-of-band
     inputs degrade to zero results; rejection is the validator's job
  2. Precision: decimal.Decimal throughout, no float arithmetic on money
  3. Purity: every function is a deterministic function of its arguments;
     no clocks, no globals, no hidden session state

USAGE:
  interest := finance.CalculateInterest(finance.Naira(50_000))
  sched := finance.DeriveDailySchedule(finance.Naira(50_000))
  state := finance.Reconcile(sched.TotalRepayment, events)

SEE ALSO:
  - interest.go: Interest and total-repayment formulas
  - schedule.go: Daily tier schedule and weekly installment plan
  - reconcile.go: Balance folding and period classification
  - validate.go: The policy gate callers invoke before the calculators
*/
package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Whole-naira decimal amounts
// =============================================================================

// Naira builds a whole-naira amount. The domain has no fractional sub-units;
// every calculator rounds half-up back to a whole amount.
func Naira(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

// RoundNaira rounds to the nearest whole naira, half away from zero.
// For the non-negative amounts this core produces that is round-half-up.
func RoundNaira(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// =============================================================================
// PAYMENT EVENT - One recorded collection against a loan
// =============================================================================

// PaymentEvent is supplied by the storage collaborator. Events arrive in
// chronological order; the store guarantees at most one event per loan per
// calendar day (upsert on (loanID, occurredOn)).
type PaymentEvent struct {
	LoanID     string
	AmountPaid decimal.Decimal
	OccurredOn time.Time
}

// =============================================================================
// BALANCE STATE - Derived, ephemeral, recomputed on every query
// =============================================================================

// BalanceState is a pure function of total repayment + the full ordered set
// of payment events. It is never persisted.
type BalanceState struct {
	TotalRepayment   decimal.Decimal
	TotalPaid        decimal.Decimal
	RemainingBalance decimal.Decimal // max(0, total - paid), never negative
	PercentagePaid   decimal.Decimal
}

// Settled reports whether the loan is fully repaid.
func (b BalanceState) Settled() bool {
	return b.RemainingBalance.IsZero() && b.TotalRepayment.IsPositive()
}

// =============================================================================
// PERIOD STATUS - Classification of a single scheduled installment
// =============================================================================

type PeriodStatus string

const (
	StatusPaid    PeriodStatus = "paid"
	StatusPartial PeriodStatus = "partial"
	StatusUnpaid  PeriodStatus = "unpaid"  // pending, not yet due or due today
	StatusOverdue PeriodStatus = "overdue" // nothing paid and past due
)
