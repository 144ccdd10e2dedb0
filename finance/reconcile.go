/*
reconcile.go - Balance folding and period classification

PURPOSE:
  Folds the chronological payment history of a loan against its total
  repayment into the figures every dashboard shows: total paid, remaining
  balance, percentage paid, and per-period paid/partial/unpaid/overdue
  classification.

INVARIANTS:
  1. RemainingBalance = max(0, totalRepayment - totalPaid). Never negative;
     overpayment is absorbed silently - no credit concept exists.
  2. Every event counts toward totalPaid regardless of any status flag.
     Zero-amount events contribute zero.
  3. Classification is derived fresh on every read, never stored. The only
     stateful status transitions (mark paid / mark missed) are writes owned
     by the storage collaborator, not by this package.

PERCENTAGE CLAMPING:
  Whether percentagePaid should cap at 100 on overpayment is an unresolved
  product question. Both behaviors exist behind Reconciler.ClampPercentage;
  the package-level Reconcile uses the raw (unclamped) variant, which is the
  historically observed behavior.

SEE ALSO:
  - types.go: PaymentEvent, BalanceState, PeriodStatus
  - validate.go: ValidatePaymentAmount pre-check for recording payments
*/
package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECONCILER
// =============================================================================

// Reconciler computes balance state from a payment history.
// The zero value uses raw (unclamped) percentages.
type Reconciler struct {
	// ClampPercentage caps PercentagePaid at 100 when the loan is overpaid.
	ClampPercentage bool
}

// Reconcile folds payment events into a BalanceState using the raw
// percentage variant.
func Reconcile(totalRepayment decimal.Decimal, events []PaymentEvent) BalanceState {
	return Reconciler{}.Reconcile(totalRepayment, events)
}

// Reconcile folds payment events into a BalanceState.
func (r Reconciler) Reconcile(totalRepayment decimal.Decimal, events []PaymentEvent) BalanceState {
	totalPaid := decimal.Zero
	for _, e := range events {
		totalPaid = totalPaid.Add(e.AmountPaid)
	}

	remaining := totalRepayment.Sub(totalPaid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	percentage := decimal.Zero
	if totalRepayment.IsPositive() {
		percentage = totalPaid.Div(totalRepayment).Mul(oneHundred)
		if r.ClampPercentage && percentage.GreaterThan(oneHundred) {
			percentage = oneHundred
		}
	}

	return BalanceState{
		TotalRepayment:   totalRepayment,
		TotalPaid:        totalPaid,
		RemainingBalance: remaining,
		PercentagePaid:   percentage,
	}
}

// =============================================================================
// PERIOD CLASSIFICATION
// =============================================================================

// ClassifyPeriod classifies a single scheduled installment. Pure decision
// table; dates are compared by calendar day.
func ClassifyPeriod(scheduled, paid decimal.Decimal, dueDate, asOf time.Time) PeriodStatus {
	switch {
	case paid.GreaterThanOrEqual(scheduled):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	case dayOf(asOf).After(dayOf(dueDate)):
		return StatusOverdue
	default:
		return StatusUnpaid
	}
}

// dayOf truncates a timestamp to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
