/*
ledger.go - Payment recording with the one-per-day invariant

PURPOSE:
  Wraps the storage collaborator's payment upsert with the checks the rest
  of the platform must not be able to skip.

INVARIANT:
  At most one payment amount stored per loan per calendar day. The store
  enforces this with a uniqueness key on (loan_id, payment_date); this
  wrapper normalizes timestamps to calendar days so every call site hits
  the same key.

REPLACE SEMANTICS:
  A second submission for the same loan and day REPLACES the stored amount
  rather than adding to it. That makes a double-submitted form or a retried
  request harmless, and makes a same-day correction a plain re-submit.
  Whether collections that genuinely happen twice in one day should instead
  accumulate is an open product question recorded in DESIGN.md; the replace
  behavior here matches what the platform has always done.

PRE-CHECK:
  RecordPayment rejects amount <= 0 (finance.ErrInvalidAmount) before
  touching storage. Historically this check lived inconsistently across
  call sites; it is centralized here and nowhere else.

SEE ALSO:
  - finance/validate.go: ValidatePaymentAmount
  - store/sqlite: The uniqueness key enforcement
*/
package loan

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kobofin/microfin/finance"
)

// =============================================================================
// PAYMENT STORE - What the ledger needs from storage
// =============================================================================

// PaymentStore is the slice of the storage collaborator this package uses.
type PaymentStore interface {
	// UpsertPayment stores amount for (loanID, day), replacing any amount
	// already stored for that day. day must be truncated to a calendar day.
	UpsertPayment(ctx context.Context, loanID string, day time.Time, amount decimal.Decimal) (finance.PaymentEvent, error)

	// PaymentsByLoan returns the loan's full payment history ordered by day.
	PaymentsByLoan(ctx context.Context, loanID string) ([]finance.PaymentEvent, error)
}

// =============================================================================
// PAYMENT LEDGER
// =============================================================================

// PaymentLedger is the single write path for collections.
type PaymentLedger struct {
	store PaymentStore
}

func NewPaymentLedger(store PaymentStore) *PaymentLedger {
	return &PaymentLedger{store: store}
}

// RecordPayment validates and stores a collection. The timestamp is
// normalized to its UTC calendar day before it reaches the store, so two
// submissions at different times of the same day share one key.
func (pl *PaymentLedger) RecordPayment(ctx context.Context, loanID string, amount decimal.Decimal, occurredOn time.Time) (finance.PaymentEvent, error) {
	if err := finance.ValidatePaymentAmount(amount); err != nil {
		return finance.PaymentEvent{}, &PaymentError{LoanID: loanID, Amount: amount, cause: err}
	}
	return pl.store.UpsertPayment(ctx, loanID, Day(occurredOn), amount)
}

// History returns the loan's chronological payment events.
func (pl *PaymentLedger) History(ctx context.Context, loanID string) ([]finance.PaymentEvent, error) {
	return pl.store.PaymentsByLoan(ctx, loanID)
}

// Day truncates a timestamp to its UTC calendar day, the payment ledger key.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// ERRORS
// =============================================================================

// PaymentError wraps a rejected payment with its loan context.
type PaymentError struct {
	LoanID string
	Amount decimal.Decimal
	cause  error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment of N%s on loan %s rejected: %v", e.Amount.StringFixed(0), e.LoanID, e.cause)
}

func (e *PaymentError) Unwrap() error { return e.cause }
