/*
validate.go - The policy gate in front of the calculators

PURPOSE:
  Enforces the loan-amount band, term band, and payment-amount rules that
  the calculators deliberately do NOT enforce. User-facing flows must run
  these before calling any calculator; the calculators stay total and
  degrade to zero instead of erroring.

BANDS:
  Loan amount:  N5,000 <= principal <= N1,000,000
  Term:         4 - 52 weeks
  Payment:      amount > 0

Validation failures are surfaced to the caller as rejections, never
silently corrected.
*/
package finance

import "github.com/shopspring/decimal"

// =============================================================================
// LOAN AMOUNT BAND
// =============================================================================

var (
	// MinLoanAmount and MaxLoanAmount bound what agents may register.
	MinLoanAmount = decimal.NewFromInt(5_000)
	MaxLoanAmount = decimal.NewFromInt(1_000_000)
)

// Term band for the weekly installment plan.
const (
	MinTermWeeks = 4
	MaxTermWeeks = 52
)

// ValidateLoanAmount checks the permitted loan-amount band. Returns nil when
// the principal is acceptable, otherwise an AmountError wrapping one of
// ErrNonPositive, ErrBelowMinimum, ErrAboveMaximum.
func ValidateLoanAmount(principal decimal.Decimal) error {
	switch {
	case !principal.IsPositive():
		return &AmountError{Amount: principal, Bound: decimal.Zero, reason: ErrNonPositive}
	case principal.LessThan(MinLoanAmount):
		return &AmountError{Amount: principal, Bound: MinLoanAmount, reason: ErrBelowMinimum}
	case principal.GreaterThan(MaxLoanAmount):
		return &AmountError{Amount: principal, Bound: MaxLoanAmount, reason: ErrAboveMaximum}
	default:
		return nil
	}
}

// ValidateTermWeeks checks the installment term band used by the weekly plan.
func ValidateTermWeeks(weeks int) error {
	if weeks < MinTermWeeks || weeks > MaxTermWeeks {
		return ErrTermOutOfRange
	}
	return nil
}

// ValidatePaymentAmount is the centralized pre-check for recording a
// payment. The storage collaborator's upsert is only reached when this
// passes; call sites must not skip it.
func ValidatePaymentAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &AmountError{Amount: amount, Bound: decimal.Zero, reason: ErrInvalidAmount}
	}
	return nil
}
