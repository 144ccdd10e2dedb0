/*
errors.go - Centralized error types for the calculation core

PURPOSE:
  All validation errors in one place. The calculators themselves never
  return errors (totality is their contract); these are produced only by
  the validators in validate.go and wrapped by callers with domain context.

USAGE:
  if err := finance.ValidateLoanAmount(amount); err != nil {
      if errors.Is(err, finance.ErrBelowMinimum) {
          // reject the form submission with the validator's message
      }
  }

SEE ALSO:
  - validate.go: The only producers of these errors
  - loan/ledger.go: Wraps ErrInvalidAmount with loan context
*/
package finance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNonPositive is returned when a principal <= 0 is supplied where a
	// positive amount is required for a meaningful result.
	ErrNonPositive = errors.New("amount must be positive")

	// ErrBelowMinimum is returned when a principal is under the smallest
	// permitted loan amount.
	ErrBelowMinimum = errors.New("amount below minimum loan amount")

	// ErrAboveMaximum is returned when a principal exceeds the largest
	// permitted loan amount.
	ErrAboveMaximum = errors.New("amount above maximum loan amount")

	// ErrInvalidAmount is returned when a payment amount <= 0 is offered
	// for recording.
	ErrInvalidAmount = errors.New("payment amount must be positive")

	// ErrTermOutOfRange is returned when an installment term falls outside
	// the permitted week band.
	ErrTermOutOfRange = errors.New("term weeks out of range")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// AmountError reports which band an amount violated and the bound involved.
type AmountError struct {
	Amount decimal.Decimal
	Bound  decimal.Decimal
	reason error
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("%v: got N%s (bound N%s)", e.reason, e.Amount.StringFixed(0), e.Bound.StringFixed(0))
}

func (e *AmountError) Unwrap() error { return e.reason }

// IsClientError returns true if the error is due to invalid caller input.
// Everything this package produces is; the helper exists so transport layers
// can map core errors to 4xx uniformly.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNonPositive) ||
		errors.Is(err, ErrBelowMinimum) ||
		errors.Is(err, ErrAboveMaximum) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrTermOutOfRange)
}
