/*
Package loan wraps the finance core with the loan-record domain.

PURPOSE:
  The finance package computes; this package knows what a loan IS: its
  identity, who it belongs to, its lifecycle, and the rule that a loan's
  terms are always derived fresh from its principal - never cached, never
  persisted as their own entity.

LIFECYCLE:
  pending -> approved -> active -> completed
          -> rejected

  Agents register loans as pending. Sub-admins approve or reject.
  Disbursing the funds moves an approved loan to active, which is when the
  daily collection clock starts. A loan completes when reconciliation shows
  a zero remaining balance.

KEY RULE:
  LoanTerms have no independent lifecycle. Terms() and Plan() recompute
  from Principal on every call, so a schedule can never drift from the
  principal that produced it.

SEE ALSO:
  - ledger.go: Payment recording with the one-per-day invariant
  - progress.go: Schedule view and repayment progress
*/
package loan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kobofin/microfin/finance"
)

// =============================================================================
// LOAN STATUS - Lifecycle states
// =============================================================================

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusActive    Status = "active" // disbursed, collection in progress
	StatusCompleted Status = "completed"
)

// transitions lists the permitted status moves.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusActive},
	StatusActive:   {StatusCompleted},
}

// CanTransition reports whether moving from -> to is a legal lifecycle step.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// =============================================================================
// LOAN RECORD
// =============================================================================

type Loan struct {
	ID         string
	CustomerID string
	BranchID   string
	AgentID    string

	Principal decimal.Decimal
	TermWeeks int // agent-supplied, for the weekly installment quote

	Status Status

	// StartDate anchors the daily collection schedule. Zero until the loan
	// is disbursed.
	StartDate time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New registers a pending loan after validating the principal band and term.
func New(customerID, branchID, agentID string, principal decimal.Decimal, termWeeks int) (*Loan, error) {
	if err := finance.ValidateLoanAmount(principal); err != nil {
		return nil, err
	}
	if err := finance.ValidateTermWeeks(termWeeks); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Loan{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		BranchID:   branchID,
		AgentID:    agentID,
		Principal:  principal,
		TermWeeks:  termWeeks,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Terms derives the daily collection schedule. Recomputed on every call.
func (l *Loan) Terms() finance.DailySchedule {
	return finance.DeriveDailySchedule(l.Principal)
}

// Plan derives the weekly installment quote shown at application time.
func (l *Loan) Plan() finance.WeeklyInstallmentPlan {
	return finance.DeriveWeeklyInstallmentPlan(l.Principal, l.TermWeeks)
}

// Breakdown assembles the display composite using the loan's own term.
func (l *Loan) Breakdown() finance.Breakdown {
	return finance.DescribeBreakdown(l.Principal, l.TermWeeks)
}
