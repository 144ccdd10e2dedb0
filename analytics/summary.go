/*
Package analytics aggregates cross-branch portfolio figures.

PURPOSE:
  Admin dashboards show totals across every branch: how much has been
  disbursed, how much collected, what is outstanding, and how many loans
  are behind. There is no reporting warehouse; the numbers are produced by
  re-reading the rows and summing them, the same way every other figure in
  the platform is derived fresh per read.

All functions are pure folds over slices the caller fetched; this package
never talks to storage itself.
*/
package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kobofin/microfin/finance"
	"github.com/kobofin/microfin/loan"
)

// =============================================================================
// PORTFOLIO SUMMARY
// =============================================================================

// BranchSummary is the per-branch slice of the portfolio.
type BranchSummary struct {
	BranchID         string
	LoanCount        int
	ActiveLoans      int
	TotalPrincipal   decimal.Decimal
	TotalRepayment   decimal.Decimal
	TotalCollected   decimal.Decimal
	TotalOutstanding decimal.Decimal
	OverdueLoans     int
}

// Summary is the cross-branch roll-up.
type Summary struct {
	AsOf     time.Time
	Branches []BranchSummary

	LoanCount        int
	TotalPrincipal   decimal.Decimal
	TotalRepayment   decimal.Decimal
	TotalCollected   decimal.Decimal
	TotalOutstanding decimal.Decimal
	OverdueLoans     int
}

// BuildSummary folds loans and their payment histories into the portfolio
// view. paymentsByLoan maps loan ID to its full event history; loans absent
// from the map simply have no collections yet. Pending and rejected loans
// count toward LoanCount but contribute nothing to money totals.
func BuildSummary(loans []*loan.Loan, paymentsByLoan map[string][]finance.PaymentEvent, asOf time.Time) Summary {
	byBranch := make(map[string]*BranchSummary)
	order := make([]string, 0)

	for _, l := range loans {
		bs, ok := byBranch[l.BranchID]
		if !ok {
			bs = &BranchSummary{BranchID: l.BranchID}
			byBranch[l.BranchID] = bs
			order = append(order, l.BranchID)
		}
		bs.LoanCount++

		if l.Status != loan.StatusActive && l.Status != loan.StatusCompleted {
			continue
		}
		if l.Status == loan.StatusActive {
			bs.ActiveLoans++
		}

		events := paymentsByLoan[l.ID]
		p := loan.ComputeProgress(l, events, asOf, finance.Reconciler{})

		bs.TotalPrincipal = bs.TotalPrincipal.Add(l.Principal)
		bs.TotalRepayment = bs.TotalRepayment.Add(p.Schedule.TotalRepayment)
		bs.TotalCollected = bs.TotalCollected.Add(p.Balance.TotalPaid)
		bs.TotalOutstanding = bs.TotalOutstanding.Add(p.Balance.RemainingBalance)
		if p.OverdueCount > 0 {
			bs.OverdueLoans++
		}
	}

	s := Summary{AsOf: asOf}
	for _, id := range order {
		bs := byBranch[id]
		s.Branches = append(s.Branches, *bs)
		s.LoanCount += bs.LoanCount
		s.TotalPrincipal = s.TotalPrincipal.Add(bs.TotalPrincipal)
		s.TotalRepayment = s.TotalRepayment.Add(bs.TotalRepayment)
		s.TotalCollected = s.TotalCollected.Add(bs.TotalCollected)
		s.TotalOutstanding = s.TotalOutstanding.Add(bs.TotalOutstanding)
		s.OverdueLoans += bs.OverdueLoans
	}
	return s
}

// GroupPayments indexes a flat payment list by loan ID, preserving order.
func GroupPayments(events []finance.PaymentEvent) map[string][]finance.PaymentEvent {
	byLoan := make(map[string][]finance.PaymentEvent)
	for _, e := range events {
		byLoan[e.LoanID] = append(byLoan[e.LoanID], e)
	}
	return byLoan
}
