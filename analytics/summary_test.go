package analytics_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobofin/microfin/analytics"
	"github.com/kobofin/microfin/finance"
	"github.com/kobofin/microfin/loan"
)

func naira(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func mkLoan(t *testing.T, branchID string, principal int64, status loan.Status, start time.Time) *loan.Loan {
	t.Helper()
	l, err := loan.New("cust", branchID, "agent", naira(principal), 12)
	require.NoError(t, err)
	l.Status = status
	if status == loan.StatusActive || status == loan.StatusCompleted {
		l.StartDate = start
	}
	return l
}

func TestBuildSummary_CrossBranchRollup(t *testing.T) {
	// GIVEN: Two branches - one active loan each, plus a pending loan
	// WHEN: The summary is built
	// THEN: Per-branch and total figures agree with per-loan reconciliation

	start := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	asOf := start.AddDate(0, 0, 2)

	lagos := mkLoan(t, "lagos", 10_000, loan.StatusActive, start)   // total 11,800
	ibadan := mkLoan(t, "ibadan", 50_000, loan.StatusActive, start) // total 59,000
	pending := mkLoan(t, "lagos", 20_000, loan.StatusPending, start)

	payments := map[string][]finance.PaymentEvent{
		lagos.ID: {
			{LoanID: lagos.ID, AmountPaid: naira(1_000), OccurredOn: start},
			{LoanID: lagos.ID, AmountPaid: naira(1_000), OccurredOn: start.AddDate(0, 0, 1)},
		},
		ibadan.ID: {
			{LoanID: ibadan.ID, AmountPaid: naira(1_500), OccurredOn: start},
		},
	}

	s := analytics.BuildSummary([]*loan.Loan{lagos, ibadan, pending}, payments, asOf)

	assert.Equal(t, 3, s.LoanCount)
	assert.True(t, s.TotalPrincipal.Equal(naira(60_000)), "pending loans contribute no money")
	assert.True(t, s.TotalRepayment.Equal(naira(70_800)))
	assert.True(t, s.TotalCollected.Equal(naira(3_500)))
	assert.True(t, s.TotalOutstanding.Equal(naira(67_300)))

	require.Len(t, s.Branches, 2)
	for _, b := range s.Branches {
		switch b.BranchID {
		case "lagos":
			assert.Equal(t, 2, b.LoanCount)
			assert.Equal(t, 1, b.ActiveLoans)
			assert.True(t, b.TotalCollected.Equal(naira(2_000)))
		case "ibadan":
			assert.Equal(t, 1, b.LoanCount)
			assert.True(t, b.TotalCollected.Equal(naira(1_500)))
		default:
			t.Fatalf("unexpected branch %s", b.BranchID)
		}
	}
}

func TestBuildSummary_OverdueLoanCount(t *testing.T) {
	// A loan with any overdue day counts once, regardless of how many days
	// are behind.
	start := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	behind := mkLoan(t, "lagos", 10_000, loan.StatusActive, start)
	current := mkLoan(t, "lagos", 10_000, loan.StatusActive, start)

	asOf := start.AddDate(0, 0, 5)
	payments := map[string][]finance.PaymentEvent{
		// fully caught up through day 5
		current.ID: {
			{LoanID: current.ID, AmountPaid: naira(1_000), OccurredOn: start},
			{LoanID: current.ID, AmountPaid: naira(1_000), OccurredOn: start.AddDate(0, 0, 1)},
			{LoanID: current.ID, AmountPaid: naira(1_000), OccurredOn: start.AddDate(0, 0, 2)},
			{LoanID: current.ID, AmountPaid: naira(1_000), OccurredOn: start.AddDate(0, 0, 3)},
			{LoanID: current.ID, AmountPaid: naira(1_000), OccurredOn: start.AddDate(0, 0, 4)},
		},
		// behind has paid nothing
	}

	s := analytics.BuildSummary([]*loan.Loan{behind, current}, payments, asOf)
	assert.Equal(t, 1, s.OverdueLoans)
}

func TestBuildSummary_Empty(t *testing.T) {
	s := analytics.BuildSummary(nil, nil, time.Now())
	assert.Equal(t, 0, s.LoanCount)
	assert.Empty(t, s.Branches)
	assert.True(t, s.TotalOutstanding.IsZero())
}

func TestGroupPayments(t *testing.T) {
	day := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	flat := []finance.PaymentEvent{
		{LoanID: "a", AmountPaid: naira(100), OccurredOn: day},
		{LoanID: "b", AmountPaid: naira(200), OccurredOn: day},
		{LoanID: "a", AmountPaid: naira(300), OccurredOn: day.AddDate(0, 0, 1)},
	}

	grouped := analytics.GroupPayments(flat)
	require.Len(t, grouped["a"], 2)
	require.Len(t, grouped["b"], 1)
	assert.True(t, grouped["a"][1].AmountPaid.Equal(naira(300)))
}
