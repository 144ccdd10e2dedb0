package loan_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobofin/microfin/finance"
	"github.com/kobofin/microfin/loan"
	"github.com/kobofin/microfin/store/memory"
)

func naira(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func newTestLedger(t *testing.T) *loan.PaymentLedger {
	t.Helper()
	return loan.NewPaymentLedger(memory.New())
}

// =============================================================================
// PRE-CHECK
// =============================================================================

func TestRecordPayment_RejectsNonPositiveAmounts(t *testing.T) {
	// The InvalidAmount check lives here and only here; storage is never
	// reached for a non-positive amount.
	ledger := newTestLedger(t)
	ctx := context.Background()
	today := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	_, err := ledger.RecordPayment(ctx, "loan-1", naira(-5), today)
	assert.ErrorIs(t, err, finance.ErrInvalidAmount)

	_, err = ledger.RecordPayment(ctx, "loan-1", naira(0), today)
	assert.ErrorIs(t, err, finance.ErrInvalidAmount)

	var payErr *loan.PaymentError
	require.ErrorAs(t, err, &payErr)
	assert.Equal(t, "loan-1", payErr.LoanID)

	history, err := ledger.History(ctx, "loan-1")
	require.NoError(t, err)
	assert.Empty(t, history, "rejected payments must not reach storage")
}

// =============================================================================
// ONE-PER-DAY INVARIANT
// =============================================================================

func TestRecordPayment_SameDayResubmissionReplaces(t *testing.T) {
	// GIVEN: An agent records N1,000 for June 2
	// WHEN: A second submission records N1,500 for the same day
	// THEN: One event exists and it holds the later amount

	ledger := newTestLedger(t)
	ctx := context.Background()
	june2 := time.Date(2025, time.June, 2, 9, 30, 0, 0, time.UTC)

	_, err := ledger.RecordPayment(ctx, "loan-1", naira(1_000), june2)
	require.NoError(t, err)

	_, err = ledger.RecordPayment(ctx, "loan-1", naira(1_500), june2.Add(5*time.Hour))
	require.NoError(t, err)

	history, err := ledger.History(ctx, "loan-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].AmountPaid.Equal(naira(1_500)))
}

func TestRecordPayment_NormalizesToCalendarDay(t *testing.T) {
	// Submissions at any time of day share the day key; the stored event
	// carries the bare day.
	ledger := newTestLedger(t)
	ctx := context.Background()

	late := time.Date(2025, time.June, 2, 23, 59, 0, 0, time.UTC)
	ev, err := ledger.RecordPayment(ctx, "loan-1", naira(500), late)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), ev.OccurredOn)
}

func TestRecordPayment_DistinctDaysAccumulateHistory(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	start := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := ledger.RecordPayment(ctx, "loan-1", naira(1_000), start.AddDate(0, 0, i))
		require.NoError(t, err)
	}

	history, err := ledger.History(ctx, "loan-1")
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Chronological order
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i-1].OccurredOn.Before(history[i].OccurredOn))
	}
}

func TestRecordPayment_LoansAreIsolated(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	day := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	_, err := ledger.RecordPayment(ctx, "loan-a", naira(1_000), day)
	require.NoError(t, err)
	_, err = ledger.RecordPayment(ctx, "loan-b", naira(2_000), day)
	require.NoError(t, err)

	a, _ := ledger.History(ctx, "loan-a")
	b, _ := ledger.History(ctx, "loan-b")
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.True(t, a[0].AmountPaid.Equal(naira(1_000)))
	assert.True(t, b[0].AmountPaid.Equal(naira(2_000)))
}
