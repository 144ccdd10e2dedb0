/*
progress.go - Schedule view and repayment progress

PURPOSE:
  Materializes the figures every dashboard shows for an active loan: the
  per-day schedule rows with their paid/partial/unpaid/overdue status, the
  balance state, and the overdue count. All of it is derived fresh from
  the loan's principal and its payment history on every read - nothing
  here is stored.

ROW CONSTRUCTION:
  Row N is due on StartDate + N days and owes the fixed daily amount,
  except the last row, which owes the remainder so the rows sum exactly to
  the total repayment. A row's paid amount is the event recorded on its
  due date (at most one exists per day).

SEE ALSO:
  - finance/reconcile.go: Balance folding and ClassifyPeriod
  - finance/schedule.go: DeriveDailySchedule
*/
package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kobofin/microfin/finance"
)

// =============================================================================
// SCHEDULE VIEW
// =============================================================================

// ScheduleRow is one day of the collection schedule with its live status.
type ScheduleRow struct {
	Day       int // 1-based
	DueDate   time.Time
	DueAmount decimal.Decimal
	Paid      decimal.Decimal
	Status    finance.PeriodStatus
}

// BuildScheduleView folds payment events onto the loan's daily schedule.
// Events that fall on no scheduled day (before the start date or after the
// final day) still count toward the balance but attach to no row.
func BuildScheduleView(l *Loan, events []finance.PaymentEvent, asOf time.Time) []ScheduleRow {
	sched := l.Terms()
	if sched.NumberOfDays <= 0 || l.StartDate.IsZero() {
		return nil
	}

	paidByDay := make(map[time.Time]decimal.Decimal, len(events))
	for _, e := range events {
		day := Day(e.OccurredOn)
		paidByDay[day] = paidByDay[day].Add(e.AmountPaid)
	}

	rows := make([]ScheduleRow, 0, sched.NumberOfDays)
	remaining := sched.TotalRepayment
	start := Day(l.StartDate)

	for i := 0; i < sched.NumberOfDays; i++ {
		due := sched.DailyPayment
		if remaining.LessThan(due) {
			due = remaining // final remainder day
		}
		remaining = remaining.Sub(due)

		dueDate := start.AddDate(0, 0, i)
		paid := paidByDay[dueDate]

		rows = append(rows, ScheduleRow{
			Day:       i + 1,
			DueDate:   dueDate,
			DueAmount: due,
			Paid:      paid,
			Status:    finance.ClassifyPeriod(due, paid, dueDate, asOf),
		})
	}
	return rows
}

// =============================================================================
// PROGRESS - The composite consumed by handlers
// =============================================================================

type Progress struct {
	Schedule     finance.DailySchedule
	Balance      finance.BalanceState
	Rows         []ScheduleRow
	OverdueCount int
}

// ComputeProgress derives the full repayment picture for a loan.
func ComputeProgress(l *Loan, events []finance.PaymentEvent, asOf time.Time, rec finance.Reconciler) Progress {
	sched := l.Terms()
	rows := BuildScheduleView(l, events, asOf)

	overdue := 0
	for _, r := range rows {
		if r.Status == finance.StatusOverdue {
			overdue++
		}
	}

	return Progress{
		Schedule:     sched,
		Balance:      rec.Reconcile(sched.TotalRepayment, events),
		Rows:         rows,
		OverdueCount: overdue,
	}
}
