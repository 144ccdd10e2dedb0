/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupled from the domain types.
  Money is serialized as whole-naira strings (decimal.String), never JSON
  numbers, so clients get exact values.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers via the finance validators; DTOs are pure
  data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/kobofin/microfin/analytics"
	"github.com/kobofin/microfin/finance"
	"github.com/kobofin/microfin/loan"
	"github.com/kobofin/microfin/store"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

type CreateCustomerRequest struct {
	BranchID string `json:"branch_id"`
	AgentID  string `json:"agent_id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type CreateLoanRequest struct {
	CustomerID string `json:"customer_id"`
	BranchID   string `json:"branch_id"`
	AgentID    string `json:"agent_id"`
	Principal  string `json:"principal"` // whole naira, decimal string
	TermWeeks  int    `json:"term_weeks"`
}

type ApproveLoanRequest struct {
	ApproverID string `json:"approver_id"`
	Reject     bool   `json:"reject,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

type DisburseLoanRequest struct {
	ReleasedBy string `json:"released_by"`
	// StartDate anchors the collection schedule; defaults to today.
	StartDate string `json:"start_date,omitempty"` // YYYY-MM-DD
}

type RecordPaymentRequest struct {
	AgentID    string `json:"agent_id"`
	Amount     string `json:"amount"`                // whole naira, decimal string
	OccurredOn string `json:"occurred_on,omitempty"` // YYYY-MM-DD, defaults to today
}

type CreateBranchRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type BreakdownRequest struct {
	Principal   string `json:"principal"`
	PeriodCount int    `json:"period_count"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type CustomerDTO struct {
	ID        string `json:"id"`
	BranchID  string `json:"branch_id"`
	AgentID   string `json:"agent_id"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type LoanDTO struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	BranchID   string `json:"branch_id"`
	AgentID    string `json:"agent_id"`
	Principal  string `json:"principal"`
	TermWeeks  int    `json:"term_weeks"`
	Status     string `json:"status"`
	StartDate  string `json:"start_date,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`

	// Derived terms, recomputed per response
	InterestAmount string `json:"interest_amount"`
	TotalRepayment string `json:"total_repayment"`
	DailyPayment   string `json:"daily_payment"`
	NumberOfDays   int    `json:"number_of_days"`
	WeeklyPayment  string `json:"weekly_payment"`
}

type BreakdownDTO struct {
	Principal     string `json:"principal"`
	Interest      string `json:"interest"`
	Total         string `json:"total"`
	PeriodPayment string `json:"period_payment"`
	Rate          string `json:"rate"`
	Summary       string `json:"summary"`
}

type BalanceDTO struct {
	TotalRepayment   string `json:"total_repayment"`
	TotalPaid        string `json:"total_paid"`
	RemainingBalance string `json:"remaining_balance"`
	PercentagePaid   string `json:"percentage_paid"`
	OverdueDays      int    `json:"overdue_days"`
	Settled          bool   `json:"settled"`
}

type ScheduleRowDTO struct {
	Day       int    `json:"day"`
	DueDate   string `json:"due_date"`
	DueAmount string `json:"due_amount"`
	Paid      string `json:"paid"`
	Status    string `json:"status"`
}

type PaymentDTO struct {
	LoanID     string `json:"loan_id"`
	Amount     string `json:"amount"`
	OccurredOn string `json:"occurred_on"`
}

type BranchDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

type BranchSummaryDTO struct {
	BranchID         string `json:"branch_id"`
	LoanCount        int    `json:"loan_count"`
	ActiveLoans      int    `json:"active_loans"`
	TotalPrincipal   string `json:"total_principal"`
	TotalRepayment   string `json:"total_repayment"`
	TotalCollected   string `json:"total_collected"`
	TotalOutstanding string `json:"total_outstanding"`
	OverdueLoans     int    `json:"overdue_loans"`
}

type SummaryDTO struct {
	AsOf             string             `json:"as_of"`
	LoanCount        int                `json:"loan_count"`
	TotalPrincipal   string             `json:"total_principal"`
	TotalRepayment   string             `json:"total_repayment"`
	TotalCollected   string             `json:"total_collected"`
	TotalOutstanding string             `json:"total_outstanding"`
	OverdueLoans     int                `json:"overdue_loans"`
	Branches         []BranchSummaryDTO `json:"branches"`
}

type AuditEntryDTO struct {
	ID        string `json:"id"`
	ActorID   string `json:"actor_id"`
	Action    string `json:"action"`
	LoanID    string `json:"loan_id,omitempty"`
	BranchID  string `json:"branch_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toLoanDTO(l *loan.Loan) LoanDTO {
	terms := l.Terms()
	plan := l.Plan()
	dto := LoanDTO{
		ID:             l.ID,
		CustomerID:     l.CustomerID,
		BranchID:       l.BranchID,
		AgentID:        l.AgentID,
		Principal:      l.Principal.StringFixed(0),
		TermWeeks:      l.TermWeeks,
		Status:         string(l.Status),
		CreatedAt:      l.CreatedAt.Format(time.RFC3339),
		InterestAmount: terms.InterestAmount.StringFixed(0),
		TotalRepayment: terms.TotalRepayment.StringFixed(0),
		DailyPayment:   terms.DailyPayment.StringFixed(0),
		NumberOfDays:   terms.NumberOfDays,
		WeeklyPayment:  plan.WeeklyPayment.StringFixed(0),
	}
	if !l.StartDate.IsZero() {
		dto.StartDate = l.StartDate.Format("2006-01-02")
	}
	return dto
}

func toCustomerDTO(c *store.Customer) CustomerDTO {
	return CustomerDTO{
		ID:        c.ID,
		BranchID:  c.BranchID,
		AgentID:   c.AgentID,
		FullName:  c.FullName,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func toBreakdownDTO(b finance.Breakdown) BreakdownDTO {
	return BreakdownDTO{
		Principal:     b.Principal.StringFixed(0),
		Interest:      b.Interest.StringFixed(0),
		Total:         b.Total.StringFixed(0),
		PeriodPayment: b.PeriodPayment.StringFixed(0),
		Rate:          b.Rate.StringFixed(2),
		Summary:       b.Summary,
	}
}

func toBalanceDTO(p loan.Progress) BalanceDTO {
	return BalanceDTO{
		TotalRepayment:   p.Balance.TotalRepayment.StringFixed(0),
		TotalPaid:        p.Balance.TotalPaid.StringFixed(0),
		RemainingBalance: p.Balance.RemainingBalance.StringFixed(0),
		PercentagePaid:   p.Balance.PercentagePaid.StringFixed(2),
		OverdueDays:      p.OverdueCount,
		Settled:          p.Balance.Settled(),
	}
}

func toScheduleRowDTOs(rows []loan.ScheduleRow) []ScheduleRowDTO {
	dtos := make([]ScheduleRowDTO, 0, len(rows))
	for _, r := range rows {
		dtos = append(dtos, ScheduleRowDTO{
			Day:       r.Day,
			DueDate:   r.DueDate.Format("2006-01-02"),
			DueAmount: r.DueAmount.StringFixed(0),
			Paid:      r.Paid.StringFixed(0),
			Status:    string(r.Status),
		})
	}
	return dtos
}

func toPaymentDTOs(events []finance.PaymentEvent) []PaymentDTO {
	dtos := make([]PaymentDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, PaymentDTO{
			LoanID:     e.LoanID,
			Amount:     e.AmountPaid.StringFixed(0),
			OccurredOn: e.OccurredOn.Format("2006-01-02"),
		})
	}
	return dtos
}

func toSummaryDTO(s analytics.Summary) SummaryDTO {
	dto := SummaryDTO{
		AsOf:             s.AsOf.Format("2006-01-02"),
		LoanCount:        s.LoanCount,
		TotalPrincipal:   s.TotalPrincipal.StringFixed(0),
		TotalRepayment:   s.TotalRepayment.StringFixed(0),
		TotalCollected:   s.TotalCollected.StringFixed(0),
		TotalOutstanding: s.TotalOutstanding.StringFixed(0),
		OverdueLoans:     s.OverdueLoans,
		Branches:         make([]BranchSummaryDTO, 0, len(s.Branches)),
	}
	for _, b := range s.Branches {
		dto.Branches = append(dto.Branches, BranchSummaryDTO{
			BranchID:         b.BranchID,
			LoanCount:        b.LoanCount,
			ActiveLoans:      b.ActiveLoans,
			TotalPrincipal:   b.TotalPrincipal.StringFixed(0),
			TotalRepayment:   b.TotalRepayment.StringFixed(0),
			TotalCollected:   b.TotalCollected.StringFixed(0),
			TotalOutstanding: b.TotalOutstanding.StringFixed(0),
			OverdueLoans:     b.OverdueLoans,
		})
	}
	return dto
}
