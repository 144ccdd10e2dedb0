/*
Package store defines the persistence interface for the platform.

PURPOSE:
  The calculation core is pure; everything durable lives behind this
  interface: loan records, the payment history, customers, branches,
  disbursements, and the audit trail. Implementations:

    store/sqlite: Production SQLite (same patterns apply to PostgreSQL)
    store/memory: In-memory for tests

PAYMENT UPSERT CONTRACT:
  UpsertPayment is keyed on (loanID, calendar day). A second write for the
  same key REPLACES the stored amount - the database-level uniqueness
  constraint makes double-submission idempotent. loan.PaymentLedger is the
  only caller and normalizes timestamps to days before calling.

AUDIT LOG:
  Append-only record of who did what. Separate from the payment history;
  payments are data, audit entries are accountability.

SEE ALSO:
  - loan/ledger.go: The write path over UpsertPayment
  - store/sqlite/sqlite.go: Schema and uniqueness enforcement
*/
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kobofin/microfin/finance"
	"github.com/kobofin/microfin/loan"
)

// =============================================================================
// ENTITY RECORDS
// =============================================================================

// Customer is a borrower registered by an agent.
type Customer struct {
	ID        string
	BranchID  string
	AgentID   string
	FullName  string
	Phone     string
	Address   string
	CreatedAt time.Time
}

// Branch is one office of the microfinance operation.
type Branch struct {
	ID        string
	Name      string
	Location  string
	CreatedAt time.Time
}

// Disbursement records funds released to an agent for an approved loan.
type Disbursement struct {
	ID         string
	LoanID     string
	BranchID   string
	Amount     decimal.Decimal
	ReleasedBy string // sub-admin user
	ReleasedAt time.Time
}

// =============================================================================
// AUDIT TRAIL
// =============================================================================

type AuditAction string

const (
	AuditLoanCreated      AuditAction = "loan_created"
	AuditLoanApproved     AuditAction = "loan_approved"
	AuditLoanRejected     AuditAction = "loan_rejected"
	AuditLoanDisbursed    AuditAction = "loan_disbursed"
	AuditLoanCompleted    AuditAction = "loan_completed"
	AuditPaymentRecorded  AuditAction = "payment_recorded"
	AuditCustomerCreated  AuditAction = "customer_created"
	AuditBranchCreated    AuditAction = "branch_created"
)

// AuditEntry records who did what when. Append-only.
type AuditEntry struct {
	ID        string
	ActorID   string
	Action    AuditAction
	LoanID    string // empty when not loan-scoped
	BranchID  string
	Detail    string
	CreatedAt time.Time
}

type AuditFilter struct {
	LoanID   string
	BranchID string
	ActorID  string
	Action   AuditAction
}

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	ErrLoanNotFound     = errors.New("loan not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrBranchNotFound   = errors.New("branch not found")
)

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLoanNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrBranchNotFound)
}

// =============================================================================
// STORE - The full persistence surface
// =============================================================================

// Store is everything durable. It embeds loan.PaymentStore so the payment
// ledger can take a Store directly.
type Store interface {
	loan.PaymentStore

	// Loans
	CreateLoan(ctx context.Context, l *loan.Loan) error
	GetLoan(ctx context.Context, id string) (*loan.Loan, error)
	ListLoans(ctx context.Context) ([]*loan.Loan, error)
	LoansByBranch(ctx context.Context, branchID string) ([]*loan.Loan, error)
	UpdateLoanStatus(ctx context.Context, id string, status loan.Status, startDate time.Time) error

	// Customers
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)

	// Branches
	CreateBranch(ctx context.Context, b *Branch) error
	ListBranches(ctx context.Context) ([]*Branch, error)

	// Disbursements
	RecordDisbursement(ctx context.Context, d *Disbursement) error
	ListDisbursements(ctx context.Context) ([]*Disbursement, error)

	// Audit trail (append-only)
	AppendAudit(ctx context.Context, e AuditEntry) error
	QueryAudit(ctx context.Context, f AuditFilter) ([]AuditEntry, error)

	Close() error
}

// AllPayments extends Store for analytics, which needs every payment row
// across loans in one pass.
type AllPayments interface {
	ListPayments(ctx context.Context) ([]finance.PaymentEvent, error)
}
