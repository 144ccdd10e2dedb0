/*
Package sqlite provides a SQLite-backed implementation of store.Store.

PURPOSE:
  Production persistence for loans, payments, customers, branches,
  disbursements, and the audit trail. The same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

PAYMENT UNIQUENESS:
  The payments table carries UNIQUE(loan_id, payment_date). UpsertPayment
  writes with ON CONFLICT ... DO UPDATE, so a second submission for the
  same loan and day replaces the stored amount at the database level. This
  is what makes double-submitted collection forms idempotent even under
  concurrent agent sessions.

MONEY:
  Amounts are stored as decimal strings, never floats. Dates are stored as
  RFC3339 text; payment_date is the bare calendar day.

WAL MODE:
  Opened with WAL for better concurrency: readers don't block, single
  writer, better crash recovery.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a versioned
  migration tool.

SEE ALSO:
  - store/store.go: Interface definitions
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/kobofin/microfin/finance"
	"github.com/kobofin/microfin/loan"
	"github.com/kobofin/microfin/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ store.Store       = (*Store)(nil)
	_ store.AllPayments = (*Store)(nil)
)

// New creates a SQLite store. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS branches (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		branch_id TEXT NOT NULL,
		agent_id TEXT NOT NULL,
		full_name TEXT NOT NULL,
		phone TEXT,
		address TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_customers_branch ON customers(branch_id);

	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		branch_id TEXT NOT NULL,
		agent_id TEXT NOT NULL,
		principal TEXT NOT NULL,
		term_weeks INTEGER NOT NULL,
		status TEXT NOT NULL,
		start_date TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_loans_branch ON loans(branch_id);
	CREATE INDEX IF NOT EXISTS idx_loans_customer ON loans(customer_id);
	CREATE INDEX IF NOT EXISTS idx_loans_status ON loans(status);

	-- CRITICAL: at most one payment row per loan per calendar day.
	-- UpsertPayment relies on this key for its replace semantics.
	CREATE TABLE IF NOT EXISTS payments (
		loan_id TEXT NOT NULL,
		payment_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		UNIQUE(loan_id, payment_date)
	);

	CREATE INDEX IF NOT EXISTS idx_payments_loan ON payments(loan_id, payment_date);

	CREATE TABLE IF NOT EXISTS disbursements (
		id TEXT PRIMARY KEY,
		loan_id TEXT NOT NULL,
		branch_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		released_by TEXT NOT NULL,
		released_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_disbursements_loan ON disbursements(loan_id);

	-- Append-only audit trail. No UPDATE or DELETE paths exist.
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		action TEXT NOT NULL,
		loan_id TEXT,
		branch_id TEXT,
		detail TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_loan ON audit_log(loan_id) WHERE loan_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_audit_actor ON audit_log(actor_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOANS
// =============================================================================

func (s *Store) CreateLoan(ctx context.Context, l *loan.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO loans (id, customer_id, branch_id, agent_id, principal, term_weeks, status, start_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.CustomerID, l.BranchID, l.AgentID,
		l.Principal.String(), l.TermWeeks, string(l.Status),
		nullTime(l.StartDate),
		l.CreatedAt.Format(time.RFC3339), l.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert loan: %w", err)
	}
	return nil
}

const loanColumns = `id, customer_id, branch_id, agent_id, principal, term_weeks, status, start_date, created_at, updated_at`

func (s *Store) GetLoan(ctx context.Context, id string) (*loan.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = ?`, id)
	l, err := scanLoan(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrLoanNotFound
	}
	return l, err
}

func (s *Store) ListLoans(ctx context.Context) ([]*loan.Loan, error) {
	return s.queryLoans(ctx, `SELECT `+loanColumns+` FROM loans ORDER BY created_at ASC`)
}

func (s *Store) LoansByBranch(ctx context.Context, branchID string) ([]*loan.Loan, error) {
	return s.queryLoans(ctx, `SELECT `+loanColumns+` FROM loans WHERE branch_id = ? ORDER BY created_at ASC`, branchID)
}

func (s *Store) queryLoans(ctx context.Context, query string, args ...any) ([]*loan.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	var loans []*loan.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLoan(row scanner) (*loan.Loan, error) {
	var (
		l                    loan.Loan
		principal, status    string
		startDate            sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&l.ID, &l.CustomerID, &l.BranchID, &l.AgentID,
		&principal, &l.TermWeeks, &status, &startDate, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	l.Principal, err = decimal.NewFromString(principal)
	if err != nil {
		return nil, fmt.Errorf("corrupt principal %q: %w", principal, err)
	}
	l.Status = loan.Status(status)
	if startDate.Valid {
		l.StartDate, _ = time.Parse(time.RFC3339, startDate.String)
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	l.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &l, nil
}

func (s *Store) UpdateLoanStatus(ctx context.Context, id string, status loan.Status, startDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE loans SET status = ?, start_date = COALESCE(?, start_date), updated_at = ?
		WHERE id = ?`,
		string(status), nullTime(startDate), time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrLoanNotFound
	}
	return nil
}

// =============================================================================
// PAYMENTS - Upsert on (loan_id, payment_date)
// =============================================================================

// UpsertPayment replaces any amount already stored for the same loan and
// day. day must already be truncated to a calendar day (loan.Day does this).
func (s *Store) UpsertPayment(ctx context.Context, loanID string, day time.Time, amount decimal.Decimal) (finance.PaymentEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (loan_id, payment_date, amount, recorded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(loan_id, payment_date) DO UPDATE SET
			amount = excluded.amount,
			recorded_at = excluded.recorded_at`,
		loanID, day.Format("2006-01-02"), amount.String(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return finance.PaymentEvent{}, fmt.Errorf("failed to upsert payment: %w", err)
	}
	return finance.PaymentEvent{LoanID: loanID, AmountPaid: amount, OccurredOn: day}, nil
}

func (s *Store) PaymentsByLoan(ctx context.Context, loanID string) ([]finance.PaymentEvent, error) {
	return s.queryPayments(ctx, `
		SELECT loan_id, payment_date, amount FROM payments
		WHERE loan_id = ? ORDER BY payment_date ASC`, loanID)
}

// ListPayments returns every payment row across all loans (analytics path).
func (s *Store) ListPayments(ctx context.Context) ([]finance.PaymentEvent, error) {
	return s.queryPayments(ctx, `
		SELECT loan_id, payment_date, amount FROM payments ORDER BY payment_date ASC`)
}

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]finance.PaymentEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var events []finance.PaymentEvent
	for rows.Next() {
		var (
			ev          finance.PaymentEvent
			day, amount string
		)
		if err := rows.Scan(&ev.LoanID, &day, &amount); err != nil {
			return nil, err
		}
		ev.OccurredOn, _ = time.Parse("2006-01-02", day)
		ev.AmountPaid, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt payment amount %q: %w", amount, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func (s *Store) CreateCustomer(ctx context.Context, c *store.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, branch_id, agent_id, full_name, phone, address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.BranchID, c.AgentID, c.FullName, c.Phone, c.Address,
		c.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*store.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		c         store.Customer
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, branch_id, agent_id, full_name, phone, address, created_at
		FROM customers WHERE id = ?`, id,
	).Scan(&c.ID, &c.BranchID, &c.AgentID, &c.FullName, &c.Phone, &c.Address, &createdAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]*store.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, branch_id, agent_id, full_name, phone, address, created_at
		FROM customers ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []*store.Customer
	for rows.Next() {
		var (
			c         store.Customer
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.BranchID, &c.AgentID, &c.FullName, &c.Phone, &c.Address, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		customers = append(customers, &c)
	}
	return customers, rows.Err()
}

// =============================================================================
// BRANCHES
// =============================================================================

func (s *Store) CreateBranch(ctx context.Context, b *store.Branch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO branches (id, name, location, created_at) VALUES (?, ?, ?, ?)`,
		b.ID, b.Name, b.Location, b.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert branch: %w", err)
	}
	return nil
}

func (s *Store) ListBranches(ctx context.Context) ([]*store.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, location, created_at FROM branches ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query branches: %w", err)
	}
	defer rows.Close()

	var branches []*store.Branch
	for rows.Next() {
		var (
			b         store.Branch
			createdAt string
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Location, &createdAt); err != nil {
			return nil, err
		}
		b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		branches = append(branches, &b)
	}
	return branches, rows.Err()
}

// =============================================================================
// DISBURSEMENTS
// =============================================================================

func (s *Store) RecordDisbursement(ctx context.Context, d *store.Disbursement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO disbursements (id, loan_id, branch_id, amount, released_by, released_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.LoanID, d.BranchID, d.Amount.String(), d.ReleasedBy,
		d.ReleasedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert disbursement: %w", err)
	}
	return nil
}

func (s *Store) ListDisbursements(ctx context.Context) ([]*store.Disbursement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, loan_id, branch_id, amount, released_by, released_at
		FROM disbursements ORDER BY released_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query disbursements: %w", err)
	}
	defer rows.Close()

	var disbursements []*store.Disbursement
	for rows.Next() {
		var (
			d                  store.Disbursement
			amount, releasedAt string
		)
		if err := rows.Scan(&d.ID, &d.LoanID, &d.BranchID, &amount, &d.ReleasedBy, &releasedAt); err != nil {
			return nil, err
		}
		d.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt disbursement amount %q: %w", amount, err)
		}
		d.ReleasedAt, _ = time.Parse(time.RFC3339, releasedAt)
		disbursements = append(disbursements, &d)
	}
	return disbursements, rows.Err()
}

// =============================================================================
// AUDIT TRAIL (append-only)
// =============================================================================

func (s *Store) AppendAudit(ctx context.Context, e store.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, actor_id, action, loan_id, branch_id, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ActorID, string(e.Action),
		nullString(e.LoanID), nullString(e.BranchID), e.Detail,
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (s *Store) QueryAudit(ctx context.Context, f store.AuditFilter) ([]store.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, actor_id, action, loan_id, branch_id, detail, created_at FROM audit_log WHERE 1=1`
	var args []any
	if f.LoanID != "" {
		query += ` AND loan_id = ?`
		args = append(args, f.LoanID)
	}
	if f.BranchID != "" {
		query += ` AND branch_id = ?`
		args = append(args, f.BranchID)
	}
	if f.ActorID != "" {
		query += ` AND actor_id = ?`
		args = append(args, f.ActorID)
	}
	if f.Action != "" {
		query += ` AND action = ?`
		args = append(args, string(f.Action))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []store.AuditEntry
	for rows.Next() {
		var (
			e                store.AuditEntry
			createdAt        string
			loanID, branchID sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &loanID, &branchID, &e.Detail, &createdAt); err != nil {
			return nil, err
		}
		e.LoanID = loanID.String
		e.BranchID = branchID.String
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}
