// Package memory provides an in-memory Store implementation (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kobofin/microfin/finance"
	"github.com/kobofin/microfin/loan"
	"github.com/kobofin/microfin/store"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu            sync.RWMutex
	loans         map[string]*loan.Loan
	payments      map[paymentKey]finance.PaymentEvent
	customers     map[string]*store.Customer
	branches      []*store.Branch
	disbursements []*store.Disbursement
	audit         []store.AuditEntry
}

// paymentKey is the uniqueness key: at most one payment per loan per day.
type paymentKey struct {
	LoanID string
	Day    time.Time
}

var _ store.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		loans:     make(map[string]*loan.Loan),
		payments:  make(map[paymentKey]finance.PaymentEvent),
		customers: make(map[string]*store.Customer),
	}
}

func (m *Memory) Close() error { return nil }

// =============================================================================
// LOANS
// =============================================================================

func (m *Memory) CreateLoan(_ context.Context, l *loan.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.loans[l.ID] = &cp
	return nil
}

func (m *Memory) GetLoan(_ context.Context, id string) (*loan.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.loans[id]
	if !ok {
		return nil, store.ErrLoanNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *Memory) ListLoans(_ context.Context) ([]*loan.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loansLocked(func(*loan.Loan) bool { return true }), nil
}

func (m *Memory) LoansByBranch(_ context.Context, branchID string) ([]*loan.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loansLocked(func(l *loan.Loan) bool { return l.BranchID == branchID }), nil
}

func (m *Memory) loansLocked(keep func(*loan.Loan) bool) []*loan.Loan {
	var result []*loan.Loan
	for _, l := range m.loans {
		if keep(l) {
			cp := *l
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result
}

func (m *Memory) UpdateLoanStatus(_ context.Context, id string, status loan.Status, startDate time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.loans[id]
	if !ok {
		return store.ErrLoanNotFound
	}
	l.Status = status
	if !startDate.IsZero() {
		l.StartDate = startDate
	}
	l.UpdatedAt = time.Now().UTC()
	return nil
}

// =============================================================================
// PAYMENTS - Upsert keyed on (loanID, day)
// =============================================================================

func (m *Memory) UpsertPayment(_ context.Context, loanID string, day time.Time, amount decimal.Decimal) (finance.PaymentEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev := finance.PaymentEvent{LoanID: loanID, AmountPaid: amount, OccurredOn: day}
	m.payments[paymentKey{LoanID: loanID, Day: day}] = ev // replace, never add
	return ev, nil
}

func (m *Memory) PaymentsByLoan(_ context.Context, loanID string) ([]finance.PaymentEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []finance.PaymentEvent
	for k, ev := range m.payments {
		if k.LoanID == loanID {
			result = append(result, ev)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OccurredOn.Before(result[j].OccurredOn) })
	return result, nil
}

func (m *Memory) ListPayments(_ context.Context) ([]finance.PaymentEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]finance.PaymentEvent, 0, len(m.payments))
	for _, ev := range m.payments {
		result = append(result, ev)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OccurredOn.Before(result[j].OccurredOn) })
	return result, nil
}

// =============================================================================
// CUSTOMERS / BRANCHES / DISBURSEMENTS
// =============================================================================

func (m *Memory) CreateCustomer(_ context.Context, c *store.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.customers[c.ID] = &cp
	return nil
}

func (m *Memory) GetCustomer(_ context.Context, id string) (*store.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, store.ErrCustomerNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *Memory) ListCustomers(_ context.Context) ([]*store.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*store.Customer
	for _, c := range m.customers {
		cp := *c
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *Memory) CreateBranch(_ context.Context, b *store.Branch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.branches = append(m.branches, &cp)
	return nil
}

func (m *Memory) ListBranches(_ context.Context) ([]*store.Branch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*store.Branch, len(m.branches))
	for i, b := range m.branches {
		cp := *b
		result[i] = &cp
	}
	return result, nil
}

func (m *Memory) RecordDisbursement(_ context.Context, d *store.Disbursement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.disbursements = append(m.disbursements, &cp)
	return nil
}

func (m *Memory) ListDisbursements(_ context.Context) ([]*store.Disbursement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*store.Disbursement, len(m.disbursements))
	for i, d := range m.disbursements {
		cp := *d
		result[i] = &cp
	}
	return result, nil
}

// =============================================================================
// AUDIT TRAIL (append-only)
// =============================================================================

func (m *Memory) AppendAudit(_ context.Context, e store.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, e)
	return nil
}

func (m *Memory) QueryAudit(_ context.Context, f store.AuditFilter) ([]store.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []store.AuditEntry
	for _, e := range m.audit {
		if f.LoanID != "" && e.LoanID != f.LoanID {
			continue
		}
		if f.BranchID != "" && e.BranchID != f.BranchID {
			continue
		}
		if f.ActorID != "" && e.ActorID != f.ActorID {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}
