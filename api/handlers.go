/*
handlers.go - HTTP API handlers for the loan administration platform

PURPOSE:
  Exposes the platform via REST. Handles HTTP request/response, JSON
  serialization, and delegates every calculation to the finance core and
  loan domain - no money math lives in this package.

ENDPOINTS:
  Customers:
    GET  /api/customers             List customers
    POST /api/customers             Register customer
    GET  /api/customers/{id}        Get customer

  Loans:
    GET  /api/loans                 List loans (?branch_id= to filter)
    POST /api/loans                 Register loan application
    GET  /api/loans/{id}            Get loan with derived terms
    GET  /api/loans/{id}/breakdown  Display breakdown
    GET  /api/loans/{id}/schedule   Daily schedule with live statuses
    GET  /api/loans/{id}/balance    Balance state
    GET  /api/loans/{id}/payments   Payment history
    POST /api/loans/{id}/approve    Approve or reject (sub-admin)
    POST /api/loans/{id}/disburse   Disburse and activate (sub-admin)
    POST /api/loans/{id}/payments   Record a collection (agent)

  Branches / analytics / audit:
    GET  /api/branches              List branches
    POST /api/branches              Create branch
    GET  /api/analytics/summary     Cross-branch portfolio summary
    GET  /api/audit                 Audit trail (filterable)

  Calculator:
    POST /api/calculator/breakdown  Stateless application-form quote

ERROR HANDLING:
  - 400: Validation errors (finance.IsClientError), malformed input
  - 404: Missing records (store.IsNotFound)
  - 409: Illegal lifecycle transitions
  - 500: Storage failures

SECURITY NOTE:
  No authentication or session handling here; identity arrives as plain
  actor IDs in request bodies and is recorded to the audit trail only.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kobofin/microfin/analytics"
	"github.com/kobofin/microfin/finance"
	"github.com/kobofin/microfin/loan"
	"github.com/kobofin/microfin/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  store.Store
	Ledger *loan.PaymentLedger
	Rec    finance.Reconciler
	Log    *zap.Logger

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewHandler creates a handler over the given store.
func NewHandler(st store.Store, log *zap.Logger) *Handler {
	return &Handler{
		Store:  st,
		Ledger: loan.NewPaymentLedger(st),
		Log:    log,
		Now:    time.Now,
	}
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Store.ListCustomers(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list customers", err)
		return
	}

	dtos := make([]CustomerDTO, 0, len(customers))
	for _, c := range customers {
		dtos = append(dtos, toCustomerDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.FullName == "" || req.BranchID == "" {
		h.writeError(w, http.StatusBadRequest, "full_name and branch_id are required", nil)
		return
	}

	c := &store.Customer{
		ID:        uuid.NewString(),
		BranchID:  req.BranchID,
		AgentID:   req.AgentID,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: h.Now().UTC(),
	}
	if err := h.Store.CreateCustomer(r.Context(), c); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to create customer", err)
		return
	}
	h.audit(r, store.AuditCustomerCreated, req.AgentID, "", req.BranchID, c.FullName)

	writeJSON(w, http.StatusCreated, toCustomerDTO(c))
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.notFoundOrInternal(w, err, "Customer")
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(c))
}

// =============================================================================
// LOAN HANDLERS
// =============================================================================

func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	var (
		loans []*loan.Loan
		err   error
	)
	if branchID := r.URL.Query().Get("branch_id"); branchID != "" {
		loans, err = h.Store.LoansByBranch(r.Context(), branchID)
	} else {
		loans, err = h.Store.ListLoans(r.Context())
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list loans", err)
		return
	}

	dtos := make([]LoanDTO, 0, len(loans))
	for _, l := range loans {
		dtos = append(dtos, toLoanDTO(l))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid principal amount", err)
		return
	}
	if _, err := h.Store.GetCustomer(r.Context(), req.CustomerID); err != nil {
		h.notFoundOrInternal(w, err, "Customer")
		return
	}

	l, err := loan.New(req.CustomerID, req.BranchID, req.AgentID, principal, req.TermWeeks)
	if err != nil {
		// Band/term rejections surface as-is - never silently corrected.
		h.writeError(w, http.StatusBadRequest, "Loan application rejected", err)
		return
	}
	if err := h.Store.CreateLoan(r.Context(), l); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to create loan", err)
		return
	}
	h.audit(r, store.AuditLoanCreated, req.AgentID, l.ID, l.BranchID, "principal "+principal.StringFixed(0))

	writeJSON(w, http.StatusCreated, toLoanDTO(l))
}

func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	l, err := h.Store.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.notFoundOrInternal(w, err, "Loan")
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(l))
}

func (h *Handler) GetLoanBreakdown(w http.ResponseWriter, r *http.Request) {
	l, err := h.Store.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.notFoundOrInternal(w, err, "Loan")
		return
	}
	writeJSON(w, http.StatusOK, toBreakdownDTO(l.Breakdown()))
}

func (h *Handler) GetLoanSchedule(w http.ResponseWriter, r *http.Request) {
	l, events, ok := h.loanWithHistory(w, r)
	if !ok {
		return
	}
	rows := loan.BuildScheduleView(l, events, h.Now())
	writeJSON(w, http.StatusOK, toScheduleRowDTOs(rows))
}

func (h *Handler) GetLoanBalance(w http.ResponseWriter, r *http.Request) {
	l, events, ok := h.loanWithHistory(w, r)
	if !ok {
		return
	}
	p := loan.ComputeProgress(l, events, h.Now(), h.Rec)
	writeJSON(w, http.StatusOK, toBalanceDTO(p))
}

func (h *Handler) GetLoanPayments(w http.ResponseWriter, r *http.Request) {
	_, events, ok := h.loanWithHistory(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTOs(events))
}

func (h *Handler) loanWithHistory(w http.ResponseWriter, r *http.Request) (*loan.Loan, []finance.PaymentEvent, bool) {
	l, err := h.Store.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.notFoundOrInternal(w, err, "Loan")
		return nil, nil, false
	}
	events, err := h.Ledger.History(r.Context(), l.ID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load payment history", err)
		return nil, nil, false
	}
	return l, events, true
}

// =============================================================================
// LOAN LIFECYCLE (sub-admin)
// =============================================================================

func (h *Handler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	var req ApproveLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	l, err := h.Store.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.notFoundOrInternal(w, err, "Loan")
		return
	}

	target := loan.StatusApproved
	action := store.AuditLoanApproved
	if req.Reject {
		target = loan.StatusRejected
		action = store.AuditLoanRejected
	}
	if !loan.CanTransition(l.Status, target) {
		h.writeError(w, http.StatusConflict, "Loan is not awaiting approval", nil)
		return
	}

	if err := h.Store.UpdateLoanStatus(r.Context(), l.ID, target, time.Time{}); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to update loan", err)
		return
	}
	h.audit(r, action, req.ApproverID, l.ID, l.BranchID, req.Reason)

	writeJSON(w, http.StatusOK, map[string]any{"status": string(target)})
}

func (h *Handler) DisburseLoan(w http.ResponseWriter, r *http.Request) {
	var req DisburseLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	l, err := h.Store.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.notFoundOrInternal(w, err, "Loan")
		return
	}
	if !loan.CanTransition(l.Status, loan.StatusActive) {
		h.writeError(w, http.StatusConflict, "Loan is not approved for disbursement", nil)
		return
	}

	startDate := loan.Day(h.Now())
	if req.StartDate != "" {
		startDate, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
			return
		}
	}

	if err := h.Store.UpdateLoanStatus(r.Context(), l.ID, loan.StatusActive, startDate); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to activate loan", err)
		return
	}
	d := &store.Disbursement{
		ID:         uuid.NewString(),
		LoanID:     l.ID,
		BranchID:   l.BranchID,
		Amount:     l.Principal,
		ReleasedBy: req.ReleasedBy,
		ReleasedAt: h.Now().UTC(),
	}
	if err := h.Store.RecordDisbursement(r.Context(), d); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to record disbursement", err)
		return
	}
	h.audit(r, store.AuditLoanDisbursed, req.ReleasedBy, l.ID, l.BranchID, "amount "+l.Principal.StringFixed(0))

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     string(loan.StatusActive),
		"start_date": startDate.Format("2006-01-02"),
	})
}

// =============================================================================
// PAYMENT HANDLERS (agent)
// =============================================================================

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	l, err := h.Store.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.notFoundOrInternal(w, err, "Loan")
		return
	}
	if l.Status != loan.StatusActive {
		h.writeError(w, http.StatusConflict, "Loan is not active", nil)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid payment amount", err)
		return
	}
	occurredOn := h.Now()
	if req.OccurredOn != "" {
		occurredOn, err = time.Parse("2006-01-02", req.OccurredOn)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid occurred_on (use YYYY-MM-DD)", err)
			return
		}
	}

	ev, err := h.Ledger.RecordPayment(r.Context(), l.ID, amount, occurredOn)
	if err != nil {
		if finance.IsClientError(err) {
			h.writeError(w, http.StatusBadRequest, "Payment rejected", err)
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to record payment", err)
		return
	}
	h.audit(r, store.AuditPaymentRecorded, req.AgentID, l.ID, l.BranchID, "amount "+amount.StringFixed(0))

	// Completing payment flips the loan to completed on this write path.
	h.maybeComplete(r, l)

	writeJSON(w, http.StatusCreated, PaymentDTO{
		LoanID:     ev.LoanID,
		Amount:     ev.AmountPaid.StringFixed(0),
		OccurredOn: ev.OccurredOn.Format("2006-01-02"),
	})
}

// maybeComplete marks the loan completed when its balance reaches zero.
// Failures here are logged, not surfaced: the payment itself succeeded.
func (h *Handler) maybeComplete(r *http.Request, l *loan.Loan) {
	events, err := h.Ledger.History(r.Context(), l.ID)
	if err != nil {
		h.Log.Warn("completion check failed", zap.String("loan_id", l.ID), zap.Error(err))
		return
	}
	state := h.Rec.Reconcile(l.Terms().TotalRepayment, events)
	if !state.Settled() {
		return
	}
	if err := h.Store.UpdateLoanStatus(r.Context(), l.ID, loan.StatusCompleted, time.Time{}); err != nil {
		h.Log.Warn("failed to mark loan completed", zap.String("loan_id", l.ID), zap.Error(err))
		return
	}
	h.audit(r, store.AuditLoanCompleted, "system", l.ID, l.BranchID, "")
}

// =============================================================================
// BRANCH HANDLERS
// =============================================================================

func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.Store.ListBranches(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list branches", err)
		return
	}
	dtos := make([]BranchDTO, 0, len(branches))
	for _, b := range branches {
		dtos = append(dtos, BranchDTO{ID: b.ID, Name: b.Name, Location: b.Location})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var req CreateBranchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	b := &store.Branch{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Location:  req.Location,
		CreatedAt: h.Now().UTC(),
	}
	if err := h.Store.CreateBranch(r.Context(), b); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to create branch", err)
		return
	}
	h.audit(r, store.AuditBranchCreated, "", "", b.ID, b.Name)

	writeJSON(w, http.StatusCreated, BranchDTO{ID: b.ID, Name: b.Name, Location: b.Location})
}

// =============================================================================
// ANALYTICS / AUDIT HANDLERS (admin)
// =============================================================================

func (h *Handler) GetAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	loans, err := h.Store.ListLoans(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list loans", err)
		return
	}

	// The admin dashboard sums rows fresh on every read; no warehouse.
	var all []finance.PaymentEvent
	if ap, ok := h.Store.(store.AllPayments); ok {
		all, err = ap.ListPayments(r.Context())
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
			return
		}
	} else {
		for _, l := range loans {
			events, err := h.Ledger.History(r.Context(), l.ID)
			if err != nil {
				h.writeError(w, http.StatusInternalServerError, "Failed to load payment history", err)
				return
			}
			all = append(all, events...)
		}
	}

	s := analytics.BuildSummary(loans, analytics.GroupPayments(all), h.Now())
	writeJSON(w, http.StatusOK, toSummaryDTO(s))
}

func (h *Handler) QueryAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.Store.QueryAudit(r.Context(), store.AuditFilter{
		LoanID:   q.Get("loan_id"),
		BranchID: q.Get("branch_id"),
		ActorID:  q.Get("actor_id"),
		Action:   store.AuditAction(q.Get("action")),
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to query audit log", err)
		return
	}

	dtos := make([]AuditEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, AuditEntryDTO{
			ID:        e.ID,
			ActorID:   e.ActorID,
			Action:    string(e.Action),
			LoanID:    e.LoanID,
			BranchID:  e.BranchID,
			Detail:    e.Detail,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CALCULATOR (stateless quote)
// =============================================================================

func (h *Handler) CalculateBreakdown(w http.ResponseWriter, r *http.Request) {
	var req BreakdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid principal amount", err)
		return
	}
	if err := finance.ValidateLoanAmount(principal); err != nil {
		h.writeError(w, http.StatusBadRequest, "Loan amount rejected", err)
		return
	}

	writeJSON(w, http.StatusOK, toBreakdownDTO(finance.DescribeBreakdown(principal, req.PeriodCount)))
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) audit(r *http.Request, action store.AuditAction, actorID, loanID, branchID, detail string) {
	e := store.AuditEntry{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		Action:    action,
		LoanID:    loanID,
		BranchID:  branchID,
		Detail:    detail,
		CreatedAt: h.Now().UTC(),
	}
	if err := h.Store.AppendAudit(r.Context(), e); err != nil {
		h.Log.Warn("failed to append audit entry", zap.String("action", string(action)), zap.Error(err))
	}
}

func (h *Handler) notFoundOrInternal(w http.ResponseWriter, err error, what string) {
	if store.IsNotFound(err) {
		h.writeError(w, http.StatusNotFound, what+" not found", nil)
		return
	}
	h.writeError(w, http.StatusInternalServerError, "Failed to load "+what, err)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	if status >= http.StatusInternalServerError && err != nil {
		h.Log.Error(message, zap.Error(err))
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
