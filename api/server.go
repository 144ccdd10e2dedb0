/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Trust proxy headers for client IPs
  3. RequestLogger: Structured request logging (zap)
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/customers/*         Customer registration and lookup
  /api/loans/*             Loan applications, lifecycle, payments
  /api/branches/*          Branch management
  /api/analytics/summary   Cross-branch portfolio summary
  /api/audit               Audit trail query
  /api/calculator/*        Stateless repayment quotes
  /health                  Liveness probe

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public;
  actor identity is self-reported and audited, not verified.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Customer routes
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Post("/", h.CreateCustomer)
			r.Get("/{id}", h.GetCustomer)
		})

		// Loan routes
		r.Route("/loans", func(r chi.Router) {
			r.Get("/", h.ListLoans)
			r.Post("/", h.CreateLoan)
			r.Get("/{id}", h.GetLoan)
			r.Get("/{id}/breakdown", h.GetLoanBreakdown)
			r.Get("/{id}/schedule", h.GetLoanSchedule)
			r.Get("/{id}/balance", h.GetLoanBalance)
			r.Get("/{id}/payments", h.GetLoanPayments)
			r.Post("/{id}/payments", h.RecordPayment)
			r.Post("/{id}/approve", h.ApproveLoan)
			r.Post("/{id}/disburse", h.DisburseLoan)
		})

		// Branch routes
		r.Route("/branches", func(r chi.Router) {
			r.Get("/", h.ListBranches)
			r.Post("/", h.CreateBranch)
		})

		// Admin dashboard
		r.Get("/analytics/summary", h.GetAnalyticsSummary)
		r.Get("/audit", h.QueryAudit)

		// Application-form calculator
		r.Post("/calculator/breakdown", h.CalculateBreakdown)
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
