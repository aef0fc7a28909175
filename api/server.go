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
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the SPA frontend
  5. tenantCtx:  X-Tenant-ID scoping on tenant routes

ROUTE GROUPS:
  /api/tenants/*               Tenant administration (unscoped)
  /api/scenarios/*             Demo scenarios (unscoped)
  /api/students/*              Students, debt, credit
  /api/activities/*            Billable activities
  /api/payments/*              Payment records
  /api/fee-config              Tenant fee configuration
  /api/scheduled-activities/*  Events and donation tracking
  /api/commitments/*           Pledge fulfillment
  /api/reports/*               Debt summary, sweep history

SECURITY NOTE:
  No authentication middleware; the hosting layer in front of this
  service authenticates and injects X-Tenant-ID.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Tenant-ID"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Tenant administration (no tenant scope)
		r.Route("/tenants", func(r chi.Router) {
			r.Get("/", h.ListTenants)
			r.Post("/", h.CreateTenant)
		})

		// Demo scenarios (no tenant scope)
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})

		// Tenant-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(tenantCtx)

			r.Route("/students", func(r chi.Router) {
				r.Get("/", h.ListStudents)
				r.Post("/", h.CreateStudent)
				r.Get("/{id}", h.GetStudent)
				r.Get("/{id}/debt", h.GetStudentDebt)
				r.Get("/{id}/credit", h.GetStudentCredit)
				r.Get("/{id}/payments", h.ListStudentPayments)
				r.Post("/{id}/exclusions", h.CreateExclusion)
				r.Delete("/{id}/exclusions/{activityID}", h.DeleteExclusion)
				r.Get("/{id}/credit-movements", h.ListCreditMovements)
				r.Post("/{id}/credit-movements", h.CreateCreditMovement)
			})

			r.Route("/activities", func(r chi.Router) {
				r.Get("/", h.ListActivities)
				r.Post("/", h.CreateActivity)
				r.Get("/{id}", h.GetActivity)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", h.ListPayments)
				r.Post("/", h.CreatePayment)
			})

			r.Route("/fee-config", func(r chi.Router) {
				r.Get("/", h.GetFeeConfig)
				r.Put("/", h.PutFeeConfig)
			})

			r.Route("/scheduled-activities", func(r chi.Router) {
				r.Get("/", h.ListScheduledActivities)
				r.Post("/", h.CreateScheduledActivity)
				r.Get("/{id}", h.GetScheduledActivity)
				r.Post("/{id}/items", h.CreateDonationItem)
				r.Post("/{id}/commitments", h.CreateCommitment)
				r.Get("/{id}/donations", h.GetDonationProgress)
			})

			r.Route("/commitments", func(r chi.Router) {
				r.Post("/{id}/fulfill", h.FulfillCommitment)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/debt", h.GetDebtReport)
				r.Get("/sweeps", h.ListSweepRuns)
			})
		})
	})

	return r
}
