/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates a demo tenant with
	students, activities, payments and movements that demonstrate specific
	reconciliation behavior.

AVAILABLE SCENARIOS:

	fresh-school:    Students enrolled, no payments yet (pure accrual)
	mixed-payments:  Cuota payments, concept-matched activity payments,
	                 partial shortfalls, an exclusion
	credit-redirect: Redirected credits covering fee debt + standing credit
	donations-fair:  Spring fair with donation items and commitments

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create demo tenant + fee config
 3. Enroll students
 4. Add activities, payments, movements, donations

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "mixed-payments"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Shares the Handler and its stores
  - server.go: /api/scenarios routes
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kurso/billing-engine/billing"
	"github.com/kurso/billing-engine/donations"
)

// DemoTenantID is the tenant every scenario seeds.
const DemoTenantID = "demo"

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "fresh-school",
		Name:        "Fresh School",
		Description: "Students enrolled since March with no payments yet",
	},
	{
		ID:          "mixed-payments",
		Name:        "Mixed Payments",
		Description: "Cuota payments, concept-matched activity payments, a partial shortfall and an exclusion",
	},
	{
		ID:          "credit-redirect",
		Name:        "Credit Redirection",
		Description: "Redirected credit covering fee debt plus a standing credit balance",
	},
	{
		ID:          "donations-fair",
		Name:        "Donations Fair",
		Description: "Spring fair collecting donation items with partial commitments",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "fresh-school":
		err = h.loadFreshSchoolScenario(ctx)
	case "mixed-payments":
		err = h.loadMixedPaymentsScenario(ctx)
	case "credit-redirect":
		err = h.loadCreditRedirectScenario(ctx)
	case "donations-fair":
		err = h.loadDonationsFairScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	h.Log.WithField("scenario", req.ScenarioID).Info("scenario loaded")

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// day builds a date in the current billing year, so loaded scenarios
// always show live-looking debt.
func day(month time.Month, d int) time.Time {
	return time.Date(time.Now().Year(), month, d, 0, 0, 0, 0, time.UTC)
}

func (h *Handler) seedTenant(ctx context.Context, fee int64) error {
	if err := h.Store.SaveTenant(ctx, billing.Tenant{
		ID:        DemoTenantID,
		Name:      "Escuela Demo",
		CreatedAt: time.Now(),
	}); err != nil {
		return err
	}
	return h.Store.SaveFeeConfig(ctx, billing.FeeConfig{
		TenantID:   DemoTenantID,
		MonthlyFee: decimal.NewFromInt(fee),
		Currency:   "ARS",
		UpdatedAt:  time.Now(),
	})
}

func (h *Handler) seedStudent(ctx context.Context, id, name string, enrolled time.Time) error {
	return h.Store.SaveStudent(ctx, billing.Student{
		ID:             id,
		TenantID:       DemoTenantID,
		Name:           name,
		EnrollmentDate: enrolled,
		CreatedAt:      time.Now(),
	})
}

func (h *Handler) loadFreshSchoolScenario(ctx context.Context) error {
	if err := h.seedTenant(ctx, 3000); err != nil {
		return err
	}
	students := []struct {
		id, name string
		enrolled time.Time
	}{
		{"stu-ana", "Ana Suárez", day(time.March, 1)},
		{"stu-bruno", "Bruno Paz", day(time.March, 1)},
		{"stu-carla", "Carla Núñez", day(time.May, 10)}, // later start, fewer months
	}
	for _, s := range students {
		if err := h.seedStudent(ctx, s.id, s.name, s.enrolled); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadMixedPaymentsScenario(ctx context.Context) error {
	if err := h.loadFreshSchoolScenario(ctx); err != nil {
		return err
	}

	rifaDate := day(time.April, 20)
	if err := h.Store.SaveActivity(ctx, billing.Activity{
		ID: "act-rifa", TenantID: DemoTenantID, Name: "Rifa anual",
		Amount: decimal.NewFromInt(5000), Date: &rifaDate, CreatedAt: time.Now(),
	}); err != nil {
		return err
	}
	campDate := day(time.June, 5)
	if err := h.Store.SaveActivity(ctx, billing.Activity{
		ID: "act-camp", TenantID: DemoTenantID, Name: "Campamento",
		Amount: decimal.NewFromInt(8000), Date: &campDate, CreatedAt: time.Now(),
	}); err != nil {
		return err
	}

	ana := "stu-ana"
	bruno := "stu-bruno"
	payments := []billing.Payment{
		// Ana pays two fee months and the raffle by concept text
		{ID: "pay-1", TenantID: DemoTenantID, StudentID: &ana,
			Concept: "Cuota marzo", Amount: decimal.NewFromInt(3000), Date: day(time.March, 10)},
		{ID: "pay-2", TenantID: DemoTenantID, StudentID: &ana,
			Concept: "cuota abril", Amount: decimal.NewFromInt(3000), Date: day(time.April, 8)},
		{ID: "pay-3", TenantID: DemoTenantID, StudentID: &ana,
			Concept: "Pago rifa anual", Amount: decimal.NewFromInt(5000), Date: day(time.April, 18)},
		// Bruno covers the camp only partially
		{ID: "pay-4", TenantID: DemoTenantID, StudentID: &bruno,
			Concept: "Seña campamento", Amount: decimal.NewFromInt(4000), Date: day(time.June, 1)},
	}
	activityID := "act-camp"
	payments[3].ActivityID = &activityID
	for _, p := range payments {
		p.CreatedAt = time.Now()
		if err := h.Store.SavePayment(ctx, p); err != nil {
			return err
		}
	}

	// Carla doesn't participate in the raffle
	return h.Store.SaveExclusion(ctx, billing.ActivityExclusion{
		TenantID: DemoTenantID, StudentID: "stu-carla", ActivityID: "act-rifa",
		CreatedAt: time.Now(),
	})
}

func (h *Handler) loadCreditRedirectScenario(ctx context.Context) error {
	if err := h.loadFreshSchoolScenario(ctx); err != nil {
		return err
	}

	movements := []billing.CreditMovement{
		// Refund lands as standing credit...
		{ID: "mov-1", TenantID: DemoTenantID, StudentID: "stu-ana",
			Amount: decimal.NewFromInt(4500), Type: "activity_refund",
			Reason: "Excursión cancelada"},
		// ...and part of it is redirected into the monthly fee
		{ID: "mov-2", TenantID: DemoTenantID, StudentID: "stu-ana",
			Amount: decimal.NewFromInt(-3000), Type: "payment_redirect",
			Reason: "Aplicado a cuota de marzo"},
	}
	for _, m := range movements {
		m.CreatedAt = time.Now()
		if err := h.Store.SaveCreditMovement(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadDonationsFairScenario(ctx context.Context) error {
	if err := h.loadFreshSchoolScenario(ctx); err != nil {
		return err
	}

	if err := h.Donations.SaveScheduledActivity(ctx, donations.ScheduledActivity{
		ID: "sa-feria", TenantID: DemoTenantID, Title: "Feria de primavera",
		Date: day(time.September, 21), Notes: "Patio principal",
		CreatedAt: time.Now(),
	}); err != nil {
		return err
	}

	items := []donations.Item{
		{ID: "item-agua", TenantID: DemoTenantID, ScheduledActivityID: "sa-feria",
			Name: "Botellas de agua", Unit: "unidades", RequiredQty: decimal.NewFromInt(30)},
		{ID: "item-harina", TenantID: DemoTenantID, ScheduledActivityID: "sa-feria",
			Name: "Harina", Unit: "kg", RequiredQty: decimal.NewFromInt(5)},
	}
	for _, item := range items {
		item.CreatedAt = time.Now()
		if err := h.Donations.SaveItem(ctx, item); err != nil {
			return err
		}
	}

	commitments := []donations.Commitment{
		{ID: "com-1", TenantID: DemoTenantID, ItemID: "item-agua",
			StudentID: "stu-ana", Qty: decimal.NewFromInt(10), Fulfilled: true},
		{ID: "com-2", TenantID: DemoTenantID, ItemID: "item-agua",
			StudentID: "stu-bruno", Qty: decimal.NewFromInt(5)},
		{ID: "com-3", TenantID: DemoTenantID, ItemID: "item-harina",
			StudentID: "stu-carla", Qty: decimal.NewFromInt(5)},
	}
	for _, c := range commitments {
		c.CreatedAt = time.Now()
		if err := h.Donations.SaveCommitment(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
