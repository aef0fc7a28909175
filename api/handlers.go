/*
handlers.go - HTTP API handlers for the school billing system

PURPOSE:
  Exposes the billing engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Tenants (unscoped):
    GET    /api/tenants                     List tenants
    POST   /api/tenants                     Create tenant

  Students:
    GET    /api/students                    List students
    POST   /api/students                    Enroll student
    GET    /api/students/{id}               Get student
    GET    /api/students/{id}/debt          Reconciled debt breakdown
    GET    /api/students/{id}/credit        Standing credit balance
    GET    /api/students/{id}/payments      Payment history
    POST   /api/students/{id}/exclusions    Exempt from an activity
    DELETE /api/students/{id}/exclusions/{activityID}
    GET    /api/students/{id}/credit-movements
    POST   /api/students/{id}/credit-movements

  Activities / payments:
    GET/POST /api/activities, GET /api/activities/{id}
    GET/POST /api/payments

  Fee config:
    GET/PUT /api/fee-config                 Factory-parsed JSON

  Donations:
    GET/POST /api/scheduled-activities
    GET      /api/scheduled-activities/{id}
    POST     /api/scheduled-activities/{id}/items
    POST     /api/scheduled-activities/{id}/commitments
    GET      /api/scheduled-activities/{id}/donations   Progress rollup
    POST     /api/commitments/{id}/fulfill

  Reports:
    GET /api/reports/debt                   Tenant-wide summary
    GET /api/reports/sweeps                 Recorded sweep runs

  Scenarios:
    GET  /api/scenarios                     List demo scenarios
    POST /api/scenarios/load                Load a demo scenario

TENANT SCOPING:
  Every scoped route reads the tenant from the X-Tenant-ID header
  (tenantCtx middleware in server.go). Authentication is handled by the
  hosting layer and is out of scope here.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate exclusion)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/kurso/billing-engine/billing"
	"github.com/kurso/billing-engine/donations"
	"github.com/kurso/billing-engine/factory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      billing.Store
	Donations  donations.Store
	Debt       *billing.DebtService
	FeeFactory *factory.FeeFactory
	Log        *logrus.Logger

	validate *validator.Validate

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler over the given stores.
func NewHandler(store billing.Store, donationStore donations.Store, log *logrus.Logger) *Handler {
	return &Handler{
		Store:      store,
		Donations:  donationStore,
		Debt:       billing.NewDebtService(store),
		FeeFactory: factory.NewFeeFactory(),
		Log:        log,
		validate:   validator.New(),
	}
}

// =============================================================================
// TENANT SCOPING
// =============================================================================

type ctxKey int

const tenantKey ctxKey = iota

// tenantCtx extracts the tenant from the X-Tenant-ID header. Scoped
// routes refuse requests without one.
func tenantCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get("X-Tenant-ID")
		if tenantID == "" {
			writeError(w, http.StatusBadRequest, "Missing X-Tenant-ID header", nil)
			return
		}
		ctx := context.WithValue(r.Context(), tenantKey, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tenantID(r *http.Request) string {
	id, _ := r.Context().Value(tenantKey).(string)
	return id
}

// =============================================================================
// TENANT HANDLERS
// =============================================================================

// ListTenants returns all tenants.
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.Store.ListTenants(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tenants", err)
		return
	}

	dtos := make([]TenantDTO, len(tenants))
	for i, t := range tenants {
		dtos[i] = TenantDTO{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt.Format(time.RFC3339)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTenant creates a new tenant.
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	t := billing.Tenant{
		ID:        orNewID(req.ID),
		Name:      req.Name,
		CreatedAt: time.Now(),
	}
	if err := h.Store.SaveTenant(r.Context(), t); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create tenant", err)
		return
	}

	writeJSON(w, http.StatusCreated, TenantDTO{ID: t.ID, Name: t.Name})
}

// =============================================================================
// STUDENT HANDLERS
// =============================================================================

// ListStudents returns the tenant's students.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Store.ListStudents(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list students", err)
		return
	}

	dtos := make([]StudentDTO, len(students))
	for i, s := range students {
		dtos[i] = toStudentDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStudent returns a single student.
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.Store.GetStudent(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get student", err)
		return
	}
	if student == nil {
		writeError(w, http.StatusNotFound, "Student not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(*student))
}

// CreateStudent enrolls a new student.
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	enrollment, err := time.Parse(dayFormat, req.EnrollmentDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid enrollment_date format (use YYYY-MM-DD)", err)
		return
	}

	student := billing.Student{
		ID:             orNewID(req.ID),
		TenantID:       tenantID(r),
		Name:           req.Name,
		Guardian:       req.Guardian,
		EnrollmentDate: enrollment,
		CreatedAt:      time.Now(),
	}
	if err := h.Store.SaveStudent(r.Context(), student); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create student", err)
		return
	}

	writeJSON(w, http.StatusCreated, toStudentDTO(student))
}

// =============================================================================
// DEBT HANDLERS
// =============================================================================

// GetStudentDebt returns the reconciled debt breakdown for one student.
func (h *Handler) GetStudentDebt(w http.ResponseWriter, r *http.Request) {
	report, err := h.Debt.StudentDebt(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.domainError(w, "Failed to compute debt", err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtReportDTO(*report))
}

// GetStudentCredit returns the student's standing credit balance.
func (h *Handler) GetStudentCredit(w http.ResponseWriter, r *http.Request) {
	report, err := h.Debt.StudentDebt(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.domainError(w, "Failed to compute credit balance", err)
		return
	}
	writeJSON(w, http.StatusOK, CreditBalanceDTO{
		StudentID:     report.Student.ID,
		CreditBalance: report.CreditBalance.InexactFloat64(),
		Currency:      report.Currency,
	})
}

// GetDebtReport returns the tenant-wide debt summary.
func (h *Handler) GetDebtReport(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Debt.TenantDebtSummary(r.Context(), tenantID(r))
	if err != nil {
		h.domainError(w, "Failed to compute debt report", err)
		return
	}

	dto := TenantDebtSummaryDTO{
		TenantID:   summary.TenantID,
		AsOf:       summary.AsOf.Format(dayFormat),
		Students:   summary.Students,
		Delinquent: summary.Delinquent,
		TotalDebt:  summary.TotalDebt.InexactFloat64(),
		Reports:    []DebtReportDTO{},
	}
	for _, report := range summary.Reports {
		dto.Reports = append(dto.Reports, toDebtReportDTO(report))
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// ACTIVITY HANDLERS
// =============================================================================

// ListActivities returns the tenant's activities.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.Store.ListActivities(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list activities", err)
		return
	}

	dtos := make([]ActivityDTO, len(activities))
	for i, a := range activities {
		dtos[i] = toActivityDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetActivity returns a single activity.
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.Store.GetActivity(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get activity", err)
		return
	}
	if activity == nil {
		writeError(w, http.StatusNotFound, "Activity not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toActivityDTO(*activity))
}

// CreateActivity creates a billable activity.
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req CreateActivityRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	activity := billing.Activity{
		ID:        orNewID(req.ID),
		TenantID:  tenantID(r),
		Name:      req.Name,
		Amount:    decimal.NewFromFloat(req.Amount),
		CreatedAt: time.Now(),
	}
	if req.Date != "" {
		date, err := time.Parse(dayFormat, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		activity.Date = &date
	}

	if err := h.Store.SaveActivity(r.Context(), activity); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create activity", err)
		return
	}

	writeJSON(w, http.StatusCreated, toActivityDTO(activity))
}

// =============================================================================
// EXCLUSION HANDLERS
// =============================================================================

// CreateExclusion exempts a student from one activity's fee.
func (h *Handler) CreateExclusion(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	var req CreateExclusionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	tenant := tenantID(r)

	student, err := h.Store.GetStudent(ctx, tenant, studentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get student", err)
		return
	}
	if student == nil {
		writeError(w, http.StatusNotFound, "Student not found", nil)
		return
	}
	activity, err := h.Store.GetActivity(ctx, tenant, req.ActivityID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get activity", err)
		return
	}
	if activity == nil {
		writeError(w, http.StatusNotFound, "Activity not found", nil)
		return
	}

	exclusion := billing.ActivityExclusion{
		TenantID:   tenant,
		StudentID:  studentID,
		ActivityID: req.ActivityID,
		CreatedAt:  time.Now(),
	}
	if err := h.Store.SaveExclusion(ctx, exclusion); err != nil {
		if errors.Is(err, billing.ErrDuplicateExclusion) {
			writeError(w, http.StatusConflict, "Exclusion already exists", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create exclusion", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"student_id":  studentID,
		"activity_id": req.ActivityID,
	})
}

// DeleteExclusion removes an exemption.
func (h *Handler) DeleteExclusion(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteExclusion(r.Context(), tenantID(r),
		chi.URLParam(r, "id"), chi.URLParam(r, "activityID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete exclusion", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns the tenant's payments.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Store.ListPayments(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListStudentPayments returns one student's payments.
func (h *Handler) ListStudentPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Store.ListPaymentsByStudent(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePayment records a payment.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	date, err := time.Parse(dayFormat, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	payment := billing.Payment{
		ID:        orNewID(req.ID),
		TenantID:  tenantID(r),
		Concept:   req.Concept,
		Amount:    decimal.NewFromFloat(req.Amount),
		Date:      date,
		CreatedAt: time.Now(),
	}
	if req.StudentID != "" {
		payment.StudentID = &req.StudentID
	}
	if req.ActivityID != "" {
		payment.ActivityID = &req.ActivityID
	}

	if err := h.Store.SavePayment(r.Context(), payment); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentDTO(payment))
}

// =============================================================================
// CREDIT MOVEMENT HANDLERS
// =============================================================================

// ListCreditMovements returns one student's credit ledger.
func (h *Handler) ListCreditMovements(w http.ResponseWriter, r *http.Request) {
	movements, err := h.Store.ListCreditMovementsByStudent(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list credit movements", err)
		return
	}

	dtos := make([]CreditMovementDTO, len(movements))
	for i, m := range movements {
		dtos[i] = toCreditMovementDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCreditMovement records a credit movement for a student.
func (h *Handler) CreateCreditMovement(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	var req CreateCreditMovementRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if !billing.ValidMovementType(req.Type) {
		writeError(w, http.StatusBadRequest, "Invalid credit movement type", billing.ErrInvalidMovementType)
		return
	}

	ctx := r.Context()
	tenant := tenantID(r)

	student, err := h.Store.GetStudent(ctx, tenant, studentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get student", err)
		return
	}
	if student == nil {
		writeError(w, http.StatusNotFound, "Student not found", nil)
		return
	}

	movement := billing.CreditMovement{
		ID:        uuid.NewString(),
		TenantID:  tenant,
		StudentID: studentID,
		Amount:    decimal.NewFromFloat(req.Amount),
		Type:      req.Type,
		Reason:    req.Reason,
		CreatedAt: time.Now(),
	}
	if err := h.Store.SaveCreditMovement(ctx, movement); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record credit movement", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCreditMovementDTO(movement))
}

// =============================================================================
// FEE CONFIG HANDLERS
// =============================================================================

// GetFeeConfig returns the tenant's fee configuration (defaults when unset).
func (h *Handler) GetFeeConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Store.GetFeeConfig(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get fee config", err)
		return
	}

	if cfg == nil {
		writeJSON(w, http.StatusOK, FeeConfigDTO{
			Config: h.FeeFactory.DefaultJSON(tenantID(r)),
		})
		return
	}
	writeJSON(w, http.StatusOK, FeeConfigDTO{
		Config:    h.FeeFactory.ToJSON(*cfg),
		UpdatedAt: cfg.UpdatedAt.Format(time.RFC3339),
	})
}

// PutFeeConfig replaces the tenant's fee configuration.
func (h *Handler) PutFeeConfig(w http.ResponseWriter, r *http.Request) {
	var raw factory.FeeConfigJSON
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cfg, err := h.FeeFactory.FromJSON(tenantID(r), raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid fee configuration", err)
		return
	}

	if err := h.Store.SaveFeeConfig(r.Context(), cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save fee config", err)
		return
	}

	writeJSON(w, http.StatusOK, FeeConfigDTO{
		Config:    h.FeeFactory.ToJSON(cfg),
		UpdatedAt: cfg.UpdatedAt.Format(time.RFC3339),
	})
}

// =============================================================================
// DONATION HANDLERS
// =============================================================================

// ListScheduledActivities returns the tenant's planned events.
func (h *Handler) ListScheduledActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.Donations.ListScheduledActivities(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list scheduled activities", err)
		return
	}

	dtos := make([]ScheduledActivityDTO, len(activities))
	for i, a := range activities {
		dtos[i] = toScheduledActivityDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetScheduledActivity returns a single planned event.
func (h *Handler) GetScheduledActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.Donations.GetScheduledActivity(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get scheduled activity", err)
		return
	}
	if activity == nil {
		writeError(w, http.StatusNotFound, "Scheduled activity not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toScheduledActivityDTO(*activity))
}

// CreateScheduledActivity plans a school event.
func (h *Handler) CreateScheduledActivity(w http.ResponseWriter, r *http.Request) {
	var req CreateScheduledActivityRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	date, err := time.Parse(dayFormat, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	activity := donations.ScheduledActivity{
		ID:        orNewID(req.ID),
		TenantID:  tenantID(r),
		Title:     req.Title,
		Date:      date,
		Notes:     req.Notes,
		CreatedAt: time.Now(),
	}
	if err := h.Donations.SaveScheduledActivity(r.Context(), activity); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create scheduled activity", err)
		return
	}

	writeJSON(w, http.StatusCreated, toScheduledActivityDTO(activity))
}

// CreateDonationItem adds a requested item to a scheduled activity.
func (h *Handler) CreateDonationItem(w http.ResponseWriter, r *http.Request) {
	scheduledID := chi.URLParam(r, "id")

	var req CreateDonationItemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	tenant := tenantID(r)

	activity, err := h.Donations.GetScheduledActivity(ctx, tenant, scheduledID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get scheduled activity", err)
		return
	}
	if activity == nil {
		writeError(w, http.StatusNotFound, "Scheduled activity not found", nil)
		return
	}

	unit := req.Unit
	if unit == "" {
		unit = "unidades"
	}
	item := donations.Item{
		ID:                  uuid.NewString(),
		TenantID:            tenant,
		ScheduledActivityID: scheduledID,
		Name:                req.Name,
		Unit:                unit,
		RequiredQty:         decimal.NewFromFloat(req.RequiredQty),
		CreatedAt:           time.Now(),
	}
	if err := h.Donations.SaveItem(ctx, item); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create donation item", err)
		return
	}

	writeJSON(w, http.StatusCreated, toDonationItemDTO(item))
}

// CreateCommitment records a family's pledge toward a donation item.
func (h *Handler) CreateCommitment(w http.ResponseWriter, r *http.Request) {
	scheduledID := chi.URLParam(r, "id")

	var req CreateCommitmentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	tenant := tenantID(r)

	items, err := h.Donations.ListItemsByActivity(ctx, tenant, scheduledID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list donation items", err)
		return
	}
	found := false
	for _, item := range items {
		if item.ID == req.ItemID {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "Donation item not found on this activity", nil)
		return
	}

	commitment := donations.Commitment{
		ID:        uuid.NewString(),
		TenantID:  tenant,
		ItemID:    req.ItemID,
		StudentID: req.StudentID,
		Qty:       decimal.NewFromFloat(req.Qty),
		CreatedAt: time.Now(),
	}
	if err := h.Donations.SaveCommitment(ctx, commitment); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record commitment", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCommitmentDTO(commitment))
}

// FulfillCommitment flips a pledge's delivered flag.
func (h *Handler) FulfillCommitment(w http.ResponseWriter, r *http.Request) {
	req := FulfillCommitmentRequest{Fulfilled: true}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	err := h.Donations.UpdateCommitmentFulfilled(r.Context(), tenantID(r),
		chi.URLParam(r, "id"), req.Fulfilled)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update commitment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDonationProgress returns the reconciled donation rollup for one
// scheduled activity.
func (h *Handler) GetDonationProgress(w http.ResponseWriter, r *http.Request) {
	scheduledID := chi.URLParam(r, "id")
	ctx := r.Context()
	tenant := tenantID(r)

	activity, err := h.Donations.GetScheduledActivity(ctx, tenant, scheduledID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get scheduled activity", err)
		return
	}
	if activity == nil {
		writeError(w, http.StatusNotFound, "Scheduled activity not found", nil)
		return
	}

	items, err := h.Donations.ListItemsByActivity(ctx, tenant, scheduledID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list donation items", err)
		return
	}
	commitments, err := h.Donations.ListCommitmentsByActivity(ctx, tenant, scheduledID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list commitments", err)
		return
	}

	progress := donations.ActivityProgressFor(*activity, items, commitments)

	dto := ActivityDonationsDTO{
		Activity:       toScheduledActivityDTO(progress.Activity),
		Items:          []ItemProgressDTO{},
		FullyCommitted: progress.FullyCommitted,
		FullyFulfilled: progress.FullyFulfilled,
	}
	for _, p := range progress.Items {
		dto.Items = append(dto.Items, toItemProgressDTO(p))
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// SWEEP RUN HANDLERS
// =============================================================================

// ListSweepRuns returns recorded delinquency sweep passes, newest first.
func (h *Handler) ListSweepRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	runs, err := h.Store.ListSweepRuns(r.Context(), tenantID(r), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sweep runs", err)
		return
	}

	dtos := make([]SweepRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toSweepRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

// decodeAndValidate decodes the body into req and runs struct
// validation, writing the error response itself on failure.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// domainError maps domain errors onto HTTP statuses.
func (h *Handler) domainError(w http.ResponseWriter, message string, err error) {
	switch {
	case billing.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case billing.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func orNewID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
