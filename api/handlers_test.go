package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurso/billing-engine/billing"
	"github.com/kurso/billing-engine/store/memory"
)

const testTenant = "tenant-1"

// newTestAPI wires the handler over a fresh memory store with the clock
// pinned to 2025-04-30, seeds the tenant, and returns the router.
func newTestAPI(t *testing.T) (http.Handler, *Handler, *memory.Store) {
	t.Helper()

	store := memory.New()
	log := logrus.New()
	log.SetOutput(io.Discard)

	h := NewHandler(store, store, log)
	h.Debt.Now = func() time.Time {
		return time.Date(2025, time.April, 30, 12, 0, 0, 0, time.UTC)
	}

	require.NoError(t, store.SaveTenant(context.Background(),
		billing.Tenant{ID: testTenant, Name: "Escuela Test"}))

	return NewRouter(h), h, store
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, tenant string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tenant != "" {
		req.Header.Set("X-Tenant-ID", tenant)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

// =============================================================================
// TENANT SCOPING
// =============================================================================

func TestScopedRoutesRequireTenantHeader(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/api/students", nil, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Contains(t, resp.Error, "X-Tenant-ID")
}

func TestTenantRoutesAreUnscoped(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/api/tenants", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	tenants := decode[[]TenantDTO](t, rec)
	require.Len(t, tenants, 1)
	assert.Equal(t, testTenant, tenants[0].ID)
}

// =============================================================================
// STUDENTS AND DEBT
// =============================================================================

func TestCreateStudentAndGetDebt(t *testing.T) {
	router, _, _ := newTestAPI(t)

	// GIVEN a student enrolled on March 1st
	rec := doJSON(t, router, http.MethodPost, "/api/students", CreateStudentRequest{
		ID:             "stu-1",
		Name:           "Ana Suárez",
		EnrollmentDate: "2025-03-01",
	}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// WHEN fetching the debt at the pinned April 30th clock
	rec = doJSON(t, router, http.MethodGet, "/api/students/stu-1/debt", nil, testTenant)

	// THEN two default fee months are owed
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[DebtReportDTO](t, rec)
	assert.Equal(t, 6000.0, report.MonthlyDebt)
	assert.Equal(t, 6000.0, report.TotalDebt)
	assert.Equal(t, "ARS", report.Currency)
	assert.Empty(t, report.ActivityDebts)
}

func TestCreateStudent_RejectsBadPayload(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/students", CreateStudentRequest{
		Name: "X", EnrollmentDate: "03/01/2025",
	}, testTenant)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStudentDebt_MissingStudent(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/api/students/ghost/debt", nil, testTenant)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentsReduceDebt(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/students", CreateStudentRequest{
		ID: "stu-1", Name: "Ana Suárez", EnrollmentDate: "2025-03-01",
	}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code)

	// A cuota payment attributed by concept text
	rec = doJSON(t, router, http.MethodPost, "/api/payments", CreatePaymentRequest{
		StudentID: "stu-1", Concept: "Cuota marzo", Amount: 3000, Date: "2025-03-10",
	}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/students/stu-1/debt", nil, testTenant)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[DebtReportDTO](t, rec)
	assert.Equal(t, 3000.0, report.MonthlyDebt)
}

func TestActivityShortfallAppearsInDebt(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/students", CreateStudentRequest{
		ID: "stu-1", Name: "Ana Suárez", EnrollmentDate: "2025-03-01",
	}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/activities", CreateActivityRequest{
		ID: "act-rifa", Name: "Rifa anual", Amount: 5000, Date: "2025-04-20",
	}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/payments", CreatePaymentRequest{
		StudentID: "stu-1", ActivityID: "act-rifa", Concept: "Seña rifa",
		Amount: 2000, Date: "2025-04-18",
	}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/students/stu-1/debt", nil, testTenant)
	report := decode[DebtReportDTO](t, rec)
	require.Len(t, report.ActivityDebts, 1)
	assert.Equal(t, "Rifa anual", report.ActivityDebts[0].Name)
	assert.Equal(t, 3000.0, report.ActivityDebts[0].Amount)
	assert.Equal(t, 9000.0, report.TotalDebt)
}

// =============================================================================
// EXCLUSIONS
// =============================================================================

func TestExclusionRemovesActivityDebt(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/students", CreateStudentRequest{
		ID: "stu-1", Name: "Ana Suárez", EnrollmentDate: "2025-03-01",
	}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/activities", CreateActivityRequest{
		ID: "act-rifa", Name: "Rifa anual", Amount: 5000, Date: "2025-04-20",
	}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/students/stu-1/exclusions",
		CreateExclusionRequest{ActivityID: "act-rifa"}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Duplicate exclusion conflicts
	rec = doJSON(t, router, http.MethodPost, "/api/students/stu-1/exclusions",
		CreateExclusionRequest{ActivityID: "act-rifa"}, testTenant)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/students/stu-1/debt", nil, testTenant)
	report := decode[DebtReportDTO](t, rec)
	assert.Empty(t, report.ActivityDebts)

	// Removing the exclusion brings the debt back
	rec = doJSON(t, router, http.MethodDelete, "/api/students/stu-1/exclusions/act-rifa", nil, testTenant)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/students/stu-1/debt", nil, testTenant)
	report = decode[DebtReportDTO](t, rec)
	require.Len(t, report.ActivityDebts, 1)
}

// =============================================================================
// CREDIT MOVEMENTS
// =============================================================================

func TestCreditMovementsAndBalance(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/students", CreateStudentRequest{
		ID: "stu-1", Name: "Ana Suárez", EnrollmentDate: "2025-03-01",
	}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/students/stu-1/credit-movements",
		CreateCreditMovementRequest{Amount: 4500, Type: "activity_refund", Reason: "Excursión cancelada"},
		testTenant)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/students/stu-1/credit-movements",
		CreateCreditMovementRequest{Amount: -3000, Type: "payment_redirect"}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Unknown type rejected
	rec = doJSON(t, router, http.MethodPost, "/api/students/stu-1/credit-movements",
		CreateCreditMovementRequest{Amount: 100, Type: "teleport"}, testTenant)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/students/stu-1/credit", nil, testTenant)
	require.Equal(t, http.StatusOK, rec.Code)
	credit := decode[CreditBalanceDTO](t, rec)
	assert.Equal(t, 1500.0, credit.CreditBalance)

	// The redirect also reduced the fee debt
	rec = doJSON(t, router, http.MethodGet, "/api/students/stu-1/debt", nil, testTenant)
	report := decode[DebtReportDTO](t, rec)
	assert.Equal(t, 3000.0, report.MonthlyDebt)
}

// =============================================================================
// FEE CONFIG
// =============================================================================

func TestFeeConfigRoundTrip(t *testing.T) {
	router, _, _ := newTestAPI(t)

	// Defaults before configuration
	rec := doJSON(t, router, http.MethodGet, "/api/fee-config", nil, testTenant)
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decode[FeeConfigDTO](t, rec)
	require.NotNil(t, cfg.Config.MonthlyFee)
	assert.Equal(t, 3000.0, *cfg.Config.MonthlyFee)

	rec = doJSON(t, router, http.MethodPut, "/api/fee-config",
		map[string]any{"monthly_fee": 4500, "currency": "UYU"}, testTenant)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/fee-config", nil, testTenant)
	cfg = decode[FeeConfigDTO](t, rec)
	require.NotNil(t, cfg.Config.MonthlyFee)
	assert.Equal(t, 4500.0, *cfg.Config.MonthlyFee)
	assert.Equal(t, "UYU", cfg.Config.Currency)

	// Invalid config rejected
	rec = doJSON(t, router, http.MethodPut, "/api/fee-config",
		map[string]any{"monthly_fee": -1}, testTenant)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// DONATIONS
// =============================================================================

func TestDonationFlow(t *testing.T) {
	router, _, _ := newTestAPI(t)

	// GIVEN a scheduled activity with one item
	rec := doJSON(t, router, http.MethodPost, "/api/scheduled-activities",
		CreateScheduledActivityRequest{ID: "sa-feria", Title: "Feria de primavera", Date: "2025-09-21"},
		testTenant)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/scheduled-activities/sa-feria/items",
		CreateDonationItemRequest{Name: "Botellas de agua", RequiredQty: 30}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[DonationItemDTO](t, rec)
	assert.Equal(t, "unidades", item.Unit, "unit defaults")

	// WHEN two families commit, one fulfills
	rec = doJSON(t, router, http.MethodPost, "/api/scheduled-activities/sa-feria/commitments",
		CreateCommitmentRequest{ItemID: item.ID, StudentID: "stu-1", Qty: 10}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[CommitmentDTO](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/scheduled-activities/sa-feria/commitments",
		CreateCommitmentRequest{ItemID: item.ID, StudentID: "stu-2", Qty: 5}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/commitments/"+first.ID+"/fulfill", nil, testTenant)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// THEN the rollup reconciles required vs committed vs fulfilled
	rec = doJSON(t, router, http.MethodGet, "/api/scheduled-activities/sa-feria/donations", nil, testTenant)
	require.Equal(t, http.StatusOK, rec.Code)
	progress := decode[ActivityDonationsDTO](t, rec)
	require.Len(t, progress.Items, 1)
	assert.Equal(t, 15.0, progress.Items[0].Committed)
	assert.Equal(t, 10.0, progress.Items[0].Fulfilled)
	assert.Equal(t, 15.0, progress.Items[0].RemainingToCommit)
	assert.False(t, progress.FullyCommitted)
}

func TestCreateCommitment_UnknownItem(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/scheduled-activities",
		CreateScheduledActivityRequest{ID: "sa-1", Title: "Feria", Date: "2025-09-21"}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/scheduled-activities/sa-1/commitments",
		CreateCommitmentRequest{ItemID: "ghost", StudentID: "stu-1", Qty: 1}, testTenant)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// REPORTS
// =============================================================================

func TestTenantDebtReport(t *testing.T) {
	router, _, _ := newTestAPI(t)

	for _, s := range []CreateStudentRequest{
		{ID: "stu-1", Name: "Ana Suárez", EnrollmentDate: "2025-03-01"},
		{ID: "stu-2", Name: "Bruno Paz", EnrollmentDate: "2025-03-01"},
	} {
		rec := doJSON(t, router, http.MethodPost, "/api/students", s, testTenant)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := doJSON(t, router, http.MethodPost, "/api/payments", CreatePaymentRequest{
		StudentID: "stu-2", Concept: "Cuota marzo y abril", Amount: 6000, Date: "2025-04-01",
	}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/reports/debt", nil, testTenant)

	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[TenantDebtSummaryDTO](t, rec)
	assert.Equal(t, 2, summary.Students)
	assert.Equal(t, 1, summary.Delinquent)
	assert.Equal(t, 6000.0, summary.TotalDebt)
}

func TestSweepRecordsRuns(t *testing.T) {
	router, h, store := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/students", CreateStudentRequest{
		ID: "stu-1", Name: "Ana Suárez", EnrollmentDate: "2025-03-01",
	}, testTenant)
	require.Equal(t, http.StatusCreated, rec.Code)

	log := logrus.New()
	log.SetOutput(io.Discard)
	sweep := NewDelinquencySweep(store, h.Debt, log)
	sweep.RunNow()

	rec = doJSON(t, router, http.MethodGet, "/api/reports/sweeps", nil, testTenant)
	require.Equal(t, http.StatusOK, rec.Code)
	runs := decode[[]SweepRunDTO](t, rec)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Students)
	assert.Equal(t, 1, runs[0].Delinquent)
	assert.Equal(t, 6000.0, runs[0].TotalDebt)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarioLifecycle(t *testing.T) {
	router, _, store := newTestAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/api/scenarios", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]ScenarioDTO](t, rec)
	assert.NotEmpty(t, list)

	rec = doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "mixed-payments"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	students, err := store.ListStudents(context.Background(), DemoTenantID)
	require.NoError(t, err)
	assert.NotEmpty(t, students)

	rec = doJSON(t, router, http.MethodGet, "/api/scenarios/current", nil, "")
	current := decode[ScenarioDTO](t, rec)
	assert.Equal(t, "mixed-payments", current.ID)

	rec = doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "no-such"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/scenarios/reset", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	students, err = store.ListStudents(context.Background(), DemoTenantID)
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestScenarioSeedsFeeConfig(t *testing.T) {
	router, _, store := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "fresh-school"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	cfg, err := store.GetFeeConfig(context.Background(), DemoTenantID)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.True(t, cfg.MonthlyFee.Equal(decimal.NewFromInt(3000)))
}
