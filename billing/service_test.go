package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurso/billing-engine/billing"
	"github.com/kurso/billing-engine/store/memory"
)

const tenantID = "tenant-1"

func money(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func fixedNow() time.Time {
	return time.Date(2025, time.April, 30, 12, 0, 0, 0, time.UTC)
}

// newService seeds a tenant with one student enrolled on March 1st and
// pins the clock to April 30th, so two fee months are accrued.
func newService(t *testing.T) (*billing.DebtService, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, store.SaveTenant(ctx, billing.Tenant{ID: tenantID, Name: "Escuela"}))
	require.NoError(t, store.SaveStudent(ctx, billing.Student{
		ID:             "stu-1",
		TenantID:       tenantID,
		Name:           "Ana Suárez",
		EnrollmentDate: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	}))

	svc := billing.NewDebtService(store)
	svc.Now = fixedNow
	return svc, store
}

func TestStudentDebt_AccruesDefaultFeeWhenUnconfigured(t *testing.T) {
	// GIVEN a tenant with no fee config and a student enrolled in March
	svc, _ := newService(t)

	// WHEN computing debt at the end of April
	report, err := svc.StudentDebt(context.Background(), tenantID, "stu-1")

	// THEN two months of the default fee are owed in the default currency
	require.NoError(t, err)
	assert.True(t, report.Breakdown.MonthlyDebt.Equal(money(6000)),
		"got %s", report.Breakdown.MonthlyDebt)
	assert.True(t, report.Breakdown.TotalDebt.Equal(money(6000)))
	assert.Equal(t, "ARS", report.Currency)
	assert.True(t, report.CreditBalance.IsZero())
}

func TestStudentDebt_UsesTenantFeeConfig(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	require.NoError(t, store.SaveFeeConfig(ctx, billing.FeeConfig{
		TenantID: tenantID, MonthlyFee: money(4500), Currency: "UYU",
	}))

	report, err := svc.StudentDebt(ctx, tenantID, "stu-1")

	require.NoError(t, err)
	assert.True(t, report.Breakdown.MonthlyDebt.Equal(money(9000)))
	assert.Equal(t, "UYU", report.Currency)
}

func TestStudentDebt_CuotaPaymentsAndActivityShortfall(t *testing.T) {
	// GIVEN a cuota payment, a dated activity and a partial payment on it
	svc, store := newService(t)
	ctx := context.Background()

	studentID := "stu-1"
	require.NoError(t, store.SavePayment(ctx, billing.Payment{
		ID: "pay-1", TenantID: tenantID, StudentID: &studentID,
		Concept: "Cuota marzo", Amount: money(3000),
		Date: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
	}))

	rifaDate := time.Date(2025, time.April, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveActivity(ctx, billing.Activity{
		ID: "act-rifa", TenantID: tenantID, Name: "Rifa anual",
		Amount: money(5000), Date: &rifaDate,
	}))
	require.NoError(t, store.SavePayment(ctx, billing.Payment{
		ID: "pay-2", TenantID: tenantID, StudentID: &studentID,
		Concept: "Pago rifa anual", Amount: money(2000),
		Date: time.Date(2025, time.April, 18, 0, 0, 0, 0, time.UTC),
	}))

	report, err := svc.StudentDebt(ctx, tenantID, studentID)

	require.NoError(t, err)
	// 6000 accrued - 3000 paid
	assert.True(t, report.Breakdown.MonthlyDebt.Equal(money(3000)))
	require.Len(t, report.Breakdown.ActivityDebts, 1)
	assert.Equal(t, "Rifa anual", report.Breakdown.ActivityDebts[0].Name)
	assert.True(t, report.Breakdown.ActivityDebts[0].Amount.Equal(money(3000)))
	assert.True(t, report.Breakdown.TotalDebt.Equal(money(6000)))
}

func TestStudentDebt_RedirectedCreditReducesFeeDebt(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCreditMovement(ctx, billing.CreditMovement{
		ID: "mov-1", TenantID: tenantID, StudentID: "stu-1",
		Amount: money(4500), Type: "activity_refund",
	}))
	require.NoError(t, store.SaveCreditMovement(ctx, billing.CreditMovement{
		ID: "mov-2", TenantID: tenantID, StudentID: "stu-1",
		Amount: money(-3000), Type: "payment_redirect",
	}))

	report, err := svc.StudentDebt(ctx, tenantID, "stu-1")

	require.NoError(t, err)
	// 6000 accrued - 3000 redirected
	assert.True(t, report.Breakdown.MonthlyDebt.Equal(money(3000)))
	// 4500 - 3000 standing
	assert.True(t, report.CreditBalance.Equal(money(1500)),
		"got %s", report.CreditBalance)
}

func TestStudentDebt_MissingStudent(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.StudentDebt(context.Background(), tenantID, "ghost")

	require.Error(t, err)
	assert.True(t, errors.Is(err, billing.ErrStudentNotFound))
	assert.True(t, billing.IsNotFound(err))
}

func TestTenantDebtSummary_AggregatesStudents(t *testing.T) {
	// GIVEN two students, one fully paid up
	svc, store := newService(t)
	ctx := context.Background()

	require.NoError(t, store.SaveStudent(ctx, billing.Student{
		ID: "stu-2", TenantID: tenantID, Name: "Bruno Paz",
		EnrollmentDate: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	}))
	stu2 := "stu-2"
	require.NoError(t, store.SavePayment(ctx, billing.Payment{
		ID: "pay-1", TenantID: tenantID, StudentID: &stu2,
		Concept: "Cuota marzo y abril", Amount: money(6000),
		Date: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	}))

	summary, err := svc.TenantDebtSummary(ctx, tenantID)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Students)
	assert.Equal(t, 1, summary.Delinquent, "only the unpaid student is delinquent")
	assert.True(t, summary.TotalDebt.Equal(money(6000)))
	require.Len(t, summary.Reports, 2)
}

func TestTenantDebtSummary_MissingTenant(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.TenantDebtSummary(context.Background(), "ghost")

	require.Error(t, err)
	assert.True(t, errors.Is(err, billing.ErrTenantNotFound))
}

func TestTenantIsolation(t *testing.T) {
	// GIVEN a second tenant whose student shares the ID "stu-1"
	svc, store := newService(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTenant(ctx, billing.Tenant{ID: "tenant-2", Name: "Otra"}))
	require.NoError(t, store.SaveStudent(ctx, billing.Student{
		ID: "stu-1", TenantID: "tenant-2", Name: "Homónima",
		EnrollmentDate: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	}))
	other := "stu-1"
	require.NoError(t, store.SavePayment(ctx, billing.Payment{
		ID: "pay-x", TenantID: "tenant-2", StudentID: &other,
		Concept: "Cuota marzo", Amount: money(3000),
		Date: time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC),
	}))

	// WHEN computing debt in the first tenant
	report, err := svc.StudentDebt(ctx, tenantID, "stu-1")

	// THEN the other tenant's payment doesn't leak in
	require.NoError(t, err)
	assert.True(t, report.Breakdown.MonthlyDebt.Equal(money(6000)))
}

func TestValidMovementType(t *testing.T) {
	assert.True(t, billing.ValidMovementType("payment_redirect"))
	assert.True(t, billing.ValidMovementType("activity_refund"))
	assert.True(t, billing.ValidMovementType("payment_deduction"))
	assert.True(t, billing.ValidMovementType("manual_adjustment"))
	assert.False(t, billing.ValidMovementType("teleport"))
	assert.False(t, billing.ValidMovementType(""))
}
