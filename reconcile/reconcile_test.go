/*
reconcile_test.go - Scenario tests for the reconciliation pipeline

PURPOSE:
  These tests document the behaviors the rest of the system relies on.
  Each test states a scenario in GIVEN/WHEN/THEN form and asserts the
  resulting breakdown.

ORGANIZATION:
  1. End-to-end scenarios (fresh enrollment, paid activities, mixes)
  2. Activity filtering (exclusions, dates, enrollment boundary)
  3. Credit redirections
  4. Guarantees (non-negativity, monotonicity)
*/
package reconcile_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurso/billing-engine/reconcile"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

func money(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func date(year int, month time.Month, day int) reconcile.Date {
	return reconcile.NewDate(year, month, day)
}

func datePtr(year int, month time.Month, day int) *reconcile.Date {
	d := reconcile.NewDate(year, month, day)
	return &d
}

func activityIDPtr(id string) *reconcile.ActivityID {
	a := reconcile.ActivityID(id)
	return &a
}

// baseSnapshot returns a student enrolled March 1 2025 with the default
// fee, observed on April 30 2025.
func baseSnapshot() reconcile.Snapshot {
	return reconcile.Snapshot{
		StudentID:      "stu-1",
		EnrollmentDate: date(2025, time.March, 1),
		AsOf:           date(2025, time.April, 30),
		MonthlyFee:     money(3000),
	}
}

// =============================================================================
// END-TO-END SCENARIOS
// =============================================================================

func TestReconcile_FreshEnrollmentAccruesMonthlyFeeOnly(t *testing.T) {
	// GIVEN a student enrolled March 1, observed April 30, fee 3000,
	// no payments and no activities
	snap := baseSnapshot()

	// WHEN reconciling
	b := reconcile.Reconcile(snap)

	// THEN two months (March + April) are owed and nothing else
	assert.True(t, b.MonthlyDebt.Equal(money(6000)), "expected 6000, got %s", b.MonthlyDebt)
	assert.Empty(t, b.ActivityDebts)
	assert.True(t, b.TotalDebt.Equal(money(6000)))
}

func TestReconcile_ActivityPaidInFullByConceptMatch(t *testing.T) {
	// GIVEN one past activity and a payment whose concept names it
	snap := baseSnapshot()
	snap.Activities = []reconcile.Activity{
		{ID: "act-rifa", Name: "RIFA", Amount: money(2000), Date: datePtr(2025, time.April, 10)},
	}
	snap.Payments = []reconcile.Payment{
		{ActivityID: nil, Concept: "RIFA", Amount: money(2000)},
	}

	// WHEN reconciling
	b := reconcile.Reconcile(snap)

	// THEN the activity is fully covered and absent from the output
	assert.Empty(t, b.ActivityDebts)
	assert.True(t, b.TotalDebt.Equal(b.MonthlyDebt))
}

func TestReconcile_PartialActivityPaymentWithUnrelatedExclusion(t *testing.T) {
	// GIVEN an activity of 5000 paid 2000 by concept match, and a second
	// activity of 1000 the student is excluded from
	snap := baseSnapshot()
	snap.Activities = []reconcile.Activity{
		{ID: "act-camp", Name: "CAMPAMENTO", Amount: money(5000), Date: datePtr(2025, time.April, 5)},
		{ID: "act-museo", Name: "MUSEO", Amount: money(1000), Date: datePtr(2025, time.April, 12)},
	}
	snap.Payments = []reconcile.Payment{
		{ActivityID: nil, Concept: "pago campamento", Amount: money(2000)},
	}
	snap.Exclusions = reconcile.NewExclusionSet("act-museo")

	// WHEN reconciling
	b := reconcile.Reconcile(snap)

	// THEN only the partially paid activity appears, with its shortfall
	require.Len(t, b.ActivityDebts, 1)
	assert.Equal(t, "CAMPAMENTO", b.ActivityDebts[0].Name)
	assert.True(t, b.ActivityDebts[0].Amount.Equal(money(3000)))

	// AND the excluded activity contributes nothing regardless of its
	// own payment state
	assert.True(t, b.TotalDebt.Equal(b.MonthlyDebt.Add(money(3000))))
}

func TestReconcile_MonthlyPaymentsReduceMonthlyDebt(t *testing.T) {
	// GIVEN two months accrued and one paid via a "cuota" concept
	snap := baseSnapshot()
	snap.Payments = []reconcile.Payment{
		{Concept: "Cuota Marzo", Amount: money(3000)},
	}

	// WHEN reconciling
	b := reconcile.Reconcile(snap)

	// THEN one month remains owed
	assert.True(t, b.MonthlyDebt.Equal(money(3000)))
}

func TestReconcile_ExplicitActivityIDBeatsConceptAmbiguity(t *testing.T) {
	// GIVEN a payment with an explicit activity ID whose concept would
	// never match the activity name
	snap := baseSnapshot()
	snap.Activities = []reconcile.Activity{
		{ID: "act-1", Name: "EXCURSION PRIMAVERA", Amount: money(4000), Date: datePtr(2025, time.April, 1)},
	}
	snap.Payments = []reconcile.Payment{
		{ActivityID: activityIDPtr("act-1"), Concept: "pago actividad", Amount: money(4000)},
	}

	// WHEN reconciling
	b := reconcile.Reconcile(snap)

	// THEN the ID attribution covers the activity
	assert.Empty(t, b.ActivityDebts)
}

// =============================================================================
// ACTIVITY FILTERING
// =============================================================================

func TestReconcile_FutureActivityNeverOwed(t *testing.T) {
	// GIVEN an activity dated after the as-of date
	snap := baseSnapshot()
	snap.Activities = []reconcile.Activity{
		{ID: "act-1", Name: "VIAJE", Amount: money(9000), Date: datePtr(2025, time.May, 15)},
	}

	b := reconcile.Reconcile(snap)

	// THEN it never appears, even with zero payments
	assert.Empty(t, b.ActivityDebts)
}

func TestReconcile_DatelessActivityNeverOwed(t *testing.T) {
	// GIVEN an activity with no date (permanently not yet due)
	snap := baseSnapshot()
	snap.Activities = []reconcile.Activity{
		{ID: "act-1", Name: "FERIA", Amount: money(1500), Date: nil},
	}

	b := reconcile.Reconcile(snap)

	assert.Empty(t, b.ActivityDebts)
}

func TestReconcile_ActivityBeforeEnrollmentNeverOwed(t *testing.T) {
	// GIVEN an activity dated strictly before the enrollment date
	snap := baseSnapshot()
	snap.EnrollmentDate = date(2025, time.April, 1)
	snap.Activities = []reconcile.Activity{
		{ID: "act-1", Name: "RIFA", Amount: money(2000), Date: datePtr(2025, time.March, 20)},
	}

	b := reconcile.Reconcile(snap)

	assert.Empty(t, b.ActivityDebts)
}

func TestReconcile_ActivityOnEnrollmentDayIsOwed(t *testing.T) {
	// GIVEN an activity dated exactly on the enrollment date
	snap := baseSnapshot()
	snap.Activities = []reconcile.Activity{
		{ID: "act-1", Name: "RIFA", Amount: money(2000), Date: datePtr(2025, time.March, 1)},
	}

	b := reconcile.Reconcile(snap)

	// THEN the boundary is inclusive
	require.Len(t, b.ActivityDebts, 1)
	assert.True(t, b.ActivityDebts[0].Amount.Equal(money(2000)))
}

func TestReconcile_ExclusionRemovesActivityRegardlessOfState(t *testing.T) {
	// GIVEN an owed, partially paid activity
	snap := baseSnapshot()
	snap.Activities = []reconcile.Activity{
		{ID: "act-1", Name: "RIFA", Amount: money(2000), Date: datePtr(2025, time.April, 1)},
	}
	snap.Payments = []reconcile.Payment{
		{Concept: "RIFA", Amount: money(500)},
	}

	// WHEN the student is excluded from it
	snap.Exclusions = reconcile.NewExclusionSet("act-1")
	b := reconcile.Reconcile(snap)

	// THEN the activity vanishes entirely
	assert.Empty(t, b.ActivityDebts)
	assert.True(t, b.TotalDebt.Equal(b.MonthlyDebt))
}

func TestReconcile_OutputFollowsInputActivityOrder(t *testing.T) {
	snap := baseSnapshot()
	snap.Activities = []reconcile.Activity{
		{ID: "b", Name: "ZOOLOGICO", Amount: money(100), Date: datePtr(2025, time.April, 2)},
		{ID: "a", Name: "ACUARIO", Amount: money(200), Date: datePtr(2025, time.April, 1)},
	}

	b := reconcile.Reconcile(snap)

	require.Len(t, b.ActivityDebts, 2)
	assert.Equal(t, "ZOOLOGICO", b.ActivityDebts[0].Name)
	assert.Equal(t, "ACUARIO", b.ActivityDebts[1].Name)
}

// =============================================================================
// CREDIT REDIRECTIONS
// =============================================================================

func TestReconcile_RedirectionReducesMonthlyDebt(t *testing.T) {
	// GIVEN 6000 of monthly debt and a negative payment_redirect of 2500
	snap := baseSnapshot()
	snap.CreditMovements = []reconcile.CreditMovement{
		{Amount: money(-2500), Type: reconcile.MovementPaymentRedirect},
	}

	b := reconcile.Reconcile(snap)

	// THEN monthly debt drops by exactly the redirected magnitude
	assert.True(t, b.MonthlyDebt.Equal(money(3500)))
}

func TestReconcile_RedirectionNeverPushesDebtNegative(t *testing.T) {
	// GIVEN a redirection larger than the outstanding monthly debt
	snap := baseSnapshot()
	snap.CreditMovements = []reconcile.CreditMovement{
		{Amount: money(-10000), Type: reconcile.MovementPaymentRedirect},
	}

	b := reconcile.Reconcile(snap)

	// THEN debt clamps at zero: the reduction is min(X, debt)
	assert.True(t, b.MonthlyDebt.IsZero())
	assert.True(t, b.TotalDebt.IsZero())
}

func TestReconcile_OtherMovementTypesDoNotTouchDebt(t *testing.T) {
	snap := baseSnapshot()
	snap.CreditMovements = []reconcile.CreditMovement{
		{Amount: money(-1000), Type: reconcile.MovementActivityRefund},
		{Amount: money(-1000), Type: reconcile.MovementPaymentDeduction},
		{Amount: money(-1000), Type: reconcile.MovementManualAdjustment},
		{Amount: money(5000), Type: reconcile.MovementPaymentRedirect}, // positive: credit, not debt
	}

	b := reconcile.Reconcile(snap)

	assert.True(t, b.MonthlyDebt.Equal(money(6000)), "only negative payment_redirect rows adjust debt")
}

func TestCreditBalance_PositiveMovementsBuildCredit(t *testing.T) {
	movements := []reconcile.CreditMovement{
		{Amount: money(4000), Type: reconcile.MovementManualAdjustment},
		{Amount: money(-1500), Type: reconcile.MovementPaymentRedirect},
	}

	balance := reconcile.CreditBalance(movements)

	assert.True(t, balance.Equal(money(2500)))
}

func TestCreditBalance_FlooredAtZero(t *testing.T) {
	movements := []reconcile.CreditMovement{
		{Amount: money(-700), Type: reconcile.MovementPaymentDeduction},
	}

	assert.True(t, reconcile.CreditBalance(movements).IsZero())
}

// =============================================================================
// GUARANTEES
// =============================================================================

func TestReconcile_ShortfallMonotoneInPayments(t *testing.T) {
	// GIVEN a single owed activity, paying more never increases its
	// recorded shortfall
	previous := money(1 << 30)
	for paid := int64(0); paid <= 6000; paid += 500 {
		snap := baseSnapshot()
		snap.Activities = []reconcile.Activity{
			{ID: "act-1", Name: "RIFA", Amount: money(5000), Date: datePtr(2025, time.April, 1)},
		}
		snap.Payments = []reconcile.Payment{
			{ActivityID: activityIDPtr("act-1"), Concept: "pago", Amount: money(paid)},
		}

		b := reconcile.Reconcile(snap)

		shortfall := decimal.Zero
		if len(b.ActivityDebts) > 0 {
			shortfall = b.ActivityDebts[0].Amount
		}
		assert.True(t, shortfall.LessThanOrEqual(previous),
			"shortfall increased from %s to %s at paid=%d", previous, shortfall, paid)
		previous = shortfall
	}
}

func TestReconcile_NeverEmitsNonPositiveEntries(t *testing.T) {
	// GIVEN overpaid activities and overpaid monthly fees
	snap := baseSnapshot()
	snap.Activities = []reconcile.Activity{
		{ID: "act-1", Name: "RIFA", Amount: money(1000), Date: datePtr(2025, time.April, 1)},
	}
	snap.Payments = []reconcile.Payment{
		{ActivityID: activityIDPtr("act-1"), Concept: "pago", Amount: money(5000)},
		{Concept: "cuota anual completa", Amount: money(50000)},
	}

	b := reconcile.Reconcile(snap)

	// THEN zero and negative shortfalls are suppressed everywhere
	assert.False(t, b.MonthlyDebt.IsNegative())
	assert.Empty(t, b.ActivityDebts)
	assert.True(t, b.TotalDebt.IsZero())
}

func TestReconcile_EmptySnapshotYieldsZeroDebt(t *testing.T) {
	// A snapshot observed before the billing year starts accrues nothing.
	b := reconcile.Reconcile(reconcile.Snapshot{
		StudentID:      "stu-1",
		EnrollmentDate: date(2025, time.January, 10),
		AsOf:           date(2025, time.February, 20),
		MonthlyFee:     money(3000),
	})

	assert.True(t, b.MonthlyDebt.IsZero())
	assert.True(t, b.TotalDebt.IsZero())
	assert.Empty(t, b.ActivityDebts)
}
