/*
Package reconcile computes a student's outstanding debt.

PURPOSE:
  This package contains the debt-reconciliation core shared by every
  caller in the system (student dashboard, admin reports, delinquency
  sweep). Given a point-in-time snapshot of raw rows for one student,
  it reconciles monthly-fee accrual, activity fee accrual, payments,
  exclusions and credit redirections into a structured debt breakdown.

KEY CONCEPTS IN THIS FILE (types.go):
  - Snapshot: Everything the computation reads, fetched up front
  - Payment: A recorded payment, matched to fees by ID or by concept
  - CreditMovement: A signed adjustment between credit and debt
  - Breakdown: The terminal result returned to callers

DESIGN PRINCIPLES:
  1. Purity: No I/O, no clocks, no state between calls. Every invocation
     is a fresh computation over a fresh snapshot.
  2. Precision: Uses decimal.Decimal to avoid floating-point errors.
  3. Leniency: Absent data yields empty classifications and zero debt;
     no code path returns an error.
  4. One implementation: All callers go through Reconcile, so the
     arithmetic cannot drift between screens.

USAGE:
  snap := reconcile.Snapshot{
      StudentID:      "stu-1",
      EnrollmentDate: reconcile.NewDate(2025, time.March, 1),
      AsOf:           reconcile.Today(),
      MonthlyFee:     decimal.NewFromInt(3000),
      Activities:     activities,
      Payments:       payments,
  }
  breakdown := reconcile.Reconcile(snap)

SEE ALSO:
  - accrual.go: Monthly-fee accrual from the billing start month
  - classify.go: Payment classification (concept and ID matching)
  - activities.go: Per-activity shortfall calculation
  - credits.go: Credit redirections and standing credit balance
  - reconcile.go: The pipeline tying the pieces together
*/
package reconcile

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type StudentID string
type ActivityID string

// =============================================================================
// SNAPSHOT ROWS - Read-only inputs fetched by the caller
// =============================================================================

// Activity is a billable event (excursion, raffle, workshop) with an
// expected fee. An activity without a date is never due: it contributes
// nothing to debt until a date is set.
type Activity struct {
	ID     ActivityID
	Name   string // free text, also used as a fuzzy join key for payments
	Amount decimal.Decimal
	Date   *Date // nil = not scheduled yet
}

// Payment is a recorded payment row. ActivityID is the reliable join key;
// when it is nil the free-text Concept is matched against activity names.
// StudentID is resolved by the caller: the snapshot only carries payments
// that belong to the student being reconciled.
type Payment struct {
	ActivityID *ActivityID // nil = attributed by concept matching
	Concept    string
	Amount     decimal.Decimal
}

// MovementType classifies a credit movement row.
type MovementType string

const (
	MovementPaymentRedirect  MovementType = "payment_redirect"
	MovementActivityRefund   MovementType = "activity_refund"
	MovementPaymentDeduction MovementType = "payment_deduction"
	MovementManualAdjustment MovementType = "manual_adjustment"
)

// CreditMovement is a signed adjustment record. Negative payment_redirect
// rows reduce fee debt; positive rows add to the standing credit balance
// and never touch debt.
type CreditMovement struct {
	Amount decimal.Decimal
	Type   MovementType
}

// ExclusionSet marks activities a student is exempt from. An excluded
// activity is removed from both the expected-debt and the paid-amount
// side of the calculation.
type ExclusionSet map[ActivityID]struct{}

// NewExclusionSet builds an ExclusionSet from activity IDs.
func NewExclusionSet(ids ...ActivityID) ExclusionSet {
	set := make(ExclusionSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Excluded reports whether the activity is excluded. Safe on a nil set.
func (e ExclusionSet) Excluded(id ActivityID) bool {
	_, ok := e[id]
	return ok
}

// =============================================================================
// SNAPSHOT - Full input for one reconciliation
// =============================================================================

// Snapshot is the complete input for one student's reconciliation.
// The caller fetches all rows first (typically as several independent
// queries joined before computation) and the core never reads anything
// else. Between-table staleness is accepted: the result is a best-effort
// point-in-time view, not a ledger with integrity guarantees.
type Snapshot struct {
	StudentID      StudentID
	EnrollmentDate Date
	AsOf           Date
	MonthlyFee     decimal.Decimal

	Activities      []Activity
	Exclusions      ExclusionSet
	Payments        []Payment
	CreditMovements []CreditMovement
}

// =============================================================================
// BREAKDOWN - Terminal result
// =============================================================================

// ActivityDebt is one activity's outstanding shortfall. Only positive
// shortfalls are ever emitted.
type ActivityDebt struct {
	Name   string
	Amount decimal.Decimal
}

// Breakdown is the side-effect-free result returned to callers.
type Breakdown struct {
	MonthlyDebt   decimal.Decimal
	ActivityDebts []ActivityDebt
	TotalDebt     decimal.Decimal
}

// maxZero clamps a decimal at zero. Shortfalls are never negative.
func maxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
