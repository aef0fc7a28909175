// Package billing provides the tenant-scoped domain layer over the
// reconciliation core: entities as they are persisted, the storage
// interface, and the services that assemble snapshots and run the
// debt computation.
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTITIES - Persisted rows, tenant-scoped
// =============================================================================

// Tenant is one isolated school/course instance. Tenants share the
// application but never each other's rows; every query is scoped by
// tenant ID.
type Tenant struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Student belongs to exactly one tenant. The enrollment date bounds
// which activities and fee months count as owed.
type Student struct {
	ID             string
	TenantID       string
	Name           string
	Guardian       string
	EnrollmentDate time.Time
	CreatedAt      time.Time
}

// Activity is a billable event. Date is nil until the activity is
// scheduled; unscheduled activities are never owed.
type Activity struct {
	ID        string
	TenantID  string
	Name      string
	Amount    decimal.Decimal
	Date      *time.Time
	CreatedAt time.Time
}

// ActivityExclusion exempts one student from one activity's fee.
type ActivityExclusion struct {
	TenantID   string
	StudentID  string
	ActivityID string
	CreatedAt  time.Time
}

// Payment is a recorded payment. StudentID is nullable: orphaned
// payments exist in legacy data and simply never attach to any
// student's reconciliation. ActivityID is nullable for the same
// reason; concept matching covers those rows.
type Payment struct {
	ID         string
	TenantID   string
	StudentID  *string
	ActivityID *string
	Concept    string
	Amount     decimal.Decimal
	Date       time.Time
	CreatedAt  time.Time
}

// CreditMovement moves value between a student's standing credit and
// their fee debt. Type values mirror reconcile.MovementType.
type CreditMovement struct {
	ID        string
	TenantID  string
	StudentID string
	Amount    decimal.Decimal
	Type      string
	Reason    string
	CreatedAt time.Time
}

// FeeConfig is the tenant's monthly-fee configuration. The billing
// start month is fixed (March); only the amount and display currency
// vary per tenant.
type FeeConfig struct {
	TenantID   string
	MonthlyFee decimal.Decimal
	Currency   string
	UpdatedAt  time.Time
}

// SweepRun records one pass of the background delinquency sweep, for
// audit and UI display. The recorded totals are informational; debt is
// always recomputed from raw rows on read.
type SweepRun struct {
	ID         string
	TenantID   string
	RanAt      time.Time
	Students   int
	Delinquent int
	TotalDebt  decimal.Decimal
}
