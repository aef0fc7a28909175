/*
store.go - Persistence interface for the billing domain

PURPOSE:
  Defines what the domain services need from the database. Two
  implementations exist: store/sqlite (production) and store/memory
  (tests and dev runs).

SCOPING CONTRACT:
  Every method that takes a tenantID returns only that tenant's rows.
  Implementations enforce the scoping in their queries; callers never
  filter tenants themselves.

CONSISTENCY:
  Reads are best-effort point-in-time. The reconciliation snapshot is
  assembled from several independent reads; a row inserted between them
  is simply picked up by the next computation. There are no read
  transactions and no caching of computed debt.

SEE ALSO:
  - store/sqlite/sqlite.go: Production implementation
  - store/memory/memory.go: In-memory implementation
  - service.go: The main consumer
*/
package billing

import "context"

// Store is the persistence surface for the billing domain.
type Store interface {
	// Tenants
	SaveTenant(ctx context.Context, t Tenant) error
	GetTenant(ctx context.Context, id string) (*Tenant, error)
	ListTenants(ctx context.Context) ([]Tenant, error)

	// Students
	SaveStudent(ctx context.Context, s Student) error
	GetStudent(ctx context.Context, tenantID, id string) (*Student, error)
	ListStudents(ctx context.Context, tenantID string) ([]Student, error)

	// Activities
	SaveActivity(ctx context.Context, a Activity) error
	GetActivity(ctx context.Context, tenantID, id string) (*Activity, error)
	ListActivities(ctx context.Context, tenantID string) ([]Activity, error)

	// Exclusions
	SaveExclusion(ctx context.Context, e ActivityExclusion) error
	DeleteExclusion(ctx context.Context, tenantID, studentID, activityID string) error
	ListExclusionsByStudent(ctx context.Context, tenantID, studentID string) ([]ActivityExclusion, error)

	// Payments
	SavePayment(ctx context.Context, p Payment) error
	ListPayments(ctx context.Context, tenantID string) ([]Payment, error)
	ListPaymentsByStudent(ctx context.Context, tenantID, studentID string) ([]Payment, error)

	// Credit movements
	SaveCreditMovement(ctx context.Context, m CreditMovement) error
	ListCreditMovementsByStudent(ctx context.Context, tenantID, studentID string) ([]CreditMovement, error)

	// Fee configuration
	SaveFeeConfig(ctx context.Context, cfg FeeConfig) error
	GetFeeConfig(ctx context.Context, tenantID string) (*FeeConfig, error)

	// Sweep runs
	SaveSweepRun(ctx context.Context, run SweepRun) error
	ListSweepRuns(ctx context.Context, tenantID string, limit int) ([]SweepRun, error)

	// Reset clears all rows. Demo scenarios and tests only.
	Reset(ctx context.Context) error
}
