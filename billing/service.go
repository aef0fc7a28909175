/*
service.go - Debt services over the reconciliation core

PURPOSE:
  Assembles point-in-time snapshots from the store and runs the shared
  reconciliation pipeline. This is the only place raw rows are converted
  into reconcile inputs, so the conversion cannot drift between callers.

REQUEST FLOW (StudentDebt):
  1. Load student (404 if missing)
  2. Load fee config (defaults when unset), activities, exclusions,
     payments and credit movements
  3. Build reconcile.Snapshot, run Reconcile
  4. Attach the standing credit balance

The computation is recomputed from raw rows on every call. Data volume
is tens of students and dozens of activities per tenant; recomputing is
cheaper than keeping a derived-debt table consistent.
*/
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kurso/billing-engine/reconcile"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// DebtReport is one student's reconciled position: the debt breakdown
// plus the standing credit balance displayed beside it.
type DebtReport struct {
	Student       Student
	Breakdown     reconcile.Breakdown
	CreditBalance decimal.Decimal
	Currency      string
	AsOf          time.Time
}

// TenantDebtSummary aggregates every student's report for the admin
// dashboard, the assistant backend and the delinquency sweep.
type TenantDebtSummary struct {
	TenantID   string
	AsOf       time.Time
	Reports    []DebtReport
	Students   int
	Delinquent int // students with TotalDebt > 0
	TotalDebt  decimal.Decimal
}

// =============================================================================
// DEBT SERVICE
// =============================================================================

// DebtService computes debt reports from stored rows.
type DebtService struct {
	Store Store

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewDebtService creates a debt service over the given store.
func NewDebtService(store Store) *DebtService {
	return &DebtService{Store: store, Now: time.Now}
}

// StudentDebt reconciles one student's outstanding debt as of now.
func (ds *DebtService) StudentDebt(ctx context.Context, tenantID, studentID string) (*DebtReport, error) {
	student, err := ds.Store.GetStudent(ctx, tenantID, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, &NotFoundError{Kind: "student", TenantID: tenantID, ID: studentID, Sentinel: ErrStudentNotFound}
	}
	return ds.reportFor(ctx, tenantID, *student)
}

// TenantDebtSummary reconciles every student in the tenant.
func (ds *DebtService) TenantDebtSummary(ctx context.Context, tenantID string) (*TenantDebtSummary, error) {
	tenant, err := ds.Store.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, &NotFoundError{Kind: "tenant", TenantID: tenantID, ID: tenantID, Sentinel: ErrTenantNotFound}
	}

	students, err := ds.Store.ListStudents(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	summary := &TenantDebtSummary{
		TenantID:  tenantID,
		AsOf:      ds.Now(),
		Students:  len(students),
		TotalDebt: decimal.Zero,
	}

	for _, s := range students {
		report, err := ds.reportFor(ctx, tenantID, s)
		if err != nil {
			return nil, fmt.Errorf("reconcile student %s: %w", s.ID, err)
		}
		summary.Reports = append(summary.Reports, *report)
		summary.TotalDebt = summary.TotalDebt.Add(report.Breakdown.TotalDebt)
		if report.Breakdown.TotalDebt.IsPositive() {
			summary.Delinquent++
		}
	}

	return summary, nil
}

// reportFor loads the snapshot rows for one student and reconciles them.
func (ds *DebtService) reportFor(ctx context.Context, tenantID string, student Student) (*DebtReport, error) {
	cfg, err := ds.feeConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	activities, err := ds.Store.ListActivities(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	exclusions, err := ds.Store.ListExclusionsByStudent(ctx, tenantID, student.ID)
	if err != nil {
		return nil, err
	}
	payments, err := ds.Store.ListPaymentsByStudent(ctx, tenantID, student.ID)
	if err != nil {
		return nil, err
	}
	movements, err := ds.Store.ListCreditMovementsByStudent(ctx, tenantID, student.ID)
	if err != nil {
		return nil, err
	}

	now := ds.Now()
	snap := buildSnapshot(student, cfg, activities, exclusions, payments, movements, now)

	return &DebtReport{
		Student:       student,
		Breakdown:     reconcile.Reconcile(snap),
		CreditBalance: reconcile.CreditBalance(snap.CreditMovements),
		Currency:      cfg.Currency,
		AsOf:          now,
	}, nil
}

func (ds *DebtService) feeConfig(ctx context.Context, tenantID string) (FeeConfig, error) {
	cfg, err := ds.Store.GetFeeConfig(ctx, tenantID)
	if err != nil {
		return FeeConfig{}, err
	}
	if cfg == nil {
		return DefaultFeeConfig(tenantID), nil
	}
	return *cfg, nil
}

// DefaultFeeConfig is the fee configuration applied before a tenant
// configures one.
func DefaultFeeConfig(tenantID string) FeeConfig {
	return FeeConfig{
		TenantID:   tenantID,
		MonthlyFee: reconcile.DefaultMonthlyFee,
		Currency:   "ARS",
	}
}

// =============================================================================
// SNAPSHOT ASSEMBLY
// =============================================================================

// buildSnapshot converts stored rows into the reconcile input. This is
// the single row-to-snapshot conversion in the codebase.
func buildSnapshot(
	student Student,
	cfg FeeConfig,
	activities []Activity,
	exclusions []ActivityExclusion,
	payments []Payment,
	movements []CreditMovement,
	now time.Time,
) reconcile.Snapshot {
	snap := reconcile.Snapshot{
		StudentID:      reconcile.StudentID(student.ID),
		EnrollmentDate: reconcile.DateOf(student.EnrollmentDate),
		AsOf:           reconcile.DateOf(now),
		MonthlyFee:     cfg.MonthlyFee,
		Exclusions:     reconcile.ExclusionSet{},
	}

	for _, a := range activities {
		ra := reconcile.Activity{
			ID:     reconcile.ActivityID(a.ID),
			Name:   a.Name,
			Amount: a.Amount,
		}
		if a.Date != nil {
			d := reconcile.DateOf(*a.Date)
			ra.Date = &d
		}
		snap.Activities = append(snap.Activities, ra)
	}

	for _, e := range exclusions {
		snap.Exclusions[reconcile.ActivityID(e.ActivityID)] = struct{}{}
	}

	for _, p := range payments {
		rp := reconcile.Payment{Concept: p.Concept, Amount: p.Amount}
		if p.ActivityID != nil {
			id := reconcile.ActivityID(*p.ActivityID)
			rp.ActivityID = &id
		}
		snap.Payments = append(snap.Payments, rp)
	}

	for _, m := range movements {
		snap.CreditMovements = append(snap.CreditMovements, reconcile.CreditMovement{
			Amount: m.Amount,
			Type:   reconcile.MovementType(m.Type),
		})
	}

	return snap
}

// =============================================================================
// MOVEMENT TYPES
// =============================================================================

// MovementTypes lists the accepted credit movement type values.
var MovementTypes = []string{
	string(reconcile.MovementPaymentRedirect),
	string(reconcile.MovementActivityRefund),
	string(reconcile.MovementPaymentDeduction),
	string(reconcile.MovementManualAdjustment),
}

// ValidMovementType reports whether t is a known movement type.
func ValidMovementType(t string) bool {
	for _, known := range MovementTypes {
		if t == known {
			return true
		}
	}
	return false
}
