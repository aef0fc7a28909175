// Package memory provides an in-memory implementation of the billing
// and donations stores, for tests and development runs.
package memory

import (
	"context"
	"sync"

	"github.com/kurso/billing-engine/billing"
	"github.com/kurso/billing-engine/donations"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store keeps every table as an insertion-ordered slice guarded by a
// RWMutex. Reads return copies so callers can't mutate shared state.
type Store struct {
	mu sync.RWMutex

	tenants     []billing.Tenant
	students    []billing.Student
	activities  []billing.Activity
	exclusions  []billing.ActivityExclusion
	payments    []billing.Payment
	movements   []billing.CreditMovement
	feeConfigs  map[string]billing.FeeConfig
	sweepRuns   []billing.SweepRun
	scheduled   []donations.ScheduledActivity
	items       []donations.Item
	commitments []donations.Commitment
}

// Compile-time interface checks
var (
	_ billing.Store   = (*Store)(nil)
	_ donations.Store = (*Store)(nil)
)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{feeConfigs: make(map[string]billing.FeeConfig)}
}

// Reset clears all rows.
func (m *Store) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants = nil
	m.students = nil
	m.activities = nil
	m.exclusions = nil
	m.payments = nil
	m.movements = nil
	m.feeConfigs = make(map[string]billing.FeeConfig)
	m.sweepRuns = nil
	m.scheduled = nil
	m.items = nil
	m.commitments = nil
	return nil
}

// =============================================================================
// TENANTS
// =============================================================================

func (m *Store) SaveTenant(_ context.Context, t billing.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.tenants {
		if existing.ID == t.ID {
			m.tenants[i] = t
			return nil
		}
	}
	m.tenants = append(m.tenants, t)
	return nil
}

func (m *Store) GetTenant(_ context.Context, id string) (*billing.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tenants {
		if t.ID == id {
			out := t
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Store) ListTenants(_ context.Context) ([]billing.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]billing.Tenant, len(m.tenants))
	copy(out, m.tenants)
	return out, nil
}

// =============================================================================
// STUDENTS
// =============================================================================

func (m *Store) SaveStudent(_ context.Context, s billing.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.students {
		if existing.TenantID == s.TenantID && existing.ID == s.ID {
			m.students[i] = s
			return nil
		}
	}
	m.students = append(m.students, s)
	return nil
}

func (m *Store) GetStudent(_ context.Context, tenantID, id string) (*billing.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.students {
		if s.TenantID == tenantID && s.ID == id {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Store) ListStudents(_ context.Context, tenantID string) ([]billing.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []billing.Student
	for _, s := range m.students {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	return out, nil
}

// =============================================================================
// ACTIVITIES
// =============================================================================

func (m *Store) SaveActivity(_ context.Context, a billing.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.activities {
		if existing.TenantID == a.TenantID && existing.ID == a.ID {
			m.activities[i] = a
			return nil
		}
	}
	m.activities = append(m.activities, a)
	return nil
}

func (m *Store) GetActivity(_ context.Context, tenantID, id string) (*billing.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.activities {
		if a.TenantID == tenantID && a.ID == id {
			out := a
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Store) ListActivities(_ context.Context, tenantID string) ([]billing.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []billing.Activity
	for _, a := range m.activities {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

// =============================================================================
// EXCLUSIONS
// =============================================================================

func (m *Store) SaveExclusion(_ context.Context, e billing.ActivityExclusion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.exclusions {
		if existing.TenantID == e.TenantID &&
			existing.StudentID == e.StudentID &&
			existing.ActivityID == e.ActivityID {
			return billing.ErrDuplicateExclusion
		}
	}
	m.exclusions = append(m.exclusions, e)
	return nil
}

func (m *Store) DeleteExclusion(_ context.Context, tenantID, studentID, activityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.exclusions {
		if e.TenantID == tenantID && e.StudentID == studentID && e.ActivityID == activityID {
			m.exclusions = append(m.exclusions[:i], m.exclusions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Store) ListExclusionsByStudent(_ context.Context, tenantID, studentID string) ([]billing.ActivityExclusion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []billing.ActivityExclusion
	for _, e := range m.exclusions {
		if e.TenantID == tenantID && e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (m *Store) SavePayment(_ context.Context, p billing.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, p)
	return nil
}

func (m *Store) ListPayments(_ context.Context, tenantID string) ([]billing.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []billing.Payment
	for _, p := range m.payments {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Store) ListPaymentsByStudent(_ context.Context, tenantID, studentID string) ([]billing.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []billing.Payment
	for _, p := range m.payments {
		if p.TenantID == tenantID && p.StudentID != nil && *p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

// =============================================================================
// CREDIT MOVEMENTS
// =============================================================================

func (m *Store) SaveCreditMovement(_ context.Context, cm billing.CreditMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, cm)
	return nil
}

func (m *Store) ListCreditMovementsByStudent(_ context.Context, tenantID, studentID string) ([]billing.CreditMovement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []billing.CreditMovement
	for _, cm := range m.movements {
		if cm.TenantID == tenantID && cm.StudentID == studentID {
			out = append(out, cm)
		}
	}
	return out, nil
}

// =============================================================================
// FEE CONFIG
// =============================================================================

func (m *Store) SaveFeeConfig(_ context.Context, cfg billing.FeeConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feeConfigs[cfg.TenantID] = cfg
	return nil
}

func (m *Store) GetFeeConfig(_ context.Context, tenantID string) (*billing.FeeConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if cfg, ok := m.feeConfigs[tenantID]; ok {
		out := cfg
		return &out, nil
	}
	return nil, nil
}

// =============================================================================
// SWEEP RUNS
// =============================================================================

func (m *Store) SaveSweepRun(_ context.Context, run billing.SweepRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepRuns = append(m.sweepRuns, run)
	return nil
}

func (m *Store) ListSweepRuns(_ context.Context, tenantID string, limit int) ([]billing.SweepRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []billing.SweepRun
	// newest first
	for i := len(m.sweepRuns) - 1; i >= 0; i-- {
		if m.sweepRuns[i].TenantID != tenantID {
			continue
		}
		out = append(out, m.sweepRuns[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// =============================================================================
// DONATIONS
// =============================================================================

func (m *Store) SaveScheduledActivity(_ context.Context, a donations.ScheduledActivity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.scheduled {
		if existing.TenantID == a.TenantID && existing.ID == a.ID {
			m.scheduled[i] = a
			return nil
		}
	}
	m.scheduled = append(m.scheduled, a)
	return nil
}

func (m *Store) GetScheduledActivity(_ context.Context, tenantID, id string) (*donations.ScheduledActivity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.scheduled {
		if a.TenantID == tenantID && a.ID == id {
			out := a
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Store) ListScheduledActivities(_ context.Context, tenantID string) ([]donations.ScheduledActivity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []donations.ScheduledActivity
	for _, a := range m.scheduled {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Store) SaveItem(_ context.Context, item donations.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
	return nil
}

func (m *Store) ListItemsByActivity(_ context.Context, tenantID, scheduledActivityID string) ([]donations.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []donations.Item
	for _, item := range m.items {
		if item.TenantID == tenantID && item.ScheduledActivityID == scheduledActivityID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *Store) SaveCommitment(_ context.Context, c donations.Commitment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitments = append(m.commitments, c)
	return nil
}

func (m *Store) UpdateCommitmentFulfilled(_ context.Context, tenantID, id string, fulfilled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.commitments {
		if c.TenantID == tenantID && c.ID == id {
			m.commitments[i].Fulfilled = fulfilled
			return nil
		}
	}
	return nil
}

func (m *Store) ListCommitmentsByActivity(_ context.Context, tenantID, scheduledActivityID string) ([]donations.Commitment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	itemIDs := make(map[string]struct{})
	for _, item := range m.items {
		if item.TenantID == tenantID && item.ScheduledActivityID == scheduledActivityID {
			itemIDs[item.ID] = struct{}{}
		}
	}

	var out []donations.Commitment
	for _, c := range m.commitments {
		if c.TenantID != tenantID {
			continue
		}
		if _, ok := itemIDs[c.ItemID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}
