/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements billing.Store and donations.Store using SQLite. In
  production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

TENANT SCOPING:
  Every table carries a tenant_id column and every query filters on it.
  Cross-tenant reads are impossible through this layer, which is the
  contract billing.Store documents.

KEY TABLES:
  tenants, students, activities, activity_exclusions, payments,
  credit_movements, fee_configs, scheduled_activities, donation_items,
  donation_commitments, sweep_runs

AMOUNTS AND DATES:
  Money and quantities are stored as TEXT holding decimal strings,
  never floats. Day-granular dates are stored as YYYY-MM-DD TEXT;
  timestamps as RFC3339 TEXT.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/kurso.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - billing/store.go: Interface definition and scoping contract
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/kurso/billing-engine/billing"
	"github.com/kurso/billing-engine/donations"
)

// Store implements billing.Store and donations.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time interface checks
var (
	_ billing.Store   = (*Store)(nil)
	_ donations.Store = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS students (
		id TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		guardian TEXT,
		enrollment_date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (tenant_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_students_tenant
		ON students(tenant_id);

	CREATE TABLE IF NOT EXISTS activities (
		id TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		date TEXT,
		created_at TEXT NOT NULL,
		PRIMARY KEY (tenant_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_activities_tenant_date
		ON activities(tenant_id, date);

	CREATE TABLE IF NOT EXISTS activity_exclusions (
		tenant_id TEXT NOT NULL,
		student_id TEXT NOT NULL,
		activity_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (tenant_id, student_id, activity_id)
	);

	-- student_id is nullable: imported bank rows may not resolve to a
	-- student until matched later
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		student_id TEXT,
		activity_id TEXT,
		concept TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL,
		date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Hot path: assembling one student's reconciliation snapshot
	CREATE INDEX IF NOT EXISTS idx_payments_tenant_student
		ON payments(tenant_id, student_id);

	CREATE TABLE IF NOT EXISTS credit_movements (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		student_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		movement_type TEXT NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_credit_movements_tenant_student
		ON credit_movements(tenant_id, student_id);

	CREATE TABLE IF NOT EXISTS fee_configs (
		tenant_id TEXT PRIMARY KEY,
		monthly_fee TEXT NOT NULL,
		currency TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS scheduled_activities (
		id TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		title TEXT NOT NULL,
		date TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL,
		PRIMARY KEY (tenant_id, id)
	);

	CREATE TABLE IF NOT EXISTS donation_items (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		scheduled_activity_id TEXT NOT NULL,
		name TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT 'unidades',
		required_qty TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_donation_items_activity
		ON donation_items(tenant_id, scheduled_activity_id);

	CREATE TABLE IF NOT EXISTS donation_commitments (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		student_id TEXT NOT NULL,
		qty TEXT NOT NULL,
		fulfilled INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_donation_commitments_item
		ON donation_commitments(tenant_id, item_id);

	CREATE TABLE IF NOT EXISTS sweep_runs (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		ran_at TEXT NOT NULL,
		students INTEGER NOT NULL,
		delinquent INTEGER NOT NULL,
		total_debt TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sweep_runs_tenant
		ON sweep_runs(tenant_id, ran_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reset clears all rows. Demo scenarios and tests only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"tenants", "students", "activities", "activity_exclusions",
		"payments", "credit_movements", "fee_configs",
		"scheduled_activities", "donation_items", "donation_commitments",
		"sweep_runs",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// ENCODING HELPERS
// =============================================================================

const dayFormat = "2006-01-02"

func encodeDay(t time.Time) string {
	return t.Format(dayFormat)
}

func decodeDay(s string) (time.Time, error) {
	return time.Parse(dayFormat, s)
}

func encodeTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339)
}

func decodeTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullStr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// rowScanner lets scan helpers work for both QueryRow and Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// TENANTS
// =============================================================================

func (s *Store) SaveTenant(ctx context.Context, t billing.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tenants (id, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		t.ID, t.Name, encodeTime(t.CreatedAt))
	return err
}

func (s *Store) GetTenant(ctx context.Context, id string) (*billing.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM tenants WHERE id = ?`, id)

	var t billing.Tenant
	var createdAt string
	if err := row.Scan(&t.ID, &t.Name, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t.CreatedAt = decodeTime(createdAt)
	return &t, nil
}

func (s *Store) ListTenants(ctx context.Context) ([]billing.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM tenants ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Tenant
	for rows.Next() {
		var t billing.Tenant
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Name, &createdAt); err != nil {
			return nil, err
		}
		t.CreatedAt = decodeTime(createdAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

// =============================================================================
// STUDENTS
// =============================================================================

func (s *Store) SaveStudent(ctx context.Context, st billing.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO students (id, tenant_id, name, guardian, enrollment_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, id) DO UPDATE SET
			name = excluded.name,
			guardian = excluded.guardian,
			enrollment_date = excluded.enrollment_date`,
		st.ID, st.TenantID, st.Name, st.Guardian,
		encodeDay(st.EnrollmentDate), encodeTime(st.CreatedAt))
	return err
}

func (s *Store) GetStudent(ctx context.Context, tenantID, id string) (*billing.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, guardian, enrollment_date, created_at
		FROM students WHERE tenant_id = ? AND id = ?`, tenantID, id)

	st, err := scanStudent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Store) ListStudents(ctx context.Context, tenantID string) ([]billing.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, name, guardian, enrollment_date, created_at
		FROM students WHERE tenant_id = ? ORDER BY name, id`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

func scanStudent(r rowScanner) (*billing.Student, error) {
	var st billing.Student
	var guardian sql.NullString
	var enrollment, createdAt string
	if err := r.Scan(&st.ID, &st.TenantID, &st.Name, &guardian, &enrollment, &createdAt); err != nil {
		return nil, err
	}
	st.Guardian = guardian.String
	day, err := decodeDay(enrollment)
	if err != nil {
		return nil, fmt.Errorf("student %s: bad enrollment date: %w", st.ID, err)
	}
	st.EnrollmentDate = day
	st.CreatedAt = decodeTime(createdAt)
	return &st, nil
}

// =============================================================================
// ACTIVITIES
// =============================================================================

func (s *Store) SaveActivity(ctx context.Context, a billing.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var date sql.NullString
	if a.Date != nil {
		date = sql.NullString{String: encodeDay(*a.Date), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, tenant_id, name, amount, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, id) DO UPDATE SET
			name = excluded.name,
			amount = excluded.amount,
			date = excluded.date`,
		a.ID, a.TenantID, a.Name, a.Amount.String(), date, encodeTime(a.CreatedAt))
	return err
}

func (s *Store) GetActivity(ctx context.Context, tenantID, id string) (*billing.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, amount, date, created_at
		FROM activities WHERE tenant_id = ? AND id = ?`, tenantID, id)

	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) ListActivities(ctx context.Context, tenantID string) ([]billing.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, name, amount, date, created_at
		FROM activities WHERE tenant_id = ? ORDER BY created_at, id`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanActivity(r rowScanner) (*billing.Activity, error) {
	var a billing.Activity
	var amount, createdAt string
	var date sql.NullString
	if err := r.Scan(&a.ID, &a.TenantID, &a.Name, &amount, &date, &createdAt); err != nil {
		return nil, err
	}
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("activity %s: bad amount: %w", a.ID, err)
	}
	a.Amount = dec
	if date.Valid {
		day, err := decodeDay(date.String)
		if err != nil {
			return nil, fmt.Errorf("activity %s: bad date: %w", a.ID, err)
		}
		a.Date = &day
	}
	a.CreatedAt = decodeTime(createdAt)
	return &a, nil
}

// =============================================================================
// EXCLUSIONS
// =============================================================================

func (s *Store) SaveExclusion(ctx context.Context, e billing.ActivityExclusion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_exclusions (tenant_id, student_id, activity_id, created_at)
		VALUES (?, ?, ?, ?)`,
		e.TenantID, e.StudentID, e.ActivityID, encodeTime(e.CreatedAt))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return billing.ErrDuplicateExclusion
	}
	return err
}

func (s *Store) DeleteExclusion(ctx context.Context, tenantID, studentID, activityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM activity_exclusions
		WHERE tenant_id = ? AND student_id = ? AND activity_id = ?`,
		tenantID, studentID, activityID)
	return err
}

func (s *Store) ListExclusionsByStudent(ctx context.Context, tenantID, studentID string) ([]billing.ActivityExclusion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT tenant_id, student_id, activity_id, created_at
		FROM activity_exclusions WHERE tenant_id = ? AND student_id = ?`,
		tenantID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.ActivityExclusion
	for rows.Next() {
		var e billing.ActivityExclusion
		var createdAt string
		if err := rows.Scan(&e.TenantID, &e.StudentID, &e.ActivityID, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = decodeTime(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) SavePayment(ctx context.Context, p billing.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, tenant_id, student_id, activity_id, concept, amount, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TenantID, nullStr(p.StudentID), nullStr(p.ActivityID),
		p.Concept, p.Amount.String(), encodeDay(p.Date), encodeTime(p.CreatedAt))
	return err
}

func (s *Store) ListPayments(ctx context.Context, tenantID string) ([]billing.Payment, error) {
	return s.queryPayments(ctx, `
		SELECT id, tenant_id, student_id, activity_id, concept, amount, date, created_at
		FROM payments WHERE tenant_id = ? ORDER BY date, created_at`, tenantID)
}

func (s *Store) ListPaymentsByStudent(ctx context.Context, tenantID, studentID string) ([]billing.Payment, error) {
	return s.queryPayments(ctx, `
		SELECT id, tenant_id, student_id, activity_id, concept, amount, date, created_at
		FROM payments WHERE tenant_id = ? AND student_id = ? ORDER BY date, created_at`,
		tenantID, studentID)
}

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]billing.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Payment
	for rows.Next() {
		var p billing.Payment
		var studentID, activityID sql.NullString
		var amount, date, createdAt string
		if err := rows.Scan(&p.ID, &p.TenantID, &studentID, &activityID,
			&p.Concept, &amount, &date, &createdAt); err != nil {
			return nil, err
		}
		p.StudentID = strPtr(studentID)
		p.ActivityID = strPtr(activityID)
		dec, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("payment %s: bad amount: %w", p.ID, err)
		}
		p.Amount = dec
		day, err := decodeDay(date)
		if err != nil {
			return nil, fmt.Errorf("payment %s: bad date: %w", p.ID, err)
		}
		p.Date = day
		p.CreatedAt = decodeTime(createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// CREDIT MOVEMENTS
// =============================================================================

func (s *Store) SaveCreditMovement(ctx context.Context, m billing.CreditMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credit_movements (id, tenant_id, student_id, amount, movement_type, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.TenantID, m.StudentID, m.Amount.String(), m.Type,
		m.Reason, encodeTime(m.CreatedAt))
	return err
}

func (s *Store) ListCreditMovementsByStudent(ctx context.Context, tenantID, studentID string) ([]billing.CreditMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, student_id, amount, movement_type, reason, created_at
		FROM credit_movements WHERE tenant_id = ? AND student_id = ?
		ORDER BY created_at, id`, tenantID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.CreditMovement
	for rows.Next() {
		var m billing.CreditMovement
		var amount, createdAt string
		var reason sql.NullString
		if err := rows.Scan(&m.ID, &m.TenantID, &m.StudentID, &amount,
			&m.Type, &reason, &createdAt); err != nil {
			return nil, err
		}
		dec, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("credit movement %s: bad amount: %w", m.ID, err)
		}
		m.Amount = dec
		m.Reason = reason.String
		m.CreatedAt = decodeTime(createdAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

// =============================================================================
// FEE CONFIG
// =============================================================================

func (s *Store) SaveFeeConfig(ctx context.Context, cfg billing.FeeConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fee_configs (tenant_id, monthly_fee, currency, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(tenant_id) DO UPDATE SET
			monthly_fee = excluded.monthly_fee,
			currency = excluded.currency,
			updated_at = excluded.updated_at`,
		cfg.TenantID, cfg.MonthlyFee.String(), cfg.Currency, encodeTime(cfg.UpdatedAt))
	return err
}

func (s *Store) GetFeeConfig(ctx context.Context, tenantID string) (*billing.FeeConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT tenant_id, monthly_fee, currency, updated_at
		FROM fee_configs WHERE tenant_id = ?`, tenantID)

	var cfg billing.FeeConfig
	var fee, updatedAt string
	if err := row.Scan(&cfg.TenantID, &fee, &cfg.Currency, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	dec, err := decimal.NewFromString(fee)
	if err != nil {
		return nil, fmt.Errorf("fee config %s: bad amount: %w", tenantID, err)
	}
	cfg.MonthlyFee = dec
	cfg.UpdatedAt = decodeTime(updatedAt)
	return &cfg, nil
}

// =============================================================================
// SWEEP RUNS
// =============================================================================

func (s *Store) SaveSweepRun(ctx context.Context, run billing.SweepRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sweep_runs (id, tenant_id, ran_at, students, delinquent, total_debt)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.TenantID, encodeTime(run.RanAt), run.Students, run.Delinquent,
		run.TotalDebt.String())
	return err
}

func (s *Store) ListSweepRuns(ctx context.Context, tenantID string, limit int) ([]billing.SweepRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, ran_at, students, delinquent, total_debt
		FROM sweep_runs WHERE tenant_id = ?
		ORDER BY ran_at DESC LIMIT ?`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.SweepRun
	for rows.Next() {
		var run billing.SweepRun
		var ranAt, totalDebt string
		if err := rows.Scan(&run.ID, &run.TenantID, &ranAt, &run.Students,
			&run.Delinquent, &totalDebt); err != nil {
			return nil, err
		}
		run.RanAt = decodeTime(ranAt)
		dec, err := decimal.NewFromString(totalDebt)
		if err != nil {
			return nil, fmt.Errorf("sweep run %s: bad total: %w", run.ID, err)
		}
		run.TotalDebt = dec
		out = append(out, run)
	}
	return out, rows.Err()
}

// =============================================================================
// DONATIONS
// =============================================================================

func (s *Store) SaveScheduledActivity(ctx context.Context, a donations.ScheduledActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_activities (id, tenant_id, title, date, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, id) DO UPDATE SET
			title = excluded.title,
			date = excluded.date,
			notes = excluded.notes`,
		a.ID, a.TenantID, a.Title, encodeDay(a.Date), a.Notes, encodeTime(a.CreatedAt))
	return err
}

func (s *Store) GetScheduledActivity(ctx context.Context, tenantID, id string) (*donations.ScheduledActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, title, date, notes, created_at
		FROM scheduled_activities WHERE tenant_id = ? AND id = ?`, tenantID, id)

	a, err := scanScheduled(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) ListScheduledActivities(ctx context.Context, tenantID string) ([]donations.ScheduledActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, title, date, notes, created_at
		FROM scheduled_activities WHERE tenant_id = ? ORDER BY date, id`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []donations.ScheduledActivity
	for rows.Next() {
		a, err := scanScheduled(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanScheduled(r rowScanner) (*donations.ScheduledActivity, error) {
	var a donations.ScheduledActivity
	var date, createdAt string
	var notes sql.NullString
	if err := r.Scan(&a.ID, &a.TenantID, &a.Title, &date, &notes, &createdAt); err != nil {
		return nil, err
	}
	day, err := decodeDay(date)
	if err != nil {
		return nil, fmt.Errorf("scheduled activity %s: bad date: %w", a.ID, err)
	}
	a.Date = day
	a.Notes = notes.String
	a.CreatedAt = decodeTime(createdAt)
	return &a, nil
}

func (s *Store) SaveItem(ctx context.Context, item donations.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO donation_items (id, tenant_id, scheduled_activity_id, name, unit, required_qty, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.TenantID, item.ScheduledActivityID, item.Name, item.Unit,
		item.RequiredQty.String(), encodeTime(item.CreatedAt))
	return err
}

func (s *Store) ListItemsByActivity(ctx context.Context, tenantID, scheduledActivityID string) ([]donations.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, scheduled_activity_id, name, unit, required_qty, created_at
		FROM donation_items WHERE tenant_id = ? AND scheduled_activity_id = ?
		ORDER BY created_at, id`, tenantID, scheduledActivityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []donations.Item
	for rows.Next() {
		var item donations.Item
		var qtyStr, createdAt string
		if err := rows.Scan(&item.ID, &item.TenantID, &item.ScheduledActivityID,
			&item.Name, &item.Unit, &qtyStr, &createdAt); err != nil {
			return nil, err
		}
		dec, err := decimal.NewFromString(qtyStr)
		if err != nil {
			return nil, fmt.Errorf("donation item %s: bad quantity: %w", item.ID, err)
		}
		item.RequiredQty = dec
		item.CreatedAt = decodeTime(createdAt)
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) SaveCommitment(ctx context.Context, c donations.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fulfilled := 0
	if c.Fulfilled {
		fulfilled = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO donation_commitments (id, tenant_id, item_id, student_id, qty, fulfilled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.TenantID, c.ItemID, c.StudentID, c.Qty.String(),
		fulfilled, encodeTime(c.CreatedAt))
	return err
}

func (s *Store) UpdateCommitmentFulfilled(ctx context.Context, tenantID, id string, fulfilled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	val := 0
	if fulfilled {
		val = 1
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE donation_commitments SET fulfilled = ?
		WHERE tenant_id = ? AND id = ?`,
		val, tenantID, id)
	return err
}

func (s *Store) ListCommitmentsByActivity(ctx context.Context, tenantID, scheduledActivityID string) ([]donations.Commitment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.tenant_id, c.item_id, c.student_id, c.qty, c.fulfilled, c.created_at
		FROM donation_commitments c
		JOIN donation_items i ON i.tenant_id = c.tenant_id AND i.id = c.item_id
		WHERE c.tenant_id = ? AND i.scheduled_activity_id = ?
		ORDER BY c.created_at, c.id`, tenantID, scheduledActivityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []donations.Commitment
	for rows.Next() {
		var c donations.Commitment
		var qtyStr, createdAt string
		var fulfilled int
		if err := rows.Scan(&c.ID, &c.TenantID, &c.ItemID, &c.StudentID,
			&qtyStr, &fulfilled, &createdAt); err != nil {
			return nil, err
		}
		dec, err := decimal.NewFromString(qtyStr)
		if err != nil {
			return nil, fmt.Errorf("commitment %s: bad quantity: %w", c.ID, err)
		}
		c.Qty = dec
		c.Fulfilled = fulfilled != 0
		c.CreatedAt = decodeTime(createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}
