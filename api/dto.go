/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  h.validate.Struct() before touching the store. Amounts cross the wire
  as JSON numbers and are converted to decimals at the handler boundary.

DATES:
  Day-granular dates (enrollment, activity, payment) are YYYY-MM-DD
  strings. Timestamps are RFC3339.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/feeconfig.go: FeeConfigJSON type
*/
package api

import (
	"time"

	"github.com/kurso/billing-engine/billing"
	"github.com/kurso/billing-engine/donations"
	"github.com/kurso/billing-engine/factory"
	"github.com/kurso/billing-engine/reconcile"
)

const dayFormat = "2006-01-02"

// =============================================================================
// TENANTS
// =============================================================================

// TenantDTO represents a tenant in API responses.
type TenantDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateTenantRequest is the request to create a tenant.
type CreateTenantRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name" validate:"required,min=2"`
}

// =============================================================================
// STUDENTS
// =============================================================================

// StudentDTO represents a student in API responses.
type StudentDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Guardian       string `json:"guardian,omitempty"`
	EnrollmentDate string `json:"enrollment_date"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// CreateStudentRequest is the request to enroll a student.
type CreateStudentRequest struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name" validate:"required,min=2"`
	Guardian       string `json:"guardian,omitempty"`
	EnrollmentDate string `json:"enrollment_date" validate:"required,datetime=2006-01-02"`
}

func toStudentDTO(s billing.Student) StudentDTO {
	return StudentDTO{
		ID:             s.ID,
		Name:           s.Name,
		Guardian:       s.Guardian,
		EnrollmentDate: s.EnrollmentDate.Format(dayFormat),
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// ACTIVITIES
// =============================================================================

// ActivityDTO represents a billable activity.
type ActivityDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Date      *string `json:"date,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// CreateActivityRequest is the request to create an activity.
// Date may be omitted; date-less activities are never owed.
type CreateActivityRequest struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name" validate:"required,min=2"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Date   string  `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func toActivityDTO(a billing.Activity) ActivityDTO {
	dto := ActivityDTO{
		ID:        a.ID,
		Name:      a.Name,
		Amount:    a.Amount.InexactFloat64(),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
	if a.Date != nil {
		d := a.Date.Format(dayFormat)
		dto.Date = &d
	}
	return dto
}

// CreateExclusionRequest exempts the student from one activity.
type CreateExclusionRequest struct {
	ActivityID string `json:"activity_id" validate:"required"`
}

// =============================================================================
// PAYMENTS
// =============================================================================

// PaymentDTO represents a recorded payment.
type PaymentDTO struct {
	ID         string  `json:"id"`
	StudentID  *string `json:"student_id,omitempty"`
	ActivityID *string `json:"activity_id,omitempty"`
	Concept    string  `json:"concept,omitempty"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

// CreatePaymentRequest records a payment. student_id may be omitted for
// rows imported from bank statements that haven't been matched yet;
// activity_id may be omitted when the concept text carries the
// attribution.
type CreatePaymentRequest struct {
	ID         string  `json:"id,omitempty"`
	StudentID  string  `json:"student_id,omitempty"`
	ActivityID string  `json:"activity_id,omitempty"`
	Concept    string  `json:"concept,omitempty"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
}

func toPaymentDTO(p billing.Payment) PaymentDTO {
	return PaymentDTO{
		ID:         p.ID,
		StudentID:  p.StudentID,
		ActivityID: p.ActivityID,
		Concept:    p.Concept,
		Amount:     p.Amount.InexactFloat64(),
		Date:       p.Date.Format(dayFormat),
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// CREDIT MOVEMENTS
// =============================================================================

// CreditMovementDTO represents one credit ledger entry.
type CreditMovementDTO struct {
	ID        string  `json:"id"`
	StudentID string  `json:"student_id"`
	Amount    float64 `json:"amount"`
	Type      string  `json:"type"`
	Reason    string  `json:"reason,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// CreateCreditMovementRequest records a credit movement for a student.
// Amount sign matters: negative payment_redirect movements count toward
// the monthly fee; positive movements build standing credit.
type CreateCreditMovementRequest struct {
	Amount float64 `json:"amount" validate:"required"`
	Type   string  `json:"type" validate:"required"`
	Reason string  `json:"reason,omitempty"`
}

func toCreditMovementDTO(m billing.CreditMovement) CreditMovementDTO {
	return CreditMovementDTO{
		ID:        m.ID,
		StudentID: m.StudentID,
		Amount:    m.Amount.InexactFloat64(),
		Type:      m.Type,
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// FEE CONFIG
// =============================================================================

// FeeConfigDTO wraps the factory JSON schema with its update timestamp.
type FeeConfigDTO struct {
	Config    factory.FeeConfigJSON `json:"config"`
	UpdatedAt string                `json:"updated_at,omitempty"`
}

// =============================================================================
// DEBT REPORTS
// =============================================================================

// ActivityDebtDTO is one unpaid activity line.
type ActivityDebtDTO struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// DebtReportDTO is one student's reconciled position.
type DebtReportDTO struct {
	Student       StudentDTO        `json:"student"`
	MonthlyDebt   float64           `json:"monthly_debt"`
	ActivityDebts []ActivityDebtDTO `json:"activity_debts"`
	TotalDebt     float64           `json:"total_debt"`
	CreditBalance float64           `json:"credit_balance"`
	Currency      string            `json:"currency"`
	AsOf          string            `json:"as_of"`
}

// TenantDebtSummaryDTO is the tenant-wide rollup for the dashboard.
type TenantDebtSummaryDTO struct {
	TenantID   string          `json:"tenant_id"`
	AsOf       string          `json:"as_of"`
	Students   int             `json:"students"`
	Delinquent int             `json:"delinquent"`
	TotalDebt  float64         `json:"total_debt"`
	Reports    []DebtReportDTO `json:"reports"`
}

// CreditBalanceDTO is the standing credit shown beside the debt.
type CreditBalanceDTO struct {
	StudentID     string  `json:"student_id"`
	CreditBalance float64 `json:"credit_balance"`
	Currency      string  `json:"currency"`
}

func toDebtReportDTO(r billing.DebtReport) DebtReportDTO {
	dto := DebtReportDTO{
		Student:       toStudentDTO(r.Student),
		MonthlyDebt:   r.Breakdown.MonthlyDebt.InexactFloat64(),
		ActivityDebts: []ActivityDebtDTO{},
		TotalDebt:     r.Breakdown.TotalDebt.InexactFloat64(),
		CreditBalance: r.CreditBalance.InexactFloat64(),
		Currency:      r.Currency,
		AsOf:          r.AsOf.Format(dayFormat),
	}
	for _, ad := range r.Breakdown.ActivityDebts {
		dto.ActivityDebts = append(dto.ActivityDebts, toActivityDebtDTO(ad))
	}
	return dto
}

func toActivityDebtDTO(ad reconcile.ActivityDebt) ActivityDebtDTO {
	return ActivityDebtDTO{Name: ad.Name, Amount: ad.Amount.InexactFloat64()}
}

// =============================================================================
// DONATIONS
// =============================================================================

// ScheduledActivityDTO represents a planned school event.
type ScheduledActivityDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateScheduledActivityRequest plans a school event.
type CreateScheduledActivityRequest struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title" validate:"required,min=2"`
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
	Notes string `json:"notes,omitempty"`
}

func toScheduledActivityDTO(a donations.ScheduledActivity) ScheduledActivityDTO {
	return ScheduledActivityDTO{
		ID:        a.ID,
		Title:     a.Title,
		Date:      a.Date.Format(dayFormat),
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

// DonationItemDTO represents one requested item.
type DonationItemDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	RequiredQty float64 `json:"required_qty"`
}

// CreateDonationItemRequest adds an item to a scheduled activity.
type CreateDonationItemRequest struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Unit        string  `json:"unit,omitempty"`
	RequiredQty float64 `json:"required_qty" validate:"required,gt=0"`
}

// CreateCommitmentRequest records a family's pledge toward an item.
type CreateCommitmentRequest struct {
	ItemID    string  `json:"item_id" validate:"required"`
	StudentID string  `json:"student_id" validate:"required"`
	Qty       float64 `json:"qty" validate:"required,gt=0"`
}

// FulfillCommitmentRequest marks a pledge delivered (or not).
type FulfillCommitmentRequest struct {
	Fulfilled bool `json:"fulfilled"`
}

// CommitmentDTO represents one pledge.
type CommitmentDTO struct {
	ID        string  `json:"id"`
	ItemID    string  `json:"item_id"`
	StudentID string  `json:"student_id"`
	Qty       float64 `json:"qty"`
	Fulfilled bool    `json:"fulfilled"`
}

// ItemProgressDTO reconciles required vs committed vs fulfilled.
type ItemProgressDTO struct {
	Item               DonationItemDTO `json:"item"`
	Committed          float64         `json:"committed"`
	Fulfilled          float64         `json:"fulfilled"`
	RemainingToCommit  float64         `json:"remaining_to_commit"`
	RemainingToFulfill float64         `json:"remaining_to_fulfill"`
	FullyCommitted     bool            `json:"fully_committed"`
	FullyFulfilled     bool            `json:"fully_fulfilled"`
	Commitments        []CommitmentDTO `json:"commitments"`
}

// ActivityDonationsDTO is the per-event rollup.
type ActivityDonationsDTO struct {
	Activity       ScheduledActivityDTO `json:"activity"`
	Items          []ItemProgressDTO    `json:"items"`
	FullyCommitted bool                 `json:"fully_committed"`
	FullyFulfilled bool                 `json:"fully_fulfilled"`
}

func toDonationItemDTO(item donations.Item) DonationItemDTO {
	return DonationItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Unit:        item.Unit,
		RequiredQty: item.RequiredQty.InexactFloat64(),
	}
}

func toCommitmentDTO(c donations.Commitment) CommitmentDTO {
	return CommitmentDTO{
		ID:        c.ID,
		ItemID:    c.ItemID,
		StudentID: c.StudentID,
		Qty:       c.Qty.InexactFloat64(),
		Fulfilled: c.Fulfilled,
	}
}

func toItemProgressDTO(p donations.ItemProgress) ItemProgressDTO {
	dto := ItemProgressDTO{
		Item:               toDonationItemDTO(p.Item),
		Committed:          p.Committed.InexactFloat64(),
		Fulfilled:          p.Fulfilled.InexactFloat64(),
		RemainingToCommit:  p.RemainingToCommit.InexactFloat64(),
		RemainingToFulfill: p.RemainingToFulfill.InexactFloat64(),
		FullyCommitted:     p.FullyCommitted,
		FullyFulfilled:     p.FullyFulfilled,
		Commitments:        []CommitmentDTO{},
	}
	for _, c := range p.Commitments {
		dto.Commitments = append(dto.Commitments, toCommitmentDTO(c))
	}
	return dto
}

// =============================================================================
// SWEEP RUNS
// =============================================================================

// SweepRunDTO represents one recorded delinquency sweep pass.
type SweepRunDTO struct {
	ID         string  `json:"id"`
	RanAt      string  `json:"ran_at"`
	Students   int     `json:"students"`
	Delinquent int     `json:"delinquent"`
	TotalDebt  float64 `json:"total_debt"`
}

func toSweepRunDTO(run billing.SweepRun) SweepRunDTO {
	return SweepRunDTO{
		ID:         run.ID,
		RanAt:      run.RanAt.Format(time.RFC3339),
		Students:   run.Students,
		Delinquent: run.Delinquent,
		TotalDebt:  run.TotalDebt.InexactFloat64(),
	}
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
