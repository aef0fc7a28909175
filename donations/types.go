/*
Package donations tracks donation commitments for scheduled activities.

PURPOSE:
  A scheduled activity (fair, shared meal, fundraiser) asks families
  for donation items in required quantities: "30 bottles of water",
  "5 kg of flour". Students commit partial quantities, and commitments
  are later flagged fulfilled when the items actually arrive. This
  package reconciles the required quantity per item against the many
  per-student partial commitments and their fulfillment flags.

KEY DIFFERENCES FROM FEE DEBT:
  1. Nothing here is money owed: an uncovered item is a gap to organize
     around, not a debt on any one student.
  2. Quantities are decimal (kilograms, litres), not currency.
  3. Progress is two-staged: committed (promised) vs fulfilled
     (delivered).

SEE ALSO:
  - progress.go: The reconciliation arithmetic
  - billing: Money-side counterpart of activities
*/
package donations

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTITIES
// =============================================================================

// ScheduledActivity is a dated event that collects donations.
type ScheduledActivity struct {
	ID        string
	TenantID  string
	Title     string
	Date      time.Time
	Notes     string
	CreatedAt time.Time
}

// Item is one donation line on a scheduled activity, with the total
// quantity the event needs.
type Item struct {
	ID                  string
	TenantID            string
	ScheduledActivityID string
	Name                string
	Unit                string // "unidades", "kg", "litros"
	RequiredQty         decimal.Decimal
	CreatedAt           time.Time
}

// Commitment is one student's promise to bring part of an item.
// Fulfilled flips when the items are actually delivered.
type Commitment struct {
	ID        string
	TenantID  string
	ItemID    string
	StudentID string
	Qty       decimal.Decimal
	Fulfilled bool
	CreatedAt time.Time
}
