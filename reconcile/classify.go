/*
classify.go - Payment classification

PURPOSE:
  Partitions a student's payments into monthly-fee payments and
  per-activity payments. This is where the system's legacy matching
  rules live:

  - A payment is a monthly-fee payment iff its concept contains the
    case-insensitive substring "cuota".
  - A payment is attributed to an activity iff it carries the activity's
    ID, OR (when the ID is absent) the normalized concept contains the
    normalized activity name as a substring.

MATCHING CAVEATS:
  Concept matching is a legacy-data compatibility shim: rows written
  before activity IDs were required can only be matched by text. A
  payment whose concept contains several activity names is attributed to
  every one of them - not exclusively the best match. New writes should
  always carry an activity ID so this path stays confined to old rows.

NORMALIZATION:
  normalize(s) = uppercase(trim(s)) with internal whitespace runs
  collapsed to a single space. "  Rifa   anual " and "RIFA ANUAL"
  compare equal.

SEE ALSO:
  - activities.go: Consumes the per-activity attribution map
  - credits.go: Consumes the monthly-fee payment list
*/
package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"
)

// monthlyFeeMarker is the substring that tags a payment as a monthly-fee
// payment. Concepts are free text entered by admins; "cuota" is the
// conventional label ("cuota marzo", "Cuota Abril", ...).
const monthlyFeeMarker = "CUOTA"

// Normalize uppercases, trims and collapses internal whitespace so that
// free-text concepts and activity names compare predictably.
func Normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// IsMonthlyFeeConcept reports whether a payment concept marks a
// monthly-fee payment.
func IsMonthlyFeeConcept(concept string) bool {
	return strings.Contains(Normalize(concept), monthlyFeeMarker)
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Classification is the result of partitioning a student's payments.
type Classification struct {
	// MonthlyPayments are payments whose concept contains "cuota".
	MonthlyPayments []Payment

	// ActivityPaid maps each activity to the total payment amount
	// attributed to it, by ID or by concept matching.
	ActivityPaid map[ActivityID]decimal.Decimal
}

// PaidFor returns the total attributed to an activity, zero if none.
func (c Classification) PaidFor(id ActivityID) decimal.Decimal {
	if amount, ok := c.ActivityPaid[id]; ok {
		return amount
	}
	return decimal.Zero
}

// Classify partitions payments against the activity list. Absent data
// yields empty classifications; there is no failure mode.
func Classify(payments []Payment, activities []Activity) Classification {
	out := Classification{
		ActivityPaid: make(map[ActivityID]decimal.Decimal),
	}

	for _, p := range payments {
		if IsMonthlyFeeConcept(p.Concept) {
			out.MonthlyPayments = append(out.MonthlyPayments, p)
		}

		if p.ActivityID != nil {
			out.ActivityPaid[*p.ActivityID] = out.PaidFor(*p.ActivityID).Add(p.Amount)
			continue
		}

		// Legacy rows: match by normalized substring. Every activity whose
		// name appears in the concept receives the full payment amount.
		concept := Normalize(p.Concept)
		if concept == "" {
			continue
		}
		for _, a := range activities {
			name := Normalize(a.Name)
			if name == "" {
				continue
			}
			if strings.Contains(concept, name) {
				out.ActivityPaid[a.ID] = out.PaidFor(a.ID).Add(p.Amount)
			}
		}
	}

	return out
}
