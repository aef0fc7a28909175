/*
activities.go - Per-activity shortfall calculation

PURPOSE:
  For each activity that is actually owed by the student, computes the
  shortfall between the expected amount and the payments attributed to
  it by the classifier.

AN ACTIVITY IS OWED WHEN ALL OF:
  1. It has a date (date-less activities are permanently not yet due)
  2. The date is on or before the as-of date
  3. The student is not excluded from it
  4. The student was already enrolled when it took place

SHORTFALL:
  owed = max(0, amount - attributed payments)
  Only positive shortfalls are emitted. Output order follows input
  activity order; callers that want a different order sort for display.

SEE ALSO:
  - classify.go: Builds the attribution map consumed here
  - reconcile.go: Sums the shortfalls into the total
*/
package reconcile

import "github.com/shopspring/decimal"

// ActivityDebts computes the outstanding shortfall for every owed
// activity. Excluded activities are removed entirely: neither their
// expected amount nor their attributed payments participate.
func ActivityDebts(
	activities []Activity,
	exclusions ExclusionSet,
	enrollment Date,
	asOf Date,
	paid map[ActivityID]decimal.Decimal,
) []ActivityDebt {
	var debts []ActivityDebt

	for _, a := range activities {
		if a.Date == nil {
			continue // not scheduled, never due
		}
		if a.Date.After(asOf) {
			continue // not yet due
		}
		if exclusions.Excluded(a.ID) {
			continue
		}
		if enrollment.After(*a.Date) {
			continue // predates the student's enrollment
		}

		owed := maxZero(a.Amount.Sub(paid[a.ID]))
		if owed.IsPositive() {
			debts = append(debts, ActivityDebt{Name: a.Name, Amount: owed})
		}
	}

	return debts
}
