/*
progress.go - Commitment reconciliation

PURPOSE:
  Computes, per donation item, how much of the required quantity has
  been committed and how much has actually been fulfilled, then rolls
  the items up into per-activity progress.

ARITHMETIC:
  committed   = sum of commitment quantities
  fulfilled   = sum of quantities with the fulfilled flag set
  to commit   = max(0, required - committed)
  to fulfill  = max(0, required - fulfilled)

  Over-commitment is allowed (families bring extra); the remaining
  quantities clamp at zero rather than going negative.

Like the debt core, this is a stateless pass over in-memory rows:
every call recomputes from the snapshot the caller fetched.
*/
package donations

import "github.com/shopspring/decimal"

// =============================================================================
// ITEM PROGRESS
// =============================================================================

// ItemProgress is the reconciled state of one donation item.
type ItemProgress struct {
	Item Item

	Committed decimal.Decimal
	Fulfilled decimal.Decimal

	// RemainingToCommit is what still needs a volunteer.
	RemainingToCommit decimal.Decimal

	// RemainingToFulfill is what has not yet been delivered.
	RemainingToFulfill decimal.Decimal

	FullyCommitted bool
	FullyFulfilled bool

	// Commitments are the item's rows, in input order, for display.
	Commitments []Commitment
}

// ProgressFor reconciles one item against its commitments. Commitments
// belonging to other items are ignored, so callers may pass the full
// activity-wide commitment list.
func ProgressFor(item Item, commitments []Commitment) ItemProgress {
	p := ItemProgress{
		Item:      item,
		Committed: decimal.Zero,
		Fulfilled: decimal.Zero,
	}

	for _, c := range commitments {
		if c.ItemID != item.ID {
			continue
		}
		p.Commitments = append(p.Commitments, c)
		p.Committed = p.Committed.Add(c.Qty)
		if c.Fulfilled {
			p.Fulfilled = p.Fulfilled.Add(c.Qty)
		}
	}

	p.RemainingToCommit = clampZero(item.RequiredQty.Sub(p.Committed))
	p.RemainingToFulfill = clampZero(item.RequiredQty.Sub(p.Fulfilled))
	p.FullyCommitted = !p.RemainingToCommit.IsPositive()
	p.FullyFulfilled = !p.RemainingToFulfill.IsPositive()

	return p
}

// =============================================================================
// ACTIVITY PROGRESS
// =============================================================================

// ActivityProgress rolls up every item of a scheduled activity.
type ActivityProgress struct {
	Activity ScheduledActivity
	Items    []ItemProgress

	// FullyCommitted / FullyFulfilled hold when every item is covered.
	// An activity with no items counts as covered.
	FullyCommitted bool
	FullyFulfilled bool
}

// ActivityProgressFor reconciles all items of one scheduled activity.
// Item order follows input order.
func ActivityProgressFor(activity ScheduledActivity, items []Item, commitments []Commitment) ActivityProgress {
	out := ActivityProgress{
		Activity:       activity,
		FullyCommitted: true,
		FullyFulfilled: true,
	}

	for _, item := range items {
		if item.ScheduledActivityID != activity.ID {
			continue
		}
		p := ProgressFor(item, commitments)
		out.Items = append(out.Items, p)
		out.FullyCommitted = out.FullyCommitted && p.FullyCommitted
		out.FullyFulfilled = out.FullyFulfilled && p.FullyFulfilled
	}

	return out
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
