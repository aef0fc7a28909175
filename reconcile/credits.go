/*
credits.go - Credit movements

PURPOSE:
  Folds credit-movement rows into the two places they matter:

  - Negative payment_redirect rows are credit applied against fee debt.
    Their absolute value counts as additional monthly-fee payment.
  - Positive rows (any type) build the student's standing credit
    balance, displayed separately and never folded into debt.

  Other negative movement types (refund, deduction) draw the credit
  balance down without affecting fee debt.

SEE ALSO:
  - reconcile.go: Uses AdjustedMonthlyPaid on the paid side
  - billing: Surfaces CreditBalance next to the debt breakdown
*/
package reconcile

import "github.com/shopspring/decimal"

// AdjustedMonthlyPaid returns the total counted against monthly-fee
// accrual: the sum of monthly-fee payments plus the magnitude of every
// negative payment_redirect movement.
func AdjustedMonthlyPaid(monthlyPayments []Payment, movements []CreditMovement) decimal.Decimal {
	total := decimal.Zero
	for _, p := range monthlyPayments {
		total = total.Add(p.Amount)
	}
	for _, cm := range movements {
		if cm.Type == MovementPaymentRedirect && cm.Amount.IsNegative() {
			total = total.Add(cm.Amount.Abs())
		}
	}
	return total
}

// CreditBalance returns the student's standing credit: the net of all
// movements, floored at zero for display. Positive rows add credit;
// negative rows (redirections, refunds, deductions) consume it.
func CreditBalance(movements []CreditMovement) decimal.Decimal {
	total := decimal.Zero
	for _, cm := range movements {
		total = total.Add(cm.Amount)
	}
	return maxZero(total)
}
