/*
accrual.go - Monthly-fee accrual

PURPOSE:
  Computes how many months of the monthly fee a student has accrued.
  The school's billing year starts in March; a student enrolled after
  March in the current year starts accruing in their enrollment month.

ACCRUAL RULES:
  - First billable month is March, or the enrollment month if the
    student enrolled later than March in the current year.
  - Students enrolled in a prior calendar year accrue from March of the
    current year only. Unpaid months from prior years do not roll
    forward; see DESIGN.md for the open product question behind this.
  - A student enrolled after the as-of date has accrued nothing.
  - months = max(0, currentMonth - firstBillableMonth + 1)
    (January and February therefore accrue zero months)

EXAMPLE:
  Enrolled March 1, as-of April 30, fee 3000:
  months = April - March + 1 = 2, accrued = 6000.

SEE ALSO:
  - reconcile.go: Uses the accrued amount as the expected monthly total
  - credits.go: The paid side of the monthly-fee equation
*/
package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BILLING CALENDAR
// =============================================================================

// BillingStartMonth is the first month of the school billing year.
// Enrollment before this month (or in a prior year) bills from here.
const BillingStartMonth = time.March

// DefaultMonthlyFee is the tenant fee applied when none is configured.
var DefaultMonthlyFee = decimal.NewFromInt(3000)

// =============================================================================
// MONTHLY FEE ACCRUER
// =============================================================================

// MonthsAccrued returns the number of billable months between the billing
// start and asOf, inclusive, for a student with the given enrollment date.
func MonthsAccrued(enrollment, asOf Date) int {
	if enrollment.After(asOf) {
		return 0
	}

	first := BillingStartMonth
	if enrollment.Year() == asOf.Year() && enrollment.Month() > BillingStartMonth {
		first = enrollment.Month()
	}

	months := int(asOf.Month()) - int(first) + 1
	if months < 0 {
		months = 0
	}
	return months
}

// AccruedMonthly returns the total monthly fee accrued up to asOf.
func AccruedMonthly(enrollment, asOf Date, monthlyFee decimal.Decimal) decimal.Decimal {
	return monthlyFee.Mul(decimal.NewFromInt(int64(MonthsAccrued(enrollment, asOf))))
}
