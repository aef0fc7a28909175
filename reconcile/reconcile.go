/*
reconcile.go - The reconciliation pipeline

PURPOSE:
  Ties the pieces together into the single entry point every caller
  uses. Data flows one way:

    Snapshot -> Classify -> { AccruedMonthly, ActivityDebts }
             -> AdjustedMonthlyPaid -> Breakdown

  The original system re-implemented this arithmetic at three call
  sites, which drifted. Here there is exactly one implementation; the
  dashboard endpoint, the admin report and the background sweep all
  call Reconcile.

GUARANTEES:
  - MonthlyDebt >= 0 and every activity shortfall > 0
  - Increasing an attributed payment never increases a shortfall
  - An excluded, future, date-less or pre-enrollment activity never
    appears in the result
  - Adding a negative payment_redirect of magnitude X reduces
    MonthlyDebt by exactly min(X, MonthlyDebt)

SEE ALSO:
  - reconcile_test.go: These guarantees as executable scenarios
*/
package reconcile

// Reconcile computes the full debt breakdown for one student snapshot.
// It is pure: no I/O, no state, no error paths. Malformed source data
// (negative amounts, odd dates) propagates into a well-typed but
// possibly surprising result, which is the accepted trade-off for a
// reporting feature fed by already-validated rows.
func Reconcile(s Snapshot) Breakdown {
	classified := Classify(s.Payments, s.Activities)

	accrued := AccruedMonthly(s.EnrollmentDate, s.AsOf, s.MonthlyFee)
	paid := AdjustedMonthlyPaid(classified.MonthlyPayments, s.CreditMovements)
	monthlyDebt := maxZero(accrued.Sub(paid))

	activityDebts := ActivityDebts(
		s.Activities, s.Exclusions, s.EnrollmentDate, s.AsOf, classified.ActivityPaid,
	)

	total := monthlyDebt
	for _, d := range activityDebts {
		total = total.Add(d.Amount)
	}

	return Breakdown{
		MonthlyDebt:   monthlyDebt,
		ActivityDebts: activityDebts,
		TotalDebt:     total,
	}
}
