package reconcile_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurso/billing-engine/reconcile"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Rifa   anual ", "RIFA ANUAL"},
		{"cuota marzo", "CUOTA MARZO"},
		{"\tEXCURSION\n primavera", "EXCURSION PRIMAVERA"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reconcile.Normalize(tt.in))
	}
}

func TestIsMonthlyFeeConcept(t *testing.T) {
	assert.True(t, reconcile.IsMonthlyFeeConcept("Cuota Marzo"))
	assert.True(t, reconcile.IsMonthlyFeeConcept("pago CUOTA abril"))
	assert.True(t, reconcile.IsMonthlyFeeConcept("cuota"))
	assert.False(t, reconcile.IsMonthlyFeeConcept("RIFA"))
	assert.False(t, reconcile.IsMonthlyFeeConcept(""))
}

func TestClassify_ExplicitIDAttribution(t *testing.T) {
	activities := []reconcile.Activity{
		{ID: "act-1", Name: "RIFA", Amount: money(2000), Date: datePtr(2025, time.April, 1)},
	}
	payments := []reconcile.Payment{
		{ActivityID: activityIDPtr("act-1"), Concept: "whatever", Amount: money(700)},
		{ActivityID: activityIDPtr("act-1"), Concept: "more", Amount: money(300)},
	}

	c := reconcile.Classify(payments, activities)

	assert.True(t, c.PaidFor("act-1").Equal(money(1000)))
	assert.Empty(t, c.MonthlyPayments)
}

func TestClassify_ConceptSubstringAttribution(t *testing.T) {
	activities := []reconcile.Activity{
		{ID: "act-1", Name: " rifa  Anual", Amount: money(2000), Date: datePtr(2025, time.April, 1)},
	}
	payments := []reconcile.Payment{
		{ActivityID: nil, Concept: "pago RIFA ANUAL familia Perez", Amount: money(500)},
	}

	c := reconcile.Classify(payments, activities)

	assert.True(t, c.PaidFor("act-1").Equal(money(500)),
		"normalized concept should contain normalized activity name")
}

func TestClassify_ConceptMatchesEveryContainedActivity(t *testing.T) {
	// Known ambiguity kept from the source data model: a concept that
	// contains several activity names credits all of them.
	activities := []reconcile.Activity{
		{ID: "act-1", Name: "RIFA", Amount: money(2000), Date: datePtr(2025, time.April, 1)},
		{ID: "act-2", Name: "RIFA ANUAL", Amount: money(3000), Date: datePtr(2025, time.April, 2)},
	}
	payments := []reconcile.Payment{
		{ActivityID: nil, Concept: "RIFA ANUAL", Amount: money(1000)},
	}

	c := reconcile.Classify(payments, activities)

	assert.True(t, c.PaidFor("act-1").Equal(money(1000)))
	assert.True(t, c.PaidFor("act-2").Equal(money(1000)))
}

func TestClassify_ExplicitIDSkipsConceptMatching(t *testing.T) {
	// A payment with an activity_id is attributed once, by ID, even if
	// its concept happens to name a different activity.
	activities := []reconcile.Activity{
		{ID: "act-1", Name: "RIFA", Amount: money(2000), Date: datePtr(2025, time.April, 1)},
		{ID: "act-2", Name: "MUSEO", Amount: money(1000), Date: datePtr(2025, time.April, 2)},
	}
	payments := []reconcile.Payment{
		{ActivityID: activityIDPtr("act-2"), Concept: "RIFA", Amount: money(400)},
	}

	c := reconcile.Classify(payments, activities)

	assert.True(t, c.PaidFor("act-1").IsZero())
	assert.True(t, c.PaidFor("act-2").Equal(money(400)))
}

func TestClassify_CuotaPaymentsCollected(t *testing.T) {
	payments := []reconcile.Payment{
		{Concept: "Cuota Marzo", Amount: money(3000)},
		{Concept: "cuota abril", Amount: money(3000)},
		{Concept: "RIFA", Amount: money(500)},
	}

	c := reconcile.Classify(payments, nil)

	require.Len(t, c.MonthlyPayments, 2)
}

func TestClassify_BlankNamesAndConceptsNeverMatch(t *testing.T) {
	activities := []reconcile.Activity{
		{ID: "act-1", Name: "   ", Amount: money(2000), Date: datePtr(2025, time.April, 1)},
	}
	payments := []reconcile.Payment{
		{ActivityID: nil, Concept: "anything at all", Amount: money(500)},
		{ActivityID: nil, Concept: "", Amount: money(500)},
	}

	c := reconcile.Classify(payments, activities)

	assert.True(t, c.PaidFor("act-1").IsZero(),
		"a blank activity name must not match every concept")
}

func TestClassify_EmptyInputs(t *testing.T) {
	c := reconcile.Classify(nil, nil)

	assert.Empty(t, c.MonthlyPayments)
	assert.Empty(t, c.ActivityPaid)
}
