package schedule_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/viability/schedule"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func vec(values ...float64) schedule.Vector {
	v := make(schedule.Vector, len(values))
	for i, x := range values {
		v[i] = d(x)
	}
	return v
}

func assertDecimal(t *testing.T, want, got decimal.Decimal) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

func assertVector(t *testing.T, want, got schedule.Vector) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "month %d: want %s, got %s", i, want[i], got[i])
	}
}

// =============================================================================
// TIMELINE TESTS
// =============================================================================

func TestTimeline_TotalAndWindows(t *testing.T) {
	tl, err := schedule.NewTimeline(4, 10, 2)
	require.NoError(t, err)

	assert.Equal(t, 16, tl.Total())
	assert.Equal(t, schedule.Window{Phase: schedule.PhasePreConstruction, Start: 0, Length: 4}, tl.Window(schedule.PhasePreConstruction))
	assert.Equal(t, schedule.Window{Phase: schedule.PhaseConstruction, Start: 4, Length: 10}, tl.Window(schedule.PhaseConstruction))
	assert.Equal(t, schedule.Window{Phase: schedule.PhasePostConstruction, Start: 14, Length: 2}, tl.Window(schedule.PhasePostConstruction))
	assert.Equal(t, 16, tl.Window(schedule.PhaseHorizon).Length)

	post := tl.Window(schedule.PhasePostConstruction)
	assert.Equal(t, 14, post.First())
	assert.Equal(t, 15, post.Last())
	assert.True(t, post.Contains(15))
	assert.False(t, post.Contains(16))
}

func TestTimeline_NegativePhaseRejected(t *testing.T) {
	_, err := schedule.NewTimeline(3, -1, 2)
	require.Error(t, err)
	assert.True(t, schedule.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "construction_months")
}

func TestTimeline_ZeroPhasesAllowed(t *testing.T) {
	tl, err := schedule.NewTimeline(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, tl.Total())
	assert.True(t, tl.Window(schedule.PhaseConstruction).Empty())
}

// =============================================================================
// ALLOCATION TESTS
// =============================================================================

func TestAllocate_Policies(t *testing.T) {
	window := schedule.Window{Phase: schedule.PhasePreConstruction, Start: 0, Length: 4}

	tests := []struct {
		name   string
		policy schedule.AllocationPolicy
		want   schedule.Vector
	}{
		{"initial", schedule.PolicyInitial, vec(1200, 0, 0, 0, 0, 0)},
		{"linear", schedule.PolicyLinear, vec(300, 300, 300, 300, 0, 0)},
		{"final", schedule.PolicyFinal, vec(0, 0, 0, 1200, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := schedule.Allocate("Permits", tt.policy, d(1200), window, 6)
			require.NoError(t, err)
			assertVector(t, tt.want, got)
			assert.True(t, got.Sum().Equal(d(1200)))
		})
	}
}

func TestAllocate_ScopedToLaterWindow(t *testing.T) {
	// GIVEN: a 2-month post-construction window at months 4..5
	// WHEN: allocating Initial and Final
	// THEN: only the window's edges carry the amount
	w := schedule.Window{Phase: schedule.PhasePostConstruction, Start: 4, Length: 2}

	initial, err := schedule.Allocate("Handover", schedule.PolicyInitial, d(500), w, 6)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, initial.NonZero())

	final, err := schedule.Allocate("Handover", schedule.PolicyFinal, d(500), w, 6)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, final.NonZero())
}

func TestAllocate_LinearRepeatingDivisionSumsBack(t *testing.T) {
	w := schedule.Window{Phase: schedule.PhaseConstruction, Start: 1, Length: 3}
	got, err := schedule.Allocate("Management", schedule.PolicyLinear, d(1000), w, 5)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, got.NonZero())
	assertDecimal(t, d(1000), got.Sum())

	// AND: every month but the last carries the same share
	assert.True(t, got[1].Equal(got[2]))
	assert.True(t, got[3].GreaterThan(got[2]))
}

func TestAllocate_UnknownPolicyIsConfigurationError(t *testing.T) {
	w := schedule.Window{Start: 0, Length: 2}
	_, err := schedule.Allocate("Marketing", schedule.AllocationPolicy("x"), d(10), w, 2)

	require.Error(t, err)
	var cfg *schedule.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "Marketing", cfg.Subject)
}

func TestAllocate_EmptyWindowIsConfigurationError(t *testing.T) {
	w := schedule.Window{Phase: schedule.PhasePostConstruction, Start: 5, Length: 0}
	_, err := schedule.Allocate("Handover", schedule.PolicyLinear, d(10), w, 5)

	require.Error(t, err)
	assert.True(t, schedule.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "Handover")
}

func TestAllocate_WindowBeyondHorizonRejected(t *testing.T) {
	w := schedule.Window{Start: 3, Length: 4}
	_, err := schedule.Allocate("Fees", schedule.PolicyFinal, d(10), w, 5)
	assert.True(t, schedule.IsConfigurationError(err))
}

func TestRecurring_SpansHorizon(t *testing.T) {
	got, err := schedule.Recurring("Condo fees", d(50), 4)
	require.NoError(t, err)
	assertVector(t, vec(50, 50, 50, 50), got)
}

func TestParseAllocationPolicy(t *testing.T) {
	for code, want := range map[string]schedule.AllocationPolicy{
		"i": schedule.PolicyInitial, "I": schedule.PolicyInitial, "initial": schedule.PolicyInitial,
		"l": schedule.PolicyLinear, " Linear ": schedule.PolicyLinear,
		"f": schedule.PolicyFinal, "FINAL": schedule.PolicyFinal,
	} {
		got, err := schedule.ParseAllocationPolicy("line", code)
		require.NoError(t, err, code)
		assert.Equal(t, want, got, code)
	}

	_, err := schedule.ParseAllocationPolicy("Broker fee", "q")
	require.Error(t, err)
	assert.True(t, schedule.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "Broker fee")
}

// =============================================================================
// SALES PHASING TESTS
// =============================================================================

func TestPhaseSales_RemainderMonth(t *testing.T) {
	// GIVEN: 7 units at 2/month from month 2
	// THEN: [0,2,2,2,1,0,...] padded to the horizon
	got, err := schedule.PhaseSales("A", 7, 2, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 2, 2, 1, 0, 0, 0, 0, 0}, got)
	assert.Equal(t, 7, schedule.TotalSold(got))
}

func TestPhaseSales_ZeroRemainderKeepsTailMonth(t *testing.T) {
	// GIVEN: 6 units at 2/month from month 1 on a 4-month horizon
	// THEN: the explicit zero tail month still needs a slot: 3 + 1 = 4 fits
	got, err := schedule.PhaseSales("B", 6, 2, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 2, 0}, got)

	// One month shorter and the tail month no longer fits.
	_, err = schedule.PhaseSales("B", 6, 2, 1, 3)
	require.Error(t, err)
	var cfg *schedule.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "B", cfg.Subject)
	assert.Equal(t, 3, cfg.Month)
}

func TestPhaseSales_OverflowDetected(t *testing.T) {
	_, err := schedule.PhaseSales("Penthouse", 10, 1, 5, 12)
	require.Error(t, err)
	assert.True(t, schedule.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "Penthouse")
}

func TestPhaseSales_InvalidPace(t *testing.T) {
	_, err := schedule.PhaseSales("A", 5, 0, 1, 12)
	assert.True(t, schedule.IsConfigurationError(err))

	_, err = schedule.PhaseSales("A", 5, 1, 0, 12)
	assert.True(t, schedule.IsConfigurationError(err))
}

func TestSaleEvents_SkipsEmptyMonths(t *testing.T) {
	events := schedule.SaleEvents([]int{0, 2, 0, 1, 0})
	assert.Equal(t, []schedule.SaleEvent{{Month: 1, Quantity: 2}, {Month: 3, Quantity: 1}}, events)
}

// =============================================================================
// RECEIVABLE TESTS
// =============================================================================

func plan() schedule.ReceivablePlan {
	return schedule.ReceivablePlan{DownPayment: d(0.2), Installment: d(0.5), Final: d(0.3)}
}

func TestReceivablePlan_UnitVectorLayout(t *testing.T) {
	// GIVEN: sale at month 1 on a 8-month horizon -> 8-1-2 = 5 flow months
	got, err := plan().UnitVector("A", 1, 2, 8)
	require.NoError(t, err)
	assertVector(t, vec(0, 0.2, 0.1, 0.1, 0.1, 0.1, 0.1, 0.3), got)
}

func TestReceivablePlan_SumIndependentOfFlowWindow(t *testing.T) {
	price := d(250000)
	for month := 0; month < 9; month++ {
		v, err := plan().UnitVector("A", month, 3, 12)
		require.NoError(t, err)
		assertDecimal(t, price.Mul(plan().Total()), v.Scale(price).Sum())
	}
}

func TestReceivablePlan_InstallmentsSumBackExactly(t *testing.T) {
	// GIVEN: an installment share that does not divide the 3 flow months
	// (sale at month 0 on a 5-month horizon)
	got, err := plan().UnitVector("A", 0, 1, 5)
	require.NoError(t, err)

	// THEN: the installment months add up to the fraction with no drift
	assertDecimal(t, d(0.5), got[1].Add(got[2]).Add(got[3]))
	assertDecimal(t, plan().Total(), got.Sum())
}

func TestReceivablePlan_NoFlowWindow(t *testing.T) {
	// month 10 of 12 leaves 12-10-2 = 0 installment months
	_, err := plan().UnitVector("Studio", 10, 1, 12)
	require.Error(t, err)
	var cfg *schedule.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, 10, cfg.Month)
	assert.Equal(t, "Studio", cfg.Subject)
}

func TestReceivablePlan_ReceivablesOnePerUnit(t *testing.T) {
	rows, err := plan().Receivables("A", schedule.SaleEvent{Month: 0, Quantity: 3}, d(100), 5)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assertVector(t, roundTo(vec(20, 50.0/3, 50.0/3, 50.0/3, 30), 8), roundTo(r, 8))
	}

	// Rows are independent copies.
	rows[0][0] = d(0)
	assert.True(t, rows[1][0].Equal(d(20)))
}

func roundTo(v schedule.Vector, places int32) schedule.Vector {
	out := make(schedule.Vector, len(v))
	for i, x := range v {
		out[i] = x.Round(places)
	}
	return out
}

// =============================================================================
// MATRIX TESTS
// =============================================================================

func TestMatrix_Totals(t *testing.T) {
	var m schedule.Matrix
	m.Append("A", vec(1, 2, 3))
	m.Append("B", vec(10, 0, 5))
	m.Append("A", vec(0, 1, 0))

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 3, m.Width())
	assertVector(t, vec(11, 3, 8), m.Totals())
	assert.True(t, m.Sum().Equal(d(22)))
	assert.Equal(t, 2, m.Filter("A").Len())

	row, ok := m.Find("B")
	require.True(t, ok)
	assertVector(t, vec(10, 0, 5), row.Values)

	totals := m.RowTotals()
	assert.True(t, totals[1].Equal(d(15)))
}

func TestVector_SubAndEqual(t *testing.T) {
	a := vec(5, 5, 5)
	b := vec(1, 2, 3)
	assert.True(t, a.Sub(b).Equal(vec(4, 3, 2)))
	assert.False(t, a.Equal(vec(5, 5)))
	assert.Equal(t, []float64{1, 2, 3}, b.Float64s())
}
