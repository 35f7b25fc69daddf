package diversity

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compare-methods/alphadiv/pkg/types"
)

const relTol = 1e-9

// value unwraps a defined index, failing the test if it is undefined.
func value(t *testing.T, i types.Index) float64 {
	t.Helper()
	v, ok := i.Value()
	require.True(t, ok, "index must be defined")
	return v
}

// assertClose compares with a relative tolerance, falling back to an
// absolute one near zero.
func assertClose(t *testing.T, want, got float64, msgAndArgs ...interface{}) {
	t.Helper()
	if want == 0 {
		assert.InDelta(t, want, got, 1e-12, msgAndArgs...)
		return
	}
	assert.InEpsilon(t, want, got, relTol, msgAndArgs...)
}

func TestComputeMetrics_Undefined(t *testing.T) {
	tests := []struct {
		name   string
		counts []float64
	}{
		{name: "nil counts", counts: nil},
		{name: "empty counts", counts: []float64{}},
		{name: "all zero", counts: []float64{0, 0, 0}},
		{name: "negatives and zeros", counts: []float64{-1, 0, -3.5}},
		{name: "nan only", counts: []float64{math.NaN()}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := ComputeMetrics(types.AbundanceRow{ID: "s", Counts: tc.counts})
			assert.Equal(t, "s", m.ID)
			assert.Equal(t, 0, m.Richness)
			assert.False(t, m.BergerParker.IsDefined(), "berger_parker")
			assert.False(t, m.Simpson.IsDefined(), "simpson")
			assert.False(t, m.Shannon.IsDefined(), "shannon")
		})
	}
}

func TestComputeMetrics_SingleTaxon(t *testing.T) {
	m := ComputeMetrics(types.AbundanceRow{ID: "one", Counts: []float64{0, 42, 0}})

	assert.Equal(t, 1, m.Richness)
	assert.Equal(t, 1.0, value(t, m.BergerParker))
	assert.Equal(t, 0.0, value(t, m.Simpson))
	assert.Equal(t, 0.0, value(t, m.Shannon))
}

func TestComputeMetrics_EvenCommunity(t *testing.T) {
	for _, n := range []int{2, 3, 7, 50} {
		counts := make([]float64, n)
		for i := range counts {
			counts[i] = 5
		}
		m := ComputeMetrics(types.AbundanceRow{Counts: counts})

		assert.Equal(t, n, m.Richness)
		assertClose(t, 1/float64(n), value(t, m.BergerParker), "berger_parker n=%d", n)
		assertClose(t, 1-1/float64(n), value(t, m.Simpson), "simpson n=%d", n)
		assertClose(t, math.Log(float64(n)), value(t, m.Shannon), "shannon n=%d", n)
	}
}

func TestComputeMetrics_ConcreteRow(t *testing.T) {
	m := ComputeMetrics(types.AbundanceRow{ID: "Mock-1", Counts: []float64{10, 20, 30, 40}})

	wantShannon := -(0.1*math.Log(0.1) + 0.2*math.Log(0.2) + 0.3*math.Log(0.3) + 0.4*math.Log(0.4))

	assert.Equal(t, 4, m.Richness)
	assertClose(t, 0.4, value(t, m.BergerParker))
	assertClose(t, 0.70, value(t, m.Simpson))
	assertClose(t, wantShannon, value(t, m.Shannon))
	assert.InDelta(t, 1.2799, value(t, m.Shannon), 1e-4)
}

func TestComputeMetrics_IgnoresNonPositive(t *testing.T) {
	withNoise := ComputeMetrics(types.AbundanceRow{Counts: []float64{10, 0, -5, 20, math.NaN(), 30, 40}})
	clean := ComputeMetrics(types.AbundanceRow{Counts: []float64{10, 20, 30, 40}})

	if diff := cmp.Diff(clean, withNoise, cmp.AllowUnexported(types.Index{})); diff != "" {
		t.Errorf("metrics mismatch (-clean +noisy):\n%s", diff)
	}
}

func TestComputeMetrics_PermutationInvariant(t *testing.T) {
	base := []float64{3, 0, 17, 1, 8, 0.5}
	perms := [][]float64{
		{0.5, 8, 1, 17, 0, 3},
		{17, 3, 0.5, 0, 8, 1},
		{0, 0.5, 1, 3, 8, 17},
	}
	want := ComputeMetrics(types.AbundanceRow{Counts: base})
	for i, p := range perms {
		got := ComputeMetrics(types.AbundanceRow{Counts: p})
		assert.Equal(t, want.Richness, got.Richness, "perm %d", i)
		assertClose(t, value(t, want.BergerParker), value(t, got.BergerParker), "perm %d", i)
		assertClose(t, value(t, want.Simpson), value(t, got.Simpson), "perm %d", i)
		assertClose(t, value(t, want.Shannon), value(t, got.Shannon), "perm %d", i)
	}
}

func TestComputeMetrics_ScaleInvariant(t *testing.T) {
	base := []float64{1, 2, 3, 5, 8, 13}
	want := ComputeMetrics(types.AbundanceRow{Counts: base})

	for _, k := range []float64{0.001, 3.7, 1e6} {
		scaled := make([]float64, len(base))
		for i, v := range base {
			scaled[i] = v * k
		}
		got := ComputeMetrics(types.AbundanceRow{Counts: scaled})
		assert.Equal(t, want.Richness, got.Richness, "k=%g", k)
		assertClose(t, value(t, want.BergerParker), value(t, got.BergerParker), "k=%g", k)
		assertClose(t, value(t, want.Simpson), value(t, got.Simpson), "k=%g", k)
		assertClose(t, value(t, want.Shannon), value(t, got.Shannon), "k=%g", k)
	}
}

func TestComputeMetrics_RelativeAbundanceInput(t *testing.T) {
	// Percentages and raw counts of the same community agree.
	pct := ComputeMetrics(types.AbundanceRow{Counts: []float64{25, 25, 50}})
	raw := ComputeMetrics(types.AbundanceRow{Counts: []float64{100, 100, 200}})

	assertClose(t, value(t, raw.Shannon), value(t, pct.Shannon))
	assertClose(t, 0.5, value(t, pct.BergerParker))
	assertClose(t, 1-(0.0625+0.0625+0.25), value(t, pct.Simpson))
}

func TestComputeTable_PreservesOrderAndIDs(t *testing.T) {
	rows := []types.AbundanceRow{
		{ID: "Mock-3", Counts: []float64{1, 1}},
		{ID: "Mock-1", Counts: []float64{0, 0}},
		{ID: "Mock-2", Counts: []float64{5}},
		{ID: "Mock-3", Counts: []float64{2, 2, 2}},
	}
	got := ComputeTable(rows)

	require.Len(t, got, len(rows))
	for i := range rows {
		assert.Equal(t, rows[i].ID, got[i].ID, "row %d", i)
		if diff := cmp.Diff(ComputeMetrics(rows[i]), got[i], cmp.AllowUnexported(types.Index{})); diff != "" {
			t.Errorf("row %d mismatch (-want +got):\n%s", i, diff)
		}
	}
	assert.Equal(t, 0, got[1].Richness)
	assert.Equal(t, 3, got[3].Richness)
}

func TestComputeTable_Empty(t *testing.T) {
	assert.Empty(t, ComputeTable(nil))
}
