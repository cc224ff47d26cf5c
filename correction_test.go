package npdr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjust_Bonferroni(t *testing.T) {
	t.Run("scales by the test count", func(t *testing.T) {
		got := Adjust([]float64{0.01, 0.02}, Bonferroni)
		assert.Equal(t, []float64{0.02, 0.04}, got)
	})

	t.Run("caps at one", func(t *testing.T) {
		// 100 tests at p=0.01 each saturate the correction exactly.
		p := make([]float64, 100)
		for i := range p {
			p[i] = 0.01
		}
		for _, v := range Adjust(p, Bonferroni) {
			assert.Equal(t, 1.0, v)
		}
	})
}

func TestAdjust_FDR(t *testing.T) {
	got := Adjust([]float64{0.01, 0.04, 0.03, 0.002}, FDR)

	want := []float64{0.02, 0.04, 0.04, 0.008}
	require.Len(t, got, 4)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12, "index %d", i)
	}
}

func TestAdjust_FDRNeverBelowRaw(t *testing.T) {
	p := []float64{0.001, 0.2, 0.05, 0.9, 0.04, 0.04}
	got := Adjust(p, FDR)
	for i := range p {
		assert.GreaterOrEqual(t, got[i], p[i], "index %d", i)
		assert.LessOrEqual(t, got[i], 1.0, "index %d", i)
	}
}

func TestAdjust_NaNEntries(t *testing.T) {
	// Uncomputed attributes stay NaN and do not inflate the test count.
	got := Adjust([]float64{0.01, math.NaN(), 0.02}, Bonferroni)

	assert.InDelta(t, 0.02, got[0], 1e-12)
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 0.04, got[2], 1e-12)
}

func TestAdjust_AllNaN(t *testing.T) {
	got := Adjust([]float64{math.NaN(), math.NaN()}, FDR)
	for _, v := range got {
		assert.True(t, math.IsNaN(v))
	}
}

func TestAdjust_Empty(t *testing.T) {
	assert.Empty(t, Adjust(nil, FDR))
}

func TestAdjust_PreservesOrder(t *testing.T) {
	p := []float64{0.5, 0.001, 0.2}
	got := Adjust(p, FDR)
	// The smallest raw p keeps the smallest adjusted p at its own index.
	assert.Less(t, got[1], got[0])
	assert.Less(t, got[1], got[2])
}
