package regression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/npdr/pkg/errors"
)

func TestOLS_KnownSlope(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{1.1, 1.9, 3.2, 3.8, 5.1, 5.9}

	fit, err := OLS(x, y)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, fit.Coef, 0.05)
	assert.Equal(t, 4, fit.DOF)
	assert.Greater(t, fit.Stat, 0.0)
	assert.Less(t, fit.PValue(Greater), 0.001)
}

func TestOLS_PerfectFit(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{3, 6, 9, 12, 15} // y = 3x exactly

	fit, err := OLS(x, y)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, fit.Coef, 1e-9)
	assert.Less(t, fit.PValue(Greater), 1e-9)
}

func TestOLS_NegativeSlope(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{10.2, 8.1, 5.9, 4.1, 2.0}

	fit, err := OLS(x, y)
	require.NoError(t, err)

	assert.Less(t, fit.Coef, 0.0)
	// The directional test against a positive slope should be near 1.
	assert.Greater(t, fit.PValue(Greater), 0.99)
	// The two-sided test still flags the association.
	assert.Less(t, fit.PValue(TwoSided), 0.01)
}

func TestOLS_Degenerate(t *testing.T) {
	t.Run("zero variance", func(t *testing.T) {
		_, err := OLS([]float64{2, 2, 2, 2}, []float64{1, 2, 3, 4})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrDegenerate))
	})

	t.Run("too few observations", func(t *testing.T) {
		_, err := OLS([]float64{1, 2}, []float64{1, 2})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrDegenerate))
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := OLS([]float64{1, 2, 3}, []float64{1, 2})
		require.Error(t, err)
		assert.False(t, errors.Is(err, errors.ErrDegenerate), "dimension errors are input errors")
	})
}

func TestFit_PValueTails(t *testing.T) {
	f := Fit{Stat: 2.0, DOF: 0}
	upper := f.PValue(Greater)
	assert.InDelta(t, 0.02275, upper, 1e-4)
	assert.InDelta(t, 2*upper, f.PValue(TwoSided), 1e-9)

	inf := Fit{Stat: math.Inf(1), DOF: 10}
	assert.Zero(t, inf.PValue(Greater))
}
