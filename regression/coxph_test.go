package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/npdr/pkg/errors"
)

func TestCoxPH_PositiveAssociation(t *testing.T) {
	// Larger x mostly goes with longer times (a few discordant pairs keep
	// the likelihood bounded); the reported (negated) coefficient must come
	// out positive.
	x := []float64{0.2, 1.1, 1.9, 3.0, 4.2, 5.1, 5.9, 7.2}
	tt := []float64{2.1, 1.0, 2.9, 5.0, 4.2, 6.3, 8.4, 7.1}

	fit, err := CoxPH(x, tt)
	require.NoError(t, err)

	assert.Greater(t, fit.Coef, 0.0)
	assert.Greater(t, fit.StdErr, 0.0)
	assert.Equal(t, 0, fit.DOF)
	assert.Less(t, fit.PValue(Greater), 0.5)
}

func TestCoxPH_NegativeAssociation(t *testing.T) {
	x := []float64{7.2, 5.9, 5.1, 4.2, 3.0, 1.9, 1.1, 0.2}
	tt := []float64{1.0, 2.1, 2.9, 4.2, 5.0, 6.3, 7.1, 8.4}

	fit, err := CoxPH(x, tt)
	require.NoError(t, err)
	assert.Less(t, fit.Coef, 0.0)
}

func TestCoxPH_TiedTimes(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	tt := []float64{1, 1, 2, 2, 3, 3}

	fit, err := CoxPH(x, tt)
	require.NoError(t, err)
	assert.False(t, fit.StdErr == 0, "Breslow handling of ties must keep the information finite")
}

func TestCoxPH_Degenerate(t *testing.T) {
	_, err := CoxPH([]float64{1, 1, 1, 1}, []float64{1, 2, 3, 4})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDegenerate))
}

func TestCoxPH_Deterministic(t *testing.T) {
	x := []float64{0.2, 1.1, 1.9, 3.0, 4.2, 5.1}
	tt := []float64{2.0, 1.1, 3.9, 2.2, 5.0, 4.3}

	a, err := CoxPH(x, tt)
	require.NoError(t, err)
	b, err := CoxPH(x, tt)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
