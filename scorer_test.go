package npdr

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/npdr/dataset"
	"github.com/YuminosukeSato/npdr/neighbors"
	"github.com/YuminosukeSato/npdr/pkg/errors"
)

// signalDataset builds n samples over p attributes where the outcome is
// driven entirely by the first column.
func signalDataset(t *testing.T, n, p int, seed int64) (*dataset.Dataset, []float64) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
		y[i] = 3 * X.At(i, 0)
	}
	ds, err := dataset.New(X, nil, nil)
	require.NoError(t, err)
	return ds, y
}

func continuous(t *testing.T, y []float64) *dataset.Outcome {
	t.Helper()
	out, err := dataset.NewOutcome(y, dataset.Continuous)
	require.NoError(t, err)
	return out
}

func TestScorer_RecoversFunctionalAttribute(t *testing.T) {
	ds, y := signalDataset(t, 100, 5, 1)
	outcome := continuous(t, y)

	policies := map[string]neighbors.Policy{
		"fixed-k":   {Kind: neighbors.FixedK, K: 10},
		"multisurf": neighbors.DefaultPolicy(),
	}

	for name, pol := range policies {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Policy = pol
			s := NewScorer(cfg)
			require.NoError(t, s.Fit(ds, outcome))

			rs, err := s.Results()
			require.NoError(t, err)
			require.Len(t, rs, 5)

			a1 := rs[0]
			require.True(t, a1.OK())
			assert.Greater(t, a1.Stat, 0.0, "relevant attribute scores positive")
			assert.Less(t, a1.PAdj, 0.001)

			rs.SortBySignificance()
			assert.Equal(t, "a1", rs[0].Name, "the functional attribute ranks first")

			sel, err := s.Selection(0.01)
			require.NoError(t, err)
			assert.Contains(t, sel, "a1")
		})
	}
}

func TestScorer_ConstantAttributeIsIsolated(t *testing.T) {
	ds, y := signalDataset(t, 60, 4, 2)
	ds.X.SetCol(2, make([]float64, 60)) // a3 carries no information at all

	s := NewScorer(DefaultConfig())
	require.NoError(t, s.Fit(ds, continuous(t, y)), "one degenerate attribute never fails the run")

	rs, err := s.Results()
	require.NoError(t, err)

	bad := rs[2]
	require.False(t, bad.OK())
	var da *errors.DegenerateAttributeError
	require.True(t, errors.As(bad.Err, &da))
	assert.Equal(t, "a3", da.Attribute)
	assert.True(t, math.IsNaN(bad.Coef))
	assert.True(t, math.IsNaN(bad.P))
	assert.True(t, math.IsNaN(bad.PAdj))

	for j, r := range rs {
		if j == 2 {
			continue
		}
		assert.True(t, r.OK(), "attribute %s must still be computed", r.Name)
	}

	// The degenerate attribute is excluded from the join surface too.
	scores, err := s.Scores()
	require.NoError(t, err)
	_, present := scores["a3"]
	assert.False(t, present)
	assert.Len(t, scores, 3)
}

func TestScorer_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	n := 80
	X := mat.NewDense(n, 4, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < 4; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
		y[i] = 2*X.At(i, 0) + 0.5*rng.NormFloat64()
	}
	ds, err := dataset.New(X, nil, nil)
	require.NoError(t, err)
	outcome := continuous(t, y)

	run := func(workers int) Results {
		cfg := DefaultConfig()
		cfg.Workers = workers
		s := NewScorer(cfg)
		require.NoError(t, s.Fit(ds, outcome))
		rs, err := s.Results()
		require.NoError(t, err)
		return rs
	}

	a := run(1)
	b := run(4)
	require.Len(t, b, len(a))
	for j := range a {
		assert.Equal(t, a[j].Coef, b[j].Coef, "attribute %s", a[j].Name)
		assert.Equal(t, a[j].Stat, b[j].Stat, "attribute %s", a[j].Name)
		assert.Equal(t, a[j].P, b[j].P, "attribute %s", a[j].Name)
		assert.Equal(t, a[j].PAdj, b[j].PAdj, "attribute %s", a[j].Name)
	}
}

func TestScorer_BinomialFamily(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	n := 100
	X := mat.NewDense(n, 4, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < 4; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
		if X.At(i, 0) > 0 {
			y[i] = 1
		}
	}
	ds, err := dataset.New(X, nil, nil)
	require.NoError(t, err)
	outcome, err := dataset.NewOutcome(y, dataset.Binary)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Family = Binomial
	s := NewScorer(cfg)
	require.NoError(t, s.Fit(ds, outcome))

	rs, err := s.Results()
	require.NoError(t, err)
	a1 := rs[0]
	require.True(t, a1.OK())
	assert.Greater(t, a1.Coef, 0.0)
	assert.Less(t, a1.P, 0.05)
}

func TestScorer_CoxPHFamily(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	n := 90
	X := mat.NewDense(n, 3, nil)
	tt := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
		tt[i] = math.Exp(X.At(i, 0) + 0.5*rng.NormFloat64())
	}
	ds, err := dataset.New(X, nil, nil)
	require.NoError(t, err)
	outcome, err := dataset.NewOutcome(tt, dataset.Survival)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Family = CoxPH
	s := NewScorer(cfg)
	require.NoError(t, s.Fit(ds, outcome))

	rs, err := s.Results()
	require.NoError(t, err)
	a1 := rs[0]
	require.True(t, a1.OK())
	assert.Greater(t, a1.Coef, 0.0)
}

func TestScorer_FamilyOutcomeMismatch(t *testing.T) {
	ds, y := signalDataset(t, 20, 2, 3)

	cases := map[string]struct {
		family Family
		kind   dataset.OutcomeKind
	}{
		"linear on binary":    {Linear, dataset.Binary},
		"binomial on cont":    {Binomial, dataset.Continuous},
		"coxph on continuous": {CoxPH, dataset.Continuous},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			vals := y
			if tc.kind == dataset.Binary {
				vals = make([]float64, len(y))
				for i, v := range y {
					if v > 0 {
						vals[i] = 1
					}
				}
			}
			outcome, err := dataset.NewOutcome(vals, tc.kind)
			require.NoError(t, err)

			cfg := DefaultConfig()
			cfg.Family = tc.family
			err = NewScorer(cfg).Fit(ds, outcome)
			require.Error(t, err)
			var ve *errors.ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}
}

func TestScorer_PairSampling(t *testing.T) {
	ds, y := signalDataset(t, 50, 3, 4)
	outcome := continuous(t, y)

	fit := func(ps PairSampling) int {
		cfg := DefaultConfig()
		cfg.PairSampling = ps
		s := NewScorer(cfg)
		require.NoError(t, s.Fit(ds, outcome))
		n, err := s.NPairs()
		require.NoError(t, err)
		return n
	}

	redundant := fit(Redundant)
	unique := fit(Unique)
	assert.Less(t, unique, redundant, "deduplication must shrink a mutual relation")
	assert.GreaterOrEqual(t, unique*2, redundant, "at most a factor of two")
}

func TestScorer_FitWithDistance(t *testing.T) {
	ds, y := signalDataset(t, 60, 4, 6)
	outcome := continuous(t, y)

	first := NewScorer(DefaultConfig())
	require.NoError(t, first.Fit(ds, outcome))
	d, err := first.Distance()
	require.NoError(t, err)

	second := NewScorer(DefaultConfig())
	require.NoError(t, second.FitWithDistance(ds, outcome, d))

	a, err := first.Results()
	require.NoError(t, err)
	b, err := second.Results()
	require.NoError(t, err)
	for j := range a {
		assert.Equal(t, a[j].Stat, b[j].Stat, "attribute %s", a[j].Name)
	}

	t.Run("size mismatch rejected", func(t *testing.T) {
		small, ys := signalDataset(t, 30, 4, 6)
		err := NewScorer(DefaultConfig()).FitWithDistance(small, continuous(t, ys), d)
		require.Error(t, err)
		var de *errors.DimensionError
		assert.True(t, errors.As(err, &de))
	})
}

func TestScorer_InputValidation(t *testing.T) {
	ds, y := signalDataset(t, 20, 2, 8)

	t.Run("outcome length mismatch", func(t *testing.T) {
		outcome := continuous(t, y[:10])
		err := NewScorer(DefaultConfig()).Fit(ds, outcome)
		require.Error(t, err)
		var de *errors.DimensionError
		assert.True(t, errors.As(err, &de))
	})

	t.Run("negative k", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Policy = neighbors.Policy{Kind: neighbors.FixedK, K: -1}
		err := NewScorer(cfg).Fit(ds, continuous(t, y))
		require.Error(t, err)
		var ve *errors.ValidationError
		assert.True(t, errors.As(err, &ve))
	})
}

func TestScorer_NotFittedGuards(t *testing.T) {
	s := NewScorer(DefaultConfig())

	var nf *errors.NotFittedError
	_, err := s.Results()
	require.Error(t, err)
	assert.True(t, errors.As(err, &nf))

	_, err = s.Scores()
	assert.Error(t, err)
	_, err = s.Selection(0.05)
	assert.Error(t, err)
	_, err = s.EffectiveN()
	assert.Error(t, err)
	_, err = s.NPairs()
	assert.Error(t, err)
	_, err = s.Distance()
	assert.Error(t, err)
}

func TestScorer_EffectiveN(t *testing.T) {
	ds, y := signalDataset(t, 40, 3, 10)

	s := NewScorer(DefaultConfig())
	require.NoError(t, s.Fit(ds, continuous(t, y)))

	n, err := s.EffectiveN()
	require.NoError(t, err)
	assert.Greater(t, n, 0)
	assert.LessOrEqual(t, n, 40)
}
