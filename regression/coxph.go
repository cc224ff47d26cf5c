package regression

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/npdr/pkg/errors"
)

const (
	coxMaxIter = 50
	coxTol     = 1e-8
	coxMaxStep = 5
)

// CoxPH fits a univariate Cox proportional hazards regression of the event
// time t on covariate x by Newton iteration on the Breslow partial
// likelihood. Every observation is treated as an observed event; ties share
// a risk set (Breslow's approximation).
//
// The reported coefficient is negated relative to the raw hazard
// coefficient: a raw negative hazard coefficient means larger x goes with
// longer times, so negation keeps the package-wide direction where a
// positive Coef means larger covariate differences accompany larger outcome
// separations.
func CoxPH(x, t []float64) (Fit, error) {
	n := len(x)
	if len(t) != n {
		return Fit{}, errors.NewDimensionError("regression.CoxPH", n, len(t), 0)
	}
	if n < 3 {
		return Fit{}, errors.Wrapf(errors.ErrDegenerate, "Cox fit needs at least 3 observations, got %d", n)
	}
	if !hasVariance(x) {
		return Fit{}, errors.Wrap(errors.ErrDegenerate, "zero variance in predictor")
	}

	// Process event times from largest to smallest so the risk set grows by
	// accumulation.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return t[order[a]] > t[order[b]] })

	var beta float64
	var info float64

	for iter := 0; iter < coxMaxIter; iter++ {
		var score float64
		info = 0
		var s0, s1, s2 float64

		for k := 0; k < n; {
			// Add the whole tie group to the risk set before scoring it.
			m := k
			for m < n && t[order[m]] == t[order[k]] {
				xi := x[order[m]]
				e := math.Exp(beta * xi)
				s0 += e
				s1 += xi * e
				s2 += xi * xi * e
				m++
			}
			for ; k < m; k++ {
				xi := x[order[k]]
				mean := s1 / s0
				score += xi - mean
				info += s2/s0 - mean*mean
			}
		}

		if math.IsNaN(score) || math.IsNaN(info) {
			// Monotone partial likelihood (fully concordant data) pushes
			// beta to infinity until the risk-set sums overflow.
			return Fit{}, errors.NewConvergenceError("CoxPH", iter, "diverging coefficient")
		}
		if info < 1e-12 {
			return Fit{}, errors.Wrap(errors.ErrDegenerate, "vanishing partial-likelihood information")
		}

		step := score / info
		if step > coxMaxStep {
			step = coxMaxStep
		} else if step < -coxMaxStep {
			step = -coxMaxStep
		}
		beta += step

		if math.Abs(step) < coxTol {
			se := 1 / math.Sqrt(info)
			coef := -beta
			return Fit{Coef: coef, StdErr: se, Stat: coef / se, DOF: 0}, nil
		}
	}

	return Fit{}, errors.NewConvergenceError("CoxPH", coxMaxIter, "Newton iteration did not converge")
}
