// Package regression provides the regression backends used by the scoring
// pipeline: univariate ordinary least squares, logistic and Cox proportional
// hazards fits with standardized statistics and tail probabilities, and an
// elastic-net coordinate-descent solver for the penalized variant.
//
// Every fit is a pure function of its explicit inputs; no fitted state is
// shared or reused across calls.
package regression

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/npdr/pkg/errors"
)

// Alternative selects the tail of the coefficient test.
type Alternative int

const (
	// Greater tests the directional hypothesis that the slope is positive.
	// This is the scoring convention: attributes relevant to the outcome
	// separate dissimilar-outcome neighbors more than irrelevant ones.
	Greater Alternative = iota
	// TwoSided tests against a nonzero slope in either direction.
	TwoSided
)

// Fit is a fitted univariate slope with its standardized statistic.
type Fit struct {
	Coef      float64
	Intercept float64
	StdErr    float64
	// Stat is the standardized coefficient: Student's t when DOF > 0,
	// otherwise a Wald z referred to the standard normal.
	Stat float64
	DOF  int
}

// PValue returns the tail probability of Stat under alt.
func (f Fit) PValue(alt Alternative) float64 {
	var upper float64
	if f.DOF > 0 {
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(f.DOF)}
		upper = dist.Survival(f.Stat)
	} else {
		upper = distuv.UnitNormal.Survival(f.Stat)
	}

	if alt == Greater {
		return upper
	}
	p := 2 * math.Min(upper, 1-upper)
	if p > 1 {
		p = 1
	}
	return p
}

// OLS fits y = a + b*x by ordinary least squares and returns the slope with
// its t statistic on n-2 degrees of freedom.
//
// Degenerate inputs (fewer than 3 observations, zero variance in x) return
// an error wrapping errors.ErrDegenerate so callers can isolate the failure
// per attribute instead of aborting a run.
func OLS(x, y []float64) (Fit, error) {
	n := len(x)
	if len(y) != n {
		return Fit{}, errors.NewDimensionError("regression.OLS", n, len(y), 0)
	}
	if n < 3 {
		return Fit{}, errors.Wrapf(errors.ErrDegenerate, "OLS needs at least 3 observations, got %d", n)
	}

	var xMean, yMean float64
	for i := 0; i < n; i++ {
		xMean += x[i]
		yMean += y[i]
	}
	xMean /= float64(n)
	yMean /= float64(n)

	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dx := x[i] - xMean
		sxx += dx * dx
		sxy += dx * (y[i] - yMean)
	}
	if sxx < 1e-12 {
		return Fit{}, errors.Wrap(errors.ErrDegenerate, "zero variance in predictor")
	}

	b := sxy / sxx
	a := yMean - b*xMean

	var rss float64
	for i := 0; i < n; i++ {
		r := y[i] - a - b*x[i]
		rss += r * r
	}

	dof := n - 2
	se := math.Sqrt(rss / float64(dof) / sxx)

	stat := b / se
	if se == 0 {
		// Perfect fit: the statistic is unbounded in the slope's direction.
		stat = math.Inf(1)
		if b < 0 {
			stat = math.Inf(-1)
		}
	}

	return Fit{Coef: b, Intercept: a, StdErr: se, Stat: stat, DOF: dof}, nil
}
