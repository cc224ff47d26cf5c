package regression

import (
	"math"

	"github.com/YuminosukeSato/npdr/pkg/errors"
)

const (
	logisticMaxIter = 50
	logisticTol     = 1e-8
	// Linear predictor clamp; beyond this the sigmoid is saturated anyway
	// and exp() would overflow the working weights.
	etaClamp = 30
)

// Logistic fits a univariate logistic regression of the 0/1 response y on x
// by iteratively reweighted least squares (two-parameter Newton) and returns
// the slope with its Wald z statistic.
//
// Zero variance in x returns an error wrapping errors.ErrDegenerate. Failure
// to converge (typically quasi-complete separation in the projected
// differences) returns a ConvergenceError.
func Logistic(x, y []float64) (Fit, error) {
	n := len(x)
	if len(y) != n {
		return Fit{}, errors.NewDimensionError("regression.Logistic", n, len(y), 0)
	}
	if n < 3 {
		return Fit{}, errors.Wrapf(errors.ErrDegenerate, "logistic fit needs at least 3 observations, got %d", n)
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return Fit{}, errors.NewValidationError("y", "logistic response must be 0/1", []interface{}{i, v})
		}
	}
	if !hasVariance(x) {
		return Fit{}, errors.Wrap(errors.ErrDegenerate, "zero variance in predictor")
	}

	var b0, b1 float64
	var i00, i01, i11 float64

	for iter := 0; iter < logisticMaxIter; iter++ {
		var g0, g1 float64
		i00, i01, i11 = 0, 0, 0

		for i := 0; i < n; i++ {
			eta := b0 + b1*x[i]
			if eta > etaClamp {
				eta = etaClamp
			} else if eta < -etaClamp {
				eta = -etaClamp
			}
			p := 1 / (1 + math.Exp(-eta))
			w := p * (1 - p)
			if w < 1e-10 {
				w = 1e-10
			}

			r := y[i] - p
			g0 += r
			g1 += x[i] * r
			i00 += w
			i01 += w * x[i]
			i11 += w * x[i] * x[i]
		}

		det := i00*i11 - i01*i01
		if det < 1e-12 {
			return Fit{}, errors.Wrap(errors.ErrDegenerate, "singular information matrix")
		}

		d0 := (i11*g0 - i01*g1) / det
		d1 := (i00*g1 - i01*g0) / det
		b0 += d0
		b1 += d1

		if math.Abs(d0) < logisticTol && math.Abs(d1) < logisticTol {
			se := math.Sqrt(i00 / det)
			return Fit{Coef: b1, Intercept: b0, StdErr: se, Stat: b1 / se, DOF: 0}, nil
		}
	}

	return Fit{}, errors.NewConvergenceError("Logistic", logisticMaxIter, "IRLS did not converge")
}

func hasVariance(x []float64) bool {
	for i := 1; i < len(x); i++ {
		if x[i] != x[0] {
			return true
		}
	}
	return false
}
