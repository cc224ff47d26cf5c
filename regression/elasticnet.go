package regression

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/npdr/core/model"
	"github.com/YuminosukeSato/npdr/pkg/errors"
	"github.com/YuminosukeSato/npdr/pkg/log"
	"github.com/YuminosukeSato/npdr/preprocessing"
)

// Family selects the elastic-net likelihood.
type Family int

const (
	// Gaussian minimizes penalized squared error.
	Gaussian Family = iota
	// Binomial minimizes the penalized logistic deviance for a 0/1 response.
	Binomial
)

func (f Family) String() string {
	switch f {
	case Gaussian:
		return "gaussian"
	case Binomial:
		return "binomial"
	default:
		return "unknown"
	}
}

const (
	binomialOuterMax = 100
	// Working weights are floored so saturated observations cannot zero out
	// the quadratic approximation.
	binomialWeightFloor = 1e-5
)

// ElasticNet is a coordinate-descent solver for the elastic-net penalized
// regression
//
//	min 1/(2n) * loss(y, b0 + X*w) + lambda * (alpha*|w|_1 + (1-alpha)/2*|w|_2^2)
//
// Alpha mixes lasso (1) and ridge (0). Columns are standardized internally
// with preprocessing.StandardScaler so the penalty treats them evenly;
// coefficients are reported on the original scale. LowerBound, when finite,
// clamps every standardized coefficient from below (0 gives a nonnegativity
// constraint).
type ElasticNet struct {
	model.BaseEstimator

	Alpha      float64
	Lambda     float64
	LowerBound float64
	Family     Family
	MaxIter    int
	Tol        float64

	// Fitted state.
	Coefs      []float64
	Intercept  float64
	Iterations int
}

// NewElasticNet creates a solver with the given mixing parameter and penalty
// strength and the default iteration budget. The lower bound is disabled.
func NewElasticNet(alpha, lambda float64) *ElasticNet {
	return &ElasticNet{
		Alpha:      alpha,
		Lambda:     lambda,
		LowerBound: math.Inf(-1),
		MaxIter:    1000,
		Tol:        1e-6,
	}
}

// Fit runs coordinate descent on (X, y). A fit that fails to converge within
// the iteration budget returns a ConvergenceError; it is never silently
// approximated.
func (e *ElasticNet) Fit(X *mat.Dense, y []float64) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.NewValueError("ElasticNet.Fit", "empty design matrix")
	}
	if len(y) != n {
		return errors.NewDimensionError("ElasticNet.Fit", n, len(y), 0)
	}
	if e.Alpha < 0 || e.Alpha > 1 {
		return errors.NewValidationError("alpha", "must be in [0, 1]", e.Alpha)
	}
	if e.Lambda < 0 {
		return errors.NewValidationError("lambda", "must be nonnegative", e.Lambda)
	}
	if e.Family == Binomial {
		for i, v := range y {
			if v != 0 && v != 1 {
				return errors.NewValidationError("y", "binomial response must be 0/1", []interface{}{i, v})
			}
		}
	}

	scaler := preprocessing.NewStandardScalerDefault()
	Xs, err := scaler.FitTransform(X)
	if err != nil {
		return err
	}
	cols := make([][]float64, p)
	for j := 0; j < p; j++ {
		col := make([]float64, n)
		mat.Col(col, j, Xs)
		cols[j] = col
	}

	w := make([]float64, p)
	var b0 float64
	switch e.Family {
	case Binomial:
		b0, err = e.fitBinomial(cols, y, w)
	default:
		b0, err = e.fitGaussian(cols, y, w)
	}
	if err != nil {
		return err
	}

	// Report coefficients on the original column scale.
	e.Coefs = make([]float64, p)
	shift := 0.0
	for j := 0; j < p; j++ {
		e.Coefs[j] = w[j] / scaler.Scale[j]
		shift += e.Coefs[j] * scaler.Mean[j]
	}
	e.Intercept = b0 - shift

	e.SetFitted()
	lg := log.Logger()
	lg.Debug().
		Str(log.ScorerKey, "ElasticNet").
		Str(log.FamilyKey, e.Family.String()).
		Int(log.IterationsKey, e.Iterations).
		Msg("elastic net converged")
	return nil
}

func (e *ElasticNet) fitGaussian(cols [][]float64, y, w []float64) (float64, error) {
	n := len(y)
	var yMean float64
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)

	r := make([]float64, n)
	for i := range r {
		r[i] = y[i] - yMean
	}

	xtx := make([]float64, len(cols))
	for j, col := range cols {
		for _, v := range col {
			xtx[j] += v * v
		}
	}

	for iter := 0; iter < e.MaxIter; iter++ {
		maxDelta := e.cycle(cols, xtx, w, r, nil)
		if maxDelta < e.Tol {
			e.Iterations = iter + 1
			return yMean, nil
		}
	}
	return 0, errors.NewConvergenceError("ElasticNet", e.MaxIter, "coordinate descent did not converge")
}

func (e *ElasticNet) fitBinomial(cols [][]float64, y, w []float64) (float64, error) {
	n := len(y)
	p := len(cols)
	var b0 float64

	wts := make([]float64, n)
	r := make([]float64, n)
	xtxw := make([]float64, p)
	prev := make([]float64, p)

	for outer := 0; outer < binomialOuterMax; outer++ {
		copy(prev, w)
		prevB0 := b0

		// Quadratic approximation around the current linear predictor.
		var sumWt float64
		for i := 0; i < n; i++ {
			eta := b0
			for j := 0; j < p; j++ {
				eta += w[j] * cols[j][i]
			}
			if eta > etaClamp {
				eta = etaClamp
			} else if eta < -etaClamp {
				eta = -etaClamp
			}
			pi := 1 / (1 + math.Exp(-eta))
			wt := pi * (1 - pi)
			if wt < binomialWeightFloor {
				wt = binomialWeightFloor
			}
			wts[i] = wt
			sumWt += wt
			// Working residual of z = eta + (y-p)/wt around the current fit.
			r[i] = (y[i] - pi) / wt
		}
		for j := 0; j < p; j++ {
			xtxw[j] = 0
			for i := 0; i < n; i++ {
				xtxw[j] += wts[i] * cols[j][i] * cols[j][i]
			}
		}

		for inner := 0; inner < e.MaxIter; inner++ {
			maxDelta := e.cycle(cols, xtxw, w, r, wts)

			var d0 float64
			for i := 0; i < n; i++ {
				d0 += wts[i] * r[i]
			}
			d0 /= sumWt
			b0 += d0
			for i := range r {
				r[i] -= d0
			}

			if maxDelta < e.Tol && math.Abs(d0) < e.Tol {
				break
			}
		}

		outerDelta := math.Abs(b0 - prevB0)
		for j := 0; j < p; j++ {
			if d := math.Abs(w[j] - prev[j]); d > outerDelta {
				outerDelta = d
			}
		}
		if outerDelta < e.Tol {
			e.Iterations = outer + 1
			return b0, nil
		}
	}
	return 0, errors.NewConvergenceError("ElasticNet", binomialOuterMax, "IRLS outer loop did not converge")
}

// cycle performs one full pass of coordinate updates and returns the largest
// coefficient change. wts == nil means unit weights.
func (e *ElasticNet) cycle(cols [][]float64, xtx, w, r, wts []float64) float64 {
	n := len(r)
	fn := float64(n)
	var maxDelta float64

	for j, col := range cols {
		old := w[j]
		if old != 0 {
			for i := 0; i < n; i++ {
				r[i] += old * col[i]
			}
		}

		var rho float64
		if wts == nil {
			for i := 0; i < n; i++ {
				rho += col[i] * r[i]
			}
		} else {
			for i := 0; i < n; i++ {
				rho += wts[i] * col[i] * r[i]
			}
		}
		rho /= fn

		denom := xtx[j]/fn + e.Lambda*(1-e.Alpha)
		next := softThreshold(rho, e.Lambda*e.Alpha) / denom
		if next < e.LowerBound {
			next = e.LowerBound
		}

		if next != 0 {
			for i := 0; i < n; i++ {
				r[i] -= next * col[i]
			}
		}
		w[j] = next

		if d := math.Abs(next - old); d > maxDelta {
			maxDelta = d
		}
	}
	return maxDelta
}

// softThreshold applies the soft-thresholding operator.
func softThreshold(z, lambda float64) float64 {
	switch {
	case z > lambda:
		return z - lambda
	case z < -lambda:
		return z + lambda
	default:
		return 0
	}
}
