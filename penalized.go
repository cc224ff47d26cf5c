package npdr

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/npdr/core/model"
	"github.com/YuminosukeSato/npdr/core/parallel"
	"github.com/YuminosukeSato/npdr/dataset"
	"github.com/YuminosukeSato/npdr/distance"
	"github.com/YuminosukeSato/npdr/neighbors"
	"github.com/YuminosukeSato/npdr/pkg/errors"
	"github.com/YuminosukeSato/npdr/pkg/log"
	"github.com/YuminosukeSato/npdr/regression"
)

// DefaultNonzeroTol is the coefficient magnitude below which a penalized
// coefficient counts as zero. Real solvers return small nonzero values under
// weak penalization, so selection never relies on exact-zero comparison.
const DefaultNonzeroTol = 1e-8

// PenalizedConfig holds the recognized options of the penalized variant.
type PenalizedConfig struct {
	Metric       distance.Metric
	Policy       neighbors.Policy
	PairSampling PairSampling

	// Alpha mixes lasso (1) and ridge (0).
	Alpha float64
	// Lambda is the penalty strength.
	Lambda float64
	// LowerBound clamps standardized coefficients from below; 0 yields a
	// nonnegativity constraint, math.Inf(-1) disables the bound.
	LowerBound float64
	Family     regression.Family

	// NonzeroTol overrides DefaultNonzeroTol when positive.
	NonzeroTol float64
}

// DefaultPenalizedConfig mirrors DefaultConfig with a lasso-leaning penalty.
func DefaultPenalizedConfig() PenalizedConfig {
	return PenalizedConfig{
		Metric:       distance.Manhattan,
		Policy:       neighbors.DefaultPolicy(),
		PairSampling: Unique,
		Alpha:        1,
		Lambda:       0.01,
		LowerBound:   math.Inf(-1),
		Family:       regression.Gaussian,
	}
}

// AttrCoef is one attribute's fitted penalized coefficient.
type AttrCoef struct {
	Name string
	Coef float64
}

// PenalizedScorer is the joint alternative to the per-attribute Scorer: it
// fits one elastic-net regression over all attribute projected-difference
// columns at once and uses the surviving nonzero coefficients as the
// selection signal.
type PenalizedScorer struct {
	model.BaseEstimator

	cfg PenalizedConfig

	coefs      []AttrCoef
	intercept  float64
	nPairs     int
	effectiveN int
}

// NewPenalizedScorer creates a PenalizedScorer with cfg.
func NewPenalizedScorer(cfg PenalizedConfig) *PenalizedScorer {
	return &PenalizedScorer{cfg: cfg}
}

// Fit builds the full projected-difference design matrix over the neighbor
// pair set and fits one penalized regression against the outcome projected
// differences. A solver that fails to converge surfaces a ConvergenceError
// as a run-level failure.
func (p *PenalizedScorer) Fit(ds *dataset.Dataset, outcome *dataset.Outcome) error {
	start := time.Now()
	p.Reset()

	if ds.NSamples() != outcome.NSamples() {
		return errors.NewDimensionError("PenalizedScorer.Fit", ds.NSamples(), outcome.NSamples(), 0)
	}
	if err := checkPenalizedFamily(p.cfg.Family, outcome.Kind); err != nil {
		return err
	}

	d, err := distance.Compute(ds, p.cfg.Metric)
	if err != nil {
		return err
	}
	rel, err := neighbors.Build(d, p.cfg.Policy)
	if err != nil {
		return err
	}
	pairs := rel.Pairs
	if p.cfg.PairSampling == Unique {
		pairs = neighbors.Dedupe(rel).Pairs
	}
	if len(pairs) == 0 {
		return errors.Wrap(errors.ErrNoPairs, "npdr: every neighborhood is empty under the current policy")
	}

	outDiff := projectDiffs(pairs, outcome.Values, outcome.Diff())

	nAttr := ds.NAttributes()
	design := mat.NewDense(len(pairs), nAttr, nil)
	parallel.ParallelizeWithThreshold(nAttr, 8, func(startCol, endCol int) {
		for j := startCol; j < endCol; j++ {
			col := ds.Column(j)
			diff := dataset.Diff(ds.Kinds[j])
			for i, pr := range pairs {
				design.Set(i, j, diff(col[pr.Ref], col[pr.Neighbor]))
			}
		}
	})

	en := regression.NewElasticNet(p.cfg.Alpha, p.cfg.Lambda)
	en.Family = p.cfg.Family
	en.LowerBound = p.cfg.LowerBound
	if err := en.Fit(design, outDiff); err != nil {
		return err
	}

	p.coefs = make([]AttrCoef, nAttr)
	for j := 0; j < nAttr; j++ {
		p.coefs[j] = AttrCoef{Name: ds.Names[j], Coef: en.Coefs[j]}
	}
	p.intercept = en.Intercept
	p.nPairs = len(pairs)
	p.effectiveN = rel.EffectiveN()
	p.SetFitted()

	lg := log.With("PenalizedScorer")
	lg.Info().
		Str(log.OperationKey, "fit").
		Int(log.SamplesKey, ds.NSamples()).
		Int(log.AttributesKey, nAttr).
		Str(log.FamilyKey, p.cfg.Family.String()).
		Int(log.PairsKey, p.nPairs).
		Int(log.EffectiveNKey, p.effectiveN).
		Int(log.IterationsKey, en.Iterations).
		Int64(log.DurationMsKey, time.Since(start).Milliseconds()).
		Msg("penalized scoring run complete")
	return nil
}

// Coefficients returns one (name, coefficient) record per attribute, in
// input order.
func (p *PenalizedScorer) Coefficients() ([]AttrCoef, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PenalizedScorer", "Coefficients")
	}
	out := make([]AttrCoef, len(p.coefs))
	copy(out, p.coefs)
	return out, nil
}

// Selection returns the names of attributes whose coefficient magnitude
// exceeds the nonzero tolerance, in input order.
func (p *PenalizedScorer) Selection() ([]string, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PenalizedScorer", "Selection")
	}
	tol := p.cfg.NonzeroTol
	if tol <= 0 {
		tol = DefaultNonzeroTol
	}
	var names []string
	for _, c := range p.coefs {
		if math.Abs(c.Coef) > tol {
			names = append(names, c.Name)
		}
	}
	return names, nil
}

// EffectiveN returns the number of reference samples that contributed at
// least one neighbor pair in the last run.
func (p *PenalizedScorer) EffectiveN() (int, error) {
	if !p.IsFitted() {
		return 0, errors.NewNotFittedError("PenalizedScorer", "EffectiveN")
	}
	return p.effectiveN, nil
}

func checkPenalizedFamily(f regression.Family, kind dataset.OutcomeKind) error {
	ok := false
	switch f {
	case regression.Gaussian:
		ok = kind == dataset.Continuous || kind == dataset.Survival
	case regression.Binomial:
		ok = kind == dataset.Binary
	}
	if !ok {
		return errors.NewValidationError("penaltyFamily",
			"penalized family does not match the declared outcome kind", kind.String())
	}
	return nil
}
