package npdr

import (
	"math"
	"time"

	"github.com/YuminosukeSato/npdr/core/model"
	"github.com/YuminosukeSato/npdr/core/parallel"
	"github.com/YuminosukeSato/npdr/dataset"
	"github.com/YuminosukeSato/npdr/distance"
	"github.com/YuminosukeSato/npdr/neighbors"
	"github.com/YuminosukeSato/npdr/pkg/errors"
	"github.com/YuminosukeSato/npdr/pkg/log"
	"github.com/YuminosukeSato/npdr/regression"
)

// Scorer runs the nearest-neighbor projected distance regression pipeline:
// distance matrix, neighbor relation, optional pair deduplication, one
// independent regression per attribute, and a multiple-testing correction
// over the raw p-values.
//
// A Scorer is not safe for concurrent Fit calls; results are read-only after
// Fit returns.
type Scorer struct {
	model.BaseEstimator

	cfg Config

	results    Results
	dist       *distance.Matrix
	nPairs     int
	effectiveN int
}

// NewScorer creates a Scorer with cfg. Zero-value policy fields fall back to
// the package defaults at Fit time.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Fit scores every attribute of ds against outcome. Input errors abort
// before any computation; per-attribute degeneracies are isolated in the
// result table instead.
func (s *Scorer) Fit(ds *dataset.Dataset, outcome *dataset.Outcome) error {
	return s.fit(ds, outcome, nil)
}

// FitWithDistance is Fit reusing a previously computed distance matrix, for
// repeated neighborhood-policy experiments over the same attribute matrix.
func (s *Scorer) FitWithDistance(ds *dataset.Dataset, outcome *dataset.Outcome, d *distance.Matrix) error {
	if d != nil && d.N() != ds.NSamples() {
		return errors.NewDimensionError("Scorer.FitWithDistance", ds.NSamples(), d.N(), 0)
	}
	return s.fit(ds, outcome, d)
}

func (s *Scorer) fit(ds *dataset.Dataset, outcome *dataset.Outcome, d *distance.Matrix) error {
	start := time.Now()
	s.Reset()

	if err := s.cfg.validate(); err != nil {
		return err
	}
	if ds.NSamples() != outcome.NSamples() {
		return errors.NewDimensionError("Scorer.Fit", ds.NSamples(), outcome.NSamples(), 0)
	}
	if err := checkFamily(s.cfg.Family, outcome.Kind); err != nil {
		return err
	}

	if d == nil {
		var err error
		d, err = distance.Compute(ds, s.cfg.Metric)
		if err != nil {
			return err
		}
	}

	rel, err := neighbors.Build(d, s.cfg.Policy)
	if err != nil {
		return err
	}
	pairs := rel.Pairs
	if s.cfg.PairSampling == Unique {
		pairs = neighbors.Dedupe(rel).Pairs
	}
	if len(pairs) == 0 {
		return errors.Wrap(errors.ErrNoPairs, "npdr: every neighborhood is empty under the current policy")
	}

	outDiff := projectDiffs(pairs, outcome.Values, outcome.Diff())

	p := ds.NAttributes()
	results := make(Results, p)
	_ = parallel.MapError(p, s.cfg.Workers, func(j int) error {
		results[j] = s.scoreAttribute(ds, j, pairs, outDiff)
		return nil
	})

	raw := make([]float64, p)
	for j := range results {
		raw[j] = results[j].P
	}
	adj := Adjust(raw, s.cfg.Correction)
	for j := range results {
		results[j].PAdj = adj[j]
	}

	s.results = results
	s.dist = d
	s.nPairs = len(pairs)
	s.effectiveN = rel.EffectiveN()
	s.SetFitted()

	lg := log.With("Scorer")
	lg.Info().
		Str(log.OperationKey, "fit").
		Int(log.SamplesKey, ds.NSamples()).
		Int(log.AttributesKey, p).
		Str(log.OutcomeKindKey, outcome.Kind.String()).
		Str(log.MetricKey, s.cfg.Metric.String()).
		Str(log.PolicyKey, s.cfg.Policy.Kind.String()).
		Str(log.FamilyKey, s.cfg.Family.String()).
		Int(log.PairsKey, s.nPairs).
		Int(log.EffectiveNKey, s.effectiveN).
		Int64(log.DurationMsKey, time.Since(start).Milliseconds()).
		Msg("scoring run complete")
	return nil
}

// scoreAttribute fits one independent regression of the outcome projected
// differences on attribute j's projected differences.
func (s *Scorer) scoreAttribute(ds *dataset.Dataset, j int, pairs []neighbors.Pair, outDiff []float64) AttrResult {
	name := ds.Names[j]
	col := ds.Column(j)
	attrDiff := projectDiffs(pairs, col, dataset.Diff(ds.Kinds[j]))

	var fit regression.Fit
	var err error
	switch s.cfg.Family {
	case Binomial:
		fit, err = regression.Logistic(attrDiff, outDiff)
	case CoxPH:
		fit, err = regression.CoxPH(attrDiff, outDiff)
	default:
		fit, err = regression.OLS(attrDiff, outDiff)
	}
	if err != nil {
		if errors.Is(err, errors.ErrDegenerate) {
			err = errors.NewDegenerateAttributeError(name, err.Error(), len(pairs))
		}
		return AttrResult{
			Name: name,
			Coef: math.NaN(),
			Stat: math.NaN(),
			P:    math.NaN(),
			PAdj: math.NaN(),
			Err:  err,
		}
	}

	return AttrResult{
		Name: name,
		Coef: fit.Coef,
		Stat: fit.Stat,
		P:    fit.PValue(regression.Greater),
	}
}

// projectDiffs builds the projected difference vector of vals over pairs.
func projectDiffs(pairs []neighbors.Pair, vals []float64, diff dataset.DiffFunc) []float64 {
	out := make([]float64, len(pairs))
	for i, p := range pairs {
		out[i] = diff(vals[p.Ref], vals[p.Neighbor])
	}
	return out
}

func checkFamily(f Family, kind dataset.OutcomeKind) error {
	ok := false
	switch f {
	case Linear:
		ok = kind == dataset.Continuous
	case Binomial:
		ok = kind == dataset.Binary
	case CoxPH:
		ok = kind == dataset.Survival
	}
	if !ok {
		return errors.NewValidationError("family",
			"regression family does not match the declared outcome kind", kind.String())
	}
	return nil
}

// Results returns a copy of the per-attribute result table in input order.
func (s *Scorer) Results() (Results, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("Scorer", "Results")
	}
	out := make(Results, len(s.results))
	copy(out, s.results)
	return out, nil
}

// Scores returns attribute name to standardized coefficient, the join key
// interface for external evaluators. Uncomputed attributes are omitted.
func (s *Scorer) Scores() (map[string]float64, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("Scorer", "Scores")
	}
	out := make(map[string]float64, len(s.results))
	for _, r := range s.results {
		if r.OK() {
			out[r.Name] = r.Stat
		}
	}
	return out, nil
}

// Selection returns the names of attributes whose adjusted p-value is below
// alpha, in input order.
func (s *Scorer) Selection(alpha float64) ([]string, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("Scorer", "Selection")
	}
	var names []string
	for _, r := range s.results {
		if r.OK() && r.PAdj < alpha {
			names = append(names, r.Name)
		}
	}
	return names, nil
}

// EffectiveN returns the number of reference samples that contributed at
// least one neighbor pair in the last run.
func (s *Scorer) EffectiveN() (int, error) {
	if !s.IsFitted() {
		return 0, errors.NewNotFittedError("Scorer", "EffectiveN")
	}
	return s.effectiveN, nil
}

// NPairs returns the size of the pair set used in the last run.
func (s *Scorer) NPairs() (int, error) {
	if !s.IsFitted() {
		return 0, errors.NewNotFittedError("Scorer", "NPairs")
	}
	return s.nPairs, nil
}

// Distance returns the distance matrix computed (or reused) by the last run,
// for reuse with FitWithDistance.
func (s *Scorer) Distance() (*distance.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("Scorer", "Distance")
	}
	return s.dist, nil
}
