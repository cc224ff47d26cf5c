// Package neighbors builds the neighbor relation over a sample distance
// matrix: which (reference, neighbor) pairs are "close" under a sizing
// policy. Two policy families are supported, fixed-k selection and the
// adaptive dead-band radius used by the SURF and MultiSURF variants.
//
// The adaptive convention implemented here is the single documented one:
// a neighbor j of reference i qualifies when
//
//	d(i,j) < mean - sdFrac*sd
//
// where mean and sd are taken over row i excluding the self-distance
// (MultiSURF), or over all off-diagonal distances (SURF).
package neighbors

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/YuminosukeSato/npdr/distance"
	"github.com/YuminosukeSato/npdr/pkg/errors"
)

// PolicyKind enumerates the neighborhood sizing rules.
type PolicyKind int

const (
	// FixedK selects a constant number of nearest neighbors per sample.
	FixedK PolicyKind = iota
	// SURF uses one global dead-band threshold for every sample.
	SURF
	// MultiSURF derives a dead-band threshold per reference sample from the
	// mean and spread of that sample's distance row.
	MultiSURF
)

func (k PolicyKind) String() string {
	switch k {
	case FixedK:
		return "fixed-k"
	case SURF:
		return "surf"
	case MultiSURF:
		return "multisurf"
	default:
		return fmt.Sprintf("PolicyKind(%d)", int(k))
	}
}

// DefaultSDFrac is the dead-band density fraction used when none is given.
const DefaultSDFrac = 0.5

// Policy configures neighborhood construction.
type Policy struct {
	Kind PolicyKind

	// K is the neighborhood size for FixedK. K <= 0 derives the theoretical
	// size SurfK(n, SDFrac) so fixed-k and adaptive runs stay comparable.
	K int

	// SDFrac is the dead-band density fraction for the adaptive policies
	// (and for the derived K). Zero means DefaultSDFrac.
	SDFrac float64
}

// DefaultPolicy is MultiSURF with the default density fraction, the primary
// scoring path.
func DefaultPolicy() Policy {
	return Policy{Kind: MultiSURF, SDFrac: DefaultSDFrac}
}

// SurfK returns the expected neighborhood size of the adaptive dead-band rule
// for n samples: floor((n-1) * (1 - erf(sdFrac/sqrt(2))) / 2), never less
// than 1. This is the same formula the adaptive policies realize on average,
// which keeps fixed-k and adaptive results comparable.
func SurfK(n int, sdFrac float64) int {
	if n < 2 {
		return 0
	}
	k := int(math.Floor(float64(n-1) * (1 - math.Erf(sdFrac/math.Sqrt2)) / 2))
	if k < 1 {
		k = 1
	}
	return k
}

// Pair is one ordered (reference, neighbor) record.
type Pair struct {
	Ref      int
	Neighbor int
}

// Relation is the ordered neighbor relation produced by Build. Pairs are
// emitted in deterministic reference-major order. The relation is asymmetric
// by construction: (i,j) present does not imply (j,i) present.
type Relation struct {
	Pairs  []Pair
	policy Policy
	counts []int
}

// Len returns the number of ordered pairs.
func (r *Relation) Len() int { return len(r.Pairs) }

// Policy returns the policy the relation was built under.
func (r *Relation) Policy() Policy { return r.policy }

// NeighborCount returns the number of neighbors recorded for reference i.
func (r *Relation) NeighborCount(i int) int { return r.counts[i] }

// EffectiveN returns the number of reference samples that contributed at
// least one pair. Samples with empty neighborhoods are excluded from pair
// construction and must be accounted for by the caller via this count.
func (r *Relation) EffectiveN() int {
	n := 0
	for _, c := range r.counts {
		if c > 0 {
			n++
		}
	}
	return n
}

// Build constructs the neighbor relation for d under policy. Self-pairs are
// never emitted. A reference sample with no qualifying neighbor contributes
// zero pairs and raises an EmptyNeighborhoodWarning through the pkg/errors
// warning handler.
func Build(d *distance.Matrix, policy Policy) (*Relation, error) {
	n := d.N()
	if n < 2 {
		return nil, errors.NewValidationError("distance", "need at least 2 samples", n)
	}
	if policy.SDFrac == 0 {
		policy.SDFrac = DefaultSDFrac
	}
	if policy.SDFrac < 0 {
		return nil, errors.NewValidationError("sdFrac", "must be positive", policy.SDFrac)
	}

	switch policy.Kind {
	case FixedK:
		return buildFixedK(d, policy)
	case SURF, MultiSURF:
		return buildAdaptive(d, policy)
	default:
		return nil, errors.NewValidationError("policy", "unknown neighborhood policy", int(policy.Kind))
	}
}

func buildFixedK(d *distance.Matrix, policy Policy) (*Relation, error) {
	n := d.N()
	k := policy.K
	if k <= 0 {
		k = SurfK(n, policy.SDFrac)
	}
	if k > n-1 {
		k = n - 1
	}

	r := &Relation{policy: policy, counts: make([]int, n)}
	r.Pairs = make([]Pair, 0, n*k)

	idx := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		idx = idx[:0]
		for j := 0; j < n; j++ {
			if j != i {
				idx = append(idx, j)
			}
		}
		// Ties broken by index so the relation is reproducible.
		sort.SliceStable(idx, func(a, b int) bool {
			da, db := d.At(i, idx[a]), d.At(i, idx[b])
			if da != db {
				return da < db
			}
			return idx[a] < idx[b]
		})
		for _, j := range idx[:k] {
			r.Pairs = append(r.Pairs, Pair{Ref: i, Neighbor: j})
		}
		r.counts[i] = k
	}
	return r, nil
}

func buildAdaptive(d *distance.Matrix, policy Policy) (*Relation, error) {
	n := d.N()
	r := &Relation{policy: policy, counts: make([]int, n)}

	var global float64
	if policy.Kind == SURF {
		all := make([]float64, 0, n*(n-1))
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if j != i {
					all = append(all, d.At(i, j))
				}
			}
		}
		mean, sd, err := meanSD(all)
		if err != nil {
			return nil, errors.Wrap(err, "npdr: surf global threshold")
		}
		global = mean - policy.SDFrac*sd
	}

	row := make([]float64, 0, n-1)
	for i := 0; i < n; i++ {
		threshold := global
		if policy.Kind == MultiSURF {
			row = row[:0]
			for j := 0; j < n; j++ {
				if j != i {
					row = append(row, d.At(i, j))
				}
			}
			mean, sd, err := meanSD(row)
			if err != nil {
				return nil, errors.Wrapf(err, "npdr: multisurf threshold for sample %d", i)
			}
			threshold = mean - policy.SDFrac*sd
		}

		found := 0
		for j := 0; j < n; j++ {
			if j == i || d.At(i, j) >= threshold {
				continue
			}
			r.Pairs = append(r.Pairs, Pair{Ref: i, Neighbor: j})
			found++
		}
		r.counts[i] = found
		if found == 0 {
			errors.Warn(errors.NewEmptyNeighborhoodWarning(i, policy.Kind.String(), threshold))
		}
	}
	return r, nil
}

func meanSD(xs []float64) (float64, float64, error) {
	mean, err := stats.Mean(xs)
	if err != nil {
		return 0, 0, err
	}
	sd, err := stats.StandardDeviationSample(xs)
	if err != nil {
		return 0, 0, err
	}
	return mean, sd, nil
}
