package npdr

import (
	"fmt"

	"github.com/YuminosukeSato/npdr/distance"
	"github.com/YuminosukeSato/npdr/neighbors"
	"github.com/YuminosukeSato/npdr/pkg/errors"
)

// PairSampling selects which neighbor pair set feeds the regressions.
type PairSampling int

const (
	// Redundant keeps the ordered relation as built: (i,j) and (j,i) may
	// both contribute.
	Redundant PairSampling = iota
	// Unique collapses the relation to canonical unordered pairs first.
	Unique
)

func (s PairSampling) String() string {
	switch s {
	case Redundant:
		return "redundant"
	case Unique:
		return "unique"
	default:
		return fmt.Sprintf("PairSampling(%d)", int(s))
	}
}

// Family selects the per-attribute regression backend.
type Family int

const (
	// Linear is ordinary least squares, for continuous outcomes.
	Linear Family = iota
	// Binomial is logistic regression, for binary outcomes.
	Binomial
	// CoxPH is proportional hazards regression, for survival outcomes.
	CoxPH
)

func (f Family) String() string {
	switch f {
	case Linear:
		return "linear"
	case Binomial:
		return "binomial"
	case CoxPH:
		return "coxph"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Config holds the recognized scoring options.
type Config struct {
	Metric       distance.Metric
	Policy       neighbors.Policy
	PairSampling PairSampling
	Family       Family
	Correction   Correction

	// Workers bounds the per-attribute regression fan-out. Zero or negative
	// means one worker per CPU core.
	Workers int
}

// DefaultConfig is the primary scoring path: Manhattan distances, MultiSURF
// neighborhoods with the default density fraction, unique pairs, a linear
// family and FDR correction.
func DefaultConfig() Config {
	return Config{
		Metric:       distance.Manhattan,
		Policy:       neighbors.DefaultPolicy(),
		PairSampling: Unique,
		Family:       Linear,
		Correction:   FDR,
	}
}

func (c Config) validate() error {
	if c.Policy.Kind == neighbors.FixedK && c.Policy.K < 0 {
		return errors.NewValidationError("k", "must not be negative", c.Policy.K)
	}
	if c.Policy.SDFrac < 0 {
		return errors.NewValidationError("sdFrac", "must be positive", c.Policy.SDFrac)
	}
	return nil
}
