// Package dataset defines the in-memory inputs to an attribute scoring run:
// the attribute matrix with per-column type tags, the aligned outcome vector,
// and the projected-difference rules attached to each type tag.
//
// Attribute types are resolved to a concrete DiffFunc once, at configuration
// time; nothing downstream dispatches on a type string per pair.
package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/npdr/pkg/errors"
)

// AttrKind tags one attribute column with its value semantics.
type AttrKind int

const (
	// Numeric marks a continuous or ordinal column.
	Numeric AttrKind = iota
	// Categorical marks a column of unordered category codes.
	Categorical
	// Allele marks a genotype column coded 0/1/2 (minor allele count).
	Allele
)

func (k AttrKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Allele:
		return "allele"
	default:
		return fmt.Sprintf("AttrKind(%d)", int(k))
	}
}

// OutcomeKind tags the outcome vector with its value semantics.
type OutcomeKind int

const (
	// Continuous marks a real-valued outcome (linear family).
	Continuous OutcomeKind = iota
	// Binary marks a 0/1 class outcome (binomial family).
	Binary
	// Survival marks a nonnegative time-to-event outcome.
	Survival
)

func (k OutcomeKind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Binary:
		return "binary"
	case Survival:
		return "survival"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Dataset is an immutable samples-by-attributes matrix with named, typed
// columns. The engine never mutates X after construction.
type Dataset struct {
	X     *mat.Dense
	Names []string
	Kinds []AttrKind
}

// New validates and wraps an attribute matrix.
//
// names may be nil, in which case columns are named a1..ap. kinds may be nil,
// in which case every column is Numeric. Columns tagged Allele must contain
// only the genotype codes 0, 1 and 2.
func New(X *mat.Dense, names []string, kinds []AttrKind) (*Dataset, error) {
	if X == nil {
		return nil, errors.NewValueError("dataset.New", "attribute matrix is nil")
	}
	n, p := X.Dims()
	if n < 2 {
		return nil, errors.NewValidationError("X", "need at least 2 samples", n)
	}
	if p == 0 {
		return nil, errors.NewValueError("dataset.New", "attribute matrix has no columns")
	}

	if names == nil {
		names = make([]string, p)
		for j := range names {
			names[j] = fmt.Sprintf("a%d", j+1)
		}
	} else if len(names) != p {
		return nil, errors.NewDimensionError("dataset.New", p, len(names), 1)
	}

	if kinds == nil {
		kinds = make([]AttrKind, p)
	} else if len(kinds) != p {
		return nil, errors.NewDimensionError("dataset.New", p, len(kinds), 1)
	}

	for j, k := range kinds {
		if k != Allele {
			continue
		}
		for i := 0; i < n; i++ {
			if !validGenotype(X.At(i, j)) {
				return nil, errors.NewValidationError(names[j],
					"allele column must contain genotype codes 0/1/2", X.At(i, j))
			}
		}
	}

	return &Dataset{X: X, Names: names, Kinds: kinds}, nil
}

// NSamples returns the number of rows.
func (ds *Dataset) NSamples() int {
	n, _ := ds.X.Dims()
	return n
}

// NAttributes returns the number of scored columns.
func (ds *Dataset) NAttributes() int {
	_, p := ds.X.Dims()
	return p
}

// Column returns a copy of column j.
func (ds *Dataset) Column(j int) []float64 {
	n := ds.NSamples()
	col := make([]float64, n)
	mat.Col(col, j, ds.X)
	return col
}

// Outcome is the per-sample response, aligned by row with a Dataset.
type Outcome struct {
	Values []float64
	Kind   OutcomeKind
}

// NewOutcome validates and wraps an outcome vector. Binary outcomes must be
// coded 0/1; Survival outcomes must be nonnegative.
func NewOutcome(values []float64, kind OutcomeKind) (*Outcome, error) {
	if len(values) == 0 {
		return nil, errors.NewValueError("dataset.NewOutcome", "outcome vector is empty")
	}
	switch kind {
	case Binary:
		for i, v := range values {
			if v != 0 && v != 1 {
				return nil, errors.NewValidationError("outcome",
					fmt.Sprintf("binary outcome must be 0/1 at index %d", i), v)
			}
		}
	case Survival:
		for i, v := range values {
			if v < 0 {
				return nil, errors.NewValidationError("outcome",
					fmt.Sprintf("survival time must be nonnegative at index %d", i), v)
			}
		}
	}
	return &Outcome{Values: values, Kind: kind}, nil
}

// NSamples returns the outcome length.
func (o *Outcome) NSamples() int { return len(o.Values) }

// DiffFunc is a projected-difference rule: a scalar summarizing how much two
// samples differ on one attribute (or on the outcome).
type DiffFunc func(a, b float64) float64

// Diff returns the projected-difference rule for an attribute kind.
//
//   - Numeric: |a-b|
//   - Categorical: 0 on match, 1 on mismatch (larger means more different, so
//     a positive regression slope keeps the usual relevance interpretation)
//   - Allele: |a-b|/2 over 0/1/2 genotype codes (shared-allele distance)
func Diff(kind AttrKind) DiffFunc {
	switch kind {
	case Categorical:
		return mismatchDiff
	case Allele:
		return alleleDiff
	default:
		return absDiff
	}
}

// Diff returns the projected-difference rule for the outcome, chosen once per
// run from its declared kind: numeric for Continuous and Survival, mismatch
// for Binary.
func (o *Outcome) Diff() DiffFunc {
	if o.Kind == Binary {
		return mismatchDiff
	}
	return absDiff
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}

func mismatchDiff(a, b float64) float64 {
	if a == b {
		return 0
	}
	return 1
}

func alleleDiff(a, b float64) float64 {
	return absDiff(a, b) / 2
}

func validGenotype(v float64) bool {
	return v == 0 || v == 1 || v == 2
}
