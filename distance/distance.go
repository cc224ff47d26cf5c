// Package distance computes pairwise sample distances over an attribute
// matrix under an enumerated metric. The result is a symmetric matrix with an
// unused zero diagonal; it is produced once per scoring run and treated as
// read-only by every downstream consumer.
package distance

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/npdr/core/parallel"
	"github.com/YuminosukeSato/npdr/dataset"
	"github.com/YuminosukeSato/npdr/pkg/errors"
)

// Metric enumerates the supported sample distance functions.
type Metric int

const (
	// Manhattan sums the per-attribute projected differences, each computed
	// under the column's declared type rule.
	Manhattan Metric = iota
	// Euclidean is the square root of the sum of squared per-attribute
	// projected differences.
	Euclidean
	// AlleleSharing treats every column as a 0/1/2 genotype and sums the
	// shared-allele distances |a-b|/2.
	AlleleSharing
	// Categorical treats every column as a category code and counts
	// mismatches.
	Categorical
)

func (m Metric) String() string {
	switch m {
	case Manhattan:
		return "manhattan"
	case Euclidean:
		return "euclidean"
	case AlleleSharing:
		return "allele-sharing"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// Matrix is a symmetric n-by-n sample distance matrix. Entries are
// nonnegative; the diagonal is not computed and reads as zero.
type Matrix struct {
	n    int
	data []float64
}

// N returns the number of samples.
func (m *Matrix) N() int { return m.n }

// At returns the distance between samples i and j.
func (m *Matrix) At(i, j int) float64 { return m.data[i*m.n+j] }

// Row copies row i into a fresh slice. The self-distance at index i is
// included (zero); adaptive neighborhood policies exclude it themselves.
func (m *Matrix) Row(i int) []float64 {
	row := make([]float64, m.n)
	copy(row, m.data[i*m.n:(i+1)*m.n])
	return row
}

// Rows below this size are not worth fanning out.
const parallelThreshold = 64

// Compute builds the distance matrix for ds under metric.
//
// The per-attribute contribution is the projected difference for the
// column's effective type: the declared kind for Manhattan and Euclidean, or
// the kind forced by the AlleleSharing and Categorical metrics. AlleleSharing
// reports an error when a column contains values outside the 0/1/2 genotype
// codes.
func Compute(ds *dataset.Dataset, metric Metric) (*Matrix, error) {
	n := ds.NSamples()
	p := ds.NAttributes()
	if n < 2 {
		return nil, errors.NewValidationError("X", "need at least 2 samples", n)
	}

	diffs, err := columnDiffs(ds, metric)
	if err != nil {
		return nil, err
	}

	m := &Matrix{n: n, data: make([]float64, n*n)}
	X := ds.X

	// Each goroutine writes a disjoint block of upper-triangle rows; the
	// mirror write below the diagonal is also disjoint per (i, j).
	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := i + 1; j < n; j++ {
				var d float64
				if metric == Euclidean {
					var sq float64
					for a := 0; a < p; a++ {
						pd := diffs[a](X.At(i, a), X.At(j, a))
						sq += pd * pd
					}
					d = math.Sqrt(sq)
				} else {
					for a := 0; a < p; a++ {
						d += diffs[a](X.At(i, a), X.At(j, a))
					}
				}
				m.data[i*n+j] = d
				m.data[j*n+i] = d
			}
		}
	})

	return m, nil
}

// columnDiffs resolves one projected-difference rule per column, up front.
func columnDiffs(ds *dataset.Dataset, metric Metric) ([]dataset.DiffFunc, error) {
	p := ds.NAttributes()
	diffs := make([]dataset.DiffFunc, p)

	switch metric {
	case Manhattan, Euclidean:
		for j := 0; j < p; j++ {
			diffs[j] = dataset.Diff(ds.Kinds[j])
		}
	case Categorical:
		for j := 0; j < p; j++ {
			diffs[j] = dataset.Diff(dataset.Categorical)
		}
	case AlleleSharing:
		n := ds.NSamples()
		for j := 0; j < p; j++ {
			for i := 0; i < n; i++ {
				v := ds.X.At(i, j)
				if v != 0 && v != 1 && v != 2 {
					return nil, errors.NewValidationError(ds.Names[j],
						"allele-sharing metric requires genotype codes 0/1/2", v)
				}
			}
			diffs[j] = dataset.Diff(dataset.Allele)
		}
	default:
		return nil, errors.NewValidationError("metric", "unknown metric", int(metric))
	}

	return diffs, nil
}
