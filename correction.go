package npdr

import (
	"fmt"
	"math"
	"sort"
)

// Correction enumerates the multiple-testing adjustments.
type Correction int

const (
	// FDR is the Benjamini-Hochberg step-up false discovery rate procedure.
	FDR Correction = iota
	// Bonferroni multiplies each p-value by the number of tests, capped at 1.
	Bonferroni
)

func (c Correction) String() string {
	switch c {
	case FDR:
		return "fdr"
	case Bonferroni:
		return "bonferroni"
	default:
		return fmt.Sprintf("Correction(%d)", int(c))
	}
}

// Adjust applies the chosen correction across raw p-values and returns the
// adjusted vector in the same order: the adjusted value at index i belongs to
// the same attribute as the raw value at index i.
//
// NaN entries mark attributes that could not be computed; they are excluded
// from the test count and stay NaN in the output.
func Adjust(p []float64, method Correction) []float64 {
	out := make([]float64, len(p))
	valid := make([]int, 0, len(p))
	for i, v := range p {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		valid = append(valid, i)
	}
	m := len(valid)
	if m == 0 {
		return out
	}

	switch method {
	case Bonferroni:
		for _, i := range valid {
			out[i] = math.Min(1, p[i]*float64(m))
		}
	default: // FDR
		sort.SliceStable(valid, func(a, b int) bool { return p[valid[a]] < p[valid[b]] })
		running := 1.0
		for rank := m; rank >= 1; rank-- {
			i := valid[rank-1]
			adj := p[i] * float64(m) / float64(rank)
			if adj < running {
				running = adj
			}
			out[i] = running
		}
	}
	return out
}
