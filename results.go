package npdr

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// AttrResult is the scored record for one attribute.
//
// A nil Err means the attribute was computed (significant or not); a non-nil
// Err means it could not be computed and Coef/Stat/P/PAdj are NaN. The two
// states are never conflated.
type AttrResult struct {
	Name string
	Coef float64
	// Stat is the standardized coefficient (t or Wald z).
	Stat float64
	P    float64
	PAdj float64
	Err  error
}

// OK reports whether the attribute was successfully computed.
func (r AttrResult) OK() bool { return r.Err == nil }

// Results is the per-attribute result table, in attribute input order unless
// sorted.
type Results []AttrResult

// SortBySignificance orders computed attributes by adjusted p-value, ties by
// larger |Stat|, with uncomputed attributes last. The sort is stable.
func (rs Results) SortBySignificance() {
	sort.SliceStable(rs, func(a, b int) bool {
		ra, rb := rs[a], rs[b]
		if ra.OK() != rb.OK() {
			return ra.OK()
		}
		if !ra.OK() {
			return false
		}
		if ra.PAdj != rb.PAdj {
			return ra.PAdj < rb.PAdj
		}
		return math.Abs(ra.Stat) > math.Abs(rb.Stat)
	})
}

// String renders the table for terminal inspection.
func (rs Results) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %12s %12s %12s %12s\n", "attribute", "coef", "stat", "p", "p.adj")
	for _, r := range rs {
		if !r.OK() {
			fmt.Fprintf(&b, "%-20s %12s %12s %12s %12s  (%v)\n", r.Name, "NA", "NA", "NA", "NA", r.Err)
			continue
		}
		fmt.Fprintf(&b, "%-20s %12.4g %12.4g %12.4g %12.4g\n", r.Name, r.Coef, r.Stat, r.P, r.PAdj)
	}
	return b.String()
}
