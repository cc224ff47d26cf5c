// Package npdr scores tabular attributes by their statistical association
// with an outcome through nearest-neighbor projected distance regression:
// a nonparametric alternative to filter-based feature selection that keeps
// its power when interactions and nonlinear structure matter.
//
// For every pair of neighboring samples the engine computes a projected
// difference per attribute and for the outcome, then regresses the outcome
// differences on each attribute's differences. Attributes relevant to the
// outcome separate dissimilar-outcome neighbors more than irrelevant ones,
// so their slopes come out positive with small one-sided p-values.
//
// # Features
//
//   - Distance metrics: Manhattan, Euclidean, allele-sharing, categorical
//   - Neighborhood policies: fixed-k, SURF, MultiSURF (adaptive radius)
//   - Redundant or canonical unique neighbor pairs
//   - Regression families: linear, binomial, Cox proportional hazards
//   - Bonferroni and Benjamini-Hochberg FDR correction
//   - Elastic-net penalized joint variant for sparse selection
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "gonum.org/v1/gonum/mat"
//
//	    "github.com/YuminosukeSato/npdr"
//	    "github.com/YuminosukeSato/npdr/dataset"
//	)
//
//	func main() {
//	    X := mat.NewDense(100, 10, nil) // fill with attribute values
//	    ds, err := dataset.New(X, nil, nil)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    y, err := dataset.NewOutcome(make([]float64, 100), dataset.Continuous)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    scorer := npdr.NewScorer(npdr.DefaultConfig())
//	    if err := scorer.Fit(ds, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    selected, _ := scorer.Selection(0.05)
//	    fmt.Println(selected)
//	}
//
// Each invocation is a synchronous single pass over in-memory data; the
// per-attribute regressions fan out across CPU cores internally. All outputs
// are deterministic given identical inputs and configuration.
package npdr
