// Package log defines standard attribute keys for scoring runs.
//
// Using these keys consistently keeps run logs filterable: every event about
// data shape uses the data.* keys, every event about neighborhood
// construction uses the neighbors.* keys, and so on.

package log

// Run context.
const (
	// ComponentKey identifies the emitting library.
	ComponentKey = "component"

	// ScorerKey identifies the scorer type. Examples: "Scorer", "PenalizedScorer".
	ScorerKey = "scorer.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "score", "adjust", "select"
	OperationKey = "op"

	// WarningKey carries a structured warning object.
	WarningKey = "warning"
)

// Data shape.
const (
	// SamplesKey is the number of samples (rows) in the attribute matrix.
	SamplesKey = "data.samples"

	// AttributesKey is the number of scored attributes (columns).
	AttributesKey = "data.attributes"

	// OutcomeKindKey is the declared outcome kind. Examples: "continuous", "binary".
	OutcomeKindKey = "data.outcome_kind"
)

// Neighborhood construction.
const (
	// MetricKey is the distance metric in effect.
	MetricKey = "neighbors.metric"

	// PolicyKey is the neighborhood sizing policy in effect.
	PolicyKey = "neighbors.policy"

	// PairsKey is the size of the neighbor relation used for scoring.
	PairsKey = "neighbors.pairs"

	// EffectiveNKey is the number of reference samples with at least one neighbor.
	EffectiveNKey = "neighbors.effective_n"
)

// Regression and solver progress.
const (
	// FamilyKey is the regression family in effect.
	FamilyKey = "regression.family"

	// IterationsKey is the iteration count reached by an iterative solver.
	IterationsKey = "solver.iterations"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)
