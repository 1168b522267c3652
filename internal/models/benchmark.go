package models

// BenchmarkDirection says whether the reference value outperforms the current
// one. Faster/Better mean the reference wins; Slower/Worse mean the current
// value already wins.
type BenchmarkDirection string

const (
	DirectionFaster BenchmarkDirection = "faster"
	DirectionSlower BenchmarkDirection = "slower"
	DirectionBetter BenchmarkDirection = "better"
	DirectionWorse  BenchmarkDirection = "worse"
	// DirectionNone is the neutral no-data result.
	DirectionNone BenchmarkDirection = ""
)

// Comparison is the ratio-based result of comparing a current value against
// one reference value. Ratio is always >= 0; 0 means no data.
type Comparison struct {
	Ratio     float64
	Direction BenchmarkDirection
	Reference float64
	HasData   bool
}

// Benchmark holds the comparative references for one call. Any subset of the
// references may be absent; "current" is always the 100% baseline when the
// benchmark is rendered as proportional bars.
type Benchmark struct {
	Current             float64
	FastestSameOp       *Comparison
	FastestSimilar      *Comparison
	MedianForOperation  *Comparison
	ShowOptimizationTip bool
}
