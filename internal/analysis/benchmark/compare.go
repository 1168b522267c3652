// Package benchmark computes ratio-based comparisons between a current
// metric value and reference values for the same operation.
package benchmark

import (
	"fmt"
	"math"

	"github.com/j-veylop/agentlens-tui/internal/models"
)

// Compare computes the ratio and direction between a current value and one
// reference (baseline) value. The ratio is built so a superior baseline
// always comes out > 1: for lower-is-better metrics it is current/baseline,
// for higher-is-better metrics baseline/current. A zero, negative, NaN or
// infinite input yields the neutral no-data result instead of NaN/Inf.
func Compare(current, baseline float64, higherIsBetter bool) models.Comparison {
	if !validValue(current) || !validValue(baseline) {
		return models.Comparison{}
	}

	var ratio float64
	if higherIsBetter {
		ratio = baseline / current
	} else {
		ratio = current / baseline
	}

	dir := direction(ratio > 1, higherIsBetter)
	return models.Comparison{
		Ratio:     ratio,
		Direction: dir,
		Reference: baseline,
		HasData:   true,
	}
}

func validValue(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// direction names the winner: faster/slower for latency-like metrics,
// better/worse for quality-like ones. Faster/better means the baseline
// strictly outperforms the current value.
func direction(baselineWins, higherIsBetter bool) models.BenchmarkDirection {
	if higherIsBetter {
		if baselineWins {
			return models.DirectionBetter
		}
		return models.DirectionWorse
	}
	if baselineWins {
		return models.DirectionFaster
	}
	return models.DirectionSlower
}

// References carries the optional reference values for one call. Nil means
// the reference has not resolved (or does not exist); the benchmark renders
// with whatever subset is present.
type References struct {
	FastestSameOp  *float64
	FastestSimilar *float64
	MedianForOp    *float64
}

// Build assembles a Benchmark from the current value and whichever
// references are available. The optimization tip fires only when a
// fastest-same-operation reference exists and its ratio exceeds the
// configured callout threshold.
func Build(current float64, refs References, higherIsBetter bool, calloutRatio float64) models.Benchmark {
	b := models.Benchmark{Current: current}

	if refs.FastestSameOp != nil {
		c := Compare(current, *refs.FastestSameOp, higherIsBetter)
		b.FastestSameOp = &c
		if c.HasData && c.Ratio > calloutRatio {
			b.ShowOptimizationTip = true
		}
	}
	if refs.FastestSimilar != nil {
		c := Compare(current, *refs.FastestSimilar, higherIsBetter)
		b.FastestSimilar = &c
	}
	if refs.MedianForOp != nil {
		c := Compare(current, *refs.MedianForOp, higherIsBetter)
		b.MedianForOperation = &c
	}
	return b
}

// BarWidth converts a value into a percentage width for proportional bars.
// The denominator must be the same one the ratio uses so numbers and visuals
// never disagree; the result is capped at 100.
func BarWidth(value, denominator float64) float64 {
	if !validValue(value) || !validValue(denominator) {
		return 0
	}
	w := value / denominator * 100
	if w > 100 {
		return 100
	}
	return w
}

// FormatRatio renders a comparison as "3.0x faster" style text, or "no data"
// for the neutral result.
func FormatRatio(c models.Comparison) string {
	if !c.HasData || c.Direction == models.DirectionNone {
		return "no data"
	}
	ratio := c.Ratio
	if ratio < 1 && ratio > 0 {
		ratio = 1 / ratio
	}
	return fmt.Sprintf("%.1fx %s", ratio, c.Direction)
}
