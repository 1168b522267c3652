// Package routing scores (complexity, quality, model tier) combinations into
// upgrade/downgrade/keep recommendations and alternative-model cost tables.
package routing

import (
	"github.com/j-veylop/agentlens-tui/internal/config"
	"github.com/j-veylop/agentlens-tui/internal/models"
)

// Input is one (agent, operation, model) combination to score.
type Input struct {
	// Complexity is the externally derived task complexity in [0, 1].
	Complexity float64
	// AvgQuality is the observed average quality in [0, 10].
	AvgQuality float64
	// CheapestTier is true when the current model is already the cheapest
	// viable tier for the operation.
	CheapestTier bool
}

// Score applies the routing rules in order: low complexity off the cheapest
// tier downgrades, high complexity with poor quality upgrades, everything
// else keeps the current model.
func Score(in Input, th config.Thresholds) models.Opportunity {
	if in.Complexity < th.ComplexityLow && !in.CheapestTier {
		return models.OpportunityDowngrade
	}
	if in.Complexity > th.ComplexityHigh && in.AvgQuality < th.QualityFloor {
		return models.OpportunityUpgrade
	}
	return models.OpportunityKeep
}

// SafePct aggregates injected per-call post-downgrade quality estimates into
// the share of calls whose quality would stay at or above the floor. The
// estimates themselves come from the telemetry backend, never from here.
func SafePct(estimates []float64, th config.Thresholds) float64 {
	if len(estimates) == 0 {
		return 0
	}
	safe := 0
	for _, q := range estimates {
		if q >= th.QualityFloor {
			safe++
		}
	}
	return float64(safe) / float64(len(estimates)) * 100
}
