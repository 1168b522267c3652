// Package cachetype buckets repeated-prompt call groups into cache strategies.
package cachetype

import (
	"github.com/j-veylop/agentlens-tui/internal/config"
	"github.com/j-veylop/agentlens-tui/internal/models"
)

// Group is the classifier input: one set of calls sharing a prompt
// fingerprint within the active window. Prompt-level measurements
// (identical share, prefix share, response similarity) are computed upstream
// by the telemetry backend; this package only applies the decision ladder.
type Group struct {
	GroupID   string
	AgentName string
	Operation string

	RepeatCount int

	// IdenticalPromptShare is the fraction of calls in the group whose full
	// prompt hash is byte-identical to the group fingerprint (1.0 = all).
	IdenticalPromptShare float64

	// SharedPrefixShare is the fraction of total prompt tokens covered by a
	// prefix identical across the whole group.
	SharedPrefixShare float64

	UnitCost     float64
	AvgLatencyMs float64

	// ResponseSimilarity is an externally supplied score in [0, 100].
	ResponseSimilarity float64
}

// Classify applies the cache strategy decision ladder, first match wins:
// exact, stable, high_value, then semantic. Groups with fewer than two
// repeats are never classified and return ok=false, as do groups matching no
// rung. Classification is pure: the same input always yields the same
// pattern.
func Classify(g Group, th config.Thresholds) (models.CachePattern, bool) {
	if g.RepeatCount < 2 {
		return models.CachePattern{}, false
	}

	var ct models.CacheType
	switch {
	case g.IdenticalPromptShare >= 1.0:
		ct = models.CacheExact
	case g.SharedPrefixShare >= th.StablePrefixShare:
		ct = models.CacheStable
	case g.UnitCost > th.HighValueCost || g.AvgLatencyMs > th.HighValueLatencyMs:
		ct = models.CacheHighValue
	case g.ResponseSimilarity > th.SemanticSimilarity:
		ct = models.CacheSemantic
	default:
		return models.CachePattern{}, false
	}

	repeats := float64(g.RepeatCount - 1)
	return models.CachePattern{
		GroupID:            g.GroupID,
		AgentName:          g.AgentName,
		Operation:          g.Operation,
		CacheType:          ct,
		RepeatCount:        g.RepeatCount,
		WastedCost:         repeats * g.UnitCost,
		SavableTimeMs:      repeats * g.AvgLatencyMs,
		ResponseSimilarity: g.ResponseSimilarity,
	}, true
}

// ClassifyAll classifies every eligible group, dropping single-call groups
// and groups that match no strategy.
func ClassifyAll(groups []Group, th config.Thresholds) []models.CachePattern {
	patterns := make([]models.CachePattern, 0, len(groups))
	for _, g := range groups {
		if p, ok := Classify(g, th); ok {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
