// Package config contains everything related to configuration
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/j-veylop/agentlens-tui/internal/analysis/severity"
)

// Thresholds holds every tunable numeric bound used by the analysis engine.
// The compiled-in defaults match the reference deployment; any subset can be
// overridden from a JSON file so thresholds stay configuration, not constants.
type Thresholds struct {
	// Latency severity ladder (milliseconds).
	LatencyCriticalMs float64 `json:"latency_critical_ms"`
	LatencyWarningMs  float64 `json:"latency_warning_ms"`
	LatencyCautionMs  float64 `json:"latency_caution_ms"`

	// Quality severity ladder (0-10 scale).
	QualityBad     float64 `json:"quality_bad"`
	QualityWarning float64 `json:"quality_warning"`
	QualityGood    float64 `json:"quality_good"`

	// Cost severity ladder (USD per call).
	CostExpensive float64 `json:"cost_expensive"`
	CostModerate  float64 `json:"cost_moderate"`
	CostLow       float64 `json:"cost_low"`

	// Benchmark callout: minimum fastest-same-operation ratio before the
	// optimization tip is shown.
	CalloutRatio float64 `json:"callout_ratio"`

	// Routing complexity bounds.
	ComplexityLow  float64 `json:"complexity_low"`
	ComplexityHigh float64 `json:"complexity_high"`

	// Minimum acceptable quality, used by the routing scorer and safe_pct.
	QualityFloor float64 `json:"quality_floor"`

	// Cache classification bounds.
	StablePrefixShare  float64 `json:"stable_prefix_share"`
	HighValueCost      float64 `json:"high_value_cost"`
	HighValueLatencyMs float64 `json:"high_value_latency_ms"`
	SemanticSimilarity float64 `json:"semantic_similarity"`

	// Token-imbalance and prompt-composition bounds.
	PromptTokensLarge float64 `json:"prompt_tokens_large"`
	OutputRatioLow    float64 `json:"output_ratio_low"`
	OutputRatioHigh   float64 `json:"output_ratio_high"`
}

// DefaultThresholds returns the compiled-in threshold defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LatencyCriticalMs: 10000,
		LatencyWarningMs:  5000,
		LatencyCautionMs:  3000,

		QualityBad:     5,
		QualityWarning: 7,
		QualityGood:    8,

		CostExpensive: 0.10,
		CostModerate:  0.05,
		CostLow:       0.01,

		CalloutRatio: 2.0,

		ComplexityLow:  0.4,
		ComplexityHigh: 0.7,
		QualityFloor:   7,

		StablePrefixShare:  0.7,
		HighValueCost:      0.05,
		HighValueLatencyMs: 3000,
		SemanticSimilarity: 80,

		PromptTokensLarge: 8000,
		OutputRatioLow:    0.05,
		OutputRatioHigh:   0.8,
	}
}

// LoadThresholds reads threshold overrides from a JSON file, starting from
// the defaults. A missing file is not an error; a malformed one is.
func LoadThresholds(path string) (Thresholds, error) {
	th := DefaultThresholds()
	if path == "" {
		return th, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return th, nil
		}
		return th, fmt.Errorf("failed to read thresholds file: %w", err)
	}

	if err := json.Unmarshal(data, &th); err != nil {
		return DefaultThresholds(), fmt.Errorf("failed to parse thresholds file: %w", err)
	}
	return th, nil
}

// LatencyLadder builds the latency severity ladder (higher is worse).
func (t Thresholds) LatencyLadder() severity.Ladder {
	return severity.Ladder{
		Mode: severity.GreaterThan,
		Rungs: []severity.Rung{
			{Cutoff: t.LatencyCriticalMs, Label: "critical"},
			{Cutoff: t.LatencyWarningMs, Label: "warning"},
			{Cutoff: t.LatencyCautionMs, Label: "caution"},
		},
		Default: "healthy",
	}
}

// QualityLadder builds the quality severity ladder (lower is worse).
func (t Thresholds) QualityLadder() severity.Ladder {
	return severity.Ladder{
		Mode: severity.LessThan,
		Rungs: []severity.Rung{
			{Cutoff: t.QualityBad, Label: "bad"},
			{Cutoff: t.QualityWarning, Label: "warning"},
			{Cutoff: t.QualityGood, Label: "good"},
		},
		Default: "excellent",
	}
}

// CostLadder builds the per-call cost ladder (higher is worse).
func (t Thresholds) CostLadder() severity.Ladder {
	return severity.Ladder{
		Mode: severity.GreaterThan,
		Rungs: []severity.Rung{
			{Cutoff: t.CostExpensive, Label: "expensive"},
			{Cutoff: t.CostModerate, Label: "moderate"},
			{Cutoff: t.CostLow, Label: "low"},
		},
		Default: "cheap",
	}
}
