package diagnosis

import (
	"fmt"

	"github.com/j-veylop/agentlens-tui/internal/analysis/benchmark"
	"github.com/j-veylop/agentlens-tui/internal/config"
	"github.com/j-veylop/agentlens-tui/internal/models"
)

// DefaultRegistry returns the registry with all seven story rule sets.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(StoryConfig{ID: models.StoryLatency, Title: "Latency", Rules: latencyRules})
	r.Register(StoryConfig{ID: models.StoryCost, Title: "Cost", Rules: costRules})
	r.Register(StoryConfig{ID: models.StoryCache, Title: "Cache", Rules: cacheRules})
	r.Register(StoryConfig{ID: models.StoryRouting, Title: "Routing", Rules: routingRules})
	r.Register(StoryConfig{ID: models.StoryQuality, Title: "Quality", Rules: qualityRules})
	r.Register(StoryConfig{ID: models.StoryTokens, Title: "Tokens", Rules: tokenRules})
	r.Register(StoryConfig{ID: models.StoryPrompt, Title: "Prompt", Rules: promptRules})
	return r
}

func latencyRules(in Input, th config.Thresholds) []models.Factor {
	if in.Call == nil {
		return nil
	}
	var factors []models.Factor

	switch th.LatencyLadder().ClassifyValue(in.Call.LatencyMs) {
	case "critical":
		factors = append(factors, models.Factor{
			ID:       "latency-extreme",
			Label:    "Extreme latency",
			Severity: models.SeverityCritical,
			Impact:   fmt.Sprintf("%.1fs response time", in.Call.LatencyMs/1000),
		})
	case "warning":
		factors = append(factors, models.Factor{
			ID:       "latency-high",
			Label:    "High latency",
			Severity: models.SeverityWarning,
			Impact:   fmt.Sprintf("%.1fs response time", in.Call.LatencyMs/1000),
		})
	case "caution":
		factors = append(factors, models.Factor{
			ID:       "latency-elevated",
			Label:    "Elevated latency",
			Severity: models.SeverityInfo,
			Impact:   fmt.Sprintf("%.1fs response time", in.Call.LatencyMs/1000),
		})
	}

	if in.Benchmark != nil && in.Benchmark.ShowOptimizationTip && in.Benchmark.FastestSameOp != nil {
		factors = append(factors, models.Factor{
			ID:       "latency-gap-to-fastest",
			Label:    "Far behind fastest comparable call",
			Severity: models.SeverityWarning,
			Impact:   benchmark.FormatRatio(*in.Benchmark.FastestSameOp),
			HasFix:   true,
		})
	}
	return factors
}

func costRules(in Input, th config.Thresholds) []models.Factor {
	if in.Call == nil {
		return nil
	}
	switch th.CostLadder().ClassifyValue(in.Call.TotalCost) {
	case "expensive":
		return []models.Factor{{
			ID:       "cost-expensive",
			Label:    "Expensive call",
			Severity: models.SeverityWarning,
			Impact:   models.FormatMoney(in.Call.TotalCost),
			HasFix:   true,
		}}
	case "moderate":
		return []models.Factor{{
			ID:       "cost-moderate",
			Label:    "Above-average cost",
			Severity: models.SeverityInfo,
			Impact:   models.FormatMoney(in.Call.TotalCost),
		}}
	}
	return nil
}

func cacheRules(in Input, th config.Thresholds) []models.Factor {
	p := in.CachePattern
	if p == nil || p.WastedCost <= 0 {
		return nil
	}

	sev := models.SeverityInfo
	if p.CacheType == models.CacheExact {
		sev = models.SeverityWarning
	}
	if p.WastedCost > th.CostExpensive {
		sev = models.SeverityCritical
	}

	return []models.Factor{{
		ID:       "cache-wasted-spend",
		Label:    fmt.Sprintf("Repeated %s prompts without caching", p.CacheType),
		Severity: sev,
		Impact:   fmt.Sprintf("%s wasted across %d repeats", models.FormatMoney(p.WastedCost), p.RepeatCount),
		HasFix:   true,
	}}
}

func routingRules(in Input, _ config.Thresholds) []models.Factor {
	p := in.RoutingPattern
	if p == nil {
		return nil
	}
	switch p.Opportunity {
	case models.OpportunityDowngrade:
		return []models.Factor{{
			ID:       "routing-cheaper-model",
			Label:    "Cheaper model viable",
			Severity: models.SeverityInfo,
			Impact:   fmt.Sprintf("%.0f%% of calls safe to downgrade", p.SafePct),
			HasFix:   true,
		}}
	case models.OpportunityUpgrade:
		return []models.Factor{{
			ID:       "routing-underpowered-model",
			Label:    "Model underpowered for task complexity",
			Severity: models.SeverityWarning,
			Impact:   fmt.Sprintf("avg quality %.1f on complexity %.2f", p.AvgQuality, p.ComplexityAvg),
			HasFix:   true,
		}}
	}
	return nil
}

func qualityRules(in Input, th config.Thresholds) []models.Factor {
	if in.Call == nil || !in.Call.HasQuality() {
		return nil
	}
	switch th.QualityLadder().Classify(in.Call.QualityScore) {
	case "bad":
		return []models.Factor{{
			ID:       "quality-bad",
			Label:    "Bad response quality",
			Severity: models.SeverityCritical,
			Impact:   fmt.Sprintf("scored %.1f/10", *in.Call.QualityScore),
		}}
	case "warning":
		return []models.Factor{{
			ID:       "quality-low",
			Label:    "Below-target quality",
			Severity: models.SeverityWarning,
			Impact:   fmt.Sprintf("scored %.1f/10", *in.Call.QualityScore),
		}}
	}
	return nil
}

func tokenRules(in Input, th config.Thresholds) []models.Factor {
	c := in.Call
	if c == nil || c.TotalTokens() == 0 {
		return nil
	}

	ratio := c.OutputRatio()
	if ratio < th.OutputRatioLow && float64(c.PromptTokens) > th.PromptTokensLarge/4 {
		return []models.Factor{{
			ID:       "tokens-prompt-heavy",
			Label:    "Prompt-heavy token balance",
			Severity: models.SeverityInfo,
			Impact:   fmt.Sprintf("%d in / %d out", c.PromptTokens, c.CompletionTokens),
		}}
	}
	if ratio > th.OutputRatioHigh {
		return []models.Factor{{
			ID:       "tokens-output-heavy",
			Label:    "Output-heavy token balance",
			Severity: models.SeverityInfo,
			Impact:   fmt.Sprintf("%d in / %d out", c.PromptTokens, c.CompletionTokens),
		}}
	}
	return nil
}

func promptRules(in Input, th config.Thresholds) []models.Factor {
	c := in.Call
	if c == nil {
		return nil
	}
	if float64(c.PromptTokens) > th.PromptTokensLarge {
		return []models.Factor{{
			ID:       "prompt-oversized",
			Label:    "Oversized prompt",
			Severity: models.SeverityWarning,
			Impact:   fmt.Sprintf("%d prompt tokens", c.PromptTokens),
			HasFix:   true,
		}}
	}
	return nil
}
