package telemetry

import "github.com/j-veylop/agentlens-tui/internal/models"

// ChartPoint is one point of an overview trend series.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// RoutingMeasurement is one raw (agent, operation, model) routing row as
// measured by the backend. Complexity and quality are measured server-side;
// the opportunity verdict is scored locally against the thresholds file.
type RoutingMeasurement struct {
	AgentName     string  `json:"agent_name"`
	Operation     string  `json:"operation"`
	ModelName     string  `json:"model_name"`
	ComplexityAvg float64 `json:"complexity_avg"`
	AvgQuality    float64 `json:"avg_quality"`
	CheapestTier  bool    `json:"cheapest_tier"`
	CallCount     int     `json:"call_count"`

	// DowngradeQualityEstimates are per-call quality predictions for the
	// next cheaper tier, injected by the backend.
	DowngradeQualityEstimates []float64 `json:"downgrade_quality_estimates"`
}

// StoryOverview is the payload of GET /api/stories/{story_id}. Missing
// fields decode to zero values; consumers render a zero/empty display
// rather than failing.
type StoryOverview struct {
	HealthScore float64                     `json:"health_score"`
	Summary     string                      `json:"summary"`
	DetailTable []models.OperationAggregate `json:"detail_table"`
	ChartData   []ChartPoint                `json:"chart_data"`
	TopOffender string                      `json:"top_offender"`

	// Routing carries raw measurements on the routing story, empty elsewhere.
	Routing []RoutingMeasurement `json:"routing,omitempty"`

	// RoutingPatterns are the locally scored rows derived from Routing.
	// Populated by the service layer, never sent by the backend.
	RoutingPatterns []models.RoutingPattern `json:"routing_patterns,omitempty"`
}

// CacheStats summarizes all cache patterns in the window.
type CacheStats struct {
	PatternCount    int     `json:"pattern_count"`
	TotalWastedCost float64 `json:"total_wasted_cost"`
	TotalRepeats    int     `json:"total_repeats"`
}

// CachePatternsPayload is the payload of GET /api/stories/cache/patterns.
type CachePatternsPayload struct {
	Patterns []models.CachePattern `json:"patterns"`
	Stats    CacheStats            `json:"stats"`
}

// CacheOpportunity is one caching recommendation for an operation.
type CacheOpportunity struct {
	GroupID     string  `json:"group_id"`
	Description string  `json:"description"`
	Savings     float64 `json:"savings"`
}

// CacheOperationPayload is the per-operation cache breakdown from
// GET /api/stories/cache/operations/{agent}/{operation}.
type CacheOperationPayload struct {
	AgentName     string                `json:"agent_name"`
	Operation     string                `json:"operation"`
	Patterns      []models.CachePattern `json:"patterns"`
	Opportunities []CacheOpportunity    `json:"opportunities"`
}

// GroupMeasurements are the raw prompt-level measurements the backend
// computed for a repeated-prompt group. They let the client re-derive the
// group's classification under its own thresholds.
type GroupMeasurements struct {
	IdenticalPromptShare float64 `json:"identical_prompt_share"`
	SharedPrefixShare    float64 `json:"shared_prefix_share"`
	ResponseSimilarity   float64 `json:"response_similarity"`
}

// CacheGroupPayload is a single pattern plus its member calls from
// GET /api/stories/cache/operations/{agent}/{operation}/groups/{group_id}.
type CacheGroupPayload struct {
	Pattern      models.CachePattern `json:"pattern"`
	Calls        []models.CallRecord `json:"calls"`
	Measurements GroupMeasurements   `json:"measurements"`
}

// ListCallsParams are the query parameters of GET /api/calls.
type ListCallsParams struct {
	Operation string
	Agent     string
	Days      int
	Limit     int
}
