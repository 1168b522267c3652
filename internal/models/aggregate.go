package models

// OperationAggregate is a rollup over all calls for one (agent, operation)
// pair in the active scope. Aggregates are recomputed wholesale whenever the
// underlying time window changes, never incrementally mutated.
type OperationAggregate struct {
	AgentName    string  `json:"agent_name"`
	Operation    string  `json:"operation"`
	CallCount    int     `json:"call_count"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	MaxLatencyMs float64 `json:"max_latency_ms"`
	AvgCost      float64 `json:"avg_cost"`
	TotalCost    float64 `json:"total_cost"`
	AvgQuality   float64 `json:"avg_quality"`
	HealthScore  float64 `json:"health_score"` // 0..100
	TopOffender  string  `json:"top_offender"` // call_id of the worst call
}

// Key returns the (agent, operation) identity of the aggregate.
func (o *OperationAggregate) Key() string {
	return o.AgentName + "/" + o.Operation
}

// CacheType buckets a repeated-prompt group into a caching strategy.
type CacheType string

const (
	// CacheExact means every call in the group shares a byte-identical prompt.
	CacheExact CacheType = "exact"
	// CacheStable means prompts diverge only in a trailing segment.
	CacheStable CacheType = "stable"
	// CacheHighValue means repeats of an expensive or slow operation worth
	// caching even without identical prompts.
	CacheHighValue CacheType = "high_value"
	// CacheSemantic means prompts differ but responses are highly similar.
	CacheSemantic CacheType = "semantic"
)

// CachePattern is a derived group of calls sharing a prompt fingerprint
// within the active window. Recomputed on every window change.
type CachePattern struct {
	GroupID            string    `json:"group_id"` // prompt fingerprint
	AgentName          string    `json:"agent_name"`
	Operation          string    `json:"operation"`
	CacheType          CacheType `json:"cache_type"`
	RepeatCount        int       `json:"repeat_count"`
	WastedCost         float64   `json:"wasted_cost"`
	SavableTimeMs      float64   `json:"savable_time_ms"`
	ResponseSimilarity float64   `json:"response_similarity"` // 0..100
}

// Opportunity is a routing recommendation label.
type Opportunity string

const (
	// OpportunityUpgrade recommends moving to a stronger model tier.
	OpportunityUpgrade Opportunity = "upgrade"
	// OpportunityDowngrade recommends moving to a cheaper model tier.
	OpportunityDowngrade Opportunity = "downgrade"
	// OpportunityKeep recommends staying on the current model.
	OpportunityKeep Opportunity = "keep"
)

// RoutingPattern is a derived (agent, operation, model) routing combination.
type RoutingPattern struct {
	AgentName     string      `json:"agent_name"`
	Operation     string      `json:"operation"`
	ModelName     string      `json:"model_name"`
	ComplexityAvg float64     `json:"complexity_avg"` // 0..1
	AvgQuality    float64     `json:"avg_quality"`    // 0..10
	Opportunity   Opportunity `json:"opportunity"`
	SafePct       float64     `json:"safe_pct"` // share of calls safe to downgrade
	CallCount     int         `json:"call_count"`
}
