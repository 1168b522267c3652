package models

import "time"

// CacheStatus describes whether a call was served from a prompt cache.
type CacheStatus string

const (
	// CacheHit means the call was answered from cache.
	CacheHit CacheStatus = "hit"
	// CacheMiss means the call went to the provider.
	CacheMiss CacheStatus = "miss"
	// CacheNone means caching was not applicable for the call.
	CacheNone CacheStatus = "none"
)

// CallRecord is one LLM call as served by the telemetry API. Records are
// immutable once retrieved and shared read-only across tiers.
type CallRecord struct {
	CallID           string      `json:"call_id"`
	AgentName        string      `json:"agent_name"`
	Operation        string      `json:"operation"`
	Timestamp        time.Time   `json:"timestamp"`
	Provider         string      `json:"provider"`
	ModelName        string      `json:"model_name"`
	LatencyMs        float64     `json:"latency_ms"`
	PromptTokens     int         `json:"prompt_tokens"`
	CompletionTokens int         `json:"completion_tokens"`
	TotalCost        float64     `json:"total_cost"`
	CacheStatus      CacheStatus `json:"cache_status"`
	QualityScore     *float64    `json:"quality_score"`
	ConversationID   string      `json:"conversation_id"`
}

// TotalTokens returns prompt plus completion tokens.
func (c *CallRecord) TotalTokens() int {
	return c.PromptTokens + c.CompletionTokens
}

// OutputRatio returns completion tokens as a fraction of total tokens,
// or 0 when the call has no tokens at all.
func (c *CallRecord) OutputRatio() float64 {
	total := c.TotalTokens()
	if total == 0 {
		return 0
	}
	return float64(c.CompletionTokens) / float64(total)
}

// HasQuality reports whether a quality score was recorded for the call.
func (c *CallRecord) HasQuality() bool {
	return c.QualityScore != nil
}
