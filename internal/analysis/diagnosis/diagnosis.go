// Package diagnosis merges per-story rule outputs into a ranked, deduped
// factor list and a healthy/unhealthy verdict.
package diagnosis

import (
	"sort"

	"github.com/j-veylop/agentlens-tui/internal/config"
	"github.com/j-veylop/agentlens-tui/internal/models"
)

// Input carries everything a rule set may inspect for one record. Any field
// except Call may be nil when the corresponding data has not resolved; rules
// must treat a nil field as "not yet available", never as an error.
type Input struct {
	Call           *models.CallRecord
	Benchmark      *models.Benchmark
	CachePattern   *models.CachePattern
	RoutingPattern *models.RoutingPattern
}

// RuleSet produces the factors one story domain contributes for a record.
type RuleSet func(in Input, th config.Thresholds) []models.Factor

// StoryConfig binds a story id to its display title and rule set. Every
// story conforms to this one contract; there is no per-story dispatch
// anywhere else.
type StoryConfig struct {
	ID    models.StoryID
	Title string
	Rules RuleSet
}

// Registry resolves story configurations by id. It is populated once at
// startup and read-only afterwards.
type Registry struct {
	stories map[models.StoryID]StoryConfig
	order   []models.StoryID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{stories: make(map[models.StoryID]StoryConfig)}
}

// Register adds a story configuration. Registering the same id twice
// replaces the earlier entry but keeps its position.
func (r *Registry) Register(cfg StoryConfig) {
	if _, ok := r.stories[cfg.ID]; !ok {
		r.order = append(r.order, cfg.ID)
	}
	r.stories[cfg.ID] = cfg
}

// Resolve returns the configuration for a story id.
func (r *Registry) Resolve(id models.StoryID) (StoryConfig, bool) {
	cfg, ok := r.stories[id]
	return cfg, ok
}

// Stories returns all registered configurations in registration order.
func (r *Registry) Stories() []StoryConfig {
	out := make([]StoryConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.stories[id])
	}
	return out
}

// Diagnose runs every registered rule set over the input and aggregates the
// result. The output is recomputed wholesale on every call; nothing is
// memoized.
func (r *Registry) Diagnose(in Input, th config.Thresholds) models.Diagnosis {
	var factors []models.Factor
	for _, id := range r.order {
		cfg := r.stories[id]
		if cfg.Rules == nil {
			continue
		}
		factors = append(factors, cfg.Rules(in, th)...)
	}
	return Aggregate(factors)
}

// Aggregate deduplicates factors by id (last write wins, keeping the first
// occurrence's position), stable-sorts by severity, and computes the health
// verdict. A record is healthy exactly when it has no factor above info
// severity, so it can never be healthy while carrying a critical factor.
func Aggregate(factors []models.Factor) models.Diagnosis {
	deduped := make([]models.Factor, 0, len(factors))
	index := make(map[string]int, len(factors))
	for _, f := range factors {
		if i, ok := index[f.ID]; ok {
			deduped[i] = f
			continue
		}
		index[f.ID] = len(deduped)
		deduped = append(deduped, f)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Severity < deduped[j].Severity
	})

	healthy := true
	for _, f := range deduped {
		if f.Severity != models.SeverityInfo {
			healthy = false
			break
		}
	}

	return models.Diagnosis{Factors: deduped, Healthy: healthy}
}
