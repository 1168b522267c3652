// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/j-veylop/agentlens-tui/internal/analysis/cachetype"
	"github.com/j-veylop/agentlens-tui/internal/analysis/routing"
	"github.com/j-veylop/agentlens-tui/internal/config"
	"github.com/j-veylop/agentlens-tui/internal/db"
	"github.com/j-veylop/agentlens-tui/internal/logger"
	"github.com/j-veylop/agentlens-tui/internal/models"
	"github.com/j-veylop/agentlens-tui/internal/services/thresholds"
	"github.com/j-veylop/agentlens-tui/internal/telemetry"
)

type (
	// ThresholdsReloadedEvent is emitted when the thresholds file changes
	// on disk. All derived state must be recomputed.
	ThresholdsReloadedEvent struct {
		Thresholds config.Thresholds
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (ThresholdsReloadedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()              {}

// healthCriticalBelow is the overview health score under which a desktop
// notification fires, once per story per downward crossing.
const healthCriticalBelow = 40.0

// Manager orchestrates the telemetry client, the snapshot cache and the
// thresholds service, and routes events to subscribers.
type Manager struct {
	mu            sync.RWMutex
	client        *telemetry.Client
	cache         *db.DB
	thresholds    *thresholds.Service
	desktopNotify bool
	stopChan      chan struct{}
	stopOnce      sync.Once
	subscribers   []chan ServiceEvent
	prevHealth    map[models.StoryID]float64
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		client:        telemetry.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout),
		desktopNotify: cfg.DesktopNotify,
		stopChan:      make(chan struct{}),
		prevHealth:    make(map[models.StoryID]float64),
	}

	var err error
	m.cache, err = db.New(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot cache: %w", err)
	}

	m.thresholds, err = thresholds.New(cfg.ThresholdsPath)
	if err != nil {
		if closeErr := m.cache.Close(); closeErr != nil {
			logger.Error("failed to close cache", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to load thresholds: %w", err)
	}

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.thresholds.Events():
			m.handleThresholdsEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleThresholdsEvent(event thresholds.Event) {
	switch event.Type {
	case thresholds.EventReloaded:
		// Cached snapshots were derived under the old thresholds.
		if err := m.cache.InvalidateAll(); err != nil {
			logger.Error("failed to clear cache on thresholds reload", "error", err)
		}
		m.broadcast(ThresholdsReloadedEvent{Thresholds: event.Thresholds})

	case thresholds.EventError:
		m.broadcast(ErrorEvent{Service: "thresholds", Error: event.Error})
	}
}

// Subscribe returns a channel that receives service events.
func (m *Manager) Subscribe() (<-chan ServiceEvent, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan ServiceEvent, 16)
	m.subscribers = append(m.subscribers, ch)

	unsubscribe := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, sub := range m.subscribers {
			if sub == ch {
				m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, unsubscribe
}

func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, ch := range m.subscribers {
		select {
		case ch <- event:
		default:
			// Drop for slow subscribers; events are advisory.
		}
	}
}

// Thresholds returns the current analysis thresholds.
func (m *Manager) Thresholds() config.Thresholds {
	return m.thresholds.Current()
}

// Overview fetches the story overview for a scope, serving from the
// snapshot cache when possible.
func (m *Manager) Overview(ctx context.Context, story models.StoryID, scope models.Scope) (*telemetry.StoryOverview, error) {
	resource := "story/" + string(story)

	var cached telemetry.StoryOverview
	if ok := m.fromCache(scope, resource, &cached); ok {
		return &cached, nil
	}

	out, err := m.client.GetStory(ctx, story, scope)
	if err != nil {
		return nil, err
	}

	m.scoreRouting(out)
	m.toCache(scope, resource, out)
	m.checkHealthNotification(story, out.HealthScore)
	return out, nil
}

// scoreRouting turns the overview's raw routing measurements into scored
// opportunity rows. The complexity bounds and quality floor live in the
// local thresholds file, so the verdict cannot come from the backend.
func (m *Manager) scoreRouting(o *telemetry.StoryOverview) {
	if len(o.Routing) == 0 {
		return
	}

	th := m.Thresholds()
	o.RoutingPatterns = make([]models.RoutingPattern, 0, len(o.Routing))
	for _, r := range o.Routing {
		o.RoutingPatterns = append(o.RoutingPatterns, models.RoutingPattern{
			AgentName:     r.AgentName,
			Operation:     r.Operation,
			ModelName:     r.ModelName,
			ComplexityAvg: r.ComplexityAvg,
			AvgQuality:    r.AvgQuality,
			Opportunity: routing.Score(routing.Input{
				Complexity:   r.ComplexityAvg,
				AvgQuality:   r.AvgQuality,
				CheapestTier: r.CheapestTier,
			}, th),
			SafePct:   routing.SafePct(r.DowngradeQualityEstimates, th),
			CallCount: r.CallCount,
		})
	}
}

// CachePatterns fetches the cross-operation cache pattern list.
func (m *Manager) CachePatterns(ctx context.Context, scope models.Scope) (*telemetry.CachePatternsPayload, error) {
	const resource = "cache/patterns"

	var cached telemetry.CachePatternsPayload
	if ok := m.fromCache(scope, resource, &cached); ok {
		return &cached, nil
	}

	out, err := m.client.GetCachePatterns(ctx, scope)
	if err != nil {
		return nil, err
	}
	m.toCache(scope, resource, out)
	return out, nil
}

// CacheOperation fetches the per-operation cache breakdown.
func (m *Manager) CacheOperation(ctx context.Context, agent, operation string, scope models.Scope) (*telemetry.CacheOperationPayload, error) {
	resource := "cache/op/" + agent + "/" + operation

	var cached telemetry.CacheOperationPayload
	if ok := m.fromCache(scope, resource, &cached); ok {
		return &cached, nil
	}

	out, err := m.client.GetCacheOperation(ctx, agent, operation, scope)
	if err != nil {
		return nil, err
	}
	m.toCache(scope, resource, out)
	return out, nil
}

// CacheGroup fetches one pattern group with its member calls.
func (m *Manager) CacheGroup(ctx context.Context, agent, operation, groupID string, scope models.Scope) (*telemetry.CacheGroupPayload, error) {
	resource := "cache/group/" + agent + "/" + operation + "/" + groupID

	var cached telemetry.CacheGroupPayload
	if ok := m.fromCache(scope, resource, &cached); ok {
		return &cached, nil
	}

	out, err := m.client.GetCacheGroup(ctx, agent, operation, groupID, scope)
	if err != nil {
		return nil, err
	}
	m.reclassifyGroup(out)
	m.toCache(scope, resource, out)
	return out, nil
}

// reclassifyGroup re-derives a group's classification from its raw
// measurements under the local thresholds. The backend classifies with its
// own defaults; the thresholds file is authoritative for the decision ladder
// and the waste math. Cached snapshots hold the reclassified pattern, which
// is why a thresholds reload invalidates the whole cache.
func (m *Manager) reclassifyGroup(p *telemetry.CacheGroupPayload) {
	if len(p.Calls) == 0 {
		return
	}

	var cost, latency float64
	for _, c := range p.Calls {
		cost += c.TotalCost
		latency += c.LatencyMs
	}
	n := float64(len(p.Calls))

	g := cachetype.Group{
		GroupID:              p.Pattern.GroupID,
		AgentName:            p.Pattern.AgentName,
		Operation:            p.Pattern.Operation,
		RepeatCount:          p.Pattern.RepeatCount,
		IdenticalPromptShare: p.Measurements.IdenticalPromptShare,
		SharedPrefixShare:    p.Measurements.SharedPrefixShare,
		UnitCost:             cost / n,
		AvgLatencyMs:         latency / n,
		ResponseSimilarity:   p.Measurements.ResponseSimilarity,
	}
	if pattern, ok := cachetype.Classify(g, m.Thresholds()); ok {
		p.Pattern = pattern
	}
}

// Call fetches a single call record.
func (m *Manager) Call(ctx context.Context, scope models.Scope, callID string) (*models.CallRecord, error) {
	resource := "call/" + callID

	var cached models.CallRecord
	if ok := m.fromCache(scope, resource, &cached); ok {
		return &cached, nil
	}

	out, err := m.client.GetCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	m.toCache(scope, resource, out)
	return out, nil
}

// Siblings fetches comparable calls for benchmarking.
func (m *Manager) Siblings(ctx context.Context, scope models.Scope, agent, operation string, limit int) ([]models.CallRecord, error) {
	resource := "siblings/" + agent + "/" + operation

	var cached []models.CallRecord
	if ok := m.fromCache(scope, resource, &cached); ok {
		return cached, nil
	}

	out, err := m.client.ListCalls(ctx, telemetry.ListCallsParams{
		Operation: operation,
		Agent:     agent,
		Days:      scope.Window.Days(),
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}
	m.toCache(scope, resource, out)
	return out, nil
}

// InvalidateScope drops cached snapshots for a scope. Called when the time
// window or project filter changes.
func (m *Manager) InvalidateScope(scope models.Scope) {
	if err := m.cache.InvalidateScope(scope); err != nil {
		logger.Error("failed to invalidate scope", "error", err)
	}
}

// InvalidateAll drops every cached snapshot.
func (m *Manager) InvalidateAll() {
	if err := m.cache.InvalidateAll(); err != nil {
		logger.Error("failed to clear cache", "error", err)
	}
}

func (m *Manager) fromCache(scope models.Scope, resource string, v any) bool {
	payload, ok, err := m.cache.GetSnapshot(scope, resource)
	if err != nil {
		logger.Error("cache read failed", "resource", resource, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, v); err != nil {
		logger.Error("cache payload corrupt", "resource", resource, "error", err)
		return false
	}
	return true
}

func (m *Manager) toCache(scope models.Scope, resource string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		logger.Error("cache encode failed", "resource", resource, "error", err)
		return
	}
	if err := m.cache.PutSnapshot(scope, resource, payload); err != nil {
		logger.Error("cache write failed", "resource", resource, "error", err)
	}
}

// checkHealthNotification fires a desktop alert when a story's health score
// drops below the critical line, once per downward crossing.
func (m *Manager) checkHealthNotification(story models.StoryID, health float64) {
	m.mu.Lock()
	prev, seen := m.prevHealth[story]
	m.prevHealth[story] = health
	m.mu.Unlock()

	if !m.desktopNotify {
		return
	}
	if health >= healthCriticalBelow {
		return
	}
	if seen && prev < healthCriticalBelow {
		return
	}

	title := fmt.Sprintf("Critical health: %s", story.Title())
	body := fmt.Sprintf("Health score dropped to %.0f", health)
	_ = beeep.Notify(title, body, "")
}

// Close shuts down the manager and its services.
func (m *Manager) Close() error {
	var err error
	m.stopOnce.Do(func() {
		close(m.stopChan)
		if closeErr := m.thresholds.Close(); closeErr != nil {
			err = closeErr
		}
		if closeErr := m.cache.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}
