package detail

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/agentlens-tui/internal/app"
	"github.com/j-veylop/agentlens-tui/internal/config"
	"github.com/j-veylop/agentlens-tui/internal/models"
	"github.com/j-veylop/agentlens-tui/internal/query"
	"github.com/j-veylop/agentlens-tui/internal/telemetry"
)

func newTestModel() *Model {
	state := app.NewState(models.Scope{Window: models.TimeRange7Days}, config.DefaultThresholds())
	m := New(state, app.NewCommands(nil, state))
	m.SetSize(120, 40)
	return m
}

func testCall() *models.CallRecord {
	return &models.CallRecord{
		CallID:           "c-42",
		AgentName:        "planner",
		Operation:        "plan_task",
		Timestamp:        time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		Provider:         "anthropic",
		ModelName:        "claude-sonnet-4-5",
		LatencyMs:        12000,
		PromptTokens:     6000,
		CompletionTokens: 400,
		TotalCost:        0.12,
		CacheStatus:      models.CacheMiss,
		ConversationID:   "conv-1",
	}
}

func testSiblings() []models.CallRecord {
	return []models.CallRecord{
		{CallID: "c-42", ModelName: "claude-sonnet-4-5", LatencyMs: 12000},
		{CallID: "c-1", ModelName: "claude-sonnet-4-5", LatencyMs: 2000},
		{CallID: "c-2", ModelName: "claude-haiku-4-5", LatencyMs: 1000},
		{CallID: "c-3", ModelName: "claude-sonnet-4-5", LatencyMs: 4000},
	}
}

func TestUpdate_CallAndSiblings(t *testing.T) {
	m := newTestModel()

	tier, _ := m.Update(app.CallLoadedMsg{Call: testCall()})
	m = tier.(*Model)
	if m.loading {
		t.Error("expected loading cleared once the call arrives")
	}

	tier, _ = m.Update(app.SiblingsLoadedMsg{Siblings: testSiblings()})
	m = tier.(*Model)
	if len(m.siblings) != 4 {
		t.Fatalf("expected 4 siblings, got %d", len(m.siblings))
	}
}

func TestBuildBenchmark_ExcludesSelf(t *testing.T) {
	m := newTestModel()
	m.call = testCall()
	m.siblings = testSiblings()

	b := m.buildBenchmark()
	if b.FastestSameOp == nil {
		t.Fatal("expected a fastest-same-op reference")
	}
	if b.FastestSameOp.Reference != 1000 {
		t.Errorf("expected fastest sibling 1000ms, got %.0f", b.FastestSameOp.Reference)
	}
	if b.FastestSimilar == nil || b.FastestSimilar.Reference != 2000 {
		t.Errorf("expected fastest same-model sibling 2000ms, got %+v", b.FastestSimilar)
	}
	// Median of {1000, 2000, 4000}: the call itself must not be counted.
	if b.MedianForOperation == nil || b.MedianForOperation.Reference != 2000 {
		t.Errorf("expected median 2000ms, got %+v", b.MedianForOperation)
	}
	// 12x behind the fastest clears the 2x callout threshold.
	if !b.ShowOptimizationTip {
		t.Error("expected the optimization tip")
	}
}

func TestBuildBenchmark_NoSiblings(t *testing.T) {
	m := newTestModel()
	m.call = testCall()

	b := m.buildBenchmark()
	if b.FastestSameOp != nil || b.MedianForOperation != nil || b.FastestSimilar != nil {
		t.Error("expected no references without siblings")
	}
	if b.ShowOptimizationTip {
		t.Error("tip must not fire without a reference")
	}
}

func TestDiagnose_Call(t *testing.T) {
	m := newTestModel()
	m.call = testCall()
	m.siblings = testSiblings()

	d := m.diagnose()
	if d.Healthy {
		t.Fatal("a 12s, $0.12 call must not be healthy")
	}

	ids := make(map[string]bool)
	for _, f := range d.Factors {
		ids[f.ID] = true
	}
	if !ids["latency-extreme"] {
		t.Error("expected the extreme-latency factor")
	}
	if !ids["cost-expensive"] {
		t.Error("expected the expensive-cost factor")
	}
	if !ids["latency-gap-to-fastest"] {
		t.Error("expected the gap-to-fastest factor")
	}
	// Critical factors sort first.
	if d.Factors[0].Severity != models.SeverityCritical {
		t.Errorf("expected critical factor first, got %v", d.Factors[0].Severity)
	}
}

func TestDiagnose_CallWithRoutingPattern(t *testing.T) {
	m := newTestModel()
	m.call = testCall()
	m.state.SetRoutingPatterns([]models.RoutingPattern{{
		AgentName:   "planner",
		Operation:   "plan_task",
		ModelName:   "claude-sonnet-4-5",
		Opportunity: models.OpportunityDowngrade,
		SafePct:     85,
	}})

	d := m.diagnose()
	found := false
	for _, f := range d.Factors {
		if f.ID == "routing-cheaper-model" {
			found = true
		}
	}
	if !found {
		t.Error("expected the cheaper-model factor when a downgrade row matches the call")
	}
}

func TestDiagnose_Group(t *testing.T) {
	m := newTestModel()
	m.group = &telemetry.CacheGroupPayload{
		Pattern: models.CachePattern{
			GroupID:     "fp-1",
			AgentName:   "planner",
			Operation:   "plan_task",
			CacheType:   models.CacheExact,
			RepeatCount: 12,
			WastedCost:  4.80,
		},
		Calls: []models.CallRecord{
			{CallID: "c-1", LatencyMs: 800, TotalCost: 0.002},
		},
	}

	d := m.diagnose()
	found := false
	for _, f := range d.Factors {
		if f.ID == "cache-wasted-spend" {
			found = true
			if f.Severity != models.SeverityCritical {
				t.Errorf("$4.80 wasted should be critical, got %v", f.Severity)
			}
		}
	}
	if !found {
		t.Error("expected the wasted-spend factor for the group")
	}
}

func TestAlternatives(t *testing.T) {
	m := newTestModel()
	m.call = testCall()

	alts := m.alternatives()
	if len(alts) == 0 {
		t.Fatal("expected alternative models")
	}
	for _, a := range alts {
		if a.Model == "claude-sonnet-4-5" {
			t.Error("the current model must not appear as an alternative")
		}
	}
	// Sorted by savings descending.
	for i := 1; i < len(alts); i++ {
		if alts[i].SavingsPct > alts[i-1].SavingsPct {
			t.Error("alternatives must be sorted by savings descending")
			break
		}
	}
}

func TestUpdate_DrillDownResetsState(t *testing.T) {
	m := newTestModel()
	m.call = testCall()
	m.siblings = testSiblings()
	m.loading = false

	tier, _ := m.Update(app.DrillDownMsg{Transition: query.Transition{
		To:  query.TierDetail,
		Key: query.NavKey{GroupID: "fp-1"},
	}})
	m = tier.(*Model)

	if m.call != nil || m.siblings != nil {
		t.Error("expected stale call data cleared")
	}
	if m.groupID != "fp-1" || m.callID != "" {
		t.Errorf("unexpected navigation key: call=%q group=%q", m.callID, m.groupID)
	}
	if !m.loading {
		t.Error("expected loading after drill-down")
	}
}

func TestUpdate_TierError(t *testing.T) {
	m := newTestModel()
	tier, _ := m.Update(app.TierErrorMsg{Tier: query.TierDetail, Err: errors.New("not found")})
	m = tier.(*Model)
	if m.errorMsg != "not found" {
		t.Errorf("expected error recorded, got %q", m.errorMsg)
	}
}

func TestView_CallMode(t *testing.T) {
	m := newTestModel()
	tier, _ := m.Update(app.CallLoadedMsg{Call: testCall()})
	m = tier.(*Model)
	tier, _ = m.Update(app.SiblingsLoadedMsg{Siblings: testSiblings()})
	m = tier.(*Model)

	view := m.View()
	if view == "" {
		t.Fatal("call view must not be empty")
	}
	if !strings.Contains(view, "c-42") {
		t.Error("expected the call id in the view")
	}
	// The benchmark card draws one proportional bar per reference.
	for _, label := range []string{"this call", "fastest", "median", "12000ms"} {
		if !strings.Contains(view, label) {
			t.Errorf("expected %q in the benchmark card", label)
		}
	}
}

func TestView_GroupMode(t *testing.T) {
	m := newTestModel()
	tier, _ := m.Update(app.CacheGroupLoadedMsg{Payload: &telemetry.CacheGroupPayload{
		Pattern: models.CachePattern{GroupID: "fp-1", CacheType: models.CacheExact, RepeatCount: 3, WastedCost: 0.30},
		Calls: []models.CallRecord{
			{CallID: "c-1", LatencyMs: 800},
			{CallID: "c-2", LatencyMs: 3200},
		},
	}})
	m = tier.(*Model)

	view := m.View()
	if !strings.Contains(view, "fp-1") {
		t.Error("expected the group id in the view")
	}
	// Two or more members render a per-call latency bar chart.
	if !strings.Contains(view, "3200.0") {
		t.Error("expected the member latency bars in the view")
	}
}
