package overview

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

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

func loadedMsg() app.OverviewLoadedMsg {
	return app.OverviewLoadedMsg{
		Story: models.StoryLatency,
		Overview: &telemetry.StoryOverview{
			HealthScore: 62,
			Summary:     "2 operations need attention",
			DetailTable: []models.OperationAggregate{
				{AgentName: "planner", Operation: "plan_task", CallCount: 40, AvgLatencyMs: 12000, HealthScore: 35},
				{AgentName: "coder", Operation: "write_code", CallCount: 120, AvgLatencyMs: 900, HealthScore: 91},
				{AgentName: "reviewer", Operation: "review_diff", CallCount: 60, AvgLatencyMs: 5600, HealthScore: 58},
			},
			ChartData: []telemetry.ChartPoint{{Label: "d1", Value: 900}, {Label: "d2", Value: 1200}},
		},
	}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNew_StartsLoading(t *testing.T) {
	m := newTestModel()
	if !m.loading {
		t.Error("expected new model to start in loading state")
	}
	if m.Init() == nil {
		t.Error("expected Init to return an animation tick")
	}
}

func TestUpdate_OverviewLoaded(t *testing.T) {
	m := newTestModel()
	tier, _ := m.Update(loadedMsg())
	m = tier.(*Model)

	if m.loading {
		t.Error("expected loading to clear after data arrives")
	}
	if len(m.rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(m.rows))
	}
	// Default sort is health ascending: worst operation first.
	if m.rows[0].Operation != "plan_task" {
		t.Errorf("expected worst operation first, got %q", m.rows[0].Operation)
	}
}

func TestUpdate_Navigation(t *testing.T) {
	m := newTestModel()
	tier, _ := m.Update(loadedMsg())
	m = tier.(*Model)

	tier, _ = m.Update(keyRune('j'))
	m = tier.(*Model)
	if m.selected != 1 {
		t.Errorf("expected selection 1 after j, got %d", m.selected)
	}

	tier, _ = m.Update(keyRune('G'))
	m = tier.(*Model)
	if m.selected != 2 {
		t.Errorf("expected selection at last row after G, got %d", m.selected)
	}

	// j past the end wraps to the top.
	tier, _ = m.Update(keyRune('j'))
	m = tier.(*Model)
	if m.selected != 0 {
		t.Errorf("expected wrap to 0, got %d", m.selected)
	}

	tier, _ = m.Update(keyRune('k'))
	m = tier.(*Model)
	if m.selected != 2 {
		t.Errorf("expected k at top to wrap to bottom, got %d", m.selected)
	}
}

func TestUpdate_EnterDrillsDown(t *testing.T) {
	m := newTestModel()
	tier, _ := m.Update(loadedMsg())
	m = tier.(*Model)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a drill-down command")
	}

	msg, ok := cmd().(app.DrillDownMsg)
	if !ok {
		t.Fatalf("expected DrillDownMsg, got %T", cmd())
	}
	if msg.Transition.To != query.TierPatterns {
		t.Errorf("expected transition to patterns tier, got %v", msg.Transition.To)
	}
	if msg.Transition.Key.Agent != "planner" || msg.Transition.Key.Operation != "plan_task" {
		t.Errorf("unexpected transition key: %+v", msg.Transition.Key)
	}
	if got := msg.Transition.Seeds["operation"]; len(got) != 1 || got[0] != "plan_task" {
		t.Errorf("expected operation seed, got %v", got)
	}
}

func TestUpdate_SortCycle(t *testing.T) {
	m := newTestModel()
	tier, _ := m.Update(loadedMsg())
	m = tier.(*Model)

	tier, _ = m.Update(keyRune('s'))
	m = tier.(*Model)

	k, desc := m.engine.Sort()
	if k != "latency" || !desc {
		t.Errorf("expected latency descending after first s, got %s desc=%v", k, desc)
	}
	if m.rows[0].Operation != "plan_task" {
		t.Errorf("expected slowest operation first, got %q", m.rows[0].Operation)
	}

	tier, _ = m.Update(keyRune('d'))
	m = tier.(*Model)
	if _, desc := m.engine.Sort(); desc {
		t.Error("expected d to flip direction to ascending")
	}
}

func TestUpdate_TierError(t *testing.T) {
	m := newTestModel()

	tier, _ := m.Update(app.TierErrorMsg{Tier: query.TierDetail, Err: errors.New("boom")})
	m = tier.(*Model)
	if m.errorMsg != "" {
		t.Error("errors for other tiers must be ignored")
	}

	tier, _ = m.Update(app.TierErrorMsg{Tier: query.TierOverview, Err: errors.New("telemetry down")})
	m = tier.(*Model)
	if m.errorMsg != "telemetry down" {
		t.Errorf("expected error message, got %q", m.errorMsg)
	}
	if m.loading {
		t.Error("expected loading cleared on error")
	}
}

func TestUpdate_StoryChangeRestartsLoading(t *testing.T) {
	m := newTestModel()
	tier, _ := m.Update(loadedMsg())
	m = tier.(*Model)

	tier, _ = m.Update(app.StoryChangedMsg{Story: models.StoryCost})
	m = tier.(*Model)
	if !m.loading {
		t.Error("expected loading on story change")
	}
}

func TestView_States(t *testing.T) {
	m := newTestModel()

	if view := m.View(); view == "" {
		t.Error("loading view must not be empty")
	}

	tier, _ := m.Update(loadedMsg())
	m = tier.(*Model)
	view := m.View()
	if view == "" {
		t.Fatal("data view must not be empty")
	}

	tier, _ = m.Update(app.TierErrorMsg{Tier: query.TierOverview, Err: errors.New("boom")})
	m = tier.(*Model)
	if view := m.View(); view == "" {
		t.Error("error view must not be empty")
	}
}

func TestView_RoutingOpportunities(t *testing.T) {
	m := newTestModel()

	msg := loadedMsg()
	msg.Overview.RoutingPatterns = []models.RoutingPattern{
		{
			AgentName: "planner", Operation: "plan_task", ModelName: "claude-opus-4",
			Opportunity: models.OpportunityDowngrade, SafePct: 85, CallCount: 40,
		},
		{
			AgentName: "coder", Operation: "write_code", ModelName: "claude-haiku-3-5",
			Opportunity: models.OpportunityKeep, CallCount: 12,
		},
	}
	tier, _ := m.Update(msg)
	m = tier.(*Model)

	view := m.View()
	if !strings.Contains(view, "Routing opportunities") {
		t.Error("view should contain the routing card")
	}
	if !strings.Contains(view, "downgrade") || !strings.Contains(view, "85% safe") {
		t.Error("view should show the downgrade verdict with its safe share")
	}
	if strings.Contains(view, "keep") {
		t.Error("keep verdicts should not be listed")
	}
}

func TestSelectedOperation(t *testing.T) {
	m := newTestModel()
	if m.SelectedOperation() != nil {
		t.Error("expected nil selection before data loads")
	}

	tier, _ := m.Update(loadedMsg())
	m = tier.(*Model)
	sel := m.SelectedOperation()
	if sel == nil || sel.Operation != "plan_task" {
		t.Errorf("unexpected selection: %+v", sel)
	}
}
