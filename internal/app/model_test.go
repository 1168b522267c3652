package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/agentlens-tui/internal/config"
	"github.com/j-veylop/agentlens-tui/internal/models"
	"github.com/j-veylop/agentlens-tui/internal/query"
)

func newTestModel() *Model {
	state := NewState(models.Scope{Window: models.TimeRange7Days}, config.DefaultThresholds())
	return NewModel(nil, state)
}

func TestNewModel(t *testing.T) {
	model := newTestModel()
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.ActiveTier() != query.TierOverview {
		t.Errorf("ActiveTier = %v, want Overview", model.ActiveTier())
	}
	if len(model.tiers) != 3 {
		t.Errorf("Should have 3 tier placeholders, got %d", len(model.tiers))
	}
}

func TestModel_Init(t *testing.T) {
	model := newTestModel()
	cmd := model.Init()
	if cmd == nil {
		t.Error("Init returned nil command")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model := newTestModel()
	msg := tea.WindowSizeMsg{Width: 100, Height: 50}

	newModel, _ := model.Update(msg)

	m, ok := newModel.(*Model)
	if !ok {
		t.Fatal("Update returned wrong model type")
	}

	if m.width != 100 {
		t.Errorf("Width = %d, want 100", m.width)
	}
	if m.height != 50 {
		t.Errorf("Height = %d, want 50", m.height)
	}
	if !m.ready {
		t.Error("Model should be ready after WindowSizeMsg")
	}
}

func TestModel_StorySwitch(t *testing.T) {
	model := newTestModel()
	model.ready = true
	model.width = 100
	model.height = 50

	model.Update(StoryChangedMsg{Story: models.StoryCost})
	if model.state.Story() != models.StoryCost {
		t.Errorf("Story = %v, want cost", model.state.Story())
	}
	if model.ActiveTier() != query.TierOverview {
		t.Error("story switch should reset to overview")
	}

	// Key binding '2' maps to the second story.
	cmd := model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	if cmd == nil {
		t.Error("Key '3' should return a command")
	}
	msg := cmd()
	changed, ok := msg.(StoryChangedMsg)
	if !ok {
		t.Fatalf("msg = %T, want StoryChangedMsg", msg)
	}
	if changed.Story != models.AllStories()[2] {
		t.Errorf("Story = %v, want %v", changed.Story, models.AllStories()[2])
	}
}

func TestModel_StorySwitchBumpsGeneration(t *testing.T) {
	model := newTestModel()
	before := model.state.Generation()

	model.Update(StoryChangedMsg{Story: models.StoryCache})

	if model.state.Generation() == before {
		t.Error("story change should bump the fetch generation")
	}
}

func TestModel_DrillDownAndUp(t *testing.T) {
	model := newTestModel()

	model.Update(DrillDownMsg{Transition: query.Transition{
		To:  query.TierPatterns,
		Key: query.NavKey{Story: models.StoryLatency, Agent: "planner", Operation: "draft"},
	}})

	if model.ActiveTier() != query.TierPatterns {
		t.Errorf("ActiveTier = %v, want Patterns", model.ActiveTier())
	}
	if model.nav.Depth() != 2 {
		t.Errorf("Depth = %d, want 2", model.nav.Depth())
	}

	model.Update(DrillUpMsg{})
	if model.ActiveTier() != query.TierOverview {
		t.Errorf("ActiveTier = %v, want Overview after drill-up", model.ActiveTier())
	}

	// Drilling up at the overview is a no-op.
	model.Update(DrillUpMsg{})
	if model.nav.Depth() != 1 {
		t.Errorf("Depth = %d, want 1", model.nav.Depth())
	}
}

func TestModel_EscDrillsUp(t *testing.T) {
	model := newTestModel()
	model.nav.Push(query.Transition{
		To:  query.TierPatterns,
		Key: query.NavKey{Story: models.StoryLatency, Agent: "planner", Operation: "draft"},
	})

	cmd := model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("esc should return a command below the overview")
	}
	if _, ok := cmd().(DrillUpMsg); !ok {
		t.Error("esc should produce DrillUpMsg")
	}
}

func TestModel_StaleDataDropped(t *testing.T) {
	model := newTestModel()
	stale := model.state.Generation()
	model.state.NextGeneration()

	if !model.isStaleData(OverviewLoadedMsg{Gen: stale}) {
		t.Error("old-generation overview should be stale")
	}
	if model.isStaleData(OverviewLoadedMsg{Gen: model.state.Generation()}) {
		t.Error("current-generation overview should not be stale")
	}
	if !model.isStaleData(TierErrorMsg{Gen: stale}) {
		t.Error("old-generation error should be stale")
	}
}

func TestModel_WindowCycleKey(t *testing.T) {
	model := newTestModel()

	cmd := model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if cmd == nil {
		t.Fatal("'t' should return a command")
	}
	msg, ok := cmd().(ScopeChangedMsg)
	if !ok {
		t.Fatalf("msg = %T, want ScopeChangedMsg", cmd())
	}
	if msg.Scope.Window != models.TimeRange7Days.Next() {
		t.Errorf("Window = %v, want next window", msg.Scope.Window)
	}
}

func TestModel_ProjectToggleKey(t *testing.T) {
	state := NewState(models.Scope{Window: models.TimeRange7Days, Project: "checkout"}, config.DefaultThresholds())
	model := NewModel(nil, state)

	cmd := model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if cmd == nil {
		t.Fatal("'p' should return a command")
	}
	msg, ok := cmd().(ScopeChangedMsg)
	if !ok {
		t.Fatalf("msg = %T, want ScopeChangedMsg", cmd())
	}
	if msg.Scope.Project != "" {
		t.Errorf("first toggle should clear the filter, got %q", msg.Scope.Project)
	}

	state.SetScope(msg.Scope)
	cmd = model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	msg = cmd().(ScopeChangedMsg)
	if msg.Scope.Project != "checkout" {
		t.Errorf("second toggle should restore the filter, got %q", msg.Scope.Project)
	}
}

func TestModel_ProjectToggleWithoutConfig(t *testing.T) {
	model := newTestModel()

	cmd := model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if cmd == nil {
		t.Fatal("'p' should return a command")
	}
	if _, ok := cmd().(AddNotificationMsg); !ok {
		t.Errorf("msg = %T, want AddNotificationMsg when no project is configured", cmd())
	}
}

func TestModel_Update_Tick(t *testing.T) {
	model := newTestModel()
	msg := TickMsg{Time: time.Now()}

	_, cmd := model.Update(msg)
	if cmd == nil {
		t.Error("TickMsg should return a command (next tick)")
	}
}

func TestModel_View(t *testing.T) {
	model := newTestModel()

	// Not ready
	view := model.View()
	if !strings.Contains(view, "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	// Ready
	model.ready = true
	model.width = 120
	model.height = 40

	view = model.View()
	if !strings.Contains(view, "Latency") {
		t.Error("View should show the latency story in the navbar")
	}
	if !strings.Contains(view, "Overview") {
		t.Error("View should show the breadcrumb")
	}
}

func TestModel_Help(t *testing.T) {
	model := newTestModel()
	model.ready = true
	model.width = 80
	model.height = 24

	model.Update(ToggleHelpMsg{})
	if !model.showHelp {
		t.Error("showHelp should be true")
	}

	view := model.View()
	if !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("View should show help modal")
	}

	// Toggle off via key
	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if model.showHelp {
		t.Error("showHelp should be false after toggle")
	}
}

func TestModel_Notifications(t *testing.T) {
	model := newTestModel()

	msg := AddNotificationMsg{
		Message:  "Test Note",
		Type:     NotificationInfo,
		Duration: 0,
	}

	model.Update(msg)

	notifs := model.state.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(notifs))
	}

	model.ready = true
	model.width = 80
	model.height = 24
	view := model.View()
	if !strings.Contains(view, "Test Note") {
		t.Error("View should show notification")
	}
}

func TestModel_ErrorMsg(t *testing.T) {
	model := newTestModel()

	_, cmd := model.Update(ErrorMsg{Error: errors.New("boom")})
	if cmd == nil {
		t.Fatal("ErrorMsg should produce a notification command")
	}
}

func TestModel_EncodeLink(t *testing.T) {
	model := newTestModel()
	model.nav.Push(query.Transition{
		To:  query.TierDetail,
		Key: query.NavKey{Story: models.StoryLatency, Agent: "planner", Operation: "draft", CallID: "c-42"},
	})

	cmd := model.encodeLinkCmd()
	msg, ok := cmd().(LinkEncodedMsg)
	if !ok {
		t.Fatalf("msg = %T, want LinkEncodedMsg", cmd())
	}
	decoded, err := query.Decode(msg.Link)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.CallID != "c-42" || decoded.Tier != query.TierDetail {
		t.Errorf("decoded = %+v, want call c-42 at detail tier", decoded)
	}
	if decoded.WindowDays != 7 {
		t.Errorf("WindowDays = %d, want 7", decoded.WindowDays)
	}
}

func TestModel_HandleSpinnerTick(t *testing.T) {
	model := newTestModel()
	_, cmd := model.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("Spinner tick should return command")
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(km.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}

func TestDefaultStyles(t *testing.T) {
	s := DefaultStyles()
	// Just check it doesn't panic and returns something
	_ = s
}
