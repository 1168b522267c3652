// Package overview implements the top drill-down tier: the per-operation
// health rollup for the active story.
package overview

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/agentlens-tui/internal/app"
	"github.com/j-veylop/agentlens-tui/internal/models"
	"github.com/j-veylop/agentlens-tui/internal/query"
	"github.com/j-veylop/agentlens-tui/internal/telemetry"
)

// keyMap defines the key bindings specific to the overview tier.
type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	First key.Binding
	Last  key.Binding
	Enter key.Binding
	Sort  key.Binding
	Flip  key.Binding
}

// defaultKeyMap returns the default key bindings for the overview tier.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous operation"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next operation"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first operation"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last operation"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "drill into operation"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort column"),
		),
		Flip: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "flip sort direction"),
		),
	}
}

// animationTickMsg drives the loading shimmer.
type animationTickMsg time.Time

// sortKeys is the cycle order for the s key. Health first: the worst
// operations are what the tier exists to surface.
var sortKeys = []string{"health", "latency", "cost", "calls", "quality"}

// Model represents the overview tier state.
type Model struct {
	state    *app.State
	commands *app.Commands
	width    int
	height   int
	keys     keyMap

	engine   *query.Engine[models.OperationAggregate]
	data     *telemetry.StoryOverview
	rows     []models.OperationAggregate
	selected int
	sortIdx  int

	loading     bool
	errorMsg    string
	lastRefresh time.Time
	animFrame   int
}

// New creates a new overview tier model.
func New(state *app.State, commands *app.Commands) *Model {
	eng := query.New(
		map[string]func(models.OperationAggregate) string{
			"agent":     func(o models.OperationAggregate) string { return o.AgentName },
			"operation": func(o models.OperationAggregate) string { return o.Operation },
		},
		map[string]func(a, b models.OperationAggregate) bool{
			"health":  func(a, b models.OperationAggregate) bool { return a.HealthScore < b.HealthScore },
			"latency": func(a, b models.OperationAggregate) bool { return a.AvgLatencyMs < b.AvgLatencyMs },
			"cost":    func(a, b models.OperationAggregate) bool { return a.TotalCost < b.TotalCost },
			"calls":   func(a, b models.OperationAggregate) bool { return a.CallCount < b.CallCount },
			"quality": func(a, b models.OperationAggregate) bool { return a.AvgQuality < b.AvgQuality },
		},
		map[string]bool{
			"latency": true,
			"cost":    true,
			"calls":   true,
		},
	)
	// Worst health on top by default.
	eng.SetSort("health", false)

	return &Model{
		state:    state,
		commands: commands,
		keys:     defaultKeyMap(),
		engine:   eng,
		loading:  true,
	}
}

// Init initializes the overview tier.
func (m *Model) Init() tea.Cmd {
	return animationTick()
}

func animationTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// SetSize sets the available size for the tier.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Up, m.keys.Down, m.keys.Enter, m.keys.Sort}
}

// FullHelp returns key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.First, m.keys.Last},
		{m.keys.Enter, m.keys.Sort, m.keys.Flip},
	}
}

// Update handles messages for the overview tier.
func (m *Model) Update(msg tea.Msg) (app.Tier, tea.Cmd) {
	switch msg := msg.(type) {
	case animationTickMsg:
		if m.loading {
			m.animFrame++
			return m, animationTick()
		}
		return m, nil

	case app.OverviewLoadedMsg:
		m.data = msg.Overview
		m.engine.SetRows(msg.Overview.DetailTable)
		m.refreshRows()
		m.loading = false
		m.errorMsg = ""
		m.lastRefresh = time.Now()
		return m, nil

	case app.TierErrorMsg:
		if msg.Tier == query.TierOverview {
			m.loading = false
			m.errorMsg = msg.Err.Error()
		}
		return m, nil

	case app.StoryChangedMsg, app.ScopeChangedMsg, app.RefreshMsg, app.DrillUpMsg:
		m.startLoading()
		return m, animationTick()

	case app.ThresholdsReloadedMsg:
		// Severity chips re-classify on the next render; a refetch was
		// already dispatched.
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) startLoading() {
	m.loading = true
	m.errorMsg = ""
}

// refreshRows recomputes the visible row set and clamps the selection.
func (m *Model) refreshRows() {
	m.rows = m.engine.Result().Rows
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.loading || len(m.rows) == 0 {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.selected--
		if m.selected < 0 {
			m.selected = len(m.rows) - 1
		}

	case key.Matches(msg, m.keys.Down):
		m.selected = (m.selected + 1) % len(m.rows)

	case key.Matches(msg, m.keys.First):
		m.selected = 0

	case key.Matches(msg, m.keys.Last):
		m.selected = len(m.rows) - 1

	case key.Matches(msg, m.keys.Sort):
		m.sortIdx = (m.sortIdx + 1) % len(sortKeys)
		m.engine.ToggleSort(sortKeys[m.sortIdx])
		m.refreshRows()

	case key.Matches(msg, m.keys.Flip):
		k, _ := m.engine.Sort()
		if k != "" {
			m.engine.ToggleSort(k)
			m.refreshRows()
		}

	case key.Matches(msg, m.keys.Enter):
		return m.drillDown()
	}

	return nil
}

// drillDown navigates into the cache patterns of the selected operation,
// seeding the pattern table's filters with the operation identity.
func (m *Model) drillDown() tea.Cmd {
	if m.selected >= len(m.rows) {
		return nil
	}
	row := m.rows[m.selected]

	return m.commands.DrillDown(query.Transition{
		To: query.TierPatterns,
		Key: query.NavKey{
			Story:     m.state.Story(),
			Agent:     row.AgentName,
			Operation: row.Operation,
		},
		Seeds: map[string][]string{
			"agent":     {row.AgentName},
			"operation": {row.Operation},
		},
	})
}

// SelectedOperation returns the aggregate under the cursor, or nil when the
// table is empty.
func (m *Model) SelectedOperation() *models.OperationAggregate {
	if m.selected >= len(m.rows) {
		return nil
	}
	row := m.rows[m.selected]
	return &row
}
