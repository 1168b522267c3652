// Package patterns implements the middle drill-down tier: the filterable
// cache pattern table, either scope-wide or narrowed to one operation.
package patterns

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/agentlens-tui/internal/app"
	"github.com/j-veylop/agentlens-tui/internal/models"
	"github.com/j-veylop/agentlens-tui/internal/query"
	"github.com/j-veylop/agentlens-tui/internal/telemetry"
)

// keyMap defines the key bindings specific to the patterns tier.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	First  key.Binding
	Last   key.Binding
	Enter  key.Binding
	Sort   key.Binding
	Flip   key.Binding
	Filter key.Binding
	Clear  key.Binding
	Quick  key.Binding
	Group  key.Binding
}

// defaultKeyMap returns the default key bindings for the patterns tier.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous pattern"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next pattern"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first pattern"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last pattern"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "inspect group"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort column"),
		),
		Flip: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "flip sort direction"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter (field=value)"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filters"),
		),
		Quick: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle wasted-cost filter"),
		),
		Group: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle cache type group"),
		),
	}
}

// quickFilterWasted is the id of the only quick filter this tier offers.
const quickFilterWasted = "wasting-money"

// sortKeys is the cycle order for the s key.
var sortKeys = []string{"wasted", "repeats", "savable", "similarity", "agent"}

// Model represents the patterns tier state.
type Model struct {
	state    *app.State
	commands *app.Commands
	width    int
	height   int
	keys     keyMap

	engine   *query.Engine[models.CachePattern]
	rows     []models.CachePattern
	counts   map[string]int
	total    int
	selected int
	sortIdx  int

	// Scope-wide stats, or the operation the tier was drilled into.
	stats         telemetry.CacheStats
	agent         string
	operation     string
	opportunities []telemetry.CacheOpportunity

	filterInput textinput.Model
	filtering   bool

	loading     bool
	errorMsg    string
	lastRefresh time.Time
	animFrame   int
}

// animationTickMsg drives the loading shimmer.
type animationTickMsg time.Time

// New creates a new patterns tier model.
func New(state *app.State, commands *app.Commands) *Model {
	eng := query.New(
		map[string]func(models.CachePattern) string{
			"agent":     func(p models.CachePattern) string { return p.AgentName },
			"operation": func(p models.CachePattern) string { return p.Operation },
			"type":      func(p models.CachePattern) string { return string(p.CacheType) },
		},
		map[string]func(a, b models.CachePattern) bool{
			"wasted":     func(a, b models.CachePattern) bool { return a.WastedCost < b.WastedCost },
			"repeats":    func(a, b models.CachePattern) bool { return a.RepeatCount < b.RepeatCount },
			"savable":    func(a, b models.CachePattern) bool { return a.SavableTimeMs < b.SavableTimeMs },
			"similarity": func(a, b models.CachePattern) bool { return a.ResponseSimilarity < b.ResponseSimilarity },
			"agent":      func(a, b models.CachePattern) bool { return a.AgentName < b.AgentName },
		},
		map[string]bool{
			"wasted":     true,
			"repeats":    true,
			"savable":    true,
			"similarity": true,
		},
	)
	eng.SetSort("wasted", true)
	eng.SetGroups(cacheTypeGroups())

	input := textinput.New()
	input.Placeholder = "field=value (agent, operation, type)"
	input.CharLimit = 64

	return &Model{
		state:       state,
		commands:    commands,
		keys:        defaultKeyMap(),
		engine:      eng,
		filterInput: input,
		loading:     true,
	}
}

// cacheTypeGroups declares one bucket per cache strategy plus the
// everything bucket.
func cacheTypeGroups() []query.GroupOption[models.CachePattern] {
	byType := func(t models.CacheType) func(models.CachePattern) bool {
		return func(p models.CachePattern) bool { return p.CacheType == t }
	}
	return []query.GroupOption[models.CachePattern]{
		{ID: "all", Label: "All"},
		{ID: "exact", Label: "Exact", Predicate: byType(models.CacheExact)},
		{ID: "stable", Label: "Stable prefix", Predicate: byType(models.CacheStable)},
		{ID: "high_value", Label: "High value", Predicate: byType(models.CacheHighValue)},
		{ID: "semantic", Label: "Semantic", Predicate: byType(models.CacheSemantic)},
	}
}

// Init initializes the patterns tier.
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
	m.filterInput.Width = max(min(width-20, 48), 16)
}

// ShortHelp returns key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Filter, m.keys.Quick, m.keys.Group, m.keys.Sort, m.keys.Enter}
}

// FullHelp returns key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.First, m.keys.Last},
		{m.keys.Filter, m.keys.Clear, m.keys.Quick, m.keys.Group},
		{m.keys.Enter, m.keys.Sort, m.keys.Flip},
	}
}

// Update handles messages for the patterns tier.
func (m *Model) Update(msg tea.Msg) (app.Tier, tea.Cmd) {
	switch msg := msg.(type) {
	case animationTickMsg:
		if m.loading {
			m.animFrame++
			return m, animationTick()
		}
		return m, nil

	case app.DrillDownMsg:
		if msg.Transition.To != query.TierPatterns {
			return m, nil
		}
		m.agent = msg.Transition.Key.Agent
		m.operation = msg.Transition.Key.Operation
		m.opportunities = nil
		m.engine.Seed(msg.Transition.Seeds)
		m.selected = 0
		m.startLoading()
		return m, animationTick()

	case app.PatternsLoadedMsg:
		m.agent = ""
		m.operation = ""
		m.opportunities = nil
		m.stats = msg.Patterns.Stats
		m.engine.SetRows(msg.Patterns.Patterns)
		m.finishLoading()
		return m, nil

	case app.CacheOperationLoadedMsg:
		m.agent = msg.Agent
		m.operation = msg.Operation
		m.opportunities = msg.Payload.Opportunities
		m.engine.SetRows(msg.Payload.Patterns)
		m.finishLoading()
		return m, nil

	case app.TierErrorMsg:
		if msg.Tier == query.TierPatterns {
			m.loading = false
			m.errorMsg = msg.Err.Error()
		}
		return m, nil

	case app.StoryChangedMsg, app.ScopeChangedMsg, app.RefreshMsg, app.DrillUpMsg:
		m.startLoading()
		return m, animationTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.filtering {
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) startLoading() {
	m.loading = true
	m.errorMsg = ""
}

func (m *Model) finishLoading() {
	m.loading = false
	m.errorMsg = ""
	m.lastRefresh = time.Now()
	m.refreshRows()
}

// refreshRows recomputes the visible row set and clamps the selection.
func (m *Model) refreshRows() {
	res := m.engine.Result()
	m.rows = res.Rows
	m.counts = res.GroupCounts
	m.total = res.Total
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (app.Tier, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}
	if m.loading {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filterInput.SetValue("")
		return m, m.filterInput.Focus()

	case key.Matches(msg, m.keys.Clear):
		for field := range m.engine.ActiveFilters() {
			m.engine.ClearColumnFilter(field)
		}
		m.refreshRows()

	case key.Matches(msg, m.keys.Quick):
		if m.engine.QuickFilterID() == quickFilterWasted {
			m.engine.SetQuickFilter("", nil)
		} else {
			m.engine.SetQuickFilter(quickFilterWasted, func(p models.CachePattern) bool {
				return p.WastedCost > 0
			})
		}
		m.refreshRows()

	case key.Matches(msg, m.keys.Group):
		m.cycleGroup()

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

	case key.Matches(msg, m.keys.Up):
		if len(m.rows) > 0 {
			m.selected--
			if m.selected < 0 {
				m.selected = len(m.rows) - 1
			}
		}

	case key.Matches(msg, m.keys.Down):
		if len(m.rows) > 0 {
			m.selected = (m.selected + 1) % len(m.rows)
		}

	case key.Matches(msg, m.keys.First):
		m.selected = 0

	case key.Matches(msg, m.keys.Last):
		m.selected = max(len(m.rows)-1, 0)

	case key.Matches(msg, m.keys.Enter):
		return m, m.drillDown()
	}

	return m, nil
}

// handleFilterKey routes keys while the filter input is focused. Enter
// applies "field=value"; an empty value clears that field; esc cancels.
func (m *Model) handleFilterKey(msg tea.KeyMsg) (app.Tier, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.filtering = false
		m.filterInput.Blur()
		return m, nil

	case tea.KeyEnter:
		m.filtering = false
		m.filterInput.Blur()
		m.applyFilter(m.filterInput.Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *Model) applyFilter(expr string) {
	field, value, ok := strings.Cut(strings.TrimSpace(expr), "=")
	if !ok || field == "" {
		return
	}
	field = strings.TrimSpace(field)
	value = strings.TrimSpace(value)

	if value == "" {
		m.engine.SetColumnFilter(field, nil)
	} else {
		m.engine.SetColumnFilter(field, strings.Split(value, ","))
	}
	m.refreshRows()
}

func (m *Model) cycleGroup() {
	groups := m.engine.Groups()
	if len(groups) == 0 {
		return
	}
	active := m.engine.ActiveGroup()
	for i, g := range groups {
		if g.ID == active {
			m.engine.SelectGroup(groups[(i+1)%len(groups)].ID)
			break
		}
	}
	m.refreshRows()
}

// drillDown navigates into the selected fingerprint group.
func (m *Model) drillDown() tea.Cmd {
	if m.selected >= len(m.rows) {
		return nil
	}
	row := m.rows[m.selected]

	return m.commands.DrillDown(query.Transition{
		To: query.TierDetail,
		Key: query.NavKey{
			Story:     m.state.Story(),
			Agent:     row.AgentName,
			Operation: row.Operation,
			GroupID:   row.GroupID,
		},
	})
}

// SelectedPattern returns the pattern under the cursor, or nil when the
// table is empty.
func (m *Model) SelectedPattern() *models.CachePattern {
	if m.selected >= len(m.rows) {
		return nil
	}
	row := m.rows[m.selected]
	return &row
}
