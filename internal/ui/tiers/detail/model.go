// Package detail implements the deepest drill-down tier: the diagnosis view
// for a single call or a single repeated-prompt group.
package detail

import (
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/agentlens-tui/internal/analysis/benchmark"
	"github.com/j-veylop/agentlens-tui/internal/analysis/diagnosis"
	"github.com/j-veylop/agentlens-tui/internal/analysis/routing"
	"github.com/j-veylop/agentlens-tui/internal/app"
	"github.com/j-veylop/agentlens-tui/internal/models"
	"github.com/j-veylop/agentlens-tui/internal/query"
	"github.com/j-veylop/agentlens-tui/internal/telemetry"
	"github.com/j-veylop/agentlens-tui/internal/ui/components"
)

// keyMap defines the key bindings specific to the detail tier.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

// defaultKeyMap returns the default key bindings for the detail tier.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
	}
}

// animationTickMsg drives the loading shimmer.
type animationTickMsg time.Time

// Model represents the detail tier state.
type Model struct {
	state    *app.State
	commands *app.Commands
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model
	ratioBar components.RatioBar

	registry *diagnosis.Registry
	prices   routing.PriceTable

	// Navigation key of the record being shown.
	callID  string
	groupID string

	// Call mode: the record plus its benchmark siblings.
	call     *models.CallRecord
	siblings []models.CallRecord

	// Group mode: one fingerprint group with its member calls.
	group *telemetry.CacheGroupPayload

	loading     bool
	errorMsg    string
	lastRefresh time.Time
	animFrame   int
}

// New creates a new detail tier model.
func New(state *app.State, commands *app.Commands) *Model {
	return &Model{
		state:    state,
		commands: commands,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		ratioBar: components.NewRatioBar(30),
		registry: diagnosis.DefaultRegistry(),
		prices:   routing.DefaultPriceTable(),
		loading:  true,
	}
}

// Init initializes the detail tier.
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
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 1)
}

// ShortHelp returns key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Up, m.keys.Down, m.keys.PageUp, m.keys.PageDown}
}

// FullHelp returns key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.PageUp, m.keys.PageDown},
	}
}

// Update handles messages for the detail tier.
func (m *Model) Update(msg tea.Msg) (app.Tier, tea.Cmd) {
	switch msg := msg.(type) {
	case animationTickMsg:
		if m.loading {
			m.animFrame++
			return m, animationTick()
		}
		return m, nil

	case app.DrillDownMsg:
		if msg.Transition.To != query.TierDetail {
			return m, nil
		}
		m.callID = msg.Transition.Key.CallID
		m.groupID = msg.Transition.Key.GroupID
		m.call = nil
		m.siblings = nil
		m.group = nil
		m.viewport.GotoTop()
		m.startLoading()
		return m, animationTick()

	case app.CallLoadedMsg:
		m.call = msg.Call
		m.finishLoading()
		return m, nil

	case app.SiblingsLoadedMsg:
		// Siblings may land before or after the call itself; the benchmark
		// section renders with whatever has arrived.
		m.siblings = msg.Siblings
		if m.call != nil {
			m.finishLoading()
		}
		return m, nil

	case app.CacheGroupLoadedMsg:
		m.group = msg.Payload
		m.finishLoading()
		return m, nil

	case app.TierErrorMsg:
		if msg.Tier == query.TierDetail {
			m.loading = false
			m.errorMsg = msg.Err.Error()
		}
		return m, nil

	case app.ScopeChangedMsg, app.RefreshMsg:
		m.startLoading()
		return m, animationTick()

	case tea.KeyMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
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
}

// buildBenchmark derives the reference values from the sibling calls and
// compares the current call's latency against them. The call itself is
// excluded from its own reference pool.
func (m *Model) buildBenchmark() models.Benchmark {
	th := m.state.Thresholds()

	var latencies []float64
	var similar []float64
	for _, s := range m.siblings {
		if s.CallID == m.call.CallID {
			continue
		}
		if s.LatencyMs <= 0 {
			continue
		}
		latencies = append(latencies, s.LatencyMs)
		if s.ModelName == m.call.ModelName {
			similar = append(similar, s.LatencyMs)
		}
	}

	var refs benchmark.References
	if len(latencies) > 0 {
		refs.FastestSameOp = minOf(latencies)
		refs.MedianForOp = medianOf(latencies)
	}
	if len(similar) > 0 {
		refs.FastestSimilar = minOf(similar)
	}

	return benchmark.Build(m.call.LatencyMs, refs, false, th.CalloutRatio)
}

// diagnose runs the rule registry over whatever record is loaded.
func (m *Model) diagnose() models.Diagnosis {
	th := m.state.Thresholds()

	if m.call != nil {
		bench := m.buildBenchmark()
		return m.registry.Diagnose(diagnosis.Input{
			Call:           m.call,
			Benchmark:      &bench,
			RoutingPattern: m.state.RoutingFor(m.call.AgentName, m.call.Operation, m.call.ModelName),
		}, th)
	}

	if m.group != nil && len(m.group.Calls) > 0 {
		// The group is diagnosed through its first member call; the pattern
		// itself carries the cache-side evidence.
		pattern := m.group.Pattern
		return m.registry.Diagnose(diagnosis.Input{
			Call:         &m.group.Calls[0],
			CachePattern: &pattern,
		}, th)
	}

	return models.Diagnosis{Healthy: true}
}

// alternatives builds the alternative-model cost table for the loaded call.
func (m *Model) alternatives() []routing.Alternative {
	if m.call == nil {
		return nil
	}
	return routing.Alternatives(
		m.call.ModelName,
		m.call.PromptTokens,
		m.call.CompletionTokens,
		m.call.TotalCost,
		m.prices,
	)
}

func minOf(vs []float64) *float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return &m
}

func medianOf(vs []float64) *float64 {
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	med := sorted[mid]
	if len(sorted)%2 == 0 {
		med = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &med
}
