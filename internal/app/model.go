// Package app implements the main Bubble Tea application with tiered
// drill-down navigation.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/agentlens-tui/internal/models"
	"github.com/j-veylop/agentlens-tui/internal/query"
	"github.com/j-veylop/agentlens-tui/internal/services"
	"github.com/j-veylop/agentlens-tui/internal/ui/components"
	"github.com/j-veylop/agentlens-tui/internal/ui/styles"
)

// Tier defines the interface that all drill-down tiers must implement.
type Tier interface {
	// Init initializes the tier and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tier and any commands.
	Update(msg tea.Msg) (Tier, tea.Cmd)

	// View renders the tier content.
	View() string

	// SetSize sets the available size for the tier.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Story    key.Binding
	Window   key.Binding
	Project  key.Binding
	Back     key.Binding
	Refresh  key.Binding
	CopyLink key.Binding
	Help     key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Filter   key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setGlobalKeys(km)
	km = setListKeys(km)
	return km
}

func setGlobalKeys(k KeyMap) KeyMap {
	k.Story = key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7"), key.WithHelp("1-7", "switch story"))
	k.Window = key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cycle time window"))
	k.Project = key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "toggle project filter"))
	k.Back = key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back"))
	k.Refresh = key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh"))
	k.CopyLink = key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "share link"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	return k
}

func setListKeys(k KeyMap) KeyMap {
	k.Up = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	k.Down = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	k.Enter = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drill down"))
	k.PageUp = key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up"))
	k.PageDown = key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down"))
	k.Home = key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "go to top"))
	k.End = key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "go to bottom"))
	k.Filter = key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Story, k.Window, k.Project, k.Back},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Enter, k.Filter, k.CopyLink},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Story bar styles
	StoryBar       lipgloss.Style
	ActiveStory    lipgloss.Style
	InactiveStory  lipgloss.Style
	Breadcrumb     lipgloss.Style
	BreadcrumbLeaf lipgloss.Style

	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Content lipgloss.Style
	Help    lipgloss.Style
	Spinner lipgloss.Style
	Toast   lipgloss.Style

	// Common styles
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.StoryBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveStory = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 1)
	s.InactiveStory = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.Breadcrumb = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.BreadcrumbLeaf = lipgloss.NewStyle().Bold(true).Foreground(highlight)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Help = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.Spinner = lipgloss.NewStyle().Foreground(highlight)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)
	s.Error = lipgloss.NewStyle().Foreground(errorColor)
	s.Success = lipgloss.NewStyle().Foreground(success)
	s.Warning = lipgloss.NewStyle().Foreground(warning)

	return s
}

// Model is the main application model. It owns the navigation stack and
// routes messages to the tier at the top of the stack.
type Model struct {
	// Drill-down navigation
	nav   *query.Stack
	tiers []Tier

	// Shared state
	state    *State
	services *services.Manager
	commands *Commands
	keymap   KeyMap
	styles   Styles

	// UI components
	spinner components.LoadingSpinner

	// Window dimensions
	width  int
	height int

	// UI state
	showHelp bool
	ready    bool

	// configuredProject is the project filter from startup config; p toggles
	// the active scope between it and all projects.
	configuredProject string

	// Service subscription
	eventChannel <-chan services.ServiceEvent
}

// NewModel initializes a new application model.
func NewModel(mgr *services.Manager, state *State) *Model {
	m := &Model{
		nav:      query.NewStack(state.Story()),
		tiers:    make([]Tier, 3), // set externally via SetTiers
		state:    state,
		services: mgr,
		commands: NewCommands(mgr, state),
		keymap:   DefaultKeyMap(),
		styles:   DefaultStyles(),
		spinner:  components.NewSpinner("Loading..."),

		configuredProject: state.Scope().Project,
	}

	return m
}

// SetTiers sets the tier models, indexed by query.TierID.
func (m *Model) SetTiers(tiers []Tier) {
	m.tiers = tiers
	if m.width > 0 && m.height > 0 {
		m.updateTierSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetServices returns the service manager.
func (m *Model) GetServices() *services.Manager {
	return m.services
}

// GetCommands returns the commands helper.
func (m *Model) GetCommands() *Commands {
	return m.commands
}

// GetKeyMap returns the key bindings.
func (m *Model) GetKeyMap() KeyMap {
	return m.keymap
}

// GetStyles returns the application styles.
func (m *Model) GetStyles() Styles {
	return m.styles
}

// ActiveTier returns the tier at the top of the navigation stack.
func (m *Model) ActiveTier() query.TierID {
	return m.nav.Current().Tier
}

// ActiveFrame returns the current navigation frame.
func (m *Model) ActiveFrame() query.Frame {
	return m.nav.Current()
}

// GetWidth returns the window width.
func (m *Model) GetWidth() int {
	return m.width
}

// GetHeight returns the window height.
func (m *Model) GetHeight() int {
	return m.height
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// OpenLink restores a shared deep link: scope, story and drill-down
// position. It must be applied before the program starts; the first fetch
// then targets the linked view directly.
func (m *Model) OpenLink(raw string) error {
	ls, err := query.Decode(raw)
	if err != nil {
		return err
	}

	scope := models.Scope{
		Window:  models.TimeRangeFromDays(ls.WindowDays),
		Project: ls.Project,
	}
	m.state.SetScope(scope)
	m.state.SetStory(ls.Story)
	m.nav.Reset(ls.Story)
	if ls.Tier != query.TierOverview {
		m.nav.Push(ls.Transition())
	}
	return nil
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading...")
	m.state.SetLoading("overview", true)

	cmds := []tea.Cmd{
		m.spinner.Tick(),
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services))
		cmds = append(cmds, m.fetchForFrame(m.nav.Current()))
	}

	for _, tier := range m.tiers {
		if tier != nil {
			cmds = append(cmds, tier.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg, tea.KeyMsg, spinner.TickMsg:
		if cmd := m.handleTeaMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	default:
		if m.isStaleData(msg) {
			return m, tea.Batch(cmds...)
		}
		if appCmds := m.handleAppMsg(msg); len(appCmds) > 0 {
			cmds = append(cmds, appCmds...)
		}
	}

	if cmd := m.updateActiveTier(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// isStaleData reports whether a data message belongs to a superseded
// fetch generation. Stale responses are dropped entirely: they must not
// reach the tiers or they would overwrite newer data.
func (m *Model) isStaleData(msg tea.Msg) bool {
	gen := m.state.Generation()
	switch msg := msg.(type) {
	case OverviewLoadedMsg:
		return msg.Gen != gen
	case PatternsLoadedMsg:
		return msg.Gen != gen
	case CacheOperationLoadedMsg:
		return msg.Gen != gen
	case CacheGroupLoadedMsg:
		return msg.Gen != gen
	case CallLoadedMsg:
		return msg.Gen != gen
	case SiblingsLoadedMsg:
		return msg.Gen != gen
	case TierErrorMsg:
		return msg.Gen != gen
	}
	return false
}

func (m *Model) handleTeaMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case spinner.TickMsg:
		return m.handleSpinnerTick(msg)
	}
	return nil
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		cmds = append(cmds, m.handleTick())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEventMsg(msg)...)
	case OverviewLoadedMsg:
		if msg.Overview != nil {
			m.state.SetRoutingPatterns(msg.Overview.RoutingPatterns)
		}
		m.handleDataLoaded()
	case PatternsLoadedMsg, CacheOperationLoadedMsg,
		CacheGroupLoadedMsg, CallLoadedMsg, SiblingsLoadedMsg:
		m.handleDataLoaded()
	case TierErrorMsg:
		m.handleTierError()
	case DrillDownMsg:
		cmds = append(cmds, m.handleDrillDown(msg)...)
	case DrillUpMsg:
		cmds = append(cmds, m.handleDrillUp()...)
	case ScopeChangedMsg:
		cmds = append(cmds, m.handleScopeChanged(msg)...)
	case StoryChangedMsg:
		cmds = append(cmds, m.handleStoryChanged(msg)...)
	case RefreshMsg:
		cmds = append(cmds, m.handleRefresh()...)
	case AddNotificationMsg:
		cmds = append(cmds, m.handleAddNotification(msg)...)
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(msg.Error.Error()))
	case LinkEncodedMsg:
		cmds = append(cmds, notifyInfoCmd(fmt.Sprintf("View link: %s", msg.Link)))
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTierSizes()
}

func (m *Model) handleSpinnerTick(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return cmd
}

func (m *Model) handleTick() tea.Cmd {
	m.state.ClearExpiredNotifications()
	return defaultTickCmd()
}

func (m *Model) handleServiceEventMsg(msg ServiceEventMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.handleServiceEvent(msg.Event); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.eventChannel != nil {
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	}
	return cmds
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.ThresholdsReloadedEvent:
		m.state.SetThresholds(e.Thresholds)
		// The snapshot cache was invalidated by the manager; refetch so
		// visible classifications pick up the new cutoffs.
		m.state.NextGeneration()
		return tea.Batch(
			notifyInfoCmd("Thresholds reloaded"),
			m.startFetch(m.nav.Current()),
			func() tea.Msg { return ThresholdsReloadedMsg{Thresholds: e.Thresholds} },
		)

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

func (m *Model) handleDataLoaded() {
	m.state.MarkUpdated()
	m.state.SetLoading(m.loadingResource(), false)
	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}
}

func (m *Model) handleTierError() {
	// The tier renders the error itself with a retry hint.
	m.state.SetLoading(m.loadingResource(), false)
	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}
}

func (m *Model) handleDrillDown(msg DrillDownMsg) []tea.Cmd {
	m.nav.Push(msg.Transition)
	m.state.NextGeneration()
	return []tea.Cmd{m.startFetch(m.nav.Current())}
}

func (m *Model) handleDrillUp() []tea.Cmd {
	if m.nav.Depth() <= 1 {
		return nil
	}
	frame := m.nav.Pop()
	m.state.NextGeneration()
	return []tea.Cmd{m.startFetch(frame)}
}

func (m *Model) handleScopeChanged(msg ScopeChangedMsg) []tea.Cmd {
	m.state.SetScope(msg.Scope)
	return []tea.Cmd{m.startFetch(m.nav.Current())}
}

func (m *Model) handleStoryChanged(msg StoryChangedMsg) []tea.Cmd {
	m.state.SetStory(msg.Story)
	m.nav.Reset(msg.Story)
	return []tea.Cmd{m.startFetch(m.nav.Current())}
}

func (m *Model) handleRefresh() []tea.Cmd {
	if m.services == nil {
		return nil
	}
	m.services.InvalidateScope(m.state.Scope())
	m.state.NextGeneration()
	return []tea.Cmd{m.startFetch(m.nav.Current())}
}

func (m *Model) handleAddNotification(msg AddNotificationMsg) []tea.Cmd {
	var cmds []tea.Cmd
	id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
	if msg.Duration > 0 {
		cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
	}
	return cmds
}

// startFetch marks the frame's resource as loading and returns the fetch
// command for it.
func (m *Model) startFetch(frame query.Frame) tea.Cmd {
	m.state.SetLoading(m.loadingResource(), true)
	m.state.SetLoadingNotification("Loading...")
	return m.fetchForFrame(frame)
}

func (m *Model) loadingResource() string {
	switch m.nav.Current().Tier {
	case query.TierPatterns:
		return "patterns"
	case query.TierDetail:
		return "detail"
	default:
		return "overview"
	}
}

// fetchForFrame returns the data fetch command for a navigation frame.
func (m *Model) fetchForFrame(frame query.Frame) tea.Cmd {
	if m.services == nil {
		return nil
	}
	gen := m.state.Generation()
	scope := m.state.Scope()

	switch frame.Tier {
	case query.TierOverview:
		return fetchOverviewCmd(m.services, m.state.Story(), scope, gen)

	case query.TierPatterns:
		if frame.Key.Operation != "" {
			return fetchCacheOperationCmd(m.services, frame.Key.Agent, frame.Key.Operation, scope, gen)
		}
		return fetchPatternsCmd(m.services, scope, gen)

	case query.TierDetail:
		if frame.Key.CallID != "" {
			return tea.Batch(
				fetchCallCmd(m.services, frame.Key.CallID, scope, gen),
				fetchSiblingsCmd(m.services, frame.Key.Agent, frame.Key.Operation, scope, gen),
			)
		}
		return fetchCacheGroupCmd(m.services, frame.Key, scope, gen)
	}
	return nil
}

func (m *Model) updateActiveTier(msg tea.Msg) tea.Cmd {
	tier := int(m.nav.Current().Tier)
	if tier < len(m.tiers) && m.tiers[tier] != nil {
		var cmd tea.Cmd
		m.tiers[tier], cmd = m.tiers[tier].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateTierSizes() {
	contentHeight := m.height - 5
	contentHeight = max(0, contentHeight)

	for _, tier := range m.tiers {
		if tier != nil {
			tier.SetSize(m.width, contentHeight)
		}
	}
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	// Global keybindings (work regardless of tier)
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return nil

	case key.Matches(msg, m.keymap.Story):
		return m.handleStoryKey(msg.String())

	case key.Matches(msg, m.keymap.Window):
		scope := m.state.Scope()
		next := scope.WithWindow(scope.Window.Next())
		return func() tea.Msg { return ScopeChangedMsg{Scope: next} }

	case key.Matches(msg, m.keymap.Project):
		return m.handleProjectToggle()

	case key.Matches(msg, m.keymap.Refresh):
		return func() tea.Msg { return RefreshMsg{} }

	case key.Matches(msg, m.keymap.CopyLink):
		return m.encodeLinkCmd()

	case key.Matches(msg, m.keymap.Back):
		if m.showHelp {
			m.showHelp = false
			return nil
		}
		if m.nav.Depth() > 1 {
			return func() tea.Msg { return DrillUpMsg{} }
		}
	}

	// Let the tier handle other keys
	return nil
}

func (m *Model) handleProjectToggle() tea.Cmd {
	if m.configuredProject == "" {
		return func() tea.Msg {
			return AddNotificationMsg{
				Type:     NotificationInfo,
				Message:  "No project filter configured (set AGENTLENS_PROJECT)",
				Duration: 3 * time.Second,
			}
		}
	}

	scope := m.state.Scope()
	if scope.Project != "" {
		scope = scope.WithProject("")
	} else {
		scope = scope.WithProject(m.configuredProject)
	}
	return func() tea.Msg { return ScopeChangedMsg{Scope: scope} }
}

func (m *Model) handleStoryKey(k string) tea.Cmd {
	idx := int(k[0] - '1')
	stories := models.AllStories()
	if idx < 0 || idx >= len(stories) {
		return nil
	}
	story := stories[idx]
	if story == m.state.Story() && m.nav.Depth() == 1 {
		return nil
	}
	return func() tea.Msg { return StoryChangedMsg{Story: story} }
}

// encodeLinkCmd encodes the current frame as a shareable deep link.
func (m *Model) encodeLinkCmd() tea.Cmd {
	frame := m.nav.Current()
	scope := m.state.Scope()
	link := query.LinkState{
		Story:      frame.Key.Story,
		WindowDays: scope.Window.Days(),
		Project:    scope.Project,
		Tier:       frame.Tier,
		Agent:      frame.Key.Agent,
		Operation:  frame.Key.Operation,
		GroupID:    frame.Key.GroupID,
		CallID:     frame.Key.CallID,
	}
	return func() tea.Msg {
		return LinkEncodedMsg{Link: link.Encode()}
	}
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		if m.width > 0 && m.height > 2 {
			b.WriteString(components.RenderSpinnerCentered(m.spinner, m.width, m.height-2))
		} else {
			b.WriteString(m.styles.Content.Render(m.spinner.ViewWithLabel()))
		}
		return b.String()
	}

	tier := int(m.nav.Current().Tier)
	if tier < len(m.tiers) && m.tiers[tier] != nil {
		b.WriteString(m.tiers[tier].View())
	}

	mainView := b.String()

	if m.showHelp {
		helpView := m.renderHelp()
		mainView = m.overlayCentered(mainView, helpView)
	}

	notifications := m.renderNotifications()

	if len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayHeight := len(overlayLines)
	overlayWidth := lipgloss.Width(overlay)

	// Calculate center position
	y := (m.height - overlayHeight) / 2
	x := (m.width - overlayWidth) / 2

	if y < 0 {
		y = 0
	}
	if x < 0 {
		x = 0
	}

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]

		// Truncate main line to the start of the overlay
		left := ansi.Truncate(mainLine, x, "")

		// Skip 'x + overlayWidth' visual cells for the right part
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		// If the line was shorter than the overlay start, pad it
		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	var tabs []string

	active := m.state.Story()
	for i, story := range models.AllStories() {
		if story == active {
			tabs = append(tabs, m.styles.ActiveStory.Render(fmt.Sprintf("[%d] %s", i+1, story.Title())))
		} else {
			tabs = append(tabs, m.styles.InactiveStory.Render(fmt.Sprintf(" %d  %s", i+1, story.Title())))
		}
	}

	storyBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	crumbs := m.nav.Breadcrumb()
	scope := m.state.Scope()
	scopeLabel := scope.Window.String()
	if scope.Project != "" {
		scopeLabel += " · " + scope.Project
	}

	var crumbParts []string
	for i, c := range crumbs {
		if i == len(crumbs)-1 {
			crumbParts = append(crumbParts, m.styles.BreadcrumbLeaf.Render(c))
		} else {
			crumbParts = append(crumbParts, c)
		}
	}
	breadcrumb := m.styles.Breadcrumb.Render(
		fmt.Sprintf("%s  [%s]", strings.Join(crumbParts, " > "), scopeLabel),
	)

	return m.styles.StoryBar.Width(m.width).Render(storyBar) + "\n" + breadcrumb
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	var toasts []string
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toast := m.styles.Toast.Render(content)
		toasts = append(toasts, toast)
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	if len(toasts) == 0 {
		return mainView
	}

	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	toastWidth := lipgloss.Width(toastStack)
	startX := max(m.width-toastWidth-2, 0)

	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			padding := strings.Repeat(" ", startX-mainLineWidth)
			mainLines[lineIdx] = mainLine + padding + toastLine
		} else {
			truncated := ansi.Truncate(mainLine, startX, "")
			mainLines[lineIdx] = truncated + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Navigation"))
	lines = append(lines, "  1-7        Switch story")
	lines = append(lines, "  Enter      Drill down")
	lines = append(lines, "  Esc        Drill back up")
	lines = append(lines, "  t          Cycle time window")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Actions"))
	lines = append(lines, "  r          Refresh data")
	lines = append(lines, "  L          Share view link")
	lines = append(lines, "  ?          Toggle help")
	lines = append(lines, "  q/Ctrl+C   Quit")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Lists"))
	lines = append(lines, "  j/k, ↑/↓   Move up/down")
	lines = append(lines, "  /          Filter")
	lines = append(lines, "  s          Sort by column")
	lines = append(lines, "")

	tier := int(m.nav.Current().Tier)
	if tier < len(m.tiers) && m.tiers[tier] != nil {
		tierHelp := m.tiers[tier].ShortHelp()
		if len(tierHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tier", m.nav.Current().Tier)))
			for _, binding := range tierHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
		}
	}

	lines = append(lines, "")
	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}
