package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/agentlens-tui/internal/models"
	"github.com/j-veylop/agentlens-tui/internal/query"
	"github.com/j-veylop/agentlens-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// siblingLimit caps how many sibling calls the detail tier loads for
	// benchmark references.
	siblingLimit = 50

	fetchTimeout = 15 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// fetchOverviewCmd loads the overview payload for a story. The generation
// is echoed back in the result so superseded responses can be discarded.
func fetchOverviewCmd(mgr *services.Manager, story models.StoryID, scope models.Scope, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		overview, err := mgr.Overview(ctx, story, scope)
		if err != nil {
			return TierErrorMsg{Tier: query.TierOverview, Gen: gen, Err: err}
		}
		return OverviewLoadedMsg{Story: story, Scope: scope, Gen: gen, Overview: overview}
	}
}

// fetchPatternsCmd loads the cache pattern groups for the middle tier.
func fetchPatternsCmd(mgr *services.Manager, scope models.Scope, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		patterns, err := mgr.CachePatterns(ctx, scope)
		if err != nil {
			return TierErrorMsg{Tier: query.TierPatterns, Gen: gen, Err: err}
		}
		return PatternsLoadedMsg{Scope: scope, Gen: gen, Patterns: patterns}
	}
}

// fetchCacheOperationCmd loads the per-operation cache breakdown.
func fetchCacheOperationCmd(mgr *services.Manager, agent, operation string, scope models.Scope, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		payload, err := mgr.CacheOperation(ctx, agent, operation, scope)
		if err != nil {
			return TierErrorMsg{Tier: query.TierPatterns, Gen: gen, Err: err}
		}
		return CacheOperationLoadedMsg{
			Scope:     scope,
			Gen:       gen,
			Agent:     agent,
			Operation: operation,
			Payload:   payload,
		}
	}
}

// fetchCacheGroupCmd loads one fingerprint group with its member calls.
func fetchCacheGroupCmd(mgr *services.Manager, key query.NavKey, scope models.Scope, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		payload, err := mgr.CacheGroup(ctx, key.Agent, key.Operation, key.GroupID, scope)
		if err != nil {
			return TierErrorMsg{Tier: query.TierDetail, Gen: gen, Err: err}
		}
		return CacheGroupLoadedMsg{Scope: scope, Gen: gen, GroupID: key.GroupID, Payload: payload}
	}
}

// fetchCallCmd loads a single call and, on success, chains a sibling fetch
// so the detail tier can build benchmark comparisons.
func fetchCallCmd(mgr *services.Manager, callID string, scope models.Scope, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		call, err := mgr.Call(ctx, scope, callID)
		if err != nil {
			return TierErrorMsg{Tier: query.TierDetail, Gen: gen, Err: err}
		}
		return CallLoadedMsg{Scope: scope, Gen: gen, Call: call}
	}
}

// fetchSiblingsCmd loads calls sharing an agent and operation.
func fetchSiblingsCmd(mgr *services.Manager, agent, operation string, scope models.Scope, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		siblings, err := mgr.Siblings(ctx, scope, agent, operation, siblingLimit)
		if err != nil {
			return TierErrorMsg{Tier: query.TierDetail, Gen: gen, Err: err}
		}
		return SiblingsLoadedMsg{Scope: scope, Gen: gen, Siblings: siblings}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// Commands provides a public interface to the command functions, for use
// by tier models that hold a reference to the app.
type Commands struct {
	manager *services.Manager
	state   *State
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager, state *State) *Commands {
	return &Commands{manager: mgr, state: state}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// FetchOverview loads the overview for the active story and scope.
func (c *Commands) FetchOverview() tea.Cmd {
	return fetchOverviewCmd(c.manager, c.state.Story(), c.state.Scope(), c.state.Generation())
}

// FetchPatterns loads the cache pattern groups for the active scope.
func (c *Commands) FetchPatterns() tea.Cmd {
	return fetchPatternsCmd(c.manager, c.state.Scope(), c.state.Generation())
}

// FetchCacheOperation loads the cache breakdown for one operation.
func (c *Commands) FetchCacheOperation(agent, operation string) tea.Cmd {
	return fetchCacheOperationCmd(c.manager, agent, operation, c.state.Scope(), c.state.Generation())
}

// FetchCacheGroup loads a fingerprint group.
func (c *Commands) FetchCacheGroup(key query.NavKey) tea.Cmd {
	return fetchCacheGroupCmd(c.manager, key, c.state.Scope(), c.state.Generation())
}

// FetchCall loads a single call record.
func (c *Commands) FetchCall(callID string) tea.Cmd {
	return fetchCallCmd(c.manager, callID, c.state.Scope(), c.state.Generation())
}

// FetchSiblings loads calls sharing an agent and operation for benchmarks.
func (c *Commands) FetchSiblings(agent, operation string) tea.Cmd {
	return fetchSiblingsCmd(c.manager, agent, operation, c.state.Scope(), c.state.Generation())
}

// DrillDown returns a command that requests a drill-down transition.
func (c *Commands) DrillDown(t query.Transition) tea.Cmd {
	return func() tea.Msg {
		return DrillDownMsg{Transition: t}
	}
}

// DrillUp returns a command that requests navigating back up one tier.
func (c *Commands) DrillUp() tea.Cmd {
	return func() tea.Msg {
		return DrillUpMsg{}
	}
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return tea.Quit
}
