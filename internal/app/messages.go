package app

import (
	"time"

	"github.com/j-veylop/agentlens-tui/internal/config"
	"github.com/j-veylop/agentlens-tui/internal/models"
	"github.com/j-veylop/agentlens-tui/internal/query"
	"github.com/j-veylop/agentlens-tui/internal/services"
	"github.com/j-veylop/agentlens-tui/internal/telemetry"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// OverviewLoadedMsg carries a loaded story overview. Gen identifies the
// fetch generation the request belonged to; stale generations are dropped.
type OverviewLoadedMsg struct {
	Story    models.StoryID
	Scope    models.Scope
	Gen      int
	Overview *telemetry.StoryOverview
}

// PatternsLoadedMsg carries loaded cache pattern groups for the middle tier.
type PatternsLoadedMsg struct {
	Scope    models.Scope
	Gen      int
	Patterns *telemetry.CachePatternsPayload
}

// CacheOperationLoadedMsg carries the per-operation cache breakdown.
type CacheOperationLoadedMsg struct {
	Scope     models.Scope
	Gen       int
	Agent     string
	Operation string
	Payload   *telemetry.CacheOperationPayload
}

// CacheGroupLoadedMsg carries a single fingerprint group with its calls.
type CacheGroupLoadedMsg struct {
	Scope   models.Scope
	Gen     int
	GroupID string
	Payload *telemetry.CacheGroupPayload
}

// CallLoadedMsg carries a single call record for the detail tier.
type CallLoadedMsg struct {
	Scope models.Scope
	Gen   int
	Call  *models.CallRecord
}

// SiblingsLoadedMsg carries sibling calls sharing the detail call's
// agent and operation, used for benchmark references.
type SiblingsLoadedMsg struct {
	Scope    models.Scope
	Gen      int
	Siblings []models.CallRecord
}

// TierErrorMsg reports a failed fetch for a tier. The tier renders the
// error with a manual retry; nothing retries automatically.
type TierErrorMsg struct {
	Tier query.TierID
	Gen  int
	Err  error
}

// DrillDownMsg requests navigating one tier deeper.
type DrillDownMsg struct {
	Transition query.Transition
}

// DrillUpMsg requests navigating one tier back up.
type DrillUpMsg struct{}

// ScopeChangedMsg signals that the time window or project filter changed.
type ScopeChangedMsg struct {
	Scope models.Scope
}

// StoryChangedMsg signals that the active story changed.
type StoryChangedMsg struct {
	Story models.StoryID
}

// ThresholdsReloadedMsg signals that thresholds were reloaded from disk.
type ThresholdsReloadedMsg struct {
	Thresholds config.Thresholds
}

// RefreshMsg requests a refetch of the current view, bypassing the cache.
type RefreshMsg struct{}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel <-chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// CopyLinkMsg requests encoding the current view as a shareable link.
type CopyLinkMsg struct{}

// LinkEncodedMsg carries the encoded deep link for the current view.
type LinkEncodedMsg struct {
	Link string
}
