// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/j-veylop/agentlens-tui/internal/config"
	"github.com/j-veylop/agentlens-tui/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// State holds shared application state: the active scope and story, the
// current analysis thresholds, and UI bookkeeping. It is safe for
// concurrent use; commands read it from goroutines while the update loop
// mutates it.
//
// The generation counter tags in-flight fetches. Every scope or story
// change bumps it, so responses belonging to a superseded view can be
// recognized and dropped instead of overwriting fresher data.
type State struct {
	mu sync.RWMutex

	scope      models.Scope
	story      models.StoryID
	thresholds config.Thresholds
	generation int

	loading     map[string]bool
	lastUpdated time.Time

	routingPatterns []models.RoutingPattern

	notifications   []Notification
	notificationSeq int
}

// NewState creates application state with the given initial scope and
// thresholds, starting on the latency story.
func NewState(scope models.Scope, thresholds config.Thresholds) *State {
	return &State{
		scope:         scope,
		story:         models.StoryLatency,
		thresholds:    thresholds,
		loading:       make(map[string]bool),
		notifications: make([]Notification, 0),
	}
}

// Scope returns the active time window and project filter.
func (s *State) Scope() models.Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scope
}

// SetScope changes the active scope and invalidates in-flight fetches.
func (s *State) SetScope(scope models.Scope) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scope = scope
	s.generation++
	return s.generation
}

// Story returns the active story.
func (s *State) Story() models.StoryID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.story
}

// SetStory changes the active story and invalidates in-flight fetches.
func (s *State) SetStory(story models.StoryID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.story = story
	s.generation++
	return s.generation
}

// Generation returns the current fetch generation.
func (s *State) Generation() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// NextGeneration bumps and returns the fetch generation. Use when
// refetching the same view, e.g. after a manual refresh.
func (s *State) NextGeneration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// Thresholds returns the current analysis thresholds.
func (s *State) Thresholds() config.Thresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thresholds
}

// SetThresholds swaps in reloaded thresholds.
func (s *State) SetThresholds(t config.Thresholds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thresholds = t
}

// SetRoutingPatterns stores the scored routing rows from the latest
// overview fetch. Passing nil clears them.
func (s *State) SetRoutingPatterns(patterns []models.RoutingPattern) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routingPatterns = patterns
}

// RoutingFor returns the scored routing row for an (agent, operation,
// model) combination, or nil when none is known.
func (s *State) RoutingFor(agent, operation, model string) *models.RoutingPattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.routingPatterns {
		if p.AgentName == agent && p.Operation == operation && p.ModelName == model {
			out := p
			return &out
		}
	}
	return nil
}

// SetLoading sets the loading state for a named resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loading {
		s.loading[resource] = true
	} else {
		delete(s.loading, resource)
	}
}

// IsLoading returns true if the named resource is loading.
func (s *State) IsLoading(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[resource]
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.loading) > 0
}

// MarkUpdated records the time of the last successful data load.
func (s *State) MarkUpdated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdated = time.Now()
}

// LastUpdated returns the last time data was loaded.
func (s *State) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// TimeSinceUpdate returns the duration since the last data load.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.lastUpdated)
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  0,
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}
