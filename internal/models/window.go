// Package models defines data structures and domain types.
package models

// TimeRange represents the selected telemetry time window.
type TimeRange int

const (
	// TimeRange1Day shows data from the last day.
	TimeRange1Day TimeRange = iota
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days
	// TimeRange30Days shows data from the last 30 days.
	TimeRange30Days
	// TimeRange90Days shows data from the last 90 days.
	TimeRange90Days
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange1Day:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRange90Days:
		return "90 Days"
	default:
		return "Unknown"
	}
}

// Days returns the number of days covered by the time range.
func (t TimeRange) Days() int {
	switch t {
	case TimeRange1Day:
		return 1
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	case TimeRange90Days:
		return 90
	default:
		return 7
	}
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// TimeRangeFromDays maps a day count to its time range. Unrecognized counts
// fall back to the 7-day window.
func TimeRangeFromDays(days int) TimeRange {
	switch days {
	case 1:
		return TimeRange1Day
	case 30:
		return TimeRange30Days
	case 90:
		return TimeRange90Days
	default:
		return TimeRange7Days
	}
}

// Scope is the globally shared query context: the selected time window and an
// optional project filter. It is a value, not mutable global state; changing
// window or project constructs a new Scope and every tier re-derives from it.
type Scope struct {
	Window  TimeRange
	Project string // empty means all projects
}

// WithWindow returns a copy of the scope with a different time window.
func (s Scope) WithWindow(w TimeRange) Scope {
	s.Window = w
	return s
}

// WithProject returns a copy of the scope with a different project filter.
func (s Scope) WithProject(p string) Scope {
	s.Project = p
	return s
}

// StoryID identifies one analytical lens over the call data.
type StoryID string

const (
	StoryLatency StoryID = "latency"
	StoryCost    StoryID = "cost"
	StoryCache   StoryID = "cache"
	StoryRouting StoryID = "routing"
	StoryQuality StoryID = "quality"
	StoryTokens  StoryID = "tokens"
	StoryPrompt  StoryID = "prompt"
)

// AllStories lists the stories in display order.
func AllStories() []StoryID {
	return []StoryID{
		StoryLatency, StoryCost, StoryCache, StoryRouting,
		StoryQuality, StoryTokens, StoryPrompt,
	}
}

// Title returns the display name for a story.
func (s StoryID) Title() string {
	switch s {
	case StoryLatency:
		return "Latency"
	case StoryCost:
		return "Cost"
	case StoryCache:
		return "Cache"
	case StoryRouting:
		return "Routing"
	case StoryQuality:
		return "Quality"
	case StoryTokens:
		return "Tokens"
	case StoryPrompt:
		return "Prompt"
	default:
		return string(s)
	}
}
