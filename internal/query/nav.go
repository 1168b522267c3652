package query

import "github.com/j-veylop/agentlens-tui/internal/models"

// TierID identifies one drill-down level.
type TierID int

const (
	// TierOverview is the per-operation health rollup.
	TierOverview TierID = iota
	// TierPatterns is the filterable pattern/call table for one operation.
	TierPatterns
	// TierDetail is the single call or pattern diagnosis view.
	TierDetail
)

// String returns the display name for a tier.
func (t TierID) String() string {
	switch t {
	case TierOverview:
		return "Overview"
	case TierPatterns:
		return "Patterns"
	case TierDetail:
		return "Detail"
	default:
		return "Unknown"
	}
}

// NavKey identifies what a tier is looking at. Deeper tiers fill more
// fields: Patterns needs (Agent, Operation); Detail needs a CallID or a
// GroupID on top of that.
type NavKey struct {
	Story     models.StoryID
	Agent     string
	Operation string
	GroupID   string
	CallID    string
}

// Transition carries a drill-down step: the target tier, the identifying
// key, and optional pre-seeded filter values for the target's engine.
type Transition struct {
	To    TierID
	Key   NavKey
	Seeds map[string][]string
}

// Frame is one level of the navigation stack.
type Frame struct {
	Tier TierID
	Key  NavKey
}

// Stack is the drill-down history. The overview frame is always at the
// bottom; Push moves deeper, Pop drills back up but never below overview.
type Stack struct {
	frames []Frame
}

// NewStack returns a stack positioned at the overview for a story.
func NewStack(story models.StoryID) *Stack {
	return &Stack{frames: []Frame{{Tier: TierOverview, Key: NavKey{Story: story}}}}
}

// Current returns the active frame.
func (s *Stack) Current() Frame {
	return s.frames[len(s.frames)-1]
}

// Depth returns the number of frames on the stack.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Push applies a drill-down transition.
func (s *Stack) Push(t Transition) {
	s.frames = append(s.frames, Frame{Tier: t.To, Key: t.Key})
}

// Pop drills back up one level and returns the new current frame. Popping
// at the overview is a no-op.
func (s *Stack) Pop() Frame {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
	return s.Current()
}

// Reset drops back to the overview for a story, discarding deeper frames.
func (s *Stack) Reset(story models.StoryID) {
	s.frames = []Frame{{Tier: TierOverview, Key: NavKey{Story: story}}}
}

// Breadcrumb returns the display names of the frames from the bottom up.
func (s *Stack) Breadcrumb() []string {
	out := make([]string, 0, len(s.frames))
	for _, f := range s.frames {
		label := f.Tier.String()
		switch f.Tier {
		case TierPatterns:
			if f.Key.Operation != "" {
				label = f.Key.Agent + "/" + f.Key.Operation
			}
		case TierDetail:
			if f.Key.CallID != "" {
				label = f.Key.CallID
			} else if f.Key.GroupID != "" {
				label = f.Key.GroupID
			}
		}
		out = append(out, label)
	}
	return out
}
