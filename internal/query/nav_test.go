package query

import (
	"reflect"
	"testing"

	"github.com/j-veylop/agentlens-tui/internal/models"
)

func TestStack_PushPop(t *testing.T) {
	s := NewStack(models.StoryCache)
	if s.Depth() != 1 || s.Current().Tier != TierOverview {
		t.Fatalf("new stack: depth=%d tier=%v", s.Depth(), s.Current().Tier)
	}

	s.Push(Transition{To: TierPatterns, Key: NavKey{Story: models.StoryCache, Agent: "planner", Operation: "plan_task"}})
	s.Push(Transition{To: TierDetail, Key: NavKey{Story: models.StoryCache, Agent: "planner", Operation: "plan_task", GroupID: "fp-1"}})

	if s.Depth() != 3 {
		t.Fatalf("Depth() = %d, want 3", s.Depth())
	}

	f := s.Pop()
	if f.Tier != TierPatterns || f.Key.Operation != "plan_task" {
		t.Errorf("Pop() frame = %+v", f)
	}

	s.Pop()
	// The overview frame never pops.
	f = s.Pop()
	if f.Tier != TierOverview || s.Depth() != 1 {
		t.Errorf("popping at overview: frame=%+v depth=%d", f, s.Depth())
	}
}

func TestStack_ResetDiscardsDeepFrames(t *testing.T) {
	s := NewStack(models.StoryCache)
	s.Push(Transition{To: TierPatterns, Key: NavKey{Story: models.StoryCache, Agent: "coder", Operation: "write_code"}})

	s.Reset(models.StoryLatency)
	if s.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", s.Depth())
	}
	if got := s.Current().Key.Story; got != models.StoryLatency {
		t.Errorf("Story = %q, want %q", got, models.StoryLatency)
	}
}

func TestStack_Breadcrumb(t *testing.T) {
	s := NewStack(models.StoryCache)
	s.Push(Transition{To: TierPatterns, Key: NavKey{Story: models.StoryCache, Agent: "planner", Operation: "plan_task"}})
	s.Push(Transition{To: TierDetail, Key: NavKey{Story: models.StoryCache, CallID: "c-42"}})

	want := []string{"Overview", "planner/plan_task", "c-42"}
	if got := s.Breadcrumb(); !reflect.DeepEqual(got, want) {
		t.Errorf("Breadcrumb() = %v, want %v", got, want)
	}
}

func TestStack_BreadcrumbGroupFallsBackToGroupID(t *testing.T) {
	s := NewStack(models.StoryCache)
	s.Push(Transition{To: TierDetail, Key: NavKey{Story: models.StoryCache, GroupID: "fp-9"}})

	crumbs := s.Breadcrumb()
	if crumbs[len(crumbs)-1] != "fp-9" {
		t.Errorf("Breadcrumb() = %v, want trailing %q", crumbs, "fp-9")
	}
}
