package query

import (
	"reflect"
	"testing"

	"github.com/j-veylop/agentlens-tui/internal/models"
)

func TestLinkState_RoundTrip(t *testing.T) {
	in := LinkState{
		Story:      models.StoryCache,
		WindowDays: 30,
		Project:    "acme",
		Tier:       TierPatterns,
		Agent:      "planner",
		Operation:  "draft",
		Filters:    map[string][]string{"model": {"gpt-5", "claude-sonnet-4-5"}, "agent": {"planner"}},
		Quick:      "active-issue",
		SortKey:    "latency",
		SortDesc:   true,
		Group:      "slow",
	}

	out, err := Decode(in.Encode())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n in: %+v\nout: %+v", in, out)
	}
}

func TestLinkState_DetailTier(t *testing.T) {
	in := LinkState{
		Story:      models.StoryLatency,
		WindowDays: 7,
		Tier:       TierDetail,
		CallID:     "c-42",
	}
	out, err := Decode(in.Encode())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if out.CallID != "c-42" || out.Tier != TierDetail {
		t.Errorf("got %+v", out)
	}
}

func TestDecode_EmptyAndUnknownKeys(t *testing.T) {
	s, err := Decode("")
	if err != nil {
		t.Fatalf("Decode(\"\") error = %v", err)
	}
	if s.Tier != TierOverview {
		t.Errorf("empty link should land on overview, got %v", s.Tier)
	}

	s, err = Decode("bogus=1&tier=99&days=abc")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if s.Tier != TierOverview || s.WindowDays != 0 {
		t.Errorf("malformed values must fall back to zero values, got %+v", s)
	}
}

func TestDecode_Malformed(t *testing.T) {
	if _, err := Decode("%zz"); err == nil {
		t.Error("expected error for invalid query encoding")
	}
}

func TestLinkState_Transition(t *testing.T) {
	s := LinkState{
		Story:     models.StoryRouting,
		Tier:      TierPatterns,
		Agent:     "coder",
		Operation: "review",
		Filters:   map[string][]string{"model": {"gpt-5"}},
	}

	tr := s.Transition()
	if tr.To != TierPatterns {
		t.Errorf("To = %v, want patterns", tr.To)
	}
	if tr.Key.Agent != "coder" || tr.Key.Operation != "review" {
		t.Errorf("Key = %+v", tr.Key)
	}
	if len(tr.Seeds["model"]) != 1 || tr.Seeds["model"][0] != "gpt-5" {
		t.Errorf("Seeds = %v", tr.Seeds)
	}
}
