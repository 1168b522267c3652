package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/j-veylop/agentlens-tui/internal/models"
)

// LinkState is the serializable form of a drill-down position: scope, key,
// filters, quick-filter, sort and group. It is a pure value with a
// bidirectional query-string mapping, kept apart from the engine so the
// engine has no serialization concerns.
type LinkState struct {
	Story      models.StoryID
	WindowDays int
	Project    string

	Tier      TierID
	Agent     string
	Operation string
	GroupID   string
	CallID    string

	Filters  map[string][]string
	Quick    string
	SortKey  string
	SortDesc bool
	Group    string
}

// reserved query keys; everything else round-trips as a column filter.
const (
	keyStory   = "story"
	keyWindow  = "days"
	keyProject = "project"
	keyTier    = "tier"
	keyAgent   = "agent"
	keyOp      = "operation"
	keyGroupID = "pattern"
	keyCallID  = "call"
	keyQuick   = "quick"
	keySort    = "sort"
	keyDir     = "dir"
	keyGroup   = "group"
	filterPfx  = "f."
)

// Encode serializes a link state into a canonical query string.
func (s LinkState) Encode() string {
	v := url.Values{}
	if s.Story != "" {
		v.Set(keyStory, string(s.Story))
	}
	if s.WindowDays > 0 {
		v.Set(keyWindow, strconv.Itoa(s.WindowDays))
	}
	if s.Project != "" {
		v.Set(keyProject, s.Project)
	}
	if s.Tier != TierOverview {
		v.Set(keyTier, strconv.Itoa(int(s.Tier)))
	}
	if s.Agent != "" {
		v.Set(keyAgent, s.Agent)
	}
	if s.Operation != "" {
		v.Set(keyOp, s.Operation)
	}
	if s.GroupID != "" {
		v.Set(keyGroupID, s.GroupID)
	}
	if s.CallID != "" {
		v.Set(keyCallID, s.CallID)
	}
	if s.Quick != "" {
		v.Set(keyQuick, s.Quick)
	}
	if s.SortKey != "" {
		v.Set(keySort, s.SortKey)
		if s.SortDesc {
			v.Set(keyDir, "desc")
		} else {
			v.Set(keyDir, "asc")
		}
	}
	if s.Group != "" {
		v.Set(keyGroup, s.Group)
	}
	for field, values := range s.Filters {
		for _, val := range values {
			v.Add(filterPfx+field, val)
		}
	}
	return v.Encode()
}

// Decode parses a query string back into a link state. Unknown keys are
// ignored; malformed numeric values fall back to zero values rather than
// failing the whole link.
func Decode(raw string) (LinkState, error) {
	v, err := url.ParseQuery(raw)
	if err != nil {
		return LinkState{}, fmt.Errorf("failed to parse link: %w", err)
	}

	s := LinkState{
		Story:     models.StoryID(v.Get(keyStory)),
		Project:   v.Get(keyProject),
		Agent:     v.Get(keyAgent),
		Operation: v.Get(keyOp),
		GroupID:   v.Get(keyGroupID),
		CallID:    v.Get(keyCallID),
		Quick:     v.Get(keyQuick),
		SortKey:   v.Get(keySort),
		SortDesc:  v.Get(keyDir) == "desc",
		Group:     v.Get(keyGroup),
	}

	if days, err := strconv.Atoi(v.Get(keyWindow)); err == nil {
		s.WindowDays = days
	}
	if tier, err := strconv.Atoi(v.Get(keyTier)); err == nil && tier >= 0 && tier <= int(TierDetail) {
		s.Tier = TierID(tier)
	}

	for key, values := range v {
		if !strings.HasPrefix(key, filterPfx) {
			continue
		}
		field := strings.TrimPrefix(key, filterPfx)
		if field == "" || len(values) == 0 {
			continue
		}
		if s.Filters == nil {
			s.Filters = make(map[string][]string)
		}
		s.Filters[field] = append([]string(nil), values...)
	}

	return s, nil
}

// Transition converts a decoded link into the drill-down transition it
// encodes, seeding the target engine's filters.
func (s LinkState) Transition() Transition {
	return Transition{
		To: s.Tier,
		Key: NavKey{
			Story:     s.Story,
			Agent:     s.Agent,
			Operation: s.Operation,
			GroupID:   s.GroupID,
			CallID:    s.CallID,
		},
		Seeds: s.Filters,
	}
}
