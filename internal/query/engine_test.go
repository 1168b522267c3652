package query

import "testing"

type testRow struct {
	id      string
	agent   string
	latency float64
}

func testEngine(rows []testRow) *Engine[testRow] {
	e := New[testRow](
		map[string]func(testRow) string{
			"agent": func(r testRow) string { return r.agent },
		},
		map[string]func(a, b testRow) bool{
			"latency": func(a, b testRow) bool { return a.latency < b.latency },
			"id":      func(a, b testRow) bool { return a.id < b.id },
		},
		map[string]bool{"latency": true},
	)
	e.SetRows(rows)
	return e
}

func tenCalls() []testRow {
	// 3 rows are "slow" (>5000ms); 2 of those belong to agent X.
	return []testRow{
		{"c1", "X", 6000},
		{"c2", "X", 7000},
		{"c3", "Y", 8000},
		{"c4", "X", 1000},
		{"c5", "Y", 1200},
		{"c6", "Y", 900},
		{"c7", "Z", 400},
		{"c8", "Z", 2000},
		{"c9", "X", 300},
		{"c10", "Y", 2500},
	}
}

func TestResult_FilterComposition(t *testing.T) {
	e := testEngine(tenCalls())
	e.SetQuickFilter("slow", func(r testRow) bool { return r.latency > 5000 })
	e.SetColumnFilter("agent", []string{"X"})

	res := e.Result()
	if res.Total != 2 {
		t.Fatalf("Total = %d, want exactly the 2-row intersection", res.Total)
	}
	for _, r := range res.Rows {
		if r.agent != "X" || r.latency <= 5000 {
			t.Errorf("row %v escaped the ANDed filters", r)
		}
	}
}

func TestResult_GroupCountsIndependentOfSelection(t *testing.T) {
	e := testEngine(tenCalls())
	e.SetGroups([]GroupOption[testRow]{
		{ID: "all", Label: "All"},
		{ID: "agent-x", Label: "Agent X", Predicate: func(r testRow) bool { return r.agent == "X" }},
		{ID: "agent-y", Label: "Agent Y", Predicate: func(r testRow) bool { return r.agent == "Y" }},
	})

	base := e.Result()
	if base.GroupCounts["all"] != 10 || base.GroupCounts["agent-x"] != 4 || base.GroupCounts["agent-y"] != 4 {
		t.Fatalf("unexpected base counts: %v", base.GroupCounts)
	}

	// Selecting a different group must not change any group's count.
	e.SelectGroup("agent-x")
	after := e.Result()
	for id, n := range base.GroupCounts {
		if after.GroupCounts[id] != n {
			t.Errorf("group %q count changed from %d to %d on selection", id, n, after.GroupCounts[id])
		}
	}
	if len(after.Rows) != 4 {
		t.Errorf("active group rows = %d, want 4", len(after.Rows))
	}
}

func TestResult_GroupCountsRecomputedOnFilterChange(t *testing.T) {
	e := testEngine(tenCalls())
	e.SetGroups([]GroupOption[testRow]{
		{ID: "all", Label: "All"},
		{ID: "agent-x", Label: "Agent X", Predicate: func(r testRow) bool { return r.agent == "X" }},
	})

	e.SetQuickFilter("slow", func(r testRow) bool { return r.latency > 5000 })
	res := e.Result()
	if res.GroupCounts["all"] != 3 {
		t.Errorf("all count = %d, want 3 slow rows", res.GroupCounts["all"])
	}
	if res.GroupCounts["agent-x"] != 2 {
		t.Errorf("agent-x count = %d, want 2", res.GroupCounts["agent-x"])
	}

	e.SetQuickFilter("", nil)
	res = e.Result()
	if res.GroupCounts["all"] != 10 {
		t.Errorf("counts stale after quick-filter clear: %v", res.GroupCounts)
	}
}

func TestSeed_InteractiveOverridesSeedPerField(t *testing.T) {
	e := testEngine(tenCalls())
	e.Seed(map[string][]string{"agent": {"X"}})

	if got := e.Result().Total; got != 4 {
		t.Fatalf("seeded filter yields %d rows, want 4", got)
	}

	// Interactive change overrides the seed for that field only.
	e.SetColumnFilter("agent", []string{"Y"})
	if got := e.Result().Total; got != 4 {
		t.Fatalf("interactive filter yields %d rows, want 4 (agent Y)", got)
	}
	for _, r := range e.Result().Rows {
		if r.agent != "Y" {
			t.Errorf("row %v should be agent Y after override", r)
		}
	}

	// Clearing the interactive value removes the field entirely, not back
	// to the seed.
	e.SetColumnFilter("agent", nil)
	if got := e.Result().Total; got != 10 {
		t.Errorf("cleared filter yields %d rows, want 10", got)
	}
}

func TestToggleSort(t *testing.T) {
	e := testEngine(tenCalls())

	// First click on a numeric key defaults to descending.
	e.ToggleSort("latency")
	key, desc := e.Sort()
	if key != "latency" || !desc {
		t.Fatalf("Sort() = %q/%v, want latency/desc", key, desc)
	}
	rows := e.Result().Rows
	if rows[0].latency != 8000 {
		t.Errorf("first row latency = %v, want 8000", rows[0].latency)
	}

	// Re-clicking flips direction.
	e.ToggleSort("latency")
	_, desc = e.Sort()
	if desc {
		t.Error("re-click should flip to ascending")
	}
	rows = e.Result().Rows
	if rows[0].latency != 300 {
		t.Errorf("first row latency = %v, want 300", rows[0].latency)
	}

	// Non-numeric key defaults to ascending.
	e.ToggleSort("id")
	key, desc = e.Sort()
	if key != "id" || desc {
		t.Errorf("Sort() = %q/%v, want id/asc", key, desc)
	}
}

func TestSelectGroup_UnknownIDIgnored(t *testing.T) {
	e := testEngine(tenCalls())
	e.SetGroups([]GroupOption[testRow]{{ID: "all", Label: "All"}})
	e.SelectGroup("nope")
	if e.ActiveGroup() != "all" {
		t.Errorf("ActiveGroup = %q, want all", e.ActiveGroup())
	}
}
