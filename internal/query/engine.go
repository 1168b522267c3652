// Package query implements the three-tier drill-down state machine: filter,
// sort and group composition over in-memory row sets, with externally seeded
// navigation state.
package query

import "sort"

// GroupOption declares one grouping bucket. A nil Predicate means "all
// rows, unfiltered".
type GroupOption[T any] struct {
	ID        string
	Label     string
	Predicate func(T) bool
}

// Engine composes column filters, one quick-filter, a single sort key and a
// group selection over a row set. All derivation is synchronous and pure:
// Result recomputes everything from the current rows on every call, so there
// is no memoized state to go stale.
type Engine[T any] struct {
	rows []T

	columns     map[string]func(T) string
	sortLess    map[string]func(a, b T) bool
	numericKeys map[string]bool

	// seeded holds externally supplied filter values; session holds values
	// the user set interactively. A session entry overrides the seed for
	// that field only.
	seeded  map[string][]string
	session map[string][]string

	quickID   string
	quickPred func(T) bool

	sortKey  string
	sortDesc bool

	groups      []GroupOption[T]
	activeGroup string
}

// Result is one wholesale recomputation of the visible row set.
type Result[T any] struct {
	Rows        []T
	GroupCounts map[string]int
	Total       int // rows passing column and quick filters, before grouping
}

// New creates an engine with column extractors for set-membership filtering
// and per-key comparators for sorting. Keys present in numericKeys default
// to descending on their first sort click.
func New[T any](columns map[string]func(T) string, sortLess map[string]func(a, b T) bool, numericKeys map[string]bool) *Engine[T] {
	return &Engine[T]{
		columns:     columns,
		sortLess:    sortLess,
		numericKeys: numericKeys,
		seeded:      make(map[string][]string),
		session:     make(map[string][]string),
	}
}

// SetRows replaces the dataset. Rows are shared read-only references; the
// engine never mutates them.
func (e *Engine[T]) SetRows(rows []T) {
	e.rows = rows
}

// Rows returns the unfiltered dataset.
func (e *Engine[T]) Rows() []T {
	return e.rows
}

// Seed installs externally supplied filter values (e.g. from a drill-down
// transition or a deep link). Seeds apply until the user touches the same
// field interactively.
func (e *Engine[T]) Seed(filters map[string][]string) {
	e.seeded = make(map[string][]string, len(filters))
	for field, values := range filters {
		e.seeded[field] = append([]string(nil), values...)
	}
}

// SetColumnFilter sets the interactive filter for one field, overriding any
// seed for that field only. An empty value list clears the field.
func (e *Engine[T]) SetColumnFilter(field string, values []string) {
	if len(values) == 0 {
		e.session[field] = nil
		return
	}
	e.session[field] = append([]string(nil), values...)
}

// ClearColumnFilter removes both the interactive and seeded filter for a field.
func (e *Engine[T]) ClearColumnFilter(field string) {
	delete(e.seeded, field)
	delete(e.session, field)
}

// ActiveFilters returns the effective filter values per field: interactive
// values where present, seeded values otherwise.
func (e *Engine[T]) ActiveFilters() map[string][]string {
	out := make(map[string][]string)
	for field, values := range e.seeded {
		if len(values) > 0 {
			out[field] = values
		}
	}
	for field, values := range e.session {
		if len(values) > 0 {
			out[field] = values
		} else {
			delete(out, field)
		}
	}
	return out
}

// SetQuickFilter installs the single quick-filter predicate, ANDed with all
// column filters. An empty id clears it.
func (e *Engine[T]) SetQuickFilter(id string, pred func(T) bool) {
	e.quickID = id
	e.quickPred = pred
}

// QuickFilterID returns the active quick-filter id, or "".
func (e *Engine[T]) QuickFilterID() string {
	return e.quickID
}

// ToggleSort activates a sort key. Re-clicking the active key flips the
// direction; a new key starts descending for numeric/ratio columns and
// ascending otherwise.
func (e *Engine[T]) ToggleSort(key string) {
	if e.sortKey == key {
		e.sortDesc = !e.sortDesc
		return
	}
	e.sortKey = key
	e.sortDesc = e.numericKeys[key]
}

// Sort returns the active sort key and direction.
func (e *Engine[T]) Sort() (key string, desc bool) {
	return e.sortKey, e.sortDesc
}

// SetSort restores a previously serialized sort state.
func (e *Engine[T]) SetSort(key string, desc bool) {
	e.sortKey = key
	e.sortDesc = desc
}

// SetGroups declares the grouping options.
func (e *Engine[T]) SetGroups(groups []GroupOption[T]) {
	e.groups = groups
	if e.activeGroup == "" && len(groups) > 0 {
		e.activeGroup = groups[0].ID
	}
}

// SelectGroup activates a grouping bucket by id.
func (e *Engine[T]) SelectGroup(id string) {
	for _, g := range e.groups {
		if g.ID == id {
			e.activeGroup = id
			return
		}
	}
}

// ActiveGroup returns the selected group id.
func (e *Engine[T]) ActiveGroup() string {
	return e.activeGroup
}

// Groups returns the declared grouping options.
func (e *Engine[T]) Groups() []GroupOption[T] {
	return e.groups
}

// Result recomputes the filtered, grouped, sorted row set and every group's
// count in one O(n) pass over the dataset. Group counts reflect the column
// and quick filters plus each group's own predicate, independent of which
// group is selected.
func (e *Engine[T]) Result() Result[T] {
	filters := e.ActiveFilters()
	counts := make(map[string]int, len(e.groups))
	for _, g := range e.groups {
		counts[g.ID] = 0
	}

	var active *GroupOption[T]
	for i := range e.groups {
		if e.groups[i].ID == e.activeGroup {
			active = &e.groups[i]
		}
	}

	res := Result[T]{GroupCounts: counts}
	for _, row := range e.rows {
		if !e.passesColumnFilters(row, filters) {
			continue
		}
		if e.quickPred != nil && !e.quickPred(row) {
			continue
		}
		res.Total++

		for _, g := range e.groups {
			if g.Predicate == nil || g.Predicate(row) {
				counts[g.ID]++
			}
		}

		if active == nil || active.Predicate == nil || active.Predicate(row) {
			res.Rows = append(res.Rows, row)
		}
	}

	e.sortRows(res.Rows)
	return res
}

func (e *Engine[T]) passesColumnFilters(row T, filters map[string][]string) bool {
	for field, values := range filters {
		extract, ok := e.columns[field]
		if !ok {
			continue
		}
		if !contains(values, extract(row)) {
			return false
		}
	}
	return true
}

func (e *Engine[T]) sortRows(rows []T) {
	if e.sortKey == "" {
		return
	}
	less, ok := e.sortLess[e.sortKey]
	if !ok {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if e.sortDesc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
