package patterns

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/agentlens-tui/internal/models"
	"github.com/j-veylop/agentlens-tui/internal/ui/components"
	"github.com/j-veylop/agentlens-tui/internal/ui/styles"
)

// View renders the patterns tier.
func (m *Model) View() string {
	if m.loading {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}

	sections := []string{
		m.renderHeader(),
		m.renderFilterBar(),
		m.renderTable(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderLoading() string {
	barWidth := max(min(m.width-10, 48), 12)
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.HelpStyle.Render("Loading cache patterns..."),
		"",
		components.ShimmerBar(barWidth, m.animFrame),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderError() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s %s", styles.ErrorTextStyle.Render("Error:"), m.errorMsg),
		"",
		styles.HelpStyle.Render("Press r to retry, esc to go back."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	var rows []string

	if m.operation != "" {
		rows = append(rows, styles.TitleStyle.Render(
			fmt.Sprintf("Cache patterns: %s/%s", m.agent, m.operation)))
		for _, opp := range m.opportunities {
			rows = append(rows, fmt.Sprintf("  %s %s %s",
				styles.SuccessTextStyle.Render("▸"),
				opp.Description,
				styles.WastedCostStyle.Render(fmt.Sprintf("(save $%.2f)", opp.Savings)),
			))
		}
	} else {
		rows = append(rows, styles.TitleStyle.Render("Cache patterns"))
		rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf(
			"%d patterns · %d repeated calls · %s wasted",
			m.stats.PatternCount,
			m.stats.TotalRepeats,
			styles.WastedCostStyle.Render(fmt.Sprintf("$%.2f", m.stats.TotalWastedCost)),
		)))
	}

	rows = append(rows, "")
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderFilterBar shows the group tabs, active filters and the filter input
// when it is open.
func (m *Model) renderFilterBar() string {
	var rows []string

	var tabs []string
	active := m.engine.ActiveGroup()
	for _, g := range m.engine.Groups() {
		label := fmt.Sprintf("%s %s", g.Label,
			styles.GroupCountStyle.Render(fmt.Sprintf("(%d)", m.counts[g.ID])))
		if g.ID == active {
			tabs = append(tabs, styles.FilterActiveStyle.Render(label))
		} else {
			tabs = append(tabs, styles.HelpStyle.Render(label))
		}
	}
	rows = append(rows, strings.Join(tabs, "  "))

	if filters := m.engine.ActiveFilters(); len(filters) > 0 || m.engine.QuickFilterID() != "" {
		var parts []string
		fields := make([]string, 0, len(filters))
		for field := range filters {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			parts = append(parts, fmt.Sprintf("%s=%s", field, strings.Join(filters[field], ",")))
		}
		if m.engine.QuickFilterID() != "" {
			parts = append(parts, m.engine.QuickFilterID())
		}
		rows = append(rows, styles.FilterActiveStyle.Render("⧩ "+strings.Join(parts, "  "))+
			styles.HelpStyle.Render("  (x clears)"))
	}

	if m.filtering {
		rows = append(rows, styles.FocusedStyle.Render("/ ")+m.filterInput.View())
	}

	rows = append(rows, "")
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

const tableHeader = "  %-10s %-12s %-18s %7s %9s %9s %6s"

func (m *Model) renderTable() string {
	cardWidth := max(m.width-6, 60)

	if len(m.rows) == 0 {
		empty := lipgloss.JoinVertical(lipgloss.Left,
			styles.CardTitleStyle.Render("Patterns"),
			"",
			styles.HelpStyle.Render("No repeated-prompt groups match the current filters."),
		)
		return styles.CardStyle.Width(cardWidth).Render(empty)
	}

	sortKey, desc := m.engine.Sort()
	dir := "↑"
	if desc {
		dir = "↓"
	}

	var rows []string
	rows = append(rows,
		lipgloss.JoinHorizontal(lipgloss.Center,
			styles.CardTitleStyle.Render(fmt.Sprintf("Patterns (%d/%d)", len(m.rows), m.total)),
			"  ",
			styles.HelpStyle.Render(fmt.Sprintf("sort: %s %s", sortKey, dir)),
		),
		"",
		styles.TableHeaderStyle.Render(fmt.Sprintf(tableHeader,
			"TYPE", "AGENT", "OPERATION", "REPEAT", "WASTED", "SAVABLE", "SIM")),
	)

	visible, offset := m.visibleWindow()
	for i, row := range visible {
		rows = append(rows, m.renderTableRow(row, offset+i == m.selected))
	}

	rows = append(rows, "", styles.HelpStyle.Render(
		"enter inspect group · / filter · a wasted only · tab group · s sort"))

	return styles.CardStyle.
		Width(cardWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderTableRow(row models.CachePattern, selected bool) string {
	sim := "-"
	if row.ResponseSimilarity > 0 {
		sim = fmt.Sprintf("%.0f%%", row.ResponseSimilarity)
	}

	// Pad before styling so ANSI codes do not skew the column widths.
	line := fmt.Sprintf("%s %-12s %-18s %7d %s %8.1fs %6s",
		styles.CacheTypeStyle.Render(fmt.Sprintf("%-10s", row.CacheType)),
		truncate(row.AgentName, 12),
		truncate(row.Operation, 18),
		row.RepeatCount,
		styles.WastedCostStyle.Render(fmt.Sprintf("%9s", fmt.Sprintf("$%.2f", row.WastedCost))),
		row.SavableTimeMs/1000,
		sim,
	)

	if selected {
		return styles.TableSelectedStyle.Render("▸ " + line)
	}
	return styles.TableCellStyle.Render("  " + line)
}

// visibleWindow returns the slice of rows that fits the available height,
// keeping the selection in view.
func (m *Model) visibleWindow() ([]models.CachePattern, int) {
	maxRows := max(m.height-16, 5)
	if len(m.rows) <= maxRows {
		return m.rows, 0
	}

	offset := m.selected - maxRows/2
	if offset < 0 {
		offset = 0
	}
	if offset+maxRows > len(m.rows) {
		offset = len(m.rows) - maxRows
	}
	return m.rows[offset : offset+maxRows], offset
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
