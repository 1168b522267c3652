package overview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/agentlens-tui/internal/analysis/severity"
	"github.com/j-veylop/agentlens-tui/internal/models"
	"github.com/j-veylop/agentlens-tui/internal/ui/components"
	"github.com/j-veylop/agentlens-tui/internal/ui/styles"
)

// View renders the overview tier.
func (m *Model) View() string {
	if m.loading {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if m.data == nil || len(m.data.DetailTable) == 0 {
		return m.renderEmpty()
	}

	sections := []string{
		m.renderHeader(),
		m.renderTrend(),
		m.renderRouting(),
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
		styles.HelpStyle.Render("Loading story overview..."),
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
		styles.HelpStyle.Render("Press r to retry."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render(m.state.Story().Title()),
		"",
		styles.HelpStyle.Render("No calls recorded in this window."),
		styles.HelpStyle.Render("Widen the window with t, or wait for new telemetry."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render(m.state.Story().Title())

	barWidth := max(min(m.width-30, 40), 10)
	health := components.HealthBar(m.data.HealthScore, barWidth)

	var rows []string
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", health))

	if m.data.Summary != "" {
		rows = append(rows, styles.HelpStyle.Render(m.data.Summary))
	}
	if m.data.TopOffender != "" {
		rows = append(rows, styles.HelpStyle.Render("Worst call: "+m.data.TopOffender))
	}
	rows = append(rows, "")

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderTrend() string {
	if len(m.data.ChartData) == 0 {
		return ""
	}

	cardWidth := max(m.width-6, 40)
	chart := components.RenderTrendChart(m.data.ChartData, cardWidth-8, 6, "")

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Trend"), "")
	for _, line := range strings.Split(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	return styles.CardStyle.
		Width(cardWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderRouting lists the scored model-routing opportunities. Only the
// routing story's payload carries them.
func (m *Model) renderRouting() string {
	if len(m.data.RoutingPatterns) == 0 {
		return ""
	}

	cardWidth := max(m.width-6, 40)

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Routing opportunities"), "")
	shown := 0
	for _, p := range m.data.RoutingPatterns {
		if p.Opportunity == models.OpportunityKeep {
			continue
		}
		if shown == 4 {
			rows = append(rows, styles.HelpStyle.Render("  ..."))
			break
		}
		verdict := styles.WarningTextStyle.Render(string(p.Opportunity))
		if p.Opportunity == models.OpportunityDowngrade {
			verdict = styles.SuccessTextStyle.Render(
				fmt.Sprintf("%s (%.0f%% safe)", p.Opportunity, p.SafePct))
		}
		rows = append(rows, fmt.Sprintf("  %s/%s on %s → %s",
			truncate(p.AgentName, 14), truncate(p.Operation, 20), p.ModelName, verdict))
		shown++
	}
	if shown == 0 {
		rows = append(rows, styles.HelpStyle.Render("  Every operation is on a sensible model."))
	}

	return styles.CardStyle.
		Width(cardWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// tableHeader is the fixed column layout of the operations table.
const tableHeader = "  %-14s %-20s %7s %9s %9s %8s %7s"

func (m *Model) renderTable() string {
	cardWidth := max(m.width-6, 60)
	th := m.state.Thresholds()
	latLadder := th.LatencyLadder()
	costLadder := th.CostLadder()
	qualLadder := th.QualityLadder()

	sortKey, desc := m.engine.Sort()
	dir := "↑"
	if desc {
		dir = "↓"
	}

	var rows []string
	rows = append(rows,
		lipgloss.JoinHorizontal(lipgloss.Center,
			styles.CardTitleStyle.Render(fmt.Sprintf("Operations (%d)", len(m.rows))),
			"  ",
			styles.HelpStyle.Render(fmt.Sprintf("sort: %s %s", sortKey, dir)),
		),
		"",
		styles.TableHeaderStyle.Render(fmt.Sprintf(tableHeader,
			"AGENT", "OPERATION", "CALLS", "AVG LAT", "AVG $", "QUALITY", "HEALTH")),
	)

	visible, offset := m.visibleWindow()
	for i, row := range visible {
		idx := offset + i
		rows = append(rows, m.renderTableRow(row, idx == m.selected, latLadder, costLadder, qualLadder))
	}

	rows = append(rows, "", styles.HelpStyle.Render("enter drill into operation · s sort · d direction"))

	return styles.CardStyle.
		Width(cardWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderTableRow(row models.OperationAggregate, selected bool, lat, cost, qual severity.Ladder) string {
	// Pad before styling so ANSI codes do not skew the column widths.
	quality := fmt.Sprintf("%8s", "-")
	if row.AvgQuality > 0 {
		quality = styles.GetSeverityStyle(string(qual.ClassifyValue(row.AvgQuality))).
			Render(fmt.Sprintf("%8.1f", row.AvgQuality))
	}

	latency := styles.GetSeverityStyle(string(lat.ClassifyValue(row.AvgLatencyMs))).
		Render(fmt.Sprintf("%9s", fmt.Sprintf("%.0fms", row.AvgLatencyMs)))
	avgCost := styles.GetSeverityStyle(string(cost.ClassifyValue(row.AvgCost))).
		Render(fmt.Sprintf("%9s", fmt.Sprintf("$%.4f", row.AvgCost)))
	health := styles.GetHealthStyle(row.HealthScore).
		Render(fmt.Sprintf("%7.0f", row.HealthScore))

	line := fmt.Sprintf("%-14s %-20s %7d %s %s %s %s",
		truncate(row.AgentName, 14),
		truncate(row.Operation, 20),
		row.CallCount,
		latency,
		avgCost,
		quality,
		health,
	)

	if selected {
		return styles.TableSelectedStyle.Render("▸ " + line)
	}
	return styles.TableCellStyle.Render("  " + line)
}

// visibleWindow returns the slice of rows that fits the available height,
// keeping the selection in view.
func (m *Model) visibleWindow() ([]models.OperationAggregate, int) {
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
