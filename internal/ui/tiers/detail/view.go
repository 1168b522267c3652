package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/agentlens-tui/internal/models"
	"github.com/j-veylop/agentlens-tui/internal/ui/components"
	"github.com/j-veylop/agentlens-tui/internal/ui/styles"
)

// View renders the detail tier.
func (m *Model) View() string {
	if m.loading {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if m.call == nil && m.group == nil {
		return m.renderEmpty()
	}

	var sections []string
	if m.call != nil {
		sections = []string{
			m.renderCallHeader(),
			m.renderMetrics(),
			m.renderBenchmark(),
			m.renderDiagnosis(),
			m.renderRouting(),
		}
	} else {
		sections = []string{
			m.renderPattern(),
			m.renderGroupCalls(),
			m.renderDiagnosis(),
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	barWidth := max(min(m.width-10, 48), 12)
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.HelpStyle.Render("Loading diagnosis..."),
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

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Detail"),
		"",
		styles.HelpStyle.Render("Nothing selected."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 50)
}

func (m *Model) renderCallHeader() string {
	c := m.call

	var rows []string
	rows = append(rows, styles.TitleStyle.Render("Call "+c.CallID))
	rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("%s/%s · %s @ %s",
		c.AgentName, c.Operation, c.ModelName, c.Provider)))
	rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("%s · conversation %s · cache %s",
		c.Timestamp.Format("Jan 2 15:04:05"), c.ConversationID, c.CacheStatus)))
	rows = append(rows, "")

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderMetrics() string {
	c := m.call
	th := m.state.Thresholds()

	latency := styles.GetSeverityStyle(string(th.LatencyLadder().ClassifyValue(c.LatencyMs))).
		Render(fmt.Sprintf("%.0fms", c.LatencyMs))
	cost := styles.GetSeverityStyle(string(th.CostLadder().ClassifyValue(c.TotalCost))).
		Render(fmt.Sprintf("$%.4f", c.TotalCost))
	quality := styles.BlurredStyle.Render("not scored")
	if c.HasQuality() {
		quality = styles.GetSeverityStyle(string(th.QualityLadder().Classify(c.QualityScore))).
			Render(fmt.Sprintf("%.1f/10", *c.QualityScore))
	}

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Metrics"), "")
	rows = append(rows, fmt.Sprintf("  Latency   %s", latency))
	rows = append(rows, fmt.Sprintf("  Cost      %s", cost))
	rows = append(rows, fmt.Sprintf("  Quality   %s", quality))
	rows = append(rows, fmt.Sprintf("  Tokens    %d in · %d out (%.0f%% output)",
		c.PromptTokens, c.CompletionTokens, c.OutputRatio()*100))

	return styles.CardStyle.
		Width(m.cardWidth()).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderBenchmark shows the call's latency against its sibling references as
// proportional bars sharing one denominator.
func (m *Model) renderBenchmark() string {
	b := m.buildBenchmark()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Benchmark"), "")

	if b.FastestSameOp == nil && b.FastestSimilar == nil && b.MedianForOperation == nil {
		rows = append(rows, styles.HelpStyle.Render("  No sibling calls to compare against."))
		return styles.CardStyle.Width(m.cardWidth()).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	// The slowest value anchors 100% so every bar stays comparable.
	denom := b.Current
	for _, c := range []*models.Comparison{b.FastestSameOp, b.FastestSimilar, b.MedianForOperation} {
		if c != nil && c.Reference > denom {
			denom = c.Reference
		}
	}

	lineWidth := min(m.cardWidth()-6, 60)
	bar := func(label string, value float64) string {
		return "  " + m.ratioBar.View(label, value, denom, "ms", lineWidth)
	}

	rows = append(rows, bar("this call", b.Current))
	if b.FastestSameOp != nil {
		rows = append(rows, bar("fastest", b.FastestSameOp.Reference))
	}
	if b.FastestSimilar != nil {
		rows = append(rows, bar("fastest (model)", b.FastestSimilar.Reference))
	}
	if b.MedianForOperation != nil {
		rows = append(rows, bar("median", b.MedianForOperation.Reference))
	}

	rows = append(rows, "")
	rows = append(rows, "  "+components.ComparisonLine("vs fastest", b.FastestSameOp))
	rows = append(rows, "  "+components.ComparisonLine("vs same model", b.FastestSimilar))
	rows = append(rows, "  "+components.ComparisonLine("vs median", b.MedianForOperation))

	if b.ShowOptimizationTip {
		rows = append(rows, "")
		rows = append(rows, "  "+styles.WarningTextStyle.Render(
			"This call ran well behind the fastest sibling; inspect its prompt size and model choice."))
	}

	return styles.CardStyle.
		Width(m.cardWidth()).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderDiagnosis() string {
	d := m.diagnose()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Diagnosis"), "")

	if len(d.Factors) == 0 {
		rows = append(rows, "  "+styles.SuccessTextStyle.Render("Healthy: no contributing factors found."))
		return styles.CardStyle.Width(m.cardWidth()).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	if !d.Healthy {
		rows = append(rows, "  "+styles.ErrorTextStyle.Render(
			fmt.Sprintf("Unhealthy · %d critical", d.CriticalCount())))
		rows = append(rows, "")
	}

	for _, f := range d.Factors {
		sev := styles.GetSeverityStyle(f.Severity.String()).
			Render(fmt.Sprintf("[%s]", f.Severity))
		line := fmt.Sprintf("  %s %s", sev, f.Label)
		if f.Impact != "" {
			line += styles.HelpStyle.Render("  " + f.Impact)
		}
		if f.HasFix {
			line += styles.SuccessTextStyle.Render("  fix available")
		}
		rows = append(rows, line)
	}

	return styles.CardStyle.
		Width(m.cardWidth()).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderRouting() string {
	alts := m.alternatives()
	if len(alts) == 0 {
		return ""
	}
	if len(alts) > 5 {
		alts = alts[:5]
	}

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Alternative models"), "")
	rows = append(rows, styles.TableHeaderStyle.Render(
		fmt.Sprintf("  %-20s %4s %12s %9s", "MODEL", "TIER", "EST COST", "SAVINGS")))

	for _, a := range alts {
		savings := fmt.Sprintf("%+.0f%%", a.SavingsPct)
		if a.SavingsPct > 0 {
			savings = styles.SuccessTextStyle.Render(savings)
		} else {
			savings = styles.HelpStyle.Render(savings)
		}
		rows = append(rows, fmt.Sprintf("  %-20s %4d %12s %9s",
			a.Model, a.Tier,
			fmt.Sprintf("$%.4f", a.EstimatedCost),
			savings,
		))
	}

	rows = append(rows, "", styles.HelpStyle.Render(
		"  Estimates reprice this call's tokens; quality may differ across tiers."))

	return styles.CardStyle.
		Width(m.cardWidth()).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderPattern() string {
	p := m.group.Pattern

	var rows []string
	rows = append(rows, styles.TitleStyle.Render("Pattern "+p.GroupID))
	rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("%s/%s", p.AgentName, p.Operation)))
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  Type        %s", styles.CacheTypeStyle.Render(string(p.CacheType))))
	rows = append(rows, fmt.Sprintf("  Repeats     %d", p.RepeatCount))
	rows = append(rows, fmt.Sprintf("  Wasted      %s", styles.WastedCostStyle.Render(fmt.Sprintf("$%.2f", p.WastedCost))))
	rows = append(rows, fmt.Sprintf("  Savable     %.1fs", p.SavableTimeMs/1000))
	if p.ResponseSimilarity > 0 {
		rows = append(rows, fmt.Sprintf("  Similarity  %.0f%%", p.ResponseSimilarity))
	}
	rows = append(rows, "")

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderGroupCalls() string {
	calls := m.group.Calls

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render(fmt.Sprintf("Member calls (%d)", len(calls))), "")
	rows = append(rows, styles.TableHeaderStyle.Render(
		fmt.Sprintf("  %-14s %-18s %9s %9s %6s", "CALL", "MODEL", "LATENCY", "COST", "CACHE")))

	latencies := make([]float64, 0, len(calls))
	callIDs := make([]string, 0, len(calls))
	for _, c := range calls {
		rows = append(rows, fmt.Sprintf("  %-14s %-18s %8.0fms %9s %6s",
			truncate(c.CallID, 14),
			truncate(c.ModelName, 18),
			c.LatencyMs,
			fmt.Sprintf("$%.4f", c.TotalCost),
			c.CacheStatus,
		))
		latencies = append(latencies, c.LatencyMs)
		callIDs = append(callIDs, truncate(c.CallID, 14))
	}

	// A bar per member makes latency outliers inside the group visible.
	if len(calls) > 1 {
		rows = append(rows, "")
		chart := components.RenderBarChart(latencies, callIDs, min(m.cardWidth()-6, 60))
		for _, line := range strings.Split(chart, "\n") {
			rows = append(rows, "  "+line)
		}
	}

	return styles.CardStyle.
		Width(m.cardWidth()).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
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
