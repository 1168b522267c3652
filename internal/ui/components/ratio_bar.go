// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/agentlens-tui/internal/analysis/benchmark"
	"github.com/j-veylop/agentlens-tui/internal/logger"
	"github.com/j-veylop/agentlens-tui/internal/models"
	"github.com/j-veylop/agentlens-tui/internal/ui/styles"
)

// RatioBar renders benchmark comparison bars: each reference value drawn
// proportionally against a shared denominator so the eye can compare a
// call against the fastest and median of its peers.
type RatioBar struct {
	progress progress.Model
}

// NewRatioBar creates a ratio bar with gradient colors.
func NewRatioBar(width int) RatioBar {
	p := progress.New(
		progress.WithScaledGradient("#51cf66", "#ff6b6b"),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	return RatioBar{progress: p}
}

// Init initializes the progress bar model.
func (r RatioBar) Init() tea.Cmd {
	return nil
}

// Update handles progress bar animation messages.
func (r RatioBar) Update(msg tea.Msg) (RatioBar, tea.Cmd) {
	model, cmd := r.progress.Update(msg)
	r.progress = model.(progress.Model)
	return r, cmd
}

// SetWidth sets the progress bar width.
func (r *RatioBar) SetWidth(width int) {
	r.progress.Width = width
}

// View renders one labeled bar scaled to value/denominator.
func (r RatioBar) View(label string, value, denominator float64, unit string, width int) string {
	barWidth := width - 30
	if barWidth < 10 {
		barWidth = 10
	}
	r.progress.Width = barWidth

	pct := benchmark.BarWidth(value, denominator)
	bar := r.progress.ViewAs(pct / 100)

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(16).
		Render(label)

	valueStr := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(12).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%s", value, unit))

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, valueStr)
}

// ComparisonLine renders a single benchmark comparison as text: the ratio
// with its direction, colored by whether the call wins or loses.
func ComparisonLine(label string, c *models.Comparison) string {
	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(22).
		Render(label)

	if c == nil || !c.HasData {
		return labelStr + styles.BlurredStyle.Render("no data")
	}

	text := benchmark.FormatRatio(*c)
	var style lipgloss.Style
	switch c.Direction {
	case models.DirectionFaster, models.DirectionBetter:
		style = styles.FasterStyle
	case models.DirectionSlower, models.DirectionWorse:
		style = styles.SlowerStyle
	default:
		style = styles.BlurredStyle
	}
	return labelStr + style.Render(text)
}

// RenderGradientBar renders just the bar part with gradient colors, filled
// to percent of width.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor("#51cf66", "#ff6b6b", t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

// HealthBar renders a 0-100 health score as a labeled gradient bar.
func HealthBar(score float64, width int) string {
	barWidth := width - 12
	if barWidth < 10 {
		barWidth = 10
	}

	bar := RenderGradientBar(100-score, barWidth)
	scoreStr := styles.GetHealthStyle(score).
		Width(8).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f/100", score))

	return fmt.Sprintf("[%s] %s", bar, scoreStr)
}

// ShimmerBar renders an indeterminate loading bar.
func ShimmerBar(width int, frame int) string {
	if width < 10 {
		width = 10
	}

	cycle := 120
	t := float64(frame%cycle) / float64(cycle)
	var p float64
	if t < 0.5 {
		p = t * 2
	} else {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmerPos := int(eased * float64(width))

	var barChars []string
	for i := 0; i < width; i++ {
		dist := shimmerPos - i
		if dist < 0 {
			dist = -dist
		}

		var char string
		var style lipgloss.Style

		if dist < 3 {
			char = "▓"
			style = lipgloss.NewStyle().Foreground(styles.Primary)
		} else if dist < 5 {
			char = "▒"
			style = lipgloss.NewStyle().Foreground(styles.TextSecondary)
		} else {
			char = "░"
			style = lipgloss.NewStyle().Foreground(styles.BgLight)
		}

		barChars = append(barChars, style.Render(char))
	}

	return strings.Join(barChars, "")
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
