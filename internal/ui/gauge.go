package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nirlob/obision-status/internal/metrics"
)

// Gauge block characters.
const (
	BarFilled = '█'
	BarEmpty  = '░'
)

// ClampPercent clamps a percentage to the 0-100 range.
func ClampPercent(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// GaugeBar returns the raw, unstyled bar for percent in width cells.
func GaugeBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(ClampPercent(percent) / 100 * float64(width))
	return strings.Repeat(string(BarFilled), filled) + strings.Repeat(string(BarEmpty), width-filled)
}

// RenderGauge renders a bar colored by level followed by label, e.g.
// "██████░░░░ 62%".
func RenderGauge(percent float64, width int, level metrics.Level, label string) string {
	bar := lipgloss.NewStyle().Foreground(LevelColor(level)).Render(GaugeBar(percent, width))
	if label == "" {
		return bar
	}
	return bar + " " + label
}

// RenderEmptyGauge renders an unfilled, muted bar with a placeholder label,
// for sources that are warming up or unavailable.
func RenderEmptyGauge(width int, label string) string {
	bar := LabelStyle.Render(strings.Repeat(string(BarEmpty), max(width, 0)))
	return bar + " " + LabelStyle.Render(label)
}
