package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nirlob/obision-status/internal/metrics"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
var sparklineBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline returns the unstyled sparkline for the most recent width values,
// scaled between lo and hi. When lo == hi the range is taken from the data.
func Sparkline(data []float64, width int, lo, hi float64) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	if lo == hi {
		lo, hi = data[0], data[0]
		for _, v := range data {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}

	var sb strings.Builder
	levels := len(sparklineBlocks)
	for _, v := range data {
		level := levels / 2
		if hi > lo {
			level = int((v - lo) / (hi - lo) * float64(levels-1))
			level = max(0, min(level, levels-1))
		}
		sb.WriteRune(sparklineBlocks[level])
	}
	return sb.String()
}

// RenderSparkline renders a percentage history on a fixed 0-100 scale,
// colored by the usage level of the newest value.
func RenderSparkline(data []float64, width int) string {
	line := Sparkline(data, width, 0, 100)
	if line == "" {
		return ""
	}
	level := metrics.UsageLevel(data[len(data)-1])
	return lipgloss.NewStyle().Foreground(LevelColor(level)).Render(line)
}

// RenderSparklineColor renders a history scaled to its own range in a
// fixed color, for unbounded values such as throughput.
func RenderSparklineColor(data []float64, width int, color lipgloss.Color) string {
	line := Sparkline(data, width, 0, 0)
	if line == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(color).Render(line)
}
