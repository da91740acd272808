package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille characters (U+2800-U+28FF) hold a 2x4 dot grid per cell, which
// gives history graphs twice the horizontal and four times the vertical
// resolution of block characters.
const brailleBase = '⠀'

// brailleDots maps [row][col] to the bit for that dot, rows top to bottom.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// ColorFunc picks the color for a graph column from the largest value
// plotted in it.
type ColorFunc func(v float64) lipgloss.Color

// FixedColor returns a ColorFunc that ignores the value.
func FixedColor(c lipgloss.Color) ColorFunc {
	return func(float64) lipgloss.Color { return c }
}

// RenderBrailleGraph renders data as a braille area graph of width cells and
// height rows, newest values on the right. Values are scaled between lo and
// hi; when hi <= lo the range is 0 to the largest value in data.
func RenderBrailleGraph(data []float64, width, height int, lo, hi float64, color ColorFunc) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	points := width * 2
	if len(data) > points {
		data = resampleData(data, points)
	}

	if hi <= lo {
		lo, hi = 0, 0
		for _, v := range data {
			hi = max(hi, v)
		}
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(string(brailleBase), width))
	}
	colMax := make([]float64, width)

	totalDots := height * 4
	offset := points - len(data)
	for i, v := range data {
		col := (i + offset) / 2
		sub := (i + offset) % 2
		colMax[col] = max(colMax[col], v)

		dots := 0
		if hi > lo {
			dots = int((v - lo) / (hi - lo) * float64(totalDots))
		}
		dots = max(0, min(dots, totalDots))
		// A non-zero value always shows at least one dot.
		if dots == 0 && v > lo {
			dots = 1
		}

		for d := 0; d < dots; d++ {
			row := height - 1 - d/4
			grid[row][col] |= rune(1) << brailleDots[3-d%4][sub]
		}
	}

	lines := make([]string, height)
	for r, row := range grid {
		var b strings.Builder
		for c, ch := range row {
			b.WriteString(lipgloss.NewStyle().Foreground(color(colMax[c])).Render(string(ch)))
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}

// resampleData shrinks data to targetSize points, keeping the maximum of
// each bucket so short spikes stay visible.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}
	if len(data) <= targetSize {
		return data
	}

	result := make([]float64, targetSize)
	bucket := float64(len(data)) / float64(targetSize)
	for i := range result {
		start := int(float64(i) * bucket)
		end := min(int(float64(i+1)*bucket), len(data))
		if start >= end {
			start = end - 1
		}
		peak := data[start]
		for _, v := range data[start+1 : end] {
			peak = max(peak, v)
		}
		result[i] = peak
	}
	return result
}
