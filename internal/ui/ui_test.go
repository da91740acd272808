package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/nirlob/obision-status/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelColor(t *testing.T) {
	assert.Equal(t, ColorSuccess, LevelColor(metrics.LevelOK))
	assert.Equal(t, ColorWarning, LevelColor(metrics.LevelWarn))
	assert.Equal(t, ColorError, LevelColor(metrics.LevelCritical))
}

func TestSetColorMode(t *testing.T) {
	orig := lipgloss.ColorProfile()
	t.Cleanup(func() { lipgloss.SetColorProfile(orig) })

	var buf bytes.Buffer

	require.NoError(t, SetColorMode(ColorNever, &buf))
	assert.Equal(t, termenv.Ascii, lipgloss.ColorProfile())

	require.NoError(t, SetColorMode(ColorAlways, &buf))
	assert.NotEqual(t, termenv.Ascii, lipgloss.ColorProfile())

	// A buffer is not a terminal.
	require.NoError(t, SetColorMode(ColorAuto, &buf))
	assert.Equal(t, termenv.Ascii, lipgloss.ColorProfile())

	assert.Error(t, SetColorMode("rainbow", &buf))
}

func TestGaugeBar(t *testing.T) {
	tests := []struct {
		percent float64
		width   int
		want    string
	}{
		{0, 4, "░░░░"},
		{50, 4, "██░░"},
		{100, 4, "████"},
		{150, 4, "████"},
		{-5, 4, "░░░░"},
		{50, 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GaugeBar(tt.percent, tt.width), "percent=%v width=%d", tt.percent, tt.width)
	}
}

func TestRenderGauge_Label(t *testing.T) {
	out := ansi.Strip(RenderGauge(62, 10, metrics.LevelWarn, "62%"))
	assert.Equal(t, "██████░░░░ 62%", out)

	empty := ansi.Strip(RenderEmptyGauge(3, metrics.LabelWarmingUp))
	assert.Equal(t, "░░░ "+metrics.LabelWarmingUp, empty)
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil, 10, 0, 100))
	assert.Equal(t, "▁█", Sparkline([]float64{0, 100}, 10, 0, 100))

	// Only the most recent width values are drawn.
	line := Sparkline([]float64{0, 0, 0, 100}, 2, 0, 100)
	assert.Equal(t, "▁█", line)

	// Flat data with an auto range sits in the middle.
	assert.Equal(t, "▅▅▅", Sparkline([]float64{3, 3, 3}, 5, 0, 0))

	// Auto range scales to the data.
	assert.Equal(t, "▁█", Sparkline([]float64{10, 20}, 5, 0, 0))
}

func TestRenderSparkline_Strips(t *testing.T) {
	out := ansi.Strip(RenderSparkline([]float64{0, 50, 100}, 10))
	assert.Equal(t, 3, len([]rune(out)))
	assert.Empty(t, RenderSparklineColor(nil, 10, ColorInfo))
}

func TestRenderTable(t *testing.T) {
	assert.Empty(t, RenderTable([]TableColumn{{Title: "NAME", Width: 10}}, nil))

	out := ansi.Strip(RenderTable(
		[]TableColumn{{Title: "NAME", Width: 10}, {Title: "CPU", Width: 6}},
		[][]string{{"firefox", "12.5"}, {"code", "3.0"}},
	))
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "firefox")
	assert.Contains(t, out, "3.0")
}

func TestRenderDoctorTable(t *testing.T) {
	assert.Equal(t, "No checks to display", RenderDoctorTable(nil))

	out := ansi.Strip(RenderDoctorTable([]DoctorCheckRow{
		{Status: "pass", Category: "Tools", Message: "ps: /usr/bin/ps", Suggestion: "ignored"},
		{Status: "warn", Category: "Tools", Message: "sensors not found", Suggestion: "Install lm-sensors"},
		{Status: "fail", Category: "Logs", Message: "journalctl failed"},
	}))

	assert.Less(t, strings.Index(out, "Tools"), strings.Index(out, "Logs"))
	assert.Contains(t, out, SymbolSuccess+" ps: /usr/bin/ps")
	assert.Contains(t, out, SymbolWarn+" sensors not found")
	assert.Contains(t, out, "Install lm-sensors")
	assert.NotContains(t, out, "ignored")
	assert.Contains(t, out, SymbolFail+" journalctl failed")
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", PadRight("ab", 4))
	assert.Equal(t, "abcdef", PadRight("abcdef", 4))
}

func TestRenderHeader(t *testing.T) {
	out := ansi.Strip(RenderHeader(HeaderInfo{Version: "v1.0.0", Host: "nas"}))
	assert.Contains(t, out, "obision-status v1.0.0 @ nas")
	assert.Contains(t, out, strings.Repeat("━", HeaderWidth))
}
