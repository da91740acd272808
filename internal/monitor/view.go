package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nirlob/obision-status/internal/metrics"
	"github.com/nirlob/obision-status/internal/sampler"
	"github.com/nirlob/obision-status/internal/ui"
	"github.com/nirlob/obision-status/internal/util"
)

// defaultWidth is used before the first WindowSizeMsg.
const defaultWidth = 80

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.viewMode {
	case ViewProcesses:
		b.WriteString(m.renderProcesses())
	case ViewHistory:
		if m.viewportReady {
			b.WriteString(m.historyViewport.View())
		} else {
			b.WriteString(m.renderHistory())
		}
	default:
		b.WriteString(m.renderOverview())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the title line with host, cycle and freshness.
func (m Model) renderHeader() string {
	host := m.opts.Host
	if host == "" {
		host = "local"
	}

	var update string
	switch {
	case m.latest == nil:
		update = "waiting for first poll"
	case m.SecondsSinceUpdate() == 0:
		update = "updated just now"
	default:
		update = fmt.Sprintf("updated %ds ago", m.SecondsSinceUpdate())
	}

	parts := []string{host}
	if m.latest != nil {
		parts = append(parts, fmt.Sprintf("cycle %d", m.latest.Cycle))
	}
	parts = append(parts, update)
	if m.opts.Interval > 0 {
		parts = append(parts, "every "+m.opts.Interval.String())
	}

	title := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render("obision-status")
	stats := LabelStyle.Render(" | " + strings.Join(parts, " | "))
	line := HeaderStyle.Render(title + stats)
	if m.closed {
		line += " " + ui.ErrorStyle.Render("poller stopped")
	}
	return line
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(viewModes))
	for i, v := range viewModes {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == m.viewMode {
			tabs[i] = TabActiveStyle.Render(label)
		} else {
			tabs[i] = TabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderFooter renders the keyboard hints for the current view.
func (m Model) renderFooter() string {
	hints := []string{"q quit", "r refresh", "tab view"}
	switch m.viewMode {
	case ViewProcesses:
		hints = append(hints, "s sort", "a order", "↑↓ scroll")
	case ViewHistory:
		hints = append(hints, "↑↓ scroll")
	}
	hints = append(hints, "? help")
	return FooterStyle.Render(strings.Join(hints, " | "))
}

// sectionWidth is the width of one section box in the current layout.
func (m Model) sectionWidth() int {
	width := m.width
	if width == 0 {
		width = defaultWidth
	}
	if m.LayoutMode() == LayoutStandard {
		return (width - 1) / 2
	}
	return min(width, 100)
}

func (m Model) renderOverview() string {
	if m.latest == nil {
		return MutedStyle.Render("Waiting for the first snapshot...")
	}

	width := m.sectionWidth()
	left := []string{
		Section("System", "", m.usageLines(width), width),
		Section("Sensors", "", m.sensorLines(), width),
	}
	right := []string{
		Section("Network", "", m.networkLines(width), width),
		Section("Load", "", m.loadLines(), width),
		Section("Top processes", "", m.topProcessLines(), width),
	}

	if m.LayoutMode() == LayoutStandard {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.JoinVertical(lipgloss.Left, left...),
			" ",
			lipgloss.JoinVertical(lipgloss.Left, right...),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, append(left, right...)...)
}

// gaugeRow is one labelled gauge line of the System section.
type gaugeRow struct {
	title   string
	src     metrics.Source
	percent func(*metrics.Snapshot) int
	detail  func(*metrics.Snapshot) string
}

var gaugeRows = []gaugeRow{
	{title: "CPU", src: metrics.SourceCPU, percent: func(s *metrics.Snapshot) int { return s.CPU.Percent }},
	{
		title:   "Memory",
		src:     metrics.SourceMemory,
		percent: func(s *metrics.Snapshot) int { return s.Memory.Percent },
		detail: func(s *metrics.Snapshot) string {
			return util.FormatMemoryKB(s.Memory.UsedMB*1024) + " of " + util.FormatMemoryKB(s.Memory.TotalMB*1024)
		},
	},
	{
		title:   "Disk",
		src:     metrics.SourceDisk,
		percent: func(s *metrics.Snapshot) int { return s.Disk.Percent },
		detail:  func(s *metrics.Snapshot) string { return s.Disk.Mount },
	},
	{
		title:   "GPU",
		src:     metrics.SourceGPU,
		percent: func(s *metrics.Snapshot) int { return s.GPU.Percent },
		detail:  func(s *metrics.Snapshot) string { return s.GPU.Source },
	},
}

const labelWidth = 8

func (m Model) usageLines(width int) []string {
	snap := m.latest
	gaugeWidth := max(min(width-4-labelWidth-6, 40), 10)

	var lines []string
	for _, row := range gaugeRows {
		label := LabelStyle.Render(ui.PadRight(row.title, labelWidth))
		if !snap.Available(row.src) {
			line := label + ui.RenderEmptyGauge(gaugeWidth, snap.Label(row.src))
			lines = append(lines, line+m.reason(row.src, width-lipgloss.Width(line)-6))
			continue
		}

		line := label + ui.RenderGauge(float64(row.percent(snap)), gaugeWidth, snap.Level(row.src), snap.Label(row.src))
		if row.detail != nil && m.LayoutMode() != LayoutMinimal {
			if d := row.detail(snap); d != "" {
				line += MutedStyle.Render("  " + d)
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// reason renders why a source is unavailable, truncated to room cells.
func (m Model) reason(src metrics.Source, room int) string {
	msg := m.latest.Status[src].Message
	if msg == "" || room < 10 || m.LayoutMode() == LayoutMinimal {
		return ""
	}
	return MutedStyle.Render("  " + util.Truncate(msg, room))
}

func (m Model) sensorLines() []string {
	snap := m.latest
	line := func(title string, src metrics.Source) string {
		value := snap.Label(src)
		if snap.Available(src) {
			value = ui.LevelStyle(snap.Level(src)).Render(value)
		} else {
			value = MutedStyle.Render(value)
		}
		return LabelStyle.Render(ui.PadRight(title, labelWidth+4)) + value
	}
	return []string{
		line("CPU temp", metrics.SourceCPUTemp),
		line("GPU temp", metrics.SourceGPUTemp),
	}
}

func (m Model) networkLines(width int) []string {
	snap := m.latest
	if !snap.Available(metrics.SourceNetwork) {
		return []string{MutedStyle.Render(snap.Label(metrics.SourceNetwork))}
	}

	down := "↓ " + util.FormatRate(snap.Network.DownMbps)
	up := "↑ " + util.FormatRate(snap.Network.UpMbps)
	lines := []string{
		lipgloss.NewStyle().Foreground(ColorGraph).Render(ui.PadRight(down, 16)) +
			lipgloss.NewStyle().Foreground(ColorUpload).Render(up),
	}

	// The download gauge reads Mbps as percent, so it fills at 100 Mbps.
	barWidth := max(width-4, 10)
	lines = append(lines, lipgloss.NewStyle().Foreground(ColorGraph).Render(ui.GaugeBar(sampler.GaugeScale(snap.Network.DownMbps), barWidth)))

	if m.LayoutMode() != LayoutMinimal {
		graphWidth := barWidth
		if spark := ui.RenderSparklineColor(m.history.Get(SeriesNetDown, graphWidth), graphWidth, ColorGraph); spark != "" {
			lines = append(lines, spark)
		}
	}
	return lines
}

func (m Model) loadLines() []string {
	return []string{ValueStyle.Render(m.latest.Label(metrics.SourceLoad)) + MutedStyle.Render("  (1, 5, 15 min)")}
}

func (m Model) topProcessLines() []string {
	snap := m.latest
	if !snap.Available(metrics.SourceTopProcesses) {
		return []string{MutedStyle.Render(snap.Label(metrics.SourceTopProcesses))}
	}
	if len(snap.TopProcesses) == 0 {
		return []string{MutedStyle.Render("No processes")}
	}

	lines := make([]string, len(snap.TopProcesses))
	for i, p := range snap.TopProcesses {
		cpu := ui.LevelStyle(metrics.UsageLevel(p.CPU)).Render(fmt.Sprintf("%5.1f%%", p.CPU))
		lines[i] = ui.PadRight(util.Truncate(p.Name, 24), 26) + cpu
	}
	return lines
}

func (m Model) renderProcesses() string {
	if m.latest == nil {
		return MutedStyle.Render("Waiting for the first snapshot...")
	}
	if !m.latest.Available(metrics.SourceProcesses) {
		return MutedStyle.Render("Process list " + m.latest.Label(metrics.SourceProcesses) + ": " + m.latest.Status[metrics.SourceProcesses].Message)
	}

	totals := metrics.Totals(m.latest.Processes)
	summary := LabelStyle.Render(fmt.Sprintf("%d %s", totals.Count, util.Pluralize(totals.Count, "process", "processes"))) +
		"  " + ValueStyle.Render(totals.CPULabel()) +
		"  " + ValueStyle.Render(totals.MemoryLabel())

	return m.procTable.View() + "\n" + summary
}

// seriesStyle says how one history series is titled, scaled and colored.
type seriesStyle struct {
	title  string
	lo, hi float64
	color  ColorFunc
	format func(float64) string
}

func percentColor(v float64) lipgloss.Color {
	return ui.LevelColor(metrics.UsageLevel(v))
}

func temperatureColor(v float64) lipgloss.Color {
	return ui.LevelColor(metrics.TemperatureLevel(v))
}

func percent(v float64) string { return fmt.Sprintf("%.0f%%", v) }
func degrees(v float64) string { return fmt.Sprintf("%.0f°C", v) }

var seriesStyles = map[Series]seriesStyle{
	SeriesCPU:     {title: "CPU", lo: 0, hi: 100, color: percentColor, format: percent},
	SeriesMemory:  {title: "Memory", lo: 0, hi: 100, color: percentColor, format: percent},
	SeriesDisk:    {title: "Disk", lo: 0, hi: 100, color: percentColor, format: percent},
	SeriesGPU:     {title: "GPU", lo: 0, hi: 100, color: percentColor, format: percent},
	SeriesCPUTemp: {title: "CPU temperature", lo: 0, hi: 100, color: temperatureColor, format: degrees},
	SeriesGPUTemp: {title: "GPU temperature", lo: 0, hi: 100, color: temperatureColor, format: degrees},
	SeriesNetDown: {title: "Download", color: FixedColor(ColorGraph), format: util.FormatRate},
	SeriesNetUp:   {title: "Upload", color: FixedColor(ColorUpload), format: util.FormatRate},
	SeriesLoad:    {title: "Load (1 min)", color: FixedColor(ColorGraph), format: func(v float64) string { return fmt.Sprintf("%.2f", v) }},
}

// renderHistory renders a graph section for every series with data.
func (m Model) renderHistory() string {
	width := m.sectionWidth()
	graphWidth := max(width-4, 10)
	height := 3
	if m.LayoutMode() == LayoutMinimal {
		height = 1
	}

	var sections []string
	for _, s := range AllSeries {
		data := m.history.Get(s, graphWidth*2)
		if len(data) == 0 {
			continue
		}
		style := seriesStyles[s]
		value := lipgloss.NewStyle().Foreground(style.color(data[len(data)-1])).Bold(true).Render(style.format(data[len(data)-1]))
		graph := RenderBrailleGraph(data, graphWidth, height, style.lo, style.hi, style.color)
		sections = append(sections, Section(style.title, value, strings.Split(graph, "\n"), width))
	}

	if len(sections) == 0 {
		return MutedStyle.Render("No history yet")
	}

	if m.LayoutMode() == LayoutStandard {
		var rows []string
		for i := 0; i < len(sections); i += 2 {
			if i+1 < len(sections) {
				rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, sections[i], " ", sections[i+1]))
			} else {
				rows = append(rows, sections[i])
			}
		}
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
