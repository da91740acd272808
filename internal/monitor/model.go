package monitor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nirlob/obision-status/internal/metrics"
	"github.com/nirlob/obision-status/internal/ui"
	"github.com/nirlob/obision-status/internal/util"
)

// LayoutMode represents the responsive layout mode based on terminal size.
type LayoutMode int

const (
	// LayoutMinimal is for terminals < 80 columns: values only, no sparklines
	LayoutMinimal LayoutMode = iota
	// LayoutCompact is for terminals 80-120 columns: one column of sections
	LayoutCompact
	// LayoutStandard is for terminals 120+ columns: two columns of sections
	LayoutStandard
)

// Width breakpoints for layout modes
const (
	BreakpointCompact  = 80
	BreakpointStandard = 120
)

// Rows taken by everything around the page body.
const chromeHeight = 5

// Options configures the dashboard.
type Options struct {
	// Interval is the poll interval, shown in the header.
	Interval time.Duration

	// Host is the remote host being watched; empty means this machine.
	Host string

	// HistorySize is the number of points kept per graph.
	HistorySize int

	// Refresh triggers an immediate poll. Optional.
	Refresh func(ctx context.Context)
}

// Model is the Bubble Tea model for the dashboard. It renders snapshots
// received from a hub subscription and never polls by itself.
type Model struct {
	snapshots <-chan *metrics.Snapshot
	opts      Options
	now       func() time.Time

	latest     *metrics.Snapshot
	history    *History
	lastUpdate time.Time
	closed     bool

	width    int
	height   int
	viewMode ViewMode
	showHelp bool
	quitting bool

	sortKey   metrics.SortKey
	sortAsc   bool
	procTable table.Model

	historyViewport viewport.Model
	viewportReady   bool
}

// snapshotMsg carries a snapshot from the hub.
type snapshotMsg struct {
	snap *metrics.Snapshot
}

// hubClosedMsg signals that the subscription channel was closed.
type hubClosedMsg struct{}

// tickMsg redraws the "updated Ns ago" counter.
type tickMsg time.Time

const tickInterval = time.Second

// NewModel creates a dashboard reading from snapshots.
func NewModel(snapshots <-chan *metrics.Snapshot, opts Options) Model {
	m := Model{
		snapshots: snapshots,
		opts:      opts,
		now:       time.Now,
		history:   NewHistory(opts.HistorySize),
		sortKey:   metrics.SortCPU,
		procTable: ui.NewTable(processColumns(metrics.SortCPU, false, 80), nil, 10),
	}
	m.procTable.Focus()
	return m
}

// Init starts listening for snapshots and the redraw timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.snapshots), tickCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}
		return m.forwardKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case snapshotMsg:
		m.applySnapshot(msg.snap)
		return m, waitForSnapshot(m.snapshots)

	case hubClosedMsg:
		m.closed = true

	case tickMsg:
		return m, tickCmd()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// waitForSnapshot blocks for the next snapshot on ch.
func waitForSnapshot(ch <-chan *metrics.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return hubClosedMsg{}
		}
		return snapshotMsg{snap: snap}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) applySnapshot(snap *metrics.Snapshot) {
	if snap == nil {
		return
	}
	m.latest = snap
	m.lastUpdate = snap.Timestamp
	if m.lastUpdate.IsZero() {
		m.lastUpdate = m.now()
	}
	m.history.Push(snap)
	m.updateProcessTable()
	m.updateHistoryViewport()
}

// forwardKey passes scrolling keys to the component of the current view.
func (m Model) forwardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewProcesses:
		m.procTable, cmd = m.procTable.Update(msg)
	case ViewHistory:
		if m.viewportReady {
			m.historyViewport, cmd = m.historyViewport.Update(msg)
		}
	}
	return m, cmd
}

func (m *Model) setView(v ViewMode) {
	m.viewMode = v
	if v == ViewHistory {
		m.updateHistoryViewport()
	}
}

// resize fits the scrollable components to the terminal.
func (m *Model) resize() {
	bodyHeight := max(m.height-chromeHeight, 3)

	// Table height excludes its header row and the totals line.
	m.procTable.SetHeight(max(bodyHeight-2, 2))
	m.procTable.SetWidth(m.width)
	m.updateProcessTable()

	if !m.viewportReady {
		m.historyViewport = viewport.New(m.width, bodyHeight)
		m.viewportReady = true
	} else {
		m.historyViewport.Width = m.width
		m.historyViewport.Height = bodyHeight
	}
	m.updateHistoryViewport()
}

// updateProcessTable rebuilds the table rows from the latest snapshot in
// the current sort order. The cursor position is kept.
func (m *Model) updateProcessTable() {
	uiCols := processColumns(m.sortKey, m.sortAsc, m.width)
	cols := make([]table.Column, len(uiCols))
	for i, c := range uiCols {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	m.procTable.SetColumns(cols)

	var procs []metrics.Process
	if m.latest != nil {
		procs = metrics.SortProcesses(m.latest.Processes, m.sortKey, m.sortAsc)
	}
	rows := make([]table.Row, len(procs))
	for i, p := range procs {
		rows[i] = table.Row{
			strconv.Itoa(p.PID),
			p.Name,
			fmt.Sprintf("%.1f", p.CPU),
			fmt.Sprintf("%.1f", p.MemPercent),
			util.FormatMemoryKB(p.RSSKB),
			p.Command,
		}
	}
	m.procTable.SetRows(rows)
}

func (m *Model) updateHistoryViewport() {
	if !m.viewportReady {
		return
	}
	m.historyViewport.SetContent(m.renderHistory())
}

// processColumns lays out the process table for width, marking the sort column.
func processColumns(key metrics.SortKey, asc bool, width int) []ui.TableColumn {
	arrow := " ▼"
	if asc {
		arrow = " ▲"
	}
	title := func(name string, k metrics.SortKey) string {
		if k == key {
			return name + arrow
		}
		return name
	}

	cols := []ui.TableColumn{
		{Title: title("PID", metrics.SortPID), Width: 8},
		{Title: title("NAME", metrics.SortName), Width: 22},
		{Title: title("CPU%", metrics.SortCPU), Width: 7},
		{Title: "MEM%", Width: 6},
		{Title: title("MEMORY", metrics.SortMemory), Width: 10},
	}
	used := 0
	for _, c := range cols {
		used += c.Width + 2 // cell padding
	}
	cols = append(cols, ui.TableColumn{Title: "COMMAND", Width: max(width-used-2, 10)})
	return cols
}

// Latest returns the snapshot on screen, or nil before the first one.
func (m Model) Latest() *metrics.Snapshot {
	return m.latest
}

// CurrentView returns the page being shown.
func (m Model) CurrentView() ViewMode {
	return m.viewMode
}

// History returns the graph history.
func (m Model) History() *History {
	return m.history
}

// SecondsSinceUpdate returns how many seconds have passed since the last snapshot.
func (m Model) SecondsSinceUpdate() int {
	if m.lastUpdate.IsZero() {
		return 0
	}
	return max(int(m.now().Sub(m.lastUpdate).Seconds()), 0)
}

// LayoutMode returns the current layout mode based on terminal width.
func (m Model) LayoutMode() LayoutMode {
	switch {
	case m.width >= BreakpointStandard:
		return LayoutStandard
	case m.width >= BreakpointCompact:
		return LayoutCompact
	default:
		return LayoutMinimal
	}
}
