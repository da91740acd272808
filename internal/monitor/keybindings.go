package monitor

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// ViewMode defines the current page of the dashboard.
type ViewMode int

const (
	ViewOverview ViewMode = iota
	ViewProcesses
	ViewHistory
)

var viewModes = []ViewMode{ViewOverview, ViewProcesses, ViewHistory}

// String returns the tab title for the view.
func (v ViewMode) String() string {
	switch v {
	case ViewProcesses:
		return "Processes"
	case ViewHistory:
		return "History"
	default:
		return "Overview"
	}
}

// Next cycles to the following view.
func (v ViewMode) Next() ViewMode {
	return ViewMode((int(v) + 1) % len(viewModes))
}

// Prev cycles to the preceding view.
func (v ViewMode) Prev() ViewMode {
	return ViewMode((int(v) + len(viewModes) - 1) % len(viewModes))
}

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeyRefresh     = "r"
	KeyNextView    = "tab"
	KeyPrevView    = "shift+tab"
	KeyOverview    = "1"
	KeyProcesses   = "2"
	KeyHistory     = "3"
	KeyCycleSort   = "s"
	KeyToggleOrder = "a"
	KeyCollapse    = "esc"
	KeyToggleHelp  = "?"
)

// HandleKeyMsg processes keyboard input.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// Help toggle takes priority
	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeyRefresh:
		return true, m.refreshCmd()

	case KeyNextView:
		m.setView(m.viewMode.Next())
		return true, nil

	case KeyPrevView:
		m.setView(m.viewMode.Prev())
		return true, nil

	case KeyOverview:
		m.setView(ViewOverview)
		return true, nil

	case KeyProcesses:
		m.setView(ViewProcesses)
		return true, nil

	case KeyHistory:
		m.setView(ViewHistory)
		return true, nil

	case KeyCycleSort:
		m.sortKey = m.sortKey.Next()
		m.updateProcessTable()
		return true, nil

	case KeyToggleOrder:
		m.sortAsc = !m.sortAsc
		m.updateProcessTable()
		return true, nil

	case KeyCollapse:
		m.setView(ViewOverview)
		return true, nil
	}

	return false, nil
}

// refreshCmd asks the poller for an immediate cycle. The snapshot arrives
// through the subscription like any other.
func (m *Model) refreshCmd() tea.Cmd {
	refresh := m.opts.Refresh
	if refresh == nil {
		return nil
	}
	return func() tea.Msg {
		refresh(context.Background())
		return nil
	}
}
