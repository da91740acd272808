package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestView_WaitingForFirstSnapshot(t *testing.T) {
	m := sized(NewModel(nil, Options{Interval: 10 * time.Second}), 100, 40)
	out := plain(m.View())

	assert.Contains(t, out, "obision-status | local | waiting for first poll | every 10s")
	assert.Contains(t, out, "Waiting for the first snapshot...")
}

func TestView_Overview(t *testing.T) {
	m := deliver(sized(NewModel(nil, Options{Host: "nas"}), 100, 40), testSnapshot(4))
	out := plain(m.View())

	assert.Contains(t, out, "nas | cycle 4")
	assert.Contains(t, out, "42%")
	assert.Contains(t, out, "62%")
	assert.Contains(t, out, "81%")
	assert.Contains(t, out, "55°C")
	assert.Contains(t, out, "↓ 1.5 Mbps")
	assert.Contains(t, out, "↑ 250 Kbps")
	assert.Contains(t, out, "0.52 0.41 0.30")
	assert.Contains(t, out, "firefox")

	// GPU has no value and says why.
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "nvidia-smi: not found")
}

func TestView_OverviewWarmingUp(t *testing.T) {
	m := deliver(sized(NewModel(nil, Options{}), 100, 40), warmingSnapshot())
	out := plain(m.View())

	assert.Contains(t, out, "...")
	assert.NotContains(t, out, "Mbps")
}

func TestView_OverviewTwoColumns(t *testing.T) {
	m := deliver(sized(NewModel(nil, Options{}), 140, 50), testSnapshot(2))
	out := plain(m.View())

	assert.Contains(t, out, "System")
	assert.Contains(t, out, "Top processes")
}

func TestView_Processes(t *testing.T) {
	m := deliver(sized(NewModel(nil, Options{}), 120, 40), testSnapshot(2))
	m.HandleKeyMsg(runes("2"))
	out := plain(m.View())

	assert.Contains(t, out, "CPU% ▼")
	assert.Contains(t, out, "firefox")
	assert.Contains(t, out, "3 processes")
	assert.Contains(t, out, "Total CPU: 15.6%")
	assert.Contains(t, out, "Total Memory:")
	assert.Contains(t, out, "s sort")
}

func TestView_History(t *testing.T) {
	m := sized(NewModel(nil, Options{}), 100, 60)
	m = deliver(m, testSnapshot(1))
	m = deliver(m, testSnapshot(2))
	m.HandleKeyMsg(runes("3"))
	out := plain(m.View())

	assert.Contains(t, out, "CPU")
	assert.Contains(t, out, "Download")
	assert.NotContains(t, out, "GPU temperature")
}

func TestView_HistoryEmpty(t *testing.T) {
	m := sized(NewModel(nil, Options{}), 100, 40)
	m.HandleKeyMsg(runes("3"))
	assert.Contains(t, plain(m.View()), "No history yet")
}

func TestView_Tabs(t *testing.T) {
	m := sized(NewModel(nil, Options{}), 100, 40)
	out := plain(m.renderTabs())

	assert.Contains(t, out, "1 Overview")
	assert.Contains(t, out, "2 Processes")
	assert.Contains(t, out, "3 History")
}

func TestView_HelpAndQuit(t *testing.T) {
	m := sized(NewModel(nil, Options{}), 100, 40)
	m.HandleKeyMsg(runes("?"))
	assert.Contains(t, plain(m.View()), "Keyboard Shortcuts")

	m.HandleKeyMsg(runes("q"))
	assert.Empty(t, m.View())
}

func TestView_PollerStopped(t *testing.T) {
	m := NewModel(nil, Options{})
	next, _ := m.Update(hubClosedMsg{})
	assert.Contains(t, plain(next.(Model).View()), "poller stopped")
}
