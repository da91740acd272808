package monitor

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nirlob/obision-status/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewMode(t *testing.T) {
	assert.Equal(t, ViewProcesses, ViewOverview.Next())
	assert.Equal(t, ViewOverview, ViewHistory.Next())
	assert.Equal(t, ViewHistory, ViewOverview.Prev())
	assert.Equal(t, "Processes", ViewProcesses.String())
}

func TestHandleKeyMsg_Views(t *testing.T) {
	m := NewModel(nil, Options{})

	tests := []struct {
		key  tea.KeyMsg
		want ViewMode
	}{
		{runes("2"), ViewProcesses},
		{runes("3"), ViewHistory},
		{tea.KeyMsg{Type: tea.KeyTab}, ViewOverview},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, ViewHistory},
		{tea.KeyMsg{Type: tea.KeyEsc}, ViewOverview},
		{runes("1"), ViewOverview},
	}
	for _, tt := range tests {
		handled, _ := m.HandleKeyMsg(tt.key)
		assert.True(t, handled, tt.key.String())
		assert.Equal(t, tt.want, m.CurrentView(), tt.key.String())
	}
}

func TestHandleKeyMsg_Help(t *testing.T) {
	m := NewModel(nil, Options{})
	m.viewMode = ViewProcesses

	m.HandleKeyMsg(runes("?"))
	assert.True(t, m.showHelp)

	// Esc closes the help without leaving the view.
	m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHelp)
	assert.Equal(t, ViewProcesses, m.viewMode)
}

func TestHandleKeyMsg_Sort(t *testing.T) {
	m := NewModel(nil, Options{})
	require.Equal(t, metrics.SortCPU, m.sortKey)

	m.HandleKeyMsg(runes("s"))
	assert.Equal(t, metrics.SortMemory, m.sortKey)

	m.HandleKeyMsg(runes("a"))
	assert.True(t, m.sortAsc)
}

func TestHandleKeyMsg_Quit(t *testing.T) {
	m := NewModel(nil, Options{})
	handled, cmd := m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.True(t, handled)
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestHandleKeyMsg_Refresh(t *testing.T) {
	called := 0
	m := NewModel(nil, Options{Refresh: func(context.Context) { called++ }})

	handled, cmd := m.HandleKeyMsg(runes("r"))
	assert.True(t, handled)
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, 1, called)

	// Without a refresh hook the key is a no-op.
	m = NewModel(nil, Options{})
	_, cmd = m.HandleKeyMsg(runes("r"))
	assert.Nil(t, cmd)
}

func TestHandleKeyMsg_Unhandled(t *testing.T) {
	m := NewModel(nil, Options{})
	handled, cmd := m.HandleKeyMsg(runes("x"))
	assert.False(t, handled)
	assert.Nil(t, cmd)
}
