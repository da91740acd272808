package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nirlob/obision-status/pkg/sshutil"
)

// hostItem implements list.Item for the Bubbles list component.
type hostItem struct {
	host sshutil.HostEntry
}

func (i hostItem) Title() string       { return i.host.Alias }
func (i hostItem) Description() string { return i.host.Description() }

func (i hostItem) FilterValue() string {
	// Allow searching by alias, hostname, and user
	return strings.Join([]string{i.host.Alias, i.host.Hostname, i.host.User}, " ")
}

var hostPickerKeys = struct {
	Enter key.Binding
	Local key.Binding
	Quit  key.Binding
}{
	Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Local: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "this machine")),
	Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "cancel")),
}

// HostPickerModel lets the user pick a host alias from ~/.ssh/config.
type HostPickerModel struct {
	list      list.Model
	selected  *sshutil.HostEntry
	local     bool
	cancelled bool
}

// NewHostPickerModel creates a picker over hosts.
func NewHostPickerModel(hosts []sshutil.HostEntry) HostPickerModel {
	items := make([]list.Item, len(hosts))
	for i, h := range hosts {
		items[i] = hostItem{host: h}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorPrimary).
		BorderForeground(ColorSecondary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorMuted)

	l := list.New(items, delegate, 80, 15)
	l.Title = "Which machine should obision-status watch?"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Padding(0, 0, 1, 0)
	l.Styles.HelpStyle = LabelStyle
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{hostPickerKeys.Local}
	}

	return HostPickerModel{list: l}
}

// Init implements tea.Model.
func (m HostPickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m HostPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, hostPickerKeys.Enter):
			if item, ok := m.list.SelectedItem().(hostItem); ok {
				m.selected = &item.host
			}
			return m, tea.Quit
		case key.Matches(msg, hostPickerKeys.Local):
			m.local = true
			return m, tea.Quit
		case key.Matches(msg, hostPickerKeys.Quit):
			m.cancelled = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m HostPickerModel) View() string {
	if m.selected != nil || m.local || m.cancelled {
		return ""
	}
	return m.list.View() + LabelStyle.Render("\n  Press 'l' to watch this machine")
}

// Selected returns the chosen host, or nil.
func (m HostPickerModel) Selected() *sshutil.HostEntry {
	return m.selected
}

// ErrPickerCancelled is returned by PickHost when the user backs out.
var ErrPickerCancelled = fmt.Errorf("host selection cancelled")

// PickHost runs the picker on the terminal and returns the chosen alias.
// An empty alias means the local machine.
func PickHost(hosts []sshutil.HostEntry) (string, error) {
	return PickHostWithIO(hosts, os.Stdin, os.Stdout)
}

// PickHostWithIO runs the picker with custom I/O.
func PickHostWithIO(hosts []sshutil.HostEntry, input io.Reader, output io.Writer) (string, error) {
	if len(hosts) == 0 {
		return "", nil
	}

	p := tea.NewProgram(NewHostPickerModel(hosts), tea.WithInput(input), tea.WithOutput(output))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("host picker: %w", err)
	}

	m, ok := final.(HostPickerModel)
	if !ok || m.cancelled {
		return "", ErrPickerCancelled
	}
	if m.selected != nil {
		return m.selected.Alias, nil
	}
	return "", nil
}
