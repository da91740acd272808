package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/nirlob/obision-status/internal/metrics"
	"golang.org/x/term"
)

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
	ColorAccent    lipgloss.Color = "5" // Magenta
)

// LevelColor returns the color for a metric level.
func LevelColor(l metrics.Level) lipgloss.Color {
	switch l {
	case metrics.LevelCritical:
		return ColorError
	case metrics.LevelWarn:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// LevelStyle returns a foreground style for a metric level.
func LevelStyle(l metrics.Level) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(LevelColor(l))
}

// Styles shared by the CLI printers.
var (
	TitleStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	LabelStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	ValueStyle = lipgloss.NewStyle().Foreground(ColorPrimary)
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorError)
)

// Color modes accepted by SetColorMode.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// SetColorMode sets the lipgloss color profile. Auto follows w: no color
// when it is not a terminal or NO_COLOR is set.
func SetColorMode(mode string, w io.Writer) error {
	out := termenv.NewOutput(w)

	var profile termenv.Profile
	switch mode {
	case ColorAuto, "":
		profile = out.EnvColorProfile()
	case ColorAlways:
		profile = termenv.EnvColorProfile()
		if profile == termenv.Ascii {
			profile = termenv.ANSI256
		}
	case ColorNever:
		profile = termenv.Ascii
	default:
		return fmt.Errorf("unknown color mode %q", mode)
	}

	lipgloss.SetColorProfile(profile)
	return nil
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of f, or fallback when it is not a
// terminal.
func TerminalWidth(f *os.File, fallback int) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
