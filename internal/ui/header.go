package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Version string // e.g. "v0.3.0"
	Host    string // remote host, empty for the local machine
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders the product line and a divider.
func RenderHeader(info HeaderInfo) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("obision-status"))
	if info.Version != "" {
		b.WriteString(" " + lipgloss.NewStyle().Foreground(ColorInfo).Render(info.Version))
	}
	if info.Host != "" {
		b.WriteString(LabelStyle.Render(" @ " + info.Host))
	}
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render(strings.Repeat("━", HeaderWidth)))
	b.WriteString("\n")

	return b.String()
}
