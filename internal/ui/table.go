package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// TableStyles returns the styles used by every table.
func TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	s.Selected = s.Selected.
		Foreground(ColorPrimary).
		Background(ColorSecondary).
		Bold(false)
	return s
}

// NewTable creates a Bubbles table with default styling. height counts
// visible rows; 0 fits every row.
func NewTable(columns []TableColumn, rows []table.Row, height int) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	if height <= 0 {
		height = len(rows)
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(height+1), // +1 for header
	)
	t.SetStyles(TableStyles())
	return t
}

// RenderTable renders a non-interactive table for CLI output.
func RenderTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows, 0).View()
}

// DoctorCheckRow represents a row in the doctor diagnostic table.
type DoctorCheckRow struct {
	Status     string // "pass", "warn", "fail"
	Category   string
	Message    string
	Suggestion string // shown for warn and fail
}

// RenderDoctorTable renders doctor results grouped by category, keeping
// the order categories first appear in.
func RenderDoctorTable(rows []DoctorCheckRow) string {
	if len(rows) == 0 {
		return "No checks to display"
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	categories := make(map[string][]DoctorCheckRow)
	var order []string
	for _, row := range rows {
		if _, ok := categories[row.Category]; !ok {
			order = append(order, row.Category)
		}
		categories[row.Category] = append(categories[row.Category], row)
	}

	var b strings.Builder
	for _, cat := range order {
		b.WriteString(headerStyle.Render(cat) + "\n")
		for _, row := range categories[cat] {
			b.WriteString("  " + statusIcon(row.Status) + " " + row.Message + "\n")
			if row.Suggestion != "" && row.Status != "pass" {
				b.WriteString("    " + LabelStyle.Render(row.Suggestion) + "\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func statusIcon(status string) string {
	switch status {
	case "pass":
		return lipgloss.NewStyle().Foreground(ColorSuccess).Render(SymbolSuccess)
	case "warn":
		return lipgloss.NewStyle().Foreground(ColorWarning).Render(SymbolWarn)
	case "fail":
		return lipgloss.NewStyle().Foreground(ColorError).Render(SymbolFail)
	default:
		return LabelStyle.Render(SymbolPending)
	}
}

// PadRight pads s with spaces to width visible cells.
func PadRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
