package monitor

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestSectionWidths(t *testing.T) {
	for _, width := range []int{20, 40, 81} {
		assert.Equal(t, width, lipgloss.Width(SectionHeader("CPU", "42%", width)), "header %d", width)
		assert.Equal(t, width, lipgloss.Width(SectionContentLine("hello", width)), "line %d", width)
		assert.Equal(t, width, lipgloss.Width(SectionFooter(width)), "footer %d", width)
	}
}

func TestSection(t *testing.T) {
	out := plain(Section("Load", "", []string{"0.52 0.41 0.30"}, 30))
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "╭─ Load"))
	assert.Contains(t, lines[1], "0.52 0.41 0.30")
	assert.True(t, strings.HasPrefix(lines[2], "╰"))
}
