package monitor

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func plain(s string) string { return ansi.Strip(s) }

func TestRenderBrailleGraph_Empty(t *testing.T) {
	assert.Empty(t, RenderBrailleGraph(nil, 10, 2, 0, 100, percentColor))
	assert.Empty(t, RenderBrailleGraph([]float64{1}, 0, 2, 0, 100, percentColor))
	assert.Empty(t, RenderBrailleGraph([]float64{1}, 10, 0, 0, 100, percentColor))
}

func TestRenderBrailleGraph_Dimensions(t *testing.T) {
	data := make([]float64, 100)
	for i := range data {
		data[i] = float64(i)
	}

	lines := strings.Split(plain(RenderBrailleGraph(data, 12, 3, 0, 100, percentColor)), "\n")
	assert.Len(t, lines, 3)
	for _, l := range lines {
		assert.Equal(t, 12, utf8.RuneCountInString(l))
	}
}

func TestRenderBrailleGraph_Dots(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want string
	}{
		{"full cell", []float64{100, 100}, "⣿"},
		{"right aligned", []float64{100}, "⢸"},
		{"small value shows one dot", []float64{1}, "⢀"},
		{"zero is blank", []float64{0}, "⠀"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plain(RenderBrailleGraph(tt.data, 1, 1, 0, 100, percentColor)))
		})
	}
}

func TestRenderBrailleGraph_AutoRange(t *testing.T) {
	// With no fixed range the largest value fills the column.
	out := plain(RenderBrailleGraph([]float64{2.5, 2.5}, 1, 1, 0, 0, FixedColor(ColorGraph)))
	assert.Equal(t, "⣿", out)
}

func TestResampleData(t *testing.T) {
	assert.Equal(t, []float64{5, 8}, resampleData([]float64{1, 5, 2, 8}, 2))
	assert.Equal(t, []float64{1, 2}, resampleData([]float64{1, 2}, 4))
	assert.Nil(t, resampleData(nil, 4))
}
