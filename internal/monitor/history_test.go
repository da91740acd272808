package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory_PushSkipsMissingSources(t *testing.T) {
	h := NewHistory(10)
	h.Push(testSnapshot(2))

	assert.Equal(t, []float64{42}, h.Get(SeriesCPU, 10))
	assert.Equal(t, []float64{1.5}, h.Get(SeriesNetDown, 10))
	assert.Equal(t, []float64{0.25}, h.Get(SeriesNetUp, 10))
	assert.Equal(t, []float64{0.52}, h.Get(SeriesLoad, 10))
	assert.Equal(t, 0, h.Count(SeriesGPU))
	assert.Nil(t, h.Get(SeriesGPUTemp, 10))
}

func TestHistory_WarmingUpDoesNotAdvance(t *testing.T) {
	h := NewHistory(10)
	h.Push(warmingSnapshot())

	assert.Equal(t, 0, h.Count(SeriesCPU))
	assert.Equal(t, 0, h.Count(SeriesNetDown))
	assert.Equal(t, 1, h.Count(SeriesMemory))
}

func TestHistory_RingBufferWraps(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		snap := testSnapshot(uint64(i))
		snap.CPU.Percent = i
		h.Push(snap)
	}

	assert.Equal(t, 3, h.Count(SeriesCPU))
	assert.Equal(t, []float64{3, 4, 5}, h.Get(SeriesCPU, 10))
	assert.Equal(t, []float64{4, 5}, h.Get(SeriesCPU, 2))
	assert.Nil(t, h.Get(SeriesCPU, 0))
}

func TestHistory_NilAndClear(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, DefaultHistorySize, h.size)

	h.Push(nil)
	assert.Equal(t, 0, h.Count(SeriesCPU))

	h.Push(testSnapshot(1))
	h.Clear()
	assert.Equal(t, 0, h.Count(SeriesCPU))
}
