package monitor

import (
	"sync"

	"github.com/nirlob/obision-status/internal/metrics"
)

// DefaultHistorySize is the default number of data points to retain per series.
// At the default 10s refresh this is ten minutes.
const DefaultHistorySize = 60

// Series names one graphed value. Most map one-to-one to a metrics.Source;
// network splits into two.
type Series string

const (
	SeriesCPU     Series = "cpu"
	SeriesMemory  Series = "memory"
	SeriesDisk    Series = "disk"
	SeriesGPU     Series = "gpu"
	SeriesCPUTemp Series = "cpu_temp"
	SeriesGPUTemp Series = "gpu_temp"
	SeriesNetDown Series = "net_down"
	SeriesNetUp   Series = "net_up"
	SeriesLoad    Series = "load"
)

// AllSeries lists the series in display order.
var AllSeries = []Series{
	SeriesCPU, SeriesMemory, SeriesDisk, SeriesGPU,
	SeriesCPUTemp, SeriesGPUTemp, SeriesNetDown, SeriesNetUp, SeriesLoad,
}

// History keeps recent values per series in ring buffers.
type History struct {
	mu     sync.RWMutex
	size   int
	series map[Series]*ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
}

// NewHistory creates a history holding size points per series.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:   size,
		series: make(map[Series]*ringBuffer),
	}
}

// Push records every available value of snap. Sources that are warming up
// or unavailable are skipped, so their graphs simply do not advance.
func (h *History) Push(snap *metrics.Snapshot) {
	if snap == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if snap.Available(metrics.SourceCPU) {
		h.push(SeriesCPU, float64(snap.CPU.Percent))
	}
	if snap.Available(metrics.SourceMemory) {
		h.push(SeriesMemory, float64(snap.Memory.Percent))
	}
	if snap.Available(metrics.SourceDisk) {
		h.push(SeriesDisk, float64(snap.Disk.Percent))
	}
	if snap.Available(metrics.SourceGPU) {
		h.push(SeriesGPU, float64(snap.GPU.Percent))
	}
	if snap.Available(metrics.SourceCPUTemp) {
		h.push(SeriesCPUTemp, float64(snap.CPUTemp.Celsius))
	}
	if snap.Available(metrics.SourceGPUTemp) {
		h.push(SeriesGPUTemp, float64(snap.GPUTemp.Celsius))
	}
	if snap.Available(metrics.SourceNetwork) {
		h.push(SeriesNetDown, snap.Network.DownMbps)
		h.push(SeriesNetUp, snap.Network.UpMbps)
	}
	if snap.Available(metrics.SourceLoad) {
		h.push(SeriesLoad, snap.Load.One)
	}
}

// Get returns up to the last count values of s, oldest first.
func (h *History) Get(s Series, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf, ok := h.series[s]
	if !ok {
		return nil
	}
	return buf.getLast(count)
}

// Count returns how many points s holds.
func (h *History) Count(s Series) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if buf, ok := h.series[s]; ok {
		return buf.count
	}
	return 0
}

// Clear removes all history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.series = make(map[Series]*ringBuffer)
}

// push must be called with h.mu held.
func (h *History) push(s Series, v float64) {
	buf, ok := h.series[s]
	if !ok {
		buf = newRingBuffer(h.size)
		h.series[s] = buf
	}
	buf.push(v)
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{data: make([]float64, size)}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	count = min(count, r.count)

	// head is the next write position, so the newest value is at head-1.
	size := len(r.data)
	start := (r.head - count + size) % size

	result := make([]float64, count)
	for i := range result {
		result[i] = r.data[(start+i)%size]
	}
	return result
}
