// Package sampler turns cumulative kernel counters into rates.
//
// /proc/stat and /proc/net/dev only ever grow, so a single reading says
// nothing about current activity. Each sampler keeps the previous reading
// and reports the change over the poll interval. The first reading after
// construction or Reset only establishes the baseline and yields no value.
package sampler

import (
	"math"
	"sync"
	"time"
)

// State is where a sampler is in its warm-up.
type State int

const (
	// Uninitialized has no baseline; the next Observe stores one.
	Uninitialized State = iota
	// SampledOnce has a baseline and has produced nothing yet.
	SampledOnce
	// Steady has produced at least one value.
	Steady
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case SampledOnce:
		return "sampled_once"
	case Steady:
		return "steady"
	default:
		return "unknown"
	}
}

// CPUTicks is one reading of the aggregate cpu line in /proc/stat.
// Idle includes iowait.
type CPUTicks struct {
	Idle  uint64
	Total uint64
}

// NetCounters is a byte-counter reading summed across interfaces.
type NetCounters struct {
	RxBytes uint64
	TxBytes uint64
}

// Utilization returns the busy share between two readings as an integer
// percentage in [0, 100]. No elapsed ticks, or counters that moved
// backwards, give 0.
func Utilization(prev, cur CPUTicks) int {
	if cur.Total <= prev.Total {
		return 0
	}
	dTotal := float64(cur.Total - prev.Total)

	var dIdle float64
	if cur.Idle > prev.Idle {
		dIdle = float64(cur.Idle - prev.Idle)
	}

	pct := int(math.Round(100 * (dTotal - dIdle) / dTotal))
	return clampInt(pct, 0, 100)
}

// ThroughputMbps converts a byte-counter change over interval into megabits
// per second. A counter that went backwards (interface reset, wrap) gives 0
// for that cycle.
func ThroughputMbps(prev, cur uint64, interval time.Duration) float64 {
	if cur < prev || interval <= 0 {
		return 0
	}
	return float64(cur-prev) * 8 / (interval.Seconds() * 1_000_000)
}

// GaugeScale clamps a throughput to the 0..100 range the network gauge
// draws. The reported Mbps value itself is not clamped.
func GaugeScale(mbps float64) float64 {
	return math.Max(0, math.Min(100, mbps))
}

// CPU tracks the previous /proc/stat reading.
type CPU struct {
	mu    sync.Mutex
	prev  CPUTicks
	state State
}

// Observe records cur and returns the utilization since the previous
// reading. ok is false for the first reading.
func (c *CPU) Observe(cur CPUTicks) (pct int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, state := c.prev, c.state
	c.prev = cur
	if state == Uninitialized {
		c.state = SampledOnce
		return 0, false
	}
	c.state = Steady
	return Utilization(prev, cur), true
}

// State reports the warm-up state.
func (c *CPU) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reset discards the baseline.
func (c *CPU) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prev, c.state = CPUTicks{}, Uninitialized
}

// Rates is a pair of throughputs in Mbps.
type Rates struct {
	DownMbps float64
	UpMbps   float64
}

// Network tracks the previous /proc/net/dev totals. Rates are computed
// against the fixed Interval rather than measured wall time.
type Network struct {
	Interval time.Duration

	mu    sync.Mutex
	prev  NetCounters
	state State
}

// NewNetwork creates a network sampler for the given poll interval.
func NewNetwork(interval time.Duration) *Network {
	return &Network{Interval: interval}
}

// Observe records cur and returns rates since the previous reading.
// ok is false for the first reading.
func (n *Network) Observe(cur NetCounters) (r Rates, ok bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	prev, state := n.prev, n.state
	n.prev = cur
	if state == Uninitialized {
		n.state = SampledOnce
		return Rates{}, false
	}
	n.state = Steady
	return Rates{
		DownMbps: ThroughputMbps(prev.RxBytes, cur.RxBytes, n.Interval),
		UpMbps:   ThroughputMbps(prev.TxBytes, cur.TxBytes, n.Interval),
	}, true
}

// State reports the warm-up state.
func (n *Network) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Reset discards the baseline.
func (n *Network) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.prev, n.state = NetCounters{}, Uninitialized
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
