// Package poller runs one poll cycle across every enabled metric source
// and schedules cycles on a fixed interval.
//
// A cycle runs the sources one after another. Each source either fills its
// field of the snapshot or records why it could not; a failing tool never
// affects the other sources.
package poller

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/logger"
	"github.com/nirlob/obision-status/internal/metrics"
	"github.com/nirlob/obision-status/internal/runner"
	"github.com/nirlob/obision-status/internal/sampler"
)

// DefaultInterval is the refresh period when none is configured.
const DefaultInterval = 10 * time.Second

// DefaultTopN is the length of the top-processes list.
const DefaultTopN = 5

// Options configures a Poller.
type Options struct {
	Interval time.Duration
	// Sources to poll, in order. Empty means metrics.AllSources().
	Sources []metrics.Source
	TopN    int

	ThermalZone    string
	CPUSensorLabel string
	GPUSensorLabel string

	// Host is copied into every snapshot for display.
	Host string
}

// DefaultOptions returns the settings the desktop app shipped with.
func DefaultOptions() Options {
	return Options{
		Interval:       DefaultInterval,
		TopN:           DefaultTopN,
		ThermalZone:    DefaultThermalZone,
		CPUSensorLabel: "Core 0",
		GPUSensorLabel: "edge",
	}
}

// Poller owns the previous-sample state for the counter-based sources.
// Only one cycle runs at a time.
type Poller struct {
	runner runner.Runner
	opts   Options
	probe  Probe
	log    logger.Logger
	now    func() time.Time

	mu    sync.Mutex
	cycle uint64
	cpu   sampler.CPU
	net   *sampler.Network

	// Last counter readings from a scheduled cycle, shown by refreshes.
	lastCPU *metrics.CPUUsage
	lastNet *metrics.NetworkThroughput

	refreshing atomic.Bool
}

// Option customizes a Poller.
type Option func(*Poller)

// WithLogger sets the logger used for per-source failures.
func WithLogger(l logger.Logger) Option {
	return func(p *Poller) { p.log = l }
}

// WithProbe enables gopsutil fallbacks for the local machine.
func WithProbe(probe Probe) Option {
	return func(p *Poller) { p.probe = probe }
}

// WithClock replaces time.Now for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// New creates a Poller. Zero-valued options fall back to DefaultOptions.
func New(r runner.Runner, opts Options, options ...Option) *Poller {
	def := DefaultOptions()
	if opts.Interval <= 0 {
		opts.Interval = def.Interval
	}
	if opts.TopN <= 0 {
		opts.TopN = def.TopN
	}
	if opts.ThermalZone == "" {
		opts.ThermalZone = def.ThermalZone
	}
	if opts.CPUSensorLabel == "" {
		opts.CPUSensorLabel = def.CPUSensorLabel
	}
	if opts.GPUSensorLabel == "" {
		opts.GPUSensorLabel = def.GPUSensorLabel
	}
	if len(opts.Sources) == 0 {
		opts.Sources = metrics.AllSources()
	}

	p := &Poller{
		runner: r,
		opts:   opts,
		log:    logger.Noop(),
		now:    time.Now,
		net:    sampler.NewNetwork(opts.Interval),
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Interval returns the fixed poll period.
func (p *Poller) Interval() time.Duration {
	return p.opts.Interval
}

// Reset drops the counter baselines; the next cycle reports CPU and
// network as warming up again.
func (p *Poller) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cpu.Reset()
	p.net.Reset()
	p.lastCPU, p.lastNet = nil, nil
}

// errWarmingUp marks a counter source that only stored its baseline.
var errWarmingUp = stderrors.New("warming up")

// Poll runs one scheduled cycle and returns its snapshot. Counter rates
// assume the previous Poll was one Interval ago.
func (p *Poller) Poll(ctx context.Context) *metrics.Snapshot {
	return p.poll(ctx, false)
}

// Refresh runs an extra cycle between scheduled ones. CPU and network
// repeat the last scheduled reading and their baselines are left alone,
// so the next Poll still measures a full interval. ok is false when ctx
// was cancelled or another refresh is already running; the snapshot must
// not be published then.
func (p *Poller) Refresh(ctx context.Context) (snap *metrics.Snapshot, ok bool) {
	if !p.refreshing.CompareAndSwap(false, true) {
		return nil, false
	}
	defer p.refreshing.Store(false)

	if ctx.Err() != nil {
		return nil, false
	}
	snap = p.poll(ctx, true)
	if ctx.Err() != nil {
		return nil, false
	}
	return snap, true
}

func (p *Poller) poll(ctx context.Context, offSchedule bool) *metrics.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	p.cycle++
	snap := metrics.NewSnapshot(p.cycle, p.now())
	snap.Host = p.opts.Host

	c := &cycle{p: p, ctx: ctx, offSchedule: offSchedule}
	for _, src := range p.opts.Sources {
		err := c.collect(src, snap)
		switch {
		case err == nil:
			snap.SetStatus(src, metrics.StateOK, "")
		case stderrors.Is(err, errWarmingUp):
			snap.SetStatus(src, metrics.StateWarmingUp, "")
		default:
			snap.SetStatus(src, metrics.StateUnavailable, errors.Summary(err))
			p.log.Debug("cycle %d: %s unavailable: %v", p.cycle, src, errors.Summary(err))
		}
	}

	p.log.Debug("cycle %d: polled %d sources in %s", p.cycle, len(p.opts.Sources), time.Since(start).Round(time.Millisecond))
	return snap
}

// Run polls immediately and then once per interval, handing each snapshot
// to publish. It returns when ctx is cancelled. A cycle interrupted by
// cancellation is not published.
func (p *Poller) Run(ctx context.Context, publish func(*metrics.Snapshot)) {
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	p.runOnce(ctx, publish)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx, publish)
		}
	}
}

func (p *Poller) runOnce(ctx context.Context, publish func(*metrics.Snapshot)) {
	snap := p.Poll(ctx)
	if ctx.Err() != nil {
		return
	}
	publish(snap)
}
