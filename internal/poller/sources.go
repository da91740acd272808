package poller

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/metrics"
	"github.com/nirlob/obision-status/internal/metrics/parsers"
	"github.com/nirlob/obision-status/internal/sampler"
)

// DefaultThermalZone is read for the CPU temperature before trying sensors.
const DefaultThermalZone = "/sys/class/thermal/thermal_zone0/temp"

// AMDGPUBusyPath reports AMD GPU utilization when nvidia-smi is absent.
const AMDGPUBusyPath = "/sys/class/drm/card0/device/gpu_busy_percent"

// cycle holds per-cycle state such as the cached core count.
type cycle struct {
	p     *Poller
	ctx   context.Context
	cores int

	// offSchedule cycles do not feed the counter samplers.
	offSchedule bool

	sensorsRan bool
	sensorsOut string
	sensorsErr error
}

func (c *cycle) collect(src metrics.Source, snap *metrics.Snapshot) error {
	switch src {
	case metrics.SourceCPU:
		return c.cpu(snap)
	case metrics.SourceMemory:
		return c.memory(snap)
	case metrics.SourceDisk:
		return c.disk(snap)
	case metrics.SourceNetwork:
		return c.network(snap)
	case metrics.SourceCPUTemp:
		return c.cpuTemp(snap)
	case metrics.SourceGPUTemp:
		return c.gpuTemp(snap)
	case metrics.SourceGPU:
		return c.gpu(snap)
	case metrics.SourceLoad:
		return c.load(snap)
	case metrics.SourceTopProcesses:
		return c.topProcesses(snap)
	case metrics.SourceProcesses:
		return c.processes(snap)
	}
	return fmt.Errorf("unknown source %q", src)
}

// output runs a command and returns its stdout. A command that exits
// non-zero without printing anything counts as a failure, with stderr as
// the reason.
func (c *cycle) output(name string, args ...string) (string, error) {
	res, err := c.p.runner.Run(c.ctx, name, args...)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 && strings.TrimSpace(res.Stdout) == "" {
		reason := strings.TrimSpace(res.Stderr)
		if reason == "" {
			reason = fmt.Sprintf("exit status %d", res.ExitCode)
		}
		return "", errors.New(errors.ErrExec, fmt.Sprintf("%s: %s", name, reason), "")
	}
	return res.Stdout, nil
}

func (c *cycle) cpu(snap *metrics.Snapshot) error {
	if c.offSchedule {
		if c.p.lastCPU == nil {
			return errWarmingUp
		}
		v := *c.p.lastCPU
		snap.CPU = &v
		return nil
	}

	out, err := c.output("cat", "/proc/stat")
	if err == nil {
		var ticks sampler.CPUTicks
		if ticks, err = parsers.ParseProcStat(out); err == nil {
			pct, ok := c.p.cpu.Observe(ticks)
			if !ok {
				return errWarmingUp
			}
			snap.CPU = &metrics.CPUUsage{Percent: pct}
			c.p.lastCPU = &metrics.CPUUsage{Percent: pct}
			return nil
		}
	}
	// A gap in readings would stretch the next delta over several
	// intervals, so start the warm-up over.
	c.p.cpu.Reset()
	c.p.lastCPU = nil
	return err
}

func (c *cycle) memory(snap *metrics.Snapshot) error {
	out, err := c.output("free", "-m")
	if err != nil {
		return err
	}
	mem, err := parsers.ParseFreeMB(out)
	if err != nil {
		return err
	}
	snap.Memory = mem
	return nil
}

func (c *cycle) disk(snap *metrics.Snapshot) error {
	out, err := c.output("df", "-h", "/")
	if err != nil {
		return err
	}
	disk, err := parsers.ParseDF(out)
	if err != nil {
		return err
	}
	snap.Disk = disk
	return nil
}

func (c *cycle) network(snap *metrics.Snapshot) error {
	if c.offSchedule {
		if c.p.lastNet == nil {
			return errWarmingUp
		}
		v := *c.p.lastNet
		snap.Network = &v
		return nil
	}

	out, err := c.output("cat", "/proc/net/dev")
	if err == nil {
		var counters sampler.NetCounters
		if counters, err = parsers.ParseNetDev(out); err == nil {
			rates, ok := c.p.net.Observe(counters)
			if !ok {
				return errWarmingUp
			}
			snap.Network = &metrics.NetworkThroughput{DownMbps: rates.DownMbps, UpMbps: rates.UpMbps}
			v := *snap.Network
			c.p.lastNet = &v
			return nil
		}
	}
	// Mbps assumes one interval between readings; after a gap that is
	// no longer true.
	c.p.net.Reset()
	c.p.lastNet = nil
	return err
}

func (c *cycle) cpuTemp(snap *metrics.Snapshot) error {
	var reasons []string

	out, err := c.output("cat", c.p.opts.ThermalZone)
	if err == nil {
		var celsius int
		if celsius, err = parsers.ParseThermalZone(out); err == nil {
			snap.CPUTemp = &metrics.Temperature{Celsius: celsius, Source: "thermal_zone"}
			return nil
		}
	}
	reasons = append(reasons, errors.Summary(err))

	celsius, err := c.sensors(c.p.opts.CPUSensorLabel)
	if err == nil {
		snap.CPUTemp = &metrics.Temperature{Celsius: celsius, Source: "sensors"}
		return nil
	}
	reasons = append(reasons, errors.Summary(err))

	celsius, err = c.probeTemperature(SensorCPU)
	if err == nil {
		snap.CPUTemp = &metrics.Temperature{Celsius: celsius, Source: "gopsutil"}
		return nil
	}
	if err != errNoProbe {
		reasons = append(reasons, errors.Summary(err))
	}

	return unavailable("no CPU temperature", reasons)
}

func (c *cycle) gpuTemp(snap *metrics.Snapshot) error {
	var reasons []string

	out, err := c.output("nvidia-smi", "--query-gpu=temperature.gpu", "--format=csv,noheader")
	if err == nil {
		var celsius int
		if celsius, err = parsers.ParseNvidiaValue(out); err == nil {
			snap.GPUTemp = &metrics.Temperature{Celsius: celsius, Source: "nvidia-smi"}
			return nil
		}
	}
	reasons = append(reasons, errors.Summary(err))

	celsius, err := c.sensors(c.p.opts.GPUSensorLabel)
	if err == nil {
		snap.GPUTemp = &metrics.Temperature{Celsius: celsius, Source: "sensors"}
		return nil
	}
	reasons = append(reasons, errors.Summary(err))

	celsius, err = c.probeTemperature(SensorGPU)
	if err == nil {
		snap.GPUTemp = &metrics.Temperature{Celsius: celsius, Source: "gopsutil"}
		return nil
	}
	if err != errNoProbe {
		reasons = append(reasons, errors.Summary(err))
	}

	return unavailable("no GPU temperature", reasons)
}

func (c *cycle) gpu(snap *metrics.Snapshot) error {
	out, err := c.output("nvidia-smi", "--query-gpu=utilization.gpu", "--format=csv,noheader,nounits")
	if err == nil {
		var pct int
		if pct, err = parsers.ParseNvidiaValue(out); err == nil {
			snap.GPU = &metrics.GPUUsage{Percent: pct, Source: "nvidia-smi"}
			return nil
		}
	}
	reasons := []string{errors.Summary(err)}

	out, err = c.output("cat", AMDGPUBusyPath)
	if err == nil {
		var pct int
		if pct, err = parsers.ParsePercentFile(out); err == nil {
			snap.GPU = &metrics.GPUUsage{Percent: pct, Source: "amdgpu"}
			return nil
		}
	}
	reasons = append(reasons, errors.Summary(err))

	return unavailable("no GPU utilization", reasons)
}

func (c *cycle) load(snap *metrics.Snapshot) error {
	out, err := c.output("cat", "/proc/loadavg")
	if err != nil {
		return err
	}
	load, err := parsers.ParseLoadAvg(out)
	if err != nil {
		return err
	}
	snap.Load = load
	return nil
}

func (c *cycle) topProcesses(snap *metrics.Snapshot) error {
	out, err := c.output("ps", "axo", "comm,%cpu", "--sort=-%cpu")
	if err != nil {
		return err
	}
	snap.TopProcesses = parsers.ParsePSTop(out, c.coreCount(), c.p.opts.TopN)
	return nil
}

func (c *cycle) processes(snap *metrics.Snapshot) error {
	out, err := c.output("ps", "xo", "pid,%cpu,%mem,rss,args", "--sort=-%cpu", "--no-headers")
	if err != nil {
		return err
	}
	snap.Processes = parsers.ParsePSProcesses(out, c.coreCount())
	return nil
}

// sensors runs lm-sensors at most once per cycle; the CPU and GPU
// temperature fallbacks share its output.
func (c *cycle) sensors(label string) (int, error) {
	if !c.sensorsRan {
		c.sensorsRan = true
		c.sensorsOut, c.sensorsErr = c.output("sensors")
	}
	if c.sensorsErr != nil {
		return 0, c.sensorsErr
	}
	return parsers.ParseSensors(c.sensorsOut, label)
}

var errNoProbe = fmt.Errorf("no local probe")

func (c *cycle) probeTemperature(kind SensorKind) (int, error) {
	if c.p.probe == nil {
		return 0, errNoProbe
	}
	t, err := c.p.probe.Temperature(c.ctx, kind)
	if err != nil {
		return 0, err
	}
	return int(math.Round(t)), nil
}

// coreCount asks nproc once per cycle, then gopsutil, then assumes one core.
func (c *cycle) coreCount() int {
	if c.cores > 0 {
		return c.cores
	}

	c.cores = 1
	out, err := c.output("nproc")
	if err == nil {
		var n int
		if n, err = parsers.ParseNproc(out); err == nil {
			c.cores = n
			return c.cores
		}
	}
	if c.p.probe != nil {
		if n, perr := c.p.probe.CoreCount(c.ctx); perr == nil {
			c.cores = n
			return c.cores
		}
	}
	c.p.log.Debug("core count unavailable, assuming 1: %v", errors.Summary(err))
	return c.cores
}

func unavailable(what string, reasons []string) error {
	return errors.New(errors.ErrExec, fmt.Sprintf("%s (%s)", what, strings.Join(reasons, "; ")), "")
}
