package monitor

import (
	"time"

	"github.com/nirlob/obision-status/internal/metrics"
)

var testTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// testSnapshot builds a snapshot with every source filled except the GPU
// ones, which report unavailable.
func testSnapshot(cycle uint64) *metrics.Snapshot {
	s := metrics.NewSnapshot(cycle, testTime)

	s.CPU = &metrics.CPUUsage{Percent: 42}
	s.Memory = &metrics.MemoryUsage{Percent: 62, UsedMB: 4915, TotalMB: 7928}
	s.Disk = &metrics.DiskUsage{Percent: 81, Mount: "/"}
	s.Network = &metrics.NetworkThroughput{DownMbps: 1.5, UpMbps: 0.25}
	s.CPUTemp = &metrics.Temperature{Celsius: 55, Source: "thermal_zone0"}
	s.Load = &metrics.LoadAverage{One: 0.52, Five: 0.41, Fifteen: 0.3}
	s.TopProcesses = []metrics.TopProcess{{Name: "firefox", CPU: 12.5}, {Name: "code", CPU: 3}}
	s.Processes = []metrics.Process{
		{PID: 100, Name: "firefox", Command: "/usr/lib/firefox/firefox", CPU: 12.5, MemPercent: 5, RSSKB: 512000},
		{PID: 7, Name: "code", Command: "/usr/share/code/code", CPU: 3, MemPercent: 9.8, RSSKB: 1024000},
		{PID: 42, Name: "Bash", Command: "bash", CPU: 0.1, MemPercent: 0.1, RSSKB: 4096},
	}

	for _, src := range []metrics.Source{
		metrics.SourceCPU, metrics.SourceMemory, metrics.SourceDisk, metrics.SourceNetwork,
		metrics.SourceCPUTemp, metrics.SourceLoad, metrics.SourceTopProcesses, metrics.SourceProcesses,
	} {
		s.SetStatus(src, metrics.StateOK, "")
	}
	s.SetStatus(metrics.SourceGPU, metrics.StateUnavailable, "nvidia-smi: not found")
	s.SetStatus(metrics.SourceGPUTemp, metrics.StateUnavailable, "nvidia-smi: not found")
	return s
}

// warmingSnapshot is a first-cycle snapshot: counters have no value yet.
func warmingSnapshot() *metrics.Snapshot {
	s := testSnapshot(1)
	s.CPU = nil
	s.Network = nil
	s.SetStatus(metrics.SourceCPU, metrics.StateWarmingUp, "")
	s.SetStatus(metrics.SourceNetwork, metrics.StateWarmingUp, "")
	return s
}
