package metrics

import (
	"fmt"

	"github.com/nirlob/obision-status/internal/util"
)

// Level is the color bucket for a value.
type Level int

const (
	LevelOK Level = iota
	LevelWarn
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelCritical:
		return "critical"
	default:
		return "ok"
	}
}

// Usage thresholds in percent.
const (
	UsageWarnThreshold     = 50
	UsageCriticalThreshold = 80
)

// Temperature thresholds in degrees Celsius.
const (
	TempWarnThreshold     = 50
	TempCriticalThreshold = 70
)

// UsageLevel buckets a percentage: below 50 ok, below 80 warn, else critical.
func UsageLevel(pct float64) Level {
	switch {
	case pct < UsageWarnThreshold:
		return LevelOK
	case pct < UsageCriticalThreshold:
		return LevelWarn
	default:
		return LevelCritical
	}
}

// TemperatureLevel buckets degrees: below 50 ok, below 70 warn, else critical.
func TemperatureLevel(celsius float64) Level {
	switch {
	case celsius < TempWarnThreshold:
		return LevelOK
	case celsius < TempCriticalThreshold:
		return LevelWarn
	default:
		return LevelCritical
	}
}

// Placeholder labels for sources without a value.
const (
	LabelUnavailable = "N/A"
	LabelWarmingUp   = "..."
)

// Label renders the headline value of a source for display.
func (s *Snapshot) Label(src Source) string {
	switch s.Status[src].State {
	case StateWarmingUp:
		return LabelWarmingUp
	case StateOK:
	default:
		return LabelUnavailable
	}

	switch src {
	case SourceCPU:
		return fmt.Sprintf("%d%%", s.CPU.Percent)
	case SourceMemory:
		return fmt.Sprintf("%d%%", s.Memory.Percent)
	case SourceDisk:
		return fmt.Sprintf("%d%%", s.Disk.Percent)
	case SourceNetwork:
		return fmt.Sprintf("↓ %s ↑ %s", util.FormatRate(s.Network.DownMbps), util.FormatRate(s.Network.UpMbps))
	case SourceCPUTemp:
		return fmt.Sprintf("%d°C", s.CPUTemp.Celsius)
	case SourceGPUTemp:
		return fmt.Sprintf("%d°C", s.GPUTemp.Celsius)
	case SourceGPU:
		return fmt.Sprintf("%d%%", s.GPU.Percent)
	case SourceLoad:
		return fmt.Sprintf("%.2f %.2f %.2f", s.Load.One, s.Load.Five, s.Load.Fifteen)
	case SourceTopProcesses:
		return fmt.Sprintf("%d %s", len(s.TopProcesses), util.Pluralize(len(s.TopProcesses), "process", "processes"))
	case SourceProcesses:
		return fmt.Sprintf("%d %s", len(s.Processes), util.Pluralize(len(s.Processes), "process", "processes"))
	}
	return LabelUnavailable
}

// Level returns the color bucket for a source's headline value. Sources
// without a value, or without a meaningful threshold, are LevelOK.
func (s *Snapshot) Level(src Source) Level {
	if !s.Available(src) {
		return LevelOK
	}
	switch src {
	case SourceCPU:
		return UsageLevel(float64(s.CPU.Percent))
	case SourceMemory:
		return UsageLevel(float64(s.Memory.Percent))
	case SourceDisk:
		return UsageLevel(float64(s.Disk.Percent))
	case SourceGPU:
		return UsageLevel(float64(s.GPU.Percent))
	case SourceCPUTemp:
		return TemperatureLevel(float64(s.CPUTemp.Celsius))
	case SourceGPUTemp:
		return TemperatureLevel(float64(s.GPUTemp.Celsius))
	}
	return LevelOK
}
