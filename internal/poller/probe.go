package poller

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

// Probe reads the local machine directly. It backs up the command-based
// sources when a tool is missing, so it must only be used when the runner
// targets this machine.
type Probe interface {
	CoreCount(ctx context.Context) (int, error)
	Temperature(ctx context.Context, kind SensorKind) (float64, error)
}

// SensorKind selects which sensors a temperature lookup considers.
type SensorKind int

const (
	SensorCPU SensorKind = iota
	SensorGPU
)

// Sensor key substrings, matched against lowercase gopsutil sensor keys
// such as "coretemp_core_0_input" or "amdgpu_edge_input".
var sensorKeys = map[SensorKind][]string{
	SensorCPU: {"coretemp", "k10temp", "zenpower", "tctl", "tdie", "core", "package", "acpitz", "cpu"},
	SensorGPU: {"amdgpu", "nouveau", "radeon", "nvidia", "gpu", "edge"},
}

// Readings outside this range are sensor glitches.
const (
	minValidTemp = 0.0
	maxValidTemp = 150.0
)

// HostProbe implements Probe with gopsutil.
type HostProbe struct{}

// NewHostProbe returns a gopsutil-backed probe.
func NewHostProbe() *HostProbe {
	return &HostProbe{}
}

func (HostProbe) CoreCount(ctx context.Context) (int, error) {
	n, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("gopsutil reported %d logical cores", n)
	}
	return n, nil
}

// Temperature returns the hottest valid sensor of the requested kind.
func (HostProbe) Temperature(ctx context.Context, kind SensorKind) (float64, error) {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil && len(temps) == 0 {
		return 0, err
	}
	return hottest(temps, sensorKeys[kind])
}

func hottest(temps []host.TemperatureStat, keys []string) (float64, error) {
	found := false
	var maxTemp float64
	for _, t := range temps {
		if t.Temperature <= minValidTemp || t.Temperature > maxValidTemp {
			continue
		}
		name := strings.ToLower(t.SensorKey)
		for _, key := range keys {
			if strings.Contains(name, key) {
				if !found || t.Temperature > maxTemp {
					maxTemp = t.Temperature
				}
				found = true
				break
			}
		}
	}
	if !found {
		return 0, fmt.Errorf("no matching temperature sensor")
	}
	return maxTemp, nil
}
