package metrics

import "time"

// Source names one independently polled metric.
type Source string

const (
	SourceCPU          Source = "cpu"
	SourceMemory       Source = "memory"
	SourceDisk         Source = "disk"
	SourceNetwork      Source = "network"
	SourceCPUTemp      Source = "cpu_temp"
	SourceGPUTemp      Source = "gpu_temp"
	SourceGPU          Source = "gpu"
	SourceLoad         Source = "load"
	SourceTopProcesses Source = "top_processes"
	SourceProcesses    Source = "processes"
)

// AllSources lists every source in poll order.
func AllSources() []Source {
	return []Source{
		SourceCPU,
		SourceMemory,
		SourceDisk,
		SourceNetwork,
		SourceCPUTemp,
		SourceGPUTemp,
		SourceGPU,
		SourceLoad,
		SourceTopProcesses,
		SourceProcesses,
	}
}

// ParseSource validates a source name from config or flags.
func ParseSource(s string) (Source, bool) {
	for _, src := range AllSources() {
		if string(src) == s {
			return src, true
		}
	}
	return "", false
}

// State describes whether a source produced a value this cycle.
type State string

const (
	StateOK          State = "ok"
	StateWarmingUp   State = "warming_up"
	StateUnavailable State = "unavailable"
)

// SourceStatus is the outcome of polling one source.
type SourceStatus struct {
	State   State  `json:"state" yaml:"state"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Snapshot is the result of one poll cycle. A nil field means the source
// was not polled, is warming up, or failed; Status says which.
type Snapshot struct {
	Cycle     uint64    `json:"cycle" yaml:"cycle"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Host      string    `json:"host,omitempty" yaml:"host,omitempty"`

	CPU          *CPUUsage          `json:"cpu,omitempty" yaml:"cpu,omitempty"`
	Memory       *MemoryUsage       `json:"memory,omitempty" yaml:"memory,omitempty"`
	Disk         *DiskUsage         `json:"disk,omitempty" yaml:"disk,omitempty"`
	Network      *NetworkThroughput `json:"network,omitempty" yaml:"network,omitempty"`
	CPUTemp      *Temperature       `json:"cpu_temp,omitempty" yaml:"cpu_temp,omitempty"`
	GPUTemp      *Temperature       `json:"gpu_temp,omitempty" yaml:"gpu_temp,omitempty"`
	GPU          *GPUUsage          `json:"gpu,omitempty" yaml:"gpu,omitempty"`
	Load         *LoadAverage       `json:"load,omitempty" yaml:"load,omitempty"`
	TopProcesses []TopProcess       `json:"top_processes,omitempty" yaml:"top_processes,omitempty"`
	Processes    []Process          `json:"processes,omitempty" yaml:"processes,omitempty"`

	Status map[Source]SourceStatus `json:"status" yaml:"status"`
}

// NewSnapshot creates an empty snapshot for the given cycle.
func NewSnapshot(cycle uint64, at time.Time) *Snapshot {
	return &Snapshot{
		Cycle:     cycle,
		Timestamp: at,
		Status:    make(map[Source]SourceStatus),
	}
}

// SetStatus records the outcome for a source.
func (s *Snapshot) SetStatus(src Source, state State, message string) {
	s.Status[src] = SourceStatus{State: state, Message: message}
}

// Available reports whether src produced a value this cycle.
func (s *Snapshot) Available(src Source) bool {
	return s.Status[src].State == StateOK
}

// CPUUsage is overall CPU utilization.
type CPUUsage struct {
	Percent int `json:"percent" yaml:"percent"`
}

// MemoryUsage is RAM usage from free -m.
type MemoryUsage struct {
	Percent int    `json:"percent" yaml:"percent"`
	UsedMB  uint64 `json:"used_mb" yaml:"used_mb"`
	TotalMB uint64 `json:"total_mb" yaml:"total_mb"`
}

// DiskUsage is root filesystem usage from df.
type DiskUsage struct {
	Percent int    `json:"percent" yaml:"percent"`
	Mount   string `json:"mount" yaml:"mount"`
}

// NetworkThroughput is the aggregate rate across non-loopback interfaces.
type NetworkThroughput struct {
	DownMbps float64 `json:"down_mbps" yaml:"down_mbps"`
	UpMbps   float64 `json:"up_mbps" yaml:"up_mbps"`
}

// Temperature is a reading in whole degrees Celsius and where it came from.
type Temperature struct {
	Celsius int    `json:"celsius" yaml:"celsius"`
	Source  string `json:"source" yaml:"source"`
}

// GPUUsage is GPU utilization.
type GPUUsage struct {
	Percent int    `json:"percent" yaml:"percent"`
	Source  string `json:"source" yaml:"source"`
}

// LoadAverage holds the 1, 5 and 15 minute load averages.
type LoadAverage struct {
	One     float64 `json:"one" yaml:"one"`
	Five    float64 `json:"five" yaml:"five"`
	Fifteen float64 `json:"fifteen" yaml:"fifteen"`
}

// TopProcess is one row of the overview's top-processes list.
type TopProcess struct {
	Name string  `json:"name" yaml:"name"`
	CPU  float64 `json:"cpu" yaml:"cpu"`
}

// Process is one row of the full process table. CPU is normalized by the
// core count so 100 means the whole machine.
type Process struct {
	PID        int     `json:"pid" yaml:"pid"`
	Name       string  `json:"name" yaml:"name"`
	Command    string  `json:"command" yaml:"command"`
	CPU        float64 `json:"cpu" yaml:"cpu"`
	MemPercent float64 `json:"mem_percent" yaml:"mem_percent"`
	RSSKB      uint64  `json:"rss_kb" yaml:"rss_kb"`
}
