package stream

import "github.com/nirlob/obision-status/internal/metrics"

// Filter returns a copy of snap holding only sources. Nil or empty sources
// returns snap itself. The original is never modified since it is shared
// by every hub subscriber.
func Filter(snap *metrics.Snapshot, sources []metrics.Source) *metrics.Snapshot {
	if snap == nil || len(sources) == 0 {
		return snap
	}

	out := metrics.NewSnapshot(snap.Cycle, snap.Timestamp)
	out.Host = snap.Host
	for _, src := range sources {
		if st, ok := snap.Status[src]; ok {
			out.Status[src] = st
		}
		switch src {
		case metrics.SourceCPU:
			out.CPU = snap.CPU
		case metrics.SourceMemory:
			out.Memory = snap.Memory
		case metrics.SourceDisk:
			out.Disk = snap.Disk
		case metrics.SourceNetwork:
			out.Network = snap.Network
		case metrics.SourceCPUTemp:
			out.CPUTemp = snap.CPUTemp
		case metrics.SourceGPUTemp:
			out.GPUTemp = snap.GPUTemp
		case metrics.SourceGPU:
			out.GPU = snap.GPU
		case metrics.SourceLoad:
			out.Load = snap.Load
		case metrics.SourceTopProcesses:
			out.TopProcesses = snap.TopProcesses
		case metrics.SourceProcesses:
			out.Processes = snap.Processes
		}
	}
	return out
}
