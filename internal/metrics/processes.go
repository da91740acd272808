package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/nirlob/obision-status/internal/util"
)

// SortKey is a process table column.
type SortKey string

const (
	// SortNone keeps the order ps returned, which is by descending CPU.
	SortNone   SortKey = ""
	SortName   SortKey = "name"
	SortPID    SortKey = "pid"
	SortCPU    SortKey = "cpu"
	SortMemory SortKey = "memory"
)

// SortKeys lists the selectable columns in display order.
var SortKeys = []SortKey{SortName, SortPID, SortCPU, SortMemory}

// ParseSortKey validates a column name from flags.
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if key == SortNone {
		return SortNone, nil
	}
	for _, k := range SortKeys {
		if k == key {
			return k, nil
		}
	}
	return SortNone, fmt.Errorf("unknown sort column %q (want name, pid, cpu or memory)", s)
}

// Next cycles to the following column, wrapping back to SortNone.
func (k SortKey) Next() SortKey {
	if k == SortNone {
		return SortKeys[0]
	}
	for i, key := range SortKeys {
		if key == k && i+1 < len(SortKeys) {
			return SortKeys[i+1]
		}
	}
	return SortNone
}

// SortProcesses returns a sorted copy. Names compare case-insensitively and
// memory compares by resident size rather than percentage.
func SortProcesses(procs []Process, key SortKey, ascending bool) []Process {
	out := make([]Process, len(procs))
	copy(out, procs)
	if key == SortNone {
		return out
	}

	less := func(a, b Process) bool {
		switch key {
		case SortName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case SortPID:
			return a.PID < b.PID
		case SortCPU:
			return a.CPU < b.CPU
		case SortMemory:
			return a.RSSKB < b.RSSKB
		}
		return false
	}

	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return out
}

// ProcessTotals summarizes the process table.
type ProcessTotals struct {
	Count int
	CPU   float64
	RSSKB uint64
}

// Totals sums the table. CPU is capped at 100 since per-process values are
// already normalized by core count and sampling skew can push the sum over.
func Totals(procs []Process) ProcessTotals {
	var t ProcessTotals
	for _, p := range procs {
		t.CPU += p.CPU
		t.RSSKB += p.RSSKB
	}
	t.Count = len(procs)
	t.CPU = math.Min(t.CPU, 100)
	return t
}

// CPULabel renders the total CPU, e.g. "Total CPU: 12.5%".
func (t ProcessTotals) CPULabel() string {
	return fmt.Sprintf("Total CPU: %.1f%%", t.CPU)
}

// MemoryLabel renders the total resident memory, e.g. "Total Memory: 1.2 GB".
func (t ProcessTotals) MemoryLabel() string {
	return "Total Memory: " + util.FormatMemoryKB(t.RSSKB)
}
