// Package parsers turns the text output of Linux tools into typed values.
// Parsers are pure: they never run commands and never keep state.
package parsers

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nirlob/obision-status/internal/metrics"
	"github.com/nirlob/obision-status/internal/sampler"
)

// ParseProcStat reads the aggregate cpu line of /proc/stat.
// Idle is the idle plus iowait columns; Total is the sum of every column.
func ParseProcStat(procStat string) (sampler.CPUTicks, error) {
	scanner := bufio.NewScanner(strings.NewReader(procStat))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}

		// cpu user nice system idle iowait irq softirq steal guest guest_nice
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return sampler.CPUTicks{}, fmt.Errorf("invalid /proc/stat cpu line: %s", line)
		}

		var ticks sampler.CPUTicks
		for i := 1; i < len(fields); i++ {
			val, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return sampler.CPUTicks{}, fmt.Errorf("failed to parse cpu field %d: %w", i, err)
			}
			ticks.Total += val
			if i == 4 || i == 5 {
				ticks.Idle += val
			}
		}
		return ticks, nil
	}

	if err := scanner.Err(); err != nil {
		return sampler.CPUTicks{}, fmt.Errorf("error scanning /proc/stat: %w", err)
	}
	return sampler.CPUTicks{}, fmt.Errorf("no aggregate cpu line in /proc/stat")
}

// ParseFreeMB reads the Mem: row of `free -m`.
// Percent is round(used/total*100).
func ParseFreeMB(output string) (*metrics.MemoryUsage, error) {
	fields, err := memRow(output)
	if err != nil {
		return nil, err
	}
	if len(fields) < 3 {
		return nil, fmt.Errorf("free Mem: row has %d fields, want at least 3", len(fields))
	}

	total, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total memory %q: %w", fields[1], err)
	}
	used, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse used memory %q: %w", fields[2], err)
	}
	if total == 0 {
		return nil, fmt.Errorf("free reported zero total memory")
	}

	return &metrics.MemoryUsage{
		Percent: int(math.Round(float64(used) / float64(total) * 100)),
		UsedMB:  used,
		TotalMB: total,
	}, nil
}

// ParseFreeHumanTotal returns the total column of `free -h`, e.g. "15Gi".
func ParseFreeHumanTotal(output string) (string, error) {
	fields, err := memRow(output)
	if err != nil {
		return "", err
	}
	if len(fields) < 2 {
		return "", fmt.Errorf("free Mem: row has no total column")
	}
	return fields[1], nil
}

func memRow(output string) ([]string, error) {
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "Mem:") {
			return strings.Fields(line), nil
		}
	}
	return nil, fmt.Errorf("no Mem: row in free output")
}

// ParseDF reads the use% column from the first data row of `df -h <mount>`.
func ParseDF(output string) (*metrics.DiskUsage, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("df output has no data row")
	}

	// Filesystem Size Used Avail Use% Mounted-on
	fields := strings.Fields(lines[1])
	if len(fields) < 5 {
		return nil, fmt.Errorf("df data row has %d fields, want at least 5", len(fields))
	}

	pct, err := strconv.Atoi(strings.TrimSuffix(fields[4], "%"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse df use%% %q: %w", fields[4], err)
	}

	mount := "/"
	if len(fields) >= 6 {
		mount = fields[5]
	}
	return &metrics.DiskUsage{Percent: pct, Mount: mount}, nil
}

// LoopbackInterface is excluded from network totals.
const LoopbackInterface = "lo"

// ParseNetDev sums receive and transmit byte counters from /proc/net/dev
// across every interface except loopback.
func ParseNetDev(procNetDev string) (sampler.NetCounters, error) {
	var total sampler.NetCounters
	scanner := bufio.NewScanner(strings.NewReader(procNetDev))

	lineNum := 0
	seen := 0
	for scanner.Scan() {
		lineNum++
		if lineNum <= 2 {
			continue
		}

		// "  eth0: bytes packets errs drop fifo frame compressed multicast bytes packets ..."
		parts := strings.SplitN(scanner.Text(), ":", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		fields := strings.Fields(parts[1])
		if len(fields) < 9 {
			continue
		}
		seen++
		if name == LoopbackInterface {
			continue
		}

		rx, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return sampler.NetCounters{}, fmt.Errorf("failed to parse rx bytes for %s: %w", name, err)
		}
		tx, err := strconv.ParseUint(fields[8], 10, 64)
		if err != nil {
			return sampler.NetCounters{}, fmt.Errorf("failed to parse tx bytes for %s: %w", name, err)
		}
		total.RxBytes += rx
		total.TxBytes += tx
	}

	if err := scanner.Err(); err != nil {
		return sampler.NetCounters{}, fmt.Errorf("error scanning /proc/net/dev: %w", err)
	}
	if seen == 0 {
		return sampler.NetCounters{}, fmt.Errorf("no interfaces in /proc/net/dev")
	}
	return total, nil
}

// ParseLoadAvg reads the first three fields of /proc/loadavg.
func ParseLoadAvg(procLoadavg string) (*metrics.LoadAverage, error) {
	fields := strings.Fields(procLoadavg)
	if len(fields) < 3 {
		return nil, fmt.Errorf("/proc/loadavg has %d fields, want at least 3", len(fields))
	}

	var vals [3]float64
	for i := range vals {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse loadavg field %d: %w", i, err)
		}
		vals[i] = v
	}
	return &metrics.LoadAverage{One: vals[0], Five: vals[1], Fifteen: vals[2]}, nil
}

// ParseNproc reads the core count printed by nproc.
func ParseNproc(output string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(output))
	if err != nil {
		return 0, fmt.Errorf("failed to parse nproc output %q: %w", strings.TrimSpace(output), err)
	}
	if n < 1 {
		return 0, fmt.Errorf("nproc reported %d cores", n)
	}
	return n, nil
}

// ParseCPUModel returns the first "model name" from /proc/cpuinfo.
func ParseCPUModel(cpuinfo string) (string, error) {
	for _, line := range strings.Split(cpuinfo, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.TrimSpace(key) == "model name" {
			return strings.TrimSpace(value), nil
		}
	}
	return "", fmt.Errorf("no model name in /proc/cpuinfo")
}
