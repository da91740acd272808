package parsers

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nirlob/obision-status/internal/metrics"
	"github.com/nirlob/obision-status/internal/util"
)

// MaxProcessNameLen is the longest process name shown before truncation.
const MaxProcessNameLen = 40

var (
	topLineRe  = regexp.MustCompile(`^(.+?)\s+([\d.]+)$`)
	procLineRe = regexp.MustCompile(`^(\S+)\s+(\S+)\s+(\S+)\s+(\S+)\s+(.+)$`)
)

// NormalizeCPU divides a ps %cpu (100 per core) by the core count and
// rounds to one decimal, so 100 means the whole machine.
func NormalizeCPU(psCPU float64, cores int) float64 {
	if cores < 1 {
		cores = 1
	}
	return math.Round(psCPU/float64(cores)*10) / 10
}

// ParsePSTop reads `ps axo comm,%cpu --sort=-%cpu` and returns the first
// limit rows, skipping the header and ps itself.
func ParsePSTop(output string, cores, limit int) []metrics.TopProcess {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	var top []metrics.TopProcess
	for _, line := range lines {
		if len(top) >= limit {
			break
		}
		m := topLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil || m[1] == "ps" {
			continue
		}
		cpu, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		top = append(top, metrics.TopProcess{Name: m[1], CPU: NormalizeCPU(cpu, cores)})
	}
	return top
}

// ParsePSProcesses reads `ps xo pid,%cpu,%mem,rss,args --sort=-%cpu --no-headers`.
// Kernel threads ("[kworker/0:1]") and the ps invocation itself are
// dropped. Order is preserved.
func ParsePSProcesses(output string, cores int) []metrics.Process {
	var procs []metrics.Process
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		m := procLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		command := strings.TrimSpace(m[5])
		if IsKernelThread(command) {
			continue
		}
		name := ProcessName(command)
		if name == "ps" || command == "ps" || strings.HasPrefix(command, "ps ") {
			continue
		}

		pid, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		cpu, _ := strconv.ParseFloat(m[2], 64)
		mem, _ := strconv.ParseFloat(m[3], 64)
		rss, _ := strconv.ParseUint(m[4], 10, 64)

		procs = append(procs, metrics.Process{
			PID:        pid,
			Name:       util.Truncate(name, MaxProcessNameLen),
			Command:    command,
			CPU:        NormalizeCPU(cpu, cores),
			MemPercent: mem,
			RSSKB:      rss,
		})
	}
	return procs
}

// IsKernelThread reports whether a ps args column is a bracketed kernel
// thread name.
func IsKernelThread(command string) bool {
	return strings.HasPrefix(command, "[") && strings.Contains(command, "]")
}

// ProcessName is the basename of the first word of a command line:
// "/usr/bin/foo --flag" is "foo".
func ProcessName(command string) string {
	first := strings.SplitN(command, " ", 2)[0]
	return first[strings.LastIndex(first, "/")+1:]
}
