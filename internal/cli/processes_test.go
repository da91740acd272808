package cli

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/nirlob/obision-status/internal/metrics"
	"github.com/stretchr/testify/assert"
)

func TestSortTitle(t *testing.T) {
	assert.Equal(t, "CPU ▼", sortTitle("CPU", metrics.SortCPU, metrics.SortCPU, false))
	assert.Equal(t, "CPU ▲", sortTitle("CPU", metrics.SortCPU, metrics.SortCPU, true))
	assert.Equal(t, "PID", sortTitle("PID", metrics.SortPID, metrics.SortCPU, false))
}

func TestSortKeyNames(t *testing.T) {
	assert.Equal(t, "name, pid, cpu, memory", sortKeyNames())
}

func TestRenderProcesses(t *testing.T) {
	procs := []metrics.Process{
		{PID: 412, Name: "firefox", CPU: 12.5, MemPercent: 8.1, RSSKB: 1_048_576},
		{PID: 77, Name: "sshd", CPU: 0.3, MemPercent: 0.1, RSSKB: 4096},
	}
	totals := metrics.Totals(procs)

	out := ansi.Strip(renderProcesses(procs, metrics.SortCPU, false, totals))

	assert.Contains(t, out, "CPU ▼")
	assert.Contains(t, out, "firefox")
	assert.Contains(t, out, "412")
	assert.Contains(t, out, "12.5%")
	assert.Contains(t, out, "2 processes")
	assert.Contains(t, out, "Total CPU: 12.8%")
	assert.Contains(t, out, "Total Memory:")
}

func TestRenderProcesses_Empty(t *testing.T) {
	out := ansi.Strip(renderProcesses(nil, metrics.SortName, true, metrics.ProcessTotals{}))

	assert.Contains(t, out, "No processes")
	assert.Contains(t, out, "0 processes")
}
