package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCPU(t *testing.T) {
	assert.Equal(t, 12.5, NormalizeCPU(50, 4))
	assert.Equal(t, 33.3, NormalizeCPU(100, 3))
	assert.Equal(t, 7.0, NormalizeCPU(7, 0), "zero cores falls back to one")
	assert.Equal(t, 0.1, NormalizeCPU(0.5, 8), "rounded to one decimal")
}

func TestProcessName(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{"/usr/bin/foo --flag", "foo"},
		{"bash", "bash"},
		{"python3 -m http.server", "python3"},
		{"/opt/google/chrome/chrome --type=renderer", "chrome"},
		{"./relative/tool arg", "tool"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ProcessName(tt.command), tt.command)
	}
}

func TestIsKernelThread(t *testing.T) {
	assert.True(t, IsKernelThread("[kworker/0:1]"))
	assert.True(t, IsKernelThread("[rcu_sched]"))
	assert.False(t, IsKernelThread("/usr/lib/systemd/systemd --user"))
	assert.False(t, IsKernelThread("[unterminated"))
}

const psTop = `COMMAND         %CPU
firefox         48.0
Web Content     20.0
ps               8.0
gnome-shell      6.4
Xwayland         2.0
pipewire         1.0
tracker-miner    0.4
`

func TestParsePSTop(t *testing.T) {
	top := ParsePSTop(psTop, 4, 5)

	require.Len(t, top, 5)
	assert.Equal(t, "firefox", top[0].Name)
	assert.Equal(t, 12.0, top[0].CPU)
	assert.Equal(t, "Web Content", top[1].Name, "names may contain spaces")
	assert.Equal(t, "gnome-shell", top[2].Name, "ps itself is skipped")
	assert.Equal(t, 1.6, top[2].CPU)
	assert.Equal(t, "pipewire", top[4].Name)
}

func TestParsePSTop_HeaderOnly(t *testing.T) {
	assert.Empty(t, ParsePSTop("COMMAND %CPU\n", 1, 5))
	assert.Empty(t, ParsePSTop("", 1, 5))
}

func TestParsePSProcesses(t *testing.T) {
	long := "/usr/bin/" + strings.Repeat("x", 50)
	out := strings.Join([]string{
		"   2145 25.0  3.1 512000 /usr/lib/firefox/firefox -contentproc",
		"     88  4.0  0.0      0 [kworker/0:1-events]",
		"   9001  1.0  0.1   3500 ps xo pid,%cpu,%mem,rss,args --sort=-%cpu --no-headers",
		"   1234  2.0  0.5  40960 bash",
		"   4321  0.0  0.2   2048 " + long + " --verbose",
		"garbage",
	}, "\n")

	procs := ParsePSProcesses(out, 2)

	require.Len(t, procs, 3)
	assert.Equal(t, 2145, procs[0].PID)
	assert.Equal(t, "firefox", procs[0].Name)
	assert.Equal(t, "/usr/lib/firefox/firefox -contentproc", procs[0].Command)
	assert.Equal(t, 12.5, procs[0].CPU)
	assert.Equal(t, 3.1, procs[0].MemPercent)
	assert.Equal(t, uint64(512000), procs[0].RSSKB)

	assert.Equal(t, "bash", procs[1].Name)
	assert.Equal(t, 1.0, procs[1].CPU)

	assert.Len(t, procs[2].Name, MaxProcessNameLen)
	assert.True(t, strings.HasSuffix(procs[2].Name, "..."))
	assert.Equal(t, strings.Repeat("x", 37)+"...", procs[2].Name)
}
