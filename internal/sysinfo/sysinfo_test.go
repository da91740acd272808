package sysinfo

import (
	"context"
	"fmt"
	"testing"

	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/logger"
	runnertest "github.com/nirlob/obision-status/internal/runner/testing"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fastfetchJSON = `[
  {"type": "Title", "result": {"userName": "ana", "hostName": "forge"}},
  {"type": "Separator", "result": null},
  {"type": "OS", "result": {"name": "Ubuntu", "prettyName": "Ubuntu 24.04.1 LTS"}},
  {"type": "Host", "result": {"name": "XPS 13 9310"}},
  {"type": "Kernel", "result": {"name": "Linux", "release": "6.8.0-45-generic"}},
  {"type": "Uptime", "result": {"uptime": 97500000}},
  {"type": "Packages", "result": {"dpkg": 2011, "flatpakSystem": 12, "flatpakUser": 3, "snap": 0}},
  {"type": "Shell", "result": {"name": "bash", "version": "5.2.21"}},
  {"type": "Display", "result": [{"width": 2560, "height": 1440, "refreshRate": 60}]},
  {"type": "DE", "result": {"name": "GNOME", "version": "46.0"}},
  {"type": "WM", "result": {"pretty": "Mutter (Wayland)"}},
  {"type": "Cursor", "result": {"name": "Yaru", "size": "24"}},
  {"type": "CPU", "result": {"name": "11th Gen Intel(R) Core(TM) i7-1185G7"}},
  {"type": "GPU", "result": [{"index": 0, "name": "Intel Iris Xe Graphics", "type": "Integrated"}]},
  {"type": "Memory", "result": {"used": 6442450944, "total": 17179869184}},
  {"type": "Swap", "result": {"used": 0, "total": 0}},
  {"type": "Disk", "result": [{"mountpoint": "/", "filesystem": "ext4", "bytes": {"used": 214748364800, "total": 429496729600}}]},
  {"type": "LocalIP", "result": [{"name": "wlp0s20f3", "ipv4": "192.168.1.20/24"}]},
  {"type": "Battery", "error": "No batteries found"},
  {"type": "Locale", "result": "en_US.UTF-8"},
  {"type": "Font", "result": {"pretty": ""}},
  {"type": "Weather", "result": {"name": "sunny"}}
]`

func TestParseFastfetch(t *testing.T) {
	rows, err := ParseFastfetch([]byte(fastfetchJSON))
	require.NoError(t, err)

	r := &Report{Rows: rows}
	expect := map[string]string{
		"OS":                   "Ubuntu 24.04.1 LTS",
		"Host":                 "XPS 13 9310",
		"Kernel":               "Linux 6.8.0-45-generic",
		"Uptime":               "1 days, 3 hours, 5 mins",
		"Packages":             "2011 (dpkg), 15 (flatpak)",
		"Shell":                "bash 5.2.21",
		"Display":              "2560x1440 @ 60 Hz",
		"Desktop Environment":  "GNOME 46.0",
		"Window Manager":       "Mutter (Wayland)",
		"Cursor":               "Yaru (24px)",
		"CPU":                  "11th Gen Intel(R) Core(TM) i7-1185G7",
		"GPU 1":                "Intel Iris Xe Graphics [Integrated]",
		"Memory":               "6.00 GiB / 16.00 GiB (37.5%)",
		"Disk (/)":             "200.00 GiB / 400.00 GiB (50.0%) - ext4",
		"Local IP (wlp0s20f3)": "192.168.1.20/24",
		"Locale":               "en_US.UTF-8",
	}
	for title, want := range expect {
		got, ok := r.Get(title)
		if assert.True(t, ok, "missing row %q", title) {
			assert.Equal(t, want, got, title)
		}
	}

	for _, skipped := range []string{"Title", "Swap", "Battery ()", "Font", "Weather"} {
		_, ok := r.Get(skipped)
		assert.False(t, ok, "row %q should be skipped", skipped)
	}
	assert.Equal(t, "OS", rows[0].Title, "rows keep fastfetch order")
}

func TestParseFastfetch_Invalid(t *testing.T) {
	_, err := ParseFastfetch([]byte("fastfetch: command not found"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrParse))
}

func TestParseFastfetch_BadModuleSkipped(t *testing.T) {
	rows, err := ParseFastfetch([]byte(`[{"type":"CPU","result":{"name":42}},{"type":"Host","result":{"name":"box"}}]`))
	require.NoError(t, err)
	assert.Equal(t, []Row{{Title: "Host", Value: "box"}}, rows)
}

func TestDetails(t *testing.T) {
	fake := runnertest.NewFakeRunner().Stdout("fastfetch --format json", fastfetchJSON)

	report, err := NewCollector(fake, nil, nil).Details(t.Context())
	require.NoError(t, err)
	assert.Equal(t, SourceFastfetch, report.Source)
	assert.NotEmpty(t, report.Rows)
}

func TestDetails_Failures(t *testing.T) {
	tests := []struct {
		name string
		fake *runnertest.FakeRunner
	}{
		{"not installed", runnertest.NewFakeRunner()},
		{"empty output", runnertest.NewFakeRunner().Stdout("fastfetch --format json", "")},
		{"not json", runnertest.NewFakeRunner().Stdout("fastfetch --format json", "OS: Ubuntu")},
		{"no usable modules", runnertest.NewFakeRunner().Stdout("fastfetch --format json", `[{"type":"Separator"}]`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := NewCollector(tt.fake, nil, nil).Details(t.Context())
			require.Error(t, err)
			assert.Equal(t, ErrorReport(), report)
			v, _ := report.Get("Error")
			assert.Equal(t, "Could not load system information", v)
		})
	}
}

func summaryRunner() *runnertest.FakeRunner {
	return runnertest.NewFakeRunner().
		Stdout("hostname", "forge\n").
		Stdout("lsb_release -ds", "Ubuntu 24.04.1 LTS\n").
		Stdout("uname -r", "6.8.0-45-generic\n").
		Stdout("uptime -p", "up 2 hours, 13 minutes\n").
		Stdout("cat /proc/cpuinfo", "processor\t: 0\nmodel name\t: AMD Ryzen 7 5800X 8-Core Processor\n").
		Stdout("free -h", "               total        used\nMem:            31Gi       9.1Gi\n")
}

type fakeLocal struct {
	info   *host.InfoStat
	memory uint64
	env    map[string]string
}

func (f fakeLocal) HostInfo(context.Context) (*host.InfoStat, error) {
	if f.info == nil {
		return nil, fmt.Errorf("not supported")
	}
	return f.info, nil
}

func (f fakeLocal) TotalMemory(context.Context) (uint64, error) {
	return f.memory, nil
}

func (f fakeLocal) Getenv(key string) string { return f.env[key] }

func TestSummary(t *testing.T) {
	local := fakeLocal{env: map[string]string{"XDG_CURRENT_DESKTOP": "ubuntu:GNOME"}}

	report := NewCollector(summaryRunner(), local, nil).Summary(t.Context())

	assert.Equal(t, SourceCommands, report.Source)
	assert.Equal(t, []Row{
		{Title: "Hostname", Value: "forge"},
		{Title: "Operating System", Value: "Ubuntu 24.04.1 LTS"},
		{Title: "Kernel Version", Value: "6.8.0-45-generic"},
		{Title: "Desktop Environment", Value: "ubuntu:GNOME"},
		{Title: "Processor", Value: "AMD Ryzen 7 5800X 8-Core Processor"},
		{Title: "Memory", Value: "31Gi"},
		{Title: "Uptime", Value: "2 hours, 13 minutes"},
	}, report.Rows)
}

func TestSummary_RemoteDefaults(t *testing.T) {
	log := logger.NewBufferLogger()
	report := NewCollector(runnertest.NewFakeRunner(), nil, log).Summary(t.Context())

	for _, row := range report.Rows {
		switch row.Title {
		case "Operating System":
			assert.Equal(t, "Linux", row.Value)
		default:
			assert.Equal(t, Unknown, row.Value, row.Title)
		}
	}
	assert.True(t, log.HasLevel("debug"))
}

func TestSummary_FillsFromHost(t *testing.T) {
	fake := runnertest.NewFakeRunner().Stdout("uname -r", "6.8.0\n")
	local := fakeLocal{
		info: &host.InfoStat{
			Hostname:        "forge",
			Platform:        "fedora",
			PlatformVersion: "40",
			KernelVersion:   "6.9.0",
			Uptime:          3 * 3600,
		},
		memory: 16 << 30,
	}

	report := NewCollector(fake, local, nil).Summary(t.Context())

	get := func(title string) string {
		v, _ := report.Get(title)
		return v
	}
	assert.Equal(t, "forge", get("Hostname"))
	assert.Equal(t, "fedora 40", get("Operating System"))
	assert.Equal(t, "6.8.0", get("Kernel Version"), "command output wins")
	assert.Equal(t, "3 hours", get("Uptime"))
	assert.Equal(t, "16.00 GiB", get("Memory"))
	assert.Equal(t, Unknown, get("Desktop Environment"))
	assert.Equal(t, Unknown, get("Processor"))
}
