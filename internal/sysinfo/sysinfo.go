// Package sysinfo describes the machine as a list of labelled rows, either
// from fastfetch or from a handful of basic commands.
package sysinfo

import (
	"context"
	"strings"

	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/logger"
	"github.com/nirlob/obision-status/internal/metrics/parsers"
	"github.com/nirlob/obision-status/internal/runner"
	"github.com/nirlob/obision-status/internal/util"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Row is one labelled value.
type Row struct {
	Title string `json:"title" yaml:"title"`
	Value string `json:"value" yaml:"value"`
}

// Source says where a report's rows came from.
type Source string

const (
	SourceFastfetch Source = "fastfetch"
	SourceCommands  Source = "commands"
	SourceError     Source = "error"
)

// Report is an ordered set of rows.
type Report struct {
	Source Source `json:"source" yaml:"source"`
	Rows   []Row  `json:"rows" yaml:"rows"`
}

// Get returns the value of the first row titled title.
func (r *Report) Get(title string) (string, bool) {
	for _, row := range r.Rows {
		if row.Title == title {
			return row.Value, true
		}
	}
	return "", false
}

// ErrorReport is shown when no system information could be read.
func ErrorReport() *Report {
	return &Report{
		Source: SourceError,
		Rows:   []Row{{Title: "Error", Value: "Could not load system information"}},
	}
}

// Unknown fills summary rows nothing could answer.
const Unknown = "Unknown"

// Local reads the running machine directly. It is only consulted when the
// runner targets this machine.
type Local interface {
	HostInfo(ctx context.Context) (*host.InfoStat, error)
	TotalMemory(ctx context.Context) (uint64, error)
	Getenv(key string) string
}

// HostLocal implements Local with gopsutil and the process environment.
type HostLocal struct {
	Env func(string) string
}

func (HostLocal) HostInfo(ctx context.Context) (*host.InfoStat, error) {
	return host.InfoWithContext(ctx)
}

func (HostLocal) TotalMemory(ctx context.Context) (uint64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.Total, nil
}

func (h HostLocal) Getenv(key string) string {
	if h.Env == nil {
		return ""
	}
	return h.Env(key)
}

// Collector builds reports.
type Collector struct {
	runner runner.Runner
	local  Local
	log    logger.Logger
}

// NewCollector creates a Collector. local may be nil when r runs commands
// on another machine.
func NewCollector(r runner.Runner, local Local, log logger.Logger) *Collector {
	if log == nil {
		log = logger.Noop()
	}
	return &Collector{runner: r, local: local, log: log}
}

// Details returns the fastfetch report, or ErrorReport when fastfetch is
// missing or its output is unusable. The error explains why.
func (c *Collector) Details(ctx context.Context) (*Report, error) {
	res, err := c.runner.Run(ctx, "fastfetch", "--format", "json")
	if err != nil {
		return ErrorReport(), errors.WrapWithCode(err, errors.ErrExec,
			"Couldn't run fastfetch",
			"Install fastfetch, or use --summary for the basic report.")
	}
	if strings.TrimSpace(res.Stdout) == "" {
		return ErrorReport(), errors.New(errors.ErrExec,
			"fastfetch printed nothing",
			strings.TrimSpace(res.Stderr))
	}

	rows, err := ParseFastfetch([]byte(res.Stdout))
	if err != nil {
		return ErrorReport(), err
	}
	if len(rows) == 0 {
		return ErrorReport(), errors.Parsef("fastfetch reported no usable modules")
	}
	return &Report{Source: SourceFastfetch, Rows: rows}, nil
}

// Summary returns the short overview: hostname, OS, kernel, desktop,
// processor, memory and uptime. Each value comes from a command; blanks
// are filled from the local machine when available, then "Unknown".
func (c *Collector) Summary(ctx context.Context) *Report {
	hostname := c.output(ctx, "hostname")
	osName := c.output(ctx, "lsb_release", "-ds")
	kernel := c.output(ctx, "uname", "-r")
	uptime := strings.TrimPrefix(c.output(ctx, "uptime", "-p"), "up ")

	var cpuModel string
	if out := c.output(ctx, "cat", "/proc/cpuinfo"); out != "" {
		cpuModel, _ = parsers.ParseCPUModel(out)
	}
	var memory string
	if out := c.output(ctx, "free", "-h"); out != "" {
		memory, _ = parsers.ParseFreeHumanTotal(out)
	}

	var desktop string
	if c.local != nil {
		desktop = c.local.Getenv("XDG_CURRENT_DESKTOP")
		c.fillFromHost(ctx, &hostname, &osName, &kernel, &uptime)
		if memory == "" {
			if total, err := c.local.TotalMemory(ctx); err == nil && total > 0 {
				memory = util.FormatBytes(total)
			}
		}
	}
	if osName == "" {
		osName = "Linux"
	}

	return &Report{
		Source: SourceCommands,
		Rows: []Row{
			{Title: "Hostname", Value: orUnknown(hostname)},
			{Title: "Operating System", Value: osName},
			{Title: "Kernel Version", Value: orUnknown(kernel)},
			{Title: "Desktop Environment", Value: orUnknown(desktop)},
			{Title: "Processor", Value: orUnknown(cpuModel)},
			{Title: "Memory", Value: orUnknown(memory)},
			{Title: "Uptime", Value: orUnknown(uptime)},
		},
	}
}

func (c *Collector) fillFromHost(ctx context.Context, hostname, osName, kernel, uptime *string) {
	if *hostname != "" && *osName != "" && *kernel != "" && *uptime != "" {
		return
	}
	info, err := c.local.HostInfo(ctx)
	if err != nil {
		c.log.Debug("host info unavailable: %v", err)
		return
	}
	if *hostname == "" {
		*hostname = info.Hostname
	}
	if *osName == "" {
		*osName = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
	}
	if *kernel == "" {
		*kernel = info.KernelVersion
	}
	if *uptime == "" && info.Uptime > 0 {
		*uptime = util.FormatUptime(int64(info.Uptime) * 1000)
	}
}

// output returns trimmed stdout, or "" when the command failed.
func (c *Collector) output(ctx context.Context, name string, args ...string) string {
	res, err := c.runner.Run(ctx, name, args...)
	if err != nil {
		c.log.Debug("%s: %v", runner.CommandLine(name, args...), errors.Summary(err))
		return ""
	}
	if res.ExitCode != 0 && strings.TrimSpace(res.Stdout) == "" {
		c.log.Debug("%s exited %d: %s", runner.CommandLine(name, args...), res.ExitCode, strings.TrimSpace(res.Stderr))
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}
