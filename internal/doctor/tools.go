package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/nirlob/obision-status/internal/runner"
	"github.com/nirlob/obision-status/internal/util"
)

// Tool is an external program obision-status reads from.
type Tool struct {
	Name     string
	Purpose  string
	Package  string // distro package that usually provides it
	Required bool
}

// Tools lists every program the pollers, log view and system info run.
var Tools = []Tool{
	{Name: "cat", Purpose: "CPU and network counters", Package: "coreutils", Required: true},
	{Name: "free", Purpose: "memory usage", Package: "procps", Required: true},
	{Name: "df", Purpose: "disk usage", Package: "coreutils", Required: true},
	{Name: "ps", Purpose: "process list", Package: "procps", Required: true},
	{Name: "nproc", Purpose: "core count for process CPU", Package: "coreutils"},
	{Name: "sensors", Purpose: "temperature fallback", Package: "lm-sensors"},
	{Name: "nvidia-smi", Purpose: "NVIDIA GPU temperature and usage", Package: "nvidia-utils"},
	{Name: "journalctl", Purpose: "logs", Package: "systemd"},
	{Name: "fastfetch", Purpose: "system information", Package: "fastfetch"},
	{Name: "lsb_release", Purpose: "distribution name fallback", Package: "lsb-release"},
}

// ToolCheck verifies a program is on PATH where commands run, which is the
// remote host when one is configured.
type ToolCheck struct {
	Tool   Tool
	Runner runner.Runner
}

func (c *ToolCheck) Name() string     { return "tool_" + c.Tool.Name }
func (c *ToolCheck) Category() string { return CategoryTools }

func (c *ToolCheck) Run(ctx context.Context) CheckResult {
	res, err := c.Runner.Run(ctx, "sh", "-c", "command -v "+util.ShellQuote(c.Tool.Name))
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Couldn't look for %s: %v", c.Tool.Name, err),
			Suggestion: "Check that sh is available",
		}
	}

	path := strings.TrimSpace(res.Stdout)
	if res.ExitCode != 0 || path == "" {
		status := StatusWarn
		if c.Tool.Required {
			status = StatusFail
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     status,
			Message:    fmt.Sprintf("%s not found (%s shows N/A)", c.Tool.Name, c.Tool.Purpose),
			Suggestion: fmt.Sprintf("Install %s with your package manager", c.Tool.Package),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s: %s", c.Tool.Name, path),
	}
}

func (c *ToolCheck) Fix() error {
	return nil // System package installation is out of scope
}

// NewToolChecks creates a check per known tool.
func NewToolChecks(r runner.Runner) []Check {
	checks := make([]Check, 0, len(Tools))
	for _, t := range Tools {
		checks = append(checks, &ToolCheck{Tool: t, Runner: r})
	}
	return checks
}
