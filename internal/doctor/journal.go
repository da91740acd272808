package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/nirlob/obision-status/internal/journal"
	"github.com/nirlob/obision-status/internal/runner"
)

// JournalAccessCheck reads a few recent system journal entries without
// elevation to see whether the current user gets the full journal.
type JournalAccessCheck struct {
	Runner runner.Runner
}

func (c *JournalAccessCheck) Name() string     { return "journal_access" }
func (c *JournalAccessCheck) Category() string { return CategoryLogs }

func (c *JournalAccessCheck) Run(ctx context.Context) CheckResult {
	q := journal.DefaultQuery()
	q.Lines = journal.MinLines

	res, err := journal.NewReader(c.Runner).Fetch(ctx, q)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "journalctl could not be run",
			Suggestion: "Install systemd's journalctl, or use a host that has it",
		}
	}

	switch res.Status {
	case journal.StatusLoaded:
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("System journal readable (%d recent entries)", len(res.Entries)),
		}
	case journal.StatusPermissionLimited:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Only your own journal entries are visible",
			Suggestion: "Use 'obision-status logs --elevated', or join the systemd-journal group",
		}
	default:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "journalctl failed: " + firstLine(res.Stderr),
			Suggestion: "Run: journalctl --no-pager -n 5",
		}
	}
}

func (c *JournalAccessCheck) Fix() error {
	return nil // Group membership changes need an administrator
}

// ElevatorCheck verifies the privilege wrapper used for elevated logs is
// present.
type ElevatorCheck struct {
	Wrapper string
	Runner  runner.Runner
}

func (c *ElevatorCheck) Name() string     { return "logs_elevator" }
func (c *ElevatorCheck) Category() string { return CategoryLogs }

func (c *ElevatorCheck) Run(ctx context.Context) CheckResult {
	wrapper := c.Wrapper
	if wrapper == "" {
		wrapper = runner.DefaultElevator
	}
	tc := &ToolCheck{
		Tool:   Tool{Name: wrapper, Purpose: "elevated logs", Package: wrapper},
		Runner: c.Runner,
	}
	r := tc.Run(ctx)
	r.Name = c.Name()
	if r.Status == StatusWarn {
		r.Message = fmt.Sprintf("%s not found, --elevated logs won't work", wrapper)
		r.Suggestion = "Install polkit, or set logs.elevate to another wrapper such as sudo"
	}
	return r
}

func (c *ElevatorCheck) Fix() error {
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "no output"
	}
	return s
}
