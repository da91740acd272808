// Package doctor diagnoses whether obision-status can read system state:
// the external tools it shells out to, journal access, config and, when
// monitoring a remote host, SSH.
package doctor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nirlob/obision-status/internal/runner"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText lets results serialize as "pass", "warn" or "fail".
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name" yaml:"name"`
	Category   string      `json:"category" yaml:"category"`
	Status     CheckStatus `json:"status" yaml:"status"`
	Message    string      `json:"message" yaml:"message"`
	Suggestion string      `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Fixable    bool        `json:"fixable,omitempty" yaml:"fixable,omitempty"` // Whether --fix can address this
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns the check's category (e.g., "TOOLS", "LOGS", "SSH").
	Category() string

	// Run executes the check and returns the result.
	Run(ctx context.Context) CheckResult

	// Fix attempts to automatically fix the issue (if supported).
	// Returns nil if fix was successful or not applicable.
	Fix() error
}

// Categories in the order doctor prints them.
const (
	CategoryConfig = "CONFIG"
	CategoryTools  = "TOOLS"
	CategoryLogs   = "LOGS"
	CategorySSH    = "SSH"
)

var categoryOrder = []string{CategoryConfig, CategorySSH, CategoryTools, CategoryLogs}

// RunAll executes all checks in order and returns the results.
func RunAll(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = run(ctx, check)
	}
	return results
}

// RunAllParallel executes all checks in parallel and returns the results in
// the order of checks.
func RunAllParallel(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup

	for i, check := range checks {
		wg.Add(1)
		go func(idx int, c Check) {
			defer wg.Done()
			results[idx] = run(ctx, c)
		}(i, check)
	}

	wg.Wait()
	return results
}

func run(ctx context.Context, c Check) CheckResult {
	r := c.Run(ctx)
	if r.Name == "" {
		r.Name = c.Name()
	}
	if r.Category == "" {
		r.Category = c.Category()
	}
	return r
}

// GroupByCategory organizes results by category. Categories come back in
// display order, unknown ones sorted after the known ones.
func GroupByCategory(results []CheckResult) ([]string, map[string][]CheckResult) {
	grouped := make(map[string][]CheckResult)
	for _, r := range results {
		grouped[r.Category] = append(grouped[r.Category], r)
	}

	var order []string
	for _, cat := range categoryOrder {
		if _, ok := grouped[cat]; ok {
			order = append(order, cat)
		}
	}
	var extra []string
	for cat := range grouped {
		if !contains(categoryOrder, cat) {
			extra = append(extra, cat)
		}
	}
	sort.Strings(extra)
	return append(order, extra...), grouped
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	return CountByStatus(results)[StatusFail] > 0
}

// HasIssues returns true if any result has a fail or warn status.
func HasIssues(results []CheckResult) bool {
	counts := CountByStatus(results)
	return counts[StatusFail]+counts[StatusWarn] > 0
}

// FixableCount returns the number of issues that can be fixed automatically.
func FixableCount(results []CheckResult) int {
	count := 0
	for _, r := range results {
		if r.Fixable && r.Status != StatusPass {
			count++
		}
	}
	return count
}

// FixAll runs Fix on every check whose result is a fixable issue and
// returns the names of the checks it fixed.
func FixAll(checks []Check, results []CheckResult) ([]string, error) {
	var fixed []string
	for i, c := range checks {
		if i >= len(results) || !results[i].Fixable || results[i].Status == StatusPass {
			continue
		}
		if err := c.Fix(); err != nil {
			return fixed, fmt.Errorf("%s: %w", c.Name(), err)
		}
		fixed = append(fixed, c.Name())
	}
	return fixed, nil
}

// Summary returns a summary string of the check results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	warn := counts[StatusWarn]
	fail := counts[StatusFail]

	if fail == 0 && warn == 0 {
		return "Everything looks good"
	}

	total := warn + fail
	return fmt.Sprintf("%d issue%s found", total, pluralize(total))
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Options selects which checks NewChecks builds.
type Options struct {
	ConfigPath string
	// Host is the remote host being monitored; empty skips the SSH checks.
	Host    string
	Timeout time.Duration
	// Runner is where metric commands run: the remote host when Host is set.
	Runner runner.Runner
	// Local runs commands on this machine, for ssh-add.
	Local    runner.Runner
	Elevator string
}

// NewChecks builds the full doctor suite in display order.
func NewChecks(o Options) []Check {
	checks := NewConfigChecks(o.ConfigPath)
	if o.Host != "" {
		checks = append(checks, NewSSHChecks(o.Host, o.Timeout, o.Local)...)
	}
	checks = append(checks, NewToolChecks(o.Runner)...)
	checks = append(checks,
		&JournalAccessCheck{Runner: o.Runner},
		&ElevatorCheck{Wrapper: o.Elevator, Runner: o.Runner},
	)
	return checks
}
