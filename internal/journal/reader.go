package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/logger"
	"github.com/nirlob/obision-status/internal/runner"
)

// Status classifies the outcome of a fetch.
type Status string

const (
	// StatusLoaded means journalctl ran cleanly.
	StatusLoaded Status = "loaded"
	// StatusPermissionLimited means only the entries readable by the
	// current user were returned.
	StatusPermissionLimited Status = "permission_limited"
	// StatusCancelled means the user dismissed the authentication prompt.
	StatusCancelled Status = "cancelled"
	// StatusFailed means journalctl wrote an error; any partial output is kept.
	StatusFailed Status = "failed"
)

// pkexec exits 126 when the authentication dialog is dismissed.
const exitAuthDismissed = 126

// Result is the text to display for one fetch plus how it was obtained.
type Result struct {
	Query  Query
	Status Status
	// Text is what the log view shows: entries, or a message wrapping them.
	Text string
	// Entries are the journal lines kept after filtering and tailing.
	Entries  []string
	Stderr   string
	LoadedAt time.Time
}

// StatusLine is the one-line summary shown next to the log view.
func (r *Result) StatusLine() string {
	switch r.Status {
	case StatusCancelled:
		return "Authentication cancelled"
	case StatusFailed:
		return "Error loading logs"
	case StatusPermissionLimited:
		return fmt.Sprintf("Limited logs loaded at %s", r.LoadedAt.Format("15:04:05"))
	}
	return fmt.Sprintf("Logs loaded at %s", r.LoadedAt.Format("15:04:05"))
}

// Reader runs journalctl queries.
type Reader struct {
	runner   runner.Runner
	elevator string
	log      logger.Logger
	now      func() time.Time
}

// ReaderOption customizes a Reader.
type ReaderOption func(*Reader)

// WithElevator sets the privilege wrapper for elevated queries.
func WithElevator(wrapper string) ReaderOption {
	return func(r *Reader) { r.elevator = wrapper }
}

// WithLogger sets the reader's logger.
func WithLogger(l logger.Logger) ReaderOption {
	return func(r *Reader) { r.log = l }
}

// WithClock replaces time.Now for LoadedAt.
func WithClock(now func() time.Time) ReaderOption {
	return func(r *Reader) { r.now = now }
}

// NewReader creates a Reader that runs journalctl on r.
func NewReader(r runner.Runner, opts ...ReaderOption) *Reader {
	rd := &Reader{
		runner:   r,
		elevator: runner.DefaultElevator,
		log:      logger.Noop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(rd)
	}
	return rd
}

// Fetch runs the query. The returned error is non-nil only for an invalid
// query or when journalctl (or the elevator) could not be started; every
// other outcome is described by the Result.
func (rd *Reader) Fetch(ctx context.Context, q Query) (*Result, error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	run := rd.runner
	if q.Elevated {
		run = runner.Elevated(rd.runner, rd.elevator)
	}

	rd.log.Debug("fetching logs: %s", q)
	res, err := run.Run(ctx, "journalctl", q.Args()...)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExec,
			"Couldn't run journalctl",
			"Check that systemd's journalctl is installed and on PATH.")
	}

	entries := tail(grepLines(splitLines(res.Stdout), q.lineFilter()), q.Lines)
	out := strings.Join(entries, "\n")
	stderr := strings.TrimSpace(res.Stderr)

	result := &Result{
		Query:    q,
		Entries:  entries,
		Stderr:   stderr,
		LoadedAt: rd.now(),
	}
	result.Status, result.Text = classify(q, res.ExitCode, stderr, out)
	if result.Status != StatusLoaded {
		rd.log.Debug("journalctl %s (exit %d): %s", result.Status, res.ExitCode, stderr)
	}
	return result, nil
}

// classify maps journalctl's exit code and stderr to a status and the text
// to display.
func classify(q Query, exitCode int, stderr, out string) (Status, string) {
	if q.Elevated && (exitCode == exitAuthDismissed || strings.Contains(stderr, "dismissed")) {
		return StatusCancelled, "Authentication cancelled by user."
	}

	if q.Scope == ScopeSystem && !q.Elevated && strings.Contains(stderr, "insufficient permissions") {
		return StatusPermissionLimited, PermissionHelp + orDefault(out, "No accessible logs found")
	}

	if stderr != "" {
		switch {
		case q.Elevated:
			return StatusFailed, fmt.Sprintf("Error reading logs with elevated permissions:\n%s\n\nOutput:\n%s",
				stderr, orDefault(out, "No output"))
		case q.Scope == ScopeUser:
			return StatusFailed, fmt.Sprintf("Error reading logs:\n%s", stderr)
		default:
			return StatusFailed, fmt.Sprintf("Error reading logs:\n%s\n\nOutput:\n%s",
				stderr, orDefault(out, "No output"))
		}
	}

	if q.Scope == ScopeUser {
		return StatusLoaded, orDefault(out, "No user logs found")
	}
	return StatusLoaded, orDefault(out, "No logs found")
}

// PermissionHelp precedes the accessible entries when the system journal
// is only partly readable.
const PermissionHelp = "System logs require elevated permissions.\n\n" +
	"To view system logs, you can:\n" +
	"1. Add your user to the 'systemd-journal' group:\n" +
	"   sudo usermod -a -G systemd-journal $USER\n" +
	"   (requires logout/login to take effect)\n\n" +
	"2. Or run journalctl manually in terminal:\n" +
	"   journalctl -n 200 --no-pager\n\n" +
	"Showing accessible logs instead:\n\n"

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func grepLines(lines []string, substr string) []string {
	if substr == "" {
		return lines
	}
	substr = strings.ToLower(substr)
	var kept []string
	for _, l := range lines {
		if strings.Contains(strings.ToLower(l), substr) {
			kept = append(kept, l)
		}
	}
	return kept
}

func tail(lines []string, n int) []string {
	if n <= 0 || len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
