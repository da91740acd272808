package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/journal"
	"github.com/nirlob/obision-status/internal/ui"
	"github.com/spf13/cobra"
)

var (
	logsUser        bool
	logsFilter      string
	logsPriority    string
	logsLines       int
	logsSince       string
	logsElevated    bool
	logsFollow      bool
	logsRefresh     time.Duration
	logsInteractive bool
	logsFormat      string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent journal entries",
	Long: `Read the systemd journal with journalctl.

System logs may need extra permissions. Without them only the entries
your user can read are shown; --elevated runs journalctl through the
configured wrapper (pkexec by default), which asks for a password.

System filters: all, kernel, boot, services, auth, cron, network,
bluetooth, usb. User filters (--user): all, services, desktop,
applications, shell.

Examples:
  obision-status logs
  obision-status logs --filter kernel --priority err
  obision-status logs --user --filter shell --since "1 hour ago"
  obision-status logs --elevated --follow
  obision-status logs --interactive`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return logsCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	f := logsCmd.Flags()
	f.BoolVar(&logsUser, "user", false, "read the user journal instead of the system journal")
	f.StringVarP(&logsFilter, "filter", "f", string(journal.FilterAll), "entry source filter")
	f.StringVarP(&logsPriority, "priority", "p", string(journal.PriorityAll), "minimum priority (emerg..debug, or all)")
	f.IntVarP(&logsLines, "lines", "n", 0, fmt.Sprintf("keep the last N lines, %d-%d (default: logs.lines)", journal.MinLines, journal.MaxLines))
	f.StringVar(&logsSince, "since", "", `journalctl --since value (default: logs.since, e.g. "5 minutes ago")`)
	f.BoolVar(&logsElevated, "elevated", false, "run journalctl through the privilege wrapper")
	f.BoolVar(&logsFollow, "follow", false, "keep re-reading and print new entries")
	f.DurationVar(&logsRefresh, "refresh", 0, "re-read interval with --follow (default: logs.refresh_interval)")
	f.BoolVarP(&logsInteractive, "interactive", "I", false, "choose the query in a form")
	f.StringVarP(&logsFormat, "format", "o", "", "output format: text, json or yaml")

	_ = logsCmd.RegisterFlagCompletionFunc("filter", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		scope := journal.ScopeSystem
		if logsUser {
			scope = journal.ScopeUser
		}
		return filterNames(scope), cobra.ShellCompDirectiveNoFileComp
	})
	_ = logsCmd.RegisterFlagCompletionFunc("priority", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, p := range journal.Priorities() {
			out = append(out, string(p))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.AddCommand(logsCmd)
}

// LogsOutput is the machine-readable form of one fetch.
type LogsOutput struct {
	Scope    string    `json:"scope" yaml:"scope"`
	Filter   string    `json:"filter" yaml:"filter"`
	Priority string    `json:"priority" yaml:"priority"`
	Status   string    `json:"status" yaml:"status"`
	Entries  []string  `json:"entries" yaml:"entries"`
	Stderr   string    `json:"stderr,omitempty" yaml:"stderr,omitempty"`
	LoadedAt time.Time `json:"loaded_at" yaml:"loaded_at"`
}

func logsCommand(ctx context.Context, w io.Writer) error {
	format, err := resolveFormat(logsFormat, settings.cfg.Output.Format)
	if err != nil {
		return err
	}
	if logsFollow && format != FormatText {
		return errors.New(errors.ErrConfig,
			"--follow only works with text output",
			"Drop --follow, or use --format text.")
	}

	q := logsQuery()
	if logsInteractive {
		if !ui.IsTerminal(os.Stdin) {
			return errors.New(errors.ErrConfig,
				"--interactive needs a terminal",
				"Pass --filter, --priority and --lines instead.")
		}
		if q, err = promptQuery(q); err != nil {
			return err
		}
	}
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return err
	}

	s, err := currentSession("journal")
	if err != nil {
		return err
	}
	defer s.Close()

	rd := journal.NewReader(s.runner,
		journal.WithElevator(settings.cfg.Logs.Elevate),
		journal.WithLogger(s.log))

	if logsFollow {
		return followLogs(ctx, rd, q, w)
	}

	res, err := rd.Fetch(ctx, q)
	if err != nil {
		return err
	}
	if format != FormatText {
		return writeOutput(w, format, logsOutput(res), nil)
	}
	printLogs(w, res, res.Entries)
	return logsStatusError(res)
}

// logsQuery builds the query from flags, falling back to the logs config.
func logsQuery() journal.Query {
	q := journal.DefaultQuery()
	if logsUser {
		q.Scope = journal.ScopeUser
	}
	q.Filter = journal.Filter(logsFilter)
	q.Priority = journal.Priority(logsPriority)
	q.Since = firstNonEmpty(logsSince, settings.cfg.Logs.Since)
	q.Lines = settings.cfg.Logs.Lines
	if logsLines != 0 {
		q.Lines = logsLines
	}
	q.Elevated = logsElevated
	return q
}

// promptQuery lets the user adjust q in a form.
func promptQuery(q journal.Query) (journal.Query, error) {
	scope := string(q.Scope)
	filter := string(q.Filter)
	priority := string(q.Priority)
	lines := strconv.Itoa(q.Lines)
	elevated := q.Elevated

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Journal").
				Options(
					huh.NewOption("System", string(journal.ScopeSystem)),
					huh.NewOption("User", string(journal.ScopeUser)),
				).
				Value(&scope),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Filter").
				OptionsFunc(func() []huh.Option[string] {
					return huh.NewOptions(filterNames(journal.Scope(scope))...)
				}, &scope).
				Value(&filter),
			huh.NewSelect[string]().
				Title("Priority").
				Options(priorityOptions()...).
				Value(&priority),
			huh.NewInput().
				Title("Lines").
				Description(fmt.Sprintf("Between %d and %d", journal.MinLines, journal.MaxLines)).
				Value(&lines).
				Validate(validateLines),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Read with elevated permissions?").
				Description("Runs journalctl through " + settings.cfg.Logs.Elevate).
				Value(&elevated),
		).WithHideFunc(func() bool { return scope == string(journal.ScopeUser) }),
	)

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return q, errors.New(errors.ErrCancelled, "Log query cancelled", "")
		}
		return q, errors.WrapWithCode(err, errors.ErrConfig, "Log query form failed", "")
	}

	q.Scope = journal.Scope(scope)
	q.Filter = journal.Filter(filter)
	q.Priority = journal.Priority(priority)
	q.Lines, _ = strconv.Atoi(lines)
	q.Elevated = elevated && q.Scope == journal.ScopeSystem
	return q, nil
}

func validateLines(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if n < journal.MinLines || n > journal.MaxLines {
		return fmt.Errorf("must be between %d and %d", journal.MinLines, journal.MaxLines)
	}
	return nil
}

func filterNames(scope journal.Scope) []string {
	var out []string
	for _, f := range journal.Filters(scope) {
		out = append(out, string(f))
	}
	return out
}

func priorityOptions() []huh.Option[string] {
	var out []huh.Option[string]
	for _, p := range journal.Priorities() {
		out = append(out, huh.NewOption(string(p), string(p)))
	}
	return out
}

// followLogs prints the first fetch, then only lines that appeared since.
func followLogs(ctx context.Context, rd *journal.Reader, q journal.Query, w io.Writer) error {
	interval := logsRefresh
	if interval <= 0 {
		interval = settings.cfg.Logs.RefreshInterval
	}

	var (
		prev    []string
		lastErr error
	)
	rd.Follow(ctx, q, interval, func(res *journal.Result, err error) {
		if err != nil {
			lastErr = err
			return
		}
		fresh := newEntries(prev, res.Entries)
		if prev == nil || len(fresh) > 0 || res.Status != journal.StatusLoaded {
			printLogs(w, res, fresh)
		}
		prev = res.Entries
		if res.Status == journal.StatusCancelled {
			lastErr = logsStatusError(res)
		}
	})
	return lastErr
}

// newEntries returns the tail of cur that follows the last line of prev.
// When that line has scrolled out of cur, all of cur is new.
func newEntries(prev, cur []string) []string {
	if len(prev) == 0 {
		return cur
	}
	last := prev[len(prev)-1]
	for i := len(cur) - 1; i >= 0; i-- {
		if cur[i] == last {
			return cur[i+1:]
		}
	}
	return cur
}

// printLogs writes entries with severity colors, or the result text when
// the fetch did not load cleanly. The status line goes to stderr.
func printLogs(w io.Writer, res *journal.Result, entries []string) {
	switch res.Status {
	case journal.StatusLoaded:
		if len(res.Entries) == 0 {
			fmt.Fprintln(w, ui.LabelStyle.Render(res.Text))
		}
		for _, line := range entries {
			fmt.Fprintln(w, highlightLine(line))
		}
	case journal.StatusPermissionLimited:
		fmt.Fprintln(os.Stderr, ui.LabelStyle.Render(strings.TrimSpace(journal.PermissionHelp)))
		fmt.Fprintln(os.Stderr, ui.LabelStyle.Render("Or pass --elevated."))
		for _, line := range entries {
			fmt.Fprintln(w, highlightLine(line))
		}
	default:
		fmt.Fprintln(w, res.Text)
	}
	fmt.Fprintln(os.Stderr, ui.LabelStyle.Render(res.StatusLine()))
}

// logsStatusError maps a failed or cancelled fetch to the exit status.
func logsStatusError(res *journal.Result) error {
	switch res.Status {
	case journal.StatusFailed:
		return errors.NewExitError(1)
	case journal.StatusCancelled:
		return errors.NewExitError(130)
	}
	return nil
}

var severityStyles = map[journal.Severity]lipgloss.Style{
	journal.SeverityError:   lipgloss.NewStyle().Foreground(ui.ColorError),
	journal.SeverityWarning: lipgloss.NewStyle().Foreground(ui.ColorWarning),
	journal.SeveritySuccess: lipgloss.NewStyle().Foreground(ui.ColorSuccess),
	journal.SeverityInfo:    lipgloss.NewStyle().Foreground(ui.ColorInfo),
}

// highlightLine dims the timestamp and colors the rest by severity.
func highlightLine(line string) string {
	ts := journal.TimestampPrefix(line)
	rest := line[len(ts):]
	if style, ok := severityStyles[journal.Classify(line)]; ok {
		rest = style.Render(rest)
	}
	if ts == "" {
		return rest
	}
	return ui.LabelStyle.Render(ts) + rest
}

func logsOutput(res *journal.Result) LogsOutput {
	entries := res.Entries
	if entries == nil {
		entries = []string{}
	}
	return LogsOutput{
		Scope:    string(res.Query.Scope),
		Filter:   string(res.Query.Filter),
		Priority: string(res.Query.Priority),
		Status:   string(res.Status),
		Entries:  entries,
		Stderr:   res.Stderr,
		LoadedAt: res.LoadedAt,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
