package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nirlob/obision-status/internal/config"
	"github.com/nirlob/obision-status/internal/doctor"
	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/runner"
	"github.com/nirlob/obision-status/internal/ui"
	"github.com/spf13/cobra"
)

var (
	doctorJSON bool
	doctorFix  bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that every data source can be read",
	Long: `Check the config file, the external tools every metric depends on,
journal access and, with --host, the SSH connection.

Examples:
  obision-status doctor
  obision-status doctor --fix
  obision-status --host nas doctor --json`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Fixed      []string         `json:"fixed,omitempty"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand runs every check. The config is read leniently here: a
// broken file is something the config checks report, not a reason to stop.
func doctorCommand(ctx context.Context, w io.Writer) error {
	if doctorJSON {
		machineMode = true
	}

	cfg := config.DefaultConfig()
	if settings.cfgPath != "" {
		if loaded, err := config.Load(settings.cfgPath); err == nil {
			cfg = loaded
		}
	}
	host := settings.host
	if hostFlag == "" {
		host = cfg.Remote.Host
	}

	log := newLogger("doctor")
	target, closeTarget := doctorRunner(cfg, host)
	defer closeTarget()

	local := runner.NewLocal()
	checks := doctor.NewChecks(doctor.Options{
		ConfigPath: settings.cfgPath,
		Host:       host,
		Timeout:    cfg.Remote.Timeout,
		Runner:     target,
		Local:      local,
		Elevator:   cfg.Logs.Elevate,
	})

	results := doctor.RunAllParallel(ctx, checks)

	var fixed []string
	if doctorFix && doctor.FixableCount(results) > 0 {
		var err error
		fixed, err = doctor.FixAll(checks, results)
		if err != nil {
			log.Warn("fix failed: %v", err)
		}
		if len(fixed) > 0 {
			results = doctor.RunAll(ctx, checks)
		}
	}

	if doctorJSON {
		if err := WriteJSONSuccess(w, buildDoctorOutput(results, fixed)); err != nil {
			return err
		}
	} else {
		renderDoctor(w, results, fixed, doctorFix)
	}

	if doctor.HasFailures(results) {
		return errors.NewExitError(1)
	}
	return nil
}

// doctorRunner returns where metric commands would run. When the SSH
// connection fails every tool check reports the dial error, and the SSH
// checks explain it.
func doctorRunner(cfg *config.Config, host string) (runner.Runner, func()) {
	s, err := openSession(cfg, host, newLogger("doctor"))
	if err != nil {
		failed := runner.Func(func(context.Context, string, ...string) (runner.Result, error) {
			return runner.Result{}, fmt.Errorf("not connected to %s: %s", host, errors.Summary(err))
		})
		return failed, func() {}
	}
	return s.runner, func() { _ = s.Close() }
}

func buildDoctorOutput(results []doctor.CheckResult, fixed []string) DoctorOutput {
	order, grouped := doctor.GroupByCategory(results)
	out := DoctorOutput{
		Categories: make([]CategoryOutput, 0, len(order)),
		Fixed:      fixed,
	}
	for _, cat := range order {
		out.Categories = append(out.Categories, CategoryOutput{Name: cat, Results: grouped[cat]})
	}

	counts := doctor.CountByStatus(results)
	out.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		Fixable:  doctor.FixableCount(results),
		AllClear: !doctor.HasIssues(results),
	}
	return out
}

// renderDoctor prints the grouped report and a one-line summary.
func renderDoctor(w io.Writer, results []doctor.CheckResult, fixed []string, fixRequested bool) {
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("obision-status diagnostic report"))
	fmt.Fprintln(w)

	order, grouped := doctor.GroupByCategory(results)
	var rows []ui.DoctorCheckRow
	for _, cat := range order {
		for _, r := range grouped[cat] {
			rows = append(rows, ui.DoctorCheckRow{
				Status:     r.Status.String(),
				Category:   cat,
				Message:    capitalizeFirst(r.Message),
				Suggestion: r.Suggestion,
			})
		}
	}
	fmt.Fprint(w, ui.RenderDoctorTable(rows))

	fmt.Fprintln(w, ui.LabelStyle.Render(strings.Repeat("━", 60)))
	fmt.Fprintln(w)

	for _, name := range fixed {
		fmt.Fprintf(w, "%s fixed %s\n", successStyle.Render(ui.SymbolSuccess), name)
	}

	summary := doctor.Summary(results)
	if !doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s %s\n", successStyle.Render(ui.SymbolSuccess), summary)
	} else {
		fmt.Fprintf(w, "%s %s\n", errorStyle.Render(ui.SymbolFail), summary)
		if doctor.FixableCount(results) > 0 && !fixRequested {
			fmt.Fprintf(w, "\n  Run with %s to attempt automatic fixes where possible.\n",
				ui.LabelStyle.Render("--fix"))
		}
	}
	fmt.Fprintln(w)
}

// capitalizeFirst capitalizes the first letter of a string.
func capitalizeFirst(s string) string {
	if len(s) == 0 {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-32) + s[1:]
	}
	return s
}
