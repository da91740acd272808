package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/metrics"
	"github.com/nirlob/obision-status/internal/ui"
	"github.com/nirlob/obision-status/internal/util"
	"github.com/spf13/cobra"
)

var (
	processesSort   string
	processesAsc    bool
	processesLimit  int
	processesFormat string
)

var processesCmd = &cobra.Command{
	Use:     "processes",
	Aliases: []string{"ps"},
	Short:   "List running processes",
	Long: `List user processes with CPU and memory usage. Kernel threads are left
out, and CPU is divided by the core count so 100% means the whole machine.

Examples:
  obision-status processes
  obision-status processes --sort memory --limit 10
  obision-status processes --sort name --asc`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return processesCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	processesCmd.Flags().StringVar(&processesSort, "sort", string(metrics.SortCPU), "sort by: "+sortKeyNames())
	processesCmd.Flags().BoolVar(&processesAsc, "asc", false, "sort ascending")
	processesCmd.Flags().IntVarP(&processesLimit, "limit", "n", 0, "show at most N processes (0 for all)")
	processesCmd.Flags().StringVarP(&processesFormat, "format", "o", "", "output format: text, json or yaml")
	_ = processesCmd.RegisterFlagCompletionFunc("sort", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return strings.Split(sortKeyNames(), ", "), cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.AddCommand(processesCmd)
}

func sortKeyNames() string {
	names := make([]string, 0, len(metrics.SortKeys))
	for _, k := range metrics.SortKeys {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

// ProcessesOutput is the machine-readable form of the process list.
type ProcessesOutput struct {
	Processes []metrics.Process `json:"processes" yaml:"processes"`
	Count     int               `json:"count" yaml:"count"`
	TotalCPU  float64           `json:"total_cpu" yaml:"total_cpu"`
	TotalRSS  uint64            `json:"total_rss_kb" yaml:"total_rss_kb"`
}

func processesCommand(ctx context.Context, w io.Writer) error {
	format, err := resolveFormat(processesFormat, settings.cfg.Output.Format)
	if err != nil {
		return err
	}
	key, err := metrics.ParseSortKey(processesSort)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid --sort value",
			"Sort by one of: "+sortKeyNames())
	}
	if processesLimit < 0 {
		return errors.New(errors.ErrConfig, "--limit can't be negative", "Use 0 to show every process.")
	}

	s, err := currentSession("processes")
	if err != nil {
		return err
	}
	defer s.Close()

	snap := s.Poller(0, metrics.SourceProcesses).Poll(ctx)
	if !snap.Available(metrics.SourceProcesses) {
		return errors.New(errors.ErrExec,
			"Couldn't list processes",
			snap.Status[metrics.SourceProcesses].Message)
	}

	// Totals cover every process, not just the ones shown.
	totals := metrics.Totals(snap.Processes)
	procs := metrics.SortProcesses(snap.Processes, key, processesAsc)
	if processesLimit > 0 && len(procs) > processesLimit {
		procs = procs[:processesLimit]
	}

	out := ProcessesOutput{Processes: procs, Count: totals.Count, TotalCPU: totals.CPU, TotalRSS: totals.RSSKB}
	return writeOutput(w, format, out, func(w io.Writer) error {
		_, err := io.WriteString(w, renderProcesses(procs, key, processesAsc, totals))
		return err
	})
}

// renderProcesses draws the process table with the totals underneath.
func renderProcesses(procs []metrics.Process, key metrics.SortKey, asc bool, totals metrics.ProcessTotals) string {
	columns := []ui.TableColumn{
		{Title: sortTitle("PID", metrics.SortPID, key, asc), Width: 8},
		{Title: sortTitle("Name", metrics.SortName, key, asc), Width: 24},
		{Title: sortTitle("CPU", metrics.SortCPU, key, asc), Width: 8},
		{Title: sortTitle("Memory", metrics.SortMemory, key, asc), Width: 10},
		{Title: "Mem %", Width: 7},
	}

	rows := make([][]string, 0, len(procs))
	for _, p := range procs {
		rows = append(rows, []string{
			strconv.Itoa(p.PID),
			util.Truncate(p.Name, 24),
			fmt.Sprintf("%.1f%%", p.CPU),
			util.FormatMemoryKB(p.RSSKB),
			fmt.Sprintf("%.1f%%", p.MemPercent),
		})
	}

	var b strings.Builder
	if len(rows) == 0 {
		b.WriteString(ui.LabelStyle.Render("No processes") + "\n")
	} else {
		b.WriteString(ui.RenderTable(columns, rows) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d %s  %s  %s\n",
		totals.Count, util.Pluralize(totals.Count, "process", "processes"),
		ui.LevelStyle(metrics.UsageLevel(totals.CPU)).Render(totals.CPULabel()),
		ui.ValueStyle.Render(totals.MemoryLabel())))
	return b.String()
}

// sortTitle marks the active sort column with its direction.
func sortTitle(title string, col, active metrics.SortKey, asc bool) string {
	if col != active {
		return title
	}
	if asc {
		return title + " ▲"
	}
	return title + " ▼"
}
