package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/sysinfo"
	"github.com/nirlob/obision-status/internal/ui"
	"github.com/spf13/cobra"
)

var (
	sysinfoSummary bool
	sysinfoFormat  string
)

var sysinfoCmd = &cobra.Command{
	Use:     "sysinfo",
	Aliases: []string{"info"},
	Short:   "Show hardware and OS details",
	Long: `Show system information from fastfetch. When fastfetch is missing the
short summary (hostname, OS, kernel, desktop, processor, memory, uptime)
is built from standard commands instead.

Examples:
  obision-status sysinfo
  obision-status sysinfo --summary
  obision-status --host nas sysinfo --format yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sysinfoCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	sysinfoCmd.Flags().BoolVar(&sysinfoSummary, "summary", false, "only the short summary")
	sysinfoCmd.Flags().StringVarP(&sysinfoFormat, "format", "o", "", "output format: text, json or yaml")
	rootCmd.AddCommand(sysinfoCmd)
}

func sysinfoCommand(ctx context.Context, w io.Writer) error {
	format, err := resolveFormat(sysinfoFormat, settings.cfg.Output.Format)
	if err != nil {
		return err
	}

	s, err := currentSession("sysinfo")
	if err != nil {
		return err
	}
	defer s.Close()

	report := collectReport(ctx, s.Collector(), sysinfoSummary, func(err error) {
		if format == FormatText {
			fmt.Fprintln(os.Stderr, ui.LabelStyle.Render(errors.Summary(err)+", showing the summary"))
		}
		s.log.Debug("fastfetch: %v", err)
	})
	return writeOutput(w, format, report, func(w io.Writer) error {
		_, err := io.WriteString(w, renderReport(report))
		return err
	})
}

// collectReport returns the detailed report, falling back to the summary
// when fastfetch can't provide one.
func collectReport(ctx context.Context, c *sysinfo.Collector, summary bool, onFallback func(error)) *sysinfo.Report {
	if summary {
		return c.Summary(ctx)
	}
	report, err := c.Details(ctx)
	if err == nil {
		return report
	}
	onFallback(err)
	return c.Summary(ctx)
}

// renderReport aligns titles in one column and values in the next.
func renderReport(r *sysinfo.Report) string {
	width := 0
	for _, row := range r.Rows {
		width = max(width, len(row.Title))
	}

	var b strings.Builder
	for _, row := range r.Rows {
		b.WriteString(ui.PadRight(ui.LabelStyle.Render(row.Title), width+2))
		b.WriteString(ui.ValueStyle.Render(row.Value))
		b.WriteString("\n")
	}
	return b.String()
}
