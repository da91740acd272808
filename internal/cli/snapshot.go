package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/metrics"
	"github.com/nirlob/obision-status/internal/ui"
	"github.com/nirlob/obision-status/internal/util"
	"github.com/spf13/cobra"
)

var (
	snapshotSamples int
	snapshotGap     time.Duration
	snapshotFormat  string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print one poll of every metric",
	Long: `Poll every configured source and print the result.

CPU and network are rates, so the first poll only records a baseline. The
default of two samples one second apart gives every source a value.

Examples:
  obision-status snapshot
  obision-status snapshot --samples 3 --gap 2s
  obision-status snapshot --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return snapshotCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	snapshotCmd.Flags().IntVar(&snapshotSamples, "samples", 2, "number of polls; the last one is printed")
	snapshotCmd.Flags().DurationVar(&snapshotGap, "gap", time.Second, "time between polls")
	snapshotCmd.Flags().StringVarP(&snapshotFormat, "format", "o", "", "output format: text, json or yaml")
	rootCmd.AddCommand(snapshotCmd)
}

func snapshotCommand(ctx context.Context, w io.Writer) error {
	format, err := resolveFormat(snapshotFormat, settings.cfg.Output.Format)
	if err != nil {
		return err
	}
	if snapshotSamples < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("--samples must be at least 1, got %d", snapshotSamples),
			"Use 2 or more to get CPU and network rates.")
	}

	s, err := currentSession("snapshot")
	if err != nil {
		return err
	}
	defer s.Close()

	p := s.Poller(snapshotGap)

	var spin *ui.Spinner
	if format == FormatText && ui.IsTerminal(os.Stderr) {
		spin = ui.NewSpinner(os.Stderr, "Sampling")
		spin.Start()
	}
	snap, err := sample(ctx, snapshotSamples, p.Interval(), p.Poll)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	return writeOutput(w, format, snap, func(w io.Writer) error {
		_, err := io.WriteString(w, renderSnapshot(snap, hostLabel(s.host)))
		return err
	})
}

// sample polls n times, gap apart, and returns the last snapshot.
func sample(ctx context.Context, n int, gap time.Duration, poll func(context.Context) *metrics.Snapshot) (*metrics.Snapshot, error) {
	var snap *metrics.Snapshot
	for i := 0; i < n; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.New(errors.ErrCancelled, "Sampling interrupted", "")
			case <-time.After(gap):
			}
		}
		snap = poll(ctx)
	}
	if ctx.Err() != nil {
		return nil, errors.New(errors.ErrCancelled, "Sampling interrupted", "")
	}
	return snap, nil
}

func hostLabel(host string) string {
	if host == "" {
		return "local"
	}
	return host
}

const (
	snapshotLabelWidth = 14
	snapshotGaugeWidth = 20
)

// gaugeSources are drawn as bars, in this order.
var gaugeSources = []struct {
	src   metrics.Source
	title string
}{
	{metrics.SourceCPU, "CPU"},
	{metrics.SourceMemory, "Memory"},
	{metrics.SourceDisk, "Disk"},
	{metrics.SourceGPU, "GPU"},
}

// renderSnapshot formats a snapshot for the terminal. Sources that were not
// polled are left out.
func renderSnapshot(snap *metrics.Snapshot, host string) string {
	var b strings.Builder
	b.WriteString(ui.RenderHeader(ui.HeaderInfo{Version: formatVersion(version), Host: host}))
	b.WriteString(ui.LabelStyle.Render(fmt.Sprintf("cycle %d at %s", snap.Cycle, snap.Timestamp.Format("15:04:05"))))
	b.WriteString("\n\n")

	row := func(title, value string) {
		b.WriteString(ui.PadRight(ui.LabelStyle.Render(title), snapshotLabelWidth))
		b.WriteString(value + "\n")
	}

	for _, g := range gaugeSources {
		st, polled := snap.Status[g.src]
		if !polled {
			continue
		}
		if st.State != metrics.StateOK {
			row(g.title, ui.RenderEmptyGauge(snapshotGaugeWidth, snap.Label(g.src)+statusNote(st)))
			continue
		}
		label := snap.Label(g.src)
		switch g.src {
		case metrics.SourceMemory:
			label += fmt.Sprintf(" (%s / %s)", util.FormatMemoryKB(snap.Memory.UsedMB*1024), util.FormatMemoryKB(snap.Memory.TotalMB*1024))
		case metrics.SourceDisk:
			label += " " + snap.Disk.Mount
		}
		pct := gaugePercent(snap, g.src)
		row(g.title, ui.RenderGauge(pct, snapshotGaugeWidth, snap.Level(g.src), label))
	}

	for _, v := range []struct {
		src   metrics.Source
		title string
	}{
		{metrics.SourceCPUTemp, "CPU temp"},
		{metrics.SourceGPUTemp, "GPU temp"},
		{metrics.SourceNetwork, "Network"},
		{metrics.SourceLoad, "Load"},
	} {
		st, polled := snap.Status[v.src]
		if !polled {
			continue
		}
		row(v.title, ui.LevelStyle(snap.Level(v.src)).Render(snap.Label(v.src))+statusNote(st))
	}

	if st, polled := snap.Status[metrics.SourceTopProcesses]; polled {
		b.WriteString("\n" + ui.TitleStyle.Render("Top processes") + "\n")
		if st.State != metrics.StateOK || len(snap.TopProcesses) == 0 {
			b.WriteString("  " + ui.LabelStyle.Render(snap.Label(metrics.SourceTopProcesses)+statusNote(st)) + "\n")
		}
		for _, p := range snap.TopProcesses {
			b.WriteString("  " + ui.PadRight(util.Truncate(p.Name, 30), 32))
			b.WriteString(ui.LevelStyle(metrics.UsageLevel(p.CPU)).Render(fmt.Sprintf("%5.1f%%", p.CPU)) + "\n")
		}
	}
	return b.String()
}

func gaugePercent(snap *metrics.Snapshot, src metrics.Source) float64 {
	switch src {
	case metrics.SourceCPU:
		return float64(snap.CPU.Percent)
	case metrics.SourceMemory:
		return float64(snap.Memory.Percent)
	case metrics.SourceDisk:
		return float64(snap.Disk.Percent)
	case metrics.SourceGPU:
		return float64(snap.GPU.Percent)
	}
	return 0
}

// statusNote explains a missing value, e.g. " (sensors not found)".
func statusNote(st metrics.SourceStatus) string {
	switch {
	case st.State == metrics.StateWarmingUp:
		return " (warming up)"
	case st.State == metrics.StateUnavailable && st.Message != "":
		return " (" + st.Message + ")"
	}
	return ""
}
