package cli

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nirlob/obision-status/internal/config"
	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/monitor"
	"github.com/nirlob/obision-status/internal/poller"
	"github.com/spf13/cobra"
)

var (
	monitorInterval    time.Duration
	monitorHistorySize int
)

var monitorCmd = &cobra.Command{
	Use:     "monitor",
	Aliases: []string{"top"},
	Short:   "Live terminal dashboard",
	Long: `Open a full-screen dashboard that refreshes on every poll.

Views: overview gauges and top processes (1), the sortable process table
(2) and history graphs (3). Press ? for all key bindings.

Examples:
  obision-status monitor
  obision-status monitor --interval 2s
  obision-status --host nas monitor`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(cmd.Context(), monitorInterval)
	},
}

func init() {
	monitorCmd.Flags().DurationVarP(&monitorInterval, "interval", "i", 0, "poll interval (default: refresh_interval from config)")
	monitorCmd.Flags().IntVar(&monitorHistorySize, "history", 0, "points kept per history graph")
	rootCmd.AddCommand(monitorCmd)
}

// monitorCommand starts the poller and runs the dashboard until the user
// quits.
func monitorCommand(ctx context.Context, interval time.Duration) error {
	if err := checkInterval(interval); err != nil {
		return err
	}

	s, err := currentSession("monitor")
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := s.Poller(interval)
	hub := poller.NewHub()
	snapshots, unsubscribe := hub.Subscribe(1)
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx, hub.Publish)
		hub.Close()
	}()

	model := monitor.NewModel(snapshots, monitor.Options{
		Interval:    p.Interval(),
		Host:        s.host,
		HistorySize: monitorHistorySize,
		Refresh:     publishRefresh(p, hub),
	})

	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = prog.Run()
	interrupted := ctx.Err() != nil

	// Stop polling before the SSH connection closes under it.
	cancel()
	<-done

	if err != nil && !interrupted {
		return errors.Wrap(err, "Dashboard exited with an error")
	}
	return nil
}

const minInterval = config.MinRefreshInterval

// checkInterval rejects intervals short enough to keep tools spawning
// back to back. Zero means "use the config".
func checkInterval(interval time.Duration) error {
	if interval == 0 || interval >= minInterval {
		return nil
	}
	return errors.New(errors.ErrConfig,
		"Interval "+interval.String()+" is too short",
		"Use at least "+minInterval.String()+".")
}
