package cli

import (
	"context"
	"time"

	"github.com/nirlob/obision-status/internal/poller"
	"github.com/nirlob/obision-status/internal/stream"
	"github.com/spf13/cobra"
)

var (
	serveAddr     string
	serveInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream snapshots over a websocket",
	Long: `Poll continuously and push every snapshot to connected clients.

Endpoints:
  /ws        websocket; ?sources=cpu,memory limits the fields sent
  /snapshot  the latest snapshot as JSON
  /health    status, subscriber count and latest cycle

Clients may send {"type":"ping"}, {"type":"latest"} or {"type":"refresh"}.

Examples:
  obision-status serve
  obision-status serve --addr 127.0.0.1:9000 --interval 5s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCommand(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: serve.addr from config)")
	serveCmd.Flags().DurationVarP(&serveInterval, "interval", "i", 0, "poll interval (default: refresh_interval from config)")
	rootCmd.AddCommand(serveCmd)
}

func serveCommand(ctx context.Context) error {
	if err := checkInterval(serveInterval); err != nil {
		return err
	}
	addr := firstNonEmpty(serveAddr, settings.cfg.Serve.Addr)

	s, err := currentSession("serve")
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := s.Poller(serveInterval)
	hub := poller.NewHub()
	defer hub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx, hub.Publish)
	}()

	srv := stream.NewServer(hub,
		stream.WithLogger(newLogger("stream")),
		stream.WithRefresh(publishRefresh(p, hub)))
	err = srv.ListenAndServe(ctx, addr)

	cancel()
	<-done
	return err
}

// publishRefresh returns the handler for on-demand polls. A refresh whose
// caller went away, or that overlaps a running one, publishes nothing.
func publishRefresh(p *poller.Poller, hub *poller.Hub) func(context.Context) {
	return func(ctx context.Context) {
		if snap, ok := p.Refresh(ctx); ok {
			hub.Publish(snap)
		}
	}
}
