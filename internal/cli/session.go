package cli

import (
	"context"
	"os"
	"time"

	"github.com/nirlob/obision-status/internal/config"
	"github.com/nirlob/obision-status/internal/logger"
	"github.com/nirlob/obision-status/internal/metrics"
	"github.com/nirlob/obision-status/internal/poller"
	"github.com/nirlob/obision-status/internal/runner"
	"github.com/nirlob/obision-status/internal/sysinfo"
	"github.com/nirlob/obision-status/pkg/sshutil"
)

// session is the machine a command runs against: a local runner, or an
// SSH runner holding one connection until Close.
type session struct {
	cfg    *config.Config
	host   string
	runner runner.Runner
	log    logger.Logger
	client *sshutil.Client
}

// dialFunc opens the SSH connection for remote sessions.
var dialFunc = sshutil.Dial

// openSession builds the runner for host; an empty host means this machine.
func openSession(cfg *config.Config, host string, log logger.Logger) (*session, error) {
	s := &session{cfg: cfg, host: host, log: log}
	if host == "" {
		local := runner.NewLocal()
		local.Timeout = cfg.Commands.Timeout
		local.Locale = cfg.Commands.Locale
		s.runner = local
		return s, nil
	}

	log.Debug("connecting to %s", host)
	client, err := dialFunc(host, cfg.Remote.Timeout)
	if err != nil {
		return nil, err
	}
	s.client = client
	s.runner = withTimeout(runner.NewSSH(client, cfg.Commands.Locale), cfg.Commands.Timeout)
	return s, nil
}

// currentSession opens a session from the flags and config resolved by
// the root command.
func currentSession(name string) (*session, error) {
	return openSession(settings.cfg, settings.host, newLogger(name))
}

// Local reports whether commands run on this machine.
func (s *session) Local() bool {
	return s.host == ""
}

// Close drops the SSH connection, if any.
func (s *session) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Poller returns a poller for the configured sources. interval overrides
// refresh_interval when positive.
func (s *session) Poller(interval time.Duration, sources ...metrics.Source) *poller.Poller {
	opts := poller.Options{
		Interval:       s.cfg.RefreshInterval,
		Sources:        s.cfg.SourceList(),
		TopN:           s.cfg.TopProcesses,
		ThermalZone:    s.cfg.Temperature.ThermalZone,
		CPUSensorLabel: s.cfg.Temperature.CPULabel,
		GPUSensorLabel: s.cfg.Temperature.GPULabel,
		Host:           s.host,
	}
	if interval > 0 {
		opts.Interval = interval
	}
	if len(sources) > 0 {
		opts.Sources = sources
	}

	options := []poller.Option{poller.WithLogger(s.log)}
	// gopsutil reads this machine only.
	if s.Local() {
		options = append(options, poller.WithProbe(poller.NewHostProbe()))
	}
	return poller.New(s.runner, opts, options...)
}

// Collector returns a system-information collector for the session.
func (s *session) Collector() *sysinfo.Collector {
	var local sysinfo.Local
	if s.Local() {
		local = sysinfo.HostLocal{Env: os.Getenv}
	}
	return sysinfo.NewCollector(s.runner, local, s.log)
}

// withTimeout bounds every command r runs.
func withTimeout(r runner.Runner, timeout time.Duration) runner.Runner {
	if timeout <= 0 {
		return r
	}
	return runner.Func(func(ctx context.Context, name string, args ...string) (runner.Result, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return r.Run(ctx, name, args...)
	})
}
