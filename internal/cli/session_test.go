package cli

import (
	"context"
	"testing"
	"time"

	"github.com/nirlob/obision-status/internal/config"
	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/logger"
	"github.com/nirlob/obision-status/internal/metrics"
	"github.com/nirlob/obision-status/internal/runner"
	runnertest "github.com/nirlob/obision-status/internal/runner/testing"
	"github.com/nirlob/obision-status/pkg/sshutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const psAll = `   2145 40.0  3.1 512000 /usr/lib/firefox/firefox
     88  0.0  0.0      0 [kworker/0:1]
   1234  8.0  0.5  40960 /usr/bin/gnome-shell
`

func TestOpenSession_Local(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Commands.Timeout = 7 * time.Second

	s, err := openSession(cfg, "", logger.Noop())
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.Local())
	local, ok := s.runner.(*runner.Local)
	require.True(t, ok)
	assert.Equal(t, 7*time.Second, local.Timeout)
	assert.Equal(t, cfg.Commands.Locale, local.Locale)
	assert.NoError(t, s.Close())
}

func TestOpenSession_DialError(t *testing.T) {
	orig := dialFunc
	defer func() { dialFunc = orig }()

	var gotHost string
	var gotTimeout time.Duration
	dialFunc = func(host string, timeout time.Duration) (*sshutil.Client, error) {
		gotHost, gotTimeout = host, timeout
		return nil, errors.New(errors.ErrSSH, "Couldn't connect to nas", "")
	}

	cfg := config.DefaultConfig()
	_, err := openSession(cfg, "nas", logger.Noop())

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSSH))
	assert.Equal(t, "nas", gotHost)
	assert.Equal(t, cfg.Remote.Timeout, gotTimeout)
}

func TestSessionPoller_ProcessesOnly(t *testing.T) {
	fake := runnertest.NewFakeRunner().
		Stdout("nproc", "4\n").
		Stdout("ps xo pid,%cpu,%mem,rss,args --sort=-%cpu --no-headers", psAll)
	s := fakeSession(fake)

	p := s.Poller(0, metrics.SourceProcesses)
	snap := p.Poll(context.Background())

	assert.Equal(t, s.cfg.RefreshInterval, p.Interval())
	assert.Equal(t, "test-host", snap.Host)
	require.True(t, snap.Available(metrics.SourceProcesses))
	require.Len(t, snap.Processes, 2)
	assert.Equal(t, 2145, snap.Processes[0].PID)
	assert.Equal(t, 10.0, snap.Processes[0].CPU)

	_, polled := snap.Status[metrics.SourceCPU]
	assert.False(t, polled)
}

func TestSessionPoller_IntervalOverride(t *testing.T) {
	s := fakeSession(runnertest.NewFakeRunner())
	assert.Equal(t, 3*time.Second, s.Poller(3*time.Second).Interval())
}

func TestWithTimeout(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	inner := runner.Func(func(ctx context.Context, name string, args ...string) (runner.Result, error) {
		deadline, hasDeadline = ctx.Deadline()
		return runner.Result{Stdout: name}, nil
	})

	res, err := withTimeout(inner, time.Minute).Run(context.Background(), "uptime")
	require.NoError(t, err)
	assert.Equal(t, "uptime", res.Stdout)
	assert.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)

	_, _ = withTimeout(inner, 0).Run(context.Background(), "uptime")
	assert.False(t, hasDeadline, "zero timeout leaves the context alone")
}
