package runner

import (
	"context"
	"strings"

	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/util"
	"github.com/nirlob/obision-status/pkg/sshutil"
)

// remoteExecutor is the part of *sshutil.Client the SSH runner needs.
type remoteExecutor interface {
	Exec(ctx context.Context, cmd string) (stdout, stderr []byte, exitCode int, err error)
}

// exitNotFound is the status the remote shell uses for an unknown command.
const exitNotFound = 127

// SSH runs commands on a remote host over one shared connection.
type SSH struct {
	client remoteExecutor
	locale string
}

// NewSSH wraps an established connection. The locale is exported the same
// way as for Local.
func NewSSH(client *sshutil.Client, locale string) *SSH {
	return &SSH{client: client, locale: locale}
}

func (s *SSH) Run(ctx context.Context, name string, args ...string) (Result, error) {
	stdout, stderr, code, err := s.client.Exec(ctx, s.commandString(name, args...))
	if err != nil {
		return Result{ExitCode: -1}, err
	}
	// The local runner fails to spawn here; report it the same way.
	if code == exitNotFound {
		return Result{Stderr: string(stderr), ExitCode: -1}, errors.New(errors.ErrExec,
			"Couldn't start "+name+" on the remote host",
			strings.TrimSpace(string(stderr)))
	}
	return Result{Stdout: string(stdout), Stderr: string(stderr), ExitCode: code}, nil
}

// commandString quotes every argument so the remote shell sees the same
// argv a local exec would.
func (s *SSH) commandString(name string, args ...string) string {
	parts := make([]string, 0, len(args)+3)
	if s.locale != "" {
		parts = append(parts, "env", "LC_ALL="+util.ShellQuote(s.locale))
	}
	parts = append(parts, util.ShellQuote(name))
	for _, a := range args {
		parts = append(parts, util.ShellQuote(a))
	}
	return strings.Join(parts, " ")
}
