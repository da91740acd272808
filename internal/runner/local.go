package runner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/nirlob/obision-status/internal/errors"
)

// Local runs commands on this machine. Arguments are passed straight to
// the program; no shell is involved.
type Local struct {
	// Timeout bounds each command. Zero means no limit, so a hung tool
	// stalls the poll cycle until it exits.
	Timeout time.Duration

	// Locale is exported as LC_ALL so column layouts and stderr messages
	// stay predictable. Empty leaves the environment untouched.
	Locale string
}

// NewLocal returns a Local runner with the C locale and no timeout.
func NewLocal() *Local {
	return &Local{Locale: "C"}
}

func (l *Local) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if l.Locale != "" {
		cmd.Env = append(os.Environ(), "LC_ALL="+l.Locale)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	if ctx.Err() != nil {
		res.ExitCode = -1
		return res, errors.WrapWithCode(ctx.Err(), errors.ErrExec,
			"Command did not finish: "+CommandLine(name, args...),
			"Raise commands.timeout or check why the tool hangs.")
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	res.ExitCode = -1
	return res, errors.WrapWithCode(err, errors.ErrExec,
		"Couldn't start "+name,
		"Make sure the command exists and is executable. Run: obision-status doctor")
}
