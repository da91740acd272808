package sshutil

import (
	"bytes"
	"context"
	"fmt"

	"github.com/nirlob/obision-status/internal/errors"
	"golang.org/x/crypto/ssh"
)

// execSession is the part of *ssh.Session that runWithContext drives.
type execSession interface {
	Run(cmd string) error
	Signal(sig ssh.Signal) error
	Close() error
}

// Exec runs cmd through the remote user's shell and captures its output.
// A non-zero exit status is reported through exitCode with a nil error.
// Exit code is -1 if the command couldn't be executed at all. Cancelling
// ctx closes the session, which the remote sshd turns into SIGHUP.
func (c *Client) Exec(ctx context.Context, cmd string) (stdout, stderr []byte, exitCode int, err error) {
	session, err := c.conn.NewSession()
	if err != nil {
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try reconnecting.")
	}
	defer session.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	interrupted, err := runWithContext(ctx, session, cmd)
	if interrupted {
		return nil, nil, -1, errors.WrapWithCode(ctx.Err(), errors.ErrExec,
			fmt.Sprintf("Remote command interrupted: %s", cmd), "")
	}

	if err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			return stdoutBuf.Bytes(), stderrBuf.Bytes(), exitErr.ExitStatus(), nil
		}
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Failed to execute command: %s", cmd),
			"Check if the command exists on the remote host.")
	}

	return stdoutBuf.Bytes(), stderrBuf.Bytes(), 0, nil
}

// runWithContext runs cmd on s until it exits or ctx is done. On
// cancellation the session is killed and closed, and the call still waits
// for Run to return so nothing writes to the output buffers afterwards.
func runWithContext(ctx context.Context, s execSession, cmd string) (interrupted bool, err error) {
	done := make(chan error, 1)
	go func() { done <- s.Run(cmd) }()

	select {
	case err = <-done:
		return false, err
	case <-ctx.Done():
	}

	_ = s.Signal(ssh.SIGKILL)
	_ = s.Close()
	<-done
	return true, ctx.Err()
}
