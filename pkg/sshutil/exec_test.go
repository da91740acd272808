package sshutil

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// streamingSession keeps writing to its stdout until it is closed, like a
// remote command that never finishes.
type streamingSession struct {
	stdout io.Writer

	mu       sync.Mutex
	closed   chan struct{}
	signals  []ssh.Signal
	finished bool
}

func newStreamingSession(w io.Writer) *streamingSession {
	return &streamingSession{stdout: w, closed: make(chan struct{})}
}

func (s *streamingSession) Run(string) error {
	defer func() {
		s.mu.Lock()
		s.finished = true
		s.mu.Unlock()
	}()
	for {
		select {
		case <-s.closed:
			return stderrors.New("session closed")
		default:
			_, _ = s.stdout.Write([]byte("tick\n"))
			time.Sleep(time.Millisecond)
		}
	}
}

func (s *streamingSession) Signal(sig ssh.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = append(s.signals, sig)
	return nil
}

func (s *streamingSession) Close() error {
	close(s.closed)
	return nil
}

func TestRunWithContext_TimeoutWaitsForRun(t *testing.T) {
	var buf bytes.Buffer
	s := newStreamingSession(&buf)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	interrupted, err := runWithContext(ctx, s, "journalctl -f")

	require.True(t, interrupted)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	s.mu.Lock()
	finished, signals := s.finished, s.signals
	s.mu.Unlock()
	assert.True(t, finished, "Run must have returned before the buffers are handed back")
	assert.Equal(t, []ssh.Signal{ssh.SIGKILL}, signals)

	// No writer is left; reading the buffer is safe under -race.
	assert.Contains(t, buf.String(), "tick")
}

type exitingSession struct{ err error }

func (s exitingSession) Run(string) error { return s.err }
func (s exitingSession) Signal(ssh.Signal) error { return nil }
func (s exitingSession) Close() error { return nil }

func TestRunWithContext_Completes(t *testing.T) {
	interrupted, err := runWithContext(context.Background(), exitingSession{}, "uptime")
	assert.NoError(t, err)
	assert.False(t, interrupted)

	want := stderrors.New("exit 3")
	interrupted, err = runWithContext(context.Background(), exitingSession{err: want}, "uptime")
	assert.Equal(t, want, err)
	assert.False(t, interrupted)
}
