package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_StartStop(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, "Sampling")

	s.Start()
	s.Start() // second start is a no-op
	s.SetLabel("Sampling again")
	s.Stop()
	s.Stop()

	got := out.String()
	assert.Contains(t, got, "Sampling")
	assert.True(t, strings.HasSuffix(got, "\r\033[K"), "line is cleared on stop")
}
