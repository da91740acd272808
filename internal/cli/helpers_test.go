package cli

import (
	"testing"

	"github.com/nirlob/obision-status/internal/config"
	"github.com/nirlob/obision-status/internal/logger"
	runnertest "github.com/nirlob/obision-status/internal/runner/testing"
)

// withSettings installs cfg as the resolved settings for one test and
// resets machine mode afterwards.
func withSettings(t *testing.T, cfg *config.Config) {
	t.Helper()
	orig := settings
	origMachine := machineMode
	t.Cleanup(func() {
		settings = orig
		machineMode = origMachine
	})
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	settings.cfg = cfg
	settings.cfgPath = ""
	settings.host = ""
}

// fakeSession returns a remote-looking session backed by fake, so no
// gopsutil probe is attached.
func fakeSession(fake *runnertest.FakeRunner) *session {
	return &session{
		cfg:    config.DefaultConfig(),
		host:   "test-host",
		runner: fake,
		log:    logger.Noop(),
	}
}
