package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/journal"
	"github.com/nirlob/obision-status/internal/metrics"
)

// Valid values for enumerated output settings.
var (
	ColorModes    = []string{"auto", "always", "never"}
	OutputFormats = []string{"text", "json", "yaml"}
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but obision-status only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade obision-status, or lower the version in your config.")
	}

	if cfg.RefreshInterval < MinRefreshInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("refresh_interval %s is too short", cfg.RefreshInterval),
			fmt.Sprintf("Use at least %s; every cycle starts several processes.", MinRefreshInterval))
	}

	for _, name := range cfg.Sources {
		if _, ok := metrics.ParseSource(name); !ok {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown source '%s'", name),
				"Valid sources: "+sourceNames())
		}
	}

	if cfg.TopProcesses < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("top_processes must be at least 1, got %d", cfg.TopProcesses),
			"Set top_processes to 5 for the usual list.")
	}

	if cfg.Commands.Timeout < 0 {
		return errors.New(errors.ErrConfig,
			"commands.timeout can't be negative",
			"Use 0 for no limit, or a duration like 5s.")
	}

	if err := validateLogs(cfg.Logs); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'logs' section in your config.")
	}

	if err := validateOutput(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'output' section in your config.")
	}

	if cfg.Remote.Host != "" && cfg.Remote.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			"remote.timeout must be positive when remote.host is set",
			"Try remote.timeout: 10s")
	}

	if strings.TrimSpace(cfg.Serve.Addr) == "" {
		return errors.New(errors.ErrConfig,
			"serve.addr is empty",
			"Use host:port, e.g. :8765 or 127.0.0.1:8765")
	}

	return nil
}

func validateLogs(l LogsConfig) error {
	if l.Lines < journal.MinLines || l.Lines > journal.MaxLines {
		return fmt.Errorf("logs.lines must be between %d and %d, got %d", journal.MinLines, journal.MaxLines, l.Lines)
	}
	if strings.TrimSpace(l.Since) == "" {
		return fmt.Errorf("logs.since is empty")
	}
	if strings.TrimSpace(l.Elevate) == "" {
		return fmt.Errorf("logs.elevate is empty")
	}
	if l.RefreshInterval < time.Second {
		return fmt.Errorf("logs.refresh_interval must be at least 1s, got %s", l.RefreshInterval)
	}
	return nil
}

func validateOutput(o OutputConfig) error {
	if !contains(ColorModes, o.Color) {
		return fmt.Errorf("output.color must be one of %s, got '%s'", strings.Join(ColorModes, ", "), o.Color)
	}
	if !contains(OutputFormats, o.Format) {
		return fmt.Errorf("output.format must be one of %s, got '%s'", strings.Join(OutputFormats, ", "), o.Format)
	}
	return nil
}

// SourceList converts configured names into metric sources. Empty means
// every source.
func (c *Config) SourceList() []metrics.Source {
	var out []metrics.Source
	for _, name := range c.Sources {
		if src, ok := metrics.ParseSource(name); ok {
			out = append(out, src)
		}
	}
	return out
}

func sourceNames() string {
	var names []string
	for _, s := range metrics.AllSources() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
