package doctor

import (
	"context"
	"fmt"

	"github.com/nirlob/obision-status/internal/config"
	"github.com/nirlob/obision-status/internal/errors"
)

// ConfigFileCheck reports which config file is in effect. Running on
// defaults is fine, so a missing file is only a warning.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    errors.Summary(err),
			Suggestion: "Check the --config path, or run 'obision-status config init'",
		}
	}

	if path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file, using defaults",
			Suggestion: "Run 'obision-status config init' to write one you can edit",
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Config file: " + path,
	}
}

// Fix writes the default config to the user config directory.
func (c *ConfigFileCheck) Fix() error {
	path := config.GlobalPath()
	if path == "" {
		return fmt.Errorf("cannot determine home directory")
	}
	return config.WriteDefault(path, false)
}

// ConfigSchemaCheck loads the effective config, environment overrides
// included, and validates it.
type ConfigSchemaCheck struct {
	ConfigPath string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return CategoryConfig }

func (c *ConfigSchemaCheck) Run(context.Context) CheckResult {
	cfg, _, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Failed to load config: " + errors.Summary(err),
			Suggestion: "Check the YAML syntax and OBISION_* environment variables",
		}
	}

	if err := config.Validate(cfg); err != nil {
		suggestion := "Fix the value, or run 'obision-status config show' to see what is in effect"
		if s := errors.SuggestionOf(err); s != "" {
			suggestion = s
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Invalid config: " + errors.Summary(err),
			Suggestion: suggestion,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config valid (refresh every %s)", cfg.RefreshInterval),
	}
}

func (c *ConfigSchemaCheck) Fix() error {
	return nil // Schema issues require manual intervention
}

// NewConfigChecks creates all config-related checks.
func NewConfigChecks(configPath string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: configPath},
		&ConfigSchemaCheck{ConfigPath: configPath},
	}
}
