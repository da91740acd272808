package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// MinRefreshInterval keeps the poller from spawning tools in a tight loop.
const MinRefreshInterval = 500 * time.Millisecond

// Config represents the complete obision-status configuration file.
type Config struct {
	Version         int               `yaml:"version" mapstructure:"version"`
	RefreshInterval time.Duration     `yaml:"refresh_interval" mapstructure:"refresh_interval"`
	Sources         []string          `yaml:"sources" mapstructure:"sources"`
	TopProcesses    int               `yaml:"top_processes" mapstructure:"top_processes"`
	Temperature     TemperatureConfig `yaml:"temperature" mapstructure:"temperature"`
	Commands        CommandsConfig    `yaml:"commands" mapstructure:"commands"`
	Logs            LogsConfig        `yaml:"logs" mapstructure:"logs"`
	Remote          RemoteConfig      `yaml:"remote" mapstructure:"remote"`
	Serve           ServeConfig       `yaml:"serve" mapstructure:"serve"`
	Output          OutputConfig      `yaml:"output" mapstructure:"output"`
}

// TemperatureConfig says where temperatures are read from.
type TemperatureConfig struct {
	// ThermalZone is the sysfs file with the CPU temperature in millidegrees.
	ThermalZone string `yaml:"thermal_zone" mapstructure:"thermal_zone"`

	// CPULabel and GPULabel are lm-sensors labels used when the primary
	// source has no reading.
	CPULabel string `yaml:"cpu_label" mapstructure:"cpu_label"`
	GPULabel string `yaml:"gpu_label" mapstructure:"gpu_label"`
}

// CommandsConfig controls how external tools are run.
type CommandsConfig struct {
	// Timeout bounds each command. Zero means no limit.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Locale is exported as LC_ALL so tool output and messages are parseable.
	// Empty keeps the inherited locale.
	Locale string `yaml:"locale" mapstructure:"locale"`
}

// LogsConfig holds the defaults for the logs command.
type LogsConfig struct {
	Since           string        `yaml:"since" mapstructure:"since"`
	Lines           int           `yaml:"lines" mapstructure:"lines"`
	Elevate         string        `yaml:"elevate" mapstructure:"elevate"`
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`
}

// RemoteConfig points every command at another machine over SSH.
type RemoteConfig struct {
	// Host is an SSH config alias or [user@]host[:port]. Empty means local.
	Host    string        `yaml:"host" mapstructure:"host"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ServeConfig controls the snapshot stream server.
type ServeConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`

	// Format for one-shot commands: "text", "json", or "yaml".
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:         CurrentConfigVersion,
		RefreshInterval: 10 * time.Second,
		Sources:         []string{},
		TopProcesses:    5,
		Temperature: TemperatureConfig{
			ThermalZone: "/sys/class/thermal/thermal_zone0/temp",
			CPULabel:    "Core 0",
			GPULabel:    "edge",
		},
		Commands: CommandsConfig{
			Locale: "C",
		},
		Logs: LogsConfig{
			Since:           "5 minutes ago",
			Lines:           200,
			Elevate:         "pkexec",
			RefreshInterval: 10 * time.Second,
		},
		Remote: RemoteConfig{
			Timeout: 10 * time.Second,
		},
		Serve: ServeConfig{
			Addr: ":8765",
		},
		Output: OutputConfig{
			Color:  "auto",
			Format: "text",
		},
	}
}
