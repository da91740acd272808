package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/nirlob/obision-status/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the per-directory config file name.
	ConfigFileName = ".obision-status.yaml"
	// GlobalConfigDir is the directory for the user's config, under $HOME.
	GlobalConfigDir = ".config/obision-status"
	// GlobalConfigFile is the user config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. OBISION_REFRESH_INTERVAL.
	EnvPrefix = "OBISION"
	// DotEnvFile is loaded into the environment before config is read.
	DotEnvFile = ".env"
)

// Load reads config from the specified path. Environment variables
// override file values.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'obision-status config init' to create one, or point at one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .obision-status.yaml in the current directory
// 3. ~/.config/obision-status/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		explicit = ExpandTilde(explicit)
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}
	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if global := GlobalPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// GlobalPath returns ~/.config/obision-status/config.yaml, or "" when the
// home directory is unknown.
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// LoadOrDefault loads the config Find selects, or the defaults (with
// environment overrides) when there is none. It returns the path used.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg, err := parseConfig(newViper(), "environment")
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

// LoadDotEnv copies KEY=value pairs from a .env file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = DotEnvFile
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read "+path,
			"Each line should look like KEY=value")
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	// OBISION_SOURCES arrives as one string.
	if len(cfg.Sources) == 1 && strings.Contains(cfg.Sources[0], ",") {
		cfg.Sources = splitList(cfg.Sources[0])
	}

	cfg.Temperature.ThermalZone = ExpandTilde(cfg.Temperature.ThermalZone)
	cfg.Remote.Host = Expand(cfg.Remote.Host)
	return cfg, nil
}

// setDefaults registers every key so environment overrides are seen by
// Unmarshal even when the file does not mention the key.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("refresh_interval", def.RefreshInterval.String())
	v.SetDefault("sources", def.Sources)
	v.SetDefault("top_processes", def.TopProcesses)
	v.SetDefault("temperature.thermal_zone", def.Temperature.ThermalZone)
	v.SetDefault("temperature.cpu_label", def.Temperature.CPULabel)
	v.SetDefault("temperature.gpu_label", def.Temperature.GPULabel)
	v.SetDefault("commands.timeout", def.Commands.Timeout.String())
	v.SetDefault("commands.locale", def.Commands.Locale)
	v.SetDefault("logs.since", def.Logs.Since)
	v.SetDefault("logs.lines", def.Logs.Lines)
	v.SetDefault("logs.elevate", def.Logs.Elevate)
	v.SetDefault("logs.refresh_interval", def.Logs.RefreshInterval.String())
	v.SetDefault("remote.host", def.Remote.Host)
	v.SetDefault("remote.timeout", def.Remote.Timeout.String())
	v.SetDefault("serve.addr", def.Serve.Addr)
	v.SetDefault("output.color", def.Output.Color)
	v.SetDefault("output.format", def.Output.Format)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
