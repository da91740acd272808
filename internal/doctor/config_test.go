package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nirlob/obision-status/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at empty temp dirs so the
// developer's own config is never picked up.
func isolate(t *testing.T) (home string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	for _, key := range []string{"OBISION_TOP_PROCESSES", "OBISION_REFRESH_INTERVAL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return home
}

func TestConfigFileCheck(t *testing.T) {
	t.Run("explicit path missing", func(t *testing.T) {
		isolate(t)
		check := &ConfigFileCheck{ConfigPath: filepath.Join(t.TempDir(), "nonexistent.yaml")}

		result := check.Run(t.Context())

		assert.Equal(t, StatusFail, result.Status)
		assert.Contains(t, result.Message, "not found")
	})

	t.Run("no file is a fixable warning", func(t *testing.T) {
		home := isolate(t)
		check := &ConfigFileCheck{}

		result := check.Run(t.Context())
		assert.Equal(t, StatusWarn, result.Status)
		assert.True(t, result.Fixable)

		require.NoError(t, check.Fix())
		assert.FileExists(t, filepath.Join(home, config.GlobalConfigDir, config.GlobalConfigFile))

		result = check.Run(t.Context())
		assert.Equal(t, StatusPass, result.Status)
	})

	t.Run("local file found", func(t *testing.T) {
		isolate(t)
		require.NoError(t, os.WriteFile(config.ConfigFileName, []byte("top_processes: 3\n"), 0o644))

		result := (&ConfigFileCheck{}).Run(t.Context())

		assert.Equal(t, StatusPass, result.Status)
		assert.Contains(t, result.Message, config.ConfigFileName)
	})
}

func TestConfigSchemaCheck(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		isolate(t)
		result := (&ConfigSchemaCheck{}).Run(t.Context())

		assert.Equal(t, StatusPass, result.Status)
		assert.Equal(t, "Config valid (refresh every 10s)", result.Message)
	})

	t.Run("invalid value", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("top_processes: 0\n"), 0o644))

		result := (&ConfigSchemaCheck{ConfigPath: path}).Run(t.Context())

		assert.Equal(t, StatusFail, result.Status)
		assert.Contains(t, result.Message, "top_processes must be at least 1")
		assert.Contains(t, result.Suggestion, "top_processes to 5")
	})

	t.Run("broken yaml", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("sources: [cpu\n"), 0o644))

		result := (&ConfigSchemaCheck{ConfigPath: path}).Run(t.Context())

		assert.Equal(t, StatusFail, result.Status)
		assert.Contains(t, result.Message, "Failed to load config")
	})
}
