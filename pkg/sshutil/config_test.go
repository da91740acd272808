package sshutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
Host workstation
    HostName 192.168.1.40
    User admin
    Port 2222
    IdentityFile ~/.ssh/id_workstation

Host nas
    HostName nas.lan

Host *
    ServerAliveInterval 60

Match host legacy
    User old

Host after-match
    HostName 10.0.0.9
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0600))
	return path
}

func TestListHostsFile(t *testing.T) {
	hosts, err := ListHostsFile(writeConfig(t))
	require.NoError(t, err)

	require.Len(t, hosts, 2, "wildcards and entries after Match are skipped")
	assert.Equal(t, "nas", hosts[0].Alias)
	assert.Equal(t, "nas.lan", hosts[0].Description())
	assert.Equal(t, "workstation", hosts[1].Alias)
	assert.Equal(t, "192.168.1.40 (admin)", hosts[1].Description())
}

func TestListHostsFile_Missing(t *testing.T) {
	hosts, err := ListHostsFile(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestResolveSettings(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("USER", "tester")
	path := writeConfig(t)

	tests := []struct {
		name     string
		host     string
		wantAddr string
		wantUser string
		wantKey  string
	}{
		{"alias from config", "workstation", "192.168.1.40:2222", "admin", "/home/tester/.ssh/id_workstation"},
		{"plain hostname", "example.org", "example.org:22", "tester", ""},
		{"user and port", "root@example.org:2200", "example.org:2200", "root", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := resolveSettings(tt.host, path)
			assert.Equal(t, tt.wantAddr, s.address())
			assert.Equal(t, tt.wantUser, s.user)
			assert.Equal(t, tt.wantKey, s.identityFile)
		})
	}
}

func TestResolveSettings_NoConfig(t *testing.T) {
	s := resolveSettings("box", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, "box:22", s.address())
}

func TestDial_Remote(t *testing.T) {
	host := os.Getenv("OBISION_TEST_SSH_HOST")
	if host == "" {
		t.Skip("Skipping SSH test: OBISION_TEST_SSH_HOST not set")
	}

	client, err := Dial(host, 10*time.Second)
	require.NoError(t, err)
	defer client.Close()

	stdout, _, code, err := client.Exec(t.Context(), "cat /proc/loadavg")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.NotEmpty(t, stdout)
}
