package doctor

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/runner"
	"github.com/nirlob/obision-status/pkg/sshutil"
)

// keyNames are the private keys checked, in order of preference.
var keyNames = []string{"id_ed25519", "id_rsa", "id_ecdsa"}

// SSHKeyCheck verifies an SSH key exists.
type SSHKeyCheck struct {
	Home string // empty means the current user's home
}

func (c *SSHKeyCheck) Name() string     { return "ssh_key" }
func (c *SSHKeyCheck) Category() string { return CategorySSH }

func (c *SSHKeyCheck) Run(context.Context) CheckResult {
	dir, err := sshDir(c.Home)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Cannot determine home directory",
			Suggestion: "Check HOME environment variable",
		}
	}

	for _, name := range keyNames {
		if _, err := os.Stat(filepath.Join(dir, name+".pub")); err == nil {
			return CheckResult{
				Name:    c.Name(),
				Status:  StatusPass,
				Message: fmt.Sprintf("SSH key found: ~/.ssh/%s.pub", name),
			}
		}
	}

	// Agent-only setups work too, so this is not fatal.
	return CheckResult{
		Name:       c.Name(),
		Status:     StatusWarn,
		Message:    "No SSH key found in ~/.ssh",
		Suggestion: "Generate a key with: ssh-keygen -t ed25519",
	}
}

func (c *SSHKeyCheck) Fix() error {
	return nil
}

// SSHAgentCheck verifies the SSH agent is running and holds keys.
type SSHAgentCheck struct {
	Runner runner.Runner // local runner for ssh-add
	Socket string        // defaults to $SSH_AUTH_SOCK
}

func (c *SSHAgentCheck) Name() string     { return "ssh_agent" }
func (c *SSHAgentCheck) Category() string { return CategorySSH }

func (c *SSHAgentCheck) Run(ctx context.Context) CheckResult {
	socket := c.Socket
	if socket == "" {
		socket = os.Getenv("SSH_AUTH_SOCK")
	}
	if socket == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "SSH agent not running",
			Suggestion: "Fix: eval $(ssh-agent) && ssh-add",
		}
	}

	conn, err := net.Dial("unix", socket)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "SSH agent socket not accessible",
			Suggestion: "Fix: eval $(ssh-agent) && ssh-add",
		}
	}
	conn.Close() //nolint:errcheck // Best-effort close, error not actionable

	res, err := c.Runner.Run(ctx, "ssh-add", "-l")
	switch {
	case err != nil:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Cannot query SSH agent",
			Suggestion: "Check SSH agent: ssh-add -l",
		}
	case res.ExitCode == 1:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "SSH agent running but no keys loaded",
			Suggestion: "Add a key with: ssh-add",
		}
	case res.ExitCode != 0:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Cannot query SSH agent: " + firstLine(res.Stderr),
			Suggestion: "Check SSH agent: ssh-add -l",
		}
	}

	keys := 0
	for _, line := range strings.Split(res.Stdout, "\n") {
		if strings.TrimSpace(line) != "" {
			keys++
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("SSH agent running with %d key%s loaded", keys, pluralize(keys)),
	}
}

func (c *SSHAgentCheck) Fix() error {
	// ssh-add would prompt for a passphrase.
	return nil
}

// SSHKeyPermissionsCheck verifies private keys are not readable by others.
type SSHKeyPermissionsCheck struct {
	Home string
}

func (c *SSHKeyPermissionsCheck) Name() string     { return "ssh_key_permissions" }
func (c *SSHKeyPermissionsCheck) Category() string { return CategorySSH }

func (c *SSHKeyPermissionsCheck) Run(context.Context) CheckResult {
	insecure, found := c.insecureKeys()
	if !found {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass, // SSH key check will catch this
			Message: "No private keys to check",
		}
	}

	if len(insecure) > 0 {
		names := make([]string, len(insecure))
		for i, p := range insecure {
			names[i] = filepath.Base(p)
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Insecure permissions on: " + strings.Join(names, ", "),
			Suggestion: "Fix: chmod 600 ~/.ssh/<keyfile>",
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "SSH key permissions OK",
	}
}

// Fix restricts every insecure key to 0600.
func (c *SSHKeyPermissionsCheck) Fix() error {
	insecure, _ := c.insecureKeys()
	for _, path := range insecure {
		if err := os.Chmod(path, 0o600); err != nil {
			return fmt.Errorf("failed to fix permissions on %s: %w", path, err)
		}
	}
	return nil
}

func (c *SSHKeyPermissionsCheck) insecureKeys() (insecure []string, found bool) {
	dir, err := sshDir(c.Home)
	if err != nil {
		return nil, false
	}
	for _, name := range keyNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		found = true
		if info.Mode().Perm()&0o077 != 0 {
			insecure = append(insecure, path)
		}
	}
	return insecure, found
}

// Dialer opens an SSH connection. sshutil.Dial in production.
type Dialer func(host string, timeout time.Duration) (*sshutil.Client, error)

// RemoteConnectCheck verifies the configured remote host accepts an SSH
// connection.
type RemoteConnectCheck struct {
	Host    string
	Timeout time.Duration
	Dial    Dialer
}

func (c *RemoteConnectCheck) Name() string     { return "ssh_connect" }
func (c *RemoteConnectCheck) Category() string { return CategorySSH }

func (c *RemoteConnectCheck) Run(context.Context) CheckResult {
	dial := c.Dial
	if dial == nil {
		dial = sshutil.Dial
	}

	start := time.Now()
	client, err := dial(c.Host, c.Timeout)
	if err != nil {
		suggestion := errors.SuggestionOf(err)
		if suggestion == "" {
			suggestion = "Try it by hand: ssh " + c.Host
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    errors.Summary(err),
			Suggestion: suggestion,
		}
	}
	if client != nil {
		client.Close() //nolint:errcheck // Probe connection only
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Connected to %s in %s", c.Host, time.Since(start).Round(time.Millisecond)),
	}
}

func (c *RemoteConnectCheck) Fix() error {
	return nil
}

// NewSSHChecks creates the checks for monitoring host over SSH. local runs
// ssh-add on this machine.
func NewSSHChecks(host string, timeout time.Duration, local runner.Runner) []Check {
	return []Check{
		&SSHKeyCheck{},
		&SSHAgentCheck{Runner: local},
		&SSHKeyPermissionsCheck{},
		&RemoteConnectCheck{Host: host, Timeout: timeout},
	}
}

func sshDir(home string) (string, error) {
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(home, ".ssh"), nil
}
