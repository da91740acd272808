package sshutil

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kevinburke/ssh_config"
	"github.com/nirlob/obision-status/internal/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Client is one SSH connection to the host being monitored.
type Client struct {
	conn    *ssh.Client
	Host    string // alias or host as given by the user
	Address string // resolved host:port
}

// StrictHostKeyChecking controls known_hosts verification. Disable only for
// throwaway test hosts.
var StrictHostKeyChecking = true

// Dial connects to host, which may be an ~/.ssh/config alias, a hostname,
// user@hostname or hostname:port.
func Dial(host string, timeout time.Duration) (*Client, error) {
	settings := resolveSettings(host, filepath.Join(homeDir(), ".ssh", "config"))

	config, err := clientConfig(settings, timeout)
	if err != nil {
		var statusErr *errors.Error
		if stderrors.As(err, &statusErr) {
			return nil, err
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't set up SSH for '%s'", host),
			"Check your keys are loaded: ssh-add -l")
	}

	address := settings.address()
	tcp, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach '%s' at %s", host, address),
			"Make sure the host is reachable: ssh "+host)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(tcp, address, config)
	if err != nil {
		tcp.Close()
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with '%s' didn't go through", host),
			handshakeSuggestion(err))
	}

	return &Client{
		conn:    ssh.NewClient(sshConn, chans, reqs),
		Host:    host,
		Address: address,
	}, nil
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

type settings struct {
	hostname     string
	port         string
	user         string
	identityFile string
}

func (s *settings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolveSettings splits user@host:port and fills gaps from the ssh config
// file at configPath. A missing or unreadable config leaves the defaults.
func resolveSettings(host, configPath string) *settings {
	s := &settings{port: "22", user: currentUser()}

	if at := strings.Index(host, "@"); at != -1 {
		s.user = host[:at]
		host = host[at+1:]
	}
	if h, p, err := net.SplitHostPort(host); err == nil && p != "" {
		host, s.port = h, p
	}
	s.hostname = host

	content, err := readConfigBeforeMatch(configPath)
	if err != nil {
		return s
	}
	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return s
	}

	if v, _ := cfg.Get(host, "HostName"); v != "" {
		s.hostname = v
	}
	if v, _ := cfg.Get(host, "Port"); v != "" {
		s.port = v
	}
	if v, _ := cfg.Get(host, "User"); v != "" {
		s.user = v
	}
	if v, _ := cfg.Get(host, "IdentityFile"); v != "" {
		s.identityFile = expandPath(v)
	}
	return s
}

func clientConfig(s *settings, timeout time.Duration) (*ssh.ClientConfig, error) {
	var methods []ssh.AuthMethod
	if a := agentAuth(); a != nil {
		methods = append(methods, a)
	}

	keys := []string{s.identityFile}
	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keys = append(keys, filepath.Join(homeDir(), ".ssh", name))
	}
	for _, path := range keys {
		if path == "" {
			continue
		}
		if m, err := keyFileAuth(path); err == nil {
			methods = append(methods, m)
		}
	}

	if len(methods) == 0 {
		return nil, errors.New(errors.ErrSSH,
			"No SSH auth methods available",
			"Load a key into the agent (ssh-add) or set IdentityFile in ~/.ssh/config")
	}

	hostKeys := ssh.InsecureIgnoreHostKey() //nolint:gosec // opt-out for test hosts only
	if StrictHostKeyChecking {
		cb, err := knownhosts.New(filepath.Join(homeDir(), ".ssh", "known_hosts"))
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrSSH,
				"Couldn't read ~/.ssh/known_hosts",
				"Connect once with ssh to record the host key")
		}
		hostKeys = cb
	}

	return &ssh.ClientConfig{
		User:            s.user,
		Auth:            methods,
		HostKeyCallback: hostKeys,
		Timeout:         timeout,
	}, nil
}

var (
	agentOnce   sync.Once
	agentClient agent.ExtendedAgent
)

// agentAuth returns nil when no agent is running or it holds no keys; an
// empty agent placed first makes servers reject the other methods.
func agentAuth() ssh.AuthMethod {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}
	agentOnce.Do(func() {
		if conn, err := net.Dial("unix", socket); err == nil {
			agentClient = agent.NewClient(conn)
		}
	})
	if agentClient == nil {
		return nil
	}
	if signers, err := agentClient.Signers(); err != nil || len(signers) == 0 {
		return nil
	}
	return ssh.PublicKeysCallback(agentClient.Signers)
}

func keyFileAuth(path string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, err
	}
	return ssh.PublicKeys(signer), nil
}

func handshakeSuggestion(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "unable to authenticate"), strings.Contains(msg, "no supported methods"):
		return "Auth failed. Check your keys are loaded: ssh-add -l"
	case strings.Contains(msg, "host key"):
		return "Host key issue. Connect manually first: ssh <host>"
	default:
		return "Try connecting manually: ssh <host>"
	}
}

// readConfigBeforeMatch returns the config up to the first Match block,
// which ssh_config cannot decode.
func readConfigBeforeMatch(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			lines = lines[:i]
			break
		}
	}
	return []byte(strings.Join(lines, "\n")), nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
