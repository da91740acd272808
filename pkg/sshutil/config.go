package sshutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// HostEntry is a concrete host alias from ~/.ssh/config.
type HostEntry struct {
	Alias    string
	Hostname string
	User     string
}

// Description renders the entry for shell completion, e.g. "10.0.0.5 (admin)".
func (h HostEntry) Description() string {
	desc := h.Hostname
	if desc == "" {
		desc = h.Alias
	}
	if h.User != "" {
		desc += " (" + h.User + ")"
	}
	return desc
}

// ListHosts returns the concrete aliases from ~/.ssh/config.
func ListHosts() ([]HostEntry, error) {
	return ListHostsFile(filepath.Join(homeDir(), ".ssh", "config"))
}

// ListHostsFile returns the concrete (non-wildcard) host aliases in the
// given config, sorted by alias. A missing file yields no hosts.
func ListHostsFile(path string) ([]HostEntry, error) {
	content, err := readConfigBeforeMatch(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var hosts []HostEntry
	seen := make(map[string]bool)
	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()
			if strings.ContainsAny(alias, "*?") || seen[alias] {
				continue
			}
			seen[alias] = true

			entry := HostEntry{Alias: alias}
			entry.Hostname, _ = cfg.Get(alias, "HostName")
			entry.User, _ = cfg.Get(alias, "User")
			hosts = append(hosts, entry)
		}
	}

	sort.Slice(hosts, func(i, j int) bool { return hosts[i].Alias < hosts[j].Alias })
	return hosts, nil
}
