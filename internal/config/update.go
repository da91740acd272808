package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nirlob/obision-status/internal/errors"
	"gopkg.in/yaml.v3"
)

// field is one key of the generated config file.
type field struct {
	key     string
	comment string
	value   interface{}
	fields  []field
}

// document describes cfg in file order, with the comments written above
// each key.
func document(def *Config) []field {
	return []field{
		{key: "version", value: def.Version},
		{key: "refresh_interval", value: def.RefreshInterval.String(),
			comment: "How often metrics are polled. Minimum " + MinRefreshInterval.String() + "."},
		{key: "sources", value: def.Sources,
			comment: "Metric sources to poll; empty polls all of them.\nValid: " + sourceNames()},
		{key: "top_processes", value: def.TopProcesses},
		{key: "temperature", fields: []field{
			{key: "thermal_zone", value: def.Temperature.ThermalZone},
			{key: "cpu_label", value: def.Temperature.CPULabel, comment: "lm-sensors label used when the thermal zone has no reading."},
			{key: "gpu_label", value: def.Temperature.GPULabel, comment: "lm-sensors label used when nvidia-smi has no reading."},
		}},
		{key: "commands", fields: []field{
			{key: "timeout", value: def.Commands.Timeout.String(), comment: "Per-command limit; 0s means none."},
			{key: "locale", value: def.Commands.Locale, comment: "Exported as LC_ALL so tool output parses the same everywhere."},
		}},
		{key: "logs", fields: []field{
			{key: "since", value: def.Logs.Since},
			{key: "lines", value: def.Logs.Lines, comment: "Between 50 and 1000."},
			{key: "elevate", value: def.Logs.Elevate, comment: "Wrapper for --elevated, shows a password prompt."},
			{key: "refresh_interval", value: def.Logs.RefreshInterval.String()},
		}},
		{key: "remote", fields: []field{
			{key: "host", value: def.Remote.Host, comment: "SSH alias or user@host[:port]; empty reads this machine."},
			{key: "timeout", value: def.Remote.Timeout.String()},
		}},
		{key: "serve", fields: []field{
			{key: "addr", value: def.Serve.Addr},
		}},
		{key: "output", fields: []field{
			{key: "color", value: def.Output.Color, comment: strings.Join(ColorModes, ", ")},
			{key: "format", value: def.Output.Format, comment: strings.Join(OutputFormats, ", ")},
		}},
	}
}

// DefaultYAML renders the default config with comments.
func DefaultYAML() ([]byte, error) {
	return Render(DefaultConfig())
}

// Render writes cfg as a commented config file, durations in their
// string form.
func Render(cfg *Config) ([]byte, error) {
	root := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "obision-status configuration\nEvery key can be overridden with OBISION_<KEY>, e.g. OBISION_LOGS_LINES=500.",
		Content:     []*yaml.Node{mappingNode(document(cfg))},
	}
	return encode(root)
}

// WriteDefault writes the default config to path, creating parent
// directories. An existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrConfig,
			"Config already exists at "+path,
			"Use --force to overwrite it.")
	}

	data, err := DefaultYAML()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to render default config", "")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create "+filepath.Dir(path),
			"Check directory permissions")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file",
			"Check file permissions")
	}
	return nil
}

// SetValue sets a dotted key such as "logs.lines" in an existing config
// file. It preserves the existing YAML structure and comments; missing
// mappings along the path are created.
func SetValue(configPath, key, value string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	node := root.Content[0]
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		next := findMapValue(node, part)
		if next == nil {
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, scalarNode(part), next)
		}
		if next.Kind != yaml.MappingNode {
			return fmt.Errorf("'%s' is not a section", part)
		}
		node = next
	}

	leaf := parts[len(parts)-1]
	newValue := valueNode(value)
	if existing := findMapValue(node, leaf); existing != nil {
		newValue.HeadComment = existing.HeadComment
		newValue.LineComment = existing.LineComment
		*existing = *newValue
	} else {
		node.Content = append(node.Content, scalarNode(leaf), newValue)
	}

	out, err := encode(&root)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, out, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}

func mappingNode(fields []field) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range fields {
		k := scalarNode(f.key)
		k.HeadComment = f.comment

		var v *yaml.Node
		if f.fields != nil {
			v = mappingNode(f.fields)
		} else {
			v = &yaml.Node{}
			if err := v.Encode(f.value); err != nil {
				v = scalarNode(fmt.Sprint(f.value))
			}
		}
		m.Content = append(m.Content, k, v)
	}
	return m
}

func scalarNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// valueNode types a command-line value: comma lists become sequences and
// numbers and booleans keep their YAML tag.
func valueNode(s string) *yaml.Node {
	if strings.Contains(s, ",") {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, item := range splitList(s) {
			seq.Content = append(seq.Content, scalarNode(item))
		}
		return seq
	}
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}
	}
	if s == "true" || s == "false" {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: s}
	}
	return scalarNode(s)
}

func encode(root *yaml.Node) ([]byte, error) {
	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return []byte(buf.String()), nil
}
