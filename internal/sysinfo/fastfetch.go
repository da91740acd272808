package sysinfo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/util"
)

// ffModule is one element of `fastfetch --format json`.
type ffModule struct {
	Type   string          `json:"type"`
	Error  string          `json:"error,omitempty"`
	Result json.RawMessage `json:"result"`
}

// ffResult holds the result fields the rows are built from. fastfetch uses
// a different object shape per module; fields a module lacks stay zero.
type ffResult struct {
	Name        string          `json:"name"`
	PrettyName  string          `json:"prettyName"`
	Pretty      string          `json:"pretty"`
	Release     string          `json:"release"`
	Version     string          `json:"version"`
	Exe         string          `json:"exe"`
	Type        json.RawMessage `json:"type"`
	Uptime      int64           `json:"uptime"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	RefreshRate float64         `json:"refreshRate"`
	Size        json.RawMessage `json:"size"`
	Index       int             `json:"index"`
	Used        uint64          `json:"used"`
	Total       uint64          `json:"total"`
	Percentage  float64         `json:"percentage"`
	Bytes       *struct {
		Used  uint64 `json:"used"`
		Total uint64 `json:"total"`
	} `json:"bytes"`
	Mountpoint    string `json:"mountpoint"`
	Filesystem    string `json:"filesystem"`
	IPv4          string `json:"ipv4"`
	IP            string `json:"ip"`
	ModelName     string `json:"modelName"`
	Status        string `json:"status"`
	Result        string `json:"result"`
	Dpkg          int    `json:"dpkg"`
	Rpm           int    `json:"rpm"`
	Pacman        int    `json:"pacman"`
	FlatpakSystem int    `json:"flatpakSystem"`
	FlatpakUser   int    `json:"flatpakUser"`
	Snap          int    `json:"snap"`
}

// ParseFastfetch turns fastfetch JSON into display rows. Modules that
// report an error, decorative modules and rows with an empty value are
// skipped. Modules whose result is a list yield one row per element.
func ParseFastfetch(data []byte) ([]Row, error) {
	var modules []ffModule
	if err := json.Unmarshal(data, &modules); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrParse,
			"fastfetch output isn't valid JSON",
			"Run `fastfetch --format json` to see what it prints.")
	}

	var rows []Row
	for _, m := range modules {
		if m.Error != "" || m.Type == "Separator" || m.Type == "Title" {
			continue
		}
		results, err := decodeResults(m.Result)
		if err != nil {
			continue
		}
		for _, r := range results {
			row, ok := moduleRow(m.Type, r)
			if ok && strings.TrimSpace(row.Value) != "" {
				rows = append(rows, row)
			}
		}
	}
	return rows, nil
}

// decodeResults accepts an object, a list of objects or a bare string,
// which fastfetch uses for modules such as Locale.
func decodeResults(raw json.RawMessage) ([]ffResult, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty result")
	}
	switch raw[0] {
	case '[':
		var list []ffResult
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		return list, nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return []ffResult{{Result: s}}, nil
	}
	var r ffResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return []ffResult{r}, nil
}

func moduleRow(kind string, r ffResult) (Row, bool) {
	switch kind {
	case "OS":
		return Row{"OS", firstNonEmpty(r.PrettyName, r.Name)}, true
	case "Host":
		return Row{"Host", r.Name}, true
	case "Kernel":
		return Row{"Kernel", joinNonEmpty(r.Name, r.Release)}, true
	case "Uptime":
		return Row{"Uptime", util.FormatUptime(r.Uptime)}, true
	case "Packages":
		return Row{"Packages", packages(r)}, true
	case "Shell":
		return Row{"Shell", joinNonEmpty(r.Name, r.Version)}, true
	case "Display":
		if r.Width == 0 || r.Height == 0 {
			return Row{}, false
		}
		return Row{"Display", fmt.Sprintf("%dx%d @ %g Hz", r.Width, r.Height, r.RefreshRate)}, true
	case "DE":
		return Row{"Desktop Environment", firstNonEmpty(r.Pretty, joinNonEmpty(r.Name, r.Version))}, true
	case "WM":
		return Row{"Window Manager", firstNonEmpty(r.Pretty, r.Name)}, true
	case "Theme":
		return Row{"Theme", firstNonEmpty(r.Pretty, r.Name)}, true
	case "Icons":
		return Row{"Icons", firstNonEmpty(r.Pretty, r.Name)}, true
	case "Font":
		return Row{"Font", r.Pretty}, true
	case "Cursor":
		if r.Name == "" {
			return Row{}, false
		}
		if size := rawText(r.Size); size != "" {
			return Row{"Cursor", fmt.Sprintf("%s (%spx)", r.Name, size)}, true
		}
		return Row{"Cursor", r.Name}, true
	case "Terminal":
		return Row{"Terminal", joinNonEmpty(firstNonEmpty(r.PrettyName, r.Exe), r.Version)}, true
	case "CPU":
		return Row{"CPU", r.Name}, true
	case "GPU":
		value := r.Name
		if kind := rawText(r.Type); kind != "" && value != "" {
			value += " [" + kind + "]"
		}
		return Row{fmt.Sprintf("GPU %d", r.Index+1), value}, true
	case "Memory":
		return Row{"Memory", usage(r.Used, r.Total, r.Percentage)}, true
	case "Swap":
		if r.Total == 0 {
			return Row{}, false
		}
		return Row{"Swap", usage(r.Used, r.Total, r.Percentage)}, true
	case "Disk":
		used, total := r.Used, r.Total
		if r.Bytes != nil {
			used, total = r.Bytes.Used, r.Bytes.Total
		}
		if total == 0 {
			return Row{}, false
		}
		value := usage(used, total, r.Percentage)
		if r.Filesystem != "" {
			value += " - " + r.Filesystem
		}
		return Row{fmt.Sprintf("Disk (%s)", r.Mountpoint), value}, true
	case "LocalIP":
		return Row{fmt.Sprintf("Local IP (%s)", r.Name), firstNonEmpty(r.IPv4, r.IP)}, true
	case "Battery":
		value := fmt.Sprintf("%.1f%%", r.Percentage)
		if r.Status != "" {
			value += " [" + r.Status + "]"
		}
		return Row{fmt.Sprintf("Battery (%s)", r.ModelName), value}, true
	case "Locale":
		return Row{"Locale", r.Result}, true
	}
	return Row{}, false
}

func packages(r ffResult) string {
	var parts []string
	add := func(n int, manager string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d (%s)", n, manager))
		}
	}
	add(r.Dpkg, "dpkg")
	add(r.Rpm, "rpm")
	add(r.Pacman, "pacman")
	add(r.FlatpakSystem+r.FlatpakUser, "flatpak")
	add(r.Snap, "snap")
	return strings.Join(parts, ", ")
}

// usage renders "used / total (pct%)". fastfetch omits the percentage on
// some modules, so it is derived when zero.
func usage(used, total uint64, pct float64) string {
	if pct == 0 && total > 0 {
		pct = float64(used) / float64(total) * 100
	}
	return fmt.Sprintf("%s / %s (%.1f%%)", util.FormatBytes(used), util.FormatBytes(total), pct)
}

// rawText renders a scalar JSON value as text. fastfetch has changed some
// fields between strings and numbers across releases; lists and objects
// give "".
func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '[' || raw[0] == '{' || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(vals ...string) string {
	var parts []string
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
