package util

import (
	"fmt"
	"strings"
)

// FormatMemoryKB renders a kilobyte count the way the process views show
// resident memory: "512 KB", "2.0 MB", "2.0 GB".
func FormatMemoryKB(kb uint64) string {
	switch {
	case kb >= 1024*1024:
		return fmt.Sprintf("%.1f GB", float64(kb)/(1024*1024))
	case kb >= 1024:
		return fmt.Sprintf("%.1f MB", float64(kb)/1024)
	default:
		return fmt.Sprintf("%d KB", kb)
	}
}

// FormatRate renders a throughput in Mbps, switching to Kbps below 1 Mbps.
func FormatRate(mbps float64) string {
	if mbps < 1 {
		return fmt.Sprintf("%.0f Kbps", mbps*1000)
	}
	return fmt.Sprintf("%.1f Mbps", mbps)
}

// FormatBytes renders a byte count with binary units and two decimals.
func FormatBytes(b uint64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.2f GiB", float64(b)/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.2f MiB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.2f KiB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// FormatUptime renders milliseconds as "2 days, 3 hours, 5 mins", leaving
// out zero parts. Anything under a minute is "0 mins".
func FormatUptime(ms int64) string {
	secs := ms / 1000
	days := secs / 86400
	hours := (secs % 86400) / 3600
	mins := (secs % 3600) / 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d days", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hours", hours))
	}
	if mins > 0 {
		parts = append(parts, fmt.Sprintf("%d mins", mins))
	}
	return JoinOrDefault(parts, "0 mins")
}

// JoinOrDefault joins strings with ", " or returns the default value for empty slices.
func JoinOrDefault(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}

// Pluralize returns singular if count is 1, otherwise plural.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// Truncate shortens s to max runes, replacing the tail with "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max || max < 3 {
		return s
	}
	return string(r[:max-3]) + "..."
}
