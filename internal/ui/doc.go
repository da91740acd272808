// Package ui provides the terminal building blocks shared by the one-shot
// commands and the monitor dashboard.
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility. Metric values are
// colored by their metrics.Level:
//
//	LevelOK       (green)  - below the warning threshold
//	LevelWarn     (yellow) - between the thresholds
//	LevelCritical (red)    - at or above the critical threshold
//
// SetColorMode applies the output.color setting ("auto", "always" or
// "never") to lipgloss through a termenv profile.
//
// # Components
//
//	Gauge        - Fixed-width bar for percentages
//	Sparkline    - One-row history graph
//	Table        - Bubbles table, also rendered statically for CLI output
//	Spinner      - Animated wait indicator for one-shot commands
//	HostPicker   - Bubbles list over ~/.ssh/config aliases
package ui
