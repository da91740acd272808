// Package metrics defines the snapshot published after each poll cycle and
// the presentation rules shared by every consumer: N/A labels, color
// levels, process sorting and totals.
//
// Parsing of command output lives in the parsers subpackage; polling lives
// in internal/poller.
package metrics
