// Package monitor implements the terminal dashboard.
//
// The dashboard is a pure consumer: it subscribes to the poller's snapshot
// hub and renders whatever arrives. It never runs commands itself, so it
// shares the single previous-sample state owned by the poller with every
// other consumer.
//
// # Message Flow
//
//  1. waitForSnapshot blocks on the subscription channel
//  2. snapshotMsg updates the model, the graph history and the process table
//  3. View() re-renders; tickMsg redraws once a second for the freshness label
//  4. hubClosedMsg marks the dashboard stale when the poller stops
//
// # Views
//
//	Overview   - Usage gauges, sensors, network, load and top processes
//	Processes  - Full process table with sortable columns and totals
//	History    - Braille graphs for every series seen so far
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Poll now
//	Tab, 1-3    - Switch view
//	s, a        - Process sort column and direction
//	j/k, ↑/↓    - Scroll
//	?           - Toggle help overlay
package monitor
