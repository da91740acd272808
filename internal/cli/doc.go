// Package cli implements the obision-status command-line interface.
//
// Each Cobra command delegates to a small function that opens a session
// (a local runner, or an SSH runner for --host), does its work through the
// internal packages and renders the result.
//
// # Command Structure
//
//	obision-status monitor      - live terminal dashboard
//	obision-status snapshot     - one poll of every metric
//	obision-status processes    - sortable process list
//	obision-status logs         - journal entries
//	obision-status sysinfo      - hardware and OS details
//	obision-status serve        - websocket snapshot stream
//	obision-status doctor       - diagnose missing tools and access
//	obision-status hosts        - SSH aliases usable with --host
//	obision-status config       - init, show and set the config file
//
// # Settings
//
// The root command's PersistentPreRunE loads .env, then the config file
// (unless a command is annotated to run without one), applies the color
// mode and resolves the target host. Flags win over the file, and the file
// over the defaults. Environment variables prefixed OBISION_ override file
// values.
//
// # Output
//
// One-shot commands accept --format text|json|yaml. JSON output is wrapped
// in JSONEnvelope, and errors in JSON mode are written as an envelope too.
package cli
