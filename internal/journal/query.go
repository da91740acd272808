// Package journal reads systemd journal entries through journalctl and
// turns its stderr into something a person can act on.
package journal

import (
	"fmt"
	"strings"

	"github.com/nirlob/obision-status/internal/errors"
)

// Scope selects the system journal or the calling user's journal.
type Scope string

const (
	ScopeSystem Scope = "system"
	ScopeUser   Scope = "user"
)

// Filter narrows the entries by source.
type Filter string

const (
	FilterAll          Filter = "all"
	FilterKernel       Filter = "kernel"
	FilterBoot         Filter = "boot"
	FilterServices     Filter = "services"
	FilterAuth         Filter = "auth"
	FilterCron         Filter = "cron"
	FilterNetwork      Filter = "network"
	FilterBluetooth    Filter = "bluetooth"
	FilterUSB          Filter = "usb"
	FilterDesktop      Filter = "desktop"
	FilterApplications Filter = "applications"
	FilterShell        Filter = "shell"
)

type filterSpec struct {
	args []string
	// grep is a case-insensitive substring every kept line must contain.
	grep string
}

var systemFilters = map[Filter]filterSpec{
	FilterAll:       {},
	FilterKernel:    {args: []string{"-k"}},
	FilterBoot:      {args: []string{"-b"}},
	FilterServices:  {args: []string{"-u", "systemd"}},
	FilterAuth:      {args: []string{"-u", "systemd-logind"}},
	FilterCron:      {args: []string{"-u", "cron"}},
	FilterNetwork:   {args: []string{"-u", "NetworkManager"}},
	FilterBluetooth: {args: []string{"-u", "bluetooth"}},
	FilterUSB:       {args: []string{"-k"}, grep: "usb"},
}

var userFilters = map[Filter]filterSpec{
	FilterAll:          {},
	FilterServices:     {},
	FilterDesktop:      {args: []string{"_SYSTEMD_USER_UNIT=gnome-session.target"}},
	FilterApplications: {args: []string{"_COMM=gjs"}},
	FilterShell:        {args: []string{"_COMM=gnome-shell"}},
}

var filterOrder = map[Scope][]Filter{
	ScopeSystem: {FilterAll, FilterKernel, FilterBoot, FilterServices, FilterAuth, FilterCron, FilterNetwork, FilterBluetooth, FilterUSB},
	ScopeUser:   {FilterAll, FilterServices, FilterDesktop, FilterApplications, FilterShell},
}

// Filters lists the filters valid for a scope, in menu order.
func Filters(scope Scope) []Filter {
	return append([]Filter(nil), filterOrder[scope]...)
}

func filtersFor(scope Scope) map[Filter]filterSpec {
	if scope == ScopeUser {
		return userFilters
	}
	return systemFilters
}

// Priority is a journalctl -p level. PriorityAll adds no -p argument.
type Priority string

const (
	PriorityAll     Priority = "all"
	PriorityEmerg   Priority = "emerg"
	PriorityAlert   Priority = "alert"
	PriorityCrit    Priority = "crit"
	PriorityErr     Priority = "err"
	PriorityWarning Priority = "warning"
	PriorityNotice  Priority = "notice"
	PriorityInfo    Priority = "info"
	PriorityDebug   Priority = "debug"
)

// Priorities lists every accepted priority, most severe first after "all".
func Priorities() []Priority {
	return []Priority{
		PriorityAll, PriorityEmerg, PriorityAlert, PriorityCrit, PriorityErr,
		PriorityWarning, PriorityNotice, PriorityInfo, PriorityDebug,
	}
}

// Line count bounds for a query.
const (
	MinLines     = 50
	MaxLines     = 1000
	DefaultLines = 200
)

// DefaultSince is the journalctl --since window.
const DefaultSince = "5 minutes ago"

// Query describes one log fetch.
type Query struct {
	Scope    Scope
	Filter   Filter
	Priority Priority
	Since    string
	// Lines keeps only the last N lines of output.
	Lines int
	// Elevated runs journalctl through the privilege wrapper.
	// Only meaningful for the system scope.
	Elevated bool
}

// DefaultQuery returns the system-scope query shown when the log view opens.
func DefaultQuery() Query {
	return Query{
		Scope:    ScopeSystem,
		Filter:   FilterAll,
		Priority: PriorityAll,
		Since:    DefaultSince,
		Lines:    DefaultLines,
	}
}

// Normalize fills empty fields with defaults.
func (q Query) Normalize() Query {
	def := DefaultQuery()
	if q.Scope == "" {
		q.Scope = def.Scope
	}
	if q.Filter == "" {
		q.Filter = def.Filter
	}
	if q.Priority == "" {
		q.Priority = def.Priority
	}
	if q.Since == "" {
		q.Since = def.Since
	}
	if q.Lines == 0 {
		q.Lines = def.Lines
	}
	return q
}

// Validate reports the first invalid field of a normalized query.
func (q Query) Validate() error {
	if q.Scope != ScopeSystem && q.Scope != ScopeUser {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown log scope %q", q.Scope),
			"Use system or user.")
	}
	if _, ok := filtersFor(q.Scope)[q.Filter]; !ok {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Filter %q doesn't apply to %s logs", q.Filter, q.Scope),
			"Valid filters: "+joinFilters(Filters(q.Scope)))
	}
	if !validPriority(q.Priority) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown priority %q", q.Priority),
			"Valid priorities: "+joinPriorities(Priorities()))
	}
	if q.Lines < MinLines || q.Lines > MaxLines {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Line count %d is out of range", q.Lines),
			fmt.Sprintf("Pick a value between %d and %d.", MinLines, MaxLines))
	}
	if q.Elevated && q.Scope == ScopeUser {
		return errors.New(errors.ErrConfig,
			"User logs can't be read with elevated permissions",
			"Drop --elevated, or read the system journal instead.")
	}
	return nil
}

func validPriority(p Priority) bool {
	for _, known := range Priorities() {
		if p == known {
			return true
		}
	}
	return false
}

// Args builds the journalctl arguments for a validated query.
func (q Query) Args() []string {
	args := []string{"--since", q.Since, "--no-pager"}
	if q.Scope == ScopeUser {
		args = append(args, "--user")
	}
	args = append(args, "-q")

	if q.Priority != PriorityAll {
		args = append(args, "-p", string(q.Priority))
	}
	args = append(args, filtersFor(q.Scope)[q.Filter].args...)
	return args
}

// lineFilter returns the substring kept lines must contain, if any.
func (q Query) lineFilter() string {
	return filtersFor(q.Scope)[q.Filter].grep
}

// String renders the query as the command a user could type.
func (q Query) String() string {
	parts := []string{"journalctl"}
	if q.Elevated {
		parts = append([]string{"pkexec"}, parts...)
	}
	for _, a := range q.Args() {
		if strings.Contains(a, " ") {
			a = `"` + a + `"`
		}
		parts = append(parts, a)
	}
	if g := q.lineFilter(); g != "" {
		parts = append(parts, "| grep -i "+g)
	}
	return strings.Join(parts, " ")
}

func joinFilters(fs []Filter) string {
	s := make([]string, len(fs))
	for i, f := range fs {
		s[i] = string(f)
	}
	return strings.Join(s, ", ")
}

func joinPriorities(ps []Priority) string {
	s := make([]string, len(ps))
	for i, p := range ps {
		s[i] = string(p)
	}
	return strings.Join(s, ", ")
}
