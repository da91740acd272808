// Package runner executes the external tools that obision-status reads
// system state from. Every collector goes through a Runner, so the same
// parsing code works locally, through pkexec or over SSH.
package runner

import (
	"context"
	"strings"
)

// Result is the captured outcome of one command.
// A non-zero ExitCode or non-empty Stderr is not an error: callers decide
// what partial output means for them.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs a program with arguments and captures its output.
// An error is returned only when the program could not be started.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// Func adapts a plain function to Runner.
type Func func(ctx context.Context, name string, args ...string) (Result, error)

func (f Func) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return f(ctx, name, args...)
}

// elevated re-invokes every command through a privilege wrapper.
type elevated struct {
	inner   Runner
	wrapper string
}

// Elevated returns a Runner that runs "wrapper name args..." on r.
// The usual wrapper is pkexec, which shows a graphical password prompt.
func Elevated(r Runner, wrapper string) Runner {
	if wrapper == "" {
		wrapper = DefaultElevator
	}
	return &elevated{inner: r, wrapper: wrapper}
}

// DefaultElevator is the privilege wrapper used when none is configured.
const DefaultElevator = "pkexec"

func (e *elevated) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return e.inner.Run(ctx, e.wrapper, append([]string{name}, args...)...)
}

// CommandLine renders name and args as a single space-separated string.
// It is used for log messages and as the key in the test fake.
func CommandLine(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
