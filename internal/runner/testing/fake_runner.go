// Package testing provides test doubles for the runner package.
package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/runner"
)

// Response is one canned answer for a command line.
type Response struct {
	Result runner.Result
	Err    error
}

// Call records one invocation of Run.
type Call struct {
	Name string
	Args []string
}

// Line returns the call as a single command line.
func (c Call) Line() string {
	return runner.CommandLine(c.Name, c.Args...)
}

// FakeRunner answers commands from a table keyed by command line.
// Responses for a command are consumed in order; the last one repeats.
// Commands with no entry fail as if the program was not installed.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string][]Response
	Calls     []Call
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: make(map[string][]Response)}
}

// Stdout queues a successful response with the given output.
func (f *FakeRunner) Stdout(line, stdout string) *FakeRunner {
	return f.Respond(line, Response{Result: runner.Result{Stdout: stdout}})
}

// Respond queues a response for the command line.
func (f *FakeRunner) Respond(line string, resp Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[line] = append(f.responses[line], resp)
	return f
}

// Fail makes the command line fail to start.
func (f *FakeRunner) Fail(line string) *FakeRunner {
	return f.Respond(line, Response{
		Result: runner.Result{ExitCode: -1},
		Err:    errors.New(errors.ErrExec, "Couldn't start "+line, ""),
	})
}

func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) (runner.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, Call{Name: name, Args: append([]string(nil), args...)})

	if err := ctx.Err(); err != nil {
		return runner.Result{ExitCode: -1}, err
	}

	line := runner.CommandLine(name, args...)
	queue := f.responses[line]
	if len(queue) == 0 {
		return runner.Result{ExitCode: -1}, errors.New(errors.ErrExec,
			fmt.Sprintf("Couldn't start %s", name), "not scripted in FakeRunner")
	}
	resp := queue[0]
	if len(queue) > 1 {
		f.responses[line] = queue[1:]
	}
	return resp.Result, resp.Err
}

// CallLines returns every command line run so far, in order.
func (f *FakeRunner) CallLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		lines[i] = c.Line()
	}
	return lines
}

// CallCount returns how many times the command line was run.
func (f *FakeRunner) CallCount(line string) int {
	n := 0
	for _, l := range f.CallLines() {
		if l == line {
			n++
		}
	}
	return n
}
