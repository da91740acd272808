package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig     = "CONFIG"
	ErrExec       = "EXEC"
	ErrParse      = "PARSE"
	ErrPermission = "PERMISSION"
	ErrCancelled  = "CANCELLED"
	ErrSSH        = "SSH"
)

// Error is a structured error with code, message, suggestion, and optional cause.
// It renders as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrExec code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrExec,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Parsef builds an ErrParse error for command output that did not have the
// expected shape.
func Parsef(format string, args ...interface{}) *Error {
	return &Error{
		Code:    ErrParse,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var statusErr *Error
	if errors.As(err, &statusErr) {
		return statusErr.Code == code
	}
	return false
}

// Summary returns just the message of a structured error, or err.Error()
// for anything else. Used where the multi-line form does not fit, such as
// a single dashboard cell.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *Error
	if errors.As(err, &statusErr) {
		return statusErr.Message
	}
	return err.Error()
}

// SuggestionOf returns the suggestion of the first structured error in
// err's chain, or "".
func SuggestionOf(err error) string {
	var statusErr *Error
	if errors.As(err, &statusErr) {
		return statusErr.Suggestion
	}
	return ""
}

// ExitError carries a process exit code out of a command without printing
// anything extra. main() translates it into os.Exit.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError for the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode extracts the code from an ExitError anywhere in err's chain.
func GetExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
