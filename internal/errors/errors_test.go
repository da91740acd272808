package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrExec,
		ErrParse,
		ErrPermission,
		ErrCancelled,
		ErrSSH,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "refresh_interval must be at least 500ms",
			suggestion: "Set refresh_interval to 1s or more",
		},
		{
			name:       "exec error",
			code:       ErrExec,
			message:    "Failed to start sensors",
			suggestion: "Install lm-sensors",
		},
		{
			name:       "permission error",
			code:       ErrPermission,
			message:    "Journal access is restricted",
			suggestion: "sudo usermod -a -G systemd-journal $USER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "message and suggestion",
			err:           New(ErrConfig, "Invalid configuration", "Check config.yaml syntax"),
			expectedParts: []string{"✗", "Invalid configuration", "Check config.yaml syntax"},
		},
		{
			name:          "message only",
			err:           New(ErrExec, "Command failed", ""),
			expectedParts: []string{"Command failed"},
			notExpected:   []string{"\n\n  \n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("exec: \"sensors\": executable file not found in $PATH")
	wrapped := Wrap(cause, "Failed to run sensors")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrExec, wrapped.Code, "Wrap should default to ErrExec code")
	assert.Equal(t, cause, wrapped.Cause)
	assert.True(t, errors.Is(wrapped, cause))
	assert.Contains(t, wrapped.Error(), "executable file not found")
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("handshake failed")
	wrapped := WrapWithCode(cause, ErrSSH, "Cannot connect to host", "Check ~/.ssh/config")

	assert.Equal(t, ErrSSH, wrapped.Code)
	assert.Equal(t, "Check ~/.ssh/config", wrapped.Suggestion)
	assert.Equal(t, cause, wrapped.Unwrap())
}

func TestParsef(t *testing.T) {
	err := Parsef("unexpected df output: %d lines", 1)

	assert.Equal(t, ErrParse, err.Code)
	assert.Equal(t, "unexpected df output: 1 lines", err.Message)
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Config error", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrSSH))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "", Summary(nil))
	assert.Equal(t, "no thermal zone", Summary(New(ErrParse, "no thermal zone", "ignored")))
	assert.Equal(t, "plain", Summary(errors.New("plain")))
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("exit status 127"),
		ErrExec,
		"Cannot run journalctl",
		"Install systemd",
	)

	lines := strings.Split(err.Error(), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "✗"))
	assert.Contains(t, lines[0], "Cannot run journalctl")
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOk   bool
	}{
		{"exit error", NewExitError(42), 42, true},
		{"zero", NewExitError(0), 0, true},
		{"standard error", errors.New("x"), 0, false},
		{"nil", nil, 0, false},
		{"structured error", New(ErrExec, "test", ""), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := GetExitCode(tt.err)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}
	assert.Equal(t, "exit code 3", NewExitError(3).Error())
}

func TestSuggestionOf(t *testing.T) {
	err := fmt.Errorf("loading: %w", New(ErrConfig, "bad", "fix it"))
	assert.Equal(t, "fix it", SuggestionOf(err))
	assert.Equal(t, "", SuggestionOf(errors.New("plain")))
	assert.Equal(t, "", SuggestionOf(nil))
}
