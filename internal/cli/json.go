package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/nirlob/obision-status/internal/errors"
)

// machineMode is set once a command settles on JSON output. Errors are
// then written to stdout as an envelope instead of styled text.
var machineMode bool

// MachineMode reports whether the running command writes JSON.
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope is the top-level object of every JSON document the CLI
// prints, on success and on failure.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError is the error half of an envelope.
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Codes in JSONError.Code.
const (
	ErrCodeConfigNotFound   = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "CONFIG_INVALID"
	ErrCodeSSHConnection    = "SSH_CONNECTION_FAILED"
	ErrCodeCommandFailed    = "COMMAND_FAILED"
	ErrCodeParseFailed      = "PARSE_FAILED"
	ErrCodePermissionDenied = "PERMISSION_DENIED"
	ErrCodeCancelled        = "CANCELLED"
	ErrCodeUnknown          = "UNKNOWN"
)

// WriteJSONSuccess writes data wrapped in a success envelope.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONFromError writes err as a failure envelope.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: false, Error: ErrorToJSON(err)})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON maps err onto a JSONError. Structured errors keep their
// suggestion; anything else is UNKNOWN.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var structured *errors.Error
	if stderrors.As(err, &structured) {
		return &JSONError{
			Code:       mapErrorCode(structured.Code, structured.Message),
			Message:    structured.Message,
			Suggestion: structured.Suggestion,
		}
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode splits CONFIG into not-found and invalid by message, since
// both come from the same loader.
func mapErrorCode(internalCode, message string) string {
	switch internalCode {
	case errors.ErrConfig:
		msgLower := strings.ToLower(message)
		if strings.Contains(msgLower, "not found") || strings.Contains(msgLower, "couldn't find") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrSSH:
		return ErrCodeSSHConnection
	case errors.ErrExec:
		return ErrCodeCommandFailed
	case errors.ErrParse:
		return ErrCodeParseFailed
	case errors.ErrPermission:
		return ErrCodePermissionDenied
	case errors.ErrCancelled:
		return ErrCodeCancelled
	}
	return ErrCodeUnknown
}
