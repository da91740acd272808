package cli

import (
	"fmt"
	"io"

	"github.com/nirlob/obision-status/internal/errors"
	"gopkg.in/yaml.v3"
)

// Output formats for one-shot commands.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// resolveFormat returns the --format flag, or output.format when the flag
// is empty. JSON switches the command into machine mode.
func resolveFormat(flag, configured string) (string, error) {
	format := flag
	if format == "" {
		format = configured
	}
	if format == "" {
		format = FormatText
	}

	switch format {
	case FormatText, FormatYAML:
	case FormatJSON:
		machineMode = true
	default:
		return "", errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown output format %q", format),
			"Use text, json or yaml.")
	}
	return format, nil
}

// writeOutput renders data in format; text delegates to render.
func writeOutput(w io.Writer, format string, data any, render func(io.Writer) error) error {
	switch format {
	case FormatJSON:
		return WriteJSONSuccess(w, data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return errors.WrapWithCode(err, errors.ErrParse, "Couldn't encode YAML output", "")
		}
		return enc.Close()
	default:
		return render(w)
	}
}
