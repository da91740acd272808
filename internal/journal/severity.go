package journal

import (
	"regexp"
	"strings"
)

// Severity is a display hint derived from a line's wording.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityInfo
	SeveritySuccess
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "none"
}

// Classify picks a severity by keyword, checking the most severe first.
func Classify(line string) Severity {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "error"), strings.Contains(lower, "fail"), strings.Contains(lower, "critical"):
		return SeverityError
	case strings.Contains(lower, "warn"):
		return SeverityWarning
	case strings.Contains(lower, "success"), strings.Contains(lower, "started"):
		return SeveritySuccess
	case strings.Contains(lower, "info"):
		return SeverityInfo
	}
	return SeverityNone
}

// Matches journalctl's short-format prefix, e.g. "Mar  7 09:14:02".
var timestampRe = regexp.MustCompile(`^[A-Z][a-z]{2}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2}`)

// TimestampPrefix returns the leading timestamp of a journal line, or "".
func TimestampPrefix(line string) string {
	return timestampRe.FindString(line)
}
