package dlog

import "strings"

const (
	traceMarker = "Trace:"
	frameMarker = "at"
)

// Classify resolves the severity of a call from its arguments.
// It returns SeverityTrace when the first argument is a stack trace and nominal otherwise.
// Classify has no side effects and never fails.
func Classify(args []any, nominal Severity) Severity {
	if len(args) == 0 {
		return nominal
	}

	s, ok := args[0].(string)
	if !ok || !isStacktrace(s) {
		return nominal
	}

	return SeverityTrace
}

// isStacktrace reports whether s has the shape of a printed trace:
// a "Trace:" header followed by one or more "at" frames.
func isStacktrace(s string) bool {
	if s == "" || !strings.HasPrefix(s, traceMarker) {
		return false
	}

	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return false
	}

	for _, line := range lines[1:] {
		// TrimSpace also drops the '\r' of a CRLF line ending.
		if !strings.HasPrefix(strings.TrimSpace(line), frameMarker) {
			return false
		}
	}

	return true
}
