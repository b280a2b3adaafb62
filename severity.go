package dlog

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
)

// Severity defines the severity of an intercepted call.
// Values are ordered by rank; TRACE is the lowest.
type Severity int

const (
	// SeverityTrace is assigned only by classification, never by a slot.
	SeverityTrace Severity = 10
	SeverityDebug Severity = 20
	SeverityInfo  Severity = 30
	SeverityWarn  Severity = 40
	SeverityError Severity = 50
)

var severityNames = map[Severity]string{
	SeverityTrace: "TRACE",
	SeverityDebug: "DEBUG",
	SeverityInfo:  "INFO",
	SeverityWarn:  "WARN",
	SeverityError: "ERROR",
}

var severityMap = map[string]Severity{
	"TRACE": SeverityTrace,
	"DEBUG": SeverityDebug,
	"INFO":  SeverityInfo,
	"WARN":  SeverityWarn,
	"ERROR": SeverityError,
}

// String returns the upper-case name of the severity.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}

	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

// MarshalJSON renders the severity by name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// ParseSeverity parses a string into a Severity.
// It is case-insensitive. It returns an error if the input string is not a valid severity.
func ParseSeverity(s string) (Severity, error) {
	if sev, ok := severityMap[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return sev, nil
	}

	return 0, errors.New("invalid severity: " + s)
}

// severityFromEnv reads DLOG_LEVEL. An unset or invalid value yields SeverityTrace,
// meaning every call is forwarded.
func severityFromEnv() Severity {
	levelStr := os.Getenv(EnvLevel)

	if levelStr == "" {
		return SeverityTrace
	}

	sev, err := ParseSeverity(levelStr)
	if err != nil {
		log.Printf("dlog: invalid %s value %q, forwarding all severities", EnvLevel, levelStr)

		return SeverityTrace
	}

	return sev
}
