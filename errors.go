package dlog

import "errors"

var (
	// ErrAlreadyConfigured is returned when the process-wide instance already exists.
	ErrAlreadyConfigured = errors.New("configure(<API_KEY>) may only be called once")

	// ErrInvalidAPIKey is returned for an empty API key.
	ErrInvalidAPIKey = errors.New("please provide a valid API_KEY")

	// ErrNotConfigured is returned by operations that need the process-wide instance.
	ErrNotConfigured = errors.New("configure(<API_KEY>) has not been called")
)

// ConfigError reports a failed configuration step.
// Configuration errors are never routed through a Sink.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return "dlog: " + e.Op + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
