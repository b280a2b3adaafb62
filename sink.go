package dlog

import "context"

// Setting names recognized by the dlog backend. They are forwarded to the
// Driver untouched; this package never interprets them.
const (
	SettingSanitizeEmails      = "sanitize_emails"
	SettingSanitizeCreditCards = "sanitize_credit_cards"
)

// Settings is the configuration bundle handed to a Driver.
// An absent name means the feature is disabled.
type Settings map[string]bool

// Enabled reports whether the named setting is present and true.
func (s Settings) Enabled(name string) bool {
	return s[name]
}

// clone returns a copy so a Driver cannot observe later mutation by the caller.
func (s Settings) clone() Settings {
	out := make(Settings, len(s))

	for k, v := range s {
		out[k] = v
	}

	return out
}

// Sink is a configured session with a logging backend.
// It is the only destination of intercepted calls.
//
// Implementations must be safe for concurrent use: wrapped handlers invoked
// concurrently share a single Sink.
type Sink interface {
	// Log receives the arguments of one intercepted call together with its
	// resolved severity. The args slice must not be retained after Log returns.
	Log(level Severity, args []any) error

	// Flush drains any buffered entries to the backing store.
	Flush(ctx context.Context) error

	// CleanUp releases the session. It may be called up to twice, once per
	// terminal event, and must be safe even if nothing was ever logged.
	CleanUp() error
}

// Driver creates Sinks. Configure may fail, for example on invalid credentials.
type Driver interface {
	Configure(apiKey string, settings Settings) (Sink, error)
}

// DriverFunc adapts an ordinary function to the Driver interface.
type DriverFunc func(apiKey string, settings Settings) (Sink, error)

// Configure calls f(apiKey, settings).
func (f DriverFunc) Configure(apiKey string, settings Settings) (Sink, error) {
	return f(apiKey, settings)
}
