// Package dlog intercepts console-style output, classifies each call by
// severity, and forwards it to a logging Sink. Stack traces printed through
// any slot are promoted to TRACE. Buffered entries are flushed before the
// process exits or is interrupted, and wrapped handlers flush before their
// result is returned to the caller.
package dlog

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
)

// Interceptor owns one Sink and the console functions that feed it.
// Instances of Interceptor are safe for concurrent use if the Sink is.
type Interceptor struct {
	sink        Sink
	settings    Settings
	originals   FunctionTable
	console     Console
	preserve    bool
	minSeverity Severity
	errLog      *log.Logger
}

// options collects everything an Option may set.
type options struct {
	driver          Driver
	settings        Settings
	preserve        bool
	originals       FunctionTable
	minSeverity     Severity
	minSeveritySet  bool
	errOut          io.Writer
	noSignalHandler bool
}

// Option configures an Interceptor.
type Option func(*options)

// WithDriver sets the backend used to create the Sink.
// The default driver writes JSON lines to os.Stderr.
func WithDriver(d Driver) Option {
	return func(o *options) {
		if d != nil {
			o.driver = d
		}
	}
}

// WithSettings merges the given settings into the bundle forwarded to the Driver.
func WithSettings(s Settings) Option {
	return func(o *options) {
		for k, v := range s {
			o.settings[k] = v
		}
	}
}

// WithSanitizeEmails asks the backend to redact email addresses.
func WithSanitizeEmails() Option {
	return WithSettings(Settings{SettingSanitizeEmails: true})
}

// WithSanitizeCreditCards asks the backend to redact credit card numbers.
func WithSanitizeCreditCards() Option {
	return WithSettings(Settings{SettingSanitizeCreditCards: true})
}

// WithPreserveOutput selects the preserving variant: every intercepted call
// is still printed by the original function before it is forwarded.
// By default the console output is fully replaced.
func WithPreserveOutput(preserve bool) Option {
	return func(o *options) {
		o.preserve = preserve
	}
}

// WithOriginals sets the function table captured as the original output.
// It defaults to the package console (see Error, Warn, Info, Log, Debug).
func WithOriginals(t FunctionTable) Option {
	return func(o *options) {
		if t != nil {
			o.originals = t
		}
	}
}

// WithMinSeverity drops calls classified below level instead of forwarding them.
func WithMinSeverity(level Severity) Option {
	return func(o *options) {
		o.minSeverity = level
		o.minSeveritySet = true
	}
}

// WithErrorOutput sets where sink failures are reported. The default is
// os.Stderr. The standard logger is never used, since slog.SetDefault may
// route it back into the Interceptor.
func WithErrorOutput(w io.Writer) Option {
	return func(o *options) {
		o.errOut = w
	}
}

// WithoutSignalHandler stops Configure from watching interrupt signals.
// The caller is then responsible for calling Shutdown.
func WithoutSignalHandler() Option {
	return func(o *options) {
		o.noSignalHandler = true
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		settings:    Settings{},
		minSeverity: SeverityTrace,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.driver == nil {
		o.driver = NewWriterDriver(os.Stderr)
	}

	if o.originals == nil {
		o.originals = currentConsole().Table()
	}

	return o
}

// New validates apiKey, configures a Sink through the driver, and builds the
// intercepted console. It does not touch any process-wide state; see
// Configure for that.
func New(apiKey string, opts ...Option) (*Interceptor, error) {
	return newInterceptor(apiKey, buildOptions(opts))
}

func newInterceptor(apiKey string, o *options) (*Interceptor, error) {
	if apiKey == "" {
		return nil, &ConfigError{Op: "configure", Err: ErrInvalidAPIKey}
	}

	settings := o.settings.clone()

	sink, err := o.driver.Configure(apiKey, settings)
	if err != nil {
		return nil, &ConfigError{Op: "configure", Err: err}
	}

	if sink == nil {
		return nil, &ConfigError{Op: "configure", Err: fmt.Errorf("driver %T returned no sink", o.driver)}
	}

	ic := &Interceptor{
		sink:        sink,
		settings:    settings,
		originals:   o.originals.clone(),
		preserve:    o.preserve,
		minSeverity: o.minSeverity,
		errLog:      log.New(os.Stderr, "", log.LstdFlags),
	}

	if o.errOut != nil {
		ic.errLog = log.New(o.errOut, "", log.LstdFlags)
	}

	table := make(FunctionTable, len(Slots))
	for _, slot := range Slots {
		table[slot] = ic.intercept(slot)
	}

	ic.console = Console{table: table}

	return ic, nil
}

// intercept builds the replacement for one slot.
func (ic *Interceptor) intercept(slot Slot) PrintFunc {
	nominal := slot.Severity()
	original := ic.originals[slot]

	return func(args ...any) {
		if ic.preserve {
			original(args...)
		}

		ic.forward(Classify(args, nominal), args)
	}
}

func (ic *Interceptor) forward(level Severity, args []any) {
	if level < ic.minSeverity {
		return
	}

	if err := ic.sink.Log(level, args); err != nil {
		ic.reportf("log failed: %v", err)
	}
}

func (ic *Interceptor) reportf(format string, v ...interface{}) {
	ic.errLog.Printf("dlog: "+format, v...)
}

// Console returns the intercepted output functions.
func (ic *Interceptor) Console() Console {
	return ic.console
}

// Originals returns a copy of the function table captured at construction.
func (ic *Interceptor) Originals() FunctionTable {
	return ic.originals.clone()
}

// Settings returns a copy of the bundle forwarded to the Driver.
func (ic *Interceptor) Settings() Settings {
	return ic.settings.clone()
}

// PreservesOutput reports whether the original functions are still invoked.
func (ic *Interceptor) PreservesOutput() bool {
	return ic.preserve
}

// Writer returns an io.Writer that feeds each write through slot.
// It is meant for log.SetOutput and similar redirections.
func (ic *Interceptor) Writer(slot Slot) io.Writer {
	return slotWriter{fn: ic.console.Func(slot)}
}

// Flush drains the Sink.
func (ic *Interceptor) Flush(ctx context.Context) error {
	return ic.sink.Flush(ctx)
}

// Close releases the Sink. The Interceptor must not be used afterwards.
func (ic *Interceptor) Close() error {
	return ic.sink.CleanUp()
}
