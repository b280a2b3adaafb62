package dlog

import (
	"context"
	"os"
	"sync"
)

// Environment variables read by ConfigureFromEnv and Configure.
const (
	EnvAPIKey = "DLOG_API_KEY"
	EnvLevel  = "DLOG_LEVEL"
)

var (
	stdConsole = NewConsole(NewConsoleTable(nil, nil))
	stdMutex   = &sync.RWMutex{}

	// instance is written once by Configure and read-only afterwards.
	// configuring reserves the cell while the Driver runs without instanceMu.
	instance     *Interceptor
	configuring  bool
	instanceMu   sync.Mutex
	savedConsole Console
)

func currentConsole() Console {
	stdMutex.RLock()
	defer stdMutex.RUnlock()

	return stdConsole
}

// Configure creates the process-wide Interceptor. It may succeed only once per
// process; later calls return ErrAlreadyConfigured and change nothing.
//
// On success the Sink is cleaned up on Shutdown, Exit, or an interrupt signal,
// and the package console functions (Error, Warn, Info, Log, Debug) forward to
// the Sink. Unless WithMinSeverity is given, DLOG_LEVEL sets the minimum severity.
//
// The Driver runs without any package lock held. Until Configure returns,
// Default reports nil and a concurrent Configure fails with ErrAlreadyConfigured.
func Configure(apiKey string, opts ...Option) error {
	instanceMu.Lock()
	if instance != nil || configuring {
		instanceMu.Unlock()

		return &ConfigError{Op: "configure", Err: ErrAlreadyConfigured}
	}

	configuring = true
	instanceMu.Unlock()

	o := buildOptions(opts)
	if !o.minSeveritySet {
		o.minSeverity = severityFromEnv()
	}

	ic, err := newInterceptor(apiKey, o)

	instanceMu.Lock()
	defer instanceMu.Unlock()

	configuring = false

	if err != nil {
		return err
	}

	instance = ic

	cleanUp := func() {
		if err := ic.Close(); err != nil {
			ic.reportf("clean up failed: %v", err)
		}
	}

	process.register(EventExit, cleanUp)
	process.register(EventInterrupt, cleanUp)

	if !o.noSignalHandler {
		process.watch()
	}

	stdMutex.Lock()
	savedConsole = stdConsole
	stdConsole = ic.Console()
	stdMutex.Unlock()

	return nil
}

// ConfigureFromEnv calls Configure with the API key stored in DLOG_API_KEY.
func ConfigureFromEnv(opts ...Option) error {
	return Configure(os.Getenv(EnvAPIKey), opts...)
}

// Default returns the Interceptor created by Configure, or nil.
func Default() *Interceptor {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	return instance
}

// Restore puts back the console functions that were active before Configure.
// The Interceptor stays configured and keeps owning its Sink.
func Restore() {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance == nil {
		return
	}

	stdMutex.Lock()
	defer stdMutex.Unlock()

	stdConsole = savedConsole
}

// Flush drains the Sink of the process-wide Interceptor.
func Flush(ctx context.Context) error {
	ic := Default()
	if ic == nil {
		return &ConfigError{Op: "flush", Err: ErrNotConfigured}
	}

	return ic.Flush(ctx)
}

// Error prints through the error slot of the package console.
func Error(args ...any) { currentConsole().Error(args...) }

// Warn prints through the warn slot of the package console.
func Warn(args ...any) { currentConsole().Warn(args...) }

// Info prints through the info slot of the package console.
func Info(args ...any) { currentConsole().Info(args...) }

// Log prints through the log slot of the package console.
func Log(args ...any) { currentConsole().Log(args...) }

// Debug prints through the debug slot of the package console.
func Debug(args ...any) { currentConsole().Debug(args...) }
