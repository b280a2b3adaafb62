package dlog

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Event is a terminal event of the process.
type Event int

const (
	// EventExit is a normal exit, announced by Shutdown or Exit.
	EventExit Event = iota

	// EventInterrupt is the delivery of an interrupt or termination signal.
	EventInterrupt
)

func (e Event) String() string {
	switch e {
	case EventExit:
		return "exit"
	case EventInterrupt:
		return "interrupt"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// interruptExitCode is the conventional status of a process killed by SIGINT.
const interruptExitCode = 130

var (
	process = newLifecycle()

	osExit = os.Exit
)

// finalizer runs at most once no matter how often its event fires.
type finalizer struct {
	once sync.Once
	fn   func()
}

// lifecycle holds the (event, callback) registrations of the process and the
// goroutine that turns signals into EventInterrupt.
type lifecycle struct {
	mu         sync.Mutex
	finalizers map[Event][]*finalizer
	signals    []os.Signal

	notify     func(c chan<- os.Signal, sig ...os.Signal)
	stopNotify func(c chan<- os.Signal)

	stop chan struct{}
	done chan struct{}
}

func newLifecycle() *lifecycle {
	return &lifecycle{
		finalizers: make(map[Event][]*finalizer),
		signals:    []os.Signal{os.Interrupt, syscall.SIGTERM},
		notify:     signal.Notify,
		stopNotify: signal.Stop,
	}
}

// register adds fn to the callbacks of event.
func (lc *lifecycle) register(event Event, fn func()) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.finalizers[event] = append(lc.finalizers[event], &finalizer{fn: fn})
}

// fire runs every callback registered for event that has not run yet.
func (lc *lifecycle) fire(event Event) {
	lc.mu.Lock()
	fs := append([]*finalizer(nil), lc.finalizers[event]...)
	lc.mu.Unlock()

	for _, f := range fs {
		f.once.Do(f.fn)
	}
}

// watch starts the signal goroutine. It is a no-op while one is running.
func (lc *lifecycle) watch() {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if lc.stop != nil {
		return
	}

	sigCh := make(chan os.Signal, 1)
	lc.notify(sigCh, lc.signals...)

	stop := make(chan struct{})
	done := make(chan struct{})
	lc.stop, lc.done = stop, done

	go func() {
		defer close(done)
		defer lc.stopNotify(sigCh)

		select {
		case <-sigCh:
			lc.fire(EventInterrupt)
			osExit(interruptExitCode)
		case <-stop:
		}
	}()
}

// unwatch stops the signal goroutine and waits for it to return.
func (lc *lifecycle) unwatch() {
	lc.mu.Lock()
	stop, done := lc.stop, lc.done
	lc.stop, lc.done = nil, nil
	lc.mu.Unlock()

	if stop == nil {
		return
	}

	close(stop)
	<-done
}

// Shutdown announces a normal exit: the signal watcher is stopped and every
// exit finalizer runs, which cleans up the configured Sink.
// Call it with defer at the top of main.
func Shutdown() {
	process.unwatch()
	process.fire(EventExit)
}

// Exit runs Shutdown and then terminates the process with the given status.
func Exit(code int) {
	Shutdown()
	osExit(code)
}
