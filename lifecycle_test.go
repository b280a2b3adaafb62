package dlog

import (
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// fakeSignals replaces signal delivery of the current process lifecycle.
// Sending on the returned channel simulates a delivered signal.
func fakeSignals(t *testing.T) <-chan chan<- os.Signal {
	t.Helper()

	registered := make(chan chan<- os.Signal, 1)
	process.notify = func(c chan<- os.Signal, _ ...os.Signal) { registered <- c }
	process.stopNotify = func(chan<- os.Signal) {}

	return registered
}

// TestTeardownOnExit verifies that Shutdown cleans up the configured sink exactly once.
func TestTeardownOnExit(t *testing.T) {
	defer goleak.VerifyNone(t)

	resetProcessState(t)
	installConsole(t)
	fakeSignals(t)

	sink := &recordingSink{}
	if err := Configure("key", WithDriver(recordingDriver(sink))); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	Shutdown()
	Shutdown()

	if _, _, _, cleanups := sink.snapshot(); cleanups != 1 {
		t.Errorf("expected 1 clean up, got %d", cleanups)
	}
}

// TestTeardownOnInterrupt verifies that a delivered signal cleans up and exits with 130.
func TestTeardownOnInterrupt(t *testing.T) {
	defer goleak.VerifyNone(t)

	resetProcessState(t)
	installConsole(t)
	registered := fakeSignals(t)

	exited := make(chan int, 1)
	osExit = func(code int) { exited <- code }

	sink := &recordingSink{}
	if err := Configure("key", WithDriver(recordingDriver(sink))); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	var sigCh chan<- os.Signal
	select {
	case sigCh = <-registered:
	case <-time.After(time.Second):
		t.Fatal("signal handler was not registered")
	}

	sigCh <- os.Interrupt

	select {
	case code := <-exited:
		if code != interruptExitCode {
			t.Errorf("exit code = %d, want %d", code, interruptExitCode)
		}
	case <-time.After(time.Second):
		t.Fatal("process did not exit after the interrupt")
	}

	if _, _, _, cleanups := sink.snapshot(); cleanups != 1 {
		t.Errorf("expected 1 clean up after interrupt, got %d", cleanups)
	}

	// A later normal exit runs the exit finalizer against the same sink.
	Shutdown()

	if _, _, _, cleanups := sink.snapshot(); cleanups != 2 {
		t.Errorf("expected 2 clean ups in total, got %d", cleanups)
	}
}

// TestExit verifies that Exit runs the exit finalizers before terminating.
func TestExit(t *testing.T) {
	resetProcessState(t)
	installConsole(t)

	var codes []int
	osExit = func(code int) { codes = append(codes, code) }

	sink := &recordingSink{}
	if err := Configure("key", WithDriver(recordingDriver(sink)), WithoutSignalHandler()); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	Exit(3)

	_, events, _, _ := sink.snapshot()
	if len(events) != 1 || events[0] != "cleanup" {
		t.Errorf("expected a clean up before exit, got %v", events)
	}
	if len(codes) != 1 || codes[0] != 3 {
		t.Errorf("expected exit code 3, got %v", codes)
	}
}

// TestLifecycleFireOnce verifies that finalizers are idempotent per event.
func TestLifecycleFireOnce(t *testing.T) {
	lc := newLifecycle()

	var mu sync.Mutex
	counts := map[Event]int{}
	for _, ev := range []Event{EventExit, EventInterrupt} {
		ev := ev
		lc.register(ev, func() {
			mu.Lock()
			counts[ev]++
			mu.Unlock()
		})
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lc.fire(EventExit)
		}()
	}
	wg.Wait()

	if counts[EventExit] != 1 {
		t.Errorf("exit finalizer ran %d times, want 1", counts[EventExit])
	}
	if counts[EventInterrupt] != 0 {
		t.Errorf("interrupt finalizer should not run on exit, ran %d times", counts[EventInterrupt])
	}

	lc.fire(EventInterrupt)
	lc.fire(EventInterrupt)

	if counts[EventInterrupt] != 1 {
		t.Errorf("interrupt finalizer ran %d times, want 1", counts[EventInterrupt])
	}
}

// TestLifecycleWatchIsIdempotent verifies that watch starts a single goroutine.
func TestLifecycleWatchIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	lc := newLifecycle()

	registrations := 0
	lc.notify = func(chan<- os.Signal, ...os.Signal) { registrations++ }
	lc.stopNotify = func(chan<- os.Signal) {}

	lc.watch()
	lc.watch()
	lc.unwatch()
	lc.unwatch()

	if registrations != 1 {
		t.Errorf("expected 1 signal registration, got %d", registrations)
	}
}

func TestEventString(t *testing.T) {
	if EventExit.String() != "exit" || EventInterrupt.String() != "interrupt" {
		t.Errorf("unexpected names %q, %q", EventExit, EventInterrupt)
	}
	if Event(9).String() != "event(9)" {
		t.Errorf("unexpected name %q", Event(9))
	}
}
