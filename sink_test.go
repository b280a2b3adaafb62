package dlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

type sinkCall struct {
	level Severity
	args  []any
}

// recordingSink is a Sink that remembers everything it is asked to do.
type recordingSink struct {
	mu       sync.Mutex
	apiKey   string
	settings Settings
	calls    []sinkCall
	events   []string
	flushes  int
	cleanups int

	logErr   error
	flushErr error
}

func (s *recordingSink) Log(level Severity, args []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, sinkCall{level: level, args: append([]any(nil), args...)})
	s.events = append(s.events, "log:"+sprintMessage(args...))

	return s.logErr
}

func (s *recordingSink) Flush(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushes++
	s.events = append(s.events, "flush")

	return s.flushErr
}

func (s *recordingSink) CleanUp() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cleanups++
	s.events = append(s.events, "cleanup")

	return nil
}

func (s *recordingSink) snapshot() ([]sinkCall, []string, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]sinkCall(nil), s.calls...), append([]string(nil), s.events...), s.flushes, s.cleanups
}

// recordingDriver returns a Driver that hands out sink and records its arguments.
func recordingDriver(sink *recordingSink) Driver {
	return DriverFunc(func(apiKey string, settings Settings) (Sink, error) {
		sink.apiKey = apiKey
		sink.settings = settings

		return sink, nil
	})
}

// recordingOriginals returns a function table that prints "slot: args" lines to buf.
func recordingOriginals(buf *bytes.Buffer) FunctionTable {
	table := make(FunctionTable, len(Slots))

	for _, slot := range Slots {
		slot := slot
		table[slot] = func(args ...any) {
			fmt.Fprintf(buf, "%s: %s\n", slot, sprintMessage(args...))
		}
	}

	return table
}

func TestDriverFunc(t *testing.T) {
	wantErr := errors.New("invalid credentials")
	d := DriverFunc(func(apiKey string, _ Settings) (Sink, error) {
		if apiKey != "good" {
			return nil, wantErr
		}
		return &recordingSink{}, nil
	})

	if _, err := d.Configure("bad", nil); !errors.Is(err, wantErr) {
		t.Errorf("expected %v, got %v", wantErr, err)
	}
	if s, err := d.Configure("good", nil); err != nil || s == nil {
		t.Errorf("expected a sink, got %v, %v", s, err)
	}
}

func TestSettings(t *testing.T) {
	s := Settings{SettingSanitizeEmails: true, SettingSanitizeCreditCards: false}

	if !s.Enabled(SettingSanitizeEmails) {
		t.Error("sanitize_emails should be enabled")
	}
	if s.Enabled(SettingSanitizeCreditCards) {
		t.Error("sanitize_credit_cards should be disabled")
	}
	if s.Enabled("unknown") {
		t.Error("absent setting should be disabled")
	}

	c := s.clone()
	c["extra"] = true
	if _, ok := s["extra"]; ok {
		t.Error("clone should not share storage")
	}
}
