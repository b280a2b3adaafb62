package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/taknb2nch/dlog"
)

func TestScanRecords(t *testing.T) {
	input := strings.Join([]string{
		"starting",
		"Trace: boom",
		"    at main (main.go:1)",
		"    at run (run.go:2)",
		"done",
		"Trace: dangling",
	}, "\n")

	var got []string
	if err := scanRecords(strings.NewReader(input), func(r string) { got = append(got, r) }); err != nil {
		t.Fatalf("scanRecords() returned an error: %v", err)
	}

	want := []string{
		"starting",
		"Trace: boom\n    at main (main.go:1)\n    at run (run.go:2)",
		"done",
		"Trace: dangling",
	}

	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d: %q", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRun(t *testing.T) {
	t.Setenv(dlog.EnvLevel, "")

	in := strings.NewReader("hello\nTrace: boom\n  at f (f.go:1)\n")

	var out bytes.Buffer
	cfg := &dlog.Config{APIKey: "sk_test"}

	if err := run(context.Background(), cfg, dlog.SlotInfo, in, &out); err != nil {
		t.Fatalf("run() returned an error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d: %q", len(lines), out.String())
	}
	if !strings.Contains(lines[0], `"severity":"INFO"`) {
		t.Errorf("first entry should be INFO: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"severity":"TRACE"`) {
		t.Errorf("second entry should be TRACE: %s", lines[1])
	}
}

func TestRunErrors(t *testing.T) {
	testCases := []struct {
		name string
		cfg  *dlog.Config
		slot dlog.Slot
	}{
		{name: "missing api key", cfg: &dlog.Config{}, slot: dlog.SlotLog},
		{name: "unknown slot", cfg: &dlog.Config{APIKey: "k"}, slot: dlog.Slot("trace")},
		{name: "unknown level", cfg: &dlog.Config{APIKey: "k", Level: "loud"}, slot: dlog.SlotLog},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := run(context.Background(), tc.cfg, tc.slot, strings.NewReader(""), &bytes.Buffer{})
			if err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCommandFlags(t *testing.T) {
	t.Setenv(dlog.EnvAPIKey, "")

	var out bytes.Buffer

	cmd := newCommand()
	cmd.Reader = strings.NewReader("warned\n")
	cmd.Writer = &out

	err := cmd.Run(context.Background(), []string{"dlogcat", "--api-key", "sk_flag", "--slot", "warn", "--level", "warn"})
	if err != nil {
		t.Fatalf("Run() returned an error: %v", err)
	}

	if !strings.Contains(out.String(), `"severity":"WARN"`) {
		t.Errorf("unexpected output: %q", out.String())
	}
}
