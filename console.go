package dlog

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Slot names one severity-named output function.
type Slot string

const (
	SlotError Slot = "error"
	SlotWarn  Slot = "warn"
	SlotInfo  Slot = "info"
	SlotLog   Slot = "log"
	SlotDebug Slot = "debug"
)

// Slots lists every output slot in a stable order.
var Slots = []Slot{SlotError, SlotWarn, SlotInfo, SlotLog, SlotDebug}

// "log" and "info" share INFO.
var nominalSeverity = map[Slot]Severity{
	SlotError: SeverityError,
	SlotWarn:  SeverityWarn,
	SlotInfo:  SeverityInfo,
	SlotLog:   SeverityInfo,
	SlotDebug: SeverityDebug,
}

// Severity returns the nominal severity of the slot.
// Unknown slots are treated as "log".
func (s Slot) Severity() Severity {
	if sev, ok := nominalSeverity[s]; ok {
		return sev
	}

	return SeverityInfo
}

// PrintFunc is the signature of a console-style output function.
type PrintFunc func(args ...any)

// FunctionTable maps each slot to its output function.
type FunctionTable map[Slot]PrintFunc

// clone copies t, filling slots that are missing with a no-op.
func (t FunctionTable) clone() FunctionTable {
	out := make(FunctionTable, len(Slots))

	for _, slot := range Slots {
		if fn, ok := t[slot]; ok && fn != nil {
			out[slot] = fn
		} else {
			out[slot] = func(...any) {}
		}
	}

	return out
}

// NewConsoleTable returns the plain terminal console: error and warn print
// to stderr, the rest to stdout, with operands separated by spaces.
// A nil writer defaults to os.Stdout or os.Stderr respectively.
func NewConsoleTable(stdout, stderr io.Writer) FunctionTable {
	if stdout == nil {
		stdout = os.Stdout
	}

	if stderr == nil {
		stderr = os.Stderr
	}

	printTo := func(w io.Writer) PrintFunc {
		return func(args ...any) {
			fmt.Fprintln(w, args...)
		}
	}

	return FunctionTable{
		SlotError: printTo(stderr),
		SlotWarn:  printTo(stderr),
		SlotInfo:  printTo(stdout),
		SlotLog:   printTo(stdout),
		SlotDebug: printTo(stdout),
	}
}

// Console is a set of output functions, usually the intercepted ones
// returned by (*Interceptor).Console.
type Console struct {
	table FunctionTable
}

// NewConsole wraps a function table. Missing slots become no-ops.
func NewConsole(table FunctionTable) Console {
	return Console{table: table.clone()}
}

// Error prints through the error slot.
func (c Console) Error(args ...any) { c.call(SlotError, args) }

// Warn prints through the warn slot.
func (c Console) Warn(args ...any) { c.call(SlotWarn, args) }

// Info prints through the info slot.
func (c Console) Info(args ...any) { c.call(SlotInfo, args) }

// Log prints through the log slot.
func (c Console) Log(args ...any) { c.call(SlotLog, args) }

// Debug prints through the debug slot.
func (c Console) Debug(args ...any) { c.call(SlotDebug, args) }

// Func returns the function bound to slot, or a no-op.
func (c Console) Func(slot Slot) PrintFunc {
	if fn, ok := c.table[slot]; ok {
		return fn
	}

	return func(...any) {}
}

// Table returns a copy of the underlying function table.
func (c Console) Table() FunctionTable {
	return c.table.clone()
}

func (c Console) call(slot Slot, args []any) {
	if fn, ok := c.table[slot]; ok {
		fn(args...)
	}
}

// slotWriter adapts a slot to io.Writer so the standard library logger can
// be pointed at an interceptor. Each Write is one call with a single string
// argument, trailing newline removed.
type slotWriter struct {
	fn PrintFunc
}

func (w slotWriter) Write(p []byte) (int, error) {
	w.fn(strings.TrimRight(string(p), "\r\n"))

	return len(p), nil
}
