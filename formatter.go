package dlog

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
)

// Entry is one intercepted call as seen by a Formatter.
type Entry struct {
	Time     time.Time
	Severity Severity
	Message  string
	Settings Settings
}

// newEntry renders args the way a console joins its operands.
func newEntry(level Severity, args []any, settings Settings) *Entry {
	return &Entry{
		Time:     time.Now(),
		Severity: level,
		Message:  sprintMessage(args...),
		Settings: settings,
	}
}

// Formatter is an interface for converting an Entry into a byte slice.
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// jsonFormatter formats entries as JSON.
type jsonFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *jsonFormatter {
	return &jsonFormatter{}
}

// Format converts an Entry to JSON format.
func (f *jsonFormatter) Format(e *Entry) ([]byte, error) {
	m := map[string]interface{}{
		"timestamp": e.Time.In(time.UTC).Format(time.RFC3339Nano),
		"severity":  e.Severity,
		"message":   e.Message,
	}

	if e.Severity == SeverityTrace {
		m["stacktrace"] = true
	}

	return json.Marshal(m)
}

// levelColorMap holds the default colour of each severity label.
var levelColorMap = map[Severity]color.Attribute{
	SeverityTrace: color.FgHiBlack,
	SeverityDebug: color.FgCyan,
	SeverityInfo:  color.FgGreen,
	SeverityWarn:  color.FgYellow,
	SeverityError: color.FgRed,
}

// textFormatter formats entries as human-readable text.
type textFormatter struct {
	colors map[Severity]*color.Color
}

// TextOption configures a text formatter.
type TextOption func(*textOptions)

type textOptions struct {
	color    bool
	colorSet bool
}

// WithColor forces colour on or off. Without it, colour is used only when
// stderr is a terminal.
func WithColor(enabled bool) TextOption {
	return func(o *textOptions) {
		o.color = enabled
		o.colorSet = true
	}
}

// NewTextFormatter creates a new TextFormatter.
func NewTextFormatter(opts ...TextOption) *textFormatter {
	o := &textOptions{}
	for _, opt := range opts {
		opt(o)
	}

	enabled := o.color
	if !o.colorSet {
		enabled = !color.NoColor && isTerminal(os.Stderr)
	}

	f := &textFormatter{colors: make(map[Severity]*color.Color, len(levelColorMap))}

	for sev, attr := range levelColorMap {
		c := color.New(attr)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}

		f.colors[sev] = c
	}

	return f
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Format converts an Entry to a single-line text format.
// A multi-line message such as a stack trace keeps its line breaks.
func (f *textFormatter) Format(e *Entry) ([]byte, error) {
	var b bytes.Buffer

	// Timestamp
	b.WriteString(e.Time.Format(time.RFC3339))
	b.WriteString(" ")

	// Severity
	label := "[" + e.Severity.String() + "]"
	if c, ok := f.colors[e.Severity]; ok {
		label = c.Sprint(label)
	}

	b.WriteString(label)
	b.WriteString(" ")

	// Message
	b.WriteString(strings.TrimRight(e.Message, "\n"))

	return b.Bytes(), nil
}

// sprintMessage builds a string from a slice of interfaces, separated by spaces.
func sprintMessage(v ...interface{}) string {
	var b strings.Builder

	for i, arg := range v {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprint(&b, arg)
	}

	return b.String()
}
