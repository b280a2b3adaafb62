package dlog

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// LevelTrace is the slog level used for SeverityTrace.
const LevelTrace = slog.LevelDebug - 4

// SlogLevel converts a Severity to the nearest slog level.
func SlogLevel(s Severity) slog.Level {
	switch {
	case s >= SeverityError:
		return slog.LevelError
	case s >= SeverityWarn:
		return slog.LevelWarn
	case s >= SeverityInfo:
		return slog.LevelInfo
	case s >= SeverityDebug:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// slotForLevel picks the output slot a slog record is routed through.
func slotForLevel(l slog.Level) Slot {
	switch {
	case l >= slog.LevelError:
		return SlotError
	case l >= slog.LevelWarn:
		return SlotWarn
	case l >= slog.LevelInfo:
		return SlotInfo
	default:
		return SlotDebug
	}
}

// --- Interceptor as a slog.Handler ---

// Handler returns a slog.Handler that feeds records through the intercepted
// console, so slog.SetDefault(slog.New(ic.Handler())) reroutes the standard
// structured logger. The record message is the first argument; attributes
// follow as key=value values.
func (ic *Interceptor) Handler() slog.Handler {
	return &interceptHandler{ic: ic}
}

type interceptHandler struct {
	ic     *Interceptor
	attrs  []slog.Attr
	groups string
}

func (h *interceptHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= SlogLevel(h.ic.minSeverity) || h.ic.preserve
}

func (h *interceptHandler) Handle(_ context.Context, rec slog.Record) error {
	args := make([]any, 0, 1+len(h.attrs)+rec.NumAttrs())
	args = append(args, rec.Message)

	for _, a := range h.attrs {
		args = append(args, a)
	}

	rec.Attrs(func(a slog.Attr) bool {
		if h.groups != "" {
			a.Key = h.groups + a.Key
		}

		args = append(args, a)

		return true
	})

	h.ic.console.Func(slotForLevel(rec.Level))(args...)

	return nil
}

func (h *interceptHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &interceptHandler{ic: h.ic, groups: h.groups}
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)

	for i := len(h.attrs); i < len(next.attrs); i++ {
		if h.groups != "" {
			next.attrs[i].Key = h.groups + next.attrs[i].Key
		}
	}

	return next
}

func (h *interceptHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return &interceptHandler{
		ic:     h.ic,
		attrs:  h.attrs,
		groups: h.groups + name + ".",
	}
}

// --- slog.Handler as a Sink ---

// NewSlogDriver returns a Driver whose Sinks hand every call to h.
// The API key and settings are accepted but not used.
func NewSlogDriver(h slog.Handler) Driver {
	return DriverFunc(func(_ string, _ Settings) (Sink, error) {
		return &SlogSink{handler: h}, nil
	})
}

// SlogSink forwards calls to a slog.Handler. Flush and CleanUp are delegated
// to the handler when it has Flush() error or Close() error methods.
type SlogSink struct {
	handler   slog.Handler
	closeOnce sync.Once
	closeErr  error
}

// Log builds a record from args and passes it to the handler.
func (s *SlogSink) Log(level Severity, args []any) error {
	ctx := context.Background()
	lvl := SlogLevel(level)

	if !s.handler.Enabled(ctx, lvl) {
		return nil
	}

	rec := slog.NewRecord(time.Now(), lvl, sprintMessage(args...), 0)
	rec.AddAttrs(slog.String("severity", level.String()))

	return s.handler.Handle(ctx, rec)
}

// Flush calls the handler's Flush method, if any.
func (s *SlogSink) Flush(context.Context) error {
	if f, ok := s.handler.(interface{ Flush() error }); ok {
		return f.Flush()
	}

	return nil
}

// CleanUp flushes and then closes the handler once.
func (s *SlogSink) CleanUp() error {
	s.closeOnce.Do(func() {
		if err := s.Flush(context.Background()); err != nil {
			s.closeErr = err

			return
		}

		if c, ok := s.handler.(interface{ Close() error }); ok {
			s.closeErr = c.Close()
		}
	})

	return s.closeErr
}
