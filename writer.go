package dlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// WriterOption configures a writer Driver.
type WriterOption func(*WriterSink)

// WithWriterFormatter sets the formatter of the sink. The default is JSON.
func WithWriterFormatter(f Formatter) WriterOption {
	return func(s *WriterSink) {
		if f != nil {
			s.formatter = f
		}
	}
}

// NewWriterDriver returns a Driver whose Sinks write one formatted line per
// call to w. Every Sink it creates shares w.
func NewWriterDriver(w io.Writer, opts ...WriterOption) Driver {
	return DriverFunc(func(_ string, settings Settings) (Sink, error) {
		if w == nil {
			return nil, errors.New("nil writer")
		}

		s := &WriterSink{
			out:       w,
			formatter: NewJSONFormatter(),
			settings:  settings,
		}

		for _, opt := range opts {
			opt(s)
		}

		return s, nil
	})
}

// WriterSink is the native Sink: it writes entries to an io.Writer.
// Flush is forwarded to writers with a Flush() error method (bufio.Writer);
// CleanUp flushes and closes writers that implement io.Closer.
// Instances of WriterSink are safe for concurrent use.
type WriterSink struct {
	mu        sync.Mutex
	out       io.Writer
	formatter Formatter
	settings  Settings
	closed    bool
	closeErr  error
}

// Log formats one entry and writes it followed by a newline.
func (s *WriterSink) Log(level Severity, args []any) error {
	out, err := s.formatter.Format(newEntry(level, args, s.settings))
	if err != nil {
		return fmt.Errorf("failed to format log entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}

	if _, err := fmt.Fprintln(s.out, string(out)); err != nil {
		return err
	}

	return nil
}

// Flush flushes the writer if it buffers.
func (s *WriterSink) Flush(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flushLocked()
}

func (s *WriterSink) flushLocked() error {
	if s.closed {
		return nil
	}

	if f, ok := s.out.(interface{ Flush() error }); ok {
		return f.Flush()
	}

	return nil
}

// CleanUp flushes and closes the writer; os.Stdout and os.Stderr are left open.
// Only the first call has an effect.
func (s *WriterSink) CleanUp() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.closeErr
	}

	err := s.flushLocked()

	if c, ok := s.out.(io.Closer); ok && !isStdStream(s.out) {
		err = errors.Join(err, c.Close())
	}

	s.closed = true
	s.closeErr = err

	return err
}

// isStdStream reports whether w is the process's stdout or stderr, which a
// sink must never close.
func isStdStream(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && (f == os.Stdout || f == os.Stderr)
}
