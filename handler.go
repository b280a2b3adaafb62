package dlog

import "context"

// HandlerFunc is an asynchronous request handler, for example the entry point
// of a serverless function.
type HandlerFunc[In, Out any] func(ctx context.Context, in In) (Out, error)

// WithHandler configures the process-wide Interceptor and returns handler
// wrapped by Wrap. Configuration errors are returned immediately; calling
// WithHandler twice in one process fails like a second Configure.
func WithHandler[In, Out any](apiKey string, handler HandlerFunc[In, Out], opts ...Option) (HandlerFunc[In, Out], error) {
	if err := Configure(apiKey, opts...); err != nil {
		return nil, err
	}

	return Wrap(Default(), handler), nil
}

// Wrap returns a handler that runs handler and, when it succeeds, flushes the
// Sink of ic before returning. Entries logged during the call are therefore
// delivered before the caller sees the result.
//
// A failing handler is returned as is and the flush is skipped. A flush
// failure is reported but never replaces the handler's result. If ctx is
// cancelled the handler is expected to fail, so no flush happens either.
func Wrap[In, Out any](ic *Interceptor, handler HandlerFunc[In, Out]) HandlerFunc[In, Out] {
	return func(ctx context.Context, in In) (Out, error) {
		out, err := handler(ctx, in)
		if err != nil {
			return out, err
		}

		if ferr := ic.Flush(ctx); ferr != nil {
			ic.reportf("flush failed: %v", ferr)
		}

		return out, nil
	}
}
