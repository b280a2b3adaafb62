// Package dloghttp applies the dlog flush barrier to net/http handlers.
package dloghttp

import (
	"context"
	"net/http"

	"github.com/taknb2nch/dlog"
)

// Middleware returns a wrapper that flushes ic after the wrapped handler
// returns, so entries logged while serving a request are delivered before the
// response is released to the client. A panicking handler skips the flush.
// Flush failures are reported to the error output of ic.
func Middleware(ic *dlog.Interceptor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			serve := dlog.Wrap(ic, func(_ context.Context, r *http.Request) (struct{}, error) {
				next.ServeHTTP(w, r)

				return struct{}{}, nil
			})

			_, _ = serve(r.Context(), r)
		})
	}
}
