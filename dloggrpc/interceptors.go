// Package dloggrpc applies the dlog flush barrier to gRPC server handlers.
package dloggrpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/taknb2nch/dlog"
)

// UnaryServerInterceptor flushes ic after every handler that returns a nil
// error, before the response is sent. Failed calls are returned unchanged
// without a flush.
func UnaryServerInterceptor(ic *dlog.Interceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return dlog.Wrap(ic, dlog.HandlerFunc[any, any](handler))(ctx, req)
	}
}

// StreamServerInterceptor flushes ic after every stream handler that returns
// a nil error.
func StreamServerInterceptor(ic *dlog.Interceptor) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		stream := dlog.Wrap(ic, func(_ context.Context, ss grpc.ServerStream) (struct{}, error) {
			return struct{}{}, handler(srv, ss)
		})

		_, err := stream(ss.Context(), ss)

		return err
	}
}
