// Package grpcfailure maps the failure values carried by a
// [streambridge.Source] onto gRPC status codes, for bridges whose producer
// side is an RPC handler and whose consumer side needs a status it can
// return (or re-wrap) directly.
package grpcfailure

import (
	"errors"
	"io"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Cancelled reports whether err is not a real failure: nil, or the io.EOF
// end-of-stream/cancellation sentinel a [streambridge.Iterator] surfaces for
// either a clean finish or a context cancellation.
func Cancelled(err error) bool {
	return err == nil || errors.Is(err, io.EOF)
}

// ToStatus converts a non-nil, non-EOF failure from
// [streambridge.Source.FinishWithError] into a *status.Status, so a
// consumer bridging to a gRPC server stream can call grpc.SendHeader or
// return the error directly. If err already carries a gRPC status (for
// example because the producer itself wraps an upstream RPC failure), that
// status is returned unchanged; otherwise err is wrapped as codes.Unknown.
func ToStatus(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	if s, ok := status.FromError(err); ok {
		return s
	}
	return status.New(codes.Unknown, err.Error())
}

// New builds a failure value suitable for [streambridge.Source.FinishWithError]
// out of a gRPC code and message, for producers that want the consumer side
// to recover an exact status via ToStatus.
func New(code codes.Code, msg string) error {
	return status.Error(code, msg)
}
