package bridge

import (
	"context"

	"github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/go-streambridge"
)

// nextResult is what PromiseIterator.Next's Promise resolves with: Value and
// Err hold the decoded (value, error) pair, matching the (E, error)
// signature Iterator.Next itself uses.
type nextResult[E any] struct {
	Value E
	Err   error
}

// PromiseIterator adapts a streambridge.Iterator onto an eventloop.Loop, for
// host programs structured around a single-threaded event loop rather than
// blocking goroutines: every element arrives as an eventloop.Promise, the
// same way a JS async generator's next() returns a promise.
type PromiseIterator[E any] struct {
	loop *eventloop.Loop
	it   *streambridge.Iterator[E]
}

// NewPromiseIterator wraps it for consumption from loop.
func NewPromiseIterator[E any](loop *eventloop.Loop, it *streambridge.Iterator[E]) *PromiseIterator[E] {
	return &PromiseIterator[E]{loop: loop, it: it}
}

// Next runs Iterator.Next on the loop's background worker pool via
// Loop.Promisify, returning a Promise that resolves with the decoded
// (value, error). The promise never rejects: Next's own error (including
// io.EOF) is carried as part of the resolved value, matching
// streambridge's convention that end-of-stream is not an exceptional
// condition.
func (p *PromiseIterator[E]) Next(ctx context.Context) eventloop.Promise {
	return p.loop.Promisify(ctx, func(ctx context.Context) (any, error) {
		v, err := p.it.Next(ctx)
		return nextResult[E]{Value: v, Err: err}, nil
	})
}

// Decode extracts the (value, error) pair from a settled Promise returned
// by Next. It panics if pr is not Resolved, or was not produced by Next.
func Decode[E any](pr eventloop.Promise) (E, error) {
	if pr.State() != eventloop.Resolved {
		panic("bridge: Decode called on an unresolved or rejected promise")
	}
	res, ok := pr.Result().(nextResult[E])
	if !ok {
		panic("bridge: Decode called on a promise not produced by PromiseIterator.Next")
	}
	return res.Value, res.Err
}
