package streambridge

import (
	"context"
	"runtime"
)

// Iterator is the consumer's async handle onto a stream, obtained from
// [Stream.IntoIterator]. It is not safe to call Next from more than one
// goroutine at a time: at most one concurrent Next call is permitted, and
// a second overlapping call panics. It must not be shared across
// tasks/goroutines concurrently for any other reason either.
type Iterator[E any] struct {
	storage *storage[E]
}

func newIterator[E any](s *storage[E]) *Iterator[E] {
	it := &Iterator[E]{storage: s}
	runtime.SetFinalizer(it, func(i *Iterator[E]) {
		i.Close()
	})
	return it
}

// Next returns the next element yielded by the producer, blocking until
// one is available, the stream finishes, or ctx is done.
//
//   - A nil error means val is the next element.
//   - io.EOF means the stream finished cleanly, or ctx was cancelled while
//     Next was parked waiting for an element (cancellation is not
//     surfaced as an error: the consumer observes end-of-stream).
//   - Any other non-nil error is the failure passed to
//     [Source.FinishWithError], surfaced exactly once, after every
//     buffered element has been drained.
//
// If ctx races with a Finish/FinishWithError call that is already
// resolving a parked Next, whichever acquires the internal lock first
// decides the outcome.
func (it *Iterator[E]) Next(ctx context.Context) (E, error) {
	return it.storage.next(ctx)
}

// Close signals that the consumer is done with this Iterator, firing the
// iterator_deinitialized event. It is safe to call multiple
// times. It must not be called concurrently with an in-flight Next call
// other than via that call's own ctx being cancelled. A finalizer registered
// when the Iterator is created calls Close if the caller never does.
func (it *Iterator[E]) Close() error {
	it.storage.iteratorDeinitialized()
	return nil
}
