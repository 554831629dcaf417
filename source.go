package streambridge

import "iter"

// Source is the producer's handle onto a stream, created alongside its
// sibling [Stream] by [New]. It is safe to call its methods from any
// goroutine, including concurrently with each other and with consumer-side
// or lifecycle events on the paired Stream/Iterator.
type Source[E any] struct {
	storage *storage[E]
}

// Yield deposits a single element into the stream. It never blocks.
//
// If the consumer is currently parked in [Iterator.Next], element is
// delivered to it directly and the transition's action resumes it. That
// resume happens inside Yield, after the lock is released and before Yield
// returns, so the consumer goroutine may observe the element before the
// producer has received Yield's result.
func (s *Source[E]) Yield(element E) YieldResult {
	return s.storage.yield([]E{element})
}

// YieldAll deposits every element produced by seq, as a single yield event:
// the elements are appended (and, if a consumer is parked, the first one is
// delivered to it) atomically with respect to any other Source/Stream/
// Iterator operation. seq is drained synchronously and completely before
// YieldAll returns.
func (s *Source[E]) YieldAll(seq iter.Seq[E]) YieldResult {
	var elements []E
	for e := range seq {
		elements = append(elements, e)
	}
	return s.storage.yield(elements)
}

// Finish signals a clean end-of-stream: the consumer, once it has drained
// any buffered elements, will observe io.EOF. Finish is idempotent;
// subsequent calls to Finish or FinishWithError are ignored.
func (s *Source[E]) Finish() {
	s.storage.finish(nil)
}

// FinishWithError signals an end-of-stream carrying a failure: the
// consumer, once it has drained any buffered elements, will observe err
// from [Iterator.Next]. A nil err is equivalent to calling Finish.
// FinishWithError is idempotent; subsequent calls to Finish or
// FinishWithError are ignored.
func (s *Source[E]) FinishWithError(err error) {
	s.storage.finish(err)
}
