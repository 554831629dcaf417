// Package streambridge implements a unicast, back-pressured, asynchronous
// stream bridge between a synchronous producer (for example a network
// pipeline callback running on an I/O thread) and a single asynchronous
// consumer that awaits elements one at a time.
//
// A [Source] and a [Stream] are created together by [New]. The producer
// retains the Source and calls [Source.Yield] / [Source.YieldAll] /
// [Source.Finish] / [Source.FinishWithError]. The Stream is handed to the
// consumer, which calls [Stream.IntoIterator] at most once to obtain an
// [Iterator], and then repeatedly calls [Iterator.Next] until it returns
// io.EOF or a non-nil error.
//
// All exported types are safe for concurrent use unless documented
// otherwise (an [Iterator] admits only one Next call at a time): a single internal mutex
// mediates every transition between the producer side, the consumer side,
// and lifecycle events (an iterator being created or closed, a stream being
// dropped, the context passed to Next being cancelled). The mutex is held
// only long enough to compute the next state and the side effects ("actions")
// that must run once it is released; it is never held while a delegate
// callback or a waiting consumer is resumed. See statemachine.go for the
// pure transition functions that implement this.
//
// streambridge is unicast: a Stream yields exactly one Iterator over its
// lifetime. Creating a second one is a programmer error and panics, unless
// the stream has already terminated, in which case the late Iterator simply
// reports io.EOF. It does
// not reorder, multiplex, fan out, or persist anything; back-pressure is
// delegated entirely to a pluggable [BackPressureStrategy], and producer
// notifications are delegated to a pluggable [Delegate].
package streambridge
