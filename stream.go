package streambridge

import "runtime"

// Stream is the opaque handle transferred to the consumer. It produces
// exactly one [Iterator] via [Stream.IntoIterator]; calling that a second
// time is a programmer error and panics, unless the stream has already
// terminated.
//
// Dropping a Stream without ever calling IntoIterator is itself a valid
// termination trigger (the sequence_deinitialized event): Close reports
// this explicitly, and a [runtime.SetFinalizer] hook - following
// the same pattern as SagerNet-smux's Session.AcceptStream and
// inprocgrpc's clientStreamAdapter.setFinalizer - calls Close if the
// caller forgets to, so a Stream that is only ever garbage collected still
// terminates its stream rather than leaking the producer side forever.
type Stream[E any] struct {
	storage *storage[E]
}

func newStream[E any](s *storage[E]) *Stream[E] {
	stream := &Stream[E]{storage: s}
	runtime.SetFinalizer(stream, func(st *Stream[E]) {
		st.Close()
	})
	return stream
}

// IntoIterator returns the stream's single [Iterator]. Calling it a second
// time panics, except once the stream has terminated: creation is then
// tolerated and the returned Iterator's Next reports io.EOF.
func (s *Stream[E]) IntoIterator() *Iterator[E] {
	s.storage.iteratorInitialized()
	return newIterator[E](s.storage)
}

// Close signals that the consumer is done with this Stream handle,
// firing the sequence_deinitialized event. It is safe to
// call multiple times and safe to call whether or not IntoIterator was
// ever called.
func (s *Stream[E]) Close() error {
	s.storage.sequenceDeinitialized()
	return nil
}
