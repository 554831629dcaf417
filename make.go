package streambridge

// New constructs a stream bridge: a [Source] for the producer and a
// [Stream] to be handed to the consumer. strategy must not be nil.
// delegate may be nil, in which case producer notifications
// (ProduceMore/DidTerminate) are simply discarded.
//
// The caller must retain source for as long as it intends to produce, and
// must transfer stream to the consumer. Dropping stream without ever
// calling [Stream.IntoIterator] is itself a valid way to terminate the
// stream.
func New[E any](strategy BackPressureStrategy, delegate Delegate) (source *Source[E], stream *Stream[E]) {
	if strategy == nil {
		panic("streambridge: nil BackPressureStrategy")
	}
	s := newStorage[E](strategy, delegate)
	return &Source[E]{storage: s}, newStream[E](s)
}
