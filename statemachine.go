package streambridge

import "io"

// This file implements the pure transition function at the heart of the
// bridge: given the current coreState and an event, compute the next state
// (mutated in place) and an action describing the side effects the caller
// must perform once the lock protecting state is released. No function in
// this file locks, calls out, or does anything beyond mutating s and
// appending to s.buffer.
//
// Each event gets its own method, rather than a single dispatch-by-enum
// function, so that each transition is a small, independently
// table-testable unit (see statemachine_test.go).
type stateMachine[E any] struct{}

// smYield implements the yield semantics. elements must be non-empty;
// storage.yield guards the empty case before reaching here, since
// appending zero elements is not a meaningful event to hand to the
// back-pressure strategy.
func (stateMachine[E]) smYield(s *coreState[E], strategy BackPressureStrategy, elements []E) (YieldResult, action[E]) {
	switch s.kind {
	case stateInitial:
		s.kind = stateStreaming
		s.buffer = append(s.buffer, elements...)
		produceMore := strategy.OnYield(len(s.buffer))
		s.outstandingDemand = produceMore
		return yieldResultFor(produceMore), action[E]{}

	case stateStreaming:
		if s.waiter != nil {
			// buffer must be empty while a waiter is parked.
			if len(s.buffer) != 0 {
				panic("streambridge: invariant violation: waiter present with non-empty buffer")
			}
			w := s.waiter
			s.waiter = nil
			head := elements[0]
			s.buffer = append(s.buffer, elements[1:]...)
			produceMore := strategy.OnYield(len(s.buffer))
			s.outstandingDemand = produceMore
			return yieldResultFor(produceMore), action[E]{
				resumeWaiter:   w,
				resumeValue:    head,
				hasResumeValue: true,
			}
		}
		s.buffer = append(s.buffer, elements...)
		produceMore := strategy.OnYield(len(s.buffer))
		s.outstandingDemand = produceMore
		return yieldResultFor(produceMore), action[E]{}

	case stateSourceFinished, stateFinished:
		return Dropped, action[E]{}

	default:
		panic("streambridge: yield observed impossible state " + s.kind.String())
	}
}

func yieldResultFor(produceMore bool) YieldResult {
	if produceMore {
		return ProduceMore
	}
	return StopProducing
}

// smFinish implements the finish semantics. failure is nil for a clean
// finish.
func (stateMachine[E]) smFinish(s *coreState[E], failure error) action[E] {
	switch s.kind {
	case stateInitial:
		s.kind = stateSourceFinished
		s.buffer = nil
		s.failure = failure
		return action[E]{}

	case stateStreaming:
		if s.waiter != nil {
			if len(s.buffer) != 0 {
				panic("streambridge: invariant violation: waiter present with non-empty buffer")
			}
			w := s.waiter
			s.waiter = nil
			s.kind = stateFinished
			s.failure = nil
			if failure != nil {
				return action[E]{resumeWaiter: w, resumeErr: failure, didTerminate: true}
			}
			return action[E]{resumeWaiter: w, resumeErr: io.EOF, didTerminate: true}
		}
		s.kind = stateSourceFinished
		s.failure = failure
		return action[E]{}

	case stateSourceFinished, stateFinished:
		return action[E]{} // idempotent no-op

	default:
		panic("streambridge: finish observed impossible state " + s.kind.String())
	}
}

// smNext implements the synchronous, non-suspending portion of Next. When
// the outcome says suspend, the caller (storage.next) immediately continues
// into smNextAttachWaiter while still holding the same lock acquisition -
// see storage.next and DESIGN.md for why this module computes what would
// otherwise be two separate steps within one critical section.
func (stateMachine[E]) smNext(s *coreState[E], strategy BackPressureStrategy) (nextOutcome[E], action[E]) {
	switch s.kind {
	case stateInitial:
		s.kind = stateStreaming
		s.buffer = nil
		s.waiter = nil
		return nextOutcome[E]{suspend: true}, action[E]{}

	case stateStreaming:
		if s.waiter != nil {
			// A second concurrent Next while one is already parked.
			panic("streambridge: programmer error: concurrent Next calls are not allowed")
		}
		if len(s.buffer) > 0 {
			head := s.buffer[0]
			var zero E
			s.buffer[0] = zero
			s.buffer = s.buffer[1:]
			if len(s.buffer) == 0 {
				s.buffer = nil
			}
			prevDemand := s.outstandingDemand
			shouldProduceMore := strategy.OnConsume(len(s.buffer))
			s.outstandingDemand = shouldProduceMore
			var act action[E]
			if shouldProduceMore && !prevDemand {
				act.produceMore = true
			}
			return nextOutcome[E]{hasValue: true, value: head}, act
		}
		return nextOutcome[E]{suspend: true}, action[E]{}

	case stateSourceFinished:
		if len(s.buffer) > 0 {
			head := s.buffer[0]
			var zero E
			s.buffer[0] = zero
			s.buffer = s.buffer[1:]
			if len(s.buffer) == 0 {
				s.buffer = nil
			}
			return nextOutcome[E]{hasValue: true, value: head}, action[E]{}
		}
		failure := s.failure
		s.kind = stateFinished
		s.failure = nil
		if failure != nil {
			return nextOutcome[E]{err: failure}, action[E]{didTerminate: true}
		}
		return nextOutcome[E]{err: io.EOF}, action[E]{didTerminate: true}

	case stateFinished:
		return nextOutcome[E]{err: io.EOF}, action[E]{}

	default:
		panic("streambridge: next observed impossible state " + s.kind.String())
	}
}

// smNextAttachWaiter registers a waiter once smNext has determined the
// caller must suspend. It must only be called immediately after smNext
// returned suspend=true, within the same critical section.
func (stateMachine[E]) smNextAttachWaiter(s *coreState[E], strategy BackPressureStrategy) (*waiter[E], action[E]) {
	if s.kind != stateStreaming || s.waiter != nil {
		panic("streambridge: programmer error: smNextAttachWaiter called outside of a pending suspend")
	}
	w := newWaiter[E]()
	s.waiter = w
	prevDemand := s.outstandingDemand
	shouldProduceMore := strategy.OnConsume(0)
	s.outstandingDemand = shouldProduceMore
	var act action[E]
	if shouldProduceMore && !prevDemand {
		act.produceMore = true
	}
	return w, act
}

// smCancelled implements the cancellation semantics.
func (stateMachine[E]) smCancelled(s *coreState[E]) action[E] {
	switch s.kind {
	case stateInitial:
		s.kind = stateFinished
		return action[E]{didTerminate: true}

	case stateStreaming:
		if s.waiter != nil {
			w := s.waiter
			s.waiter = nil
			s.kind = stateFinished
			return action[E]{resumeWaiter: w, resumeErr: io.EOF, didTerminate: true}
		}
		s.kind = stateFinished
		return action[E]{didTerminate: true}

	case stateSourceFinished, stateFinished:
		return action[E]{}

	default:
		panic("streambridge: cancelled observed impossible state " + s.kind.String())
	}
}

// smSequenceDeinitialized implements the sequence_deinitialized transition:
// the Stream handle was dropped/closed.
func (stateMachine[E]) smSequenceDeinitialized(s *coreState[E]) action[E] {
	switch s.kind {
	case stateInitial, stateStreaming, stateSourceFinished:
		if !s.iteratorCreated {
			s.kind = stateFinished
			return action[E]{didTerminate: true}
		}
		return action[E]{} // consumer still owns termination
	case stateFinished:
		return action[E]{}
	default:
		panic("streambridge: sequence_deinitialized observed impossible state " + s.kind.String())
	}
}

// smIteratorInitialized implements the iterator_initialized transition.
func (stateMachine[E]) smIteratorInitialized(s *coreState[E]) action[E] {
	if s.kind == stateFinished {
		return action[E]{} // late creation tolerated, see DESIGN.md
	}
	if s.iteratorCreated {
		panic("streambridge: programmer error: a second Iterator was created for this Stream")
	}
	s.iteratorCreated = true
	return action[E]{}
}

// smIteratorDeinitialized implements the iterator_deinitialized transition.
//
// Closing the Iterator while a Next call is parked is handled the same way
// task cancellation is: to avoid leaving a goroutine blocked forever on a
// waiter channel that will never be resumed, closing the Iterator also
// resumes any parked waiter with io.EOF, exactly as smCancelled does.
func (stateMachine[E]) smIteratorDeinitialized(s *coreState[E]) action[E] {
	if s.kind == stateFinished {
		return action[E]{}
	}
	if !s.iteratorCreated {
		panic("streambridge: invariant violation: iterator_deinitialized without a created iterator")
	}
	w := s.waiter
	s.waiter = nil
	s.kind = stateFinished
	if w != nil {
		return action[E]{resumeWaiter: w, resumeErr: io.EOF, didTerminate: true}
	}
	return action[E]{didTerminate: true}
}
