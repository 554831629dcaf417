package streambridge

import (
	"context"
	"sync"
)

// storage is the shared state object backing a single stream: it owns the
// lock, the coreState, a reference to the back-pressure strategy, and the
// Delegate. Source, Stream and Iterator each hold a *storage[E]; none of
// them owns any of the others.
//
// Every public operation funnels through one of storage's methods, each of
// which follows the same shape: lock, ask the (pure, package-private)
// stateMachine to compute the next state and an action, capture the
// delegate reference, unlock, then run the action's side effects. This is
// the "compute under lock, act outside lock" discipline that is the key
// correctness property of the whole package, and it mirrors the
// grab-reference/clear-field/call-outside-critical-section shape of
// inprocgrpc/internal/stream.HalfStream's Send/Recv/Close methods.
type storage[E any] struct {
	mu       sync.Mutex
	state    coreState[E]
	strategy BackPressureStrategy
	delegate Delegate
}

func newStorage[E any](strategy BackPressureStrategy, delegate Delegate) *storage[E] {
	if delegate == nil {
		delegate = nopDelegate{}
	}
	return &storage[E]{strategy: strategy, delegate: delegate}
}

// runAction executes the side effects described by act, in strict order:
// first resume any parked waiter, then invoke the delegate callback
// (ProduceMore or DidTerminate - at most one of these is ever set on a
// single action).
func (s *storage[E]) runAction(act action[E], delegate Delegate) {
	if act.resumeWaiter != nil {
		if act.hasResumeValue {
			act.resumeWaiter.resume(act.resumeValue, nil)
		} else {
			var zero E
			act.resumeWaiter.resume(zero, act.resumeErr)
		}
	}
	if act.produceMore {
		delegate.ProduceMore()
	}
	if act.didTerminate {
		delegate.DidTerminate()
	}
}

func (s *storage[E]) yield(elements []E) YieldResult {
	if len(elements) == 0 {
		s.mu.Lock()
		produceMore := s.state.outstandingDemand
		dropped := s.state.kind == stateSourceFinished || s.state.kind == stateFinished
		s.mu.Unlock()
		if dropped {
			return Dropped
		}
		return yieldResultFor(produceMore)
	}

	s.mu.Lock()
	result, act := stateMachine[E]{}.smYield(&s.state, s.strategy, elements)
	delegate := s.delegate
	s.mu.Unlock()

	s.runAction(act, delegate)
	return result
}

func (s *storage[E]) finish(failure error) {
	s.mu.Lock()
	act := stateMachine[E]{}.smFinish(&s.state, failure)
	delegate := s.delegate
	s.mu.Unlock()

	s.runAction(act, delegate)
}

// next implements Iterator.Next. Computing whether to suspend and, if so,
// attaching the waiter happen within a single critical section: a Go
// waiter is just a capacity-1 channel, cheap enough to allocate while
// already holding the mutex, so there is no window in which an
// inconsistent waiter field could be observed at all - see DESIGN.md.
func (s *storage[E]) next(ctx context.Context) (E, error) {
	s.mu.Lock()
	outcome, act := stateMachine[E]{}.smNext(&s.state, s.strategy)
	var w *waiter[E]
	if outcome.suspend {
		var act2 action[E]
		w, act2 = stateMachine[E]{}.smNextAttachWaiter(&s.state, s.strategy)
		act = mergeActions(act, act2)
	}
	delegate := s.delegate
	s.mu.Unlock()

	s.runAction(act, delegate)

	if !outcome.suspend {
		if outcome.hasValue {
			return outcome.value, nil
		}
		var zero E
		return zero, outcome.err
	}

	select {
	case res := <-w.ch:
		return res.value, res.err
	case <-ctx.Done():
		s.cancelled()
		res := <-w.ch
		return res.value, res.err
	}
}

// cancelled implements the cancellation transition triggered when the
// context passed to Next is done while the consumer is parked. It races
// with finish/yield for the lock; whichever wins decides the outcome the
// parked Next call observes.
func (s *storage[E]) cancelled() {
	s.mu.Lock()
	act := stateMachine[E]{}.smCancelled(&s.state)
	delegate := s.delegate
	s.mu.Unlock()

	s.runAction(act, delegate)
}

func (s *storage[E]) sequenceDeinitialized() {
	s.mu.Lock()
	act := stateMachine[E]{}.smSequenceDeinitialized(&s.state)
	delegate := s.delegate
	s.mu.Unlock()

	s.runAction(act, delegate)
}

func (s *storage[E]) iteratorInitialized() {
	s.mu.Lock()
	act := stateMachine[E]{}.smIteratorInitialized(&s.state)
	delegate := s.delegate
	s.mu.Unlock()

	s.runAction(act, delegate)
}

func (s *storage[E]) iteratorDeinitialized() {
	s.mu.Lock()
	act := stateMachine[E]{}.smIteratorDeinitialized(&s.state)
	delegate := s.delegate
	s.mu.Unlock()

	s.runAction(act, delegate)
}

// mergeActions combines step A's action (at most a produceMore flag, per
// smNext) with step B's action (at most a produceMore flag, per
// smNextAttachWaiter). Neither ever sets resumeWaiter or didTerminate, so a
// plain OR of the flags is exact.
func mergeActions[E any](a, b action[E]) action[E] {
	a.produceMore = a.produceMore || b.produceMore
	a.didTerminate = a.didTerminate || b.didTerminate
	return a
}
