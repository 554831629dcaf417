package streambridge

// action describes side effects that a transition's caller must perform
// once storage's mutex has been released. Representing it as plain data
// (rather than running the side effects inline) keeps every transition
// function in statemachine.go pure and trivially unit-testable.
//
// The fields are independent flags rather than a single enum because a
// single transition can trigger more than one side effect at once (for
// example finishing a stream while a consumer is parked both resumes the
// waiter and invokes DidTerminate).
type action[E any] struct {
	resumeWaiter   *waiter[E] // non-nil: a parked consumer must be resumed
	resumeValue    E          // valid only when hasResumeValue is true
	resumeErr      error      // valid only when hasResumeValue is false; io.EOF means end-of-stream
	hasResumeValue bool

	produceMore  bool // invoke Delegate.ProduceMore after the waiter (if any) is resumed
	didTerminate bool // invoke Delegate.DidTerminate after the waiter (if any) is resumed
}

// nextOutcome is what the synchronous portion of Next computes: either a
// suspend instruction (the caller must register a waiter and block) or an
// immediately-available result.
type nextOutcome[E any] struct {
	suspend bool

	hasValue bool
	value    E
	err      error // valid when !hasValue; io.EOF means end-of-stream, nil means suspend
}
