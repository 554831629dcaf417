package streambridge

// stateKind is the tag of the coreState sum type.
//
// A fifth, never-externally-observed "Modifying" case is kept as a named
// constant even though it is never constructed: some designs for this kind
// of state machine need it to let a non-copyable field be moved out of an
// enum payload mid-transition. Go has no such requirement - coreState is
// mutated in place while storage's mutex is held, so no transition ever
// needs an intermediate placeholder value. It remains only so a defensive
// assertion can reference it; see DESIGN.md.
type stateKind uint8

const (
	stateInitial stateKind = iota
	stateStreaming
	stateSourceFinished
	stateFinished
	stateModifying // never constructed; see comment above
)

func (k stateKind) String() string {
	switch k {
	case stateInitial:
		return "Initial"
	case stateStreaming:
		return "Streaming"
	case stateSourceFinished:
		return "SourceFinished"
	case stateFinished:
		return "Finished"
	case stateModifying:
		return "Modifying"
	default:
		return "Unknown"
	}
}

// coreState is the single mutable record protected by storage's mutex. Its
// fields are a union of the payloads of every stateKind; which ones are
// meaningful is determined by kind: a tagged variant with explicit
// payloads, mutated by pure total functions in statemachine.go.
//
// The invariant that a waiter present implies an empty buffer is
// maintained by every transition in statemachine.go and is asserted
// defensively there (a violation is a bug in this package, not a caller
// error).
type coreState[E any] struct {
	kind              stateKind
	buffer            []E
	waiter            *waiter[E]
	outstandingDemand bool
	iteratorCreated   bool
	failure           error // meaningful only in SourceFinished; never read in Finished
}
