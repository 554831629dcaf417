package streambridge

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingDelegate records DidTerminate/ProduceMore invocations so tests can
// assert terminal callback uniqueness (DidTerminate fires exactly once)
// and edge-triggered demand (ProduceMore fires only on a false->true flip).
type countingDelegate struct {
	mu             sync.Mutex
	produceMore    int
	didTerminate   int
}

func (d *countingDelegate) ProduceMore() {
	d.mu.Lock()
	d.produceMore++
	d.mu.Unlock()
}

func (d *countingDelegate) DidTerminate() {
	d.mu.Lock()
	d.didTerminate++
	d.mu.Unlock()
}

func (d *countingDelegate) counts() (produceMore, didTerminate int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.produceMore, d.didTerminate
}

// Scenario 1: single element, single await.
func TestScenario_SingleElementSingleAwait(t *testing.T) {
	delegate := &countingDelegate{}
	source, stream := New[int](&boolStrategy{value: true}, delegate)
	it := stream.IntoIterator()

	type result struct {
		val int
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		v, err := it.Next(context.Background())
		resultCh <- result{v, err}
	}()

	time.Sleep(10 * time.Millisecond) // let Next park
	require.Equal(t, ProduceMore, source.Yield(1))

	r := <-resultCh
	require.NoError(t, r.err)
	assert.Equal(t, 1, r.val)

	source.Finish()
	v, err := it.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, v)

	// Parking on the empty buffer consulted OnConsume(0), flipping demand
	// false->true: exactly one ProduceMore.
	pm, term := delegate.counts()
	assert.Equal(t, 1, pm)
	assert.Equal(t, 1, term)
}

// Scenario 2: back-pressure flip.
func TestScenario_BackPressureFlip(t *testing.T) {
	delegate := &countingDelegate{}
	strat := thresholdStrategy{threshold: 2}
	source, stream := New[string](strat, delegate)
	it := stream.IntoIterator()

	result := source.YieldAll(func(yield func(string) bool) {
		for _, e := range []string{"A", "B", "C"} {
			if !yield(e) {
				return
			}
		}
	})
	assert.Equal(t, StopProducing, result) // depth 3 >= threshold 2

	v, err := it.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A", v) // depth now 2, still >= threshold, no flip

	v, err = it.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "B", v) // depth now 1 < threshold: demand flips false->true, ProduceMore fires

	v, err = it.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "C", v) // depth now 0

	pm, _ := delegate.counts()
	assert.GreaterOrEqual(t, pm, 1)

	type res struct {
		v   string
		err error
	}
	resultCh := make(chan res, 1)
	go func() {
		v, err := it.Next(context.Background())
		resultCh <- res{v, err}
	}()
	time.Sleep(10 * time.Millisecond)
	source.Finish()
	r := <-resultCh
	assert.ErrorIs(t, r.err, io.EOF)
}

// Scenario 3: finish with failure drains first.
func TestScenario_FinishWithFailureDrainsFirst(t *testing.T) {
	delegate := &countingDelegate{}
	source, stream := New[string](&boolStrategy{value: true}, delegate)
	it := stream.IntoIterator()

	source.Yield("X")
	source.Yield("Y")
	failure := errors.New("boom")
	source.FinishWithError(failure)

	v, err := it.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "X", v)

	v, err = it.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Y", v)

	_, err = it.Next(context.Background())
	assert.ErrorIs(t, err, failure)

	_, term := delegate.counts()
	assert.Equal(t, 1, term)

	// Further Next calls keep returning the terminal state, not panicking
	// or re-invoking DidTerminate.
	_, err = it.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	_, term = delegate.counts()
	assert.Equal(t, 1, term)
}

// Scenario 4: cancellation while parked.
func TestScenario_CancellationWhileParked(t *testing.T) {
	delegate := &countingDelegate{}
	source, stream := New[int](&boolStrategy{value: true}, delegate)
	it := stream.IntoIterator()

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		val int
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		v, err := it.Next(ctx)
		resultCh <- result{v, err}
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	r := <-resultCh
	assert.ErrorIs(t, r.err, io.EOF)

	_, term := delegate.counts()
	assert.Equal(t, 1, term)

	assert.Equal(t, Dropped, source.Yield(1))
}

// Scenario 5: iterator dropped mid-stream.
func TestScenario_IteratorDroppedMidStream(t *testing.T) {
	delegate := &countingDelegate{}
	source, stream := New[int](&boolStrategy{value: true}, delegate)
	it := stream.IntoIterator()

	source.Yield(1)
	require.NoError(t, it.Close())

	_, term := delegate.counts()
	assert.Equal(t, 1, term)
	assert.Equal(t, Dropped, source.Yield(2))
}

// Scenario 6: sequence dropped before iterator created.
func TestScenario_SequenceDroppedBeforeIteratorCreated(t *testing.T) {
	delegate := &countingDelegate{}
	source, stream := New[int](&boolStrategy{value: true}, delegate)

	require.NoError(t, stream.Close())

	_, term := delegate.counts()
	assert.Equal(t, 1, term)
	assert.Equal(t, Dropped, source.Yield(1))
}

// Second IntoIterator call is a programmer error.
func TestStream_SecondIntoIteratorPanics(t *testing.T) {
	_, stream := New[int](&boolStrategy{value: true}, nil)
	stream.IntoIterator()
	assert.Panics(t, func() { stream.IntoIterator() })
}

// IntoIterator after Source.Finish (state SourceFinished) still yields a
// working Iterator that reports io.EOF. Creation once the state machine is
// in Finished is covered by TestSmIteratorInitialized_LateCreationAfterFinishedTolerated.
func TestStream_LateIntoIteratorAfterFinishedIsTolerated(t *testing.T) {
	source, stream := New[int](&boolStrategy{value: true}, nil)
	source.Finish()
	it := stream.IntoIterator()
	_, err := it.Next(context.Background())
	require.NoError(t, stream.Close())
	assert.ErrorIs(t, err, io.EOF)
}

// Order and conservation: elements surface in exactly yielded order.
func TestProperty_ElementOrderAndConservation(t *testing.T) {
	source, stream := New[int](&boolStrategy{value: true}, nil)
	it := stream.IntoIterator()

	for i := 0; i < 50; i++ {
		source.Yield(i)
	}
	source.Finish()

	var got []int
	for {
		v, err := it.Next(context.Background())
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
		got = append(got, v)
	}
	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

// Waiter/buffer exclusivity and dropped-after-termination behavior are
// exercised structurally by the smYield/smNext tests in
// statemachine_test.go (every transition that attaches a waiter first
// requires/ensures an empty buffer, and every post-termination yield
// returns Dropped without mutating state).
