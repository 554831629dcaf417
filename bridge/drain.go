// Package bridge wires streambridge.Iterator/Source pairs into the rest of
// the dependency stack: batched draining, producer-side batching, and a
// Promise-based adapter for an eventloop-style async runtime.
package bridge

import (
	"context"
	"errors"
	"io"

	"github.com/joeycumines/go-longpoll"
	"github.com/joeycumines/go-streambridge"
)

// DrainConfig mirrors longpoll.ChannelConfig: see its field docs for
// defaults and semantics.
type DrainConfig = longpoll.ChannelConfig

// Drain repeatedly calls it.Next to pump elements onto an internal channel,
// then uses longpoll.Channel to hand handler batches sized by cfg, exactly
// the way a long-poll HTTP handler drains a backlog of queued events. Drain
// returns when ctx is done, the iterator terminates (nil error - longpoll's
// io.EOF convention is absorbed rather than propagated), or handler returns
// a non-nil error. A non-nil, non-context error is also reported via log,
// if log is non-nil.
//
// it must not be used concurrently with Drain; Drain owns it until it
// returns.
func Drain[E any](ctx context.Context, it *streambridge.Iterator[E], cfg *DrainConfig, log *Logger, handler func(value E) error) error {
	ch := make(chan E)
	pumpDone := make(chan struct{})
	pumpCtx, cancelPump := context.WithCancel(ctx)
	defer cancelPump()

	go func() {
		defer close(ch)
		defer close(pumpDone)
		for {
			v, err := it.Next(pumpCtx)
			if err != nil {
				return
			}
			select {
			case ch <- v:
			case <-pumpCtx.Done():
				return
			}
		}
	}()

	err := longpoll.Channel(ctx, cfg, ch, handler)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	cancelPump()
	<-pumpDone
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logDrainError(log, err)
	}
	return err
}
