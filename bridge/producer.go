package bridge

import (
	"context"
	"slices"

	"github.com/joeycumines/go-microbatch"
	"github.com/joeycumines/go-streambridge"
)

// ProducerConfig configures Producer; see microbatch.BatcherConfig for field
// semantics (ProducerConfig is that type under a domain-specific name).
type ProducerConfig = microbatch.BatcherConfig

// Producer batches individual Submit calls via microbatch.Batcher, then
// yields each processed batch onto a streambridge.Source as a single Yield
// event - useful when a producer is fed one item at a time (e.g. by a
// socket read loop) but yielding in small batches reduces lock/wakeup
// overhead on the consumer side.
type Producer[Job, Out any] struct {
	batcher *microbatch.Batcher[Job]
	source  *streambridge.Source[Out]
}

// NewProducer builds a Producer. process converts one batch of submitted
// jobs into the elements to yield; a nil or empty return yields nothing for
// that batch. process runs on the Batcher's own goroutine, never holding
// the streambridge mutex while doing so. A failed batch is reported via
// log, if log is non-nil.
func NewProducer[Job, Out any](cfg *ProducerConfig, source *streambridge.Source[Out], log *Logger, process func(ctx context.Context, jobs []Job) ([]Out, error)) *Producer[Job, Out] {
	p := &Producer[Job, Out]{source: source}
	p.batcher = microbatch.NewBatcher[Job](cfg, func(ctx context.Context, jobs []Job) error {
		out, err := process(ctx, jobs)
		if err != nil {
			logProducerBatchError(log, len(jobs), err)
			return err
		}
		source.YieldAll(slices.Values(out))
		return nil
	})
	return p
}

// Submit enqueues job for the next batch, blocking until it has been
// accepted (not until it has been processed - use the returned
// *microbatch.JobResult[Job]'s Wait method for that).
func (p *Producer[Job, Out]) Submit(ctx context.Context, job Job) (*microbatch.JobResult[Job], error) {
	return p.batcher.Submit(ctx, job)
}

// Close stops accepting new jobs, waits for in-flight batches to finish,
// then finishes the underlying Source cleanly.
func (p *Producer[Job, Out]) Close() error {
	err := p.batcher.Close()
	p.source.Finish()
	return err
}
