package bridge

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the ambient structured logger used by this package's adapters
// (Drain and Producer) to report events a bridged system needs visibility
// into - batch failures and drain termination errors. The core streambridge package itself never logs: every decision
// there is pure and pushed out as an action, by design, so logging only
// ever happens in this outer layer.
type Logger = logiface.Logger[*stumpy.Event]

// NewLogger builds a stumpy-backed Logger at the given level, writing
// newline-delimited JSON to writer.
func NewLogger(writer interface {
	Write(p []byte) (n int, err error)
}, level logiface.Level) *Logger {
	return logiface.New[*stumpy.Event](
		logiface.WithLevel[*stumpy.Event](level),
		stumpy.WithStumpy(stumpy.WithWriter(writer)),
	)
}

// logDrainError records a non-nil, non-context error returned by Drain, via
// log, unless log is nil.
func logDrainError(log *Logger, err error) {
	if log == nil || err == nil {
		return
	}
	log.Err().Err(err).Log("bridge: drain terminated with error")
}

// logProducerBatchError records a failed batch process callback, via log,
// unless log is nil.
func logProducerBatchError(log *Logger, size int, err error) {
	if log == nil || err == nil {
		return
	}
	log.Err().Err(err).Int("batch_size", size).Log("bridge: producer batch failed")
}
