package backpressure

import "github.com/joeycumines/go-catrate"

// RateLimited turns a [catrate.Limiter] into a [streambridge.BackPressureStrategy]:
// demand is granted only while the limiter still allows another reservation
// for Category, so a producer that yields faster than the configured rates
// is throttled exactly the way catrate throttles any other category of
// event.
//
// Depth is ignored; RateLimited paces the producer by time, not by queue
// size. Combine it with [Watermark] (by having OnYield/OnConsume return the
// logical AND of both) if both pacing and a depth cap are needed.
type RateLimited struct {
	Limiter  *catrate.Limiter
	Category any
}

func (r RateLimited) OnYield(int) bool   { return r.allow() }
func (r RateLimited) OnConsume(int) bool { return r.allow() }

func (r RateLimited) allow() bool {
	_, ok := r.Limiter.Allow(r.Category)
	return ok
}
