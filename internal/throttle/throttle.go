// Package throttle provides a token-bucket rate limiter used to cap how
// often a Searcher publishes snapshots to a live sink (spec §4.5's "publish
// the current image buffer to the output sink"): a background goroutine
// refills a buffered channel of tokens at a fixed interval, and Acquire
// blocks (respecting a context deadline) until one is available.
package throttle

import (
	"context"
	"sync"
	"time"
)

// RateLimiter bounds a stream of events to at most Rate per second, with
// Burst extra tokens banked up front so the first Burst events pass
// through immediately.
type RateLimiter struct {
	tokens   chan struct{}
	ticker   *time.Ticker
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a limiter and starts its background refill
// goroutine; call Stop to release it.
func NewRateLimiter(rate, burst int) *RateLimiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	rl := &RateLimiter{
		tokens: make(chan struct{}, burst),
		ticker: time.NewTicker(time.Second / time.Duration(rate)),
		stop:   make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		rl.tokens <- struct{}{}
	}
	go rl.refill()
	return rl
}

func (rl *RateLimiter) refill() {
	for {
		select {
		case <-rl.ticker.C:
			select {
			case rl.tokens <- struct{}{}:
			default: // bucket already full, drop the tick
			}
		case <-rl.stop:
			rl.ticker.Stop()
			return
		}
	}
}

// Acquire blocks until a token is available or ctx is done.
func (rl *RateLimiter) Acquire(ctx context.Context) error {
	select {
	case <-rl.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a token only if one is immediately available, for
// callers that would rather skip a publish than block the search (spec
// §5: "a stalled viewer must never abort the search").
func (rl *RateLimiter) TryAcquire() bool {
	select {
	case <-rl.tokens:
		return true
	default:
		return false
	}
}

// Stop releases the refill goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() { rl.stopOnce.Do(func() { close(rl.stop) }) }
