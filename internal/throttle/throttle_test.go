package throttle

import (
	"context"
	"testing"
	"time"
)

func TestNewRateLimiterGrantsBurstImmediately(t *testing.T) {
	rl := NewRateLimiter(1, 3)
	defer rl.Stop()
	for i := 0; i < 3; i++ {
		if !rl.TryAcquire() {
			t.Fatalf("burst token %d was not immediately available", i)
		}
	}
	if rl.TryAcquire() {
		t.Fatalf("expected the bucket to be empty after the burst is drained")
	}
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	rl := NewRateLimiter(100, 1) // 10ms per token
	defer rl.Stop()
	if !rl.TryAcquire() {
		t.Fatalf("expected the initial token to be available")
	}
	if rl.TryAcquire() {
		t.Fatalf("expected the bucket to be empty immediately after draining it")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rl.Acquire(ctx); err != nil {
		t.Fatalf("Acquire did not see a refill within the timeout: %v", err)
	}
}

func TestAcquireRespectsContextCancellation(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()
	rl.TryAcquire() // drain the only token

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := rl.Acquire(ctx); err == nil {
		t.Fatalf("expected Acquire to time out waiting for a refill past the context deadline")
	}
}
