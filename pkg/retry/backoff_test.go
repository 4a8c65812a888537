package retry

import (
	"context"
	"testing"
	"time"
)

func TestExponentialBackoffGrowsAndCaps(t *testing.T) {
	b := ExponentialBackoff{Base: 100 * time.Millisecond, Max: 300 * time.Millisecond}
	if got := b.Next(1); got != 100*time.Millisecond {
		t.Fatalf("attempt 1: %v", got)
	}
	if got := b.Next(2); got != 200*time.Millisecond {
		t.Fatalf("attempt 2: %v", got)
	}
	if got := b.Next(5); got != 300*time.Millisecond {
		t.Fatalf("attempt 5 should cap: %v", got)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Wait(ctx, time.Second); err == nil {
		t.Fatalf("expected context error")
	}
}
