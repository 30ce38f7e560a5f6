package infra

import (
	"context"
	"testing"
	"time"
)

func TestChanPool_BlocksWhenFull(t *testing.T) {
	var seen []int
	p := NewChanPool(1, WithInFlightHook(func(n int) { seen = append(seen, n) }))

	release, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected first acquire to succeed")
	}
	if p.InFlight() != 1 {
		t.Fatalf("expected 1 in flight, got %d", p.InFlight())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, ok := p.Acquire(ctx); ok {
		t.Fatalf("expected second acquire to wait and fail")
	}

	release()
	release() // idempotente
	if p.InFlight() != 0 {
		t.Fatalf("expected 0 in flight, got %d", p.InFlight())
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 0 {
		t.Fatalf("unexpected hook calls %v", seen)
	}

	if _, ok := p.Acquire(context.Background()); !ok {
		t.Fatalf("expected acquire after release to succeed")
	}
}
