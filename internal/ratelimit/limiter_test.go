package ratelimit

import (
	"context"
	"testing"
)

func TestLimiter_BurstThenReject(t *testing.T) {
	limiter := NewLimiter(context.Background(), 0.01, 3)
	defer limiter.Stop()

	for i := range 3 {
		if !limiter.Allow("client-a") {
			t.Fatalf("Request %d within burst should be allowed", i+1)
		}
	}

	if limiter.Allow("client-a") {
		t.Error("Request beyond burst should be rejected")
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewLimiter(context.Background(), 0.01, 1)
	defer limiter.Stop()

	if !limiter.Allow("client-a") {
		t.Fatal("First request for client-a should be allowed")
	}
	if limiter.Allow("client-a") {
		t.Error("Second request for client-a should be rejected")
	}

	// A different key gets its own bucket
	if !limiter.Allow("client-b") {
		t.Error("First request for client-b should be allowed")
	}
}

func TestLimiter_ReusesVisitor(t *testing.T) {
	limiter := NewLimiter(context.Background(), 0.01, 2)
	defer limiter.Stop()

	limiter.Allow("client-a")
	limiter.Allow("client-a")

	limiter.mu.RLock()
	count := len(limiter.visitors)
	limiter.mu.RUnlock()

	if count != 1 {
		t.Errorf("Expected 1 visitor entry, got %d", count)
	}
}
