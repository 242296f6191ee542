package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAllowDrainsBucket(t *testing.T) {
	l := New()

	for i := 0; i < 3; i++ {
		if !l.Allow("BTC/USDT", 3, 0.001) {
			t.Fatalf("token %d should be available", i+1)
		}
	}
	if l.Allow("BTC/USDT", 3, 0.001) {
		t.Fatalf("bucket drained, fourth call should refuse")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()

	if !l.Allow("BTC/USDT", 1, 0.001) {
		t.Fatalf("first token for BTC should pass")
	}
	if l.Allow("BTC/USDT", 1, 0.001) {
		t.Fatalf("BTC bucket is empty")
	}
	if !l.Allow("ETH/USDT", 1, 0.001) {
		t.Fatalf("ETH bucket must not be affected by BTC")
	}
}

func TestAllowRefills(t *testing.T) {
	l := New()

	if !l.Allow("BTC/USDT", 1, 100) {
		t.Fatalf("first token should pass")
	}
	if l.Allow("BTC/USDT", 1, 100) {
		t.Fatalf("bucket should be empty immediately after")
	}
	time.Sleep(30 * time.Millisecond)
	if !l.Allow("BTC/USDT", 1, 100) {
		t.Fatalf("a 100/s refill restores a token within 30ms")
	}
}

func TestWaitBlocksThenSucceeds(t *testing.T) {
	l := New()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := l.Wait(ctx, "BTC/USDT", 1, 100); err != nil {
		t.Fatalf("first wait should pass immediately: %v", err)
	}
	if err := l.Wait(ctx, "BTC/USDT", 1, 100); err != nil {
		t.Fatalf("second wait should succeed after a refill: %v", err)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	l := New()
	l.Allow("BTC/USDT", 1, 0.001)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx, "BTC/USDT", 1, 0.001)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestWaitRejectsZeroRefill(t *testing.T) {
	l := New()
	if err := l.Wait(context.Background(), "BTC/USDT", 1, 0); err == nil {
		t.Fatalf("a zero refill rate can never produce a token")
	}
}
