package ratelimit

import (
	"testing"
	"time"
)

func TestAllowBurstThenRefill(t *testing.T) {
	l := New(1, 2)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("burst of 2 must be allowed")
	}
	if l.Allow("a") {
		t.Fatalf("third request must be limited")
	}
	if !l.Allow("b") {
		t.Fatalf("keys must be independent")
	}
	clock = clock.Add(time.Second)
	if !l.Allow("a") {
		t.Fatalf("one token must refill after a second")
	}
}

func TestSweep(t *testing.T) {
	l := New(10, 1)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	l.Allow("old")
	clock = clock.Add(time.Hour)
	l.Allow("new")

	if n := l.Sweep(time.Minute); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if _, ok := l.m["new"]; !ok {
		t.Fatalf("recent bucket must survive")
	}
}
