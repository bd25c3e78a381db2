package ratelimit

import (
	"testing"
	"time"
)

func TestNew_InvalidArgs(t *testing.T) {
	if New(0, 5, time.Minute) != nil {
		t.Fatal("zero rps should yield nil limiter")
	}
	if New(1, 0, time.Minute) != nil {
		t.Fatal("zero burst should yield nil limiter")
	}
}

func TestNilLimiterAllowsEverything(t *testing.T) {
	var l *Limiter
	for i := 0; i < 100; i++ {
		if !l.Allow("client", time.Now()) {
			t.Fatal("nil limiter refused a request")
		}
	}
}

func TestAllow_BurstThenRefill(t *testing.T) {
	l := New(1, 2, time.Minute)
	now := time.Now()

	if !l.Allow("a", now) || !l.Allow("a", now) {
		t.Fatal("burst should allow two requests")
	}
	if l.Allow("a", now) {
		t.Fatal("third immediate request should be refused")
	}
	// One token refills after a second.
	if !l.Allow("a", now.Add(1100*time.Millisecond)) {
		t.Fatal("token should refill")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Now()

	if !l.Allow("a", now) {
		t.Fatal("first key refused")
	}
	if l.Allow("a", now) {
		t.Fatal("first key should be exhausted")
	}
	if !l.Allow("b", now) {
		t.Fatal("second key should have its own bucket")
	}
}

func TestAllow_SweepsIdleClients(t *testing.T) {
	l := New(1, 1, time.Minute)
	t0 := time.Now()

	if !l.Allow("stale", t0) {
		t.Fatal("first request refused")
	}
	if l.Allow("stale", t0) {
		t.Fatal("burst of one should be exhausted")
	}

	// Two TTLs later another client triggers the sweep; the idle bucket
	// goes away and the key starts over with a fresh burst.
	later := t0.Add(2 * time.Minute)
	if !l.Allow("fresh", later) {
		t.Fatal("fresh client refused")
	}
	if len(l.clients) != 1 {
		t.Fatalf("idle client not evicted: %d entries", len(l.clients))
	}
	if !l.Allow("stale", later) {
		t.Fatal("evicted client should restart with a full bucket")
	}
}

func TestAllow_EmptyKeyBypasses(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Now()
	for i := 0; i < 10; i++ {
		if !l.Allow("  ", now) {
			t.Fatal("blank key should bypass limiting")
		}
	}
}
