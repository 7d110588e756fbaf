package cache

import (
	"testing"
	"time"
)

func TestTTLCacheGetSet(t *testing.T) {
	c := NewTTLCache[string, int]()

	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	c.Set("a", 1, time.Minute)
	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Fatalf("expected hit with 1, got %d ok=%v", got, ok)
	}

	c.Set("a", 2, time.Minute)
	got, _ = c.Get("a")
	if got != 2 {
		t.Fatalf("expected overwrite to 2, got %d", got)
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("short", 1, time.Nanosecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Fatalf("expected expired entry to miss")
	}

	// A non-positive ttl never expires.
	c.Set("pinned", 2, 0)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("pinned"); !ok {
		t.Fatalf("expected entry without ttl to survive")
	}
}

func TestTTLCacheDelete(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("a", 1, time.Minute)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected deleted entry to miss")
	}
}

func TestNoopCacheAlwaysMisses(t *testing.T) {
	var c Cache[string, int] = NoopCache[string, int]{}
	c.Set("a", 1, time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("noop cache must never hit")
	}
}
