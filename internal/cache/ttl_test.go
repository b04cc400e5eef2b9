package cache

import (
	"testing"
	"time"
)

func TestTTLCache_GetEvictsExpired(t *testing.T) {
	c := NewTTLCache[int](10, 10*time.Millisecond)
	c.Set("a", 1)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v; want 1, true", v, ok)
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) after expiry should miss")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after expired Get, want 0", c.Size())
	}
}

func TestTTLCache_PeekIgnoresExpiry(t *testing.T) {
	c := NewTTLCache[int](10, 10*time.Millisecond)
	c.Set("a", 1)

	time.Sleep(20 * time.Millisecond)

	if v, ok := c.Peek("a"); !ok || v != 1 {
		t.Errorf("Peek(a) = %d, %v; want 1, true even after expiry", v, ok)
	}
}

func TestTTLCache_EvictsOldestOverCapacity(t *testing.T) {
	c := NewTTLCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if _, ok := c.Peek("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestTTLCache_PurgeAndKeys(t *testing.T) {
	c := NewTTLCache[string](10, time.Minute)
	c.Set("x", "1")
	c.Set("y", "2")

	if got := len(c.Keys()); got != 2 {
		t.Errorf("len(Keys()) = %d, want 2", got)
	}

	c.Purge()
	if c.Size() != 0 {
		t.Errorf("Size() after Purge = %d, want 0", c.Size())
	}
	if len(c.Keys()) != 0 {
		t.Error("Keys() after Purge should be empty")
	}
}

func TestTTLCache_CleanExpired(t *testing.T) {
	c := NewTTLCache[int](10, 10*time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)

	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired() = %d, want 2", removed)
	}
	if _, ok := c.Peek("c"); !ok {
		t.Error("fresh entry should survive CleanExpired")
	}
}
