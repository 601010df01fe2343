package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New(time.Minute)
	c.Set("k", 42)

	v, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if v.(int) != 42 {
		t.Errorf("got %v, want 42", v)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestExpiry(t *testing.T) {
	c := New(time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed on access, len=%d", c.Len())
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := New(0)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	now = now.Add(1000 * time.Hour)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry with zero TTL should not expire")
	}
}

func TestPurge(t *testing.T) {
	c := New(time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2)
	now = now.Add(2 * time.Minute)
	c.Set("c", 3)

	if dropped := c.Purge(); dropped != 2 {
		t.Errorf("Purge dropped %d, want 2", dropped)
	}
	if c.Len() != 1 {
		t.Errorf("len=%d after purge, want 1", c.Len())
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("live entry lost during purge")
	}
}

func TestDelete(t *testing.T) {
	c := New(time.Minute)
	c.Set("k", 1)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}
