package cache

import (
	"testing"
	"time"
)

// fakeClock lets tests move time forward explicitly.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewWithClock(ttl, clock.now), clock
}

func TestCacheTTL(t *testing.T) {
	ttl := 5 * time.Minute
	c, clock := newTestCache(ttl)
	key := Key("service_orders", "user-1")

	c.Set(key, "value")

	t.Run("hit just before expiry", func(t *testing.T) {
		clock.advance(ttl - time.Millisecond)
		v, ok := c.Get(key)
		if !ok || v != "value" {
			t.Fatalf("Get = %v, %v; want value, true", v, ok)
		}
	})

	t.Run("miss just after expiry evicts the entry", func(t *testing.T) {
		clock.advance(2 * time.Millisecond)
		if _, ok := c.Get(key); ok {
			t.Fatal("expected miss after TTL")
		}
		if c.Len() != 0 {
			t.Errorf("expected expired entry to be removed, len = %d", c.Len())
		}
	})
}

func TestCacheSetOverwrites(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	key := Key("licenses", "user-1")

	c.Set(key, "old")
	c.Set(key, "new")

	v, ok := c.Get(key)
	if !ok || v != "new" {
		t.Fatalf("Get = %v, %v; want new, true", v, ok)
	}
}

func TestInvalidateUser(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	c.Set(Key("service_orders", "user-1"), 1)
	c.Set(Key("licenses", "user-1"), 2)
	c.Set(Key("service_orders", "user-2"), 3)

	c.InvalidateUser("user-1")

	if _, ok := c.Get(Key("service_orders", "user-1")); ok {
		t.Error("expected user-1 orders entry to be invalidated")
	}
	if _, ok := c.Get(Key("licenses", "user-1")); ok {
		t.Error("expected user-1 licenses entry to be invalidated")
	}
	if _, ok := c.Get(Key("service_orders", "user-2")); !ok {
		t.Error("expected user-2 entry to survive")
	}
}

func TestInvalidateUserEmptyIDIsNoop(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set(Key("licenses", "user-1"), 1)

	c.InvalidateUser("")

	if c.Len() != 1 {
		t.Errorf("empty user id should not invalidate anything, len = %d", c.Len())
	}
}

func TestClear(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set(Key("licenses", "user-1"), 1)
	c.Set(Key("licenses", "user-2"), 2)

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", c.Len())
	}
}
