package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(8, time.Minute)
	defer c.Stop()

	c.Set("a", []byte("one"))

	got, ok := c.Get("a")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(got) != "one" {
		t.Fatalf("got %q, want %q", got, "one")
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestMemoryCache_ExpiryOnAccess(t *testing.T) {
	c := NewMemoryCache(8, 20*time.Millisecond)
	defer c.Stop()

	c.Set("a", []byte("one"))
	time.Sleep(40 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry removed on access, len=%d", c.Len())
	}
}

func TestMemoryCache_EvictsOldestWhenFull(t *testing.T) {
	c := NewMemoryCache(3, time.Minute)
	defer c.Stop()

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("key%d", i), []byte("v"))
		time.Sleep(time.Millisecond)
	}
	c.Set("key3", []byte("v"))

	if c.Len() != 3 {
		t.Fatalf("expected len 3 after eviction, got %d", c.Len())
	}
	if _, ok := c.Get("key0"); ok {
		t.Fatal("expected oldest entry key0 to be evicted")
	}
	if _, ok := c.Get("key3"); !ok {
		t.Fatal("expected newest entry key3 to be present")
	}
}

func TestMemoryCache_OverwriteDoesNotEvict(t *testing.T) {
	c := NewMemoryCache(2, time.Minute)
	defer c.Stop()

	c.Set("a", []byte("one"))
	c.Set("b", []byte("two"))
	c.Set("a", []byte("three"))

	if c.Len() != 2 {
		t.Fatalf("expected len 2, got %d", c.Len())
	}
	got, ok := c.Get("a")
	if !ok || string(got) != "three" {
		t.Fatalf("expected overwritten value, got %q ok=%v", got, ok)
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("expected b to survive an overwrite of a")
	}
}

func TestMemoryCache_DeleteAndFlush(t *testing.T) {
	c := NewMemoryCache(8, time.Minute)
	defer c.Stop()

	c.Set("a", []byte("one"))
	c.Set("b", []byte("two"))
	c.Set("c", []byte("three"))

	c.Delete("a", "b")
	if c.Len() != 1 {
		t.Fatalf("expected len 1 after delete, got %d", c.Len())
	}

	c.Flush()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after flush, got %d", c.Len())
	}
}

func TestMemoryCache_SweepExpired(t *testing.T) {
	c := NewMemoryCache(8, 20*time.Millisecond)
	defer c.Stop()

	c.Set("a", []byte("one"))
	c.Set("b", []byte("two"))
	time.Sleep(40 * time.Millisecond)
	c.Set("fresh", []byte("three"))

	removed := c.SweepExpired()
	if removed != 2 {
		t.Fatalf("expected 2 expired entries swept, got %d", removed)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry remaining, got %d", c.Len())
	}
}

func TestMemoryCache_Defaults(t *testing.T) {
	c := NewMemoryCache(0, 0)
	defer c.Stop()

	if c.maxSize != DefaultMemoryCacheSize {
		t.Fatalf("expected default size %d, got %d", DefaultMemoryCacheSize, c.maxSize)
	}
	if c.ttl != DefaultMemoryCacheTTL {
		t.Fatalf("expected default ttl %v, got %v", DefaultMemoryCacheTTL, c.ttl)
	}
}
