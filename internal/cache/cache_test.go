package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestGetSet_RoundTrip(t *testing.T) {
	c := New()
	entry := Entry{Content: "hello", Strategy: "direct", ContentType: "text/plain"}
	c.Set("k1", entry)

	got, ok := c.Get("k1")
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got != entry {
		t.Errorf("got %+v, want %+v", got, entry)
	}
}

func TestGet_Miss(t *testing.T) {
	c := New()
	if _, ok := c.Get("missing"); ok {
		t.Error("expected a cache miss for an unset key")
	}
}

func TestGet_ExpiredEntryEvicted(t *testing.T) {
	c := New()
	savedTTL := TTL
	TTL = time.Millisecond
	defer func() { TTL = savedTTL }()

	c.Set("k1", Entry{Content: "stale"})
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("k1"); ok {
		t.Error("expected the expired entry to be evicted on read")
	}
}

func TestSet_FIFOEviction(t *testing.T) {
	c := New()
	savedMax := MaxEntries
	MaxEntries = 3
	defer func() { MaxEntries = savedMax }()

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), Entry{Content: fmt.Sprintf("v%d", i)})
	}
	// Inserting a fourth entry should evict k0, the oldest, not a random one.
	c.Set("k3", Entry{Content: "v3"})

	if _, ok := c.Get("k0"); ok {
		t.Error("expected the oldest entry (k0) to be evicted")
	}
	if _, ok := c.Get("k1"); !ok {
		t.Error("expected k1 to survive eviction")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Error("expected the newly inserted k3 to be present")
	}
}
