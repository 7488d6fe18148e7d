package cache

import (
	"strconv"
	"sync"
	"testing"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRU[string, int](4)

	if _, ok := c.Get("a"); ok {
		t.Fatal("Get() on empty cache reported a hit")
	}
	c.Set("a", 1)
	c.Set("a", 2)
	if v, ok := c.Get("a"); !ok || v != 2 {
		t.Errorf("Get(a) = %d, %v; want 2, true", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("Stats() = %+v, want 1 hit and 1 miss", st)
	}
	if st.HitRate() != 0.5 {
		t.Errorf("HitRate() = %v, want 0.5", st.HitRate())
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int, int](3)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(3, 3)
	c.Get(1) // 2 is now the oldest
	c.Set(4, 4)

	if _, ok := c.Get(2); ok {
		t.Error("key 2 should have been evicted")
	}
	for _, k := range []int{1, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("key %d missing", k)
		}
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", c.Stats().Evictions)
	}
}

func TestLRUAdd(t *testing.T) {
	c := NewLRU[string, int](0)
	if !c.Add("k", 1) {
		t.Fatal("Add() on absent key returned false")
	}
	if c.Add("k", 2) {
		t.Error("Add() on present key returned true")
	}
	if v, _ := c.Get("k"); v != 1 {
		t.Errorf("Get(k) = %d, want 1", v)
	}
}

func TestLRUGetOrCreateOnce(t *testing.T) {
	c := NewLRU[string, int](8)
	var calls int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.GetOrCreate("x", func() int {
				mu.Lock()
				calls++
				mu.Unlock()
				return 42
			})
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
}

func TestLRUDeleteClear(t *testing.T) {
	c := NewLRU[int, string](0)
	c.Set(1, "a")
	c.Set(2, "b")
	if !c.Delete(1) || c.Delete(1) {
		t.Error("Delete() mismatch")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	c.Set(3, "c")
	if v, ok := c.Get(3); !ok || v != "c" {
		t.Error("cache unusable after Clear")
	}
}

func TestShardedBounded(t *testing.T) {
	c := NewSharded[string, int](2, StringHasher)
	for i := range 1000 {
		c.Set(strconv.Itoa(i), i)
	}
	if c.Len() > 2*ShardCount {
		t.Errorf("Len() = %d, want <= %d", c.Len(), 2*ShardCount)
	}
	st := c.Stats()
	if st.Capacity != 2*ShardCount {
		t.Errorf("Capacity = %d, want %d", st.Capacity, 2*ShardCount)
	}
	if st.Evictions != uint64(1000-c.Len()) {
		t.Errorf("Evictions = %d, want %d", st.Evictions, 1000-c.Len())
	}
}

func TestShardedConcurrent(t *testing.T) {
	c := NewSharded[string, int](64, StringHasher)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				k := strconv.Itoa(g*1000 + i)
				c.Set(k, i)
				if v, ok := c.Get(k); ok && v != i {
					t.Errorf("Get(%s) = %d, want %d", k, v, i)
				}
			}
		}()
	}
	wg.Wait()
}

func TestUint64sHasher(t *testing.T) {
	if Uint64sHasher(1, 2) == Uint64sHasher(2, 1) {
		t.Error("hash should depend on word order")
	}
	if Uint64sHasher(7) != Uint64sHasher(7) {
		t.Error("hash should be deterministic")
	}
}
