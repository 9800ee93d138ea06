package cache

import (
	"errors"
	"sync"
	"testing"
)

func TestOnce_GetOrLoad(t *testing.T) {
	c := New[string, int]()

	loads := 0
	loader := func() (int, error) {
		loads++
		return 42, nil
	}

	v, err := c.GetOrLoad("a", loader)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if v != 42 {
		t.Errorf("GetOrLoad() = %d; want 42", v)
	}

	v, err = c.GetOrLoad("a", loader)
	if err != nil {
		t.Fatalf("second GetOrLoad() error = %v", err)
	}
	if v != 42 {
		t.Errorf("second GetOrLoad() = %d; want 42", v)
	}
	if loads != 1 {
		t.Errorf("loader ran %d times; want 1", loads)
	}
}

func TestOnce_FailedLoadNotCached(t *testing.T) {
	c := New[string, int]()

	calls := 0
	_, err := c.GetOrLoad("a", func() (int, error) {
		calls++
		return 0, errors.New("source unavailable")
	})
	if err == nil {
		t.Fatal("GetOrLoad() should surface the loader error")
	}

	v, err := c.GetOrLoad("a", func() (int, error) {
		calls++
		return 7, nil
	})
	if err != nil {
		t.Fatalf("retry GetOrLoad() error = %v", err)
	}
	if v != 7 {
		t.Errorf("retry GetOrLoad() = %d; want 7", v)
	}
	if calls != 2 {
		t.Errorf("loader ran %d times; want 2 (failure must not be cached)", calls)
	}
}

func TestOnce_Get(t *testing.T) {
	c := New[string, string]()

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() = ok for missing key")
	}

	if _, err := c.GetOrLoad("k", func() (string, error) { return "v", nil }); err != nil {
		t.Fatal(err)
	}
	v, ok := c.Get("k")
	if !ok || v != "v" {
		t.Errorf("Get(k) = %q, %v; want v, true", v, ok)
	}
}

func TestOnce_Stats(t *testing.T) {
	c := New[string, int]()

	c.Get("a") // miss
	if _, err := c.GetOrLoad("a", func() (int, error) { return 1, nil }); err != nil {
		t.Fatal(err)
	}
	c.Get("a") // hit
	c.Get("a") // hit

	s := c.Stats()
	if s.Size != 1 {
		t.Errorf("Size = %d; want 1", s.Size)
	}
	if s.Hits != 2 {
		t.Errorf("Hits = %d; want 2", s.Hits)
	}
	if s.Misses != 2 {
		t.Errorf("Misses = %d; want 2", s.Misses)
	}
	if s.HitRate != 0.5 {
		t.Errorf("HitRate = %v; want 0.5", s.HitRate)
	}
}

func TestOnce_ConcurrentLoadStable(t *testing.T) {
	c := New[string, int]()

	var wg sync.WaitGroup
	results := make([]int, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			v, err := c.GetOrLoad("k", func() (int, error) { return n, nil })
			if err != nil {
				t.Error(err)
				return
			}
			results[n] = v
		}(i)
	}
	wg.Wait()

	// Whatever value was stored first, every caller must see the same one.
	first := results[0]
	for i, v := range results {
		if v != first {
			t.Fatalf("results[%d] = %d; want %d (cached entry must be stable)", i, v, first)
		}
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d; want 1", c.Len())
	}
}
