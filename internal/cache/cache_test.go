package cache

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestDoComputesOncePerKey(t *testing.T) {
	t.Parallel()

	cache := New[int]()

	value, shared := cache.Do("a", func() int { return 10 })
	if value != 10 || shared {
		t.Fatalf("first Do = (%d, %v); want (10, false)", value, shared)
	}

	value, shared = cache.Do("a", func() int { return 11 })
	if value != 10 || !shared {
		t.Fatalf("second Do = (%d, %v); want (10, true)", value, shared)
	}

	if got, _ := cache.Do("b", func() int { return 20 }); got != 20 {
		t.Fatalf("Do(b) = %d; want 20", got)
	}

	if cache.Len() != 2 {
		t.Fatalf("len = %d; want 2", cache.Len())
	}
}

func TestDoConcurrentCallersShareOneComputation(t *testing.T) {
	t.Parallel()

	cache := New[string]()
	release := make(chan struct{})
	var calls atomic.Int32

	compute := func() string {
		calls.Add(1)
		<-release

		return "probed"
	}

	var wg sync.WaitGroup
	results := make([]string, 20)

	for i := range results {
		wg.Go(func() {
			results[i], _ = cache.Do("https://example.com", compute)
		})
	}

	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("compute called %d times; want 1", calls.Load())
	}

	for i, got := range results {
		if got != "probed" {
			t.Fatalf("results[%d] = %q; want %q", i, got, "probed")
		}
	}
}
