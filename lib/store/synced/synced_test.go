package synced

import (
	"sync"
	"testing"

	"github.com/anydict/numstore/lib/store"
	"github.com/anydict/numstore/lib/store/dense"
	storetesting "github.com/anydict/numstore/lib/store/testing"
)

func newSynced(tb testing.TB, capacity uint64, mode store.Mode) store.IStore {
	inner, err := dense.New(capacity, mode)
	if err != nil {
		tb.Fatalf("dense.New(%d, %v): %v", capacity, mode, err)
	}
	return New(inner)
}

func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "SyncedStore", func(capacity uint64, mode store.Mode) store.IStore {
		return newSynced(t, capacity, mode)
	})
}

func Benchmark(b *testing.B) {
	storetesting.RunStoreBenchmarks(b, "SyncedStore", func(capacity uint64, mode store.Mode) store.IStore {
		return newSynced(b, capacity, mode)
	})
}

// TestConcurrentAccess hammers the wrapper from many goroutines. The assertion
// is weak on purpose (the interleaving is nondeterministic) - the real check
// is the race detector plus the counter staying consistent with a final scan.
func TestConcurrentAccess(t *testing.T) {
	const (
		capacity   = 1024
		goroutines = 16
		opsEach    = 2000
	)

	s := newSynced(t, capacity, store.ModeStrict)
	defer s.Close()

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			for i := 0; i < opsEach; i++ {
				k := (seed*31 + uint64(i)) % capacity
				switch i % 5 {
				case 0:
					s.Set(k, uint8(i%15+1))
				case 1:
					s.Get(k)
				case 2:
					s.Has(k)
				case 3:
					s.Pop(k)
				case 4:
					s.Len()
				}
			}
		}(uint64(g))
	}

	// concurrent snapshot iteration must see internally consistent state
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			seq, err := s.Items()
			if err != nil {
				t.Errorf("Items: %v", err)
				return
			}
			prev := int64(-1)
			for k, v := range seq {
				if int64(k) <= prev {
					t.Errorf("snapshot keys not ascending: %d after %d", k, prev)
					return
				}
				if v == 0 || v > store.MaxValue {
					t.Errorf("snapshot value %d for key %d out of range", v, k)
					return
				}
				prev = int64(k)
			}
		}
	}()

	wg.Wait()

	// counter equals scan once everything settled
	n, err := s.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	seq, _ := s.Keys()
	var scan uint64
	for range seq {
		scan++
	}
	if n != scan {
		t.Errorf("counter %d != scan %d after concurrent use", n, scan)
	}
}
