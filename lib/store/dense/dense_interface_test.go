package dense

import (
	"testing"

	"github.com/anydict/numstore/lib/store"
	storetesting "github.com/anydict/numstore/lib/store/testing"
)

func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "DenseStore", func(capacity uint64, mode store.Mode) store.IStore {
		s, err := New(capacity, mode)
		if err != nil {
			t.Fatalf("New(%d, %v): %v", capacity, mode, err)
		}
		return s
	})
}

func Benchmark(b *testing.B) {
	storetesting.RunStoreBenchmarks(b, "DenseStore", func(capacity uint64, mode store.Mode) store.IStore {
		s, err := New(capacity, mode)
		if err != nil {
			b.Fatalf("New(%d, %v): %v", capacity, mode, err)
		}
		return s
	})
}
