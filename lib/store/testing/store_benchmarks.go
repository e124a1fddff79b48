package testing

import (
	"bytes"
	"testing"

	"github.com/anydict/numstore/lib/store"
)

const benchCapacity = 1 << 20 // 1M slots, 512 KB backing array

// RunStoreBenchmarks runs all benchmarks for an IStore implementation.
func RunStoreBenchmarks(b *testing.B, name string, factory StoreFactory) {

	b.Run("Set", func(b *testing.B) {
		benchmarkSet(b, factory(benchCapacity, store.ModeStrict))
	})

	b.Run("SetExisting", func(b *testing.B) {
		benchmarkSetExisting(b, factory(benchCapacity, store.ModeStrict))
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory(benchCapacity, store.ModeStrict))
	})

	b.Run("Has", func(b *testing.B) {
		benchmarkHas(b, factory(benchCapacity, store.ModeStrict))
	})

	b.Run("Delete", func(b *testing.B) {
		benchmarkDelete(b, factory(benchCapacity, store.ModeStrict))
	})

	b.Run("Pop", func(b *testing.B) {
		benchmarkPop(b, factory(benchCapacity, store.ModeStrict))
	})

	b.Run("Len", func(b *testing.B) {
		benchmarkLen(b, factory(benchCapacity, store.ModeStrict))
	})

	b.Run("Iterate", func(b *testing.B) {
		benchmarkIterate(b, factory(benchCapacity, store.ModeStrict))
	})

	b.Run("SaveLoad", func(b *testing.B) {
		benchmarkSaveLoad(b, factory)
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory(benchCapacity, store.ModeStrict))
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchmarkSet(b *testing.B, s store.IStore) {
	defer s.Close()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Set(uint64(i)%benchCapacity, uint8(i%15+1))
	}
}

func benchmarkSetExisting(b *testing.B, s store.IStore) {
	defer s.Close()
	s.Set(1234, 7)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Set(1234, uint8(i%15+1))
	}
}

func benchmarkGet(b *testing.B, s store.IStore) {
	defer s.Close()
	for i := uint64(0); i < benchCapacity; i += 2 {
		s.Set(i, uint8(i%15+1))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Get(uint64(i) % benchCapacity)
	}
}

func benchmarkHas(b *testing.B, s store.IStore) {
	defer s.Close()
	for i := uint64(0); i < benchCapacity; i += 2 {
		s.Set(i, 1)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Has(uint64(i) % benchCapacity)
	}
}

func benchmarkDelete(b *testing.B, s store.IStore) {
	defer s.Close()
	// lenient would be cheaper here; measure the strict path with the key
	// always present
	for i := uint64(0); i < benchCapacity; i++ {
		s.Set(i, 1)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := uint64(i) % benchCapacity
		s.Delete(k)
		s.Set(k, 1)
	}
}

func benchmarkPop(b *testing.B, s store.IStore) {
	defer s.Close()
	for i := uint64(0); i < benchCapacity; i++ {
		s.Set(i, 1)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := uint64(i) % benchCapacity
		s.Pop(k)
		s.Set(k, 1)
	}
}

func benchmarkLen(b *testing.B, s store.IStore) {
	defer s.Close()
	for i := uint64(0); i < benchCapacity; i += 3 {
		s.Set(i, 1)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Len()
	}
}

func benchmarkIterate(b *testing.B, s store.IStore) {
	defer s.Close()
	for i := uint64(0); i < benchCapacity; i += 16 {
		s.Set(i, uint8(i%15+1))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		seq, _ := s.Items()
		for range seq {
		}
	}
}

func benchmarkSaveLoad(b *testing.B, factory StoreFactory) {
	s := factory(benchCapacity, store.ModeStrict)
	defer s.Close()

	if !s.SupportsFeature(store.FeatureSave | store.FeatureLoad) {
		b.Skip()
	}

	for i := uint64(0); i < benchCapacity; i += 2 {
		s.Set(i, uint8(i%15+1))
	}

	var saved bytes.Buffer
	if err := s.Save(&saved); err != nil {
		b.Fatalf("Save: %v", err)
	}

	b.Run("Save", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var buf bytes.Buffer
			buf.Grow(saved.Len())
			if err := s.Save(&buf); err != nil {
				b.Fatalf("Save: %v", err)
			}
		}
	})

	b.Run("Load", func(b *testing.B) {
		target := factory(1, store.ModeStrict)
		defer target.Close()
		for i := 0; i < b.N; i++ {
			if err := target.Load(bytes.NewReader(saved.Bytes())); err != nil {
				b.Fatalf("Load: %v", err)
			}
		}
	})
}

func benchmarkMixedUsage(b *testing.B, s store.IStore) {
	defer s.Close()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := uint64(i) % benchCapacity
		switch i % 4 {
		case 0:
			s.Set(k, uint8(i%15+1))
		case 1:
			s.Get(k)
		case 2:
			s.Has(k)
		case 3:
			s.Pop(k)
		}
	}
}
