package testing

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/anydict/numstore/lib/store"
)

// StoreFactory creates a fresh store instance for a test case.
type StoreFactory func(capacity uint64, mode store.Mode) store.IStore

// RunStoreTests runs a comprehensive test suite for an IStore implementation.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory)
		})

		t.Run("ZeroMeansAbsent", func(t *testing.T) {
			testZeroMeansAbsent(t, factory)
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory)
		})

		t.Run("Pop", func(t *testing.T) {
			testPop(t, factory)
		})

		t.Run("LenCounter", func(t *testing.T) {
			testLenCounter(t, factory)
		})

		t.Run("Iteration", func(t *testing.T) {
			testIteration(t, factory)
		})

		t.Run("Walkthrough", func(t *testing.T) {
			testWalkthrough(t, factory)
		})

		t.Run("Boundaries", func(t *testing.T) {
			testBoundaries(t, factory)
		})

		t.Run("LenientMode", func(t *testing.T) {
			testLenientMode(t, factory)
		})

		t.Run("Clear", func(t *testing.T) {
			testClear(t, factory)
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("SaveLoadFile", func(t *testing.T) {
			testSaveLoadFile(t, factory)
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the store supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, s store.IStore, feature store.Feature) {
	if !s.SupportsFeature(feature) {
		t.Skip()
	}
}

// mustLen fails the test if Len errors
func mustLen(t testing.TB, s store.IStore) uint64 {
	t.Helper()
	n, err := s.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	return n
}

// scanLen counts occupied keys by iterating - the ground truth the cached
// counter is checked against
func scanLen(t testing.TB, s store.IStore) uint64 {
	t.Helper()
	seq, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	var n uint64
	for range seq {
		n++
	}
	return n
}

// collectItems materializes the Items sequence
func collectItems(t testing.TB, s store.IStore) ([]uint64, []uint8) {
	t.Helper()
	seq, err := s.Items()
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	var keys []uint64
	var values []uint8
	for k, v := range seq {
		keys = append(keys, k)
		values = append(values, v)
	}
	return keys, values
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, factory StoreFactory) {
	s := factory(100, store.ModeStrict)
	defer s.Close()

	requireFeature(t, s, store.FeatureSet|store.FeatureGet)

	// absent key
	if v, found, err := s.Get(42); err != nil || found || v != 0 {
		t.Errorf("Get on absent key = (%d, %t, %v), want (0, false, nil)", v, found, err)
	}

	// round trip
	if err := s.Set(42, 7); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, found, err := s.Get(42); err != nil || !found || v != 7 {
		t.Errorf("Get = (%d, %t, %v), want (7, true, nil)", v, found, err)
	}

	// overwrite
	if err := s.Set(42, 3); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if v, _, _ := s.Get(42); v != 3 {
		t.Errorf("Get after overwrite = %d, want 3", v)
	}

	// every storable value survives a round trip
	for v := uint8(1); v <= store.MaxValue; v++ {
		if err := s.Set(uint64(v), v); err != nil {
			t.Fatalf("Set(%d, %d): %v", v, v, err)
		}
		if got, _, _ := s.Get(uint64(v)); got != v {
			t.Errorf("value %d round tripped as %d", v, got)
		}
	}
}

func testZeroMeansAbsent(t *testing.T, factory StoreFactory) {
	s := factory(10, store.ModeStrict)
	defer s.Close()

	requireFeature(t, s, store.FeatureSet|store.FeatureGet|store.FeatureHas)

	// writing zero to an absent key is a no-op, not an error
	if err := s.Set(3, 0); err != nil {
		t.Errorf("Set(3, 0) on absent key: %v", err)
	}
	if found, _ := s.Has(3); found {
		t.Error("Has(3) after Set(3, 0), want false")
	}

	// writing zero over a value deletes it
	s.Set(3, 9)
	if err := s.Set(3, 0); err != nil {
		t.Errorf("Set(3, 0) over a value: %v", err)
	}
	if v, found, _ := s.Get(3); found || v != 0 {
		t.Errorf("Get(3) after zero-write = (%d, %t), want absent", v, found)
	}
	if n := mustLen(t, s); n != 0 {
		t.Errorf("Len = %d after zero-write deletion, want 0", n)
	}
}

func testDelete(t *testing.T, factory StoreFactory) {
	s := factory(10, store.ModeStrict)
	defer s.Close()

	requireFeature(t, s, store.FeatureSet|store.FeatureDelete)

	s.Set(5, 12)
	if err := s.Delete(5); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if found, _ := s.Has(5); found {
		t.Error("key still present after Delete")
	}

	// deleting an absent key is a strict-mode error
	if err := s.Delete(5); store.CodeOf(err) != store.ErrCKeyNotFound {
		t.Errorf("Delete on absent key: got %v, want KeyNotFound", err)
	}
}

func testPop(t *testing.T, factory StoreFactory) {
	s := factory(10, store.ModeStrict)
	defer s.Close()

	requireFeature(t, s, store.FeatureSet|store.FeaturePop)

	s.Set(2, 8)
	if v, found, err := s.Pop(2); err != nil || !found || v != 8 {
		t.Errorf("Pop = (%d, %t, %v), want (8, true, nil)", v, found, err)
	}
	if found, _ := s.Has(2); found {
		t.Error("key still present after Pop")
	}

	// popping an absent key is not an error
	if v, found, err := s.Pop(2); err != nil || found || v != 0 {
		t.Errorf("Pop on absent key = (%d, %t, %v), want (0, false, nil)", v, found, err)
	}
}

func testLenCounter(t *testing.T, factory StoreFactory) {
	s := factory(64, store.ModeStrict)
	defer s.Close()

	requireFeature(t, s, store.FeatureSet|store.FeatureDelete|store.FeaturePop|store.FeatureIterate)

	check := func(context string) {
		t.Helper()
		if c, scan := mustLen(t, s), scanLen(t, s); c != scan {
			t.Errorf("%s: counter %d != scan %d", context, c, scan)
		}
	}

	check("empty")

	// interleave inserts, overwrites, zero-writes, deletes and pops
	for i := uint64(0); i < 64; i += 2 {
		s.Set(i, uint8(i%15+1))
	}
	check("after inserts")

	for i := uint64(0); i < 64; i += 4 {
		s.Set(i, 15) // overwrite, count-neutral
	}
	check("after overwrites")

	for i := uint64(0); i < 64; i += 8 {
		s.Set(i, 0) // zero-write deletion
	}
	check("after zero-writes")

	s.Set(2, 0)
	s.Set(2, 0) // double zero-write on the now-absent key, count-neutral
	check("after double zero-write")

	s.Delete(6)
	s.Pop(10)
	s.Pop(10)
	check("after delete and pop")

	if empty, _ := s.IsEmpty(); empty {
		t.Error("IsEmpty = true on non-empty store")
	}
}

func testIteration(t *testing.T, factory StoreFactory) {
	s := factory(50, store.ModeStrict)
	defer s.Close()

	requireFeature(t, s, store.FeatureSet|store.FeatureIterate)

	// insert out of order, expect ascending iteration
	input := map[uint64]uint8{40: 1, 3: 15, 17: 7, 0: 9, 49: 2}
	for k, v := range input {
		s.Set(k, v)
	}

	wantKeys := []uint64{0, 3, 17, 40, 49}
	wantValues := []uint8{9, 15, 7, 1, 2}

	keys, values := collectItems(t, s)
	if len(keys) != len(wantKeys) {
		t.Fatalf("Items yielded %d pairs, want %d", len(keys), len(wantKeys))
	}
	for i := range wantKeys {
		if keys[i] != wantKeys[i] || values[i] != wantValues[i] {
			t.Errorf("Items[%d] = (%d, %d), want (%d, %d)",
				i, keys[i], values[i], wantKeys[i], wantValues[i])
		}
	}

	// Keys and Values agree with Items
	keySeq, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	i := 0
	for k := range keySeq {
		if k != wantKeys[i] {
			t.Errorf("Keys[%d] = %d, want %d", i, k, wantKeys[i])
		}
		i++
	}

	valSeq, err := s.Values()
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	i = 0
	for v := range valSeq {
		if v != wantValues[i] {
			t.Errorf("Values[%d] = %d, want %d", i, v, wantValues[i])
		}
		i++
	}

	// sequences are fresh per call and support early break
	seq, _ := s.Keys()
	for range seq {
		break
	}
	seq2, _ := s.Keys()
	var first uint64 = 99
	for k := range seq2 {
		first = k
		break
	}
	if first != 0 {
		t.Errorf("second Keys sequence started at %d, want 0", first)
	}
}

// testWalkthrough runs the canonical capacity-6 scenario end to end.
func testWalkthrough(t *testing.T, factory StoreFactory) {
	s := factory(6, store.ModeStrict)
	defer s.Close()

	requireFeature(t, s, store.FeatureSet|store.FeatureDelete|store.FeaturePop|store.FeatureIterate)

	s.Set(2, 1)
	s.Set(4, 2)
	s.Set(0, 3)

	if err := s.Delete(2); err != nil {
		t.Fatalf("Delete(2): %v", err)
	}

	if n := mustLen(t, s); n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}
	keys, values := collectItems(t, s)
	if len(keys) != 2 || keys[0] != 0 || keys[1] != 4 {
		t.Errorf("keys = %v, want [0 4]", keys)
	}
	if len(values) != 2 || values[0] != 3 || values[1] != 2 {
		t.Errorf("values = %v, want [3 2]", values)
	}

	if v, found, err := s.Pop(4); err != nil || !found || v != 2 {
		t.Errorf("Pop(4) = (%d, %t, %v), want (2, true, nil)", v, found, err)
	}
	if n := mustLen(t, s); n != 1 {
		t.Errorf("Len after Pop = %d, want 1", n)
	}
}

func testBoundaries(t *testing.T, factory StoreFactory) {
	s := factory(6, store.ModeStrict)
	defer s.Close()

	requireFeature(t, s, store.FeatureSet|store.FeatureGet)

	// first and last slots are addressable
	if err := s.Set(0, 1); err != nil {
		t.Errorf("Set(0): %v", err)
	}
	if err := s.Set(5, 15); err != nil {
		t.Errorf("Set(capacity-1): %v", err)
	}

	// key == capacity is out of range for every operation
	if err := s.Set(6, 1); store.CodeOf(err) != store.ErrCKeyOutOfRange {
		t.Errorf("Set(capacity): got %v, want KeyOutOfRange", err)
	}
	if _, _, err := s.Get(6); store.CodeOf(err) != store.ErrCKeyOutOfRange {
		t.Errorf("Get(capacity): got %v, want KeyOutOfRange", err)
	}
	if _, err := s.Has(6); store.CodeOf(err) != store.ErrCKeyOutOfRange {
		t.Errorf("Has(capacity): got %v, want KeyOutOfRange", err)
	}
	if err := s.Delete(6); store.CodeOf(err) != store.ErrCKeyOutOfRange {
		t.Errorf("Delete(capacity): got %v, want KeyOutOfRange", err)
	}
	if _, _, err := s.Pop(6); store.CodeOf(err) != store.ErrCKeyOutOfRange {
		t.Errorf("Pop(capacity): got %v, want KeyOutOfRange", err)
	}

	// value above MaxValue
	if err := s.Set(0, 16); store.CodeOf(err) != store.ErrCInvalidValue {
		t.Errorf("Set(0, 16): got %v, want InvalidValue", err)
	}

	// failed operations leave state untouched
	if v, _, _ := s.Get(0); v != 1 {
		t.Errorf("slot 0 changed by failed operations: %d", v)
	}
	if n := mustLen(t, s); n != 2 {
		t.Errorf("Len = %d after failed operations, want 2", n)
	}
}

// testLenientMode verifies that invalid operations are ignored without error
// and that valid operations behave identically in both modes.
func testLenientMode(t *testing.T, factory StoreFactory) {
	s := factory(6, store.ModeLenient)
	defer s.Close()

	requireFeature(t, s, store.FeatureSet|store.FeatureGet)

	s.Set(1, 5)

	// out-of-range and out-of-value operations: nil error, zero results
	if err := s.Set(6, 1); err != nil {
		t.Errorf("lenient Set(capacity): %v, want nil", err)
	}
	if err := s.Set(0, 16); err != nil {
		t.Errorf("lenient Set(0, 16): %v, want nil", err)
	}
	if v, found, err := s.Get(6); err != nil || found || v != 0 {
		t.Errorf("lenient Get(capacity) = (%d, %t, %v), want (0, false, nil)", v, found, err)
	}
	if err := s.Delete(3); err != nil {
		t.Errorf("lenient Delete on absent key: %v, want nil", err)
	}
	if _, _, err := s.Pop(6); err != nil {
		t.Errorf("lenient Pop(capacity): %v, want nil", err)
	}

	// the ignored operations must not have touched state
	if v, _, _ := s.Get(1); v != 5 {
		t.Errorf("slot 1 = %d after ignored operations, want 5", v)
	}
	if v, _, _ := s.Get(0); v != 0 {
		t.Errorf("slot 0 = %d after ignored Set(0, 16), want 0", v)
	}
	if n := mustLen(t, s); n != 1 {
		t.Errorf("Len = %d after ignored operations, want 1", n)
	}

	// repeating an ignored operation is idempotent
	s.Delete(3)
	s.Delete(3)
	if n := mustLen(t, s); n != 1 {
		t.Errorf("Len = %d after repeated ignored deletes, want 1", n)
	}
}

func testClear(t *testing.T, factory StoreFactory) {
	s := factory(20, store.ModeStrict)
	defer s.Close()

	requireFeature(t, s, store.FeatureSet|store.FeatureClear)

	for i := uint64(0); i < 20; i++ {
		s.Set(i, uint8(i%15+1))
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if empty, _ := s.IsEmpty(); !empty {
		t.Error("IsEmpty = false after Clear")
	}
	if n := mustLen(t, s); n != 0 {
		t.Errorf("Len = %d after Clear, want 0", n)
	}
	if s.Capacity() != 20 {
		t.Errorf("Capacity = %d after Clear, want 20", s.Capacity())
	}
	for i := uint64(0); i < 20; i++ {
		if found, _ := s.Has(i); found {
			t.Errorf("key %d still present after Clear", i)
		}
	}
}

func testSaveLoad(t *testing.T, factory StoreFactory) {
	s := factory(33, store.ModeStrict)
	defer s.Close()

	requireFeature(t, s, store.FeatureSave|store.FeatureLoad)

	s.Set(0, 1)
	s.Set(16, 9)
	s.Set(32, 15)

	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// load into a store with a different shape - the loaded state wins
	restored := factory(5, store.ModeStrict)
	defer restored.Close()
	if err := restored.Load(&buf); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if restored.Capacity() != 33 {
		t.Errorf("restored capacity = %d, want 33", restored.Capacity())
	}
	if n := mustLen(t, restored); n != 3 {
		t.Errorf("restored Len = %d, want 3", n)
	}
	keys, values := collectItems(t, restored)
	wantKeys := []uint64{0, 16, 32}
	wantValues := []uint8{1, 9, 15}
	for i := range wantKeys {
		if keys[i] != wantKeys[i] || values[i] != wantValues[i] {
			t.Errorf("restored item %d = (%d, %d), want (%d, %d)",
				i, keys[i], values[i], wantKeys[i], wantValues[i])
		}
	}

	// counter equals scan after the wholesale replacement
	if c, scan := mustLen(t, restored), scanLen(t, restored); c != scan {
		t.Errorf("restored counter %d != scan %d", c, scan)
	}
}

func testSaveLoadFile(t *testing.T, factory StoreFactory) {
	s := factory(10, store.ModeStrict)
	defer s.Close()

	requireFeature(t, s, store.FeatureSave|store.FeatureLoad)

	s.Set(7, 4)

	path := filepath.Join(t.TempDir(), "store.bin")
	if err := s.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	restored := factory(10, store.ModeStrict)
	defer restored.Close()
	if err := restored.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if v, found, _ := restored.Get(7); !found || v != 4 {
		t.Errorf("restored Get(7) = (%d, %t), want (4, true)", v, found)
	}
}

func testInfo(t *testing.T, factory StoreFactory) {
	s := factory(11, store.ModeLenient)
	defer s.Close()

	s.Set(1, 1)
	s.Set(2, 2)

	info, err := s.GetInfo()
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if info.Capacity != 11 {
		t.Errorf("info.Capacity = %d, want 11", info.Capacity)
	}
	if info.Occupied != 2 {
		t.Errorf("info.Occupied = %d, want 2", info.Occupied)
	}
	if info.Mode != "lenient" {
		t.Errorf("info.Mode = %q, want lenient", info.Mode)
	}
	if len(info.SupportedFeatures) == 0 {
		t.Error("info.SupportedFeatures is empty")
	}
}
